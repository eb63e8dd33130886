package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"sweetshop-backend/internal/config"
	"sweetshop-backend/internal/domain"
	"sweetshop-backend/internal/usecase"
)

const (
	ctxRequestID = "requestId"
	ctxActor     = "actor"
)

// IdempotencyStore guards order submission against client retries.
type IdempotencyStore interface {
	Reserve(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// EventStream is the source behind GET /api/events.
type EventStream interface {
	Subscribe() (<-chan domain.CatalogEvent, func())
}

type Deps struct {
	Orders        *usecase.OrderService
	Inventory     *usecase.InventoryService
	Catalog       *usecase.CatalogService
	Notifications *usecase.NotificationService
	Auth          *usecase.AuthService
	Idempotency   IdempotencyStore
	Stream        EventStream
	Log           *zap.Logger
}

type Server struct {
	cfg    config.Config
	deps   Deps
	log    *zap.Logger
	engine *gin.Engine
}

func New(cfg config.Config, deps Deps) *Server {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		cfg:    cfg,
		deps:   deps,
		log:    log,
		engine: gin.New(),
	}
	s.engine.Use(s.requestID, s.accessLog, gin.CustomRecovery(s.recovered), s.cors)
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() {
	if s.cfg.AssetsDir != "" {
		s.engine.Static("/assets", s.cfg.AssetsDir)
	}
	api := s.engine.Group("/api")
	api.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	api.GET("/sweets", s.handleListSweets)
	api.GET("/sweets/:id", s.handleGetSweet)
	api.GET("/sweets/:id/available", s.handleAvailable)
	if s.deps.Stream != nil {
		api.GET("/events", s.handleEvents)
	}

	authed := api.Group("", s.auth)
	authed.POST("/sweets", s.handleCreateSweet)
	authed.PUT("/sweets/:id", s.handleUpdateSweet)
	authed.DELETE("/sweets/:id", s.handleDeleteSweet)
	authed.PUT("/sweets/:id/stock", s.handleSetStock)
	authed.POST("/sweets/:id/photos", s.handleAddPhotos)

	authed.POST("/orders", s.handleCreateOrder)
	authed.GET("/orders/order/:id", s.handleGetOrder)
	authed.GET("/orders/user/:userId", s.handleUserOrders)
	authed.PUT("/orders/:id/cancel", s.handleCancelOrder)

	admin := authed.Group("", s.requireAdmin)
	admin.GET("/orders", s.handleListOrders)
	admin.GET("/orders/search", s.handleSearchOrders)
	admin.PUT("/orders/:id", s.handleUpdateStatus)
	admin.PUT("/orders/:id/payment-status", s.handlePaymentStatus)

	authed.GET("/notifications/user/:userId", s.handleUserNotifications)
	authed.PUT("/notifications/user/:userId/read-all", s.handleReadAll)
	authed.PUT("/notifications/:id", s.handleMarkRead)
	authed.DELETE("/notifications/:id", s.handleDeleteNotification)
}

func (s *Server) requestID(c *gin.Context) {
	id := strings.TrimSpace(c.GetHeader("X-Request-ID"))
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(ctxRequestID, id)
	c.Header("X-Request-ID", id)
	c.Next()
}

func (s *Server) accessLog(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.log.Info("http request",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", c.Writer.Status()),
		zap.Duration("latency", time.Since(start)),
		zap.String("request_id", c.GetString(ctxRequestID)),
	)
}

func (s *Server) recovered(c *gin.Context, rec any) {
	s.log.Error("panic in handler", zap.Any("panic", rec), zap.String("path", c.Request.URL.Path))
	s.err(c, http.StatusInternalServerError, "ServerError", "internal error")
}

func (s *Server) cors(c *gin.Context) {
	origin := s.cfg.CORSOrigin
	if origin == "" {
		origin = "*"
	}
	c.Header("Access-Control-Allow-Origin", origin)
	c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, Idempotency-Key, X-Request-ID")
	c.Header("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
	if c.Request.Method == http.MethodOptions {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}
	c.Next()
}

func (s *Server) auth(c *gin.Context) {
	h := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		s.fail(c, usecase.ErrUnauthorized("missing bearer token"))
		return
	}
	if s.deps.Auth == nil {
		s.fail(c, usecase.ErrUnauthorized("auth not configured"))
		return
	}
	actor, err := s.deps.Auth.Verify(strings.TrimSpace(token))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Set(ctxActor, actor)
	c.Next()
}

// requireAdmin rejects non-admin callers before the request body or query is read.
func (s *Server) requireAdmin(c *gin.Context) {
	if !actorOf(c).IsAdmin {
		s.fail(c, usecase.ErrForbidden(""))
		return
	}
	c.Next()
}

func actorOf(c *gin.Context) domain.Actor {
	if v, ok := c.Get(ctxActor); ok {
		if a, ok := v.(domain.Actor); ok {
			return a
		}
	}
	return domain.Actor{}
}

// fail maps usecase errors onto the error envelope and aborts the chain.
func (s *Server) fail(c *gin.Context, err error) {
	var (
		notFound     usecase.ErrNotFound
		conflict     usecase.ErrConflict
		badRequest   usecase.ErrBadRequest
		forbidden    usecase.ErrForbidden
		invalid      usecase.ErrInvalidState
		unauthorized usecase.ErrUnauthorized
	)
	switch {
	case errors.As(err, &notFound):
		s.err(c, http.StatusNotFound, "NotFound", err.Error())
	case errors.As(err, &conflict):
		s.err(c, http.StatusConflict, "Conflict", err.Error())
	case errors.As(err, &badRequest):
		s.err(c, http.StatusBadRequest, "BadRequest", err.Error())
	case errors.As(err, &forbidden):
		s.err(c, http.StatusForbidden, "Forbidden", err.Error())
	case errors.As(err, &invalid):
		s.err(c, http.StatusBadRequest, "InvalidState", err.Error())
	case errors.As(err, &unauthorized):
		s.err(c, http.StatusUnauthorized, "Unauthorized", err.Error())
	default:
		s.log.Error("request failed", zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetString(ctxRequestID)), zap.Error(err))
		s.err(c, http.StatusInternalServerError, "ServerError", "internal error")
	}
}

func (s *Server) err(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{
			"code":      code,
			"message":   msg,
			"requestId": c.GetString(ctxRequestID),
		},
	})
}
