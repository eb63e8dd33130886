package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sweetshop-backend/internal/domain"
	"sweetshop-backend/internal/usecase"
)

func (s *Server) handleCreateOrder(c *gin.Context) {
	var sub usecase.OrderSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		s.err(c, http.StatusBadRequest, "BadRequest", "invalid json")
		return
	}
	actor := actorOf(c)
	ctx := c.Request.Context()

	key := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
	reserved := false
	if key != "" && s.deps.Idempotency != nil {
		key = actor.ID + ":" + key
		ok, err := s.deps.Idempotency.Reserve(ctx, key)
		switch {
		case err != nil:
			s.log.Warn("idempotency store unavailable", zap.String("request_id", c.GetString(ctxRequestID)), zap.Error(err))
		case !ok:
			s.fail(c, usecase.ErrConflict("duplicate order submission"))
			return
		default:
			reserved = true
		}
	}

	o, err := s.deps.Orders.Create(ctx, actor, sub)
	if err != nil {
		if reserved {
			if rerr := s.deps.Idempotency.Release(ctx, key); rerr != nil {
				s.log.Warn("idempotency release failed", zap.Error(rerr))
			}
		}
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Order placed successfully",
		"order":   o,
	})
}

func (s *Server) handleListOrders(c *gin.Context) {
	list, err := s.deps.Orders.ListAll(c.Request.Context(), actorOf(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) handleSearchOrders(c *gin.Context) {
	f := domain.OrderFilter{Query: c.Query("query")}
	if v := strings.TrimSpace(c.Query("status")); v != "" {
		st, ok := domain.ParseOrderStatus(v)
		if !ok {
			s.fail(c, usecase.ErrBadRequest("invalid status"))
			return
		}
		f.Status = st
	}
	var err error
	if f.From, err = parseDateParam(c.Query("startDate"), false); err != nil {
		s.fail(c, usecase.ErrBadRequest("invalid startDate"))
		return
	}
	if f.To, err = parseDateParam(c.Query("endDate"), true); err != nil {
		s.fail(c, usecase.ErrBadRequest("invalid endDate"))
		return
	}
	list, err := s.deps.Orders.Search(c.Request.Context(), actorOf(c), f)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// parseDateParam accepts RFC 3339 or a bare date. A bare end date covers the
// whole day.
func parseDateParam(v string, endOfDay bool) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func (s *Server) handleGetOrder(c *gin.Context) {
	o, err := s.deps.Orders.Get(c.Request.Context(), actorOf(c), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (s *Server) handleUserOrders(c *gin.Context) {
	list, err := s.deps.Orders.ListForUser(c.Request.Context(), actorOf(c), c.Param("userId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

type statusReq struct {
	Status string `json:"status"`
}

func (s *Server) handleUpdateStatus(c *gin.Context) {
	var req statusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		s.err(c, http.StatusBadRequest, "BadRequest", "invalid json")
		return
	}
	o, err := s.deps.Orders.UpdateStatus(c.Request.Context(), actorOf(c), c.Param("id"), req.Status)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (s *Server) handleCancelOrder(c *gin.Context) {
	o, err := s.deps.Orders.Cancel(c.Request.Context(), actorOf(c), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

type paymentStatusReq struct {
	PaymentStatus string `json:"paymentStatus"`
}

func (s *Server) handlePaymentStatus(c *gin.Context) {
	var req paymentStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		s.err(c, http.StatusBadRequest, "BadRequest", "invalid json")
		return
	}
	o, err := s.deps.Orders.UpdatePaymentStatus(c.Request.Context(), actorOf(c), c.Param("id"), req.PaymentStatus)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}
