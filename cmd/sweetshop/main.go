package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"sweetshop-backend/internal/config"
	"sweetshop-backend/internal/env"
	"sweetshop-backend/internal/infrastructure/asset"
	"sweetshop-backend/internal/infrastructure/events"
	"sweetshop-backend/internal/infrastructure/idempotency"
	"sweetshop-backend/internal/infrastructure/repo"
	"sweetshop-backend/internal/logging"
	"sweetshop-backend/internal/server"
	"sweetshop-backend/internal/shutdown"
	"sweetshop-backend/internal/usecase"
)

const idempotencyTTL = 24 * time.Hour

func main() {
	env.Load(".env", ".env.local")
	envDefaults := config.EnvDefaults()

	envName := flag.String("env", envDefaults.Env, "")
	port := flag.Int("port", envDefaults.Port, "")
	assets := flag.String("assets", envDefaults.AssetsDir, "")
	publicBase := flag.String("public-base-url", envDefaults.PublicBaseURL, "")
	jwtSecret := flag.String("jwt-secret", envDefaults.JWTSecret, "")
	logJSON := flag.Bool("log-json", envDefaults.LogJSON, "")
	dbURL := flag.String("database-url", envDefaults.DatabaseURL, "")
	redisAddr := flag.String("redis-addr", envDefaults.RedisAddr, "")
	kafkaBrokers := flag.String("kafka-brokers", strings.Join(envDefaults.KafkaBrokers, ","), "")
	kafkaTopic := flag.String("kafka-topic", envDefaults.KafkaTopic, "")
	corsOrigin := flag.String("cors-origin", envDefaults.CORSOrigin, "")

	flag.Parse()

	cfg := config.Config{
		Env:           *envName,
		Port:          *port,
		AssetsDir:     *assets,
		PublicBaseURL: *publicBase,
		JWTSecret:     *jwtSecret,
		LogJSON:       *logJSON,
		DatabaseURL:   *dbURL,
		RedisAddr:     *redisAddr,
		KafkaBrokers:  config.SplitList(*kafkaBrokers),
		KafkaTopic:    *kafkaTopic,
		CORSOrigin:    *corsOrigin,
	}

	log, err := logging.New(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("exit", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	ensureDir(cfg.AssetsDir)
	if cfg.JWTSecret == "" {
		log.Warn("no jwt secret configured; authenticated routes will reject every request")
	}
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	var (
		sweets usecase.SweetRepo
		stock  usecase.StockRepo
		orders usecase.OrderRepo
		notes  usecase.NotificationRepo
	)
	if cfg.DatabaseURL != "" {
		pg, err := repo.NewPostgresRepo(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		defer pg.Close()
		sweets, stock, orders, notes = pg, pg, pg, pg
		log.Info("using postgres storage")
	} else {
		mem := repo.NewMemorySweetRepo()
		sweets, stock = mem, mem
		orders = repo.NewMemoryOrderRepo()
		notes = repo.NewMemoryNotificationRepo()
		log.Info("using in-memory storage")
	}

	var idem server.IdempotencyStore
	if cfg.RedisAddr != "" {
		rs := idempotency.NewRedisStore(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}), idempotencyTTL)
		defer rs.Close()
		idem = rs
	} else {
		idem = idempotency.NewMemoryStore(idempotencyTTL)
	}

	hub := events.NewHub()
	defer hub.Close()
	sinks := events.Multi{hub}
	if len(cfg.KafkaBrokers) > 0 {
		ks := events.NewKafkaSink(events.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic))
		defer ks.Close()
		sinks = append(sinks, ks)
		log.Info("publishing catalog events to kafka", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}

	inventory := &usecase.InventoryService{Repo: stock, Log: log.Named("inventory")}
	notifications := &usecase.NotificationService{Repo: notes}
	srv := server.New(cfg, server.Deps{
		Orders: &usecase.OrderService{
			Repo:     orders,
			Ledger:   inventory,
			Notifier: notifications,
			Log:      log.Named("orders"),
		},
		Inventory: inventory,
		Catalog: &usecase.CatalogService{
			Repo:   sweets,
			Events: sinks,
			Photos: asset.NewFSWriter(cfg.AssetsDir, cfg.PublicBaseURL),
			Log:    log.Named("catalog"),
		},
		Notifications: notifications,
		Auth:          &usecase.AuthService{JWTSecret: cfg.JWTSecret},
		Idempotency:   idem,
		Stream:        hub,
		Log:           log.Named("http"),
	})

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", httpSrv.Addr), zap.String("env", cfg.Env))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	// SSE streams never finish on their own
	_ = hub.Close()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	return httpSrv.Shutdown(shutdownCtx)
}

func ensureDir(p string) {
	if p == "" {
		return
	}
	if _, err := os.Stat(p); os.IsNotExist(err) {
		_ = os.MkdirAll(p, 0o755)
	}
}
