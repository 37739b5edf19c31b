package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	v1 "github.com/Lamiaker/sou9i-sub003/cmd/api/router/v1"
	"github.com/Lamiaker/sou9i-sub003/internal/auth"
	"github.com/Lamiaker/sou9i-sub003/internal/delivery"
	cacheAdapter "github.com/Lamiaker/sou9i-sub003/internal/infrastructure/cache/adapter"
	"github.com/Lamiaker/sou9i-sub003/internal/infrastructure/config"
	"github.com/Lamiaker/sou9i-sub003/internal/infrastructure/database"
	"github.com/Lamiaker/sou9i-sub003/internal/infrastructure/logger"
	queueAdapter "github.com/Lamiaker/sou9i-sub003/internal/infrastructure/queue/adapter"
	"github.com/Lamiaker/sou9i-sub003/internal/infrastructure/realtime"
	"github.com/Lamiaker/sou9i-sub003/internal/pkg/messaging/application/task"
	httpHandler "github.com/Lamiaker/sou9i-sub003/internal/pkg/messaging/presentation/http"
	userAdapter "github.com/Lamiaker/sou9i-sub003/internal/repository/adapter"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: .env file not found or could not be loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	zlog, err := logger.Init(gin.Mode() != gin.ReleaseMode)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := database.Connect(connectCtx, cfg.Database.DSN, cfg.Database.MaxConns)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	cache, err := cacheAdapter.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		zlog.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer cache.Close()

	queueClient, err := queueAdapter.NewAsynqClient(cfg.Redis.URL)
	if err != nil {
		zlog.Fatal("failed to create queue client", zap.Error(err))
	}
	defer queueClient.Close()

	queueServer, err := queueAdapter.NewAsynqServer(cfg.Redis.URL, cfg.Queue.Concurrency)
	if err != nil {
		zlog.Fatal("failed to create queue server", zap.Error(err))
	}
	task.RegisterPurgeConversationsTask(queueServer, pool)
	go func() {
		if err := queueServer.Run(ctx); err != nil {
			zlog.Error("queue server stopped", zap.Error(err))
		}
	}()

	router := realtime.NewRouter()
	defer router.Close()

	bridge := realtime.NewBridge(router, cache.Client())
	go func() {
		if err := bridge.Run(ctx); err != nil && ctx.Err() == nil {
			zlog.Error("realtime bridge stopped", zap.Error(err))
		}
	}()

	verifier := auth.NewJWTVerifier(cfg.Session.JWTSecret, cfg.Session.TokenTTL)
	coordinator := delivery.NewCoordinator(bridge, cache)
	users := userAdapter.NewPgUserDirectory(pool)

	r := gin.New()
	r.Use(logger.GinMiddleware(), gin.Recovery())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1.RegisterRoutes(r, httpHandler.Deps{
		Pool:        pool,
		Users:       users,
		Cache:       cache,
		Queue:       queueClient,
		Router:      router,
		Bridge:      bridge,
		Verifier:    verifier,
		Coordinator: coordinator,
		UnreadTTL:   cfg.Cache.UnreadTTL,
	})

	srv := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: r,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	zlog.Info("messaging API listening", zap.String("addr", cfg.Server.Addr()))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		zlog.Fatal("http server failed", zap.Error(err))
	}
}
