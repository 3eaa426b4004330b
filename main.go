package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	config "github.com/phillip/chapter-directory-go/config"
	middleware "github.com/phillip/chapter-directory-go/middleware"
	reports "github.com/phillip/chapter-directory-go/reports"
	routes "github.com/phillip/chapter-directory-go/routes"
	store "github.com/phillip/chapter-directory-go/store"
)

func main() {
	envErr := godotenv.Load()
	cfg := config.Load()

	logger, err := config.NewLogger(cfg.IsRelease(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck
	cfg.Logger = logger

	if envErr != nil {
		logger.Info(".env file not found, using system environment")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	err = cfg.ConnectMongo(connectCtx)
	cancel()
	if err != nil {
		logger.Fatal("could not connect to mongo", zap.String("db", cfg.DBName), zap.Error(err))
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := cfg.MongoClient.Disconnect(disconnectCtx); err != nil {
			logger.Warn("mongo disconnect", zap.Error(err))
		}
	}()

	indexCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	if err := store.EnsureIndexes(indexCtx, cfg.DB()); err != nil {
		logger.Warn("could not ensure indexes", zap.Error(err))
	}
	cancel()

	if cfg.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.SetupCORS(cfg))

	engine := reports.NewEngine(store.NewReportSource(cfg.DB()))
	routes.SetupRoutes(r, cfg, engine)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr), zap.String("mode", gin.Mode()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
