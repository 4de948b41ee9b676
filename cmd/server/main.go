package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"compsec/internal/config"
	"compsec/internal/database"
	"compsec/internal/logger"
	"compsec/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if cfg.SessionSecret == "" {
		log.Fatal("config error: SESSION_SECRET is not set")
	}

	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	zap.ReplaceGlobals(zl)

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server error", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := database.Init(cfg.DBDSN, cfg.DBConnectAttempts); err != nil {
		return err
	}

	if cfg.RedisAddr != "" {
		client, err := database.UseRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			zl.Warn("redis unavailable, issuing identifiers from postgres", zap.Error(err))
		} else {
			defer client.Close()
			zl.Info("issuing identifiers from redis", zap.String("addr", cfg.RedisAddr))
		}
	}

	if cfg.SeedFrameworks {
		seeded, created, err := database.SeedFrameworks(ctx)
		if err != nil {
			return err
		}
		if created {
			zl.Info("seeded default frameworks", zap.Int("count", len(seeded)))
		}
	}

	gin.SetMode(gin.ReleaseMode)
	r, err := server.NewRouter(ctx, cfg, zl)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
