package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"poker_web/internal/api"
	"poker_web/internal/middleware"
	"poker_web/internal/repository"
	"poker_web/internal/service"
	"poker_web/internal/utils"
	"poker_web/pkg/config"
)

func main() {
	// 載入應用程式配置
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	// 所有狀態都在記憶體中，重啟後清空
	repos := repository.NewRepositories()
	tokens := utils.NewTokenIssuer(cfg.Session.Secret, cfg.Session.TTL)
	services := service.NewServices(repos, tokens, service.WebSocketOptions{
		ReadLimit:  cfg.WebSocket.ReadLimit,
		PongWait:   cfg.WebSocket.PongWait,
		PingPeriod: cfg.WebSocket.PingPeriod,
		WriteWait:  cfg.WebSocket.WriteWait,
		SendBuffer: cfg.WebSocket.SendBuffer,
	})

	// 設置 Gin 路由
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger(logger))
	api.SetupRoutes(r, services, tokens)

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("listening", "address", cfg.Server.Address, "version", api.Version)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
