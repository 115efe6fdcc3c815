package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eaglebank/ledger/api-gateway/internal/proxy"
	"github.com/eaglebank/ledger/shared/config"
	"github.com/eaglebank/ledger/shared/logger"
	"github.com/eaglebank/ledger/shared/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, _ := config.Load("api-gateway", "8080")

	log, err := logger.New(cfg.Service, cfg.IsProduction())
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	upstreams := proxy.Upstreams{
		Auth:      config.Lookup("AUTH_SERVICE_URL", "http://localhost:8081"),
		User:      config.Lookup("USER_SERVICE_URL", "http://localhost:8082"),
		Statement: config.Lookup("STATEMENT_SERVICE_URL", "http://localhost:8084"),
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.LoggingMiddleware(log))
	proxy.Register(router, proxy.New(15*time.Second, log), upstreams)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("api gateway starting",
			zap.String("port", cfg.Port),
			zap.String("auth", upstreams.Auth),
			zap.String("user", upstreams.User),
			zap.String("statement", upstreams.Statement),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
