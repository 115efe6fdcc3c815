package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eaglebank/ledger/shared/config"
	"github.com/eaglebank/ledger/shared/events"
	"github.com/eaglebank/ledger/shared/logger"
	"github.com/eaglebank/ledger/shared/metrics"
	"github.com/eaglebank/ledger/shared/middleware"
	redisClient "github.com/eaglebank/ledger/shared/redis"
	stmcmd "github.com/eaglebank/ledger/statement-service/internal/command"
	"github.com/eaglebank/ledger/statement-service/internal/handler"
	stmqry "github.com/eaglebank/ledger/statement-service/internal/query"
	"github.com/eaglebank/ledger/statement-service/internal/repository"
	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const (
	statementViewTTL = 10 * time.Minute
	userExistsTTL    = 24 * time.Hour
)

// userDirectory is what the wiring needs from either directory implementation.
type userDirectory interface {
	repository.UserDirectory
	HandleUserEvent(ctx context.Context, event events.Event) error
}

func main() {
	cfg, loadedDotEnv := config.Load("statement-service", "8084")

	log, err := logger.New(cfg.Service, cfg.IsProduction())
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if !loadedDotEnv {
		log.Debug("no .env file, using process environment")
	}
	middleware.MustInitJWTSecret(cfg.JWTSecret)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis connection (read cache + event streaming)
	redis, err := redisClient.NewClient(ctx, redisClient.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redis.Close()

	var (
		store repository.StatementStore
		users userDirectory
	)
	switch cfg.StatementStore {
	case "memory":
		log.Warn("using in-memory statement store; statements are lost on restart")
		store = repository.NewMemoryStatementStore()
		users = repository.NewMemoryUserDirectory()
	default:
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Fatal("failed to open database", zap.Error(err))
		}
		defer db.Close()

		if err := db.PingContext(ctx); err != nil {
			log.Fatal("failed to ping database", zap.Error(err))
		}
		store = repository.NewPostgresStatementStore(db)
		users = repository.NewUserDirectoryRepository(db, redis.Client, userExistsTTL, log)
	}

	// --- CQRS wiring ---
	publisher := events.NewPublisher(redis.Client, 100000)
	readRepo := repository.NewStatementReadRepository(store, redis.Client, statementViewTTL, log)

	commandSvc := stmcmd.NewStatementCommandService(store, users, readRepo, publisher, log)
	querySvc := stmqry.NewStatementQueryService(readRepo, users)

	statementHandler := handler.NewStatementHandler(commandSvc, querySvc, log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.LoggingMiddleware(log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := router.Group("/v1/statements", middleware.AuthMiddleware())
	{
		v1.GET("/balance", statementHandler.GetBalance)
		v1.POST("/deposit", statementHandler.Deposit)
		v1.POST("/withdraw", statementHandler.Withdraw)
		v1.POST("/transfers/:receiverId", statementHandler.Transfer)
		v1.GET("/:statementId", statementHandler.GetStatement)
	}

	go func() {
		hostname, _ := os.Hostname()
		subscriber := events.NewSubscriber(redis.Client, events.SubscriberConfig{
			Group:    "statement-service-group",
			Consumer: "statement-consumer-" + hostname,
			Stream:   events.UserEventsStream,
			Handler:  users.HandleUserEvent,
		}, log)
		if err := subscriber.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("subscriber stopped", zap.Error(err))
		}
	}()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("statement service starting", zap.String("port", cfg.Port), zap.String("store", cfg.StatementStore))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
