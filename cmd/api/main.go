package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	v1 "marketchat/cmd/api/router/v1"
	cacheadapter "marketchat/internal/infrastructure/cache/adapter"
	cacheport "marketchat/internal/infrastructure/cache/port"
	"marketchat/internal/infrastructure/database"
	queueadapter "marketchat/internal/infrastructure/queue/adapter"
	qport "marketchat/internal/infrastructure/queue/port"
	"marketchat/internal/infrastructure/realtime"
	"marketchat/internal/pkg/chat/application/task"
	"marketchat/internal/pkg/chat/application/usecase"
	repoadapter "marketchat/internal/pkg/chat/persistence/repository/adapter"
	httpHandler "marketchat/internal/pkg/chat/presentation/http"
	"marketchat/internal/pkg/chat/presentation/wire"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	pool, err := database.NewPoolFromEnv(connectCtx)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	// Redis is optional: without it the service runs uncached and the async
	// ingest endpoint answers 503.
	var cache cacheport.Cache
	if redisCache, err := cacheadapter.NewRedisAdapter(); err != nil {
		logger.Warn("running without cache", zap.Error(err))
	} else {
		cache = redisCache
		defer func() { _ = redisCache.Close() }()
	}

	var queueClient qport.Client
	if client, err := queueadapter.NewAsynqClientFromEnv(); err != nil {
		logger.Warn("running without queue", zap.Error(err))
	} else {
		queueClient = client
		defer func() { _ = client.Close() }()
	}

	hub := realtime.NewHub(logger)
	defer hub.Close()

	repo := repoadapter.NewPgChatRepository(pool)
	sendUC := usecase.NewSendMessageUseCase(repo, wire.NewHubNotifier(hub), logger)
	deps := httpHandler.Deps{
		Hub:                   hub,
		SendMessageUC:         sendUC,
		GetMessagesUC:         usecase.NewGetMessagesUseCase(repo, cache),
		ListConversationsUC:   usecase.NewListConversationsUseCase(repo),
		ResolveConversationUC: usecase.NewResolveConversationUseCase(repo),
		Queue:                 queueClient,
		Log:                   logger,
	}

	// The worker shares the process so queued sends reach the same hub for
	// the push step.
	if queueClient != nil {
		worker, err := queueadapter.NewAsynqServer(logger)
		if err != nil {
			logger.Warn("worker not started", zap.Error(err))
		} else {
			task.RegisterSendMessageTask(worker, sendUC)
			go func() {
				if err := worker.Run(ctx); err != nil {
					logger.Error("worker stopped", zap.Error(err))
				}
			}()
		}
	}

	r := gin.Default()
	r.Use(cors.Default())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	v1.RegisterRoutes(r, deps)

	// Blocks until shutdown; listen address comes from PORT.
	if err := r.Run(); err != nil {
		logger.Fatal("http server stopped", zap.Error(err))
	}
}
