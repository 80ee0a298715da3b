package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"findsync/internal/auth"
	"findsync/internal/config"
	"findsync/internal/db"
	"findsync/internal/handlers"
	"findsync/internal/logging"
	"findsync/internal/middleware"
	"findsync/internal/observability"
	"findsync/internal/rabbitmq"
	"findsync/internal/repositories"
	"findsync/internal/services"
	"findsync/internal/telemetry"
	"findsync/internal/uploads"
	"findsync/internal/ws"
)

const serviceName = "findsync-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("console", serviceName, "development").Fatal("failed to load config", zap.Error(err))
	}

	logger := logging.New(cfg.LogFormat, serviceName, cfg.Environment)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		logger.Fatal("failed to init tracing", zap.Error(err))
	}
	defer shutdownTracing(context.Background())

	database, err := db.Connect(cfg.DBDSN, cfg.MigrateVersion, logger)
	if err != nil {
		logger.Fatal("failed to connect to db", zap.Error(err))
	}
	defer database.Close()

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, logger)
	defer publisher.Close()
	observability.SetPublisher(publisher)
	logger.Info("event publisher ready",
		zap.String("mode", rabbitmq.PublisherMode(publisher)),
		zap.String("noop_reason", rabbitmq.PublisherNoopReason(publisher)),
	)
	auditEmitter := telemetry.NewAuditEmitter(publisher, "audit.findsync", serviceName, cfg.Environment, logger)

	userRepo := repositories.NewUserRepo(database)
	itemRepo := repositories.NewItemRepo(database)
	contactRepo := repositories.NewContactRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	schemaProbe := repositories.NewCachedProbe(repositories.NewCatalogProbe(database), cfg.SchemaProbeTTL)

	hub := ws.NewHub(logger)
	var broadcaster services.ItemBroadcaster = hub
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		relay := ws.NewRedisRelay(rdb, cfg.RedisChannel, hub, logger)
		go relay.Run(ctx)
		broadcaster = relay
		logger.Info("new item relay enabled", zap.String("redis_addr", cfg.RedisAddr), zap.String("channel", cfg.RedisChannel))
	}

	uploadStore, err := newUploadStore(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to init upload store", zap.Error(err))
	}

	resolver := services.NewIdentityResolver(userRepo, logger)
	itemService := services.NewItemService(itemRepo, userRepo, resolver, schemaProbe, broadcaster, publisher, logger)
	userService := services.NewUserService(userRepo, resolver)
	contactService := services.NewContactService(contactRepo, messageRepo, itemRepo, resolver, logger)

	verifier := auth.NewVerifier(cfg.JWTSecret)
	itemHandler := handlers.NewItemHandler(itemService, contactService, uploads.NewHandler(uploadStore), auditEmitter, logger)
	userHandler := handlers.NewUserHandler(userService, logger)
	contactHandler := handlers.NewContactHandler(contactService, logger)
	feedWS := ws.NewFeedWebSocketHandler(hub, logger)

	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// middlewares
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.UploadBackend == "local" {
		router.Static("/uploads", cfg.UploadDir)
	}

	authMiddleware := middleware.AuthMiddleware(verifier)

	router.POST("/items", authMiddleware, itemHandler.CreateItem)
	router.GET("/items", itemHandler.ListItems)
	router.GET("/items/:item_id", itemHandler.GetItem)
	router.PATCH("/items/:item_id/status", authMiddleware, itemHandler.UpdateItemStatus)
	router.DELETE("/items/:item_id", authMiddleware, itemHandler.DeleteItem)
	router.POST("/items/:item_id/contact", authMiddleware, itemHandler.ContactOwner)

	router.POST("/users/sync", authMiddleware, userHandler.Sync)
	router.GET("/users/me", authMiddleware, userHandler.Me)
	router.PUT("/users/me", authMiddleware, userHandler.UpdateMe)
	router.GET("/users/me/items", authMiddleware, itemHandler.ListMyItems)

	router.GET("/contacts", authMiddleware, contactHandler.ListContacts)
	router.GET("/contacts/:contact_id/messages", authMiddleware, contactHandler.GetMessages)
	router.POST("/contacts/:contact_id/messages", authMiddleware, contactHandler.PostMessage)
	router.GET("/messages/unread", authMiddleware, contactHandler.UnreadCount)

	router.GET("/ws/items", feedWS.Handle)

	handlers.RegisterDebugRoutes(router, handlers.DebugDeps{
		Emitter:  auditEmitter,
		Schema:   schemaProbe,
		Verifier: verifier,
	}, cfg.DebugRoutes)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
}

func newUploadStore(ctx context.Context, cfg config.Config) (uploads.Store, error) {
	if cfg.UploadBackend == "s3" {
		return uploads.NewS3Store(ctx, cfg.S3Bucket, cfg.S3PublicBase)
	}
	return uploads.NewLocalStore(cfg.UploadDir, "/uploads")
}
