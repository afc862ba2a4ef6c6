// internal/app/server.go
package app

import (
	"context"
	"fmt"
	"log"

	"beatreach-service/internal/config"
	"beatreach-service/internal/db"
	adminHandler "beatreach-service/internal/handlers/admin"
	contactHandler "beatreach-service/internal/handlers/contacts"
	segmentHandler "beatreach-service/internal/handlers/segments"
	syncHandler "beatreach-service/internal/handlers/sync"
	"beatreach-service/internal/middleware"
	"beatreach-service/internal/pkg/jwt"
	"beatreach-service/internal/pkg/ratelimit"
	"beatreach-service/internal/repository/postgres"
	contactsvc "beatreach-service/internal/service/contacts"
	syncsvc "beatreach-service/internal/service/contactsync"
	segmentsvc "beatreach-service/internal/service/segment"
	taggingsvc "beatreach-service/internal/service/tagging"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.New()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start() error {
	ctx := context.Background()

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(ctx, s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       s.cfg.RedisDB,
		PoolSize: 10,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	// ----- Logger -----
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()
	s.logger = logger

	// ----- JWT Verifier -----
	verifier, err := jwt.BuildVerifier(s.cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to load JWT verifier: %w", err)
	}

	// ----- Rate Limiter -----
	rateLimiter := ratelimit.NewLimiter(redisClient)

	// ----- Repositories -----
	contactRepo := postgres.NewContactRepository(pool)
	tagRepo := postgres.NewTagRepository(pool)
	activityRepo := postgres.NewActivityRepository(pool)
	catalogRepo := postgres.NewCatalogRepository(pool)

	// ----- Services -----
	segmentService := segmentsvc.NewService(tagRepo, contactRepo, redisClient, s.cfg.SegmentCacheTTL, logger)
	taggingService := taggingsvc.NewService(tagRepo, contactRepo, segmentService, logger)
	syncService := syncsvc.NewService(contactRepo, activityRepo, catalogRepo, taggingService, logger)
	contactService := contactsvc.NewService(contactRepo, activityRepo, logger)

	// ----- Handlers -----
	syncHandlerInst := syncHandler.NewSyncHandler(syncService)
	segmentHandlerInst := segmentHandler.NewSegmentHandler(segmentService)
	contactHandlerInst := contactHandler.NewContactHandler(contactService)
	adminHandlerInst := adminHandler.NewAdminHandler(syncService)

	// ----- Middlewares -----
	authMiddleware := middleware.NewAuthMiddleware(verifier)
	rateLimitMiddleware := middleware.RateLimitMiddleware(rateLimiter, s.cfg.SyncRateLimit, s.cfg.SyncRateWindow, logger)

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(),
	)

	// ----- Router -----
	handlers := &Handlers{
		SyncHandler:    syncHandlerInst,
		SegmentHandler: segmentHandlerInst,
		ContactHandler: contactHandlerInst,
		AdminHandler:   adminHandlerInst,
		AuthMiddleware: authMiddleware,
		SyncRateLimit:  rateLimitMiddleware,
	}
	SetupRouter(s.engine, handlers)

	// ----- Start HTTP -----
	log.Printf("server running on %s", s.cfg.HTTPAddr)
	return s.engine.Run(s.cfg.HTTPAddr)
}
