package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roh2cool/project4/internal/config"
	"github.com/roh2cool/project4/internal/domain"
	"github.com/roh2cool/project4/internal/handler"
	"github.com/roh2cool/project4/internal/monitoring"
	"github.com/roh2cool/project4/internal/repository"
	"github.com/roh2cool/project4/internal/service"
	"github.com/roh2cool/project4/internal/store"
	"github.com/roh2cool/project4/pkg/database"
	"github.com/roh2cool/project4/pkg/jwt"
	"github.com/roh2cool/project4/pkg/log"
	"github.com/roh2cool/project4/pkg/middleware"
	"github.com/roh2cool/project4/pkg/pubsub"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log.Init(cfg.Log)
	logger := log.L()

	// Connect to database using GORM
	dbConfig := &database.Config{
		Driver:          cfg.Database.Driver,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		FilePath:        cfg.Database.FilePath,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}

	db, err := database.New(dbConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}

	// Auto-migrate
	if err := database.AutoMigrate(db,
		&domain.UserModel{},
		&domain.PostModel{},
		&domain.LikeModel{},
		&domain.FollowModel{},
	); err != nil {
		logger.Fatal().Err(err).Msg("Failed to auto-migrate")
	}
	logger.Info().Msg("Database migration completed")

	// Redis-backed count cache and event bus are optional. Without them the
	// service answers every request from the database alone.
	var counts store.CountStore
	var publisher pubsub.Publisher
	if cfg.Redis.Enabled {
		countStore, err := store.NewRedisCountStore(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to redis count store")
		}
		defer countStore.Close()
		counts = countStore

		bus, err := pubsub.NewRedisPubSub(pubsub.RedisConfig{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to redis pubsub")
		}
		defer bus.Close()
		publisher = bus

		// Consume the activity channel in-process.
		activity := service.NewActivityLogger(bus)
		go func() {
			if err := activity.Run(context.Background()); err != nil {
				logger.Warn().Err(err).Msg("Activity consumer stopped")
			}
		}()

		logger.Info().Str("address", cfg.Redis.Address).Msg("Redis enabled")
	}

	// Token manager
	tokens, err := jwt.NewManager(cfg.JWT.AccessDuration, cfg.JWT.RefreshDuration, cfg.JWT.Issuer)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create token manager")
	}
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			tokens.CleanupExpiredRevocations()
		}
	}()

	// Initialize repositories
	userRepo := repository.NewGormUserRepository(db)
	postRepo := repository.NewGormPostRepository(db)
	followRepo := repository.NewGormFollowRepository(db)

	// Initialize services
	userService := service.NewUserService(userRepo, tokens)
	postService := service.NewPostService(postRepo, followRepo, counts, publisher)
	socialService := service.NewSocialService(userRepo, postRepo, followRepo, counts, publisher)

	// Initialize auth middleware
	authMiddleware := middleware.NewAuthMiddleware(tokens)

	// Initialize HTTP handler
	httpHandler := handler.NewHandler(userService, postService, socialService, authMiddleware)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery())
	r.Use(log.GinMiddleware(logger))
	r.Use(monitoring.GinMiddleware())

	monitoring.Register()

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Register routes
	httpHandler.RegisterRoutes(r)

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info().Str("address", addr).Msg("Starting server")
	if err := r.Run(addr); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}
