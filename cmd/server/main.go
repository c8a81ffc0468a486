package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/sharda-hr/performance-service/internal/cache"
	"github.com/sharda-hr/performance-service/internal/config"
	"github.com/sharda-hr/performance-service/internal/handlers"
	"github.com/sharda-hr/performance-service/internal/middleware"
	"github.com/sharda-hr/performance-service/internal/repositories/postgres"
	"github.com/sharda-hr/performance-service/internal/services"
	"github.com/sharda-hr/performance-service/internal/utils"
	"github.com/sharda-hr/performance-service/internal/validator"
	"github.com/sharda-hr/performance-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
	} else {
		logger = utils.NewDevelopmentLogger()
	}
	slogLogger := utils.ToSlogLogger(logger)

	location, err := cfg.Location()
	if err != nil {
		logger.Error("Failed to resolve timezone", "error", err)
		return
	}

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		return
	}
	if err := pkg.AutoMigrate(db); err != nil {
		logger.Error("Failed to migrate database schema", "error", err)
		return
	}

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Error("Failed to connect to Redis", "error", err)
		return
	}
	defer redisClient.Close()
	cacheService := cache.NewRedisCache(redisClient, slogLogger)

	publisher, err := cfg.Events.CreateEventPublisher(slogLogger)
	if err != nil {
		logger.Error("Failed to create event publisher", "error", err)
		return
	}
	defer publisher.Close()

	repo := postgres.NewRepository(db)
	defer repo.Close()

	serviceManager := services.NewServiceManager(services.ManagerConfig{
		Repo:      repo,
		Cache:     cacheService,
		Publisher: publisher,
		Validator: validator.New(),
		Logger:    slogLogger,
		Location:  location,
	})

	middleware.InitCasdoor(cfg.Casdoor)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(serviceManager, logger)
	handlerManager.SetupRoutes(router, middleware.Auth(logger))

	logger.Info("Starting performance service",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"timezone", cfg.Timezone)

	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Error("Server exited", "error", err)
	}
}
