package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adaptiq/assessment-engine/internal/advisor"
	"github.com/adaptiq/assessment-engine/internal/cache"
	"github.com/adaptiq/assessment-engine/internal/config"
	"github.com/adaptiq/assessment-engine/internal/generator"
	"github.com/adaptiq/assessment-engine/internal/grader"
	"github.com/adaptiq/assessment-engine/internal/handlers"
	"github.com/adaptiq/assessment-engine/internal/repositories"
	"github.com/adaptiq/assessment-engine/internal/repositories/postgres"
	"github.com/adaptiq/assessment-engine/internal/services"
	"github.com/adaptiq/assessment-engine/internal/syllabus"
	"github.com/adaptiq/assessment-engine/internal/utils"
	"github.com/adaptiq/assessment-engine/pkg"
	"github.com/gin-gonic/gin"
	"github.com/sashabaranov/go-openai"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		os.Exit(1)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
		gin.SetMode(gin.ReleaseMode)
	} else {
		logger = utils.NewDevelopmentLogger()
	}
	slogLogger := utils.ToSlogLogger(logger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.LogError(err, "Failed to connect to database")
		os.Exit(1)
	}
	if err := pkg.Migrate(db); err != nil {
		logger.LogError(err, "Failed to run database migrations")
		os.Exit(1)
	}

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.LogError(err, "Failed to connect to Redis")
		os.Exit(1)
	}
	defer redisClient.Close()

	publisher, err := cfg.Events.CreateEventPublisher(slogLogger)
	if err != nil {
		logger.LogError(err, "Failed to create event publisher")
		os.Exit(1)
	}
	defer publisher.Close()

	openaiClient := openai.NewClient(cfg.OpenAIAPIKey)

	repo := postgres.NewRepository(db)
	sessionStore := repositories.NewRedisSessionStore(redisClient, cfg.SessionTTL)
	cacheService := cache.NewRedisCache(redisClient, slogLogger)
	validator := utils.NewValidator()

	serviceManager := services.NewServiceManager(services.Dependencies{
		Repo:               repo,
		Sessions:           sessionStore,
		Cache:              cacheService,
		Publisher:          publisher,
		Generator:          generator.NewOpenAIGenerator(openaiClient, cfg.GeneratorModel, cfg.GeneratorTimeout, slogLogger),
		Grader:             grader.NewOpenAIGrader(openaiClient, cfg.GraderModel, cfg.GraderTimeout, slogLogger),
		Advisor:            advisor.NewOpenAIAdvisor(openaiClient, cfg.GraderModel, cfg.GraderTimeout, slogLogger),
		Catalog:            syllabus.NewDefaultCatalog(),
		Logger:             slogLogger,
		Validator:          validator,
		StudyMinutesPerDay: cfg.StudyMinutesPerDay,
	})

	router := gin.New()
	router.Use(utils.LoggerMiddleware(logger), gin.Recovery())

	handlerManager := handlers.NewHandlerManager(serviceManager, validator, logger)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		logger.Info("Shutting down server")
		if err := server.Shutdown(ctx); err != nil {
			logger.LogError(err, "Server forced to shutdown")
		}
	}()

	logger.Info("Starting assessment engine", "port", cfg.Port, "environment", cfg.Environment)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.LogError(err, "Server failed to start")
		os.Exit(1)
	}
}
