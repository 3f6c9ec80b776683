package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/mingshu/tutor-api/api/swagger"
	"github.com/mingshu/tutor-api/internal/handler"
	"github.com/mingshu/tutor-api/internal/middleware"
	"github.com/mingshu/tutor-api/internal/repository"
	"github.com/mingshu/tutor-api/internal/service"
	"github.com/mingshu/tutor-api/pkg/cache"
	"github.com/mingshu/tutor-api/pkg/config"
	"github.com/mingshu/tutor-api/pkg/database"
	"github.com/mingshu/tutor-api/pkg/logger"
	corsmiddleware "github.com/mingshu/tutor-api/pkg/middleware/cors"
	reqidmiddleware "github.com/mingshu/tutor-api/pkg/middleware/requestid"
)

// @title Tutor Score Tracker API
// @version 1.0.0
// @description Score tracking and trend analysis for tutored students
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	// The tracker keeps serving without a database: repositories answer
	// STORE_NOT_CONFIGURED until one is provisioned.
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		if cfg.Database.Enabled() {
			logr.Sugar().Fatalw("database connection failed", "error", err)
		}
		logr.Warn("no database configured, store operations will be unavailable")
		db = nil
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis connection failed, continuing without cache", zap.Error(err))
			redisClient = nil
		}
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	studentRepo := repository.NewStudentRepository(db)
	examRepo := repository.NewExamRepository(db)
	overrideRepo := repository.NewVideoOverrideRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	authSvc := service.NewAuthService(validate, logr, service.AuthConfig{
		AdminToken:    cfg.Admin.Token,
		SessionSecret: cfg.Admin.SessionSecret,
		SessionTTL:    cfg.Admin.SessionTTL,
		Issuer:        "tutor-api",
	})
	trendSvc := service.NewTrendService(studentRepo, examRepo, cacheRepo, metrics, cfg.Trend.CacheTTL, logr)
	studentSvc := service.NewStudentService(studentRepo, examRepo, cacheRepo, trendSvc, cfg.Trend.CacheTTL, validate, logr)
	examSvc := service.NewExamService(examRepo, studentRepo, trendSvc, cacheRepo, validate, logr)
	overrideSvc := service.NewVideoOverrideService(overrideRepo, validate, logr)
	exportSvc := service.NewExportService(trendSvc, nil, nil, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	examHandler := handler.NewExamHandler(examSvc)
	trendHandler := handler.NewTrendHandler(trendSvc, exportSvc)
	overrideHandler := handler.NewVideoOverrideHandler(overrideSvc)
	metricsHandler := handler.NewMetricsHandler(metrics, db)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	admin := api.Group("", middleware.AdminOnly(authSvc))
	admin.GET("/students", studentHandler.List)
	admin.GET("/students/:id", studentHandler.Get)
	admin.POST("/students", middleware.Audit(logr, "create", "student"), studentHandler.Create)
	admin.PUT("/students/:id", middleware.Audit(logr, "update", "student"), studentHandler.Update)

	admin.GET("/students/:id/exams", examHandler.ListByStudent)
	admin.GET("/students/:id/trend", trendHandler.Summary)
	admin.GET("/students/:id/trend/export", trendHandler.Export)

	admin.POST("/exams", middleware.Audit(logr, "create", "exam"), examHandler.Create)
	admin.GET("/exams/:id", examHandler.Get)
	admin.PUT("/exams/:id", middleware.Audit(logr, "update", "exam"), examHandler.Update)
	admin.DELETE("/exams/:id", middleware.Audit(logr, "delete", "exam"), examHandler.Delete)

	admin.GET("/video-overrides", overrideHandler.List)
	admin.GET("/video-overrides/:courseId", overrideHandler.Get)
	admin.PUT("/video-overrides/:courseId", middleware.Audit(logr, "set", "video_override"), overrideHandler.Set)
	admin.DELETE("/video-overrides/:courseId", middleware.Audit(logr, "delete", "video_override"), overrideHandler.Delete)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "store_configured", cfg.Database.Enabled())
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
