package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/jlcruz-dev/class-scheduler-api/api/swagger"
	"github.com/jlcruz-dev/class-scheduler-api/internal/handler"
	"github.com/jlcruz-dev/class-scheduler-api/internal/middleware"
	"github.com/jlcruz-dev/class-scheduler-api/internal/repository"
	"github.com/jlcruz-dev/class-scheduler-api/internal/service"
	"github.com/jlcruz-dev/class-scheduler-api/pkg/cache"
	"github.com/jlcruz-dev/class-scheduler-api/pkg/config"
	"github.com/jlcruz-dev/class-scheduler-api/pkg/database"
	"github.com/jlcruz-dev/class-scheduler-api/pkg/logger"
	corsmiddleware "github.com/jlcruz-dev/class-scheduler-api/pkg/middleware/cors"
	reqidmiddleware "github.com/jlcruz-dev/class-scheduler-api/pkg/middleware/requestid"
)

// @title Class Scheduler API
// @version 1.0.0
// @description Conflict-free session assignment for teacher/classroom pairs
// @BasePath /
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.Scheduler.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, running without directory cache", zap.Error(err))
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Scheduler.DirectoryCacheTTL, logr, cfg.Scheduler.CacheEnabled)

	validate := validator.New()

	teacherRepo := repository.NewTeacherRepository(db)
	classroomRepo := repository.NewClassroomRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)

	teacherSvc := service.NewTeacherService(teacherRepo, cacheSvc, validate, logr)
	classroomSvc := service.NewClassroomService(classroomRepo, cacheSvc, validate, logr)
	scheduleSvc := service.NewScheduleService(scheduleRepo, logr)
	assignmentSvc := service.NewAssignmentService(teacherRepo, classroomRepo, scheduleRepo, cacheSvc, metricsSvc, validate, logr, cfg.Scheduler)

	teacherHandler := handler.NewTeacherHandler(teacherSvc)
	classroomHandler := handler.NewClassroomHandler(classroomSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)
	assignmentHandler := handler.NewAssignmentHandler(assignmentSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Scrape)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.GET("/teachers", teacherHandler.List)
	api.GET("/teachers/:id", teacherHandler.Get)
	api.GET("/classrooms", classroomHandler.List)
	api.GET("/classrooms/:id", classroomHandler.Get)
	api.GET("/schedules", scheduleHandler.List)
	api.GET("/schedules/:id", scheduleHandler.Get)

	guarded := api.Group("", middleware.JWT(cfg.JWT.Secret))
	guarded.POST("/teachers", teacherHandler.Create)
	guarded.PUT("/teachers/:id", teacherHandler.Update)
	guarded.DELETE("/teachers/:id", teacherHandler.Delete)
	guarded.POST("/classrooms", classroomHandler.Create)
	guarded.PUT("/classrooms/:id", classroomHandler.Update)
	guarded.DELETE("/classrooms/:id", classroomHandler.Delete)
	guarded.POST("/schedules/assign", assignmentHandler.Assign)
	guarded.DELETE("/schedules/:id", scheduleHandler.Cancel)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
