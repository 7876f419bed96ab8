package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/deul428/QA-checklist/internal/config"
	"github.com/deul428/QA-checklist/internal/middleware"
	"github.com/deul428/QA-checklist/internal/qa/entity"
	"github.com/deul428/QA-checklist/internal/qa/handler"
	"github.com/deul428/QA-checklist/internal/qa/repository"
	"github.com/deul428/QA-checklist/internal/qa/service"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// .env 로드
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	// 설정 로드
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 로거 초기화
	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting qa-checklist service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	// 데이터베이스 초기화
	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&entity.User{},
		&entity.System{},
		&entity.CheckItem{},
		&entity.ChecklistRecord{},
		&entity.ChecklistRecordLog{},
		&entity.Assignment{},
		&entity.SubstituteAssignment{},
		&entity.SubstituteChangeLog{},
		&entity.AdminLog{},
	); err != nil {
		zapLogger.Fatal("AutoMigrate failed", zap.Error(err))
	}

	// Redis 초기화 (refresh 토큰 저장소)
	rdb := initRedis(cfg.Redis)

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, rdb, cfg, zapLogger)
	handlers := handler.NewHandlers(services, cfg)

	// 미점검 알림 스케줄러 기동
	services.Scheduler.Start()
	defer services.Scheduler.Stop()

	// Gin 모드 설정
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers, cfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 우아한 종료
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	// 헬스 체크
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	api := r.Group("/api")
	{
		// 인증 (로그인 불필요)
		auth := api.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// 인증 필요
		authorized := api.Group("")
		authorized.Use(middleware.JWTAuth(cfg.JWT.Secret))
		{
			user := authorized.Group("/user")
			{
				user.GET("/me", h.User.Me)
				user.GET("/systems", h.User.Systems)
				user.GET("/search", h.User.Search)
				user.POST("/change-password", h.Auth.ChangePassword)
			}

			authorized.GET("/systems/:id/check-items", h.Checklist.CheckItems)

			checklist := authorized.Group("/checklist")
			{
				checklist.GET("/today", h.Checklist.Today)
				checklist.POST("/submit", h.Checklist.Submit)
				checklist.GET("/unchecked", h.Checklist.Unchecked)
			}

			substitute := authorized.Group("/substitute")
			{
				substitute.POST("/create", h.Substitute.Create)
				substitute.GET("/list", h.Substitute.List)
				substitute.GET("/active", h.Substitute.Active)
				substitute.DELETE("/:id", h.Substitute.Delete)
			}

			// console 권한 필요
			console := authorized.Group("/console")
			console.Use(middleware.RequireConsole())
			{
				console.GET("/stats", h.Console.Stats)
				console.GET("/fail-items", h.Console.FailItems)
				console.GET("/all-items", h.Console.AllItems)
				console.POST("/export-excel", h.Console.ExportExcel)
			}

			list := authorized.Group("/list")
			list.Use(middleware.RequireConsole())
			{
				list.GET("/systems", h.AdminList.Systems)
				list.GET("/users", h.AdminList.Users)
				list.GET("/check-items", h.AdminList.CheckItems)
				list.POST("/check-items", h.AdminList.CreateCheckItem)
				list.PUT("/check-items/:id", h.AdminList.UpdateCheckItem)
				list.DELETE("/check-items/:id", h.AdminList.DeleteCheckItem)
				list.GET("/assignments", h.AdminList.Assignments)
				list.POST("/assignments", h.AdminList.CreateAssignments)
				list.DELETE("/assignments/:id", h.AdminList.DeleteAssignment)
			}

			scheduler := authorized.Group("/scheduler")
			scheduler.Use(middleware.RequireConsole())
			{
				scheduler.POST("/test-email", h.Scheduler.ScheduleTestEmail)
				scheduler.POST("/test-email-now", h.Scheduler.SendTestEmailNow)
				scheduler.GET("/status", h.Scheduler.Status)
				scheduler.DELETE("/jobs/:id", h.Scheduler.CancelJob)
			}
		}
	}
}
