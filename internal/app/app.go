package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"quiz_stats_backend/internal/config"
	"quiz_stats_backend/internal/controller"
	"quiz_stats_backend/internal/event"
	"quiz_stats_backend/internal/repository"
	"quiz_stats_backend/internal/service"
	"quiz_stats_backend/internal/util"
	"quiz_stats_backend/pkg/cache"
	"quiz_stats_backend/pkg/configwatcher"
	"quiz_stats_backend/pkg/database"
	"quiz_stats_backend/pkg/logger"
	"quiz_stats_backend/pkg/monitoring"
	"quiz_stats_backend/pkg/scheduler"
	"quiz_stats_backend/pkg/security"
	"quiz_stats_backend/pkg/tracing"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	ConfigDir       string
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	Publisher       event.Publisher
	Scheduler       *scheduler.Scheduler
	services        *services
	configCallbacks []func(*config.Config)
	tracerProvider  *sdktrace.TracerProvider
	stopWatcher     context.CancelFunc
}

type repositories struct {
	performance *repository.PerformanceRepository
	periodic    *repository.PeriodicStatisticsRepository
	badge       *repository.BadgeRepository
}

type services struct {
	settings   *service.ConfigSettingsProvider
	storage    *service.StorageService
	statistics *service.StatisticsService
	badge      *service.BadgeService
	rollup     *service.RollupService
	quiz       *service.QuizService
}

type controllers struct {
	statistics *controller.StatisticsController
	badge      *controller.BadgeController
	quiz       *controller.QuizController
	level      *controller.LevelController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		performance: repository.NewPerformanceRepository(db),
		periodic:    repository.NewPeriodicStatisticsRepository(db),
		badge:       repository.NewBadgeRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	s.settings = service.NewConfigSettingsProvider(cfg)
	a.RegisterConfigCallback(s.settings.Reload)

	storage, err := service.NewStorageService(cfg)
	if err != nil {
		// 图片 URL 退化为原始 key，上传接口返回 503
		logger.L().Warn("Storage provider unavailable", zap.String("type", cfg.Storage.Type), zap.Error(err))
	} else {
		s.storage = storage
	}

	var statsCache cache.Cache = cache.Nop{}
	if a.Redis != nil {
		statsCache = cache.NewRedisCache(a.Redis, cfg.Cache.Namespace)
	}

	s.statistics = service.NewStatisticsService(repos.performance, statsCache, cfg.Cache.StatsTTL())
	s.badge = service.NewBadgeService(repos.badge, repos.performance, s.settings, a.Publisher, s.storage)
	s.rollup = service.NewRollupService(repos.performance, repos.periodic, a.Publisher)
	s.quiz = service.NewQuizService(s.statistics, s.badge, s.settings)

	return s
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		statistics: controller.NewStatisticsController(s.statistics, s.rollup),
		badge:      controller.NewBadgeController(s.badge, s.storage),
		quiz:       controller.NewQuizController(s.quiz),
		level:      controller.NewLevelController(s.settings),
		health:     controller.NewHealthController(a.DB, a.Redis),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) initPublisher(cfg *config.Config) event.Publisher {
	if !cfg.Events.Enabled {
		return event.Nop{}
	}
	p, err := event.NewAMQPPublisher(cfg.Events.AMQPURL, cfg.Events.Exchange)
	if err != nil {
		logger.Log.Warn("Event publisher unavailable, events disabled", zap.Error(err))
		return event.Nop{}
	}
	logger.Log.Info("Event publisher connected", zap.String("exchange", cfg.Events.Exchange))
	return p
}

func (a *App) startBackgroundTasks(s *services) {
	if a.ConfigDir != "" {
		ctx, cancel := context.WithCancel(context.Background())
		a.stopWatcher = cancel
		go func() {
			err := configwatcher.WatchConfig(ctx, a.ConfigDir, func(newCfg *config.Config) {
				for _, cb := range a.configCallbacks {
					cb(newCfg)
				}
			})
			if err != nil {
				logger.Log.Error("Config watcher stopped", zap.Error(err))
			}
		}()
	}

	if !a.Config.Schedule.Enabled {
		return
	}

	a.Scheduler = scheduler.New(logger.Log, time.Local)
	if err := a.Scheduler.Register("weekly_statistics", a.Config.Schedule.Weekly, s.rollup.RunWeekly); err != nil {
		logger.Log.Fatal("Failed to register weekly roll-up", zap.Error(err))
	}
	if err := a.Scheduler.Register("monthly_statistics", a.Config.Schedule.Monthly, s.rollup.RunMonthly); err != nil {
		logger.Log.Fatal("Failed to register monthly roll-up", zap.Error(err))
	}
	a.Scheduler.Start()
}

func NewApp(cfg *config.Config, configDir string) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	migrate := cfg.Server.Mode != "release" || cfg.ForceMigrate
	db, err := database.InitDB(&cfg.Database, migrate)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	app := &App{
		Config:    cfg,
		ConfigDir: configDir,
		DB:        db,
	}
	if cfg.MigrateOnly {
		return app
	}

	if cfg.Redis.Enabled {
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			// 缓存只是加速，Redis 不可用时直接读库
			logger.Log.Warn("Redis unavailable, statistics cache disabled", zap.Error(err))
		} else {
			app.Redis = rdb
		}
	}

	app.Publisher = app.initPublisher(cfg)

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg)
	app.services = services

	// 监控初始化
	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("quiz-stats", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracerProvider = tp
	}

	return app
}

// Serve 注册路由并启动后台任务，RunRollup 等一次性命令不需要
func (a *App) Serve() {
	if a.Config.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	a.Router = a.buildRouter()
	a.startBackgroundTasks(a.services)
	a.Run()
}

func (a *App) buildRouter() *gin.Engine {
	controllers := a.initControllers(a.services)

	router := gin.Default()
	a.setupMiddlewares(router, a.Config)
	a.registerRoutes(router, controllers, a.Config)

	if a.Config.Storage.Type == util.StorageLocal {
		router.Static("/uploads", a.Config.Storage.LocalPath)
	}
	return router
}

// RunRollup 立即执行一次周期统计（weekly | monthly）
func (a *App) RunRollup(ctx context.Context, periodType string) error {
	switch periodType {
	case "weekly":
		return a.services.rollup.RunWeekly(ctx)
	case "monthly":
		return a.services.rollup.RunMonthly(ctx)
	default:
		return fmt.Errorf("%w: %q", util.ErrInvalidPeriodType, periodType)
	}
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	a.Close(ctx)
	logger.Log.Info("Server exiting")
}

// Close 停止后台任务并释放连接
func (a *App) Close(ctx context.Context) {
	if a.stopWatcher != nil {
		a.stopWatcher()
	}
	if a.Scheduler != nil {
		a.Scheduler.Stop(ctx)
	}
	if a.Publisher != nil {
		a.Publisher.Close()
	}
	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
