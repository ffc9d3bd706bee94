package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"edu_assessment_backend/internal/config"
	"edu_assessment_backend/internal/controller"
	"edu_assessment_backend/internal/repository"
	"edu_assessment_backend/internal/service"
	"edu_assessment_backend/pkg/database"
	"edu_assessment_backend/pkg/logger"
	"edu_assessment_backend/pkg/monitoring"
	"edu_assessment_backend/pkg/security"
	"edu_assessment_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	workerCancel    context.CancelFunc
	shutdownHooks   []func(context.Context) error
	configCallbacks []func(*config.Config)
}

type repositories struct {
	question   *repository.QuestionBankRepository
	assessment *repository.AssessmentRepository
	attempt    *repository.AttemptRepository
	mastery    *repository.MasteryRepository
}

type services struct {
	storage       *service.StorageService
	resultExport  *service.ResultExportService
	mastery       *service.MasteryService
	masteryWorker *service.MasteryWorker
	assessment    *service.AssessmentService
	attempt       *service.AttemptService
}

type controllers struct {
	assessment *controller.AssessmentController
	attempt    *controller.AttemptController
	grading    *controller.GradingController
	mastery    *controller.MasteryController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ReloadConfig 热更新配置，逐个通知注册的回调
func (a *App) ReloadConfig(cfg *config.Config) {
	a.Config = cfg
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
	logger.Log.Info("Config reloaded")
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		question:   repository.NewQuestionBankRepository(db),
		assessment: repository.NewAssessmentRepository(db),
		attempt:    repository.NewAttemptRepository(db),
		mastery:    repository.NewMasteryRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.resultExport = service.NewResultExportService(s.storage, cfg.Export.Enabled)
	s.mastery = service.NewMasteryService(repos.mastery, cfg.Mastery.MinQuestions)
	s.masteryWorker = service.NewMasteryWorker(rdb, s.mastery)
	s.assessment = service.NewAssessmentService(repos.assessment)
	s.attempt = service.NewAttemptService(
		repos.attempt,
		repos.assessment,
		repos.question,
		s.masteryWorker,
		s.resultExport,
	)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		assessment: controller.NewAssessmentController(s.assessment),
		attempt:    controller.NewAttemptController(s.attempt),
		grading:    controller.NewGradingController(s.attempt),
		mastery:    controller.NewMasteryController(s.mastery),
		health:     controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 100000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) startBackgroundTasks(s *services) {
	if !a.Config.Mastery.WorkerEnabled {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.workerCancel = cancel
	go s.masteryWorker.Run(ctx)
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// 掌握度队列退化为进程内执行，服务仍可启动
		logger.Log.Warn("Failed to initialize redis, mastery queue degraded", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	// 监控初始化
	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("assessment-engine", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		// 追踪在优雅关闭时再刷新导出
		app.shutdownHooks = append(app.shutdownHooks, tp.Shutdown)
	}

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/exports", cfg.Storage.LocalPath)
	}

	app.startBackgroundTasks(services)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// 关闭服务
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	a.shutdown(ctx)
	log.Println("Server exiting")
}

// shutdown 停止后台掌握度队列并执行注册的关闭钩子
func (a *App) shutdown(ctx context.Context) {
	if a.workerCancel != nil {
		a.workerCancel()
	}
	for _, hook := range a.shutdownHooks {
		if err := hook(ctx); err != nil {
			logger.Log.Error("Shutdown hook failed", zap.Error(err))
		}
	}
	logger.Log.Sync()
}
