package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/lab-admin-api/api/swagger"
	"github.com/noah-isme/lab-admin-api/internal/handler"
	"github.com/noah-isme/lab-admin-api/internal/middleware"
	"github.com/noah-isme/lab-admin-api/internal/models"
	"github.com/noah-isme/lab-admin-api/internal/notify"
	"github.com/noah-isme/lab-admin-api/internal/repository"
	"github.com/noah-isme/lab-admin-api/internal/service"
	"github.com/noah-isme/lab-admin-api/pkg/cache"
	"github.com/noah-isme/lab-admin-api/pkg/config"
	"github.com/noah-isme/lab-admin-api/pkg/database"
	"github.com/noah-isme/lab-admin-api/pkg/export"
	"github.com/noah-isme/lab-admin-api/pkg/jobs"
	"github.com/noah-isme/lab-admin-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/lab-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/lab-admin-api/pkg/middleware/requestid"
	"github.com/noah-isme/lab-admin-api/pkg/scheduler"
	"github.com/noah-isme/lab-admin-api/pkg/storage"
)

// @title Lab Admin API
// @version 1.0
// @description Attendance scheduling and geofenced check-in engine for lab memberships.
// @BasePath /api/v1
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logr.Sync() }()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer func() { _ = redisClient.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	campaignRepo := repository.NewCampaignRepository(db)
	triggerRepo := repository.NewTriggerRepository(db)
	checkinRepo := repository.NewCheckInRepository(db)
	rosterRepo := repository.NewRosterRepository(db)
	leaveRepo := repository.NewLeaveRepository(db)
	pointsRepo := repository.NewPointsRepository(db)
	reportRepo := repository.NewReportRepository(db)

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	authSvc := service.NewAuthService(cfg.JWT.Secret, logr)
	audienceSvc := service.NewAudienceService(rosterRepo, cfg.Attendance.DefaultGrades, logr)
	notifier := notify.NewRedisNotifier(redisClient, cfg.Notifier.Channel, logr)

	dispatchSvc := service.NewDispatchService(triggerRepo, campaignRepo, audienceSvc, notifier,
		cfg.Attendance.SigningWindow, metricsSvc, logr)
	triggerSvc := service.NewTriggerService(campaignRepo, triggerRepo, dispatchSvc, nil,
		cfg.Attendance.TriggerWindowStart, cfg.Attendance.TriggerWindowEnd, metricsSvc, logr)
	penaltySvc := service.NewPenaltyService(triggerRepo, campaignRepo, audienceSvc, checkinRepo,
		leaveRepo, pointsRepo, cfg.Attendance.SigningWindow, metricsSvc, logr)
	checkinSvc := service.NewCheckInService(checkinRepo, triggerRepo, campaignRepo, validate, metricsSvc, logr)
	campaignSvc := service.NewCampaignService(campaignRepo, validate, logr)

	var reportSvc *service.ReportService
	var reportQueue *jobs.Queue
	if cfg.Reports.Enabled {
		localStorage, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
		if err != nil {
			logr.Fatal("failed to init report storage", zap.Error(err))
		}
		signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
		exportSvc := service.NewExportService(campaignRepo, checkinRepo, audienceSvc, rosterRepo,
			leaveRepo, localStorage, signer, service.ExportConfig{
				APIPrefix: cfg.APIPrefix,
				ResultTTL: cfg.Reports.SignedURLTTL,
			}, logr, export.NewCSVExporter(), export.NewPDFExporter())

		worker := service.NewReportWorker(reportRepo, exportSvc, cfg.Reports.WorkerRetries, logr)
		reportQueue = jobs.NewQueue("reports", worker.Handle, jobs.QueueConfig{
			Workers:    cfg.Reports.WorkerConcurrency,
			MaxRetries: cfg.Reports.WorkerRetries,
			Logger:     logr,
		})
		reportQueue.Start(ctx)
		defer reportQueue.Stop()

		reportSvc = service.NewReportService(reportRepo, campaignRepo, reportQueue, exportSvc, logr,
			service.ReportServiceConfig{
				ResultTTL:       cfg.Reports.SignedURLTTL,
				CleanupInterval: cfg.Reports.CleanupInterval,
				MaxRetries:      cfg.Reports.WorkerRetries,
			})
		reportSvc.RecoverPendingJobs(ctx)
		reportSvc.StartCleanup(ctx)
	}

	campaignHandler := handler.NewCampaignHandler(campaignSvc, triggerSvc)
	checkinHandler := handler.NewCheckInHandler(checkinSvc)
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

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	authed := api.Group("", middleware.JWT(authSvc))

	campaigns := authed.Group("/campaigns")
	campaigns.GET("", campaignHandler.List)
	campaigns.GET("/:id", campaignHandler.Get)

	adminCampaigns := campaigns.Group("", middleware.RequireRoles(models.RoleAdmin))
	adminCampaigns.POST("", campaignHandler.Create)
	adminCampaigns.PUT("/:id", campaignHandler.Update)
	adminCampaigns.DELETE("/:id", campaignHandler.Delete)
	adminCampaigns.POST("/:id/force-trigger", campaignHandler.ForceTrigger)

	authed.POST("/checkins", checkinHandler.Submit)

	if reportSvc != nil {
		reportHandler := handler.NewReportHandler(reportSvc)
		authed.POST("/reports/generate", reportHandler.GenerateReport)
		authed.GET("/reports/status/:id", reportHandler.ReportStatus)
		// Download is authenticated by the signed token itself.
		api.GET("/export/:token", reportHandler.DownloadReport)
	}

	sched := scheduler.New(logr)
	sched.Register("trigger-generate", cfg.Attendance.GenerateCronSpec, func(ctx context.Context) {
		day := time.Now().UTC().Truncate(24 * time.Hour)
		if _, err := triggerSvc.GenerateForDate(ctx, day); err != nil {
			logr.Error("trigger generation sweep failed", zap.Error(err))
		}
	})
	sched.Register("callup-dispatch", cfg.Attendance.DispatchCronSpec, func(ctx context.Context) {
		if _, err := dispatchSvc.DispatchDue(ctx, time.Now().UTC()); err != nil {
			logr.Error("call-up dispatch sweep failed", zap.Error(err))
		}
	})
	sched.Register("penalty-enforce", cfg.Attendance.EnforceCronSpec, func(ctx context.Context) {
		if _, err := penaltySvc.EnforceDue(ctx, time.Now().UTC()); err != nil {
			logr.Error("penalty enforcement sweep failed", zap.Error(err))
		}
	})
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Info("server starting",
			zap.Int("port", cfg.Port),
			zap.String("env", cfg.Env),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
