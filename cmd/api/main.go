package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/civicfix/civicfix-api/internal/handler"
	"github.com/civicfix/civicfix-api/internal/repository"
	"github.com/civicfix/civicfix-api/internal/router"
	"github.com/civicfix/civicfix-api/internal/service"
	"github.com/civicfix/civicfix-api/pkg/cache"
	"github.com/civicfix/civicfix-api/pkg/config"
	"github.com/civicfix/civicfix-api/pkg/database"
	"github.com/civicfix/civicfix-api/pkg/export"
	"github.com/civicfix/civicfix-api/pkg/logger"
	corsmiddleware "github.com/civicfix/civicfix-api/pkg/middleware/cors"
	reqidmiddleware "github.com/civicfix/civicfix-api/pkg/middleware/requestid"
	"github.com/civicfix/civicfix-api/pkg/storage"
)

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

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// Redis only backs rate limiting; the API degrades without it.
		logr.Sugar().Warnw("redis unavailable, rate limiting disabled", "error", err)
		redisClient = nil
	}

	uploads, err := storage.NewLocalStorage(cfg.Uploads.Dir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare uploads directory", "error", err)
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	issueRepo := repository.NewIssueRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            "civicfix-api",
	})
	issueSvc := service.NewIssueService(issueRepo, ledgerRepo, validate, logr, cfg.Triage)
	triageSvc := service.NewTriageService(ledgerRepo, issueRepo, metricsSvc, logr, cfg.Triage)
	exportSvc := service.NewExportService(issueRepo, export.NewPDFExporter(), logr, cfg.Triage)
	dashSvc := service.NewDashboardService(statsRepo, ledgerRepo, export.NewCSVExporter(), logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	router.Register(r, router.Deps{
		Config:    cfg,
		Logger:    logr,
		Redis:     redisClient,
		Auth:      authSvc,
		Triage:    triageSvc,
		Metrics:   metricsSvc,
		AuthH:     handler.NewAuthHandler(authSvc),
		IssueH:    handler.NewIssueHandler(issueSvc, triageSvc, uploads, cfg.Uploads.MaxSizeBytes, logr),
		ExportH:   handler.NewExportHandler(exportSvc),
		DashH:     handler.NewDashboardHandler(dashSvc),
		UploadDir: cfg.Uploads.Dir,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
