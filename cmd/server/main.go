package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"

	rediscache "github.com/ogurasousui/jobboard-clean-arch/internal/adapters/cache/redis"
	"github.com/ogurasousui/jobboard-clean-arch/internal/adapters/http/handler"
	"github.com/ogurasousui/jobboard-clean-arch/internal/adapters/http/middleware"
	"github.com/ogurasousui/jobboard-clean-arch/internal/adapters/repository/postgres"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/application"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/company"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/job"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/search"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/user"
	"github.com/ogurasousui/jobboard-clean-arch/internal/platform/cache"
	"github.com/ogurasousui/jobboard-clean-arch/internal/platform/config"
	pg "github.com/ogurasousui/jobboard-clean-arch/internal/platform/db/postgres"
	"github.com/ogurasousui/jobboard-clean-arch/internal/platform/logger"
	"github.com/ogurasousui/jobboard-clean-arch/internal/platform/scheduler"
	"github.com/ogurasousui/jobboard-clean-arch/internal/platform/server"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.Init(cfg.Log.Env)
	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	gin.SetMode(cfg.Server.Mode)

	dbPool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	txManager := pg.NewTransactionManager(dbPool,
		pg.WithIsolation(pgx.Serializable),
		pg.WithRetries(cfg.Database.Retries()),
	)
	paging := search.Defaults{
		Page:    cfg.Pagination.Page(),
		Size:    cfg.Pagination.DefaultSize,
		MaxSize: cfg.Pagination.MaxSize,
	}

	var openJobs job.OpenJobsCache
	if cfg.Redis.URL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			return err
		}
		defer client.Close()
		openJobs = rediscache.NewOpenJobsCache(client, cfg.Redis.OpenJobsTTL)
		log.Info("open jobs cache enabled", "ttl", cfg.Redis.OpenJobsTTL.String())
	}

	userRepo := postgres.NewUserRepository(dbPool)
	jobRepo := postgres.NewJobRepository(dbPool)

	userSvc := user.NewService(userRepo, nil)
	companySvc := company.NewService(postgres.NewCompanyRepository(dbPool), nil, txManager, paging)
	jobSvc := job.NewService(jobRepo, nil, txManager, paging, openJobs)
	applicationSvc := application.NewService(postgres.NewApplicationRepository(dbPool), jobRepo, nil, txManager, paging)

	checkDB := func(ctx context.Context) error {
		return pg.Probe(ctx, dbPool, 0)
	}

	validator := handler.NewValidator()
	auth := middleware.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Issuer, userSvc)
	router := handler.NewRouter(handler.RouterDeps{
		Jobs:         handler.NewJobHandler(jobSvc, validator),
		Applications: handler.NewApplicationHandler(applicationSvc, validator),
		Companies:    handler.NewCompanyHandler(companySvc, validator),
		Health:       handler.NewHealthHandler(checkDB),
		Accounts: handler.NewAccountHandler(userSvc, validator, handler.TokenConfig{
			Secret: cfg.Auth.JWTSecret,
			Issuer: cfg.Auth.Issuer,
			TTL:    cfg.Auth.TokenTTL,
		}),
		Auth:        auth.Middleware(),
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	srv := server.New(cfg.Server.HTTPAddr, cfg.Server.GRPCAddr, router)

	sched := scheduler.New(log)
	if err := sched.Register("open_jobs_refresh", cfg.Stats.RefreshSpec, func(ctx context.Context) error {
		_, err := jobSvc.RefreshOpenJobs(ctx)
		return err
	}); err != nil {
		return err
	}
	if err := sched.Register("health_probe", cfg.Stats.HealthSpec, func(ctx context.Context) error {
		err := checkDB(ctx)
		srv.SetServing(err == nil)
		return err
	}); err != nil {
		return err
	}

	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		sched.Stop(stopCtx)
	}()

	log.Info("server listening", "http", cfg.Server.HTTPAddr, "grpc", cfg.Server.GRPCAddr)
	return srv.Run(ctx)
}
