package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/ajovest/ajovest-console/internal/app"
	"github.com/ajovest/ajovest-console/internal/audit"
	"github.com/ajovest/ajovest-console/internal/dashboard"
	"github.com/ajovest/ajovest-console/internal/platform/cache"
	"github.com/ajovest/ajovest-console/internal/platform/db"
	"github.com/ajovest/ajovest-console/internal/platform/upstream"
	"github.com/ajovest/ajovest-console/internal/session"
	"github.com/ajovest/ajovest-console/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionStore := session.NewStore(redisClient, cfg.SessionSecret, cfg.SessionDurableTTL, cfg.SessionIdleTTL, logger)
	sessionRegistry := session.NewRegistry(pool)
	auditTrail := audit.NewLogger(pool)

	api, err := upstream.New(cfg.APIBaseURL, cfg.APITimeout, sessionStore, logger)
	if err != nil {
		logger.Error("configure platform api client", slog.Any("error", err))
		os.Exit(1)
	}

	statsService := dashboard.NewService(api, redisClient, logger).WithServiceToken(cfg.APIServiceToken)
	defer statsService.Close()

	sweepTask, err := jobs.NewSessionSweepTask(500)
	if err != nil {
		logger.Error("build sweep task", slog.Any("error", err))
		os.Exit(1)
	}
	pruneTask, err := jobs.NewAuditPruneTask(cfg.AuditRetention)
	if err != nil {
		logger.Error("build prune task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskSessionSweep, Handler: jobs.HandleSessionSweep(sessionStore, sessionRegistry, logger)},
			{Type: jobs.TaskStatsWarmup, Handler: jobs.HandleStatsWarmup(statsService, logger)},
			{Type: jobs.TaskAuditPrune, Handler: jobs.HandleAuditPrune(auditTrail, logger)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "*/15 * * * *", Task: sweepTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "0 * * * *", Task: jobs.NewStatsWarmupTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "30 2 * * *", Task: pruneTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
