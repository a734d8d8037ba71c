package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ajovest/ajovest-console/internal/admins"
	"github.com/ajovest/ajovest-console/internal/affiliates"
	"github.com/ajovest/ajovest-console/internal/app"
	"github.com/ajovest/ajovest-console/internal/audit"
	"github.com/ajovest/ajovest-console/internal/auth"
	"github.com/ajovest/ajovest-console/internal/authz"
	"github.com/ajovest/ajovest-console/internal/content"
	"github.com/ajovest/ajovest-console/internal/dashboard"
	"github.com/ajovest/ajovest-console/internal/groups"
	"github.com/ajovest/ajovest-console/internal/members"
	"github.com/ajovest/ajovest-console/internal/observability"
	"github.com/ajovest/ajovest-console/internal/payouts"
	"github.com/ajovest/ajovest-console/internal/platform/cache"
	"github.com/ajovest/ajovest-console/internal/platform/db"
	"github.com/ajovest/ajovest-console/internal/platform/upstream"
	"github.com/ajovest/ajovest-console/internal/session"
	"github.com/ajovest/ajovest-console/internal/shared"
	"github.com/ajovest/ajovest-console/internal/tickets"
	"github.com/ajovest/ajovest-console/internal/transactions"
	"github.com/ajovest/ajovest-console/internal/view"
	"github.com/ajovest/ajovest-console/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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
		logger.Error("connect postgres", slog.Any("error", err))
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
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	metrics := observability.NewMetrics()

	api, err := upstream.New(cfg.APIBaseURL, cfg.APITimeout, sessionStore, logger)
	if err != nil {
		logger.Error("configure platform api client", slog.Any("error", err))
		os.Exit(1)
	}
	api.WithMetrics(metrics)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}
	render := &view.Renderer{Logger: logger, Engine: templates, CSRF: csrfManager}

	authzMiddleware := authz.Middleware{
		Logger: logger,
		CurrentRole: func(ctx context.Context) (authz.Role, bool) {
			return session.RoleOf(session.FromContext(ctx))
		},
		Denied: render.Denied(),
	}

	auditTrail := audit.NewLogger(pool)

	dashboardService := dashboard.NewService(api, redisClient, logger)
	defer dashboardService.Close()

	authHandler := auth.NewHandler(logger, auth.NewService(api), sessionStore, sessionRegistry, render, metrics, cfg.SessionDurableTTL, cfg.IsProduction())
	dashboardHandler := dashboard.NewHandler(logger, dashboardService, render, authzMiddleware)
	membersHandler := members.NewHandler(logger, members.NewService(api), render, auditTrail, authzMiddleware).
		WithStatsInvalidator(dashboardService.Invalidate)
	groupsHandler := groups.NewHandler(logger, groups.NewService(api), render, authzMiddleware)
	transactionsHandler := transactions.NewHandler(logger, transactions.NewService(api), render, authzMiddleware)
	payoutsHandler := payouts.NewHandler(logger, payouts.NewService(api), render, auditTrail, authzMiddleware).
		WithStatsInvalidator(dashboardService.Invalidate)
	ticketsHandler := tickets.NewHandler(logger, tickets.NewService(api), render, auditTrail, authzMiddleware)
	affiliatesHandler := affiliates.NewHandler(logger, affiliates.NewService(api), render, auditTrail, authzMiddleware)
	contentHandler := content.NewHandler(logger, content.NewService(api), render, auditTrail, authzMiddleware)
	adminsHandler := admins.NewHandler(logger, admins.NewService(api), sessionRegistry, render, auditTrail, authzMiddleware)
	auditHandler := audit.NewHandler(logger, auditTrail, render, authzMiddleware)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		SessionStore:       sessionStore,
		CSRFManager:        csrfManager,
		AuthHandler:        authHandler,
		DashboardHandler:   dashboardHandler,
		MembersHandler:     membersHandler,
		GroupsHandler:      groupsHandler,
		TransactionHandler: transactionsHandler,
		PayoutsHandler:     payoutsHandler,
		TicketsHandler:     ticketsHandler,
		AffiliatesHandler:  affiliatesHandler,
		ContentHandler:     contentHandler,
		AdminsHandler:      adminsHandler,
		AuditHandler:       auditHandler,
		JobsHandler:        jobsHandler,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
