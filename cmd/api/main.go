package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/crmkit/crm-authz/internal/api/http"
	"github.com/crmkit/crm-authz/internal/api/http/handlers"
	"github.com/crmkit/crm-authz/internal/auth"
	"github.com/crmkit/crm-authz/internal/config"
	"github.com/crmkit/crm-authz/internal/events"
	"github.com/crmkit/crm-authz/internal/observability"
	"github.com/crmkit/crm-authz/internal/persistence"
	"github.com/crmkit/crm-authz/internal/policy"
	"github.com/crmkit/crm-authz/internal/repository"
	"github.com/crmkit/crm-authz/internal/service"
	"github.com/crmkit/crm-authz/internal/session"
	"github.com/crmkit/crm-authz/internal/worker"
	"github.com/crmkit/crm-authz/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Name)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()

	directory, err := persistence.OpenDirectory(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to open directory", zap.Error(err))
	}
	defer directory.Close()

	if err := directory.Migrate(ctx, migrations.FS, cfg.Postgres.RunMigrations); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	identityCache := persistence.OpenIdentityCache(ctx, cfg.Redis, logger)
	defer identityCache.Close()

	var db repository.DBTX = repository.Unavailable()
	if directory.Configured() {
		db = directory.Pool
	}

	dispatcher := events.NewInMemoryDispatcher(logger)
	worker.StartAuditWorker(dispatcher, logger)

	resolver := session.NewResolver(session.Dependencies{
		Identities: repository.NewIdentityRepository(db),
		Teams:      repository.NewTeamRepository(db),
		Redis:      identityCache.Client,
		Logger:     logger,
		Metrics:    metrics,
	}, session.Options{
		IdentityTTL:   cfg.Policy.IdentityTTL(),
		TeamCacheSize: cfg.Policy.TeamCacheSize,
		TeamCacheTTL:  cfg.Policy.TeamCacheTTL(),
		LoadTimeout:   cfg.Policy.LoadTimeout(),
	})

	evaluator := policy.New(policy.WithUrgentMode(policy.ParseUrgentMode(cfg.Policy.UrgentPriority)))
	logger.Info("policy evaluator ready", zap.String("urgent_mode", string(evaluator.Vocabulary().Mode())))

	sessionService := service.NewSessionService(*cfg, service.SessionDependencies{
		Sessions:   resolver,
		Dispatcher: dispatcher,
	})
	authMiddleware := auth.NewAuthMiddleware(sessionService.TokenManager(), resolver, dispatcher)
	enforcer := auth.NewEnforcer(evaluator, resolver, dispatcher, metrics)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"directory":      directory,
			"identity_cache": identityCache,
		}),
		Policy:         handlers.NewPolicyHandler(evaluator),
		Session:        handlers.NewSessionHandler(sessionService),
		AuthMiddleware: authMiddleware,
		Enforcer:       enforcer,
		RefreshLimiter: auth.NewRateLimiter(cfg.Auth.RefreshPerMinute, cfg.Auth.RefreshBurst),
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
