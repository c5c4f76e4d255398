package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/request-service/internal/api/http"
	"github.com/spec-kit/request-service/internal/api/http/handlers"
	"github.com/spec-kit/request-service/internal/auth"
	"github.com/spec-kit/request-service/internal/config"
	"github.com/spec-kit/request-service/internal/notify"
	"github.com/spec-kit/request-service/internal/numbering"
	"github.com/spec-kit/request-service/internal/observability"
	"github.com/spec-kit/request-service/internal/persistence"
	"github.com/spec-kit/request-service/internal/repository"
	"github.com/spec-kit/request-service/internal/service"
	"github.com/spec-kit/request-service/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	rd := persistence.NewRedis(cfg.Redis, logger)
	defer rd.Close()

	backend, err := storage.NewLocalBackend(cfg.Storage)
	if err != nil {
		logger.Fatal("failed to init attachment storage", zap.Error(err))
	}

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	agentRepo := repository.NewAgentRepository(pool)
	requestRepo := repository.NewRequestRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	historyRepo := repository.NewHistoryRepository(pool)
	attachmentRepo := repository.NewAttachmentRepository(pool)

	runtime := config.NewRuntime(config.DefaultSettings())

	emailSender := notify.NewLogEmailSender(runtime, logger)
	messagingSender := notify.NewLogMessagingSender(runtime, logger)
	router, err := notify.NewRouter(emailSender, messagingSender, runtime, logger)
	if err != nil {
		logger.Fatal("invalid notification routing table", zap.Error(err))
	}

	audit := service.NewAuditTrail(historyRepo)
	allocator := numbering.NewRedisAllocator(rd.Client)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:  userRepo,
		AgentRepo: agentRepo,
	})
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo, agentRepo)

	lifecycleService := service.NewLifecycleService(service.LifecycleDependencies{
		RequestRepo: requestRepo,
		CommentRepo: commentRepo,
		AgentRepo:   agentRepo,
		Audit:       audit,
		Router:      router,
		Logger:      logger,
	})
	requestService := service.NewRequestService(service.RequestDependencies{
		RequestRepo:    requestRepo,
		CommentRepo:    commentRepo,
		AttachmentRepo: attachmentRepo,
		Audit:          audit,
		Numbers:        allocator,
		Runtime:        runtime,
		Router:         router,
	})
	responseService := service.NewResponseService(service.ResponseDependencies{
		RequestRepo:    requestRepo,
		CommentRepo:    commentRepo,
		AttachmentRepo: attachmentRepo,
		Lifecycle:      lifecycleService,
		Backend:        backend,
		Router:         router,
		Logger:         logger,
	})

	metrics := observability.NewMetrics()

	app := httptransport.NewApp(httptransport.Dependencies{
		Config:         cfg,
		Logger:         logger,
		Metrics:        metrics,
		AuthMiddleware: authMiddleware,
		Health:         handlers.NewHealthHandler(pg, rd),
		Users:          handlers.NewUsersHandler(authService),
		Agents:         handlers.NewAgentsHandler(authService, agentRepo),
		Requests:       handlers.NewRequestsHandler(requestService, responseService, backend),
		AgentRequests:  handlers.NewAgentRequestsHandler(requestService, responseService, lifecycleService, backend),
		Settings:       handlers.NewSettingsHandler(runtime, logger),
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
