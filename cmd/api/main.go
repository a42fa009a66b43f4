package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/scamguard/support-service/internal/api/http"
	"github.com/scamguard/support-service/internal/api/http/handlers"
	"github.com/scamguard/support-service/internal/auth"
	"github.com/scamguard/support-service/internal/config"
	"github.com/scamguard/support-service/internal/events"
	"github.com/scamguard/support-service/internal/notify"
	"github.com/scamguard/support-service/internal/observability"
	"github.com/scamguard/support-service/internal/persistence"
	"github.com/scamguard/support-service/internal/repository"
	"github.com/scamguard/support-service/internal/scheduler"
	"github.com/scamguard/support-service/internal/service"
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

	if cfg.Postgres.RunMigrations && pg.PoolHandle() != nil {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	responseRepo := repository.NewResponseRepository(pool)
	templateRepo := repository.NewTemplateRepository(pool)
	assignmentRepo := repository.NewAssignmentRepository(pool)
	staffRepo := repository.NewStaffRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()
	gateway := notify.NewGateway(cfg.Notification, logger)

	autoResponder := service.NewAutoResponder(templateRepo, logger)
	assigner := service.NewAssignmentService(service.AssignmentDependencies{
		TicketRepo:     ticketRepo,
		StaffRepo:      staffRepo,
		AssignmentRepo: assignmentRepo,
		Dispatcher:     dispatcher,
	}, logger)
	numbers := service.NewTicketNumberGenerator(redis, ticketRepo, logger)

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:    ticketRepo,
		ResponseRepo:  responseRepo,
		AutoResponder: autoResponder,
		Assigner:      assigner,
		Numbers:       numbers,
		Gateway:       gateway,
		Dispatcher:    dispatcher,
		Metrics:       metrics,
	}, logger)
	inboundService := service.NewInboundService(ticketRepo, ticketService, logger)
	authService := service.NewAuthService(cfg.Auth, staffRepo)

	notificationService := service.NewNotificationService(dispatcher, gateway, logger, cfg.Notification)
	notificationService.RegisterHandlers()

	escalation := scheduler.NewEscalationService(ticketRepo, dispatcher, logger, metrics, cfg.Escalation)
	if err := escalation.Start(ctx); err != nil {
		logger.Fatal("failed to start escalation scheduler", zap.Error(err))
	}

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), staffRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService, inboundService, assignmentRepo),
		Webhooks:       handlers.NewWebhooksHandler(inboundService),
		Templates:      handlers.NewTemplatesHandler(templateRepo),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	escalation.Stop()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
