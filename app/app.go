package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/capital-ladder/backend/api"
	"github.com/capital-ladder/backend/app/eventbus"
	activityservice "github.com/capital-ladder/backend/app/modules/activity/application"
	"github.com/capital-ladder/backend/app/modules/activity/infrastructure/push"
	activitysubscribers "github.com/capital-ladder/backend/app/modules/activity/infrastructure/subscribers"
	challengeservice "github.com/capital-ladder/backend/app/modules/challenge/application"
	profileservice "github.com/capital-ladder/backend/app/modules/profile/application"
	scoreboardservice "github.com/capital-ladder/backend/app/modules/scoreboard/application"
	"github.com/capital-ladder/backend/app/modules/scoreboard/infrastructure/natschannel"
	"github.com/capital-ladder/backend/config"
	"github.com/capital-ladder/backend/db/bundb"
	"github.com/capital-ladder/backend/observability"
	"github.com/go-co-op/gocron/v2"
	"github.com/prometheus/client_golang/prometheus"
)

// App owns every long-lived component and their shutdown order.
type App struct {
	Cfg      *config.Config
	DB       *bundb.DBService
	EventBus eventbus.EventBus
	Registry *prometheus.Registry

	ProfileService   *profileservice.ProfileService
	ChallengeService *challengeservice.ChallengeService
	Scoreboard       *scoreboardservice.ScoreboardService
	ActivityService  *activityservice.ActivityService

	httpServer *http.Server
	scheduler  gocron.Scheduler
	logger     *slog.Logger
}

// NewApp initializes the application with the necessary services and configuration.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	dbService, err := bundb.NewBunDBService(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database service: %w", err)
	}
	if err := dbService.Migrate(ctx, logger); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	bus, err := eventbus.NewEventBus(ctx, cfg.NATS.URL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize event bus: %w", err)
	}
	if err := eventbus.InitializeStreams(ctx, bus); err != nil {
		return nil, fmt.Errorf("failed to initialize streams: %w", err)
	}

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	profileSvc := profileservice.NewProfileService(dbService.ProfileDB, logger, cfg.Ladder)
	challengeSvc := challengeservice.NewChallengeService(dbService.ChallengeDB, dbService.ProfileDB, bus, logger, metrics, cfg.Ladder)
	scoreboardSvc := scoreboardservice.NewScoreboardService(natschannel.NewTransport(bus.Conn()), logger, metrics)
	activitySvc := activityservice.NewActivityService(dbService.ActivityDB, push.NewDispatcher(bus.Conn()), logger, metrics)

	subscribers := activitysubscribers.NewSubscribers(activitySvc, logger)
	if err := subscribers.Register(ctx, bus); err != nil {
		return nil, fmt.Errorf("failed to register activity subscribers: %w", err)
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(cfg.Ladder.ExpirySweepEvery),
		gocron.NewTask(func() {
			sweepCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if _, err := challengeSvc.ExpireOverdue(sweepCtx); err != nil {
				logger.Error("Expiry sweep failed", slog.Any("error", err))
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule expiry sweep: %w", err)
	}

	handlers := api.NewHandlers(profileSvc, challengeSvc, scoreboardSvc, activitySvc)
	httpServer := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           api.NewRouter(handlers, cfg.JWT.Secret),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &App{
		Cfg:              cfg,
		DB:               dbService,
		EventBus:         bus,
		Registry:         registry,
		ProfileService:   profileSvc,
		ChallengeService: challengeSvc,
		Scoreboard:       scoreboardSvc,
		ActivityService:  activitySvc,
		httpServer:       httpServer,
		scheduler:        scheduler,
		logger:           logger,
	}, nil
}

// Run starts the scheduler, metrics endpoint and HTTP server, and blocks until
// the server stops.
func (a *App) Run(ctx context.Context) error {
	a.scheduler.Start()
	go observability.ServeMetrics(a.Cfg.Metrics.Addr, a.Registry, a.logger)

	a.logger.Info("HTTP server starting", slog.String("addr", a.Cfg.HTTP.Addr))
	if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown stops everything in reverse dependency order.
func (a *App) Shutdown(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP shutdown error", slog.Any("error", err))
	}
	if err := a.scheduler.Shutdown(); err != nil {
		a.logger.Error("Scheduler shutdown error", slog.Any("error", err))
	}
	if err := a.EventBus.Close(); err != nil {
		a.logger.Error("Event bus shutdown error", slog.Any("error", err))
	}
	if err := a.DB.GetDB().Close(); err != nil {
		a.logger.Error("Database shutdown error", slog.Any("error", err))
	}
}
