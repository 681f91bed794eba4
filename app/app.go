package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/snapclash/arena/api"
	"github.com/snapclash/arena/app/eventbus"
	"github.com/snapclash/arena/app/metrics"
	challengeservice "github.com/snapclash/arena/app/modules/challenge/application"
	leaderboardservice "github.com/snapclash/arena/app/modules/leaderboard/application"
	leaderboarddomain "github.com/snapclash/arena/app/modules/leaderboard/domain"
	leaderboardbroadcast "github.com/snapclash/arena/app/modules/leaderboard/infrastructure/broadcast"
	leaderboardrouter "github.com/snapclash/arena/app/modules/leaderboard/infrastructure/router"
	submissionservice "github.com/snapclash/arena/app/modules/submission/application"
	scoringclient "github.com/snapclash/arena/app/modules/submission/infrastructure/scoring"
	"github.com/snapclash/arena/config"
	"github.com/snapclash/arena/db/bundb"
)

// App holds the application's composed services.
type App struct {
	Config            *config.Config
	Logger            *slog.Logger
	DB                *bundb.DBService
	EventBus          eventbus.EventBus
	Broadcaster       *leaderboardbroadcast.Broadcaster
	ChallengeService  *challengeservice.ChallengeService
	SubmissionService *submissionservice.SubmissionService
	RankingService    *leaderboardservice.RankingService
	LeaderboardRouter *leaderboardrouter.LeaderboardRouter
	httpServer        *http.Server
	metricsServer     *http.Server
}

// NewApp composes the application from configuration.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	metrics.Register()

	dbService, err := bundb.NewBunDBService(cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database service: %w", err)
	}

	bus := eventbus.NewEventBus(logger)
	tracer := otel.Tracer("arena")

	challengeSvc := challengeservice.NewChallengeService(dbService.ChallengeDB, logger, tracer)

	scorer := scoringclient.NewClient(cfg.Scoring.Endpoint, nil)
	submissionSvc := submissionservice.NewSubmissionService(
		dbService.SubmissionDB,
		dbService.ChallengeDB,
		scorer,
		bus,
		submissionservice.Config{
			MaxArtifactBytes: cfg.Submission.MaxArtifactBytes,
			ScoringTimeout:   cfg.Scoring.Timeout,
			RatePerSecond:    cfg.Submission.RatePerSecond,
			RateBurst:        cfg.Submission.RateBurst,
		},
		logger,
		tracer,
	)

	broadcaster := leaderboardbroadcast.NewBroadcaster(logger)
	rankingSvc := leaderboardservice.NewRankingService(
		dbService.SubmissionDB,
		broadcaster,
		leaderboarddomain.GlobalPolicy(cfg.Leaderboard.GlobalPolicy),
		logger,
		tracer,
	)

	lbRouter, err := leaderboardrouter.NewLeaderboardRouter(logger, bus)
	if err != nil {
		return nil, fmt.Errorf("failed to create leaderboard router: %w", err)
	}
	lbRouter.Configure(rankingSvc)

	apiRouter := api.NewRouter(challengeSvc, submissionSvc, rankingSvc, broadcaster, dbService.SubmissionDB)

	return &App{
		Config:            cfg,
		Logger:            logger,
		DB:                dbService,
		EventBus:          bus,
		Broadcaster:       broadcaster,
		ChallengeService:  challengeSvc,
		SubmissionService: submissionSvc,
		RankingService:    rankingSvc,
		LeaderboardRouter: lbRouter,
		httpServer: &http.Server{
			Addr:    cfg.HTTP.Addr,
			Handler: apiRouter,
		},
		metricsServer: &http.Server{
			Addr:    cfg.Metrics.Addr,
			Handler: promhttp.Handler(),
		},
	}, nil
}

// Run starts the event router and HTTP servers and blocks until the context
// is canceled, then shuts everything down.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 3)

	go func() {
		if err := a.LeaderboardRouter.Run(ctx); err != nil {
			errCh <- fmt.Errorf("leaderboard router stopped: %w", err)
		}
	}()

	go func() {
		a.Logger.InfoContext(ctx, "http server listening", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server stopped: %w", err)
		}
	}()

	go func() {
		if err := a.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("metrics server stopped: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	return a.shutdown()
}

func (a *App) shutdown() error {
	shutdownCtx := context.Background()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.Logger.Error("http server shutdown failed", slog.Any("error", err))
	}
	if err := a.metricsServer.Shutdown(shutdownCtx); err != nil {
		a.Logger.Error("metrics server shutdown failed", slog.Any("error", err))
	}
	if err := a.LeaderboardRouter.Close(); err != nil {
		a.Logger.Error("leaderboard router close failed", slog.Any("error", err))
	}
	if err := a.EventBus.Close(); err != nil {
		a.Logger.Error("event bus close failed", slog.Any("error", err))
	}
	a.Broadcaster.Close()
	if err := a.DB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
