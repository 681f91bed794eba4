package leaderboardrouter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/snapclash/arena/app/eventbus"
	leaderboardservice "github.com/snapclash/arena/app/modules/leaderboard/application"
	leaderboardhandlers "github.com/snapclash/arena/app/modules/leaderboard/infrastructure/handlers"
	submissionevents "github.com/snapclash/arena/app/modules/submission/events"
)

// LeaderboardRouter wires the leaderboard handlers onto the message router.
type LeaderboardRouter struct {
	logger *slog.Logger
	Router *message.Router
	bus    eventbus.EventBus
}

// NewLeaderboardRouter creates a new instance of the router.
func NewLeaderboardRouter(logger *slog.Logger, bus eventbus.EventBus) (*LeaderboardRouter, error) {
	router, err := message.NewRouter(message.RouterConfig{}, watermill.NewSlogLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create message router: %w", err)
	}

	router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Retry{
			MaxRetries:      2,
			InitialInterval: 100 * time.Millisecond,
		}.Middleware,
		middleware.Recoverer,
	)

	return &LeaderboardRouter{
		logger: logger,
		Router: router,
		bus:    bus,
	}, nil
}

// Configure registers the leaderboard handlers.
func (r *LeaderboardRouter) Configure(rankingService leaderboardservice.Service) {
	handlers := leaderboardhandlers.NewLeaderboardHandlers(rankingService, r.logger)

	r.Router.AddNoPublisherHandler(
		"leaderboard.submission_scored",
		submissionevents.SubmissionScored,
		r.bus.Subscriber(),
		handlers.HandleSubmissionScored,
	)
}

// Run starts the router and blocks until the context is canceled.
func (r *LeaderboardRouter) Run(ctx context.Context) error {
	return r.Router.Run(ctx)
}

// Close shuts the router down.
func (r *LeaderboardRouter) Close() error {
	return r.Router.Close()
}
