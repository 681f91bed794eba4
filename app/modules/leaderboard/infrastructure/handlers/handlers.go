package leaderboardhandlers

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"

	leaderboardservice "github.com/snapclash/arena/app/modules/leaderboard/application"
	submissionevents "github.com/snapclash/arena/app/modules/submission/events"
	"github.com/snapclash/arena/app/shared/attr"
)

// LeaderboardHandlers consumes submission events and drives ranking
// recomputation.
type LeaderboardHandlers struct {
	rankingService leaderboardservice.Service
	logger         *slog.Logger
}

// NewLeaderboardHandlers creates a new LeaderboardHandlers.
func NewLeaderboardHandlers(rankingService leaderboardservice.Service, logger *slog.Logger) *LeaderboardHandlers {
	return &LeaderboardHandlers{
		rankingService: rankingService,
		logger:         logger,
	}
}

// HandleSubmissionScored handles submission scored events.
func (h *LeaderboardHandlers) HandleSubmissionScored(msg *message.Message) error {
	ctx := msg.Context()

	var payload submissionevents.SubmissionScoredPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		h.logger.ErrorContext(ctx, "Failed to unmarshal scored payload",
			attr.CorrelationIDFromMsg(msg),
			attr.Error(err),
		)
		// Malformed payloads are not retryable.
		return nil
	}

	h.logger.InfoContext(ctx, "Received SubmissionScored event",
		attr.CorrelationIDFromMsg(msg),
		attr.String("submission_id", payload.SubmissionID.String()),
		attr.String("challenge_id", payload.ChallengeID.String()),
	)

	if err := h.rankingService.HandleSubmissionScored(ctx, payload); err != nil {
		h.logger.ErrorContext(ctx, "Failed to handle SubmissionScored event",
			attr.CorrelationIDFromMsg(msg),
			attr.Error(err),
		)
		return fmt.Errorf("failed to handle SubmissionScored event: %w", err)
	}

	return nil
}
