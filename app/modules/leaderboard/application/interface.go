package leaderboardservice

import (
	"context"

	leaderboarddomain "github.com/snapclash/arena/app/modules/leaderboard/domain"
	submissionevents "github.com/snapclash/arena/app/modules/submission/events"
)

// SnapshotPublisher fans a freshly computed snapshot out to subscribers.
type SnapshotPublisher interface {
	Publish(snapshot *leaderboarddomain.Snapshot)
}

// Service defines the contract for ranking operations.
type Service interface {
	// Rank returns the ordered leaderboard for the scope. Reads always see a
	// complete snapshot, never a partially-updated ranking.
	Rank(ctx context.Context, scope leaderboarddomain.Scope) ([]leaderboarddomain.LeaderboardEntry, error)

	// Snapshot returns the full versioned snapshot for the scope.
	Snapshot(ctx context.Context, scope leaderboarddomain.Scope) (*leaderboarddomain.Snapshot, error)

	// PositionOf finds one participant's entry in the scope. The supplied id
	// is canonicalized before lookup.
	PositionOf(ctx context.Context, rawParticipantID string, scope leaderboarddomain.Scope) (leaderboarddomain.LeaderboardEntry, error)

	// HandleSubmissionScored recomputes the affected scopes after a
	// submission gains its final score.
	HandleSubmissionScored(ctx context.Context, payload submissionevents.SubmissionScoredPayload) error
}
