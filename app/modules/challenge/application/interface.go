package challengeservice

import (
	"context"

	challengedomain "github.com/snapclash/arena/app/modules/challenge/domain"
	"github.com/snapclash/arena/app/shared/sharedtypes"
)

// Service defines the contract for challenge operations.
type Service interface {
	CreateChallenge(ctx context.Context, draft challengedomain.Draft) (*challengedomain.Challenge, error)
	GetChallenge(ctx context.Context, id sharedtypes.ChallengeID) (*challengedomain.Challenge, error)
	ListActiveChallenges(ctx context.Context) ([]*challengedomain.Challenge, error)
	ListAllChallenges(ctx context.Context) ([]*challengedomain.Challenge, error)

	// ListForDisplay merges the active and all listing views into one
	// deduplicated, recency-flagged collection for browsing clients.
	ListForDisplay(ctx context.Context) ([]*DisplayChallenge, error)
}
