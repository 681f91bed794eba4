package challengedb

import (
	"context"
	"time"

	challengedomain "github.com/snapclash/arena/app/modules/challenge/domain"
	"github.com/snapclash/arena/app/shared/sharedtypes"
)

// ChallengeRepository handles database operations for challenges.
type ChallengeRepository interface {
	Create(ctx context.Context, challenge *challengedomain.Challenge) (*challengedomain.Challenge, error)
	GetByID(ctx context.Context, id sharedtypes.ChallengeID) (*challengedomain.Challenge, error)
	ListActive(ctx context.Context, now time.Time) ([]*challengedomain.Challenge, error)
	ListAll(ctx context.Context) ([]*challengedomain.Challenge, error)
}
