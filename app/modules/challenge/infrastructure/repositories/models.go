package challengedb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	challengedomain "github.com/snapclash/arena/app/modules/challenge/domain"
	"github.com/snapclash/arena/app/shared/sharedtypes"
)

// Challenge is the persisted challenge record. Status is intentionally not a
// column; it is derived from the window on every read.
type Challenge struct {
	bun.BaseModel `bun:"table:challenges,alias:c"`

	ID          uuid.UUID `bun:"id,pk,type:uuid"`
	Title       string    `bun:"title,notnull"`
	Description string    `bun:"description"`
	Rules       []string  `bun:"rules,type:jsonb"`
	StartTime   time.Time `bun:"start_time,notnull"`
	EndTime     time.Time `bun:"end_time,notnull"`
	MaxScore    int       `bun:"max_score,notnull"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

var _ bun.BeforeInsertHook = (*Challenge)(nil)

func (c *Challenge) BeforeInsert(ctx context.Context, _ *bun.InsertQuery) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	return nil
}

// ToDomain converts the persisted record to the domain challenge.
func (c *Challenge) ToDomain() *challengedomain.Challenge {
	return &challengedomain.Challenge{
		ID:          sharedtypes.ChallengeID(c.ID),
		Title:       c.Title,
		Description: c.Description,
		Rules:       c.Rules,
		StartTime:   c.StartTime,
		EndTime:     c.EndTime,
		MaxScore:    sharedtypes.ScoreValue(c.MaxScore),
		CreatedAt:   c.CreatedAt,
	}
}

// FromDomain builds the persisted record from a domain challenge.
func FromDomain(c *challengedomain.Challenge) *Challenge {
	return &Challenge{
		ID:          uuid.UUID(c.ID),
		Title:       c.Title,
		Description: c.Description,
		Rules:       c.Rules,
		StartTime:   c.StartTime,
		EndTime:     c.EndTime,
		MaxScore:    int(c.MaxScore),
		CreatedAt:   c.CreatedAt,
	}
}
