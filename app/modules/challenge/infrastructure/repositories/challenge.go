package challengedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	challengedomain "github.com/snapclash/arena/app/modules/challenge/domain"
	"github.com/snapclash/arena/app/shared/sharedtypes"
)

// ChallengeRepositoryImpl handles database operations for challenges.
type ChallengeRepositoryImpl struct {
	DB *bun.DB
}

// NewChallengeRepository creates a new ChallengeRepositoryImpl.
func NewChallengeRepository(db *bun.DB) *ChallengeRepositoryImpl {
	return &ChallengeRepositoryImpl{DB: db}
}

// Create persists a new challenge and returns the stored record.
func (r *ChallengeRepositoryImpl) Create(ctx context.Context, challenge *challengedomain.Challenge) (*challengedomain.Challenge, error) {
	model := FromDomain(challenge)

	if _, err := r.DB.NewInsert().Model(model).Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to insert challenge: %w", err)
	}

	return model.ToDomain(), nil
}

// GetByID retrieves a challenge by its id.
func (r *ChallengeRepositoryImpl) GetByID(ctx context.Context, id sharedtypes.ChallengeID) (*challengedomain.Challenge, error) {
	model := new(Challenge)

	err := r.DB.NewSelect().
		Model(model).
		Where("id = ?", uuid.UUID(id)).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrChallengeNotFound
		}
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}

	return model.ToDomain(), nil
}

// ListActive retrieves challenges whose window contains now, ordered by
// creation time descending.
func (r *ChallengeRepositoryImpl) ListActive(ctx context.Context, now time.Time) ([]*challengedomain.Challenge, error) {
	var models []*Challenge

	err := r.DB.NewSelect().
		Model(&models).
		Where("start_time <= ?", now).
		Where("end_time > ?", now).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active challenges: %w", err)
	}

	return toDomainSlice(models), nil
}

// ListAll retrieves every challenge, ordered by creation time descending.
// Challenges are never deleted; historical ones remain queryable here.
func (r *ChallengeRepositoryImpl) ListAll(ctx context.Context) ([]*challengedomain.Challenge, error) {
	var models []*Challenge

	err := r.DB.NewSelect().
		Model(&models).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}

	return toDomainSlice(models), nil
}

func toDomainSlice(models []*Challenge) []*challengedomain.Challenge {
	challenges := make([]*challengedomain.Challenge, 0, len(models))
	for _, m := range models {
		challenges = append(challenges, m.ToDomain())
	}
	return challenges
}
