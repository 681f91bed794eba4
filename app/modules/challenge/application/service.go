package challengeservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	challengedomain "github.com/snapclash/arena/app/modules/challenge/domain"
	challengedb "github.com/snapclash/arena/app/modules/challenge/infrastructure/repositories"
	"github.com/snapclash/arena/app/shared/attr"
	"github.com/snapclash/arena/app/shared/sharederrors"
	"github.com/snapclash/arena/app/shared/sharedtypes"
)

// ChallengeService handles challenge lifecycle logic.
type ChallengeService struct {
	repo   challengedb.ChallengeRepository
	logger *slog.Logger
	tracer trace.Tracer
	now    func() time.Time
}

// NewChallengeService creates a new ChallengeService.
func NewChallengeService(repo challengedb.ChallengeRepository, logger *slog.Logger, tracer trace.Tracer) *ChallengeService {
	return &ChallengeService{
		repo:   repo,
		logger: logger,
		tracer: tracer,
		now:    time.Now,
	}
}

// CreateChallenge validates the draft and persists a new challenge.
func (s *ChallengeService) CreateChallenge(ctx context.Context, draft challengedomain.Draft) (*challengedomain.Challenge, error) {
	ctx, span := s.tracer.Start(ctx, "CreateChallenge")
	defer span.End()

	if err := draft.Validate(); err != nil {
		s.logger.InfoContext(ctx, "Rejected invalid challenge draft",
			attr.ExtractCorrelationID(ctx),
			attr.Error(err),
		)
		return nil, err
	}

	challenge := &challengedomain.Challenge{
		Title:       draft.Title,
		Description: draft.Description,
		Rules:       draft.Rules,
		StartTime:   draft.StartTime.UTC(),
		EndTime:     draft.EndTime.UTC(),
		MaxScore:    draft.MaxScore,
	}

	created, err := s.repo.Create(ctx, challenge)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to create challenge",
			attr.ExtractCorrelationID(ctx),
			attr.Error(err),
		)
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}

	s.logger.InfoContext(ctx, "Challenge created",
		attr.ExtractCorrelationID(ctx),
		attr.String("challenge_id", created.ID.String()),
		attr.String("title", created.Title),
	)
	return created, nil
}

// GetChallenge retrieves one challenge by id.
func (s *ChallengeService) GetChallenge(ctx context.Context, id sharedtypes.ChallengeID) (*challengedomain.Challenge, error) {
	ctx, span := s.tracer.Start(ctx, "GetChallenge")
	defer span.End()

	challenge, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, challengedb.ErrChallengeNotFound) {
			return nil, sharederrors.Newf(sharederrors.KindChallengeNotFound, "challenge %s not found", id)
		}
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}

	return challenge, nil
}

// ListActiveChallenges returns challenges whose window contains now. The
// status is recomputed from the clock on each call; nothing is cached, so a
// challenge stops being listed the instant its end time elapses.
func (s *ChallengeService) ListActiveChallenges(ctx context.Context) ([]*challengedomain.Challenge, error) {
	ctx, span := s.tracer.Start(ctx, "ListActiveChallenges")
	defer span.End()

	challenges, err := s.repo.ListActive(ctx, s.now().UTC())
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list active challenges",
			attr.ExtractCorrelationID(ctx),
			attr.Error(err),
		)
		return nil, fmt.Errorf("failed to list active challenges: %w", err)
	}

	return challenges, nil
}

// ListAllChallenges returns every challenge, newest first.
func (s *ChallengeService) ListAllChallenges(ctx context.Context) ([]*challengedomain.Challenge, error) {
	ctx, span := s.tracer.Start(ctx, "ListAllChallenges")
	defer span.End()

	challenges, err := s.repo.ListAll(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list challenges",
			attr.ExtractCorrelationID(ctx),
			attr.Error(err),
		)
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}

	return challenges, nil
}
