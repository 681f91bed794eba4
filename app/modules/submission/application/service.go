package submissionservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/snapclash/arena/app/eventbus"
	"github.com/snapclash/arena/app/metrics"
	challengedb "github.com/snapclash/arena/app/modules/challenge/infrastructure/repositories"
	submissiondomain "github.com/snapclash/arena/app/modules/submission/domain"
	submissionevents "github.com/snapclash/arena/app/modules/submission/events"
	submissiondb "github.com/snapclash/arena/app/modules/submission/infrastructure/repositories"
	"github.com/snapclash/arena/app/shared/attr"
	"github.com/snapclash/arena/app/shared/sharederrors"
	"github.com/snapclash/arena/app/shared/sharedtypes"
)

// Config bounds the intake pipeline.
type Config struct {
	MaxArtifactBytes int64
	ScoringTimeout   time.Duration
	RatePerSecond    float64
	RateBurst        int
}

// SubmissionService handles submission intake.
type SubmissionService struct {
	submissions submissiondb.SubmissionRepository
	challenges  challengedb.ChallengeRepository
	scorer      ScoringAdapter
	bus         eventbus.EventBus
	limiter     *rate.Limiter
	cfg         Config
	logger      *slog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewSubmissionService creates a new SubmissionService.
func NewSubmissionService(
	submissions submissiondb.SubmissionRepository,
	challenges challengedb.ChallengeRepository,
	scorer ScoringAdapter,
	bus eventbus.EventBus,
	cfg Config,
	logger *slog.Logger,
	tracer trace.Tracer,
) *SubmissionService {
	return &SubmissionService{
		submissions: submissions,
		challenges:  challenges,
		scorer:      scorer,
		bus:         bus,
		limiter:     rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RateBurst),
		cfg:         cfg,
		logger:      logger,
		tracer:      tracer,
		now:         time.Now,
	}
}

// Submit runs the intake pipeline. The admission reserve is the only step
// that serializes concurrent submits for the same (challenge, participant)
// pair; different pairs proceed in parallel.
func (s *SubmissionService) Submit(ctx context.Context, req SubmitRequest) (*submissiondomain.Submission, error) {
	ctx, span := s.tracer.Start(ctx, "Submit")
	defer span.End()

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("intake rate limit wait: %w", err)
	}

	participantID := sharedtypes.CanonicalParticipantID(req.ParticipantID)

	if err := submissiondomain.ValidateArtifact(req.Artifact, s.cfg.MaxArtifactBytes); err != nil {
		metrics.SubmissionsRejected.WithLabelValues(string(sharederrors.KindInvalidArtifact)).Inc()
		return nil, err
	}

	challenge, err := s.challenges.GetByID(ctx, req.ChallengeID)
	if err != nil {
		if errors.Is(err, challengedb.ErrChallengeNotFound) {
			metrics.SubmissionsRejected.WithLabelValues(string(sharederrors.KindChallengeNotFound)).Inc()
			return nil, sharederrors.Newf(sharederrors.KindChallengeNotFound, "challenge %s not found", req.ChallengeID)
		}
		return nil, fmt.Errorf("failed to resolve challenge: %w", err)
	}

	// Status is checked at the instant of admission. A challenge that was
	// active when the request started but expired before this point is
	// rejected here.
	now := s.now().UTC()
	if !challenge.IsActiveAt(now) {
		metrics.SubmissionsRejected.WithLabelValues(string(sharederrors.KindChallengeNotActive)).Inc()
		return nil, sharederrors.Newf(sharederrors.KindChallengeNotActive,
			"challenge %s is %s, not accepting submissions", req.ChallengeID, challenge.StatusAt(now))
	}

	submission := &submissiondomain.Submission{
		ChallengeID:   req.ChallengeID,
		ParticipantID: participantID,
		DisplayName:   req.DisplayName,
		Artifact:      req.Artifact,
		SubmittedAt:   now,
		ScoreStatus:   submissiondomain.ScorePending,
	}

	admitted, err := s.submissions.Reserve(ctx, submission)
	if err != nil {
		if errors.Is(err, submissiondb.ErrDuplicateSubmission) {
			metrics.SubmissionsRejected.WithLabelValues(string(sharederrors.KindDuplicateSubmission)).Inc()
			return nil, sharederrors.Newf(sharederrors.KindDuplicateSubmission,
				"participant %s already submitted to challenge %s", participantID, req.ChallengeID)
		}
		return nil, fmt.Errorf("failed to admit submission: %w", err)
	}

	metrics.SubmissionsAdmitted.Inc()
	s.logger.InfoContext(ctx, "Submission admitted",
		attr.ExtractCorrelationID(ctx),
		attr.String("submission_id", admitted.ID.String()),
		attr.String("challenge_id", admitted.ChallengeID.String()),
		attr.String("participant_id", string(admitted.ParticipantID)),
	)

	score, err := s.scoreWithRetry(ctx, admitted, challenge.Rules, challenge.MaxScore)
	if err != nil {
		// The submission record stays, parked as failed; only the score
		// field ever transitions.
		if markErr := s.submissions.MarkScoreFailed(ctx, admitted.ID); markErr != nil {
			s.logger.ErrorContext(ctx, "Failed to mark scoring failure",
				attr.ExtractCorrelationID(ctx),
				attr.String("submission_id", admitted.ID.String()),
				attr.Error(markErr),
			)
		}
		metrics.ScoringFailures.Inc()
		return nil, sharederrors.Wrap(sharederrors.KindScoringFailed, "scoring failed after retry", err)
	}

	if err := s.submissions.SetScore(ctx, admitted.ID, score); err != nil {
		return nil, fmt.Errorf("failed to record score: %w", err)
	}
	admitted.Score = &score
	admitted.ScoreStatus = submissiondomain.ScoreSet

	if err := s.publishScored(ctx, admitted); err != nil {
		// Standings are always recomputable from the submissions table, so a
		// lost notification degrades freshness, not correctness.
		s.logger.ErrorContext(ctx, "Failed to publish scored event",
			attr.ExtractCorrelationID(ctx),
			attr.String("submission_id", admitted.ID.String()),
			attr.Error(err),
		)
	}

	s.logger.InfoContext(ctx, "Submission scored",
		attr.ExtractCorrelationID(ctx),
		attr.String("submission_id", admitted.ID.String()),
		attr.Int("score", int(score)),
	)
	return admitted, nil
}

// HasSubmitted reports whether the participant already holds a submission
// for the challenge.
func (s *SubmissionService) HasSubmitted(ctx context.Context, challengeID sharedtypes.ChallengeID, participantID string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "HasSubmitted")
	defer span.End()

	_, err := s.submissions.GetByPair(ctx, challengeID, sharedtypes.CanonicalParticipantID(participantID))
	if err != nil {
		if errors.Is(err, submissiondb.ErrSubmissionNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check submission: %w", err)
	}
	return true, nil
}

// scoreWithRetry invokes the scorer under the configured timeout, retrying
// exactly once on failure before giving up.
func (s *SubmissionService) scoreWithRetry(ctx context.Context, submission *submissiondomain.Submission, rules []string, maxScore sharedtypes.ScoreValue) (sharedtypes.ScoreValue, error) {
	score, err := s.scoreOnce(ctx, submission, rules, maxScore)
	if err == nil {
		return score, nil
	}

	metrics.ScoringRetries.Inc()
	s.logger.WarnContext(ctx, "Scoring failed, retrying once",
		attr.ExtractCorrelationID(ctx),
		attr.String("submission_id", submission.ID.String()),
		attr.Error(err),
	)

	return s.scoreOnce(ctx, submission, rules, maxScore)
}

func (s *SubmissionService) scoreOnce(ctx context.Context, submission *submissiondomain.Submission, rules []string, maxScore sharedtypes.ScoreValue) (sharedtypes.ScoreValue, error) {
	scoreCtx, cancel := context.WithTimeout(ctx, s.cfg.ScoringTimeout)
	defer cancel()

	score, err := s.scorer.Score(scoreCtx, submission.Artifact.BytesHandle, rules, maxScore)
	if err != nil {
		return 0, err
	}
	if score < 0 || score > maxScore {
		return 0, fmt.Errorf("scorer returned %d outside [0, %d]", score, maxScore)
	}
	return score, nil
}

func (s *SubmissionService) publishScored(ctx context.Context, submission *submissiondomain.Submission) error {
	payload := submissionevents.SubmissionScoredPayload{
		SubmissionID:  submission.ID,
		ChallengeID:   submission.ChallengeID,
		ParticipantID: submission.ParticipantID,
		Score:         *submission.Score,
		SubmittedAt:   submission.SubmittedAt,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal scored payload: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	return s.bus.Publish(ctx, submissionevents.SubmissionScored, msg)
}
