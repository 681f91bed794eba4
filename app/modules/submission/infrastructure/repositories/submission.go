package submissiondb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	submissiondomain "github.com/snapclash/arena/app/modules/submission/domain"
	"github.com/snapclash/arena/app/shared/sharedtypes"
)

// SubmissionRepositoryImpl handles database operations for submissions.
type SubmissionRepositoryImpl struct {
	DB *bun.DB
}

// NewSubmissionRepository creates a new SubmissionRepositoryImpl.
func NewSubmissionRepository(db *bun.DB) *SubmissionRepositoryImpl {
	return &SubmissionRepositoryImpl{DB: db}
}

// Reserve inserts the submission guarded by the unique
// (challenge_id, participant_id) constraint. ON CONFLICT DO NOTHING plus a
// rows-affected check makes the check-and-insert a single atomic operation;
// there is no window between check and reserve.
func (r *SubmissionRepositoryImpl) Reserve(ctx context.Context, submission *submissiondomain.Submission) (*submissiondomain.Submission, error) {
	model := FromDomain(submission)

	res, err := r.DB.NewInsert().
		Model(model).
		On("CONFLICT (challenge_id, participant_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to insert submission: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read insert result: %w", err)
	}
	if affected == 0 {
		return nil, ErrDuplicateSubmission
	}

	return model.ToDomain(), nil
}

// SetScore records the final score for a pending or previously failed
// submission. Scored submissions never change again.
func (r *SubmissionRepositoryImpl) SetScore(ctx context.Context, id sharedtypes.SubmissionID, score sharedtypes.ScoreValue) error {
	res, err := r.DB.NewUpdate().
		Model((*Submission)(nil)).
		Set("score = ?", int(score)).
		Set("score_status = ?", string(submissiondomain.ScoreSet)).
		Where("id = ?", uuid.UUID(id)).
		Where("score_status != ?", string(submissiondomain.ScoreSet)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to set score: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		exists, err := r.DB.NewSelect().
			Model((*Submission)(nil)).
			Where("id = ?", uuid.UUID(id)).
			Exists(ctx)
		if err != nil {
			return fmt.Errorf("failed to check submission: %w", err)
		}
		if !exists {
			return ErrSubmissionNotFound
		}
		return ErrSubmissionImmutable
	}
	return nil
}

// MarkScoreFailed transitions the submission to the failed state. The record
// itself stays; it is immutable evidence of intake.
func (r *SubmissionRepositoryImpl) MarkScoreFailed(ctx context.Context, id sharedtypes.SubmissionID) error {
	_, err := r.DB.NewUpdate().
		Model((*Submission)(nil)).
		Set("score_status = ?", string(submissiondomain.ScoreFailed)).
		Where("id = ?", uuid.UUID(id)).
		Where("score_status = ?", string(submissiondomain.ScorePending)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark scoring failed: %w", err)
	}
	return nil
}

// GetByPair retrieves the submission for a (challenge, participant) pair.
func (r *SubmissionRepositoryImpl) GetByPair(ctx context.Context, challengeID sharedtypes.ChallengeID, participantID sharedtypes.ParticipantID) (*submissiondomain.Submission, error) {
	model := new(Submission)

	err := r.DB.NewSelect().
		Model(model).
		Where("challenge_id = ?", uuid.UUID(challengeID)).
		Where("participant_id = ?", string(participantID)).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	return model.ToDomain(), nil
}

// ListScoredByChallenge returns all scored submissions for one challenge.
func (r *SubmissionRepositoryImpl) ListScoredByChallenge(ctx context.Context, challengeID sharedtypes.ChallengeID) ([]*submissiondomain.Submission, error) {
	var models []*Submission

	err := r.DB.NewSelect().
		Model(&models).
		Where("challenge_id = ?", uuid.UUID(challengeID)).
		Where("score_status = ?", string(submissiondomain.ScoreSet)).
		Order("submitted_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list scored submissions: %w", err)
	}

	return toDomainSlice(models), nil
}

// ListScored returns every scored submission across all challenges, oldest
// first, for the global ranking scope.
func (r *SubmissionRepositoryImpl) ListScored(ctx context.Context) ([]*submissiondomain.Submission, error) {
	var models []*Submission

	err := r.DB.NewSelect().
		Model(&models).
		Where("score_status = ?", string(submissiondomain.ScoreSet)).
		Order("submitted_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list scored submissions: %w", err)
	}

	return toDomainSlice(models), nil
}

// CountByChallenge counts admitted submissions for a challenge. Intake
// admits one submission per participant, so this doubles as the participant
// count.
func (r *SubmissionRepositoryImpl) CountByChallenge(ctx context.Context, challengeID sharedtypes.ChallengeID) (int, error) {
	count, err := r.DB.NewSelect().
		Model((*Submission)(nil)).
		Where("challenge_id = ?", uuid.UUID(challengeID)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count submissions: %w", err)
	}
	return count, nil
}

func toDomainSlice(models []*Submission) []*submissiondomain.Submission {
	submissions := make([]*submissiondomain.Submission, 0, len(models))
	for _, m := range models {
		submissions = append(submissions, m.ToDomain())
	}
	return submissions
}
