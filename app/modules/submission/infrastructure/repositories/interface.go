package submissiondb

import (
	"context"

	submissiondomain "github.com/snapclash/arena/app/modules/submission/domain"
	"github.com/snapclash/arena/app/shared/sharedtypes"
)

// SubmissionRepository handles database operations for submissions.
type SubmissionRepository interface {
	// Reserve atomically admits the submission for its
	// (challenge, participant) pair. Returns ErrDuplicateSubmission when the
	// pair is already taken.
	Reserve(ctx context.Context, submission *submissiondomain.Submission) (*submissiondomain.Submission, error)

	// SetScore records the final score. A scored submission is immutable;
	// a second write returns ErrSubmissionImmutable.
	SetScore(ctx context.Context, id sharedtypes.SubmissionID, score sharedtypes.ScoreValue) error

	// MarkScoreFailed parks the submission in the failed state after the
	// scoring retry budget is exhausted.
	MarkScoreFailed(ctx context.Context, id sharedtypes.SubmissionID) error

	GetByPair(ctx context.Context, challengeID sharedtypes.ChallengeID, participantID sharedtypes.ParticipantID) (*submissiondomain.Submission, error)
	ListScoredByChallenge(ctx context.Context, challengeID sharedtypes.ChallengeID) ([]*submissiondomain.Submission, error)
	ListScored(ctx context.Context) ([]*submissiondomain.Submission, error)
	CountByChallenge(ctx context.Context, challengeID sharedtypes.ChallengeID) (int, error)
}
