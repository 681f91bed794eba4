package submissiondb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	submissiondomain "github.com/snapclash/arena/app/modules/submission/domain"
	"github.com/snapclash/arena/app/shared/sharedtypes"
)

// Submission is the persisted submission record. The
// (challenge_id, participant_id) unique constraint is the atomic admission
// guard: two concurrent submits for the same pair race on the insert and
// exactly one wins.
type Submission struct {
	bun.BaseModel `bun:"table:submissions,alias:s"`

	ID             uuid.UUID `bun:"id,pk,type:uuid"`
	ChallengeID    uuid.UUID `bun:"challenge_id,type:uuid,notnull"`
	ParticipantID  string    `bun:"participant_id,notnull"`
	DisplayName    string    `bun:"display_name"`
	ArtifactKind   string    `bun:"artifact_kind,notnull"`
	ArtifactSize   int64     `bun:"artifact_size,notnull"`
	ArtifactHandle string    `bun:"artifact_handle,notnull"`
	SubmittedAt    time.Time `bun:"submitted_at,notnull"`
	Score          *int      `bun:"score"`
	ScoreStatus    string    `bun:"score_status,notnull,default:'pending'"`
}

var _ bun.BeforeInsertHook = (*Submission)(nil)

func (s *Submission) BeforeInsert(ctx context.Context, _ *bun.InsertQuery) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// ToDomain converts the persisted record to the domain submission.
func (s *Submission) ToDomain() *submissiondomain.Submission {
	var score *sharedtypes.ScoreValue
	if s.Score != nil {
		v := sharedtypes.ScoreValue(*s.Score)
		score = &v
	}

	return &submissiondomain.Submission{
		ID:            sharedtypes.SubmissionID(s.ID),
		ChallengeID:   sharedtypes.ChallengeID(s.ChallengeID),
		ParticipantID: sharedtypes.CanonicalParticipantID(s.ParticipantID),
		DisplayName:   s.DisplayName,
		Artifact: submissiondomain.Artifact{
			Kind:        submissiondomain.ArtifactKind(s.ArtifactKind),
			SizeBytes:   s.ArtifactSize,
			BytesHandle: s.ArtifactHandle,
		},
		SubmittedAt: s.SubmittedAt,
		Score:       score,
		ScoreStatus: submissiondomain.ScoreStatus(s.ScoreStatus),
	}
}

// FromDomain builds the persisted record from a domain submission.
func FromDomain(s *submissiondomain.Submission) *Submission {
	var score *int
	if s.Score != nil {
		v := int(*s.Score)
		score = &v
	}

	return &Submission{
		ID:             uuid.UUID(s.ID),
		ChallengeID:    uuid.UUID(s.ChallengeID),
		ParticipantID:  string(s.ParticipantID),
		DisplayName:    s.DisplayName,
		ArtifactKind:   string(s.Artifact.Kind),
		ArtifactSize:   s.Artifact.SizeBytes,
		ArtifactHandle: s.Artifact.BytesHandle,
		SubmittedAt:    s.SubmittedAt,
		Score:          score,
		ScoreStatus:    string(s.ScoreStatus),
	}
}
