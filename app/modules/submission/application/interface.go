package submissionservice

import (
	"context"

	submissiondomain "github.com/snapclash/arena/app/modules/submission/domain"
	"github.com/snapclash/arena/app/shared/sharedtypes"
)

// SubmitRequest is the boundary input for one submission attempt. The
// participant id may arrive in any representation; intake canonicalizes it
// before anything else looks at it.
type SubmitRequest struct {
	ChallengeID   sharedtypes.ChallengeID
	ParticipantID string
	DisplayName   string
	Artifact      submissiondomain.Artifact
}

// Service defines the contract for submission intake.
type Service interface {
	// Submit runs the full intake pipeline: challenge resolution, atomic
	// admission, artifact validation, persistence and scoring.
	Submit(ctx context.Context, req SubmitRequest) (*submissiondomain.Submission, error)

	// HasSubmitted reports whether the participant already holds a
	// submission for the challenge.
	HasSubmitted(ctx context.Context, challengeID sharedtypes.ChallengeID, participantID string) (bool, error)
}
