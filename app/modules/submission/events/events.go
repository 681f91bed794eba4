package submissionevents

import (
	"time"

	"github.com/snapclash/arena/app/shared/sharedtypes"
)

// Topics carried on the event bus.
const (
	// SubmissionScored fires once a submission holds its final score. The
	// leaderboard module consumes it to recompute standings.
	SubmissionScored = "submission.scored"
)

// SubmissionScoredPayload announces a freshly scored submission.
type SubmissionScoredPayload struct {
	SubmissionID  sharedtypes.SubmissionID  `json:"submission_id"`
	ChallengeID   sharedtypes.ChallengeID   `json:"challenge_id"`
	ParticipantID sharedtypes.ParticipantID `json:"participant_id"`
	Score         sharedtypes.ScoreValue    `json:"score"`
	SubmittedAt   time.Time                 `json:"submitted_at"`
}
