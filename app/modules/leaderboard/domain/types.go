package leaderboarddomain

import (
	"time"

	"github.com/snapclash/arena/app/shared/sharedtypes"
)

// Scope parametrizes a ranking query: one challenge or the global aggregate.
type Scope struct {
	ChallengeID sharedtypes.ChallengeID
	Global      bool
}

// ChallengeScope scopes a ranking to a single challenge.
func ChallengeScope(id sharedtypes.ChallengeID) Scope {
	return Scope{ChallengeID: id}
}

// GlobalScope scopes a ranking to the aggregate across all challenges.
func GlobalScope() Scope {
	return Scope{Global: true}
}

// Key returns the stable identity of the scope, used for snapshot caching
// and recompute serialization.
func (s Scope) Key() string {
	if s.Global {
		return "global"
	}
	return s.ChallengeID.String()
}

// LeaderboardEntry is one ranked row. Entries are derived from submissions
// on every recomputation and never persisted as a source of truth.
type LeaderboardEntry struct {
	ParticipantID sharedtypes.ParticipantID `json:"participant_id"`
	DisplayName   string                    `json:"display_name"`
	Score         sharedtypes.ScoreValue    `json:"score"`
	Rank          int                       `json:"rank"`
	LastActivity  time.Time                 `json:"last_activity"`
}

// Snapshot is an immutable, fully-computed ranking at one point in time.
// Versions increase per scope; subscribers use them to reject regressions.
type Snapshot struct {
	Scope      Scope              `json:"scope"`
	Version    uint64             `json:"version"`
	Entries    []LeaderboardEntry `json:"entries"`
	ComputedAt time.Time          `json:"computed_at"`
}

// ScoredSubmission is the ranking input: one scored submission projected to
// the fields the ranking math needs.
type ScoredSubmission struct {
	ChallengeID   sharedtypes.ChallengeID
	ParticipantID sharedtypes.ParticipantID
	DisplayName   string
	Score         sharedtypes.ScoreValue
	SubmittedAt   time.Time
}
