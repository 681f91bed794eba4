package challengedomain

import (
	"time"

	"github.com/snapclash/arena/app/shared/sharederrors"
	"github.com/snapclash/arena/app/shared/sharedtypes"
)

// Status is a challenge's lifecycle state. It is never stored; it is always
// derived from the clock against the challenge window.
type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// Challenge is a time-bounded contest with a scoring rubric.
type Challenge struct {
	ID          sharedtypes.ChallengeID
	Title       string
	Description string
	Rules       []string
	StartTime   time.Time
	EndTime     time.Time
	MaxScore    sharedtypes.ScoreValue
	CreatedAt   time.Time

	// Derived counters surfaced on the challenge snapshot.
	TotalParticipants int
	TotalSubmissions  int
}

// StatusAt computes the lifecycle state from the clock. The window is
// half-open: a challenge is active on [start, end) and completed the instant
// end elapses.
func (c *Challenge) StatusAt(now time.Time) Status {
	if now.Before(c.StartTime) {
		return StatusUpcoming
	}
	if now.Before(c.EndTime) {
		return StatusActive
	}
	return StatusCompleted
}

// IsActiveAt reports whether the challenge accepts submissions at now.
func (c *Challenge) IsActiveAt(now time.Time) bool {
	return c.StatusAt(now) == StatusActive
}

// Draft is the administrative input for creating a challenge.
type Draft struct {
	Title       string
	Description string
	Rules       []string
	StartTime   time.Time
	EndTime     time.Time
	MaxScore    sharedtypes.ScoreValue
}

// Validate checks the draft invariants before a challenge is created.
func (d Draft) Validate() error {
	if d.Title == "" {
		return sharederrors.New(sharederrors.KindValidation, "challenge title is required")
	}
	if !d.EndTime.After(d.StartTime) {
		return sharederrors.New(sharederrors.KindValidation, "challenge end time must be after start time")
	}
	if d.MaxScore <= 0 {
		return sharederrors.New(sharederrors.KindValidation, "challenge max score must be positive")
	}
	return nil
}
