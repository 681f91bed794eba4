package sharedtypes

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ChallengeID identifies a challenge.
type ChallengeID uuid.UUID

func (id ChallengeID) String() string {
	return uuid.UUID(id).String()
}

func (id ChallengeID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *ChallengeID) UnmarshalText(text []byte) error {
	u, err := uuid.Parse(string(text))
	if err != nil {
		return err
	}
	*id = ChallengeID(u)
	return nil
}

// ParseChallengeID parses a challenge id from its string form.
func ParseChallengeID(s string) (ChallengeID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ChallengeID{}, err
	}
	return ChallengeID(u), nil
}

// SubmissionID identifies a submission.
type SubmissionID uuid.UUID

func (id SubmissionID) String() string {
	return uuid.UUID(id).String()
}

func (id SubmissionID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *SubmissionID) UnmarshalText(text []byte) error {
	u, err := uuid.Parse(string(text))
	if err != nil {
		return err
	}
	*id = SubmissionID(u)
	return nil
}

// ParticipantID is the canonical identifier of a participant. Values of this
// type are always in canonical form; construct them with CanonicalParticipantID.
type ParticipantID string

// ScoreValue uses a custom type to keep score arithmetic away from raw ints.
type ScoreValue int

// CanonicalParticipantID normalizes any boundary representation of a
// participant identifier (string, numeric, or stringified/quoted form) into
// the single canonical form used for all equality comparisons and storage.
//
// Rules: surrounding whitespace and quotes are stripped, hex-style ids are
// lowercased, and pure decimal forms lose leading zeros so that "007", "7"
// and the numeric 7 all canonicalize identically.
func CanonicalParticipantID(raw string) ParticipantID {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, `"'`)
	s = strings.ToLower(s)

	if isDecimal(s) {
		s = strings.TrimLeft(s, "0")
		if s == "" {
			s = "0"
		}
	}

	return ParticipantID(s)
}

// ParticipantIDFromInt64 canonicalizes a numeric participant identifier.
func ParticipantIDFromInt64(n int64) ParticipantID {
	return CanonicalParticipantID(strconv.FormatInt(n, 10))
}

func isDecimal(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
