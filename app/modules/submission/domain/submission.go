package submissiondomain

import (
	"time"

	"github.com/snapclash/arena/app/shared/sharederrors"
	"github.com/snapclash/arena/app/shared/sharedtypes"
)

// ArtifactKind is the medium of a submitted artifact.
type ArtifactKind string

const (
	KindImage ArtifactKind = "image"
	KindVideo ArtifactKind = "video"
)

// ScoreStatus tracks the scoring lifecycle of an admitted submission. The
// submission record itself is immutable intake evidence; only this field and
// the score transition.
type ScoreStatus string

const (
	ScorePending ScoreStatus = "pending"
	ScoreSet     ScoreStatus = "scored"
	ScoreFailed  ScoreStatus = "failed"
)

// Artifact is the opaque reference to uploaded media. The bytes live in the
// external artifact store; intake only sees the declared kind, size and the
// durable handle.
type Artifact struct {
	Kind        ArtifactKind
	SizeBytes   int64
	BytesHandle string
}

// Submission is one participant's single admitted artifact for one challenge.
type Submission struct {
	ID            sharedtypes.SubmissionID
	ChallengeID   sharedtypes.ChallengeID
	ParticipantID sharedtypes.ParticipantID
	DisplayName   string
	Artifact      Artifact
	SubmittedAt   time.Time
	Score         *sharedtypes.ScoreValue
	ScoreStatus   ScoreStatus
}

// IsScored reports whether the submission carries a final score.
func (s *Submission) IsScored() bool {
	return s.ScoreStatus == ScoreSet && s.Score != nil
}

// ValidateArtifact checks the declared kind and size against the configured
// limit. No partial submission is created on violation.
func ValidateArtifact(a Artifact, maxBytes int64) error {
	switch a.Kind {
	case KindImage, KindVideo:
	default:
		return sharederrors.Newf(sharederrors.KindInvalidArtifact, "unsupported artifact kind %q", a.Kind)
	}
	if a.SizeBytes <= 0 {
		return sharederrors.New(sharederrors.KindInvalidArtifact, "artifact size must be positive")
	}
	if a.SizeBytes > maxBytes {
		return sharederrors.Newf(sharederrors.KindInvalidArtifact, "artifact size %d exceeds limit %d", a.SizeBytes, maxBytes)
	}
	if a.BytesHandle == "" {
		return sharederrors.New(sharederrors.KindInvalidArtifact, "artifact handle is required")
	}
	return nil
}

// KindFromMIME maps a declared MIME type to the artifact kind. Only png
// images and mp4/mov video are accepted, matching the upload surface.
func KindFromMIME(mimeType string) (ArtifactKind, bool) {
	switch mimeType {
	case "image/png":
		return KindImage, true
	case "video/mp4", "video/quicktime":
		return KindVideo, true
	default:
		return "", false
	}
}
