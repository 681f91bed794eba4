package sharederrors

import (
	"fmt"
	"net/http"
)

// Kind is the stable machine-readable classification of an error. Callers
// switch on the kind, never on message text.
type Kind string

const (
	KindValidation          Kind = "ValidationError"
	KindChallengeNotFound   Kind = "ChallengeNotFound"
	KindChallengeNotActive  Kind = "ChallengeNotActive"
	KindDuplicateSubmission Kind = "DuplicateSubmission"
	KindInvalidArtifact     Kind = "InvalidArtifact"
	KindScoringFailed       Kind = "ScoringFailed"
	KindNotFound            Kind = "NotFound"

	// KindUnknown is reported for unclassified errors.
	KindUnknown Kind = ""
)

// Error carries a stable kind plus a human-readable message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates a classified error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from err, walking the wrap chain. Unclassified
// errors report an empty kind.
func KindOf(err error) Kind {
	for err != nil {
		if ce, ok := err.(*Error); ok {
			return ce.Kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps an error kind to the HTTP status the API surfaces.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation, KindInvalidArtifact:
		return http.StatusBadRequest
	case KindChallengeNotFound, KindNotFound:
		return http.StatusNotFound
	case KindChallengeNotActive, KindDuplicateSubmission:
		return http.StatusConflict
	case KindScoringFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
