package submissiondb

import "errors"

var (
	// ErrDuplicateSubmission is returned when the (challenge, participant)
	// pair already holds an admitted submission.
	ErrDuplicateSubmission = errors.New("submission already exists for participant and challenge")

	// ErrSubmissionNotFound is returned when no submission matches the lookup.
	ErrSubmissionNotFound = errors.New("submission not found")

	// ErrSubmissionImmutable is returned when a score write targets an
	// already-scored submission.
	ErrSubmissionImmutable = errors.New("submission is already scored")
)
