package challengedb

import "errors"

// ErrChallengeNotFound is returned when no challenge exists for the given id.
var ErrChallengeNotFound = errors.New("challenge not found")
