package submissionservice

import (
	"context"

	"github.com/snapclash/arena/app/shared/sharedtypes"
)

// ScoringAdapter is the external scoring collaborator. Given the artifact
// handle and the challenge rules it returns a score in [0, maxScore].
// Implementations must be deterministic for identical input; the scoring
// heuristic itself lives outside this system.
type ScoringAdapter interface {
	Score(ctx context.Context, artifactHandle string, rules []string, maxScore sharedtypes.ScoreValue) (sharedtypes.ScoreValue, error)
}

// ScoringAdapterFunc adapts a plain function to the ScoringAdapter interface.
type ScoringAdapterFunc func(ctx context.Context, artifactHandle string, rules []string, maxScore sharedtypes.ScoreValue) (sharedtypes.ScoreValue, error)

func (f ScoringAdapterFunc) Score(ctx context.Context, artifactHandle string, rules []string, maxScore sharedtypes.ScoreValue) (sharedtypes.ScoreValue, error) {
	return f(ctx, artifactHandle, rules, maxScore)
}
