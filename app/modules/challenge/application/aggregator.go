package challengeservice

import (
	"context"
	"sort"

	challengedomain "github.com/snapclash/arena/app/modules/challenge/domain"
	"github.com/snapclash/arena/app/shared/attr"
)

// DisplayChallenge is a challenge decorated for the browsing view.
type DisplayChallenge struct {
	*challengedomain.Challenge
	IsRecent bool
}

// ListForDisplay composes the active view and the all view into a single
// deduplicated collection. Either source may fail independently; a failed
// view degrades to an empty sub-result instead of failing the whole call,
// because a stale browsing list beats no list at all.
func (s *ChallengeService) ListForDisplay(ctx context.Context) ([]*DisplayChallenge, error) {
	ctx, span := s.tracer.Start(ctx, "ListForDisplay")
	defer span.End()

	active, err := s.repo.ListActive(ctx, s.now().UTC())
	if err != nil {
		s.logger.WarnContext(ctx, "Active challenge view unavailable, degrading to empty",
			attr.ExtractCorrelationID(ctx),
			attr.Error(err),
		)
		active = nil
	}

	all, err := s.repo.ListAll(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "All challenge view unavailable, degrading to empty",
			attr.ExtractCorrelationID(ctx),
			attr.Error(err),
		)
		all = nil
	}

	return MergeViews(active, all), nil
}

// MergeViews deduplicates the two listing views by challenge id. Entries in
// the active view override the same-id entry from the all view and are
// flagged recent. The merge is deterministic: identical inputs always yield
// an identical result, regardless of fetch order, and no id appears twice.
func MergeViews(active, all []*challengedomain.Challenge) []*DisplayChallenge {
	merged := make(map[string]*DisplayChallenge, len(active)+len(all))

	for _, c := range all {
		merged[c.ID.String()] = &DisplayChallenge{Challenge: c, IsRecent: false}
	}
	for _, c := range active {
		merged[c.ID.String()] = &DisplayChallenge{Challenge: c, IsRecent: true}
	}

	result := make([]*DisplayChallenge, 0, len(merged))
	for _, dc := range merged {
		result = append(result, dc)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		// Stable order for identical creation times.
		return result[i].ID.String() < result[j].ID.String()
	})

	return result
}
