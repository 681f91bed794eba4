package leaderboarddomain

import (
	"sort"

	"github.com/snapclash/arena/app/shared/sharedtypes"
)

// GlobalPolicy selects how per-challenge scores combine into the global
// standing of a participant.
type GlobalPolicy string

const (
	// PolicySum adds each participant's per-challenge scores.
	PolicySum GlobalPolicy = "sum"
	// PolicyBest keeps the single highest per-challenge score.
	PolicyBest GlobalPolicy = "best"
)

// RankSubmissions produces the ordered per-challenge leaderboard from scored
// submissions. Entries sort by score descending with ties broken by earliest
// submitted-at, then receive standard competition ranks: equal scores share
// a rank and the next distinct score resumes at previousRank + groupSize.
func RankSubmissions(submissions []ScoredSubmission) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, 0, len(submissions))
	for _, sub := range submissions {
		entries = append(entries, LeaderboardEntry{
			ParticipantID: sub.ParticipantID,
			DisplayName:   sub.DisplayName,
			Score:         sub.Score,
			LastActivity:  sub.SubmittedAt,
		})
	}
	return rankEntries(entries)
}

// AggregateGlobal folds scored submissions across all challenges into one
// entry per participant under the given policy, then ranks the result. Each
// participant has at most one submission per challenge, so the fold sees one
// score per (participant, challenge). Last activity is the participant's
// most recent submission; aggregate-score ties rank the earlier activity
// first, mirroring the per-challenge rule.
func AggregateGlobal(submissions []ScoredSubmission, policy GlobalPolicy) []LeaderboardEntry {
	byParticipant := make(map[sharedtypes.ParticipantID]*LeaderboardEntry, len(submissions))

	for _, sub := range submissions {
		agg, ok := byParticipant[sub.ParticipantID]
		if !ok {
			byParticipant[sub.ParticipantID] = &LeaderboardEntry{
				ParticipantID: sub.ParticipantID,
				DisplayName:   sub.DisplayName,
				Score:         sub.Score,
				LastActivity:  sub.SubmittedAt,
			}
			continue
		}

		switch policy {
		case PolicyBest:
			if sub.Score > agg.Score {
				agg.Score = sub.Score
			}
		default: // PolicySum
			agg.Score += sub.Score
		}

		if sub.SubmittedAt.After(agg.LastActivity) {
			agg.LastActivity = sub.SubmittedAt
			agg.DisplayName = sub.DisplayName
		}
	}

	entries := make([]LeaderboardEntry, 0, len(byParticipant))
	for _, agg := range byParticipant {
		entries = append(entries, *agg)
	}
	return rankEntries(entries)
}

// rankEntries sorts and assigns competition ranks.
func rankEntries(entries []LeaderboardEntry) []LeaderboardEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		if !entries[i].LastActivity.Equal(entries[j].LastActivity) {
			return entries[i].LastActivity.Before(entries[j].LastActivity)
		}
		return entries[i].ParticipantID < entries[j].ParticipantID
	})

	for i := range entries {
		if i > 0 && entries[i].Score == entries[i-1].Score {
			entries[i].Rank = entries[i-1].Rank
			continue
		}
		entries[i].Rank = i + 1
	}
	return entries
}

// FindEntry locates a participant's row, canonicalizing the supplied id so
// canonical, numeric and quoted forms all match.
func FindEntry(entries []LeaderboardEntry, rawParticipantID string) (LeaderboardEntry, bool) {
	want := sharedtypes.CanonicalParticipantID(rawParticipantID)
	for _, e := range entries {
		if sharedtypes.CanonicalParticipantID(string(e.ParticipantID)) == want {
			return e, true
		}
	}
	return LeaderboardEntry{}, false
}
