package leaderboardservice

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	leaderboarddomain "github.com/snapclash/arena/app/modules/leaderboard/domain"
	submissiondomain "github.com/snapclash/arena/app/modules/submission/domain"
	submissionevents "github.com/snapclash/arena/app/modules/submission/events"
	submissiondb "github.com/snapclash/arena/app/modules/submission/infrastructure/repositories"
	"github.com/snapclash/arena/app/shared/attr"
	"github.com/snapclash/arena/app/shared/sharederrors"
)

// RankingService maintains ordered rankings per challenge and globally.
// Snapshots are derived, cached and disposable: they can always be discarded
// and recomputed from the submissions table, which is the recovery path
// after a crash.
type RankingService struct {
	submissions submissiondb.SubmissionRepository
	publisher   SnapshotPublisher
	policy      leaderboarddomain.GlobalPolicy
	logger      *slog.Logger
	tracer      trace.Tracer
	now         func() time.Time

	// snapshots holds the latest complete snapshot per scope. Writers swap
	// whole snapshots under mu; entries are never mutated after the swap, so
	// readers either see the pre- or post-update ranking in full.
	mu        sync.RWMutex
	snapshots map[string]*leaderboarddomain.Snapshot

	// scopeLocks serializes recomputation per scope. Independent scopes
	// recompute fully in parallel.
	scopeLocksMu sync.Mutex
	scopeLocks   map[string]*sync.Mutex
}

// NewRankingService creates a new RankingService.
func NewRankingService(
	submissions submissiondb.SubmissionRepository,
	publisher SnapshotPublisher,
	policy leaderboarddomain.GlobalPolicy,
	logger *slog.Logger,
	tracer trace.Tracer,
) *RankingService {
	return &RankingService{
		submissions: submissions,
		publisher:   publisher,
		policy:      policy,
		logger:      logger,
		tracer:      tracer,
		now:         time.Now,
		snapshots:   make(map[string]*leaderboarddomain.Snapshot),
		scopeLocks:  make(map[string]*sync.Mutex),
	}
}

// Rank returns the ordered leaderboard for the scope.
func (s *RankingService) Rank(ctx context.Context, scope leaderboarddomain.Scope) ([]leaderboarddomain.LeaderboardEntry, error) {
	snapshot, err := s.Snapshot(ctx, scope)
	if err != nil {
		return nil, err
	}
	return snapshot.Entries, nil
}

// Snapshot returns the cached snapshot for the scope, computing it on first
// access.
func (s *RankingService) Snapshot(ctx context.Context, scope leaderboarddomain.Scope) (*leaderboarddomain.Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, "Snapshot")
	defer span.End()

	s.mu.RLock()
	snapshot, ok := s.snapshots[scope.Key()]
	s.mu.RUnlock()
	if ok {
		return snapshot, nil
	}

	return s.Recompute(ctx, scope)
}

// PositionOf finds one participant's entry in the scope, canonicalizing the
// supplied id first. Entries from storage may carry heterogeneous
// representations; both sides normalize identically so matching is correct
// regardless of form.
func (s *RankingService) PositionOf(ctx context.Context, rawParticipantID string, scope leaderboarddomain.Scope) (leaderboarddomain.LeaderboardEntry, error) {
	snapshot, err := s.Snapshot(ctx, scope)
	if err != nil {
		return leaderboarddomain.LeaderboardEntry{}, err
	}

	entry, ok := leaderboarddomain.FindEntry(snapshot.Entries, rawParticipantID)
	if !ok {
		return leaderboarddomain.LeaderboardEntry{}, sharederrors.Newf(sharederrors.KindNotFound,
			"participant %s has no entry in scope %s", rawParticipantID, scope.Key())
	}
	return entry, nil
}

// HandleSubmissionScored recomputes standings for the submission's challenge
// and for the global scope.
func (s *RankingService) HandleSubmissionScored(ctx context.Context, payload submissionevents.SubmissionScoredPayload) error {
	ctx, span := s.tracer.Start(ctx, "HandleSubmissionScored")
	defer span.End()

	s.logger.InfoContext(ctx, "Recomputing standings",
		attr.ExtractCorrelationID(ctx),
		attr.String("challenge_id", payload.ChallengeID.String()),
		attr.String("participant_id", string(payload.ParticipantID)),
	)

	if _, err := s.Recompute(ctx, leaderboarddomain.ChallengeScope(payload.ChallengeID)); err != nil {
		return fmt.Errorf("failed to recompute challenge standings: %w", err)
	}
	if _, err := s.Recompute(ctx, leaderboarddomain.GlobalScope()); err != nil {
		return fmt.Errorf("failed to recompute global standings: %w", err)
	}
	return nil
}

// Recompute rebuilds the snapshot for the scope from the submissions table
// and publishes it. Recomputations for the same scope are serialized; the
// published snapshot is immutable.
func (s *RankingService) Recompute(ctx context.Context, scope leaderboarddomain.Scope) (*leaderboarddomain.Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, "Recompute")
	defer span.End()

	lock := s.lockFor(scope)
	lock.Lock()
	defer lock.Unlock()

	scored, err := s.gather(ctx, scope)
	if err != nil {
		return nil, err
	}

	var entries []leaderboarddomain.LeaderboardEntry
	if scope.Global {
		entries = leaderboarddomain.AggregateGlobal(scored, s.policy)
	} else {
		entries = leaderboarddomain.RankSubmissions(scored)
	}

	s.mu.Lock()
	var version uint64 = 1
	if prev, ok := s.snapshots[scope.Key()]; ok {
		version = prev.Version + 1
	}
	snapshot := &leaderboarddomain.Snapshot{
		Scope:      scope,
		Version:    version,
		Entries:    entries,
		ComputedAt: s.now().UTC(),
	}
	s.snapshots[scope.Key()] = snapshot
	s.mu.Unlock()

	if s.publisher != nil {
		s.publisher.Publish(snapshot)
	}

	s.logger.DebugContext(ctx, "Snapshot recomputed",
		attr.String("scope", scope.Key()),
		attr.Int("entries", len(entries)),
		attr.Any("version", snapshot.Version),
	)
	return snapshot, nil
}

func (s *RankingService) gather(ctx context.Context, scope leaderboarddomain.Scope) ([]leaderboarddomain.ScoredSubmission, error) {
	var (
		submissions []*submissiondomain.Submission
		err         error
	)
	if scope.Global {
		submissions, err = s.submissions.ListScored(ctx)
	} else {
		submissions, err = s.submissions.ListScoredByChallenge(ctx, scope.ChallengeID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to gather scored submissions: %w", err)
	}

	scored := make([]leaderboarddomain.ScoredSubmission, 0, len(submissions))
	for _, sub := range submissions {
		if !sub.IsScored() {
			continue
		}
		scored = append(scored, leaderboarddomain.ScoredSubmission{
			ChallengeID:   sub.ChallengeID,
			ParticipantID: sub.ParticipantID,
			DisplayName:   sub.DisplayName,
			Score:         *sub.Score,
			SubmittedAt:   sub.SubmittedAt,
		})
	}
	return scored, nil
}

func (s *RankingService) lockFor(scope leaderboarddomain.Scope) *sync.Mutex {
	s.scopeLocksMu.Lock()
	defer s.scopeLocksMu.Unlock()

	lock, ok := s.scopeLocks[scope.Key()]
	if !ok {
		lock = &sync.Mutex{}
		s.scopeLocks[scope.Key()] = lock
	}
	return lock
}
