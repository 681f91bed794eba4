package leaderboardbroadcast

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/snapclash/arena/app/metrics"
	leaderboarddomain "github.com/snapclash/arena/app/modules/leaderboard/domain"
)

// Subscription delivers ranking snapshots for one scope. The channel always
// holds at most the latest undelivered snapshot: a slow subscriber skips
// intermediate snapshots and receives only the most recent one, and never an
// older snapshot after a newer one.
type Subscription struct {
	ch     chan *leaderboarddomain.Snapshot
	cancel func()

	mu          sync.Mutex
	lastVersion uint64
	closed      bool
}

// Snapshots is the receive side of the subscription.
func (s *Subscription) Snapshots() <-chan *leaderboarddomain.Snapshot {
	return s.ch
}

// Cancel removes the subscription from the fan-out set and closes the
// channel. Safe to call more than once.
func (s *Subscription) Cancel() {
	s.cancel()
}

// Prime seeds a fresh subscription with the current snapshot so the viewer
// does not wait for the next recomputation. It shares the publish path's
// version guard: a newer snapshot already offered wins over the seed, and the
// seed blocks older published snapshots from following it.
func (s *Subscription) Prime(snapshot *leaderboarddomain.Snapshot) {
	s.offer(snapshot)
}

// offer replaces any undelivered snapshot with the newer one. Stale
// publishes (version at or below the last offered) are dropped, which keeps
// delivery monotonic per subscriber.
func (s *Subscription) offer(snapshot *leaderboarddomain.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || snapshot.Version <= s.lastVersion {
		return
	}
	s.lastVersion = snapshot.Version

	select {
	case s.ch <- snapshot:
	default:
		// The subscriber has not drained the previous snapshot; coalesce.
		select {
		case <-s.ch:
			metrics.SnapshotsCoalesced.Inc()
		default:
		}
		select {
		case s.ch <- snapshot:
		default:
		}
	}
}

// Broadcaster fans leaderboard snapshots out to scope subscribers.
type Broadcaster struct {
	logger *slog.Logger

	mu   sync.RWMutex
	subs map[string]map[string]*Subscription // scope key -> subscription id
}

// NewBroadcaster creates a new Broadcaster.
func NewBroadcaster(logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		logger: logger,
		subs:   make(map[string]map[string]*Subscription),
	}
}

// Subscribe registers a viewer for the scope's snapshot stream.
func (b *Broadcaster) Subscribe(scope leaderboarddomain.Scope) *Subscription {
	id := uuid.NewString()
	sub := &Subscription{
		ch: make(chan *leaderboarddomain.Snapshot, 1),
	}

	var once sync.Once
	sub.cancel = func() {
		once.Do(func() {
			b.mu.Lock()
			if scoped, ok := b.subs[scope.Key()]; ok {
				delete(scoped, id)
				if len(scoped) == 0 {
					delete(b.subs, scope.Key())
				}
			}
			b.mu.Unlock()

			sub.mu.Lock()
			sub.closed = true
			close(sub.ch)
			sub.mu.Unlock()
		})
	}

	b.mu.Lock()
	scoped, ok := b.subs[scope.Key()]
	if !ok {
		scoped = make(map[string]*Subscription)
		b.subs[scope.Key()] = scoped
	}
	scoped[id] = sub
	b.mu.Unlock()

	b.logger.Debug("Leaderboard subscriber added",
		slog.String("scope", scope.Key()),
		slog.String("subscription_id", id),
	)
	return sub
}

// Publish delivers the snapshot to every subscriber of its scope. Losing a
// subscriber mid-publish is non-fatal; it only leaves the fan-out set.
func (b *Broadcaster) Publish(snapshot *leaderboarddomain.Snapshot) {
	b.mu.RLock()
	scoped := b.subs[snapshot.Scope.Key()]
	subs := make([]*Subscription, 0, len(scoped))
	for _, sub := range scoped {
		subs = append(subs, sub)
	}
	b.mu.RUnlock()

	for _, sub := range subs {
		sub.offer(snapshot)
	}
	metrics.SnapshotsPublished.Inc()
}

// Close cancels every subscription. Used on shutdown.
func (b *Broadcaster) Close() {
	b.mu.RLock()
	subs := make([]*Subscription, 0)
	for _, scoped := range b.subs {
		for _, sub := range scoped {
			subs = append(subs, sub)
		}
	}
	b.mu.RUnlock()

	for _, sub := range subs {
		sub.Cancel()
	}
}

// SubscriberCount reports how many viewers watch the scope.
func (b *Broadcaster) SubscriberCount(scope leaderboarddomain.Scope) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[scope.Key()])
}
