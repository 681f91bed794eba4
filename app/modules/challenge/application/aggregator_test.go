package challengeservice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace/noop"

	challengedomain "github.com/snapclash/arena/app/modules/challenge/domain"
	"github.com/snapclash/arena/app/shared/sharedtypes"
)

// fakeChallengeRepo implements challengedb.ChallengeRepository with
// overridable functions.
type fakeChallengeRepo struct {
	createFunc     func(ctx context.Context, challenge *challengedomain.Challenge) (*challengedomain.Challenge, error)
	getByIDFunc    func(ctx context.Context, id sharedtypes.ChallengeID) (*challengedomain.Challenge, error)
	listActiveFunc func(ctx context.Context, now time.Time) ([]*challengedomain.Challenge, error)
	listAllFunc    func(ctx context.Context) ([]*challengedomain.Challenge, error)
}

func (f *fakeChallengeRepo) Create(ctx context.Context, challenge *challengedomain.Challenge) (*challengedomain.Challenge, error) {
	return f.createFunc(ctx, challenge)
}

func (f *fakeChallengeRepo) GetByID(ctx context.Context, id sharedtypes.ChallengeID) (*challengedomain.Challenge, error) {
	return f.getByIDFunc(ctx, id)
}

func (f *fakeChallengeRepo) ListActive(ctx context.Context, now time.Time) ([]*challengedomain.Challenge, error) {
	return f.listActiveFunc(ctx, now)
}

func (f *fakeChallengeRepo) ListAll(ctx context.Context) ([]*challengedomain.Challenge, error) {
	return f.listAllFunc(ctx)
}

func newTestChallenge(title string, createdAt time.Time) *challengedomain.Challenge {
	return &challengedomain.Challenge{
		ID:        sharedtypes.ChallengeID(uuid.New()),
		Title:     title,
		CreatedAt: createdAt,
	}
}

func ids(challenges []*DisplayChallenge) []string {
	out := make([]string, 0, len(challenges))
	for _, c := range challenges {
		out = append(out, c.Title)
	}
	return out
}

func TestMergeViews(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	oldest := newTestChallenge("oldest", base)
	middle := newTestChallenge("middle", base.Add(time.Hour))
	newest := newTestChallenge("newest", base.Add(2*time.Hour))

	tests := []struct {
		name       string
		active     []*challengedomain.Challenge
		all        []*challengedomain.Challenge
		wantOrder  []string
		wantRecent map[string]bool
	}{
		{
			name:       "overlap deduplicates and flags the active entry",
			active:     []*challengedomain.Challenge{middle},
			all:        []*challengedomain.Challenge{oldest, middle, newest},
			wantOrder:  []string{"newest", "middle", "oldest"},
			wantRecent: map[string]bool{"newest": false, "middle": true, "oldest": false},
		},
		{
			name:       "active only",
			active:     []*challengedomain.Challenge{newest, oldest},
			all:        nil,
			wantOrder:  []string{"newest", "oldest"},
			wantRecent: map[string]bool{"newest": true, "oldest": true},
		},
		{
			name:       "all only",
			active:     nil,
			all:        []*challengedomain.Challenge{oldest, newest},
			wantOrder:  []string{"newest", "oldest"},
			wantRecent: map[string]bool{"newest": false, "oldest": false},
		},
		{
			name:      "both empty",
			active:    nil,
			all:       nil,
			wantOrder: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeViews(tt.active, tt.all)

			if diff := cmp.Diff(tt.wantOrder, ids(got)); diff != "" {
				t.Errorf("order mismatch (-want +got):\n%s", diff)
			}
			for _, c := range got {
				if want := tt.wantRecent[c.Title]; c.IsRecent != want {
					t.Errorf("%s IsRecent = %v, want %v", c.Title, c.IsRecent, want)
				}
			}

			// The merge must be deterministic for identical inputs.
			again := MergeViews(tt.active, tt.all)
			if diff := cmp.Diff(ids(got), ids(again)); diff != "" {
				t.Errorf("merge is not deterministic (-first +second):\n%s", diff)
			}
		})
	}
}

func TestListForDisplayDegradesFailedViews(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	survivor := newTestChallenge("survivor", base)
	viewErr := errors.New("view unavailable")

	tests := []struct {
		name       string
		activeErr  error
		allErr     error
		wantTitles []string
	}{
		{
			name:       "active view down, all view serves",
			activeErr:  viewErr,
			wantTitles: []string{"survivor"},
		},
		{
			name:       "all view down, active view serves",
			allErr:     viewErr,
			wantTitles: []string{"survivor"},
		},
		{
			name:       "both views down degrades to empty",
			activeErr:  viewErr,
			allErr:     viewErr,
			wantTitles: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeChallengeRepo{
				listActiveFunc: func(ctx context.Context, now time.Time) ([]*challengedomain.Challenge, error) {
					if tt.activeErr != nil {
						return nil, tt.activeErr
					}
					return []*challengedomain.Challenge{survivor}, nil
				},
				listAllFunc: func(ctx context.Context) ([]*challengedomain.Challenge, error) {
					if tt.allErr != nil {
						return nil, tt.allErr
					}
					return []*challengedomain.Challenge{survivor}, nil
				},
			}
			service := NewChallengeService(repo,
				slog.New(slog.NewTextHandler(io.Discard, nil)),
				noop.NewTracerProvider().Tracer("test"),
			)

			got, err := service.ListForDisplay(context.Background())
			if err != nil {
				t.Fatalf("ListForDisplay() error = %v, want degraded result", err)
			}
			if diff := cmp.Diff(tt.wantTitles, ids(got)); diff != "" {
				t.Errorf("titles mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
