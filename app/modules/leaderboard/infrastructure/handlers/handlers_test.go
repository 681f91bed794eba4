package leaderboardhandlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	leaderboarddomain "github.com/snapclash/arena/app/modules/leaderboard/domain"
	submissionevents "github.com/snapclash/arena/app/modules/submission/events"
	"github.com/snapclash/arena/app/shared/sharedtypes"
)

type fakeRankingService struct {
	handled []submissionevents.SubmissionScoredPayload
	err     error
}

func (f *fakeRankingService) Rank(ctx context.Context, scope leaderboarddomain.Scope) ([]leaderboarddomain.LeaderboardEntry, error) {
	return nil, nil
}

func (f *fakeRankingService) Snapshot(ctx context.Context, scope leaderboarddomain.Scope) (*leaderboarddomain.Snapshot, error) {
	return nil, nil
}

func (f *fakeRankingService) PositionOf(ctx context.Context, rawParticipantID string, scope leaderboarddomain.Scope) (leaderboarddomain.LeaderboardEntry, error) {
	return leaderboarddomain.LeaderboardEntry{}, nil
}

func (f *fakeRankingService) HandleSubmissionScored(ctx context.Context, payload submissionevents.SubmissionScoredPayload) error {
	f.handled = append(f.handled, payload)
	return f.err
}

func newHandlers(svc *fakeRankingService) *LeaderboardHandlers {
	return NewLeaderboardHandlers(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHandleSubmissionScored(t *testing.T) {
	payload := submissionevents.SubmissionScoredPayload{
		SubmissionID:  sharedtypes.SubmissionID(uuid.New()),
		ChallengeID:   sharedtypes.ChallengeID(uuid.New()),
		ParticipantID: "alice",
		Score:         95,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}

	svc := &fakeRankingService{}
	h := newHandlers(svc)

	if err := h.HandleSubmissionScored(message.NewMessage(uuid.NewString(), raw)); err != nil {
		t.Fatalf("HandleSubmissionScored() error = %v", err)
	}
	if len(svc.handled) != 1 || svc.handled[0].ParticipantID != "alice" {
		t.Errorf("handled payloads = %+v, want one for alice", svc.handled)
	}
}

func TestHandleSubmissionScoredMalformedPayload(t *testing.T) {
	svc := &fakeRankingService{}
	h := newHandlers(svc)

	// Malformed payloads must be dropped, not retried forever.
	err := h.HandleSubmissionScored(message.NewMessage(uuid.NewString(), []byte("{broken")))
	if err != nil {
		t.Errorf("HandleSubmissionScored(malformed) error = %v, want nil", err)
	}
	if len(svc.handled) != 0 {
		t.Error("malformed payload must not reach the ranking service")
	}
}

func TestHandleSubmissionScoredServiceErrorPropagates(t *testing.T) {
	svc := &fakeRankingService{err: errors.New("recompute failed")}
	h := newHandlers(svc)

	raw, _ := json.Marshal(submissionevents.SubmissionScoredPayload{ParticipantID: "bob"})
	if err := h.HandleSubmissionScored(message.NewMessage(uuid.NewString(), raw)); err == nil {
		t.Error("service failure should propagate so the router can retry")
	}
}
