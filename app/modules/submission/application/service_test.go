package submissionservice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace/noop"

	challengedomain "github.com/snapclash/arena/app/modules/challenge/domain"
	challengedb "github.com/snapclash/arena/app/modules/challenge/infrastructure/repositories"
	submissiondomain "github.com/snapclash/arena/app/modules/submission/domain"
	submissiondb "github.com/snapclash/arena/app/modules/submission/infrastructure/repositories"
	"github.com/snapclash/arena/app/shared/sharederrors"
	"github.com/snapclash/arena/app/shared/sharedtypes"
)

type fakeSubmissionRepo struct {
	reserveFunc         func(ctx context.Context, submission *submissiondomain.Submission) (*submissiondomain.Submission, error)
	setScoreFunc        func(ctx context.Context, id sharedtypes.SubmissionID, score sharedtypes.ScoreValue) error
	markScoreFailedFunc func(ctx context.Context, id sharedtypes.SubmissionID) error
	getByPairFunc       func(ctx context.Context, challengeID sharedtypes.ChallengeID, participantID sharedtypes.ParticipantID) (*submissiondomain.Submission, error)
}

func (f *fakeSubmissionRepo) Reserve(ctx context.Context, submission *submissiondomain.Submission) (*submissiondomain.Submission, error) {
	return f.reserveFunc(ctx, submission)
}

func (f *fakeSubmissionRepo) SetScore(ctx context.Context, id sharedtypes.SubmissionID, score sharedtypes.ScoreValue) error {
	if f.setScoreFunc == nil {
		return nil
	}
	return f.setScoreFunc(ctx, id, score)
}

func (f *fakeSubmissionRepo) MarkScoreFailed(ctx context.Context, id sharedtypes.SubmissionID) error {
	if f.markScoreFailedFunc == nil {
		return nil
	}
	return f.markScoreFailedFunc(ctx, id)
}

func (f *fakeSubmissionRepo) GetByPair(ctx context.Context, challengeID sharedtypes.ChallengeID, participantID sharedtypes.ParticipantID) (*submissiondomain.Submission, error) {
	return f.getByPairFunc(ctx, challengeID, participantID)
}

func (f *fakeSubmissionRepo) ListScoredByChallenge(ctx context.Context, challengeID sharedtypes.ChallengeID) ([]*submissiondomain.Submission, error) {
	return nil, nil
}

func (f *fakeSubmissionRepo) ListScored(ctx context.Context) ([]*submissiondomain.Submission, error) {
	return nil, nil
}

func (f *fakeSubmissionRepo) CountByChallenge(ctx context.Context, challengeID sharedtypes.ChallengeID) (int, error) {
	return 0, nil
}

type fakeChallengeRepo struct {
	getByIDFunc func(ctx context.Context, id sharedtypes.ChallengeID) (*challengedomain.Challenge, error)
}

func (f *fakeChallengeRepo) Create(ctx context.Context, challenge *challengedomain.Challenge) (*challengedomain.Challenge, error) {
	return challenge, nil
}

func (f *fakeChallengeRepo) GetByID(ctx context.Context, id sharedtypes.ChallengeID) (*challengedomain.Challenge, error) {
	return f.getByIDFunc(ctx, id)
}

func (f *fakeChallengeRepo) ListActive(ctx context.Context, now time.Time) ([]*challengedomain.Challenge, error) {
	return nil, nil
}

func (f *fakeChallengeRepo) ListAll(ctx context.Context) ([]*challengedomain.Challenge, error) {
	return nil, nil
}

type fakeEventBus struct {
	published []*message.Message
	topics    []string
}

func (f *fakeEventBus) Publish(ctx context.Context, topic string, msg *message.Message) error {
	f.topics = append(f.topics, topic)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeEventBus) Publisher() message.Publisher   { return nil }
func (f *fakeEventBus) Subscriber() message.Subscriber { return nil }
func (f *fakeEventBus) Close() error                   { return nil }

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func activeChallenge() *challengedomain.Challenge {
	return &challengedomain.Challenge{
		ID:        sharedtypes.ChallengeID(uuid.New()),
		Title:     "Golden Hour",
		Rules:     []string{"natural light only"},
		StartTime: testNow.Add(-time.Hour),
		EndTime:   testNow.Add(time.Hour),
		MaxScore:  100,
	}
}

func validArtifact() submissiondomain.Artifact {
	return submissiondomain.Artifact{
		Kind:        submissiondomain.KindImage,
		SizeBytes:   1 << 20,
		BytesHandle: "artifacts/abc123.png",
	}
}

func newTestService(
	submissions submissiondb.SubmissionRepository,
	challenges challengedb.ChallengeRepository,
	scorer ScoringAdapter,
	bus *fakeEventBus,
) *SubmissionService {
	svc := NewSubmissionService(
		submissions,
		challenges,
		scorer,
		bus,
		Config{
			MaxArtifactBytes: 10 << 20,
			ScoringTimeout:   time.Second,
			RatePerSecond:    1000,
			RateBurst:        1000,
		},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		noop.NewTracerProvider().Tracer("test"),
	)
	svc.now = func() time.Time { return testNow }
	return svc
}

func acceptingScorer(score sharedtypes.ScoreValue) ScoringAdapter {
	return ScoringAdapterFunc(func(ctx context.Context, artifactHandle string, rules []string, maxScore sharedtypes.ScoreValue) (sharedtypes.ScoreValue, error) {
		return score, nil
	})
}

func passthroughReserve() func(ctx context.Context, submission *submissiondomain.Submission) (*submissiondomain.Submission, error) {
	return func(ctx context.Context, submission *submissiondomain.Submission) (*submissiondomain.Submission, error) {
		submission.ID = sharedtypes.SubmissionID(uuid.New())
		return submission, nil
	}
}

func TestSubmitSuccess(t *testing.T) {
	challenge := activeChallenge()
	bus := &fakeEventBus{}
	subs := &fakeSubmissionRepo{reserveFunc: passthroughReserve()}
	challenges := &fakeChallengeRepo{
		getByIDFunc: func(ctx context.Context, id sharedtypes.ChallengeID) (*challengedomain.Challenge, error) {
			return challenge, nil
		},
	}

	svc := newTestService(subs, challenges, acceptingScorer(87), bus)

	got, err := svc.Submit(context.Background(), SubmitRequest{
		ChallengeID:   challenge.ID,
		ParticipantID: `"007"`,
		DisplayName:   "Bond",
		Artifact:      validArtifact(),
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if got.ParticipantID != "7" {
		t.Errorf("participant id not canonicalized, got %q", got.ParticipantID)
	}
	if !got.IsScored() || *got.Score != 87 {
		t.Errorf("submission should carry final score 87, got %+v", got)
	}
	if len(bus.topics) != 1 || bus.topics[0] != "submission.scored" {
		t.Errorf("expected one submission.scored event, got %v", bus.topics)
	}
}

func TestSubmitRejectsDuplicate(t *testing.T) {
	challenge := activeChallenge()
	scorerCalled := false
	subs := &fakeSubmissionRepo{
		reserveFunc: func(ctx context.Context, submission *submissiondomain.Submission) (*submissiondomain.Submission, error) {
			return nil, submissiondb.ErrDuplicateSubmission
		},
	}
	challenges := &fakeChallengeRepo{
		getByIDFunc: func(ctx context.Context, id sharedtypes.ChallengeID) (*challengedomain.Challenge, error) {
			return challenge, nil
		},
	}
	scorer := ScoringAdapterFunc(func(ctx context.Context, artifactHandle string, rules []string, maxScore sharedtypes.ScoreValue) (sharedtypes.ScoreValue, error) {
		scorerCalled = true
		return 0, nil
	})

	svc := newTestService(subs, challenges, scorer, &fakeEventBus{})

	_, err := svc.Submit(context.Background(), SubmitRequest{
		ChallengeID:   challenge.ID,
		ParticipantID: "alice",
		Artifact:      validArtifact(),
	})
	if !sharederrors.Is(err, sharederrors.KindDuplicateSubmission) {
		t.Fatalf("Submit() kind = %v, want DuplicateSubmission", sharederrors.KindOf(err))
	}
	if scorerCalled {
		t.Error("scorer must not run for a rejected duplicate")
	}
}

func TestSubmitRejectsInactiveChallenge(t *testing.T) {
	tests := []struct {
		name  string
		shift time.Duration
	}{
		{name: "challenge not yet started", shift: 2 * time.Hour},
		{name: "challenge already ended", shift: -2 * time.Hour},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			challenge := activeChallenge()
			challenge.StartTime = challenge.StartTime.Add(tt.shift)
			challenge.EndTime = challenge.EndTime.Add(tt.shift)

			reserved := false
			subs := &fakeSubmissionRepo{
				reserveFunc: func(ctx context.Context, submission *submissiondomain.Submission) (*submissiondomain.Submission, error) {
					reserved = true
					return submission, nil
				},
			}
			challenges := &fakeChallengeRepo{
				getByIDFunc: func(ctx context.Context, id sharedtypes.ChallengeID) (*challengedomain.Challenge, error) {
					return challenge, nil
				},
			}

			svc := newTestService(subs, challenges, acceptingScorer(50), &fakeEventBus{})

			_, err := svc.Submit(context.Background(), SubmitRequest{
				ChallengeID:   challenge.ID,
				ParticipantID: "alice",
				Artifact:      validArtifact(),
			})
			if !sharederrors.Is(err, sharederrors.KindChallengeNotActive) {
				t.Fatalf("Submit() kind = %v, want ChallengeNotActive", sharederrors.KindOf(err))
			}
			if reserved {
				t.Error("no admission record may be created for an inactive challenge")
			}
		})
	}
}

func TestSubmitRejectsUnknownChallenge(t *testing.T) {
	challenges := &fakeChallengeRepo{
		getByIDFunc: func(ctx context.Context, id sharedtypes.ChallengeID) (*challengedomain.Challenge, error) {
			return nil, challengedb.ErrChallengeNotFound
		},
	}
	svc := newTestService(&fakeSubmissionRepo{}, challenges, acceptingScorer(50), &fakeEventBus{})

	_, err := svc.Submit(context.Background(), SubmitRequest{
		ChallengeID:   sharedtypes.ChallengeID(uuid.New()),
		ParticipantID: "alice",
		Artifact:      validArtifact(),
	})
	if !sharederrors.Is(err, sharederrors.KindChallengeNotFound) {
		t.Fatalf("Submit() kind = %v, want ChallengeNotFound", sharederrors.KindOf(err))
	}
}

func TestSubmitRejectsInvalidArtifact(t *testing.T) {
	challenge := activeChallenge()
	reserved := false
	subs := &fakeSubmissionRepo{
		reserveFunc: func(ctx context.Context, submission *submissiondomain.Submission) (*submissiondomain.Submission, error) {
			reserved = true
			return submission, nil
		},
	}
	challenges := &fakeChallengeRepo{
		getByIDFunc: func(ctx context.Context, id sharedtypes.ChallengeID) (*challengedomain.Challenge, error) {
			return challenge, nil
		},
	}
	svc := newTestService(subs, challenges, acceptingScorer(50), &fakeEventBus{})

	tests := []struct {
		name     string
		artifact submissiondomain.Artifact
	}{
		{
			name:     "unsupported kind",
			artifact: submissiondomain.Artifact{Kind: "audio", SizeBytes: 100, BytesHandle: "h"},
		},
		{
			name:     "oversized",
			artifact: submissiondomain.Artifact{Kind: submissiondomain.KindImage, SizeBytes: 11 << 20, BytesHandle: "h"},
		},
		{
			name:     "missing handle",
			artifact: submissiondomain.Artifact{Kind: submissiondomain.KindVideo, SizeBytes: 100},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), SubmitRequest{
				ChallengeID:   challenge.ID,
				ParticipantID: "alice",
				Artifact:      tt.artifact,
			})
			if !sharederrors.Is(err, sharederrors.KindInvalidArtifact) {
				t.Fatalf("Submit() kind = %v, want InvalidArtifact", sharederrors.KindOf(err))
			}
			if reserved {
				t.Error("no admission record may be created for an invalid artifact")
			}
		})
	}
}

func TestSubmitScoringRetryThenSuccess(t *testing.T) {
	challenge := activeChallenge()
	var calls atomic.Int32
	scorer := ScoringAdapterFunc(func(ctx context.Context, artifactHandle string, rules []string, maxScore sharedtypes.ScoreValue) (sharedtypes.ScoreValue, error) {
		if calls.Add(1) == 1 {
			return 0, errors.New("transient scorer outage")
		}
		return 91, nil
	})
	subs := &fakeSubmissionRepo{reserveFunc: passthroughReserve()}
	challenges := &fakeChallengeRepo{
		getByIDFunc: func(ctx context.Context, id sharedtypes.ChallengeID) (*challengedomain.Challenge, error) {
			return challenge, nil
		},
	}
	svc := newTestService(subs, challenges, scorer, &fakeEventBus{})

	got, err := svc.Submit(context.Background(), SubmitRequest{
		ChallengeID:   challenge.ID,
		ParticipantID: "alice",
		Artifact:      validArtifact(),
	})
	if err != nil {
		t.Fatalf("Submit() error = %v, want retry to succeed", err)
	}
	if calls.Load() != 2 {
		t.Errorf("scorer called %d times, want 2", calls.Load())
	}
	if *got.Score != 91 {
		t.Errorf("score = %d, want 91", *got.Score)
	}
}

func TestSubmitScoringFailsAfterRetry(t *testing.T) {
	challenge := activeChallenge()
	var calls atomic.Int32
	scorer := ScoringAdapterFunc(func(ctx context.Context, artifactHandle string, rules []string, maxScore sharedtypes.ScoreValue) (sharedtypes.ScoreValue, error) {
		calls.Add(1)
		return 0, errors.New("scorer down")
	})

	markedFailed := false
	subs := &fakeSubmissionRepo{
		reserveFunc: passthroughReserve(),
		markScoreFailedFunc: func(ctx context.Context, id sharedtypes.SubmissionID) error {
			markedFailed = true
			return nil
		},
	}
	challenges := &fakeChallengeRepo{
		getByIDFunc: func(ctx context.Context, id sharedtypes.ChallengeID) (*challengedomain.Challenge, error) {
			return challenge, nil
		},
	}
	bus := &fakeEventBus{}
	svc := newTestService(subs, challenges, scorer, bus)

	_, err := svc.Submit(context.Background(), SubmitRequest{
		ChallengeID:   challenge.ID,
		ParticipantID: "alice",
		Artifact:      validArtifact(),
	})
	if !sharederrors.Is(err, sharederrors.KindScoringFailed) {
		t.Fatalf("Submit() kind = %v, want ScoringFailed", sharederrors.KindOf(err))
	}
	if calls.Load() != 2 {
		t.Errorf("scorer called %d times, want exactly one retry", calls.Load())
	}
	if !markedFailed {
		t.Error("submission must be parked as failed after the retry budget")
	}
	if len(bus.published) != 0 {
		t.Error("no scored event may fire for a failed scoring")
	}
}

func TestSubmitRejectsOutOfRangeScore(t *testing.T) {
	challenge := activeChallenge()
	scorer := ScoringAdapterFunc(func(ctx context.Context, artifactHandle string, rules []string, maxScore sharedtypes.ScoreValue) (sharedtypes.ScoreValue, error) {
		return maxScore + 1, nil
	})
	subs := &fakeSubmissionRepo{reserveFunc: passthroughReserve()}
	challenges := &fakeChallengeRepo{
		getByIDFunc: func(ctx context.Context, id sharedtypes.ChallengeID) (*challengedomain.Challenge, error) {
			return challenge, nil
		},
	}
	svc := newTestService(subs, challenges, scorer, &fakeEventBus{})

	_, err := svc.Submit(context.Background(), SubmitRequest{
		ChallengeID:   challenge.ID,
		ParticipantID: "alice",
		Artifact:      validArtifact(),
	})
	if !sharederrors.Is(err, sharederrors.KindScoringFailed) {
		t.Fatalf("Submit() kind = %v, want ScoringFailed for out-of-range score", sharederrors.KindOf(err))
	}
}

func TestHasSubmitted(t *testing.T) {
	challengeID := sharedtypes.ChallengeID(uuid.New())
	subs := &fakeSubmissionRepo{
		getByPairFunc: func(ctx context.Context, cid sharedtypes.ChallengeID, pid sharedtypes.ParticipantID) (*submissiondomain.Submission, error) {
			if pid == "7" {
				return &submissiondomain.Submission{}, nil
			}
			return nil, submissiondb.ErrSubmissionNotFound
		},
	}
	svc := newTestService(subs, &fakeChallengeRepo{}, acceptingScorer(0), &fakeEventBus{})

	got, err := svc.HasSubmitted(context.Background(), challengeID, "007")
	if err != nil || !got {
		t.Errorf("HasSubmitted(007) = %v, %v; want true (canonical match)", got, err)
	}

	got, err = svc.HasSubmitted(context.Background(), challengeID, "other")
	if err != nil || got {
		t.Errorf("HasSubmitted(other) = %v, %v; want false", got, err)
	}
}
