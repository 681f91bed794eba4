package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	challengeservice "github.com/snapclash/arena/app/modules/challenge/application"
	challengedomain "github.com/snapclash/arena/app/modules/challenge/domain"
	submissiondb "github.com/snapclash/arena/app/modules/submission/infrastructure/repositories"
	"github.com/snapclash/arena/app/shared/sharederrors"
	"github.com/snapclash/arena/app/shared/sharedtypes"
)

// ChallengeHandlers serves the challenge browsing and admin surface.
type ChallengeHandlers struct {
	challengeService challengeservice.Service
	submissions      submissiondb.SubmissionRepository
}

// NewChallengeHandlers creates a new ChallengeHandlers instance.
func NewChallengeHandlers(challengeService challengeservice.Service, submissions submissiondb.SubmissionRepository) *ChallengeHandlers {
	return &ChallengeHandlers{
		challengeService: challengeService,
		submissions:      submissions,
	}
}

type createChallengeRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Rules       []string  `json:"rules"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	MaxScore    int       `json:"max_score"`
}

type challengeResponse struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	Rules             []string  `json:"rules"`
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	MaxScore          int       `json:"max_score"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	IsRecent          bool      `json:"is_recent,omitempty"`
	TotalParticipants int       `json:"total_participants"`
	TotalSubmissions  int       `json:"total_submissions"`
}

// CreateChallenge creates a new challenge.
func (h *ChallengeHandlers) CreateChallenge(w http.ResponseWriter, r *http.Request) {
	var req createChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, sharederrors.New(sharederrors.KindValidation, "invalid request body"))
		return
	}

	challenge, err := h.challengeService.CreateChallenge(r.Context(), challengedomain.Draft{
		Title:       req.Title,
		Description: req.Description,
		Rules:       req.Rules,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		MaxScore:    sharedtypes.ScoreValue(req.MaxScore),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, h.toResponse(r, challenge, false))
}

// GetChallenge returns one challenge snapshot.
func (h *ChallengeHandlers) GetChallenge(w http.ResponseWriter, r *http.Request) {
	id, err := sharedtypes.ParseChallengeID(chi.URLParam(r, "challengeID"))
	if err != nil {
		writeError(w, sharederrors.New(sharederrors.KindValidation, "invalid challenge id"))
		return
	}

	challenge, err := h.challengeService.GetChallenge(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.toResponse(r, challenge, false))
}

// ListCurrent returns the currently active challenges.
func (h *ChallengeHandlers) ListCurrent(w http.ResponseWriter, r *http.Request) {
	challenges, err := h.challengeService.ListActiveChallenges(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toResponseList(r, challenges))
}

// ListAll returns every challenge, newest first.
func (h *ChallengeHandlers) ListAll(w http.ResponseWriter, r *http.Request) {
	challenges, err := h.challengeService.ListAllChallenges(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toResponseList(r, challenges))
}

// ListForDisplay returns the merged browsing view with recency flags.
func (h *ChallengeHandlers) ListForDisplay(w http.ResponseWriter, r *http.Request) {
	display, err := h.challengeService.ListForDisplay(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]challengeResponse, 0, len(display))
	for _, dc := range display {
		resp := h.toResponse(r, dc.Challenge, dc.IsRecent)
		out = append(out, resp)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ChallengeHandlers) toResponse(r *http.Request, c *challengedomain.Challenge, isRecent bool) challengeResponse {
	count := 0
	if h.submissions != nil {
		// One submission per participant, so one count serves both stats.
		if n, err := h.submissions.CountByChallenge(r.Context(), c.ID); err == nil {
			count = n
		}
	}

	return challengeResponse{
		ID:                c.ID.String(),
		Title:             c.Title,
		Description:       c.Description,
		Rules:             c.Rules,
		StartTime:         c.StartTime,
		EndTime:           c.EndTime,
		MaxScore:          int(c.MaxScore),
		Status:            string(c.StatusAt(time.Now().UTC())),
		CreatedAt:         c.CreatedAt,
		IsRecent:          isRecent,
		TotalParticipants: count,
		TotalSubmissions:  count,
	}
}

func (h *ChallengeHandlers) toResponseList(r *http.Request, challenges []*challengedomain.Challenge) []challengeResponse {
	out := make([]challengeResponse, 0, len(challenges))
	for _, c := range challenges {
		out = append(out, h.toResponse(r, c, false))
	}
	return out
}
