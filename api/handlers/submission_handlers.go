package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	submissionservice "github.com/snapclash/arena/app/modules/submission/application"
	submissiondomain "github.com/snapclash/arena/app/modules/submission/domain"
	"github.com/snapclash/arena/app/shared/sharederrors"
	"github.com/snapclash/arena/app/shared/sharedtypes"
)

// SubmissionHandlers serves the intake surface.
type SubmissionHandlers struct {
	submissionService submissionservice.Service
}

// NewSubmissionHandlers creates a new SubmissionHandlers instance.
func NewSubmissionHandlers(submissionService submissionservice.Service) *SubmissionHandlers {
	return &SubmissionHandlers{submissionService: submissionService}
}

type submitRequest struct {
	ChallengeID   string `json:"challenge_id"`
	ParticipantID string `json:"participant_id"`
	DisplayName   string `json:"display_name"`
	Artifact      struct {
		Kind        string `json:"kind"`
		MIMEType    string `json:"mime_type"`
		SizeBytes   int64  `json:"size_bytes"`
		BytesHandle string `json:"bytes_handle"`
	} `json:"artifact"`
}

type submissionResponse struct {
	ID            string    `json:"id"`
	ChallengeID   string    `json:"challenge_id"`
	ParticipantID string    `json:"participant_id"`
	SubmittedAt   time.Time `json:"submitted_at"`
	Score         *int      `json:"score"`
	ScoreStatus   string    `json:"score_status"`
}

// Submit admits and scores one submission.
func (h *SubmissionHandlers) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, sharederrors.New(sharederrors.KindValidation, "invalid request body"))
		return
	}

	challengeID, err := sharedtypes.ParseChallengeID(req.ChallengeID)
	if err != nil {
		writeError(w, sharederrors.New(sharederrors.KindValidation, "invalid challenge id"))
		return
	}
	if req.ParticipantID == "" {
		writeError(w, sharederrors.New(sharederrors.KindValidation, "participant id is required"))
		return
	}

	kind := submissiondomain.ArtifactKind(req.Artifact.Kind)
	if req.Artifact.MIMEType != "" {
		mapped, ok := submissiondomain.KindFromMIME(req.Artifact.MIMEType)
		if !ok {
			writeError(w, sharederrors.Newf(sharederrors.KindInvalidArtifact,
				"unsupported media type %q", req.Artifact.MIMEType))
			return
		}
		kind = mapped
	}

	submission, err := h.submissionService.Submit(r.Context(), submissionservice.SubmitRequest{
		ChallengeID:   challengeID,
		ParticipantID: req.ParticipantID,
		DisplayName:   req.DisplayName,
		Artifact: submissiondomain.Artifact{
			Kind:        kind,
			SizeBytes:   req.Artifact.SizeBytes,
			BytesHandle: req.Artifact.BytesHandle,
		},
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toSubmissionResponse(submission))
}

// Check reports whether the participant already submitted to a challenge.
func (h *SubmissionHandlers) Check(w http.ResponseWriter, r *http.Request) {
	challengeID, err := sharedtypes.ParseChallengeID(chi.URLParam(r, "challengeID"))
	if err != nil {
		writeError(w, sharederrors.New(sharederrors.KindValidation, "invalid challenge id"))
		return
	}
	participantID := r.URL.Query().Get("participant")
	if participantID == "" {
		writeError(w, sharederrors.New(sharederrors.KindValidation, "participant query parameter is required"))
		return
	}

	submitted, err := h.submissionService.HasSubmitted(r.Context(), challengeID, participantID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"submitted": submitted})
}

func toSubmissionResponse(s *submissiondomain.Submission) submissionResponse {
	var score *int
	if s.Score != nil {
		v := int(*s.Score)
		score = &v
	}
	return submissionResponse{
		ID:            s.ID.String(),
		ChallengeID:   s.ChallengeID.String(),
		ParticipantID: string(s.ParticipantID),
		SubmittedAt:   s.SubmittedAt,
		Score:         score,
		ScoreStatus:   string(s.ScoreStatus),
	}
}
