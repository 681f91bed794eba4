package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/snapclash/arena/app/shared/sharederrors"
)

type errorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError surfaces the stable error kind alongside the message so callers
// never need to parse message text.
func writeError(w http.ResponseWriter, err error) {
	kind := sharederrors.KindOf(err)
	if kind == "" {
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Kind:    "InternalError",
			Message: "internal error",
		})
		return
	}
	writeJSON(w, sharederrors.HTTPStatus(kind), errorResponse{
		Kind:    string(kind),
		Message: err.Error(),
	})
}
