package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	leaderboardservice "github.com/snapclash/arena/app/modules/leaderboard/application"
	leaderboarddomain "github.com/snapclash/arena/app/modules/leaderboard/domain"
	leaderboardbroadcast "github.com/snapclash/arena/app/modules/leaderboard/infrastructure/broadcast"
	"github.com/snapclash/arena/app/shared/sharederrors"
	"github.com/snapclash/arena/app/shared/sharedtypes"
)

// LeaderboardHandlers serves ranking reads and the live snapshot stream.
type LeaderboardHandlers struct {
	rankingService leaderboardservice.Service
	broadcaster    *leaderboardbroadcast.Broadcaster
}

// NewLeaderboardHandlers creates a new LeaderboardHandlers instance.
func NewLeaderboardHandlers(rankingService leaderboardservice.Service, broadcaster *leaderboardbroadcast.Broadcaster) *LeaderboardHandlers {
	return &LeaderboardHandlers{
		rankingService: rankingService,
		broadcaster:    broadcaster,
	}
}

func scopeFromRequest(r *http.Request) (leaderboarddomain.Scope, error) {
	raw := chi.URLParam(r, "scope")
	if raw == "global" {
		return leaderboarddomain.GlobalScope(), nil
	}
	id, err := sharedtypes.ParseChallengeID(raw)
	if err != nil {
		return leaderboarddomain.Scope{}, sharederrors.New(sharederrors.KindValidation, "scope must be a challenge id or \"global\"")
	}
	return leaderboarddomain.ChallengeScope(id), nil
}

// GetLeaderboard returns the ordered entries for a scope.
func (h *LeaderboardHandlers) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	entries, err := h.rankingService.Rank(r.Context(), scope)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// GetPosition returns one participant's entry in a scope. The participant id
// may arrive in any representation.
func (h *LeaderboardHandlers) GetPosition(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	entry, err := h.rankingService.PositionOf(r.Context(), chi.URLParam(r, "participantID"), scope)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// StreamLeaderboard pushes ranking snapshots over SSE until the client
// disconnects. Slow clients receive coalesced updates; each client
// individually never sees an older snapshot after a newer one.
func (h *LeaderboardHandlers) StreamLeaderboard(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, sharederrors.New(sharederrors.KindValidation, "streaming unsupported by connection"))
		return
	}

	sub := h.broadcaster.Subscribe(scope)
	defer sub.Cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// Seed the subscription with the current standing so the viewer does not
	// wait for the next recomputation. Prime runs through the subscription's
	// version guard, so a snapshot published while the read was in flight
	// cannot be delivered after a newer one.
	if snapshot, err := h.rankingService.Snapshot(r.Context(), scope); err == nil {
		sub.Prime(snapshot)
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case snapshot, ok := <-sub.Snapshots():
			if !ok {
				return
			}
			writeSnapshotEvent(w, snapshot)
			flusher.Flush()
		}
	}
}

// ExportLeaderboard returns the scope standings as an xlsx workbook.
func (h *LeaderboardHandlers) ExportLeaderboard(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	snapshot, err := h.rankingService.Snapshot(r.Context(), scope)
	if err != nil {
		writeError(w, err)
		return
	}

	data, err := leaderboardservice.ExportStandingsXLSX(snapshot)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "standings-"+scope.Key()+".xlsx"))
	_, _ = w.Write(data)
}

// ChartLeaderboard returns a PNG bar chart of the scope standings.
func (h *LeaderboardHandlers) ChartLeaderboard(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	snapshot, err := h.rankingService.Snapshot(r.Context(), scope)
	if err != nil {
		writeError(w, err)
		return
	}

	data, err := leaderboardservice.GenerateStandingsChart(snapshot)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(data)
}

func writeSnapshotEvent(w http.ResponseWriter, snapshot *leaderboarddomain.Snapshot) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: leaderboard_update\ndata: %s\n\n", data)
}
