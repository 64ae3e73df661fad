// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/osfanbuff63/pkw-tracking-bot/internal/domain/ranking"
)

// LeaderboardDependencies defines the interface for standings queries.
type LeaderboardDependencies interface {
	Leaderboard(ctx context.Context, course int) (ranking.Board, []ranking.Placement, error)
	ArchivedLeaderboard(ctx context.Context, course, year int, month time.Month) (ranking.Board, []ranking.Placement, error)
}

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps LeaderboardDependencies
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies) *LeaderboardHandler {
	return &LeaderboardHandler{deps: deps}
}

// entryResponse is one registrant's row in the standings.
type entryResponse struct {
	UserID  string `json:"user_id"`
	Time    string `json:"time"`
	Display string `json:"display"`
}

// placementResponse is one ranked row of the top-of-board summary.
type placementResponse struct {
	Rank    int    `json:"rank"`
	UserID  string `json:"user_id"`
	Time    string `json:"time"`
	Display string `json:"display"`
}

// leaderboardResponse mirrors GET /api/leaderboard responses.
type leaderboardResponse struct {
	Course         int                 `json:"course"`
	Best           string              `json:"best"`
	HasSubmissions bool                `json:"has_submissions"`
	Entries        []entryResponse     `json:"entries"`
	Top            []placementResponse `json:"top"`
}

// HandleGetLeaderboard handles GET /api/leaderboard/{course} requests.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	course, ok := pathInt(w, r, op, "course")
	if !ok {
		return
	}
	board, top, err := h.deps.Leaderboard(r.Context(), course)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, buildLeaderboardResponse(board, top))
}

// HandleGetArchivedLeaderboard handles
// GET /api/leaderboard/{course}/{year}/{month} requests.
func (h *LeaderboardHandler) HandleGetArchivedLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_archived_leaderboard"
	course, ok := pathInt(w, r, op, "course")
	if !ok {
		return
	}
	year, ok := pathInt(w, r, op, "year")
	if !ok {
		return
	}
	month, ok := pathInt(w, r, op, "month")
	if !ok {
		return
	}
	if month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	board, top, err := h.deps.ArchivedLeaderboard(r.Context(), course, year, time.Month(month))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, buildLeaderboardResponse(board, top))
}

func buildLeaderboardResponse(board ranking.Board, top []ranking.Placement) leaderboardResponse {
	resp := leaderboardResponse{
		Course:         int(board.Course),
		Best:           board.Best.String(),
		HasSubmissions: board.HasSubmissions(),
		Entries:        make([]entryResponse, 0, len(board.Entries)),
		Top:            make([]placementResponse, 0, len(top)),
	}
	for _, e := range board.Entries {
		resp.Entries = append(resp.Entries, entryResponse{
			UserID:  string(e.User),
			Time:    e.Time.String(),
			Display: e.Display(),
		})
	}
	// Stable order for clients; the map carries no ordering.
	sort.Slice(resp.Entries, func(i, j int) bool {
		return resp.Entries[i].UserID < resp.Entries[j].UserID
	})
	for _, p := range top {
		resp.Top = append(resp.Top, placementResponse{
			Rank:    p.Rank,
			UserID:  string(p.User),
			Time:    p.Time.String(),
			Display: p.Display(),
		})
	}
	return resp
}

// pathInt extracts an integer path variable, responding with a 400 on
// malformed input.
func pathInt(w http.ResponseWriter, r *http.Request, op, name string) (int, bool) {
	v, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return 0, false
	}
	return v, true
}
