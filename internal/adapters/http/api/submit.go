// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/osfanbuff63/pkw-tracking-bot/internal/domain/model"
)

// submitRequest mirrors the body of POST /api/times.
type submitRequest struct {
	UserID   string `json:"user_id"`
	Course   int    `json:"course"`
	Time     string `json:"time"`
	Advanced bool   `json:"advanced"`
}

func (r submitRequest) validate() error {
	switch {
	case strings.TrimSpace(r.UserID) == "":
		return errors.New("missing user_id")
	case strings.TrimSpace(r.Time) == "":
		return errors.New("missing time")
	}
	return nil
}

// SubmitDependencies defines the interface for time submission.
type SubmitDependencies interface {
	SubmitTime(ctx context.Context, actor model.UserID, course int, rawTime string, advanced bool) error
}

// SubmitHandler handles time submissions.
type SubmitHandler struct {
	deps SubmitDependencies
}

// NewSubmitHandler creates a new submit handler.
func NewSubmitHandler(deps SubmitDependencies) *SubmitHandler {
	return &SubmitHandler{deps: deps}
}

// HandleSubmitTime handles POST /api/times requests.
func (h *SubmitHandler) HandleSubmitTime(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_time"
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	if err := h.deps.SubmitTime(r.Context(), model.UserID(req.UserID), req.Course, req.Time, req.Advanced); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
