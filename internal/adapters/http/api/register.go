// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/osfanbuff63/pkw-tracking-bot/internal/domain/model"
)

// registerRequest mirrors the body of POST /api/register. Exactly one
// of user_id and user_ids must be set.
type registerRequest struct {
	UserID  string   `json:"user_id,omitempty"`
	UserIDs []string `json:"user_ids,omitempty"`
}

func (r registerRequest) validate() error {
	switch {
	case r.UserID != "" && len(r.UserIDs) > 0:
		return errors.New("user_id and user_ids cannot both be given")
	case r.UserID == "" && len(r.UserIDs) == 0:
		return errors.New("one of user_id and user_ids must be given")
	}
	return nil
}

// RegisterDependencies defines the interface for registration.
type RegisterDependencies interface {
	RegisterUser(ctx context.Context, actor model.UserID) error
	RegisterUsers(ctx context.Context, users []model.UserID) error
}

// RegisterHandler handles registration requests.
type RegisterHandler struct {
	deps RegisterDependencies
}

// NewRegisterHandler creates a new register handler.
func NewRegisterHandler(deps RegisterDependencies) *RegisterHandler {
	return &RegisterHandler{deps: deps}
}

// HandleRegister handles POST /api/register requests.
func (h *RegisterHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	const op = "api.register"
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	var err error
	if req.UserID != "" {
		err = h.deps.RegisterUser(r.Context(), model.UserID(req.UserID))
	} else {
		ids := make([]model.UserID, len(req.UserIDs))
		for i, id := range req.UserIDs {
			ids[i] = model.UserID(id)
		}
		err = h.deps.RegisterUsers(r.Context(), ids)
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
