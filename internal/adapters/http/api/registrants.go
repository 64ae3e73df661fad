// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/osfanbuff63/pkw-tracking-bot/internal/domain/model"
)

// RegistrantsDependencies defines the interface for registrant queries.
type RegistrantsDependencies interface {
	RegisteredUsers(ctx context.Context) ([]model.UserID, error)
}

// RegistrantsHandler handles registrant list requests.
type RegistrantsHandler struct {
	deps RegistrantsDependencies
}

// NewRegistrantsHandler creates a new registrants handler.
func NewRegistrantsHandler(deps RegistrantsDependencies) *RegistrantsHandler {
	return &RegistrantsHandler{deps: deps}
}

type registrantsResponse struct {
	UserIDs []string `json:"user_ids"`
}

// HandleGetRegistrants handles GET /api/registrants requests.
func (h *RegistrantsHandler) HandleGetRegistrants(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_registrants"
	users, err := h.deps.RegisteredUsers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, ErrInternal))
		return
	}
	ids := make([]string, len(users))
	for i, u := range users {
		ids[i] = string(u)
	}
	writeJSON(w, http.StatusOK, registrantsResponse{UserIDs: ids})
}
