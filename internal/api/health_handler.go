package api

import (
	"net/http"

	"github.com/phrazzld/studygen/internal/api/shared"
)

// ProviderLister reports the configured providers in precedence order.
// *generation.Router implements it.
type ProviderLister interface {
	Names() []string
}

// HealthHandler handles GET /health requests
type HealthHandler struct {
	providers ProviderLister
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(providers ProviderLister) *HealthHandler {
	return &HealthHandler{providers: providers}
}

// Health reports liveness and the configured providers. A server without
// providers is still live; generation requests answer 503.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	names := []string{}
	if h.providers != nil {
		names = append(names, h.providers.Names()...)
	}
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{Status: "ok", Providers: names})
}
