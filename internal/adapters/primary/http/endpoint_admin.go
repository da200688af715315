package http

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/vibin/wikisearch-bot/internal/core/domain"
)

// endpointResponse is the wire form of one endpoint record
type endpointResponse struct {
	Alias    string `json:"alias"`
	Endpoint string `json:"endpoint"`
}

// ListEndpoints returns all endpoint aliases configured for a tenant
func (h *Handler) ListEndpoints(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenant")

	records, err := h.endpoints.ListByTenant(r.Context(), tenant)
	if err != nil {
		h.logger.Error("Failed to list endpoints", "tenant", tenant, "error", err)
		h.respondWithError(w, http.StatusInternalServerError, "Failed to list endpoints")
		return
	}

	response := make([]endpointResponse, 0, len(records))
	for _, rec := range records {
		response = append(response, endpointResponse{
			Alias:    rec.Alias,
			Endpoint: rec.Endpoint,
		})
	}

	h.respondWithJSON(w, http.StatusOK, response)
}

// SetEndpoint adds or updates one endpoint alias for a tenant
func (h *Handler) SetEndpoint(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenant")
	alias := chi.URLParam(r, "alias")

	var req struct {
		Endpoint string `json:"endpoint"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if _, err := url.ParseRequestURI(req.Endpoint); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid endpoint URL")
		return
	}

	// Seed the defaults first so a fresh tenant ends up with a default
	// record alongside the explicit alias
	if err := h.resolver.EnsureTenant(r.Context(), tenant); err != nil {
		h.logger.Error("Failed to seed tenant defaults", "tenant", tenant, "error", err)
		h.respondWithError(w, http.StatusInternalServerError, "Failed to initialize tenant")
		return
	}

	if err := h.endpoints.Upsert(r.Context(), tenant, alias, req.Endpoint); err != nil {
		h.logger.Error("Failed to set endpoint", "tenant", tenant, "alias", alias, "error", err)
		h.respondWithError(w, http.StatusInternalServerError, "Failed to set endpoint")
		return
	}

	h.respondWithJSON(w, http.StatusOK, endpointResponse{Alias: alias, Endpoint: req.Endpoint})
}

// DeleteEndpoint removes one endpoint alias for a tenant. The default
// alias is protected.
func (h *Handler) DeleteEndpoint(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenant")
	alias := chi.URLParam(r, "alias")

	if alias == domain.DefaultAlias {
		h.respondWithError(w, http.StatusBadRequest, "Can't delete the default endpoint")
		return
	}

	if err := h.endpoints.Delete(r.Context(), tenant, alias); err != nil {
		h.logger.Error("Failed to delete endpoint", "tenant", tenant, "alias", alias, "error", err)
		h.respondWithError(w, http.StatusInternalServerError, "Failed to delete endpoint")
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]string{"message": "Endpoint deleted"})
}
