package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/coastlineai/sentinel/internal/registry"
	"github.com/coastlineai/sentinel/pkg/logging"
)

// AdminRegistryHandler exposes operator CRUD over the resource registry:
// lookups for spot-checking, upserts for onboarding a verified resource,
// verification-event recording, and retirement.
type AdminRegistryHandler struct {
	store  *registry.Store
	logger *logging.Logger
}

// NewAdminRegistryHandler builds an AdminRegistryHandler.
func NewAdminRegistryHandler(store *registry.Store, logger *logging.Logger) *AdminRegistryHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminRegistryHandler{store: store, logger: logger}
}

// Lookup handles GET /admin/registry/{region}/{situationType}.
func (h *AdminRegistryHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	region := registry.Region(chi.URLParam(r, "region"))
	situation := registry.SituationType(chi.URLParam(r, "situationType"))
	tag := registry.TopicalTag(r.URL.Query().Get("topical_tag"))

	results := h.store.Lookup(region, situation, tag)
	writeJSON(w, http.StatusOK, results)
}

type upsertResourceBody struct {
	ID                  string             `json:"id"`
	Region              registry.Region    `json:"region"`
	ServiceName         string             `json:"service_name"`
	Channels            []registry.Channel `json:"channels"`
	HoursOfOperation    string             `json:"hours_of_operation"`
	Languages           []string           `json:"languages"`
	Description         string             `json:"description"`
	SituationType       registry.SituationType `json:"situation_type"`
	TopicalTags         []registry.TopicalTag  `json:"topical_tags"`
	VerifiedOn          time.Time          `json:"verified_on"`
	VerifiedBy          string             `json:"verified_by"`
	VerificationMethod  string             `json:"verification_method"`
	Status              registry.Status    `json:"status"`
}

// Upsert handles PUT /admin/registry/resources.
func (h *AdminRegistryHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var body upsertResourceBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.ID == "" || body.Region == "" {
		writeError(w, http.StatusBadRequest, "id and region are required")
		return
	}
	if body.Status == "" {
		body.Status = registry.StatusActive
	}

	resource := registry.Resource{
		ID:                 body.ID,
		Region:              body.Region,
		ServiceName:         body.ServiceName,
		Channels:            body.Channels,
		HoursOfOperation:    body.HoursOfOperation,
		Languages:           body.Languages,
		Description:         body.Description,
		SituationType:       body.SituationType,
		TopicalTags:         body.TopicalTags,
		VerifiedOn:          body.VerifiedOn,
		VerifiedBy:          body.VerifiedBy,
		VerificationMethod:  body.VerificationMethod,
		Status:              body.Status,
	}

	if err := h.store.UpsertResource(r.Context(), resource); err != nil {
		h.logger.Warn("admin registry upsert rejected", "error", err.Error(), "resource_id", body.ID)
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resource)
}

type verificationEventBody struct {
	ID         string                        `json:"id"`
	ResourceID string                        `json:"resource_id"`
	VerifierID string                        `json:"verifier_id"`
	Method     string                        `json:"method"`
	Outcome    registry.VerificationOutcome  `json:"outcome"`
	Notes      string                        `json:"notes"`
}

// RecordVerification handles POST /admin/registry/verifications.
func (h *AdminRegistryHandler) RecordVerification(w http.ResponseWriter, r *http.Request) {
	var body verificationEventBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.ResourceID == "" || body.Outcome == "" {
		writeError(w, http.StatusBadRequest, "resource_id and outcome are required")
		return
	}

	event := registry.VerificationEvent{
		ID:         body.ID,
		ResourceID: body.ResourceID,
		AttemptAt:  time.Now().UTC(),
		VerifierID: body.VerifierID,
		Method:     body.Method,
		Outcome:    body.Outcome,
		Notes:      body.Notes,
	}

	if err := h.store.RecordVerification(r.Context(), event); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// Retire handles DELETE /admin/registry/resources/{resourceID}.
func (h *AdminRegistryHandler) Retire(w http.ResponseWriter, r *http.Request) {
	resourceID := chi.URLParam(r, "resourceID")
	if err := h.store.Retire(r.Context(), resourceID); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
