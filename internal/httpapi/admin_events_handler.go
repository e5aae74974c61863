package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/coastlineai/sentinel/internal/audit"
	"github.com/coastlineai/sentinel/pkg/logging"
)

// AdminEventsHandler exposes read and review-status-advance access to the
// crisis event audit log.
type AdminEventsHandler struct {
	store  *audit.Store
	logger *logging.Logger
}

// NewAdminEventsHandler builds an AdminEventsHandler.
func NewAdminEventsHandler(store *audit.Store, logger *logging.Logger) *AdminEventsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminEventsHandler{store: store, logger: logger}
}

// List handles GET /admin/events.
func (h *AdminEventsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := audit.Filter{
		ConversationID: q.Get("conversation_id"),
		RiskLevel:      q.Get("risk_level"),
		ReviewerStatus: audit.ReviewStatus(q.Get("reviewer_status")),
	}
	if since := q.Get("since"); since != "" {
		parsed, err := time.Parse(time.RFC3339, since)
		if err != nil {
			writeError(w, http.StatusBadRequest, "since must be RFC3339")
			return
		}
		filter.Since = parsed
	}
	if limit := q.Get("limit"); limit != "" {
		parsed, err := strconv.Atoi(limit)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		filter.Limit = parsed
	}

	events, err := h.store.Query(r.Context(), filter)
	if err != nil {
		h.logger.Error("admin events query failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "failed to query events")
		return
	}
	writeJSON(w, http.StatusOK, events)
}

type reviewStatusBody struct {
	Status audit.ReviewStatus `json:"status"`
}

// SetReviewerStatus handles PATCH /admin/events/{eventID}/review.
func (h *AdminEventsHandler) SetReviewerStatus(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	var body reviewStatusBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.store.SetReviewerStatus(r.Context(), eventID, body.Status); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
