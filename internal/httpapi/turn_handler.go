package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/coastlineai/sentinel/internal/observability/metrics"
	"github.com/coastlineai/sentinel/internal/orchestrator"
	"github.com/coastlineai/sentinel/internal/registry"
	"github.com/coastlineai/sentinel/pkg/logging"
)

// TurnHandler exposes the per-turn orchestrator pipeline over HTTP.
type TurnHandler struct {
	orchestrator *orchestrator.Orchestrator
	metrics      *metrics.TurnMetrics
	logger       *logging.Logger
}

// NewTurnHandler builds a TurnHandler. m may be nil, in which case turn
// metrics are skipped.
func NewTurnHandler(o *orchestrator.Orchestrator, m *metrics.TurnMetrics, logger *logging.Logger) *TurnHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &TurnHandler{orchestrator: o, metrics: m, logger: logger}
}

type turnRequest struct {
	UserText             string   `json:"user_text"`
	ConversationHistory  []string `json:"conversation_history"`
	Region               string   `json:"region"`
	UserID               string   `json:"user_id"`
	ConversationID       string   `json:"conversation_id"`
	MessageID            string   `json:"message_id"`
}

type turnResponse struct {
	FinalText                string `json:"final_text"`
	Risk                     string `json:"risk"`
	EventID                  string `json:"event_id,omitempty"`
	ConversationStopped      bool   `json:"conversation_stopped"`
	AIFailureDetected        bool   `json:"ai_failure_detected"`
	ModelDegradationDetected bool   `json:"model_degradation_detected"`
}

// Process handles POST /v1/turn: runs one request through the orchestrator
// and returns the sanitized final text plus the audit metadata the caller
// needs to decide whether to keep the conversation open.
func (h *TurnHandler) Process(w http.ResponseWriter, r *http.Request) {
	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserText == "" || req.UserID == "" || req.ConversationID == "" {
		writeError(w, http.StatusBadRequest, "user_text, user_id, and conversation_id are required")
		return
	}

	resp := h.orchestrator.Process(r.Context(), orchestrator.Request{
		UserText:            req.UserText,
		ConversationHistory: req.ConversationHistory,
		Region:              registry.Region(req.Region),
		UserID:              req.UserID,
		ConversationID:      req.ConversationID,
		MessageID:           req.MessageID,
	})

	h.metrics.ObserveTurn(string(resp.Risk))
	if resp.AIFailureDetected {
		h.metrics.ObserveAIFailure("post_scan_or_model")
	}
	if resp.ModelDegradationDetected {
		h.metrics.ObserveAIFailure("model_degradation")
	}

	writeJSON(w, http.StatusOK, turnResponse{
		FinalText:                resp.FinalText,
		Risk:                     string(resp.Risk),
		EventID:                  resp.EventID,
		ConversationStopped:      resp.ConversationStopped,
		AIFailureDetected:        resp.AIFailureDetected,
		ModelDegradationDetected: resp.ModelDegradationDetected,
	})
}
