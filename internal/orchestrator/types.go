package orchestrator

import (
	"github.com/coastlineai/sentinel/internal/classifier"
	"github.com/coastlineai/sentinel/internal/registry"
)

// Request is one turn submitted to the orchestrator. Callers are expected
// to serialize turns for a single (UserID, ConversationID) pair; the
// orchestrator itself makes no ordering guarantee across conversations.
type Request struct {
	UserText            string
	ConversationHistory []string
	Region              registry.Region
	UserID              string
	ConversationID      string
	MessageID           string
}

// Response is returned for every turn; the orchestrator never raises an
// error to the caller — every failure resolves to a safe response here.
type Response struct {
	FinalText                string
	Risk                     classifier.RiskLevel
	EventID                  string
	ConversationStopped      bool
	AIFailureDetected        bool
	ModelDegradationDetected bool
}

// situationForRisk maps a pre-scan risk level to the get_crisis_resources
// situation_type the rule tier and the system prompt instruct the model to
// use for it. LOW has no entry: it takes zero tool calls.
var situationForRisk = map[classifier.RiskLevel]registry.SituationType{
	classifier.RiskCritical: registry.SituationEmergency,
	classifier.RiskHigh:     registry.SituationCrisis,
	classifier.RiskMedium:   registry.SituationSupport,
}
