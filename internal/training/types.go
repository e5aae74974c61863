// Package training implements the fine-tuning data pipeline: compose
// instruction/output pairs into training examples, normalize them to a
// consistent tool-calling policy, and validate the resulting corpus before
// it is handed to a training run.
package training

import "github.com/coastlineai/sentinel/internal/registry"

// InstructionTemplate is a composer input: a template body with a fixed
// Observation: slot that the composer substitutes the prompt text into.
type InstructionTemplate struct {
	ID       string
	Template string
}

// Prompt joins an observation to an instruction template and an output by id.
type Prompt struct {
	ID                   string
	Text                 string
	InstructionTemplate  string
	OutputID             string
}

// Output is a composer input: the canned response body plus the
// classification metadata used to enforce the tool-call policy. Region is
// the asserted region for any get_crisis_resources directive the normalizer
// inserts for this output; left empty, the normalizer's own default
// applies.
type Output struct {
	ID            string
	Text          string
	RiskLevel     string
	SituationType string
	TopicalTags   []string
	Region        registry.Region
}

// Metadata is the optional per-example annotation block.
type Metadata struct {
	RiskLevel          string          `json:"risk_level,omitempty"`
	SituationType      string          `json:"situation_type,omitempty"`
	CulturalMarkers    []string        `json:"cultural_markers,omitempty"`
	ResourcesMentioned []string        `json:"resources_mentioned,omitempty"`
	Region             registry.Region `json:"region,omitempty"`
}

// TrainingExample is one line-delimited record of the output corpus.
type TrainingExample struct {
	Instruction string    `json:"instruction"`
	Input       string    `json:"input"`
	Output      string    `json:"output"`
	Metadata    *Metadata `json:"metadata,omitempty"`
}

// situationForRisk maps a risk level to the get_crisis_resources
// situation_type it must be paired with under the consistent-tool-usage
// policy. LOW intentionally has no entry: it takes zero tool calls.
var situationForRisk = map[string]string{
	"CRITICAL": "emergency",
	"HIGH":     "crisis",
	"MEDIUM":   "support",
}
