package training

import "github.com/coastlineai/sentinel/internal/registry"

// ExternalRecord is one labeled example from a crisis corpus ingested from
// outside this pipeline's own composed data.
type ExternalRecord struct {
	Text      string
	Response  string
	RiskLevel string
}

// IngestExternal adapts externally sourced crisis-corpus records into
// TrainingExamples. Every ingested example is stamped region=GLOBAL: an
// external corpus carries no guarantee its literals belong to any
// supported region, so it is routed through the same normalizer and
// validator as everything else without ever being trusted to carry
// region-specific literals.
func IngestExternal(records []ExternalRecord) []TrainingExample {
	out := make([]TrainingExample, 0, len(records))
	for _, rec := range records {
		text := scrubPII(rec.Text)
		out = append(out, TrainingExample{
			Instruction: canonicalizeInstruction(canonicalInstructionPrefix + " '" + text + "'"),
			Input:       "",
			Output:      scrubPII(rec.Response),
			Metadata: &Metadata{
				RiskLevel: rec.RiskLevel,
				Region:    registry.RegionGlobal,
			},
		})
	}
	return out
}
