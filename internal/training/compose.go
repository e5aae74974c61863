package training

import (
	"fmt"
	"strings"
)

// ComposeResult is the output of joining composer inputs into training
// examples, plus the non-fatal warnings the build surfaced.
type ComposeResult struct {
	Examples []TrainingExample
	Warnings []string
}

// Compose performs the three-way join of prompts, instruction templates,
// and outputs: Prompt -> InstructionTemplate (substituting the prompt's
// observation text into the template's Observation: slot) and Prompt ->
// Output (by id). It fails the build if any prompt references a missing
// template or output id; an output referenced by zero prompts is reported
// as a warning, not an error.
func Compose(templates []InstructionTemplate, prompts []Prompt, outputs []Output) (ComposeResult, error) {
	templateByID := make(map[string]InstructionTemplate, len(templates))
	for _, t := range templates {
		templateByID[t.ID] = t
	}
	outputByID := make(map[string]Output, len(outputs))
	for _, o := range outputs {
		outputByID[o.ID] = o
	}

	referenced := make(map[string]bool, len(outputs))
	examples := make([]TrainingExample, 0, len(prompts))

	for _, p := range prompts {
		tmpl, ok := templateByID[p.InstructionTemplate]
		if !ok {
			return ComposeResult{}, fmt.Errorf("training: prompt %q: %w: instruction template %q", p.ID, ErrMissingReference, p.InstructionTemplate)
		}
		out, ok := outputByID[p.OutputID]
		if !ok {
			return ComposeResult{}, fmt.Errorf("training: prompt %q: %w: output %q", p.ID, ErrMissingReference, p.OutputID)
		}
		referenced[out.ID] = true

		instruction := substituteObservation(tmpl.Template, p.Text)
		examples = append(examples, TrainingExample{
			Instruction: instruction,
			Input:       "",
			Output:      out.Text,
			Metadata: &Metadata{
				RiskLevel:     out.RiskLevel,
				SituationType: out.SituationType,
				Region:        out.Region,
			},
		})
	}

	var warnings []string
	for _, o := range outputs {
		if !referenced[o.ID] {
			warnings = append(warnings, fmt.Sprintf("output %q is not referenced by any prompt", o.ID))
		}
	}

	return ComposeResult{Examples: examples, Warnings: warnings}, nil
}

// substituteObservation fills the template's fixed Observation: slot with
// text. Templates in this pipeline always carry a literal "Observation:"
// marker followed by the placeholder to replace.
func substituteObservation(template, text string) string {
	const marker = "Observation:"
	idx := strings.Index(template, marker)
	if idx == -1 {
		return template
	}
	prefix := template[:idx+len(marker)]
	rest := template[idx+len(marker):]
	// The slot is the remainder of the line following the marker; replace
	// it wholesale with the observation text, quoted the way the original
	// prompts were authored.
	if nl := strings.IndexByte(rest, '\n'); nl != -1 {
		rest = rest[nl:]
	} else {
		rest = ""
	}
	return prefix + " '" + text + "'" + rest
}
