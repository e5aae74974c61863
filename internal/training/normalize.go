package training

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/coastlineai/sentinel/internal/registry"
	"github.com/coastlineai/sentinel/internal/toolcall"
)

// legacyPreamblePattern matches the old instruction preamble that embedded
// a resource list directly in the prompt, teaching memorization of
// literals instead of tool use. Normalize strips it down to the concise
// role-description form.
var legacyPreamblePattern = regexp.MustCompile(`(?s)^.*?(Analyze this message:)`)

const canonicalInstructionPrefix = `You are a crisis detection assistant. Classify the risk level of the user's message and, when warranted, use tool calls to retrieve verified crisis resources instead of stating them from memory.

Analyze this message:`

// Normalize enforces the risk/situation/tool-call policy on every example
// and canonicalizes the instruction text, returning normalized copies and
// leaving the input slice unchanged. For CRITICAL, HIGH, or
// MEDIUM risk levels missing a get_crisis_resources directive, it inserts
// one mapped to the risk level's situation_type; for LOW, it strips any
// tool-call directives present.
func Normalize(examples []TrainingExample) []TrainingExample {
	out := make([]TrainingExample, len(examples))
	for i, ex := range examples {
		out[i] = normalizeOne(ex)
	}
	return out
}

func normalizeOne(ex TrainingExample) TrainingExample {
	ex.Instruction = canonicalizeInstruction(ex.Instruction)

	risk := ""
	region := string(registry.RegionNZ)
	if ex.Metadata != nil {
		risk = ex.Metadata.RiskLevel
		if ex.Metadata.Region != "" {
			region = string(ex.Metadata.Region)
		}
	}

	switch risk {
	case "CRITICAL", "HIGH", "MEDIUM":
		ex.Output = ensureResourceDirective(ex.Output, risk, region)
	case "LOW":
		ex.Output = stripToolCalls(ex.Output)
	}

	return ex
}

// canonicalizeInstruction removes a legacy preamble (one that embedded a
// resource list ahead of the observation) and replaces it with the concise
// role-description form, preserving the observation sentence itself.
func canonicalizeInstruction(instruction string) string {
	if !strings.Contains(instruction, "Analyze this message:") {
		return instruction
	}
	return legacyPreamblePattern.ReplaceAllString(instruction, canonicalInstructionPrefix)
}

func ensureResourceDirective(output, riskLevel, region string) string {
	if strings.Contains(output, "get_crisis_resources") {
		return output
	}
	situation := situationForRisk[riskLevel]
	directive := fmt.Sprintf("[TOOL_CALL: get_crisis_resources(region='%s', situation_type='%s')]", region, situation)
	return insertDirective(output, directive)
}

// insertDirective places directive after an ACTION: or PATTERNS DETECTED:
// line if one exists, otherwise after the first line of output.
func insertDirective(output, directive string) string {
	lines := strings.Split(output, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "ACTION:") || strings.HasPrefix(line, "PATTERNS DETECTED:") {
			return strings.Join(insertAt(lines, i+1, directive), "\n")
		}
	}
	insertIdx := 1
	if insertIdx > len(lines) {
		insertIdx = len(lines)
	}
	return strings.Join(insertAt(lines, insertIdx, directive), "\n")
}

func insertAt(lines []string, idx int, value string) []string {
	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:idx]...)
	out = append(out, value)
	out = append(out, lines[idx:]...)
	return out
}

// stripToolCalls removes all tool-call directives from output, collapsing
// the blank lines left behind.
func stripToolCalls(output string) string {
	segments, directives, _ := toolcall.Parse(output)
	if len(directives) == 0 {
		return output
	}
	subs := make([]toolcall.Substitution, len(directives))
	for i := range directives {
		subs[i] = toolcall.Substitution{DirectiveIndex: i, Text: ""}
	}
	return toolcall.Render(segments, subs)
}
