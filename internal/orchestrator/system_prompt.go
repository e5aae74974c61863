package orchestrator

import (
	"fmt"
	"strings"

	"github.com/coastlineai/sentinel/internal/classifier"
	"github.com/coastlineai/sentinel/internal/registry"
)

const baseSystemPrompt = `You are a crisis-aware support assistant. You do not have access to a live
directory of phone numbers, URLs, or emails. Never state a specific resource
literal yourself — when the user needs a hotline, website, or other verified
resource, emit a [TOOL_CALL: get_crisis_resources(region='%s', situation_type='%s')]
directive and let the executor fill in the verified text. Never invent a
resource, and never suggest the user's difficulty is their own fault.

Forbidden:
- Stating a phone number, URL, or email directly in your reply.
- Any language that blames the user for another person's behavior toward them.
- Claiming a resource exists without emitting the tool-call directive.

When the situation is not severe, respond naturally and warmly without any
tool-call directive.`

// buildSystemPrompt constructs the per-turn system prompt: it names the
// role, forbids fabricated resources and victim-blaming, and — when the
// pre-scan risk is MEDIUM or higher — instructs the model to emit a
// get_crisis_resources directive for the mapped situation type.
func buildSystemPrompt(region registry.Region, risk classifier.RiskLevel, culturalContext []string) string {
	situation := situationForRisk[risk]
	if situation == "" {
		situation = registry.SituationSupport
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf(baseSystemPrompt, region, situation))

	if risk.AtLeast(classifier.RiskMedium) {
		b.WriteString("\n\nThis conversation has been flagged at elevated risk. You must emit the get_crisis_resources directive above before your reply ends.")
	}

	if len(culturalContext) > 0 {
		b.WriteString("\n\nLocal context for this region: ")
		b.WriteString(strings.Join(culturalContext, "; "))
	}

	return b.String()
}
