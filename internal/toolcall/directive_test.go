package toolcall

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSingleDirective(t *testing.T) {
	text := "Here is help: [TOOL_CALL: get_crisis_resources(region='NZ', situation_type='crisis')] stay safe."
	segments, directives, malformed := Parse(text)

	require.Empty(t, malformed)
	require.Len(t, directives, 1)
	assert.Equal(t, ToolGetCrisisResources, directives[0].Name)
	assert.Equal(t, "NZ", directives[0].Args["region"])
	assert.Equal(t, "crisis", directives[0].Args["situation_type"])

	require.Len(t, segments, 3)
	assert.Equal(t, SegmentText, segments[0].Kind)
	assert.Equal(t, SegmentDirective, segments[1].Kind)
	assert.Equal(t, SegmentText, segments[2].Kind)
}

func TestParseToleratesWhitespaceAndDoubleQuotes(t *testing.T) {
	text := `[TOOL_CALL:  get_crisis_resources( region = "NZ" , situation_type = "emergency" ) ]`
	_, directives, malformed := Parse(text)
	require.Empty(t, malformed)
	require.Len(t, directives, 1)
	assert.Equal(t, "NZ", directives[0].Args["region"])
	assert.Equal(t, "emergency", directives[0].Args["situation_type"])
}

func TestParseToleratesTrailingComma(t *testing.T) {
	text := `[TOOL_CALL: log_incident(incident_data={type='suicide_risk', severity='critical',})]`
	_, directives, malformed := Parse(text)
	require.Empty(t, malformed)
	require.Len(t, directives, 1)
	assert.Equal(t, ToolLogIncident, directives[0].Name)
}

func TestParseMultipleDirectives(t *testing.T) {
	text := "[TOOL_CALL: get_crisis_resources(region='NZ', situation_type='emergency')][TOOL_CALL: log_incident(incident_data={type='suicide_risk', severity='critical'})]"
	_, directives, malformed := Parse(text)
	require.Empty(t, malformed)
	require.Len(t, directives, 2)
	assert.Equal(t, ToolGetCrisisResources, directives[0].Name)
	assert.Equal(t, ToolLogIncident, directives[1].Name)
}

func TestParseDetectsMalformedDirective(t *testing.T) {
	text := "Please call [TOOL_CALL: get_crisis_resources(region='NZ' for help."
	_, directives, malformed := Parse(text)
	assert.Empty(t, directives)
	require.Len(t, malformed, 1)
}

func TestParseNoToolCallsPassesThrough(t *testing.T) {
	segments, directives, malformed := Parse("just a plain reply")
	assert.Empty(t, directives)
	assert.Empty(t, malformed)
	require.Len(t, segments, 1)
	assert.Equal(t, "just a plain reply", segments[0].Text)
}

func TestRenderNeverLeavesUnresolvedDirective(t *testing.T) {
	text := "[TOOL_CALL: get_crisis_resources(region='NZ', situation_type='emergency')]"
	segments, directives, _ := Parse(text)
	subs := make([]Substitution, len(directives))
	for i := range directives {
		subs[i] = Substitution{DirectiveIndex: i, Text: "Emergency Services: 111"}
	}
	out := Render(segments, subs)
	assert.NotContains(t, out, "[TOOL_CALL:")
	assert.Contains(t, out, "111")
}

func TestSanitizeSegmentsDropsBlockedText(t *testing.T) {
	segments := []Segment{
		{Kind: SegmentText, Text: "call 0800 543 800 for help"},
		{Kind: SegmentText, Text: "you are not alone"},
	}
	cleaned, removed := SanitizeSegments(segments, []string{"0800 543 800"})
	assert.True(t, removed)
	require.Len(t, cleaned, 1)
	assert.Equal(t, "you are not alone", cleaned[0].Text)
}
