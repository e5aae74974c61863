// Package toolcall converts a model's textual output into a vetted final
// response: it lexes [TOOL_CALL: ...] directives out of free text, resolves
// them against the resource registry, and renders a final string that never
// contains a literal the registry didn't produce.
package toolcall

import (
	"regexp"
	"strings"
)

// Name is one of the closed set of tool names the grammar allows.
type Name string

const (
	ToolGetCrisisResources Name = "get_crisis_resources"
	ToolCheckHallucination Name = "check_hallucination"
	ToolLogIncident        Name = "log_incident"
)

func (n Name) known() bool {
	switch n {
	case ToolGetCrisisResources, ToolCheckHallucination, ToolLogIncident:
		return true
	}
	return false
}

// Directive is a parsed [TOOL_CALL: name(args)] occurrence.
type Directive struct {
	Name Name
	Args map[string]string
	Raw  string
}

// SegmentKind distinguishes literal text from a directive placeholder in a
// parsed sequence.
type SegmentKind int

const (
	SegmentText SegmentKind = iota
	SegmentDirective
)

// Segment is one piece of a parsed output: either literal text, or a
// reference to one of the parsed Directives by index.
type Segment struct {
	Kind           SegmentKind
	Text           string
	DirectiveIndex int
}

var directivePattern = regexp.MustCompile(`(?i)\[TOOL_CALL:\s*(\w+)\s*\(([^)]*)\)\s*\]`)
var argPattern = regexp.MustCompile(`(\w+)\s*=\s*(?:'([^']*)'|"([^"]*)"|(\{[^}]*\})|([^,\s]+))`)

// bareToolCallMarker is used to detect a [TOOL_CALL: ...] occurrence that
// directivePattern failed to match structurally — missing a closing paren or
// bracket, for instance — so it can be surfaced as a MalformedDirective
// rather than silently passed through as ordinary text.
var bareToolCallMarker = regexp.MustCompile(`(?i)\[TOOL_CALL:`)

// Parse lexes text into an ordered sequence of Segments and the Directives
// they reference. It tolerates whitespace, single or double quoted argument
// values, and trailing commas inside argument lists. Any [TOOL_CALL: occurrence
// that the grammar cannot structurally parse is reported via malformed,
// one entry per offending snippet; callers are expected to substitute a
// fallback response for a turn with any malformed entries.
func Parse(text string) (segments []Segment, directives []Directive, malformed []string) {
	matches := directivePattern.FindAllStringSubmatchIndex(text, -1)

	covered := make([]bool, len(text)+1)
	cursor := 0

	for _, m := range matches {
		start, end := m[0], m[1]
		if start > cursor {
			segments = append(segments, Segment{Kind: SegmentText, Text: text[cursor:start]})
		}

		name := Name(strings.ToLower(text[m[2]:m[3]]))
		argStr := text[m[4]:m[5]]
		args := parseArgs(argStr)

		directives = append(directives, Directive{Name: name, Args: args, Raw: text[start:end]})
		segments = append(segments, Segment{Kind: SegmentDirective, DirectiveIndex: len(directives) - 1})

		for i := start; i < end && i < len(covered); i++ {
			covered[i] = true
		}
		cursor = end
	}
	if cursor < len(text) {
		segments = append(segments, Segment{Kind: SegmentText, Text: text[cursor:]})
	}

	for _, loc := range bareToolCallMarker.FindAllStringIndex(text, -1) {
		if loc[0] < len(covered) && covered[loc[0]] {
			continue
		}
		end := loc[1]
		if closeIdx := strings.IndexByte(text[loc[0]:], ']'); closeIdx >= 0 {
			end = loc[0] + closeIdx + 1
		} else {
			end = len(text)
		}
		malformed = append(malformed, text[loc[0]:end])
	}

	return segments, directives, malformed
}

func parseArgs(argStr string) map[string]string {
	args := make(map[string]string)
	for _, m := range argPattern.FindAllStringSubmatch(argStr, -1) {
		key := m[1]
		switch {
		case m[2] != "":
			args[key] = m[2]
		case m[3] != "":
			args[key] = m[3]
		case m[4] != "":
			args[key] = m[4]
		default:
			args[key] = m[5]
		}
	}
	return args
}

// ExtractAndRemove returns the text with all directives removed (for
// composing a human-readable body around resolved substitutions) along with
// the directives that were found.
func ExtractAndRemove(text string) (cleaned string, directives []Directive) {
	segments, directives, _ := Parse(text)
	var b strings.Builder
	for _, seg := range segments {
		if seg.Kind == SegmentText {
			b.WriteString(seg.Text)
		}
	}
	return strings.TrimSpace(b.String()), directives
}
