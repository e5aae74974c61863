package toolcall

import "strings"

// Render replaces each directive segment with its resolved substitution and
// concatenates the result. The final text never contains an unresolved
// [TOOL_CALL: substring: every directive index present in segments must have
// a corresponding entry in substitutions, enforced by the caller having run
// Resolve over the same directive slice Parse produced.
func Render(segments []Segment, substitutions []Substitution) string {
	byIndex := make(map[int]string, len(substitutions))
	for _, s := range substitutions {
		byIndex[s.DirectiveIndex] = s.Text
	}

	var b strings.Builder
	for _, seg := range segments {
		switch seg.Kind {
		case SegmentText:
			b.WriteString(seg.Text)
		case SegmentDirective:
			b.WriteString(byIndex[seg.DirectiveIndex])
		}
	}
	return collapseBlankLines(b.String())
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	var out []string
	blank := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// SanitizeSegments discards any text segment containing one of the blocked
// substrings, implementing the post-scan's "discard offending segments"
// behavior ahead of resolution. Directive segments are never discarded here:
// a directive's literals only ever come from the registry during Resolve,
// so a blocked literal can only have been typed directly into the model's
// prose.
func SanitizeSegments(segments []Segment, blocked []string) (cleaned []Segment, removedAny bool) {
	if len(blocked) == 0 {
		return segments, false
	}
	for _, seg := range segments {
		if seg.Kind == SegmentText && containsAny(seg.Text, blocked) {
			removedAny = true
			continue
		}
		cleaned = append(cleaned, seg)
	}
	return cleaned, removedAny
}

func containsAny(text string, substrings []string) bool {
	for _, s := range substrings {
		if s != "" && strings.Contains(text, s) {
			return true
		}
	}
	return false
}
