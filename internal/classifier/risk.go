// Package classifier implements the rule-tier crisis classifier: a
// deterministic pre-LLM scan of user text and a post-LLM scan of model
// output, sharing one set of region-parameterized pattern definitions.
package classifier

// RiskLevel is the closed set of severity classifications assigned to a turn.
type RiskLevel string

const (
	RiskCritical RiskLevel = "CRITICAL"
	RiskHigh     RiskLevel = "HIGH"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskLow      RiskLevel = "LOW"
)

// severity orders RiskLevel by how severe it is; higher is more severe.
func (r RiskLevel) severity() int {
	switch r {
	case RiskCritical:
		return 3
	case RiskHigh:
		return 2
	case RiskMedium:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether r is at least as severe as other, for callers
// outside this package that need to gate behavior on a risk threshold
// (e.g. "invoke the model only below CRITICAL", "log an event at MEDIUM+").
func (r RiskLevel) AtLeast(other RiskLevel) bool {
	return r.severity() >= other.severity()
}

// Valid reports whether r is one of the closed risk levels.
func (r RiskLevel) Valid() bool {
	switch r {
	case RiskCritical, RiskHigh, RiskMedium, RiskLow:
		return true
	}
	return false
}

// ParseRiskLevel parses s into a RiskLevel, defaulting to LOW if unrecognized.
func ParseRiskLevel(s string) RiskLevel {
	r := RiskLevel(s)
	if r.Valid() {
		return r
	}
	return RiskLow
}

func demoteOne(r RiskLevel) RiskLevel {
	switch r {
	case RiskCritical:
		return RiskHigh
	case RiskHigh:
		return RiskMedium
	case RiskMedium:
		return RiskLow
	default:
		return RiskLow
	}
}

func maxRisk(a, b RiskLevel) RiskLevel {
	if a.severity() >= b.severity() {
		return a
	}
	return b
}
