package classifier

import (
	"strings"

	"github.com/coastlineai/sentinel/internal/registry"
)

// PreScanResult is the outcome of scanning a user message before any model
// invocation.
type PreScanResult struct {
	Risk               RiskLevel
	TriggeredPatterns  []string
	FalsePositiveFiled bool
	FalsePositiveKind  string
	ResourceOfferSeen  bool
}

// PreScan classifies message for crisis risk. history is the prior turns of
// the conversation, consulted read-only for trend detection (e.g. whether a
// previous assistant turn already offered a resource, which changes how a
// "that number didn't work" complaint is scored).
func PreScan(message string, history []string, region registry.Region) PreScanResult {
	patterns := effectivePatterns(region)

	var (
		triggered         []string
		anyImmediate      bool
		hopelessnessCount int
		anyPersistence    bool
		anyMentalHealth   bool
		highestSeverity   = RiskLow
		floorAtHigh       bool
	)

	resourceOffered := historyMentionsResourceOffer(history)

	for _, p := range patterns {
		if p.Category == CategoryFalsePositive {
			continue
		}
		if !p.Regex.MatchString(message) {
			continue
		}
		triggered = append(triggered, p.ID)

		if p.Category == CategoryModelDegradation && !resourceOffered {
			// Without a prior resource offer in context, a "didn't work"
			// complaint is a weaker signal: floor the turn at HIGH instead of
			// treating it as an ImmediateDanger match.
			floorAtHigh = true
			highestSeverity = maxRisk(highestSeverity, RiskHigh)
			continue
		}

		highestSeverity = maxRisk(highestSeverity, p.Severity)
		if p.ImmediateDanger {
			anyImmediate = true
		}
		if p.HopelessnessSignal {
			hopelessnessCount++
		}
		if p.PersistenceMarker {
			anyPersistence = true
		}
		if p.Category == CategoryMentalHealth {
			anyMentalHealth = true
		}
	}

	risk := scoreRisk(anyImmediate, hopelessnessCount, anyPersistence, anyMentalHealth, highestSeverity)
	if floorAtHigh && risk.severity() < RiskHigh.severity() {
		risk = RiskHigh
	}

	fpKind, isFalsePositive := checkFalsePositive(message, patterns, anyImmediate)
	if isFalsePositive {
		if fpKind != "possible_deflection" {
			risk = demoteOne(risk)
			if anyImmediate && risk.severity() < RiskMedium.severity() {
				risk = RiskMedium
			}
		}
	}

	return PreScanResult{
		Risk:               risk,
		TriggeredPatterns:  triggered,
		FalsePositiveFiled: isFalsePositive,
		FalsePositiveKind:  fpKind,
		ResourceOfferSeen:  resourceOffered,
	}
}

func scoreRisk(anyImmediate bool, hopelessnessCount int, anyPersistence, anyMentalHealth bool, highestSeverity RiskLevel) RiskLevel {
	if anyImmediate {
		return RiskCritical
	}
	if hopelessnessCount >= 2 || (hopelessnessCount >= 1 && anyPersistence) {
		return RiskHigh
	}
	if hopelessnessCount >= 1 || anyMentalHealth {
		return RiskMedium
	}
	return maxRisk(RiskLow, capAtMedium(highestSeverity))
}

// capAtMedium prevents a single non-immediate HIGH/CRITICAL pattern match
// (e.g. a domestic-violence subcategory tagged HIGH in isolation) from
// outranking the hopelessness/persistence scoring above when neither
// condition was actually met; MEDIUM is the ceiling for "sustained negative
// affect without the above" per the decision rule.
func capAtMedium(r RiskLevel) RiskLevel {
	if r.severity() > RiskMedium.severity() {
		return RiskMedium
	}
	return r
}

// checkFalsePositive mirrors the demotion rules: a figure-of-speech or
// hyperbole-with-coping match demotes one level; a humor marker demotes only
// when no ImmediateDanger pattern fired, and is treated as a "possible
// deflection" (no demotion) when crisis keywords are also present.
func checkFalsePositive(message string, patterns []Pattern, anyImmediate bool) (kind string, demote bool) {
	lower := strings.ToLower(message)

	for _, p := range patterns {
		if p.Category != CategoryFalsePositive {
			continue
		}
		if p.Regex.MatchString(message) {
			return p.Subcategory, true
		}
	}

	for _, marker := range humorMarkers {
		if !strings.Contains(lower, marker) {
			continue
		}
		for _, kw := range crisisKeywords {
			if strings.Contains(lower, kw) {
				return "possible_deflection", true
			}
		}
		if !anyImmediate {
			return "humor", true
		}
		return "humor", false
	}

	return "", false
}

func historyMentionsResourceOffer(history []string) bool {
	for _, turn := range history {
		if strings.ContainsAny(turn, "0123456789") {
			return true
		}
	}
	return false
}
