package classifier

import (
	"regexp"
	"strings"

	"github.com/coastlineai/sentinel/internal/registry"
)

// FabricationRegistry is the narrow view of the resource registry the
// post-scan needs: whether a literal is a known fabrication or simply
// absent from the region's verified set.
type FabricationRegistry interface {
	IsFabrication(value string, kind registry.ChannelKind, region registry.Region, situationType registry.SituationType) (bool, *registry.Resource)
	Lookup(region registry.Region, situationType registry.SituationType, topicalTag registry.TopicalTag) []registry.Resource
}

// PostScanResult is the outcome of scanning model output after generation.
type PostScanResult struct {
	AIFailureDetected  bool
	FabricatedLiterals []string
	WrongRegionNumbers []WrongRegionHit
	VictimBlameHits    []string
	EscalatedRisk      RiskLevel
}

// WrongRegionHit records a real, verified number surfaced for the wrong
// region — distinct from a fabrication, since the number itself is genuine.
type WrongRegionHit struct {
	Number       string
	ActualRegion registry.Region
}

var (
	// phonePattern matches both multi-group numbers ("0800 543 800",
	// "1-800-273-8255") and bare short codes ("988", "111", "741741") so
	// emergency and crisis-line numbers are caught alongside longer ones.
	phonePattern = regexp.MustCompile(`\b(?:\+?\d{1,3}[\s-]?)?\(?\d{2,4}\)?[\s-]?\d{3,4}[\s-]?\d{3,4}\b|\b\d{3,6}\b`)
	urlPattern   = regexp.MustCompile(`\bhttps?://[^\s)\]]+`)
	emailPattern = regexp.MustCompile(`\b[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}\b`)
)

// VictimBlamePhrases is a closed, reviewable list of phrasing that shifts
// responsibility for abuse onto the person disclosing it. Extending this
// list is a product decision, not a pattern-tuning exercise.
var VictimBlamePhrases = []string{
	"what did you do to make them",
	"you must have provoked",
	"you should try not to upset",
	"have you considered that it's partly your fault",
	"relationships are complicated, maybe you're overreacting",
	"you should be more understanding of their stress",
	"did you do something to set them off",
	"your willingness to accept",
	"you allowed",
	"enabling",
	"your fault",
}

// PostScan inspects model output text for fabricated literals, wrong-region
// numbers, and victim-blaming phrasing. reg may be nil, in which case only
// the victim-blame check runs (used when the registry is unavailable and the
// turn has already failed over to a canned response).
func PostScan(output string, region registry.Region, reg FabricationRegistry) PostScanResult {
	var result PostScanResult

	lower := strings.ToLower(output)
	for _, phrase := range VictimBlamePhrases {
		if strings.Contains(lower, phrase) {
			result.VictimBlameHits = append(result.VictimBlameHits, phrase)
		}
	}

	if reg != nil {
		for _, number := range phonePattern.FindAllString(output, -1) {
			normalized := normalizePhone(number)
			if normalized == "" {
				continue
			}
			if fabricated, _ := reg.IsFabrication(number, registry.ChannelPhone, region, ""); fabricated {
				result.FabricatedLiterals = append(result.FabricatedLiterals, number)
				continue
			}
			if actual, wrongRegion := registry.IsWrongRegionNumber(number, region); wrongRegion {
				result.WrongRegionNumbers = append(result.WrongRegionNumbers, WrongRegionHit{Number: number, ActualRegion: actual})
				continue
			}
			if !literalInRegistry(reg, number, region) {
				result.FabricatedLiterals = append(result.FabricatedLiterals, number)
			}
		}
		for _, url := range urlPattern.FindAllString(output, -1) {
			if fabricated, _ := reg.IsFabrication(url, registry.ChannelWebsite, region, ""); fabricated {
				result.FabricatedLiterals = append(result.FabricatedLiterals, url)
				continue
			}
			if !literalInRegistry(reg, url, region) {
				result.FabricatedLiterals = append(result.FabricatedLiterals, url)
			}
		}
		for _, email := range emailPattern.FindAllString(output, -1) {
			if fabricated, _ := reg.IsFabrication(email, registry.ChannelEmail, region, ""); fabricated {
				result.FabricatedLiterals = append(result.FabricatedLiterals, email)
				continue
			}
			if !literalInRegistry(reg, email, region) {
				result.FabricatedLiterals = append(result.FabricatedLiterals, email)
			}
		}
	}

	result.AIFailureDetected = len(result.FabricatedLiterals) > 0 || len(result.WrongRegionNumbers) > 0

	switch {
	case len(result.FabricatedLiterals) > 0:
		result.EscalatedRisk = RiskCritical
	case len(result.WrongRegionNumbers) > 0:
		result.EscalatedRisk = RiskHigh
	case len(result.VictimBlameHits) > 0:
		result.EscalatedRisk = RiskHigh
	default:
		result.EscalatedRisk = RiskLow
	}

	return result
}

// literalInRegistry reports whether value appears as a channel on any
// registered resource for region, across every situation tier. A literal
// that clears the fabrication blocklist and the wrong-region map but still
// fails this check is a novel hallucination: never pre-seeded as fake,
// never a known real-but-misrouted number, just absent from the verified
// set entirely.
func literalInRegistry(reg FabricationRegistry, value string, region registry.Region) bool {
	for _, situation := range []registry.SituationType{registry.SituationEmergency, registry.SituationCrisis, registry.SituationSupport} {
		for _, r := range reg.Lookup(region, situation, "") {
			if r.HasChannelValue(value) {
				return true
			}
		}
	}
	return false
}

// normalizePhone strips characters that don't distinguish one number from
// another and discards matches too short to plausibly be a phone number.
func normalizePhone(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) < 3 {
		return ""
	}
	return digits
}
