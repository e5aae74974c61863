package training

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/coastlineai/sentinel/internal/registry"
	"github.com/coastlineai/sentinel/internal/toolcall"
)

// literalScanner extracts candidate phone/URL/email literals from an output
// body for the registry cross-check.
var (
	literalPhonePattern = regexp.MustCompile(`\b(?:\+?\d{1,3}[\s-]?)?\(?\d{2,4}\)?[\s-]?\d{3,4}[\s-]?\d{3,4}\b|\b\d{3,6}\b`)
	literalURLPattern    = regexp.MustCompile(`\bhttps?://[^\s)\]]+`)
	literalEmailPattern  = regexp.MustCompile(`\b[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}\b`)
)

const minBucketShare = 0.05

// FabricationChecker is the narrow registry view the validator needs.
type FabricationChecker interface {
	IsFabrication(value string, kind registry.ChannelKind, region registry.Region, situationType registry.SituationType) (bool, *registry.Resource)
	Lookup(region registry.Region, situationType registry.SituationType, topicalTag registry.TopicalTag) []registry.Resource
}

// ValidationReport is the coverage and integrity summary produced by
// Validate.
type ValidationReport struct {
	Total                 int
	RiskLevelCounts       map[string]int
	UnderrepresentedRisks []string
	CulturalMarkerCount   int
	ResourceMentionRate   float64 // fraction of CRITICAL|HIGH examples naming a registered resource
	RegisteredLiteralRate float64 // fraction of outputs whose literals are all registry-verified
	Warnings              []string
	Failures              []error
}

// Passed reports whether the corpus cleared every hard validation check.
func (r ValidationReport) Passed() bool {
	return len(r.Failures) == 0
}

// Validate computes coverage statistics over examples and enforces the
// pipeline's hard invariants: any literal matching the fabrication
// blocklist is a failure, and every output's literal phone/URL/email
// strings must exist in the registry for the example's asserted region.
func Validate(examples []TrainingExample, reg FabricationChecker) ValidationReport {
	report := ValidationReport{
		RiskLevelCounts: map[string]int{"CRITICAL": 0, "HIGH": 0, "MEDIUM": 0, "LOW": 0},
		Total:           len(examples),
	}

	var (
		criticalOrHigh        int
		criticalOrHighMentions int
		outputsWithLiterals    int
		outputsFullyRegistered int
	)

	for _, ex := range examples {
		risk := "LOW"
		region := registry.RegionGlobal
		if ex.Metadata != nil {
			if ex.Metadata.RiskLevel != "" {
				risk = ex.Metadata.RiskLevel
			}
			if ex.Metadata.Region != "" {
				region = ex.Metadata.Region
			}
		}
		report.RiskLevelCounts[risk]++
		report.CulturalMarkerCount += len(metadataCulturalMarkers(ex))

		literals := extractLiterals(ex.Output)
		if len(literals) > 0 {
			outputsWithLiterals++
			allRegistered := true
			for _, lit := range literals {
				fabricated, _ := reg.IsFabrication(lit.value, lit.kind, region, "")
				if fabricated {
					report.Failures = append(report.Failures, fmt.Errorf("%w: %q in example %q", ErrFabricationInOutput, lit.value, ex.Instruction))
					allRegistered = false
					continue
				}
				if !literalInRegistry(reg, lit, region) {
					report.Failures = append(report.Failures, fmt.Errorf("%w: %q in example %q (region %s)", ErrUnregisteredLiteral, lit.value, ex.Instruction, region))
					allRegistered = false
				}
			}
			if allRegistered {
				outputsFullyRegistered++
			}
		} else {
			outputsFullyRegistered++
		}

		if risk == "CRITICAL" || risk == "HIGH" {
			criticalOrHigh++
			if mentionsRegisteredResourceName(ex.Output, reg, region) {
				criticalOrHighMentions++
			}
		}
	}

	for level, count := range report.RiskLevelCounts {
		if report.Total > 0 && count == 0 {
			report.Warnings = append(report.Warnings, fmt.Sprintf("risk level %s has zero examples", level))
		} else if report.Total > 0 && float64(count)/float64(report.Total) < minBucketShare {
			report.UnderrepresentedRisks = append(report.UnderrepresentedRisks, level)
			report.Warnings = append(report.Warnings, fmt.Sprintf("risk level %s is %.1f%% of the corpus, below the %.0f%% floor", level, 100*float64(count)/float64(report.Total), 100*minBucketShare))
		}
	}

	if criticalOrHigh > 0 {
		report.ResourceMentionRate = float64(criticalOrHighMentions) / float64(criticalOrHigh)
	}
	if report.Total > 0 {
		report.RegisteredLiteralRate = float64(outputsFullyRegistered) / float64(report.Total)
	}

	return report
}

type literal struct {
	value string
	kind  registry.ChannelKind
}

func extractLiterals(output string) []literal {
	cleaned, _ := toolcall.ExtractAndRemove(output)
	var out []literal
	for _, m := range literalURLPattern.FindAllString(cleaned, -1) {
		out = append(out, literal{value: m, kind: registry.ChannelWebsite})
	}
	for _, m := range literalEmailPattern.FindAllString(cleaned, -1) {
		out = append(out, literal{value: m, kind: registry.ChannelEmail})
	}
	for _, m := range literalPhonePattern.FindAllString(cleaned, -1) {
		out = append(out, literal{value: m, kind: registry.ChannelPhone})
	}
	return out
}

func literalInRegistry(reg FabricationChecker, lit literal, region registry.Region) bool {
	for _, situation := range []registry.SituationType{registry.SituationEmergency, registry.SituationCrisis, registry.SituationSupport} {
		for _, r := range reg.Lookup(region, situation, "") {
			if r.HasChannelValue(lit.value) {
				return true
			}
		}
	}
	return false
}

func mentionsRegisteredResourceName(output string, reg FabricationChecker, region registry.Region) bool {
	for _, situation := range []registry.SituationType{registry.SituationEmergency, registry.SituationCrisis, registry.SituationSupport} {
		for _, r := range reg.Lookup(region, situation, "") {
			if r.ServiceName != "" && strings.Contains(output, r.ServiceName) {
				return true
			}
			for _, c := range r.Channels {
				if strings.Contains(output, c.Value) {
					return true
				}
			}
		}
	}
	return false
}

func metadataCulturalMarkers(ex TrainingExample) []string {
	if ex.Metadata == nil {
		return nil
	}
	return ex.Metadata.CulturalMarkers
}
