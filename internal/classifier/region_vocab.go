package classifier

import (
	"strings"

	"github.com/coastlineai/sentinel/internal/registry"
)

// regionPatterns holds the additional vocabulary — idiom sets and
// indigenous-language phrases — each region contributes on top of
// basePatterns. A region switch replaces this bank; the taxonomy and
// scoring logic in prescan.go stay fixed.
var regionPatterns = map[registry.Region][]Pattern{
	registry.RegionNZ: {
		pat("mental_health_distress.nz_idiom", CategoryMentalHealth, "nz_idiom", RiskMedium,
			`\b(i('m| am) (well )?gutted|feeling (munted|hard out down)|yeah nah i('m| am) not okay)\b`),
	},
	registry.RegionAU: {
		pat("mental_health_distress.au_idiom", CategoryMentalHealth, "au_idiom", RiskMedium,
			`\b(i('m| am) not (she'?ll be right|flat out coping)|doing it tough)\b`),
	},
	registry.RegionUK: {
		pat("mental_health_distress.uk_idiom", CategoryMentalHealth, "uk_idiom", RiskMedium,
			`\b(i('m| am) (proper )?knackered and (done|finished)|gutted and can'?t cope)\b`),
	},
}

// DetectRegionFromMessage attempts to infer a region from explicit mentions
// in message content (country names, demonyms, or a verified phone number
// unique to one region). This is a content-based heuristic, not the
// network-metadata detection the pipeline excludes; callers treat the
// result as a hint, never as a substitute for the caller-supplied region.
func DetectRegionFromMessage(message string) (registry.Region, bool) {
	lower := strings.ToLower(message)

	keywords := map[registry.Region][]string{
		registry.RegionNZ: {"new zealand", "nz", "aotearoa", "kiwi", "māori", "maori"},
		registry.RegionAU: {"australia", "aussie", "straya"},
		registry.RegionUS: {"usa", "united states", "america", "american"},
		registry.RegionUK: {"united kingdom", "britain", "british", "england"},
		registry.RegionCA: {"canada", "canadian"},
		registry.RegionIE: {"ireland", "irish"},
	}
	for region, words := range keywords {
		for _, w := range words {
			if strings.Contains(lower, w) {
				return region, true
			}
		}
	}

	switch {
	case strings.Contains(message, "1737") || strings.Contains(message, "0800"):
		return registry.RegionNZ, true
	case strings.Contains(message, "988") && !strings.Contains(message, "13 11 14"):
		return registry.RegionUS, true
	case strings.Contains(message, "116 123"):
		return registry.RegionUK, true
	}
	return "", false
}

func effectivePatterns(region registry.Region) []Pattern {
	all := make([]Pattern, len(basePatterns))
	copy(all, basePatterns)
	if extra, ok := regionPatterns[region.Normalize()]; ok {
		all = append(all, extra...)
	}
	return all
}
