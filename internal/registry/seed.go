package registry

import "time"

// Seed fixture data below is a verified baseline set of rows (the Store does
// not load it on its own; it reads only what its loader returns): one emergency service plus
// a handful of named crisis lines per supported region, their known-fake
// numbers, and the numbers that are real but belong to a different region
// (used by the classifier's region-drift check, not the fabrication
// blocklist — a wrong-region number is a real, verified number, just not
// for the asserted region).

type seedResource struct {
	key           string
	number        string
	name          string
	description   string
	languages     []string
	situationType SituationType
	tags          []TopicalTag
}

var seedVerifiedOn = time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

var seedResourcesByRegion = map[Region][]seedResource{
	RegionNZ: {
		{"emergency", "111", "Emergency Services", "Police, Fire, Ambulance", nil, SituationEmergency, []TopicalTag{TopicGeneral}},
		{"mental_health", "1737", "Need to Talk?", "Mental health crisis line", []string{"English", "Te Reo Māori"}, SituationCrisis, []TopicalTag{TopicMentalHealth}},
		{"lifeline", "0800 543 354", "Lifeline NZ", "24/7 counselling and support", nil, SituationCrisis, []TopicalTag{TopicMentalHealth}},
		{"family_violence", "0800 456 450", "Family Violence Hotline", "Shine - Domestic violence support", nil, SituationCrisis, []TopicalTag{TopicDomesticViolence, TopicFamilyViolence}},
		{"womens_refuge", "0800 733 843", "Women's Refuge", "Safe house and crisis support for women", nil, SituationCrisis, []TopicalTag{TopicDomesticViolence}},
		{"youthline", "0800 376 633", "Youthline", "Youth support and counselling", nil, SituationSupport, []TopicalTag{TopicYouthAcademic}},
		{"alcohol_drug", "0800 787 797", "Alcohol Drug Helpline", "Support for substance use issues", nil, SituationSupport, []TopicalTag{TopicSubstance}},
		{"oranga_tamariki", "0508 326 459", "Oranga Tamariki", "Child protection services", nil, SituationCrisis, []TopicalTag{TopicFamilyViolence}},
	},
	RegionAU: {
		{"emergency", "000", "Emergency Services", "Police, Fire, Ambulance", nil, SituationEmergency, []TopicalTag{TopicGeneral}},
		{"lifeline", "13 11 14", "Lifeline Australia", "24/7 crisis support", nil, SituationCrisis, []TopicalTag{TopicMentalHealth}},
		{"beyond_blue", "1300 22 4636", "Beyond Blue", "Anxiety and depression support", nil, SituationSupport, []TopicalTag{TopicMentalHealth}},
		{"suicide_callback", "1300 659 467", "Suicide Call Back Service", "Professional suicide prevention counselling", nil, SituationCrisis, []TopicalTag{TopicMentalHealth}},
		{"kids_helpline", "1800 55 1800", "Kids Helpline", "Support for young people 5-25", nil, SituationSupport, []TopicalTag{TopicYouthAcademic}},
		{"dv_line", "1800 737 732", "1800RESPECT", "Domestic and family violence support", nil, SituationCrisis, []TopicalTag{TopicDomesticViolence}},
	},
	RegionUS: {
		{"emergency", "911", "Emergency Services", "Police, Fire, EMS", nil, SituationEmergency, []TopicalTag{TopicGeneral}},
		{"suicide_lifeline", "988", "988 Suicide & Crisis Lifeline", "National suicide prevention", []string{"English", "Spanish"}, SituationCrisis, []TopicalTag{TopicMentalHealth}},
		{"crisis_text", "741741", "Crisis Text Line", "Text HOME to 741741", nil, SituationCrisis, []TopicalTag{TopicMentalHealth}},
		{"domestic_violence", "1-800-799-7233", "National DV Hotline", "Domestic violence support", nil, SituationCrisis, []TopicalTag{TopicDomesticViolence}},
		{"samhsa", "1-800-662-4357", "SAMHSA Helpline", "Substance abuse and mental health", nil, SituationSupport, []TopicalTag{TopicSubstance}},
		{"trevor_project", "1-866-488-7386", "The Trevor Project", "LGBTQ+ youth crisis support", nil, SituationSupport, []TopicalTag{TopicYouthAcademic}},
	},
	RegionUK: {
		{"emergency", "999", "Emergency Services", "Police, Fire, Ambulance", nil, SituationEmergency, []TopicalTag{TopicGeneral}},
		{"samaritans", "116 123", "Samaritans", "24/7 emotional support", nil, SituationCrisis, []TopicalTag{TopicMentalHealth}},
		{"shout", "85258", "Shout", "Text SHOUT to 85258", nil, SituationCrisis, []TopicalTag{TopicMentalHealth}},
		{"papyrus", "0800 068 4141", "PAPYRUS", "Young suicide prevention", nil, SituationSupport, []TopicalTag{TopicYouthAcademic}},
		{"mind", "0300 123 3393", "Mind Infoline", "Mental health information", nil, SituationSupport, []TopicalTag{TopicMentalHealth}},
		{"refuge", "0808 200 0247", "National DV Helpline", "Women's Aid and Refuge", nil, SituationCrisis, []TopicalTag{TopicDomesticViolence}},
	},
	RegionCA: {
		{"emergency", "911", "Emergency Services", "Police, Fire, EMS", nil, SituationEmergency, []TopicalTag{TopicGeneral}},
		{"suicide_hotline", "988", "988 Suicide Crisis Helpline", "National suicide prevention", []string{"English", "French"}, SituationCrisis, []TopicalTag{TopicMentalHealth}},
		{"kids_help", "1-800-668-6868", "Kids Help Phone", "Youth crisis support", nil, SituationSupport, []TopicalTag{TopicYouthAcademic}},
		{"crisis_services", "1-833-456-4566", "Crisis Services Canada", "24/7 crisis support", nil, SituationCrisis, []TopicalTag{TopicMentalHealth}},
	},
	RegionIE: {
		{"emergency", "999", "Emergency Services", "Gardaí, Fire, Ambulance", nil, SituationEmergency, []TopicalTag{TopicGeneral}},
		{"samaritans", "116 123", "Samaritans Ireland", "24/7 emotional support", nil, SituationCrisis, []TopicalTag{TopicMentalHealth}},
		{"pieta", "1800 247 247", "Pieta House", "Suicide and self-harm crisis", nil, SituationCrisis, []TopicalTag{TopicSelfHarm, TopicMentalHealth}},
		{"aware", "1800 80 48 48", "Aware", "Depression and anxiety support", nil, SituationSupport, []TopicalTag{TopicMentalHealth}},
		{"womens_aid", "1800 341 900", "Women's Aid Ireland", "Domestic violence support", nil, SituationCrisis, []TopicalTag{TopicDomesticViolence}},
	},
}

var seedKnownFakeNumbers = map[Region][]string{
	RegionNZ: {"0800 543 800", "0800 111 757"},
	RegionUS: {"1-800-273-8255"}, // retired number, superseded by 988
}

// seedWrongRegionNumbers maps, per region, a real number that belongs to a
// different region to the region it actually belongs to.
var seedWrongRegionNumbers = map[Region]map[string]Region{
	RegionNZ: {"988": RegionUS, "1-800-273-8255": RegionUS, "741741": RegionUS, "116 123": RegionUK, "13 11 14": RegionAU},
	RegionAU: {"988": RegionUS, "1737": RegionNZ, "111": RegionNZ, "116 123": RegionUK},
	RegionUS: {"1737": RegionNZ, "13 11 14": RegionAU, "116 123": RegionUK},
	RegionUK: {"988": RegionUS, "1737": RegionNZ, "13 11 14": RegionAU},
	RegionCA: {"1737": RegionNZ, "116 123": RegionUK, "13 11 14": RegionAU},
	RegionIE: {"988": RegionUS, "1737": RegionNZ},
}

var culturalContexts = map[Region][]string{
	RegionNZ: {
		"Te Reo Māori expressions of distress",
		"Kiwi slang and idioms",
		"Rural/farming community contexts",
		"Pacific Island cultural expressions",
	},
	RegionAU: {
		"Indigenous Australian expressions",
		"Australian slang",
		"Rural and remote communities",
	},
	RegionUS: {
		"Diverse cultural backgrounds",
		"Spanish-speaking communities",
		"LGBTQ+ specific resources",
		"Veteran-specific resources",
	},
	RegionUK: {
		"British expressions of distress",
		"NHS mental health pathways",
	},
	RegionCA: {
		"French-speaking communities (Quebec)",
		"Indigenous communities",
		"Bilingual support needs",
	},
	RegionIE: {
		"Irish expressions and idioms",
		"Rural community contexts",
	},
}

// SeedResources builds the fixture Resource set for every supported region.
// Within this repository it is called only by tests, as a populated loader
// fixture; the migrations insert no rows, and the Store is never fed it
// implicitly (it only ever reads its live snapshot).
func SeedResources() []Resource {
	var out []Resource
	for region, entries := range seedResourcesByRegion {
		for _, e := range entries {
			languages := e.languages
			if languages == nil {
				languages = []string{"English"}
			}
			out = append(out, Resource{
				ID:                  string(region) + ":" + e.key,
				Region:              region,
				ServiceName:         e.name,
				Channels:            []Channel{{Kind: ChannelPhone, Value: e.number}},
				HoursOfOperation:    "24/7",
				Languages:           languages,
				Description:         e.description,
				SituationType:       e.situationType,
				TopicalTags:         e.tags,
				VerifiedOn:          seedVerifiedOn,
				VerifiedBy:          "system-seed",
				VerificationMethod:  "manual_call",
				NextVerificationDue: seedVerifiedOn.Add(30 * 24 * time.Hour),
				Status:              StatusActive,
			})
		}
	}
	return out
}

// SeedFabrications builds the fixture KnownFabrication set.
func SeedFabrications() []KnownFabrication {
	var out []KnownFabrication
	for region, numbers := range seedKnownFakeNumbers {
		for _, n := range numbers {
			out = append(out, KnownFabrication{
				Value:           n,
				Kind:            ChannelPhone,
				FirstObservedAt: seedVerifiedOn,
				LastObservedAt:  seedVerifiedOn,
				Notes:           "known fake number seeded for " + string(region),
			})
		}
	}
	return out
}

// IsWrongRegionNumber reports whether number is a real, verified number
// belonging to a region other than currentRegion.
func IsWrongRegionNumber(number string, currentRegion Region) (Region, bool) {
	byNumber, ok := seedWrongRegionNumbers[currentRegion.Normalize()]
	if !ok {
		return "", false
	}
	actual, ok := byNumber[number]
	return actual, ok
}
