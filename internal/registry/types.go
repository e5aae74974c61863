// Package registry holds the authoritative, region-scoped store of
// verified crisis resources and the fabrication blocklist that guards
// against the pipeline ever surfacing a literal the model invented.
package registry

import "time"

// Region is one of the closed set of region codes the registry understands.
type Region string

const (
	RegionNZ     Region = "NZ"
	RegionAU     Region = "AU"
	RegionUS     Region = "US"
	RegionUK     Region = "UK"
	RegionCA     Region = "CA"
	RegionIE     Region = "IE"
	RegionGlobal Region = "GLOBAL"
)

// Valid reports whether r is one of the closed region codes.
func (r Region) Valid() bool {
	switch r {
	case RegionNZ, RegionAU, RegionUS, RegionUK, RegionCA, RegionIE, RegionGlobal:
		return true
	}
	return false
}

// Normalize maps an unrecognized or empty region to GLOBAL, per the
// classifier's unknown-region default.
func (r Region) Normalize() Region {
	if r.Valid() {
		return r
	}
	return RegionGlobal
}

// SituationType is the routing tier used to query the registry.
type SituationType string

const (
	SituationEmergency SituationType = "emergency"
	SituationCrisis    SituationType = "crisis"
	SituationSupport   SituationType = "support"
)

// TopicalTag is a sub-classification of a situation.
type TopicalTag string

const (
	TopicMentalHealth    TopicalTag = "mental_health"
	TopicDomesticViolence TopicalTag = "domestic_violence"
	TopicSelfHarm        TopicalTag = "self_harm"
	TopicSubstance       TopicalTag = "substance"
	TopicYouthAcademic   TopicalTag = "youth_academic"
	TopicFamilyViolence  TopicalTag = "family_violence"
	TopicGeneral         TopicalTag = "general"
)

// ChannelKind is the contact method for a resource.
type ChannelKind string

const (
	ChannelPhone   ChannelKind = "phone"
	ChannelText    ChannelKind = "text"
	ChannelWebsite ChannelKind = "website"
	ChannelEmail   ChannelKind = "email"
)

// Channel is a single contact method of a Resource.
type Channel struct {
	Kind  ChannelKind `json:"kind"`
	Value string      `json:"value"`
}

// Status is the resource lifecycle state.
type Status string

const (
	StatusActive   Status = "active"
	StatusDegraded Status = "degraded"
	StatusRetired  Status = "retired"
)

// Resource is a verified service entry.
type Resource struct {
	ID                   string         `json:"id"`
	Region               Region         `json:"region"`
	ServiceName          string         `json:"service_name"`
	Channels             []Channel      `json:"channels"`
	HoursOfOperation     string         `json:"hours_of_operation"`
	Languages            []string       `json:"languages"`
	Description          string         `json:"description"`
	SituationType        SituationType  `json:"situation_type"`
	TopicalTags          []TopicalTag   `json:"topical_tags"`
	VerifiedOn           time.Time      `json:"verified_on"`
	VerifiedBy           string         `json:"verified_by"`
	VerificationMethod   string         `json:"verification_method"`
	NextVerificationDue  time.Time      `json:"next_verification_due"`
	Status               Status         `json:"status"`
	StaleVerification    bool           `json:"stale_verification,omitempty"`
}

// HasChannelValue reports whether value appears among the resource's
// contact channels, regardless of kind.
func (r Resource) HasChannelValue(value string) bool {
	for _, c := range r.Channels {
		if c.Value == value {
			return true
		}
	}
	return false
}

// KnownFabrication is an anti-entry: a literal that must never be surfaced
// as a verified resource.
type KnownFabrication struct {
	Value             string      `json:"value"`
	Kind              ChannelKind `json:"kind"`
	FirstObservedAt   time.Time   `json:"first_observed_at"`
	LastObservedAt    time.Time   `json:"last_observed_at"`
	OriginatingModel  string      `json:"originating_model,omitempty"`
	Notes             string      `json:"notes,omitempty"`
}

// VerificationOutcome is the result of a re-verification attempt.
type VerificationOutcome string

const (
	OutcomeOK               VerificationOutcome = "ok"
	OutcomeUnreachable      VerificationOutcome = "unreachable"
	OutcomeWrongDestination VerificationOutcome = "wrong_destination"
	OutcomeServiceChanged   VerificationOutcome = "service_changed"
)

// VerificationEvent is an append-only re-verification log entry.
type VerificationEvent struct {
	ID         string              `json:"id"`
	ResourceID string              `json:"resource_id"`
	AttemptAt  time.Time           `json:"attempt_at"`
	VerifierID string              `json:"verifier_id"`
	Method     string              `json:"method"`
	Outcome    VerificationOutcome `json:"outcome"`
	Notes      string              `json:"notes,omitempty"`
}
