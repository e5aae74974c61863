package toolcall

import (
	"context"
	"fmt"
	"strings"

	"github.com/coastlineai/sentinel/internal/registry"
	"github.com/coastlineai/sentinel/pkg/logging"
)

// Registry is the subset of the resource registry the executor consults. A
// narrow interface so tests can fake it without a live store.
type Registry interface {
	Lookup(region registry.Region, situationType registry.SituationType, topicalTag registry.TopicalTag) []registry.Resource
	IsFabrication(value string, kind registry.ChannelKind, region registry.Region, situationType registry.SituationType) (bool, *registry.Resource)
	EmergencyFallback(region registry.Region) (registry.Resource, bool)
}

// IncidentRecorder appends a CrisisEvent on behalf of a log_incident directive.
type IncidentRecorder interface {
	LogIncident(ctx context.Context, data map[string]string, tctx Context) (eventID string, err error)
}

// Context carries the per-turn identifiers the executor needs to resolve
// directives and attribute audit entries.
type Context struct {
	Region         registry.Region
	UserID         string
	ConversationID string
}

// Substitution is the resolved, render-ready text for one parsed directive.
// ResourceIDs is populated only for get_crisis_resources and names the
// registry rows whose literals ended up in Text, so callers can log which
// resources were substituted into a turn without re-parsing the rendered
// text for literals.
type Substitution struct {
	DirectiveIndex int
	Text           string
	Degraded       bool
	ResourceIDs    []string
}

// Executor parses, resolves, and renders tool-call directives.
type Executor struct {
	registry           Registry
	incidents          IncidentRecorder
	logger             *logging.Logger
	hallucinationCache HallucinationCache
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithHallucinationCache attaches a short-TTL dedup cache for
// check_hallucination lookups. Optional: a nil cache (the default) means
// every directive is resolved against the registry directly.
func WithHallucinationCache(c HallucinationCache) ExecutorOption {
	return func(e *Executor) { e.hallucinationCache = c }
}

// NewExecutor builds an Executor.
func NewExecutor(reg Registry, incidents IncidentRecorder, logger *logging.Logger, opts ...ExecutorOption) *Executor {
	if reg == nil {
		panic("toolcall: registry cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	e := &Executor{registry: reg, incidents: incidents, logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Resolve executes each directive against the registry. It never returns an
// error that should abort the turn: every failure produces a Substitution
// carrying a safe fallback, and the encountered errors are returned
// alongside for audit logging. Resolve is deterministic for a given
// (directives, registry snapshot) pair.
func (e *Executor) Resolve(ctx context.Context, directives []Directive, tctx Context) ([]Substitution, []error) {
	var subs []Substitution
	var errs []error

	for i, d := range directives {
		sub := Substitution{DirectiveIndex: i}

		if !d.Name.known() {
			errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownTool, d.Name))
			sub.Text = e.fallbackBlock(tctx.Region)
			sub.Degraded = true
			subs = append(subs, sub)
			continue
		}

		switch d.Name {
		case ToolGetCrisisResources:
			text, degraded, ids, err := e.resolveGetCrisisResources(d, tctx)
			sub.Text, sub.Degraded, sub.ResourceIDs = text, degraded, ids
			if err != nil {
				errs = append(errs, err)
			}
		case ToolCheckHallucination:
			text, err := e.resolveCheckHallucination(ctx, d, tctx)
			sub.Text = text
			if err != nil {
				errs = append(errs, err)
			}
		case ToolLogIncident:
			text, err := e.resolveLogIncident(ctx, d, tctx)
			sub.Text = text
			if err != nil {
				errs = append(errs, err)
			}
		}

		subs = append(subs, sub)
	}

	return subs, errs
}

func (e *Executor) resolveGetCrisisResources(d Directive, tctx Context) (string, bool, []string, error) {
	region := registry.Region(strings.ToUpper(d.Args["region"]))
	if region == "" {
		region = tctx.Region
	}
	region = region.Normalize()

	situationRaw := strings.ToLower(d.Args["situation_type"])
	situationType, ok := validSituationType(situationRaw)
	if !ok {
		resources, found := e.registry.EmergencyFallback(region)
		if !found {
			return "", true, nil, fmt.Errorf("%w: situation_type %q", ErrUnknownArgument, situationRaw)
		}
		return renderResourceBlock([]registry.Resource{resources}), true, []string{resources.ID}, fmt.Errorf("%w: situation_type %q", ErrUnknownArgument, situationRaw)
	}

	resources := e.registry.Lookup(region, situationType, "")
	if len(resources) == 0 {
		fallback, found := e.registry.EmergencyFallback(region)
		if !found {
			return "", true, nil, fmt.Errorf("%w: region=%s situation_type=%s", ErrRegistryEmpty, region, situationType)
		}
		return renderResourceBlock([]registry.Resource{fallback}), true, []string{fallback.ID}, fmt.Errorf("%w: region=%s situation_type=%s", ErrRegistryEmpty, region, situationType)
	}
	return renderResourceBlock(resources), false, resourceIDs(resources), nil
}

func resourceIDs(resources []registry.Resource) []string {
	ids := make([]string, len(resources))
	for i, r := range resources {
		ids[i] = r.ID
	}
	return ids
}

func (e *Executor) resolveCheckHallucination(ctx context.Context, d Directive, tctx Context) (string, error) {
	value := d.Args["resource"]
	kind := registry.ChannelKind(strings.ToLower(d.Args["type"]))
	if value == "" {
		return "", fmt.Errorf("%w: check_hallucination requires resource", ErrUnknownArgument)
	}

	cacheKey := string(tctx.Region) + "|" + string(kind) + "|" + value
	if e.hallucinationCache != nil {
		if cached, ok := e.hallucinationCache.Get(ctx, cacheKey); ok {
			return cached, nil
		}
	}

	fabricated, alt := e.registry.IsFabrication(value, kind, tctx.Region, registry.SituationCrisis)
	var result string
	switch {
	case !fabricated:
		result = fmt.Sprintf("%s is a verified resource.", value)
	case alt != nil:
		result = fmt.Sprintf("%s is not a verified resource. Use %s (%s) instead.", value, alt.ServiceName, firstChannel(*alt))
	default:
		result = fmt.Sprintf("%s is not a verified resource.", value)
	}

	if e.hallucinationCache != nil {
		e.hallucinationCache.Set(ctx, cacheKey, result)
	}
	return result, nil
}

func (e *Executor) resolveLogIncident(ctx context.Context, d Directive, tctx Context) (string, error) {
	data := parseDictLiteral(d.Args["incident_data"])
	if e.incidents == nil {
		return "", nil
	}
	if _, err := e.incidents.LogIncident(ctx, data, tctx); err != nil {
		return "", fmt.Errorf("toolcall: log_incident: %w", err)
	}
	return "", nil
}

func (e *Executor) fallbackBlock(region registry.Region) string {
	fallback, ok := e.registry.EmergencyFallback(region.Normalize())
	if !ok {
		return ""
	}
	return renderResourceBlock([]registry.Resource{fallback})
}

func validSituationType(s string) (registry.SituationType, bool) {
	switch registry.SituationType(s) {
	case registry.SituationEmergency, registry.SituationCrisis, registry.SituationSupport:
		return registry.SituationType(s), true
	}
	return "", false
}

func firstChannel(r registry.Resource) string {
	if len(r.Channels) == 0 {
		return ""
	}
	return r.Channels[0].Value
}

// renderResourceBlock renders resources in the order given. Callers pass the
// direct result of Registry.Lookup, which already orders resources
// emergency-first, then general hotlines, then topic specialists — renderResourceBlock
// must not disturb that ordering.
func renderResourceBlock(resources []registry.Resource) string {
	var b strings.Builder
	for i, r := range resources {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(r.ServiceName)
		b.WriteString(": ")
		var channels []string
		for _, c := range r.Channels {
			channels = append(channels, c.Value)
		}
		b.WriteString(strings.Join(channels, " / "))
		if r.Description != "" {
			b.WriteString(" — ")
			b.WriteString(r.Description)
		}
	}
	return b.String()
}

// parseDictLiteral loosely parses a "{key='value', key2='value2'}"-shaped
// argument into a map, tolerating single or double quoted values and bare
// tokens, matching the same leniency as the top-level argument grammar.
func parseDictLiteral(raw string) map[string]string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "{")
	raw = strings.TrimSuffix(raw, "}")
	return parseArgs(raw)
}
