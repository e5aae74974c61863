package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/coastlineai/sentinel/internal/audit"
	"github.com/coastlineai/sentinel/internal/classifier"
	"github.com/coastlineai/sentinel/internal/llm"
	"github.com/coastlineai/sentinel/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRegistry struct {
	resources    map[registry.Region][]registry.Resource
	emergency    map[registry.Region]registry.Resource
	fabrications map[string]bool
}

func (f *fakeRegistry) Lookup(region registry.Region, situationType registry.SituationType, _ registry.TopicalTag) []registry.Resource {
	var out []registry.Resource
	for _, r := range f.resources[region] {
		if r.SituationType == situationType {
			out = append(out, r)
		}
	}
	return out
}

func (f *fakeRegistry) IsFabrication(value string, _ registry.ChannelKind, region registry.Region, _ registry.SituationType) (bool, *registry.Resource) {
	if f.fabrications[value] {
		if r, ok := f.emergency[region]; ok {
			return true, &r
		}
		return true, nil
	}
	return false, nil
}

func (f *fakeRegistry) EmergencyFallback(region registry.Region) (registry.Resource, bool) {
	r, ok := f.emergency[region]
	return r, ok
}

func (f *fakeRegistry) CulturalContext(region registry.Region) []string {
	return nil
}

func newFakeRegistry() *fakeRegistry {
	nz111 := registry.Resource{
		ID: "NZ:emergency", Region: registry.RegionNZ, ServiceName: "Emergency Services",
		Channels:      []registry.Channel{{Kind: registry.ChannelPhone, Value: "111"}},
		SituationType: registry.SituationEmergency,
	}
	nz1737 := registry.Resource{
		ID: "NZ:mental_health", Region: registry.RegionNZ, ServiceName: "Need to Talk",
		Channels:      []registry.Channel{{Kind: registry.ChannelPhone, Value: "1737"}},
		SituationType: registry.SituationCrisis,
	}
	return &fakeRegistry{
		resources: map[registry.Region][]registry.Resource{
			registry.RegionNZ: {nz111, nz1737},
		},
		emergency: map[registry.Region]registry.Resource{
			registry.RegionNZ: nz111,
		},
		fabrications: map[string]bool{"0800543800": true},
	}
}

type fakeAuditStore struct {
	events []audit.CrisisEvent
	err    error
}

func (f *fakeAuditStore) Record(ctx context.Context, e audit.CrisisEvent) (audit.CrisisEvent, error) {
	if f.err != nil {
		return audit.CrisisEvent{}, f.err
	}
	e.ID = "evt-" + string(rune('0'+len(f.events)))
	f.events = append(f.events, e)
	return e, nil
}

type fakeModelClient struct {
	resp      llm.Response
	err       error
	callCount int
}

func (f *fakeModelClient) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	f.callCount++
	return f.resp, f.err
}

func newTestOrchestrator(model llm.Client, auditStore AuditStore) (*Orchestrator, *fakeRegistry) {
	reg := newFakeRegistry()
	o := NewOrchestrator(reg, auditStore, model, nil)
	return o, reg
}

func TestProcessCriticalRiskNeverInvokesModel(t *testing.T) {
	model := &fakeModelClient{resp: llm.Response{Text: "should never be returned"}}
	auditStore := &fakeAuditStore{}
	o, _ := newTestOrchestrator(model, auditStore)

	resp := o.Process(context.Background(), Request{
		UserText: "I might kill myself",
		Region:   registry.RegionNZ,
		UserID:   "u1",
	})

	assert.Equal(t, classifier.RiskCritical, resp.Risk)
	assert.True(t, resp.ConversationStopped)
	assert.Contains(t, resp.FinalText, "111")
	assert.Contains(t, resp.FinalText, "1737")
	assert.NotContains(t, resp.FinalText, "[TOOL_CALL:")
	assert.Equal(t, 0, model.callCount)
	require.Len(t, auditStore.events, 1)
	assert.Equal(t, string(classifier.RiskCritical), auditStore.events[0].RiskLevel)
}

func TestProcessModelDegradationElevatesToCritical(t *testing.T) {
	model := &fakeModelClient{resp: llm.Response{Text: "should never be returned"}}
	auditStore := &fakeAuditStore{}
	o, _ := newTestOrchestrator(model, auditStore)

	resp := o.Process(context.Background(), Request{
		UserText:            "Those numbers you gave me don't work",
		ConversationHistory: []string{"Here is the number to call: 0800 543 800"},
		Region:              registry.RegionNZ,
		UserID:              "u1",
	})

	assert.Equal(t, classifier.RiskCritical, resp.Risk)
	assert.True(t, resp.ModelDegradationDetected)
	assert.Contains(t, resp.FinalText, "111")
	assert.Equal(t, 0, model.callCount)
}

func TestProcessLowRiskPassesThroughModelOutput(t *testing.T) {
	model := &fakeModelClient{resp: llm.Response{Text: "That sounds like a rough commute, sorry to hear it."}}
	auditStore := &fakeAuditStore{}
	o, _ := newTestOrchestrator(model, auditStore)

	resp := o.Process(context.Background(), Request{
		UserText: "This traffic is killing me lol",
		Region:   registry.RegionNZ,
		UserID:   "u1",
	})

	assert.Equal(t, classifier.RiskLow, resp.Risk)
	assert.Equal(t, 1, model.callCount)
	assert.Equal(t, "That sounds like a rough commute, sorry to hear it.", resp.FinalText)
	assert.Empty(t, auditStore.events)
}

func TestProcessPostScanBlocksFabricatedLiteral(t *testing.T) {
	model := &fakeModelClient{resp: llm.Response{Text: "call 0800543800 for help"}}
	auditStore := &fakeAuditStore{}
	o, _ := newTestOrchestrator(model, auditStore)

	resp := o.Process(context.Background(), Request{
		UserText: "I'm feeling really hopeless about everything lately",
		Region:   registry.RegionNZ,
		UserID:   "u1",
	})

	assert.True(t, resp.AIFailureDetected)
	assert.NotContains(t, resp.FinalText, "0800543800")
	require.Len(t, auditStore.events, 1)
	assert.True(t, auditStore.events[0].AIFailureDetected)
}

func TestProcessStripsMalformedDirective(t *testing.T) {
	model := &fakeModelClient{resp: llm.Response{Text: "I hear you and want to help. [TOOL_CALL: get_crisis_resources(region='NZ']"}}
	auditStore := &fakeAuditStore{}
	o, _ := newTestOrchestrator(model, auditStore)

	resp := o.Process(context.Background(), Request{
		UserText: "I'm feeling really hopeless about everything lately",
		Region:   registry.RegionNZ,
		UserID:   "u1",
	})

	assert.True(t, resp.AIFailureDetected)
	assert.NotContains(t, resp.FinalText, "[TOOL_CALL:")
	assert.NotContains(t, resp.FinalText, "get_crisis_resources(region='NZ'")
}

func TestProcessForcedDirectiveResolvesAtCorrectOffset(t *testing.T) {
	model := &fakeModelClient{resp: llm.Response{
		Text: "[TOOL_CALL: log_incident(incident_data='{}')] Please call 0800543800 right now.",
	}}
	auditStore := &fakeAuditStore{}
	o, _ := newTestOrchestrator(model, auditStore)

	resp := o.Process(context.Background(), Request{
		UserText: "I'm feeling really hopeless about everything lately",
		Region:   registry.RegionNZ,
		UserID:   "u1",
	})

	assert.True(t, resp.AIFailureDetected)
	assert.NotContains(t, resp.FinalText, "0800543800")
	// The forced get_crisis_resources directive is appended after the
	// model's own log_incident directive, so it must resolve against its
	// own (non-zero) index rather than colliding with log_incident's
	// empty resolved text.
	assert.NotEmpty(t, resp.FinalText)
	assert.True(t, strings.Contains(resp.FinalText, "111") || strings.Contains(resp.FinalText, "1737"),
		"expected forced resource block in final text, got %q", resp.FinalText)
}

func TestProcessModelUnreachableFallsBackToRuleTier(t *testing.T) {
	model := &fakeModelClient{err: errors.New("connection refused")}
	auditStore := &fakeAuditStore{}
	o, _ := newTestOrchestrator(model, auditStore)

	resp := o.Process(context.Background(), Request{
		UserText: "I'm feeling really hopeless and don't know what to do, everyone would be better off without me",
		Region:   registry.RegionNZ,
		UserID:   "u1",
	})

	assert.True(t, resp.AIFailureDetected)
	assert.NotEmpty(t, resp.FinalText)
	require.Len(t, auditStore.events, 1)
}

func TestProcessAuditFailureNeverSurfacesToCaller(t *testing.T) {
	model := &fakeModelClient{resp: llm.Response{Text: "should never be returned"}}
	auditStore := &fakeAuditStore{err: errors.New("db down")}
	o, _ := newTestOrchestrator(model, auditStore)

	resp := o.Process(context.Background(), Request{
		UserText: "I might kill myself",
		Region:   registry.RegionNZ,
		UserID:   "u1",
	})

	assert.Equal(t, classifier.RiskCritical, resp.Risk)
	assert.Empty(t, resp.EventID)
}
