package toolcall

import (
	"context"
	"strings"
	"testing"

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

func newFakeRegistry() *fakeRegistry {
	nz111 := registry.Resource{
		ID: "NZ:emergency", Region: registry.RegionNZ, ServiceName: "Emergency Services",
		Channels: []registry.Channel{{Kind: registry.ChannelPhone, Value: "111"}},
		SituationType: registry.SituationEmergency,
	}
	nz1737 := registry.Resource{
		ID: "NZ:mental_health", Region: registry.RegionNZ, ServiceName: "Need to Talk",
		Channels: []registry.Channel{{Kind: registry.ChannelPhone, Value: "1737"}},
		SituationType: registry.SituationCrisis,
	}
	return &fakeRegistry{
		resources: map[registry.Region][]registry.Resource{
			registry.RegionNZ: {nz111, nz1737},
		},
		emergency: map[registry.Region]registry.Resource{
			registry.RegionNZ: nz111,
		},
		fabrications: map[string]bool{"0800 543 800": true},
	}
}

func TestExecutorResolveGetCrisisResources(t *testing.T) {
	e := NewExecutor(newFakeRegistry(), nil, nil)
	text := "[TOOL_CALL: get_crisis_resources(region='NZ', situation_type='crisis')]"
	segments, directives, _ := Parse(text)

	subs, errs := e.Resolve(context.Background(), directives, Context{Region: registry.RegionNZ})
	require.Empty(t, errs)
	out := Render(segments, subs)
	assert.Contains(t, out, "1737")
	assert.NotContains(t, out, "[TOOL_CALL:")
}

func TestExecutorResolveEmptyRegistryFallsBackToEmergency(t *testing.T) {
	e := NewExecutor(newFakeRegistry(), nil, nil)
	text := "[TOOL_CALL: get_crisis_resources(region='NZ', situation_type='support')]"
	segments, directives, _ := Parse(text)

	subs, errs := e.Resolve(context.Background(), directives, Context{Region: registry.RegionNZ})
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrRegistryEmpty)
	out := Render(segments, subs)
	assert.Contains(t, out, "111")
}

func TestRenderResourceBlockPreservesLookupOrder(t *testing.T) {
	resources := []registry.Resource{
		{ID: "NZ:emergency", ServiceName: "Zamboni Emergency Line", Channels: []registry.Channel{{Kind: registry.ChannelPhone, Value: "111"}}},
		{ID: "NZ:mental_health", ServiceName: "Ample Support", Channels: []registry.Channel{{Kind: registry.ChannelPhone, Value: "1737"}}},
	}
	out := renderResourceBlock(resources)
	require.Less(t, strings.Index(out, "Zamboni"), strings.Index(out, "Ample"))
}

func TestExecutorResolveUnknownToolFallsBack(t *testing.T) {
	e := NewExecutor(newFakeRegistry(), nil, nil)
	text := "[TOOL_CALL: delete_everything(x='y')]"
	segments, directives, _ := Parse(text)

	subs, errs := e.Resolve(context.Background(), directives, Context{Region: registry.RegionNZ})
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrUnknownTool)
	out := Render(segments, subs)
	assert.Contains(t, out, "111")
}

func TestExecutorCheckHallucinationFlagsFabrication(t *testing.T) {
	e := NewExecutor(newFakeRegistry(), nil, nil)
	text := "[TOOL_CALL: check_hallucination(resource='0800 543 800', type='phone')]"
	_, directives, _ := Parse(text)

	subs, errs := e.Resolve(context.Background(), directives, Context{Region: registry.RegionNZ})
	require.Empty(t, errs)
	assert.Contains(t, subs[0].Text, "not a verified resource")
}
