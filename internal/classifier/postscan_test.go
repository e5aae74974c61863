package classifier

import (
	"testing"

	"github.com/coastlineai/sentinel/internal/registry"
	"github.com/stretchr/testify/assert"
)

type fakePostScanRegistry struct {
	fabricated map[string]bool
	resources  []registry.Resource
}

func (f *fakePostScanRegistry) IsFabrication(value string, _ registry.ChannelKind, _ registry.Region, _ registry.SituationType) (bool, *registry.Resource) {
	return f.fabricated[value], nil
}

func (f *fakePostScanRegistry) Lookup(_ registry.Region, _ registry.SituationType, _ registry.TopicalTag) []registry.Resource {
	return f.resources
}

func TestPostScanDetectsFabricatedPhoneNumber(t *testing.T) {
	reg := &fakePostScanRegistry{fabricated: map[string]bool{"0800543800": true}}
	out := PostScan("Call 0800543800 right now for help.", registry.RegionNZ, reg)
	assert.True(t, out.AIFailureDetected)
	assert.Equal(t, RiskCritical, out.EscalatedRisk)
	assert.NotEmpty(t, out.FabricatedLiterals)
}

func TestPostScanDetectsWrongRegionNumber(t *testing.T) {
	reg := &fakePostScanRegistry{fabricated: map[string]bool{}}
	out := PostScan("You can reach the crisis line at 988.", registry.RegionNZ, reg)
	assert.True(t, out.AIFailureDetected)
	assert.Equal(t, RiskHigh, out.EscalatedRisk)
	require := out.WrongRegionNumbers
	assert.Len(t, require, 1)
	assert.Equal(t, registry.RegionUS, require[0].ActualRegion)
}

func TestPostScanDetectsVictimBlamePhrase(t *testing.T) {
	out := PostScan("Have you considered that it's partly your fault this happened?", registry.RegionNZ, nil)
	assert.NotEmpty(t, out.VictimBlameHits)
	assert.Equal(t, RiskHigh, out.EscalatedRisk)
	assert.False(t, out.AIFailureDetected)
}

func TestPostScanCleanOutputIsLow(t *testing.T) {
	reg := &fakePostScanRegistry{fabricated: map[string]bool{}}
	out := PostScan("I'm really sorry you're going through this. You're not alone.", registry.RegionNZ, reg)
	assert.False(t, out.AIFailureDetected)
	assert.Equal(t, RiskLow, out.EscalatedRisk)
}

func TestPostScanDetectsNovelUnregisteredNumber(t *testing.T) {
	reg := &fakePostScanRegistry{fabricated: map[string]bool{}}
	out := PostScan("You can call 0800 999 111 for support.", registry.RegionNZ, reg)
	assert.True(t, out.AIFailureDetected)
	assert.Equal(t, RiskCritical, out.EscalatedRisk)
	assert.Contains(t, out.FabricatedLiterals, "0800 999 111")
	assert.Empty(t, out.WrongRegionNumbers)
}

func TestPostScanAllowsRegisteredNumber(t *testing.T) {
	reg := &fakePostScanRegistry{
		fabricated: map[string]bool{},
		resources: []registry.Resource{
			{ID: "res-1", ServiceName: "Lifeline Aotearoa", Channels: []registry.Channel{{Kind: registry.ChannelPhone, Value: "0800 543 354"}}},
		},
	}
	out := PostScan("You can call 0800 543 354 for support.", registry.RegionNZ, reg)
	assert.False(t, out.AIFailureDetected)
	assert.Empty(t, out.FabricatedLiterals)
}

func TestPostScanNilRegistrySkipsResourceChecks(t *testing.T) {
	out := PostScan("Call 0800 543 800 now.", registry.RegionNZ, nil)
	assert.Empty(t, out.FabricatedLiterals)
	assert.Empty(t, out.WrongRegionNumbers)
}
