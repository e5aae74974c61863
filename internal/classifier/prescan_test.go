package classifier

import (
	"testing"

	"github.com/coastlineai/sentinel/internal/registry"
	"github.com/stretchr/testify/assert"
)

func TestPreScanDirectSuicideIdeationIsCritical(t *testing.T) {
	res := PreScan("I'm going to kill myself tonight", nil, registry.RegionNZ)
	assert.Equal(t, RiskCritical, res.Risk)
	assert.Contains(t, res.TriggeredPatterns, "suicide.direct")
}

func TestPreScanSingleHopelessnessSignalIsMedium(t *testing.T) {
	res := PreScan("I feel so hopeless about everything lately", nil, registry.RegionNZ)
	assert.Equal(t, RiskMedium, res.Risk)
}

func TestPreScanTwoHopelessnessSignalsIsHigh(t *testing.T) {
	res := PreScan("I wish I was dead, everyone would be better off without me", nil, registry.RegionNZ)
	assert.Equal(t, RiskHigh, res.Risk)
}

func TestPreScanHopelessnessWithPersistenceIsHigh(t *testing.T) {
	res := PreScan("I wish I was dead, I've felt this way for months", nil, registry.RegionNZ)
	assert.Equal(t, RiskHigh, res.Risk)
}

func TestPreScanNoSignalIsLow(t *testing.T) {
	res := PreScan("what time does the pharmacy close today", nil, registry.RegionNZ)
	assert.Equal(t, RiskLow, res.Risk)
}

func TestPreScanFigureOfSpeechDemotes(t *testing.T) {
	res := PreScan("ugh this traffic is killing me", nil, registry.RegionNZ)
	assert.Equal(t, RiskLow, res.Risk)
	assert.True(t, res.FalsePositiveFiled)
	assert.Equal(t, "figure_of_speech", res.FalsePositiveKind)
}

func TestPreScanHumorMarkerDemotesWithoutImmediateDanger(t *testing.T) {
	res := PreScan("I feel so hopeless lol", nil, registry.RegionNZ)
	assert.True(t, res.FalsePositiveFiled)
	assert.Equal(t, "humor", res.FalsePositiveKind)
	assert.Equal(t, RiskLow, res.Risk)
}

func TestPreScanImmediateDangerDemotionNeverFallsBelowHigh(t *testing.T) {
	res := PreScan("I want to kill myself, this traffic is killing me", nil, registry.RegionNZ)
	assert.True(t, res.FalsePositiveFiled)
	assert.Equal(t, "figure_of_speech", res.FalsePositiveKind)
	assert.Equal(t, RiskHigh, res.Risk)
}

func TestPreScanModelDegradationWithPriorOfferIsCritical(t *testing.T) {
	history := []string{"Here is a number that can help: 0800 543 354"}
	res := PreScan("that number didn't work", history, registry.RegionNZ)
	assert.Equal(t, RiskCritical, res.Risk)
	assert.True(t, res.ResourceOfferSeen)
}

func TestPreScanModelDegradationWithoutPriorOfferIsHigh(t *testing.T) {
	res := PreScan("that number didn't work", nil, registry.RegionNZ)
	assert.Equal(t, RiskHigh, res.Risk)
	assert.False(t, res.ResourceOfferSeen)
}

func TestPreScanNZIdiomUsesRegionVocabulary(t *testing.T) {
	res := PreScan("yeah nah I'm not okay", nil, registry.RegionNZ)
	assert.Equal(t, RiskMedium, res.Risk)

	resUS := PreScan("yeah nah I'm not okay", nil, registry.RegionUS)
	assert.Equal(t, RiskLow, resUS.Risk)
}

func TestPreScanPossibleDeflectionDoesNotDemote(t *testing.T) {
	res := PreScan("lol I want to kill myself", nil, registry.RegionNZ)
	assert.Equal(t, "possible_deflection", res.FalsePositiveKind)
	assert.Equal(t, RiskCritical, res.Risk)
}
