package routing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otelkit/docscan/internal/registry"
)

func newEngine(t *testing.T) (*Engine, *registry.Tracker) {
	t.Helper()
	tracker := registry.NewTracker()
	return NewEngine(registry.Default(), tracker, DefaultTiers()), tracker
}

func TestSelectChain_HighQualityPrefersCheap(t *testing.T) {
	e, _ := newEngine(t)

	chain := e.SelectChain(90, "")
	require.Len(t, chain, 4)
	assert.Equal(t, registry.ProviderGemini, chain[0])
	assert.Equal(t, registry.ProviderTesseract, chain[3])
}

func TestSelectChain_LowQualityPrefersBest(t *testing.T) {
	e, _ := newEngine(t)

	chain := e.SelectChain(20, "")
	require.Len(t, chain, 4)
	assert.Equal(t, registry.ProviderClaude, chain[0])
	assert.Equal(t, registry.ProviderTesseract, chain[3])
}

func TestSelectChain_MidQualityBalanced(t *testing.T) {
	e, _ := newEngine(t)

	chain := e.SelectChain(65, "")
	require.Len(t, chain, 4)
	assert.Equal(t, registry.ProviderGPT4o, chain[0])
}

func TestSelectChain_ThresholdBoundaries(t *testing.T) {
	e, _ := newEngine(t)

	assert.Equal(t, registry.ProviderGemini, e.SelectChain(80, "")[0])
	assert.Equal(t, registry.ProviderGPT4o, e.SelectChain(79, "")[0])
	assert.Equal(t, registry.ProviderGPT4o, e.SelectChain(50, "")[0])
	assert.Equal(t, registry.ProviderClaude, e.SelectChain(49, "")[0])
}

func TestSelectChain_DownProviderExcluded(t *testing.T) {
	e, tracker := newEngine(t)

	// Three consecutive failures mark claude down.
	for i := 0; i < 3; i++ {
		tracker.RecordOutcome(registry.ProviderClaude, false, time.Second)
	}

	chain := e.SelectChain(20, "")
	require.Len(t, chain, 3)
	assert.NotContains(t, chain, registry.ProviderClaude)
	assert.Equal(t, registry.ProviderGPT4o, chain[0])

	// A recovery success restores it to the front of the quality-first chain.
	tracker.RecordOutcome(registry.ProviderClaude, true, time.Second)
	chain = e.SelectChain(20, "")
	assert.Equal(t, registry.ProviderClaude, chain[0])
}

func TestSelectChain_DegradedStillRoutable(t *testing.T) {
	e, tracker := newEngine(t)

	tracker.RecordOutcome(registry.ProviderClaude, false, time.Second)
	assert.Equal(t, registry.StatusDegraded, tracker.Status(registry.ProviderClaude))

	chain := e.SelectChain(20, "")
	assert.Contains(t, chain, registry.ProviderClaude)
}

func TestSelectChain_AllDownFallsBackToUnfiltered(t *testing.T) {
	e, tracker := newEngine(t)

	for _, id := range []string{
		registry.ProviderClaude, registry.ProviderGPT4o,
		registry.ProviderGemini, registry.ProviderTesseract,
	} {
		for i := 0; i < 3; i++ {
			tracker.RecordOutcome(id, false, time.Second)
		}
	}

	// The routing decision must never be empty.
	chain := e.SelectChain(90, "")
	require.Len(t, chain, 4)
	assert.Equal(t, registry.ProviderGemini, chain[0])
}

func TestSelectChain_PreferredProviderPrepended(t *testing.T) {
	e, _ := newEngine(t)

	chain := e.SelectChain(90, registry.ProviderClaude)
	require.Len(t, chain, 4) // deduplicated, not appended twice
	assert.Equal(t, registry.ProviderClaude, chain[0])
	assert.Equal(t, registry.ProviderGemini, chain[1])
}

func TestSelectChain_UnknownPreferredIgnored(t *testing.T) {
	e, _ := newEngine(t)

	chain := e.SelectChain(90, "mystery-model")
	require.Len(t, chain, 4)
	assert.Equal(t, registry.ProviderGemini, chain[0])
}
