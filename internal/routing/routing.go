// Package routing selects an ordered extraction-provider chain for an image
// based on its quality score and live provider health. Good images go to
// cheap fast providers first; bad images go straight to the best model. The
// local OCR engine is always the terminal fallback since it cannot suffer a
// provider outage.
package routing

import (
	"go.uber.org/zap"

	"github.com/otelkit/docscan/internal/registry"
)

// Tiers holds the static per-quality-tier provider orders and the score
// thresholds that pick between them. The thresholds are policy constants
// carried in config for tuning, defaulting to the values the scoring model
// was calibrated against.
type Tiers struct {
	HighThreshold int // quality score at or above: cheap-first chain
	LowThreshold  int // quality score at or above: balanced chain; below: quality-first

	CheapFirst   []string
	Balanced     []string
	QualityFirst []string
}

// DefaultTiers returns the standard routing policy over the default catalog.
func DefaultTiers() Tiers {
	return Tiers{
		HighThreshold: 80,
		LowThreshold:  50,
		CheapFirst: []string{
			registry.ProviderGemini, registry.ProviderGPT4o,
			registry.ProviderClaude, registry.ProviderTesseract,
		},
		Balanced: []string{
			registry.ProviderGPT4o, registry.ProviderClaude,
			registry.ProviderGemini, registry.ProviderTesseract,
		},
		QualityFirst: []string{
			registry.ProviderClaude, registry.ProviderGPT4o,
			registry.ProviderGemini, registry.ProviderTesseract,
		},
	}
}

// HealthReader is the view of provider health the router needs.
type HealthReader interface {
	Status(providerID string) registry.Status
}

// Engine computes provider chains.
type Engine struct {
	reg    *registry.Registry
	health HealthReader
	tiers  Tiers
}

// NewEngine creates a routing engine over the given catalog and health view.
func NewEngine(reg *registry.Registry, health HealthReader, tiers Tiers) *Engine {
	return &Engine{reg: reg, health: health, tiers: tiers}
}

// SelectChain returns the ordered provider ids to try for an image with the
// given quality score. Providers currently classified "down" are excluded;
// if that empties the chain entirely, the unfiltered tier chain is returned
// instead so the routing decision is never empty. A preferred provider, when
// set and known, is moved to the front of the chain.
func (e *Engine) SelectChain(qualityScore int, preferred string) []string {
	tier := e.tierFor(qualityScore)

	chain := make([]string, 0, len(tier))
	for _, id := range tier {
		if !e.reg.Has(id) {
			continue
		}
		if e.health.Status(id) == registry.StatusDown {
			zap.L().Debug("routing: skipping down provider", zap.String("provider", id))
			continue
		}
		chain = append(chain, id)
	}
	if len(chain) == 0 {
		// Every provider is down: the full tier chain is still the best plan.
		zap.L().Warn("routing: all providers down, using unfiltered chain",
			zap.Int("quality_score", qualityScore),
		)
		chain = append(chain, tier...)
	}

	if preferred != "" && e.reg.Has(preferred) {
		chain = prepend(chain, preferred)
	}

	return chain
}

func (e *Engine) tierFor(qualityScore int) []string {
	switch {
	case qualityScore >= e.tiers.HighThreshold:
		return e.tiers.CheapFirst
	case qualityScore >= e.tiers.LowThreshold:
		return e.tiers.Balanced
	default:
		return e.tiers.QualityFirst
	}
}

// prepend puts id at the front of chain, removing any other occurrence.
func prepend(chain []string, id string) []string {
	out := make([]string, 0, len(chain)+1)
	out = append(out, id)
	for _, c := range chain {
		if c != id {
			out = append(out, c)
		}
	}
	return out
}
