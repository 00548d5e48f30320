// Package registry holds the static extraction-provider catalog and the
// process-wide runtime health state for each provider. The catalog is
// immutable after construction; health lives in a separate Tracker so the
// concurrency boundary is explicit and tests can inject a fresh one.
package registry

import (
	"sort"
	"time"

	"github.com/rotisserie/eris"
)

// Family distinguishes remote vision models from the local OCR engine.
type Family string

const (
	FamilyCloudVision Family = "cloud-vision"
	FamilyLocal       Family = "local"
)

// Descriptor is the static metadata for one extraction provider. Defined at
// process start, never mutated.
type Descriptor struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Family      Family        `json:"family"`
	Model       string        `json:"model"`
	SpeedTier   string        `json:"speed_tier"`   // fast, standard, slow
	QualityTier string        `json:"quality_tier"` // best, standard, basic
	CostPerScan float64       `json:"cost_per_scan_usd"`
	MaxRetries  int           `json:"max_retries"`
	Timeout     time.Duration `json:"timeout"`
	Vision      bool          `json:"vision"`
	Priority    int           `json:"priority"` // lower is tried earlier on ties
}

// Well-known provider IDs for the default catalog.
const (
	ProviderClaude    = "claude"
	ProviderGPT4o     = "gpt4o"
	ProviderGemini    = "gemini"
	ProviderTesseract = "tesseract"
)

// Registry is an immutable provider catalog.
type Registry struct {
	descriptors []Descriptor
	byID        map[string]Descriptor
}

// New builds a Registry from descriptors. Order is preserved for listing;
// lookups go through the id index.
func New(descriptors ...Descriptor) *Registry {
	byID := make(map[string]Descriptor, len(descriptors))
	for _, d := range descriptors {
		byID[d.ID] = d
	}
	return &Registry{descriptors: descriptors, byID: byID}
}

// Default returns the standard four-provider catalog: a best-quality cloud
// model, a balanced cloud model, a cheap fast cloud model, and the zero-cost
// local tesseract fallback.
func Default() *Registry {
	return New(
		Descriptor{
			ID: ProviderClaude, Name: "Claude Sonnet Vision", Family: FamilyCloudVision,
			Model: "claude-sonnet-4-5-20250929", SpeedTier: "standard", QualityTier: "best",
			CostPerScan: 0.015, MaxRetries: 1, Timeout: 45 * time.Second, Vision: true, Priority: 1,
		},
		Descriptor{
			ID: ProviderGPT4o, Name: "GPT-4o Vision", Family: FamilyCloudVision,
			Model: "gpt-4o", SpeedTier: "standard", QualityTier: "standard",
			CostPerScan: 0.008, MaxRetries: 1, Timeout: 45 * time.Second, Vision: true, Priority: 2,
		},
		Descriptor{
			ID: ProviderGemini, Name: "Gemini Flash Vision", Family: FamilyCloudVision,
			Model: "gemini-2.0-flash", SpeedTier: "fast", QualityTier: "basic",
			CostPerScan: 0.002, MaxRetries: 1, Timeout: 30 * time.Second, Vision: true, Priority: 3,
		},
		Descriptor{
			ID: ProviderTesseract, Name: "Local Tesseract OCR", Family: FamilyLocal,
			Model: "tesseract", SpeedTier: "fast", QualityTier: "basic",
			CostPerScan: 0, MaxRetries: 0, Timeout: 20 * time.Second, Vision: false, Priority: 4,
		},
	)
}

// Get looks up a descriptor by provider id.
func (r *Registry) Get(id string) (Descriptor, error) {
	d, ok := r.byID[id]
	if !ok {
		return Descriptor{}, eris.Errorf("registry: unknown provider %q", id)
	}
	return d, nil
}

// Has reports whether a provider id exists in the catalog.
func (r *Registry) Has(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// List returns all descriptors ordered by priority rank.
func (r *Registry) List() []Descriptor {
	out := make([]Descriptor, len(r.descriptors))
	copy(out, r.descriptors)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out
}
