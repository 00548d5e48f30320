// Package cost estimates per-scan spend for the extraction providers.
package cost

import "github.com/otelkit/docscan/internal/registry"

// ModelRate holds per-model token pricing (USD per million tokens).
type ModelRate struct {
	Input  float64 `yaml:"input" mapstructure:"input"`
	Output float64 `yaml:"output" mapstructure:"output"`
}

// Rates holds token pricing keyed by model identifier. Providers without a
// token price (the local engine) cost nothing.
type Rates map[string]ModelRate

// DefaultRates returns pricing for the default catalog's models.
func DefaultRates() Rates {
	return Rates{
		"claude-sonnet-4-5-20250929": {Input: 3.00, Output: 15.00},
		"gpt-4o":                     {Input: 2.50, Output: 10.00},
		"gemini-2.0-flash":           {Input: 0.10, Output: 0.40},
	}
}

// Calculator computes scan costs from configured rates and the provider
// catalog's flat estimates.
type Calculator struct {
	rates Rates
	reg   *registry.Registry
}

// NewCalculator creates a Calculator.
func NewCalculator(rates Rates, reg *registry.Registry) *Calculator {
	return &Calculator{rates: rates, reg: reg}
}

// EstimateScan returns the flat per-scan estimate for a provider, before any
// call is made. Unknown providers estimate to zero.
func (c *Calculator) EstimateScan(providerID string) float64 {
	d, err := c.reg.Get(providerID)
	if err != nil {
		return 0
	}
	return d.CostPerScan
}

// ActualScan computes the cost of a completed call from reported token usage.
// When the model has no token pricing, or the provider reported no usage, the
// flat per-scan estimate is used instead.
func (c *Calculator) ActualScan(providerID string, inputTokens, outputTokens int64) float64 {
	d, err := c.reg.Get(providerID)
	if err != nil {
		return 0
	}
	rate, ok := c.rates[d.Model]
	if !ok || (inputTokens == 0 && outputTokens == 0) {
		return d.CostPerScan
	}
	return (float64(inputTokens)/1e6)*rate.Input + (float64(outputTokens)/1e6)*rate.Output
}
