package model

import "time"

// AttemptError records one failed provider attempt in an extraction chain.
type AttemptError struct {
	Provider string `json:"provider"`
	Error    string `json:"error"`
}

// ExtractionResult is the outcome of running one image through the provider
// chain. On success Documents holds at least one document (possibly marked
// invalid); on terminal failure it is empty and Errors holds one entry per
// attempted provider.
type ExtractionResult struct {
	ScanID           string              `json:"scan_id"`
	Success          bool                `json:"success"`
	Provider         string              `json:"provider,omitempty"`
	FallbackUsed     bool                `json:"fallback_used"`
	ChainAttempted   []string            `json:"chain_attempted"`
	Errors           []AttemptError      `json:"errors,omitempty"`
	ResponseTime     time.Duration       `json:"response_time"`
	EstimatedCostUSD float64             `json:"estimated_cost_usd"`
	Documents        []ExtractedDocument `json:"documents"`
}
