package model

import "time"

// ScanRecord is one journaled scan: the outcome summary plus the full result
// payload for later inspection.
type ScanRecord struct {
	ID             string            `json:"id"`
	Provider       string            `json:"provider,omitempty"`
	Success        bool              `json:"success"`
	FallbackUsed   bool              `json:"fallback_used"`
	ChainAttempted []string          `json:"chain_attempted"`
	QualityScore   int               `json:"quality_score"`
	Confidence     float64           `json:"confidence"`
	ReviewNeeded   bool              `json:"review_needed"`
	CostUSD        float64           `json:"cost_usd"`
	ResponseTime   time.Duration     `json:"response_time"`
	Result         *ExtractionResult `json:"result,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}
