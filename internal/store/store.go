// Package store journals completed scans so operators can audit outcomes,
// fallback behavior and spend after the fact.
package store

import (
	"context"

	"github.com/otelkit/docscan/internal/model"
)

// ScanFilter specifies criteria for listing journaled scans.
type ScanFilter struct {
	Provider     string `json:"provider,omitempty"`
	Success      *bool  `json:"success,omitempty"`
	ReviewNeeded *bool  `json:"review_needed,omitempty"`
	Limit        int    `json:"limit,omitempty"`
	Offset       int    `json:"offset,omitempty"`
}

// Totals aggregates the journal for the monitoring surface.
type Totals struct {
	Scans        int     `json:"scans"`
	Successes    int     `json:"successes"`
	Fallbacks    int     `json:"fallbacks"`
	ReviewNeeded int     `json:"review_needed"`
	TotalCostUSD float64 `json:"total_cost_usd"`
}

// Store defines the scan journal persistence interface.
type Store interface {
	SaveScan(ctx context.Context, rec *model.ScanRecord) error
	GetScan(ctx context.Context, id string) (*model.ScanRecord, error)
	ListScans(ctx context.Context, filter ScanFilter) ([]model.ScanRecord, error)
	Totals(ctx context.Context) (*Totals, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
