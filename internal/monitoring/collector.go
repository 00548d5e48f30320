// Package monitoring aggregates the scan journal and live provider health
// into an operator-facing snapshot and evaluates it against alert thresholds.
package monitoring

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/otelkit/docscan/internal/registry"
	"github.com/otelkit/docscan/internal/store"
)

// MetricsSnapshot holds a point-in-time view of system health.
type MetricsSnapshot struct {
	// Scan metrics over the whole journal.
	ScansTotal   int     `json:"scans_total"`
	ScansFailed  int     `json:"scans_failed"`
	FailRate     float64 `json:"fail_rate"`
	FallbackRate float64 `json:"fallback_rate"`
	ReviewRate   float64 `json:"review_rate"`
	TotalCostUSD float64 `json:"total_cost_usd"`

	// Live provider health, keyed by provider id.
	Providers map[string]registry.Health `json:"providers"`

	CollectedAt time.Time `json:"collected_at"`
}

// DownProviders lists providers currently classified down.
func (s *MetricsSnapshot) DownProviders() []string {
	var out []string
	for id, h := range s.Providers {
		if h.Status == registry.StatusDown {
			out = append(out, id)
		}
	}
	return out
}

// HealthSource is the view of the health tracker the collector needs.
type HealthSource interface {
	Snapshot() map[string]registry.Health
}

// Collector gathers metrics from the journal and the health tracker.
type Collector struct {
	store  store.Store
	health HealthSource
}

// NewCollector creates a new metrics collector. Either source may be nil,
// leaving that part of the snapshot empty.
func NewCollector(st store.Store, health HealthSource) *Collector {
	return &Collector{store: st, health: health}
}

// Collect gathers a snapshot of scan outcomes and provider health.
func (c *Collector) Collect(ctx context.Context) (*MetricsSnapshot, error) {
	snap := &MetricsSnapshot{CollectedAt: time.Now().UTC()}

	if c.store != nil {
		totals, err := c.store.Totals(ctx)
		if err != nil {
			return nil, eris.Wrap(err, "monitoring: journal totals")
		}
		snap.ScansTotal = totals.Scans
		snap.ScansFailed = totals.Scans - totals.Successes
		snap.TotalCostUSD = totals.TotalCostUSD
		if totals.Scans > 0 {
			snap.FailRate = float64(snap.ScansFailed) / float64(totals.Scans)
			snap.FallbackRate = float64(totals.Fallbacks) / float64(totals.Scans)
			snap.ReviewRate = float64(totals.ReviewNeeded) / float64(totals.Scans)
		}
	}

	if c.health != nil {
		snap.Providers = c.health.Snapshot()
	}

	return snap, nil
}
