package monitoring

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otelkit/docscan/internal/config"
	"github.com/otelkit/docscan/internal/model"
	"github.com/otelkit/docscan/internal/registry"
	"github.com/otelkit/docscan/internal/store"
)

func seedJournal(t *testing.T, st store.Store, successes, failures, fallbacks int) {
	t.Helper()
	ctx := context.Background()
	add := func(success, fallback bool) {
		require.NoError(t, st.SaveScan(ctx, &model.ScanRecord{
			ID:           uuid.NewString(),
			Provider:     "gemini",
			Success:      success,
			FallbackUsed: fallback,
			ReviewNeeded: !success,
			CostUSD:      0.01,
		}))
	}
	for i := 0; i < successes; i++ {
		add(true, false)
	}
	for i := 0; i < failures; i++ {
		add(false, false)
	}
	for i := 0; i < fallbacks; i++ {
		add(true, true)
	}
}

func TestCollect(t *testing.T) {
	st := store.NewMemory()
	seedJournal(t, st, 6, 2, 2)

	tracker := registry.NewTracker()
	tracker.RecordOutcome("gemini", true, time.Second)
	for i := 0; i < 3; i++ {
		tracker.RecordOutcome("claude", false, 0)
	}

	snap, err := NewCollector(st, tracker).Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 10, snap.ScansTotal)
	assert.Equal(t, 2, snap.ScansFailed)
	assert.InDelta(t, 0.2, snap.FailRate, 0.001)
	assert.InDelta(t, 0.2, snap.FallbackRate, 0.001)
	assert.InDelta(t, 0.2, snap.ReviewRate, 0.001)
	assert.InDelta(t, 0.10, snap.TotalCostUSD, 1e-9)
	assert.Equal(t, registry.StatusDown, snap.Providers["claude"].Status)
	assert.Equal(t, []string{"claude"}, snap.DownProviders())
}

func TestCollect_NilSources(t *testing.T) {
	snap, err := NewCollector(nil, nil).Collect(context.Background())
	require.NoError(t, err)
	assert.Zero(t, snap.ScansTotal)
	assert.Empty(t, snap.Providers)
}

func TestEvaluate_Thresholds(t *testing.T) {
	a := NewAlerter(config.MonitoringConfig{
		FailureRateThreshold: 0.3,
		CostThresholdUSD:     1.00,
		ReviewRateThreshold:  0.5,
	})

	snap := &MetricsSnapshot{
		ScansTotal:   10,
		ScansFailed:  4,
		FailRate:     0.4,
		ReviewRate:   0.6,
		TotalCostUSD: 1.50,
		Providers: map[string]registry.Health{
			"claude": {Status: registry.StatusDown},
			"gemini": {Status: registry.StatusHealthy},
		},
	}

	alerts := a.Evaluate(snap)
	types := make(map[AlertType]bool, len(alerts))
	for _, al := range alerts {
		types[al.Type] = true
	}
	assert.True(t, types[AlertScanFailureRate])
	assert.True(t, types[AlertProviderDown])
	assert.True(t, types[AlertCostOverrun])
	assert.True(t, types[AlertReviewRate])
}

func TestEvaluate_QuietWhenHealthy(t *testing.T) {
	a := NewAlerter(config.MonitoringConfig{
		FailureRateThreshold: 0.5,
		CostThresholdUSD:     100,
		ReviewRateThreshold:  0.5,
	})

	snap := &MetricsSnapshot{
		ScansTotal:   20,
		ScansFailed:  1,
		FailRate:     0.05,
		ReviewRate:   0.1,
		TotalCostUSD: 0.50,
		Providers:    map[string]registry.Health{"gemini": {Status: registry.StatusHealthy}},
	}

	assert.Empty(t, a.Evaluate(snap))
}

func TestEvaluate_TooFewScansStaysQuiet(t *testing.T) {
	a := NewAlerter(config.MonitoringConfig{FailureRateThreshold: 0.3})

	snap := &MetricsSnapshot{ScansTotal: 3, ScansFailed: 3, FailRate: 1.0}
	assert.Empty(t, a.Evaluate(snap))
}

func TestSendAlerts_Webhook(t *testing.T) {
	var received atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	a := NewAlerter(config.MonitoringConfig{WebhookURL: srv.URL})
	sent := a.SendAlerts(context.Background(), []Alert{
		{Type: AlertProviderDown, Severity: "high", Message: "x"},
		{Type: AlertCostOverrun, Severity: "high", Message: "y"},
	})

	assert.Equal(t, 2, sent)
	assert.Equal(t, int32(2), received.Load())
}

func TestSendAlerts_NoWebhookConfigured(t *testing.T) {
	a := NewAlerter(config.MonitoringConfig{})
	assert.Zero(t, a.SendAlerts(context.Background(), []Alert{{Type: AlertProviderDown}}))
}

func TestSendAlerts_WebhookFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := NewAlerter(config.MonitoringConfig{WebhookURL: srv.URL})
	sent := a.SendAlerts(context.Background(), []Alert{{Type: AlertProviderDown}})
	assert.Zero(t, sent)
}
