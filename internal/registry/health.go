package registry

import (
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Status classifies a provider's runtime health.
type Status string

const (
	StatusHealthy  Status = "healthy"
	StatusDegraded Status = "degraded"
	StatusDown     Status = "down"
)

// Consecutive-failure thresholds driving status transitions.
const (
	defaultDegradedAfter = 1
	defaultDownAfter     = 3
)

// Health is the mutable runtime state for one provider. Consecutive failures
// are the sole driver of status transitions: any success resets the counter
// and restores "healthy".
type Health struct {
	TotalCalls          int           `json:"total_calls"`
	Successes           int           `json:"successes"`
	Failures            int           `json:"failures"`
	ConsecutiveFailures int           `json:"consecutive_failures"`
	AvgResponseTime     time.Duration `json:"avg_response_time"`
	Status              Status        `json:"status"`
	LastChecked         time.Time     `json:"last_checked"`
	SuccessRate         float64       `json:"success_rate"` // percent, 1 decimal
}

// Tracker owns per-provider health state. Each provider's record has its own
// lock; the lock is scoped to the state mutation and never held across a
// provider call.
type Tracker struct {
	mu            sync.Mutex
	entries       map[string]*healthEntry
	degradedAfter int
	downAfter     int
	nowFunc       func() time.Time
}

type healthEntry struct {
	mu     sync.Mutex
	health Health
}

// TrackerOption adjusts Tracker construction.
type TrackerOption func(*Tracker)

// WithThresholds overrides the consecutive-failure counts that mark a
// provider degraded and down.
func WithThresholds(degradedAfter, downAfter int) TrackerOption {
	return func(t *Tracker) {
		if degradedAfter > 0 {
			t.degradedAfter = degradedAfter
		}
		if downAfter > 0 {
			t.downAfter = downAfter
		}
	}
}

// WithNow injects a clock for tests.
func WithNow(now func() time.Time) TrackerOption {
	return func(t *Tracker) { t.nowFunc = now }
}

// NewTracker creates an empty health tracker. Health records are created
// lazily on first observation and live for the process lifetime.
func NewTracker(opts ...TrackerOption) *Tracker {
	t := &Tracker{
		entries:       make(map[string]*healthEntry),
		degradedAfter: defaultDegradedAfter,
		downAfter:     defaultDownAfter,
		nowFunc:       time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tracker) entry(providerID string) *healthEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[providerID]
	if !ok {
		e = &healthEntry{health: Health{Status: StatusHealthy}}
		t.entries[providerID] = e
	}
	return e
}

// RecordOutcome folds one call attempt into the provider's health. Success
// resets the consecutive-failure counter and updates the running mean
// response time; failure advances the counter and degrades the status.
func (t *Tracker) RecordOutcome(providerID string, success bool, elapsed time.Duration) {
	e := t.entry(providerID)

	e.mu.Lock()
	h := &e.health
	h.TotalCalls++
	h.LastChecked = t.nowFunc()

	if success {
		h.Successes++
		h.ConsecutiveFailures = 0
		h.Status = StatusHealthy
		// Incremental mean over successful calls.
		n := time.Duration(h.Successes)
		h.AvgResponseTime = (h.AvgResponseTime*(n-1) + elapsed) / n
	} else {
		h.Failures++
		h.ConsecutiveFailures++
		switch {
		case h.ConsecutiveFailures >= t.downAfter:
			h.Status = StatusDown
		case h.ConsecutiveFailures >= t.degradedAfter:
			h.Status = StatusDegraded
		}
	}

	h.SuccessRate = math.Round(float64(h.Successes)/float64(h.TotalCalls)*1000) / 10
	status := h.Status
	consecutive := h.ConsecutiveFailures
	e.mu.Unlock()

	if !success {
		zap.L().Warn("registry: provider call failed",
			zap.String("provider", providerID),
			zap.Int("consecutive_failures", consecutive),
			zap.String("status", string(status)),
		)
	}
}

// Status returns the current health classification for a provider. Providers
// never observed are healthy.
func (t *Tracker) Status(providerID string) Status {
	t.mu.Lock()
	e, ok := t.entries[providerID]
	t.mu.Unlock()
	if !ok {
		return StatusHealthy
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.health.Status
}

// Snapshot returns a copy of every observed provider's health, keyed by
// provider id.
func (t *Tracker) Snapshot() map[string]Health {
	t.mu.Lock()
	ids := make([]string, 0, len(t.entries))
	entries := make([]*healthEntry, 0, len(t.entries))
	for id, e := range t.entries {
		ids = append(ids, id)
		entries = append(entries, e)
	}
	t.mu.Unlock()

	out := make(map[string]Health, len(ids))
	for i, e := range entries {
		e.mu.Lock()
		out[ids[i]] = e.health
		e.mu.Unlock()
	}
	return out
}
