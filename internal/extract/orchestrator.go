package extract

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/otelkit/docscan/internal/cost"
	"github.com/otelkit/docscan/internal/model"
	"github.com/otelkit/docscan/internal/registry"
)

// Orchestrator executes provider chains. Every attempt, success or failure,
// is recorded on the health tracker so routing sees outages quickly.
type Orchestrator struct {
	reg       *registry.Registry
	tracker   *registry.Tracker
	calc      *cost.Calculator
	providers map[string]Provider
	limiters  map[string]*rate.Limiter
	nowFunc   func() time.Time
}

// Option adjusts Orchestrator construction.
type Option func(*Orchestrator)

// WithRateLimits installs per-provider call limiters. Providers without a
// limiter are uncapped.
func WithRateLimits(limiters map[string]*rate.Limiter) Option {
	return func(o *Orchestrator) { o.limiters = limiters }
}

// WithNow injects a clock for tests.
func WithNow(now func() time.Time) Option {
	return func(o *Orchestrator) { o.nowFunc = now }
}

// New creates an Orchestrator over the given catalog, health tracker, cost
// calculator and provider implementations keyed by catalog id.
func New(reg *registry.Registry, tracker *registry.Tracker, calc *cost.Calculator, providers map[string]Provider, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		reg:       reg,
		tracker:   tracker,
		calc:      calc,
		providers: providers,
		nowFunc:   time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run tries each provider in chain order until one returns documents. A chain
// where every provider fails is a normal outcome, not an error: the result
// carries Success=false and the full error trail. The returned error covers
// invalid input only.
func (o *Orchestrator) Run(ctx context.Context, image []byte, chain []string) (*model.ExtractionResult, error) {
	if len(chain) == 0 {
		return nil, eris.New("extract: empty provider chain")
	}
	if len(image) == 0 {
		return nil, eris.New("extract: empty image")
	}

	start := o.nowFunc()
	res := &model.ExtractionResult{
		ScanID:         uuid.NewString(),
		ChainAttempted: append([]string(nil), chain...),
	}

	for _, id := range chain {
		resp, err := o.tryProvider(ctx, id, image)
		if err != nil {
			res.Errors = append(res.Errors, model.AttemptError{Provider: id, Error: err.Error()})
			if ctx.Err() != nil {
				// The context is gone; the rest of the chain would fail the
				// same way.
				break
			}
			continue
		}

		res.Success = true
		res.Provider = id
		res.FallbackUsed = id != chain[0]
		res.Documents = resp.Documents
		res.EstimatedCostUSD = o.calc.ActualScan(id, resp.Usage.InputTokens, resp.Usage.OutputTokens)
		res.ResponseTime = o.nowFunc().Sub(start)

		zap.L().Info("extract: scan complete",
			zap.String("scan_id", res.ScanID),
			zap.String("provider", id),
			zap.Bool("fallback_used", res.FallbackUsed),
			zap.Int("documents", len(res.Documents)),
			zap.Duration("elapsed", res.ResponseTime),
		)
		return res, nil
	}

	res.ResponseTime = o.nowFunc().Sub(start)
	zap.L().Error("extract: all providers failed",
		zap.String("scan_id", res.ScanID),
		zap.Strings("chain", chain),
		zap.Int("attempts", len(res.Errors)),
	)
	return res, nil
}

// tryProvider runs one provider with its catalog timeout and retry budget.
// Each underlying call is recorded on the health tracker individually.
func (o *Orchestrator) tryProvider(ctx context.Context, id string, image []byte) (*RawResponse, error) {
	p, ok := o.providers[id]
	if !ok {
		return nil, eris.Errorf("extract: no client configured for provider %q", id)
	}
	d, err := o.reg.Get(id)
	if err != nil {
		return nil, err
	}

	if lim := o.limiters[id]; lim != nil {
		if err := lim.Wait(ctx); err != nil {
			return nil, eris.Wrapf(err, "extract: rate limit wait for %s", id)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= d.MaxRetries; attempt++ {
		resp, elapsed, err := o.call(ctx, p, d, image)
		o.tracker.RecordOutcome(id, err == nil, elapsed)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		zap.L().Warn("extract: provider attempt failed",
			zap.String("provider", id),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
		if ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

func (o *Orchestrator) call(ctx context.Context, p Provider, d registry.Descriptor, image []byte) (*RawResponse, time.Duration, error) {
	callCtx := ctx
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	start := o.nowFunc()
	resp, err := p.Extract(callCtx, image)
	elapsed := o.nowFunc().Sub(start)
	return resp, elapsed, err
}
