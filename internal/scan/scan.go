// Package scan is the library façade over the extraction pipeline: quality
// assessment, smart routing, chain execution, confidence scoring and the
// deterministic validators, wired together from configuration.
package scan

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/otelkit/docscan/internal/confidence"
	"github.com/otelkit/docscan/internal/config"
	"github.com/otelkit/docscan/internal/cost"
	"github.com/otelkit/docscan/internal/extract"
	"github.com/otelkit/docscan/internal/localocr"
	"github.com/otelkit/docscan/internal/model"
	"github.com/otelkit/docscan/internal/mrz"
	"github.com/otelkit/docscan/internal/quality"
	"github.com/otelkit/docscan/internal/registry"
	"github.com/otelkit/docscan/internal/routing"
	"github.com/otelkit/docscan/internal/store"
	"github.com/otelkit/docscan/internal/tckimlik"
	"github.com/otelkit/docscan/pkg/vision"
)

// Service exposes the extraction pipeline to callers.
type Service struct {
	cfg     *config.Config
	reg     *registry.Registry
	tracker *registry.Tracker
	router  *routing.Engine
	orch    *extract.Orchestrator
	scorer  *confidence.Scorer
	calc    *cost.Calculator
	journal store.Store
}

// Option adjusts Service construction.
type Option func(*serviceDeps)

type serviceDeps struct {
	journal   store.Store
	providers map[string]extract.Provider
	tracker   *registry.Tracker
	reg       *registry.Registry
}

// WithJournal persists every scan outcome to the given store.
func WithJournal(journal store.Store) Option {
	return func(d *serviceDeps) { d.journal = journal }
}

// WithProviders overrides the provider implementations, keyed by catalog id.
// Used by tests to substitute fakes.
func WithProviders(providers map[string]extract.Provider) Option {
	return func(d *serviceDeps) { d.providers = providers }
}

// WithTracker injects a health tracker instead of creating a fresh one.
func WithTracker(tracker *registry.Tracker) Option {
	return func(d *serviceDeps) { d.tracker = tracker }
}

// WithRegistry overrides the provider catalog.
func WithRegistry(reg *registry.Registry) Option {
	return func(d *serviceDeps) { d.reg = reg }
}

// New wires a Service from configuration. Cloud providers without an API key
// are left unconfigured; the chain skips them at execution time. The local
// OCR provider is always available.
func New(cfg *config.Config, opts ...Option) *Service {
	deps := &serviceDeps{}
	for _, opt := range opts {
		opt(deps)
	}

	reg := deps.reg
	if reg == nil {
		reg = registry.Default()
	}
	tracker := deps.tracker
	if tracker == nil {
		tracker = registry.NewTracker(
			registry.WithThresholds(cfg.Health.DegradedAfter, cfg.Health.DownAfter),
		)
	}
	providers := deps.providers
	if providers == nil {
		providers = buildProviders(cfg)
	}

	tiers := routing.DefaultTiers()
	if cfg.Routing.HighThreshold > 0 {
		tiers.HighThreshold = cfg.Routing.HighThreshold
	}
	if cfg.Routing.LowThreshold > 0 {
		tiers.LowThreshold = cfg.Routing.LowThreshold
	}

	rates := cost.DefaultRates()
	for m, p := range cfg.Pricing.Models {
		rates[m] = cost.ModelRate{Input: p.Input, Output: p.Output}
	}
	calc := cost.NewCalculator(rates, reg)

	return &Service{
		cfg:     cfg,
		reg:     reg,
		tracker: tracker,
		router:  routing.NewEngine(reg, tracker, tiers),
		orch: extract.New(reg, tracker, calc, providers,
			extract.WithRateLimits(buildLimiters(cfg, reg)),
		),
		scorer: confidence.NewScorer(confidence.Config{
			ReviewThreshold: cfg.Confidence.ReviewThreshold,
			HighTier:        cfg.Confidence.HighTier,
			MediumTier:      cfg.Confidence.MediumTier,
		}),
		calc:    calc,
		journal: deps.journal,
	}
}

func buildProviders(cfg *config.Config) map[string]extract.Provider {
	providers := map[string]extract.Provider{
		registry.ProviderTesseract: extract.NewLocalProvider(
			registry.ProviderTesseract,
			localocr.NewAdapter(localocr.NewTesseractEngine(cfg.OCR.Languages...)),
		),
	}
	if cfg.Anthropic.Key != "" {
		providers[registry.ProviderClaude] = extract.NewVisionProvider(
			registry.ProviderClaude,
			vision.NewAnthropicClient(cfg.Anthropic.Key, cfg.Anthropic.Model),
			cfg.Anthropic.Model,
		)
	}
	if cfg.OpenAI.Key != "" {
		providers[registry.ProviderGPT4o] = extract.NewVisionProvider(
			registry.ProviderGPT4o,
			vision.NewOpenAIClient(cfg.OpenAI.Key, cfg.OpenAI.Model),
			cfg.OpenAI.Model,
		)
	}
	if cfg.Gemini.Key != "" {
		providers[registry.ProviderGemini] = extract.NewVisionProvider(
			registry.ProviderGemini,
			vision.NewGeminiClient(cfg.Gemini.Key, cfg.Gemini.Model),
			cfg.Gemini.Model,
		)
	}
	return providers
}

// buildLimiters caps call rates for cloud providers only; the local engine
// has no quota to protect.
func buildLimiters(cfg *config.Config, reg *registry.Registry) map[string]*rate.Limiter {
	if cfg.Scan.ProviderRateLimit <= 0 {
		return nil
	}
	limiters := make(map[string]*rate.Limiter)
	for _, d := range reg.List() {
		if d.Family == registry.FamilyCloudVision {
			limiters[d.ID] = rate.NewLimiter(rate.Limit(cfg.Scan.ProviderRateLimit), 1)
		}
	}
	return limiters
}

// AssessImageQuality scores an image before scanning so the caller can pick a
// routing tier or reject the upload outright.
func (s *Service) AssessImageQuality(image []byte) quality.Assessment {
	return quality.Assess(image)
}

// SmartScan routes and executes one extraction. The quality score picks the
// provider tier; preferred, when non-empty and known, is tried first. The
// outcome is journaled when a journal is configured.
func (s *Service) SmartScan(ctx context.Context, image []byte, qualityScore int, preferred string) (*model.ExtractionResult, error) {
	chain := s.router.SelectChain(qualityScore, preferred)
	res, err := s.orch.Run(ctx, image, chain)
	if err != nil {
		return nil, err
	}

	s.journalScan(ctx, res, qualityScore)
	return res, nil
}

// Scan is the one-call entry point: assess quality, route, execute.
func (s *Service) Scan(ctx context.Context, image []byte) (*model.ExtractionResult, error) {
	assessment := s.AssessImageQuality(image)
	return s.SmartScan(ctx, image, assessment.Score, "")
}

func (s *Service) journalScan(ctx context.Context, res *model.ExtractionResult, qualityScore int) {
	if s.journal == nil {
		return
	}

	score := s.scorer.Score(res)
	rec := &model.ScanRecord{
		ID:             res.ScanID,
		Provider:       res.Provider,
		Success:        res.Success,
		FallbackUsed:   res.FallbackUsed,
		ChainAttempted: res.ChainAttempted,
		QualityScore:   qualityScore,
		Confidence:     score.Overall,
		ReviewNeeded:   score.ReviewNeeded,
		CostUSD:        res.EstimatedCostUSD,
		ResponseTime:   res.ResponseTime,
		Result:         res,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.journal.SaveScan(ctx, rec); err != nil {
		zap.L().Warn("scan: journal write failed",
			zap.String("scan_id", res.ScanID),
			zap.Error(err),
		)
	}
}

// ScoreConfidence rates a completed extraction.
func (s *Service) ScoreConfidence(res *model.ExtractionResult) confidence.Score {
	return s.scorer.Score(res)
}

// ParseMRZFromText scans free text for an embedded machine-readable zone.
func (s *Service) ParseMRZFromText(text string) (bool, *mrz.Record) {
	rec := mrz.DetectAndParse(text)
	return rec != nil, rec
}

// ValidateTCKimlik checks a Turkish national identity number.
func (s *Service) ValidateTCKimlik(number string) tckimlik.Result {
	return tckimlik.Validate(number)
}

// ListProviders returns the provider catalog ordered by priority.
func (s *Service) ListProviders() []registry.Descriptor {
	return s.reg.List()
}

// ProviderStats returns live health for every observed provider.
func (s *Service) ProviderStats() map[string]registry.Health {
	return s.tracker.Snapshot()
}

// HealthTracker exposes the tracker for the monitoring surface.
func (s *Service) HealthTracker() *registry.Tracker {
	return s.tracker
}

// EstimateScanCost returns the flat per-scan estimate for one provider.
func (s *Service) EstimateScanCost(providerID string) float64 {
	return s.calc.EstimateScan(providerID)
}
