package scan

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otelkit/docscan/internal/config"
	"github.com/otelkit/docscan/internal/extract"
	"github.com/otelkit/docscan/internal/model"
	"github.com/otelkit/docscan/internal/registry"
	"github.com/otelkit/docscan/internal/store"
)

type fakeProvider struct {
	id   string
	fail bool
	doc  model.ExtractedDocument
}

func (f *fakeProvider) ID() string { return f.id }

func (f *fakeProvider) Extract(context.Context, []byte) (*extract.RawResponse, error) {
	if f.fail {
		return nil, eris.Errorf("%s: forced failure", f.id)
	}
	return &extract.RawResponse{Documents: []model.ExtractedDocument{f.doc}}, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Routing.HighThreshold = 80
	cfg.Routing.LowThreshold = 50
	cfg.Health.DegradedAfter = 1
	cfg.Health.DownAfter = 3
	return cfg
}

func completeDoc() model.ExtractedDocument {
	return model.ExtractedDocument{
		Valid:          true,
		Type:           model.DocTypeNationalID,
		FirstName:      "MEHMET",
		LastName:       "YILMAZ",
		NationalID:     "10000000146",
		DocumentNumber: "A12B34567",
		BirthDate:      "1985-06-15",
		BirthPlace:     "ANKARA",
		Gender:         "M",
		Nationality:    "TUR",
		ExpiryDate:     "2030-01-01",
	}
}

func TestSmartScan_FallbackToLocal(t *testing.T) {
	cfg := testConfig(t)
	journal := store.NewMemory()

	svc := New(cfg,
		WithJournal(journal),
		WithProviders(map[string]extract.Provider{
			registry.ProviderClaude:    &fakeProvider{id: registry.ProviderClaude, fail: true},
			registry.ProviderGPT4o:     &fakeProvider{id: registry.ProviderGPT4o, fail: true},
			registry.ProviderGemini:    &fakeProvider{id: registry.ProviderGemini, fail: true},
			registry.ProviderTesseract: &fakeProvider{id: registry.ProviderTesseract, doc: completeDoc()},
		}),
	)

	// Low quality routes quality-first: claude, gpt4o, gemini, tesseract.
	res, err := svc.SmartScan(context.Background(), []byte("img"), 20, "")
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, registry.ProviderTesseract, res.Provider)
	assert.True(t, res.FallbackUsed)
	assert.Len(t, res.Errors, 3)
	assert.Equal(t, registry.ProviderClaude, res.ChainAttempted[0])

	// The outcome landed in the journal with confidence attached.
	rec, err := journal.GetScan(context.Background(), res.ScanID)
	require.NoError(t, err)
	assert.True(t, rec.Success)
	assert.True(t, rec.FallbackUsed)
	assert.Equal(t, 20, rec.QualityScore)
	assert.Equal(t, 100.0, rec.Confidence)
	assert.False(t, rec.ReviewNeeded)
}

func TestSmartScan_GoodImageGoesCheapFirst(t *testing.T) {
	cfg := testConfig(t)
	svc := New(cfg, WithProviders(map[string]extract.Provider{
		registry.ProviderGemini: &fakeProvider{id: registry.ProviderGemini, doc: completeDoc()},
	}))

	res, err := svc.SmartScan(context.Background(), []byte("img"), 95, "")
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, registry.ProviderGemini, res.Provider)
	assert.False(t, res.FallbackUsed)
	assert.Equal(t, registry.ProviderGemini, res.ChainAttempted[0])
}

func TestSmartScan_PreferredProviderFirst(t *testing.T) {
	cfg := testConfig(t)
	svc := New(cfg, WithProviders(map[string]extract.Provider{
		registry.ProviderClaude: &fakeProvider{id: registry.ProviderClaude, doc: completeDoc()},
	}))

	res, err := svc.SmartScan(context.Background(), []byte("img"), 95, registry.ProviderClaude)
	require.NoError(t, err)

	assert.Equal(t, registry.ProviderClaude, res.Provider)
	assert.False(t, res.FallbackUsed)
}

func TestSmartScan_DownProviderExcludedAfterFailures(t *testing.T) {
	cfg := testConfig(t)
	tracker := registry.NewTracker()
	svc := New(cfg,
		WithTracker(tracker),
		WithProviders(map[string]extract.Provider{
			registry.ProviderClaude:    &fakeProvider{id: registry.ProviderClaude, fail: true},
			registry.ProviderTesseract: &fakeProvider{id: registry.ProviderTesseract, doc: completeDoc()},
		}),
	)

	// Three failing scans drive claude to down.
	for i := 0; i < 3; i++ {
		_, err := svc.SmartScan(context.Background(), []byte("img"), 20, "")
		require.NoError(t, err)
	}
	require.Equal(t, registry.StatusDown, tracker.Status(registry.ProviderClaude))

	res, err := svc.SmartScan(context.Background(), []byte("img"), 20, "")
	require.NoError(t, err)
	assert.NotContains(t, res.ChainAttempted, registry.ProviderClaude)
}

func TestScoreConfidence(t *testing.T) {
	svc := New(testConfig(t))

	score := svc.ScoreConfidence(&model.ExtractionResult{
		Success:   true,
		Documents: []model.ExtractedDocument{completeDoc()},
	})
	assert.Equal(t, 100.0, score.Overall)

	score = svc.ScoreConfidence(&model.ExtractionResult{})
	assert.True(t, score.ReviewNeeded)
}

func TestParseMRZFromText(t *testing.T) {
	svc := New(testConfig(t))

	detected, rec := svc.ParseMRZFromText(
		"P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<\nL898902C36UTO7408122F1204159ZE184226B<<<<<10\n")
	require.True(t, detected)
	assert.Equal(t, "ERIKSSON", rec.LastName)

	detected, rec = svc.ParseMRZFromText("nothing here")
	assert.False(t, detected)
	assert.Nil(t, rec)
}

func TestValidateTCKimlik(t *testing.T) {
	svc := New(testConfig(t))

	assert.True(t, svc.ValidateTCKimlik("10000000146").Valid)
	assert.False(t, svc.ValidateTCKimlik("10000000147").Valid)
}

func TestProviderIntrospection(t *testing.T) {
	svc := New(testConfig(t))

	providers := svc.ListProviders()
	require.Len(t, providers, 4)
	assert.Equal(t, registry.ProviderClaude, providers[0].ID)

	assert.InDelta(t, 0.015, svc.EstimateScanCost(registry.ProviderClaude), 1e-9)
	assert.Zero(t, svc.EstimateScanCost(registry.ProviderTesseract))
	assert.Zero(t, svc.EstimateScanCost("unknown"))

	assert.Empty(t, svc.ProviderStats())
}

func TestScan_AssessesThenRoutes(t *testing.T) {
	cfg := testConfig(t)
	svc := New(cfg, WithProviders(map[string]extract.Provider{
		registry.ProviderClaude:    &fakeProvider{id: registry.ProviderClaude, doc: completeDoc()},
		registry.ProviderGPT4o:     &fakeProvider{id: registry.ProviderGPT4o, doc: completeDoc()},
		registry.ProviderGemini:    &fakeProvider{id: registry.ProviderGemini, doc: completeDoc()},
		registry.ProviderTesseract: &fakeProvider{id: registry.ProviderTesseract, doc: completeDoc()},
	}))

	// Undecodable bytes assess to the neutral score and route balanced,
	// which leads with gpt4o.
	res, err := svc.Scan(context.Background(), []byte("not an image"))
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, registry.ProviderGPT4o, res.Provider)
}
