package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otelkit/docscan/internal/model"
)

func boolPtr(b bool) *bool { return &b }

func sampleRecord(provider string, success, fallback bool) *model.ScanRecord {
	return &model.ScanRecord{
		ID:             uuid.NewString(),
		Provider:       provider,
		Success:        success,
		FallbackUsed:   fallback,
		ChainAttempted: []string{"gemini", "gpt4o", "tesseract"},
		QualityScore:   85,
		Confidence:     92.5,
		ReviewNeeded:   !success,
		CostUSD:        0.002,
		ResponseTime:   1200 * time.Millisecond,
		Result: &model.ExtractionResult{
			Success:   success,
			Provider:  provider,
			Documents: []model.ExtractedDocument{{Valid: true, Type: model.DocTypePassport}},
		},
	}
}

// storesUnderTest runs the same suite against both backends.
func storesUnderTest(t *testing.T) map[string]Store {
	t.Helper()

	sqlite, err := NewSQLite(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	require.NoError(t, sqlite.Migrate(context.Background()))
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Store{
		"sqlite": sqlite,
		"memory": NewMemory(),
	}
}

func TestSaveAndGetScan(t *testing.T) {
	for name, s := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			rec := sampleRecord("gemini", true, false)
			require.NoError(t, s.SaveScan(ctx, rec))

			got, err := s.GetScan(ctx, rec.ID)
			require.NoError(t, err)
			assert.Equal(t, rec.ID, got.ID)
			assert.Equal(t, "gemini", got.Provider)
			assert.True(t, got.Success)
			assert.Equal(t, []string{"gemini", "gpt4o", "tesseract"}, got.ChainAttempted)
			assert.Equal(t, 85, got.QualityScore)
			assert.InDelta(t, 92.5, got.Confidence, 0.001)
			assert.Equal(t, 1200*time.Millisecond, got.ResponseTime)
			require.NotNil(t, got.Result)
			require.Len(t, got.Result.Documents, 1)
			assert.Equal(t, model.DocTypePassport, got.Result.Documents[0].Type)
		})
	}
}

func TestGetScan_NotFound(t *testing.T) {
	for name, s := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.GetScan(context.Background(), "nope")
			assert.Error(t, err)
		})
	}
}

func TestSaveScan_RequiresID(t *testing.T) {
	for name, s := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			err := s.SaveScan(context.Background(), &model.ScanRecord{})
			assert.Error(t, err)
		})
	}
}

func TestListScans_Filters(t *testing.T) {
	for name, s := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.SaveScan(ctx, sampleRecord("gemini", true, false)))
			require.NoError(t, s.SaveScan(ctx, sampleRecord("gemini", false, false)))
			require.NoError(t, s.SaveScan(ctx, sampleRecord("tesseract", true, true)))

			all, err := s.ListScans(ctx, ScanFilter{})
			require.NoError(t, err)
			assert.Len(t, all, 3)

			gemini, err := s.ListScans(ctx, ScanFilter{Provider: "gemini"})
			require.NoError(t, err)
			assert.Len(t, gemini, 2)

			failed, err := s.ListScans(ctx, ScanFilter{Success: boolPtr(false)})
			require.NoError(t, err)
			require.Len(t, failed, 1)
			assert.Equal(t, "gemini", failed[0].Provider)

			review, err := s.ListScans(ctx, ScanFilter{ReviewNeeded: boolPtr(true)})
			require.NoError(t, err)
			assert.Len(t, review, 1)

			limited, err := s.ListScans(ctx, ScanFilter{Limit: 2})
			require.NoError(t, err)
			assert.Len(t, limited, 2)
		})
	}
}

func TestListScans_NewestFirst(t *testing.T) {
	for name, s := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			old := sampleRecord("gemini", true, false)
			old.CreatedAt = time.Now().UTC().Add(-time.Hour)
			newer := sampleRecord("gpt4o", true, false)
			newer.CreatedAt = time.Now().UTC()

			require.NoError(t, s.SaveScan(ctx, old))
			require.NoError(t, s.SaveScan(ctx, newer))

			got, err := s.ListScans(ctx, ScanFilter{})
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, newer.ID, got[0].ID)
		})
	}
}

func TestTotals(t *testing.T) {
	for name, s := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.SaveScan(ctx, sampleRecord("gemini", true, false)))
			require.NoError(t, s.SaveScan(ctx, sampleRecord("tesseract", true, true)))
			require.NoError(t, s.SaveScan(ctx, sampleRecord("gemini", false, false)))

			totals, err := s.Totals(ctx)
			require.NoError(t, err)
			assert.Equal(t, 3, totals.Scans)
			assert.Equal(t, 2, totals.Successes)
			assert.Equal(t, 1, totals.Fallbacks)
			assert.Equal(t, 1, totals.ReviewNeeded)
			assert.InDelta(t, 0.006, totals.TotalCostUSD, 1e-9)
		})
	}
}
