package confidence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otelkit/docscan/internal/model"
)

func completeDocument() model.ExtractedDocument {
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

func resultWith(docs ...model.ExtractedDocument) *model.ExtractionResult {
	return &model.ExtractionResult{Success: true, Documents: docs}
}

func TestScore_CompleteDocumentIsExactly100(t *testing.T) {
	s := NewScorer(DefaultConfig())

	got := s.Score(resultWith(completeDocument()))

	assert.Equal(t, 100.0, got.Overall)
	assert.Equal(t, TierHigh, got.Tier)
	assert.False(t, got.ReviewNeeded)
	require.Len(t, got.Documents, 1)
	assert.Equal(t, 100.0, got.Documents[0].Score)
	assert.Equal(t, 20.0, got.Documents[0].Breakdown["is_valid"])
	assert.Equal(t, 15.0, got.Documents[0].Breakdown["warnings"])
}

func TestScore_EmptyResultIsZero(t *testing.T) {
	s := NewScorer(DefaultConfig())

	got := s.Score(&model.ExtractionResult{})
	assert.Equal(t, 0.0, got.Overall)
	assert.True(t, got.ReviewNeeded)
	assert.Equal(t, TierLow, got.Tier)

	got = s.Score(nil)
	assert.True(t, got.ReviewNeeded)
}

func TestScore_KeyFieldWeights(t *testing.T) {
	s := NewScorer(DefaultConfig())

	doc := completeDocument()
	doc.FirstName = ""
	got := s.Score(resultWith(doc))
	assert.Equal(t, 90.0, got.Overall)

	doc = completeDocument()
	doc.BirthDate = "null"
	got = s.Score(resultWith(doc))
	assert.Equal(t, 92.0, got.Overall)

	doc = completeDocument()
	doc.Nationality = "  "
	got = s.Score(resultWith(doc))
	assert.Equal(t, 95.0, got.Overall)
}

func TestScore_SecondaryFieldWeight(t *testing.T) {
	s := NewScorer(DefaultConfig())

	doc := completeDocument()
	doc.Gender = ""
	got := s.Score(resultWith(doc))
	// 100 - 15/4, rounded to one decimal.
	assert.Equal(t, 96.3, got.Overall)
}

func TestScore_WarningBudget(t *testing.T) {
	s := NewScorer(DefaultConfig())

	doc := completeDocument()
	doc.Warnings = []string{"a", "b"}
	got := s.Score(resultWith(doc))
	assert.Equal(t, 93.0, got.Overall)

	doc.Warnings = []string{"a", "b", "c"}
	got = s.Score(resultWith(doc))
	assert.Equal(t, 85.0, got.Overall)
}

func TestScore_OverallIsMeanOfDocuments(t *testing.T) {
	s := NewScorer(DefaultConfig())

	full := completeDocument()
	empty := model.ExtractedDocument{}
	got := s.Score(resultWith(full, empty))

	// An empty document still earns the zero-warnings budget.
	require.Len(t, got.Documents, 2)
	assert.Equal(t, 100.0, got.Documents[0].Score)
	assert.Equal(t, 15.0, got.Documents[1].Score)
	assert.Equal(t, 57.5, got.Overall)
	assert.True(t, got.ReviewNeeded)
	assert.Equal(t, TierLow, got.Tier)
}

func TestScore_TierBoundaries(t *testing.T) {
	s := NewScorer(DefaultConfig())

	// Exactly 85: complete document minus the full 15-point warning budget.
	doc := completeDocument()
	doc.Warnings = []string{"a", "b", "c"}
	got := s.Score(resultWith(doc))
	assert.Equal(t, 85.0, got.Overall)
	assert.Equal(t, TierHigh, got.Tier)
	assert.False(t, got.ReviewNeeded)

	// Exactly 70: complete document minus validity (20) and first name (10).
	doc = completeDocument()
	doc.Valid = false
	doc.FirstName = ""
	got = s.Score(resultWith(doc))
	assert.Equal(t, 70.0, got.Overall)
	assert.Equal(t, TierMedium, got.Tier)
	assert.False(t, got.ReviewNeeded)

	// Below 70 tips into low tier and review.
	doc.Nationality = ""
	got = s.Score(resultWith(doc))
	assert.Equal(t, 65.0, got.Overall)
	assert.Equal(t, TierLow, got.Tier)
	assert.True(t, got.ReviewNeeded)
}

func TestScore_CustomThresholds(t *testing.T) {
	s := NewScorer(Config{ReviewThreshold: 99, HighTier: 99, MediumTier: 50})

	got := s.Score(resultWith(completeDocument()))
	assert.Equal(t, TierHigh, got.Tier)
	assert.False(t, got.ReviewNeeded)

	doc := completeDocument()
	doc.FirstName = ""
	got = s.Score(resultWith(doc))
	assert.Equal(t, TierMedium, got.Tier)
	assert.True(t, got.ReviewNeeded)
}
