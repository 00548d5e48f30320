// Package confidence turns a completed extraction result into a deterministic
// 0-100 completeness score per document and overall, deciding whether the
// record needs a human to look at it. Pure functions, no I/O.
package confidence

import (
	"math"
	"strings"

	"github.com/otelkit/docscan/internal/model"
)

// Tier classifies an overall score.
type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

// Point weights per scoring component. Key fields carry 50 points, secondary
// fields 15, validity 20 and the warning budget 15, summing to 100.
const (
	validityPoints  = 20.0
	secondaryPoints = 15.0 / 4
	warningsNone    = 15.0
	warningsFew     = 8.0
)

var keyFieldWeights = []struct {
	name   string
	weight float64
	value  func(*model.ExtractedDocument) string
}{
	{"first_name", 10, func(d *model.ExtractedDocument) string { return d.FirstName }},
	{"last_name", 10, func(d *model.ExtractedDocument) string { return d.LastName }},
	{"national_id", 10, func(d *model.ExtractedDocument) string { return d.NationalID }},
	{"birth_date", 8, func(d *model.ExtractedDocument) string { return d.BirthDate }},
	{"document_type", 7, func(d *model.ExtractedDocument) string { return string(d.Type) }},
	{"nationality", 5, func(d *model.ExtractedDocument) string { return d.Nationality }},
}

var secondaryFields = []struct {
	name  string
	value func(*model.ExtractedDocument) string
}{
	{"gender", func(d *model.ExtractedDocument) string { return d.Gender }},
	{"expiry_date", func(d *model.ExtractedDocument) string { return d.ExpiryDate }},
	{"document_number", func(d *model.ExtractedDocument) string { return d.DocumentNumber }},
	{"birth_place", func(d *model.ExtractedDocument) string { return d.BirthPlace }},
}

// Config holds the tunable score thresholds.
type Config struct {
	ReviewThreshold float64 `yaml:"review_threshold" mapstructure:"review_threshold"`
	HighTier        float64 `yaml:"high_tier" mapstructure:"high_tier"`
	MediumTier      float64 `yaml:"medium_tier" mapstructure:"medium_tier"`
}

// DefaultConfig returns the thresholds the scoring weights were calibrated
// against.
func DefaultConfig() Config {
	return Config{ReviewThreshold: 70, HighTier: 85, MediumTier: 70}
}

// DocumentScore is the field-by-field point allocation for one document.
type DocumentScore struct {
	Score     float64            `json:"score"`
	Breakdown map[string]float64 `json:"breakdown"`
}

// Score is the derived confidence over a whole extraction result.
type Score struct {
	Overall      float64         `json:"overall"`
	Documents    []DocumentScore `json:"documents"`
	ReviewNeeded bool            `json:"review_needed"`
	Tier         Tier            `json:"tier"`
}

// Scorer applies the configured thresholds.
type Scorer struct {
	cfg Config
}

// NewScorer creates a Scorer. Zero thresholds fall back to the defaults.
func NewScorer(cfg Config) *Scorer {
	def := DefaultConfig()
	if cfg.ReviewThreshold <= 0 {
		cfg.ReviewThreshold = def.ReviewThreshold
	}
	if cfg.HighTier <= 0 {
		cfg.HighTier = def.HighTier
	}
	if cfg.MediumTier <= 0 {
		cfg.MediumTier = def.MediumTier
	}
	return &Scorer{cfg: cfg}
}

// Score rates an extraction result. An empty result scores 0 and always needs
// review.
func (s *Scorer) Score(res *model.ExtractionResult) Score {
	if res == nil || len(res.Documents) == 0 {
		return Score{Overall: 0, ReviewNeeded: true, Tier: TierLow}
	}

	out := Score{Documents: make([]DocumentScore, 0, len(res.Documents))}
	var sum float64
	for i := range res.Documents {
		ds := scoreDocument(&res.Documents[i])
		sum += ds.Score
		out.Documents = append(out.Documents, ds)
	}

	out.Overall = math.Round(sum/float64(len(res.Documents))*10) / 10
	out.ReviewNeeded = out.Overall < s.cfg.ReviewThreshold
	switch {
	case out.Overall >= s.cfg.HighTier:
		out.Tier = TierHigh
	case out.Overall >= s.cfg.MediumTier:
		out.Tier = TierMedium
	default:
		out.Tier = TierLow
	}
	return out
}

func scoreDocument(d *model.ExtractedDocument) DocumentScore {
	breakdown := make(map[string]float64)

	if d.Valid {
		breakdown["is_valid"] = validityPoints
	}
	for _, f := range keyFieldWeights {
		if fieldPresent(f.value(d)) {
			breakdown[f.name] = f.weight
		}
	}
	for _, f := range secondaryFields {
		if fieldPresent(f.value(d)) {
			breakdown[f.name] = secondaryPoints
		}
	}
	switch n := len(d.Warnings); {
	case n == 0:
		breakdown["warnings"] = warningsNone
	case n <= 2:
		breakdown["warnings"] = warningsFew
	}

	var total float64
	for _, pts := range breakdown {
		total += pts
	}
	total = math.Min(100, math.Max(0, total))

	return DocumentScore{Score: total, Breakdown: breakdown}
}

func fieldPresent(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && !strings.EqualFold(v, "null")
}
