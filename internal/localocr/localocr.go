// Package localocr wraps the local tesseract engine as the zero-cost
// terminal fallback of the extraction chain. Raw OCR text is first checked
// for an embedded machine-readable zone; when none is present, labeled-field
// heuristics tuned for Turkish identity documents take over.
package localocr

import (
	"context"

	"github.com/otiai10/gosseract/v2"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/otelkit/docscan/internal/model"
	"github.com/otelkit/docscan/internal/mrz"
)

// Engine produces raw text from an image. Wrapping tesseract behind an
// interface keeps the adapter testable without a tesseract install.
type Engine interface {
	Text(ctx context.Context, image []byte) (string, error)
}

// TesseractEngine runs OCR through gosseract.
type TesseractEngine struct {
	languages []string
}

// NewTesseractEngine creates an engine for the given tesseract language
// codes, defaulting to English plus Turkish.
func NewTesseractEngine(languages ...string) *TesseractEngine {
	if len(languages) == 0 {
		languages = []string{"eng", "tur"}
	}
	return &TesseractEngine{languages: languages}
}

// Text extracts raw text from image bytes. A tesseract client is created per
// call; gosseract clients are not safe for concurrent reuse.
func (e *TesseractEngine) Text(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", eris.Wrap(err, "localocr: context done before OCR")
	}

	client := gosseract.NewClient()
	defer client.Close() //nolint:errcheck

	if err := client.SetLanguage(e.languages...); err != nil {
		return "", eris.Wrap(err, "localocr: set languages")
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", eris.Wrap(err, "localocr: set image")
	}

	text, err := client.Text()
	if err != nil {
		return "", eris.Wrap(err, "localocr: tesseract extraction")
	}
	return text, nil
}

// Adapter turns raw OCR text into a structured document.
type Adapter struct {
	engine Engine
}

// NewAdapter creates an Adapter. A nil engine gets the default tesseract
// engine.
func NewAdapter(engine Engine) *Adapter {
	if engine == nil {
		engine = NewTesseractEngine()
	}
	return &Adapter{engine: engine}
}

// Extract runs OCR and structures the result. The error return covers engine
// failure only; an unreadable but decodable document comes back as a document
// with warnings.
func (a *Adapter) Extract(ctx context.Context, image []byte) (*model.ExtractedDocument, error) {
	text, err := a.engine.Text(ctx, image)
	if err != nil {
		return nil, err
	}
	doc := a.Structure(text)
	return doc, nil
}

// Structure builds a document from raw OCR text: MRZ first, labeled-field
// heuristics second.
func (a *Adapter) Structure(text string) *model.ExtractedDocument {
	if rec := mrz.DetectAndParse(text); rec != nil {
		zap.L().Debug("localocr: MRZ detected",
			zap.String("format", string(rec.Format)),
			zap.Bool("all_checks_passed", rec.AllChecksPassed),
		)
		return documentFromMRZ(rec, text)
	}
	return documentFromHeuristics(text)
}

// documentFromMRZ maps a parsed machine-readable zone onto the document
// contract. Checksum failures keep the document but mark it invalid and warn.
func documentFromMRZ(rec *mrz.Record, rawText string) *model.ExtractedDocument {
	doc := &model.ExtractedDocument{
		Valid:          rec.AllChecksPassed,
		FirstName:      rec.FirstName,
		LastName:       rec.LastName,
		DocumentNumber: rec.DocumentNumber,
		BirthDate:      rec.BirthDate,
		Gender:         rec.Gender,
		Nationality:    rec.Nationality,
		ExpiryDate:     rec.ExpiryDate,
		RawText:        rawText,
		MRZ:            rec,
	}
	switch rec.Format {
	case mrz.FormatTD3:
		doc.Type = model.DocTypePassport
	case mrz.FormatTD1:
		doc.Type = model.DocTypeNationalID
		// Turkish ID cards carry the TC Kimlik number in the personal-number
		// field; other issuers use it differently, so only digits qualify.
		if isAllDigits(rec.PersonalNumber) && len(rec.PersonalNumber) == 11 {
			doc.NationalID = rec.PersonalNumber
		}
	}
	if !rec.AllChecksPassed {
		doc.Warnings = append(doc.Warnings, "MRZ check digit validation failed; fields may contain OCR errors")
	}
	return doc
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
