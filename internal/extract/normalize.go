package extract

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/otelkit/docscan/internal/model"
)

// Normalize decodes a provider's raw reply into documents. Vision models
// return either the documents envelope they were prompted for or, when they
// drift, a single bare document object; both shapes are accepted. Markdown
// code fences around the JSON are stripped first.
func Normalize(raw string) ([]model.ExtractedDocument, error) {
	cleaned := stripFences(raw)
	if cleaned == "" {
		return nil, eris.New("extract: empty provider response")
	}

	var env struct {
		Documents []model.ExtractedDocument `json:"documents"`
	}
	if err := json.Unmarshal([]byte(cleaned), &env); err == nil && env.Documents != nil {
		return normalizeDocs(env.Documents), nil
	}

	var doc model.ExtractedDocument
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return nil, eris.Wrap(err, "extract: provider response is not valid JSON")
	}
	return normalizeDocs([]model.ExtractedDocument{doc}), nil
}

func normalizeDocs(docs []model.ExtractedDocument) []model.ExtractedDocument {
	for i := range docs {
		d := &docs[i]
		d.Type = model.NormalizeType(string(d.Type))
		d.FirstName = strings.TrimSpace(d.FirstName)
		d.LastName = strings.TrimSpace(d.LastName)
		d.NationalID = strings.TrimSpace(d.NationalID)
		d.DocumentNumber = strings.TrimSpace(d.DocumentNumber)
		d.Gender = strings.ToUpper(strings.TrimSpace(d.Gender))
	}
	return docs
}

// stripFences removes a surrounding markdown code fence, with or without a
// language tag, that models sometimes wrap JSON in despite instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.Index(s, "\n"); i >= 0 {
		// Drop the language tag line ("json").
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
