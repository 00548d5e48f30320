// Package vision wraps the remote vision-model APIs used for identity
// document extraction. Each client takes an image and returns the model's raw
// structured response; decoding and normalization happen at the orchestrator
// boundary, not here.
package vision

import (
	"context"
	"net/http"
)

// Request is one document-extraction call.
type Request struct {
	Image     []byte
	MIMEType  string // sniffed from Image when empty
	Model     string
	MaxTokens int64
}

// Usage tracks token consumption for cost attribution. Zero for providers
// that do not report it.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

// Response carries the model's raw output. RawJSON is whatever text the model
// produced, ideally the requested JSON document envelope, possibly wrapped in
// markdown fences.
type Response struct {
	RawJSON string
	Usage   Usage
}

// Client is a vision-model backend capable of document extraction.
type Client interface {
	Name() string
	ExtractDocument(ctx context.Context, req Request) (*Response, error)
}

// DocumentPrompt instructs the model to return the document envelope the
// orchestrator normalizes. Field names must match the wire contract exactly.
const DocumentPrompt = `You are an identity-document data extraction system for hotel guest registration.
Analyze the photographed document(s) and return STRICT JSON, no prose, no markdown fences:
{
  "documents": [
    {
      "is_valid": boolean,
      "document_type": "national_id" | "passport" | "drivers_license" | "legacy_id" | "other",
      "first_name": string,
      "last_name": string,
      "national_id": string,
      "document_number": string,
      "birth_date": "YYYY-MM-DD",
      "birth_place": string,
      "gender": "M" | "F" | "",
      "nationality": string,
      "expiry_date": "YYYY-MM-DD",
      "issue_date": "YYYY-MM-DD",
      "father_name": string,
      "mother_name": string,
      "address": string,
      "warnings": [string],
      "raw_text": string
    }
  ]
}
Use "" for fields you cannot read and add a warning explaining why.
If the image contains no identity document, return one document with "is_valid": false and a warning.`

// sniffMIME resolves the request's image MIME type.
func sniffMIME(req Request) string {
	if req.MIMEType != "" {
		return req.MIMEType
	}
	return http.DetectContentType(req.Image)
}
