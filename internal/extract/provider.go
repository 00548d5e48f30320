// Package extract runs an image through an ordered provider chain until one
// provider returns usable documents, folding every attempt into the health
// tracker and pricing the winning call.
package extract

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/otelkit/docscan/internal/localocr"
	"github.com/otelkit/docscan/internal/model"
	"github.com/otelkit/docscan/pkg/vision"
)

// RawResponse is one provider's normalized output: the documents plus the raw
// JSON and token usage for journaling and pricing.
type RawResponse struct {
	JSON      string
	Documents []model.ExtractedDocument
	Usage     vision.Usage
}

// Provider is one executable extraction backend.
type Provider interface {
	ID() string
	Extract(ctx context.Context, image []byte) (*RawResponse, error)
}

// VisionProvider adapts a cloud vision client to the Provider interface,
// normalizing the model's free-form JSON reply into documents.
type VisionProvider struct {
	id     string
	client vision.Client
	model  string
}

// NewVisionProvider wraps a vision client under the given catalog id. The
// model override is passed through to the client on every call.
func NewVisionProvider(id string, client vision.Client, model string) *VisionProvider {
	return &VisionProvider{id: id, client: client, model: model}
}

func (p *VisionProvider) ID() string { return p.id }

func (p *VisionProvider) Extract(ctx context.Context, image []byte) (*RawResponse, error) {
	resp, err := p.client.ExtractDocument(ctx, vision.Request{Image: image, Model: p.model})
	if err != nil {
		return nil, err
	}

	docs, err := Normalize(resp.RawJSON)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, eris.Errorf("extract: provider %s returned no documents", p.id)
	}

	return &RawResponse{JSON: resp.RawJSON, Documents: docs, Usage: resp.Usage}, nil
}

// LocalProvider adapts the tesseract OCR pipeline to the Provider interface.
// It never reports token usage; the local engine is priced flat at zero.
type LocalProvider struct {
	id      string
	adapter *localocr.Adapter
}

// NewLocalProvider wraps a local OCR adapter under the given catalog id.
func NewLocalProvider(id string, adapter *localocr.Adapter) *LocalProvider {
	return &LocalProvider{id: id, adapter: adapter}
}

func (p *LocalProvider) ID() string { return p.id }

func (p *LocalProvider) Extract(ctx context.Context, image []byte) (*RawResponse, error) {
	doc, err := p.adapter.Extract(ctx, image)
	if err != nil {
		return nil, err
	}
	return &RawResponse{Documents: []model.ExtractedDocument{*doc}}, nil
}
