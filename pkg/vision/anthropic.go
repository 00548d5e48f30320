package vision

import (
	"context"
	"encoding/base64"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
)

const defaultClaudeModel = "claude-sonnet-4-5-20250929"

// AnthropicClient extracts documents via the Claude Messages API.
type AnthropicClient struct {
	client sdk.Client
	model  string
}

// NewAnthropicClient creates a Claude-backed vision client. If model is
// empty, the default Sonnet model is used.
func NewAnthropicClient(apiKey, model string) *AnthropicClient {
	if model == "" {
		model = defaultClaudeModel
	}
	return &AnthropicClient{
		client: sdk.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (c *AnthropicClient) Name() string { return "anthropic" }

// ExtractDocument sends the image plus the extraction prompt and returns the
// raw text response.
func (c *AnthropicClient) ExtractDocument(ctx context.Context, req Request) (*Response, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2048
	}

	encoded := base64.StdEncoding.EncodeToString(req.Image)

	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(model),
		MaxTokens: maxTokens,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(
				sdk.NewImageBlockBase64(sniffMIME(req), encoded),
				sdk.NewTextBlock(DocumentPrompt),
			),
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "vision: anthropic extract")
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return nil, eris.New("vision: anthropic returned no text content")
	}

	return &Response{
		RawJSON: sb.String(),
		Usage: Usage{
			InputTokens:  msg.Usage.InputTokens,
			OutputTokens: msg.Usage.OutputTokens,
		},
	}, nil
}
