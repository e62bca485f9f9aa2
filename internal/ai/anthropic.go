package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicModel = "claude-sonnet-4-5"

type anthropicClient struct {
	client   anthropic.Client
	settings Settings
}

func NewAnthropicClient(s Settings, opts ...option.RequestOption) Client {
	if s.Model == "" {
		s.Model = defaultAnthropicModel
	}
	if s.MaxTokens <= 0 {
		s.MaxTokens = 2000
	}
	base := []option.RequestOption{option.WithAPIKey(s.APIKey)}
	if s.BaseURL != "" {
		base = append(base, option.WithBaseURL(s.BaseURL))
	}
	if s.Timeout > 0 {
		base = append(base, option.WithRequestTimeout(s.Timeout))
	}
	return &anthropicClient{
		client:   anthropic.NewClient(append(base, opts...)...),
		settings: s,
	}
}

// Complete sends temperature only; the messages API rejects requests that
// set both temperature and top_p on current models.
func (c *anthropicClient) Complete(ctx context.Context, in Request) (string, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.settings.Model),
		MaxTokens:   int64(c.settings.MaxTokens),
		Temperature: anthropic.Float(c.settings.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(in.User)),
		},
	}
	if in.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: in.System}}
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("no text content returned from anthropic API")
	}
	return b.String(), nil
}
