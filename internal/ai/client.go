// Package ai talks to the chat-completion providers used for field extraction.
package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-job-harvester/internal/config"
)

// Request is one system + user exchange.
type Request struct {
	System string
	User   string
}

// Client is the interface for AI providers
type Client interface {
	// Complete returns the raw text of the model's reply.
	Complete(ctx context.Context, req Request) (string, error)
}

// Settings carries the sampling parameters shared by all providers.
type Settings struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	TopP        float64
	MaxTokens   int
	Timeout     time.Duration
}

// New builds the provider named in cfg.
func New(cfg config.LLMConfig, timeout time.Duration) (Client, error) {
	s := Settings{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		TopP:        cfg.TopP,
		MaxTokens:   cfg.MaxTokens,
		Timeout:     timeout,
	}
	switch cfg.Provider {
	case "", "openai":
		return NewOpenAIClient(s), nil
	case "anthropic":
		return NewAnthropicClient(s), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// CleanMarkdownJSON removes backticks and "json" prefix if the AI model tries to be helpful
func CleanMarkdownJSON(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}
	return strings.TrimSpace(content)
}
