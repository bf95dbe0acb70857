package provider

import (
	"context"
	"errors"
	"os"
	"time"

	mock_provider "github.com/marketpulse/finrag/provider/mock"
	openai_provider "github.com/marketpulse/finrag/provider/openai"
)

// Client names the supported LLM providers.
type Client string

const (
	OpenAI Client = "openai"
	Mock   Client = "mock"
)

// Provider is the text-completion capability the pipeline depends on.
// Deterministic providers produce the same output for the same prompt and
// signal callers to use offline verification.
type Provider interface {
	Complete(ctx context.Context, prompt, system string) (string, error)
	Deterministic() bool
}

// Options carries provider construction settings.
type Options struct {
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// New creates a provider for the given client name. The mock provider is
// the default for offline and test runs.
func New(client Client, opts Options) (Provider, error) {
	switch client {
	case OpenAI:
		apiKey := opts.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		if apiKey == "" {
			return nil, errors.New("OPENAI_API_KEY not set")
		}
		model := opts.Model
		if model == "" {
			model = "gpt-4o-mini"
		}
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		return openai_provider.NewClient(apiKey, model, opts.Temperature, opts.MaxTokens, timeout), nil
	case Mock, "":
		return mock_provider.New(), nil
	default:
		return nil, errors.New("unsupported LLM provider")
	}
}
