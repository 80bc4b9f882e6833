package providers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// CompletionRequest contains the data sent to an LLM.
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float64
}

// CompletionResponse contains the text returned by an LLM.
type CompletionResponse struct {
	Content    string
	TokensUsed int
}

// Completer is the provider abstraction interface.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
	Name() string
}

const (
	defaultMaxTokens = 1024
	defaultRetries   = 3
	requestTimeout   = 120 * time.Second
)

// DefaultModels maps each provider to the model used when none is configured.
var DefaultModels = map[string]string{
	"openai":    "gpt-4",
	"anthropic": "claude-sonnet-4-5",
	"gemini":    "gemini-2.5-flash",
	"ollama":    "llama3",
}

// New creates a provider by name.
func New(provider, model string) (Completer, error) {
	if model == "" {
		model = DefaultModels[provider]
	}
	switch provider {
	case "openai":
		return NewOpenAI(model)
	case "anthropic":
		return NewAnthropic(model)
	case "gemini", "google":
		return NewGemini(model)
	case "ollama", "lmstudio":
		return NewOllama(model)
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

func maxTokensOrDefault(n int) int {
	if n <= 0 {
		return defaultMaxTokens
	}
	return n
}

func logCompletion(provider, model string, tokens int, elapsed time.Duration) {
	slog.Debug("completion received", "provider", provider, "model", model, "tokens", tokens, "elapsed", elapsed.Round(time.Millisecond))
}
