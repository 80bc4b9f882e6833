package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Anthropic implements the Completer interface for Anthropic's Messages API.
type Anthropic struct {
	model  string
	client anthropic.Client
}

// NewAnthropic creates a new Anthropic provider.
func NewAnthropic(model string) (*Anthropic, error) {
	key := os.Getenv("ANTHROPIC_API_KEY")
	if key == "" {
		return nil, &authError{message: "ANTHROPIC_API_KEY environment variable is not set"}
	}
	return newAnthropic(model, key, os.Getenv("LOGCHANGE_ANTHROPIC_BASE_URL"), newHTTPClient(requestTimeout)), nil
}

func newAnthropic(model, apiKey, baseURL string, hc *http.Client) *Anthropic {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if hc != nil {
		opts = append(opts, option.WithHTTPClient(hc))
	}
	return &Anthropic{
		model:  model,
		client: anthropic.NewClient(opts...),
	}
}

func (a *Anthropic) Name() string { return "anthropic" }

func (a *Anthropic) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(maxTokensOrDefault(req.MaxTokens)),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.UserPrompt)),
		},
	}
	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemPrompt}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	var resp CompletionResponse
	err := retryWithBackoff(ctx, defaultRetries, func() error {
		start := time.Now()
		msg, err := a.client.Messages.New(ctx, params)
		if err != nil {
			return classifyAnthropicError(err)
		}
		var text strings.Builder
		for _, block := range msg.Content {
			if block.Type == "text" {
				text.WriteString(block.Text)
			}
		}
		if text.Len() == 0 {
			return fmt.Errorf("empty text content in API response")
		}
		resp = CompletionResponse{
			Content:    text.String(),
			TokensUsed: int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		}
		logCompletion(a.Name(), a.model, resp.TokensUsed, time.Since(start))
		return nil
	})
	return resp, err
}

func classifyAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return statusError(apiErr.StatusCode, http.StatusText(apiErr.StatusCode))
	}
	return fmt.Errorf("sending request: %w", err)
}
