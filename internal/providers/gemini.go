package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"google.golang.org/genai"
)

// Gemini implements the Completer interface for Google's Gemini API.
type Gemini struct {
	model  string
	client *genai.Client
}

// NewGemini creates a new Gemini provider.
func NewGemini(model string) (*Gemini, error) {
	key := os.Getenv("GEMINI_API_KEY")
	if key == "" {
		key = os.Getenv("GOOGLE_API_KEY")
	}
	if key == "" {
		return nil, &authError{message: "GEMINI_API_KEY or GOOGLE_API_KEY environment variable is not set"}
	}
	return newGemini(context.Background(), model, key, os.Getenv("LOGCHANGE_GEMINI_BASE_URL"), newHTTPClient(requestTimeout))
}

func newGemini(ctx context.Context, model, apiKey, baseURL string, hc *http.Client) (*Gemini, error) {
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: hc,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}
	return &Gemini{model: model, client: client}, nil
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokensOrDefault(req.MaxTokens)),
	}
	if req.SystemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}
	if req.Temperature > 0 {
		config.Temperature = genai.Ptr(float32(req.Temperature))
	}

	var resp CompletionResponse
	err := retryWithBackoff(ctx, defaultRetries, func() error {
		start := time.Now()
		result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(req.UserPrompt), config)
		if err != nil {
			return classifyGeminiError(err)
		}
		text := result.Text()
		if text == "" {
			return fmt.Errorf("empty text content in API response")
		}
		resp = CompletionResponse{Content: text}
		if result.UsageMetadata != nil {
			resp.TokensUsed = int(result.UsageMetadata.TotalTokenCount)
		}
		logCompletion(g.Name(), g.model, resp.TokensUsed, time.Since(start))
		return nil
	})
	return resp, err
}

func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return statusError(apiErr.Code, apiErr.Message)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return statusError(apiErrPtr.Code, apiErrPtr.Message)
	}
	return fmt.Errorf("sending request: %w", err)
}
