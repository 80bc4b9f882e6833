package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// OpenAI implements the Completer interface for OpenAI's API and any server
// speaking the same chat completions protocol.
type OpenAI struct {
	name   string
	model  string
	client openai.Client
}

// NewOpenAI creates a new OpenAI provider.
func NewOpenAI(model string) (*OpenAI, error) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return nil, &authError{message: "OPENAI_API_KEY environment variable is not set"}
	}
	return newOpenAICompatible("openai", model, key, os.Getenv("LOGCHANGE_OPENAI_BASE_URL"), newHTTPClient(requestTimeout)), nil
}

func newOpenAICompatible(name, model, apiKey, baseURL string, hc *http.Client) *OpenAI {
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
	return &OpenAI{
		name:   name,
		model:  model,
		client: openai.NewClient(opts...),
	}
}

func (o *OpenAI) Name() string { return o.name }

func (o *OpenAI) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.SystemPrompt),
			openai.UserMessage(req.UserPrompt),
		},
		MaxTokens: openai.Int(int64(maxTokensOrDefault(req.MaxTokens))),
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}

	var resp CompletionResponse
	err := retryWithBackoff(ctx, defaultRetries, func() error {
		start := time.Now()
		completion, err := o.client.Chat.Completions.New(ctx, params)
		if err != nil {
			return classifyOpenAIError(err)
		}
		if len(completion.Choices) == 0 {
			return fmt.Errorf("no choices in response")
		}
		content := completion.Choices[0].Message.Content
		if content == "" {
			return fmt.Errorf("empty text content in API response")
		}
		resp = CompletionResponse{
			Content:    content,
			TokensUsed: int(completion.Usage.TotalTokens),
		}
		logCompletion(o.name, o.model, resp.TokensUsed, time.Since(start))
		return nil
	})
	return resp, err
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return statusError(apiErr.StatusCode, apiErr.Message)
	}
	return fmt.Errorf("sending request: %w", err)
}
