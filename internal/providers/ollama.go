package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const defaultOllamaURL = "http://localhost:11434"

// Ollama implements the Completer interface for Ollama and LM Studio through
// their OpenAI-compatible endpoint.
type Ollama struct {
	*OpenAI
	host string
	hc   *http.Client
}

// NewOllama creates a new Ollama provider. No API key is required by default.
func NewOllama(model string) (*Ollama, error) {
	// Optional API key for servers that require it (e.g., LM Studio)
	apiKey := os.Getenv("LOGCHANGE_OLLAMA_API_KEY")
	return newOllama(model, os.Getenv("OLLAMA_HOST"), apiKey, newHTTPClient(300*time.Second)), nil
}

func newOllama(model, host, apiKey string, hc *http.Client) *Ollama {
	host = normalizeOllamaHost(host)
	if hc == nil {
		hc = http.DefaultClient
	}
	if apiKey == "" {
		// The OpenAI client insists on a key; Ollama ignores it.
		apiKey = "ollama"
	}
	return &Ollama{
		OpenAI: newOpenAICompatible("ollama", model, apiKey, host+"/v1/", hc),
		host:   host,
		hc:     hc,
	}
}

// normalizeOllamaHost strips trailing /, /v1, /v1/chat/completions.
func normalizeOllamaHost(host string) string {
	if host == "" {
		host = defaultOllamaURL
	}
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	host = strings.TrimRight(host, "/")
	host = strings.TrimSuffix(host, "/v1/chat/completions")
	host = strings.TrimSuffix(host, "/v1")
	return host
}

// ListModels returns the names of the models installed on the server.
func (o *Ollama) ListModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.host+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	resp, err := o.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("contacting ollama at %s: %w", o.host, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode, string(body))
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid JSON from %s/api/tags", o.host)
	}

	var names []string
	gjson.GetBytes(body, "models").ForEach(func(_, m gjson.Result) bool {
		if name := m.Get("name").String(); name != "" {
			names = append(names, name)
		}
		return true
	})
	return names, nil
}
