package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func anthropicServer(t *testing.T, status *[]int) *httptest.Server {
	t.Helper()
	attempt := 0
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Key") != "test-key" {
			t.Error("Missing or wrong x-api-key header")
		}
		if r.URL.Path != "/v1/messages" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		if status != nil && attempt < len(*status) {
			code := (*status)[attempt]
			attempt++
			w.WriteHeader(code)
			w.Write([]byte(`{"type":"error","error":{"type":"api_error","message":"nope"}}`))
			return
		}
		var req struct {
			System []struct {
				Text string `json:"text"`
			} `json:"system"`
			MaxTokens int `json:"max_tokens"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.System) != 1 || req.System[0].Text != "sys" {
			t.Errorf("system = %+v", req.System)
		}
		w.Write([]byte(`{
  "id": "msg_1", "type": "message", "role": "assistant", "model": "claude-sonnet-4-5",
  "content": [{"type": "text", "text": "fix: handle nil"}],
  "stop_reason": "end_turn",
  "usage": {"input_tokens": 12, "output_tokens": 8}
}`))
	}))
}

func TestAnthropic_Complete(t *testing.T) {
	server := anthropicServer(t, nil)
	defer server.Close()

	a := newAnthropic("claude-sonnet-4-5", "test-key", server.URL, server.Client())
	resp, err := a.Complete(context.Background(), CompletionRequest{
		SystemPrompt: "sys",
		UserPrompt:   "user",
		MaxTokens:    50,
	})
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if resp.Content != "fix: handle nil" {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.TokensUsed != 20 {
		t.Errorf("TokensUsed = %d, want 20", resp.TokensUsed)
	}
}

func TestAnthropic_ServerErrorRetried(t *testing.T) {
	fastBackoff(t)
	statuses := []int{500, 529}
	server := anthropicServer(t, &statuses)
	defer server.Close()

	a := newAnthropic("claude-sonnet-4-5", "test-key", server.URL, server.Client())
	resp, err := a.Complete(context.Background(), CompletionRequest{SystemPrompt: "sys", UserPrompt: "u"})
	if err != nil {
		t.Fatalf("Complete error after retries: %v", err)
	}
	if resp.Content != "fix: handle nil" {
		t.Errorf("Content = %q", resp.Content)
	}
}

func TestAnthropic_AuthError(t *testing.T) {
	statuses := []int{401, 401, 401, 401}
	server := anthropicServer(t, &statuses)
	defer server.Close()

	a := newAnthropic("claude-sonnet-4-5", "test-key", server.URL, server.Client())
	_, err := a.Complete(context.Background(), CompletionRequest{UserPrompt: "u"})
	if !IsAuthError(err) {
		t.Errorf("err = %v, want auth error", err)
	}
}
