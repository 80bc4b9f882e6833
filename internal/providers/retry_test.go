package providers

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func fastBackoff(t *testing.T) {
	t.Helper()
	orig := backoffBase
	backoffBase = time.Millisecond
	t.Cleanup(func() { backoffBase = orig })
}

func TestStatusError(t *testing.T) {
	tests := []struct {
		status    int
		retryable bool
		auth      bool
	}{
		{429, true, false},
		{500, true, false},
		{503, true, false},
		{401, false, true},
		{403, false, true},
		{400, false, false},
		{404, false, false},
	}
	for _, tt := range tests {
		err := statusError(tt.status, "msg")
		if got := isRetryable(err); got != tt.retryable {
			t.Errorf("status %d: isRetryable = %v, want %v", tt.status, got, tt.retryable)
		}
		if got := IsAuthError(err); got != tt.auth {
			t.Errorf("status %d: IsAuthError = %v, want %v", tt.status, got, tt.auth)
		}
	}
}

func TestIsAuthError_Wrapped(t *testing.T) {
	err := fmt.Errorf("summarizing commit: %w", &authError{message: "bad key"})
	if !IsAuthError(err) {
		t.Error("IsAuthError should see through wrapping")
	}
	if IsAuthError(errors.New("other")) {
		t.Error("plain error reported as auth error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	fastBackoff(t)

	tests := []struct {
		name         string
		errs         []error
		wantAttempts int
		wantErr      bool
	}{
		{"success first try", []error{nil}, 1, false},
		{"rate limit then success", []error{&rateLimitError{}, &rateLimitError{}, nil}, 3, false},
		{"server error then success", []error{&serverError{statusCode: 502}, nil}, 2, false},
		{"auth never retried", []error{&authError{message: "no"}}, 1, true},
		{"client error never retried", []error{errors.New("bad request")}, 1, true},
		{"gives up after retries", []error{&serverError{}, &serverError{}, &serverError{}, &serverError{}, nil}, 4, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			err := retryWithBackoff(context.Background(), 3, func() error {
				e := tt.errs[attempts]
				attempts++
				return e
			})
			if attempts != tt.wantAttempts {
				t.Errorf("attempts = %d, want %d", attempts, tt.wantAttempts)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetryWithBackoff_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	attempts := 0
	err := retryWithBackoff(ctx, 3, func() error {
		attempts++
		return &rateLimitError{}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestNew(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	if _, err := New("unknown", "model"); err == nil {
		t.Error("Expected error for unknown provider")
	}
	for _, name := range []string{"openai", "anthropic", "gemini", "google"} {
		_, err := New(name, "")
		if !IsAuthError(err) {
			t.Errorf("New(%q) without key: err = %v, want auth error", name, err)
		}
	}

	p, err := New("ollama", "")
	if err != nil {
		t.Fatalf("New(ollama) error: %v", err)
	}
	if p.Name() != "ollama" {
		t.Errorf("Name() = %q, want ollama", p.Name())
	}
}

func TestNew_WithKeys(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "k")
	t.Setenv("ANTHROPIC_API_KEY", "k")
	t.Setenv("GEMINI_API_KEY", "k")

	for _, name := range []string{"openai", "anthropic", "gemini"} {
		p, err := New(name, "")
		if err != nil {
			t.Fatalf("New(%q) error: %v", name, err)
		}
		if p.Name() != name {
			t.Errorf("Name() = %q, want %q", p.Name(), name)
		}
	}
}
