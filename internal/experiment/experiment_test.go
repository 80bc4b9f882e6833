package experiment

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dshills/logchange/internal/cache"
	"github.com/dshills/logchange/internal/gitctx"
	"github.com/dshills/logchange/internal/providers"
	"github.com/dshills/logchange/internal/summarize"
)

type stubProvider struct{ calls atomic.Int32 }

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Complete(_ context.Context, req providers.CompletionRequest) (providers.CompletionResponse, error) {
	s.calls.Add(1)
	return providers.CompletionResponse{Content: "summary"}, nil
}

func stubCommits(_ context.Context, max int) ([]gitctx.Commit, error) {
	all := []gitctx.Commit{
		{SHA: "aaaaaaa1111", ShortSHA: "aaaaaaa", Author: "Ada", Date: time.Date(2024, 3, 2, 12, 0, 0, 0, time.Local), Message: "two", Diff: "+2"},
		{SHA: "bbbbbbb2222", ShortSHA: "bbbbbbb", Author: "Bob", Date: time.Date(2024, 3, 1, 12, 0, 0, 0, time.Local), Message: "one", Diff: "+1"},
	}
	if max < len(all) {
		all = all[:max]
	}
	return all, nil
}

func newRunner(t *testing.T, p *stubProvider) *Runner {
	t.Helper()
	c, err := cache.New(cache.Options{Enabled: true, Dir: t.TempDir(), TTL: time.Hour})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	return &Runner{
		Commits: stubCommits,
		NewEngine: func(model string) (*summarize.Engine, error) {
			if model == "broken" {
				return nil, errors.New("no such model")
			}
			return summarize.New(p, model, summarize.WithCache(c)), nil
		},
	}
}

func TestRun(t *testing.T) {
	p := &stubProvider{}
	r := newRunner(t, p)
	var progressCalls int
	r.Progress = func(string, int, int) { progressCalls++ }

	cfgs := []Config{
		{Name: "first", Model: "gpt-4", MaxCommits: 2, MaxTokens: 300},
		{Name: "second", Model: "gpt-4", MaxCommits: 2, MaxTokens: 300},
		{Name: "other", Model: "gpt-3.5-turbo", MaxCommits: 1, MaxTokens: 300},
	}
	run, err := r.Run(context.Background(), cfgs)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if run.ID == "" {
		t.Error("missing run ID")
	}
	if len(run.Experiments) != 3 {
		t.Fatalf("experiments = %d, want 3", len(run.Experiments))
	}
	// second repeats first and is served from the shared cache.
	if got := p.calls.Load(); got != 3 {
		t.Errorf("provider calls = %d, want 3", got)
	}
	if hits := run.Experiments[1].Statistics.CacheHits; hits != 2 {
		t.Errorf("second run cache hits = %d, want 2", hits)
	}
	if got := run.Experiments[2].Statistics.TotalCommits; got != 1 {
		t.Errorf("other run commits = %d, want 1", got)
	}
	if progressCalls != 5 {
		t.Errorf("progress calls = %d, want 5", progressCalls)
	}
}

func TestRun_FailingExperimentSkipped(t *testing.T) {
	r := newRunner(t, &stubProvider{})
	run, err := r.Run(context.Background(), []Config{
		{Name: "bad", Model: "broken", MaxCommits: 1, MaxTokens: 10},
		{Name: "good", Model: "gpt-4", MaxCommits: 1, MaxTokens: 10},
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(run.Experiments) != 1 || run.Experiments[0].Name != "good" {
		t.Errorf("experiments = %+v", run.Experiments)
	}
	if !strings.Contains(run.Failed["bad"], "no such model") {
		t.Errorf("Failed = %v", run.Failed)
	}
}

func TestRun_NoSuccess(t *testing.T) {
	r := newRunner(t, &stubProvider{})
	_, err := r.Run(context.Background(), []Config{{Name: "bad", Model: "broken", MaxCommits: 1, MaxTokens: 10}})
	if !errors.Is(err, ErrNoSuccess) {
		t.Errorf("err = %v, want ErrNoSuccess", err)
	}
}

func TestRun_Cancelled(t *testing.T) {
	r := newRunner(t, &stubProvider{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Run(ctx, Defaults(2))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRun_Timing(t *testing.T) {
	r := newRunner(t, &stubProvider{})
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var ticks int
	r.now = func() time.Time {
		ticks++
		return base.Add(time.Duration(ticks) * 3 * time.Second)
	}
	run, err := r.Run(context.Background(), []Config{{Name: "t", Model: "gpt-4", MaxCommits: 2, MaxTokens: 10}})
	if err != nil {
		t.Fatal(err)
	}
	s := run.Experiments[0].Statistics
	if s.DurationSeconds != 3 || s.AvgSecsPerCommit != 1.5 {
		t.Errorf("timing = %v/%v, want 3/1.5", s.DurationSeconds, s.AvgSecsPerCommit)
	}
}

func TestSave(t *testing.T) {
	r := newRunner(t, &stubProvider{})
	run, err := r.Run(context.Background(), Quick())
	if err != nil {
		t.Fatal(err)
	}
	dir := filepath.Join(t.TempDir(), "results")
	files, err := Save(run, dir)
	if err != nil {
		t.Fatalf("Save error: %v", err)
	}
	want := []string{"experiment_results.json", "comparison_report.txt", "changelog_quick_test.md"}
	if len(files) != len(want) {
		t.Fatalf("files = %v", files)
	}
	for i, name := range want {
		if filepath.Base(files[i]) != name {
			t.Errorf("file %d = %s, want %s", i, files[i], name)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "experiment_results.json"))
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		RunID       string `json:"run_id"`
		Experiments []struct {
			Name   string `json:"experiment_name"`
			Config struct {
				Model string `json:"model"`
			} `json:"config"`
		} `json:"experiments"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.RunID != run.ID || len(decoded.Experiments) != 1 || decoded.Experiments[0].Config.Model != "gpt-3.5-turbo" {
		t.Errorf("decoded = %+v", decoded)
	}

	report, _ := os.ReadFile(filepath.Join(dir, "comparison_report.txt"))
	if !strings.Contains(string(report), "Quick Test") {
		t.Errorf("report missing experiment:\n%s", report)
	}
}

func TestParseCustom(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Config
		wantErr bool
	}{
		{"model only", `{"model": "gpt-4"}`, Config{Name: "Custom", Model: "gpt-4", MaxCommits: 10, MaxTokens: 300}, false},
		{"full", `{"name": "T", "model": "m", "max_commits": 5, "max_tokens": 50}`, Config{Name: "T", Model: "m", MaxCommits: 5, MaxTokens: 50}, false},
		{"missing model", `{"name": "T"}`, Config{}, true},
		{"bad json", `{`, Config{}, true},
		{"zero commits", `{"model": "m", "max_commits": 0}`, Config{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCustom(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPresets(t *testing.T) {
	if q := Quick(); len(q) != 1 || q[0].MaxCommits != 5 || q[0].MaxTokens != 200 {
		t.Errorf("Quick = %+v", q)
	}
	if d := Defaults(7); len(d) != 2 || d[1].Model != "gpt-4" || d[0].MaxCommits != 7 {
		t.Errorf("Defaults = %+v", d)
	}
	m := ForModels([]string{"a", " ", "b"}, 3)
	if len(m) != 2 || m[1].Name != "Test: b" || m[1].MaxCommits != 3 {
		t.Errorf("ForModels = %+v", m)
	}
}
