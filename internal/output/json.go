package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dshills/logchange/internal/summarize"
)

// JSONWriter outputs the changelog and optional statistics as JSON.
type JSONWriter struct{}

type jsonChangelog struct {
	GeneratedAt string            `json:"generated_at"`
	Changelog   []summarize.Entry `json:"changelog"`
	Statistics  *summarize.Stats  `json:"statistics,omitempty"`
}

func (j *JSONWriter) Write(w io.Writer, cl *Changelog) error {
	generated := cl.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	entries := cl.Entries
	if entries == nil {
		entries = []summarize.Entry{}
	}
	data, err := json.MarshalIndent(jsonChangelog{
		GeneratedAt: generated.Format(time.RFC3339),
		Changelog:   entries,
		Statistics:  cl.Stats,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("writing JSON: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}
