package output

import (
	"encoding/csv"
	"fmt"
	"io"
)

// CSVWriter outputs one row per commit. An empty changelog produces no
// output at all, not even a header.
type CSVWriter struct{}

var csvHeader = []string{"hash", "date", "author", "message", "summary"}

func (c *CSVWriter) Write(w io.Writer, cl *Changelog) error {
	if len(cl.Entries) == 0 {
		return nil
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing CSV: %w", err)
	}
	for _, e := range cl.Entries {
		if err := cw.Write([]string{e.Hash, e.Date, e.Author, e.Message, e.Summary}); err != nil {
			return fmt.Errorf("writing CSV: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("writing CSV: %w", err)
	}
	return nil
}
