package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dshills/logchange/internal/summarize"
)

// Changelog is the data every changelog writer renders.
type Changelog struct {
	GeneratedAt time.Time
	Entries     []summarize.Entry
	// Stats is optional.
	Stats *summarize.Stats
}

// Writer writes a changelog in a specific format.
type Writer interface {
	Write(w io.Writer, cl *Changelog) error
}

// Formats lists the names accepted by GetWriter.
var Formats = []string{"markdown", "json", "csv"}

// GetWriter returns a writer for the specified format.
func GetWriter(format string) (Writer, error) {
	switch strings.ToLower(format) {
	case "markdown", "md":
		return &MarkdownWriter{}, nil
	case "json":
		return &JSONWriter{}, nil
	case "csv":
		return &CSVWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (want one of %s)", format, strings.Join(Formats, ", "))
	}
}

// WriteReport writes the changelog to outPath, or to stdout when outPath is
// empty or "-".
func WriteReport(cl *Changelog, format, outPath string) error {
	writer, err := GetWriter(format)
	if err != nil {
		return err
	}
	return writeTo(outPath, func(w io.Writer) error { return writer.Write(w, cl) })
}

// WriteToFile creates path and hands it to fn.
func WriteToFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing output file: %w", err)
	}
	return nil
}

func writeTo(outPath string, fn func(io.Writer) error) error {
	if outPath == "" || outPath == "-" {
		return fn(os.Stdout)
	}
	return WriteToFile(outPath, fn)
}

// errWriter remembers the first write error so formatting code can print
// freely and check once at the end.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}
