// Package report writes sizing run reports as JSON.
package report

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	json "github.com/json-iterator/go"

	"github.com/formfit/formfit/api/schemas"
)

// Version tags emitted reports so consumers can detect format changes.
const Version = "1"

// Reporter accumulates per-document results and finalizes them on Close.
type Reporter interface {
	// Write records the results for one processed document.
	Write(doc schemas.DocumentReport) error
	// Close writes the aggregated report and releases the underlying writer.
	Close() error
}

type nopWriteCloser struct {
	io.Writer
}

func (nwc *nopWriteCloser) Close() error { return nil }

// New creates a JSON reporter for the given output path. An empty path or
// "stdout" writes to standard output.
func New(outputPath string) (Reporter, error) {
	if outputPath == "" || outputPath == "stdout" {
		return NewJSONReporter(&nopWriteCloser{os.Stdout}), nil
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create report file %s: %w", outputPath, err)
	}
	return NewJSONReporter(f), nil
}

// JSONReporter buffers document reports and serializes one SizingReport on
// Close. Write is safe for concurrent use; documents appear in completion
// order.
type JSONReporter struct {
	mu     sync.Mutex
	writer io.WriteCloser
	report schemas.SizingReport
	closed bool
}

// NewJSONReporter takes ownership of the writer.
func NewJSONReporter(w io.WriteCloser) *JSONReporter {
	return &JSONReporter{
		writer: w,
		report: schemas.SizingReport{
			Version:   Version,
			StartedAt: time.Now().UTC(),
		},
	}
}

func (r *JSONReporter) Write(doc schemas.DocumentReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return fmt.Errorf("reporter is closed")
	}
	r.report.Documents = append(r.report.Documents, doc)
	return nil
}

func (r *JSONReporter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true

	data, err := json.MarshalIndent(r.report, "", "  ")
	if err != nil {
		r.writer.Close()
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if _, err := r.writer.Write(append(data, '\n')); err != nil {
		r.writer.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	return r.writer.Close()
}
