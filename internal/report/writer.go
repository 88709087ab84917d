package report

import (
	"io"

	"github.com/a11ygate/a11ygate/internal/model"
)

// Writer renders a sitewide summary to a destination.
//
// Design decision: We use an interface so the audit command can write to
// stdout, a file, or both with the same API, and so new formats slot in
// without touching orchestration code.
type Writer interface {
	// WriteSummary renders the summary. Returns the number of bytes
	// written and any error encountered.
	WriteSummary(summary *model.SiteSummary) (int, error)
}

// MultiWriter writes the summary to multiple Writers, stopping on the
// first error. Useful for terminal-plus-file output.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// WriteSummary renders the summary to all configured Writers.
func (m *MultiWriter) WriteSummary(summary *model.SiteSummary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteSummary(summary)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides the shared output destination for writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
