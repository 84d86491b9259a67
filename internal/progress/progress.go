// Package progress reports progress of multi-document runs on stderr.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
)

// Tracker wraps a progress bar for document processing and collects the
// documents that failed.
type Tracker struct {
	bar   *progressbar.ProgressBar
	out   io.Writer
	label string

	mu       sync.Mutex
	failures []string
}

// NewTracker creates a progress bar with the given label and total count.
func NewTracker(label string, total int) *Tracker {
	return newTracker(os.Stderr, label, total)
}

func newTracker(w io.Writer, label string, total int) *Tracker {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(label),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &Tracker{bar: bar, out: w, label: label}
}

// Describe shows the document currently being processed.
func (t *Tracker) Describe(name string) {
	t.bar.Describe(t.label + " " + name)
}

// Tick increments the progress by 1. Safe for concurrent use.
func (t *Tracker) Tick() {
	t.bar.Add(1)
}

// Fail records a failed document and advances the bar.
func (t *Tracker) Fail(name string, err error) {
	t.mu.Lock()
	t.failures = append(t.failures, fmt.Sprintf("%s: %v", name, err))
	t.mu.Unlock()
	t.Tick()
}

// Failures returns the failed documents in the order they were recorded.
func (t *Tracker) Failures() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.failures...)
}

// Finish clears the bar and prints the recorded failures, if any.
func (t *Tracker) Finish() {
	t.bar.Finish()
	t.bar.Clear()
	for _, f := range t.Failures() {
		fmt.Fprintf(t.out, "  %s skipped (%s)\n", t.label, f)
	}
}
