package reembed

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker reports reembedding progress as a single updating line
// on a writer (typically os.Stderr).
type ProgressTracker struct {
	mu          sync.Mutex
	writer      io.Writer
	total       int
	reportEvery int

	current      int
	lastReported int
	begun        time.Time
	started      bool
}

// NewProgressTracker creates a tracker for total items that reports
// every reportEvery items.
func NewProgressTracker(writer io.Writer, total, reportEvery int) *ProgressTracker {
	return &ProgressTracker{
		writer:      writer,
		total:       total,
		reportEvery: reportEvery,
	}
}

// Start begins tracking, resetting any previous progress.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.begun = time.Now()
	p.started = true
	p.current = 0
	p.lastReported = 0
}

// Update sets the current progress, capped at the total, and reports
// when a report interval has been crossed.
func (p *ProgressTracker) Update(current int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	if current > p.total {
		current = p.total
	}
	p.current = current

	if p.current-p.lastReported >= p.reportEvery {
		p.report()
		p.lastReported = p.current
	}
}

// Finish forces a final report and terminates the progress line.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.current = p.total
	p.report()
	fmt.Fprintln(p.writer)
}

// Elapsed returns the time since Start was called.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return 0
	}
	return time.Since(p.begun)
}

// report prints the progress line. Callers must hold the lock.
func (p *ProgressTracker) report() {
	elapsed := time.Since(p.begun)
	rate := float64(p.current) / elapsed.Seconds()

	percentage := 0.0
	if p.total > 0 {
		percentage = float64(p.current) / float64(p.total) * 100.0
	}

	fmt.Fprintf(p.writer, "\rProgress: %d/%d (%.1f%%) - %.1f documents/s",
		p.current, p.total, percentage, rate)
}
