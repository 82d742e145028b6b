package output

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// ProgressWriter counts bytes written through it and redraws a one-line
// progress bar on w. Redraws are throttled to one per interval.
type ProgressWriter struct {
	w        io.Writer
	title    string
	total    int64
	current  int64
	width    int
	interval time.Duration
	last     time.Time
	mu       sync.Mutex
}

// NewProgressWriter creates a progress writer. total <= 0 means unknown.
func NewProgressWriter(w io.Writer, title string, total int64) *ProgressWriter {
	return &ProgressWriter{
		w:        w,
		title:    title,
		total:    total,
		width:    30,
		interval: 100 * time.Millisecond,
	}
}

// Write implements io.Writer. It never fails.
func (p *ProgressWriter) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current += int64(len(b))
	if now := time.Now(); now.Sub(p.last) >= p.interval {
		p.last = now
		p.render()
	}
	return len(b), nil
}

// Current returns the number of bytes seen so far.
func (p *ProgressWriter) Current() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Finish draws the final state and ends the line.
func (p *ProgressWriter) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.render()
	fmt.Fprintln(p.w)
}

func (p *ProgressWriter) render() {
	if p.total <= 0 {
		fmt.Fprintf(p.w, "\r%s %s", p.title, FormatBytes(p.current))
		return
	}

	ratio := float64(p.current) / float64(p.total)
	if ratio > 1 {
		ratio = 1
	}
	filled := int(float64(p.width) * ratio)

	fmt.Fprintf(p.w, "\r%s [%s%s] %3.0f%% (%s/%s)",
		p.title,
		strings.Repeat("#", filled),
		strings.Repeat(".", p.width-filled),
		ratio*100,
		FormatBytes(p.current),
		FormatBytes(p.total),
	)
}

// FormatBytes formats a byte count with binary units.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
