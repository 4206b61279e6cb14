package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// minRedraw throttles intermediate redraws.
const minRedraw = 100 * time.Millisecond

// Indicator draws a progress bar for a run over a known number of items.
// It is safe for concurrent use. A nil writer disables output.
type Indicator struct {
	mu         sync.Mutex
	w          io.Writer
	message    string
	total      int
	current    int
	failed     int
	startTime  time.Time
	lastUpdate time.Time
	now        func() time.Time
}

// New creates an indicator writing to w.
func New(w io.Writer, message string, total int) *Indicator {
	return &Indicator{
		w:         w,
		message:   message,
		total:     total,
		startTime: time.Now(),
		now:       time.Now,
	}
}

// Start prints the header line.
func (p *Indicator) Start() {
	if p.w == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startTime = p.now()
	p.lastUpdate = p.startTime
	fmt.Fprintf(p.w, "%s...\n", p.message)
}

// Step records one finished item. ok=false counts it as failed.
func (p *Indicator) Step(ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current++
	if !ok {
		p.failed++
	}
	if p.w == nil {
		return
	}

	now := p.now()
	if now.Sub(p.lastUpdate) < minRedraw && p.current < p.total {
		return
	}
	p.lastUpdate = now

	fmt.Fprintf(p.w, "\r%s [%s] %d/%d%s", p.message, bar(p.current, p.total), p.current, p.total, p.eta(now))
}

// Finish prints the completion line.
func (p *Indicator) Finish() {
	if p.w == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	elapsed := p.now().Sub(p.startTime)
	if p.failed > 0 {
		fmt.Fprintf(p.w, "\r%s done: %d items, %d failed in %s\n", p.message, p.current, p.failed, formatDuration(elapsed))
		return
	}
	fmt.Fprintf(p.w, "\r%s done: %d items in %s\n", p.message, p.current, formatDuration(elapsed))
}

// Counts returns the finished and failed item counts.
func (p *Indicator) Counts() (done, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current, p.failed
}

func (p *Indicator) eta(now time.Time) string {
	elapsed := now.Sub(p.startTime)
	if p.current == 0 || p.current >= p.total || elapsed <= 0 {
		return ""
	}
	perItem := elapsed / time.Duration(p.current)
	return " ETA: " + formatDuration(perItem*time.Duration(p.total-p.current))
}

// bar renders a fixed-width bar for current out of total.
func bar(current, total int) string {
	const width = 30
	filled := width
	if total > 0 {
		filled = min(current*width/total, width)
	}
	return strings.Repeat("#", filled) + strings.Repeat("-", width-filled)
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}
