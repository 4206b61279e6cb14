package progress

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestIndicator_Output(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, "Analyzing watch list", 2)

	clock := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return clock }

	p.Start()
	clock = clock.Add(time.Second)
	p.Step(true)
	clock = clock.Add(time.Second)
	p.Step(false)
	p.Finish()

	out := buf.String()
	if !strings.HasPrefix(out, "Analyzing watch list...\n") {
		t.Errorf("missing header: %q", out)
	}
	if !strings.Contains(out, "1/2 ETA: 1.0s") {
		t.Errorf("missing intermediate progress with ETA: %q", out)
	}
	if !strings.Contains(out, "2/2") {
		t.Errorf("missing final progress: %q", out)
	}
	if !strings.Contains(out, "done: 2 items, 1 failed in 2.0s") {
		t.Errorf("missing summary: %q", out)
	}
}

func TestIndicator_Throttles(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, "x", 100)
	clock := time.Now()
	p.now = func() time.Time { return clock }
	p.Start()

	for range 10 {
		p.Step(true)
	}
	if n := strings.Count(buf.String(), "\r"); n != 0 {
		t.Errorf("expected redraws to be throttled, got %d", n)
	}

	clock = clock.Add(200 * time.Millisecond)
	p.Step(true)
	if n := strings.Count(buf.String(), "\r"); n != 1 {
		t.Errorf("expected one redraw, got %d", n)
	}
}

func TestIndicator_NilWriter(t *testing.T) {
	p := New(nil, "quiet", 3)
	p.Start()
	p.Step(true)
	p.Step(false)
	p.Finish()

	done, failed := p.Counts()
	if done != 2 || failed != 1 {
		t.Errorf("Counts() = %d, %d; want 2, 1", done, failed)
	}
}

func TestIndicator_ConcurrentSteps(t *testing.T) {
	p := New(nil, "parallel", 50)

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Step(true)
		}()
	}
	wg.Wait()

	if done, _ := p.Counts(); done != 50 {
		t.Errorf("done = %d, want 50", done)
	}
}

func TestBar(t *testing.T) {
	tests := []struct {
		current, total int
		filled         int
	}{
		{0, 10, 0},
		{5, 10, 15},
		{10, 10, 30},
		{12, 10, 30},
		{3, 0, 30},
	}
	for _, tt := range tests {
		b := bar(tt.current, tt.total)
		if len(b) != 30 {
			t.Errorf("bar(%d,%d) width %d", tt.current, tt.total, len(b))
		}
		if got := strings.Count(b, "#"); got != tt.filled {
			t.Errorf("bar(%d,%d) filled %d, want %d", tt.current, tt.total, got, tt.filled)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{500 * time.Millisecond, "500ms"},
		{1500 * time.Millisecond, "1.5s"},
		{90 * time.Second, "1.5m"},
		{90 * time.Minute, "1.5h"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
