package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// ProgressBar tracks the day loop of a generation run.
type ProgressBar struct {
	total     int
	current   int
	startTime time.Time
	mu        sync.Mutex

	events   int
	sessions int
	label    string
}

// NewProgressBar creates a progress bar over a number of days.
func NewProgressBar(total int) *ProgressBar {
	return &ProgressBar{
		total:     total,
		startTime: time.Now(),
	}
}

// Update advances the bar to a day, carrying running totals.
func (p *ProgressBar) Update(day int, date string, sessions, events int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = day
	p.label = date
	p.sessions = sessions
	p.events = events

	p.render()
}

// Finish completes the progress bar.
func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	elapsed := time.Since(p.startTime)

	fmt.Printf("\n\n%s Generation completed in %s\n",
		ColorSuccess("OK"),
		formatDuration(elapsed),
	)
	fmt.Printf("  %s %d sessions, %d events\n", ColorSuccess("+"), p.sessions, p.events)
}

func (p *ProgressBar) render() {
	fmt.Print("\r\033[K")

	percentage := float64(p.current) / float64(p.total) * 100

	barWidth := 30
	filled := int(percentage / 100 * float64(barWidth))
	bar := strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled)

	elapsed := time.Since(p.startTime)

	fmt.Printf("%s %s %.0f%% [%d/%d] %s - %s",
		ColorProgress(">"),
		bar,
		percentage,
		p.current,
		p.total,
		p.label,
		formatDuration(elapsed),
	)
}

// Spinner is an animated indicator for operations without a known
// total, like the closing projection.
type Spinner struct {
	frames  []string
	current int
	message string
	stop    chan bool
	stopped bool
	mu      sync.Mutex
}

// NewSpinner creates a new spinner
func NewSpinner(message string) *Spinner {
	return &Spinner{
		frames:  []string{"|", "/", "-", "\\"},
		message: message,
		stop:    make(chan bool),
	}
}

// Start begins the spinner animation
func (s *Spinner) Start() {
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				s.mu.Lock()
				if !s.stopped {
					fmt.Printf("\r\033[K%s %s", ColorProgress(s.frames[s.current]), s.message)
					s.current = (s.current + 1) % len(s.frames)
				}
				s.mu.Unlock()
			}
		}
	}()
}

// Stop ends the spinner, replacing it with a final status line.
func (s *Spinner) Stop(success bool, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	s.stopped = true
	close(s.stop)

	fmt.Print("\r\033[K")
	if success {
		fmt.Printf("%s %s\n", ColorSuccess("OK"), message)
	} else {
		fmt.Printf("%s %s\n", ColorError("XX"), message)
	}
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
}
