// Package progress reports the advancement of long-running operations, in
// this repository chiefly the percent progress of a remote encoding job while
// it is being polled.
package progress

import (
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Event is a single progress update, suitable for JSON serialization.
type Event struct {
	// Status indicates the overall state ("initialized", "started",
	// "processing", "completed").
	Status string `json:"status"`
	// Percentage is the completion from 0.0 to 100.0.
	Percentage float64 `json:"percentage"`
	// Step is the high-level phase (e.g., "encoding").
	Step string `json:"step"`
	// Stage is a finer description within the step.
	Stage string `json:"stage"`
	// Timestamp marks when the event occurred in RFC3339 format.
	Timestamp string `json:"timestamp"`
}

// Reporter is implemented by progress sinks. Components accept a Reporter so
// callers decide how progress is rendered.
type Reporter interface {
	// Start initializes reporting with the total number of units.
	Start(total int64)
	// Update sets the current progress along with step and stage descriptions.
	Update(current int64, step, stage string)
	// Increment advances the progress by one unit.
	Increment(step, stage string)
	// Complete marks the operation as finished.
	Complete()
	// Updates returns a channel emitting Events. It is closed on Complete.
	Updates() <-chan Event
}

type reporterOptions struct {
	throttle    time.Duration
	description string
}

// ReporterOption configures a ConsoleReporter.
type ReporterOption func(*reporterOptions)

// WithThrottle sets the minimum interval between events sent to the Updates
// channel. Defaults to 0 (no throttling).
func WithThrottle(duration time.Duration) ReporterOption {
	return func(opts *reporterOptions) {
		opts.throttle = duration
	}
}

// WithDescription sets the description text of the console progress bar.
func WithDescription(desc string) ReporterOption {
	return func(opts *reporterOptions) {
		opts.description = desc
	}
}

// ConsoleReporter renders a progress bar on stderr via
// github.com/schollz/progressbar/v3 and mirrors every update onto a channel.
type ConsoleReporter struct {
	total      int64
	current    int64
	bar        *progressbar.ProgressBar
	opts       reporterOptions
	updatesCh  chan Event
	lastUpdate time.Time
	event      Event
	mu         sync.Mutex
}

// NewReporter creates a ConsoleReporter.
func NewReporter(opts ...ReporterOption) *ConsoleReporter {
	options := reporterOptions{
		description: "Encoding...",
	}
	for _, opt := range opts {
		opt(&options)
	}

	return &ConsoleReporter{
		opts: options,
		event: Event{
			Status:    "initialized",
			Timestamp: time.Now().Format(time.RFC3339),
		},
		lastUpdate: time.Now(),
		updatesCh:  make(chan Event, 10),
	}
}

// Start initializes the progress bar with the total number of units.
func (r *ConsoleReporter) Start(total int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.total = total
	r.current = 0
	r.event.Status = "started"
	r.event.Percentage = 0
	r.event.Timestamp = time.Now().Format(time.RFC3339)

	r.bar = progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(r.opts.description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)

	r.sendLocked(true)
}

// Update sets the current progress. Events on the Updates channel may be
// throttled per WithThrottle.
func (r *ConsoleReporter) Update(current int64, step, stage string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bar == nil {
		return
	}
	if current > r.total {
		current = r.total
	}
	r.current = current

	percentage := 0.0
	if r.total > 0 {
		percentage = float64(current) / float64(r.total) * 100
	}
	r.event.Percentage = percentage
	r.event.Step = step
	r.event.Stage = stage
	r.event.Status = "processing"
	r.event.Timestamp = time.Now().Format(time.RFC3339)

	_ = r.bar.Set64(current)

	r.sendLocked(false)
}

// Increment advances the progress by one unit.
func (r *ConsoleReporter) Increment(step, stage string) {
	r.mu.Lock()
	current := r.current + 1
	r.mu.Unlock()
	r.Update(current, step, stage)
}

// Complete finishes the progress bar and closes the Updates channel.
func (r *ConsoleReporter) Complete() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bar == nil {
		return
	}

	_ = r.bar.Finish()
	r.current = r.total
	r.event.Percentage = 100
	r.event.Status = "completed"
	r.event.Timestamp = time.Now().Format(time.RFC3339)

	r.sendLocked(true)
	r.bar = nil
	close(r.updatesCh)
}

// Updates returns the channel for receiving progress events.
func (r *ConsoleReporter) Updates() <-chan Event {
	return r.updatesCh
}

// sendLocked pushes the current event to the channel, honoring the throttle.
// Requires the lock to be held.
func (r *ConsoleReporter) sendLocked(force bool) {
	now := time.Now()
	if !force && now.Sub(r.lastUpdate) < r.opts.throttle {
		return
	}
	r.lastUpdate = now

	select {
	case r.updatesCh <- r.event:
	default:
	}
}
