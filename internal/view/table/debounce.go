package table

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid calls into a single invocation once input has
// been quiet for the configured window. Each new call before the window
// elapses restarts the timer; only the most recent value is delivered. Used
// by the typeahead search endpoints to bound the upstream request rate.
type Debouncer struct {
	window time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// DefaultSearchDebounce is the quiet period applied to search input.
const DefaultSearchDebounce = 500 * time.Millisecond

// NewDebouncer constructs a Debouncer. A non-positive window falls back to
// DefaultSearchDebounce.
func NewDebouncer(window time.Duration) *Debouncer {
	if window <= 0 {
		window = DefaultSearchDebounce
	}
	return &Debouncer{window: window}
}

// Call schedules fn after the quiet window, cancelling any previously
// scheduled invocation.
func (d *Debouncer) Call(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, fn)
}

// Stop cancels any pending invocation.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
