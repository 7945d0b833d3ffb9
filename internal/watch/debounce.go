package watch

import (
	"sort"
	"sync"
	"time"
)

// DefaultDebounce is the quiet window before queued jobs run.
const DefaultDebounce = 300 * time.Millisecond

// batch is the set of work accumulated during one quiet window. A full build
// supersedes every queued single-file build.
type batch struct {
	full  bool
	files map[string]struct{}
}

func (b batch) empty() bool { return !b.full && len(b.files) == 0 }

// paths returns the queued single-file paths in sorted order.
func (b batch) paths() []string {
	out := make([]string, 0, len(b.files))
	for p := range b.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// debouncer coalesces bursts of jobs. Each add restarts the quiet window;
// when it elapses a signal is sent on ready. The worker then takes the whole
// accumulated batch, so jobs arriving during a build run together afterwards.
type debouncer struct {
	window time.Duration
	ready  chan struct{}

	mu      sync.Mutex
	timer   *time.Timer
	pending batch
}

func newDebouncer(window time.Duration) *debouncer {
	if window <= 0 {
		window = DefaultDebounce
	}
	return &debouncer{
		window:  window,
		ready:   make(chan struct{}, 1),
		pending: batch{files: map[string]struct{}{}},
	}
}

// add queues job and restarts the quiet window.
func (d *debouncer) add(job Job) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.queue(job) {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.signal)
}

// now queues job and signals immediately.
func (d *debouncer) now(job Job) {
	d.mu.Lock()
	queued := d.queue(job)
	d.mu.Unlock()
	if queued {
		d.signal()
	}
}

func (d *debouncer) queue(job Job) bool {
	switch job.Kind {
	case KindFull:
		d.pending.full = true
	case KindFile:
		d.pending.files[job.Path] = struct{}{}
	default:
		return false
	}
	return true
}

func (d *debouncer) signal() {
	select {
	case d.ready <- struct{}{}:
	default:
	}
}

// take returns the accumulated batch and resets it.
func (d *debouncer) take() batch {
	d.mu.Lock()
	defer d.mu.Unlock()
	b := d.pending
	d.pending = batch{files: map[string]struct{}{}}
	return b
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}
