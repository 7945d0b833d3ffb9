package metrics

import (
	"sync"
	"time"
)

// testRecorder counts calls.
type testRecorder struct {
	mu        sync.Mutex
	durations map[string]int
	outcomes  map[Outcome]int
	pages     map[PageResult]int
	pruned    int
	tags      int
}

var _ Recorder = (*testRecorder)(nil)
var _ Recorder = NoopRecorder{}
var _ Recorder = (*PrometheusRecorder)(nil)

func newTestRecorder() *testRecorder {
	return &testRecorder{durations: map[string]int{}, outcomes: map[Outcome]int{}, pages: map[PageResult]int{}}
}

func (t *testRecorder) ObserveBuildDuration(mode string, _ time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.durations[mode]++
}

func (t *testRecorder) IncBuildOutcome(_ string, outcome Outcome) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.outcomes[outcome]++
}

func (t *testRecorder) IncPageResult(result PageResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pages[result]++
}

func (t *testRecorder) AddStalePruned(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pruned += n
}

func (t *testRecorder) SetTagPages(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tags = n
}
