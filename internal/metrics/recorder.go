package metrics

import "time"

// PageResult enumerates per-page outcomes.
type PageResult string

const (
	PageRendered         PageResult = "rendered"
	PageSkippedUnchanged PageResult = "skipped_unchanged"
	PageSkippedDraft     PageResult = "skipped_draft"
	PageSkippedLayout    PageResult = "skipped_layout"
	PageRemoved          PageResult = "removed"
	PageFailed           PageResult = "failed"
)

// Outcome enumerates final build states.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeWarning Outcome = "warning"
	OutcomeFailed  Outcome = "failed"
)

// Recorder defines observability hooks for builds. Implementations must be
// safe to call on every page.
type Recorder interface {
	ObserveBuildDuration(mode string, d time.Duration)
	IncBuildOutcome(mode string, outcome Outcome)
	IncPageResult(result PageResult)
	AddStalePruned(n int)
	SetTagPages(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveBuildDuration(string, time.Duration) {}
func (NoopRecorder) IncBuildOutcome(string, Outcome)            {}
func (NoopRecorder) IncPageResult(PageResult)                   {}
func (NoopRecorder) AddStalePruned(int)                         {}
func (NoopRecorder) SetTagPages(int)                            {}
