package build

import (
	"log/slog"
	"time"

	"git.home.luguber.info/inful/pagesmith/internal/logfields"
	"git.home.luguber.info/inful/pagesmith/internal/metrics"
)

// Mode names a build mode.
type Mode string

const (
	ModeClean Mode = "clean"
	ModeFile  Mode = "file"
	ModeFull  Mode = "full"
)

// Status represents the outcome of an invocation.
type Status string

const (
	// StatusSuccess means every document was handled.
	StatusSuccess Status = "succeeded"
	// StatusWarning means the build finished but some documents were
	// skipped for content problems or failed to render.
	StatusWarning Status = "warning"
	// StatusFailed means the invocation was aborted.
	StatusFailed Status = "failed"
)

// IsSuccess reports whether output is complete.
func (s Status) IsSuccess() bool { return s == StatusSuccess }

// Report summarizes one invocation.
type Report struct {
	BuildID string
	Mode    Mode
	// File is the source path of a single-file build.
	File string

	Rendered    int
	Unchanged   int
	Drafts      int
	LayoutSkips int
	Failed      int
	// Pruned counts page directories removed because their source is gone.
	Pruned int
	// Cleaned counts generated files and trees removed by a clean.
	Cleaned     int
	Tags        int
	SitemapURLs int
	Warnings    int

	StartedAt time.Time
	Duration  time.Duration
	Status    Status
	Err       error
}

// Skipped returns the number of documents that were not rendered.
func (r *Report) Skipped() int {
	return r.Unchanged + r.Drafts + r.LayoutSkips
}

func (r *Report) finish(end time.Time, err error) {
	r.Duration = end.Sub(r.StartedAt)
	r.Err = err
	switch {
	case err != nil:
		r.Status = StatusFailed
	case r.Failed > 0 || r.LayoutSkips > 0 || r.Warnings > 0:
		r.Status = StatusWarning
	default:
		r.Status = StatusSuccess
	}
}

// Outcome maps the report status onto the metrics outcome.
func (r *Report) Outcome() metrics.Outcome {
	switch r.Status {
	case StatusSuccess:
		return metrics.OutcomeSuccess
	case StatusWarning:
		return metrics.OutcomeWarning
	default:
		return metrics.OutcomeFailed
	}
}

// LogAttrs returns the report as structured log attributes.
func (r *Report) LogAttrs() []any {
	attrs := []any{
		logfields.BuildID(r.BuildID),
		logfields.Mode(string(r.Mode)),
		slog.String("status", string(r.Status)),
		slog.Int("rendered", r.Rendered),
		slog.Int("skipped", r.Skipped()),
		slog.Int("failed", r.Failed),
		logfields.DurationMS(float64(r.Duration.Microseconds()) / 1000),
	}
	if r.File != "" {
		attrs = append(attrs, logfields.SourcePath(r.File))
	}
	switch r.Mode {
	case ModeClean:
		attrs = append(attrs, slog.Int("cleaned", r.Cleaned))
	case ModeFull:
		attrs = append(attrs,
			slog.Int("pruned", r.Pruned),
			slog.Int("tags", r.Tags),
			slog.Int("sitemap_urls", r.SitemapURLs))
	case ModeFile:
		if r.Pruned > 0 {
			attrs = append(attrs, slog.Int("pruned", r.Pruned))
		}
	}
	return attrs
}
