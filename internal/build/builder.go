package build

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/pagesmith/internal/content"
	"git.home.luguber.info/inful/pagesmith/internal/eventstore"
	"git.home.luguber.info/inful/pagesmith/internal/logfields"
	"git.home.luguber.info/inful/pagesmith/internal/metrics"
)

// Builder runs build modes against a Context. Invocations must not overlap;
// the watch loop serializes them through a single worker.
type Builder struct {
	bc    *Context
	now   func() time.Time
	newID func() string
}

// NewBuilder creates a Builder for bc.
func NewBuilder(bc *Context) *Builder {
	return &Builder{
		bc:    bc,
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
}

// Context returns the build context.
func (b *Builder) Context() *Context { return b.bc }

// Close releases the resources held by the build context.
func (b *Builder) Close() error { return b.bc.Close() }

// invocation tracks one run of a mode: its report, logger and event stream.
type invocation struct {
	b      *Builder
	ctx    context.Context
	report *Report
	logger *slog.Logger
}

// run wraps fn with build ID allocation, start/finish events, metrics and
// the final report log line.
func (b *Builder) run(ctx context.Context, mode Mode, file string, fn func(*invocation) error) (*Report, error) {
	report := &Report{
		BuildID:   b.newID(),
		Mode:      mode,
		File:      file,
		StartedAt: b.now(),
	}
	inv := &invocation{
		b:      b,
		ctx:    ctx,
		report: report,
		logger: b.bc.Logger.With(logfields.BuildID(report.BuildID), logfields.Mode(string(mode))),
	}

	inv.emit(eventstore.TypeBuildStarted, eventstore.BuildStarted{Mode: string(mode), File: file})

	err := fn(inv)
	report.finish(b.now(), err)

	rec := b.bc.Recorder
	rec.ObserveBuildDuration(string(mode), report.Duration)
	rec.IncBuildOutcome(string(mode), report.Outcome())

	if err != nil {
		inv.emit(eventstore.TypeBuildFailed, eventstore.BuildFailed{Mode: string(mode), Error: err.Error()})
		inv.logger.Error("Build failed", append(report.LogAttrs(), logfields.Error(err))...)
		return report, err
	}

	inv.emit(eventstore.TypeBuildCompleted, eventstore.BuildCompleted{
		Mode:       string(mode),
		Status:     string(report.Status),
		Rendered:   report.Rendered,
		Skipped:    report.Skipped(),
		Pruned:     report.Pruned,
		Tags:       report.Tags,
		DurationMS: report.Duration.Milliseconds(),
	})
	inv.logger.Info("Build finished", report.LogAttrs()...)
	return report, nil
}

// emit appends a history event. History failures never fail a build.
func (inv *invocation) emit(eventType string, payload any) {
	ev, err := eventstore.NewEvent(inv.report.BuildID, eventType, payload)
	if err != nil {
		inv.logger.Debug("Dropping history event", slog.String("type", eventType), logfields.Error(err))
		return
	}
	if err := inv.b.bc.History.Append(inv.ctx, ev); err != nil {
		inv.logger.Debug("Failed to record history event", slog.String("type", eventType), logfields.Error(err))
	}
}

func (inv *invocation) rendered(page *content.Page, output string) {
	inv.report.Rendered++
	inv.b.bc.Recorder.IncPageResult(metrics.PageRendered)
	inv.emit(eventstore.TypePageRendered, eventstore.PageRendered{
		SourcePath: page.SourcePath,
		URL:        page.URL,
		Layout:     page.Layout(),
		Output:     output,
	})
}

// skipped records a document that produced no output.
func (inv *invocation) skipped(sourcePath string, result metrics.PageResult) {
	switch result {
	case metrics.PageSkippedUnchanged:
		inv.report.Unchanged++
	case metrics.PageSkippedDraft:
		inv.report.Drafts++
	case metrics.PageSkippedLayout:
		inv.report.LayoutSkips++
	case metrics.PageFailed:
		inv.report.Failed++
	}
	inv.b.bc.Recorder.IncPageResult(result)
	inv.emit(eventstore.TypePageSkipped, eventstore.PageSkipped{SourcePath: sourcePath, Reason: string(result)})
}

func (inv *invocation) pruned(id, dir string) {
	inv.report.Pruned++
	inv.b.bc.Recorder.IncPageResult(metrics.PageRemoved)
	inv.emit(eventstore.TypePagePruned, eventstore.PagePruned{Slug: id, Path: dir})
}

// warn logs a non-fatal problem and downgrades the report status.
func (inv *invocation) warn(msg string, args ...any) {
	inv.report.Warnings++
	inv.logger.Warn(msg, args...)
}
