package eventstore

import (
	"context"
	"time"
)

// Build statuses.
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusWarning   = "warning"
	StatusFailed    = "failed"
)

// BuildSummary is the read model of one build.
type BuildSummary struct {
	BuildID     string        `json:"build_id"`
	Mode        string        `json:"mode"`
	File        string        `json:"file,omitempty"`
	Status      string        `json:"status"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	Duration    time.Duration `json:"duration,omitempty"`
	Rendered    int           `json:"rendered"`
	Skipped     int           `json:"skipped"`
	Pruned      int           `json:"pruned"`
	Tags        int           `json:"tags"`
	Error       string        `json:"error,omitempty"`
}

// Summarize folds the events of one build into a summary. Events of other
// builds are ignored.
func Summarize(buildID string, events []Event) BuildSummary {
	s := BuildSummary{BuildID: buildID, Status: StatusRunning}

	for _, e := range events {
		if e.BuildID != buildID {
			continue
		}
		if s.StartedAt.IsZero() {
			s.StartedAt = e.Timestamp
		}

		switch e.Type {
		case TypeBuildStarted:
			var p BuildStarted
			if e.Decode(&p) == nil {
				s.Mode = p.Mode
				s.File = p.File
			}
			s.StartedAt = e.Timestamp

		case TypePageRendered:
			s.Rendered++

		case TypePageSkipped:
			s.Skipped++

		case TypePagePruned:
			s.Pruned++

		case TypeBuildCompleted:
			completeAt(&s, e.Timestamp)
			var p BuildCompleted
			if e.Decode(&p) == nil {
				s.Status = p.Status
				s.Tags = p.Tags
				if p.DurationMS > 0 {
					s.Duration = time.Duration(p.DurationMS) * time.Millisecond
				}
			}
			if s.Status == "" {
				s.Status = StatusSucceeded
			}

		case TypeBuildFailed:
			completeAt(&s, e.Timestamp)
			s.Status = StatusFailed
			var p BuildFailed
			if e.Decode(&p) == nil {
				s.Error = p.Error
				if s.Mode == "" {
					s.Mode = p.Mode
				}
			}
		}
	}
	return s
}

func completeAt(s *BuildSummary, ts time.Time) {
	t := ts
	s.CompletedAt = &t
	s.Duration = t.Sub(s.StartedAt)
}

// RecentSummaries loads and summarizes up to limit recent builds, newest first.
func RecentSummaries(ctx context.Context, store Store, limit int) ([]BuildSummary, error) {
	ids, err := store.RecentBuildIDs(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]BuildSummary, 0, len(ids))
	for _, id := range ids {
		events, err := store.GetByBuildID(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, Summarize(id, events))
	}
	return out, nil
}
