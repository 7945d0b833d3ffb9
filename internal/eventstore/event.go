// Package eventstore records build history as an append-only log of events
// in SQLite and folds it back into per-build summaries.
package eventstore

import (
	"encoding/json"
	"time"
)

// Event types.
const (
	TypeBuildStarted   = "build.started"
	TypePageRendered   = "page.rendered"
	TypePageSkipped    = "page.skipped"
	TypePagePruned     = "page.pruned"
	TypeBuildCompleted = "build.completed"
	TypeBuildFailed    = "build.failed"
)

// Event is one recorded fact about a build.
type Event struct {
	ID        int64
	BuildID   string
	Type      string
	Timestamp time.Time
	Payload   json.RawMessage
	Metadata  map[string]string
}

// Decode unmarshals the payload into v.
func (e Event) Decode(v any) error {
	return json.Unmarshal(e.Payload, v)
}
