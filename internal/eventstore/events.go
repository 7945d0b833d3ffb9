package eventstore

import (
	"encoding/json"
	"fmt"
	"time"
)

// BuildStarted is the payload of TypeBuildStarted.
type BuildStarted struct {
	Mode string `json:"mode"`
	File string `json:"file,omitempty"`
}

// PageRendered is the payload of TypePageRendered.
type PageRendered struct {
	SourcePath string `json:"source_path"`
	URL        string `json:"url"`
	Layout     string `json:"layout"`
	Output     string `json:"output"`
}

// PageSkipped is the payload of TypePageSkipped.
type PageSkipped struct {
	SourcePath string `json:"source_path"`
	Reason     string `json:"reason"`
}

// PagePruned is the payload of TypePagePruned.
type PagePruned struct {
	Slug string `json:"slug"`
	Path string `json:"path"`
}

// BuildCompleted is the payload of TypeBuildCompleted.
type BuildCompleted struct {
	Mode       string `json:"mode"`
	Status     string `json:"status"`
	Rendered   int    `json:"rendered"`
	Skipped    int    `json:"skipped"`
	Pruned     int    `json:"pruned"`
	Tags       int    `json:"tags"`
	DurationMS int64  `json:"duration_ms"`
}

// BuildFailed is the payload of TypeBuildFailed.
type BuildFailed struct {
	Mode  string `json:"mode"`
	Error string `json:"error"`
}

var payloadTypes = map[string]func() any{
	TypeBuildStarted:   func() any { return &BuildStarted{} },
	TypePageRendered:   func() any { return &PageRendered{} },
	TypePageSkipped:    func() any { return &PageSkipped{} },
	TypePagePruned:     func() any { return &PagePruned{} },
	TypeBuildCompleted: func() any { return &BuildCompleted{} },
	TypeBuildFailed:    func() any { return &BuildFailed{} },
}

// NewEvent builds an event for buildID with a JSON payload.
func NewEvent(buildID, eventType string, payload any) (Event, error) {
	if _, ok := payloadTypes[eventType]; !ok {
		return Event{}, fmt.Errorf("unknown event type %q", eventType)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Event{
		BuildID:   buildID,
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   data,
	}, nil
}

// DecodePayload returns the typed payload of a known event type.
func DecodePayload(e Event) (any, error) {
	factory, ok := payloadTypes[e.Type]
	if !ok {
		return nil, fmt.Errorf("unknown event type %q", e.Type)
	}
	v := factory()
	if err := e.Decode(v); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return v, nil
}
