package eventstore

import (
	"context"
)

// Store persists and retrieves events.
type Store interface {
	// Append adds an event to the store.
	Append(ctx context.Context, e Event) error

	// GetByBuildID retrieves all events of a build in append order.
	GetByBuildID(ctx context.Context, buildID string) ([]Event, error)

	// RecentBuildIDs returns up to limit build IDs, most recently started first.
	RecentBuildIDs(ctx context.Context, limit int) ([]string, error)

	// Close releases resources.
	Close() error
}

// NopStore discards events. It is used when build history is disabled.
type NopStore struct{}

func (NopStore) Append(context.Context, Event) error                   { return nil }
func (NopStore) GetByBuildID(context.Context, string) ([]Event, error) { return nil, nil }
func (NopStore) RecentBuildIDs(context.Context, int) ([]string, error) { return nil, nil }
func (NopStore) Close() error                                          { return nil }
