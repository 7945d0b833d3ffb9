package eventstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBuildID = "build-123"

func newStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func mustEvent(t *testing.T, buildID, typ string, payload any) Event {
	t.Helper()
	e, err := NewEvent(buildID, typ, payload)
	require.NoError(t, err)
	return e
}

func TestSQLiteStore_AppendAndRetrieve(t *testing.T) {
	store := newStore(t)
	ctx := t.Context()

	e := mustEvent(t, testBuildID, TypePageRendered, PageRendered{SourcePath: "content/about.md", URL: "/about", Layout: "main"})
	e.Metadata = map[string]string{"key": "value"}
	require.NoError(t, store.Append(ctx, e))

	events, err := store.GetByBuildID(ctx, testBuildID)
	require.NoError(t, err)
	require.Len(t, events, 1)

	got := events[0]
	assert.Equal(t, testBuildID, got.BuildID)
	assert.Equal(t, TypePageRendered, got.Type)
	assert.Equal(t, "value", got.Metadata["key"])
	assert.NotZero(t, got.ID)
	assert.WithinDuration(t, e.Timestamp, got.Timestamp, time.Second)

	payload, err := DecodePayload(got)
	require.NoError(t, err)
	assert.Equal(t, &PageRendered{SourcePath: "content/about.md", URL: "/about", Layout: "main"}, payload)
}

func TestSQLiteStore_RecentBuildIDs(t *testing.T) {
	store := newStore(t)
	ctx := t.Context()

	for _, id := range []string{"b1", "b2", "b3"} {
		require.NoError(t, store.Append(ctx, mustEvent(t, id, TypeBuildStarted, BuildStarted{Mode: "full"})))
	}
	require.NoError(t, store.Append(ctx, mustEvent(t, "b1", TypeBuildCompleted, BuildCompleted{Mode: "full"})))

	ids, err := store.RecentBuildIDs(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"b3", "b2"}, ids)

	all, err := store.RecentBuildIDs(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"b3", "b2", "b1"}, all)
}

func TestSQLiteStore_PersistsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Append(t.Context(), mustEvent(t, "b1", TypeBuildStarted, BuildStarted{Mode: "clean"})))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	events, err := reopened.GetByBuildID(t.Context(), "b1")
	require.NoError(t, err)
	require.Len(t, events, 1)
}

func TestNewEvent_UnknownType(t *testing.T) {
	_, err := NewEvent("b", "nope", nil)
	require.Error(t, err)
	_, err = DecodePayload(Event{Type: "nope"})
	require.Error(t, err)
}

func TestNopStore(t *testing.T) {
	var s Store = NopStore{}
	require.NoError(t, s.Append(t.Context(), Event{}))
	ids, err := s.RecentBuildIDs(t.Context(), 5)
	require.NoError(t, err)
	assert.Empty(t, ids)
	require.NoError(t, s.Close())
}
