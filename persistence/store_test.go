package persistence

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelkey/paperflow/types"
)

func sampleEntries(sessionID string) []Entry {
	now := time.Now().UTC().Truncate(time.Second)
	return []Entry{
		{SessionID: sessionID, Seq: 1, Round: 1, Role: types.RoleMethods, Text: "methods text", Attempts: 1, CreatedAt: now},
		{SessionID: sessionID, Seq: 2, Round: 1, Role: types.RoleResults, Text: "results text", Attempts: 2, CreatedAt: now},
		{SessionID: sessionID, Seq: 3, Round: 2, Role: types.RoleResults, Text: "revised results", Revision: true, Attempts: 1, CreatedAt: now},
	}
}

func testStoreRoundTrip(t *testing.T, store TranscriptStore) {
	t.Helper()
	ctx := context.Background()

	entries := sampleEntries("session-a")
	for _, e := range entries {
		require.NoError(t, store.Append(ctx, e))
	}
	// A second session does not leak into the first.
	require.NoError(t, store.Append(ctx, Entry{SessionID: "session-b", Seq: 1, Round: 1, Role: types.RoleMethods, Text: "other"}))

	got, err := store.Load(ctx, "session-a")
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i := range entries {
		assert.Equal(t, entries[i].Seq, got[i].Seq)
		assert.Equal(t, entries[i].Role, got[i].Role)
		assert.Equal(t, entries[i].Text, got[i].Text)
		assert.Equal(t, entries[i].Revision, got[i].Revision)
		assert.Equal(t, entries[i].Attempts, got[i].Attempts)
	}

	missing, err := store.Load(ctx, "absent")
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	testStoreRoundTrip(t, store)
}

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()
	testStoreRoundTrip(t, store)
}

func TestFileStoreRequiresDir(t *testing.T) {
	_, err := NewFileStore("")
	assert.Error(t, err)
}

func TestFileStoreCreatesNestedDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	store, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Append(context.Background(), Entry{SessionID: "s", Seq: 1}))
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewFileStore(dir)
	require.NoError(t, err)
	for _, e := range sampleEntries("crashy") {
		require.NoError(t, store.Append(ctx, e))
	}
	require.NoError(t, store.Close())

	reopened, err := NewFileStore(dir)
	require.NoError(t, err)
	got, err := reopened.Load(ctx, "crashy")
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestEntryFromContribution(t *testing.T) {
	c := types.NewContribution(types.RoleDiscussion, 2, "interpretation")
	c.Revision = true
	c.Attempts = 3

	e := EntryFromContribution("sid", 7, c)
	assert.Equal(t, "sid", e.SessionID)
	assert.Equal(t, 7, e.Seq)
	assert.Equal(t, 2, e.Round)
	assert.Equal(t, types.RoleDiscussion, e.Role)
	assert.Equal(t, "interpretation", e.Text)
	assert.True(t, e.Revision)
	assert.Equal(t, 3, e.Attempts)
	assert.Equal(t, c.CreatedAt, e.CreatedAt)
}

func TestReplayRebuildsDrafts(t *testing.T) {
	contribs := Replay(sampleEntries("s"))
	require.Len(t, contribs, 3)
	for _, c := range contribs {
		assert.Equal(t, types.StatusDraft, c.Status)
		assert.NotEmpty(t, c.ID)
	}
	assert.Equal(t, []types.Role{types.RoleMethods}, contribs[1].References)
	assert.True(t, contribs[2].Revision)
	assert.Equal(t, 2, contribs[2].Round)
}

func TestFactorySelectsBackend(t *testing.T) {
	ctx := context.Background()

	s, err := NewStore(ctx, Options{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = NewStore(ctx, Options{Backend: BackendFile, Dir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	_, err = NewStore(ctx, Options{Backend: "cassandra"})
	assert.Error(t, err)
}
