package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

func TestGetReturnsDefaultWhenAbsent(t *testing.T) {
	a := New(NewMemory(), nil)
	got := Get(a, "missing", []record{{ID: "d"}})
	assert.Equal(t, []record{{ID: "d"}}, got)
	assert.NoError(t, a.Err())
}

func TestSetGetRoundTripsStructuredValues(t *testing.T) {
	a := New(NewMemory(), nil)
	in := []record{{ID: "t1", Text: "hi"}, {ID: "t2", Text: "<b>there</b>"}}
	Set(a, KeyTasks, in)
	assert.Equal(t, in, Get(a, KeyTasks, []record(nil)))
}

func TestStringsAreStoredVerbatim(t *testing.T) {
	mem := NewMemory()
	a := New(mem, nil)
	Set(a, "user", "ada")

	raw, ok, err := mem.Read("user")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ada", raw)
	assert.Equal(t, "ada", Get(a, "user", ""))
}

func TestDecodeFailureFallsBackToDefault(t *testing.T) {
	mem := NewMemory()
	require.NoError(t, mem.Write(KeyTasks, "{not json"))
	a := New(mem, nil)

	got := Get(a, KeyTasks, []record{})
	assert.Empty(t, got)
	assert.Error(t, a.Err())
}

func TestWriteFailureIsSwallowed(t *testing.T) {
	mem := NewMemory()
	mem.Fail = true
	a := New(mem, nil)

	Set(a, KeyTasks, []record{{ID: "x"}})
	assert.ErrorIs(t, a.Err(), ErrUnavailable)
	assert.Equal(t, "fallback", Get(a, "k", "fallback"))

	mem.Fail = false
	Set(a, KeyTasks, []record{{ID: "x"}})
	assert.NoError(t, a.Err())
}

func TestRemoveFallsBackToDefault(t *testing.T) {
	mem := NewMemory()
	a := New(mem, nil)
	Set(a, KeyTrash, []record{{ID: "x"}})
	a.Remove(KeyTrash)
	assert.Nil(t, Get(a, KeyTrash, []record(nil)))
	assert.NoError(t, a.Err())

	mem.Fail = true
	a.Remove(KeyTasks)
	assert.ErrorIs(t, a.Err(), ErrUnavailable)
	mem.Fail = false
	a.Remove(KeyTasks)
	assert.NoError(t, a.Err())
}

func TestSQLiteBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "todo.db")
	db, err := OpenSQLite(path)
	require.NoError(t, err)

	_, ok, err := db.Read(KeyTasks)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, db.Write(KeyTasks, "[]"))
	require.NoError(t, db.Write(KeyTasks, `[{"id":"t1"}]`))
	require.NoError(t, db.Write(KeyTrash, "[]"))

	v, ok, err := db.Read(KeyTasks)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"t1"}]`, v)

	require.NoError(t, db.Delete(KeyTrash))
	_, ok, err = db.Read(KeyTrash)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, db.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()
	a := New(reopened, nil)
	assert.Equal(t, []record{{ID: "t1"}}, Get(a, KeyTasks, []record(nil)))
}

func TestOpenSQLiteRejectsEmptyPath(t *testing.T) {
	_, err := OpenSQLite("")
	assert.Error(t, err)
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "file:memdb?mode=memory", sqliteDSN("file:memdb?mode=memory"))
	dsn := sqliteDSN(filepath.Join(t.TempDir(), "a.db"))
	assert.Contains(t, dsn, "file://")
	assert.Contains(t, dsn, "mode=rwc")
}
