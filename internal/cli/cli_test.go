package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskpad/internal/storage"
)

type harness struct {
	t    *testing.T
	db   string
	args []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	db := filepath.Join(dir, "todo.db")
	return &harness{t: t, db: db, args: []string{
		"--config", filepath.Join(dir, "config.toml"),
		"--db", db,
	}}
}

func (h *harness) run(args ...string) (string, string, int) {
	h.t.Helper()
	var out, errOut bytes.Buffer
	code := run(append(args, h.args...), &out, &errOut)
	return out.String(), errOut.String(), code
}

func (h *harness) ok(args ...string) string {
	h.t.Helper()
	out, errOut, code := h.run(args...)
	require.Equal(h.t, 0, code, errOut)
	return out
}

// add creates a task and returns its short id.
func (h *harness) add(args ...string) string {
	h.t.Helper()
	out := h.ok(append([]string{"add"}, args...)...)
	fields := strings.Fields(out)
	require.NotEmpty(h.t, fields)
	return fields[0]
}

func lines(s string) []string {
	return strings.Split(strings.TrimSpace(s), "\n")
}

func TestAddAndList(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, "No tasks yet.\n", h.ok("list"))

	h.add("buy", "**milk**", "--title", "Groceries", "--tag", "Home", "--priority", "high")
	h.add("write report", "--tag", "Work")

	out := h.ok("list")
	got := lines(out)
	require.Len(t, got, 2)
	assert.Contains(t, got[0], "[ ] Groceries !high #Home")
	assert.Contains(t, got[1], "write report #Work")

	assert.Len(t, lines(h.ok("list", "--tag", "Work")), 1)
	assert.Contains(t, h.ok("list", "--search", "MILK"), "Groceries")
	assert.Equal(t, "No tasks match the current filters.\n", h.ok("list", "--status", "completed"))
}

func TestAddRejectsBadInput(t *testing.T) {
	h := newHarness(t)
	_, errOut, code := h.run("add", "x", "--priority", "urgent")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "unknown priority")

	_, errOut, code = h.run("add", "  ")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "description")
	assert.Equal(t, "No tasks yet.\n", h.ok("list"))
}

func TestEditKeepsUnsetFields(t *testing.T) {
	h := newHarness(t)
	id := h.add("draft", "--title", "Plan", "--tag", "Work", "--priority", "low")

	out := h.ok("edit", id, "--title", "Final plan", "--priority", "none")
	assert.Contains(t, out, "Final plan #Work")
	assert.NotContains(t, out, "!low")

	out = h.ok("edit", id, "--tag", "Home", "--tag", "Later")
	assert.Contains(t, out, "#Home #Later")
	assert.NotContains(t, out, "Work")
}

func TestDoneToggles(t *testing.T) {
	h := newHarness(t)
	id := h.add("laundry")
	assert.Contains(t, h.ok("done", id), "[x]")
	assert.Len(t, lines(h.ok("list", "--status", "completed")), 1)
	assert.Contains(t, h.ok("done", id), "[ ]")
}

func TestTrashRestorePurge(t *testing.T) {
	h := newHarness(t)
	a := h.add("one")
	b := h.add("two")

	assert.Equal(t, "Moved 2 to trash\n", h.ok("rm", a, b))
	assert.Equal(t, "No tasks yet.\n", h.ok("list"))
	assert.Len(t, lines(h.ok("trash")), 2)

	assert.Equal(t, "Restored 1\n", h.ok("restore", a))
	assert.Len(t, lines(h.ok("list")), 1)

	assert.Equal(t, "Purged 1\n", h.ok("purge"))
	assert.Equal(t, "Trash is empty.\n", h.ok("trash"))

	_, errOut, code := h.run("restore")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "--all")
}

func TestPermanentDelete(t *testing.T) {
	h := newHarness(t)
	id := h.add("gone")
	assert.Equal(t, "Deleted 1\n", h.ok("rm", "--permanent", id))
	assert.Equal(t, "Trash is empty.\n", h.ok("trash"))
}

func TestMoveAndReorder(t *testing.T) {
	h := newHarness(t)
	a := h.add("a")
	b := h.add("b")
	c := h.add("c")

	out := h.ok("move", c, a)
	got := lines(out)
	require.Len(t, got, 3)
	assert.True(t, strings.HasPrefix(got[0], c))
	assert.True(t, strings.HasPrefix(got[1], a))
	assert.True(t, strings.HasPrefix(got[2], b))

	got = lines(h.ok("list", "--sort", "manual"))
	assert.True(t, strings.HasPrefix(got[0], c))

	got = lines(h.ok("reorder", b, c, a))
	assert.True(t, strings.HasPrefix(got[0], b))
	assert.True(t, strings.HasPrefix(got[2], a))

	_, errOut, code := h.run("reorder", a, b)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "exactly once")
}

func TestUnknownID(t *testing.T) {
	h := newHarness(t)
	h.add("x")
	_, errOut, code := h.run("done", "zzzzzzzz")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "no task matches")
}

func TestTags(t *testing.T) {
	h := newHarness(t)
	h.add("x", "--tag", "Zebra")
	assert.Equal(t, []string{"Zebra"}, lines(h.ok("tags", "--used")))
	all := lines(h.ok("tags"))
	assert.Contains(t, all, "Zebra")
	assert.Contains(t, all, "Work")
}

func TestResolvePrefix(t *testing.T) {
	ids := []string{"abc1", "abc2", "abd"}
	id, err := resolve("abd", ids)
	require.NoError(t, err)
	assert.Equal(t, "abd", id)

	_, err = resolve("abc", ids)
	assert.ErrorIs(t, err, errAmbiguous)
	_, err = resolve("q", ids)
	assert.ErrorIs(t, err, errNoMatch)

	id, err = resolve("abc1", append(ids, "abc10"))
	require.NoError(t, err)
	assert.Equal(t, "abc1", id)
}

func TestDoneIgnoresRepeatedIDs(t *testing.T) {
	h := newHarness(t)
	id := h.add("laundry")
	out := h.ok("done", id, id)
	assert.Len(t, lines(out), 1)
	assert.Contains(t, out, "[x]")
}

func TestNoopCommandsIgnoreStartupReadErrors(t *testing.T) {
	h := newHarness(t)
	h.add("keep")

	db, err := storage.OpenSQLite(h.db)
	require.NoError(t, err)
	require.NoError(t, db.Write(storage.KeyTrash, "not json"))
	require.NoError(t, db.Close())

	assert.Equal(t, "Purged 0\n", h.ok("purge"))
	assert.Equal(t, "Restored 0\n", h.ok("restore", "--all"))
	assert.Equal(t, "Trash is empty.\n", h.ok("trash"))
	h.add("still works")
}
