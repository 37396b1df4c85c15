package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskpad/internal/sanitize"
	"taskpad/internal/storage"
	"taskpad/internal/task"
)

type recorder struct {
	patches []task.Patch
	ok      bool
}

func (r *recorder) AddOrUpdate(p task.Patch) (task.Task, bool) {
	r.patches = append(r.patches, p)
	return task.Task{ID: p.ID}, r.ok
}

func TestStateMachine(t *testing.T) {
	s := NewSession(&recorder{ok: true}, nil)
	assert.Equal(t, Closed, s.State())

	_, err := s.Commit()
	assert.ErrorIs(t, err, ErrNotOpen)

	s.OpenCreate()
	assert.Equal(t, Creating, s.State())
	s.Cancel()
	assert.Equal(t, Closed, s.State())

	s.OpenEdit(task.Task{ID: "t1", Text: "x"})
	assert.Equal(t, Editing, s.State())
	assert.Equal(t, "t1", s.EditingID())
	assert.Equal(t, "editing", s.State().String())
}

func TestOpenCreateClearsDraft(t *testing.T) {
	s := NewSession(&recorder{ok: true}, nil)
	s.OpenEdit(task.Task{ID: "t1", Text: "x", Title: "old", Tags: []string{"Work"}})
	s.OpenCreate()
	assert.Equal(t, Draft{}, s.Draft())
	assert.Empty(t, s.EditingID())
}

func TestOpenEditHydratesDraft(t *testing.T) {
	s := NewSession(&recorder{ok: true}, nil)
	s.OpenEdit(task.Task{
		ID: "t1", Text: "<p>x</p>", Title: "T", Alarm: "2026-10-20T09:00",
		Link: "https://a.example", Tags: []string{"Home", "Work"}, Priority: task.PriorityMedium,
	})
	assert.Equal(t, Draft{
		Title: "T", Description: "<p>x</p>", Alarm: "2026-10-20T09:00",
		Link: "https://a.example", Tags: []string{"Home", "Work"}, Priority: task.PriorityMedium,
	}, s.Draft())
}

func TestCommitRequiresDescription(t *testing.T) {
	r := &recorder{ok: true}
	s := NewSession(r, nil)
	s.OpenCreate()
	s.SetTitle("X")
	s.SetDescription("   ")

	_, err := s.Commit()
	assert.ErrorIs(t, err, ErrEmptyDescription)
	assert.Empty(t, r.patches)
	assert.Equal(t, Creating, s.State())
}

func TestCommitOmitsEmptyFields(t *testing.T) {
	r := &recorder{ok: true}
	s := NewSession(r, nil)
	s.OpenCreate()
	s.SetDescription("<b>do it</b>")

	_, err := s.Commit()
	require.NoError(t, err)
	require.Len(t, r.patches, 1)
	p := r.patches[0]
	assert.Empty(t, p.ID)
	assert.Equal(t, "<b>do it</b>", *p.Text)
	assert.Nil(t, p.Title)
	assert.Nil(t, p.Alarm)
	assert.Nil(t, p.Link)
	assert.Nil(t, p.Tags)
	assert.Nil(t, p.Priority)
	assert.Nil(t, p.Completed)
	assert.Equal(t, Closed, s.State())
	assert.Equal(t, Draft{}, s.Draft())
}

func TestCommitSanitizesTitleOnly(t *testing.T) {
	r := &recorder{ok: true}
	s := NewSession(r, sanitize.New(0, false))
	s.OpenCreate()
	s.SetTitle("  <i>Pay</i> rent ")
	s.SetDescription("<i>by friday</i>")
	s.SetLink(" https://bank.example ")
	s.SetAlarm("2026-10-31T08:00")
	require.NoError(t, s.AddTag("Finance"))
	s.SetPriority(task.PriorityHigh)

	_, err := s.Commit()
	require.NoError(t, err)
	p := r.patches[0]
	assert.Equal(t, "Pay rent", *p.Title)
	assert.Equal(t, "<i>by friday</i>", *p.Text)
	assert.Equal(t, "https://bank.example", *p.Link)
	assert.Equal(t, "2026-10-31T08:00", *p.Alarm)
	assert.Equal(t, []string{"Finance"}, *p.Tags)
	assert.Equal(t, task.PriorityHigh, *p.Priority)
}

func TestEditClearsPriorityExplicitly(t *testing.T) {
	r := &recorder{ok: true}
	s := NewSession(r, nil)
	s.OpenEdit(task.Task{ID: "t1", Text: "x", Priority: task.PriorityLow})
	s.SetPriority(task.PriorityNone)

	_, err := s.Commit()
	require.NoError(t, err)
	p := r.patches[0]
	assert.Equal(t, "t1", p.ID)
	require.NotNil(t, p.Priority)
	assert.Equal(t, task.PriorityNone, *p.Priority)
}

func TestRejectedCommitKeepsDraft(t *testing.T) {
	s := NewSession(&recorder{ok: false}, nil)
	s.OpenEdit(task.Task{ID: "gone", Text: "x"})
	_, err := s.Commit()
	assert.ErrorIs(t, err, ErrRejected)
	assert.Equal(t, Editing, s.State())
	assert.Equal(t, "x", s.Draft().Description)
}

func TestCancelNeverCommits(t *testing.T) {
	r := &recorder{ok: true}
	s := NewSession(r, nil)
	s.OpenCreate()
	s.SetDescription("draft")
	s.Cancel()
	assert.Empty(t, r.patches)
	assert.Equal(t, Draft{}, s.Draft())
}

func TestTagEditing(t *testing.T) {
	s := NewSession(&recorder{ok: true}, nil)
	s.OpenCreate()

	s.ToggleTag("Work")
	assert.True(t, s.HasTag("Work"))
	s.ToggleTag("Work")
	assert.False(t, s.HasTag("Work"))
	s.ToggleTag("   ")
	assert.Empty(t, s.Draft().Tags)

	assert.ErrorIs(t, s.AddTag("  "), ErrEmptyTag)
	require.NoError(t, s.AddTag("  Side   Project "))
	assert.ErrorIs(t, s.AddTag("Side Project"), ErrDuplicateTag)
	assert.Equal(t, []string{"Side Project"}, s.Draft().Tags)
}

func TestCommitThroughManager(t *testing.T) {
	m := task.NewManager(storage.New(storage.NewMemory(), nil))
	s := NewSession(m, nil)

	s.OpenCreate()
	s.SetTitle("Groceries")
	s.SetDescription("<ul><li>milk</li></ul>")
	s.ToggleTag("Shopping")
	created, err := s.Commit()
	require.NoError(t, err)

	s.OpenEdit(created)
	s.SetTitle("")
	s.SetLink("https://shop.example")
	updated, err := s.Commit()
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Groceries", updated.Title)
	assert.Equal(t, []string{"Shopping"}, updated.Tags)
	assert.Equal(t, "https://shop.example", updated.Link)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, 1, m.Len())
}

func TestUnchangedEditKeepsTitle(t *testing.T) {
	m := task.NewManager(storage.New(storage.NewMemory(), nil))
	s := NewSession(m, sanitize.New(0, false))

	for _, title := range []string{"&lt;b&gt;Budget&lt;/b&gt; review", "a < b", "Tom &amp; Jerry"} {
		s.OpenCreate()
		s.SetTitle(title)
		s.SetDescription("x")
		created, err := s.Commit()
		require.NoError(t, err)

		s.OpenEdit(created)
		updated, err := s.Commit()
		require.NoError(t, err)
		assert.Equal(t, created.Title, updated.Title, "title %q", title)
	}
	assert.Equal(t, "Budget review", m.Tasks()[0].Title)
}
