// Package form holds the draft for creating or editing one task.
package form

import (
	"errors"
	"slices"
	"strings"

	"taskpad/internal/sanitize"
	"taskpad/internal/task"
)

var (
	ErrNotOpen          = errors.New("form is not open")
	ErrEmptyDescription = errors.New("description cannot be empty")
	ErrEmptyTag         = errors.New("tag cannot be empty")
	ErrDuplicateTag     = errors.New("tag already added")
	ErrRejected         = errors.New("task was not saved")
)

type State int

const (
	Closed State = iota
	Creating
	Editing
)

func (s State) String() string {
	switch s {
	case Creating:
		return "creating"
	case Editing:
		return "editing"
	default:
		return "closed"
	}
}

// Committer receives the finished draft.
type Committer interface {
	AddOrUpdate(p task.Patch) (task.Task, bool)
}

// Draft is the uncommitted form content. Description is HTML.
type Draft struct {
	Title       string
	Description string
	Alarm       string
	Link        string
	Tags        []string
	Priority    task.Priority
}

type Session struct {
	committer Committer
	sanitizer *sanitize.Sanitizer

	state     State
	editingID string
	original  task.Task
	draft     Draft
}

func NewSession(c Committer, s *sanitize.Sanitizer) *Session {
	if s == nil {
		s = sanitize.New(0, false)
	}
	return &Session{committer: c, sanitizer: s}
}

func (s *Session) State() State { return s.state }

// EditingID is the id of the task being edited, or "" when creating.
func (s *Session) EditingID() string { return s.editingID }

// Draft returns a copy of the current draft.
func (s *Session) Draft() Draft {
	d := s.draft
	d.Tags = slices.Clone(s.draft.Tags)
	return d
}

// OpenCreate starts a blank draft.
func (s *Session) OpenCreate() {
	s.state = Creating
	s.editingID = ""
	s.original = task.Task{}
	s.draft = Draft{}
}

// OpenEdit hydrates the draft from t.
func (s *Session) OpenEdit(t task.Task) {
	s.state = Editing
	s.editingID = t.ID
	s.original = t
	s.draft = Draft{
		Title:       t.Title,
		Description: t.Text,
		Alarm:       t.Alarm,
		Link:        t.Link,
		Tags:        slices.Clone(t.Tags),
		Priority:    t.Priority,
	}
}

// Cancel discards the draft without touching the collection.
func (s *Session) Cancel() {
	s.reset()
}

func (s *Session) reset() {
	s.state = Closed
	s.editingID = ""
	s.original = task.Task{}
	s.draft = Draft{}
}

func (s *Session) SetTitle(v string)       { s.draft.Title = v }
func (s *Session) SetDescription(v string) { s.draft.Description = v }
func (s *Session) SetAlarm(v string)       { s.draft.Alarm = strings.TrimSpace(v) }
func (s *Session) SetLink(v string)        { s.draft.Link = strings.TrimSpace(v) }

func (s *Session) SetPriority(p task.Priority) { s.draft.Priority = p }

// HasTag reports whether the draft carries tag.
func (s *Session) HasTag(tag string) bool {
	return slices.Contains(s.draft.Tags, tag)
}

// ToggleTag adds tag when absent and removes it when present.
func (s *Session) ToggleTag(tag string) {
	tag = sanitize.Tag(tag)
	if tag == "" {
		return
	}
	if i := slices.Index(s.draft.Tags, tag); i >= 0 {
		s.draft.Tags = slices.Delete(s.draft.Tags, i, i+1)
		return
	}
	s.draft.Tags = append(s.draft.Tags, tag)
}

// AddTag adds a typed-in tag, rejecting blanks and duplicates.
func (s *Session) AddTag(raw string) error {
	tag := sanitize.Tag(raw)
	if tag == "" {
		return ErrEmptyTag
	}
	if s.HasTag(tag) {
		return ErrDuplicateTag
	}
	s.draft.Tags = append(s.draft.Tags, tag)
	return nil
}

// Patch builds the payload Commit would send. Empty optional fields are
// left out so a merge keeps what the task already had. Priority is the
// exception when editing: clearing it in the form clears it on the task.
func (s *Session) Patch() (task.Patch, error) {
	if s.state == Closed {
		return task.Patch{}, ErrNotOpen
	}
	desc := s.sanitizer.Description(s.draft.Description)
	if desc == "" {
		return task.Patch{}, ErrEmptyDescription
	}
	p := task.Patch{ID: s.editingID, Text: &desc}
	if title := s.sanitizer.Title(s.draft.Title); title != "" {
		p.Title = &title
	}
	if s.draft.Alarm != "" {
		p.Alarm = task.Ptr(s.draft.Alarm)
	}
	if s.draft.Link != "" {
		p.Link = task.Ptr(s.draft.Link)
	}
	if tags := task.NormalizeTags(s.draft.Tags); len(tags) > 0 {
		p.Tags = &tags
	}
	if s.draft.Priority != task.PriorityNone || (s.state == Editing && s.original.Priority != task.PriorityNone) {
		p.Priority = task.Ptr(s.draft.Priority)
	}
	return p, nil
}

// Commit validates the draft and hands it to the committer. On success the
// session closes; on failure the draft stays open for correction.
func (s *Session) Commit() (task.Task, error) {
	p, err := s.Patch()
	if err != nil {
		return task.Task{}, err
	}
	saved, ok := s.committer.AddOrUpdate(p)
	if !ok {
		return task.Task{}, ErrRejected
	}
	s.reset()
	return saved, nil
}
