// Package task owns the canonical task collection: mutation, trash,
// selection and the filtered/sorted views derived from it.
package task

import (
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskpad/internal/storage"
)

// Store is the persistence contract the Manager writes through to.
type Store interface {
	Load(key string, dst any) bool
	Save(key string, v any)
	Remove(key string)
}

// Manager holds the live collection and the trash. Every successful
// mutation writes the affected collections back to the Store before it
// returns. A Manager is meant to be driven from a single event loop and is
// not safe for concurrent use.
type Manager struct {
	store Store
	log   *slog.Logger
	now   func() time.Time
	newID func() string

	tasks    []Task
	trash    []Trashed
	selected map[string]struct{}
}

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithIDs(newID func() string) Option {
	return func(m *Manager) { m.newID = newID }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// NewManager hydrates the collection and the trash from store.
func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		now:      func() time.Time { return time.Now().UTC().Round(0) },
		newID:    uuid.NewString,
		selected: map[string]struct{}{},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.log == nil {
		m.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var tasks []Task
	store.Load(storage.KeyTasks, &tasks)
	var trash []Trashed
	store.Load(storage.KeyTrash, &trash)
	m.hydrate(tasks, trash)
	return m
}

// hydrate repairs what an older or hand-edited store may hold: missing or
// duplicate ids and unsorted tag lists.
func (m *Manager) hydrate(tasks []Task, trash []Trashed) {
	seen := map[string]struct{}{}
	m.tasks = make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID == "" {
			t.ID = m.uniqueID(seen)
		}
		if _, dup := seen[t.ID]; dup {
			m.log.Warn("dropping task with duplicate id", "id", t.ID)
			continue
		}
		seen[t.ID] = struct{}{}
		t.Tags = NormalizeTags(t.Tags)
		m.tasks = append(m.tasks, t)
	}
	m.trash = make([]Trashed, 0, len(trash))
	for _, t := range trash {
		if _, dup := seen[t.ID]; dup || t.ID == "" {
			continue
		}
		seen[t.ID] = struct{}{}
		m.trash = append(m.trash, t)
	}
}

func (m *Manager) uniqueID(taken map[string]struct{}) string {
	for {
		id := m.newID()
		if _, ok := taken[id]; ok {
			continue
		}
		if m.index(id) >= 0 || m.trashIndex(id) >= 0 {
			continue
		}
		return id
	}
}

func (m *Manager) index(id string) int {
	return slices.IndexFunc(m.tasks, func(t Task) bool { return t.ID == id })
}

func (m *Manager) trashIndex(id string) int {
	return slices.IndexFunc(m.trash, func(t Trashed) bool { return t.ID == id })
}

func (m *Manager) persistTasks() {
	m.store.Save(storage.KeyTasks, m.tasks)
}

func (m *Manager) persistTrash() {
	m.store.Save(storage.KeyTrash, m.trash)
}

// Tasks returns a copy of the collection in canonical order.
func (m *Manager) Tasks() []Task {
	out := make([]Task, len(m.tasks))
	for i, t := range m.tasks {
		out[i] = t.clone()
	}
	return out
}

func (m *Manager) Len() int { return len(m.tasks) }

func (m *Manager) Get(id string) (Task, bool) {
	i := m.index(id)
	if i < 0 {
		return Task{}, false
	}
	return m.tasks[i].clone(), true
}

// View derives a display list from the collection.
func (m *Manager) View(f Filter) []Task {
	return Project(m.tasks, f)
}

// AddOrUpdate creates a task when p.ID is empty and merges p onto the
// existing task otherwise. It reports false, changing nothing, when the
// resulting text would be empty or p.ID names no live task.
func (m *Manager) AddOrUpdate(p Patch) (Task, bool) {
	if p.ID == "" {
		return m.add(p)
	}
	i := m.index(p.ID)
	if i < 0 {
		return Task{}, false
	}
	merged := m.tasks[i].clone()
	m.apply(&merged, p)
	if strings.TrimSpace(merged.Text) == "" {
		return Task{}, false
	}
	m.tasks[i] = merged
	m.persistTasks()
	return merged.clone(), true
}

func (m *Manager) add(p Patch) (Task, bool) {
	if p.Text == nil || strings.TrimSpace(*p.Text) == "" {
		return Task{}, false
	}
	t := Task{
		ID:        m.uniqueID(nil),
		CreatedAt: m.now(),
	}
	m.apply(&t, p)
	m.tasks = append(m.tasks, t)
	m.persistTasks()
	return t.clone(), true
}

func (m *Manager) apply(t *Task, p Patch) {
	if p.Text != nil {
		t.Text = *p.Text
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Completed != nil {
		m.setCompleted(t, *p.Completed)
	}
	if p.Alarm != nil {
		t.Alarm = *p.Alarm
	}
	if p.Link != nil {
		t.Link = *p.Link
	}
	if p.Tags != nil {
		t.Tags = NormalizeTags(*p.Tags)
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
}

func (m *Manager) setCompleted(t *Task, done bool) {
	switch {
	case done && !t.Completed:
		at := m.now()
		t.CompletedAt = &at
	case !done:
		t.CompletedAt = nil
	}
	t.Completed = done
}

// ToggleComplete flips the completed flag of id.
func (m *Manager) ToggleComplete(id string) bool {
	i := m.index(id)
	if i < 0 {
		return false
	}
	m.setCompleted(&m.tasks[i], !m.tasks[i].Completed)
	m.persistTasks()
	return true
}

// Delete removes id permanently.
func (m *Manager) Delete(id string) bool {
	i := m.index(id)
	if i < 0 {
		return false
	}
	m.tasks = slices.Delete(m.tasks, i, i+1)
	delete(m.selected, id)
	m.persistTasks()
	return true
}

// BulkDeleteToTrash moves every live task named in ids to the trash and
// clears the selection. Unknown ids are skipped. It returns how many tasks
// were moved.
func (m *Manager) BulkDeleteToTrash(ids []string) int {
	clear(m.selected)
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	now := m.now()
	kept := make([]Task, 0, len(m.tasks))
	moved := 0
	for _, t := range m.tasks {
		if _, ok := want[t.ID]; !ok {
			kept = append(kept, t)
			continue
		}
		m.trash = append(m.trash, Trashed{Task: t, DeletedAt: now})
		moved++
	}
	if moved == 0 {
		return 0
	}
	m.tasks = kept
	m.persistTasks()
	m.persistTrash()
	return moved
}

// Reorder replaces the collection with ids' order and assigns dense order
// values 0..n-1. ids must be a permutation of the live ids; anything else
// is rejected without change.
func (m *Manager) Reorder(ids []string) bool {
	if len(ids) != len(m.tasks) {
		return false
	}
	byID := make(map[string]Task, len(m.tasks))
	for _, t := range m.tasks {
		byID[t.ID] = t
	}
	next := make([]Task, 0, len(ids))
	for i, id := range ids {
		t, ok := byID[id]
		if !ok {
			return false
		}
		delete(byID, id)
		t.Order = Ptr(i)
		next = append(next, t)
	}
	m.tasks = next
	m.persistTasks()
	return true
}

// Move resolves one drag gesture: id takes targetID's place in manual
// order and everything between shifts by one.
func (m *Manager) Move(id, targetID string) bool {
	ids := ManualOrder(m.tasks)
	from := slices.Index(ids, id)
	to := slices.Index(ids, targetID)
	if from < 0 || to < 0 {
		return false
	}
	if from == to {
		return true
	}
	ids = slices.Delete(ids, from, from+1)
	ids = slices.Insert(ids, to, id)
	return m.Reorder(ids)
}

// Trash returns a copy of the trashed tasks, oldest deletion first.
func (m *Manager) Trash() []Trashed {
	out := make([]Trashed, len(m.trash))
	for i, t := range m.trash {
		out[i] = Trashed{Task: t.Task.clone(), DeletedAt: t.DeletedAt}
	}
	return out
}

// Restore moves trashed tasks back to the end of the collection. Restored
// tasks lose their manual order and sort after ordered ones.
func (m *Manager) Restore(ids []string) int {
	restored := 0
	for _, id := range ids {
		j := m.trashIndex(id)
		if j < 0 || m.index(id) >= 0 {
			continue
		}
		t := m.trash[j].Task
		t.Order = nil
		m.trash = slices.Delete(m.trash, j, j+1)
		m.tasks = append(m.tasks, t)
		restored++
	}
	if restored > 0 {
		m.persistTasks()
		m.persistTrash()
	}
	return restored
}

// PurgeTrash empties the trash for good and drops its stored key.
func (m *Manager) PurgeTrash() int {
	n := len(m.trash)
	if n == 0 {
		return 0
	}
	m.trash = []Trashed{}
	m.store.Remove(storage.KeyTrash)
	return n
}

// Tags lists every distinct tag in the collection together with extra,
// sorted.
func (m *Manager) Tags(extra ...string) []string {
	all := slices.Clone(extra)
	for _, t := range m.tasks {
		all = append(all, t.Tags...)
	}
	return NormalizeTags(all)
}

// ToggleSelect flips id's membership in the selection and reports the new
// state. Unknown ids are never selected.
func (m *Manager) ToggleSelect(id string) bool {
	if _, ok := m.selected[id]; ok {
		delete(m.selected, id)
		return false
	}
	if m.index(id) < 0 {
		return false
	}
	m.selected[id] = struct{}{}
	return true
}

func (m *Manager) IsSelected(id string) bool {
	_, ok := m.selected[id]
	return ok
}

// Selected returns the selected ids in canonical order.
func (m *Manager) Selected() []string {
	var out []string
	for _, t := range m.tasks {
		if _, ok := m.selected[t.ID]; ok {
			out = append(out, t.ID)
		}
	}
	return out
}

func (m *Manager) ClearSelection() {
	clear(m.selected)
}

// TrashSelected moves the selection to the trash.
func (m *Manager) TrashSelected() int {
	return m.BulkDeleteToTrash(m.Selected())
}
