package ui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"taskpad/internal/config"
	"taskpad/internal/form"
	"taskpad/internal/storage"
	"taskpad/internal/task"
)

type mode int

const (
	modeList mode = iota
	modeForm
	modeSearch
	modeTrash
)

type confirmKind int

const (
	confirmNone confirmKind = iota
	confirmDelete
	confirmPurge
)

type Model struct {
	mgr     *task.Manager
	store   *storage.Adapter
	cfg     config.Config
	session *form.Session

	filter  task.Filter
	visible []task.Task
	cursor  int
	mode    mode
	status  string

	confirm    confirmKind
	pendingDel *task.Task

	search textinput.Model
	editor *editor
	width  int
}

func New(mgr *task.Manager, store *storage.Adapter, cfg config.Config) Model {
	si := textinput.New()
	si.Placeholder = "Search title or description"
	si.CharLimit = 256
	si.Width = 40

	m := Model{
		mgr:     mgr,
		store:   store,
		cfg:     cfg,
		session: form.NewSession(mgr, cfg.Sanitizer()),
		filter:  cfg.Filter(),
		mode:    modeList,
		search:  si,
		status:  fmt.Sprintf("Press '%s' to add, '%s' to search, '%s' to quit.", cfg.Keys.Add, cfg.Keys.Search, cfg.Keys.Quit),
	}
	m.refresh()
	return m
}

func Run(mgr *task.Manager, store *storage.Adapter, cfg config.Config) error {
	program := tea.NewProgram(New(mgr, store, cfg), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.confirm != confirmNone {
			return m.updateConfirm(msg.String())
		}
		switch m.mode {
		case modeForm:
			return m.updateFormMode(msg)
		case modeSearch:
			return m.updateSearchMode(msg)
		case modeTrash:
			return m.updateTrashMode(msg.String())
		}
		return m.updateListMode(msg.String())
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.search.Width = msg.Width - 10
		if m.editor != nil {
			m.editor.resize(msg.Width)
		}
	}
	return m, nil
}

// refresh recomputes the projection and keeps the cursor in range.
func (m *Model) refresh() {
	m.visible = m.mgr.View(m.filter)
	m.cursor = clampCursor(m.cursor, len(m.visible))
}

func (m *Model) focusID(id string) {
	for i, t := range m.visible {
		if t.ID == id {
			m.cursor = i
			return
		}
	}
}

// saved sets the status line, noting when the write only reached memory.
func (m *Model) saved(msg string) {
	if err := m.store.Err(); err != nil {
		msg += fmt.Sprintf(" (not persisted: %v)", err)
	}
	m.status = msg
}

func (m Model) current() (task.Task, bool) {
	if len(m.visible) == 0 {
		return task.Task{}, false
	}
	return m.visible[clampCursor(m.cursor, len(m.visible))], true
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	k := m.cfg.Keys
	switch key {
	case "ctrl+c", k.Quit:
		return m, tea.Quit
	case k.Down, "down":
		m.cursor = clampCursor(m.cursor+1, len(m.visible))
	case k.Up, "up":
		m.cursor = clampCursor(m.cursor-1, len(m.visible))
	case k.Add:
		m.session.OpenCreate()
		return m.openEditor()
	case k.Edit:
		t, ok := m.current()
		if !ok {
			m.status = "No tasks to edit"
			return m, nil
		}
		m.session.OpenEdit(t)
		return m.openEditor()
	case k.Toggle:
		t, ok := m.current()
		if !ok {
			return m, nil
		}
		m.mgr.ToggleComplete(t.ID)
		m.refresh()
		m.saved("Toggled task")
	case k.Delete:
		t, ok := m.current()
		if !ok {
			return m, nil
		}
		m.confirm = confirmDelete
		m.pendingDel = &t
		m.status = fmt.Sprintf("Delete \"%s\" permanently? y/n", t.Label())
	case k.Select:
		t, ok := m.current()
		if !ok {
			return m, nil
		}
		m.mgr.ToggleSelect(t.ID)
		m.status = fmt.Sprintf("%d selected", len(m.mgr.Selected()))
	case k.Cancel, "esc":
		m.mgr.ClearSelection()
		m.status = "Selection cleared"
	case k.TrashSelected:
		ids := m.mgr.Selected()
		if len(ids) == 0 {
			if t, ok := m.current(); ok {
				ids = []string{t.ID}
			}
		}
		n := m.mgr.BulkDeleteToTrash(ids)
		m.refresh()
		m.saved(fmt.Sprintf("Moved %d to trash", n))
	case k.ShowTrash:
		m.mode = modeTrash
		m.cursor = 0
		m.status = fmt.Sprintf("Trash: %s restore • %s empty trash • %s back", k.Restore, k.Delete, k.Cancel)
	case k.Search:
		m.mode = modeSearch
		m.search.SetValue(m.filter.Search)
		m.search.Focus()
		m.status = "Search: enter to keep, esc to clear"
	case k.CycleFilter:
		m.filter.Completion = nextCompletion(m.filter.Completion)
		m.refresh()
		m.status = "Showing " + string(m.filter.Completion)
	case k.CyclePriority:
		m.filter.Priority = nextPriority(m.filter.Priority)
		m.refresh()
		m.status = "Priority filter: " + priorityFilterLabel(m.filter.Priority)
	case k.CycleTag:
		m.filter.Tag = nextTag(m.mgr.Tags(), m.filter.Tag)
		m.refresh()
		m.status = "Tag filter: " + emptyPlaceholder(m.filter.Tag)
	case k.SortPriority:
		m.setSort(task.SortPriority)
	case k.SortDate:
		m.setSort(task.SortDate)
	case k.SortManual:
		m.setSort(task.SortManual)
	case k.MoveUp:
		return m.move(-1)
	case k.MoveDown:
		return m.move(1)
	}
	return m, nil
}

func (m *Model) setSort(mode task.SortMode) {
	t, ok := m.current()
	m.filter.Sort = mode
	m.refresh()
	if ok {
		m.focusID(t.ID)
	}
	m.status = "Sorted by " + string(mode)
}

// move swaps the current task with its visible neighbour in manual order.
func (m Model) move(delta int) (tea.Model, tea.Cmd) {
	if m.filter.Sort != task.SortManual {
		m.status = fmt.Sprintf("Switch to manual sort (%s) to reorder", m.cfg.Keys.SortManual)
		return m, nil
	}
	t, ok := m.current()
	target := m.cursor + delta
	if !ok || target < 0 || target >= len(m.visible) {
		return m, nil
	}
	if !m.mgr.Move(t.ID, m.visible[target].ID) {
		m.status = "Reorder failed"
		return m, nil
	}
	m.refresh()
	m.focusID(t.ID)
	m.saved("Moved task")
	return m, nil
}

func (m Model) updateConfirm(key string) (tea.Model, tea.Cmd) {
	kind := m.confirm
	m.confirm = confirmNone
	pending := m.pendingDel
	m.pendingDel = nil
	switch key {
	case "y", "Y":
	default:
		m.status = "Cancelled"
		return m, nil
	}
	switch kind {
	case confirmDelete:
		if pending == nil || !m.mgr.Delete(pending.ID) {
			m.status = "Nothing to delete"
			return m, nil
		}
		m.refresh()
		m.saved("Deleted task")
	case confirmPurge:
		n := m.mgr.PurgeTrash()
		m.cursor = 0
		m.saved(fmt.Sprintf("Emptied trash (%d)", n))
	}
	return m, nil
}

func (m Model) updateSearchMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", m.cfg.Keys.Cancel:
		m.filter.Search = ""
		m.search.SetValue("")
		m.search.Blur()
		m.mode = modeList
		m.refresh()
		m.status = "Search cleared"
		return m, nil
	case "enter", m.cfg.Keys.Confirm:
		m.search.Blur()
		m.mode = modeList
		m.status = fmt.Sprintf("%d match", len(m.visible))
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.filter.Search = m.search.Value()
	m.refresh()
	return m, cmd
}

func (m Model) updateTrashMode(key string) (tea.Model, tea.Cmd) {
	k := m.cfg.Keys
	trash := m.mgr.Trash()
	switch key {
	case "ctrl+c":
		return m, tea.Quit
	case "esc", k.Cancel, k.ShowTrash, k.Quit:
		m.mode = modeList
		m.cursor = 0
		m.refresh()
		m.status = "Back to tasks"
	case k.Down, "down":
		m.cursor = clampCursor(m.cursor+1, len(trash))
	case k.Up, "up":
		m.cursor = clampCursor(m.cursor-1, len(trash))
	case k.Restore, k.Confirm:
		if len(trash) == 0 {
			return m, nil
		}
		t := trash[clampCursor(m.cursor, len(trash))]
		m.mgr.Restore([]string{t.ID})
		m.cursor = clampCursor(m.cursor, len(trash)-1)
		m.saved(fmt.Sprintf("Restored \"%s\"", t.Label()))
	case k.Delete:
		if len(trash) == 0 {
			return m, nil
		}
		m.confirm = confirmPurge
		m.status = fmt.Sprintf("Permanently delete %d trashed tasks? y/n", len(trash))
	}
	return m, nil
}

func nextCompletion(c task.Completion) task.Completion {
	order := []task.Completion{task.CompletionAll, task.CompletionActive, task.CompletionCompleted}
	return order[(slices.Index(order, c)+1)%len(order)]
}

func nextPriority(p task.Priority) task.Priority {
	order := []task.Priority{task.PriorityNone, task.PriorityHigh, task.PriorityMedium, task.PriorityLow}
	return order[(slices.Index(order, p)+1)%len(order)]
}

// nextTag walks "" -> tags[0] -> ... -> "" so the last step clears the filter.
func nextTag(tags []string, cur string) string {
	if len(tags) == 0 {
		return ""
	}
	i := slices.Index(tags, cur)
	if cur == "" {
		return tags[0]
	}
	if i < 0 || i+1 >= len(tags) {
		return ""
	}
	return tags[i+1]
}

func priorityFilterLabel(p task.Priority) string {
	if p == task.PriorityNone {
		return "all"
	}
	return string(p)
}

func emptyPlaceholder(v string) string {
	if strings.TrimSpace(v) == "" {
		return "(none)"
	}
	return v
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}

func newTextarea() textarea.Model {
	ta := textarea.New()
	ta.Placeholder = "Task description (markdown or HTML)"
	ta.ShowLineNumbers = false
	ta.SetWidth(60)
	ta.SetHeight(5)
	ta.CharLimit = 0
	return ta
}
