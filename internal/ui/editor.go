package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"taskpad/internal/form"
	"taskpad/internal/richtext"
	"taskpad/internal/task"
)

type field int

const (
	fieldTitle field = iota
	fieldDescription
	fieldAlarm
	fieldLink
	fieldTags
	fieldPriority
	fieldCount
)

func (f field) label() string {
	return [...]string{"title", "description", "alarm (YYYY-MM-DDTHH:MM)", "link", "tags", "priority (high/medium/low/none)"}[f]
}

// editor holds the widgets behind a form.Session. Widget values are pushed
// into the session whenever focus leaves a field.
type editor struct {
	index field
	input textinput.Model
	desc  textarea.Model
	// descSource is what the description widget showed on open; unchanged
	// input is handed back as-is so re-editing never re-renders HTML.
	descSource string
}

func (m Model) openEditor() (tea.Model, tea.Cmd) {
	ti := textinput.New()
	ti.CharLimit = 512
	ti.Width = 40
	if m.width > 0 {
		ti.Width = m.width - 10
	}
	d := m.session.Draft()
	ed := &editor{input: ti, desc: newTextarea(), descSource: d.Description}
	ed.desc.SetValue(d.Description)
	if m.width > 0 {
		ed.resize(m.width)
	}
	m.editor = ed
	m.mode = modeForm
	m.loadField()
	m.status = "tab/shift+tab to move between fields • ctrl+s to save • esc to cancel"
	return m, nil
}

func (e *editor) resize(width int) {
	e.input.Width = width - 10
	e.desc.SetWidth(max(width-4, 20))
}

// loadField shows the session's value for the focused field.
func (m *Model) loadField() {
	ed := m.editor
	d := m.session.Draft()
	ed.input.Blur()
	ed.desc.Blur()
	ed.input.Placeholder = ed.index.label()
	switch ed.index {
	case fieldTitle:
		ed.input.SetValue(d.Title)
	case fieldDescription:
		ed.desc.Focus()
		return
	case fieldAlarm:
		ed.input.SetValue(d.Alarm)
	case fieldLink:
		ed.input.SetValue(d.Link)
	case fieldTags:
		ed.input.SetValue("")
	case fieldPriority:
		ed.input.SetValue(d.Priority.String())
	}
	ed.input.CursorEnd()
	ed.input.Focus()
}

// storeField pushes the focused widget's value into the session.
func (m *Model) storeField() error {
	ed := m.editor
	switch ed.index {
	case fieldTitle:
		m.session.SetTitle(ed.input.Value())
	case fieldDescription:
		raw := ed.desc.Value()
		if raw == ed.descSource {
			m.session.SetDescription(raw)
			return nil
		}
		html, err := richtext.Normalize(raw)
		if err != nil {
			return fmt.Errorf("description: %w", err)
		}
		m.session.SetDescription(html)
	case fieldAlarm:
		m.session.SetAlarm(ed.input.Value())
	case fieldLink:
		m.session.SetLink(ed.input.Value())
	case fieldTags:
		if v := strings.TrimSpace(ed.input.Value()); v != "" {
			return m.editTag(v)
		}
	case fieldPriority:
		p, ok := task.ParsePriority(ed.input.Value())
		if !ok {
			return fmt.Errorf("unknown priority %q", ed.input.Value())
		}
		m.session.SetPriority(p)
	}
	return nil
}

// editTag removes a tag the draft already has and adds any other.
func (m *Model) editTag(name string) error {
	if m.session.HasTag(name) {
		m.session.ToggleTag(name)
		m.editor.input.SetValue("")
		return nil
	}
	if err := m.session.AddTag(name); err != nil {
		return err
	}
	m.editor.input.SetValue("")
	return nil
}

func (m Model) updateFormMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ed := m.editor
	switch msg.String() {
	case "esc":
		m.session.Cancel()
		m.closeEditor()
		m.status = "Edit cancelled"
		return m, nil
	case "tab", "shift+tab":
		if err := m.storeField(); err != nil {
			m.status = err.Error()
			return m, nil
		}
		step := field(1)
		if msg.String() == "shift+tab" {
			step = fieldCount - 1
		}
		ed.index = (ed.index + step) % fieldCount
		m.loadField()
		m.status = fmt.Sprintf("Editing %s (field %d of %d)", ed.index.label(), ed.index+1, fieldCount)
		return m, nil
	case "ctrl+s":
		return m.commit()
	case "enter":
		if ed.index == fieldDescription {
			break
		}
		if ed.index == fieldTags && strings.TrimSpace(ed.input.Value()) != "" {
			if err := m.storeField(); err != nil {
				m.status = err.Error()
			} else {
				m.status = "Tags: " + emptyPlaceholder(strings.Join(m.session.Draft().Tags, ", "))
			}
			return m, nil
		}
		return m.commit()
	}

	var cmd tea.Cmd
	if ed.index == fieldDescription {
		ed.desc, cmd = ed.desc.Update(msg)
	} else {
		ed.input, cmd = ed.input.Update(msg)
	}
	return m, cmd
}

func (m Model) commit() (tea.Model, tea.Cmd) {
	if err := m.storeField(); err != nil {
		m.status = err.Error()
		return m, nil
	}
	editing := m.session.State() == form.Editing
	saved, err := m.session.Commit()
	switch {
	case errors.Is(err, form.ErrEmptyDescription):
		m.status = "Description cannot be empty"
		return m, nil
	case err != nil:
		m.status = fmt.Sprintf("save failed: %v", err)
		return m, nil
	}
	m.closeEditor()
	m.refresh()
	m.focusID(saved.ID)
	if editing {
		m.saved("Updated task")
	} else {
		m.saved("Added task")
	}
	return m, nil
}

func (m *Model) closeEditor() {
	m.editor = nil
	m.mode = modeList
}

func (m Model) renderEditor() string {
	ed := m.editor
	d := m.session.Draft()
	values := []string{
		d.Title,
		preview(d.Description, 60),
		d.Alarm,
		d.Link,
		strings.Join(d.Tags, ", "),
		d.Priority.String(),
	}
	var b strings.Builder
	title := "New task"
	if m.session.State() == form.Editing {
		title = "Edit task"
	}
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n\n")
	for i := field(0); i < fieldCount; i++ {
		prefix := " "
		if i == ed.index {
			prefix = ">"
		}
		b.WriteString(fmt.Sprintf("%s %-32s : %s\n", prefix, i.label(), emptyPlaceholder(values[i])))
	}
	b.WriteString("\n")
	if ed.index == fieldDescription {
		b.WriteString(ed.desc.View())
	} else {
		b.WriteString(ed.input.View())
	}
	if ed.index == fieldTags {
		b.WriteString("\n")
		b.WriteString(faintStyle.Render("available: " + strings.Join(m.mgr.Tags(m.cfg.DefaultTags...), ", ")))
	}
	return b.String()
}
