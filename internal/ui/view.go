package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"taskpad/internal/richtext"
	"taskpad/internal/task"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	faintStyle  = lipgloss.NewStyle().Faint(true)
	doneStyle   = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	cursorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	tagStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	priorityStyles = map[task.Priority]lipgloss.Style{
		task.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		task.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		task.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
)

func preview(html string, limit int) string {
	return richtext.Preview(html, limit)
}

func (m Model) View() string {
	var b strings.Builder

	switch m.mode {
	case modeForm:
		b.WriteString(m.renderEditor())
	case modeTrash:
		b.WriteString(m.renderTrash())
	default:
		b.WriteString(headerStyle.Render("My Tasks"))
		b.WriteString("  ")
		b.WriteString(faintStyle.Render(m.filterSummary()))
		b.WriteString("\n\n")
		if len(m.visible) == 0 {
			if m.mgr.Len() == 0 {
				b.WriteString(fmt.Sprintf("No tasks yet. Press '%s' to add your first task.", m.cfg.Keys.Add))
			} else {
				b.WriteString("No tasks match the current filters.")
			}
		} else {
			b.WriteString(m.renderTaskList())
		}
		if m.mode == modeSearch {
			b.WriteString("\n\nSearch: ")
			b.WriteString(m.search.View())
		} else {
			b.WriteString("\n---\n")
			b.WriteString(m.renderDetail())
		}
	}

	b.WriteString("\n\n")
	b.WriteString(m.status)
	b.WriteString("\n")
	b.WriteString(faintStyle.Render(m.renderHelp()))
	return b.String()
}

func (m Model) filterSummary() string {
	parts := []string{
		"show:" + string(m.filter.Completion),
		"priority:" + priorityFilterLabel(m.filter.Priority),
		"sort:" + sortLabel(m.filter.Sort),
	}
	if m.filter.Tag != "" {
		parts = append(parts, "tag:"+m.filter.Tag)
	}
	if s := strings.TrimSpace(m.filter.Search); s != "" {
		parts = append(parts, fmt.Sprintf("search:%q", s))
	}
	if n := len(m.mgr.Selected()); n > 0 {
		parts = append(parts, fmt.Sprintf("selected:%d", n))
	}
	return strings.Join(parts, " • ")
}

func sortLabel(s task.SortMode) string {
	if s == task.SortNone {
		return "none"
	}
	return string(s)
}

func (m Model) renderTaskList() string {
	var b strings.Builder
	for i, t := range m.visible {
		cursor := " "
		if m.cursor == i && m.mode == modeList {
			cursor = cursorStyle.Render(">")
		}
		mark := " "
		if m.mgr.IsSelected(t.ID) {
			mark = "*"
		}
		checkbox := "[ ]"
		if t.Completed {
			checkbox = "[x]"
		}

		text := t.Label()
		if t.Completed {
			text = doneStyle.Render(text)
		}
		body := fmt.Sprintf("%s%s %s %s", cursor, mark, checkbox, text)
		if style, ok := priorityStyles[t.Priority]; ok {
			body += " " + style.Render("!"+string(t.Priority))
		}
		if len(t.Tags) > 0 {
			body += " " + tagStyle.Render("#"+strings.Join(t.Tags, " #"))
		}
		b.WriteString(body)
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderDetail() string {
	t, ok := m.current()
	if !ok {
		return "No task selected"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Title     : %s\n", emptyPlaceholder(t.Title)))
	b.WriteString(fmt.Sprintf("Details   : %s\n", emptyPlaceholder(preview(t.Text, 0))))
	b.WriteString(fmt.Sprintf("Priority  : %s\n", t.Priority))
	b.WriteString(fmt.Sprintf("Tags      : %s\n", emptyPlaceholder(strings.Join(t.Tags, ", "))))
	b.WriteString(fmt.Sprintf("Alarm     : %s\n", emptyPlaceholder(t.Alarm)))
	b.WriteString(fmt.Sprintf("Link      : %s\n", emptyPlaceholder(t.Link)))
	b.WriteString(fmt.Sprintf("Created   : %s\n", t.CreatedAt.Local().Format("2006-01-02 15:04")))
	if t.CompletedAt != nil {
		b.WriteString(fmt.Sprintf("Completed : %s\n", t.CompletedAt.Local().Format("2006-01-02 15:04")))
	}
	return b.String()
}

func (m Model) renderTrash() string {
	trash := m.mgr.Trash()
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Trash (%d)", len(trash))))
	b.WriteString("\n\n")
	if len(trash) == 0 {
		b.WriteString("Trash is empty.")
		return b.String()
	}
	for i, t := range trash {
		cursor := " "
		if m.cursor == i {
			cursor = cursorStyle.Render(">")
		}
		b.WriteString(fmt.Sprintf("%s %s %s\n", cursor, t.Label(),
			faintStyle.Render("deleted "+t.DeletedAt.Local().Format("2006-01-02 15:04"))))
	}
	return b.String()
}

func (m Model) renderHelp() string {
	k := m.cfg.Keys
	switch m.mode {
	case modeTrash:
		return fmt.Sprintf("%s/%s move • %s restore • %s empty trash • %s back", k.Up, k.Down, k.Restore, k.Delete, k.Cancel)
	case modeForm, modeSearch:
		return ""
	}
	return fmt.Sprintf("%s/%s move • %s add • %s edit • space toggle • %s delete • %s select • %s trash • %s view trash • %s search • %s status • %s priority • %s tag • %s/%s/%s sort • %s/%s reorder • %s quit",
		k.Up, k.Down, k.Add, k.Edit, k.Delete, k.Select, k.TrashSelected, k.ShowTrash, k.Search,
		k.CycleFilter, k.CyclePriority, k.CycleTag, k.SortPriority, k.SortDate, k.SortManual, k.MoveUp, k.MoveDown, k.Quit)
}
