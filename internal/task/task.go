package task

import (
	"slices"
	"strings"
	"time"

	"taskpad/internal/richtext"
)

// labelWidth caps the description preview used when a task has no title.
const labelWidth = 60

type Priority string

const (
	PriorityNone   Priority = ""
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ParsePriority accepts the priority names, case-insensitively. "none" and
// the empty string both mean no priority.
func ParsePriority(s string) (Priority, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return PriorityNone, true
	case "high", "h":
		return PriorityHigh, true
	case "medium", "med", "m":
		return PriorityMedium, true
	case "low", "l":
		return PriorityLow, true
	}
	return PriorityNone, false
}

// rank orders priorities high < medium < low < none.
func (p Priority) rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

func (p Priority) String() string {
	if p == PriorityNone {
		return "none"
	}
	return string(p)
}

type Task struct {
	ID          string     `json:"id"`
	Text        string     `json:"text"`
	Title       string     `json:"title,omitempty"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	Alarm       string     `json:"alarm,omitempty"`
	Link        string     `json:"link,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Priority    Priority   `json:"priority,omitempty"`
	Order       *int       `json:"order,omitempty"`
}

// Label is the one-line name shown in lists: the title, or a preview of
// the description when the title is blank.
func (t Task) Label() string {
	if strings.TrimSpace(t.Title) != "" {
		return t.Title
	}
	return richtext.Preview(t.Text, labelWidth)
}

// HasTag reports whether tag is in the task's tag set.
func (t Task) HasTag(tag string) bool {
	return slices.Contains(t.Tags, tag)
}

func (t Task) clone() Task {
	c := t
	if t.Tags != nil {
		c.Tags = slices.Clone(t.Tags)
	}
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		c.CompletedAt = &at
	}
	if t.Order != nil {
		o := *t.Order
		c.Order = &o
	}
	return c
}

// Trashed is a task moved out of the live collection.
type Trashed struct {
	Task
	DeletedAt time.Time `json:"deletedAt"`
}

// Patch is a partial task. A nil field means "keep the current value".
// An empty ID means "create".
type Patch struct {
	ID        string
	Text      *string
	Title     *string
	Completed *bool
	Alarm     *string
	Link      *string
	Tags      *[]string
	Priority  *Priority
}

func Ptr[T any](v T) *T { return &v }

// NormalizeTags trims labels, drops empties and duplicates, and sorts.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.Join(strings.Fields(tag), " ")
		if tag == "" {
			continue
		}
		out = append(out, tag)
	}
	slices.Sort(out)
	out = slices.Compact(out)
	if len(out) == 0 {
		return nil
	}
	return out
}
