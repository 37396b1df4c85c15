package task

import (
	"cmp"
	"slices"
	"strings"
)

type Completion string

const (
	CompletionAll       Completion = "all"
	CompletionActive    Completion = "active"
	CompletionCompleted Completion = "completed"
)

func ParseCompletion(s string) (Completion, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return CompletionAll, true
	case "active", "pending", "open":
		return CompletionActive, true
	case "completed", "done":
		return CompletionCompleted, true
	}
	return CompletionAll, false
}

type SortMode string

const (
	// SortNone keeps canonical order.
	SortNone     SortMode = ""
	SortPriority SortMode = "priority"
	SortDate     SortMode = "date"
	SortManual   SortMode = "manual"
)

func ParseSort(s string) (SortMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return SortNone, true
	case "priority", "prio":
		return SortPriority, true
	case "date", "created", "newest":
		return SortDate, true
	case "manual", "order":
		return SortManual, true
	}
	return SortNone, false
}

// Filter is the transient view state. Zero values match everything.
type Filter struct {
	Search     string
	Completion Completion
	// Priority restricts to one level; PriorityNone means any.
	Priority Priority
	Tag      string
	Sort     SortMode
}

// Match reports whether t passes every predicate of f.
func (f Filter) Match(t Task) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(t.Title), q) && !strings.Contains(strings.ToLower(t.Text), q) {
			return false
		}
	}
	switch f.Completion {
	case CompletionActive:
		if t.Completed {
			return false
		}
	case CompletionCompleted:
		if !t.Completed {
			return false
		}
	}
	if f.Priority != PriorityNone && t.Priority != f.Priority {
		return false
	}
	if f.Tag != "" && !t.HasTag(f.Tag) {
		return false
	}
	return true
}

// Project filters and sorts tasks into a new slice. Sorting is stable, so
// ties keep their input order. tasks is not modified.
func Project(tasks []Task, f Filter) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			out = append(out, t.clone())
		}
	}
	if cmpFn := comparator(f.Sort); cmpFn != nil {
		slices.SortStableFunc(out, cmpFn)
	}
	return out
}

func comparator(mode SortMode) func(a, b Task) int {
	switch mode {
	case SortPriority:
		return func(a, b Task) int {
			return cmp.Compare(a.Priority.rank(), b.Priority.rank())
		}
	case SortDate:
		return func(a, b Task) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		}
	case SortManual:
		return compareOrder
	}
	return nil
}

// compareOrder puts ordered tasks first by ascending order; unordered
// tasks compare equal so they keep insertion order after them.
func compareOrder(a, b Task) int {
	switch {
	case a.Order == nil && b.Order == nil:
		return 0
	case a.Order == nil:
		return 1
	case b.Order == nil:
		return -1
	}
	return cmp.Compare(*a.Order, *b.Order)
}

// ManualOrder returns all ids in manual display order.
func ManualOrder(tasks []Task) []string {
	sorted := slices.Clone(tasks)
	slices.SortStableFunc(sorted, compareOrder)
	ids := make([]string, len(sorted))
	for i, t := range sorted {
		ids[i] = t.ID
	}
	return ids
}
