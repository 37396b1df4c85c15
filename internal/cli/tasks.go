package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"taskpad/internal/form"
	"taskpad/internal/richtext"
	"taskpad/internal/task"
)

var (
	errNoMatch   = errors.New("no task matches")
	errAmbiguous = errors.New("id prefix is ambiguous")
)

const shortID = 8

// resolve expands an id prefix against ids. An exact match always wins.
func resolve(prefix string, ids []string) (string, error) {
	var found []string
	for _, id := range ids {
		if id == prefix {
			return id, nil
		}
		if strings.HasPrefix(id, prefix) {
			found = append(found, id)
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("%w %q", errNoMatch, prefix)
	case 1:
		return found[0], nil
	}
	return "", fmt.Errorf("%w: %q matches %d tasks", errAmbiguous, prefix, len(found))
}

func (a *app) taskIDs() []string {
	tasks := a.tasks.Tasks()
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids
}

func (a *app) trashIDs() []string {
	trash := a.tasks.Trash()
	ids := make([]string, len(trash))
	for i, t := range trash {
		ids[i] = t.ID
	}
	return ids
}

// uniq drops repeated ids, keeping the first occurrence.
func uniq(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (a *app) resolveAll(args []string, ids []string) ([]string, error) {
	out := make([]string, 0, len(args))
	for _, arg := range args {
		id, err := resolve(arg, ids)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

// persisted turns a swallowed storage failure into a command error so
// scripts notice that a change only lived in memory. Commands that wrote
// nothing report success even if an earlier read failed.
func (a *app) persisted(changed bool) error {
	if !changed {
		return nil
	}
	if err := a.store.Err(); err != nil {
		return fmt.Errorf("change not saved: %w", err)
	}
	return nil
}

func abbrev(id string) string {
	if len(id) > shortID {
		return id[:shortID]
	}
	return id
}

func printTask(w io.Writer, t task.Task) {
	check := "[ ]"
	if t.Completed {
		check = "[x]"
	}
	line := fmt.Sprintf("%s %s %s", abbrev(t.ID), check, t.Label())
	if t.Priority != task.PriorityNone {
		line += " !" + string(t.Priority)
	}
	if len(t.Tags) > 0 {
		line += " #" + strings.Join(t.Tags, " #")
	}
	fmt.Fprintln(w, line)
}

type fieldFlags struct {
	title    string
	tags     []string
	priority string
	alarm    string
	link     string
}

func (f *fieldFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "task title")
	cmd.Flags().StringSliceVar(&f.tags, "tag", nil, "tag (repeatable)")
	cmd.Flags().StringVar(&f.priority, "priority", "", "high, medium, low or none")
	cmd.Flags().StringVar(&f.alarm, "alarm", "", "reminder time, YYYY-MM-DDTHH:MM")
	cmd.Flags().StringVar(&f.link, "link", "", "related URL")
}

// apply copies the flags the user actually set into the session draft.
func (f *fieldFlags) apply(cmd *cobra.Command, s *form.Session) error {
	changed := cmd.Flags().Changed
	if changed("title") {
		s.SetTitle(f.title)
	}
	if changed("alarm") {
		s.SetAlarm(f.alarm)
	}
	if changed("link") {
		s.SetLink(f.link)
	}
	if changed("priority") {
		p, ok := task.ParsePriority(f.priority)
		if !ok {
			return fmt.Errorf("unknown priority %q", f.priority)
		}
		s.SetPriority(p)
	}
	if changed("tag") {
		for _, tag := range s.Draft().Tags {
			s.ToggleTag(tag)
		}
		for _, tag := range f.tags {
			if err := s.AddTag(tag); err != nil && !errors.Is(err, form.ErrDuplicateTag) {
				return fmt.Errorf("tag %q: %w", tag, err)
			}
		}
	}
	return nil
}

func description(args []string) (string, error) {
	return richtext.Normalize(strings.Join(args, " "))
}

func newAddCmd(a *app) *cobra.Command {
	var flags fieldFlags
	cmd := &cobra.Command{
		Use:   "add <description...>",
		Short: "Add a task; the description is markdown or HTML",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := form.NewSession(a.tasks, a.cfg.Sanitizer())
			s.OpenCreate()
			desc, err := description(args)
			if err != nil {
				return err
			}
			s.SetDescription(desc)
			if err := flags.apply(cmd, s); err != nil {
				return err
			}
			t, err := s.Commit()
			if err != nil {
				return err
			}
			printTask(cmd.OutOrStdout(), t)
			return a.persisted(true)
		},
	}
	flags.register(cmd)
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	var (
		flags fieldFlags
		text  string
	)
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a task; unset flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolve(args[0], a.taskIDs())
			if err != nil {
				return err
			}
			t, _ := a.tasks.Get(id)
			s := form.NewSession(a.tasks, a.cfg.Sanitizer())
			s.OpenEdit(t)
			if cmd.Flags().Changed("text") {
				desc, err := richtext.Normalize(text)
				if err != nil {
					return err
				}
				s.SetDescription(desc)
			}
			if err := flags.apply(cmd, s); err != nil {
				return err
			}
			saved, err := s.Commit()
			if err != nil {
				return err
			}
			printTask(cmd.OutOrStdout(), saved)
			return a.persisted(true)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&text, "text", "", "new description, markdown or HTML")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	var search, status, priority, tag, sortBy string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks matching the filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := a.cfg.Filter()
			f.Search = search
			f.Tag = tag
			changed := cmd.Flags().Changed
			if changed("status") {
				c, ok := task.ParseCompletion(status)
				if !ok {
					return fmt.Errorf("unknown status %q", status)
				}
				f.Completion = c
			}
			if changed("priority") {
				p, ok := task.ParsePriority(priority)
				if !ok {
					return fmt.Errorf("unknown priority %q", priority)
				}
				f.Priority = p
			}
			if changed("sort") {
				s, ok := task.ParseSort(sortBy)
				if !ok {
					return fmt.Errorf("unknown sort %q", sortBy)
				}
				f.Sort = s
			}
			out := cmd.OutOrStdout()
			visible := a.tasks.View(f)
			if len(visible) == 0 {
				if a.tasks.Len() == 0 {
					fmt.Fprintln(out, "No tasks yet.")
				} else {
					fmt.Fprintln(out, "No tasks match the current filters.")
				}
				return nil
			}
			for _, t := range visible {
				printTask(out, t)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "match title or description text")
	cmd.Flags().StringVar(&status, "status", "", "all, active or completed")
	cmd.Flags().StringVar(&priority, "priority", "", "high, medium or low")
	cmd.Flags().StringVar(&tag, "tag", "", "only tasks with this tag")
	cmd.Flags().StringVar(&sortBy, "sort", "", "priority, date, manual or none")
	return cmd
}

func newDoneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id...>",
		Short: "Toggle completion of tasks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := a.resolveAll(args, a.taskIDs())
			if err != nil {
				return err
			}
			changed := false
			for _, id := range uniq(ids) {
				if a.tasks.ToggleComplete(id) {
					changed = true
				}
				t, _ := a.tasks.Get(id)
				printTask(cmd.OutOrStdout(), t)
			}
			return a.persisted(changed)
		},
	}
}

func newRmCmd(a *app) *cobra.Command {
	var permanent bool
	cmd := &cobra.Command{
		Use:   "rm <id...>",
		Short: "Move tasks to the trash",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := a.resolveAll(args, a.taskIDs())
			if err != nil {
				return err
			}
			if permanent {
				n := 0
				for _, id := range ids {
					if a.tasks.Delete(id) {
						n++
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d\n", n)
				return a.persisted(n > 0)
			}
			n := a.tasks.BulkDeleteToTrash(ids)
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %d to trash\n", n)
			return a.persisted(n > 0)
		},
	}
	cmd.Flags().BoolVar(&permanent, "permanent", false, "delete without going through the trash")
	return cmd
}

func newTrashCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "trash",
		Short: "List trashed tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			trash := a.tasks.Trash()
			if len(trash) == 0 {
				fmt.Fprintln(out, "Trash is empty.")
				return nil
			}
			for _, t := range trash {
				fmt.Fprintf(out, "%s %s (deleted %s)\n", abbrev(t.ID), t.Label(), t.DeletedAt.Local().Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}

func newRestoreCmd(a *app) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "restore [id...]",
		Short: "Bring trashed tasks back",
		RunE: func(cmd *cobra.Command, args []string) error {
			var ids []string
			switch {
			case all:
				ids = a.trashIDs()
			case len(args) == 0:
				return errors.New("name tasks to restore or pass --all")
			default:
				var err error
				if ids, err = a.resolveAll(args, a.trashIDs()); err != nil {
					return err
				}
			}
			n := a.tasks.Restore(ids)
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %d\n", n)
			return a.persisted(n > 0)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "restore everything in the trash")
	return cmd
}

func newPurgeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Empty the trash for good",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n := a.tasks.PurgeTrash()
			fmt.Fprintf(cmd.OutOrStdout(), "Purged %d\n", n)
			return a.persisted(n > 0)
		},
	}
}

func newMoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <target-id>",
		Short: "Put a task where another one sits in manual order",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := a.resolveAll(args, a.taskIDs())
			if err != nil {
				return err
			}
			if !a.tasks.Move(ids[0], ids[1]) {
				return errors.New("move rejected")
			}
			return a.printManual(cmd, ids[0] != ids[1])
		},
	}
}

func newReorderCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <id...>",
		Short: "Set the full manual order; every task must be named once",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := a.resolveAll(args, a.taskIDs())
			if err != nil {
				return err
			}
			if !a.tasks.Reorder(ids) {
				return fmt.Errorf("reorder needs each of the %d tasks exactly once", a.tasks.Len())
			}
			return a.printManual(cmd, true)
		},
	}
}

func (a *app) printManual(cmd *cobra.Command, changed bool) error {
	for _, t := range a.tasks.View(task.Filter{Sort: task.SortManual}) {
		printTask(cmd.OutOrStdout(), t)
	}
	return a.persisted(changed)
}

func newTagsCmd(a *app) *cobra.Command {
	var used bool
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List the tag catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var tags []string
			if used {
				tags = a.tasks.Tags()
			} else {
				tags = a.tasks.Tags(a.cfg.DefaultTags...)
			}
			for _, tag := range tags {
				fmt.Fprintln(cmd.OutOrStdout(), tag)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&used, "used", false, "only tags that appear on tasks")
	return cmd
}
