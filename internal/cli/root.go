// Package cli wires config, storage and the task manager behind a cobra
// command tree. Running the root command with no subcommand opens the TUI.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"taskpad/internal/config"
	"taskpad/internal/storage"
	"taskpad/internal/task"
	"taskpad/internal/ui"
)

type app struct {
	configPath string
	dbPath     string

	cfg     config.Config
	store   *storage.Adapter
	tasks   *task.Manager
	log     *slog.Logger
	logFile io.Closer
}

func (a *app) open() error {
	path := a.configPath
	if path == "" {
		path = config.ResolveConfigPath()
	}
	cfg, err := config.LoadOrCreate(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.dbPath != "" {
		cfg.DBPath = a.dbPath
	}
	a.cfg = cfg

	a.log, a.logFile = openLogger(cfg.LogPath)
	db, err := storage.OpenSQLite(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	a.store = storage.New(db, a.log)
	a.tasks = task.NewManager(a.store, task.WithLogger(a.log))
	a.log.Info("opened", "db", cfg.DBPath, "tasks", a.tasks.Len())
	return nil
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Error("close database", "err", err)
		}
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
}

// openLogger logs to path, or nowhere if the file cannot be opened; the
// TUI owns the terminal so there is no stderr fallback.
func openLogger(path string) (*slog.Logger, io.Closer) {
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	if path == "" {
		return discard, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return discard, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return discard, nil
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelInfo})), f
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "todo",
		Short:         "A personal task list",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return ui.Run(a.tasks, a.store, a.cfg)
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default $TODO_CONFIG or ~/.config/todo/config.toml)")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "database path (overrides db_path)")

	root.AddCommand(
		newAddCmd(a),
		newListCmd(a),
		newEditCmd(a),
		newDoneCmd(a),
		newRmCmd(a),
		newTrashCmd(a),
		newRestoreCmd(a),
		newPurgeCmd(a),
		newMoveCmd(a),
		newReorderCmd(a),
		newTagsCmd(a),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	return run(os.Args[1:], os.Stdout, os.Stderr)
}

func run(args []string, stdout, stderr io.Writer) int {
	a := &app{}
	defer a.close()
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
