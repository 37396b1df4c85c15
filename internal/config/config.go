package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"taskpad/internal/sanitize"
	"taskpad/internal/task"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "todo.db"
	DefaultLogName        = "todo.log"
	appDir                = "todo"
)

var DefaultTags = []string{
	"Work", "Personal", "Family", "Health", "Finance", "Education", "Social", "Home", "Travel", "Shopping",
	"Today", "This Week", "This Month", "Urgent", "Later", "Scheduled",
	"Planning", "Research", "Review", "Follow-up", "Meeting", "Deadline",
}

type Keymap struct {
	Quit          string `toml:"quit"`
	Add           string `toml:"add"`
	Up            string `toml:"up"`
	Down          string `toml:"down"`
	Toggle        string `toml:"toggle"`
	Delete        string `toml:"delete"`
	Select        string `toml:"select"`
	TrashSelected string `toml:"trash_selected"`
	ShowTrash     string `toml:"show_trash"`
	Restore       string `toml:"restore"`
	Confirm       string `toml:"confirm"`
	Cancel        string `toml:"cancel"`
	Edit          string `toml:"edit"`
	Search        string `toml:"search"`
	CycleFilter   string `toml:"cycle_filter"`
	CyclePriority string `toml:"cycle_priority"`
	CycleTag      string `toml:"cycle_tag"`
	MoveUp        string `toml:"move_up"`
	MoveDown      string `toml:"move_down"`
	SortPriority  string `toml:"sort_priority"`
	SortDate      string `toml:"sort_date"`
	SortManual    string `toml:"sort_manual"`
}

type Config struct {
	DBPath              string   `toml:"db_path"`
	LogPath             string   `toml:"log_path"`
	DefaultFilter       string   `toml:"default_filter"`
	DefaultSort         string   `toml:"default_sort"`
	MaxTitleLength      int      `toml:"max_title_length"`
	SanitizeDescription bool     `toml:"sanitize_description"`
	DefaultTags         []string `toml:"default_tags"`
	Keys                Keymap   `toml:"keys"`
}

// ResolveConfigPath picks $TODO_CONFIG, then the XDG config dir, then
// ~/.config.
func ResolveConfigPath() string {
	if p := strings.TrimSpace(os.Getenv("TODO_CONFIG")); p != "" {
		return p
	}
	return filepath.Join(baseDir("XDG_CONFIG_HOME", ".config"), appDir, DefaultConfigFileName)
}

func dataDir() string {
	return filepath.Join(baseDir("XDG_DATA_HOME", filepath.Join(".local", "share")), appDir)
}

func baseDir(env, fallback string) string {
	if dir := os.Getenv(env); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, fallback)
}

// LoadOrCreate reads path, writing a default config there first if it does
// not exist yet.
func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.fillDefaults()
	return cfg, nil
}

func (c *Config) fillDefaults() {
	def := defaultConfig()
	if c.DBPath == "" {
		c.DBPath = def.DBPath
	}
	if c.LogPath == "" {
		c.LogPath = def.LogPath
	}
	if _, ok := task.ParseCompletion(c.DefaultFilter); !ok || c.DefaultFilter == "" {
		c.DefaultFilter = def.DefaultFilter
	}
	if _, ok := task.ParseSort(c.DefaultSort); !ok || c.DefaultSort == "" {
		c.DefaultSort = def.DefaultSort
	}
	if c.MaxTitleLength <= 0 {
		c.MaxTitleLength = def.MaxTitleLength
	}
	if c.DefaultTags == nil {
		c.DefaultTags = def.DefaultTags
	}
	c.Keys.fillFrom(def.Keys)
}

func (k *Keymap) fillFrom(def Keymap) {
	fields := []struct {
		dst *string
		src string
	}{
		{&k.Quit, def.Quit}, {&k.Add, def.Add}, {&k.Up, def.Up}, {&k.Down, def.Down},
		{&k.Toggle, def.Toggle}, {&k.Delete, def.Delete}, {&k.Select, def.Select},
		{&k.TrashSelected, def.TrashSelected}, {&k.ShowTrash, def.ShowTrash}, {&k.Restore, def.Restore},
		{&k.Confirm, def.Confirm}, {&k.Cancel, def.Cancel}, {&k.Edit, def.Edit},
		{&k.Search, def.Search}, {&k.CycleFilter, def.CycleFilter}, {&k.CyclePriority, def.CyclePriority},
		{&k.CycleTag, def.CycleTag}, {&k.MoveUp, def.MoveUp}, {&k.MoveDown, def.MoveDown},
		{&k.SortPriority, def.SortPriority}, {&k.SortDate, def.SortDate}, {&k.SortManual, def.SortManual},
	}
	for _, f := range fields {
		if *f.dst == "" {
			*f.dst = f.src
		}
	}
}

// Filter is the initial view state described by the config.
func (c Config) Filter() task.Filter {
	completion, _ := task.ParseCompletion(c.DefaultFilter)
	sort, _ := task.ParseSort(c.DefaultSort)
	return task.Filter{Completion: completion, Sort: sort}
}

func (c Config) Sanitizer() *sanitize.Sanitizer {
	return sanitize.New(c.MaxTitleLength, c.SanitizeDescription)
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig() Config {
	dir := dataDir()
	return Config{
		DBPath:         filepath.Join(dir, DefaultDBName),
		LogPath:        filepath.Join(dir, DefaultLogName),
		DefaultFilter:  string(task.CompletionAll),
		DefaultSort:    string(task.SortPriority),
		MaxTitleLength: sanitize.DefaultMaxTitle,
		DefaultTags:    slices.Clone(DefaultTags),
		Keys: Keymap{
			Quit:          "q",
			Add:           "a",
			Up:            "k",
			Down:          "j",
			Toggle:        " ",
			Delete:        "d",
			Select:        "x",
			TrashSelected: "D",
			ShowTrash:     "T",
			Restore:       "u",
			Confirm:       "enter",
			Cancel:        "esc",
			Edit:          "e",
			Search:        "/",
			CycleFilter:   "f",
			CyclePriority: "p",
			CycleTag:      "t",
			MoveUp:        "K",
			MoveDown:      "J",
			SortPriority:  "1",
			SortDate:      "2",
			SortManual:    "3",
		},
	}
}
