package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"vidhub/internal/errors"
	"vidhub/pkg/types"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration structure.
// It covers the worker process, gallery defaults, deferred-effect timing,
// session persistence, logging, metrics and the TUI theme.
type Config struct {
	Worker struct {
		Command         string        `yaml:"command"`          // Worker executable; empty runs "vidhub worker"
		Args            []string      `yaml:"args,omitempty"`   // Extra worker arguments
		LivenessTimeout time.Duration `yaml:"liveness_timeout"` // Silence during an import before the worker is unresponsive
		StopGrace       time.Duration `yaml:"stop_grace"`       // How long the worker may take to exit
		MediaPatterns   []string      `yaml:"media_patterns"`   // Globs of files to import
		DefaultInput    string        `yaml:"default_input"`    // Folder used when no dialog is available
		DefaultOutput   string        `yaml:"default_output"`
		Thumbnails      bool          `yaml:"thumbnails"`       // Render image thumbnails during import
		ThumbnailHeight int           `yaml:"thumbnail_height"` // Thumbnail height in pixels
		Opener          string        `yaml:"opener"`           // Program used to open files; empty picks the platform default
	} `yaml:"worker"`
	Gallery struct {
		PreviewSize int        `yaml:"preview_size"`
		PreviewMin  int        `yaml:"preview_min"`
		PreviewMax  int        `yaml:"preview_max"`
		PreviewStep int        `yaml:"preview_step"`
		DefaultView types.View `yaml:"default_view"`
		WordLimit   int        `yaml:"word_limit"` // Entries in the word frequency list
	} `yaml:"gallery"`
	Timing struct {
		SubscribeDelay       time.Duration `yaml:"subscribe_delay"`
		SettingsHideDelay    time.Duration `yaml:"settings_hide_delay"`
		SettingsRestoreDelay time.Duration `yaml:"settings_restore_delay"`
	} `yaml:"timing"`
	State struct {
		Path    string `yaml:"path"`    // Session file
		Persist bool   `yaml:"persist"` // Save the session on exit
	} `yaml:"state"`
	Logging struct {
		Level  string `yaml:"level"`  // debug, info, warn, error
		Format string `yaml:"format"` // text or json
		File   string `yaml:"file"`   // Log file; empty logs to stderr when it is not the TUI's terminal
	} `yaml:"logging"`
	Metrics struct {
		Addr string `yaml:"addr"` // Listen address for the worker's /metrics; empty disables it
	} `yaml:"metrics"`
	Theme struct {
		Name     string `yaml:"name"`     // Theme name (default, dark, light, etc.)
		Primary  string `yaml:"primary"`  // Primary color for branding
		Success  string `yaml:"success"`  // Success message color
		Warning  string `yaml:"warning"`  // Warning message color
		Error    string `yaml:"error"`    // Error message color
		Info     string `yaml:"info"`     // Informational message color
		Emphasis string `yaml:"emphasis"` // Emphasis color for text that should stand out
		Border   string `yaml:"border"`   // Border color for frames
	} `yaml:"theme"`
}

// DefaultPath is ~/.config/vidhub/config.yaml
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "vidhub", "config.yaml"), nil
}

// LoadConfig loads configuration from the default location
func LoadConfig() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadConfigFile(path)
}

// LoadConfigFile loads configuration from a specific file path.
// If the file doesn't exist, returns default configuration.
func LoadConfigFile(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.NewConfigError("error reading config file", path, errors.ConfigNotFound, err)
	}

	// Fields missing from the file keep their defaults
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewConfigError("error parsing config file", path, errors.InvalidConfig, err)
	}
	// a theme given by name only gets that theme's colors
	var theme struct {
		Theme struct {
			Name    string `yaml:"name"`
			Primary string `yaml:"primary"`
		} `yaml:"theme"`
	}
	if err := yaml.Unmarshal(data, &theme); err == nil && theme.Theme.Name != "" && theme.Theme.Primary == "" {
		cfg.ApplyTheme(theme.Theme.Name)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// defaultConfig returns the default configuration
func defaultConfig() *Config {
	cfg := &Config{}

	cfg.Worker.LivenessTimeout = 30 * time.Second
	cfg.Worker.StopGrace = 3 * time.Second
	cfg.Worker.MediaPatterns = []string{
		"*.{mp4,m4v,mov,avi,mkv,wmv,webm,flv,mpg,mpeg}",
		"*.{jpg,jpeg,png,gif,webp}",
	}
	cfg.Worker.Thumbnails = true
	cfg.Worker.ThumbnailHeight = 200

	cfg.Gallery.PreviewSize = 100
	cfg.Gallery.PreviewMin = 50
	cfg.Gallery.PreviewMax = 200
	cfg.Gallery.PreviewStep = 25
	cfg.Gallery.DefaultView = types.ViewThumbs
	cfg.Gallery.WordLimit = 20

	cfg.Timing.SubscribeDelay = 100 * time.Millisecond
	cfg.Timing.SettingsHideDelay = 10 * time.Millisecond
	cfg.Timing.SettingsRestoreDelay = 500 * time.Millisecond

	if home, err := os.UserHomeDir(); err == nil {
		cfg.State.Path = filepath.Join(home, ".config", "vidhub", "state.yaml")
	}
	cfg.State.Persist = true

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "text"

	cfg.ApplyTheme("default")
	return cfg
}

// SaveConfig saves the configuration to the specified file.
// It creates parent directories if they don't exist.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func invalid(param, format string, args ...interface{}) error {
	return errors.NewConfigError(fmt.Sprintf(format, args...), param, errors.InvalidConfig, nil)
}

// Validate checks if the configuration is valid.
// Returns error if any settings are invalid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrInvalidConfig
	}

	g := c.Gallery
	if g.PreviewStep <= 0 {
		return invalid("gallery.preview_step", "preview step must be positive")
	}
	if g.PreviewMin <= 0 || g.PreviewMin >= g.PreviewMax {
		return invalid("gallery.preview_min", "preview bounds must satisfy 0 < min < max (got %d, %d)", g.PreviewMin, g.PreviewMax)
	}
	if g.PreviewSize < g.PreviewMin || g.PreviewSize > g.PreviewMax {
		return invalid("gallery.preview_size", "preview size %d is outside [%d, %d]", g.PreviewSize, g.PreviewMin, g.PreviewMax)
	}
	if !g.DefaultView.Valid() {
		return invalid("gallery.default_view", "unknown view %q", g.DefaultView)
	}
	if g.WordLimit < 0 {
		return invalid("gallery.word_limit", "word limit must be >= 0")
	}

	timings := map[string]time.Duration{
		"timing.subscribe_delay":        c.Timing.SubscribeDelay,
		"timing.settings_hide_delay":    c.Timing.SettingsHideDelay,
		"timing.settings_restore_delay": c.Timing.SettingsRestoreDelay,
		"worker.liveness_timeout":       c.Worker.LivenessTimeout,
		"worker.stop_grace":             c.Worker.StopGrace,
	}
	for param, d := range timings {
		if d < 0 {
			return invalid(param, "duration must be >= 0")
		}
	}

	if len(c.Worker.MediaPatterns) == 0 {
		return invalid("worker.media_patterns", "at least one media pattern is required")
	}
	for i, p := range c.Worker.MediaPatterns {
		if p == "" {
			return invalid("worker.media_patterns", "pattern %d is empty", i)
		}
		if _, err := glob.Compile(strings.ToLower(p)); err != nil {
			return errors.NewConfigError(fmt.Sprintf("pattern %d does not compile", i), "worker.media_patterns", errors.InvalidConfig, err)
		}
	}
	if c.Worker.Thumbnails && c.Worker.ThumbnailHeight <= 0 {
		return invalid("worker.thumbnail_height", "thumbnail height must be positive")
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return invalid("logging.level", "unknown log level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return invalid("logging.format", "unknown log format %q", c.Logging.Format)
	}

	if c.State.Persist && c.State.Path == "" {
		return invalid("state.path", "state path is required when persist is on")
	}
	return nil
}

// New creates a new configuration instance with default values.
func New() *Config {
	return defaultConfig()
}

// NewTestConfig creates a configuration for tests: fast timings, no
// persistence and no thumbnails.
func NewTestConfig() *Config {
	cfg := defaultConfig()
	cfg.Timing.SubscribeDelay = time.Millisecond
	cfg.Timing.SettingsHideDelay = time.Millisecond
	cfg.Timing.SettingsRestoreDelay = 5 * time.Millisecond
	cfg.Worker.LivenessTimeout = time.Second
	cfg.Worker.Thumbnails = false
	cfg.State.Persist = false
	cfg.State.Path = ""
	return cfg
}

// GetTheme returns a predefined theme configuration by name.
// If the theme doesn't exist, returns the default theme.
func GetTheme(name string) map[string]string {
	themes := map[string]map[string]string{
		"default": {
			"primary":  "213", // Purple
			"success":  "114", // Green
			"warning":  "220", // Yellow
			"error":    "196", // Red
			"info":     "39",  // Blue
			"emphasis": "212", // Light Pink
			"border":   "213", // Purple
		},
		"dark": {
			"primary":  "105",
			"success":  "78",
			"warning":  "214",
			"error":    "160",
			"info":     "33",
			"emphasis": "147",
			"border":   "105",
		},
		"light": {
			"primary":  "135",
			"success":  "150",
			"warning":  "222",
			"error":    "210",
			"info":     "117",
			"emphasis": "219",
			"border":   "135",
		},
		"monochrome": {
			"primary":  "245",
			"success":  "252",
			"warning":  "241",
			"error":    "232",
			"info":     "248",
			"emphasis": "255",
			"border":   "245",
		},
	}

	if theme, exists := themes[name]; exists {
		return theme
	}
	return themes["default"]
}

// ApplyTheme sets the theme colors from a predefined theme
func (c *Config) ApplyTheme(name string) {
	theme := GetTheme(name)

	c.Theme.Name = name
	c.Theme.Primary = theme["primary"]
	c.Theme.Success = theme["success"]
	c.Theme.Warning = theme["warning"]
	c.Theme.Error = theme["error"]
	c.Theme.Info = theme["info"]
	c.Theme.Emphasis = theme["emphasis"]
	c.Theme.Border = theme["border"]
}

// ListThemes returns a list of available theme names.
func ListThemes() []string {
	return []string{"default", "dark", "light", "monochrome"}
}
