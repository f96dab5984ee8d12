package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/idilsaglam/sqltodo/internal/model"
	"github.com/idilsaglam/sqltodo/internal/ui"
)

// Environment variables that override the config file.
const (
	EnvDBPath   = "SQLTODO_DB_PATH"
	EnvTheme    = "SQLTODO_THEME"
	EnvLogLevel = "SQLTODO_LOG_LEVEL"
	EnvLogFile  = "SQLTODO_LOG_FILE"
)

// Config holds user-configurable settings.
type Config struct {
	DBPath        string `json:"dbPath,omitempty"`
	Theme         string `json:"theme,omitempty"`
	DefaultFilter string `json:"defaultFilter,omitempty"`
	LogFile       string `json:"logFile,omitempty"`
	LogLevel      string `json:"logLevel,omitempty"`
}

// Default returns the default configuration. An empty DBPath or LogFile
// means "use the platform default".
func Default() Config {
	return Config{
		Theme:         "classic",
		DefaultFilter: string(model.FilterAll),
		LogLevel:      "info",
	}
}

// ConfigPath returns the location of the config file.
func ConfigPath() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, "sqltodo", "config.json"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config path: %w", err)
	}
	return filepath.Join(home, ".config", "sqltodo", "config.json"), nil
}

// Load reads the config file, then applies environment overrides. A missing
// file is not an error.
func Load() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return ApplyEnv(Default()), err
	}
	cfg, err := LoadFile(path)
	return ApplyEnv(cfg), err
}

// LoadFile reads configuration from path. If the file does not exist,
// defaults are returned.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse config: %w", err)
	}
	return Normalize(cfg), nil
}

// Save writes configuration to path.
func Save(path string, cfg Config) error {
	cfg = Normalize(cfg)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ApplyEnv overlays non-empty SQLTODO_* variables on cfg.
func ApplyEnv(cfg Config) Config {
	if v := strings.TrimSpace(os.Getenv(EnvDBPath)); v != "" {
		cfg.DBPath = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTheme)); v != "" {
		cfg.Theme = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.LogFile = v
	}
	return Normalize(cfg)
}

// Normalize ensures defaults are set and invalid values are sanitized.
func Normalize(cfg Config) Config {
	def := Default()
	cfg.DBPath = strings.TrimSpace(cfg.DBPath)
	cfg.LogFile = strings.TrimSpace(cfg.LogFile)

	cfg.Theme = strings.ToLower(strings.TrimSpace(cfg.Theme))
	if !slices.Contains(ui.Themes, cfg.Theme) {
		cfg.Theme = def.Theme
	}

	f, err := model.ParseFilter(cfg.DefaultFilter)
	if err != nil {
		f = model.FilterAll
	}
	cfg.DefaultFilter = string(f)

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		cfg.LogLevel = def.LogLevel
	}
	return cfg
}

// Filter returns the parsed default filter.
func (c Config) Filter() model.Filter {
	f, err := model.ParseFilter(c.DefaultFilter)
	if err != nil {
		return model.FilterAll
	}
	return f
}
