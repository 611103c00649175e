// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/javiermolinar/aula/internal/timetable"
)

// Config holds the application configuration.
type Config struct {
	Timetable TimetableConfig `toml:"timetable"`
	Generator GeneratorConfig `toml:"generator"`
	Advisor   AdvisorConfig   `toml:"advisor"`
	Storage   StorageConfig   `toml:"storage"`
	Server    ServerConfig    `toml:"server"`
	Log       LogConfig       `toml:"log"`
	UI        UIConfig        `toml:"ui"`
}

// TimetableConfig holds the week grid layout.
type TimetableConfig struct {
	GridStart   string   `toml:"grid_start"`   // e.g., "8:00 AM"
	GridEnd     string   `toml:"grid_end"`     // e.g., "7:00 PM", the last slot label
	SlotMinutes int      `toml:"slot_minutes"` // e.g., 30
	Days        []string `toml:"days"`         // days shown by the grid views
	Lookup      string   `toml:"lookup"`       // "exact" or "covering"
}

// GeneratorConfig holds mock timetable settings.
type GeneratorConfig struct {
	Seed           int64   `toml:"seed"`
	Sessions       int     `toml:"sessions"`
	UnalignedShare float64 `toml:"unaligned_share"` // 0..1
}

// AdvisorConfig holds the LLM provider used for conflict advice.
type AdvisorConfig struct {
	Provider string `toml:"provider"` // "copilot", "ollama", "lmstudio"
	Model    string `toml:"model"`    // e.g., "gpt-4o"
	BaseURL  string `toml:"base_url"` // empty uses the provider's local default
	// APIKey is the GitHub token for copilot or the key for lmstudio. It is read
	// from the environment only and never written to the config file.
	APIKey string `toml:"-"`
}

// StorageConfig holds database settings.
type StorageConfig struct {
	DSN string `toml:"dsn"` // ":memory:" keeps the timetable in memory
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// LogConfig holds diagnostic logging settings.
type LogConfig struct {
	Level  string `toml:"level"`  // "debug", "info", "warn", "error"
	Format string `toml:"format"` // "text" or "json"
}

// UIConfig holds TUI settings.
type UIConfig struct {
	Theme string `toml:"theme"` // "mocha", "macchiato", "frappe", "latte"
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Timetable: TimetableConfig{
			GridStart:   timetable.DefaultGridStart,
			GridEnd:     timetable.DefaultGridEnd,
			SlotMinutes: timetable.DefaultSlotMinutes,
			Days:        []string{"monday", "tuesday", "wednesday", "thursday", "friday"},
			Lookup:      string(timetable.LookupExact),
		},
		Generator: GeneratorConfig{
			Seed:           1,
			Sessions:       40,
			UnalignedShare: 0.1,
		},
		Advisor: AdvisorConfig{
			Provider: "copilot",
			Model:    "gpt-4o",
		},
		Storage: StorageConfig{
			DSN: ":memory:",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		UI: UIConfig{
			Theme: "frappe",
		},
	}
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "aula", "config.toml")
}

// DotEnvFile is the optional env file read from the working directory.
const DotEnvFile = ".env"

// Load loads configuration from the default path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays file config if it exists, reads .env from the working
// directory into the environment (real variables win), then applies AULA_* overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	// Try to load from file (not an error if it doesn't exist)
	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	if err := loadDotEnv(DotEnvFile); err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	cfg.Storage.DSN = expandPath(cfg.Storage.DSN)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads config from a file if it exists.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File doesn't exist, use defaults
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// loadDotEnv sets variables from an env file without overriding existing ones.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables take precedence over file config.
func applyEnvOverrides(cfg *Config) error {
	strs := map[string]*string{
		"AULA_GRID_START":       &cfg.Timetable.GridStart,
		"AULA_GRID_END":         &cfg.Timetable.GridEnd,
		"AULA_LOOKUP":           &cfg.Timetable.Lookup,
		"AULA_ADVISOR_PROVIDER": &cfg.Advisor.Provider,
		"AULA_ADVISOR_MODEL":    &cfg.Advisor.Model,
		"AULA_ADVISOR_BASE_URL": &cfg.Advisor.BaseURL,
		"AULA_ADVISOR_API_KEY":  &cfg.Advisor.APIKey,
		"AULA_DB_DSN":           &cfg.Storage.DSN,
		"AULA_SERVER_ADDR":      &cfg.Server.Addr,
		"AULA_LOG_LEVEL":        &cfg.Log.Level,
		"AULA_LOG_FORMAT":       &cfg.Log.Format,
		"AULA_UI_THEME":         &cfg.UI.Theme,
	}
	for name, field := range strs {
		if v := os.Getenv(name); v != "" {
			*field = v
		}
	}
	if cfg.Advisor.APIKey == "" {
		cfg.Advisor.APIKey = providerKeyFromEnv(cfg.Advisor.Provider)
	}

	if v := os.Getenv("AULA_DAYS"); v != "" {
		cfg.Timetable.Days = strings.Split(v, ",")
	}
	if v := os.Getenv("AULA_SLOT_MINUTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("AULA_SLOT_MINUTES: %w", err)
		}
		cfg.Timetable.SlotMinutes = n
	}
	if v := os.Getenv("AULA_SEED"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("AULA_SEED: %w", err)
		}
		cfg.Generator.Seed = n
	}
	if v := os.Getenv("AULA_SESSIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("AULA_SESSIONS: %w", err)
		}
		cfg.Generator.Sessions = n
	}
	if v := os.Getenv("AULA_UNALIGNED_SHARE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("AULA_UNALIGNED_SHARE: %w", err)
		}
		cfg.Generator.UnalignedShare = f
	}
	return nil
}

// providerKeyFromEnv reads the credential variables each provider's own tools use.
func providerKeyFromEnv(provider string) string {
	var names []string
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", "copilot":
		names = []string{"GITHUB_TOKEN"}
	case "lmstudio", "lm-studio":
		names = []string{"LMSTUDIO_API_KEY", "OPENAI_API_KEY"}
	}
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := c.Slots(); err != nil {
		return err
	}
	if _, err := timetable.ParseLookupMode(c.Timetable.Lookup); err != nil {
		return err
	}

	if len(c.Timetable.Days) == 0 {
		return errors.New("at least one day must be configured")
	}
	for _, day := range c.Timetable.Days {
		if _, err := timetable.ParseWeekday(day); err != nil {
			return fmt.Errorf("invalid day: %s", day)
		}
	}

	if c.Generator.Sessions < 0 {
		return errors.New("generator sessions cannot be negative")
	}
	if c.Generator.UnalignedShare < 0 || c.Generator.UnalignedShare > 1 {
		return errors.New("unaligned_share must be between 0 and 1")
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log format must be text or json, got %q", c.Log.Format)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}

	if c.Storage.DSN == "" {
		return errors.New("dsn must be set")
	}
	if c.Server.Addr == "" {
		return errors.New("server addr must be set")
	}
	return nil
}

// Slots builds the grid rows from the timetable settings.
func (c *Config) Slots() ([]timetable.Slot, error) {
	if c.Timetable.SlotMinutes <= 0 {
		return nil, fmt.Errorf("slot_minutes must be positive, got %d", c.Timetable.SlotMinutes)
	}
	slots, err := timetable.NewSlots(c.Timetable.GridStart, c.Timetable.GridEnd, c.Timetable.SlotMinutes)
	if err != nil {
		return nil, err
	}
	if len(slots) < 2 {
		return nil, errors.New("grid needs at least two slots")
	}
	return slots, nil
}

// LookupMode returns the configured grid lookup mode, defaulting to exact.
func (c *Config) LookupMode() timetable.LookupMode {
	mode, err := timetable.ParseLookupMode(c.Timetable.Lookup)
	if err != nil {
		return timetable.LookupExact
	}
	return mode
}

// Weekdays returns the configured days in week order.
func (c *Config) Weekdays() []timetable.Weekday {
	enabled := make(map[timetable.Weekday]bool)
	for _, d := range c.Timetable.Days {
		if wd, err := timetable.ParseWeekday(d); err == nil {
			enabled[wd] = true
		}
	}
	var days []timetable.Weekday
	for _, d := range timetable.Weekdays() {
		if enabled[d] {
			days = append(days, d)
		}
	}
	return days
}

// IsTeachingDay returns true if the given day is shown by the grid views.
func (c *Config) IsTeachingDay(day timetable.Weekday) bool {
	for _, d := range c.Weekdays() {
		if d == day {
			return true
		}
	}
	return false
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
