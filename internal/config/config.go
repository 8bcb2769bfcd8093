// Package config owns the ~/.assignd directory: the TOML config file,
// the sqlite database location, and the offline snapshot directory.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	UserID         string `toml:"user_id"`
	OpenAIAPIKey   string `toml:"openai_api_key"`
	OpenAIModel    string `toml:"openai_model"`
	OfflineMode    bool   `toml:"offline_mode"`
	SyncDebounceMS int    `toml:"sync_debounce_ms"`
}

func DefaultConfig() *Config {
	return &Config{
		OpenAIModel:    "gpt-4o-mini",
		SyncDebounceMS: 500,
	}
}

// Debounce converts the configured window to a duration; non-positive
// values fall back to the default.
func (c *Config) Debounce() time.Duration {
	if c.SyncDebounceMS <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(c.SyncDebounceMS) * time.Millisecond
}

func AssigndDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".assignd"), nil
}

func ConfigPath() (string, error) {
	dir, err := AssigndDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func DatabasePath() (string, error) {
	dir, err := AssigndDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "db", "assignd.sqlite"), nil
}

// LocalDataPath is where offline snapshots live.
func LocalDataPath() (string, error) {
	dir, err := AssigndDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "data"), nil
}

func EnsureDirectories() error {
	dir, err := AssigndDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(dir, "db"), 0o755); err != nil {
		return err
	}
	return os.MkdirAll(filepath.Join(dir, "data"), 0o755)
}

// Load reads the config file, creating it with defaults on first run,
// then applies ASSIGND_* environment overrides.
func Load() (*Config, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := EnsureDirectories(); err != nil {
			return nil, err
		}
		if err := Save(cfg); err != nil {
			return nil, err
		}
		return FromEnv(cfg), nil
	}

	if _, err := toml.DecodeFile(configPath, cfg); err != nil {
		return nil, err
	}
	return FromEnv(cfg), nil
}

func Save(cfg *Config) error {
	configPath, err := ConfigPath()
	if err != nil {
		return err
	}

	f, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

func FromEnv(base *Config) *Config {
	cfg := *base
	if v, ok := getEnvString("ASSIGND_USER_ID"); ok {
		cfg.UserID = v
	}
	if v, ok := getEnvString("ASSIGND_OPENAI_API_KEY"); ok {
		cfg.OpenAIAPIKey = v
	}
	if v, ok := getEnvString("ASSIGND_OPENAI_MODEL"); ok {
		cfg.OpenAIModel = v
	}
	if v, ok := getEnvBool("ASSIGND_OFFLINE"); ok {
		cfg.OfflineMode = v
	}
	if v, ok := getEnvInt("ASSIGND_SYNC_DEBOUNCE_MS"); ok && v > 0 {
		cfg.SyncDebounceMS = v
	}
	return &cfg
}

func getEnvString(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return "", false
	}
	return raw, true
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
