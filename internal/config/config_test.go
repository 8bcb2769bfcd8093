package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFirstRunWritesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.OpenAIModel != "gpt-4o-mini" || cfg.SyncDebounceMS != 500 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}

	path, err := ConfigPath()
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file created: %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if err := EnsureDirectories(); err != nil {
		t.Fatalf("ensure dirs: %v", err)
	}

	want := &Config{
		UserID:         "someone",
		OpenAIAPIKey:   "sk-test",
		OpenAIModel:    "gpt-4o",
		OfflineMode:    true,
		SyncDebounceMS: 250,
	}
	if err := Save(want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *got != *want {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, want)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ASSIGND_USER_ID", "env-user")
	t.Setenv("ASSIGND_OPENAI_API_KEY", "sk-env")
	t.Setenv("ASSIGND_OFFLINE", "yes")
	t.Setenv("ASSIGND_SYNC_DEBOUNCE_MS", "100")

	cfg := FromEnv(DefaultConfig())
	if cfg.UserID != "env-user" || cfg.OpenAIAPIKey != "sk-env" {
		t.Fatalf("string overrides not applied: %+v", cfg)
	}
	if !cfg.OfflineMode {
		t.Fatal("bool override not applied")
	}
	if cfg.Debounce() != 100*time.Millisecond {
		t.Fatalf("unexpected debounce %v", cfg.Debounce())
	}
}

func TestEnvOverridesIgnoreGarbage(t *testing.T) {
	t.Setenv("ASSIGND_OFFLINE", "maybe")
	t.Setenv("ASSIGND_SYNC_DEBOUNCE_MS", "soon")

	cfg := FromEnv(DefaultConfig())
	if cfg.OfflineMode {
		t.Fatal("garbage bool accepted")
	}
	if cfg.SyncDebounceMS != 500 {
		t.Fatalf("garbage int accepted: %d", cfg.SyncDebounceMS)
	}
}

func TestPathsLiveUnderAssigndDir(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	dir, err := AssigndDir()
	if err != nil {
		t.Fatalf("dir: %v", err)
	}
	dbPath, err := DatabasePath()
	if err != nil {
		t.Fatalf("db path: %v", err)
	}
	if filepath.Dir(filepath.Dir(dbPath)) != dir {
		t.Fatalf("db path %q not under %q", dbPath, dir)
	}
	dataPath, err := LocalDataPath()
	if err != nil {
		t.Fatalf("data path: %v", err)
	}
	if filepath.Dir(dataPath) != dir {
		t.Fatalf("data path %q not under %q", dataPath, dir)
	}
}
