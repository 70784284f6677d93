package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_DefaultWhenMissing(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MinDescriptionWords != DefaultConfig().MinDescriptionWords {
		t.Fatalf("MinDescriptionWords = %d, want %d", cfg.MinDescriptionWords, DefaultConfig().MinDescriptionWords)
	}
	if cfg.MaxDescriptionChars != 2000 {
		t.Fatalf("MaxDescriptionChars = %d, want 2000", cfg.MaxDescriptionChars)
	}
	if cfg.DefaultPageSize != 10 || cfg.MaxPageSize != 100 {
		t.Fatalf("page sizes = %d/%d, want 10/100", cfg.DefaultPageSize, cfg.MaxPageSize)
	}
	if !cfg.ShouldFallback() {
		t.Fatal("ShouldFallback() = false by default, want true")
	}
}

func TestLoad_OverridesFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{"max_description_chars": 500, "default_page_size": 25}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxDescriptionChars != 500 {
		t.Fatalf("MaxDescriptionChars = %d, want 500", cfg.MaxDescriptionChars)
	}
	if cfg.DefaultPageSize != 25 {
		t.Fatalf("DefaultPageSize = %d, want 25", cfg.DefaultPageSize)
	}
	// Untouched fields keep defaults
	if cfg.MinDescriptionWords != 3 {
		t.Fatalf("MinDescriptionWords = %d, want 3", cfg.MinDescriptionWords)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{not json}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Fatalf("Load() expected error, got nil")
	}
}

func TestLoad_DisabledTools(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{"disabled_tools": ["story_purge", "story_delete"]}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.DisabledTools) != 2 {
		t.Fatalf("DisabledTools length = %d, want 2", len(cfg.DisabledTools))
	}
	if cfg.DisabledTools[0] != "story_purge" {
		t.Errorf("DisabledTools[0] = %q, want %q", cfg.DisabledTools[0], "story_purge")
	}
}

func TestLoad_EnvOverridesAPIKey(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{"claude_api_key": "from-file"}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Setenv("CLAUDE_API_KEY", "from-env")

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ClaudeAPIKey != "from-env" {
		t.Fatalf("ClaudeAPIKey = %q, want %q", cfg.ClaudeAPIKey, "from-env")
	}
}

func TestMerge_FallbackOverride(t *testing.T) {
	off := false
	merged := Merge(DefaultConfig(), &Config{FallbackToTemplate: &off})

	if merged.ShouldFallback() {
		t.Fatal("ShouldFallback() = true after explicit false overlay, want false")
	}
}

func TestMerge_ScalarPrecedence(t *testing.T) {
	base := DefaultConfig()
	overlay := &Config{MaxPageSize: 50}

	merged := Merge(base, overlay)
	if merged.MaxPageSize != 50 {
		t.Fatalf("MaxPageSize = %d, want 50", merged.MaxPageSize)
	}
	if merged.DefaultPageSize != base.DefaultPageSize {
		t.Fatalf("DefaultPageSize = %d, want %d", merged.DefaultPageSize, base.DefaultPageSize)
	}
}
