package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/erazemk/gifgrab/internal/model"
)

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "config.yml")
	store, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if store.APIKey() != "" {
		t.Fatalf("expected empty key")
	}
	if store.ContentFilter() != DefaultContentFilter || store.Locale() != DefaultLocale {
		t.Fatalf("expected defaults, got %q %q", store.ContentFilter(), store.Locale())
	}
	if _, err := store.RequireAPIKey(); model.KindOf(err) != model.KindConfig {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestSetAPIKeyCreatesAndOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gifgrab", "config.yml")
	store, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := store.SetAPIKey("  first-key "); err != nil {
		t.Fatalf("SetAPIKey: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected config file: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600, got %v", info.Mode().Perm())
	}

	if err := store.SetAPIKey("second-key"); err != nil {
		t.Fatalf("SetAPIKey: %v", err)
	}
	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := reloaded.APIKey(); got != "second-key" {
		t.Fatalf("expected second-key, got %q", got)
	}
}

func TestSetAPIKeyKeepsOtherKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("save_dir: /tmp/gifs\nlocale: de_DE\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	store, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := store.SetAPIKey("k"); err != nil {
		t.Fatalf("SetAPIKey: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	text := string(raw)
	if !strings.Contains(text, "/tmp/gifs") || !strings.Contains(text, "de_DE") {
		t.Fatalf("lost existing keys: %q", text)
	}
	if strings.Contains(text, "content_filter") {
		t.Fatalf("defaults should not be persisted: %q", text)
	}
}

func TestSetAPIKeyRejectsEmpty(t *testing.T) {
	store, err := Load(filepath.Join(t.TempDir(), "config.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := store.SetAPIKey("   "); model.KindOf(err) != model.KindUsage {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("api_key: [unterminated\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); model.KindOf(err) != model.KindConfig {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestSetAPIKeyReplacesMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("api_key: [unterminated\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := Blank(path).SetAPIKey("NEWKEY"); err != nil {
		t.Fatalf("SetAPIKey: %v", err)
	}
	store, err := Load(path)
	if err != nil {
		t.Fatalf("Load after rewrite: %v", err)
	}
	if store.APIKey() != "NEWKEY" {
		t.Fatalf("expected NEWKEY, got %q", store.APIKey())
	}
}

func TestEnvOverridesKey(t *testing.T) {
	t.Setenv("GIFGRAB_API_KEY", "from-env")
	store, err := Load(filepath.Join(t.TempDir(), "config.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	key, err := store.RequireAPIKey()
	if err != nil {
		t.Fatalf("RequireAPIKey: %v", err)
	}
	if key != "from-env" {
		t.Fatalf("expected env key, got %q", key)
	}
}

func TestTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("timeout: 3\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	store, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got, err := store.Timeout()
	if err != nil {
		t.Fatalf("Timeout: %v", err)
	}
	if got != 3*time.Second {
		t.Fatalf("expected 3s, got %s", got)
	}
}

func TestDumpMasksKey(t *testing.T) {
	store, err := Load(filepath.Join(t.TempDir(), "config.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := store.SetAPIKey("ABCDEFGHIJ"); err != nil {
		t.Fatalf("SetAPIKey: %v", err)
	}
	var buf bytes.Buffer
	if err := store.Dump(&buf); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	text := buf.String()
	if strings.Contains(text, "ABCDEFGHIJ") {
		t.Fatalf("key leaked: %q", text)
	}
	if !strings.Contains(text, "api_key: ABCD******") {
		t.Fatalf("expected masked key: %q", text)
	}
}

func TestParseDuration(t *testing.T) {
	cases := map[string]time.Duration{
		"1.5s": 1500 * time.Millisecond,
		"2":    2 * time.Second,
		"0.25": 250 * time.Millisecond,
	}
	for raw, want := range cases {
		got, err := ParseDuration(raw)
		if err != nil {
			t.Fatalf("ParseDuration(%q): %v", raw, err)
		}
		if got != want {
			t.Fatalf("ParseDuration(%q) = %s, want %s", raw, got, want)
		}
	}
	for _, raw := range []string{"", "-1", "-2s", "soon", "NaN", "Inf", "+Inf", "-Inf", "1e300"} {
		if _, err := ParseDuration(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestMaskKey(t *testing.T) {
	if MaskKey("") != "" || MaskKey("abc") != "****" || MaskKey("abcdef") != "abcd**" {
		t.Fatalf("unexpected masks")
	}
}
