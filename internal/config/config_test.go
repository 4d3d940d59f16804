package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func isolate(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "darwin" {
		t.Skip("config dir is not relocatable on darwin")
	}
	root := t.TempDir()
	t.Setenv("HOME", root)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(root, "data"))
	return root
}

func TestLoadCreatesDefaultConfig(t *testing.T) {
	root := isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.CookieName != DefaultCookieName {
		t.Fatalf("unexpected cookie name: %q", cfg.CookieName)
	}
	if cfg.TimeoutSeconds != 600 {
		t.Fatalf("expected 600s timeout, got %d", cfg.TimeoutSeconds)
	}
	wantOutput := filepath.Join(root, "data", "gnome-shell", "extensions", "LogtimeWidget@zsonie", "utils", "intra42_cookies.json")
	if cfg.OutputPath != wantOutput {
		t.Fatalf("unexpected output path: %s", cfg.OutputPath)
	}
	if _, err := os.Stat(filepath.Join(root, "config", "intracookie", "config.json")); err != nil {
		t.Fatalf("expected config file to be written: %v", err)
	}
}

func TestLoadBackfillsMissingFields(t *testing.T) {
	isolate(t)

	path, err := ConfigFilePath()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(`{"cookieName":"other","timeoutSeconds":30}`), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.CookieName != "other" || cfg.TimeoutSeconds != 30 {
		t.Fatalf("explicit values were overwritten: %#v", cfg)
	}
	if cfg.LoginURL != DefaultLoginURL {
		t.Fatalf("login url not back-filled: %q", cfg.LoginURL)
	}
	if cfg.PollIntervalMillis != 500 || cfg.SettleMillis != 1000 || cfg.BraveCPUThreshold != 4 {
		t.Fatalf("defaults not back-filled: %#v", cfg)
	}
}

func TestRunRecordPathUnderDataDir(t *testing.T) {
	root := isolate(t)

	path, err := RunRecordPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(root, "config", "intracookie", "data", "last_run.json"); path != want {
		t.Fatalf("got %s want %s", path, want)
	}
}
