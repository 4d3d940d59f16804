package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

const (
	DefaultLoginURL   = "https://profile.intra.42.fr/"
	DefaultCookieName = "_intra_42_session_production"

	defaultTimeoutSeconds = 600
	defaultPollMillis     = 500
	defaultSettleMillis   = 1000
	defaultBraveThreshold = 4

	configFileName = "config.json"
	dataDir        = "data"
	appName        = "intracookie"
	widgetUUID     = "LogtimeWidget@zsonie"
)

type Config struct {
	LoginURL             string   `json:"loginUrl"`
	CookieName           string   `json:"cookieName"`
	OutputPath           string   `json:"outputPath"`
	LogPath              string   `json:"logPath"`
	TimeoutSeconds       int      `json:"timeoutSeconds"`
	PollIntervalMillis   int      `json:"pollIntervalMillis"`
	SettleMillis         int      `json:"settleMillis"`
	BraveCPUThreshold    int      `json:"braveCpuThreshold"`
	PreferDefaultBrowser bool     `json:"preferDefaultBrowser"`
	Browsers             []string `json:"browsers,omitempty"`
	Verify               bool     `json:"verify"`
	Trace                bool     `json:"trace"`
}

func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMillis) * time.Millisecond
}

func (c Config) Settle() time.Duration {
	return time.Duration(c.SettleMillis) * time.Millisecond
}

func ConfigDir() (string, error) {
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support", appName), nil
	default:
		// Linux and others: honor XDG_CONFIG_HOME
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", appName), nil
	}
}

func EnsureConfigDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Join(dir, dataDir), 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

func ConfigFilePath() (string, error) {
	dir, err := EnsureConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// RunRecordPath is where the outcome of the most recent capture is kept.
func RunRecordPath() (string, error) {
	dir, err := EnsureConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, dataDir, "last_run.json"), nil
}

// WidgetDir is the utils directory of the installed LogtimeWidget extension,
// which reads the captured cookie.
func WidgetDir() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "gnome-shell", "extensions", widgetUUID, "utils"), nil
}

func DefaultConfig() Config {
	cfg := Config{
		LoginURL:           DefaultLoginURL,
		CookieName:         DefaultCookieName,
		TimeoutSeconds:     defaultTimeoutSeconds,
		PollIntervalMillis: defaultPollMillis,
		SettleMillis:       defaultSettleMillis,
		BraveCPUThreshold:  defaultBraveThreshold,
	}
	if dir, err := WidgetDir(); err == nil {
		cfg.OutputPath = filepath.Join(dir, "intra42_cookies.json")
		cfg.LogPath = filepath.Join(dir, "cookie_capture.log")
	}
	return cfg
}

func Load() (Config, error) {
	path, err := ConfigFilePath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(cfg); err != nil {
				return Config{}, err
			}
			return cfg, nil
		}
		return Config{}, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return withDefaults(cfg), nil
}

func withDefaults(cfg Config) Config {
	def := DefaultConfig()
	if cfg.LoginURL == "" {
		cfg.LoginURL = def.LoginURL
	}
	if cfg.CookieName == "" {
		cfg.CookieName = def.CookieName
	}
	if cfg.OutputPath == "" {
		cfg.OutputPath = def.OutputPath
	}
	if cfg.LogPath == "" {
		cfg.LogPath = def.LogPath
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = def.TimeoutSeconds
	}
	if cfg.PollIntervalMillis <= 0 {
		cfg.PollIntervalMillis = def.PollIntervalMillis
	}
	if cfg.SettleMillis <= 0 {
		cfg.SettleMillis = def.SettleMillis
	}
	if cfg.BraveCPUThreshold <= 0 {
		cfg.BraveCPUThreshold = def.BraveCPUThreshold
	}
	return cfg
}

func Save(cfg Config) error {
	path, err := ConfigFilePath()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
