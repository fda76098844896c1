package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures everything offerwatch reads from config.toml.
type Config struct {
	Path string // resolved file the values came from, even if it did not exist

	BaseURL           string
	SessionCookieName string
	SessionCookie     string

	PollInterval   time.Duration
	NoticeDuration time.Duration
	ReconnectDelay time.Duration
	RequestTimeout time.Duration

	LogFile  string
	LogLevel slog.Level

	OTLPEndpoint string
	OTLPInsecure bool
}

const (
	defaultConfigPath     = "~/.config/offerwatch/config.toml"
	defaultBaseURL        = "http://127.0.0.1:8080"
	defaultCookieName     = "JSESSIONID"
	defaultLogFile        = "~/.local/state/offerwatch/offerwatch.log"
	defaultPollInterval   = 7 * time.Second
	defaultNoticeDuration = 2200 * time.Millisecond
	defaultReconnectDelay = 3 * time.Second
	defaultRequestTimeout = 5 * time.Second
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		BaseURL:           defaultBaseURL,
		SessionCookieName: defaultCookieName,
		PollInterval:      defaultPollInterval,
		NoticeDuration:    defaultNoticeDuration,
		ReconnectDelay:    defaultReconnectDelay,
		RequestTimeout:    defaultRequestTimeout,
		LogFile:           mustExpand(defaultLogFile),
		LogLevel:          slog.LevelInfo,
	}
}

// Load locates and parses the offerwatch config, falling back to defaults
// when the file or individual fields are missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	cfg.Path = resolved

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		BaseURL           string `toml:"base_url"`
		SessionCookieName string `toml:"session_cookie_name"`
		SessionCookie     string `toml:"session_cookie"`
		PollInterval      string `toml:"poll_interval"`
		NoticeDuration    string `toml:"notice_duration"`
		ReconnectDelay    string `toml:"reconnect_delay"`
		RequestTimeout    string `toml:"request_timeout"`
		LogFile           string `toml:"log_file"`
		LogLevel          string `toml:"log_level"`
		OTLPEndpoint      string `toml:"otlp_endpoint"`
		OTLPInsecure      bool   `toml:"otlp_insecure"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.BaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(raw.SessionCookieName); v != "" {
		cfg.SessionCookieName = v
	}
	cfg.SessionCookie = strings.TrimSpace(raw.SessionCookie)

	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"poll_interval", raw.PollInterval, &cfg.PollInterval},
		{"notice_duration", raw.NoticeDuration, &cfg.NoticeDuration},
		{"reconnect_delay", raw.ReconnectDelay, &cfg.ReconnectDelay},
		{"request_timeout", raw.RequestTimeout, &cfg.RequestTimeout},
	}
	for _, d := range durations {
		if err := parseDuration(d.key, d.raw, d.dst); err != nil {
			return Config{}, err
		}
	}

	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return Config{}, fmt.Errorf("parse config: log_level %q: %w", v, err)
		}
	}
	cfg.OTLPEndpoint = strings.TrimSpace(raw.OTLPEndpoint)
	cfg.OTLPInsecure = raw.OTLPInsecure

	return cfg, nil
}

// parseDuration leaves dst untouched when raw is blank.
func parseDuration(key, raw string, dst *time.Duration) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return fmt.Errorf("parse config: %s: %w", key, err)
	}
	if d <= 0 {
		return fmt.Errorf("parse config: %s must be positive, got %s", key, trimmed)
	}
	*dst = d
	return nil
}

// DefaultPath returns the default config file location, unexpanded.
func DefaultPath() string {
	return defaultConfigPath
}

// Dir returns the directory holding the config file. Sibling files such as
// prefs.toml live there.
func (c Config) Dir() string {
	if strings.TrimSpace(c.Path) == "" {
		return filepath.Dir(mustExpand(defaultConfigPath))
	}
	return filepath.Dir(c.Path)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
