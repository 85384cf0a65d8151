// Package config loads the repodeck configuration from YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIBase        = "https://api.shuyu-lin.com"
	DefaultRequestTimeout = 30 * time.Second
)

type GitHubConfig struct {
	Enabled bool
	Token   string
}

type AppConfig struct {
	APIBase        string
	SessionFile    string // empty means the storage default
	DebugLog       string
	RequestTimeout time.Duration
	GitHub         GitHubConfig
	Path           string `yaml:"-"` // file the values were read from, if any
}

func DefaultConfig() *AppConfig {
	return &AppConfig{
		APIBase:        DefaultAPIBase,
		RequestTimeout: DefaultRequestTimeout,
		GitHub: GitHubConfig{
			Enabled: true,
		},
	}
}

func coerceBool(value any, defaultVal bool) bool {
	if value == nil {
		return defaultVal
	}

	switch v := value.(type) {
	case bool:
		return v
	case int:
		return v != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return defaultVal
}

func coerceInt(value any, defaultVal int) int {
	if value == nil {
		return defaultVal
	}

	switch v := value.(type) {
	case int:
		return v
	case string:
		text := strings.TrimSpace(v)
		if text == "" {
			return defaultVal
		}
		if i, err := strconv.Atoi(text); err == nil {
			return i
		}
	}
	return defaultVal
}

// coerceDuration accepts a Go duration string ("45s", "1m") or a plain
// number of seconds.
func coerceDuration(value any, defaultVal time.Duration) time.Duration {
	if text, ok := value.(string); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(text)); err == nil && d > 0 {
			return d
		}
	}
	if seconds := coerceInt(value, 0); seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return defaultVal
}

func coerceString(value any) string {
	text, ok := value.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(text)
}

func parseConfig(data map[string]any) *AppConfig {
	cfg := DefaultConfig()

	if apiBase := coerceString(data["api_base"]); apiBase != "" {
		cfg.APIBase = strings.TrimRight(apiBase, "/")
	}
	if sessionFile := coerceString(data["session_file"]); sessionFile != "" {
		cfg.SessionFile = sessionFile
	}
	if debugLog := coerceString(data["debug_log"]); debugLog != "" {
		cfg.DebugLog = debugLog
	}
	cfg.RequestTimeout = coerceDuration(data["request_timeout"], cfg.RequestTimeout)

	if gh, ok := data["github"].(map[string]any); ok {
		cfg.GitHub.Enabled = coerceBool(gh["enabled"], cfg.GitHub.Enabled)
		cfg.GitHub.Token = coerceString(gh["token"])
	}

	return cfg
}

func getConfigDir() string {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return xdgConfigHome
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config")
}

// LoadConfig reads the configuration from configPath, or from
// $XDG_CONFIG_HOME/repodeck/config.yaml when configPath is empty. A missing
// file yields the defaults.
func LoadConfig(configPath string) (*AppConfig, error) {
	var paths []string
	if configPath != "" {
		expanded, err := ExpandPath(configPath)
		if err != nil {
			return DefaultConfig(), err
		}
		paths = []string{expanded}
	} else {
		base := filepath.Join(getConfigDir(), "repodeck")
		paths = []string{
			filepath.Join(base, "config.yaml"),
			filepath.Join(base, "config.yml"),
		}
	}

	for _, path := range paths {
		// #nosec G304 -- path comes from the user or the config directory
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			if configPath != "" {
				return DefaultConfig(), fmt.Errorf("config file %s not found", path)
			}
			continue
		}
		if err != nil {
			return DefaultConfig(), fmt.Errorf("failed to read config %s: %w", path, err)
		}

		var yamlData map[string]any
		if err := yaml.Unmarshal(data, &yamlData); err != nil {
			return DefaultConfig(), fmt.Errorf("failed to parse config %s: %w", path, err)
		}

		cfg := parseConfig(yamlData)
		cfg.Path = path
		return cfg, nil
	}

	return DefaultConfig(), nil
}

// ExpandPath resolves a leading ~ and environment variables.
func ExpandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[1:])
	}
	return os.ExpandEnv(path), nil
}
