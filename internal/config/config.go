package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

const defaultBaseURL = "http://localhost:8000"

// Config holds client configuration loaded from the environment, with an
// optional ~/.taskflow/config.yaml overlay for persistent settings.
type Config struct {
	// APIURL is the backend base URL. Empty means "same origin", which for
	// a terminal client resolves to the local development default.
	APIURL    string `mapstructure:"api_url"`
	TokenPath string `mapstructure:"token_path"`
	DBPath    string `mapstructure:"db_path"`
	Debug     bool   `mapstructure:"debug"`
}

// Load builds the configuration: defaults, then the config file if present,
// then environment variables (environment wins).
func Load() (*Config, error) {
	cfg := &Config{
		TokenPath: filepath.Join(taskflowDir(), "token"),
		DBPath:    filepath.Join(taskflowDir(), "snapshot.db"),
	}

	if path := ConfigFilePath(); path != "" {
		if err := loadFile(path, cfg); err != nil && !os.IsNotExist(err) {
			return nil, err
		}
	}

	if v := strings.TrimSpace(os.Getenv("TASKFLOW_API_URL")); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("TASKFLOW_TOKEN_PATH"); v != "" {
		cfg.TokenPath = v
	}
	if v := os.Getenv("TASKFLOW_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("TASKFLOW_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = b
		}
	}
	return cfg, nil
}

// BaseURL resolves the effective API base URL. An unset or same-origin value
// falls back to relative addressing against the development default.
func (c *Config) BaseURL() string {
	url := strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	if url == "" {
		return defaultBaseURL
	}
	return url
}

// ConfigFilePath returns the path of the optional config file.
func ConfigFilePath() string {
	dir := taskflowDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

func taskflowDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".taskflow"
	}
	return filepath.Join(home, ".taskflow")
}

func loadFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return err
	}
	return v.Unmarshal(cfg)
}
