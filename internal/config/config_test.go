package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TASKFLOW_API_URL", "https://tasks.example.com/")
	t.Setenv("TASKFLOW_TOKEN_PATH", "/tmp/tf-token")
	t.Setenv("TASKFLOW_DEBUG", "true")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://tasks.example.com", cfg.BaseURL())
	require.Equal(t, "/tmp/tf-token", cfg.TokenPath)
	require.True(t, cfg.Debug)
}

func TestBaseURL_DefaultWhenUnset(t *testing.T) {
	t.Setenv("TASKFLOW_API_URL", "")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8000", cfg.BaseURL())
}

func TestBaseURL_TrimsTrailingSlash(t *testing.T) {
	cfg := &Config{APIURL: "http://api.local///"}
	require.Equal(t, "http://api.local", cfg.BaseURL())
}
