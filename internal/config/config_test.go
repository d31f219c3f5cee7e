package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

func validConfig() *Config {
	return &Config{
		CatalogBaseURL:        DefaultCatalogBaseURL,
		StateDir:              "/tmp/fm163-test-state",
		OutputPath:            DefaultOutputPath,
		TrackFilenameTemplate: DefaultTrackFilenameTemplate,
		LogLevel:              "info",
		DownloadSpeedLimit:    "1MB",
		RetryAttemptsCount:    3,
		MinRetryPause:         "1s",
		MaxRetryPause:         "5s",
	}
}

func TestLoadConfig(t *testing.T) {
	configDir := t.TempDir()
	configFilename := filepath.Join(configDir, "config.yaml")

	configContent := []byte(`auth_token: "MUSIC_U=abc123"
catalog_base_url: "https://catalog.example.org"
output_path: "music"
log_level: "debug"
download_speed_limit: "2MB"
retry_attempts_count: 5
min_retry_pause: "2s"
max_retry_pause: "10s"
replace_tracks: true
`)

	require.NoError(t, os.WriteFile(configFilename, configContent, 0o644))

	cfg, err := LoadConfig(configFilename)
	require.NoError(t, err)

	assert.Equal(t, "MUSIC_U=abc123", cfg.AuthToken)
	assert.Equal(t, "https://catalog.example.org", cfg.CatalogBaseURL)
	assert.Equal(t, "music", cfg.OutputPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "2MB", cfg.DownloadSpeedLimit)
	assert.Equal(t, int64(5), cfg.RetryAttemptsCount)
	assert.True(t, cfg.ReplaceTracks)

	// Unset fields get defaults.
	assert.Equal(t, DefaultTrackFilenameTemplate, cfg.TrackFilenameTemplate)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(cfg *Config)
		expectedError error
	}{
		{
			name:   "valid config",
			mutate: func(_ *Config) {},
		},
		{
			name: "unknown log level",
			mutate: func(cfg *Config) {
				cfg.LogLevel = "loud"
			},
			expectedError: ErrUnknownLogLevel,
		},
		{
			name: "relative catalog base URL",
			mutate: func(cfg *Config) {
				cfg.CatalogBaseURL = "music.163.com"
			},
			expectedError: ErrInvalidCatalogBaseURL,
		},
		{
			name: "negative retry attempts",
			mutate: func(cfg *Config) {
				cfg.RetryAttemptsCount = -1
			},
			expectedError: ErrInvalidRetryAttempts,
		},
		{
			name: "zero min retry pause",
			mutate: func(cfg *Config) {
				cfg.MinRetryPause = "0s"
			},
			expectedError: ErrInvalidMinRetryPause,
		},
		{
			name: "zero max retry pause",
			mutate: func(cfg *Config) {
				cfg.MaxRetryPause = "0s"
			},
			expectedError: ErrInvalidMaxRetryPause,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := ValidateConfig(cfg)
			if tt.expectedError != nil {
				require.ErrorIs(t, err, tt.expectedError)
				return
			}

			require.NoError(t, err)
		})
	}
}

func TestValidateConfig_DerivedFields(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, ValidateConfig(cfg))

	assert.Equal(t, zapcore.InfoLevel, cfg.ParsedLogLevel)
	assert.Equal(t, int64(1000*1000), cfg.ParsedDownloadSpeedLimit)
	assert.Equal(t, time.Second, cfg.ParsedMinRetryPause)
	assert.Equal(t, 5*time.Second, cfg.ParsedMaxRetryPause)
}

func TestValidateConfig_UnlimitedSpeed(t *testing.T) {
	cfg := validConfig()
	cfg.DownloadSpeedLimit = ""

	require.NoError(t, ValidateConfig(cfg))
	assert.Zero(t, cfg.ParsedDownloadSpeedLimit)
}

func TestUpdateAuthTokenInNode(t *testing.T) {
	tests := []struct {
		name     string
		original string
		token    string
	}{
		{
			name:     "update existing key",
			original: "auth_token: \"old\"\noutput_path: \"music\"\n",
			token:    "new-token",
		},
		{
			name:     "append missing key",
			original: "output_path: \"music\"\n",
			token:    "fresh-token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var node yaml.Node
			require.NoError(t, yaml.Unmarshal([]byte(tt.original), &node))

			updateAuthTokenInNode(&node, tt.token)

			rendered, err := yaml.Marshal(&node)
			require.NoError(t, err)

			var parsed map[string]string
			require.NoError(t, yaml.Unmarshal(rendered, &parsed))

			assert.Equal(t, tt.token, parsed["auth_token"])
			assert.Equal(t, "music", parsed["output_path"])
		})
	}
}
