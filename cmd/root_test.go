package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weakish/fm163/internal/config"
	"github.com/weakish/fm163/internal/constants"
)

const testBaseConfigContent = `
auth_token: "config_token"
catalog_base_url: "https://music.163.com"
output_path: "/config/output"
track_filename_template: "{{.trackArtist}} - {{.trackTitle}}"
log_level: "info"
download_speed_limit: "500KB"
retry_attempts_count: 3
min_retry_pause: "1s"
max_retry_pause: "3s"
replace_tracks: false
`

// newTestFlagSet creates a command carrying the same flags as the root command.
func newTestFlagSet() *cobra.Command {
	testCmd := &cobra.Command{Use: "test"}

	testCmd.Flags().BoolP("dry-run", "D", false, "dry run")
	testCmd.Flags().BoolP("highest", "H", false, "highest bitrate")
	testCmd.Flags().StringP("output", "o", "", "output directory")
	testCmd.Flags().StringP("speed-limit", "s", "", "download speed limit")

	return testCmd
}

// writeTestConfig writes the base config to a temp file and loads it.
func writeTestConfig(t *testing.T) *config.Config {
	t.Helper()

	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test-config.yaml")

	err := os.WriteFile(
		configPath,
		[]byte(testBaseConfigContent+"\nstate_dir: \""+tempDir+"\"\n"),
		constants.DefaultFilePermissions,
	) //nolint:gosec // It's a test file.
	require.NoError(t, err)

	cfg, err := config.LoadConfig(configPath)
	require.NoError(t, err)

	return cfg
}

// TestFlagOverrides tests that command-line flags correctly override configuration file values.
//
//nolint:tparallel // Cannot run in parallel due to Viper global state.
func TestFlagOverrides(t *testing.T) {
	tests := []struct {
		name           string
		flags          map[string]string
		expectedConfig func(*testing.T, *config.Config)
	}{
		{
			name:  "no flags - use config values",
			flags: map[string]string{},
			expectedConfig: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.False(t, cfg.DryRun)
				assert.False(t, cfg.HighestBitrate)
				assert.Equal(t, "/config/output", cfg.OutputPath)
				assert.Equal(t, "500KB", cfg.DownloadSpeedLimit)
			},
		},
		{
			name:  "dry-run flag only",
			flags: map[string]string{"dry-run": "true"},
			expectedConfig: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.True(t, cfg.DryRun)
				assert.False(t, cfg.HighestBitrate)
			},
		},
		{
			name:  "highest flag only",
			flags: map[string]string{"highest": "true"},
			expectedConfig: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.True(t, cfg.HighestBitrate)
				assert.False(t, cfg.DryRun)
			},
		},
		{
			name:  "output flag only - override output path",
			flags: map[string]string{"output": "/flag/output"},
			expectedConfig: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.Equal(t, "/flag/output", cfg.OutputPath)
				assert.Equal(t, "500KB", cfg.DownloadSpeedLimit)
			},
		},
		{
			name:  "speed-limit flag only - override speed limit",
			flags: map[string]string{"speed-limit": "1MB"},
			expectedConfig: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.Equal(t, "1MB", cfg.DownloadSpeedLimit)
				assert.Equal(t, int64(1000000), cfg.ParsedDownloadSpeedLimit)
			},
		},
		{
			name: "all flags - override everything",
			flags: map[string]string{
				"dry-run":     "true",
				"highest":     "true",
				"output":      "/all/flags/output",
				"speed-limit": "2MB",
			},
			expectedConfig: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.True(t, cfg.DryRun)
				assert.True(t, cfg.HighestBitrate)
				assert.Equal(t, "/all/flags/output", cfg.OutputPath)
				assert.Equal(t, "2MB", cfg.DownloadSpeedLimit)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := writeTestConfig(t)

			testCmd := newTestFlagSet()
			for flagName, flagValue := range tt.flags {
				require.NoError(t, testCmd.Flags().Set(flagName, flagValue),
					"failed to set flag %s", flagName)
			}

			err := bindFlagsToConfig(testCmd.Flags(), cfg)
			require.NoError(t, err)

			tt.expectedConfig(t, cfg)
		})
	}
}

// TestFlagOverrides_InvalidValues tests that invalid flag values are caught during validation.
//
//nolint:tparallel // Cannot run in parallel due to Viper global state.
func TestFlagOverrides_InvalidValues(t *testing.T) {
	cfg := writeTestConfig(t)

	testCmd := newTestFlagSet()
	require.NoError(t, testCmd.Flags().Set("speed-limit", "invalid-speed"))

	err := bindFlagsToConfig(testCmd.Flags(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse download speed limit")
}

// TestBindFlagsToConfig_EmptyFlagSet tests handling of empty flag set.
func TestBindFlagsToConfig_EmptyFlagSet(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		AuthToken:          "test_token",
		CatalogBaseURL:     config.DefaultCatalogBaseURL,
		StateDir:           t.TempDir(),
		LogLevel:           "info",
		RetryAttemptsCount: 3,
		MinRetryPause:      "1s",
		MaxRetryPause:      "3s",
	}

	// Calling with empty flag set should just validate the config.
	emptyFlags := pflag.NewFlagSet("test", pflag.ContinueOnError)

	err := bindFlagsToConfig(emptyFlags, cfg)
	require.NoError(t, err)
}
