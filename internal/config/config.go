// Package config loads, validates, and persists the application configuration.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/weakish/fm163/internal/constants"
	"github.com/weakish/fm163/internal/logger"
	"github.com/weakish/fm163/internal/utils"
)

// Config holds all configuration settings.
type Config struct {
	// AuthToken is the authentication token for catalog API access.
	// It is optional; anonymous access works for public playlists.
	AuthToken string `mapstructure:"auth_token"`
	// CatalogBaseURL is the base URL of the remote music catalog.
	CatalogBaseURL string `mapstructure:"catalog_base_url"`
	// StateDir is the directory holding the download history, metadata, and lock files.
	StateDir string `mapstructure:"state_dir"`
	// OutputPath is the directory path where downloaded files will be saved.
	OutputPath string `mapstructure:"output_path"`
	// TrackFilenameTemplate is the template for naming downloaded track files.
	TrackFilenameTemplate string `mapstructure:"track_filename_template"`
	// LogLevel specifies the logging verbosity level.
	LogLevel string `mapstructure:"log_level"`
	// DownloadSpeedLimit sets the maximum download speed (e.g., "1MB", "500KB").
	DownloadSpeedLimit string `mapstructure:"download_speed_limit"`
	// RetryAttemptsCount is the number of retry attempts for throttled stream metadata requests.
	RetryAttemptsCount int64 `mapstructure:"retry_attempts_count"`
	// MinRetryPause is the minimum pause duration before retrying.
	MinRetryPause string `mapstructure:"min_retry_pause"`
	// MaxRetryPause is the maximum pause duration before retrying.
	MaxRetryPause string `mapstructure:"max_retry_pause"`
	// ReplaceTracks indicates whether to overwrite already downloaded track files.
	ReplaceTracks bool `mapstructure:"replace_tracks"`
	// DryRun indicates whether to record history and metadata without transferring bytes.
	DryRun bool
	// HighestBitrate selects the maximum available bitrate instead of the default fallback order.
	HighestBitrate bool
	// ParsedLogLevel is the parsed zap log level.
	ParsedLogLevel zapcore.Level
	// ParsedDownloadSpeedLimit is the parsed download speed limit in bytes per second.
	ParsedDownloadSpeedLimit int64
	// ParsedMinRetryPause is the parsed minimum retry pause duration.
	ParsedMinRetryPause time.Duration
	// ParsedMaxRetryPause is the parsed maximum retry pause duration.
	ParsedMaxRetryPause time.Duration
}

const (
	// DefaultCatalogBaseURL is the base URL of the music catalog.
	DefaultCatalogBaseURL = "https://music.163.com"

	// DefaultStateDirName is the name of the per-user state directory under the home directory.
	DefaultStateDirName = ".fm163"

	// DefaultConfigFilename is the name of the configuration file inside the state directory.
	DefaultConfigFilename = "config.yaml"

	// DefaultOutputPath is the default directory for downloaded tracks.
	DefaultOutputPath = "downloads"

	// DefaultTrackFilenameTemplate is the default template for naming downloaded track files.
	DefaultTrackFilenameTemplate = "{{.trackArtist}} - {{.trackTitle}}"

	// defaultLogLevel is used when the configuration does not specify one.
	defaultLogLevel = "info"

	// defaultRetryAttemptsCount is used when the configuration does not specify one.
	defaultRetryAttemptsCount = 3

	// defaultMinRetryPause is used when the configuration does not specify one.
	defaultMinRetryPause = "1s"

	// defaultMaxRetryPause is used when the configuration does not specify one.
	defaultMaxRetryPause = "5s"
)

// Static error definitions for better error handling.
var (
	// ErrEmptyStateDir indicates that no state directory could be determined.
	ErrEmptyStateDir = errors.New("state directory cannot be empty")
	// ErrInvalidCatalogBaseURL indicates that the catalog base URL is not a valid absolute URL.
	ErrInvalidCatalogBaseURL = errors.New("invalid catalog base URL")
	// ErrUnknownLogLevel indicates that the log level is not recognized.
	ErrUnknownLogLevel = errors.New("unknown log level")
	// ErrInvalidRetryAttempts indicates that the retry attempts count is invalid.
	ErrInvalidRetryAttempts = errors.New("retry attempts count must be a positive integer")
	// ErrInvalidMinRetryPause indicates that the min retry pause duration is invalid.
	ErrInvalidMinRetryPause = errors.New("min_retry_pause must be positive")
	// ErrInvalidMaxRetryPause indicates that the max retry pause duration is invalid.
	ErrInvalidMaxRetryPause = errors.New("max_retry_pause must be positive")
)

// DefaultStateDir returns the per-user state directory (~/.fm163).
func DefaultStateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}

	return filepath.Join(home, DefaultStateDirName), nil
}

// LoadConfig loads configuration settings from a YAML file.
// With an empty filename the default location (~/.fm163/config.yaml) is used,
// and a missing file there degrades to built-in defaults.
// An explicitly requested file must exist.
func LoadConfig(configFilename string) (*Config, error) {
	isDefaultLocation := configFilename == ""

	if isDefaultLocation {
		stateDir, err := DefaultStateDir()
		if err != nil {
			return nil, err
		}

		configFilename = filepath.Join(stateDir, DefaultConfigFilename)
	}

	viper.SetConfigFile(configFilename)

	if err := viper.ReadInConfig(); err != nil {
		// The default config file is optional, an explicitly requested one is not.
		if !(isDefaultLocation && os.IsNotExist(err)) {
			return nil, fmt.Errorf("failed to read config from file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

// applyDefaults fills unset fields with built-in defaults.
func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.CatalogBaseURL) == "" {
		cfg.CatalogBaseURL = DefaultCatalogBaseURL
	}

	if strings.TrimSpace(cfg.OutputPath) == "" {
		cfg.OutputPath = DefaultOutputPath
	}

	if strings.TrimSpace(cfg.TrackFilenameTemplate) == "" {
		cfg.TrackFilenameTemplate = DefaultTrackFilenameTemplate
	}

	if strings.TrimSpace(cfg.LogLevel) == "" {
		cfg.LogLevel = defaultLogLevel
	}

	if cfg.RetryAttemptsCount == 0 {
		cfg.RetryAttemptsCount = defaultRetryAttemptsCount
	}

	if strings.TrimSpace(cfg.MinRetryPause) == "" {
		cfg.MinRetryPause = defaultMinRetryPause
	}

	if strings.TrimSpace(cfg.MaxRetryPause) == "" {
		cfg.MaxRetryPause = defaultMaxRetryPause
	}
}

// ValidateConfig checks the configuration for validity and sets derived fields.
func ValidateConfig(cfg *Config) error {
	var err error

	if strings.TrimSpace(cfg.StateDir) == "" {
		cfg.StateDir, err = DefaultStateDir()
		if err != nil {
			return err
		}
	}

	if cfg.StateDir == "" {
		return ErrEmptyStateDir
	}

	parsedBaseURL, err := url.Parse(cfg.CatalogBaseURL)
	if err != nil || !parsedBaseURL.IsAbs() {
		return fmt.Errorf("%w: '%s'", ErrInvalidCatalogBaseURL, cfg.CatalogBaseURL)
	}

	parsedLogLevel, isLogLevelCorrect := logger.ParseLogLevel(cfg.LogLevel)
	if !isLogLevelCorrect {
		return fmt.Errorf("%w: '%s'", ErrUnknownLogLevel, cfg.LogLevel)
	}

	cfg.ParsedLogLevel = parsedLogLevel

	downloadSpeedLimit := strings.TrimSpace(cfg.DownloadSpeedLimit)

	var parsedDownloadSpeedLimit uint64

	if downloadSpeedLimit != "" && downloadSpeedLimit != "0" {
		parsedDownloadSpeedLimit, err = humanize.ParseBytes(downloadSpeedLimit)
		if err != nil {
			return fmt.Errorf("failed to parse download speed limit: %w", err)
		}
	}

	// io.CopyN accepts only int64 so we transform it safely in order to use it later.
	cfg.ParsedDownloadSpeedLimit = utils.SafeUint64ToInt64(parsedDownloadSpeedLimit)

	if cfg.RetryAttemptsCount <= 0 {
		return ErrInvalidRetryAttempts
	}

	cfg.ParsedMinRetryPause, err = time.ParseDuration(cfg.MinRetryPause)
	if err != nil {
		return fmt.Errorf("failed to parse min retry pause: %w", err)
	}

	if cfg.ParsedMinRetryPause <= 0 {
		return ErrInvalidMinRetryPause
	}

	cfg.ParsedMaxRetryPause, err = time.ParseDuration(cfg.MaxRetryPause)
	if err != nil {
		return fmt.Errorf("failed to parse max retry pause: %w", err)
	}

	if cfg.ParsedMaxRetryPause <= 0 {
		return ErrInvalidMaxRetryPause
	}

	return nil
}

// SaveConfig saves the configuration to the file while preserving the original format and order.
// Only the auth_token value is updated; everything else is left untouched.
func SaveConfig(cfg *Config) error {
	configFile, err := getConfigFilePath()
	if err != nil {
		return err
	}

	// Read the original file content.
	originalContent, err := os.ReadFile(configFile)
	if err != nil {
		return handleMissingConfigFile(configFile, cfg.AuthToken, err)
	}

	// Parse YAML while preserving order using yaml.Node.
	var node yaml.Node
	if err = yaml.Unmarshal(originalContent, &node); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Update the auth_token value in the node tree.
	updateAuthTokenInNode(&node, cfg.AuthToken)

	// Marshal back to YAML (preserves order).
	newContent, err := yaml.Marshal(&node)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err = os.WriteFile(configFile, newContent, constants.DefaultFilePermissions); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// getConfigFilePath returns the config file path from viper or the default.
func getConfigFilePath() (string, error) {
	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		return configFile, nil
	}

	stateDir, err := DefaultStateDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(stateDir, DefaultConfigFilename), nil
}

// handleMissingConfigFile creates a new config file if it doesn't exist.
func handleMissingConfigFile(configFile, authToken string, err error) error {
	if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err = os.MkdirAll(filepath.Dir(configFile), constants.DefaultFolderPermissions); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// File doesn't exist, create it with viper.
	viper.Set("auth_token", authToken)

	if err = viper.SafeWriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	return nil
}

// updateAuthTokenInNode updates the auth_token value in the YAML node tree.
func updateAuthTokenInNode(node *yaml.Node, authToken string) {
	// The root node is a document node, content[0] is the actual map.
	if len(node.Content) == 0 || node.Content[0].Kind != yaml.MappingNode {
		return
	}

	mapNode := node.Content[0]

	// Iterate through key-value pairs (stored as alternating nodes).
	for i := 0; i < len(mapNode.Content); i += 2 {
		keyNode := mapNode.Content[i]
		valueNode := mapNode.Content[i+1]

		if keyNode.Value == "auth_token" {
			// Update the value while preserving style.
			valueNode.Value = authToken

			// Ensure it's quoted if it contains special characters.
			if valueNode.Style == 0 {
				valueNode.Style = yaml.DoubleQuotedStyle
			}

			return
		}
	}

	// No existing auth_token key, append one.
	mapNode.Content = append(mapNode.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: "auth_token"},
		&yaml.Node{Kind: yaml.ScalarNode, Value: authToken, Style: yaml.DoubleQuotedStyle},
	)
}
