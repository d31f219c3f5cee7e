package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/weakish/fm163/internal/app"
	"github.com/weakish/fm163/internal/config"
	"github.com/weakish/fm163/internal/logger"
	"github.com/weakish/fm163/internal/version"
)

var (
	//nolint:gochecknoglobals // It is required for configuration initialization before the application starts.
	configFilenameFromFlag string

	//nolint:gochecknoglobals,lll // It is initialized once during the application's startup and shared across the command execution logic.
	appConfig *config.Config

	//nolint:gochecknoglobals,lll // Cobra command requires a global definition for proper command-line parsing and execution.
	rootCmd = &cobra.Command{
		Use:     "fm163 [flags] {playlists}",
		Version: version.Full(),
		Short:   "Batch-download playlist tracks with history-based deduplication.",
		Long: `fm163 is a CLI tool for batch-downloading tracks from playlists.

Playlists are given as numeric IDs or as playlist page URLs. Every obtained
(track, bitrate) pair is recorded in a persistent history, so repeated runs
skip everything that was already downloaded.

The application provides flexible naming templates, bitrate selection,
and download speed limits.`,
		Args:             cobra.ArbitraryArgs,
		PersistentPreRun: initConfig,
		Run: func(cmd *cobra.Command, playlistArgs []string) {
			if err := bindFlagsToConfig(cmd.Flags(), appConfig); err != nil {
				logger.Fatalf(cmd.Context(), "Failed to parse flags: %v", err)
			}

			exportOnly, _ := cmd.Flags().GetBool("export")
			if exportOnly {
				app.ExecuteExportCommand(cmd.Context(), appConfig)
				return
			}

			if len(playlistArgs) == 0 {
				logger.Fatal(cmd.Context(), "At least one playlist ID or URL is required")
			}

			app.ExecuteRootCommand(cmd.Context(), appConfig, playlistArgs)
		},
	}
)

// Execute executes the root command.
func Execute() {
	signals := []os.Signal{syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM}
	ctx, stop := signal.NotifyContext(context.Background(), signals...)

	defer func() {
		_ = logger.Logger().Sync()
	}()

	defer stop()

	go func() {
		defer stop()

		err := rootCmd.ExecuteContext(ctx)
		cobra.CheckErr(err)
	}()

	<-ctx.Done()
}

//nolint:gochecknoinits // Cobra requires the init function to set up flags before the command is executed.
func init() {
	rootCmd.PersistentFlags().StringVarP(
		&configFilenameFromFlag,
		"config",
		"c",
		"",
		fmt.Sprintf("path to the configuration file (default is '%s' in the state directory)",
			config.DefaultConfigFilename))

	rootCmdFlags := rootCmd.Flags()

	rootCmdFlags.BoolP(
		"dry-run",
		"D",
		false,
		"preview what would be downloaded and record it in the history without transferring any audio.")

	rootCmdFlags.BoolP(
		"highest",
		"H",
		false,
		"prefer the best available bitrate instead of the default MP3 320 Kbps.")

	rootCmdFlags.BoolP(
		"export",
		"j",
		false,
		"regenerate the human-readable history export and exit.")

	rootCmdFlags.StringP(
		"output",
		"o",
		"",
		"directory to save downloaded files (the path will be created if it doesn't exist).")

	rootCmdFlags.StringP(
		"speed-limit",
		"s",
		"",
		"set download speed limit, for example: 500 kbps, 1 mbps, 1.5 mbps.")
}

func initConfig(cmd *cobra.Command, _ []string) {
	var err error

	appConfig, err = config.LoadConfig(configFilenameFromFlag)
	if err != nil {
		logger.Fatalf(cmd.Context(), "Failed to load configuration: %v", err)
	}

	logger.SetLevel(appConfig.ParsedLogLevel)
}

func bindFlagsToConfig(flags *pflag.FlagSet, cfg *config.Config) error {
	if flag := flags.Lookup("dry-run"); flag != nil && flag.Changed {
		cfg.DryRun, _ = flags.GetBool("dry-run")
	}

	if flag := flags.Lookup("highest"); flag != nil && flag.Changed {
		cfg.HighestBitrate, _ = flags.GetBool("highest")
	}

	if flag := flags.Lookup("output"); flag != nil && flag.Changed {
		cfg.OutputPath, _ = flags.GetString("output")
	}

	if flag := flags.Lookup("speed-limit"); flag != nil && flag.Changed {
		cfg.DownloadSpeedLimit, _ = flags.GetString("speed-limit")
	}

	return config.ValidateConfig(cfg)
}
