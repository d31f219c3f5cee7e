package cmd

import (
	"github.com/spf13/cobra"

	"github.com/weakish/fm163/internal/app"
)

var (
	authCmd = &cobra.Command{
		Use:   "auth",
		Short: "Authentication management commands",
		Long: `Manage authentication for the music catalog.

Use 'auth token' to save a session token extracted from your browser.`,
	}

	authTokenCmd = &cobra.Command{
		Use:   "token {value}",
		Short: "Save a session token to the configuration file",
		Long: `Saves a session token to the configuration file.

To obtain the token:
1. Log in to the catalog website in your browser
2. Open the developer tools and find the MUSIC_U cookie
3. Copy its value and pass it to this command

Premium variants (MP3 320 Kbps, FLAC) require a valid token;
without one only the free MP3 96 Kbps variant is available.`,
		Args:             cobra.ExactArgs(1),
		PersistentPreRun: initConfig,
		Run: func(cmd *cobra.Command, args []string) {
			app.ExecuteAuthTokenCommand(cmd.Context(), appConfig, args[0])
		},
	}
)

//nolint:gochecknoinits // Cobra requires the init function to set up commands.
func init() {
	// Add token subcommand to auth command.
	authCmd.AddCommand(authTokenCmd)

	// Add auth command to root command.
	rootCmd.AddCommand(authCmd)
}
