package app

import (
	"context"

	"github.com/weakish/fm163/internal/config"
	"github.com/weakish/fm163/internal/logger"
)

// ExecuteAuthTokenCommand saves the given session token to the configuration file.
// The token is the value of the MUSIC_U cookie from a logged-in browser session.
func ExecuteAuthTokenCommand(ctx context.Context, cfg *config.Config, token string) {
	cfg.AuthToken = token

	if err := config.SaveConfig(cfg); err != nil {
		logger.Fatalf(ctx, "Failed to save configuration: %v", err)
		return
	}

	logger.Info(ctx, "Configuration updated successfully!")
	logger.Info(ctx, "You can now download playlists:")
	logger.Info(ctx, "  fm163 https://music.163.com/#/playlist?id=24381616")
}
