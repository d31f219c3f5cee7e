package download

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/weakish/fm163/internal/config"
)

// TestTemplateManager_GetTrackFilename tests filename generation with a custom template.
func TestTemplateManager_GetTrackFilename(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cfg := &config.Config{
		TrackFilenameTemplate: "{{.trackArtist}} - {{.trackTitle}}",
	}

	manager := NewTemplateManager(ctx, cfg)
	assert.Implements(t, (*TemplateManager)(nil), manager)

	result := manager.GetTrackFilename(ctx, map[string]string{
		"trackArtist": "Test Artist",
		"trackTitle":  "Test Track",
	})
	assert.Equal(t, "Test Artist - Test Track", result)
}

// TestTemplateManager_InvalidTemplate tests fallback to the default template.
func TestTemplateManager_InvalidTemplate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cfg := &config.Config{
		TrackFilenameTemplate: "{{.broken", // invalid template
	}

	manager := NewTemplateManager(ctx, cfg)

	result := manager.GetTrackFilename(ctx, map[string]string{
		"trackArtist": "Test Artist",
		"trackTitle":  "Test Track",
	})

	// Should use the default template.
	assert.Equal(t, "Test Artist - Test Track", result)
}

// TestTemplateManager_UnescapesHTMLEntities tests that HTML entities are unescaped.
func TestTemplateManager_UnescapesHTMLEntities(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cfg := &config.Config{
		TrackFilenameTemplate: config.DefaultTrackFilenameTemplate,
	}

	manager := NewTemplateManager(ctx, cfg)

	result := manager.GetTrackFilename(ctx, map[string]string{
		"trackArtist": "Simon & Garfunkel",
		"trackTitle":  "America",
	})
	assert.Equal(t, "Simon & Garfunkel - America", result)
}
