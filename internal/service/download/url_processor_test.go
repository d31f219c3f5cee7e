package download

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLProcessor_ExtractPlaylistIDs(t *testing.T) {
	t.Parallel()

	processor := NewURLProcessor()
	ctx := context.Background()

	tests := []struct {
		name        string
		args        []string
		expected    []string
		expectError bool
	}{
		{
			name:     "numeric IDs",
			args:     []string{"123", "456"},
			expected: []string{"123", "456"},
		},
		{
			name:     "fragment style playlist URL",
			args:     []string{"https://music.163.com/#/playlist?id=789"},
			expected: []string{"789"},
		},
		{
			name:     "plain playlist URL with extra parameters",
			args:     []string{"https://music.163.com/playlist?id=42&userid=7"},
			expected: []string{"42"},
		},
		{
			name:     "duplicates collapse preserving order",
			args:     []string{"123", "https://music.163.com/#/playlist?id=123", "456"},
			expected: []string{"123", "456"},
		},
		{
			name:     "surrounding whitespace tolerated",
			args:     []string{"  123  "},
			expected: []string{"123"},
		},
		{
			name:        "non-numeric garbage",
			args:        []string{"not-a-playlist"},
			expectError: true,
		},
		{
			name:        "URL without id parameter",
			args:        []string{"https://music.163.com/#/playlist"},
			expectError: true,
		},
		{
			name:        "empty argument",
			args:        []string{""},
			expectError: true,
		},
		{
			name:        "one bad argument fails the whole call",
			args:        []string{"123", "nope"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ids, err := processor.ExtractPlaylistIDs(ctx, tt.args)
			if tt.expectError {
				require.ErrorIs(t, err, ErrInvalidPlaylistArgument)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, ids)
		})
	}
}
