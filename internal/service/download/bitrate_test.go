package download

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextBitrate(t *testing.T) {
	t.Parallel()

	allVariants := []Bitrate{BitrateLow, BitrateMid, BitrateHigh}

	tests := []struct {
		name       string
		available  []Bitrate
		obtained   []Bitrate
		mode       SelectionMode
		expected   Bitrate
		expectedOK bool
	}{
		{
			name:       "default mode prefers mid",
			available:  allVariants,
			mode:       SelectionModeDefault,
			expected:   BitrateMid,
			expectedOK: true,
		},
		{
			name:       "default mode falls back to high when mid is missing",
			available:  []Bitrate{BitrateLow, BitrateHigh},
			mode:       SelectionModeDefault,
			expected:   BitrateHigh,
			expectedOK: true,
		},
		{
			name:       "default mode falls back to low as last resort",
			available:  []Bitrate{BitrateLow},
			mode:       SelectionModeDefault,
			expected:   BitrateLow,
			expectedOK: true,
		},
		{
			name:       "default mode skips obtained mid",
			available:  allVariants,
			obtained:   []Bitrate{BitrateMid},
			mode:       SelectionModeDefault,
			expected:   BitrateHigh,
			expectedOK: true,
		},
		{
			name:      "default mode exhausted",
			available: allVariants,
			obtained:  allVariants,
			mode:      SelectionModeDefault,
			expected:  BitrateUnknown,
		},
		{
			name:       "highest mode picks flac",
			available:  allVariants,
			mode:       SelectionModeHighest,
			expected:   BitrateHigh,
			expectedOK: true,
		},
		{
			name:       "highest mode picks next best after obtained flac",
			available:  allVariants,
			obtained:   []Bitrate{BitrateHigh},
			mode:       SelectionModeHighest,
			expected:   BitrateMid,
			expectedOK: true,
		},
		{
			name:       "highest mode with only low available",
			available:  []Bitrate{BitrateLow},
			mode:       SelectionModeHighest,
			expected:   BitrateLow,
			expectedOK: true,
		},
		{
			name:     "no variants at all",
			mode:     SelectionModeDefault,
			expected: BitrateUnknown,
		},
		{
			name:      "obtained variant not offered anymore",
			available: []Bitrate{BitrateLow},
			obtained:  []Bitrate{BitrateLow},
			mode:      SelectionModeDefault,
			expected:  BitrateUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := NextBitrate(tt.available, tt.obtained, tt.mode)
			assert.Equal(t, tt.expectedOK, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNextBitrate_Deterministic(t *testing.T) {
	t.Parallel()

	available := []Bitrate{BitrateHigh, BitrateLow, BitrateMid}

	first, ok := NextBitrate(available, nil, SelectionModeDefault)
	assert.True(t, ok)

	// Same inputs always yield the same pick regardless of slice order.
	for range 10 {
		got, gotOK := NextBitrate(available, nil, SelectionModeDefault)
		assert.True(t, gotOK)
		assert.Equal(t, first, got)
	}
}

func TestParseBitrates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		raw      []string
		expected []Bitrate
	}{
		{
			name:     "all variants",
			raw:      []string{"low", "mid", "flac"},
			expected: []Bitrate{BitrateLow, BitrateMid, BitrateHigh},
		},
		{
			name:     "unknown variants dropped",
			raw:      []string{"low", "wav", "", "opus"},
			expected: []Bitrate{BitrateLow},
		},
		{
			name:     "high alias",
			raw:      []string{"HIGH"},
			expected: []Bitrate{BitrateHigh},
		},
		{
			name:     "empty input",
			raw:      nil,
			expected: []Bitrate{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, ParseBitrates(tt.raw))
		})
	}
}

func TestParseBitrate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, BitrateLow, ParseBitrate(" Low "))
	assert.Equal(t, BitrateMid, ParseBitrate("mid"))
	assert.Equal(t, BitrateHigh, ParseBitrate("flac"))
	assert.Equal(t, BitrateUnknown, ParseBitrate("wav"))
}

func TestBitrate_Extension(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ".mp3", BitrateLow.Extension())
	assert.Equal(t, ".mp3", BitrateMid.Extension())
	assert.Equal(t, ".flac", BitrateHigh.Extension())
	assert.Equal(t, ".bin", BitrateUnknown.Extension())
}

func TestBitrate_AsStreamURLParameterValue(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "low", BitrateLow.AsStreamURLParameterValue())
	assert.Equal(t, "mid", BitrateMid.AsStreamURLParameterValue())
	assert.Equal(t, "flac", BitrateHigh.AsStreamURLParameterValue())
	assert.Empty(t, BitrateUnknown.AsStreamURLParameterValue())
}
