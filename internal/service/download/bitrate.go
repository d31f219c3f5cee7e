package download

// defaultFallbackOrder is the fixed variant preference for SelectionModeDefault.
// Mid comes first on purpose: a 320 Kbps MP3 beats a lossless file several
// times its size for everyday listening, and low is the last resort.
//
//nolint:gochecknoglobals // Immutable lookup table.
var defaultFallbackOrder = []Bitrate{BitrateMid, BitrateHigh, BitrateLow}

// highestFirstOrder ranks variants from best to worst for SelectionModeHighest.
//
//nolint:gochecknoglobals // Immutable lookup table.
var highestFirstOrder = []Bitrate{BitrateHigh, BitrateMid, BitrateLow}

// NextBitrate picks the bitrate variant to obtain for a track.
// It returns the first candidate (in the mode's preference order) that the
// catalog offers and the history does not yet contain.
// The second return value is false when nothing remains to obtain;
// an empty available set is the caller's distinct no-variant outcome.
func NextBitrate(available, obtained []Bitrate, mode SelectionMode) (Bitrate, bool) {
	candidates := defaultFallbackOrder
	if mode == SelectionModeHighest {
		candidates = highestFirstOrder
	}

	availableSet := toBitrateSet(available)
	obtainedSet := toBitrateSet(obtained)

	for _, candidate := range candidates {
		if availableSet[candidate] && !obtainedSet[candidate] {
			return candidate, true
		}
	}

	return BitrateUnknown, false
}

// ParseBitrates converts raw catalog variant strings to Bitrate values,
// dropping anything unrecognized.
func ParseBitrates(raw []string) []Bitrate {
	result := make([]Bitrate, 0, len(raw))

	for _, s := range raw {
		if b := ParseBitrate(s); b != BitrateUnknown {
			result = append(result, b)
		}
	}

	return result
}

func toBitrateSet(bitrates []Bitrate) map[Bitrate]bool {
	set := make(map[Bitrate]bool, len(bitrates))
	for _, b := range bitrates {
		set[b] = true
	}

	return set
}
