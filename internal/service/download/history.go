package download

//go:generate $MOCKGEN -source=history.go -destination=mocks/history_mock.go

import (
	"context"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/weakish/fm163/internal/constants"
	"github.com/weakish/fm163/internal/logger"
	"github.com/weakish/fm163/internal/utils"
)

const (
	// historyFilename is the binary history file inside the state directory.
	historyFilename = "history"
	// metaFilename is the per-track metadata file inside the state directory.
	metaFilename = "meta.json"
	// exportFilename is the human-readable projection of the history.
	exportFilename = "songs_id.json"
)

// TrackMeta holds the descriptive metadata recorded for a processed track.
type TrackMeta struct {
	// Name is the track title.
	Name string `json:"name"`
	// Artist is the comma-joined artist names.
	Artist string `json:"artist"`
	// Album is the album title.
	Album string `json:"album"`
	// URL is the track's public page URL.
	URL string `json:"url"`
	// Bitrate is the obtained variant, empty when no variant was obtainable.
	Bitrate string `json:"bitrate"`
}

// historyEntry is a single (track, bitrate) pair.
// Fields are exported for gob serialization.
type historyEntry struct {
	TrackID int64
	Bitrate Bitrate
}

// exportEntry is the JSON shape of a history pair in songs_id.json.
type exportEntry struct {
	TrackID int64  `json:"track_id"`
	Bitrate string `json:"bitrate"`
}

// HistoryStore is the authoritative record of which (track, bitrate) pairs
// have already been obtained. The set only grows; Add is idempotent.
type HistoryStore interface {
	// Contains reports whether the pair is already recorded.
	Contains(trackID int64, bitrate Bitrate) bool
	// BitratesOf returns all bitrates recorded for the track, in quality order.
	BitratesOf(trackID int64) []Bitrate
	// Add records a pair and updates the track metadata.
	Add(trackID int64, bitrate Bitrate, meta *TrackMeta)
	// UpsertMeta updates the track metadata without recording a pair.
	UpsertMeta(trackID int64, meta *TrackMeta)
	// Load reads the history and metadata files from the state directory.
	Load(ctx context.Context) error
	// Save atomically writes the history and metadata files.
	Save(ctx context.Context) error
	// ExportReadable regenerates the songs_id.json projection.
	ExportReadable(ctx context.Context) error
	// Len returns the number of recorded pairs.
	Len() int
}

// HistoryStoreImpl keeps the pairs as a sorted slice with binary-searched membership.
type HistoryStoreImpl struct {
	// stateDir is the directory holding the history, metadata, and export files.
	stateDir string
	// entries is sorted by (TrackID, Bitrate).
	entries []historyEntry
	// meta maps track ID (decimal string) to its recorded metadata.
	meta map[string]*TrackMeta

	mutex sync.RWMutex
}

// NewHistoryStore creates a history store backed by files in stateDir.
func NewHistoryStore(stateDir string) HistoryStore {
	return &HistoryStoreImpl{
		stateDir: stateDir,
		meta:     make(map[string]*TrackMeta),
	}
}

// Contains reports whether the pair is already recorded.
func (h *HistoryStoreImpl) Contains(trackID int64, bitrate Bitrate) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	index := h.searchLocked(trackID, bitrate)

	return index < len(h.entries) &&
		h.entries[index].TrackID == trackID &&
		h.entries[index].Bitrate == bitrate
}

// BitratesOf returns all bitrates recorded for the track, in quality order.
func (h *HistoryStoreImpl) BitratesOf(trackID int64) []Bitrate {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	var result []Bitrate

	// Pairs for one track are adjacent in the sorted slice.
	for i := h.searchLocked(trackID, 0); i < len(h.entries) && h.entries[i].TrackID == trackID; i++ {
		result = append(result, h.entries[i].Bitrate)
	}

	return result
}

// Add records a pair and updates the track metadata.
// Recording the same pair twice is a no-op for the set.
func (h *HistoryStoreImpl) Add(trackID int64, bitrate Bitrate, meta *TrackMeta) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	index := h.searchLocked(trackID, bitrate)

	alreadyPresent := index < len(h.entries) &&
		h.entries[index].TrackID == trackID &&
		h.entries[index].Bitrate == bitrate

	if !alreadyPresent {
		entry := historyEntry{TrackID: trackID, Bitrate: bitrate}
		h.entries = append(h.entries, historyEntry{})
		copy(h.entries[index+1:], h.entries[index:])
		h.entries[index] = entry
	}

	if meta != nil {
		h.meta[strconv.FormatInt(trackID, 10)] = meta
	}
}

// UpsertMeta updates the track metadata without recording a pair.
// Last write wins.
func (h *HistoryStoreImpl) UpsertMeta(trackID int64, meta *TrackMeta) {
	if meta == nil {
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.meta[strconv.FormatInt(trackID, 10)] = meta
}

// Len returns the number of recorded pairs.
func (h *HistoryStoreImpl) Len() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.entries)
}

// Load reads the history and metadata files from the state directory.
// A missing or corrupt file degrades to an empty store with a warning,
// it never fails the run.
func (h *HistoryStoreImpl) Load(ctx context.Context) error {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.entries = h.loadEntries(ctx)
	h.meta = h.loadMeta(ctx)

	return nil
}

func (h *HistoryStoreImpl) loadEntries(ctx context.Context) []historyEntry {
	historyPath := filepath.Join(h.stateDir, historyFilename)

	file, err := os.Open(filepath.Clean(historyPath))
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warnf(ctx, "Failed to open history file '%s', starting empty: %v", historyPath, err)
		}

		return nil
	}

	defer file.Close() //nolint:errcheck // Read-only file, error on close is not critical.

	var entries []historyEntry
	if err = gob.NewDecoder(file).Decode(&entries); err != nil {
		logger.Warnf(ctx, "History file '%s' is corrupt, starting empty: %v", historyPath, err)

		return nil
	}

	// The file is written sorted, but trust nothing on disk.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TrackID != entries[j].TrackID {
			return entries[i].TrackID < entries[j].TrackID
		}

		return entries[i].Bitrate < entries[j].Bitrate
	})

	return entries
}

func (h *HistoryStoreImpl) loadMeta(ctx context.Context) map[string]*TrackMeta {
	metaPath := filepath.Join(h.stateDir, metaFilename)

	content, err := os.ReadFile(filepath.Clean(metaPath))
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warnf(ctx, "Failed to read metadata file '%s', starting empty: %v", metaPath, err)
		}

		return make(map[string]*TrackMeta)
	}

	meta := make(map[string]*TrackMeta)
	if err = json.Unmarshal(content, &meta); err != nil {
		logger.Warnf(ctx, "Metadata file '%s' is corrupt, starting empty: %v", metaPath, err)

		return make(map[string]*TrackMeta)
	}

	return meta
}

// Save atomically writes the history and metadata files.
func (h *HistoryStoreImpl) Save(_ context.Context) error {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if err := os.MkdirAll(h.stateDir, constants.DefaultFolderPermissions); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	if err := h.saveEntriesLocked(); err != nil {
		return err
	}

	return h.saveMetaLocked()
}

func (h *HistoryStoreImpl) saveEntriesLocked() error {
	tempPath := filepath.Join(h.stateDir, historyFilename+"."+uuid.NewString()+".tmp")

	file, err := os.OpenFile(filepath.Clean(tempPath),
		os.O_WRONLY|os.O_CREATE|os.O_TRUNC, constants.DefaultFilePermissions)
	if err != nil {
		return fmt.Errorf("failed to create temporary history file: %w", err)
	}

	if err = gob.NewEncoder(file).Encode(h.entries); err != nil {
		file.Close() //nolint:errcheck,gosec // Encoding already failed.
		_ = os.Remove(tempPath)

		return fmt.Errorf("failed to encode history: %w", err)
	}

	if err = file.Close(); err != nil {
		_ = os.Remove(tempPath)

		return fmt.Errorf("failed to close temporary history file: %w", err)
	}

	if err = os.Rename(tempPath, filepath.Join(h.stateDir, historyFilename)); err != nil {
		_ = os.Remove(tempPath)

		return fmt.Errorf("failed to finalize history file: %w", err)
	}

	return nil
}

func (h *HistoryStoreImpl) saveMetaLocked() error {
	content, err := json.MarshalIndent(h.meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	return h.writeFileAtomic(metaFilename, content)
}

// ExportReadable regenerates the songs_id.json projection.
// The projection is derived from the in-memory set and never read back.
func (h *HistoryStoreImpl) ExportReadable(_ context.Context) error {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if err := os.MkdirAll(h.stateDir, constants.DefaultFolderPermissions); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	entries := utils.Map(h.entries, func(e historyEntry) exportEntry {
		return exportEntry{
			TrackID: e.TrackID,
			Bitrate: e.Bitrate.AsStreamURLParameterValue(),
		}
	})

	content, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}

	return h.writeFileAtomic(exportFilename, content)
}

// writeFileAtomic writes content to a uuid-suffixed temp file and renames it in place.
func (h *HistoryStoreImpl) writeFileAtomic(filename string, content []byte) error {
	tempPath := filepath.Join(h.stateDir, filename+"."+uuid.NewString()+".tmp")

	if err := os.WriteFile(tempPath, content, constants.DefaultFilePermissions); err != nil {
		return fmt.Errorf("failed to write temporary file for '%s': %w", filename, err)
	}

	if err := os.Rename(tempPath, filepath.Join(h.stateDir, filename)); err != nil {
		_ = os.Remove(tempPath)

		return fmt.Errorf("failed to finalize '%s': %w", filename, err)
	}

	return nil
}

// searchLocked returns the insertion index for the pair in the sorted slice.
func (h *HistoryStoreImpl) searchLocked(trackID int64, bitrate Bitrate) int {
	return sort.Search(len(h.entries), func(i int) bool {
		if h.entries[i].TrackID != trackID {
			return h.entries[i].TrackID >= trackID
		}

		return h.entries[i].Bitrate >= bitrate
	})
}
