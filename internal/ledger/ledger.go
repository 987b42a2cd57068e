// Package ledger persists conversion progress: for every book ID, the set
// of chunk indices that have already been synthesized. All books share a
// single JSON file so one path in the config covers the whole library.
package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/log"
)

// Ledger is a handle on the shared progress file. Construct one per
// process invocation and pass it to the converter; it holds no state
// beyond the path.
type Ledger struct {
	path string
}

// New returns a ledger backed by the JSON file at path. The file does not
// need to exist yet.
func New(path string) *Ledger {
	return &Ledger{path: path}
}

// Path returns the location of the backing file.
func (l *Ledger) Path() string {
	return l.path
}

// Load returns the set of completed chunk indices recorded for bookID.
// A missing file, unreadable file, or malformed entry all degrade to an
// empty set: the cost is re-synthesizing chunks, never a failed job.
func (l *Ledger) Load(bookID string) map[int]bool {
	completed := make(map[int]bool)

	data, err := os.ReadFile(l.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("Could not read progress file, starting fresh", "path", l.path, "err", err)
		}
		return completed
	}

	var progress map[string][]int
	if err := json.Unmarshal(data, &progress); err != nil {
		log.Warn("Malformed progress file, starting fresh", "path", l.path, "err", err)
		return completed
	}

	for _, idx := range progress[bookID] {
		if idx >= 0 {
			completed[idx] = true
		}
	}
	return completed
}

// Save records the completed indices for bookID, preserving every other
// book's entry in the shared file. The entry is written sorted and
// deduplicated, and the file is replaced atomically so a crash mid-write
// never leaves a truncated ledger behind.
func (l *Ledger) Save(bookID string, completed map[int]bool) error {
	progress := l.readAll()

	indices := make([]int, 0, len(completed))
	for idx := range completed {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	progress[bookID] = indices

	data, err := json.Marshal(progress)
	if err != nil {
		return fmt.Errorf("unable to encode progress: %w", err)
	}

	if err := writeAtomic(l.path, data); err != nil {
		return fmt.Errorf("unable to save progress: %w", err)
	}
	return nil
}

// readAll loads the whole ledger, degrading to an empty map when the file
// is missing or unparseable. Unknown books keep their raw entries intact.
func (l *Ledger) readAll() map[string][]int {
	progress := make(map[string][]int)

	data, err := os.ReadFile(l.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("Could not read existing progress file", "path", l.path, "err", err)
		}
		return progress
	}
	if len(data) == 0 {
		return progress
	}

	if err := json.Unmarshal(data, &progress); err != nil {
		log.Warn("Could not parse existing progress file", "path", l.path, "err", err)
		return map[string][]int{}
	}
	return progress
}

// writeAtomic writes data to a temp file in the destination directory and
// renames it into place.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("unable to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".progress-*")
	if err != nil {
		return fmt.Errorf("unable to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("unable to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("unable to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("unable to replace progress file: %w", err)
	}
	return nil
}
