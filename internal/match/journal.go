package match

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Journal is the append-only per-tick replay log: one JSON object per
// line, opened lazily on first write, filename derived from the game name
// plus a random suffix. Writes go straight through the unbuffered
// *os.File, so every tick is durably visible to readers without an
// explicit fsync — acceptable for a file whose worst-case loss is the
// last unflushed tick of a crashed match.
type Journal struct {
	mu    sync.Mutex
	dir   string
	name  string
	names *NameGenerator

	file *os.File
	enc  *json.Encoder
	path string
}

// NewJournal builds a Journal that will write into dir, using name as the
// filename prefix. A nil names generator gets its own NameGenerator.
func NewJournal(dir, name string, names *NameGenerator) *Journal {
	if names == nil {
		names = NewNameGenerator()
	}
	return &Journal{dir: dir, name: name, names: names}
}

// Write appends one tick's record, opening the file on first call.
func (j *Journal) Write(rec ReplayRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.file == nil {
		if err := j.open(); err != nil {
			return err
		}
	}
	if err := j.enc.Encode(rec); err != nil {
		return fmt.Errorf("match: writing replay record for epoch %d: %w", rec.Epoch, err)
	}
	return nil
}

func (j *Journal) open() error {
	if err := os.MkdirAll(j.dir, 0o755); err != nil {
		return fmt.Errorf("match: creating replay directory %s: %w", j.dir, err)
	}

	suffix := j.names.Generate()
	filename := fmt.Sprintf("%s-%s.jsonl", j.name, suffix)
	path := filepath.Join(j.dir, filename)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("match: opening replay file %s: %w", path, err)
	}

	j.file = f
	j.enc = json.NewEncoder(f)
	j.path = path
	return nil
}

// Path returns the replay file's path, or "" if nothing has been written
// yet.
func (j *Journal) Path() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.path
}

// Close closes the underlying file, if one was opened.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.file == nil {
		return nil
	}
	return j.file.Close()
}
