package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// LegacyFileNames maps collection names to the file names the bot runtime
// already uses in its data directory, so both processes can share it.
var LegacyFileNames = map[string]string{
	"welcome-settings": "welcome.json",
	"log-settings":     "log.json",
	"ticket-settings":  "tickets.json",
	"level-settings":   "levelSettings.json",
	"economy-records":  "economy.json",
	"level-records":    "levels.json",
}

// FileBackend stores each collection as one JSON file in a directory.
type FileBackend struct {
	dir   string
	names map[string]string
}

func NewFileBackend(dir string, names map[string]string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileBackend{dir: dir, names: names}, nil
}

func (b *FileBackend) path(collection string) string {
	if name, ok := b.names[collection]; ok {
		return filepath.Join(b.dir, name)
	}
	return filepath.Join(b.dir, collection+".json")
}

func (b *FileBackend) Load(_ context.Context, collection string) ([]byte, error) {
	data, err := os.ReadFile(b.path(collection))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", collection, err)
	}
	return data, nil
}

// Save replaces the collection file atomically: readers see either the old or
// the new content, never a partial write.
func (b *FileBackend) Save(_ context.Context, collection string, document []byte) error {
	target := b.path(collection)
	tmp, err := os.CreateTemp(b.dir, "."+filepath.Base(target)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", collection, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(document); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", collection, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", collection, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", collection, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("replace %s: %w", collection, err)
	}
	return nil
}

func (b *FileBackend) Close() error {
	return nil
}
