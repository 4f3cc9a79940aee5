package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileCache is a key/value slot store backed by one file per key. Writes are
// atomic replacements (write to a temp file, then rename), so a reader never
// observes a partially written slot.
type FileCache struct {
	dir string
}

func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &FileCache{dir: dir}, nil
}

func (c *FileCache) Put(key string, value []byte) error {
	path := c.path(key)
	tmp, err := os.CreateTemp(c.dir, ".put-*")
	if err != nil {
		return fmt.Errorf("cache put %s: %w", key, err)
	}
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("cache put %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("cache put %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("cache put %s: %w", key, err)
	}
	return nil
}

func (c *FileCache) Get(key string) ([]byte, bool) {
	value, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil, false
	}
	return value, true
}

func (c *FileCache) Remove(key string) error {
	err := os.Remove(c.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("cache remove %s: %w", key, err)
	}
	return nil
}

func (c *FileCache) path(key string) string {
	// Keys contain ':' separators; keep filenames portable.
	safe := strings.ReplaceAll(key, ":", "_")
	return filepath.Join(c.dir, safe+".json")
}
