package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"tagscope/internal/port"
)

const defaultFileCacheSize = 256

// FileCache keeps recently read source texts keyed by path.
type FileCache struct {
	reader  port.FileReader
	entries *lru.Cache[string, string]
}

func NewFileCache(reader port.FileReader, size int) (*FileCache, error) {
	if size <= 0 {
		size = defaultFileCacheSize
	}
	entries, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &FileCache{reader: reader, entries: entries}, nil
}

func (c *FileCache) ReadFile(path string) (string, error) {
	if text, ok := c.entries.Get(path); ok {
		return text, nil
	}
	text, err := c.reader.ReadFile(path)
	if err != nil {
		return "", err
	}
	c.entries.Add(path, text)
	return text, nil
}

func (c *FileCache) Purge() {
	c.entries.Purge()
}

func (c *FileCache) Len() int {
	return c.entries.Len()
}
