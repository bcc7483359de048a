package fs

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"

	"github.com/ohmanagement/sitebot"
)

// Ensure IndexStore implements sitebot.IndexStore at compile time.
var _ sitebot.IndexStore = (*IndexStore)(nil)

// IndexStore keeps the chunk index as one indented JSON array on disk.
type IndexStore struct {
	path string
}

// NewIndexStore returns a store for the JSON file at path.
func NewIndexStore(path string) *IndexStore {
	return &IndexStore{path: path}
}

// Path returns the index file path.
func (s *IndexStore) Path() string {
	return s.path
}

// ReplaceIndex writes chunks to a temporary file and renames it over the
// index file.
func (s *IndexStore) ReplaceIndex(ctx context.Context, chunks []*sitebot.Chunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if chunks == nil {
		chunks = []*sitebot.Chunk{}
	}

	data, err := json.MarshalIndent(chunks, "", "  ")
	if err != nil {
		return sitebot.Errorf(sitebot.EINTERNAL, "marshal index: %v", err)
	}

	if err := writeFileAtomic(s.path, data); err != nil {
		return sitebot.Errorf(sitebot.EUNAVAILABLE, "write index %s: %v", s.path, err)
	}
	return nil
}

// LoadIndex reads the index file.
// Returns ENOTFOUND if the file does not exist.
func (s *IndexStore) LoadIndex(ctx context.Context) ([]*sitebot.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, sitebot.Errorf(sitebot.ENOTFOUND, "index not found: %s", s.path)
	} else if err != nil {
		return nil, sitebot.Errorf(sitebot.EUNAVAILABLE, "read index %s: %v", s.path, err)
	}

	var chunks []*sitebot.Chunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return nil, sitebot.Errorf(sitebot.EPARSE, "decode index %s: %v", s.path, err)
	}
	return chunks, nil
}
