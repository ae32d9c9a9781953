package cache

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Scratch hands out uniquely named paths below a cache root for temporary
// work such as intermediate exports. Everything is removed on Close.
type Scratch struct {
	dir string
}

// NewScratch creates a fresh scratch directory below root/tmp.
func NewScratch(root string) (*Scratch, error) {
	dir := filepath.Join(root, "tmp", uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: scratch: %w", err)
	}
	return &Scratch{dir: dir}, nil
}

// File returns an unused file path with the given suffix.
func (s *Scratch) File(suffix string) string {
	return filepath.Join(s.dir, uuid.NewString()+"."+suffix)
}

// Dir creates and returns an unused directory.
func (s *Scratch) Dir() (string, error) {
	d := filepath.Join(s.dir, uuid.NewString())
	return d, os.Mkdir(d, 0o755)
}

// Close removes the scratch directory.
func (s *Scratch) Close() error { return os.RemoveAll(s.dir) }
