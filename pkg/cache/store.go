package cache

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned by stores for absent entries.
var ErrNotFound = errors.New("cache: entry not found")

// Store is the persistent tier.
type Store interface {
	Get(key, suffix string) ([]byte, error)
	Put(key, suffix string, data []byte) error
	// Info returns the number of entries and their total size.
	Info() (entries int, bytes int64, err error)
	// Clear removes every entry.
	Clear() error
	Close() error
}

// dirStore keeps one file per entry in two-level hex shards.
type dirStore struct {
	root string
}

func newDirStore(root string) (*dirStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &dirStore{root: root}, nil
}

func (s *dirStore) Get(key, suffix string) ([]byte, error) {
	data, err := os.ReadFile(shardPath(s.root, key, suffix))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

// Put writes to a uniquely named file next to the target and renames it
// into place so readers never see partial entries.
func (s *dirStore) Put(key, suffix string, data []byte) error {
	path := shardPath(s.root, key, suffix)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp := filepath.Join(dir, ".tmp-"+uuid.NewString())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func isShard(name string) bool {
	if len(name) != 2 {
		return false
	}
	return strings.IndexFunc(name, func(r rune) bool {
		return !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f')
	}) < 0
}

func (s *dirStore) Info() (int, int64, error) {
	var entries int
	var size int64
	top, err := os.ReadDir(s.root)
	if err != nil {
		return 0, 0, err
	}
	for _, e := range top {
		if !e.IsDir() || !isShard(e.Name()) {
			continue
		}
		err := filepath.WalkDir(filepath.Join(s.root, e.Name()), func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() || strings.HasPrefix(d.Name(), ".tmp-") {
				return err
			}
			info, err := d.Info()
			if err != nil {
				return err
			}
			entries++
			size += info.Size()
			return nil
		})
		if err != nil {
			return 0, 0, err
		}
	}
	return entries, size, nil
}

func (s *dirStore) Clear() error {
	top, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	for _, e := range top {
		if e.IsDir() && isShard(e.Name()) {
			if err := os.RemoveAll(filepath.Join(s.root, e.Name())); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *dirStore) Close() error { return nil }
