package cache

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/chazu/csgtree/pkg/logging"
)

// badgerStore keeps entries in a badger database under the cache root.
type badgerStore struct {
	db *badger.DB
}

func newBadgerStore(dir string) (*badgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(badgerLogger{})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("cache: open badger at %s: %w", dir, err)
	}
	return &badgerStore{db: db}, nil
}

func badgerKey(key, suffix string) []byte { return []byte(key + "." + suffix) }

func (s *badgerStore) Get(key, suffix string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(key, suffix))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	return out, err
}

func (s *badgerStore) Put(key, suffix string, data []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(key, suffix), data)
	})
}

func (s *badgerStore) Info() (int, int64, error) {
	var entries int
	var size int64
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			entries++
			size += it.Item().EstimatedSize()
		}
		return nil
	})
	return entries, size, err
}

func (s *badgerStore) Clear() error { return s.db.DropAll() }

func (s *badgerStore) Close() error { return s.db.Close() }

// badgerLogger forwards badger's chatter to the debug log.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{}) {
	logging.Logger().Error(fmt.Sprintf(format, args...), "component", "badger")
}

func (badgerLogger) Warningf(format string, args ...interface{}) {
	logging.Logger().Warn(fmt.Sprintf(format, args...), "component", "badger")
}

func (badgerLogger) Infof(format string, args ...interface{}) {
	logging.Logger().Debug(fmt.Sprintf(format, args...), "component", "badger")
}

func (badgerLogger) Debugf(format string, args ...interface{}) {
	logging.Logger().Debug(fmt.Sprintf(format, args...), "component", "badger")
}
