package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// Badger stores blobs as JSON values in an embedded Badger database, keyed by
// blob name. Each Save is a single transaction, so it is atomic with respect
// to crashes just like File.
type Badger struct {
	db *badger.DB
}

// OpenBadger opens (or creates) a Badger database in dir.
func OpenBadger(dir string) (*Badger, error) {
	opts := badger.DefaultOptions(dir).
		WithLogger(badgerLogger{}).
		WithSyncWrites(true).
		WithNumVersionsToKeep(1)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger %s: %w", dir, err)
	}
	return &Badger{db: db}, nil
}

// OpenBadgerInMemory opens a Badger database that lives only in memory.
func OpenBadgerInMemory() (*Badger, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(badgerLogger{})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open in-memory badger: %w", err)
	}
	return &Badger{db: db}, nil
}

func (b *Badger) Save(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	err = b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(name), data)
	})
	if err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	return nil
}

func (b *Badger) Load(name string, v any) error {
	var data []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(name))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%w: %s: %w", ErrAbsent, name, os.ErrNotExist)
	}
	if err != nil {
		return fmt.Errorf("%w: read %s: %w", ErrAbsent, name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: decode %s: %w", ErrAbsent, name, err)
	}
	return nil
}

// Close flushes and closes the database.
func (b *Badger) Close() error {
	return b.db.Close()
}

// badgerLogger routes Badger's internal logging into slog. Badger is chatty
// at info level, so its info messages are demoted to debug.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...any) {
	slog.Error(badgerMsg(format, args), "component", "badger")
}

func (badgerLogger) Warningf(format string, args ...any) {
	slog.Warn(badgerMsg(format, args), "component", "badger")
}

func (badgerLogger) Infof(format string, args ...any) {
	slog.Debug(badgerMsg(format, args), "component", "badger")
}

func (badgerLogger) Debugf(format string, args ...any) {
	slog.Debug(badgerMsg(format, args), "component", "badger")
}

func badgerMsg(format string, args []any) string {
	return strings.TrimSpace(fmt.Sprintf(format, args...))
}
