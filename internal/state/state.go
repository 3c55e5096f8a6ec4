// Package state persists wavesearch state in SQLite: named values for the
// search indices and the last scanned library snapshot.
package state

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	appName      = "wavesearch"
	dbFileName   = "wavesearch.db"
	saveDebounce = 500 * time.Millisecond
)

// Manager stores named values and the library snapshot in SQLite. It
// implements kv.Storage and is safe for concurrent use.
type Manager struct {
	db  *sql.DB
	now func() time.Time

	saveMu    sync.Mutex
	saveTimer *time.Timer
	pending   map[string]pendingValue
	gen       uint64
	saveErr   error

	// writeMu serializes debounced flushes with Close.
	writeMu sync.Mutex
}

// Open opens (creating if needed) the database at path. An empty path uses
// $XDG_DATA_HOME/wavesearch/wavesearch.db.
func Open(path string) (*Manager, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	return newManager(db)
}

func newManager(db *sql.DB) (*Manager, error) {
	// One connection: SQLite has a single writer and ":memory:" databases
	// are per connection.
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Manager{
		db:      db,
		now:     time.Now,
		pending: make(map[string]pendingValue),
	}, nil
}

// DefaultPath returns the default database location.
func DefaultPath() (string, error) {
	return xdg.DataFile(filepath.Join(appName, dbFileName))
}

// Close flushes debounced writes and closes the database. It reports the
// first failed debounced write, if any.
func (m *Manager) Close() error {
	m.saveMu.Lock()
	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}
	m.saveMu.Unlock()

	flushErr := m.flush()

	m.saveMu.Lock()
	saveErr := m.saveErr
	m.saveMu.Unlock()

	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	return errors.Join(saveErr, flushErr, m.db.Close())
}

func (m *Manager) DB() *sql.DB {
	return m.db
}

// SetDebounced stores value under name after saveDebounce without further
// writes. Later values for the same name replace earlier ones. Get sees
// pending values immediately.
func (m *Manager) SetDebounced(name string, value []byte) {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	m.gen++
	m.pending[name] = pendingValue{value: append([]byte(nil), value...), gen: m.gen}

	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}

	m.saveTimer = time.AfterFunc(saveDebounce, func() {
		if err := m.flush(); err != nil {
			m.saveMu.Lock()
			if m.saveErr == nil {
				m.saveErr = err
			}
			m.saveMu.Unlock()
		}
	})
}

type pendingValue struct {
	value []byte
	gen   uint64
}

// flush writes every pending value in one transaction. Values stay visible
// to Get until they are committed.
func (m *Manager) flush() error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.saveMu.Lock()
	if len(m.pending) == 0 {
		m.saveMu.Unlock()
		return nil
	}
	batch := make(map[string]pendingValue, len(m.pending))
	for name, p := range m.pending {
		batch[name] = p
	}
	m.saveMu.Unlock()

	values := make(map[string][]byte, len(batch))
	for name, p := range batch {
		values[name] = p.value
	}
	err := m.setMany(values)

	m.saveMu.Lock()
	defer m.saveMu.Unlock()
	for name, p := range batch {
		// Keep values written again while the batch was committing.
		if cur, ok := m.pending[name]; ok && cur.gen == p.gen {
			delete(m.pending, name)
		}
	}
	return err
}
