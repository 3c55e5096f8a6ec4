package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/llehouerou/wavesearch/internal/db"
	"github.com/llehouerou/wavesearch/internal/kv"
)

// Entry describes a stored value.
type Entry struct {
	Name      string
	Size      int
	UpdatedAt time.Time
}

// Get returns the value stored under name, or kv.ErrNotFound.
func (m *Manager) Get(ctx context.Context, name string) ([]byte, error) {
	m.saveMu.Lock()
	if p, ok := m.pending[name]; ok {
		m.saveMu.Unlock()
		return append([]byte(nil), p.value...), nil
	}
	m.saveMu.Unlock()

	var value []byte
	err := m.db.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE name = ?`, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, kv.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", name, err)
	}
	return value, nil
}

// Set stores value under name immediately, superseding a pending
// debounced value.
func (m *Manager) Set(ctx context.Context, name string, value []byte) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.saveMu.Lock()
	delete(m.pending, name)
	m.saveMu.Unlock()

	if err := db.WithTxContext(ctx, m.db, func(tx *sql.Tx) error {
		return upsert(ctx, tx, name, value, m.now())
	}); err != nil {
		return fmt.Errorf("set %s: %w", name, err)
	}
	return nil
}

// Remove deletes name. Removing a missing name is not an error.
func (m *Manager) Remove(ctx context.Context, name string) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.saveMu.Lock()
	delete(m.pending, name)
	m.saveMu.Unlock()

	if _, err := m.db.ExecContext(ctx, `DELETE FROM kv_store WHERE name = ?`, name); err != nil {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}

// Entries lists the stored values by name.
func (m *Manager) Entries(ctx context.Context) ([]Entry, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT name, length(value), updated_at FROM kv_store ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			size      sql.NullInt64
			updatedAt sql.NullInt64
		)
		if err := rows.Scan(&e.Name, &size, &updatedAt); err != nil {
			return nil, err
		}
		e.Size = int(db.NullInt64Value(size))
		if ms := db.NullInt64Value(updatedAt); ms > 0 {
			e.UpdatedAt = time.UnixMilli(ms)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// setMany must be called with writeMu held.
func (m *Manager) setMany(values map[string][]byte) error {
	now := m.now()
	return db.WithTx(m.db, func(tx *sql.Tx) error {
		for name, value := range values {
			if err := upsert(context.Background(), tx, name, value, now); err != nil {
				return err
			}
		}
		return nil
	})
}

func upsert(ctx context.Context, tx *sql.Tx, name string, value []byte, now time.Time) error {
	if value == nil {
		value = []byte{}
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO kv_store (name, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, name, value, now.UnixMilli())
	return err
}

// Verify Manager implements kv.Storage at compile time.
var _ kv.Storage = (*Manager)(nil)
