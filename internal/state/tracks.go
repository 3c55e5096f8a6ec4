package state

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/llehouerou/wavesearch/internal/db"
	"github.com/llehouerou/wavesearch/internal/library"
)

// SaveTracks replaces the stored library snapshot with tracks, keeping
// their order.
func (m *Manager) SaveTracks(ctx context.Context, tracks []library.Track) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	now := m.now().UnixMilli()
	err := db.WithTxContext(ctx, m.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM track_artists`); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM library_tracks`); err != nil {
			return err
		}

		trackStmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO library_tracks
				(id, position, path, title, album, release_date, genre, has_album, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer trackStmt.Close()

		artistStmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO track_artists (track_id, position, name) VALUES (?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer artistStmt.Close()

		for i, t := range tracks {
			if _, err := trackStmt.ExecContext(ctx,
				t.ID, i, t.Path, t.Title,
				db.NullString(t.AlbumTitle()), db.NullString(t.ReleaseDate()), db.NullString(t.Genre),
				t.Album != nil, now,
			); err != nil {
				return fmt.Errorf("track %s: %w", t.ID, err)
			}
			for j, a := range t.Artists {
				if _, err := artistStmt.ExecContext(ctx, t.ID, j, a.Name); err != nil {
					return fmt.Errorf("track %s artist: %w", t.ID, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save tracks: %w", err)
	}
	return nil
}

// LoadTracks returns the stored library snapshot in saved order.
func (m *Manager) LoadTracks(ctx context.Context) ([]library.Track, error) {
	artists, err := m.loadArtists(ctx)
	if err != nil {
		return nil, fmt.Errorf("load track artists: %w", err)
	}

	rows, err := m.db.QueryContext(ctx, `
		SELECT id, path, title, album, release_date, genre, has_album
		FROM library_tracks
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("load tracks: %w", err)
	}
	defer rows.Close()

	var tracks []library.Track
	for rows.Next() {
		var (
			t                         library.Track
			album, releaseDate, genre sql.NullString
			hasAlbum                  bool
		)
		if err := rows.Scan(&t.ID, &t.Path, &t.Title, &album, &releaseDate, &genre, &hasAlbum); err != nil {
			return nil, fmt.Errorf("scan track: %w", err)
		}
		t.Genre = db.NullStringValue(genre)
		if hasAlbum {
			t.Album = &library.Album{
				Title:       db.NullStringValue(album),
				ReleaseDate: db.NullStringValue(releaseDate),
			}
		}
		t.Artists = artists[t.ID]
		tracks = append(tracks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load tracks: %w", err)
	}
	return tracks, nil
}

func (m *Manager) loadArtists(ctx context.Context) (map[string][]library.Artist, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT track_id, name FROM track_artists ORDER BY track_id, position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]library.Artist)
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		out[id] = append(out[id], library.Artist{Name: name})
	}
	return out, rows.Err()
}
