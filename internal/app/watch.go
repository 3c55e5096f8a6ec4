package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/wavesearch/internal/errmsg"
	"github.com/llehouerou/wavesearch/internal/library"
)

// Watch applies library file changes to the indices until ctx is canceled.
// Track snapshots are saved on every change; the lyrics index is saved
// through a debounced write.
func (a *App) Watch(ctx context.Context) error {
	if !a.cfg.HasLibrarySources() {
		return fmt.Errorf("%s: no library sources configured", errmsg.OpLibraryWatch)
	}

	w, err := library.NewWatcher(a.cfg.LibrarySources, a.logger)
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	go w.Run(ctx)

	for c := range w.Changes() {
		if err := a.ApplyChange(ctx, c); err != nil {
			a.logger.WithError(err).Warn(errmsg.FormatWith(errmsg.OpLibraryWatch, c.Path, err))
		}
	}
	return ctx.Err()
}

// ApplyChange updates the track index and the lyrics index for one file
// change and persists both.
func (a *App) ApplyChange(ctx context.Context, c library.Change) error {
	id := library.TrackID(c.Path)
	tracks := a.tracks.Tracks()

	var changed library.Track
	if c.Removed {
		tracks = removeTrack(tracks, id)
	} else {
		changed, _ = a.scanner.ReadTrack(c.Path)
		tracks = upsertTrack(tracks, changed)
	}
	a.tracks.UpdateIndex(tracks)

	if err := a.state.SaveTracks(ctx, tracks); err != nil {
		return fmt.Errorf("save tracks: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if c.Removed {
		a.lyrics.RemoveFromCache(id)
	} else {
		a.indexTrackLyrics(ctx, changed)
	}

	data, err := a.lyrics.MarshalState()
	if err != nil {
		return fmt.Errorf("encode lyrics: %w", err)
	}
	a.state.SetDebounced(a.lyrics.StorageName(), data)

	a.logger.WithFields(logrus.Fields{
		"file_path": c.Path,
		"removed":   c.Removed,
		"tracks":    len(tracks),
	}).Info("Library change applied")
	return nil
}

func removeTrack(tracks []library.Track, id string) []library.Track {
	out := tracks[:0]
	for _, t := range tracks {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}

func upsertTrack(tracks []library.Track, t library.Track) []library.Track {
	for i := range tracks {
		if tracks[i].ID == t.ID {
			tracks[i] = t
			return tracks
		}
	}
	return append(tracks, t)
}
