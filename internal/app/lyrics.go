package app

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/wavesearch/internal/errmsg"
	"github.com/llehouerou/wavesearch/internal/library"
	"github.com/llehouerou/wavesearch/internal/lyrics"
)

// originLyricsDir reports lyrics found in a configured lyrics directory.
const originLyricsDir = "lyrics_dir"

// indexLyricsDirs maps LyricsKeys to "Artist - Title.lrc" (or .txt) files
// found under dirs. The first file found for a key wins; .lrc files are
// preferred over .txt.
func indexLyricsDirs(ctx context.Context, dirs []string, logger logrus.FieldLogger) map[string]string {
	out := make(map[string]string)
	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if walkErr != nil {
				return nil //nolint:nilerr // skip unreadable entries
			}
			if d.IsDir() {
				return nil
			}
			ext := strings.ToLower(filepath.Ext(path))
			if ext != ".lrc" && ext != ".txt" {
				return nil
			}
			key, ok := library.LyricsKeyFromFile(path)
			if !ok {
				return nil
			}
			if existing, ok := out[key]; ok && (ext == ".txt" || strings.EqualFold(filepath.Ext(existing), ".lrc")) {
				return nil
			}
			out[key] = path
			return nil
		})
		if err != nil {
			logger.WithError(err).WithField("dir", dir).Warn("Failed to index lyrics directory")
		}
	}
	return out
}

// indexTrackLyrics fetches the lyrics of t and caches them, or drops stale
// lyrics when none are found. Must be called with mu held.
func (a *App) indexTrackLyrics(ctx context.Context, t library.Track) bool {
	l, origin := a.fetchLyrics(ctx, t)
	if l == nil {
		a.lyrics.RemoveFromCache(t.ID)
		return false
	}

	a.lyrics.AddToCache(lyrics.FromLyrics(t.ID, t.Title, t.ArtistLine(), l, a.now()))
	a.logger.WithFields(logrus.Fields{
		"track":  t.Title,
		"origin": origin,
		"lines":  len(l.Lines),
	}).Debug("Lyrics indexed")
	return true
}

func (a *App) fetchLyrics(ctx context.Context, t library.Track) (*lyrics.Lyrics, string) {
	info := lyrics.TrackInfo{FilePath: t.Path, Title: t.Title}
	if len(t.Artists) > 0 {
		info.Artist = t.Artists[0].Name
	}

	r := a.source.Fetch(ctx, info)
	if r.Err != nil {
		a.logger.WithError(r.Err).WithField("file_path", t.Path).Warn(errmsg.Format(errmsg.OpLyricsFetch, r.Err))
	}
	if r.Found() {
		return r.Lyrics, r.Origin
	}

	if path, ok := a.lyricsDirFile(t); ok {
		l, err := lyrics.ReadFile(path)
		if err != nil {
			a.logger.WithError(err).Warn(errmsg.FormatWith(errmsg.OpLyricsFetch, path, err))
			return nil, ""
		}
		if len(l.Lines) > 0 {
			return l, originLyricsDir
		}
	}
	return nil, ""
}

func (a *App) lyricsDirFile(t library.Track) (string, bool) {
	if len(a.lyricsDir) == 0 {
		return "", false
	}
	for _, artist := range t.ArtistNames() {
		if path, ok := a.lyricsDir[library.LyricsKey(artist, t.Title)]; ok {
			return path, true
		}
	}
	return "", false
}
