package library

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/wavesearch/internal/tags"
)

// ScanStats summarizes a completed scan.
type ScanStats struct {
	Files    int
	Tagged   int
	Fallback int
	Duration time.Duration
}

// Scanner loads track records from music folders.
type Scanner struct {
	logger logrus.FieldLogger
	read   func(path string) (*tags.Tag, error)
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithTagReader overrides how file tags are read.
func WithTagReader(read func(path string) (*tags.Tag, error)) ScannerOption {
	return func(s *Scanner) {
		if read != nil {
			s.read = read
		}
	}
}

// NewScanner creates a scanner that reads tags with the tags package.
func NewScanner(logger logrus.FieldLogger, opts ...ScannerOption) *Scanner {
	s := &Scanner{logger: logger, read: tags.Read}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan walks sources and returns one track per music file, in walk order.
// Files whose tags cannot be read are kept with their file name as title.
func (s *Scanner) Scan(ctx context.Context, sources []string) ([]Track, ScanStats, error) {
	start := time.Now()
	var stats ScanStats

	files, err := discoverFiles(ctx, sources)
	if err != nil {
		return nil, stats, err
	}

	tracks := make([]Track, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		t, tagged := s.ReadTrack(f.path)
		if tagged {
			stats.Tagged++
		} else {
			stats.Fallback++
		}
		tracks = append(tracks, t)
	}

	stats.Files = len(files)
	stats.Duration = time.Since(start)

	s.logger.WithFields(logrus.Fields{
		"sources":  len(sources),
		"files":    stats.Files,
		"fallback": stats.Fallback,
		"duration": stats.Duration,
	}).Info("Library scan complete")

	return tracks, stats, nil
}

// ReadTrack builds a track from a file's tags. The second result is false
// when tags could not be read and the file name was used instead.
func (s *Scanner) ReadTrack(path string) (Track, bool) {
	t := Track{ID: TrackID(path), Path: path}

	tag, err := s.read(path)
	if err != nil {
		s.logger.WithError(err).WithField("file_path", path).Warn("Failed to extract metadata, using filename")
		t.Title = tags.TitleFromPath(path)
		return t, false
	}

	t.Title = tag.Title
	t.Artists = SplitArtists(tag.Artist)
	if len(t.Artists) == 0 && tag.AlbumArtist != "" {
		t.Artists = SplitArtists(tag.AlbumArtist)
	}
	if tag.Album != "" || tag.Date != "" {
		t.Album = &Album{Title: tag.Album, ReleaseDate: tag.Date}
	}
	t.Genre = tag.Genre

	s.logger.WithFields(logrus.Fields{
		"file_path": path,
		"title":     t.Title,
		"artist":    tag.Artist,
		"album":     tag.Album,
	}).Debug("Successfully extracted metadata")

	return t, true
}
