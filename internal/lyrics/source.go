package lyrics

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/adrg/xdg"

	"github.com/llehouerou/wavesearch/internal/tags"
)

// Origins reported by Source.Fetch.
const (
	OriginLocal    = "local"
	OriginText     = "text"
	OriginCache    = "cache"
	OriginEmbedded = "embedded"
	OriginNotFound = "not_found"
)

// Source provides lyrics from files next to the audio file, the lyrics
// cache directory, or the lyrics embedded in the audio tags.
type Source struct {
	cacheDir string
	readTags func(path string) (*tags.Tag, error)
}

// SourceOption configures a Source.
type SourceOption func(*Source)

// WithCacheDir overrides the lyrics cache directory. An empty directory
// disables the cache lookup.
func WithCacheDir(dir string) SourceOption {
	return func(s *Source) {
		s.cacheDir = dir
	}
}

// WithTagReader overrides how embedded lyrics are read. A nil reader
// disables the embedded lookup.
func WithTagReader(read func(path string) (*tags.Tag, error)) SourceOption {
	return func(s *Source) {
		s.readTags = read
	}
}

// NewSource creates a lyrics source.
func NewSource(opts ...SourceOption) *Source {
	s := &Source{
		cacheDir: filepath.Join(xdg.CacheHome, "wavesearch", "lyrics"),
		readTags: tags.Read,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TrackInfo contains the information needed to find lyrics.
type TrackInfo struct {
	FilePath string // audio file, for sidecar and embedded lookup
	Artist   string
	Title    string
}

// FetchResult contains the result of a lyrics lookup.
type FetchResult struct {
	Lyrics *Lyrics
	Origin string
	Err    error
}

// Found reports whether lyrics were found.
func (r FetchResult) Found() bool {
	return r.Lyrics != nil && len(r.Lyrics.Lines) > 0
}

// Fetch looks lyrics up in priority order:
// 1. .lrc file next to the audio file
// 2. .txt file next to the audio file
// 3. cached <artist>/<title>.lrc
// 4. lyrics embedded in the audio tags
//
// Missing files are not errors. Err is set only for files that exist but
// cannot be read.
func (s *Source) Fetch(ctx context.Context, track TrackInfo) FetchResult {
	if err := ctx.Err(); err != nil {
		return FetchResult{Origin: OriginNotFound, Err: err}
	}

	if track.FilePath != "" {
		if r, ok := s.tryFile(sidecarPath(track.FilePath, ".lrc"), OriginLocal, loadLRC); ok {
			return r
		}
		if r, ok := s.tryFile(sidecarPath(track.FilePath, ".txt"), OriginText, loadPlain); ok {
			return r
		}
	}

	if track.Artist != "" && track.Title != "" {
		if path := s.cachePath(track.Artist, track.Title); path != "" {
			if r, ok := s.tryFile(path, OriginCache, loadLRC); ok {
				return r
			}
		}
	}

	if track.FilePath != "" && s.readTags != nil {
		tag, err := s.readTags(track.FilePath)
		if err == nil && strings.TrimSpace(tag.Lyrics) != "" {
			l := ParsePlain(tag.Lyrics)
			l.Title = tag.Title
			l.Artist = tag.Artist
			l.Album = tag.Album
			return FetchResult{Lyrics: l, Origin: OriginEmbedded}
		}
	}

	return FetchResult{Origin: OriginNotFound}
}

// tryFile loads path with load. The second return is false when the file
// does not exist or holds no lyrics.
func (s *Source) tryFile(path, origin string, load func(string) (*Lyrics, error)) (FetchResult, bool) {
	l, err := load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return FetchResult{}, false
	}
	if err != nil {
		return FetchResult{Origin: origin, Err: err}, true
	}
	if len(l.Lines) == 0 {
		return FetchResult{}, false
	}
	return FetchResult{Lyrics: l, Origin: origin}, true
}

// sidecarPath returns audioPath with its extension replaced by ext.
func sidecarPath(audioPath, ext string) string {
	return strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + ext
}

// ReadFile loads a lyrics file, as plain text when it has a .txt extension
// and as LRC otherwise.
func ReadFile(path string) (*Lyrics, error) {
	if strings.EqualFold(filepath.Ext(path), ".txt") {
		return loadPlain(path)
	}
	return loadLRC(path)
}

func loadLRC(path string) (*Lyrics, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseLRC(f)
}

func loadPlain(path string) (*Lyrics, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParsePlain(string(data)), nil
}

// cachePath returns the cache file path for a track.
func (s *Source) cachePath(artist, title string) string {
	if s.cacheDir == "" {
		return ""
	}
	return filepath.Join(s.cacheDir, sanitizeFilename(artist), sanitizeFilename(title)+".lrc")
}

const maxFilenameRunes = 100

var invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// sanitizeFilename replaces characters that are problematic in filenames.
func sanitizeFilename(name string) string {
	name = invalidFilenameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, " .")
	if r := []rune(name); len(r) > maxFilenameRunes {
		name = string(r[:maxFilenameRunes])
	}
	if name == "" {
		name = "_"
	}
	return name
}
