package library

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/llehouerou/wavesearch/internal/tags"
)

// fileInfo holds information about a discovered music file.
type fileInfo struct {
	path   string
	source string // source path this file belongs to
}

// discoverFiles walks the given source directories and returns all music
// files found, sorted by path within each source.
func discoverFiles(ctx context.Context, sources []string) ([]fileInfo, error) {
	var files []fileInfo
	for _, src := range sources {
		var found []fileInfo
		err := filepath.WalkDir(src, func(path string, d os.DirEntry, walkErr error) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			// Skip any walk errors - intentionally continuing to scan other paths
			if walkErr != nil {
				return nil //nolint:nilerr // intentionally skipping errors
			}
			if d.IsDir() || !tags.IsMusicFile(path) {
				return nil
			}
			found = append(found, fileInfo{path: path, source: src})
			return nil
		})
		if err != nil {
			return nil, err
		}
		sort.Slice(found, func(i, j int) bool { return found[i].path < found[j].path })
		files = append(files, found...)
	}
	return files, nil
}

// relativePath returns the path relative to the source, or the full path if not under source.
func relativePath(source, path string) string {
	rel, err := filepath.Rel(source, path)
	if err != nil {
		return path
	}
	return rel
}
