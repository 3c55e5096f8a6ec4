//nolint:goconst // test cases intentionally repeat strings for readability
package errmsg

import (
	"errors"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpLibraryScan,
			err:      nil,
			expected: "",
		},
		{
			name:     "library scan operation",
			op:       OpLibraryScan,
			err:      errors.New("permission denied"),
			expected: "Failed to scan library: permission denied",
		},
		{
			name:     "index operation",
			op:       OpIndexRebuild,
			err:      errors.New("out of memory"),
			expected: "Failed to rebuild search index: out of memory",
		},
		{
			name:     "lyrics operation",
			op:       OpLyricsLoad,
			err:      errors.New("unsupported storage version"),
			expected: "Failed to load lyrics index: unsupported storage version",
		},
		{
			name:     "storage operation",
			op:       OpStateOpen,
			err:      errors.New("database is locked"),
			expected: "Failed to open database: database is locked",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.op, tt.err)
			if result != tt.expected {
				t.Errorf("Format(%q, %v) = %q, want %q", tt.op, tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatWith(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		context  string
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpLyricsFetch,
			context:  "song.mp3",
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with context",
			op:       OpLyricsFetch,
			context:  "song.lrc",
			err:      errors.New("permission denied"),
			expected: "Failed to read lyrics 'song.lrc': permission denied",
		},
		{
			name:     "empty context falls back to Format",
			op:       OpLyricsFetch,
			context:  "",
			err:      errors.New("permission denied"),
			expected: "Failed to read lyrics: permission denied",
		},
		{
			name:     "watch with path context",
			op:       OpLibraryWatch,
			context:  "/home/user/music",
			err:      errors.New("too many open files"),
			expected: "Failed to watch library '/home/user/music': too many open files",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatWith(tt.op, tt.context, tt.err)
			if result != tt.expected {
				t.Errorf("FormatWith(%q, %q, %v) = %q, want %q", tt.op, tt.context, tt.err, result, tt.expected)
			}
		})
	}
}

func TestOpConstants(t *testing.T) {
	// Verify that Op constants are non-empty and produce valid messages
	ops := []Op{
		OpLibraryScan, OpLibraryLoad, OpLibrarySave, OpLibraryWatch,
		OpIndexRebuild, OpSearch,
		OpLyricsFetch, OpLyricsLoad, OpLyricsSave,
		OpStateOpen,
		OpConfigLoad, OpInitialize,
	}

	testErr := errors.New("test error")

	for _, op := range ops {
		t.Run(string(op), func(t *testing.T) {
			if op == "" {
				t.Error("Op constant should not be empty")
			}

			expected := "Failed to " + string(op) + ": test error"
			if result := Format(op, testErr); result != expected {
				t.Errorf("Format = %q, want %q", result, expected)
			}
		})
	}
}
