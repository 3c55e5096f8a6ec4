// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Library operations
	OpLibraryScan  Op = "scan library"
	OpLibraryLoad  Op = "load library"
	OpLibrarySave  Op = "save library"
	OpLibraryWatch Op = "watch library"

	// Index operations
	OpIndexRebuild Op = "rebuild search index"
	OpSearch       Op = "search"

	// Lyrics operations
	OpLyricsFetch Op = "read lyrics"
	OpLyricsLoad  Op = "load lyrics index"
	OpLyricsSave  Op = "save lyrics index"

	// Storage
	OpStateOpen Op = "open database"

	// Initialization
	OpConfigLoad Op = "load configuration"
	OpInitialize Op = "initialize application"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
