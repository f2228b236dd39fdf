// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Library operations
	OpLibraryOpen   Op = "open media library"
	OpLibraryScan   Op = "scan library sources"
	OpLibraryRemove Op = "remove track from library"

	// Media operations
	OpMediaRead   Op = "read media file"
	OpMediaUpdate Op = "update media info"

	// Tag operations
	OpTagWrite Op = "write file tags"

	// Artwork operations
	OpArtworkStore Op = "store artwork"

	// Configuration
	OpConfigLoad Op = "load configuration"
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
