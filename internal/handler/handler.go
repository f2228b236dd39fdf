// Package handler defines the decoder and tag-extractor interfaces consumed
// by the media library, and the registry that dispatches across them.
package handler

import (
	"errors"
	"sort"
	"strings"

	"github.com/ScottsplaysSus/VUPlayer-Scottsplays-Fork/internal/tags"
)

// ErrUnsupported is returned when no registered handler can open a file.
var ErrUnsupported = errors.New("no handler supports this file")

// Decoder exposes the stream characteristics of an opened media file.
type Decoder interface {
	// Duration in seconds.
	Duration() float64
	SampleRate() int
	Channels() int
	BitsPerSample() int
	// Bitrate in kbps, 0 when unknown.
	Bitrate() float64
	Close() error
}

// Handler decodes and extracts tags for a family of file formats.
type Handler interface {
	Name() string
	// Extensions returns the supported file extensions, without leading dot.
	Extensions() []string
	OpenDecoder(filename string) (Decoder, error)
	ReadTags(filename string) (tags.Set, error)
	WriteTags(filename string, set tags.Set) error
	CanWriteTags(filename string) bool
}

// Handlers is a registry of handlers, consulted in registration order.
type Handlers struct {
	list []Handler
}

// NewHandlers creates a registry with the given handlers.
func NewHandlers(handlers ...Handler) *Handlers {
	return &Handlers{list: handlers}
}

// Add registers a handler. Handlers are tried in registration order.
func (h *Handlers) Add(handler Handler) {
	h.list = append(h.list, handler)
}

// OpenDecoder opens a decoder for the file. Handlers are tried in
// registration order; the first success wins.
func (h *Handlers) OpenDecoder(filename string) (Decoder, error) {
	var lastErr error
	for _, handler := range h.list {
		decoder, err := handler.OpenDecoder(filename)
		if err == nil {
			return decoder, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = ErrUnsupported
	}
	return nil, lastErr
}

// ReadTags extracts tags from the file via the first handler that succeeds.
func (h *Handlers) ReadTags(filename string) (tags.Set, error) {
	var lastErr error
	for _, handler := range h.list {
		set, err := handler.ReadTags(filename)
		if err == nil {
			return set, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = ErrUnsupported
	}
	return nil, lastErr
}

// WriteTags writes tags via the first handler that declares write support
// for the file.
func (h *Handlers) WriteTags(filename string, set tags.Set) error {
	for _, handler := range h.list {
		if handler.CanWriteTags(filename) {
			return handler.WriteTags(filename, set)
		}
	}
	return ErrUnsupported
}

// CanWriteTags reports whether any registered handler can write tags for
// the file.
func (h *Handlers) CanWriteTags(filename string) bool {
	for _, handler := range h.list {
		if handler.CanWriteTags(filename) {
			return true
		}
	}
	return false
}

// AllExtensions returns the union of supported file extensions across all
// registered handlers, lower-cased and sorted.
func (h *Handlers) AllExtensions() []string {
	seen := make(map[string]struct{})
	for _, handler := range h.list {
		for _, ext := range handler.Extensions() {
			seen[strings.ToLower(ext)] = struct{}{}
		}
	}
	exts := make([]string, 0, len(seen))
	for ext := range seen {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
