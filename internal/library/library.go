// Package library implements the persistent media library: the mapping
// from filenames to decoded metadata, kept consistent with the
// filesystem and safe for concurrent callers.
package library

import (
	"database/sql"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ScottsplaysSus/VUPlayer-Scottsplays-Fork/internal/handler"
	"github.com/ScottsplaysSus/VUPlayer-Scottsplays-Fork/internal/tags"
)

// Notifier is informed when a library record changes, so that views can
// refresh. Implementations must be safe for concurrent use.
type Notifier interface {
	MediaUpdated(info MediaInfo)
}

type noopNotifier struct{}

func (noopNotifier) MediaUpdated(MediaInfo) {}

// Options configures a Library.
type Options struct {
	Logger   zerolog.Logger
	Notifier Notifier

	// Outbound tag-write rate limiting.
	WriteRate  float64 // writes per second, default 2
	WriteBurst int     // default 4

	// Window during which HasRecentlyWrittenTag reports true after a
	// write attempt. Default 5s.
	RecentWriteWindow time.Duration
}

// Library is the persistent media library. All methods are safe for
// concurrent use: table operations are serialized by the database
// connection, and the tag-write state is guarded by its own lock so it
// can be consulted while file writes are in flight.
type Library struct {
	db       *sql.DB
	handlers *handler.Handlers
	notifier Notifier
	log      zerolog.Logger

	// Tag write-back state, guarded by writeMu independently of the
	// database transaction boundary.
	writeMu      sync.Mutex
	pendingTags  map[string]tags.Set
	tagsWritten  map[string]time.Time
	writeLimiter *rate.Limiter
	recentWindow time.Duration
}

// New creates a Library over the given database connection, creating or
// migrating the schema. A schema migration failure is fatal: the library
// cannot operate against an unmigratable store.
func New(db *sql.DB, handlers *handler.Handlers, opts Options) (*Library, error) {
	if err := initSchema(db); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	if opts.Notifier == nil {
		opts.Notifier = noopNotifier{}
	}
	if opts.WriteRate <= 0 {
		opts.WriteRate = 2
	}
	if opts.WriteBurst <= 0 {
		opts.WriteBurst = 4
	}
	if opts.RecentWriteWindow <= 0 {
		opts.RecentWriteWindow = 5 * time.Second
	}

	return &Library{
		db:           db,
		handlers:     handlers,
		notifier:     opts.Notifier,
		log:          opts.Logger,
		pendingTags:  make(map[string]tags.Set),
		tagsWritten:  make(map[string]time.Time),
		writeLimiter: rate.NewLimiter(rate.Limit(opts.WriteRate), opts.WriteBurst),
		recentWindow: opts.RecentWriteWindow,
	}, nil
}

// AllSupportedFileExtensions returns the union of file extensions across
// all registered handlers, lower-cased. This queries the handlers, not
// the database.
func (l *Library) AllSupportedFileExtensions() []string {
	return l.handlers.AllExtensions()
}

// fileAttributes returns the modification time and size of a file,
// with ok false when the file cannot be statted.
func fileAttributes(filename string) (filetime, filesize int64, ok bool) {
	fi, err := os.Stat(filename)
	if err != nil {
		return 0, 0, false
	}
	return fi.ModTime().Unix(), fi.Size(), true
}
