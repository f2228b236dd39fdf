// Package scanner walks library source directories and keeps the media
// library in sync with the files found on disk.
package scanner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/ScottsplaysSus/VUPlayer-Scottsplays-Fork/internal/library"
)

// MediaLibrary is the part of the library the scanner drives.
type MediaLibrary interface {
	GetMediaInfo(info *library.MediaInfo, opts library.InfoOptions) (bool, error)
	AllMedia() ([]library.MediaInfo, error)
	RemoveFromLibrary(info library.MediaInfo) (bool, error)
	AllSupportedFileExtensions() []string
	HasRecentlyWrittenTag(filename string) bool
}

// Progress reports the progress of a library scan.
type Progress struct {
	Phase       string // "scanning", "processing", "cleaning", "done"
	Current     int
	Total       int
	CurrentFile string
	Stats       *Stats // Only populated when Phase == "done"
}

// Stats holds statistics for a completed scan.
type Stats struct {
	BySource map[string]*SourceStats // keyed by source path
}

// SourceStats holds per-source scan statistics.
type SourceStats struct {
	Added   []string // relative paths of added files
	Updated []string // relative paths of rescanned files
	Removed []string // relative paths of removed files
	Failed  []string // relative paths no decoder could open
}

// Options configures a Scanner.
type Options struct {
	Logger zerolog.Logger

	// Workers is the number of concurrent scan workers, default 4.
	Workers int

	// RemoveMissing prunes library entries whose files no longer exist
	// under the scanned sources.
	RemoveMissing bool
}

// Scanner synchronizes the library with a set of source directories.
type Scanner struct {
	lib           MediaLibrary
	log           zerolog.Logger
	workers       int
	removeMissing bool
}

func New(lib MediaLibrary, opts Options) *Scanner {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	return &Scanner{
		lib:           lib,
		log:           opts.Logger,
		workers:       opts.Workers,
		removeMissing: opts.RemoveMissing,
	}
}

// fileInfo holds information about a discovered music file.
type fileInfo struct {
	path     string
	filetime int64
	filesize int64
	source   string // source path this file belongs to
}

// Scan performs an incremental scan of the given source directories,
// sending progress updates on progress until done. The progress channel
// is closed when Scan returns.
func (s *Scanner) Scan(ctx context.Context, sources []string, progress chan<- Progress) error {
	defer close(progress)

	stats := &Stats{BySource: make(map[string]*SourceStats)}
	for _, src := range sources {
		stats.BySource[src] = &SourceStats{}
	}

	progress <- Progress{Phase: "scanning"}
	files := s.discoverFiles(sources, progress)

	known, err := s.knownFiles(sources)
	if err != nil {
		return err
	}

	// Fresh entries are skipped entirely; the rest go to the workers.
	toProcess := make([]fileInfo, 0, len(files))
	isNew := make(map[string]bool, len(files))
	for _, f := range files {
		if existing, ok := known[f.path]; ok &&
			existing.Filetime == f.filetime && existing.Filesize == f.filesize {
			continue
		}
		_, existed := known[f.path]
		isNew[f.path] = !existed
		toProcess = append(toProcess, f)
	}

	if len(toProcess) > 0 {
		if err := s.processFiles(ctx, toProcess, isNew, stats, progress); err != nil {
			return err
		}
	}

	if s.removeMissing {
		progress <- Progress{Phase: "cleaning"}
		discovered := make(map[string]struct{}, len(files))
		for _, f := range files {
			discovered[f.path] = struct{}{}
		}
		if err := s.removeVanished(known, discovered, stats); err != nil {
			return err
		}
	}

	progress <- Progress{Phase: "done", Current: len(files), Total: len(files), Stats: stats}
	return ctx.Err()
}

// discoverFiles walks the sources collecting files with a supported
// extension.
func (s *Scanner) discoverFiles(sources []string, progress chan<- Progress) []fileInfo {
	supported := make(map[string]struct{})
	for _, ext := range s.lib.AllSupportedFileExtensions() {
		supported["."+ext] = struct{}{}
	}

	var files []fileInfo
	for _, src := range sources {
		_ = filepath.WalkDir(src, func(path string, d os.DirEntry, walkErr error) error {
			// Skip any walk errors and keep scanning other paths
			if walkErr != nil {
				return nil //nolint:nilerr // intentionally skipping errors
			}
			if d.IsDir() {
				return nil
			}
			if _, ok := supported[strings.ToLower(filepath.Ext(path))]; !ok {
				return nil
			}

			info, infoErr := d.Info()
			if infoErr != nil {
				return nil //nolint:nilerr // intentionally skipping errors
			}

			files = append(files, fileInfo{
				path:     path,
				filetime: info.ModTime().Unix(),
				filesize: info.Size(),
				source:   src,
			})

			if len(files)%100 == 0 {
				progress <- Progress{Phase: "scanning", Current: len(files)}
			}
			return nil
		})
	}
	return files
}

// knownFiles returns the stored file records that live under one of the
// scanned sources, keyed by filename.
func (s *Scanner) knownFiles(sources []string) (map[string]library.MediaInfo, error) {
	all, err := s.lib.AllMedia()
	if err != nil {
		return nil, err
	}

	known := make(map[string]library.MediaInfo)
	for _, m := range all {
		if m.Source != library.SourceFile {
			continue
		}
		for _, src := range sources {
			if strings.HasPrefix(m.Filename, src) {
				known[m.Filename] = m
				break
			}
		}
	}
	return known, nil
}

// processFiles feeds new and stale files through the library in
// parallel. Database writes happen inside GetMediaInfo; workers only
// fan out the file probing.
func (s *Scanner) processFiles(
	ctx context.Context,
	toProcess []fileInfo,
	isNew map[string]bool,
	stats *Stats,
	progress chan<- Progress,
) error {
	total := len(toProcess)
	var processed atomic.Int64

	type result struct {
		file fileInfo
		ok   bool
	}

	workCh := make(chan fileInfo)
	resultCh := make(chan result, total)

	var wg sync.WaitGroup
	for range s.workers {
		wg.Go(func() {
			for f := range workCh {
				ok := s.processFile(f)
				resultCh <- result{file: f, ok: ok}
				processed.Add(1)
			}
		})
	}

	go func() {
		defer close(workCh)
		for _, f := range toProcess {
			select {
			case workCh <- f:
			case <-ctx.Done():
				return
			}
		}
	}()

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				progress <- Progress{
					Phase:   "processing",
					Current: int(processed.Load()),
					Total:   total,
				}
			case <-done:
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	for r := range resultCh {
		rel := relativePath(r.file.source, r.file.path)
		src, ok := stats.BySource[r.file.source]
		if !ok {
			continue
		}
		switch {
		case !r.ok:
			src.Failed = append(src.Failed, rel)
		case isNew[r.file.path]:
			src.Added = append(src.Added, rel)
		default:
			src.Updated = append(src.Updated, rel)
		}
	}

	close(done)
	progress <- Progress{Phase: "processing", Current: total, Total: total}
	return ctx.Err()
}

// processFile runs one file through the library, reporting success.
func (s *Scanner) processFile(f fileInfo) bool {
	// Files the library itself just rewrote are settling; leave them for
	// the next scan.
	if s.lib.HasRecentlyWrittenTag(f.path) {
		return true
	}

	info := library.MediaInfo{Filename: f.path}
	found, err := s.lib.GetMediaInfo(&info, library.InfoOptions{
		CheckFileAttributes: true,
		ScanMedia:           true,
		SendNotification:    true,
	})
	if err != nil {
		s.log.Warn().Str("filename", f.path).Err(err).Msg("scan file")
		return false
	}
	if !found {
		s.log.Debug().Str("filename", f.path).Msg("unreadable media file")
	}
	return found
}

// removeVanished deletes stored records whose files were not discovered
// in this scan.
func (s *Scanner) removeVanished(
	known map[string]library.MediaInfo,
	discovered map[string]struct{},
	stats *Stats,
) error {
	for path, m := range known {
		if _, exists := discovered[path]; exists {
			continue
		}
		if _, err := s.lib.RemoveFromLibrary(m); err != nil {
			return err
		}
		for src, sourceStats := range stats.BySource {
			if strings.HasPrefix(path, src) {
				sourceStats.Removed = append(sourceStats.Removed, relativePath(src, path))
				break
			}
		}
	}
	return nil
}

// relativePath returns the path relative to the source, or the full path
// if not under source.
func relativePath(source, path string) string {
	rel, err := filepath.Rel(source, path)
	if err != nil {
		return path
	}
	return rel
}
