package library

import (
	"time"

	"github.com/ScottsplaysSus/VUPlayer-Scottsplays-Fork/internal/tags"
)

// WriteFileTags writes pending tag changes out to the file, merging set
// into anything still pending for the filename from earlier deferred or
// failed attempts. Writes are rate limited; when the limiter denies the
// attempt the merged set stays pending for a later call. When a write
// is attempted the filename is recorded in the recent-write ledger
// whether or not the write succeeds, so that rescans triggered by our
// own file modification can be told apart from external edits. On
// success the record's file attributes and duration are refreshed from
// the rewritten file.
func (l *Library) WriteFileTags(info *MediaInfo, set tags.Set) {
	pending := l.takePendingTags(info.Filename, set)
	if len(pending) == 0 {
		return
	}

	if !l.writeLimiter.Allow() {
		l.addPendingTags(info.Filename, pending)
		l.log.Debug().Str("filename", info.Filename).Msg("tag write deferred")
		return
	}

	l.setRecentlyWrittenTag(info.Filename)
	if err := l.handlers.WriteTags(info.Filename, pending); err != nil {
		l.addPendingTags(info.Filename, pending)
		l.log.Warn().Str("filename", info.Filename).Err(err).Msg("write file tags")
		return
	}

	l.refreshAfterWrite(info)
}

// refreshAfterWrite re-stats and re-probes the file after a tag write so
// the stored attributes match the rewritten file and a later lookup does
// not see the record as stale.
func (l *Library) refreshAfterWrite(info *MediaInfo) {
	if filetime, filesize, ok := fileAttributes(info.Filename); ok {
		info.Filetime = filetime
		info.Filesize = filesize
	}
	if decoder, err := l.handlers.OpenDecoder(info.Filename); err == nil {
		if d := decoder.Duration(); d > 0 {
			info.Duration = d
		}
		_ = decoder.Close()
	}
	if err := l.upsertMedia(info); err != nil {
		l.log.Warn().Str("filename", info.Filename).Err(err).Msg("refresh after tag write")
	}
}

// HasRecentlyWrittenTag reports whether a tag write was attempted on the
// file within the recent-write window. Scanners use this to skip files
// the library itself just modified.
func (l *Library) HasRecentlyWrittenTag(filename string) bool {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	written, ok := l.tagsWritten[filename]
	if !ok {
		return false
	}
	if time.Since(written) > l.recentWindow {
		delete(l.tagsWritten, filename)
		return false
	}
	return true
}

// PendingTags returns a copy of the tag set awaiting write-back for the
// filename, nil when nothing is pending.
func (l *Library) PendingTags(filename string) tags.Set {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	pending, ok := l.pendingTags[filename]
	if !ok {
		return nil
	}
	copied := make(tags.Set, len(pending))
	copied.Merge(pending)
	return copied
}

// takePendingTags removes the pending set for the filename and merges
// set over it, so a retry carries both the old and the new values.
func (l *Library) takePendingTags(filename string, set tags.Set) tags.Set {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	merged := l.pendingTags[filename]
	delete(l.pendingTags, filename)
	if merged == nil {
		merged = make(tags.Set, len(set))
	}
	merged.Merge(set)
	return merged
}

// addPendingTags merges set into the pending state for the filename.
func (l *Library) addPendingTags(filename string, set tags.Set) {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	pending, ok := l.pendingTags[filename]
	if !ok {
		pending = make(tags.Set, len(set))
		l.pendingTags[filename] = pending
	}
	pending.Merge(set)
}

// setRecentlyWrittenTag records a write attempt, pruning expired
// entries so the ledger stays bounded.
func (l *Library) setRecentlyWrittenTag(filename string) {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	now := time.Now()
	for name, written := range l.tagsWritten {
		if now.Sub(written) > l.recentWindow {
			delete(l.tagsWritten, name)
		}
	}
	l.tagsWritten[filename] = now
}
