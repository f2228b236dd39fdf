package library

import (
	"database/sql"
	"errors"
	"strings"

	dbutil "github.com/ScottsplaysSus/VUPlayer-Scottsplays-Fork/internal/db"
	"github.com/ScottsplaysSus/VUPlayer-Scottsplays-Fork/internal/handler"
	"github.com/ScottsplaysSus/VUPlayer-Scottsplays-Fork/internal/tags"
)

// InfoOptions controls GetMediaInfo behavior.
type InfoOptions struct {
	// CheckFileAttributes compares the stored (modified time, size) pair
	// against the live file; a mismatch marks the row stale and forces
	// the rescan path.
	CheckFileAttributes bool
	// ScanMedia allows querying the decoders when no fresh row exists.
	ScanMedia bool
	// SendNotification signals the notifier when the record changes.
	SendNotification bool
	// RemoveMissing deletes the stored row when no decoder can open the
	// file. When false the stale row is preserved.
	RemoveMissing bool
}

// DefaultInfoOptions mirrors the historical defaults: check attributes,
// scan on miss, notify, keep missing entries.
func DefaultInfoOptions() InfoOptions {
	return InfoOptions{
		CheckFileAttributes: true,
		ScanMedia:           true,
		SendNotification:    true,
		RemoveMissing:       false,
	}
}

// GetMediaInfo looks up media information for info.Filename, filling in
// the remaining fields. Returns true when information was returned.
// "Not found" is not an error; the error return covers database
// failures only.
func (l *Library) GetMediaInfo(info *MediaInfo, opts InfoOptions) (bool, error) {
	if info == nil || info.Filename == "" {
		return false, nil
	}
	info.Source = SourceFromFilename(info.Filename)

	stored, found, err := l.mediaByFilename(info.Filename, info.Source)
	if err != nil {
		return false, err
	}

	fresh := found
	if found && opts.CheckFileAttributes && stored.Source == SourceFile {
		filetime, filesize, ok := fileAttributes(info.Filename)
		if !ok || filetime != stored.Filetime || filesize != stored.Filesize {
			l.log.Debug().Str("filename", info.Filename).Msg("library entry stale")
			fresh = false
		}
	}

	if fresh {
		*info = *stored
		return true, nil
	}

	if !opts.ScanMedia {
		return false, nil
	}

	if !l.scanMedia(info) {
		if opts.RemoveMissing && found {
			if _, err := l.RemoveFromLibrary(*stored); err != nil {
				return false, err
			}
			l.log.Debug().Str("filename", info.Filename).Msg("removed missing library entry")
		}
		return false, nil
	}

	if err := l.upsertMedia(info); err != nil {
		return false, err
	}
	if opts.SendNotification {
		l.notifier.MediaUpdated(*info)
	}
	return true, nil
}

// scanMedia queries the decoders for media information, merging stream
// characteristics and extracted tags into info. Returns false when no
// decoder could open the file.
func (l *Library) scanMedia(info *MediaInfo) bool {
	decoder, err := l.handlers.OpenDecoder(info.Filename)
	if err != nil {
		l.log.Debug().Str("filename", info.Filename).Err(err).Msg("no decoder for file")
		return false
	}
	info.Duration = decoder.Duration()
	info.SampleRate = decoder.SampleRate()
	info.Channels = decoder.Channels()
	info.BitsPerSample = decoder.BitsPerSample()
	if bitrate := decoder.Bitrate(); bitrate > 0 {
		info.Bitrate = &bitrate
	}
	if format := handler.FormatOf(decoder); format != "" {
		info.Version = format
	}
	_ = decoder.Close()

	if set, err := l.handlers.ReadTags(info.Filename); err == nil {
		l.applyTagSet(info, set)
	}

	if info.Source == SourceFile {
		if filetime, filesize, ok := fileAttributes(info.Filename); ok {
			info.Filetime = filetime
			info.Filesize = filesize
		}
	}
	if info.Source == SourceCDDA {
		if cddb, track, ok := ParseCDDAFilename(info.Filename); ok {
			info.CDDB = cddb
			if info.Track == 0 {
				info.Track = track
			}
		}
	}
	if info.Bitrate == nil && info.Duration > 0 && info.Filesize > 0 {
		bitrate := float64(info.Filesize) * 8 / info.Duration / 1000
		info.Bitrate = &bitrate
	}
	return true
}

// applyTagSet merges an extracted tag set into the record, deduplicating
// any artwork into the artwork table.
func (l *Library) applyTagSet(info *MediaInfo, set tags.Set) {
	for field, value := range set {
		if field == tags.FieldArtwork {
			if image := tags.DecodeArtwork(value); len(image) > 0 {
				id, err := l.AddArtwork(image)
				if err != nil {
					l.log.Warn().Str("filename", info.Filename).Err(err).Msg("store artwork")
					continue
				}
				info.ArtworkID = id
			}
			continue
		}
		info.applyTagValue(field, value)
	}
}

// mediaByFilename loads a record by its unique filename key.
func (l *Library) mediaByFilename(filename string, src Source) (*MediaInfo, bool, error) {
	table := tableFor(src)
	row := l.db.QueryRow(`
		SELECT `+strings.Join(columnsFor(src), ", ")+`
		FROM `+table+`
		WHERE filename = ?
	`, filename)

	info, err := scanMediaInfo(row, src)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return info, true, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanMediaInfo reads one record from a row selected with columnsFor(src).
func scanMediaInfo(row rowScanner, src Source) (*MediaInfo, error) {
	var info MediaInfo
	var filetime, filesize, samplerate, bits, channels, year, track sql.NullInt64
	var duration, gainTrack, gainAlbum, bitrate sql.NullFloat64
	var artist, title, album, genre, comment, version, artwork sql.NullString

	dest := []any{
		&info.Filename, &filetime, &filesize,
		&duration, &samplerate, &bits, &channels,
		&artist, &title, &album, &genre, &year,
		&comment, &track, &version,
		&gainTrack, &gainAlbum, &artwork, &bitrate,
	}
	var cddb sql.NullInt64
	if src == SourceCDDA {
		dest = append(dest, &cddb)
	}

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	info.Filetime = dbutil.NullInt64Value(filetime)
	info.Filesize = dbutil.NullInt64Value(filesize)
	info.Duration = duration.Float64
	info.SampleRate = int(dbutil.NullInt64Value(samplerate))
	info.BitsPerSample = int(dbutil.NullInt64Value(bits))
	info.Channels = int(dbutil.NullInt64Value(channels))
	info.Artist = dbutil.NullStringValue(artist)
	info.Title = dbutil.NullStringValue(title)
	info.Album = dbutil.NullStringValue(album)
	info.Genre = dbutil.NullStringValue(genre)
	info.Year = int(dbutil.NullInt64Value(year))
	info.Comment = dbutil.NullStringValue(comment)
	info.Track = int(dbutil.NullInt64Value(track))
	info.Version = dbutil.NullStringValue(version)
	info.GainTrack = dbutil.NullFloat64ToPtr(gainTrack)
	info.GainAlbum = dbutil.NullFloat64ToPtr(gainAlbum)
	info.ArtworkID = dbutil.NullStringValue(artwork)
	info.Bitrate = dbutil.NullFloat64ToPtr(bitrate)
	info.Source = src
	info.CDDB = dbutil.NullInt64Value(cddb)
	if src != SourceCDDA {
		info.Source = SourceFromFilename(info.Filename)
	}
	return &info, nil
}

// upsertMedia inserts or updates a record by its unique filename key.
// A single transactional upsert avoids the check-then-act race between
// concurrent scans of the same file.
func (l *Library) upsertMedia(info *MediaInfo) error {
	table := tableFor(info.Source)
	cols := columnsFor(info.Source)

	args := []any{
		info.Filename, nullInt(info.Filetime), nullInt(info.Filesize),
		info.Duration, info.SampleRate, info.BitsPerSample, info.Channels,
		info.Artist, info.Title, info.Album, info.Genre, info.Year,
		info.Comment, info.Track, info.Version,
		dbutil.Float64PtrToNull(info.GainTrack), dbutil.Float64PtrToNull(info.GainAlbum),
		nullString(info.ArtworkID), dbutil.Float64PtrToNull(info.Bitrate),
	}
	if info.Source == SourceCDDA {
		args = append(args, info.CDDB)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	updates := make([]string, 0, len(cols)-1)
	for _, col := range cols[1:] {
		updates = append(updates, col+" = excluded."+col)
	}

	_, err := l.db.Exec(`
		INSERT INTO `+table+` (`+strings.Join(cols, ", ")+`)
		VALUES (`+placeholders+`)
		ON CONFLICT(filename) DO UPDATE SET `+strings.Join(updates, ", "),
		args...)
	return err
}

func nullInt(n int64) sql.NullInt64 {
	if n == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: n, Valid: true}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
