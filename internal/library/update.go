package library

import (
	"fmt"
	"strings"

	dbutil "github.com/ScottsplaysSus/VUPlayer-Scottsplays-Fork/internal/db"
	"github.com/ScottsplaysSus/VUPlayer-Scottsplays-Fork/internal/handler"
	"github.com/ScottsplaysSus/VUPlayer-Scottsplays-Fork/internal/tags"
)

// UpdateMediaTags updates the stored record where updated differs from
// previous, and writes the changed tags out to the file. A tag file
// write failure is logged and the tags kept pending; it never aborts
// the caller.
func (l *Library) UpdateMediaTags(previous, updated MediaInfo) error {
	if previous.Filename != updated.Filename {
		return fmt.Errorf("filename mismatch: %q vs %q", previous.Filename, updated.Filename)
	}

	diff := tagDiff(&previous, &updated)
	if previous.ArtworkID != updated.ArtworkID {
		diff[tags.FieldArtwork] = tags.EncodeArtwork(l.artworkByID(updated.ArtworkID))
	}
	if len(diff) == 0 {
		return nil
	}

	src := SourceFromFilename(updated.Filename)
	if err := l.updateColumns(&updated, src, diff); err != nil {
		return err
	}

	if src == SourceFile && l.handlers.CanWriteTags(updated.Filename) {
		l.WriteFileTags(&updated, diff)
	}
	return nil
}

// updateColumns applies an UPDATE restricted to the changed fields,
// matched by filename.
func (l *Library) updateColumns(info *MediaInfo, src Source, diff tags.Set) error {
	assignments := make([]string, 0, len(diff))
	args := make([]any, 0, len(diff)+1)
	add := func(column string, value any) {
		assignments = append(assignments, column+" = ?")
		args = append(args, value)
	}

	for field, value := range diff {
		switch field {
		case tags.FieldArtist:
			add("artist", value)
		case tags.FieldTitle:
			add("title", value)
		case tags.FieldAlbum:
			add("album", value)
		case tags.FieldGenre:
			add("genre", value)
		case tags.FieldComment:
			add("comment", value)
		case tags.FieldVersion:
			add("version", value)
		case tags.FieldYear:
			add("year", info.Year)
		case tags.FieldTrack:
			add("track", info.Track)
		case tags.FieldGainTrack:
			add("gaintrack", dbutil.Float64PtrToNull(info.GainTrack))
		case tags.FieldGainAlbum:
			add("gainalbum", dbutil.Float64PtrToNull(info.GainAlbum))
		case tags.FieldArtwork:
			add("artwork", nullString(info.ArtworkID))
		}
	}
	if len(assignments) == 0 {
		return nil
	}
	args = append(args, info.Filename)

	_, err := l.db.Exec(`
		UPDATE `+tableFor(src)+`
		SET `+strings.Join(assignments, ", ")+`
		WHERE filename = ?
	`, args...)
	return err
}

// UpdateTrackGain writes the gain columns if they differ from the
// stored values. Returns whether the library was updated.
func (l *Library) UpdateTrackGain(previous, updated MediaInfo, notify bool) (bool, error) {
	if gainEqual(previous.GainTrack, updated.GainTrack) &&
		gainEqual(previous.GainAlbum, updated.GainAlbum) {
		return false, nil
	}

	src := SourceFromFilename(updated.Filename)
	res, err := l.db.Exec(`
		UPDATE `+tableFor(src)+`
		SET gaintrack = ?, gainalbum = ?
		WHERE filename = ?
	`, dbutil.Float64PtrToNull(updated.GainTrack),
		dbutil.Float64PtrToNull(updated.GainAlbum),
		updated.Filename)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, nil
	}
	if notify {
		l.notifier.MediaUpdated(updated)
	}
	return true, nil
}

// UpdateMediaInfoFromDecoder merges decoder-reported stream
// characteristics into the record and persists them, distinct from
// tag-derived fields.
func (l *Library) UpdateMediaInfoFromDecoder(info *MediaInfo, decoder handler.Decoder, notify bool) error {
	changed := false
	setInt := func(dst *int, v int) {
		if v > 0 && *dst != v {
			*dst = v
			changed = true
		}
	}
	setInt(&info.SampleRate, decoder.SampleRate())
	setInt(&info.Channels, decoder.Channels())
	setInt(&info.BitsPerSample, decoder.BitsPerSample())
	if d := decoder.Duration(); d > 0 && info.Duration != d {
		info.Duration = d
		changed = true
	}
	if bitrate := decoder.Bitrate(); bitrate > 0 && (info.Bitrate == nil || *info.Bitrate != bitrate) {
		info.Bitrate = &bitrate
		changed = true
	}
	if !changed {
		return nil
	}

	if err := l.upsertMedia(info); err != nil {
		return err
	}
	if notify {
		l.notifier.MediaUpdated(*info)
	}
	return nil
}

// Tags returns the record as a tag set, resolving the artwork reference
// to image bytes.
func (l *Library) Tags(info MediaInfo) tags.Set {
	set := info.Tags()
	if info.ArtworkID != "" {
		if image := l.artworkByID(info.ArtworkID); len(image) > 0 {
			set[tags.FieldArtwork] = tags.EncodeArtwork(image)
		}
	}
	return set
}
