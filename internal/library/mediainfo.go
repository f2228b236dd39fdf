package library

import (
	"strconv"
	"strings"

	"github.com/ScottsplaysSus/VUPlayer-Scottsplays-Fork/internal/tags"
)

// Source identifies where a media item comes from.
type Source int

const (
	SourceFile Source = iota
	SourceCDDA
	SourceStream
)

// cddaScheme is the filename convention for optical-disc tracks:
// cdda://<drive>/<cddb id, hex>/<track number>.
const cddaScheme = "cdda://"

// streamSchemes are the URL prefixes treated as network streams.
var streamSchemes = []string{"http://", "https://", "ftp://", "mms://"}

// SourceFromFilename derives the source kind from the filename scheme.
func SourceFromFilename(filename string) Source {
	lower := strings.ToLower(filename)
	if strings.HasPrefix(lower, cddaScheme) {
		return SourceCDDA
	}
	for _, scheme := range streamSchemes {
		if strings.HasPrefix(lower, scheme) {
			return SourceStream
		}
	}
	return SourceFile
}

// MediaInfo is one library record, keyed by filename.
// Values passed to and from the library are copies; no shared mutable
// state crosses the interface.
type MediaInfo struct {
	Filename string

	// Live-file attributes at the time of the last scan; zero when unknown.
	// A record is fresh only while these match the file on disk.
	Filetime int64
	Filesize int64

	// Stream characteristics reported by the decoder.
	Duration      float64 // seconds
	SampleRate    int
	BitsPerSample int
	Channels      int
	Bitrate       *float64 // kbps, derived, optional

	// Tag-derived fields.
	Artist  string
	Title   string
	Album   string
	Genre   string
	Year    int
	Comment string
	Track   int
	Version string // codec/version string

	// ReplayGain values in dB, nil when not computed.
	GainTrack *float64
	GainAlbum *float64

	// Artwork reference into the artwork table, empty when unset.
	ArtworkID string

	Source Source

	// CDDB disc id, CDDA tracks only.
	CDDB int64
}

// ParseCDDAFilename extracts the CDDB id and track number from a
// cdda:// filename. Returns false if the filename does not follow the
// convention.
func ParseCDDAFilename(filename string) (cddb int64, track int, ok bool) {
	lower := strings.ToLower(filename)
	if !strings.HasPrefix(lower, cddaScheme) {
		return 0, 0, false
	}
	parts := strings.Split(lower[len(cddaScheme):], "/")
	if len(parts) != 3 {
		return 0, 0, false
	}
	cddb, err := strconv.ParseInt(parts[1], 16, 64)
	if err != nil {
		return 0, 0, false
	}
	track, err = strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, false
	}
	return cddb, track, true
}

// Tags converts the record's taggable fields to a tag set.
// Artwork is not included; see Library.Tags for the resolving variant.
func (m *MediaInfo) Tags() tags.Set {
	set := make(tags.Set)
	addString := func(f tags.Field, v string) {
		if v != "" {
			set[f] = v
		}
	}
	addString(tags.FieldArtist, m.Artist)
	addString(tags.FieldTitle, m.Title)
	addString(tags.FieldAlbum, m.Album)
	addString(tags.FieldGenre, m.Genre)
	addString(tags.FieldComment, m.Comment)
	addString(tags.FieldVersion, m.Version)
	if m.Year > 0 {
		set[tags.FieldYear] = strconv.Itoa(m.Year)
	}
	if m.Track > 0 {
		set[tags.FieldTrack] = strconv.Itoa(m.Track)
	}
	if m.GainTrack != nil {
		set[tags.FieldGainTrack] = strconv.FormatFloat(*m.GainTrack, 'f', 2, 64)
	}
	if m.GainAlbum != nil {
		set[tags.FieldGainAlbum] = strconv.FormatFloat(*m.GainAlbum, 'f', 2, 64)
	}
	return set
}

// applyTagValue sets a single taggable field from its string form.
// Malformed numeric input is coerced to zero, not treated as an error.
func (m *MediaInfo) applyTagValue(field tags.Field, value string) {
	switch field {
	case tags.FieldArtist:
		m.Artist = value
	case tags.FieldTitle:
		m.Title = value
	case tags.FieldAlbum:
		m.Album = value
	case tags.FieldGenre:
		m.Genre = value
	case tags.FieldComment:
		m.Comment = value
	case tags.FieldVersion:
		m.Version = value
	case tags.FieldYear:
		m.Year, _ = strconv.Atoi(value)
	case tags.FieldTrack:
		m.Track, _ = strconv.Atoi(value)
	case tags.FieldGainTrack:
		m.GainTrack = tags.ParseGain(value)
	case tags.FieldGainAlbum:
		m.GainAlbum = tags.ParseGain(value)
	case tags.FieldArtwork:
		// Artwork bytes are deduplicated into the artwork table by the
		// caller; the record only carries the reference.
	}
}

// tagDiff returns the tag fields whose values differ between previous and
// updated. A changed field maps to its updated value, which may be empty
// when the field was cleared.
func tagDiff(previous, updated *MediaInfo) tags.Set {
	diff := make(tags.Set)
	addIf := func(f tags.Field, prev, next string) {
		if prev != next {
			diff[f] = next
		}
	}
	addIf(tags.FieldArtist, previous.Artist, updated.Artist)
	addIf(tags.FieldTitle, previous.Title, updated.Title)
	addIf(tags.FieldAlbum, previous.Album, updated.Album)
	addIf(tags.FieldGenre, previous.Genre, updated.Genre)
	addIf(tags.FieldComment, previous.Comment, updated.Comment)
	if previous.Year != updated.Year {
		diff[tags.FieldYear] = itoaNonZero(updated.Year)
	}
	if previous.Track != updated.Track {
		diff[tags.FieldTrack] = itoaNonZero(updated.Track)
	}
	if !gainEqual(previous.GainTrack, updated.GainTrack) {
		diff[tags.FieldGainTrack] = gainString(updated.GainTrack)
	}
	if !gainEqual(previous.GainAlbum, updated.GainAlbum) {
		diff[tags.FieldGainAlbum] = gainString(updated.GainAlbum)
	}
	return diff
}

func itoaNonZero(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func gainEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func gainString(g *float64) string {
	if g == nil {
		return ""
	}
	return strconv.FormatFloat(*g, 'f', 2, 64)
}
