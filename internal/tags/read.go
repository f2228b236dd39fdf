package tags

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dhowden/tag"
	"go.senan.xyz/taglib"
)

// Read reads tag metadata from a music file.
// It returns only tag metadata, not audio stream properties.
func Read(path string) (*Tag, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		// dhowden/tag fails on some UTF-16 ID3 tags and some
		// ffmpeg-created containers; taglib handles those.
		return readWithTaglib(path)
	}

	title := m.Title()
	if title == "" {
		title = filepath.Base(path)
	}

	track, _ := m.Track()

	t := &Tag{
		Path:    path,
		Title:   title,
		Artist:  m.Artist(),
		Album:   m.Album(),
		Genre:   m.Genre(),
		Comment: m.Comment(),
		Year:    m.Year(),
		Track:   track,
	}

	if pic := m.Picture(); pic != nil {
		t.Artwork = pic.Data
	}

	// dhowden/tag does not expose ReplayGain values.
	readGainTags(path, t)

	return t, nil
}

// ReadSet reads tag metadata as a field-keyed set.
func ReadSet(path string) (Set, error) {
	t, err := Read(path)
	if err != nil {
		return nil, err
	}
	return t.Set(), nil
}

// Set converts the tag to its field-keyed representation,
// omitting empty fields.
func (t *Tag) Set() Set {
	set := make(Set)
	addString := func(f Field, v string) {
		if v != "" {
			set[f] = v
		}
	}
	addString(FieldArtist, t.Artist)
	addString(FieldTitle, t.Title)
	addString(FieldAlbum, t.Album)
	addString(FieldGenre, t.Genre)
	addString(FieldComment, t.Comment)
	if t.Year > 0 {
		set[FieldYear] = strconv.Itoa(t.Year)
	}
	if t.Track > 0 {
		set[FieldTrack] = strconv.Itoa(t.Track)
	}
	if t.GainTrack != nil {
		set[FieldGainTrack] = strconv.FormatFloat(*t.GainTrack, 'f', 2, 64)
	}
	if t.GainAlbum != nil {
		set[FieldGainAlbum] = strconv.FormatFloat(*t.GainAlbum, 'f', 2, 64)
	}
	if len(t.Artwork) > 0 {
		set[FieldArtwork] = EncodeArtwork(t.Artwork)
	}
	return set
}

// readWithTaglib reads metadata using TagLib, as fallback when dhowden/tag fails.
func readWithTaglib(path string) (*Tag, error) {
	rawTags, err := taglib.ReadTags(path)
	if err != nil {
		return nil, err
	}
	tl := taglibTags(rawTags)

	title := tl.get(taglib.Title)
	if title == "" {
		title = filepath.Base(path)
	}

	t := &Tag{
		Path:      path,
		Title:     title,
		Artist:    tl.get(taglib.Artist),
		Album:     tl.get(taglib.Album),
		Genre:     tl.get(taglib.Genre),
		Comment:   tl.get(taglibComment),
		Year:      yearOf(tl.get(taglib.Date)),
		Track:     tl.getInt(taglib.TrackNumber),
		GainTrack: parseGainValue(tl.get(taglibGainTrack)),
		GainAlbum: parseGainValue(tl.get(taglibGainAlbum)),
	}
	return t, nil
}

// readGainTags fills in ReplayGain values via taglib.
func readGainTags(path string, t *Tag) {
	rawTags, err := taglib.ReadTags(path)
	if err != nil {
		return
	}
	tl := taglibTags(rawTags)
	t.GainTrack = parseGainValue(tl.get(taglibGainTrack))
	t.GainAlbum = parseGainValue(tl.get(taglibGainAlbum))
}

// yearOf extracts the year from a date string (YYYY or YYYY-MM-DD).
func yearOf(date string) int {
	if len(date) > 4 {
		date = date[:4]
	}
	y, _ := strconv.Atoi(date)
	return y
}

// Tag keys not covered by taglib constants.
const (
	taglibComment   = "COMMENT"
	taglibGainTrack = "REPLAYGAIN_TRACK_GAIN"
	taglibGainAlbum = "REPLAYGAIN_ALBUM_GAIN"
)

// EncodeArtwork encodes image bytes for transport inside a Set.
func EncodeArtwork(image []byte) string {
	if len(image) == 0 {
		return ""
	}
	return base64.StdEncoding.EncodeToString(image)
}

// DecodeArtwork decodes a Set artwork value back to image bytes.
// Returns nil for empty or malformed input.
func DecodeArtwork(encoded string) []byte {
	if encoded == "" {
		return nil
	}
	image, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil
	}
	return image
}
