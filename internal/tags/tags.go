// Package tags provides unified tag reading and writing for music files.
// It consolidates metadata handling for MP3, FLAC, Opus/Ogg, and M4A formats
// and exposes the field-keyed tag sets used by the media library.
package tags

import (
	"strconv"
	"strings"
	"time"
)

// File extensions supported by the tags package.
const (
	ExtMP3  = ".mp3"
	ExtFLAC = ".flac"
	ExtOPUS = ".opus"
	ExtOGG  = ".ogg"
	ExtOGA  = ".oga"
	ExtM4A  = ".m4a"
	ExtMP4  = ".mp4"
)

// id3Magic is the magic bytes for ID3v2 header detection.
const id3Magic = "ID3"

// Field identifies a single tag field within a Set.
type Field int

const (
	FieldArtist Field = iota
	FieldTitle
	FieldAlbum
	FieldGenre
	FieldYear
	FieldComment
	FieldTrack
	FieldVersion
	FieldGainTrack
	FieldGainAlbum
	FieldArtwork
)

// Set maps tag fields to their string representation. Numeric fields hold
// decimal strings, gains hold a dB value without unit suffix, and artwork
// holds base64-encoded image bytes.
type Set map[Field]string

// Merge overlays other onto s in place, with other's values winning.
func (s Set) Merge(other Set) {
	for f, v := range other {
		s[f] = v
	}
}

// Tag contains the tag metadata carried by a music file.
type Tag struct {
	Path    string
	Title   string
	Artist  string
	Album   string
	Genre   string
	Comment string
	Year    int
	Track   int

	// ReplayGain values in dB, nil when the file carries none.
	GainTrack *float64
	GainAlbum *float64

	// Front cover image bytes.
	Artwork []byte
}

// Apply overlays the fields present in set onto the tag.
// Malformed numeric values are coerced to zero, not treated as errors.
func (t *Tag) Apply(set Set) {
	for field, value := range set {
		switch field {
		case FieldArtist:
			t.Artist = value
		case FieldTitle:
			t.Title = value
		case FieldAlbum:
			t.Album = value
		case FieldGenre:
			t.Genre = value
		case FieldComment:
			t.Comment = value
		case FieldYear:
			t.Year, _ = strconv.Atoi(value)
		case FieldTrack:
			t.Track, _ = strconv.Atoi(value)
		case FieldGainTrack:
			t.GainTrack = parseGainValue(value)
		case FieldGainAlbum:
			t.GainAlbum = parseGainValue(value)
		case FieldArtwork:
			t.Artwork = DecodeArtwork(value)
		case FieldVersion:
			// Informational only, never written to files.
		}
	}
}

// AudioInfo contains audio stream properties (not tags).
type AudioInfo struct {
	Duration   time.Duration
	Format     string // MP3, FLAC, OPUS, AAC, ALAC
	SampleRate int
	BitDepth   int
	Channels   int
	Bitrate    float64 // kbps, 0 when unknown
}

// IsMusicFile returns true if the path has a supported music file extension.
func IsMusicFile(path string) bool {
	ext := strings.ToLower(path)
	if idx := strings.LastIndex(ext, "."); idx >= 0 {
		ext = ext[idx:]
	} else {
		return false
	}
	switch ext {
	case ExtMP3, ExtFLAC, ExtOPUS, ExtOGG, ExtOGA, ExtM4A, ExtMP4:
		return true
	}
	return false
}

// FormatGain renders a gain value the way ReplayGain comments expect it.
func FormatGain(gain float64) string {
	return strconv.FormatFloat(gain, 'f', 2, 64) + " dB"
}

// ParseGain parses a ReplayGain comment value such as "-3.40 dB".
// Returns nil for empty or malformed input.
func ParseGain(value string) *float64 {
	return parseGainValue(value)
}

func parseGainValue(value string) *float64 {
	value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "dB"))
	if value == "" {
		return nil
	}
	gain, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}
	return &gain
}

// taglibTags wraps a taglib result map with helper methods.
type taglibTags map[string][]string

// get returns the first value for any of the given keys, or empty string if not found.
func (t taglibTags) get(keys ...string) string {
	for _, key := range keys {
		if values, ok := t[key]; ok && len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

// getInt returns the first value as an integer, or 0 if not found or invalid.
// Values in "N/M" form yield N.
func (t taglibTags) getInt(key string) int {
	s := t.get(key)
	if idx := strings.Index(s, "/"); idx > 0 {
		s = s[:idx]
	}
	n, _ := strconv.Atoi(s)
	return n
}
