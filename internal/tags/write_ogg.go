package tags

import (
	"fmt"
	"strconv"

	"go.senan.xyz/taglib"
)

// writeOggTags writes Vorbis comments to an Opus/Ogg file using TagLib.
func writeOggTags(path string, t *Tag) error {
	m := make(map[string][]string)

	addTag := func(key, value string) {
		if value != "" {
			m[key] = []string{value}
		}
	}

	addTag(taglib.Artist, t.Artist)
	addTag(taglib.Title, t.Title)
	addTag(taglib.Album, t.Album)
	addTag(taglib.Genre, t.Genre)
	addTag(taglibComment, t.Comment)
	if t.Year > 0 {
		addTag(taglib.Date, strconv.Itoa(t.Year))
	}
	if t.Track > 0 {
		addTag(taglib.TrackNumber, strconv.Itoa(t.Track))
	}
	if t.GainTrack != nil {
		addTag(taglibGainTrack, FormatGain(*t.GainTrack))
	}
	if t.GainAlbum != nil {
		addTag(taglibGainAlbum, FormatGain(*t.GainAlbum))
	}

	// Clear removes any existing tags not in our map
	if err := taglib.WriteTags(path, m, taglib.Clear); err != nil {
		return fmt.Errorf("write tags: %w", err)
	}

	if len(t.Artwork) > 0 {
		if err := taglib.WriteImage(path, t.Artwork); err != nil {
			return fmt.Errorf("write cover art: %w", err)
		}
	}

	return nil
}
