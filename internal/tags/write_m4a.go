package tags

import (
	"fmt"
	"strconv"

	"github.com/Sorrow446/go-mp4tag"
)

// writeM4ATags writes MP4/M4A tags using go-mp4tag.
func writeM4ATags(path string, t *Tag) error {
	mp4, err := mp4tag.Open(path)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer mp4.Close()

	// Freeform iTunes atoms for fields without standard atoms
	custom := make(map[string]string)
	if t.GainTrack != nil {
		custom[taglibGainTrack] = FormatGain(*t.GainTrack)
	}
	if t.GainAlbum != nil {
		custom[taglibGainAlbum] = FormatGain(*t.GainAlbum)
	}

	mt := &mp4tag.MP4Tags{
		Title:       t.Title,
		Artist:      t.Artist,
		Album:       t.Album,
		Comment:     t.Comment,
		TrackNumber: safeInt16(t.Track),
		CustomGenre: t.Genre,
		Custom:      custom,
	}
	if t.Year > 0 {
		mt.Date = strconv.Itoa(t.Year)
	}

	if len(t.Artwork) > 0 {
		mt.Pictures = []*mp4tag.MP4Picture{
			{Data: t.Artwork},
		}
	}

	if err := mp4.Write(mt, nil); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// safeInt16 converts int to int16 with bounds checking.
func safeInt16(n int) int16 {
	if n > 32767 {
		return 32767
	}
	if n < -32768 {
		return -32768
	}
	return int16(n)
}

