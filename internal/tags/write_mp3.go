package tags

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/bogem/id3v2/v2"
)

// writeMP3Tags writes ID3v2 tags to an MP3 file.
func writeMP3Tags(path string, t *Tag) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if errors.Is(err, id3v2.ErrUnsupportedVersion) {
		// ID3v2.2 or older tags - strip them and retry
		if stripErr := stripID3v2Tag(path); stripErr != nil {
			return fmt.Errorf("strip unsupported ID3v2.2 tag: %w", stripErr)
		}
		tag, err = id3v2.Open(path, id3v2.Options{Parse: true})
	}
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer tag.Close()

	// ID3v2.4 with UTF-8 for Unicode support
	tag.SetVersion(4)
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	// Clear existing frames to avoid duplicates
	tag.DeleteAllFrames()

	tag.SetArtist(t.Artist)
	tag.SetAlbum(t.Album)
	tag.SetTitle(t.Title)
	tag.SetGenre(t.Genre)

	if t.Year > 0 {
		tag.AddTextFrame("TDRC", id3v2.EncodingUTF8, strconv.Itoa(t.Year))
	}
	if t.Track > 0 {
		tag.AddTextFrame(tag.CommonID("Track number/Position in set"), id3v2.EncodingUTF8, strconv.Itoa(t.Track))
	}

	if t.Comment != "" {
		tag.AddCommentFrame(id3v2.CommentFrame{
			Encoding: id3v2.EncodingUTF8,
			Language: "eng",
			Text:     t.Comment,
		})
	}

	if t.GainTrack != nil {
		addTXXXFrame(tag, taglibGainTrack, FormatGain(*t.GainTrack))
	}
	if t.GainAlbum != nil {
		addTXXXFrame(tag, taglibGainAlbum, FormatGain(*t.GainAlbum))
	}

	if len(t.Artwork) > 0 {
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    detectMimeType(t.Artwork),
			PictureType: id3v2.PTFrontCover,
			Description: "Front Cover",
			Picture:     t.Artwork,
		})
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("save tags: %w", err)
	}
	return nil
}

// addTXXXFrame adds a user-defined text frame.
func addTXXXFrame(tag *id3v2.Tag, description, value string) {
	tag.AddUserDefinedTextFrame(id3v2.UserDefinedTextFrame{
		Encoding:    id3v2.EncodingUTF8,
		Description: description,
		Value:       value,
	})
}

// stripID3v2Tag removes an ID3v2 tag of any version from the start of a file.
// Used as a last resort when the tag version cannot be parsed.
func stripID3v2Tag(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if len(data) < 10 || string(data[:3]) != id3Magic {
		return errors.New("no ID3v2 tag found")
	}

	// Tag size is a syncsafe integer in bytes 6-9, excluding the 10-byte header
	size := int64(data[6]&0x7f)<<21 | int64(data[7]&0x7f)<<14 | int64(data[8]&0x7f)<<7 | int64(data[9]&0x7f)
	total := 10 + size
	if total >= int64(len(data)) {
		return errors.New("file too small to strip ID3v2 tag")
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data[total:], info.Mode().Perm())
}
