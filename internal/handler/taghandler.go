package handler

import (
	"github.com/ScottsplaysSus/VUPlayer-Scottsplays-Fork/internal/tags"
)

// TagHandler handles the formats covered by the tags package:
// MP3, FLAC, Opus/Ogg, and M4A/MP4 files on the local filesystem.
type TagHandler struct{}

// NewTagHandler creates the default local-file handler.
func NewTagHandler() *TagHandler {
	return &TagHandler{}
}

func (h *TagHandler) Name() string {
	return "tags"
}

func (h *TagHandler) Extensions() []string {
	return []string{"mp3", "flac", "opus", "ogg", "oga", "m4a", "mp4"}
}

func (h *TagHandler) OpenDecoder(filename string) (Decoder, error) {
	info, err := tags.ReadAudioInfo(filename)
	if err != nil {
		return nil, err
	}
	return &tagDecoder{info: info}, nil
}

func (h *TagHandler) ReadTags(filename string) (tags.Set, error) {
	return tags.ReadSet(filename)
}

func (h *TagHandler) WriteTags(filename string, set tags.Set) error {
	return tags.WriteSet(filename, set)
}

func (h *TagHandler) CanWriteTags(filename string) bool {
	return tags.IsMusicFile(filename)
}

// tagDecoder adapts tags.AudioInfo to the Decoder interface.
type tagDecoder struct {
	info *tags.AudioInfo
}

func (d *tagDecoder) Duration() float64 {
	return d.info.Duration.Seconds()
}

func (d *tagDecoder) SampleRate() int {
	return d.info.SampleRate
}

func (d *tagDecoder) Channels() int {
	return d.info.Channels
}

func (d *tagDecoder) BitsPerSample() int {
	return d.info.BitDepth
}

func (d *tagDecoder) Bitrate() float64 {
	return d.info.Bitrate
}

func (d *tagDecoder) Close() error {
	return nil
}

// Format returns the container format string reported by the probe.
func (d *tagDecoder) Format() string {
	return d.info.Format
}

// FormatOf returns the codec/version string for a decoder, when known.
func FormatOf(d Decoder) string {
	if fd, ok := d.(interface{ Format() string }); ok {
		return fd.Format()
	}
	return ""
}
