package tags

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	goflac "github.com/go-flac/go-flac"
	"github.com/llehouerou/go-m4a"
	"github.com/llehouerou/go-mp3"
)

// ReadAudioInfo reads audio stream properties (duration, format, sample rate).
// This uses lighter-weight methods than full decoding where possible.
func ReadAudioInfo(path string) (*AudioInfo, error) {
	ext := strings.ToLower(filepath.Ext(path))

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var info *AudioInfo
	switch ext {
	case ExtMP3:
		info, err = readMP3AudioInfo(f)
	case ExtFLAC:
		info, err = readFLACStreamInfo(path)
	case ExtOPUS, ExtOGG, ExtOGA:
		info, err = readOpusAudioInfo(f)
	case ExtM4A, ExtMP4:
		info, err = readM4AAudioInfo(f)
	default:
		return nil, fmt.Errorf("unsupported format: %s", ext)
	}
	if err != nil {
		return nil, err
	}

	// Derive average bitrate from file size when the container does not carry one.
	if info.Bitrate == 0 && info.Duration > 0 {
		if fi, statErr := f.Stat(); statErr == nil {
			info.Bitrate = float64(fi.Size()) * 8 / info.Duration.Seconds() / 1000
		}
	}
	return info, nil
}

// readMP3AudioInfo extracts audio info from an MP3 file.
func readMP3AudioInfo(f *os.File) (*AudioInfo, error) {
	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, err
	}

	sampleRate := decoder.SampleRate()
	if sampleRate == 0 {
		return nil, errors.New("mp3: invalid sample rate")
	}

	sampleCount := max(decoder.SampleCount(), 0)
	duration := time.Duration(float64(sampleCount) / float64(sampleRate) * float64(time.Second))

	return &AudioInfo{
		Duration:   duration,
		Format:     "MP3",
		SampleRate: sampleRate,
		BitDepth:   16, // MP3 decodes to 16-bit
		Channels:   2,
	}, nil
}

// readFLACStreamInfo extracts audio info from FLAC streaminfo metadata.
func readFLACStreamInfo(path string) (*AudioInfo, error) {
	flacFile, err := goflac.ParseFile(path)
	if err != nil {
		return nil, err
	}

	for _, meta := range flacFile.Meta {
		if meta.Type != goflac.StreamInfo || len(meta.Data) < 18 {
			continue
		}
		// Bytes 10-13: sample rate (20 bits), channels (3 bits), bits per sample (5 bits)
		// Bytes 13-17: total samples (36 bits)
		data := meta.Data

		sampleRate := int(data[10])<<12 | int(data[11])<<4 | int(data[12])>>4
		channels := (int(data[12])>>1)&0x07 + 1
		bitsPerSample := (int(data[12])&0x01)<<4 | int(data[13])>>4 + 1
		totalSamples := int64(data[13]&0x0F)<<32 | int64(data[14])<<24 | int64(data[15])<<16 | int64(data[16])<<8 | int64(data[17])

		duration := time.Duration(0)
		if sampleRate > 0 {
			duration = time.Duration(float64(totalSamples) / float64(sampleRate) * float64(time.Second))
		}

		return &AudioInfo{
			Duration:   duration,
			Format:     "FLAC",
			SampleRate: sampleRate,
			BitDepth:   bitsPerSample,
			Channels:   channels,
		}, nil
	}
	return nil, errors.New("flac: no streaminfo block")
}

// readOpusAudioInfo extracts audio info from an Opus/Ogg file.
func readOpusAudioInfo(f *os.File) (*AudioInfo, error) {
	// Opus always decodes at 48kHz
	const opusSampleRate = 48000

	duration, err := getOggDuration(f)
	if err != nil {
		return nil, err
	}

	return &AudioInfo{
		Duration:   duration,
		Format:     "OPUS",
		SampleRate: opusSampleRate,
		BitDepth:   16,
		Channels:   2,
	}, nil
}

// getOggDuration calculates duration from the last Ogg page's granule position.
func getOggDuration(f *os.File) (time.Duration, error) {
	fi, err := f.Stat()
	if err != nil {
		return 0, err
	}

	// Read the last 64KB to find the last Ogg page
	searchSize := min(int64(65536), fi.Size())
	if _, err := f.Seek(-searchSize, io.SeekEnd); err != nil {
		return 0, err
	}

	buf := make([]byte, searchSize)
	n, err := f.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, err
	}
	buf = buf[:n]

	// Search backwards for OggS magic
	var lastGranule int64
	for i := len(buf) - 27; i >= 0; i-- {
		if buf[i] == 'O' && buf[i+1] == 'g' && buf[i+2] == 'g' && buf[i+3] == 'S' {
			// Granule position is at offset 6, 8 bytes little-endian
			if i+14 <= len(buf) {
				lastGranule = int64(buf[i+6]) | int64(buf[i+7])<<8 | int64(buf[i+8])<<16 | int64(buf[i+9])<<24 |
					int64(buf[i+10])<<32 | int64(buf[i+11])<<40 | int64(buf[i+12])<<48 | int64(buf[i+13])<<56
				break
			}
		}
	}

	if lastGranule > 0 {
		return time.Duration(float64(lastGranule) / 48000.0 * float64(time.Second)), nil
	}
	return 0, errors.New("could not determine Ogg duration")
}

// readM4AAudioInfo extracts audio info from an M4A/MP4 file.
func readM4AAudioInfo(f *os.File) (*AudioInfo, error) {
	container, err := m4a.Open(f)
	if err != nil {
		return nil, err
	}

	var format string
	switch container.Codec() {
	case m4a.CodecAAC:
		format = "AAC"
	case m4a.CodecALAC:
		format = "ALAC"
	default:
		format = "M4A"
	}

	bitDepth := 16
	if container.Codec() == m4a.CodecALAC && container.SampleSize() == 24 {
		bitDepth = 24
	}

	return &AudioInfo{
		Duration:   container.Duration(),
		Format:     format,
		SampleRate: int(container.SampleRate()),
		BitDepth:   bitDepth,
		Channels:   2,
	}, nil
}
