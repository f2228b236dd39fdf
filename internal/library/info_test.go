package library

import (
	"os"
	"sync"
	"testing"
	"time"

	"github.com/ScottsplaysSus/VUPlayer-Scottsplays-Fork/internal/tags"
)

func TestGetMediaInfo_ScansAndStores(t *testing.T) {
	lib, fake, notifier := setupTestLib(t, Options{})

	path := writeTempFile(t, t.TempDir(), "song.mp3", "mp3 bytes")
	fake.addFile(path, fakeFile{
		decoder: fakeDecoder{duration: 180, sampleRate: 44100, channels: 2, bits: 16, bitrate: 320, format: "MPEG-1 Layer 3"},
		tags: tags.Set{
			tags.FieldArtist: "The Kinks",
			tags.FieldTitle:  "Waterloo Sunset",
			tags.FieldAlbum:  "Something Else",
			tags.FieldYear:   "1967",
			tags.FieldTrack:  "12",
		},
	})

	info := MediaInfo{Filename: path}
	found, err := lib.GetMediaInfo(&info, DefaultInfoOptions())
	if err != nil {
		t.Fatalf("GetMediaInfo failed: %v", err)
	}
	if !found {
		t.Fatal("expected media info to be found")
	}

	if info.Artist != "The Kinks" || info.Title != "Waterloo Sunset" {
		t.Errorf("tags not applied: %+v", info)
	}
	if info.Year != 1967 || info.Track != 12 {
		t.Errorf("numeric tags not applied: year=%d track=%d", info.Year, info.Track)
	}
	if info.Duration != 180 || info.SampleRate != 44100 || info.Channels != 2 || info.BitsPerSample != 16 {
		t.Errorf("stream characteristics not applied: %+v", info)
	}
	if info.Bitrate == nil || *info.Bitrate != 320 {
		t.Errorf("bitrate not applied: %v", info.Bitrate)
	}
	if info.Version != "MPEG-1 Layer 3" {
		t.Errorf("version = %q, expected decoder format", info.Version)
	}
	if info.Filetime == 0 || info.Filesize == 0 {
		t.Error("file attributes not captured")
	}
	if info.Source != SourceFile {
		t.Errorf("source = %v, expected SourceFile", info.Source)
	}

	if notifier.count() != 1 {
		t.Errorf("expected 1 notification, got %d", notifier.count())
	}

	// The record is now stored: a lookup without scanning finds it.
	stored := MediaInfo{Filename: path}
	found, err = lib.GetMediaInfo(&stored, InfoOptions{CheckFileAttributes: true})
	if err != nil {
		t.Fatalf("stored lookup failed: %v", err)
	}
	if !found {
		t.Fatal("expected stored record to be found without scanning")
	}
	if stored.Artist != "The Kinks" {
		t.Errorf("stored artist = %q", stored.Artist)
	}
}

func TestGetMediaInfo_FreshRecordSkipsRescan(t *testing.T) {
	lib, fake, _ := setupTestLib(t, Options{})

	path := writeTempFile(t, t.TempDir(), "song.mp3", "mp3 bytes")
	fake.addFile(path, fakeFile{
		decoder: fakeDecoder{duration: 100, sampleRate: 44100, channels: 2},
		tags:    tags.Set{tags.FieldArtist: "Original"},
	})

	info := MediaInfo{Filename: path}
	if _, err := lib.GetMediaInfo(&info, DefaultInfoOptions()); err != nil {
		t.Fatalf("initial scan failed: %v", err)
	}

	// Change what the decoder would report without touching the file.
	fake.addFile(path, fakeFile{
		decoder: fakeDecoder{duration: 100, sampleRate: 44100, channels: 2},
		tags:    tags.Set{tags.FieldArtist: "Changed"},
	})

	again := MediaInfo{Filename: path}
	found, err := lib.GetMediaInfo(&again, DefaultInfoOptions())
	if err != nil {
		t.Fatalf("second lookup failed: %v", err)
	}
	if !found {
		t.Fatal("expected record to be found")
	}
	if again.Artist != "Original" {
		t.Errorf("fresh record was rescanned: artist = %q", again.Artist)
	}
}

func TestGetMediaInfo_StaleRecordRescans(t *testing.T) {
	lib, fake, _ := setupTestLib(t, Options{})

	dir := t.TempDir()
	path := writeTempFile(t, dir, "song.mp3", "mp3 bytes")
	fake.addFile(path, fakeFile{
		decoder: fakeDecoder{duration: 100, sampleRate: 44100, channels: 2},
		tags:    tags.Set{tags.FieldArtist: "Original"},
	})

	info := MediaInfo{Filename: path}
	if _, err := lib.GetMediaInfo(&info, DefaultInfoOptions()); err != nil {
		t.Fatalf("initial scan failed: %v", err)
	}

	// Rewrite the file with different content and update the scripted tags.
	if err := os.WriteFile(path, []byte("longer mp3 bytes than before"), 0o600); err != nil {
		t.Fatalf("failed to rewrite file: %v", err)
	}
	fake.addFile(path, fakeFile{
		decoder: fakeDecoder{duration: 100, sampleRate: 44100, channels: 2},
		tags:    tags.Set{tags.FieldArtist: "Changed"},
	})

	again := MediaInfo{Filename: path}
	found, err := lib.GetMediaInfo(&again, DefaultInfoOptions())
	if err != nil {
		t.Fatalf("second lookup failed: %v", err)
	}
	if !found {
		t.Fatal("expected record to be found")
	}
	if again.Artist != "Changed" {
		t.Errorf("stale record not rescanned: artist = %q", again.Artist)
	}
}

func TestGetMediaInfo_NoScanMedia(t *testing.T) {
	lib, fake, _ := setupTestLib(t, Options{})

	path := writeTempFile(t, t.TempDir(), "song.mp3", "mp3 bytes")
	fake.addFile(path, fakeFile{decoder: fakeDecoder{duration: 100}})

	info := MediaInfo{Filename: path}
	found, err := lib.GetMediaInfo(&info, InfoOptions{CheckFileAttributes: true, ScanMedia: false})
	if err != nil {
		t.Fatalf("GetMediaInfo failed: %v", err)
	}
	if found {
		t.Error("expected no result when scanning is disabled and no row exists")
	}
}

func TestGetMediaInfo_UnreadableFile(t *testing.T) {
	lib, _, notifier := setupTestLib(t, Options{})

	info := MediaInfo{Filename: "/does/not/exist.mp3"}
	found, err := lib.GetMediaInfo(&info, DefaultInfoOptions())
	if err != nil {
		t.Fatalf("GetMediaInfo failed: %v", err)
	}
	if found {
		t.Error("expected unreadable file to yield no result")
	}
	if notifier.count() != 0 {
		t.Errorf("expected no notification, got %d", notifier.count())
	}
}

func TestGetMediaInfo_RemoveMissing(t *testing.T) {
	lib, fake, _ := setupTestLib(t, Options{})

	dir := t.TempDir()
	path := writeTempFile(t, dir, "song.mp3", "mp3 bytes")
	fake.addFile(path, fakeFile{
		decoder: fakeDecoder{duration: 100, sampleRate: 44100, channels: 2},
		tags:    tags.Set{tags.FieldArtist: "Gone"},
	})

	info := MediaInfo{Filename: path}
	if _, err := lib.GetMediaInfo(&info, DefaultInfoOptions()); err != nil {
		t.Fatalf("initial scan failed: %v", err)
	}

	// The file disappears.
	if err := os.Remove(path); err != nil {
		t.Fatalf("failed to remove file: %v", err)
	}
	fake.removeFile(path)

	// Without RemoveMissing the stale row survives.
	again := MediaInfo{Filename: path}
	opts := DefaultInfoOptions()
	found, err := lib.GetMediaInfo(&again, opts)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if found {
		t.Error("expected no result for missing file")
	}
	if _, stillThere, _ := lib.mediaByFilename(path, SourceFile); !stillThere {
		t.Error("row removed without RemoveMissing")
	}

	// With RemoveMissing the row is deleted.
	opts.RemoveMissing = true
	again = MediaInfo{Filename: path}
	if _, err := lib.GetMediaInfo(&again, opts); err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if _, stillThere, _ := lib.mediaByFilename(path, SourceFile); stillThere {
		t.Error("row not removed with RemoveMissing")
	}
}

func TestGetMediaInfo_NoNotification(t *testing.T) {
	lib, fake, notifier := setupTestLib(t, Options{})

	path := writeTempFile(t, t.TempDir(), "song.mp3", "mp3 bytes")
	fake.addFile(path, fakeFile{decoder: fakeDecoder{duration: 100, sampleRate: 44100, channels: 2}})

	info := MediaInfo{Filename: path}
	opts := DefaultInfoOptions()
	opts.SendNotification = false
	if _, err := lib.GetMediaInfo(&info, opts); err != nil {
		t.Fatalf("GetMediaInfo failed: %v", err)
	}
	if notifier.count() != 0 {
		t.Errorf("expected no notification, got %d", notifier.count())
	}
}

func TestGetMediaInfo_Stream(t *testing.T) {
	lib, fake, _ := setupTestLib(t, Options{})

	url := "http://radio.example.com/stream"
	fake.addFile(url, fakeFile{
		decoder: fakeDecoder{duration: 0, sampleRate: 48000, channels: 2, bitrate: 128},
		tags:    tags.Set{tags.FieldTitle: "Radio Example"},
	})

	info := MediaInfo{Filename: url}
	found, err := lib.GetMediaInfo(&info, DefaultInfoOptions())
	if err != nil {
		t.Fatalf("GetMediaInfo failed: %v", err)
	}
	if !found {
		t.Fatal("expected stream to be found")
	}
	if info.Source != SourceStream {
		t.Errorf("source = %v, expected SourceStream", info.Source)
	}
	if info.Filetime != 0 || info.Filesize != 0 {
		t.Error("streams should not carry file attributes")
	}

	streams, err := lib.Streams()
	if err != nil {
		t.Fatalf("Streams failed: %v", err)
	}
	if len(streams) != 1 || streams[0].Filename != url {
		t.Errorf("expected 1 stream, got %+v", streams)
	}
}

func TestGetMediaInfo_CDDA(t *testing.T) {
	lib, fake, _ := setupTestLib(t, Options{})

	filename := "cdda://d/9a0b1c2d/5"
	fake.addFile(filename, fakeFile{
		decoder: fakeDecoder{duration: 240, sampleRate: 44100, channels: 2, bits: 16},
		tags:    tags.Set{tags.FieldArtist: "Disc Artist", tags.FieldAlbum: "Disc Album"},
	})

	info := MediaInfo{Filename: filename}
	found, err := lib.GetMediaInfo(&info, DefaultInfoOptions())
	if err != nil {
		t.Fatalf("GetMediaInfo failed: %v", err)
	}
	if !found {
		t.Fatal("expected CDDA track to be found")
	}
	if info.Source != SourceCDDA {
		t.Errorf("source = %v, expected SourceCDDA", info.Source)
	}
	if info.CDDB != 0x9a0b1c2d {
		t.Errorf("cddb = %x, expected 9a0b1c2d", info.CDDB)
	}
	if info.Track != 5 {
		t.Errorf("track = %d, expected 5 from filename", info.Track)
	}

	// CDDA rows live in their own table; the media table stays empty.
	var mediaCount, cddaCount int
	_ = lib.db.QueryRow(`SELECT COUNT(*) FROM media`).Scan(&mediaCount)
	_ = lib.db.QueryRow(`SELECT COUNT(*) FROM cdda`).Scan(&cddaCount)
	if mediaCount != 0 || cddaCount != 1 {
		t.Errorf("media=%d cdda=%d, expected 0 and 1", mediaCount, cddaCount)
	}
}

func TestGetMediaInfo_DerivesBitrate(t *testing.T) {
	lib, fake, _ := setupTestLib(t, Options{})

	// 10 bytes over 2 seconds when the decoder reports no bitrate.
	path := writeTempFile(t, t.TempDir(), "song.flac", "0123456789")
	fake.addFile(path, fakeFile{decoder: fakeDecoder{duration: 2, sampleRate: 44100, channels: 2}})

	info := MediaInfo{Filename: path}
	if _, err := lib.GetMediaInfo(&info, DefaultInfoOptions()); err != nil {
		t.Fatalf("GetMediaInfo failed: %v", err)
	}
	if info.Bitrate == nil {
		t.Fatal("expected derived bitrate")
	}
	want := float64(10) * 8 / 2 / 1000
	if *info.Bitrate != want {
		t.Errorf("bitrate = %f, expected %f", *info.Bitrate, want)
	}
}

func TestGetMediaInfo_ConcurrentSameFile(t *testing.T) {
	lib, fake, _ := setupTestLib(t, Options{})

	path := writeTempFile(t, t.TempDir(), "song.mp3", "mp3 bytes")
	fake.addFile(path, fakeFile{
		decoder: fakeDecoder{duration: 100, sampleRate: 44100, channels: 2},
		tags:    tags.Set{tags.FieldArtist: "Artist"},
	})

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for range 8 {
		wg.Go(func() {
			info := MediaInfo{Filename: path}
			if _, err := lib.GetMediaInfo(&info, DefaultInfoOptions()); err != nil {
				errs <- err
			}
		})
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent GetMediaInfo failed: %v", err)
	}

	var count int
	if err := lib.db.QueryRow(`SELECT COUNT(*) FROM media WHERE filename = ?`, path).Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected exactly 1 row, got %d", count)
	}
}

func TestGetMediaInfo_ArtworkStored(t *testing.T) {
	lib, fake, _ := setupTestLib(t, Options{})

	image := []byte{0xFF, 0xD8, 0xFF, 0xE0, 1, 2, 3}
	path := writeTempFile(t, t.TempDir(), "song.mp3", "mp3 bytes")
	fake.addFile(path, fakeFile{
		decoder: fakeDecoder{duration: 100, sampleRate: 44100, channels: 2},
		tags: tags.Set{
			tags.FieldArtist:  "Artist",
			tags.FieldArtwork: tags.EncodeArtwork(image),
		},
	})

	info := MediaInfo{Filename: path}
	if _, err := lib.GetMediaInfo(&info, DefaultInfoOptions()); err != nil {
		t.Fatalf("GetMediaInfo failed: %v", err)
	}
	if info.ArtworkID == "" {
		t.Fatal("expected artwork reference")
	}

	got := lib.MediaArtwork(info)
	if string(got) != string(image) {
		t.Errorf("artwork roundtrip mismatch: got %d bytes", len(got))
	}
}

func TestGetMediaInfo_EmptyFilename(t *testing.T) {
	lib, _, _ := setupTestLib(t, Options{})

	found, err := lib.GetMediaInfo(&MediaInfo{}, DefaultInfoOptions())
	if err != nil {
		t.Fatalf("GetMediaInfo failed: %v", err)
	}
	if found {
		t.Error("expected no result for empty filename")
	}

	found, err = lib.GetMediaInfo(nil, DefaultInfoOptions())
	if err != nil {
		t.Fatalf("GetMediaInfo failed: %v", err)
	}
	if found {
		t.Error("expected no result for nil info")
	}
}

func TestGetMediaInfo_FreshnessIgnoredWhenDisabled(t *testing.T) {
	lib, fake, _ := setupTestLib(t, Options{})

	dir := t.TempDir()
	path := writeTempFile(t, dir, "song.mp3", "mp3 bytes")
	fake.addFile(path, fakeFile{
		decoder: fakeDecoder{duration: 100, sampleRate: 44100, channels: 2},
		tags:    tags.Set{tags.FieldArtist: "Original"},
	})

	info := MediaInfo{Filename: path}
	if _, err := lib.GetMediaInfo(&info, DefaultInfoOptions()); err != nil {
		t.Fatalf("initial scan failed: %v", err)
	}

	// Make the stored attributes stale.
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("failed to touch file: %v", err)
	}
	fake.addFile(path, fakeFile{
		decoder: fakeDecoder{duration: 100, sampleRate: 44100, channels: 2},
		tags:    tags.Set{tags.FieldArtist: "Changed"},
	})

	// With the attribute check off the stale row is returned as-is.
	again := MediaInfo{Filename: path}
	found, err := lib.GetMediaInfo(&again, InfoOptions{ScanMedia: true})
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if !found {
		t.Fatal("expected record to be found")
	}
	if again.Artist != "Original" {
		t.Errorf("attribute check was not disabled: artist = %q", again.Artist)
	}
}
