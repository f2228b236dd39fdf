package tags

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWrite_UnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("not music"), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	err := Write(path, &Tag{Title: "Title"})
	if err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestWrite_MissingFile(t *testing.T) {
	if err := Write("/does/not/exist.mp3", &Tag{}); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSafeInt16(t *testing.T) {
	tests := []struct {
		input int
		want  int16
	}{
		{0, 0},
		{7, 7},
		{32767, 32767},
		{32768, 32767},
		{100000, 32767},
		{-32768, -32768},
		{-40000, -32768},
	}

	for _, tt := range tests {
		if got := safeInt16(tt.input); got != tt.want {
			t.Errorf("safeInt16(%d) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestStripID3v2Tag(t *testing.T) {
	// Minimal ID3v2 header: "ID3", version 2.4, no flags, syncsafe size 5,
	// followed by 5 tag bytes and then the audio payload.
	data := []byte{'I', 'D', '3', 4, 0, 0, 0, 0, 0, 5}
	data = append(data, 1, 2, 3, 4, 5)
	payload := []byte("audio frames")
	data = append(data, payload...)

	path := filepath.Join(t.TempDir(), "song.flac")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if err := stripID3v2Tag(path); err != nil {
		t.Fatalf("stripID3v2Tag failed: %v", err)
	}

	stripped, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file: %v", err)
	}
	if string(stripped) != string(payload) {
		t.Errorf("stripped content = %q, want %q", stripped, payload)
	}
}

func TestStripID3v2Tag_NoTag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.flac")
	if err := os.WriteFile(path, []byte("fLaC plus audio data here"), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if err := stripID3v2Tag(path); err == nil {
		t.Error("expected error when no ID3v2 tag present")
	}
}

func TestDetectMimeType(t *testing.T) {
	pngHeader := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

	if got := detectMimeType(pngHeader); got != mimePNG {
		t.Errorf("png detection = %q, want %q", got, mimePNG)
	}
	if got := detectMimeType([]byte{0xFF, 0xD8, 0xFF, 0xE0}); got != mimeJPEG {
		t.Errorf("jpeg detection = %q, want %q", got, mimeJPEG)
	}
	// Unknown data defaults to JPEG.
	if got := detectMimeType([]byte("plain text")); got != mimeJPEG {
		t.Errorf("fallback detection = %q, want %q", got, mimeJPEG)
	}
	if got := detectMimeType(nil); got != mimeJPEG {
		t.Errorf("empty detection = %q, want %q", got, mimeJPEG)
	}
}
