package handler

import (
	"errors"
	"testing"

	"github.com/ScottsplaysSus/VUPlayer-Scottsplays-Fork/internal/tags"
)

type stubDecoder struct{ duration float64 }

func (d stubDecoder) Duration() float64  { return d.duration }
func (d stubDecoder) SampleRate() int    { return 44100 }
func (d stubDecoder) Channels() int      { return 2 }
func (d stubDecoder) BitsPerSample() int { return 16 }
func (d stubDecoder) Bitrate() float64   { return 0 }
func (d stubDecoder) Close() error       { return nil }

type stubHandler struct {
	name     string
	exts     []string
	openErr  error
	readErr  error
	writeErr error
	canWrite bool
	written  []string
}

func (h *stubHandler) Name() string         { return h.name }
func (h *stubHandler) Extensions() []string { return h.exts }

func (h *stubHandler) OpenDecoder(string) (Decoder, error) {
	if h.openErr != nil {
		return nil, h.openErr
	}
	return stubDecoder{duration: 1}, nil
}

func (h *stubHandler) ReadTags(string) (tags.Set, error) {
	if h.readErr != nil {
		return nil, h.readErr
	}
	return tags.Set{tags.FieldArtist: h.name}, nil
}

func (h *stubHandler) WriteTags(filename string, _ tags.Set) error {
	h.written = append(h.written, filename)
	return h.writeErr
}

func (h *stubHandler) CanWriteTags(string) bool { return h.canWrite }

func TestHandlers_FirstSuccessWins(t *testing.T) {
	failing := &stubHandler{name: "failing", openErr: errors.New("nope"), readErr: errors.New("nope")}
	working := &stubHandler{name: "working"}
	h := NewHandlers(failing, working)

	decoder, err := h.OpenDecoder("/music/a.mp3")
	if err != nil {
		t.Fatalf("OpenDecoder failed: %v", err)
	}
	if decoder.Duration() != 1 {
		t.Error("wrong decoder returned")
	}

	set, err := h.ReadTags("/music/a.mp3")
	if err != nil {
		t.Fatalf("ReadTags failed: %v", err)
	}
	if set[tags.FieldArtist] != "working" {
		t.Errorf("tags from wrong handler: %v", set)
	}
}

func TestHandlers_AllFail(t *testing.T) {
	openErr := errors.New("cannot open")
	h := NewHandlers(&stubHandler{name: "a", openErr: openErr, readErr: openErr})

	if _, err := h.OpenDecoder("/music/a.mp3"); !errors.Is(err, openErr) {
		t.Errorf("expected last error, got %v", err)
	}
	if _, err := h.ReadTags("/music/a.mp3"); !errors.Is(err, openErr) {
		t.Errorf("expected last error, got %v", err)
	}
}

func TestHandlers_Empty(t *testing.T) {
	h := NewHandlers()

	if _, err := h.OpenDecoder("/music/a.mp3"); !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
	if _, err := h.ReadTags("/music/a.mp3"); !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
	if err := h.WriteTags("/music/a.mp3", tags.Set{}); !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
	if h.CanWriteTags("/music/a.mp3") {
		t.Error("empty registry claims write support")
	}
}

func TestHandlers_WriteDispatch(t *testing.T) {
	readOnly := &stubHandler{name: "readonly", canWrite: false}
	writer := &stubHandler{name: "writer", canWrite: true}
	h := NewHandlers(readOnly, writer)

	if !h.CanWriteTags("/music/a.mp3") {
		t.Fatal("expected write support")
	}
	if err := h.WriteTags("/music/a.mp3", tags.Set{tags.FieldTitle: "x"}); err != nil {
		t.Fatalf("WriteTags failed: %v", err)
	}
	if len(readOnly.written) != 0 {
		t.Error("read-only handler received a write")
	}
	if len(writer.written) != 1 {
		t.Errorf("writer received %d writes, want 1", len(writer.written))
	}
}

func TestHandlers_AllExtensions(t *testing.T) {
	h := NewHandlers(
		&stubHandler{name: "a", exts: []string{"MP3", "flac"}},
		&stubHandler{name: "b", exts: []string{"flac", "ogg"}},
	)

	exts := h.AllExtensions()
	expected := []string{"flac", "mp3", "ogg"}
	if len(exts) != len(expected) {
		t.Fatalf("extensions = %v, want %v", exts, expected)
	}
	for i, ext := range exts {
		if ext != expected[i] {
			t.Errorf("extensions[%d] = %q, want %q", i, ext, expected[i])
		}
	}
}
