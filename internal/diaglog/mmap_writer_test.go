package diaglog

import (
	"path/filepath"
	"testing"
)

func TestMMapWriterWrapsAround(t *testing.T) {
	dir := t.TempDir()
	w, err := NewMMapWriter(filepath.Join(dir, "log.ring"), 16)
	if err != nil {
		t.Fatalf("NewMMapWriter: %v", err)
	}
	defer w.Close()

	if _, err := w.Write([]byte("0123456789")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if w.offset != 10 {
		t.Fatalf("offset = %d, want 10", w.offset)
	}

	// This write doesn't fit before the end of the 16-byte region, so it
	// should wrap to offset 0 rather than go out of bounds.
	if _, err := w.Write([]byte("abcdefg")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if w.offset != 7 {
		t.Fatalf("offset after wrap = %d, want 7", w.offset)
	}
	if string(w.data[:7]) != "abcdefg" {
		t.Fatalf("data after wrap = %q", w.data[:7])
	}
}
