package zip

import (
	archive "archive/zip"
	"bytes"
	"io"
	"testing"
)

func TestArchiveAssets(t *testing.T) {
	data := ArchiveAssets([]Asset{
		{Filename: "image-001", MIME: "image/png", Data: []byte("one")},
		{Filename: "image-002.jpg", MIME: "image/jpeg", Data: []byte("two")},
		{Filename: "skipped", MIME: "image/png", Data: nil},
	})

	zr, err := archive.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	if len(zr.File) != 2 {
		t.Fatalf("entries = %d, want 2", len(zr.File))
	}
	if zr.File[0].Name != "image-001.png" {
		t.Fatalf("first entry = %q, want extension from MIME", zr.File[0].Name)
	}
	if zr.File[1].Name != "image-002.jpg" {
		t.Fatalf("second entry = %q, existing extension should be kept", zr.File[1].Name)
	}

	rc, err := zr.File[0].Open()
	if err != nil {
		t.Fatalf("open entry: %v", err)
	}
	defer rc.Close()
	content, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read entry: %v", err)
	}
	if string(content) != "one" {
		t.Fatalf("content = %q", content)
	}
}
