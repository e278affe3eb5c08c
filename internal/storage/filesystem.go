// Package storage persists generated assets onto the local filesystem.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	_ "image/jpeg"
)

// FileStore writes generated images and their thumbnails under a base path.
type FileStore struct {
	basePath string
}

// StoredImage describes where an image and its thumbnail landed.
type StoredImage struct {
	FilePath      string
	ThumbnailPath string
	Width         int
	Height        int
}

const thumbnailMaxEdge = 256

func NewFileStore(basePath string) (*FileStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure base path: %w", err)
	}
	return &FileStore{basePath: basePath}, nil
}

// BasePath returns the configured root directory.
func (s *FileStore) BasePath() string {
	if s == nil {
		return ""
	}
	return s.basePath
}

// StoreImage persists the image at the given relative key and writes a
// downscaled PNG thumbnail next to it. Keys are cleaned to prevent directory
// traversal. A failure here is treated by the queue the same as a generation
// failure so completed_count never drifts from what is actually on disk.
func (s *FileStore) StoreImage(ctx context.Context, key string, data []byte) (StoredImage, error) {
	if s == nil {
		return StoredImage{}, errors.New("storage: no store configured")
	}
	if err := ctx.Err(); err != nil {
		return StoredImage{}, err
	}
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return StoredImage{}, err
	}

	fullPath := filepath.Join(s.basePath, filepath.FromSlash(cleanKey))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return StoredImage{}, fmt.Errorf("storage: ensure directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return StoredImage{}, fmt.Errorf("storage: write file: %w", err)
	}

	stored := StoredImage{FilePath: cleanKey}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		// Undecodable payloads keep the original file but get no thumbnail.
		return stored, nil
	}
	bounds := src.Bounds()
	stored.Width = bounds.Dx()
	stored.Height = bounds.Dy()

	thumbKey := thumbnailKey(cleanKey)
	thumbPath := filepath.Join(s.basePath, filepath.FromSlash(thumbKey))
	thumbData, err := encodeThumbnail(src)
	if err != nil {
		return StoredImage{}, fmt.Errorf("storage: encode thumbnail: %w", err)
	}
	if err := os.WriteFile(thumbPath, thumbData, 0o644); err != nil {
		return StoredImage{}, fmt.Errorf("storage: write thumbnail: %w", err)
	}
	stored.ThumbnailPath = thumbKey
	return stored, nil
}

// Read returns the raw bytes stored at a key.
func (s *FileStore) Read(key string) ([]byte, error) {
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(filepath.Join(s.basePath, filepath.FromSlash(cleanKey)))
}

func thumbnailKey(key string) string {
	ext := filepath.Ext(key)
	return strings.TrimSuffix(key, ext) + "_thumb.png"
}

// encodeThumbnail downscales with nearest-neighbor sampling; prompt preview
// thumbnails do not need resampling quality.
func encodeThumbnail(src image.Image) ([]byte, error) {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	scale := 1.0
	if w > h && w > thumbnailMaxEdge {
		scale = float64(thumbnailMaxEdge) / float64(w)
	} else if h >= w && h > thumbnailMaxEdge {
		scale = float64(thumbnailMaxEdge) / float64(h)
	}
	tw := int(float64(w) * scale)
	th := int(float64(h) * scale)
	if tw < 1 {
		tw = 1
	}
	if th < 1 {
		th = 1
	}

	thumb := image.NewRGBA(image.Rect(0, 0, tw, th))
	for y := 0; y < th; y++ {
		srcY := bounds.Min.Y + y*h/th
		for x := 0; x < tw; x++ {
			srcX := bounds.Min.X + x*w/tw
			thumb.Set(x, y, src.At(srcX, srcY))
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, thumb); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// sanitizeKey normalizes a key and prevents escaping the storage root.
func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("storage: key is required")
	}
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimPrefix(key, "./")
	key = strings.TrimLeft(key, "/")
	cleaned := filepath.Clean(key)
	cleaned = strings.ReplaceAll(cleaned, "\\", "/")
	if cleaned == "." || strings.HasPrefix(cleaned, "../") {
		return "", errors.New("storage: invalid key")
	}
	return cleaned, nil
}
