package zip

import (
	"archive/zip"
	"bytes"
)

type Asset struct {
	Filename string
	MIME     string
	Data     []byte
}

// ArchiveAssets bundles the assets into a single zip archive. Filenames
// without an extension get one derived from the MIME type. Assets with no
// data are skipped rather than producing empty entries.
func ArchiveAssets(assets []Asset) []byte {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for _, asset := range assets {
		if len(asset.Data) == 0 {
			continue
		}
		w, err := zw.Create(withExtension(asset.Filename, asset.MIME))
		if err != nil {
			continue
		}
		if _, err := w.Write(asset.Data); err != nil {
			return nil
		}
	}
	_ = zw.Close()
	return buf.Bytes()
}

func withExtension(filename, mime string) string {
	for _, ext := range []string{".png", ".jpg", ".jpeg", ".webp", ".gif"} {
		if len(filename) > len(ext) && filename[len(filename)-len(ext):] == ext {
			return filename
		}
	}
	switch mime {
	case "image/jpeg", "image/jpg":
		return filename + ".jpg"
	case "image/webp":
		return filename + ".webp"
	case "image/gif":
		return filename + ".gif"
	default:
		return filename + ".png"
	}
}
