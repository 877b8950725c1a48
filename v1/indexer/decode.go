package indexer

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/mypictures/photoindex/v1/embedding"
	"github.com/mypictures/photoindex/v1/exifmeta"
	"github.com/mypictures/photoindex/v1/photo"
)

// loaded is a decoded file ready to be queued.
type loaded struct {
	record photo.Record
	image  image.Image
	// metaErr is set when EXIF could not be read; the record is still valid.
	metaErr error
}

// loadFile reads and decodes path and fills in everything but the embedding
// and the indexing time. hash is the content digest computed earlier.
// Images whose header declares more than maxPixels are refused before the
// bitmap is allocated.
func loadFile(path, hash string, maxSide int, maxPixels int64) (*loaded, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %v", ErrFileDecode, path, err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrFileDecode, path, err)
	}

	hdr, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrFileDecode, path, err)
	}
	if hdr.Width <= 0 || hdr.Height <= 0 || int64(hdr.Width)*int64(hdr.Height) > maxPixels {
		return nil, fmt.Errorf("%w: %s declares %dx%d pixels, limit is %d",
			ErrFileDecode, path, hdr.Width, hdr.Height, maxPixels)
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrFileDecode, path, err)
	}
	bounds := img.Bounds()

	meta, metaErr := exifmeta.Decode(bytes.NewReader(raw))

	rec := photo.Record{
		FilePath:     path,
		FileName:     filepath.Base(path),
		FileSize:     info.Size(),
		FileHash:     &hash,
		Width:        bounds.Dx(),
		Height:       bounds.Dy(),
		Format:       formatName(format, path),
		DateModified: info.ModTime().UTC(),
	}
	rec.ApplyMetadata(meta)

	return &loaded{
		record:  rec,
		image:   embedding.FitWithin(img, maxSide),
		metaErr: metaErr,
	}, nil
}

// formatName upper-cases the decoder name, falling back to the extension.
func formatName(decoder, path string) string {
	if decoder != "" {
		return strings.ToUpper(decoder)
	}
	return strings.ToUpper(strings.TrimPrefix(filepath.Ext(path), "."))
}
