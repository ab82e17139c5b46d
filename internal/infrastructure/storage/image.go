package storage

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/disintegration/imaging"

	"github.com/jhoicas/stock-outlets-api/internal/domain"
)

const jpegQuality = 85

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// PrepareImage valida que data sea una foto soportada, corrige la orientación EXIF,
// reduce el ancho a maxWidth (0 = sin límite) y la re-codifica como JPEG.
func PrepareImage(data []byte, maxWidth int) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: comprobante vacío", domain.ErrInvalidInput)
	}
	mimeType := http.DetectContentType(data)
	if !allowedImageTypes[mimeType] {
		return nil, fmt.Errorf("%w: tipo de archivo no soportado %s", domain.ErrInvalidInput, mimeType)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: imagen ilegible: %v", domain.ErrInvalidInput, err)
	}
	if maxWidth > 0 && img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
