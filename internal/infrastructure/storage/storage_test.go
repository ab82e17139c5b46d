package storage_test

import (
	"bytes"
	"image"
	"image/color"
	"strings"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-outlets-api/internal/domain"
	"github.com/jhoicas/stock-outlets-api/internal/infrastructure/storage"
)

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 120, B: 40, A: 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return buf.Bytes()
}

func decode(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := imaging.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func TestPrepareImage_ReduceAncho(t *testing.T) {
	out, err := storage.PrepareImage(pngOf(t, 2000, 1000), 1280)
	require.NoError(t, err)

	img := decode(t, out)
	assert.Equal(t, 1280, img.Bounds().Dx())
	assert.Equal(t, 640, img.Bounds().Dy())
}

func TestPrepareImage_ImagenPequeñaNoSeAgranda(t *testing.T) {
	out, err := storage.PrepareImage(pngOf(t, 300, 200), 1280)
	require.NoError(t, err)
	assert.Equal(t, 300, decode(t, out).Bounds().Dx())
}

func TestPrepareImage_RechazaNoImagen(t *testing.T) {
	_, err := storage.PrepareImage([]byte("%PDF-1.4 no es una foto"), 1280)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = storage.PrepareImage(nil, 1280)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestObjectName(t *testing.T) {
	name := storage.ObjectName("dispatch-proofs", time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC))
	assert.True(t, strings.HasPrefix(name, "dispatch-proofs/2025/03/"), name)
	assert.True(t, strings.HasSuffix(name, ".jpg"), name)
}
