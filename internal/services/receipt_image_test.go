package services

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x += 7 {
		img.Set(x, x%h, color.NRGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPrepareReceipt(t *testing.T) {
	t.Run("pdf passes through", func(t *testing.T) {
		r, name, err := prepareReceipt(bytes.NewReader([]byte("%PDF-1.4")), "r.pdf", "application/pdf")
		require.NoError(t, err)
		assert.Equal(t, "r.pdf", name)
		data, _ := io.ReadAll(r)
		assert.Equal(t, "%PDF-1.4", string(data))
	})

	t.Run("small image kept as uploaded", func(t *testing.T) {
		src := pngOf(t, 40, 30)
		r, name, err := prepareReceipt(bytes.NewReader(src), "photo.png", "image/png")
		require.NoError(t, err)
		assert.Equal(t, "photo.png", name)
		data, _ := io.ReadAll(r)
		assert.Equal(t, src, data)
	})

	t.Run("large image shrunk to jpeg", func(t *testing.T) {
		r, name, err := prepareReceipt(bytes.NewReader(pngOf(t, 4000, 1000)), "scan.png", "image/png")
		require.NoError(t, err)
		assert.Equal(t, "scan.jpg", name)
		img, err := imaging.Decode(r)
		require.NoError(t, err)
		assert.Equal(t, maxReceiptEdge, img.Bounds().Dx())
		assert.Equal(t, 500, img.Bounds().Dy())
	})

	t.Run("garbage image rejected", func(t *testing.T) {
		_, _, err := prepareReceipt(bytes.NewReader([]byte("not a png")), "x.png", "image/png")
		assert.ErrorIs(t, err, ErrValidation)
	})
}
