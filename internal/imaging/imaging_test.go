package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x += 7 {
		for y := 0; y < h; y += 7 {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, testImage(w, h), nil))
	return buf.Bytes()
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage(w, h)))
	return buf.Bytes()
}

func TestDetectMIME(t *testing.T) {
	assert.Equal(t, "image/jpeg", DetectMIME(encodeJPEG(t, 4, 4)))
	assert.Equal(t, "image/png", DetectMIME(encodePNG(t, 4, 4)))
	assert.Equal(t, "image/gif", DetectMIME([]byte("GIF89a\x01\x00\x01\x00")))
	assert.Equal(t, "image/webp", DetectMIME([]byte("RIFF\x00\x00\x00\x00WEBPVP8 ")))
	assert.Empty(t, DetectMIME([]byte("%PDF-1.4")))
}

func TestProcessSmallImageUnchanged(t *testing.T) {
	data := encodeJPEG(t, 200, 100)

	res, err := Process(data)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", res.MIME)
	assert.Equal(t, data, res.Data)
}

func TestProcessDownscalesLargeJPEG(t *testing.T) {
	res, err := Process(encodeJPEG(t, 3200, 1600))
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", res.MIME)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(res.Data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, MaxDimension, cfg.Width)
	assert.Equal(t, MaxDimension/2, cfg.Height)
}

func TestProcessDownscalesTallPNG(t *testing.T) {
	res, err := Process(encodePNG(t, 400, 3200))
	require.NoError(t, err)
	assert.Equal(t, "image/png", res.MIME)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(res.Data))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 200, cfg.Width)
	assert.Equal(t, MaxDimension, cfg.Height)
}

func TestProcessPassesThroughWebP(t *testing.T) {
	data := []byte("RIFF\x00\x00\x00\x00WEBPVP8 data")
	res, err := Process(data)
	require.NoError(t, err)
	assert.Equal(t, "image/webp", res.MIME)
	assert.Equal(t, data, res.Data)
}

func TestProcessRejectsUnsupported(t *testing.T) {
	_, err := Process([]byte("just some text"))
	assert.ErrorContains(t, err, "unsupported image format")
}

func TestProcessRejectsOversized(t *testing.T) {
	_, err := Process(make([]byte, MaxBytes+1))
	assert.ErrorContains(t, err, "limit")
}
