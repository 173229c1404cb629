// Package imaging validates uploaded item images and shrinks oversized ones.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"

	"golang.org/x/image/draw"
)

// MaxBytes is the largest upload accepted.
const MaxBytes = 5 << 20

// MaxDimension is the maximum width or height for stored JPEG and PNG images.
const MaxDimension = 1600

const jpegQuality = 85

// Result is a validated image ready for storage.
type Result struct {
	Data []byte
	MIME string
}

// DetectMIME sniffs data and returns its image MIME type, or "" when data is
// not a JPEG, PNG, GIF or WebP image.
func DetectMIME(data []byte) string {
	if isWebP(data) {
		return "image/webp"
	}
	switch mime := http.DetectContentType(data); mime {
	case "image/jpeg", "image/png", "image/gif":
		return mime
	}
	return ""
}

// isWebP checks for the RIFF....WEBP magic bytes, which
// http.DetectContentType does not recognise.
func isWebP(b []byte) bool {
	return len(b) >= 12 &&
		b[0] == 'R' && b[1] == 'I' && b[2] == 'F' && b[3] == 'F' &&
		b[8] == 'W' && b[9] == 'E' && b[10] == 'B' && b[11] == 'P'
}

// Process validates data and downsizes JPEG and PNG images larger than
// MaxDimension, keeping their format. GIF and WebP pass through unchanged.
func Process(data []byte) (*Result, error) {
	if len(data) > MaxBytes {
		return nil, fmt.Errorf("image is %d bytes, limit is %d", len(data), MaxBytes)
	}
	mime := DetectMIME(data)
	if mime == "" {
		return nil, fmt.Errorf("unsupported image format: %s", http.DetectContentType(data))
	}
	if mime != "image/jpeg" && mime != "image/png" {
		return &Result{Data: data, MIME: mime}, nil
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image header: %w", err)
	}
	if cfg.Width <= MaxDimension && cfg.Height <= MaxDimension {
		return &Result{Data: data, MIME: mime}, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	img = downscale(img, MaxDimension)

	var buf bytes.Buffer
	if mime == "image/png" {
		err = png.Encode(&buf, img)
	} else {
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality})
	}
	if err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}
	return &Result{Data: buf.Bytes(), MIME: mime}, nil
}

// downscale resizes img so neither dimension exceeds maxDim, preserving the
// aspect ratio.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	newW, newH := maxDim, maxDim
	if w > h {
		newH = max(1, h*maxDim/w)
	} else {
		newW = max(1, w*maxDim/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
