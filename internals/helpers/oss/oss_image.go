package oss

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"

	"github.com/chai2010/webp"
	"golang.org/x/image/draw"
)

const (
	maxWebPWidth  = 1600
	maxWebPHeight = 1600
	webpQuality   = 80
)

// EncodeWebP re-encodes a jpeg/png/webp photo as WebP, downscaling to the
// bound while keeping aspect ratio. Unsupported formats come back as an
// error; callers decide whether to store the original bytes instead.
func EncodeWebP(data []byte) ([]byte, error) {
	img, err := decodeImage(data)
	if err != nil {
		return nil, err
	}
	img = scaleToBound(img, maxWebPWidth, maxWebPHeight)

	var out bytes.Buffer
	if err := webp.Encode(&out, img, &webp.Options{Quality: webpQuality}); err != nil {
		return nil, fmt.Errorf("webp encode: %w", err)
	}
	return out.Bytes(), nil
}

func decodeImage(data []byte) (image.Image, error) {
	switch SniffContentType(data) {
	case "image/jpeg":
		return jpeg.Decode(bytes.NewReader(data))
	case "image/png":
		return png.Decode(bytes.NewReader(data))
	case "image/webp":
		return webp.Decode(bytes.NewReader(data))
	}
	return nil, fmt.Errorf("unsupported image format")
}

// SniffContentType detects the MIME type from the first bytes.
func SniffContentType(data []byte) string {
	if len(data) > 512 {
		data = data[:512]
	}
	return http.DetectContentType(data)
}

func scaleToBound(img image.Image, maxW, maxH int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxW && h <= maxH {
		return img
	}

	scale := float64(maxW) / float64(w)
	if s := float64(maxH) / float64(h); s < scale {
		scale = s
	}
	nw := int(float64(w) * scale)
	nh := int(float64(h) * scale)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
