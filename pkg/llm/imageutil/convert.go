package imageutil

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"os"

	"golang.org/x/image/draw"
)

const (
	maxWidth    = 1920
	maxHeight   = 1080
	jpegQuality = 85
)

// PrepareForLLM loads an image from disk, scales it to fit within 1920x1080,
// and returns JPEG bytes. Charts are sent whole; axes and labels carry the
// numbers the model is asked about, so no cropping happens here.
// The original file on disk is not modified.
func PrepareForLLM(imagePath string) (data []byte, mimeType string, err error) {
	f, err := os.Open(imagePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	// 1. Scale down to fit within 1920x1080 (no upscaling)
	scaled := scaleToFit(src)

	// 2. Encode as JPEG
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, "", fmt.Errorf("failed to encode JPEG: %w", err)
	}

	return buf.Bytes(), "image/jpeg", nil
}

// scaleToFit scales the image to fit within maxWidth x maxHeight, preserving aspect ratio.
// Does not upscale.
func scaleToFit(img image.Image) image.Image {
	b := img.Bounds()
	w := b.Dx()
	h := b.Dy()

	if w <= maxWidth && h <= maxHeight {
		return img
	}

	ratio := float64(maxWidth) / float64(w)
	if rh := float64(maxHeight) / float64(h); rh < ratio {
		ratio = rh
	}

	newW := int(float64(w) * ratio)
	newH := int(float64(h) * ratio)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
