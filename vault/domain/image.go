package domain

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	// Decoders for the upload formats the vault accepts. Registration happens
	// via init; encoding is format-specific and lives in the compressor.
	_ "image/gif"
	_ "image/jpeg"

	_ "github.com/chai2010/webp"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// Image is the single value passed across the vault's boundaries. It wraps a
// decoded raster so persistence and compression never have to type-switch on
// "raw bytes or decoded image" — conversion happens at construction.
// An Image is immutable once built; derived images are new instances.
type Image struct {
	decoded image.Image
}

// ImageFromBytes decodes raw encoded bytes (PNG, JPEG, GIF, WebP, BMP, TIFF)
// into an Image. Invalid bytes return ErrDecode.
func ImageFromBytes(raw []byte) (*Image, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrDecode)
	}

	decoded, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	return &Image{decoded: decoded}, nil
}

// ImageFromDecoded wraps an already-decoded raster.
func ImageFromDecoded(decoded image.Image) (*Image, error) {
	if decoded == nil {
		return nil, fmt.Errorf("%w: nil decoded image", ErrUnsupportedImageType)
	}

	return &Image{decoded: decoded}, nil
}

// Decoded returns the underlying raster.
func (i *Image) Decoded() image.Image {
	return i.decoded
}

// Width returns the raster width in pixels.
func (i *Image) Width() int {
	return i.decoded.Bounds().Dx()
}

// Height returns the raster height in pixels.
func (i *Image) Height() int {
	return i.decoded.Bounds().Dy()
}

// Opaque reports whether the image is fully opaque. Rasters whose color model
// carries no alpha are opaque by definition; others are scanned via the
// codec-provided Opaque method when available.
func (i *Image) Opaque() bool {
	if o, ok := i.decoded.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	return true
}

// EncodePNG encodes the image losslessly for storage. The vault always keeps
// the full-resolution original in this encoding so a retrieval reconstructs
// pixels exactly.
func (i *Image) EncodePNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, i.decoded); err != nil {
		return nil, fmt.Errorf("failed to encode image as png: %w", err)
	}

	return buf.Bytes(), nil
}
