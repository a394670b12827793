package application

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"

	"github.com/chai2010/webp"
	"github.com/dfryer1193/imagevault/vault/domain"
	"github.com/disintegration/imaging"
)

// Format identifies the encoding the adaptive compressor selected.
type Format string

const (
	FormatWebP Format = "webp"
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
)

// Extension returns the file extension for the format, without the dot.
func (f Format) Extension() string {
	return string(f)
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	return "image/" + string(f)
}

// Supported target edge range. Values outside are rejected, never clamped,
// so callers can rely on the tier table below being the full mapping.
const (
	MinTargetEdge = 4
	MaxTargetEdge = 128
)

// tier maps a contiguous target-edge range (up to and including maxEdge) to a
// fixed format and quality. Quality is ignored for the lossless PNG tier.
type tier struct {
	maxEdge int
	format  Format
	quality int
}

// Size-tiered compression policy. Tiny renditions tolerate WebP's aggressive
// quality 90 best; the 17-32 band goes lossless because lossy artifacts
// dominate at those sizes; larger renditions step down through JPEG quality.
var tiers = []tier{
	{maxEdge: 16, format: FormatWebP, quality: 90},
	{maxEdge: 32, format: FormatPNG},
	{maxEdge: 64, format: FormatWebP, quality: 85},
	{maxEdge: 96, format: FormatJPEG, quality: 85},
	{maxEdge: 128, format: FormatJPEG, quality: 75},
}

// ValidateTargetEdge rejects target edges outside [MinTargetEdge, MaxTargetEdge].
func ValidateTargetEdge(targetEdge int) error {
	if targetEdge < MinTargetEdge || targetEdge > MaxTargetEdge {
		return fmt.Errorf("%w: %d not in [%d, %d]", domain.ErrInvalidTargetSize, targetEdge, MinTargetEdge, MaxTargetEdge)
	}
	return nil
}

// selectTier returns the compression tier for a target edge.
func selectTier(targetEdge int) (tier, error) {
	if err := ValidateTargetEdge(targetEdge); err != nil {
		return tier{}, err
	}

	for _, t := range tiers {
		if targetEdge <= t.maxEdge {
			return t, nil
		}
	}

	// Unreachable while MaxTargetEdge matches the last tier's maxEdge.
	return tier{}, fmt.Errorf("%w: no tier for edge %d", domain.ErrInvalidTargetSize, targetEdge)
}

// Resize returns a new image scaled to a targetEdge square, validating the
// edge against the supported range first.
func Resize(img *domain.Image, targetEdge int) (*domain.Image, error) {
	if err := ValidateTargetEdge(targetEdge); err != nil {
		return nil, err
	}

	resized := imaging.Resize(img.Decoded(), targetEdge, targetEdge, imaging.Lanczos)
	return domain.ImageFromDecoded(resized)
}

// Compress encodes an image for the size class of targetEdge, returning the
// encoded bytes and the format used so the caller can label the output.
// The image is expected to already be resized to targetEdge; the edge only
// selects the tier. JPEG does not carry transparency, so images with an alpha
// channel are flattened onto white before a JPEG encode; WebP preserves alpha.
func Compress(img *domain.Image, targetEdge int) ([]byte, Format, error) {
	t, err := selectTier(targetEdge)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer

	switch t.format {
	case FormatWebP:
		err = webp.Encode(&buf, img.Decoded(), &webp.Options{Quality: float32(t.quality)})
	case FormatPNG:
		encoder := png.Encoder{CompressionLevel: png.BestCompression}
		err = encoder.Encode(&buf, img.Decoded())
	case FormatJPEG:
		err = jpeg.Encode(&buf, flattenAlpha(img), &jpeg.Options{Quality: t.quality})
	}

	if err != nil {
		return nil, "", fmt.Errorf("failed to encode image as %s: %w", t.format, err)
	}

	return buf.Bytes(), t.format, nil
}

// flattenAlpha composites a non-opaque image over a white background,
// yielding an opaque RGB raster. Opaque inputs pass through unchanged.
func flattenAlpha(img *domain.Image) image.Image {
	if img.Opaque() {
		return img.Decoded()
	}

	bounds := img.Decoded().Bounds()
	flat := image.NewRGBA(bounds)
	draw.Draw(flat, bounds, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(flat, bounds, img.Decoded(), bounds.Min, draw.Over)

	return flat
}
