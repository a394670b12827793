package application

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/dfryer1193/imagevault/vault/domain"
)

func TestSelectTier(t *testing.T) {
	tests := []struct {
		name        string
		targetEdge  int
		wantFormat  Format
		wantQuality int
		wantErr     bool
	}{
		{name: "minimum edge", targetEdge: 4, wantFormat: FormatWebP, wantQuality: 90},
		{name: "top of webp tier", targetEdge: 16, wantFormat: FormatWebP, wantQuality: 90},
		{name: "bottom of png tier", targetEdge: 17, wantFormat: FormatPNG},
		{name: "top of png tier", targetEdge: 32, wantFormat: FormatPNG},
		{name: "bottom of second webp tier", targetEdge: 33, wantFormat: FormatWebP, wantQuality: 85},
		{name: "top of second webp tier", targetEdge: 64, wantFormat: FormatWebP, wantQuality: 85},
		{name: "bottom of jpeg tier", targetEdge: 65, wantFormat: FormatJPEG, wantQuality: 85},
		{name: "top of jpeg tier", targetEdge: 96, wantFormat: FormatJPEG, wantQuality: 85},
		{name: "bottom of low jpeg tier", targetEdge: 97, wantFormat: FormatJPEG, wantQuality: 75},
		{name: "maximum edge", targetEdge: 128, wantFormat: FormatJPEG, wantQuality: 75},
		{name: "below minimum", targetEdge: 3, wantErr: true},
		{name: "above maximum", targetEdge: 129, wantErr: true},
		{name: "zero", targetEdge: 0, wantErr: true},
		{name: "negative", targetEdge: -8, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tier, err := selectTier(tt.targetEdge)

			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidTargetSize) {
					t.Fatalf("selectTier(%d) error = %v, want ErrInvalidTargetSize", tt.targetEdge, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("selectTier(%d) error = %v", tt.targetEdge, err)
			}
			if tier.format != tt.wantFormat {
				t.Errorf("format = %v, want %v", tier.format, tt.wantFormat)
			}
			if tier.quality != tt.wantQuality {
				t.Errorf("quality = %d, want %d", tier.quality, tt.wantQuality)
			}
		})
	}
}

func TestCompress_RejectsOutOfRangeEdge(t *testing.T) {
	img := testImage(t, 129, 129, 0)

	for _, edge := range []int{3, 129, 1000} {
		if _, _, err := Compress(img, edge); !errors.Is(err, domain.ErrInvalidTargetSize) {
			t.Errorf("Compress(edge=%d) error = %v, want ErrInvalidTargetSize", edge, err)
		}
	}
}

func TestCompress_OutputDecodes(t *testing.T) {
	tests := []struct {
		name       string
		targetEdge int
		wantFormat Format
	}{
		{name: "webp tier", targetEdge: 16, wantFormat: FormatWebP},
		{name: "png tier", targetEdge: 32, wantFormat: FormatPNG},
		{name: "second webp tier", targetEdge: 64, wantFormat: FormatWebP},
		{name: "jpeg tier", targetEdge: 96, wantFormat: FormatJPEG},
		{name: "low jpeg tier", targetEdge: 128, wantFormat: FormatJPEG},
	}

	src := testImage(t, 256, 256, 0)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resized, err := Resize(src, tt.targetEdge)
			if err != nil {
				t.Fatalf("Resize() error = %v", err)
			}

			encoded, format, err := Compress(resized, tt.targetEdge)
			if err != nil {
				t.Fatalf("Compress() error = %v", err)
			}
			if format != tt.wantFormat {
				t.Errorf("format = %v, want %v", format, tt.wantFormat)
			}
			if len(encoded) == 0 {
				t.Fatal("Compress() returned empty bytes")
			}

			decoded, detected, err := image.Decode(bytes.NewReader(encoded))
			if err != nil {
				t.Fatalf("Output did not decode: %v", err)
			}
			if detected != string(tt.wantFormat) {
				t.Errorf("decoded format = %q, want %q", detected, tt.wantFormat)
			}
			if decoded.Bounds().Dx() != tt.targetEdge || decoded.Bounds().Dy() != tt.targetEdge {
				t.Errorf("decoded size = %dx%d, want %dx%d",
					decoded.Bounds().Dx(), decoded.Bounds().Dy(), tt.targetEdge, tt.targetEdge)
			}
		})
	}
}

func TestCompress_PNGTierIsLossless(t *testing.T) {
	src := testImage(t, 32, 32, 5)

	encoded, format, err := Compress(src, 32)
	if err != nil {
		t.Fatalf("Compress() error = %v", err)
	}
	if format != FormatPNG {
		t.Fatalf("format = %v, want png", format)
	}

	decoded, _, err := image.Decode(bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("Failed to decode png output: %v", err)
	}

	if !samePixels(src.Decoded(), decoded) {
		t.Error("PNG tier output is not pixel-identical to input")
	}
}

func TestCompress_JPEGFlattensAlpha(t *testing.T) {
	// Fully transparent input must come back as an opaque white raster.
	raster := image.NewNRGBA(image.Rect(0, 0, 96, 96))
	img, err := domain.ImageFromDecoded(raster)
	if err != nil {
		t.Fatalf("Failed to wrap raster: %v", err)
	}

	encoded, format, err := Compress(img, 96)
	if err != nil {
		t.Fatalf("Compress() error = %v", err)
	}
	if format != FormatJPEG {
		t.Fatalf("format = %v, want jpeg", format)
	}

	decoded, _, err := image.Decode(bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("Failed to decode jpeg output: %v", err)
	}

	r, g, b, a := decoded.At(48, 48).RGBA()
	if a != 0xffff {
		t.Errorf("JPEG output not opaque: alpha = %d", a)
	}
	// Lossy encode, so allow a little slack off pure white.
	if r>>8 < 250 || g>>8 < 250 || b>>8 < 250 {
		t.Errorf("Transparent input not flattened to white: got rgb(%d, %d, %d)", r>>8, g>>8, b>>8)
	}
}

func TestCompress_WebPPreservesAlpha(t *testing.T) {
	raster := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			raster.SetNRGBA(x, y, color.NRGBA{R: 200, G: 40, B: 40, A: 0})
		}
	}

	img, err := domain.ImageFromDecoded(raster)
	if err != nil {
		t.Fatalf("Failed to wrap raster: %v", err)
	}

	encoded, format, err := Compress(img, 16)
	if err != nil {
		t.Fatalf("Compress() error = %v", err)
	}
	if format != FormatWebP {
		t.Fatalf("format = %v, want webp", format)
	}

	decoded, _, err := image.Decode(bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("Failed to decode webp output: %v", err)
	}

	_, _, _, a := decoded.At(8, 8).RGBA()
	if a > 0x7fff {
		t.Errorf("WebP output lost transparency: alpha = %d", a)
	}
}

func TestResize(t *testing.T) {
	src := testImage(t, 300, 100, 0)

	resized, err := Resize(src, 64)
	if err != nil {
		t.Fatalf("Resize() error = %v", err)
	}

	if resized.Width() != 64 || resized.Height() != 64 {
		t.Errorf("resized to %dx%d, want 64x64", resized.Width(), resized.Height())
	}

	if _, err := Resize(src, 129); !errors.Is(err, domain.ErrInvalidTargetSize) {
		t.Errorf("Resize(129) error = %v, want ErrInvalidTargetSize", err)
	}
}

// samePixels compares two rasters pixel-for-pixel through the color interface.
func samePixels(a, b image.Image) bool {
	if a.Bounds().Dx() != b.Bounds().Dx() || a.Bounds().Dy() != b.Bounds().Dy() {
		return false
	}

	dx := a.Bounds().Min.X - b.Bounds().Min.X
	dy := a.Bounds().Min.Y - b.Bounds().Min.Y

	for y := a.Bounds().Min.Y; y < a.Bounds().Max.Y; y++ {
		for x := a.Bounds().Min.X; x < a.Bounds().Max.X; x++ {
			ar, ag, ab, aa := a.At(x, y).RGBA()
			br, bg, bb, ba := b.At(x-dx, y-dy).RGBA()
			if ar != br || ag != bg || ab != bb || aa != ba {
				return false
			}
		}
	}

	return true
}
