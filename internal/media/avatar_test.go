package media

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func decodeJPEG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a jpeg: %v", err)
	}
	return img
}

func TestFitWithin(t *testing.T) {
	tests := []struct {
		w, h, limit  int
		wantW, wantH int
	}{
		{100, 50, 200, 100, 50},
		{2048, 1024, 1024, 1024, 512},
		{1024, 2048, 1024, 512, 1024},
		{4000, 4000, 1024, 1024, 1024},
		{5000, 2, 1000, 1000, 1},
		{1024, 1024, 1024, 1024, 1024},
	}
	for _, tt := range tests {
		w, h := fitWithin(tt.w, tt.h, tt.limit)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("fitWithin(%d, %d, %d) = %dx%d, want %dx%d", tt.w, tt.h, tt.limit, w, h, tt.wantW, tt.wantH)
		}
	}
}

func TestNormalize_DownscalesPNG(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, solid(400, 200, color.RGBA{R: 200, A: 255})); err != nil {
		t.Fatal(err)
	}
	out, err := NewAvatarNormalizer(100, 90).Normalize(buf.Bytes())
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	b := decodeJPEG(t, out).Bounds()
	if b.Dx() != 100 || b.Dy() != 50 {
		t.Errorf("size = %dx%d, want 100x50", b.Dx(), b.Dy())
	}
}

func TestNormalize_KeepsSmallImageSize(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, solid(64, 48, color.Gray{Y: 128}), nil); err != nil {
		t.Fatal(err)
	}
	out, err := NewAvatarNormalizer(1024, 85).Normalize(buf.Bytes())
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if b := decodeJPEG(t, out).Bounds(); b.Dx() != 64 || b.Dy() != 48 {
		t.Errorf("size = %dx%d, want 64x48", b.Dx(), b.Dy())
	}
}

func TestNormalize_TransparentBecomesWhite(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 16, 16))); err != nil {
		t.Fatal(err)
	}
	out, err := NewAvatarNormalizer(0, 0).Normalize(buf.Bytes())
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	r, g, b, _ := decodeJPEG(t, out).At(8, 8).RGBA()
	if r>>8 < 240 || g>>8 < 240 || b>>8 < 240 {
		t.Errorf("pixel = (%d, %d, %d), want near white", r>>8, g>>8, b>>8)
	}
}

func TestNormalize_GIF(t *testing.T) {
	pal := image.NewPaletted(image.Rect(0, 0, 10, 10), color.Palette{color.Black, color.White})
	var buf bytes.Buffer
	if err := gif.Encode(&buf, pal, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := NewAvatarNormalizer(0, 0).Normalize(buf.Bytes()); err != nil {
		t.Errorf("Normalize(gif): %v", err)
	}
}

func TestNormalize_Errors(t *testing.T) {
	n := NewAvatarNormalizer(0, 0)
	if _, err := n.Normalize(nil); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("Normalize(nil) = %v, want ErrEmptyImage", err)
	}
	if _, err := n.Normalize([]byte("%PDF-1.4 not an image")); err == nil {
		t.Error("Normalize should reject non-image data")
	}
}

func TestNewAvatarNormalizer_Defaults(t *testing.T) {
	n := NewAvatarNormalizer(-1, 101)
	if n.MaxDimension != DefaultMaxDimension || n.Quality != DefaultQuality {
		t.Errorf("normalizer = %+v", n)
	}
}
