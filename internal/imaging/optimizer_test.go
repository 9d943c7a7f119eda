package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestOptimizeBoundsLargeImage(t *testing.T) {
	out, err := Optimize(encodePNG(t, 4000, 2000))
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not a decodable jpeg: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != MaxDimension || b.Dy() != 960 {
		t.Fatalf("expected 1920x960, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestOptimizeBoundsPortrait(t *testing.T) {
	out, err := Optimize(encodePNG(t, 1000, 2500))
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	b := img.Bounds()
	if b.Dy() != MaxDimension || b.Dx() != 768 {
		t.Fatalf("expected 768x1920, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestOptimizeReencodesSmallImage(t *testing.T) {
	src := encodePNG(t, 640, 480)
	out, err := Optimize(src)
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("small images must still re-encode as jpeg: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 640 || b.Dy() != 480 {
		t.Fatalf("small image must keep its size, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestOptimizeRejectsGarbage(t *testing.T) {
	if _, err := Optimize([]byte("not an image")); err == nil {
		t.Fatal("expected decode error")
	}
}
