package analyzer

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"testing"
)

func TestInkDetector(t *testing.T) {
	bg := color.RGBA{R: 40, G: 90, B: 160, A: 255}
	img := image.NewRGBA(image.Rect(0, 0, 200, 120))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	// Two "lines" of text separated by background rows
	white := image.NewUniform(color.White)
	draw.Draw(img, image.Rect(50, 20, 150, 40), white, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(70, 60, 130, 80), white, image.Point{}, draw.Src)

	detector := NewInkDetector(bg)
	blocks, err := detector.Detect(img)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if len(blocks) != 2 {
		t.Fatalf("expected 2 lines, got %d: %v", len(blocks), blocks)
	}
	if blocks[0].Rect != image.Rect(50, 20, 150, 40) {
		t.Errorf("first line = %v", blocks[0].Rect)
	}
	if blocks[1].Rect != image.Rect(70, 60, 130, 80) {
		t.Errorf("second line = %v", blocks[1].Rect)
	}

	if blocks[0].Ink != 100*20 || blocks[1].Ink != 60*20 {
		t.Errorf("ink counts = %d, %d", blocks[0].Ink, blocks[1].Ink)
	}

	for i, b := range blocks {
		t.Logf("Block %d: %v (ink: %d)", i, b.Rect, b.Ink)
	}
}

func TestInkDetectorEmpty(t *testing.T) {
	bg := color.RGBA{R: 200, G: 10, B: 10, A: 255}
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	blocks, _ := NewInkDetector(bg).Detect(img)
	if len(blocks) != 0 {
		t.Errorf("expected no blocks on a blank card, got %v", blocks)
	}
}

func TestDetectorRegistry(t *testing.T) {
	tests := []struct {
		variant string
		wantErr bool
	}{
		{"ink", false},
		{"", false}, // default
		{"ocr", true},
		{"contrast", true},
	}

	for _, tt := range tests {
		t.Run(tt.variant, func(t *testing.T) {
			detector, err := NewDetector(tt.variant, color.Black)

			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if detector == nil {
				t.Error("Expected detector, got nil")
			}
		})
	}
}

func TestContrastRatio(t *testing.T) {
	if got := ContrastRatio(color.White, color.Black); math.Abs(got-21) > 0.01 {
		t.Errorf("white/black = %.3f, want 21", got)
	}
	if got := ContrastRatio(color.White, color.White); math.Abs(got-1) > 1e-9 {
		t.Errorf("white/white = %.3f, want 1", got)
	}
	a := color.RGBA{R: 200, G: 30, B: 30, A: 255}
	if ContrastRatio(a, color.White) != ContrastRatio(color.White, a) {
		t.Error("ContrastRatio is not symmetric")
	}
}
