package analyzer

import (
	"image"
	"image/color"
)

// InkDetector finds rows of text on a solid-color card: every pixel that
// differs from the background is ink, and runs of rows containing ink form lines.
type InkDetector struct {
	Background color.Color
	Tolerance  uint8 // per-channel difference still counted as background
}

// NewInkDetector creates a detector for cards filled with bg.
func NewInkDetector(bg color.Color) *InkDetector {
	return &InkDetector{Background: bg, Tolerance: 8}
}

// Detect returns one block per text line, top to bottom. Each block is the
// tight bounding box of the ink in that band of rows.
func (d *InkDetector) Detect(img image.Image) ([]Block, error) {
	bounds := img.Bounds()
	bg := color.RGBAModel.Convert(d.Background).(color.RGBA)

	var blocks []Block
	var current image.Rectangle
	ink := 0
	inLine := false

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		minX, maxX := bounds.Max.X, bounds.Min.X-1
		rowInk := 0
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if d.isInk(img.At(x, y), bg) {
				if x < minX {
					minX = x
				}
				maxX = x
				rowInk++
			}
		}

		if maxX < minX {
			if inLine {
				blocks = append(blocks, Block{Rect: current, Ink: ink})
				inLine = false
			}
			continue
		}

		row := image.Rect(minX, y, maxX+1, y+1)
		if inLine {
			current = current.Union(row)
			ink += rowInk
		} else {
			current = row
			ink = rowInk
			inLine = true
		}
	}

	if inLine {
		blocks = append(blocks, Block{Rect: current, Ink: ink})
	}

	return blocks, nil
}

func (d *InkDetector) isInk(c color.Color, bg color.RGBA) bool {
	p := color.RGBAModel.Convert(c).(color.RGBA)
	return diff(p.R, bg.R) > d.Tolerance || diff(p.G, bg.G) > d.Tolerance || diff(p.B, bg.B) > d.Tolerance
}

func diff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}
