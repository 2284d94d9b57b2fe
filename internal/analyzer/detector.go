package analyzer

import "image"

// Block is a region of a frame that holds drawn text.
type Block struct {
	Rect image.Rectangle
	Ink  int // pixels inside Rect that differ from the background
}

// Detector locates text on a rendered frame.
type Detector interface {
	Detect(img image.Image) ([]Block, error)
}
