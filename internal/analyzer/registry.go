package analyzer

import (
	"fmt"
	"image/color"
)

// NewDetector creates a detector based on the specified variant.
// bg is the card background the detector treats as empty space.
func NewDetector(variant string, bg color.Color) (Detector, error) {
	switch variant {
	case "ink", "":
		return NewInkDetector(bg), nil
	default:
		return nil, fmt.Errorf("unknown detector variant: %s", variant)
	}
}
