package analyzer

import (
	"image/color"
	"math"
)

// MinTextContrast is the ratio below which white card text is hard to read.
const MinTextContrast = 2.0

// RelativeLuminance follows the WCAG 2 definition for sRGB colors.
func RelativeLuminance(c color.Color) float64 {
	r, g, b, _ := c.RGBA()
	return 0.2126*linearize(r) + 0.7152*linearize(g) + 0.0722*linearize(b)
}

func linearize(v uint32) float64 {
	s := float64(v) / 0xffff
	if s <= 0.03928 {
		return s / 12.92
	}
	return math.Pow((s+0.055)/1.055, 2.4)
}

// ContrastRatio returns (L1+0.05)/(L2+0.05) with L1 the lighter color, in [1, 21].
func ContrastRatio(a, b color.Color) float64 {
	la, lb := RelativeLuminance(a), RelativeLuminance(b)
	if la < lb {
		la, lb = lb, la
	}
	return (la + 0.05) / (lb + 0.05)
}
