// Package palette picks reproducible background colors for scene cards.
package palette

import (
	"hash/fnv"
	"image/color"
	"math"
	"math/rand/v2"
)

// SeedRange bounds the seed derived from scene text.
const SeedRange = 10000

// Rand is the subset of a seeded generator the picker needs.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

// NewRand returns a generator whose sequence depends only on seed.
func NewRand(seed int) Rand {
	return rand.New(rand.NewPCG(uint64(seed), 0))
}

// Seed hashes text (FNV-1a) into [0, SeedRange).
func Seed(text string) int {
	h := fnv.New32a()
	h.Write([]byte(text))
	return int(h.Sum32() % SeedRange)
}

// Pick returns a vivid color for seed: any hue, saturation in [0.4, 0.8),
// value in [0.6, 0.9). White text stays legible on all of them.
func Pick(seed int) color.RGBA {
	return PickFrom(NewRand(seed))
}

// PickFrom draws hue, saturation and value from r in that order.
func PickFrom(r Rand) color.RGBA {
	hue := r.IntN(361)
	saturation := 0.4 + r.Float64()*0.4
	value := 0.6 + r.Float64()*0.3
	return HSVToRGB(float64(hue), saturation, value)
}

// HSVToRGB converts hue in degrees [0, 360] and saturation/value in [0, 1].
func HSVToRGB(h, s, v float64) color.RGBA {
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return color.RGBA{R: channel(r + m), G: channel(g + m), B: channel(b + m), A: 0xff}
}

func channel(f float64) uint8 {
	v := int(f * 255)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
