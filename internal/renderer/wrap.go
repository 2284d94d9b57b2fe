package renderer

import (
	"strings"

	"golang.org/x/image/font"
)

// Wrap breaks text into lines no wider than maxWidth pixels when drawn with
// face. A word that alone exceeds maxWidth gets its own line and is never split.
func Wrap(face font.Face, text string, maxWidth int) []string {
	var lines []string
	var current []string

	for _, word := range strings.Fields(text) {
		tentative := word
		if len(current) > 0 {
			tentative = strings.Join(current, " ") + " " + word
		}

		if font.MeasureString(face, tentative).Ceil() <= maxWidth {
			current = append(current, word)
			continue
		}

		if len(current) == 0 {
			lines = append(lines, word)
			continue
		}

		lines = append(lines, strings.Join(current, " "))
		current = []string{word}
	}

	if len(current) > 0 {
		lines = append(lines, strings.Join(current, " "))
	}
	return lines
}
