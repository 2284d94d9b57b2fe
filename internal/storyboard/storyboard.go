// Package storyboard extracts scene lines from language-model text.
package storyboard

import (
	"errors"
	"strings"
)

// ErrNoScenes means the storyboard held no usable line after cleanup.
var ErrNoScenes = errors.New("storyboard contains no scenes")

// cutset is stripped from both ends of every line.
const cutset = " -*\t"

// Parse splits text into ordered, non-empty scene lines with bullet markers
// and surrounding whitespace removed. Duplicates are kept.
func Parse(text string) ([]string, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var scenes []string
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(strings.Trim(raw, cutset))
		if line == "" {
			continue
		}
		scenes = append(scenes, line)
	}

	if len(scenes) == 0 {
		return nil, ErrNoScenes
	}
	return scenes, nil
}
