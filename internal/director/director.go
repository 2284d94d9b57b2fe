package director

import (
	"errors"
	"fmt"
	"math"

	"github.com/ivlev/story2video/internal/palette"
	"github.com/ivlev/story2video/internal/storyboard"
)

// ErrTooManyScenes means the video is too short to give every scene a frame.
var ErrTooManyScenes = errors.New("more scenes than frames")

// NewPlan splits totalDuration equally across scenes and assigns each scene
// a whole number of frames at fps.
func NewPlan(scenes []string, totalDuration float64, fps, width, height int) (*Plan, error) {
	if len(scenes) == 0 {
		return nil, storyboard.ErrNoScenes
	}

	frames, err := AllocateFrames(totalDuration, fps, len(scenes))
	if err != nil {
		return nil, err
	}

	perScene := totalDuration / float64(len(scenes))
	slides := make([]Slide, len(scenes))
	for i, text := range scenes {
		bg := palette.Pick(palette.Seed(text))
		slides[i] = Slide{
			ID:         i + 1,
			Text:       text,
			Duration:   perScene,
			Frames:     frames[i],
			Background: fmt.Sprintf("#%02x%02x%02x", bg.R, bg.G, bg.B),
		}
	}

	return &Plan{
		Version:       "1.0",
		FPS:           fps,
		Width:         width,
		Height:        height,
		TotalDuration: totalDuration,
		Slides:        slides,
	}, nil
}

// AllocateFrames distributes round(totalDuration*fps) frames over n scenes by
// cumulative rounding: the counts sum exactly to the total and each is within
// one frame of totalDuration*fps/n.
func AllocateFrames(totalDuration float64, fps, n int) ([]int, error) {
	if n <= 0 {
		return nil, storyboard.ErrNoScenes
	}
	if totalDuration <= 0 || math.IsNaN(totalDuration) || math.IsInf(totalDuration, 0) {
		return nil, fmt.Errorf("duration must be positive, got %g", totalDuration)
	}
	if fps <= 0 {
		return nil, fmt.Errorf("fps must be positive, got %d", fps)
	}

	total := int(math.Round(totalDuration * float64(fps)))
	if total < n {
		return nil, fmt.Errorf("%w: %d scenes in %d frames (%.2fs at %d fps)", ErrTooManyScenes, n, total, totalDuration, fps)
	}

	frames := make([]int, n)
	prev := 0
	for i := 0; i < n; i++ {
		next := int(math.Round(float64(total) * float64(i+1) / float64(n)))
		frames[i] = next - prev
		prev = next
	}
	return frames, nil
}
