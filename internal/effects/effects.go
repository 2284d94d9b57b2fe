package effects

import (
	"fmt"

	"github.com/ivlev/story2video/internal/config"
)

type Effect interface {
	GenerateFilter(params config.SegmentParams) string
}

// HoldEffect shows the single input frame unchanged for params.Frames frames.
type HoldEffect struct{}

func (e *HoldEffect) GenerateFilter(p config.SegmentParams) string {
	frames := p.Frames
	if frames < 1 {
		frames = 1
	}

	// loop repeats the one buffered frame; setpts rebuilds a constant-rate timeline.
	return fmt.Sprintf(
		"loop=loop=%d:size=1:start=0,setpts=N/(%d*TB),scale=%d:%d,format=yuv420p",
		frames-1, p.FPS, p.Width, p.Height,
	)
}
