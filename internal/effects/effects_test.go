package effects

import (
	"strings"
	"testing"

	"github.com/ivlev/story2video/internal/config"
)

func TestHoldEffect(t *testing.T) {
	eff := &HoldEffect{}

	tests := []struct {
		frames int
		want   string
	}{
		{480, "loop=loop=479:size=1:start=0"},
		{1, "loop=loop=0:size=1:start=0"},
		{0, "loop=loop=0:size=1:start=0"},
	}

	for _, tt := range tests {
		filter := eff.GenerateFilter(config.SegmentParams{Width: 1280, Height: 720, FPS: 24, Frames: tt.frames})
		if !strings.HasPrefix(filter, tt.want) {
			t.Errorf("frames=%d: filter %q, want prefix %q", tt.frames, filter, tt.want)
		}
		for _, part := range []string{"setpts=N/(24*TB)", "scale=1280:720", "format=yuv420p"} {
			if !strings.Contains(filter, part) {
				t.Errorf("filter %q missing %q", filter, part)
			}
		}
	}
}
