package director

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/ivlev/story2video/internal/storyboard"
)

func TestNewPlan(t *testing.T) {
	scenes := []string{"Cat boards a rocket", "Rocket leaves Earth", "Cat waves at Mars"}

	plan, err := NewPlan(scenes, 60, 24, 1280, 720)
	if err != nil {
		t.Fatalf("NewPlan failed: %v", err)
	}

	if plan.Version != "1.0" {
		t.Errorf("Expected version 1.0, got %s", plan.Version)
	}
	if len(plan.Slides) != len(scenes) {
		t.Fatalf("Expected %d slides, got %d", len(scenes), len(plan.Slides))
	}

	sum := 0.0
	for i, s := range plan.Slides {
		if s.ID != i+1 || s.Text != scenes[i] {
			t.Errorf("slide %d = {%d %q}", i, s.ID, s.Text)
		}
		if s.Duration != 20 {
			t.Errorf("slide %d duration %f, want 20", i, s.Duration)
		}
		if s.Frames != 480 {
			t.Errorf("slide %d frames %d, want 480", i, s.Frames)
		}
		if len(s.Background) != 7 || s.Background[0] != '#' {
			t.Errorf("slide %d background %q", i, s.Background)
		}
		sum += s.Duration
	}
	if math.Abs(sum-60) > 1e-9 {
		t.Errorf("durations sum to %f", sum)
	}
	if plan.TotalFrames() != 1440 {
		t.Errorf("TotalFrames = %d, want 1440", plan.TotalFrames())
	}

	if plan.Slides[0].Background == plan.Slides[1].Background {
		t.Errorf("distinct scenes share background %s", plan.Slides[0].Background)
	}
}

func TestNewPlanNoScenes(t *testing.T) {
	if _, err := NewPlan(nil, 60, 24, 1280, 720); !errors.Is(err, storyboard.ErrNoScenes) {
		t.Errorf("err = %v, want ErrNoScenes", err)
	}
}

func TestAllocateFrames(t *testing.T) {
	tests := []struct {
		duration float64
		fps, n   int
	}{
		{60, 24, 7},
		{60, 24, 12},
		{10, 24, 3},
		{1, 24, 24},
		{0.5, 30, 4},
		{59.97, 24, 11},
	}

	for _, tt := range tests {
		frames, err := AllocateFrames(tt.duration, tt.fps, tt.n)
		if err != nil {
			t.Fatalf("AllocateFrames(%v, %d, %d): %v", tt.duration, tt.fps, tt.n, err)
		}

		total := int(math.Round(tt.duration * float64(tt.fps)))
		ideal := float64(total) / float64(tt.n)
		sum := 0
		for i, f := range frames {
			if math.Abs(float64(f)-ideal) >= 1 {
				t.Errorf("%v/%d/%d: scene %d has %d frames, ideal %.2f", tt.duration, tt.fps, tt.n, i, f, ideal)
			}
			sum += f
		}
		if sum != total {
			t.Errorf("%v/%d/%d: frames sum %d, want %d", tt.duration, tt.fps, tt.n, sum, total)
		}
	}
}

func TestAllocateFramesErrors(t *testing.T) {
	if _, err := AllocateFrames(1, 24, 25); !errors.Is(err, ErrTooManyScenes) {
		t.Errorf("err = %v, want ErrTooManyScenes", err)
	}
	if _, err := AllocateFrames(0, 24, 1); err == nil {
		t.Error("expected error for zero duration")
	}
	if _, err := AllocateFrames(10, 0, 1); err == nil {
		t.Error("expected error for zero fps")
	}
	if _, err := AllocateFrames(10, 24, 0); !errors.Is(err, storyboard.ErrNoScenes) {
		t.Errorf("err = %v, want ErrNoScenes", err)
	}
}

func TestPlanWriteRead(t *testing.T) {
	plan, err := NewPlan([]string{"One", "Two"}, 10, 24, 640, 360)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "nested", "video.plan.yaml")
	if err := WritePlan(plan, path); err != nil {
		t.Fatalf("WritePlan failed: %v", err)
	}

	read, err := ReadPlan(path)
	if err != nil {
		t.Fatalf("ReadPlan failed: %v", err)
	}

	if read.FPS != 24 || read.Width != 640 || len(read.Slides) != 2 {
		t.Errorf("read back %+v", read)
	}
	if read.Slides[1].Text != "Two" || read.Slides[1].Frames != plan.Slides[1].Frames {
		t.Errorf("slide mismatch: %+v", read.Slides[1])
	}
}

func TestPlanPath(t *testing.T) {
	if got := PlanPath(filepath.Join("videos", "video_1.mp4")); got != filepath.Join("videos", "video_1.plan.yaml") {
		t.Errorf("PlanPath = %s", got)
	}
}
