package source

import (
	"testing"

	"github.com/ivlev/story2video/internal/renderer"
	"github.com/ivlev/story2video/internal/system"
)

func TestStoryboardSource(t *testing.T) {
	scenes := []string{"One", "Two", "Three"}
	src := NewStoryboardSource(scenes, renderer.NewBasic(renderer.Options{}), 160, 90)
	defer src.Close()

	if src.SceneCount() != 3 {
		t.Fatalf("SceneCount = %d", src.SceneCount())
	}
	for i := range scenes {
		if src.Scene(i) != scenes[i] {
			t.Errorf("Scene(%d) = %q", i, src.Scene(i))
		}
		img, err := src.RenderScene(i)
		if err != nil {
			t.Fatalf("RenderScene(%d): %v", i, err)
		}
		if img.Bounds().Dx() != 160 || img.Bounds().Dy() != 90 {
			t.Errorf("frame %d bounds %v", i, img.Bounds())
		}
		system.PutImage(img)
	}

	if _, err := src.RenderScene(3); err == nil {
		t.Error("expected out-of-range error")
	}
}
