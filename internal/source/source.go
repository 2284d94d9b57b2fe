package source

import (
	"fmt"
	"image"

	"github.com/ivlev/story2video/internal/renderer"
)

// Source yields one frame per scene, in scene order.
type Source interface {
	SceneCount() int
	Scene(index int) string
	RenderScene(index int) (*image.RGBA, error)
	Close() error
}

// StoryboardSource renders parsed scene lines as text cards.
type StoryboardSource struct {
	scenes        []string
	renderer      *renderer.Renderer
	width, height int
}

func NewStoryboardSource(scenes []string, r *renderer.Renderer, width, height int) *StoryboardSource {
	return &StoryboardSource{scenes: scenes, renderer: r, width: width, height: height}
}

func (s *StoryboardSource) SceneCount() int {
	return len(s.scenes)
}

func (s *StoryboardSource) Scene(index int) string {
	return s.scenes[index]
}

func (s *StoryboardSource) RenderScene(index int) (*image.RGBA, error) {
	if index < 0 || index >= len(s.scenes) {
		return nil, fmt.Errorf("scene %d out of range (%d scenes)", index, len(s.scenes))
	}
	return s.renderer.Render(s.scenes[index], s.width, s.height)
}

func (s *StoryboardSource) Close() error {
	return nil
}
