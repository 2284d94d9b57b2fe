package engine

import (
	"context"
	"errors"
	"os"

	"github.com/rs/zerolog"

	"github.com/ivlev/story2video/internal/config"
	"github.com/ivlev/story2video/internal/effects"
	"github.com/ivlev/story2video/internal/logging"
	"github.com/ivlev/story2video/internal/renderer"
	"github.com/ivlev/story2video/internal/source"
	"github.com/ivlev/story2video/internal/storyboard"
	"github.com/ivlev/story2video/internal/video"
)

// Builder turns storyboard text into a video file. It holds no per-call state
// and may be shared between goroutines.
type Builder struct {
	Config   *config.Config
	Renderer *renderer.Renderer
	Encoder  video.VideoEncoder
	Effect   effects.Effect
	Probe    func(path string) (*video.VideoInfo, error)

	logger zerolog.Logger
}

func NewBuilder(cfg *config.Config, r *renderer.Renderer, enc video.VideoEncoder) *Builder {
	return &Builder{
		Config:   cfg,
		Renderer: r,
		Encoder:  enc,
		Effect:   &effects.HoldEffect{},
		Probe:    video.Probe,
		logger:   logging.WithComponent("builder"),
	}
}

// Build writes the storyboard as an MP4 at outputPath and returns that path.
// A partially written output is removed when the run fails.
func (b *Builder) Build(ctx context.Context, storyboardText, outputPath string) (string, error) {
	scenes, err := storyboard.Parse(storyboardText)
	if err != nil {
		return "", err
	}

	cfg := *b.Config
	cfg.OutputVideo = outputPath
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	src := source.NewStoryboardSource(scenes, b.Renderer, cfg.Width, cfg.Height)
	defer src.Close()

	project := NewVideoProject(&cfg, src, b.Encoder, b.Effect)
	project.Probe = b.Probe

	if err := project.Run(ctx); err != nil {
		b.logger.Error().Err(err).Str("output", outputPath).Int("scenes", len(scenes)).Msg("render failed")
		if rmErr := os.Remove(outputPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			b.logger.Warn().Err(rmErr).Str("output", outputPath).Msg("cannot remove partial output")
		}
		return "", err
	}

	return outputPath, nil
}

// NewFFmpegBuilder wires the font renderer and the ffmpeg encoder from cfg.
func NewFFmpegBuilder(cfg *config.Config) *Builder {
	r := renderer.New(renderer.Options{
		FontPath: cfg.FontPath,
		FontSize: cfg.FontSize,
		Margin:   cfg.Margin,
		LineGap:  cfg.LineGap,
	})
	return NewBuilder(cfg, r, video.NewFFmpegEncoder())
}
