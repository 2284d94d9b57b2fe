package engine

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/ivlev/story2video/internal/analyzer"
	"github.com/ivlev/story2video/internal/config"
	"github.com/ivlev/story2video/internal/director"
	"github.com/ivlev/story2video/internal/effects"
	"github.com/ivlev/story2video/internal/logging"
	"github.com/ivlev/story2video/internal/palette"
	"github.com/ivlev/story2video/internal/source"
	"github.com/ivlev/story2video/internal/system"
	"github.com/ivlev/story2video/internal/video"
)

// BenchmarkLog receives one line per run when stats are enabled.
const BenchmarkLog = "benchmark.log"

type VideoProject struct {
	Config  *config.Config
	Source  source.Source
	Encoder video.VideoEncoder
	Effect  effects.Effect
	// Probe inspects the finished file for the log; nil skips it.
	Probe func(path string) (*video.VideoInfo, error)

	tempDir string
	logger  zerolog.Logger
}

func NewVideoProject(cfg *config.Config, src source.Source, ve video.VideoEncoder, eff effects.Effect) *VideoProject {
	if eff == nil {
		eff = &effects.HoldEffect{}
	}
	return &VideoProject{
		Config:  cfg,
		Source:  src,
		Encoder: ve,
		Effect:  eff,
		Probe:   video.Probe,
		logger:  logging.WithComponent("engine"),
	}
}

// Run renders and encodes every scene in order, then joins the segments into
// Config.OutputVideo. Only one frame is alive at a time.
func (p *VideoProject) Run(ctx context.Context) error {
	startTime := time.Now()
	var renderTime, encodeTime time.Duration

	sceneCount := p.Source.SceneCount()
	scenes := make([]string, sceneCount)
	for i := range scenes {
		scenes[i] = p.Source.Scene(i)
	}

	plan, err := director.NewPlan(scenes, p.Config.TotalDuration, p.Config.FPS, p.Config.Width, p.Config.Height)
	if err != nil {
		return err
	}

	if p.Config.PlanOutput != "" {
		if err := director.WritePlan(plan, p.Config.PlanOutput); err != nil {
			return fmt.Errorf("write plan: %w", err)
		}
		p.logger.Info().Str("plan", p.Config.PlanOutput).Msg("plan written")
	}

	p.tempDir, err = os.MkdirTemp("", "story2video_")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(p.tempDir); err != nil {
			p.logger.Warn().Err(err).Str("dir", p.tempDir).Msg("cannot remove temp dir")
		}
	}()

	p.logger.Info().
		Int("scenes", sceneCount).
		Str("resolution", fmt.Sprintf("%dx%d", p.Config.Width, p.Config.Height)).
		Int("fps", p.Config.FPS).
		Float64("duration", p.Config.TotalDuration).
		Int("frames", plan.TotalFrames()).
		Msg("rendering storyboard")

	segments := make([]string, 0, sceneCount)
	for i, slide := range plan.Slides {
		if err := ctx.Err(); err != nil {
			return err
		}

		t0 := time.Now()
		img, err := p.Source.RenderScene(i)
		if err != nil {
			return &video.EncodingError{Stage: video.StageRender, Scene: i, Err: err}
		}
		renderTime += time.Since(t0)

		p.checkText(i, slide.Text, img)

		params := config.SegmentParams{
			Width:      p.Config.Width,
			Height:     p.Config.Height,
			FPS:        p.Config.FPS,
			Duration:   slide.Duration,
			Frames:     slide.Frames,
			SceneIndex: i,
		}
		params.Filter = p.Effect.GenerateFilter(params)

		segPath := filepath.Join(p.tempDir, fmt.Sprintf("s%03d.mp4", i))

		t1 := time.Now()
		err = p.Encoder.EncodeSegment(ctx, img, segPath, params, p.Config.VideoEncoder, p.Config.Quality)
		system.PutImage(img)
		if err != nil {
			return &video.EncodingError{Stage: video.StageEncode, Scene: i, Err: err}
		}
		encodeTime += time.Since(t1)

		segments = append(segments, segPath)
		p.logger.Debug().
			Int("scene", i+1).
			Int("frames", slide.Frames).
			Float64("duration", slide.Duration).
			Str("background", slide.Background).
			Msg("segment ready")
	}

	concatStart := time.Now()
	if err := p.Encoder.Concatenate(ctx, segments, p.Config.OutputVideo, p.tempDir); err != nil {
		return &video.EncodingError{Stage: video.StageConcat, Scene: -1, Err: err}
	}
	concatTime := time.Since(concatStart)

	p.logResult()

	if p.Config.ShowStats {
		p.reportStats(sceneCount, time.Since(startTime), renderTime, encodeTime, concatTime)
	}

	return nil
}

// checkText warns about backgrounds that make white text hard to read and
// about cards where no text was drawn. It returns the number of text lines found.
func (p *VideoProject) checkText(i int, text string, img image.Image) int {
	bg := palette.Pick(palette.Seed(text))
	ratio := analyzer.ContrastRatio(bg, color.White)
	if ratio < analyzer.MinTextContrast {
		p.logger.Warn().
			Int("scene", i+1).
			Float64("contrast", ratio).
			Str("background", fmt.Sprintf("#%02x%02x%02x", bg.R, bg.G, bg.B)).
			Msg("low text contrast")
	}

	detector, err := analyzer.NewDetector(p.Config.TextDetector, bg)
	if err != nil {
		p.logger.Warn().Err(err).Msg("text check skipped")
		return 0
	}
	blocks, err := detector.Detect(img)
	if err != nil {
		p.logger.Warn().Err(err).Int("scene", i+1).Msg("text check failed")
		return 0
	}
	if len(blocks) == 0 {
		p.logger.Warn().Int("scene", i+1).Msg("no visible text on card")
	}
	return len(blocks)
}

func (p *VideoProject) logResult() {
	if p.Probe == nil {
		p.logger.Info().Str("output", p.Config.OutputVideo).Msg("video assembled")
		return
	}

	info, err := p.Probe(p.Config.OutputVideo)
	if err != nil {
		p.logger.Warn().Err(err).Str("output", p.Config.OutputVideo).Msg("cannot probe output")
		return
	}
	p.logger.Info().
		Str("output", p.Config.OutputVideo).
		Dur("duration", info.Duration).
		Str("codec", info.VideoCodec).
		Str("resolution", fmt.Sprintf("%dx%d", info.Width, info.Height)).
		Float64("fps", info.FPS).
		Msg("video assembled")
}

func (p *VideoProject) reportStats(scenes int, total, render, encode, concat time.Duration) {
	rate := float64(scenes) / total.Seconds()

	var rssMB float64
	if rss, err := system.ProcessRSS(); err == nil {
		rssMB = float64(rss) / (1 << 20)
	} else {
		p.logger.Warn().Err(err).Msg("cannot read process memory")
	}

	fmt.Printf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Total Time: %.2fs\n"+
			"Rendering: %.2fs\n"+
			"Encoding: %.2fs\n"+
			"Concatenation: %.2fs\n"+
			"Scenes/s: %.2f\n"+
			"RSS: %.1f MB\n"+
			"----------------------------\n",
		p.Config.BuildVersion, total.Seconds(), render.Seconds(), encode.Seconds(), concat.Seconds(), rate, rssMB,
	)

	logEntry := fmt.Sprintf("[%s] Build: %s | Output: %s | Scenes: %d | Total: %.2fs | Render: %.2fs | Encode: %.2fs | Concat: %.2fs | RSS: %.1fMB\n",
		time.Now().Format("2006-01-02 15:04:05"),
		p.Config.BuildVersion,
		filepath.Base(p.Config.OutputVideo),
		scenes,
		total.Seconds(),
		render.Seconds(),
		encode.Seconds(),
		concat.Seconds(),
		rssMB,
	)

	f, err := os.OpenFile(BenchmarkLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		p.logger.Warn().Err(err).Msg("cannot write benchmark.log")
		return
	}
	defer f.Close()
	if _, err := f.WriteString(logEntry); err != nil {
		p.logger.Warn().Err(err).Msg("cannot write benchmark.log")
	}
}
