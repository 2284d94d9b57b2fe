package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ivlev/story2video/internal/config"
	"github.com/ivlev/story2video/internal/renderer"
)

type VideoEncoder interface {
	EncodeSegment(ctx context.Context, img *image.RGBA, videoPath string, params config.SegmentParams, encoderName string, quality int) error
	Concatenate(ctx context.Context, segmentPaths []string, finalPath string, tmpDir string) error
}

// FFmpegEncoder drives the system ffmpeg binary.
type FFmpegEncoder struct {
	Binary string // defaults to "ffmpeg" from PATH
	logger zerolog.Logger
}

func NewFFmpegEncoder() *FFmpegEncoder {
	return &FFmpegEncoder{
		Binary: "ffmpeg",
		logger: log.Logger.With().Str("component", "ffmpeg").Logger(),
	}
}

func (e *FFmpegEncoder) binary() string {
	if e.Binary == "" {
		return "ffmpeg"
	}
	return e.Binary
}

// DefaultQuality picks the quality knob for an encoder when none is configured.
func DefaultQuality(encoderName string) int {
	switch encoderName {
	case "h264_videotoolbox":
		return 75 // bitrate = 7.5 Mbit/s
	case "h264_nvenc":
		return 28
	default:
		return 23 // x264 CRF
	}
}

// EncodeSegment pipes one RGB24 frame into ffmpeg and holds it for params.Frames frames.
func (e *FFmpegEncoder) EncodeSegment(
	ctx context.Context,
	img *image.RGBA,
	videoPath string,
	params config.SegmentParams,
	encoderName string,
	quality int,
) error {
	inputW, inputH := img.Bounds().Dx(), img.Bounds().Dy()
	args := e.buildFFmpegArgs(inputW, inputH, videoPath, params, encoderName, quality)

	e.logger.Debug().Strs("args", args).Int("scene", params.SceneIndex).Msg("encoding segment")

	cmd := exec.CommandContext(ctx, e.binary(), args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		stdin.Close()
		return fmt.Errorf("ffmpeg start: %w", err)
	}

	werr := writeRawRGB(stdin, img)
	stdin.Close()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg: %w\n%s", err, out.String())
	}
	if werr != nil {
		return fmt.Errorf("write frame: %w", werr)
	}

	return nil
}

func (e *FFmpegEncoder) buildFFmpegArgs(
	inputW, inputH int,
	videoPath string,
	params config.SegmentParams,
	encoderName string,
	quality int,
) []string {
	if encoderName == "" {
		encoderName = "libx264"
	}
	if quality <= 0 {
		quality = DefaultQuality(encoderName)
	}

	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-f", "rawvideo",
		"-pixel_format", "rgb24",
		"-video_size", fmt.Sprintf("%dx%d", inputW, inputH),
		"-framerate", fmt.Sprintf("%d", params.FPS),
		"-i", "-",
		"-vf", params.Filter,
		"-frames:v", fmt.Sprintf("%d", params.Frames),
		"-r", fmt.Sprintf("%d", params.FPS),
		"-an",
		"-pix_fmt", "yuv420p",
		"-c:v", encoderName,
	}

	switch encoderName {
	case "h264_videotoolbox":
		args = append(args, "-b:v", fmt.Sprintf("%dk", quality*100))
	case "h264_nvenc":
		args = append(args, "-cq", fmt.Sprintf("%d", quality))
	default: // libx264
		args = append(args, "-crf", fmt.Sprintf("%d", quality), "-preset", "medium")
	}

	args = append(args, videoPath)
	return args
}

func writeRawRGB(w io.Writer, img *image.RGBA) error {
	_, err := w.Write(renderer.RGB(img))
	return err
}

// Concatenate joins same-format segments in order without re-encoding.
// Parent directories of finalPath are created.
func (e *FFmpegEncoder) Concatenate(ctx context.Context, segmentPaths []string, finalPath string, tmpDir string) error {
	if len(segmentPaths) == 0 {
		return fmt.Errorf("no segments to concatenate")
	}

	if err := os.MkdirAll(filepath.Dir(finalPath), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	concatFilePath := filepath.Join(tmpDir, "inputs.txt")
	if err := writeConcatList(concatFilePath, segmentPaths); err != nil {
		return err
	}
	defer os.Remove(concatFilePath)

	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-f", "concat", "-safe", "0", "-i", concatFilePath,
		"-c", "copy", "-an",
		"-movflags", "+faststart",
		finalPath,
	}

	e.logger.Debug().Strs("args", args).Int("segments", len(segmentPaths)).Msg("concatenating")

	cmd := exec.CommandContext(ctx, e.binary(), args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg concat: %w, output: %s", err, string(out))
	}
	return nil
}

func writeConcatList(path string, segmentPaths []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create concat list: %w", err)
	}
	defer f.Close()

	for _, p := range segmentPaths {
		absPath, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(f, "file '%s'\n", absPath); err != nil {
			return fmt.Errorf("write concat list: %w", err)
		}
	}
	return f.Close()
}
