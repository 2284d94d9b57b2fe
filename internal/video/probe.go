package video

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// VideoInfo contains metadata about a video file
type VideoInfo struct {
	FilePath   string
	Duration   time.Duration
	Width      int
	Height     int
	FPS        float64
	Frames     int
	VideoCodec string
	HasAudio   bool
}

// Probe reads container and stream metadata with ffprobe.
func Probe(path string) (*VideoInfo, error) {
	raw, err := ffmpeg.Probe(path)
	if err != nil {
		return nil, errors.Wrapf(err, "ffprobe %s", path)
	}

	var probe probeResult
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return nil, errors.Wrap(err, "parse ffprobe output")
	}

	info := &VideoInfo{FilePath: path}
	if dur, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil {
		info.Duration = time.Duration(dur * float64(time.Second))
	}

	for _, stream := range probe.Streams {
		switch stream.CodecType {
		case "video":
			info.Width = stream.Width
			info.Height = stream.Height
			info.VideoCodec = stream.CodecName
			info.FPS = parseFrameRate(stream.RFrameRate)
			if n, err := strconv.Atoi(stream.NbFrames); err == nil {
				info.Frames = n
			}
		case "audio":
			info.HasAudio = true
		}
	}

	if info.VideoCodec == "" {
		return nil, errors.Errorf("%s has no video stream", path)
	}
	return info, nil
}

// parseFrameRate turns ffprobe's "24/1" into 24.
func parseFrameRate(rate string) float64 {
	num, den, found := strings.Cut(rate, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !found {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}

// probeResult matches ffprobe JSON output structure
type probeResult struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
		NbFrames   string `json:"nb_frames"`
	} `json:"streams"`
}
