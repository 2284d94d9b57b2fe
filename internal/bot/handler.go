// Package bot serves the /video chat command.
package bot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ivlev/story2video/internal/llm"
	"github.com/ivlev/story2video/internal/logging"
	"github.com/ivlev/story2video/internal/storyboard"
	"github.com/ivlev/story2video/internal/worker"
)

// VideoCommand is the chat command the bot answers, without the slash.
const VideoCommand = "video"

// User-facing texts.
const (
	UsageText = "Please add a description after the command. For example:\n" +
		"<code>/video Make a video about a cat travelling to Mars</code>"
	StatusStoryboard = "Generating storyboard..."
	StatusRendering  = "Rendering video..."
	StatusReady      = "Video ready! Sending..."
	NoScenesText     = "Could not create the video: the model returned no scenes. Try a different prompt."
	FailureText      = "An error occurred while creating the video: %v"
)

// Messenger is the chat transport seen by the handler.
type Messenger interface {
	Reply(ctx context.Context, chatID int64, text string, html bool) (int, error)
	Edit(ctx context.Context, chatID int64, messageID int, text string) error
	SendVideo(ctx context.Context, chatID int64, path string) error
}

// VideoBuilder renders storyboard text to outputPath.
type VideoBuilder interface {
	Build(ctx context.Context, storyboardText, outputPath string) (string, error)
}

type Handler struct {
	Messenger Messenger
	Generator llm.Generator
	Builder   VideoBuilder
	Pool      *worker.Pool
	OutputDir string
	Timeout   time.Duration // whole request, storyboard included; 0 means none

	logger zerolog.Logger
	now    func() time.Time
	newID  func() string
}

func NewHandler(m Messenger, g llm.Generator, b VideoBuilder, pool *worker.Pool, outputDir string, timeout time.Duration) *Handler {
	return &Handler{
		Messenger: m,
		Generator: g,
		Builder:   b,
		Pool:      pool,
		OutputDir: outputDir,
		Timeout:   timeout,
		logger:    logging.WithComponent("bot"),
		now:       time.Now,
		newID:     shortID,
	}
}

func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// ParsePrompt returns everything after the command word, trimmed.
func ParsePrompt(text string) string {
	text = strings.TrimSpace(text)
	i := strings.IndexFunc(text, unicode.IsSpace)
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(text[i:])
}

// OutputPath names a fresh file in OutputDir: video_<UTC timestamp>_<8 hex>.mp4.
func (h *Handler) OutputPath() string {
	name := fmt.Sprintf("video_%s_%s.mp4", h.now().UTC().Format("20060102_150405"), h.newID())
	return filepath.Join(h.OutputDir, name)
}

// HandleVideo serves one /video message end to end. Errors are reported to
// the chat; the returned error is for logging only.
func (h *Handler) HandleVideo(ctx context.Context, chatID int64, text string) error {
	logger := h.logger.With().Int64("chat_id", chatID).Logger()

	prompt := ParsePrompt(text)
	if prompt == "" {
		_, err := h.Messenger.Reply(ctx, chatID, UsageText, true)
		return err
	}

	statusID, err := h.Messenger.Reply(ctx, chatID, StatusStoryboard, false)
	if err != nil {
		return fmt.Errorf("send status: %w", err)
	}

	reqCtx := ctx
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}

	path, err := h.produce(reqCtx, chatID, statusID, prompt)
	if err != nil {
		if errors.Is(err, storyboard.ErrNoScenes) || errors.Is(err, llm.ErrUpstreamContent) {
			logger.Warn().Err(err).Msg("storyboard had no scenes")
			h.edit(ctx, chatID, statusID, NoScenesText)
		} else {
			logger.Error().Err(err).Str("prompt", prompt).Msg("video generation failed")
			h.edit(ctx, chatID, statusID, fmt.Sprintf(FailureText, err))
		}
		return err
	}

	defer func() {
		if err := os.Remove(path); err != nil {
			logger.Warn().Err(err).Str("output", path).Msg("could not remove video file")
		}
	}()

	h.edit(ctx, chatID, statusID, StatusReady)
	if err := h.Messenger.SendVideo(ctx, chatID, path); err != nil {
		logger.Error().Err(err).Str("output", path).Msg("send video failed")
		h.edit(ctx, chatID, statusID, fmt.Sprintf(FailureText, err))
		return fmt.Errorf("send video: %w", err)
	}

	logger.Info().Str("output", path).Msg("video delivered")
	return nil
}

func (h *Handler) produce(ctx context.Context, chatID int64, statusID int, prompt string) (string, error) {
	sb, err := h.Generator.Storyboard(ctx, prompt)
	if err != nil {
		return "", err
	}

	h.edit(ctx, chatID, statusID, StatusRendering)

	output := h.OutputPath()

	// An abandoned job may still finish its file; whichever side comes last
	// removes it.
	var (
		mu        sync.Mutex
		path      string
		abandoned bool
	)
	err = h.Pool.Do(ctx, func(jobCtx context.Context) error {
		p, err := h.Builder.Build(jobCtx, sb, output)

		mu.Lock()
		defer mu.Unlock()
		if abandoned {
			h.discard(output)
			return err
		}
		path = p
		return err
	})
	if err != nil {
		mu.Lock()
		abandoned = true
		h.discard(output)
		mu.Unlock()
		return "", err
	}
	return path, nil
}

// discard removes a video that will not be sent.
func (h *Handler) discard(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		h.logger.Warn().Err(err).Str("output", path).Msg("could not remove abandoned video")
	}
}

// edit updates the status message; a failed edit is logged and ignored.
func (h *Handler) edit(ctx context.Context, chatID int64, messageID int, text string) {
	if err := h.Messenger.Edit(ctx, chatID, messageID, text); err != nil {
		h.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("cannot update status message")
	}
}
