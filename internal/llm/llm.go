// Package llm asks an OpenAI-compatible chat model for a storyboard.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/rs/zerolog"

	"github.com/ivlev/story2video/internal/config"
	"github.com/ivlev/story2video/internal/logging"
)

// SystemPrompt steers the model towards a short bulleted scene list.
const SystemPrompt = "You create concise video storyboards. Return 8-12 short scenes " +
	"(bulleted list) that together form a coherent one-minute video."

// ErrUpstreamContent means the model answered with nothing usable.
var ErrUpstreamContent = errors.New("model returned no usable content")

type Generator interface {
	Storyboard(ctx context.Context, prompt string) (string, error)
}

// OpenAIGenerator makes one chat completion call per prompt, without retries.
type OpenAIGenerator struct {
	client openai.Client
	model  string
	logger zerolog.Logger
}

func NewOpenAIGenerator(cfg config.LLMConfig) *OpenAIGenerator {
	opts := []option.RequestOption{
		option.WithMaxRetries(0),
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	} else {
		// g4f-style gateways accept any key, but the client insists on one.
		opts = append(opts, option.WithAPIKey("none"))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = string(openai.ChatModelGPT4oMini)
	}

	return &OpenAIGenerator{
		client: openai.NewClient(opts...),
		model:  model,
		logger: logging.WithComponent("llm"),
	}
}

func (g *OpenAIGenerator) Storyboard(ctx context.Context, prompt string) (string, error) {
	g.logger.Debug().Str("model", g.model).Int("prompt_len", len(prompt)).Msg("requesting storyboard")

	chatCompletion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(SystemPrompt),
			openai.UserMessage(prompt),
		},
		Model: openai.ChatModel(g.model),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(chatCompletion.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrUpstreamContent)
	}

	msg := chatCompletion.Choices[0].Message
	text, err := contentFromRaw(msg.RawJSON())
	if err != nil {
		// Fall back to the typed field when the raw message is unavailable.
		text, err = NormalizeContent(msg.Content)
		if err != nil {
			return "", err
		}
	}

	g.logger.Debug().Int("chars", len(text)).Msg("storyboard received")
	return text, nil
}

// contentFromRaw pulls "content" out of the raw message JSON so that gateways
// returning non-string content shapes still work.
func contentFromRaw(raw string) (string, error) {
	if raw == "" {
		return "", ErrUpstreamContent
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamContent, err)
	}
	return NormalizeContent(m["content"])
}

// NormalizeContent flattens a message content value into text. It accepts a
// plain string, a mapping with a "content" or "text" key, or a sequence of
// such parts (joined without separator). Anything that yields no text is
// ErrUpstreamContent.
func NormalizeContent(content any) (string, error) {
	text := flatten(content)
	if strings.TrimSpace(text) == "" {
		return "", ErrUpstreamContent
	}
	return text, nil
}

func flatten(content any) string {
	switch v := content.(type) {
	case nil:
		return ""
	case string:
		return v
	case map[string]any:
		if c, ok := v["content"]; ok {
			return flatten(c)
		}
		if t, ok := v["text"]; ok {
			return flatten(t)
		}
		return ""
	case []any:
		var sb strings.Builder
		for _, part := range v {
			sb.WriteString(flatten(part))
		}
		return sb.String()
	case []string:
		return strings.Join(v, "")
	default:
		return ""
	}
}
