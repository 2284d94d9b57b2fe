package config

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ivlev/story2video/internal/analyzer"
	"github.com/ivlev/story2video/internal/system"
)

type contextKey string

const configKey contextKey = "config"

type Config struct {
	OutputVideo    string        `yaml:"-"`
	OutputDir      string        `yaml:"output_dir"`
	TotalDuration  float64       `yaml:"video_duration"`
	Width          int           `yaml:"width"`
	Height         int           `yaml:"height"`
	FPS            int           `yaml:"fps"`
	Workers        int           `yaml:"workers"`
	Preset         string        `yaml:"preset"`
	VideoEncoder   string        `yaml:"video_encoder"`
	Quality        int           `yaml:"quality"`
	FontPath       string        `yaml:"font_path"`
	FontSize       float64       `yaml:"font_size"`
	Margin         int           `yaml:"margin"`
	LineGap        int           `yaml:"line_gap"`
	TextDetector   string        `yaml:"text_detector"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	ShowStats      bool          `yaml:"show_stats"`
	PlanOutput     string        `yaml:"-"`
	BuildVersion   string        `yaml:"-"`

	Telegram TelegramConfig `yaml:"telegram"`
	LLM      LLMConfig      `yaml:"llm"`
}

type TelegramConfig struct {
	Token string `yaml:"token"`
}

type LLMConfig struct {
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// SegmentParams describes one encoded scene segment.
type SegmentParams struct {
	Width, Height int
	FPS           int
	Duration      float64
	Frames        int
	SceneIndex    int
	Filter        string
}

// Default returns the built-in configuration: 60 seconds of 1280x720 at 24 fps,
// with the worker count sized to this machine.
func Default() *Config {
	return &Config{
		OutputDir:      "videos",
		TotalDuration:  60,
		Width:          1280,
		Height:         720,
		FPS:            24,
		Workers:        system.RecommendedWorkers(),
		VideoEncoder:   "libx264",
		FontSize:       42,
		Margin:         80,
		LineGap:        5,
		TextDetector:   "ink",
		RequestTimeout: 5 * time.Minute,
		LLM: LLMConfig{
			Model: "gpt-4o-mini",
		},
	}
}

// Load reads defaults, then the YAML file (explicit path or the first one found),
// then .env and process environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	// A missing .env is normal outside development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if cfg.Preset != "" {
		if err := cfg.ApplyPreset(cfg.Preset); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.Token = v
	}
	if v := os.Getenv("VIDEO_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv("VIDEO_DURATION"); v != "" {
		d, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("VIDEO_DURATION: %w", err)
		}
		c.TotalDuration = d
	}
	if v := os.Getenv("VIDEO_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("VIDEO_WORKERS: %w", err)
		}
		c.Workers = n
	}
	if v := os.Getenv("G4F_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("FONT_PATH"); v != "" {
		c.FontPath = v
	}
	return nil
}

// ApplyPreset switches the resolution to one of the named aspect presets.
func (c *Config) ApplyPreset(preset string) error {
	switch preset {
	case "16:9":
		c.Width, c.Height = 1280, 720
	case "9:16":
		c.Width, c.Height = 720, 1280
	case "4:5":
		c.Width, c.Height = 1080, 1350
	default:
		return fmt.Errorf("unknown preset %q (use 16:9, 9:16 or 4:5)", preset)
	}
	c.Preset = preset
	return nil
}

// Validate checks the rendering parameters. yuv420p needs even dimensions.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("resolution must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.Width%2 != 0 || c.Height%2 != 0 {
		return fmt.Errorf("resolution must be even, got %dx%d", c.Width, c.Height)
	}
	if c.TotalDuration <= 0 {
		return fmt.Errorf("duration must be positive, got %g", c.TotalDuration)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", c.FPS)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if _, err := analyzer.NewDetector(c.TextDetector, color.Black); err != nil {
		return err
	}
	return nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		"./config.yml",
		filepath.Join(os.Getenv("HOME"), ".story2video", "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return Default()
}
