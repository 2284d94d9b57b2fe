package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ivlev/story2video/internal/bot"
	"github.com/ivlev/story2video/internal/config"
	"github.com/ivlev/story2video/internal/director"
	"github.com/ivlev/story2video/internal/engine"
	"github.com/ivlev/story2video/internal/llm"
	"github.com/ivlev/story2video/internal/logging"
	"github.com/ivlev/story2video/internal/system"
	"github.com/ivlev/story2video/internal/worker"
)

// Set with -ldflags "-X main.buildVersion=..."
var buildVersion = "dev"

// storyboardDir is searched for the newest storyboard when render gets no file.
const storyboardDir = "input/storyboards"

var (
	cfgFile string
	verbose bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "story2video",
	Short:        "story2video - turn a prompt into a storyboard video",
	Long:         "Generates a scene storyboard with a chat model and renders it as a fixed-length MP4 of text cards.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(verbose)
		system.InitResourceLimits()

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg.BuildVersion = buildVersion

		cmd.SetContext(config.WithConfig(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	renderCmd.Flags().StringP("output", "o", "", "output video (default: <output_dir>/<name>_<timestamp>.mp4)")
	renderCmd.Flags().Float64P("duration", "d", 0, "total video length in seconds (default from config)")
	renderCmd.Flags().Int("width", 0, "frame width")
	renderCmd.Flags().Int("height", 0, "frame height")
	renderCmd.Flags().String("preset", "", "format preset: 16:9, 9:16 (Shorts/TikTok), 4:5 (Instagram)")
	renderCmd.Flags().String("font", "", "TrueType/OpenType font file")
	renderCmd.Flags().Int("quality", 0, "quality (0 = auto; x264: CRF 1-51, VideoToolbox: bitrate = Q*100 kbit/s)")
	renderCmd.Flags().Bool("plan", false, "write the YAML plan next to the output")
	renderCmd.Flags().Bool("stats", false, "print timings and append them to benchmark.log")

	configInitCmd.Flags().BoolP("force", "f", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(botCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(storyboardCmd)
	rootCmd.AddCommand(configCmd)
}

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		resolveEncoder(cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}

		messenger, err := bot.NewTelegramMessenger(cfg.Telegram.Token)
		if err != nil {
			return err
		}

		pool := worker.NewPool(cfg.Workers)
		handler := bot.NewHandler(
			messenger,
			llm.NewOpenAIGenerator(cfg.LLM),
			engine.NewFFmpegBuilder(cfg),
			pool,
			cfg.OutputDir,
			cfg.RequestTimeout,
		)

		log.Info().
			Str("model", cfg.LLM.Model).
			Int("workers", pool.Size()).
			Str("output_dir", cfg.OutputDir).
			Float64("duration", cfg.TotalDuration).
			Str("encoder", cfg.VideoEncoder).
			Msg("bot starting")

		err = messenger.Run(cmd.Context(), handler)
		pool.Wait()
		return err
	},
}

var renderCmd = &cobra.Command{
	Use:   "render [storyboard file | -]",
	Short: "Render a storyboard file to MP4",
	Long:  "Renders one scene per non-empty line. Without a file the newest .txt/.md in " + storyboardDir + " is used; - reads stdin.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		if err := applyRenderFlags(cmd, cfg); err != nil {
			return err
		}
		resolveEncoder(cfg)

		input := ""
		if len(args) == 1 {
			input = args[0]
		}
		text, name, err := readStoryboard(input)
		if err != nil {
			return err
		}

		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			output = defaultOutput(cfg.OutputDir, name)
		}
		if plan, _ := cmd.Flags().GetBool("plan"); plan {
			cfg.PlanOutput = director.PlanPath(output)
		}

		path, err := engine.NewFFmpegBuilder(cfg).Build(cmd.Context(), text, output)
		if err != nil {
			return err
		}

		log.Info().Str("output", path).Msg("video ready")
		return nil
	},
}

var storyboardCmd = &cobra.Command{
	Use:   "storyboard <prompt>",
	Short: "Ask the model for a storyboard and print it",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout)
		defer cancel()

		text, err := llm.NewOpenAIGenerator(cfg.LLM).Storyboard(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default configuration as YAML (default: ./config.yaml)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "config.yaml"
		if len(args) == 1 {
			path = args[0]
		}
		if force, _ := cmd.Flags().GetBool("force"); !force {
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
		}

		// Defaults only: tokens from the environment stay out of the file.
		if err := config.Default().Save(path); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		log.Info().Str("config", path).Msg("config written")
		return nil
	},
}

// resolveEncoder replaces "auto" with the best H.264 encoder ffmpeg offers.
func resolveEncoder(cfg *config.Config) {
	if cfg.VideoEncoder != "auto" {
		return
	}
	cfg.VideoEncoder = system.GetBestH264Encoder()
	if cfg.VideoEncoder != "libx264" {
		log.Info().Str("encoder", cfg.VideoEncoder).Msg("hardware encoder detected")
	}
}

func applyRenderFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("duration") {
		cfg.TotalDuration, _ = flags.GetFloat64("duration")
	}
	if preset, _ := flags.GetString("preset"); preset != "" {
		if err := cfg.ApplyPreset(preset); err != nil {
			return err
		}
	}
	if flags.Changed("width") {
		cfg.Width, _ = flags.GetInt("width")
	}
	if flags.Changed("height") {
		cfg.Height, _ = flags.GetInt("height")
	}
	if font, _ := flags.GetString("font"); font != "" {
		cfg.FontPath = font
	}
	if flags.Changed("quality") {
		cfg.Quality, _ = flags.GetInt("quality")
	}
	if stats, _ := flags.GetBool("stats"); stats {
		cfg.ShowStats = true
	}
	return nil
}

// readStoryboard returns the storyboard text and a name for the output file.
func readStoryboard(input string) (string, string, error) {
	switch input {
	case "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), "stdin", nil
	case "":
		latest, err := system.FindLatest(storyboardDir, ".txt", ".md")
		if err != nil {
			return "", "", fmt.Errorf("%w (put a storyboard into %s/ or pass a file)", err, storyboardDir)
		}
		log.Info().Str("input", latest).Msg("using newest storyboard")
		input = latest
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return "", "", err
	}
	return string(data), input, nil
}

func defaultOutput(dir, name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.ReplaceAll(base, " ", "_")
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(dir, fmt.Sprintf("%s_%s_%s.mp4", base, timestamp, uuid.NewString()[:8]))
}
