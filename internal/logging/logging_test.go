package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestNewLogger(t *testing.T) {
	var a, b bytes.Buffer

	single := NewLogger(&a)
	single.Info().Int("scene", 3).Msg("segment ready")

	var entry map[string]any
	if err := json.Unmarshal(a.Bytes(), &entry); err != nil {
		t.Fatalf("not JSON: %q", a.String())
	}
	if entry["message"] != "segment ready" || entry["scene"] != float64(3) {
		t.Errorf("entry = %v", entry)
	}

	a.Reset()
	multi := NewLogger(&a, &b)
	multi.Warn().Msg("both")
	if !strings.Contains(a.String(), "both") || !strings.Contains(b.String(), "both") {
		t.Errorf("multi writer output: %q / %q", a.String(), b.String())
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(prevLevel)
	})

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = NewLogger(&buf)
	l := WithComponent("engine")
	l.Info().Msg("hello")

	if !strings.Contains(buf.String(), `"component":"engine"`) {
		t.Errorf("component field missing: %q", buf.String())
	}
}

func TestInit(t *testing.T) {
	prev := log.Logger
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(prevLevel)
	})

	Init(true)
	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Errorf("verbose level = %s", zerolog.GlobalLevel())
	}
	Init(false)
	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Errorf("default level = %s", zerolog.GlobalLevel())
	}
}
