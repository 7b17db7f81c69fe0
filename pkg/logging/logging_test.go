package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"disabled", zerolog.Disabled},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestWith_AddsComponent(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})
	defer Init(DefaultConfig())

	l := With("ranker")
	l.Debug().Int("n", 3).Msg("ranked")

	out := buf.String()
	for _, want := range []string{`"component":"ranker"`, `"n":3`, `"message":"ranked"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %s", out, want)
		}
	}
}

func TestInit_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "error", Output: &buf})
	defer Init(DefaultConfig())

	l := Logger()
	l.Info().Msg("hidden")
	if buf.Len() != 0 {
		t.Errorf("info log emitted at error level: %q", buf.String())
	}
}
