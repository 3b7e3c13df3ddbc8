package logger

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"
)

func TestStdErrLoggerFiltersLevels(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)
	flags := log.Flags()
	log.SetFlags(0)
	defer log.SetFlags(flags)

	l := NewStdErrLogger(LogInfo)
	l.Debugf("hidden %d", 1)
	l.Infof("shown %d", 2)
	l.Errorf("failed %s", "badly")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Debug message logged at info level: %q", out)
	}
	if !strings.Contains(out, "INFO: shown 2") {
		t.Errorf("Expected info message, got %q", out)
	}
	if !strings.Contains(out, "ERROR: failed badly") {
		t.Errorf("Expected error message, got %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]LogLevel{"debug": LogDebug, "INFO": LogInfo, "Error": LogError}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; expected %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("Expected error for unknown level")
	}
}
