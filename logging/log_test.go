package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/tendermint/tendermint/libs/log"

	"github.com/vrsc-reserve/engine/config"
)

func TestDefaultLoggerIsNop(t *testing.T) {
	// must not panic with no Init call.
	Info("hello")
	Debug("hello")
	Error("hello")
}

func TestSetLoggerRoutesOutput(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(log.NewTMLogger(&buf))
	defer SetLogger(log.NewNopLogger())

	Info("clearing block", "height", 100)

	out := buf.String()
	if !strings.Contains(out, "clearing block") {
		t.Fatalf("expected output to contain log message, got %q", out)
	}
	if !strings.Contains(out, "height") {
		t.Fatalf("expected output to contain keyvals, got %q", out)
	}
}

func TestWithAddsContext(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(log.NewTMLogger(&buf))
	defer SetLogger(log.NewNopLogger())

	sub := With("module", "importer")
	sub.Info("processing transfer")

	out := buf.String()
	if !strings.Contains(out, "module") || !strings.Contains(out, "importer") {
		t.Fatalf("expected sub-logger context in output, got %q", out)
	}
}

func TestInitRejectsUnsupportedFormat(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on unsupported format")
		}
	}()
	cfg := config.DefaultConfig()
	cfg.LogFormat = "xml"
	InitLog(cfg)
}
