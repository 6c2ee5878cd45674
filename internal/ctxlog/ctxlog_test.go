package ctxlog

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestFromContextWithoutLoggerDiscards(t *testing.T) {
	logger := FromContext(context.Background())
	if logger == nil {
		t.Fatal("expected a logger")
	}
	logger.Error("dropped")
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), New("info", &buf))

	FromContext(ctx).Debug("hidden")
	FromContext(ctx).Info("shown", "items", 3)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line leaked at info level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "items=3") {
		t.Fatalf("missing info line: %q", out)
	}
}

func TestValidLevel(t *testing.T) {
	for _, name := range []string{"debug", "INFO", "warn", "error"} {
		if !ValidLevel(name) {
			t.Fatalf("%q should be valid", name)
		}
	}
	if ValidLevel("trace") {
		t.Fatal("trace should be rejected")
	}
}
