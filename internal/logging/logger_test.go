package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
		ok   bool
	}{
		{"debug", LevelDebug, true},
		{"INFO", LevelInfo, true},
		{"Warning", LevelWarn, true},
		{"error", LevelError, true},
		{"verbose", LevelInfo, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseLevel(tt.in)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParseLevel(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelWarn, Output: &buf, Prefix: "test"})

	l.Info("hidden")
	l.Warn("shown %d", 42)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message written at warn level: %q", out)
	}
	if !strings.Contains(out, "[WARN] test: shown 42") {
		t.Errorf("output = %q", out)
	}
}

func TestLoggerFieldsAreSorted(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelDebug, Output: &buf}).
		WithComponent("buffer").
		WithFields(map[string]any{"id": 7, "alpha": "x"})

	l.Debug("edit")
	if !strings.Contains(buf.String(), "edit {alpha=x, component=buffer, id=7}") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestDerivedLoggerSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	parent := New(Config{Level: LevelInfo, Output: &buf})
	child := parent.WithField("k", "v")

	parent.SetLevel(LevelError)
	child.Warn("suppressed")
	if buf.Len() != 0 {
		t.Errorf("child ignored parent level: %q", buf.String())
	}
	if !child.Enabled(LevelError) || child.Enabled(LevelWarn) {
		t.Error("Enabled does not follow shared level")
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Error("nothing")
	if l.Enabled(LevelError) {
		t.Error("Nop logger reports enabled")
	}
}

func TestDefault(t *testing.T) {
	t.Cleanup(func() { SetDefault(nil) })

	if Default() == nil {
		t.Fatal("Default() = nil")
	}
	custom := Nop()
	SetDefault(custom)
	if Default() != custom {
		t.Error("SetDefault did not replace the default logger")
	}
	SetDefault(nil)
	if Default() == custom || Default() == nil {
		t.Error("SetDefault(nil) did not restore a built-in logger")
	}
}
