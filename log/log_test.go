package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func newTestLogger(buf *bytes.Buffer, level slog.Level) *Logger {
	h := slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: level})
	return NewWithHandler(h)
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal: %v (raw: %s)", err, buf.String())
	}
	return entry
}

func TestLogger_Module(t *testing.T) {
	var buf bytes.Buffer
	newTestLogger(&buf, slog.LevelDebug).Module("pairing").Info("table built")

	entry := decode(t, &buf)
	if entry["module"] != "pairing" {
		t.Fatalf("module = %v, want %q", entry["module"], "pairing")
	}
	if entry["msg"] != "table built" {
		t.Fatalf("msg = %v, want %q", entry["msg"], "table built")
	}
}

func TestLogger_ModuleChain(t *testing.T) {
	var buf bytes.Buffer
	newTestLogger(&buf, slog.LevelDebug).Module("ibe").With("id", "alice@example").Info("key issued")

	entry := decode(t, &buf)
	if entry["module"] != "ibe" || entry["id"] != "alice@example" {
		t.Fatalf("entry = %v", entry)
	}
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		level  slog.Level
		logFn  func(l *Logger)
		expect bool
	}{
		{slog.LevelInfo, func(l *Logger) { l.Debug("nope") }, false},
		{slog.LevelInfo, func(l *Logger) { l.Info("yes") }, true},
		{slog.LevelInfo, func(l *Logger) { l.Error("yes") }, true},
		{slog.LevelWarn, func(l *Logger) { l.Info("nope") }, false},
		{slog.LevelWarn, func(l *Logger) { l.Warn("yes") }, true},
		{slog.LevelDebug, func(l *Logger) { l.Trace("nope") }, false},
		{LevelTrace, func(l *Logger) { l.Trace("yes") }, true},
	}
	for i, tt := range tests {
		var buf bytes.Buffer
		tt.logFn(newTestLogger(&buf, tt.level))
		if got := buf.Len() > 0; got != tt.expect {
			t.Errorf("test %d: output=%v, want %v (level=%v)", i, got, tt.expect, tt.level)
		}
	}
}

func TestLogger_Handler(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, slog.LevelInfo)
	// A logger rebuilt from the exposed handler writes to the same sink.
	NewWithHandler(l.Handler()).Info("shared")
	if !strings.Contains(buf.String(), "shared") {
		t.Fatalf("handler did not share output: %s", buf.String())
	}
}

func TestDefaultLogger(t *testing.T) {
	if Default() == nil {
		t.Fatal("Default() returned nil")
	}
	var buf bytes.Buffer
	l := newTestLogger(&buf, slog.LevelDebug)
	SetDefault(l)
	defer SetDefault(New(slog.LevelInfo))

	Debug("d")
	Info("i", "k", "v")
	Warn("w")
	out := buf.String()
	for _, msg := range []string{`"msg":"d"`, `"msg":"i"`, `"msg":"w"`} {
		if !strings.Contains(out, msg) {
			t.Errorf("missing %s in output", msg)
		}
	}

	SetDefault(nil)
	if Default() != l {
		t.Fatal("SetDefault(nil) replaced the logger")
	}
}

func TestLevelForVerbosity(t *testing.T) {
	cases := map[int]slog.Level{
		0: LevelCrit,
		1: slog.LevelError,
		2: slog.LevelWarn,
		3: slog.LevelInfo,
		4: slog.LevelDebug,
		5: LevelTrace,
		9: LevelTrace,
	}
	for v, want := range cases {
		if got := LevelForVerbosity(v); got != want {
			t.Errorf("LevelForVerbosity(%d) = %v, want %v", v, got, want)
		}
	}

	// Verbosity 0 drops even errors.
	var buf bytes.Buffer
	newTestLogger(&buf, LevelForVerbosity(0)).Error("boom")
	if buf.Len() != 0 {
		t.Fatalf("verbosity 0 wrote %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"trace":   LevelTrace,
		"DEBUG":   slog.LevelDebug,
		" info ":  slog.LevelInfo,
		"":        slog.LevelInfo,
		"Warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"crit":    LevelCrit,
		"silent":  LevelCrit,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("ParseLevel accepted an unknown level")
	}
}
