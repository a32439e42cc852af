package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}
}

func TestLoggerJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithOptions(Options{Level: "debug", Format: FormatJSON, Writer: &buf}); err != nil {
		t.Fatalf("init: %v", err)
	}

	Get().Debug(context.Background(), "pipeline finished",
		String("mode", "sum"),
		Int("rows", 3),
		Bool("per_game", true),
		Duration("took", 2*time.Millisecond),
	)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not json: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "pipeline finished" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["mode"] != "sum" || entry["per_game"] != true {
		t.Errorf("fields missing: %v", entry)
	}
	if src, _ := entry["source"].(string); !strings.Contains(src, "logger_test.go") {
		t.Errorf("source = %q", src)
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithOptions(Options{Level: "warn", Writer: &buf}); err != nil {
		t.Fatalf("init: %v", err)
	}
	defer func() { _ = SetLevelString("info") }()

	ctx := context.Background()
	Get().Info(ctx, "hidden")
	Get().Warn(ctx, "shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message leaked at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn message missing: %q", out)
	}
}

func TestLoggerNamed(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithOptions(Options{Format: FormatJSON, Writer: &buf}); err != nil {
		t.Fatalf("init: %v", err)
	}

	Named("repository").Info(context.Background(), "loaded", Int("records", 2))

	if !strings.Contains(buf.String(), `"repository":{`) {
		t.Errorf("expected grouped output, got %q", buf.String())
	}
}

func TestInitRejectsUnknownSettings(t *testing.T) {
	if err := InitWithOptions(Options{Format: "xml"}); err == nil {
		t.Error("expected error for unknown format")
	}
	if err := InitWithOptions(Options{Level: "loud"}); err == nil {
		t.Error("expected error for unknown level")
	}
	if err := SetLevelString("info"); err != nil {
		t.Errorf("reset level: %v", err)
	}
}
