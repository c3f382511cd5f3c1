package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOutput(LevelWarn, &buf)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	out := buf.String()
	if strings.Contains(out, "debug message") {
		t.Error("debug message should be filtered at warn level")
	}
	if strings.Contains(out, "info message") {
		t.Error("info message should be filtered at warn level")
	}
	if !strings.Contains(out, "warn message") {
		t.Error("warn message should be logged")
	}
	if !strings.Contains(out, "error message") {
		t.Error("error message should be logged")
	}
}

func TestWithField(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOutput(LevelInfo, &buf)

	logger.Info("user created", WithField("userId", "abc-123"))

	out := buf.String()
	if !strings.Contains(out, "userId=abc-123") {
		t.Errorf("expected field in output, got %q", out)
	}
}

func TestWithFields_SortedKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOutput(LevelInfo, &buf)

	logger.Info("event", WithFields(map[string]interface{}{
		"zebra": 1,
		"alpha": 2,
	}))

	out := buf.String()
	alphaIdx := strings.Index(out, "alpha=2")
	zebraIdx := strings.Index(out, "zebra=1")
	if alphaIdx == -1 || zebraIdx == -1 {
		t.Fatalf("expected both fields in output, got %q", out)
	}
	if alphaIdx > zebraIdx {
		t.Error("fields should be emitted in sorted key order")
	}
}
