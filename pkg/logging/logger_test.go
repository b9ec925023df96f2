package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestRedactingLogger_MasksSensitiveKeys(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Writer: &buf, Component: "stt"})

	l.Info("dispatch", "api_key", "sk-verysecretvalue12345", "provider", "openai")

	var rec map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid JSON record: %v", err)
	}
	if rec["api_key"] != maskedValue {
		t.Errorf("expected api_key to be masked, got %v", rec["api_key"])
	}
	if rec["provider"] != "openai" {
		t.Errorf("unrelated field should be untouched, got %v", rec["provider"])
	}
}

func TestRedactingLogger_StripsTranscriptsByDefault(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Writer: &buf, Component: "stt", LogTranscripts: false})

	l.Info("result", "text", "the quick brown fox")

	var rec map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid JSON record: %v", err)
	}
	if rec["text"] == "the quick brown fox" {
		t.Error("transcript text should be elided when LogTranscripts is false")
	}
}

func TestRedactingLogger_KeepsTranscriptsWhenEnabled(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Writer: &buf, Component: "stt", LogTranscripts: true})

	l.Info("result", "text", "the quick brown fox")

	var rec map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid JSON record: %v", err)
	}
	if rec["text"] != "the quick brown fox" {
		t.Errorf("expected transcript preserved, got %v", rec["text"])
	}
}

func TestRedactingLogger_MasksAPIKeyShapedFreeText(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Writer: &buf, Component: "stt"})

	l.Error("request failed", "detail", "auth rejected for Bearer sk-abcdef0123456789")

	out := buf.String()
	if strings.Contains(out, "sk-abcdef0123456789") {
		t.Errorf("expected API-key-shaped text to be masked, got: %s", out)
	}
}

func TestNoOpLogger(t *testing.T) {
	var l Logger = NoOpLogger{}
	l.Debug("x")
	l.Info("x")
	l.Warn("x")
	l.Error("x")
}
