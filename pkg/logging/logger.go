// Package logging implements the engine's structured log sink.
//
// Every component logs through the Logger interface so call sites never
// depend on the concrete backend. RedactingLogger is the production
// implementation: it wraps
// zerolog and runs every record through a declarative field-masking policy
// before it reaches the sink, so transcript text and credentials never land
// in a log file unredacted.
package logging

import (
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

// Logger is the interface every engine component logs through.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// NoOpLogger discards everything. Useful as a zero-value default so callers
// never need a nil check.
type NoOpLogger struct{}

func (NoOpLogger) Debug(string, ...interface{}) {}
func (NoOpLogger) Info(string, ...interface{})  {}
func (NoOpLogger) Warn(string, ...interface{})  {}
func (NoOpLogger) Error(string, ...interface{}) {}

// sensitiveKeyPattern matches context keys whose values must never be
// logged unmasked.
var sensitiveKeyPattern = regexp.MustCompile(`(?i)^(api[_-]?key|secret|authorization|token|password|credential|xi-api-key|private[_-]?key)$`)

// apiKeyLikePattern catches recognizable API-key shaped substrings inside
// free-text values (e.g. an error message that echoed a bearer token back).
var apiKeyLikePattern = regexp.MustCompile(`\b(sk-[A-Za-z0-9_-]{10,}|Bearer\s+[A-Za-z0-9._-]{10,}|Token\s+[A-Za-z0-9._-]{10,})\b`)

const maskedValue = "***REDACTED***"

// RedactingLogger is a structured JSON log sink with recursive redaction.
type RedactingLogger struct {
	zl             zerolog.Logger
	component      string
	logTranscripts bool
}

// Config controls the RedactingLogger's behavior.
type Config struct {
	// Writer is the underlying sink. Defaults to os.Stderr.
	Writer io.Writer
	// Component is stamped on every record, tagging log lines with a
	// subsystem name.
	Component string
	// LogTranscripts, when false (the privacy.log_transcripts default),
	// replaces the value of any transcript key (text, transcript, raw_text,
	// final_text and their unseparated forms) with a placeholder. Transcript
	// text under any other key, or in the message itself, is not detected.
	LogTranscripts bool
}

// New builds a RedactingLogger writing structured JSON records.
func New(cfg Config) *RedactingLogger {
	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}
	zl := zerolog.New(w).With().Timestamp().Str("component", cfg.Component).Logger()
	return &RedactingLogger{zl: zl, component: cfg.Component, logTranscripts: cfg.LogTranscripts}
}

// WithComponent returns a logger tagged with a different component name,
// sharing the same sink and redaction policy.
func (l *RedactingLogger) WithComponent(component string) *RedactingLogger {
	return &RedactingLogger{
		zl:             l.zl.With().Str("component", component).Logger(),
		component:      component,
		logTranscripts: l.logTranscripts,
	}
}

func (l *RedactingLogger) Debug(msg string, args ...interface{}) { l.emit(zerolog.DebugLevel, msg, args) }
func (l *RedactingLogger) Info(msg string, args ...interface{})  { l.emit(zerolog.InfoLevel, msg, args) }
func (l *RedactingLogger) Warn(msg string, args ...interface{})  { l.emit(zerolog.WarnLevel, msg, args) }
func (l *RedactingLogger) Error(msg string, args ...interface{}) { l.emit(zerolog.ErrorLevel, msg, args) }

// emit fans args out as alternating key/value pairs
// (Info(msg, "key", value, "key2", value2, ...)) and redacts each pair
// before handing it to zerolog.
func (l *RedactingLogger) emit(level zerolog.Level, msg string, args []interface{}) {
	ev := l.zl.WithLevel(level)
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		ev = ev.Interface(key, l.redactValue(key, args[i+1]))
	}
	ev.Msg(msg)
}

func (l *RedactingLogger) redactValue(key string, value interface{}) interface{} {
	if sensitiveKeyPattern.MatchString(strings.TrimSpace(key)) {
		return maskedValue
	}
	if isTranscriptKey(key) && !l.logTranscripts {
		return "<transcript elided>"
	}
	switch v := value.(type) {
	case string:
		return redactString(v)
	case map[string]interface{}:
		return l.redactMap(v)
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = l.redactValue("", item)
		}
		return out
	default:
		return value
	}
}

func (l *RedactingLogger) redactMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = l.redactValue(k, v)
	}
	return out
}

func isTranscriptKey(key string) bool {
	switch strings.ToLower(key) {
	case "transcript", "text", "raw_text", "final_text", "rawtext", "finaltext":
		return true
	default:
		return false
	}
}

func redactString(s string) string {
	return apiKeyLikePattern.ReplaceAllString(s, maskedValue)
}
