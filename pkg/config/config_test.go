package config

import "testing"

func TestLoad_AppliesDefaultsWithNoFileOrEnv(t *testing.T) {
	l := NewLoader("")
	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.STT.PreferredProvider != STTProviderLocal {
		t.Errorf("expected local preferred provider by default, got %v", cfg.STT.PreferredProvider)
	}
	if cfg.STT.CloudFallbackThreshold != 0.85 {
		t.Errorf("expected default fallback threshold 0.85, got %v", cfg.STT.CloudFallbackThreshold)
	}
	if cfg.Metrics.TotalMs != 2000 {
		t.Errorf("expected default total_ms 2000, got %v", cfg.Metrics.TotalMs)
	}
	if cfg.Privacy.LogTranscripts {
		t.Error("expected log_transcripts false by default")
	}
}

func TestLoad_EnvOverridesDefault(t *testing.T) {
	t.Setenv("DICTATION_STT_PREFERRED_PROVIDER", "cloud_streaming")
	t.Setenv("DICTATION_PRIVACY_LOG_TRANSCRIPTS", "true")

	l := NewLoader("DICTATION")
	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.STT.PreferredProvider != STTProviderCloudStreaming {
		t.Errorf("expected env override to cloud_streaming, got %v", cfg.STT.PreferredProvider)
	}
	if !cfg.Privacy.LogTranscripts {
		t.Error("expected env override to enable log_transcripts")
	}
}

func TestLoad_RejectsInvalidPreferredProvider(t *testing.T) {
	t.Setenv("DICTATION_STT_PREFERRED_PROVIDER", "carrier_pigeon")
	l := NewLoader("DICTATION")
	if _, err := l.Load(); err == nil {
		t.Error("expected validation error for unrecognized preferred provider")
	}
}

func TestLoad_RejectsOutOfRangeFallbackThreshold(t *testing.T) {
	t.Setenv("DICTATION_STT_CLOUD_FALLBACK_THRESHOLD", "1.5")
	l := NewLoader("DICTATION")
	if _, err := l.Load(); err == nil {
		t.Error("expected validation error for out-of-range cloud_fallback_threshold")
	}
}

func TestLoadDotEnv_MissingFileIsNotFatal(t *testing.T) {
	if err := LoadDotEnv("/nonexistent/path/.env"); err == nil {
		t.Error("expected a wrapped error (not nil) when .env is absent, so callers can log and continue")
	}
}
