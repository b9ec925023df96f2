// Package config decodes the engine's configuration record with
// github.com/spf13/viper. The settings store itself — persistence, file
// watching, the UI that edits it — belongs to the host; this package only
// turns whatever that store hands back (a file path, environment
// variables) into a typed Config.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// STTProviderKind selects which provider variant the dispatcher prefers.
type STTProviderKind string

const (
	STTProviderLocal          STTProviderKind = "local"
	STTProviderCloudBatch     STTProviderKind = "cloud_batch"
	STTProviderCloudStreaming STTProviderKind = "cloud_streaming"
)

// VADMode selects the silence-detection policy.
type VADMode string

const (
	VADModeEnergy VADMode = "energy"
	VADModeNeural VADMode = "neural"
)

// AudioDevice names the input device, or the default.
type AudioDevice struct {
	Named string // empty means system default
}

type STTConfig struct {
	PreferredProvider      STTProviderKind
	Providers              []string
	CloudFallbackThreshold float64
	Language               string
	StreamingChunkMs       int
}

type AudioConfig struct {
	Device             AudioDevice
	SilenceTimeoutS    int
	SilenceThresholdDB float64
	VADMode            VADMode
	MuteWhileRecording bool
}

type StageConfig struct {
	Name        string
	ProviderTag string
	Enabled     bool
}

type PostProcessConfig struct {
	Enabled         bool
	Stages          []StageConfig
	ContinueOnError bool
	TotalBudgetMs   int64
}

type DeliveryConfig struct {
	TerminalPasteChord string
}

type MetricsConfig struct {
	STTMs                 int64
	PostMsDefaultProvider int64
	TotalMs               int64
}

type PrivacyConfig struct {
	LogTranscripts    bool
	StoreAudioLocally bool
}

// Config is the fully decoded configuration record.
type Config struct {
	STT         STTConfig
	Audio       AudioConfig
	PostProcess PostProcessConfig
	Delivery    DeliveryConfig
	Metrics     MetricsConfig
	Privacy     PrivacyConfig
}

// Defaults returns the engine's stock configuration.
func Defaults() Config {
	return Config{
		STT: STTConfig{
			PreferredProvider:      STTProviderLocal,
			Providers:              []string{"local"},
			CloudFallbackThreshold: 0.85,
			StreamingChunkMs:       100,
		},
		Audio: AudioConfig{
			SilenceTimeoutS:    30,
			SilenceThresholdDB: -40,
			VADMode:            VADModeEnergy,
		},
		PostProcess: PostProcessConfig{
			Enabled:         false,
			ContinueOnError: true,
			TotalBudgetMs:   1000,
		},
		Metrics: MetricsConfig{
			STTMs:                 1500,
			PostMsDefaultProvider: 250,
			TotalMs:               2000,
		},
		Privacy: PrivacyConfig{
			LogTranscripts:    false,
			StoreAudioLocally: false,
		},
	}
}

// Loader decodes a Config from a settings file, environment variables, and
// an optional local .env file, using viper's layered precedence (env >
// file > defaults).
type Loader struct {
	v *viper.Viper
}

// NewLoader builds a Loader seeded with Defaults(). envPrefix, if
// non-empty, scopes recognized environment variables (e.g. "DICTATION" maps
// stt.preferred_provider to DICTATION_STT_PREFERRED_PROVIDER).
func NewLoader(envPrefix string) *Loader {
	v := viper.New()
	v.SetConfigType("yaml")
	if envPrefix != "" {
		v.SetEnvPrefix(envPrefix)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	applyDefaults(v, Defaults())
	return &Loader{v: v}
}

// LoadDotEnv loads a local .env file into the process environment. A
// missing file is reported as a wrapped error that callers may log and
// ignore — system environment variables are a valid source on their own.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: no .env file at %s, using process environment: %w", path, err)
	}
	return nil
}

// AddConfigFile points the loader at a settings file (YAML, TOML, or JSON —
// whatever the settings store persists); Load tolerates it being absent.
func (l *Loader) AddConfigFile(path string) {
	l.v.SetConfigFile(path)
	if ext := strings.TrimPrefix(filepath.Ext(path), "."); slices.Contains(viper.SupportedExts, ext) {
		l.v.SetConfigType(ext)
	}
}

// Load reads the configured file (if any) and environment variables and
// decodes the result into a Config.
func (l *Loader) Load() (Config, error) {
	if l.v.ConfigFileUsed() != "" {
		if err := l.v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !errors.Is(err, fs.ErrNotExist) {
				return Config{}, fmt.Errorf("config: reading settings file: %w", err)
			}
		}
	}

	cfg := Defaults()
	cfg.STT.PreferredProvider = STTProviderKind(l.v.GetString("stt.preferred_provider"))
	if providers := l.v.GetStringSlice("stt.providers"); len(providers) > 0 {
		cfg.STT.Providers = providers
	}
	cfg.STT.CloudFallbackThreshold = l.v.GetFloat64("stt.cloud_fallback_threshold")
	cfg.STT.Language = l.v.GetString("stt.language")
	if ms := l.v.GetInt("stt.streaming_chunk_ms"); ms > 0 {
		cfg.STT.StreamingChunkMs = ms
	}

	if named := l.v.GetString("audio.device"); named != "" && !strings.EqualFold(named, "default") {
		cfg.Audio.Device = AudioDevice{Named: named}
	}
	cfg.Audio.SilenceTimeoutS = l.v.GetInt("audio.silence_timeout_s")
	cfg.Audio.SilenceThresholdDB = l.v.GetFloat64("audio.silence_threshold_db")
	cfg.Audio.VADMode = VADMode(l.v.GetString("audio.vad_mode"))
	cfg.Audio.MuteWhileRecording = l.v.GetBool("audio.mute_while_recording")

	cfg.PostProcess.Enabled = l.v.GetBool("postprocess.enabled")
	cfg.PostProcess.ContinueOnError = l.v.GetBool("postprocess.continue_on_error")
	if budget := l.v.GetInt64("postprocess.total_budget_ms"); budget > 0 {
		cfg.PostProcess.TotalBudgetMs = budget
	}
	var stages []StageConfig
	if err := l.v.UnmarshalKey("postprocess.stages", &stages); err == nil && len(stages) > 0 {
		cfg.PostProcess.Stages = stages
	}

	cfg.Delivery.TerminalPasteChord = l.v.GetString("delivery.terminal_paste_chord")

	if ms := l.v.GetInt64("metrics.thresholds.stt_ms"); ms > 0 {
		cfg.Metrics.STTMs = ms
	}
	if ms := l.v.GetInt64("metrics.thresholds.post_ms"); ms > 0 {
		cfg.Metrics.PostMsDefaultProvider = ms
	}
	if ms := l.v.GetInt64("metrics.thresholds.total_ms"); ms > 0 {
		cfg.Metrics.TotalMs = ms
	}

	cfg.Privacy.LogTranscripts = l.v.GetBool("privacy.log_transcripts")
	cfg.Privacy.StoreAudioLocally = l.v.GetBool("privacy.store_audio_locally")

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyDefaults(v *viper.Viper, d Config) {
	v.SetDefault("stt.preferred_provider", string(d.STT.PreferredProvider))
	v.SetDefault("stt.providers", d.STT.Providers)
	v.SetDefault("stt.cloud_fallback_threshold", d.STT.CloudFallbackThreshold)
	v.SetDefault("stt.streaming_chunk_ms", d.STT.StreamingChunkMs)
	v.SetDefault("audio.device", "default")
	v.SetDefault("audio.silence_timeout_s", d.Audio.SilenceTimeoutS)
	v.SetDefault("audio.silence_threshold_db", d.Audio.SilenceThresholdDB)
	v.SetDefault("audio.vad_mode", string(d.Audio.VADMode))
	v.SetDefault("audio.mute_while_recording", d.Audio.MuteWhileRecording)
	v.SetDefault("postprocess.enabled", d.PostProcess.Enabled)
	v.SetDefault("postprocess.continue_on_error", d.PostProcess.ContinueOnError)
	v.SetDefault("postprocess.total_budget_ms", d.PostProcess.TotalBudgetMs)
	v.SetDefault("metrics.thresholds.stt_ms", d.Metrics.STTMs)
	v.SetDefault("metrics.thresholds.post_ms", d.Metrics.PostMsDefaultProvider)
	v.SetDefault("metrics.thresholds.total_ms", d.Metrics.TotalMs)
	v.SetDefault("privacy.log_transcripts", d.Privacy.LogTranscripts)
	v.SetDefault("privacy.store_audio_locally", d.Privacy.StoreAudioLocally)
}

func validate(cfg Config) error {
	switch cfg.STT.PreferredProvider {
	case STTProviderLocal, STTProviderCloudBatch, STTProviderCloudStreaming:
	default:
		return fmt.Errorf("config: stt.preferred_provider %q is not one of local, cloud_batch, cloud_streaming", cfg.STT.PreferredProvider)
	}
	if cfg.STT.CloudFallbackThreshold < 0 || cfg.STT.CloudFallbackThreshold > 1 {
		return fmt.Errorf("config: stt.cloud_fallback_threshold %v outside [0,1]", cfg.STT.CloudFallbackThreshold)
	}
	switch cfg.Audio.VADMode {
	case VADModeEnergy, VADModeNeural:
	default:
		return fmt.Errorf("config: audio.vad_mode %q is not one of energy, neural", cfg.Audio.VADMode)
	}
	if cfg.Audio.SilenceTimeoutS < 0 {
		return fmt.Errorf("config: audio.silence_timeout_s must be >= 0")
	}
	return nil
}
