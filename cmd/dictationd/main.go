// Command dictationd is the demo host process: it wires every leaf package
// into a running Engine, binds three global hotkeys to its public API, and
// prints the resulting HostEvents to the terminal.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/godbus/dbus/v5"
	"golang.design/x/hotkey"
	"golang.design/x/mainthread"

	"github.com/keyscribe/dictation-engine/pkg/audio"
	"github.com/keyscribe/dictation-engine/pkg/config"
	"github.com/keyscribe/dictation-engine/pkg/delivery"
	"github.com/keyscribe/dictation-engine/pkg/engine"
	"github.com/keyscribe/dictation-engine/pkg/engineerr"
	"github.com/keyscribe/dictation-engine/pkg/logging"
	"github.com/keyscribe/dictation-engine/pkg/metrics"
	"github.com/keyscribe/dictation-engine/pkg/postprocess"
	"github.com/keyscribe/dictation-engine/pkg/stt"
	"github.com/keyscribe/dictation-engine/pkg/vad"
)

func main() {
	// golang.design/x/hotkey needs the process's OS thread dedicated to its
	// platform event loop on some platforms; mainthread.Init hands that
	// thread over and runs the rest of the program on a worker goroutine, the
	// library's documented usage shape.
	mainthread.Init(run)
}

func run() {
	if err := config.LoadDotEnv(""); err != nil {
		log.Println("Note:", err)
	}

	loader := config.NewLoader("DICTATION")
	if path := os.Getenv("DICTATION_CONFIG"); path != "" {
		loader.AddConfigFile(path)
	}
	cfg, err := loader.Load()
	if err != nil {
		log.Fatalf("dictationd: loading configuration: %v", err)
	}

	logger := logging.New(logging.Config{Component: "dictationd", LogTranscripts: cfg.Privacy.LogTranscripts})
	registry := metrics.NewRegistry(nil)

	vadPolicy, err := buildVADPolicy(cfg)
	if err != nil {
		log.Fatalf("dictationd: building VAD policy: %v", err)
	}

	source := audio.NewSource(audio.SourceConfig{
		Device:                audio.DeviceSelector{Named: cfg.Audio.Device.Named},
		MuteDuringOtherOutput: cfg.Audio.MuteWhileRecording,
		Format:                audio.DefaultFormat,
	})

	// dictationd keeps provider secrets in the environment.
	creds := config.NewEnvCredentialStore(map[string]string{
		"cloud_batch":     "OPENAI_API_KEY",
		"cloud_streaming": "DICTATION_STREAM_API_KEY",
		"openai":          "OPENAI_API_KEY",
	})

	dispatch, err := buildDispatcher(cfg, creds, logger)
	if err != nil {
		log.Fatalf("dictationd: building STT dispatcher: %v", err)
	}

	pipeline := buildPipeline(cfg, creds, logger)
	deliverer := buildDelivery(cfg, logger)

	eng := engine.New(engine.Deps{
		Config:    cfg,
		Logger:    logger,
		Registry:  registry,
		Source:    source,
		VADPolicy: vadPolicy,
		Dispatch:  dispatch,
		Pipeline:  pipeline,
		Deliverer: deliverer,
		Notifier:  stdoutNotifier{},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go eng.Run(ctx)
	go consumeEvents(eng)

	hotkeys := registerHotkeys(eng, logger)
	defer func() {
		for _, hk := range hotkeys {
			_ = hk.Unregister()
		}
	}()

	fmt.Println("Dictation engine started.")
	fmt.Println("  Ctrl+Alt+D   toggle dictation")
	fmt.Println("  Ctrl+Alt+T   paste as terminal")
	fmt.Println("  Ctrl+Alt+C   cancel")
	fmt.Println("Press Ctrl+C to exit.")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	fmt.Println("\nShutting down...")
	eng.Shutdown()
}

// buildVADPolicy selects the energy or neural policy per audio.vad_mode.
func buildVADPolicy(cfg config.Config) (vad.Policy, error) {
	switch cfg.Audio.VADMode {
	case config.VADModeNeural:
		modelPath := os.Getenv("DICTATION_VAD_MODEL_PATH")
		if modelPath == "" {
			return nil, fmt.Errorf("audio.vad_mode is neural but DICTATION_VAD_MODEL_PATH is not set")
		}
		sharedLib := os.Getenv("DICTATION_ONNXRUNTIME_PATH")
		return vad.NewNeuralPolicy(modelPath, sharedLib, 0.5)
	default:
		return vad.NewEnergyPolicy(cfg.Audio.SilenceThresholdDB), nil
	}
}

// buildDispatcher constructs one BatchProvider/StreamingProvider per entry
// in stt.providers that has its required credential stored, preserving the
// declared order. A provider named but missing credentials is skipped with
// a warning rather than aborting startup — the remaining chain may still
// be usable.
func buildDispatcher(cfg config.Config, creds config.CredentialStore, logger logging.Logger) (*stt.Dispatcher, error) {
	var batch []stt.BatchProvider
	var stream []stt.StreamingProvider

	for _, name := range cfg.STT.Providers {
		switch config.STTProviderKind(name) {
		case config.STTProviderLocal:
			// LocalProvider needs an in-process model catalog handle, which
			// this daemon does not ship; it is wired by embedders that own a
			// model runtime.
			logger.Warn("stt.providers names local but dictationd wires no model catalog, skipping")

		case config.STTProviderCloudBatch:
			key, ok := creds.Get("cloud_batch")
			if !ok {
				logger.Warn("stt.providers names cloud_batch but no credential is stored for it, skipping")
				continue
			}
			endpoint := os.Getenv("DICTATION_STT_ENDPOINT")
			if endpoint == "" {
				endpoint = "https://api.openai.com/v1/audio/transcriptions"
			}
			model := os.Getenv("DICTATION_STT_MODEL")
			if model == "" {
				model = "whisper-1"
			}
			batch = append(batch, stt.NewCloudBatchProvider("cloud_batch", key, endpoint, model, audio.DefaultFormat.SampleRate))

		case config.STTProviderCloudStreaming:
			key, ok := creds.Get("cloud_streaming")
			host := os.Getenv("DICTATION_STREAM_HOST")
			if !ok || host == "" {
				logger.Warn("stt.providers names cloud_streaming but its credential or DICTATION_STREAM_HOST is unset, skipping")
				continue
			}
			stream = append(stream, stt.NewCloudStreamingProvider("cloud_streaming", key, host, os.Getenv("DICTATION_STREAM_PATH")))

		default:
			logger.Warn("stt.providers names an unrecognized provider, skipping", "name", name)
		}
	}

	if len(batch) == 0 {
		return nil, fmt.Errorf("no usable batch STT provider configured (store a cloud_batch credential, or list a different provider in stt.providers)")
	}

	return stt.NewDispatcher(stt.Chain{Batch: batch, Stream: stream}, stt.Policy{
		StreamingEnabled:       len(stream) > 0 && cfg.STT.PreferredProvider == config.STTProviderCloudStreaming,
		CloudFallbackThreshold: cfg.STT.CloudFallbackThreshold,
	}), nil
}

// buildPipeline wires the default OpenAI-backed formatting stage when an API
// key is available; otherwise post-processing degrades to disabled even if
// postprocess.enabled is true, since there is no provider to run.
func buildPipeline(cfg config.Config, creds config.CredentialStore, logger logging.Logger) *postprocess.Pipeline {
	stages := cfg.PostProcess.Stages
	providers := map[string]postprocess.StageProvider{}

	if key, ok := creds.Get("openai"); ok {
		model := os.Getenv("DICTATION_POSTPROCESS_MODEL")
		if model == "" {
			model = "gpt-4o-mini"
		}
		stage, err := postprocess.NewOpenAIStage("openai", key, model, os.Getenv("DICTATION_POSTPROCESS_BASE_URL"))
		if err != nil {
			logger.Warn("failed to build openai postprocess stage", "error", err)
		} else {
			providers["openai"] = stage
			if len(stages) == 0 {
				stages = []config.StageConfig{{Name: "format", ProviderTag: "openai", Enabled: true}}
			}
		}
	}

	enabled := cfg.PostProcess.Enabled && len(providers) > 0
	descriptors := make([]postprocess.StageDescriptor, 0, len(stages))
	for _, s := range stages {
		descriptors = append(descriptors, postprocess.StageDescriptor{Name: s.Name, ProviderTag: s.ProviderTag, Enabled: s.Enabled})
	}

	return postprocess.NewPipeline(descriptors, providers, enabled, cfg.PostProcess.ContinueOnError, cfg.PostProcess.TotalBudgetMs)
}

// buildDelivery wires clipboard, X11, and (if a pre-established portal
// session is available) Wayland paste executors.
func buildDelivery(cfg config.Config, logger logging.Logger) *delivery.TextDelivery {
	var portal delivery.PasteExecutor
	if sess := os.Getenv("DICTATION_PORTAL_SESSION"); sess != "" {
		p, err := delivery.NewPortalPasteExecutor(dbus.ObjectPath(sess))
		if err != nil {
			logger.Warn("failed to connect desktop portal, Wayland paste disabled", "error", err)
		} else {
			portal = p
		}
	}
	x11 := delivery.NewXDoToolPasteExecutor()
	return delivery.NewTextDelivery(portal, x11, cfg.Delivery.TerminalPasteChord)
}

// stdoutNotifier prints user-visible notifications to the terminal, in
// lieu of a desktop notification daemon.
type stdoutNotifier struct{}

func (stdoutNotifier) Notify(title, body string) {
	fmt.Printf("\r\033[K🔔 [%s] %s\n", title, body)
}

// consumeEvents prints each HostEvent to the terminal.
func consumeEvents(eng *engine.Engine) {
	for ev := range eng.Events() {
		switch ev.Kind {
		case engine.HostEventStateChanged:
			fmt.Printf("\r\033[K state -> %s\n", ev.State)
		case engine.HostEventSessionStarted:
			fmt.Printf("\r\033[K🎤 [SESSION] started %s\n", ev.SessionID)
		case engine.HostEventSessionCompleted:
			fmt.Printf("\r\033[K📝 [TRANSCRIPT] %s (stt=%dms post=%dms inject=%dms total=%dms, provider=%s, fallback=%v)\n",
				ev.Text, ev.Latency.STT, ev.Latency.Post, ev.Latency.Injection, ev.Latency.Total, ev.Provider, ev.UsedFallback)
		case engine.HostEventClipboardOnly:
			fmt.Printf("\r\033[K📋 [CLIPBOARD ONLY] %s\n", ev.Reason)
		case engine.HostEventError:
			fmt.Printf("\r\033[K❌ [ERROR] %s: %s\n", ev.ErrorKind, ev.Message)
			if ev.ErrorKind == engineerr.KindConfig {
				eng.Reset()
			}
		}
	}
}

// registerHotkeys binds the three host commands to global hotkeys. A chord
// that fails to register (already bound by another application) is logged
// and skipped rather than aborting startup.
func registerHotkeys(eng *engine.Engine, logger logging.Logger) []*hotkey.Hotkey {
	bindings := []struct {
		mods []hotkey.Modifier
		key  hotkey.Key
		fn   func()
	}{
		{[]hotkey.Modifier{hotkey.ModCtrl, hotkey.Mod1}, hotkey.KeyD, eng.Toggle},
		{[]hotkey.Modifier{hotkey.ModCtrl, hotkey.Mod1}, hotkey.KeyT, eng.PasteAsTerminal},
		{[]hotkey.Modifier{hotkey.ModCtrl, hotkey.Mod1}, hotkey.KeyC, eng.Cancel},
	}

	var registered []*hotkey.Hotkey
	for _, b := range bindings {
		hk := hotkey.New(b.mods, b.key)
		if err := hk.Register(); err != nil {
			logger.Warn("failed to register hotkey, skipping", "key", b.key, "error", err)
			continue
		}
		registered = append(registered, hk)
		fn := b.fn
		go func() {
			for range hk.Keydown() {
				fn()
			}
		}()
	}
	return registered
}
