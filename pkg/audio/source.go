package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/gen2brain/malgo"

	"github.com/keyscribe/dictation-engine/pkg/engineerr"
)

// DeviceSelector names the input device to open: a specific device id, or
// the system default when empty.
type DeviceSelector struct {
	Named string // empty selects the system default
}

// SourceConfig configures an AudioSource.
type SourceConfig struct {
	Device                DeviceSelector
	MuteDuringOtherOutput bool
	Gain                  float32 // [0, 2]; NewSource treats 0 as unset and uses 1
	Format                Format
}

// Source opens a malgo capture device and pushes 16-bit mono PCM frames to
// registered listeners. Capture runs on malgo's own callback thread; the
// registered OnFrame handler must hand frames off quickly.
type Source struct {
	cfg SourceConfig

	mu      sync.Mutex
	running bool
	device  *malgo.Device
	mctx    *malgo.AllocatedContext

	onFrame func([]byte)
	onError func(error)

	stopped chan struct{}
}

// NewSource builds a Source. It does not open the device until Start.
func NewSource(cfg SourceConfig) *Source {
	if cfg.Format == (Format{}) {
		cfg.Format = DefaultFormat
	}
	if cfg.Gain == 0 {
		cfg.Gain = 1
	}
	return &Source{cfg: cfg}
}

// OnFrame registers the callback invoked with each raw PCM block as it
// arrives. Must be called before Start.
func (s *Source) OnFrame(fn func([]byte)) { s.onFrame = fn }

// OnError registers the callback for Device-class errors. Source installs
// only a data callback on the malgo device, so device loss and overruns are
// not detected and this callback is not invoked by capture.
func (s *Source) OnError(fn func(error)) { s.onError = fn }

// Start opens the configured device and begins capture. Calling Start while
// already running is a Device-class error, not a no-op.
func (s *Source) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return engineerr.New(engineerr.KindDevice, fmt.Errorf("audio source already running"))
	}

	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return engineerr.New(engineerr.KindDevice, fmt.Errorf("init audio context: %w", err))
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = uint32(s.cfg.Format.Channels)
	deviceConfig.SampleRate = uint32(s.cfg.Format.SampleRate)
	deviceConfig.Alsa.NoMMap = 1

	callback := func(_, input []byte, _ uint32) {
		if input == nil || s.onFrame == nil {
			return
		}
		s.onFrame(applyGain(input, s.cfg.Gain))
	}

	device, err := malgo.InitDevice(mctx.Context, deviceConfig, malgo.DeviceCallbacks{Data: callback})
	if err != nil {
		mctx.Uninit()
		return engineerr.New(engineerr.KindDevice, fmt.Errorf("init audio device: %w", err))
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		mctx.Uninit()
		return engineerr.New(engineerr.KindDevice, fmt.Errorf("start audio device: %w", err))
	}

	s.mctx = mctx
	s.device = device
	s.running = true
	s.stopped = make(chan struct{})
	return nil
}

// Stop gracefully tears the device down, never blocking past a 200ms cap.
// Safe to call when not running.
func (s *Source) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}

	done := make(chan struct{})
	go func() {
		s.device.Uninit()
		s.mctx.Uninit()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(200 * time.Millisecond):
	}

	s.running = false
	close(s.stopped)
	s.device = nil
	s.mctx = nil
	return nil
}

// Running reports whether the device is currently capturing.
func (s *Source) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// reportError forwards a Device-class error to the registered handler, if
// any. The source never retries internally; recovery is the caller's call.
func (s *Source) reportError(err error) {
	if s.onError != nil {
		s.onError(engineerr.New(engineerr.KindDevice, err))
	}
}

func applyGain(samples []byte, gain float32) []byte {
	if gain == 1 {
		return samples
	}
	out := make([]byte, len(samples))
	for i := 0; i+1 < len(samples); i += 2 {
		s := int16(samples[i]) | int16(samples[i+1])<<8
		scaled := float32(s) * gain
		if scaled > 32767 {
			scaled = 32767
		}
		if scaled < -32768 {
			scaled = -32768
		}
		v := int16(scaled)
		out[i] = byte(v)
		out[i+1] = byte(v >> 8)
	}
	return out
}
