package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/keyscribe/dictation-engine/pkg/audio"
	"github.com/keyscribe/dictation-engine/pkg/config"
	"github.com/keyscribe/dictation-engine/pkg/delivery"
	"github.com/keyscribe/dictation-engine/pkg/engineerr"
	"github.com/keyscribe/dictation-engine/pkg/logging"
	"github.com/keyscribe/dictation-engine/pkg/metrics"
	"github.com/keyscribe/dictation-engine/pkg/postprocess"
	"github.com/keyscribe/dictation-engine/pkg/stt"
	"github.com/keyscribe/dictation-engine/pkg/vad"
)

// Notifier delivers user-visible non-fatal notifications (e.g. a
// clipboard-only fallback). The desktop notification daemon behind it is
// the host's concern.
type Notifier interface {
	Notify(title, body string)
}

// NoOpNotifier discards every notification. Used when the host wires none.
type NoOpNotifier struct{}

func (NoOpNotifier) Notify(string, string) {}

// audioFramesCapacity bounds the channel the capture callback pushes raw
// PCM onto. Sized generously relative to the default 100ms chunk so normal
// operation never contends it; see handleFrameBackpressure for what
// happens on the rare occasion it does.
const audioFramesCapacity = 512

// streamChunksCapacity bounds the channel feeding a live streaming-STT
// socket. Small and lossy by design — audio delivered to the VAD/streaming
// path may be dropped under backpressure; only the SessionBuffer side is
// lossless.
const streamChunksCapacity = 32

// AudioSource is the subset of *audio.Source the coordinator depends on.
// Declaring it here (rather than taking *audio.Source directly) lets tests
// drive the coordinator with a fake instead of an actual malgo capture
// device.
type AudioSource interface {
	OnFrame(fn func([]byte))
	OnError(fn func(error))
	Start() error
	Stop() error
	Running() bool
}

// Engine is the coordinator: a single logical goroutine (Run) that owns
// the active Session and serializes every external command and worker
// completion through one inbox channel — one event sum type, one loop, no
// locks, no re-entrancy.
type Engine struct {
	cfg    config.Config
	logger logging.Logger
	reg    *metrics.Registry

	format         audio.Format
	chunkMs        int
	silenceTimeout time.Duration
	maxBufferMs    int
	thresholds     metrics.Thresholds

	source    AudioSource
	vadPolicy vad.Policy
	dispatch  *stt.Dispatcher
	pipeline  *postprocess.Pipeline
	deliverer *delivery.TextDelivery
	notifier  Notifier

	sm *StateMachine

	inbox       chan any
	audioFrames chan []byte
	events      chan HostEvent

	session       *Session
	chunker       *audio.Chunker
	detector      *vad.Detector
	sessionCtx    context.Context
	sessionCancel context.CancelFunc

	streamSession stt.StreamSession
	streamChunks  chan []byte
	streamText    stt.TextAccumulator

	overflowing bool

	history *History

	done chan struct{}
}

// Deps bundles the components the Engine coordinates.
type Deps struct {
	Config    config.Config
	Logger    logging.Logger
	Registry  *metrics.Registry
	Source    AudioSource
	VADPolicy vad.Policy
	Dispatch  *stt.Dispatcher
	Pipeline  *postprocess.Pipeline
	Deliverer *delivery.TextDelivery
	Notifier  Notifier
}

// New builds an Engine wired from Deps and its configuration record. The
// Engine does not start running until Run is called.
func New(d Deps) *Engine {
	if d.Logger == nil {
		d.Logger = logging.NoOpLogger{}
	}
	if d.Notifier == nil {
		d.Notifier = NoOpNotifier{}
	}
	thresholds := metrics.Thresholds{
		STTMs:                 d.Config.Metrics.STTMs,
		PostMsDefaultProvider: d.Config.Metrics.PostMsDefaultProvider,
		TotalMs:               d.Config.Metrics.TotalMs,
	}
	e := &Engine{
		cfg:            d.Config,
		logger:         d.Logger,
		reg:            d.Registry,
		format:         audio.DefaultFormat,
		chunkMs:        d.Config.STT.StreamingChunkMs,
		silenceTimeout: time.Duration(d.Config.Audio.SilenceTimeoutS) * time.Second,
		maxBufferMs:    0, // use SessionBuffer's DefaultMaxBufferMs
		thresholds:     thresholds,
		source:         d.Source,
		vadPolicy:      d.VADPolicy,
		dispatch:       d.Dispatch,
		pipeline:       d.Pipeline,
		deliverer:      d.Deliverer,
		notifier:       d.Notifier,
		sm:             NewStateMachine(),
		inbox:          make(chan any, 64),
		audioFrames:    make(chan []byte, audioFramesCapacity),
		events:         make(chan HostEvent, 64),
		history:        NewHistory(DefaultHistoryCapacity),
		done:           make(chan struct{}),
	}
	if e.chunkMs <= 0 {
		e.chunkMs = audio.DefaultChunkMs
	}
	e.source.OnFrame(e.onAudioFrame)
	e.source.OnError(e.onAudioError)
	return e
}

// Events returns the channel of HostEvents the coordinator emits.
func (e *Engine) Events() <-chan HostEvent { return e.events }

// RecentSessions returns the in-memory ring of completed dictations,
// newest first. This is the only transcript record the engine keeps —
// nothing is persisted.
func (e *Engine) RecentSessions() []HistoryEntry { return e.history.Recent() }

// State reports the current DictationState. Safe to call from any
// goroutine: states are only ever written by the coordinator loop, and Go's
// memory model guarantees a reader that later observes a channel send (any
// HostEventStateChanged) also observes the write that preceded it — callers
// that need a precise snapshot should instead read State off the most
// recent HostEventStateChanged.
func (e *Engine) State() State { return e.sm.State() }

// Toggle implements the hotkey source's toggle command: it starts a
// session from Idle, or requests a stop from Listening. It is a no-op in
// every other state.
func (e *Engine) Toggle() { e.send(cmdToggle{}) }

// PasteAsTerminal starts a session flagged IsTerminalPaste, so
// post-processing and delivery target the Terminal surface. Only
// meaningful from Idle; ignored otherwise, same as Toggle's
// idempotent-start guard.
func (e *Engine) PasteAsTerminal() { e.send(cmdStart{terminal: true}) }

// Cancel discards the active session. Valid in {Listening, Stopping,
// Processing, Injecting}; a no-op in Idle.
func (e *Engine) Cancel() { e.send(cmdCancel{}) }

// Reset implements Error -> Idle, the only way out of a surfaced error.
func (e *Engine) Reset() { e.send(cmdReset{}) }

// Shutdown stops the coordinator loop and tears down any active session.
func (e *Engine) Shutdown() {
	select {
	case <-e.done:
	default:
		close(e.done)
	}
}

func (e *Engine) send(msg any) {
	select {
	case e.inbox <- msg:
	case <-e.done:
	}
}

// cmd* are the external-command variants of the inbox's event sum type.
type (
	cmdToggle struct{}
	cmdCancel struct{}
	cmdReset  struct{}
	cmdStart  struct{ terminal bool }
)

// worker* are the worker-completion variants: results of blocking work
// reported back to the coordinator instead of blocking it.
type (
	workerCaptureStarted struct{}
	workerCaptureFailed  struct{ err error }
	workerCaptureStopped struct{}
	workerSTTDone        struct {
		res stt.Result
		err error
	}
	workerPostDone struct {
		res      postprocess.Result
		outcomes []postprocess.StageOutcome
	}
	workerDeliveryDone struct {
		res delivery.Result
		err error
	}
	workerStreamOpened struct {
		sess stt.StreamSession
		err  error
	}
	workerStreamTranscript struct{ ev stt.TranscriptEvent }
	workerStreamClosed     struct{ err error }
)

// Run is the coordinator's single event loop: it processes exactly one
// message at a time from inbox, so every state-machine transition is
// linearized. It blocks until ctx is done or Shutdown is called.
func (e *Engine) Run(ctx context.Context) {
	for {
		e.drainOverflow()
		select {
		case <-ctx.Done():
			e.teardownSession()
			return
		case <-e.done:
			e.teardownSession()
			return
		case raw := <-e.audioFrames:
			e.handleAudioFrame(raw)
		case msg := <-e.inbox:
			e.handleMessage(msg)
		}
	}
}

func (e *Engine) handleMessage(msg any) {
	switch m := msg.(type) {
	case cmdToggle:
		switch e.sm.State() {
		case StateIdle:
			e.handleStart(false)
		case StateListening:
			e.handleStopRequested()
		default:
			// Toggle in {Starting, Stopping, Processing, Injecting} is a
			// no-op to prevent re-entry races.
		}
	case cmdStart:
		if e.sm.State() == StateIdle {
			e.handleStart(m.terminal)
		}
	case cmdCancel:
		e.handleCancel()
	case cmdReset:
		e.applyTransition(EventReset)
	case workerCaptureStarted:
		e.handleCaptureStarted()
	case workerCaptureFailed:
		e.handleCaptureFailed(m.err)
	case workerCaptureStopped:
		e.handleCaptureStopped()
	// Worker results that arrive after a cancel (session torn down, or the
	// machine no longer in the stage that spawned the worker) are dropped.
	case workerSTTDone:
		if e.session != nil && e.sm.State() == StateProcessing {
			e.handleSTTDone(m.res, m.err)
		}
	case workerPostDone:
		if e.session != nil && e.sm.State() == StateProcessing {
			e.handlePostDone(m.res)
		}
	case workerDeliveryDone:
		if e.session != nil && e.sm.State() == StateInjecting {
			e.handleDeliveryDone(m.res, m.err)
		}
	case workerStreamOpened:
		e.handleStreamOpened(m.sess, m.err)
	case workerStreamTranscript:
		e.streamText.Apply(m.ev)
	case workerStreamClosed:
		e.handleStreamClosed(m.err)
	}
}

// applyTransition runs the StateMachine transition and, if it actually took
// effect, emits a HostEventStateChanged.
func (e *Engine) applyTransition(ev EventKind) Transition {
	t := e.sm.Transition(ev)
	if !t.Ignored {
		e.emit(HostEvent{Kind: HostEventStateChanged, State: t.Next})
	}
	return t
}

func (e *Engine) emit(ev HostEvent) {
	select {
	case e.events <- ev:
	default:
		e.logger.Warn("host event channel full, dropping event", "kind", ev.Kind)
	}
}

// --- Starting ---------------------------------------------------------

func (e *Engine) handleStart(terminal bool) {
	t := e.applyTransition(EventStart)
	if t.Ignored {
		return
	}

	e.session = newSession(e.format, e.maxBufferMs, e.thresholds, metrics.AlertSinkFunc(e.onAlert), e.reg, terminal)
	e.session.Tracker.MarkCaptureStart(time.Now())
	e.chunker = audio.NewChunker(e.format, e.chunkMs)
	e.detector = vad.NewDetector(e.vadPolicy, e.silenceTimeout)
	e.detector.Reset()
	e.sessionCtx, e.sessionCancel = context.WithCancel(context.Background())

	e.emit(HostEvent{Kind: HostEventSessionStarted, SessionID: e.session.ID})

	// Device open can block; run it on a worker goroutine so the
	// coordinator never does.
	go func() {
		if err := e.source.Start(); err != nil {
			e.send(workerCaptureFailed{err: err})
			return
		}
		e.send(workerCaptureStarted{})
	}()
}

func (e *Engine) handleCaptureStarted() {
	t := e.applyTransition(EventCaptureStarted)
	if t.Ignored {
		return
	}
	if e.dispatch != nil && e.dispatch.SelectsStreaming(e.session.Surface.toSTT()) {
		e.startStreaming()
	}
}

func (e *Engine) handleCaptureFailed(err error) {
	e.logger.Error("audio device failed to start", "error", err)
	e.applyTransition(EventFailure)
	e.emit(HostEvent{Kind: HostEventError, ErrorKind: engineerr.KindOf(err), Message: err.Error()})
	e.notifyIfUserVisible(err)
	e.teardownSession()
}

// --- Streaming STT (opened eagerly on Listening when selected) --------

func (e *Engine) startStreaming() {
	provider := e.dispatch.StreamProvider()
	if provider == nil {
		return
	}
	e.streamChunks = make(chan []byte, streamChunksCapacity)
	ctx := e.sessionCtx
	modelID := ""
	language := e.cfg.STT.Language
	go func() {
		sess, err := provider.OpenStream(ctx, modelID, language)
		e.send(workerStreamOpened{sess: sess, err: err})
	}()
}

func (e *Engine) handleStreamOpened(sess stt.StreamSession, err error) {
	if err != nil {
		// Streaming connection establishment failed: fall back silently to
		// batch at Stopping time rather than aborting a live session, since
		// the user is already mid-utterance.
		e.logger.Warn("streaming STT failed to open, falling back to batch at stop", "error", err)
		return
	}
	if e.session == nil || e.streamChunks == nil {
		// The session ended before the socket finished opening.
		_ = sess.Close()
		return
	}
	e.streamSession = sess
	go e.runStreamWriter(e.sessionCtx, sess, e.streamChunks)
	go e.runStreamReader(sess)
}

// runStreamWriter owns the socket's audio-send path: it is the lossy side
// of the backpressure model for streaming audio (the SessionBuffer, fed
// directly by the coordinator, stays lossless). ctx is the session context
// captured at spawn time — the writer must not read Engine fields, it
// outlives the coordinator's ownership of them.
func (e *Engine) runStreamWriter(ctx context.Context, sess stt.StreamSession, chunks <-chan []byte) {
	for pcm := range chunks {
		if err := sess.SendAudio(ctx, pcm); err != nil {
			return
		}
	}
}

func (e *Engine) runStreamReader(sess stt.StreamSession) {
	for ev := range sess.Events() {
		e.send(workerStreamTranscript{ev: ev})
	}
	e.send(workerStreamClosed{err: sess.Err()})
}

// --- Listening: audio frame ingestion ----------------------------------

func (e *Engine) onAudioFrame(data []byte) {
	cp := make([]byte, len(data))
	copy(cp, data)
	select {
	case e.audioFrames <- cp:
	default:
		e.handleFrameBackpressure(cp)
	}
}

func (e *Engine) onAudioError(err error) {
	e.send(workerCaptureFailed{err: err})
}

func (e *Engine) handleAudioFrame(raw []byte) {
	if e.sm.State() != StateListening || e.session == nil || e.chunker == nil {
		return
	}
	for _, chunk := range e.chunker.Append(raw) {
		e.consumeChunk(chunk)
	}
}

// consumeChunk is the one place a Chunk reaches both the lossless
// SessionBuffer path and the (potentially lossy, under backpressure) VAD
// and streaming paths.
func (e *Engine) consumeChunk(chunk audio.Chunk) {
	if err := e.session.Buffer.Append(chunk); err == ErrBufferCeilingExceeded {
		e.handleBufferCeiling()
		return
	}

	if e.streamChunks != nil {
		select {
		case e.streamChunks <- chunk.Samples:
		default:
			e.logger.Warn("streaming STT backpressure, dropping chunk", "session_id", e.session.ID, "seq", chunk.Seq)
		}
	}

	event := e.detector.Process(chunk, time.Now())
	if event == nil {
		return
	}
	if event.Type == vad.EventSilenceTimeout {
		e.handleStopRequested()
	}
}

// handleFrameBackpressure keeps the VAD side lossy and the SessionBuffer
// side lossless: the raw frame still reaches the SessionBuffer, but its
// VAD verdict is skipped (the frame arrives too late to matter for a live
// speech/silence decision).
func (e *Engine) handleFrameBackpressure(raw []byte) {
	if !e.overflowing {
		e.overflowing = true
		e.logger.Warn("audio frame channel saturated, dropping from VAD path only")
	}
	if e.session == nil || e.chunker == nil {
		return
	}
	for _, chunk := range e.chunker.Append(raw) {
		if err := e.session.Buffer.Append(chunk); err == ErrBufferCeilingExceeded {
			e.handleBufferCeiling()
			return
		}
	}
}

// handleBufferCeiling aborts the session with a Device-class error when the
// SessionBuffer refuses further audio: a capture that outgrew the hard byte
// ceiling is treated the same as a device fault.
func (e *Engine) handleBufferCeiling() {
	err := engineerr.New(engineerr.KindDevice, ErrBufferCeilingExceeded)
	e.logger.Error("session buffer exceeded hard byte ceiling, aborting session", "session_id", e.session.ID)
	e.applyTransition(EventFailure)
	e.emit(HostEvent{Kind: HostEventError, ErrorKind: engineerr.KindDevice, Message: err.Error()})
	e.teardownSession()
}

func (e *Engine) drainOverflow() {
	if e.overflowing && len(e.audioFrames) == 0 {
		e.overflowing = false
		e.logger.Info("audio frame backpressure recovered")
	}
}

// --- Stopping -----------------------------------------------------------

func (e *Engine) handleStopRequested() {
	t := e.applyTransition(EventStopRequested)
	if t.Ignored {
		return
	}
	go func() {
		_ = e.source.Stop()
		e.send(workerCaptureStopped{})
	}()
}

func (e *Engine) handleCaptureStopped() {
	t := e.applyTransition(EventCaptureStopped)
	if t.Ignored {
		return
	}
	if e.chunker != nil {
		if final := e.chunker.Flush(); final != nil {
			if err := e.session.Buffer.Append(*final); err != nil {
				e.logger.Warn("session buffer rejected final chunk", "session_id", e.session.ID, "error", err)
			}
		}
	}
	e.session.Buffer.Seal()

	if e.streamSession != nil {
		if e.streamChunks != nil {
			close(e.streamChunks)
			e.streamChunks = nil
		}
		go func() {
			_ = e.streamSession.End(e.sessionCtx)
		}()
		return // workerStreamClosed drives the rest once the socket finishes.
	}
	e.dispatchBatch()
}

func (e *Engine) handleStreamClosed(err error) {
	// A close event arriving after cancel/teardown refers to a session the
	// coordinator no longer owns; drop it.
	if e.streamSession == nil || e.session == nil {
		return
	}
	e.streamSession = nil

	if e.sm.State() == StateListening {
		// The socket died mid-utterance. Keep recording: the batch path
		// takes over when the session stops.
		e.logger.Warn("streaming STT socket closed mid-session, batch takes over at stop", "error", err)
		if e.streamChunks != nil {
			close(e.streamChunks)
			e.streamChunks = nil
		}
		e.streamText = stt.TextAccumulator{}
		return
	}

	tag := "cloud_streaming"
	if p := e.dispatch.StreamProvider(); p != nil {
		tag = p.Name()
	}
	text := e.streamText.Finalize()
	if err != nil && text == "" {
		e.handleSTTDone(stt.Result{}, err)
		return
	}
	e.handleSTTDone(stt.Result{
		Text:        text,
		Confidence:  1.0,
		DurationS:   e.session.Buffer.DurationS(),
		ProviderTag: tag,
	}, nil)
}

func (e *Engine) dispatchBatch() {
	req := stt.Request{
		// AudioRef carries raw PCM; providers that need a WAV container
		// (CloudBatchProvider) wrap it themselves.
		AudioRef:  e.session.Buffer.Bytes(),
		Language:  e.cfg.STT.Language,
		DurationS: e.session.Buffer.DurationS(),
	}
	surface := e.session.Surface.toSTT()
	ctx := e.sessionCtx
	go func() {
		res, err := e.dispatch.Dispatch(ctx, req, surface)
		e.send(workerSTTDone{res: res, err: err})
	}()
}

// --- Processing: STT -> PostProcess -> Injecting -----------------------

func (e *Engine) handleSTTDone(res stt.Result, err error) {
	if err != nil {
		e.applyTransition(EventFailure)
		e.emit(HostEvent{Kind: HostEventError, ErrorKind: engineerr.KindOf(err), Message: err.Error()})
		e.notifyIfUserVisible(err)
		e.teardownSession()
		return
	}

	// stt_complete is stamped exactly once, here, at the boundary between
	// Processing and Injecting (or Processing and Idle on an empty
	// transcript). No other code path marks it.
	e.session.Tracker.MarkSTTComplete(time.Now())

	if res.Text == "" {
		// Empty transcripts terminate quietly: no post-processing, no
		// injection, session ends in Idle.
		e.applyTransition(EventSTTCompleteEmpty)
		e.teardownSession()
		return
	}

	e.session.RawText = res.Text
	e.session.UsedFallback = res.UsedFallback
	e.session.Provider = res.ProviderTag

	pctx := postprocess.Context{
		Language:      res.Language,
		Confidence:    res.Confidence,
		AudioDuration: res.DurationS,
		TargetSurface: e.session.Surface.toPostProcess(),
	}
	ctx := e.sessionCtx
	go func() {
		result, outcomes := e.pipeline.Run(ctx, res.Text, pctx)
		e.send(workerPostDone{res: result, outcomes: outcomes})
	}()
}

func (e *Engine) handlePostDone(res postprocess.Result) {
	e.session.Tracker.MarkPostComplete(time.Now())
	e.session.FinalText = res.Text

	t := e.applyTransition(EventSTTCompleteText)
	if t.Ignored {
		return
	}

	ctx := e.sessionCtx
	text := e.session.FinalText
	surface := e.session.Surface.toDelivery()
	go func() {
		result, err := e.deliverer.Deliver(ctx, text, surface)
		e.send(workerDeliveryDone{res: result, err: err})
	}()
}

func (e *Engine) handleDeliveryDone(res delivery.Result, err error) {
	if err != nil {
		e.applyTransition(EventFailure)
		e.emit(HostEvent{Kind: HostEventError, ErrorKind: engineerr.KindOf(err), Message: err.Error()})
		e.notifyIfUserVisible(err)
		e.teardownSession()
		return
	}

	e.session.Tracker.MarkInjectionComplete(time.Now())

	if !res.Pasted {
		e.emit(HostEvent{Kind: HostEventClipboardOnly, Text: e.session.FinalText, Reason: string(res.Reason)})
		e.notifier.Notify("Dictation pasted to clipboard", "Paste could not be performed automatically.")
	}

	e.applyTransition(EventInjectionComplete)
	latency := e.session.Tracker.Latency()
	e.history.Add(HistoryEntry{
		SessionID:    e.session.ID,
		Text:         e.session.FinalText,
		Provider:     e.session.Provider,
		UsedFallback: e.session.UsedFallback,
		Latency:      latency,
		CompletedAt:  time.Now(),
	})
	e.emit(HostEvent{
		Kind:         HostEventSessionCompleted,
		SessionID:    e.session.ID,
		Text:         e.session.FinalText,
		Latency:      latency,
		UsedFallback: e.session.UsedFallback,
		Provider:     e.session.Provider,
	})
	e.teardownSession()
}

// --- Cancel / teardown ---------------------------------------------------

func (e *Engine) handleCancel() {
	switch e.sm.State() {
	case StateListening, StateStopping, StateProcessing, StateInjecting:
		e.applyTransition(EventCancel)
		e.teardownSession()
	default:
		// Cancel in Idle, Starting, or Error is a no-op.
	}
}

// teardownSession releases the active session's resources: cancels any
// outstanding worker context (discarding in-flight provider calls), stops
// capture if still running, and aborts a streaming connection.
func (e *Engine) teardownSession() {
	if e.sessionCancel != nil {
		e.sessionCancel()
		e.sessionCancel = nil
	}
	if e.streamSession != nil {
		_ = e.streamSession.Close()
		e.streamSession = nil
	}
	if e.streamChunks != nil {
		close(e.streamChunks)
		e.streamChunks = nil
	}
	e.streamText = stt.TextAccumulator{}
	if e.source.Running() {
		_ = e.source.Stop()
	}
	e.session = nil
	e.chunker = nil
	e.detector = nil
}

func (e *Engine) onAlert(a metrics.Alert) {
	e.logger.Warn("threshold alert", "name", a.Name, "actual_ms", a.ActualMs, "threshold_ms", a.ThresholdMs, "session_id", a.SessionID)
}

// notifyIfUserVisible sends a concise notification on Config, Auth, and
// NetworkFatal failures; stays silent on Cancelled; every other kind only
// gets the structured HostEventError already emitted by the caller.
func (e *Engine) notifyIfUserVisible(err error) {
	switch engineerr.KindOf(err) {
	case engineerr.KindConfig:
		e.notifier.Notify("Dictation needs configuration", err.Error())
	case engineerr.KindAuth:
		e.notifier.Notify("Dictation authentication failed", "Please check your credentials.")
	case engineerr.KindNetworkFatal:
		e.notifier.Notify("Dictation connection failed", fmt.Sprintf("%v", err))
	}
}

// --- Surface translation -------------------------------------------------

func (s Surface) toSTT() stt.Surface {
	switch s {
	case SurfaceTerminal:
		return stt.SurfaceTerminal
	case SurfaceEditor:
		return stt.SurfaceEditor
	case SurfaceBrowser:
		return stt.SurfaceBrowser
	default:
		return stt.SurfaceDefault
	}
}

func (s Surface) toPostProcess() postprocess.TargetSurface {
	switch s {
	case SurfaceTerminal:
		return postprocess.SurfaceTerminal
	case SurfaceEditor:
		return postprocess.SurfaceEditor
	case SurfaceBrowser:
		return postprocess.SurfaceBrowser
	default:
		return postprocess.SurfaceDefault
	}
}

func (s Surface) toDelivery() delivery.SurfaceClass {
	switch s {
	case SurfaceTerminal:
		return delivery.SurfaceTerminal
	case SurfaceEditor:
		return delivery.SurfaceEditor
	case SurfaceBrowser:
		return delivery.SurfaceBrowser
	default:
		return delivery.SurfaceDefault
	}
}
