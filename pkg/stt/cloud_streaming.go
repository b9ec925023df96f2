package stt

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/keyscribe/dictation-engine/pkg/engineerr"
)

// CloudStreamingProvider transcribes live audio over a persistent
// websocket: one config message up front, then a stream of base64 audio
// messages, terminated by an end message. The server replies with interim
// and final transcript messages as it decodes.
type CloudStreamingProvider struct {
	APIKey string
	Host   string
	Path   string
	Tag    string
	// Scheme defaults to "wss"; tests against an httptest server override
	// it to "ws".
	Scheme string
}

func NewCloudStreamingProvider(tag, apiKey, host, path string) *CloudStreamingProvider {
	if path == "" {
		path = "/ws/stt"
	}
	return &CloudStreamingProvider{APIKey: apiKey, Host: host, Path: path, Tag: tag, Scheme: "wss"}
}

func (p *CloudStreamingProvider) Name() string {
	if p.Tag != "" {
		return p.Tag
	}
	return "cloud_streaming"
}

type wireConfigMsg struct {
	Type        string `json:"type"`
	ModelID     string `json:"model_id"`
	AudioFormat string `json:"audio_format"`
	VAD         bool   `json:"vad"`
	Language    string `json:"language_code,omitempty"`
}

type wireAudioMsg struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

type wireEndMsg struct {
	Type string `json:"type"`
}

type wireServerMsg struct {
	Type       string  `json:"type"`
	Text       string  `json:"text"`
	IsFinal    bool    `json:"is_final"`
	Confidence float64 `json:"confidence"`
	Language   string  `json:"language_code"`
	Message    string  `json:"message"`
	Code       string  `json:"code"`
}

// streamDialTimeout caps connection establishment for the streaming
// socket.
const streamDialTimeout = 10 * time.Second

// session implements StreamSession over one websocket connection.
type session struct {
	conn      *websocket.Conn
	tag       string
	events    chan TranscriptEvent
	err       error
	ackWaited chan struct{} // closed once the config ack grace period elapses or an ack arrives
}

func (p *CloudStreamingProvider) OpenStream(ctx context.Context, modelID, language string) (StreamSession, error) {
	scheme := p.Scheme
	if scheme == "" {
		scheme = "wss"
	}
	u := url.URL{Scheme: scheme, Host: p.Host, Path: p.Path, RawQuery: "api_key=" + p.APIKey}
	dialCtx, cancel := context.WithTimeout(ctx, streamDialTimeout)
	defer cancel()
	conn, _, err := websocket.Dial(dialCtx, u.String(), nil)
	if err != nil {
		return nil, engineerr.New(engineerr.KindNetworkTransient, fmt.Errorf("dial %s: %w", p.Name(), err))
	}

	cfg := wireConfigMsg{Type: "config", ModelID: modelID, AudioFormat: "pcm", VAD: true, Language: language}
	if err := wsjson.Write(ctx, conn, cfg); err != nil {
		conn.Close(websocket.StatusAbnormalClosure, "config write failed")
		return nil, engineerr.New(engineerr.KindNetworkTransient, fmt.Errorf("send config: %w", err))
	}

	s := &session{
		conn:      conn,
		tag:       p.Name(),
		events:    make(chan TranscriptEvent, 16),
		ackWaited: make(chan struct{}),
	}
	go s.readLoop(ctx)

	// Hold the caller back until the server acknowledges the config
	// message (an info reply) or ConfigAckGraceMs elapses, whichever comes
	// first, so audio never races ahead of configuration.
	select {
	case <-s.ackWaited:
	case <-time.After(ConfigAckGraceMs):
	}
	return s, nil
}

func (s *session) readLoop(ctx context.Context) {
	defer close(s.events)
	ackClosed := false
	closeAck := func() {
		if !ackClosed {
			ackClosed = true
			close(s.ackWaited)
		}
	}
	for {
		var msg wireServerMsg
		if err := wsjson.Read(ctx, s.conn, &msg); err != nil {
			closeAck()
			closeCode := websocket.CloseStatus(err)
			// Normal close with no final transcript received: the last
			// interim text (if any) finalizes on the caller's side — it was
			// already delivered on the channel, so no synthetic event is
			// needed here.
			if closeCode != websocket.StatusNormalClosure {
				s.err = err
			}
			return
		}
		switch msg.Type {
		case "info":
			closeAck()
		case "error":
			closeAck()
			s.err = engineerr.New(engineerr.KindNetworkFatal, fmt.Errorf("%s: %s (%s)", s.tag, msg.Message, msg.Code))
			return
		case "transcript":
			closeAck()
			s.events <- TranscriptEvent{
				Text:       msg.Text,
				IsFinal:    msg.IsFinal,
				Confidence: msg.Confidence,
				Language:   msg.Language,
			}
		}
	}
}

func (s *session) SendAudio(ctx context.Context, pcm []byte) error {
	msg := wireAudioMsg{Type: "audio", Data: base64.StdEncoding.EncodeToString(pcm)}
	if err := wsjson.Write(ctx, s.conn, msg); err != nil {
		return engineerr.New(engineerr.KindNetworkTransient, fmt.Errorf("send audio: %w", err))
	}
	return nil
}

func (s *session) End(ctx context.Context) error {
	if err := wsjson.Write(ctx, s.conn, wireEndMsg{Type: "end"}); err != nil {
		return engineerr.New(engineerr.KindNetworkTransient, fmt.Errorf("send end: %w", err))
	}
	return nil
}

func (s *session) Events() <-chan TranscriptEvent { return s.events }

func (s *session) Err() error { return s.err }

// Close aborts the connection without a close handshake, surfacing 1006 to
// the server as a client-initiated abort. Graceful shutdown goes through
// End and the server's 1000 close.
func (s *session) Close() error {
	return s.conn.CloseNow()
}
