package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/keyscribe/dictation-engine/pkg/audio"
	"github.com/keyscribe/dictation-engine/pkg/engineerr"
)

// CloudBatchProvider transcribes a sealed utterance over HTTP: a
// multipart/form-data POST of a WAV-wrapped PCM buffer plus model id and
// optional language, authenticated with a bearer header. HTTP failures are
// classified into engineerr Kinds so the dispatcher can decide whether the
// next provider in the chain gets a turn.
type CloudBatchProvider struct {
	APIKey     string
	Endpoint   string // e.g. "https://api.groq.com/openai/v1/audio/transcriptions"
	ModelID    string
	SampleRate int
	Tag        string
	HTTPClient *http.Client
}

func NewCloudBatchProvider(tag, apiKey, endpoint, modelID string, sampleRate int) *CloudBatchProvider {
	if sampleRate == 0 {
		sampleRate = 16000
	}
	return &CloudBatchProvider{
		APIKey:     apiKey,
		Endpoint:   endpoint,
		ModelID:    modelID,
		SampleRate: sampleRate,
		Tag:        tag,
		HTTPClient: &http.Client{Timeout: batchRequestTimeout},
	}
}

// batchRequestTimeout caps one cloud batch transcription round trip.
const batchRequestTimeout = 30 * time.Second

type cloudBatchResponse struct {
	Text                string  `json:"text"`
	LanguageCode        string  `json:"language_code"`
	LanguageProbability float64 `json:"language_probability"`
}

func (p *CloudBatchProvider) TranscribeBatch(ctx context.Context, req Request) (Result, error) {
	start := time.Now()
	wavData := audio.EncodeWAV(req.AudioRef, audio.Format{SampleRate: p.SampleRate, Channels: 1, BitsPerSample: 16})

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("model_id", p.ModelID); err != nil {
		return Result{}, engineerr.New(engineerr.KindInternal, err)
	}
	if req.Language != "" {
		if err := writer.WriteField("language_code", req.Language); err != nil {
			return Result{}, engineerr.New(engineerr.KindInternal, err)
		}
	}
	part, err := writer.CreateFormFile("audio", "audio.wav")
	if err != nil {
		return Result{}, engineerr.New(engineerr.KindInternal, err)
	}
	if _, err := io.Copy(part, bytes.NewReader(wavData)); err != nil {
		return Result{}, engineerr.New(engineerr.KindInternal, err)
	}
	if err := writer.Close(); err != nil {
		return Result{}, engineerr.New(engineerr.KindInternal, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.Endpoint, body)
	if err != nil {
		return Result{}, engineerr.New(engineerr.KindInternal, err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	httpReq.Header.Set("Authorization", "Bearer "+p.APIKey)

	resp, err := p.HTTPClient.Do(httpReq)
	if err != nil {
		return Result{}, engineerr.New(engineerr.KindNetworkTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, p.mapStatusError(resp)
	}

	var parsed cloudBatchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Result{}, engineerr.New(engineerr.KindInternal, fmt.Errorf("decode response: %w", err))
	}

	confidence := 1.0
	if parsed.LanguageProbability > 0 {
		confidence = parsed.LanguageProbability
	}
	return Result{
		Text:        parsed.Text,
		Confidence:  confidence,
		Language:    parsed.LanguageCode,
		DurationS:   req.DurationS,
		LatencyMs:   time.Since(start).Milliseconds(),
		ProviderTag: p.Name(),
	}, nil
}

// mapStatusError classifies an HTTP failure: 401→Auth, 429→RateLimited
// (retry-after recorded), 5xx→NetworkTransient, any other 4xx→Internal.
func (p *CloudBatchProvider) mapStatusError(resp *http.Response) error {
	respBody, _ := io.ReadAll(resp.Body)
	base := fmt.Errorf("%s: status %d: %s", p.Name(), resp.StatusCode, string(respBody))

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return engineerr.New(engineerr.KindAuth, base)
	case resp.StatusCode == http.StatusTooManyRequests:
		e := engineerr.New(engineerr.KindRateLimited, base)
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if secs, err := strconv.Atoi(ra); err == nil {
				e.RetryAfterS = secs
			}
		}
		return e
	case resp.StatusCode >= 500:
		return engineerr.New(engineerr.KindNetworkTransient, base)
	default:
		return engineerr.New(engineerr.KindInternal, base)
	}
}

func (p *CloudBatchProvider) Name() string {
	if p.Tag != "" {
		return p.Tag
	}
	return "cloud_batch"
}
