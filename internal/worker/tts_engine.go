package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// TTSEngineClient synthesizes one segment of speech. The two supported
// engines (edge, elevenlabs) both implement it; callers never see the
// per-engine wire format.
type TTSEngineClient interface {
	Synthesize(ctx context.Context, text, voiceID string, speed float64) ([]byte, error)
}

// httpStatusError carries the raw HTTP status so the caller can map it to
// the right typed FmmError (401 → HTTPUnauthorized, 429 → HTTPRateLimited).
type httpStatusError struct {
	StatusCode int
	Body       string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("tts engine returned HTTP %d: %s", e.StatusCode, e.Body)
}

// EdgeTTSClient talks to a local/remote edge-tts HTTP bridge (the free
// engine; no API key, so it only ever fails with network errors, not 401).
type EdgeTTSClient struct {
	BaseURL string
	HTTP    *http.Client
}

func (c *EdgeTTSClient) Synthesize(ctx context.Context, text, voiceID string, speed float64) ([]byte, error) {
	payload, _ := json.Marshal(map[string]any{
		"text":  text,
		"voice": voiceID,
		"rate":  speed,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/synthesize", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return doSynthesize(c.HTTP, req)
}

// ElevenLabsClient talks to the ElevenLabs TTS API (the premium engine;
// can fail with 401 on a bad API key and 429 once the account's quota is
// exhausted).
type ElevenLabsClient struct {
	APIKey string
	HTTP   *http.Client
}

func (c *ElevenLabsClient) Synthesize(ctx context.Context, text, voiceID string, speed float64) ([]byte, error) {
	payload, _ := json.Marshal(map[string]any{
		"text": text,
		"voice_settings": map[string]any{
			"speed": speed,
		},
	})
	url := "https://api.elevenlabs.io/v1/text-to-speech/" + voiceID
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", c.APIKey)
	return doSynthesize(c.HTTP, req)
}

func doSynthesize(client *http.Client, req *http.Request) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, &httpStatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
