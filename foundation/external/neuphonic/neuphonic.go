// Package neuphonic synthesizes speech through the Neuphonic SSE endpoint.
package neuphonic

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultEndpoint = "https://api.neuphonic.com"
	DefaultSpeed    = 1.05
	DefaultLangCode = "en"
	DefaultRate     = 22050

	apiTimeout = 30
)

// ErrEmptyAudio is returned when the stream carried no audio.
var ErrEmptyAudio = errors.New("tts stream returned no audio")

type Config struct {
	Endpoint   string
	ApiKey     string
	VoiceID    string
	LangCode   string
	Speed      float64
	SampleRate int
}

type Client struct {
	config Config
	client *http.Client
}

func New(cfg Config) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.LangCode == "" {
		cfg.LangCode = DefaultLangCode
	}
	if cfg.Speed == 0 {
		cfg.Speed = DefaultSpeed
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = DefaultRate
	}

	return &Client{
		config: cfg,
		client: &http.Client{Timeout: apiTimeout * time.Second},
	}
}

// SampleRate is the rate of the PCM returned by Speak.
func (c *Client) SampleRate() int {
	return c.config.SampleRate
}

// Speak returns text synthesized as 16-bit little-endian mono PCM.
func (c *Client) Speak(ctx context.Context, text string) ([]byte, error) {
	b, err := json.Marshal(Request{
		Text:         text,
		VoiceID:      c.config.VoiceID,
		LangCode:     c.config.LangCode,
		Speed:        c.config.Speed,
		SamplingRate: c.config.SampleRate,
		Encoding:     "pcm_linear",
	})
	if err != nil {
		return nil, err
	}

	url := strings.TrimRight(c.config.Endpoint, "/") + "/sse/speak/" + c.config.LangCode

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("X-API-KEY", c.config.ApiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("tts %s: %s", resp.Status, string(body))
	}

	return readStream(resp.Body)
}

// =====================================================================================================================

func readStream(r io.Reader) ([]byte, error) {
	var pcm []byte

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}

		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" {
			continue
		}

		var ev Event
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			return nil, fmt.Errorf("tts event: %w", err)
		}

		if ev.StatusCode != 0 && ev.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("tts event status %d: %s", ev.StatusCode, ev.Errors)
		}

		if ev.Data.Audio == "" {
			continue
		}

		chunk, err := base64.StdEncoding.DecodeString(ev.Data.Audio)
		if err != nil {
			return nil, fmt.Errorf("tts audio: %w", err)
		}
		pcm = append(pcm, chunk...)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(pcm) == 0 {
		return nil, ErrEmptyAudio
	}

	return pcm, nil
}
