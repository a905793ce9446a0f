// Package voiceAnalysis calls the HTTP speech emotion recognition service.
package voiceAnalysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const (
	apiTimeout = 10
)

// ErrNoPrediction is returned when the service answers without scores.
var ErrNoPrediction = errors.New("voice analysis returned no prediction")

type Client struct {
	apiEndpoint string
	apiKey      string
	client      *http.Client
}

func New(apiEndpoint, apiKey string) *Client {
	return &Client{
		apiEndpoint: apiEndpoint,
		apiKey:      apiKey,
		client:      &http.Client{Timeout: apiTimeout * time.Second},
	}
}

// Classify uploads the WAV file at audioPath and returns its emotion scores.
func (c *Client) Classify(ctx context.Context, audioPath string) (map[string]float64, error) {
	r, err := c.VoiceEmotion(ctx, audioPath)
	if err != nil {
		return nil, err
	}

	if r.Error.Message != "" {
		return nil, fmt.Errorf("voice analysis: %s", r.Error.Message)
	}

	scores := r.Scores()
	if scores == nil {
		return nil, ErrNoPrediction
	}

	return scores, nil
}

// VoiceEmotion posts the audio as the "voice" form file and decodes the raw
// analysis result.
func (c *Client) VoiceEmotion(ctx context.Context, audioPath string) (Result, error) {
	payload := bytes.Buffer{}
	writer := multipart.NewWriter(&payload)

	file, err := os.Open(audioPath)
	if err != nil {
		return Result{}, err
	}
	defer file.Close()

	part, err := writer.CreateFormFile("voice", filepath.Base(audioPath))
	if err != nil {
		return Result{}, err
	}

	_, err = io.Copy(part, file)
	if err != nil {
		return Result{}, err
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiEndpoint, &payload)
	if err != nil {
		return Result{}, err
	}

	req.Header.Add("api-key", c.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	bytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, err
	}

	if resp.StatusCode == http.StatusInternalServerError {
		return Result{}, fmt.Errorf("internal server error 500: %s", string(bytes))
	}

	if resp.StatusCode != http.StatusOK {
		return Result{}, errors.New(string(bytes))
	}

	var r Result
	if err := json.Unmarshal(bytes, &r); err != nil {
		return Result{}, err
	}

	return r, nil
}
