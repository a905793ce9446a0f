// Package hume classifies speech prosody over the Hume streaming websocket.
package hume

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	DefaultEndpoint = "wss://api.hume.ai/v0/stream/models"

	apiTimeout = 15
)

// ErrNoPrediction is returned when the stream reports no speech.
var ErrNoPrediction = errors.New("hume returned no prosody prediction")

// DefaultLabels folds Hume's prosody emotions onto the eight voice emotions.
var DefaultLabels = map[string]string{
	"Fear":                "fearful",
	"Anxiety":             "fearful",
	"Calmness":            "calm",
	"Contentment":         "calm",
	"Boredom":             "neutral",
	"Concentration":       "neutral",
	"Sadness":             "sad",
	"Disappointment":      "sad",
	"Surprise (positive)": "surprised",
	"Surprise (negative)": "surprised",
	"Joy":                 "happy",
	"Amusement":           "happy",
	"Anger":               "angry",
	"Annoyance":           "angry",
	"Disgust":             "disgust",
}

type Client struct {
	endpoint string
	apiKey   string
	labels   map[string]string
	dialer   *websocket.Dialer
}

// New returns a client for the streaming endpoint. With a nil labels map the
// raw Hume emotion names are returned lower-cased; otherwise names are mapped
// through labels and unmapped names are dropped.
func New(endpoint, apiKey string, labels map[string]string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		labels:   labels,
		dialer: &websocket.Dialer{
			HandshakeTimeout: apiTimeout * time.Second,
		},
	}
}

// Classify streams the audio file at audioPath and returns the mean score of
// each emotion across the returned predictions.
func (c *Client) Classify(ctx context.Context, audioPath string) (map[string]float64, error) {
	data, err := os.ReadFile(audioPath)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, apiTimeout*time.Second)
	defer cancel()

	conn, _, err := c.dialer.DialContext(ctx, c.endpoint, http.Header{"X-Hume-Api-Key": []string{c.apiKey}})
	if err != nil {
		return nil, fmt.Errorf("hume: dial: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetWriteDeadline(deadline)
		conn.SetReadDeadline(deadline)
	}

	stop := context.AfterFunc(ctx, func() {
		conn.Close()
	})
	defer stop()

	req := Request{
		Data:   base64.StdEncoding.EncodeToString(data),
		Models: Models{Prosody: struct{}{}},
	}
	if err := conn.WriteJSON(req); err != nil {
		return nil, fmt.Errorf("hume: conn.WriteJSON: %w", err)
	}

	var resp Response
	if err := conn.ReadJSON(&resp); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("hume: conn.ReadJSON: %w", err)
	}

	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))

	if resp.Error != "" {
		return nil, fmt.Errorf("hume: %s: %s", resp.Code, resp.Error)
	}

	return c.scores(resp.Prosody)
}

func (c *Client) scores(p *Prosody) (map[string]float64, error) {
	if p == nil || len(p.Predictions) == 0 {
		if p != nil && p.Warning != "" {
			return nil, fmt.Errorf("%w: %s", ErrNoPrediction, p.Warning)
		}
		return nil, ErrNoPrediction
	}

	scores := make(map[string]float64)
	for _, pred := range p.Predictions {
		for _, e := range pred.Emotions {
			name := strings.ToLower(e.Name)
			if c.labels != nil {
				mapped, ok := c.labels[e.Name]
				if !ok {
					continue
				}
				name = mapped
			}
			scores[name] += e.Score
		}
	}

	if len(scores) == 0 {
		return nil, ErrNoPrediction
	}

	n := float64(len(p.Predictions))
	for k := range scores {
		scores[k] /= n
	}

	return scores, nil
}
