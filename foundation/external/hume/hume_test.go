package hume_test

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/superfeelapi/goEmotionAdvisor/foundation/external/hume"
)

func stream(t *testing.T, reply any) string {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.Header.Get("X-Hume-Api-Key"))

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var req hume.Request
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		data, err := base64.StdEncoding.DecodeString(req.Data)
		assert.NoError(t, err)
		assert.Equal(t, "audio-bytes", string(data))

		conn.WriteJSON(reply)
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func clip(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.wav")
	require.NoError(t, os.WriteFile(path, []byte("audio-bytes"), 0o600))
	return path
}

func TestClassify(t *testing.T) {
	reply := hume.Response{
		Prosody: &hume.Prosody{
			Predictions: []hume.Prediction{
				{Emotions: []hume.EmotionScore{{Name: "Joy", Score: 0.8}, {Name: "Sadness", Score: 0.2}, {Name: "Awe", Score: 0.5}}},
				{Emotions: []hume.EmotionScore{{Name: "Joy", Score: 0.4}, {Name: "Anger", Score: 0.6}}},
			},
		},
	}

	t.Run("mapped labels", func(t *testing.T) {
		c := hume.New(stream(t, reply), "key", hume.DefaultLabels)
		scores, err := c.Classify(context.Background(), clip(t))
		require.NoError(t, err)

		assert.InDelta(t, 0.6, scores["happy"], 1e-9)
		assert.InDelta(t, 0.1, scores["sad"], 1e-9)
		assert.InDelta(t, 0.3, scores["angry"], 1e-9)
		assert.NotContains(t, scores, "awe")
	})

	t.Run("raw labels", func(t *testing.T) {
		c := hume.New(stream(t, reply), "key", nil)
		scores, err := c.Classify(context.Background(), clip(t))
		require.NoError(t, err)

		assert.InDelta(t, 0.25, scores["awe"], 1e-9)
		assert.InDelta(t, 0.6, scores["joy"], 1e-9)
	})
}

func TestClassifyNoSpeech(t *testing.T) {
	reply := hume.Response{Prosody: &hume.Prosody{Warning: "No speech detected.", Code: "W0105"}}

	c := hume.New(stream(t, reply), "key", hume.DefaultLabels)
	_, err := c.Classify(context.Background(), clip(t))
	assert.ErrorIs(t, err, hume.ErrNoPrediction)
	assert.ErrorContains(t, err, "No speech detected.")
}

func TestClassifyError(t *testing.T) {
	reply := hume.Response{Error: "invalid api key", Code: "E0001"}

	c := hume.New(stream(t, reply), "key", nil)
	_, err := c.Classify(context.Background(), clip(t))
	assert.ErrorContains(t, err, "invalid api key")
}
