package neuphonic_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/superfeelapi/goEmotionAdvisor/foundation/external/neuphonic"
)

func TestSpeak(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sse/speak/en", r.URL.Path)
		assert.Equal(t, "k", r.Header.Get("X-API-KEY"))

		var req neuphonic.Request
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Take a deep breath.", req.Text)
		assert.Equal(t, 1.05, req.Speed)
		assert.Equal(t, "voice-1", req.VoiceID)

		w.Header().Set("Content-Type", "text/event-stream")
		for _, part := range [][]byte{{1, 0}, {2, 0, 3, 0}} {
			fmt.Fprintf(w, "event: message\ndata: {\"status_code\":200,\"data\":{\"audio\":%q}}\n\n", base64.StdEncoding.EncodeToString(part))
		}
	}))
	defer srv.Close()

	c := neuphonic.New(neuphonic.Config{Endpoint: srv.URL, ApiKey: "k", VoiceID: "voice-1"})
	pcm, err := c.Speak(context.Background(), "Take a deep breath.")
	require.NoError(t, err)

	assert.Equal(t, []byte{1, 0, 2, 0, 3, 0}, pcm)
	assert.Equal(t, neuphonic.DefaultRate, c.SampleRate())
}

func TestSpeakErrors(t *testing.T) {
	t.Run("http status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "bad key", http.StatusUnauthorized)
		}))
		defer srv.Close()

		_, err := neuphonic.New(neuphonic.Config{Endpoint: srv.URL}).Speak(context.Background(), "hi")
		assert.ErrorContains(t, err, "bad key")
	})

	t.Run("event status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "data: {\"status_code\":400,\"errors\":[\"text too long\"]}\n\n")
		}))
		defer srv.Close()

		_, err := neuphonic.New(neuphonic.Config{Endpoint: srv.URL}).Speak(context.Background(), "hi")
		assert.ErrorContains(t, err, "text too long")
	})

	t.Run("empty stream", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, ": keep-alive\n\n")
		}))
		defer srv.Close()

		_, err := neuphonic.New(neuphonic.Config{Endpoint: srv.URL}).Speak(context.Background(), "hi")
		assert.ErrorIs(t, err, neuphonic.ErrEmptyAudio)
	})
}
