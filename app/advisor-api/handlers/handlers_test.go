package handlers_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/superfeelapi/goEmotionAdvisor/app/advisor-api/handlers"
	"github.com/superfeelapi/goEmotionAdvisor/business/advisor"
	"github.com/superfeelapi/goEmotionAdvisor/business/emotion"
	"github.com/superfeelapi/goEmotionAdvisor/business/emotionlog"
	"github.com/superfeelapi/goEmotionAdvisor/business/worker"
	"github.com/superfeelapi/goEmotionAdvisor/foundation/audio"
)

type fakeProcessor struct {
	got *emotion.Session
	err error
}

func (f *fakeProcessor) Process(_ context.Context, s *emotion.Session) (worker.Outcome, error) {
	f.got = s
	if f.err != nil {
		return worker.Outcome{}, f.err
	}
	return worker.Outcome{
		SessionID: s.ID,
		UserID:    s.UserID,
		Detected:  true,
		Chunks:    2,
		Advice: advisor.Advice{
			PrimaryEmotion: "calm",
			Confidence:     1.5,
			SpecificAdvice: []string{"Keep breathing slowly."},
			GeneralTip:     "Drink water.",
			Chunks:         2,
		},
	}, nil
}

func upload(t *testing.T, fields map[string]string, withAudio bool) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}

	if withAudio {
		path := filepath.Join(t.TempDir(), "in.wav")
		require.NoError(t, audio.WriteWAV(path, []float64{0.1, -0.1, 0.2, -0.2}, 8000))
		data, err := os.ReadFile(path)
		require.NoError(t, err)

		fw, err := mw.CreateFormFile("audio", "in.wav")
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/advice", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestAdvice(t *testing.T) {
	p := &fakeProcessor{}
	h := handlers.New(handlers.Config{Processor: p, TempDirectory: t.TempDir()})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, upload(t, map[string]string{"user_id": "u1", "transcript": "fine"}, true))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.NotNil(t, p.got)
	assert.Equal(t, "u1", p.got.UserID)
	assert.Equal(t, "fine", p.got.Transcript)
	assert.Equal(t, 8000, p.got.Recording.SampleRate)
	assert.Len(t, p.got.Recording.Samples, 4)

	var resp struct {
		Message string         `json:"message"`
		Emoji   string         `json:"emoji"`
		Percent float64        `json:"percent"`
		Advice  advisor.Advice `json:"advice"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "Primary emotion detected: 😌 calm", resp.Message)
	assert.Equal(t, "😌", resp.Emoji)
	assert.InDelta(t, 75.0, resp.Percent, 1e-9)
	assert.Equal(t, "calm", resp.Advice.PrimaryEmotion)
}

// float32WAV encodes mono IEEE float samples as a WAV file.
func float32WAV(samples []float32, rate uint32) []byte {
	var b bytes.Buffer
	le := binary.LittleEndian
	b.WriteString("RIFF")
	binary.Write(&b, le, uint32(36+4*len(samples)))
	b.WriteString("WAVEfmt ")
	binary.Write(&b, le, []uint32{16})
	binary.Write(&b, le, []uint16{3, 1})
	binary.Write(&b, le, []uint32{rate, rate * 4})
	binary.Write(&b, le, []uint16{4, 32})
	b.WriteString("data")
	binary.Write(&b, le, uint32(4*len(samples)))
	for _, s := range samples {
		binary.Write(&b, le, math.Float32bits(s))
	}
	return b.Bytes()
}

func TestAdviceFloatWAV(t *testing.T) {
	p := &fakeProcessor{}
	h := handlers.New(handlers.Config{Processor: p, TempDirectory: t.TempDir()})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("user_id", "u1"))
	fw, err := mw.CreateFormFile("audio", "in.wav")
	require.NoError(t, err)
	_, err = fw.Write(float32WAV([]float32{0.5, -0.25, 0.125}, 16000))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/advice", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, p.got)
	assert.Equal(t, 16000, p.got.Recording.SampleRate)
	assert.InDeltaSlice(t, []float64{0.5, -0.25, 0.125}, p.got.Recording.Samples, 1e-7)
}

func TestAdviceBadRequests(t *testing.T) {
	h := handlers.New(handlers.Config{Processor: &fakeProcessor{}, TempDirectory: t.TempDir()})

	t.Run("missing audio", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, upload(t, map[string]string{"user_id": "u1"}, false))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not a wav", func(t *testing.T) {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		fw, err := mw.CreateFormFile("audio", "in.wav")
		require.NoError(t, err)
		_, err = fw.Write([]byte("definitely not audio"))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/v1/advice", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("wrong method", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/advice", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestAdviceProcessFailure(t *testing.T) {
	h := handlers.New(handlers.Config{Processor: &fakeProcessor{err: context.Canceled}, TempDirectory: t.TempDir()})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, upload(t, nil, true))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLogs(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	log := emotionlog.New(emotionlog.NewRedisStore(client, ""), zap.NewNop().Sugar())
	ctx := context.Background()

	_, err := log.Record(ctx, "u1", "sad", "Reach out.", "I feel worthless")
	require.NoError(t, err)
	_, err = log.Record(ctx, "u1", "calm", "Keep going.", "")
	require.NoError(t, err)

	h := handlers.New(handlers.Config{Processor: &fakeProcessor{}, Logs: log})

	t.Run("list", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/users/u1/logs?limit=1", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var entries []emotionlog.Entry
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
		require.Len(t, entries, 1)
		assert.Equal(t, "u1", entries[0].UserID)
	})

	t.Run("unknown user", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/users/nobody/logs", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String())
	})

	t.Run("bad limit", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/users/u1/logs?limit=x", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("flagged", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/users/u1/flagged", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"user_id":"u1","flagged":true}`, rec.Body.String())
	})
}

func TestLogsDisabled(t *testing.T) {
	h := handlers.New(handlers.Config{Processor: &fakeProcessor{}})

	for _, path := range []string{"/v1/users/u1/logs", "/v1/users/u1/flagged"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	h := handlers.New(handlers.Config{Processor: &fakeProcessor{}})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
