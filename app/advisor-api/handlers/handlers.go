// Package handlers serves the advisor over HTTP.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/superfeelapi/goEmotionAdvisor/business/advisor"
	"github.com/superfeelapi/goEmotionAdvisor/business/emotion"
	"github.com/superfeelapi/goEmotionAdvisor/business/emotionlog"
	"github.com/superfeelapi/goEmotionAdvisor/business/worker"
	"github.com/superfeelapi/goEmotionAdvisor/foundation/audio"
)

const (
	defaultMaxUploadBytes = 32 << 20
	defaultLogLimit       = 20
)

// Processor runs one recording session.
type Processor interface {
	Process(ctx context.Context, s *emotion.Session) (worker.Outcome, error)
}

// Logs answers emotion log queries.
type Logs interface {
	List(ctx context.Context, userID string, limit int) ([]emotionlog.Entry, error)
	Flagged(ctx context.Context, userID string) (bool, error)
}

type Config struct {
	Logger         *zap.SugaredLogger
	Processor      Processor
	Logs           Logs
	TempDirectory  string
	MaxUploadBytes int64
}

type handlers struct {
	Config
}

// New returns the API mux. With a nil Logs the log routes answer 503.
func New(cfg Config) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop().Sugar()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}

	h := handlers{Config: cfg}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.health)
	mux.HandleFunc("POST /v1/advice", h.advice)
	mux.HandleFunc("GET /v1/users/{id}/logs", h.logs)
	mux.HandleFunc("GET /v1/users/{id}/flagged", h.flagged)
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}

// =====================================================================================================================

type adviceResponse struct {
	Message string  `json:"message"`
	Emoji   string  `json:"emoji"`
	Percent float64 `json:"percent"`
	worker.Outcome
}

func (h handlers) health(w http.ResponseWriter, _ *http.Request) {
	respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h handlers) advice(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)

	if err := r.ParseMultipartForm(h.MaxUploadBytes); err != nil {
		h.fail(w, http.StatusBadRequest, fmt.Errorf("parsing form: %w", err))
		return
	}

	file, _, err := r.FormFile("audio")
	if err != nil {
		h.fail(w, http.StatusBadRequest, fmt.Errorf("audio: %w", err))
		return
	}
	defer file.Close()

	rec, err := h.readRecording(file)
	if err != nil {
		h.fail(w, http.StatusBadRequest, err)
		return
	}

	s := emotion.NewSession(r.FormValue("user_id"), rec, r.FormValue("transcript"))

	o, err := h.Processor.Process(r.Context(), s)
	if err != nil {
		h.fail(w, http.StatusServiceUnavailable, err)
		return
	}

	respond(w, http.StatusOK, adviceResponse{
		Message: o.Message(),
		Emoji:   advisor.Emoji(o.Advice.PrimaryEmotion),
		Percent: o.Advice.Percent(),
		Outcome: o,
	})
}

func (h handlers) logs(w http.ResponseWriter, r *http.Request) {
	if h.Logs == nil {
		h.fail(w, http.StatusServiceUnavailable, errors.New("emotion log is disabled"))
		return
	}

	limit := defaultLogLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			h.fail(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", v))
			return
		}
		limit = n
	}

	entries, err := h.Logs.List(r.Context(), r.PathValue("id"), limit)
	if err != nil {
		h.fail(w, statusOf(err), err)
		return
	}
	if entries == nil {
		entries = []emotionlog.Entry{}
	}

	respond(w, http.StatusOK, entries)
}

func (h handlers) flagged(w http.ResponseWriter, r *http.Request) {
	if h.Logs == nil {
		h.fail(w, http.StatusServiceUnavailable, errors.New("emotion log is disabled"))
		return
	}

	id := r.PathValue("id")

	flagged, err := h.Logs.Flagged(r.Context(), id)
	if err != nil {
		h.fail(w, statusOf(err), err)
		return
	}

	respond(w, http.StatusOK, struct {
		UserID  string `json:"user_id"`
		Flagged bool   `json:"flagged"`
	}{id, flagged})
}

// =====================================================================================================================

// readRecording spools the upload to disk since the WAV decoder needs a
// seekable file.
func (h handlers) readRecording(src io.Reader) (audio.Recording, error) {
	tmp, err := os.CreateTemp(h.TempDirectory, "upload-*.wav")
	if err != nil {
		return audio.Recording{}, err
	}
	defer os.Remove(tmp.Name())

	_, err = io.Copy(tmp, src)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return audio.Recording{}, fmt.Errorf("saving upload: %w", err)
	}

	rec, err := audio.ReadWAV(tmp.Name())
	if err != nil {
		return audio.Recording{}, fmt.Errorf("decoding wav: %w", err)
	}

	return rec, nil
}

func (h handlers) fail(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		h.Logger.Errorw("handlers", "status", status, "ERROR", err)
	} else {
		h.Logger.Infow("handlers", "status", status, "ERROR", err)
	}
	respond(w, status, map[string]string{"error": err.Error()})
}

func statusOf(err error) int {
	if errors.Is(err, emotionlog.ErrInvalidUser) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
