// Package emotionlog records detected emotions per user and flags entries
// whose transcript contains distress keywords.
package emotionlog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/superfeelapi/goEmotionAdvisor/foundation/metrics"
)

// ErrInvalidUser is returned for an empty user identifier.
var ErrInvalidUser = errors.New("user id is required")

// DefaultKeywords are the phrases that flag a transcript for distress.
var DefaultKeywords = []string{
	"suicide",
	"suicidal",
	"kill myself",
	"end my life",
	"self harm",
	"self-harm",
	"hurt myself",
	"hopeless",
	"worthless",
	"can't go on",
	"cannot go on",
	"no reason to live",
	"want to die",
}

// Entry is one logged session outcome.
type Entry struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Emotion    string    `json:"emotion"`
	Response   string    `json:"response"`
	Transcript string    `json:"transcript"`
	Flagged    bool      `json:"flagged"`
	Keywords   []string  `json:"keywords,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Store persists entries.
type Store interface {
	Store(ctx context.Context, e Entry) error
	List(ctx context.Context, userID string, limit int) ([]Entry, error)
	Close() error
}

// Log writes entries to a Store and answers distress queries.
type Log struct {
	store    Store
	keywords []string
	window   int
	logger   *zap.SugaredLogger
	now      func() time.Time
}

// Option configures a Log.
type Option func(*Log)

// WithKeywords replaces the distress keyword list.
func WithKeywords(keywords []string) Option {
	return func(l *Log) {
		l.keywords = keywords
	}
}

// WithWindow sets how many recent entries Flagged inspects.
func WithWindow(n int) Option {
	return func(l *Log) {
		l.window = n
	}
}

// WithClock overrides the entry timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Log) {
		l.now = now
	}
}

func New(store Store, logger *zap.SugaredLogger, opts ...Option) *Log {
	l := Log{
		store:    store,
		keywords: DefaultKeywords,
		window:   10,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&l)
	}
	return &l
}

// Record stores the outcome of a session for userID.
func (l *Log) Record(ctx context.Context, userID, emotion, response, transcript string) (Entry, error) {
	if userID == "" {
		return Entry{}, ErrInvalidUser
	}

	ts := l.now().UTC()
	matched := Detect(transcript, l.keywords)

	e := Entry{
		ID:         entryID(userID, ts),
		UserID:     userID,
		Emotion:    emotion,
		Response:   response,
		Transcript: transcript,
		Flagged:    len(matched) > 0,
		Keywords:   matched,
		Timestamp:  ts,
	}

	if err := l.store.Store(ctx, e); err != nil {
		return Entry{}, fmt.Errorf("emotionlog: store: %w", err)
	}

	if e.Flagged {
		metrics.DistressFlags.Inc()
		l.logger.Warnw("emotionlog: Record: distress keywords", "userID", userID, "keywords", matched)
	}
	l.logger.Infow("emotionlog: Record", "id", e.ID, "emotion", emotion)

	return e, nil
}

// List returns the most recent entries of userID, newest first.
func (l *Log) List(ctx context.Context, userID string, limit int) ([]Entry, error) {
	if userID == "" {
		return nil, ErrInvalidUser
	}
	return l.store.List(ctx, userID, limit)
}

// Flagged reports whether any of the user's recent entries were flagged.
func (l *Log) Flagged(ctx context.Context, userID string) (bool, error) {
	entries, err := l.List(ctx, userID, l.window)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if e.Flagged {
			return true, nil
		}
	}
	return false, nil
}

func (l *Log) Close() error {
	return l.store.Close()
}

// Detect returns the keywords found in transcript, case-insensitively.
func Detect(transcript string, keywords []string) []string {
	text := normalize(transcript)
	if text == "" {
		return nil
	}

	var matched []string
	for _, k := range keywords {
		if k = normalize(k); k != "" && strings.Contains(text, k) {
			matched = append(matched, k)
		}
	}
	return matched
}

// =====================================================================================================================

func normalize(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "’", "'")
	return strings.Join(strings.Fields(s), " ")
}

func entryID(userID string, ts time.Time) string {
	return fmt.Sprintf("%s_%s_%s", userID, ts.Format("20060102150405"), uuid.NewString()[:8])
}
