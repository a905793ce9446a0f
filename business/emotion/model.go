// Package emotion accumulates per-chunk speech emotion scores into a
// session-wide result.
package emotion

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/superfeelapi/goEmotionAdvisor/foundation/audio"
)

// Names of the emotions the voice classifiers report, in table order.
const (
	Fearful   = "fearful"
	Calm      = "calm"
	Neutral   = "neutral"
	Sad       = "sad"
	Surprised = "surprised"
	Happy     = "happy"
	Angry     = "angry"
	Disgust   = "disgust"
)

// DefaultOrder is the seed table order. Ties between equal scores resolve to
// the emotion that appears first here.
var DefaultOrder = []string{Fearful, Calm, Neutral, Sad, Surprised, Happy, Angry, Disgust}

var (
	// ErrUndetected means no chunk of the session produced a usable score.
	ErrUndetected = errors.New("no emotion detected")

	// ErrClassificationUnavailable marks a chunk the classifier could not score.
	ErrClassificationUnavailable = errors.New("classification unavailable")

	// ErrFinalized is returned when a finalized accumulator is fed again.
	ErrFinalized = errors.New("aggregator already finalized")
)

// Scores maps an emotion name to a score for one chunk.
type Scores map[string]float64

// EmotionScore pairs an emotion name with a score.
type EmotionScore struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// ChunkResult is the outcome of classifying one chunk: either scores or the
// reason the chunk was skipped.
type ChunkResult struct {
	Index  int
	Scores Scores
	Err    error
}

// Scored builds a successful result.
func Scored(index int, s Scores) ChunkResult {
	return ChunkResult{Index: index, Scores: s}
}

// Skipped builds a result for a chunk that could not be classified.
func Skipped(index int, reason error) ChunkResult {
	if reason == nil {
		reason = errors.New("no prediction")
	}
	return ChunkResult{Index: index, Err: fmt.Errorf("chunk %d: %w: %w", index, ErrClassificationUnavailable, reason)}
}

// OK reports whether the result carries usable scores.
func (r ChunkResult) OK() bool {
	return r.Err == nil && len(r.Scores) > 0
}

// Session is one recording from start to rendered advice. It is owned by the
// caller and never reused.
type Session struct {
	ID         string
	UserID     string
	Transcript string
	Recording  audio.Recording
	StartedAt  time.Time
}

// NewSession starts a session for a user's recording.
func NewSession(userID string, rec audio.Recording, transcript string) *Session {
	return &Session{
		ID:         uuid.NewString(),
		UserID:     userID,
		Transcript: transcript,
		Recording:  rec,
		StartedAt:  time.Now().UTC(),
	}
}
