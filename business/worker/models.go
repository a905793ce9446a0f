package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/superfeelapi/goEmotionAdvisor/business/advisor"
	"github.com/superfeelapi/goEmotionAdvisor/business/emotion"
	"github.com/superfeelapi/goEmotionAdvisor/business/emotionlog"
)

// Classifier scores the emotions of one WAV clip.
type Classifier interface {
	Classify(ctx context.Context, audioPath string) (map[string]float64, error)
}

// Speaker synthesizes text to 16-bit mono PCM.
type Speaker interface {
	Speak(ctx context.Context, text string) ([]byte, error)
	SampleRate() int
}

// Translator translates a batch of texts.
type Translator interface {
	Translate(ctx context.Context, texts []string) ([]string, error)
}

// Publisher emits outcome events to external consumers.
type Publisher interface {
	Produce(ctx context.Context, data interface{}) error
}

// EmotionLog persists session outcomes per user.
type EmotionLog interface {
	Record(ctx context.Context, userID, emotion, response, transcript string) (emotionlog.Entry, error)
}

type Settings struct {
	Config
	Logger     *zap.SugaredLogger
	Classifier Classifier
	Advisor    *advisor.Advisor

	// Optional sinks. A nil sink is never started.
	Speaker    Speaker
	Translator Translator
	Publisher  Publisher
	EmotionLog EmotionLog
}

type Config struct {
	MaxChunkDuration time.Duration
	ChunkTimeout     time.Duration
	Concurrency      int
	RatePerSecond    float64
	TempDirectory    string
	SpeechDirectory  string
	EmotionOrder     []string

	// Enhance peak-normalizes and high-pass filters recordings before
	// segmentation.
	Enhance bool
}

// =====================================================================================================================

// Outcome is everything one session produced, handed to the caller and to
// the optional sinks.
type Outcome struct {
	SessionID  string                 `json:"session_id"`
	UserID     string                 `json:"user_id,omitempty"`
	Transcript string                 `json:"transcript,omitempty"`
	Detected   bool                   `json:"detected"`
	Advice     advisor.Advice         `json:"advice"`
	Translated *advisor.Advice        `json:"translated,omitempty"`
	Top        []emotion.EmotionScore `json:"top,omitempty"`
	Result     *emotion.Result        `json:"result,omitempty"`
	Chunks     int                    `json:"chunks"`
	Skipped    int                    `json:"skipped"`
	Duration   time.Duration          `json:"duration"`
	CreatedAt  time.Time              `json:"created_at"`
}

// Message is the user-facing summary line of the outcome.
func (o Outcome) Message() string {
	if !o.Detected {
		return "No voice detected. Please try again."
	}
	return "Primary emotion detected: " + advisor.Emoji(o.Advice.PrimaryEmotion) + " " + o.Advice.PrimaryEmotion
}

// Spoken is the text read out by the speech sink.
func (o Outcome) Spoken() string {
	a := o.Advice
	if o.Translated != nil {
		a = *o.Translated
	}

	text := a.GeneralTip
	if len(a.SpecificAdvice) > 0 {
		text = a.SpecificAdvice[0] + " " + text
	}
	return text
}
