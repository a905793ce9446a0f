// Package advisor turns an accumulated emotion result into advice text.
package advisor

import (
	"math/rand/v2"
	"slices"
	"strings"
	"sync"

	"github.com/superfeelapi/goEmotionAdvisor/business/emotion"
	"github.com/superfeelapi/goEmotionAdvisor/foundation/config"
)

// Unknown is the primary emotion reported when nothing was detected.
const Unknown = "unknown"

const (
	noResultsAdvice = "No emotion analysis results found."
	noResultsTip    = "Try recording again."
	noAdvice        = "No specific advice available for this emotion."
)

// Advice is the recommendation derived from one session.
type Advice struct {
	PrimaryEmotion string   `json:"primary_emotion"`
	Confidence     float64  `json:"confidence"`
	SpecificAdvice []string `json:"specific_advice"`
	GeneralTip     string   `json:"general_tip"`

	// Chunks is the number of scored chunks behind Confidence.
	Chunks int `json:"chunks"`
}

// Detected reports whether the advice came from a real detection.
func (a Advice) Detected() bool {
	return a.PrimaryEmotion != Unknown
}

// Percent is the confidence normalized per scored chunk, scaled to 0-100.
func (a Advice) Percent() float64 {
	if a.Chunks == 0 {
		return 0
	}
	return a.Confidence * 100 / float64(a.Chunks)
}

// Advisor picks advice from static tables.
type Advisor struct {
	tables config.Tables

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures an Advisor.
type Option func(*Advisor)

// WithRand makes wellness tip draws come from r.
func WithRand(r *rand.Rand) Option {
	return func(a *Advisor) {
		a.rng = r
	}
}

// New returns an Advisor over the given tables.
func New(tables config.Tables, opts ...Option) *Advisor {
	a := Advisor{
		tables: tables,
	}
	for _, opt := range opts {
		opt(&a)
	}
	return &a
}

// GetAdvice derives advice from a session result. A nil result, or one
// without scored chunks, means nothing was detected.
func (a *Advisor) GetAdvice(r *emotion.Result) Advice {
	if r == nil || r.Chunks == 0 || len(r.Scores) == 0 {
		return Advice{
			PrimaryEmotion: Unknown,
			Confidence:     0,
			SpecificAdvice: []string{noResultsAdvice},
			GeneralTip:     noResultsTip,
		}
	}

	top := r.Scores[0]
	for _, s := range r.Scores[1:] {
		if s.Score > top.Score {
			top = s
		}
	}

	name := strings.ToLower(top.Name)

	specific, ok := a.tables.Advice[name]
	if !ok || len(specific) == 0 {
		specific = []string{noAdvice}
	}

	return Advice{
		PrimaryEmotion: name,
		Confidence:     top.Score,
		SpecificAdvice: slices.Clone(specific),
		GeneralTip:     a.Tip(),
		Chunks:         r.Chunks,
	}
}

// Tip draws one wellness tip uniformly at random.
func (a *Advisor) Tip() string {
	tips := a.tables.Tips
	if len(tips) == 0 {
		return ""
	}

	if a.rng == nil {
		return tips[rand.IntN(len(tips))]
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	return tips[a.rng.IntN(len(tips))]
}

// =====================================================================================================================

var emojis = map[string]string{
	emotion.Fearful:   "😨",
	emotion.Calm:      "😌",
	emotion.Neutral:   "😐",
	emotion.Sad:       "😢",
	emotion.Surprised: "😲",
	emotion.Happy:     "😊",
	emotion.Angry:     "😠",
	emotion.Disgust:   "🤢",
}

// Emoji returns the display emoji for an emotion.
func Emoji(name string) string {
	if e, ok := emojis[strings.ToLower(name)]; ok {
		return e
	}
	return "🤔"
}
