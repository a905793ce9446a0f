package voiceAnalysis

type Amplitude struct {
	Amplitude float64 `json:"amplitude"`
	State     string  `json:"state"`
}

type Pace struct {
	Pace  float64 `json:"pace"`
	State string  `json:"state"`
}

type Emotion struct {
	Confidence float64 `json:"confidence"`
	Result     string  `json:"result"`
}

// EmotionPercentage is the per-emotion share of one analysed segment, 0-100.
type EmotionPercentage struct {
	Neutral   float64 `json:"neutral"`
	Happy     float64 `json:"happy"`
	Calm      float64 `json:"calm"`
	Sad       float64 `json:"sad"`
	Angry     float64 `json:"angry"`
	Fearful   float64 `json:"fearful"`
	Disgust   float64 `json:"disgust"`
	Surprised float64 `json:"surprised"`
}

type ErrorDetail struct {
	Message string `json:"message"`
}

type Result struct {
	Amplitude   []Amplitude         `json:"amplitude"`
	Pace        []Pace              `json:"pace"`
	Emotion     []Emotion           `json:"emotion"`
	Percentage  []EmotionPercentage `json:"percentage"`
	Error       ErrorDetail         `json:"detail"`
	AudioLength float64             `json:"audio_length_seconds"`
}

// Scores averages the segment percentages of r into per-emotion scores in
// [0, 1]. It returns nil when the service reported no percentages.
func (r Result) Scores() map[string]float64 {
	if len(r.Percentage) == 0 {
		return nil
	}

	var sum EmotionPercentage
	for _, p := range r.Percentage {
		sum.Neutral += p.Neutral
		sum.Happy += p.Happy
		sum.Calm += p.Calm
		sum.Sad += p.Sad
		sum.Angry += p.Angry
		sum.Fearful += p.Fearful
		sum.Disgust += p.Disgust
		sum.Surprised += p.Surprised
	}

	n := float64(len(r.Percentage)) * 100

	return map[string]float64{
		"fearful":   sum.Fearful / n,
		"calm":      sum.Calm / n,
		"neutral":   sum.Neutral / n,
		"sad":       sum.Sad / n,
		"surprised": sum.Surprised / n,
		"happy":     sum.Happy / n,
		"angry":     sum.Angry / n,
		"disgust":   sum.Disgust / n,
	}
}
