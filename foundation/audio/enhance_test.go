package audio_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/superfeelapi/goEmotionAdvisor/foundation/audio"
)

const enhanceRate = 16000

func tone(freq, amp float64, seconds float64) []float64 {
	s := make([]float64, int(seconds*enhanceRate))
	for i := range s {
		s[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/enhanceRate)
	}
	return s
}

// rms measures the middle half of x, away from the edges.
func rms(x []float64) float64 {
	mid := x[len(x)/4 : 3*len(x)/4]
	var sum float64
	for _, v := range mid {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(mid)))
}

func peak(x []float64) float64 {
	var p float64
	for _, v := range x {
		p = max(p, math.Abs(v))
	}
	return p
}

func TestNormalize(t *testing.T) {
	in := []float64{0.1, -0.5, 0.25, 0}

	out := audio.Normalize(in)

	assert.InDelta(t, 1.0, peak(out), 1e-12)
	assert.InDeltaSlice(t, []float64{0.2, -1, 0.5, 0}, out, 1e-12)
	assert.Equal(t, []float64{0.1, -0.5, 0.25, 0}, in)

	t.Run("silence", func(t *testing.T) {
		assert.Equal(t, []float64{0, 0, 0}, audio.Normalize([]float64{0, 0, 0}))
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, audio.Normalize(nil))
	})
}

func TestHighPassAttenuatesLowTone(t *testing.T) {
	low := tone(20, 0.5, 2)

	out := audio.HighPass(low, enhanceRate, audio.DefaultHighPassCutoff)

	require.Len(t, out, len(low))
	assert.Less(t, rms(out), 0.01*rms(low))
}

func TestHighPassKeepsVoiceBand(t *testing.T) {
	voice := tone(1000, 0.5, 1)

	out := audio.HighPass(voice, enhanceRate, audio.DefaultHighPassCutoff)

	assert.InDelta(t, 1.0, rms(out)/rms(voice), 0.02)

	// Zero phase: the filtered tone stays aligned with the input.
	mid := len(voice) / 2
	for i := mid; i < mid+32; i++ {
		assert.InDelta(t, voice[i], out[i], 0.02)
	}
}

func TestHighPassPassThrough(t *testing.T) {
	in := []float64{0.3, -0.2, 0.1}

	t.Run("cutoff above nyquist", func(t *testing.T) {
		assert.Equal(t, in, audio.HighPass(in, 100, audio.DefaultHighPassCutoff))
	})

	t.Run("single sample", func(t *testing.T) {
		assert.Equal(t, []float64{0.3}, audio.HighPass([]float64{0.3}, enhanceRate, audio.DefaultHighPassCutoff))
	})

	t.Run("short buffer", func(t *testing.T) {
		out := audio.HighPass(in, enhanceRate, audio.DefaultHighPassCutoff)
		require.Len(t, out, len(in))
		for _, v := range out {
			assert.False(t, math.IsNaN(v))
		}
	})
}

func TestEnhance(t *testing.T) {
	low := tone(20, 0.5, 2)
	voice := tone(1000, 0.1, 2)

	mixed := make([]float64, len(low))
	for i := range mixed {
		mixed[i] = low[i] + voice[i]
	}
	original := append([]float64(nil), mixed...)

	rec := audio.Enhance(audio.Recording{Samples: mixed, SampleRate: enhanceRate})

	assert.Equal(t, enhanceRate, rec.SampleRate)
	require.Len(t, rec.Samples, len(mixed))
	assert.Equal(t, original, mixed)

	want := rms(voice) / peak(mixed)
	assert.InDelta(t, 1.0, rms(rec.Samples)/want, 0.05)
}
