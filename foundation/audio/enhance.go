package audio

import (
	"math"
)

// DefaultHighPassCutoff removes rumble and handling noise below the voice band.
const DefaultHighPassCutoff = 80.0

// Butterworth Q factors of the two second-order sections of a 4th-order filter.
var butterworthQ = [2]float64{
	1 / (2 * math.Cos(math.Pi/8)),
	1 / (2 * math.Cos(3*math.Pi/8)),
}

// Enhance returns a peak-normalized copy of the recording passed through a
// zero-phase 4th-order high-pass filter at DefaultHighPassCutoff. The input
// is not modified.
func Enhance(rec Recording) Recording {
	return Recording{
		Samples:    HighPass(Normalize(rec.Samples), rec.SampleRate, DefaultHighPassCutoff),
		SampleRate: rec.SampleRate,
	}
}

// Normalize returns a copy of samples scaled so the largest absolute value is
// 1. Silent buffers are returned unchanged.
func Normalize(samples []float64) []float64 {
	out := make([]float64, len(samples))

	var peak float64
	for _, s := range samples {
		if a := math.Abs(s); a > peak && !math.IsInf(a, 0) {
			peak = a
		}
	}

	if peak == 0 {
		copy(out, samples)
		return out
	}

	for i, s := range samples {
		out[i] = s / peak
	}
	return out
}

// HighPass returns a copy of samples filtered by a 4th-order Butterworth
// high-pass at cutoff Hz, run forward and backward so no phase shift is
// introduced. A cutoff at or above Nyquist leaves the samples untouched.
func HighPass(samples []float64, sampleRate int, cutoff float64) []float64 {
	out := make([]float64, len(samples))
	copy(out, samples)

	if sampleRate <= 0 || cutoff <= 0 || cutoff >= float64(sampleRate)/2 || len(samples) < 2 {
		return out
	}

	sections := make([]biquad, len(butterworthQ))
	for i, q := range butterworthQ {
		sections[i] = highPassSection(float64(sampleRate), cutoff, q)
	}

	pad := min(3*(2*len(sections)+1), len(samples)-1)
	x := oddExtend(out, pad)

	for _, s := range sections {
		s.run(x)
	}
	reverse(x)
	for _, s := range sections {
		s.run(x)
	}
	reverse(x)

	copy(out, x[pad:pad+len(samples)])
	return out
}

// =====================================================================================================================

// biquad holds normalized coefficients of one second-order section.
type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
}

// highPassSection is the bilinear-transform high-pass with the cutoff prewarped.
func highPassSection(rate, cutoff, q float64) biquad {
	w0 := 2 * math.Pi * cutoff / rate
	cos := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)
	a0 := 1 + alpha

	return biquad{
		b0: (1 + cos) / 2 / a0,
		b1: -(1 + cos) / a0,
		b2: (1 + cos) / 2 / a0,
		a1: -2 * cos / a0,
		a2: (1 - alpha) / a0,
	}
}

// run filters x in place, transposed direct form II.
func (f biquad) run(x []float64) {
	var z1, z2 float64
	for i, in := range x {
		y := f.b0*in + z1
		z1 = f.b1*in - f.a1*y + z2
		z2 = f.b2*in - f.a2*y
		x[i] = y
	}
}

// oddExtend pads both ends of x with n samples reflected through the end
// points.
func oddExtend(x []float64, n int) []float64 {
	out := make([]float64, 0, len(x)+2*n)
	first, last := x[0], x[len(x)-1]

	for i := n; i > 0; i-- {
		out = append(out, 2*first-x[i])
	}
	out = append(out, x...)
	for i := 1; i <= n; i++ {
		out = append(out, 2*last-x[len(x)-1-i])
	}

	return out
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}
