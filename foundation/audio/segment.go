// Package audio splits recordings into classifier-sized chunks and moves
// them in and out of WAV files.
package audio

import (
	"errors"
	"iter"
	"time"
)

// DefaultMaxDuration is the longest clip most hosted classifiers accept.
const DefaultMaxDuration = 5 * time.Second

// ErrNoAudio reports a zero-length recording. Segment never returns it, an
// empty buffer simply yields no chunks; callers use it to label that case.
var ErrNoAudio = errors.New("no audio samples")

// Recording is a mono sample buffer captured outside this module.
type Recording struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the length of the recording.
func (r Recording) Duration() time.Duration {
	if r.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(r.Samples)) / float64(r.SampleRate) * float64(time.Second))
}

// Chunk is a contiguous slice of a recording. Samples aliases the source
// buffer and must not be appended to.
type Chunk struct {
	Index      int
	Samples    []float64
	SampleRate int
}

// Duration returns the length of the chunk.
func (c Chunk) Duration() time.Duration {
	return Recording{Samples: c.Samples, SampleRate: c.SampleRate}.Duration()
}

// MaxSamples converts a maximum chunk duration into a sample count. A
// non-positive result means the buffer is not split.
func MaxSamples(sampleRate int, maxDuration time.Duration) int {
	if sampleRate <= 0 || maxDuration <= 0 {
		return 0
	}
	return int(maxDuration.Seconds() * float64(sampleRate))
}

// Count returns how many chunks a buffer of length samples produces when
// each chunk holds at most size samples.
func Count(length, size int) int {
	switch {
	case length <= 0:
		return 0
	case size <= 0:
		return 1
	}
	return (length + size - 1) / size
}

// Segment returns the chunks of samples in order. The sequence is lazy and
// may be ranged over any number of times; each pass yields the same chunks.
func Segment(samples []float64, sampleRate int, maxDuration time.Duration) iter.Seq2[int, Chunk] {
	size := MaxSamples(sampleRate, maxDuration)
	if size <= 0 {
		size = len(samples)
	}

	return func(yield func(int, Chunk) bool) {
		for i, start := 0, 0; start < len(samples); i, start = i+1, start+size {
			end := min(start+size, len(samples))
			c := Chunk{
				Index:      i,
				Samples:    samples[start:end:end],
				SampleRate: sampleRate,
			}
			if !yield(i, c) {
				return
			}
		}
	}
}

// Chunks segments the recording with the given maximum chunk duration.
func (r Recording) Chunks(maxDuration time.Duration) iter.Seq2[int, Chunk] {
	return Segment(r.Samples, r.SampleRate, maxDuration)
}

// ChunkCount returns the number of chunks Chunks yields.
func (r Recording) ChunkCount(maxDuration time.Duration) int {
	return Count(len(r.Samples), MaxSamples(r.SampleRate, maxDuration))
}
