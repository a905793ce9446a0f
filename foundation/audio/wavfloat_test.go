package audio_test

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/superfeelapi/goEmotionAdvisor/foundation/audio"
)

type floatWAV struct {
	format     uint16
	channels   uint16
	rate       uint32
	bits       uint16
	extensible bool
	extra      []byte
	frames     [][]float64
}

// bytes builds a RIFF file by hand since the wav writer only emits PCM.
func (f floatWAV) bytes() []byte {
	var fmtBody bytes.Buffer
	tag := f.format
	if f.extensible {
		tag = 0xFFFE
	}
	width := uint32(f.bits / 8)
	binary.Write(&fmtBody, binary.LittleEndian, tag)
	binary.Write(&fmtBody, binary.LittleEndian, f.channels)
	binary.Write(&fmtBody, binary.LittleEndian, f.rate)
	binary.Write(&fmtBody, binary.LittleEndian, f.rate*uint32(f.channels)*width)
	binary.Write(&fmtBody, binary.LittleEndian, uint16(uint32(f.channels)*width))
	binary.Write(&fmtBody, binary.LittleEndian, f.bits)
	if f.extensible {
		binary.Write(&fmtBody, binary.LittleEndian, uint16(22))
		binary.Write(&fmtBody, binary.LittleEndian, f.bits)
		binary.Write(&fmtBody, binary.LittleEndian, uint32(0))
		binary.Write(&fmtBody, binary.LittleEndian, f.format)
		fmtBody.Write(make([]byte, 14))
	}

	var data bytes.Buffer
	for _, frame := range f.frames {
		for _, v := range frame {
			if f.bits == 64 {
				binary.Write(&data, binary.LittleEndian, math.Float64bits(v))
			} else {
				binary.Write(&data, binary.LittleEndian, math.Float32bits(float32(v)))
			}
		}
	}

	var chunks bytes.Buffer
	writeChunk := func(id string, body []byte) {
		chunks.WriteString(id)
		binary.Write(&chunks, binary.LittleEndian, uint32(len(body)))
		chunks.Write(body)
		if len(body)%2 == 1 {
			chunks.WriteByte(0)
		}
	}
	writeChunk("fmt ", fmtBody.Bytes())
	if f.extra != nil {
		writeChunk("LIST", f.extra)
	}
	writeChunk("data", data.Bytes())

	var out bytes.Buffer
	out.WriteString("RIFF")
	binary.Write(&out, binary.LittleEndian, uint32(4+chunks.Len()))
	out.WriteString("WAVE")
	out.Write(chunks.Bytes())
	return out.Bytes()
}

func writeFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.wav")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestReadWAVFloat(t *testing.T) {
	t.Run("float32 stereo", func(t *testing.T) {
		path := writeFile(t, floatWAV{
			format:   3,
			channels: 2,
			rate:     16000,
			bits:     32,
			extra:    []byte("odd"),
			frames:   [][]float64{{0.5, 0.25}, {-1, -0.5}, {0, 0.125}},
		}.bytes())

		rec, err := audio.ReadWAV(path)
		require.NoError(t, err)

		assert.Equal(t, 16000, rec.SampleRate)
		assert.InDeltaSlice(t, []float64{0.375, -0.75, 0.0625}, rec.Samples, 1e-7)
	})

	t.Run("float64 mono", func(t *testing.T) {
		path := writeFile(t, floatWAV{
			format:   3,
			channels: 1,
			rate:     8000,
			bits:     64,
			frames:   [][]float64{{0.1}, {-0.2}, {0.3}, {-0.4}},
		}.bytes())

		rec, err := audio.ReadWAV(path)
		require.NoError(t, err)

		assert.Equal(t, 8000, rec.SampleRate)
		assert.InDeltaSlice(t, []float64{0.1, -0.2, 0.3, -0.4}, rec.Samples, 1e-12)
	})

	t.Run("extensible float", func(t *testing.T) {
		path := writeFile(t, floatWAV{
			format:     3,
			channels:   1,
			rate:       44100,
			bits:       32,
			extensible: true,
			frames:     [][]float64{{0.5}, {-0.5}},
		}.bytes())

		rec, err := audio.ReadWAV(path)
		require.NoError(t, err)

		assert.Equal(t, 44100, rec.SampleRate)
		assert.InDeltaSlice(t, []float64{0.5, -0.5}, rec.Samples, 1e-7)
	})
}

func TestReadWAVUnsupported(t *testing.T) {
	t.Run("a-law", func(t *testing.T) {
		path := writeFile(t, floatWAV{
			format:   6,
			channels: 1,
			rate:     8000,
			bits:     32,
			frames:   [][]float64{{0.5}},
		}.bytes())

		_, err := audio.ReadWAV(path)
		assert.Error(t, err)
	})

	t.Run("float16", func(t *testing.T) {
		path := writeFile(t, floatWAV{
			format:   3,
			channels: 1,
			rate:     8000,
			bits:     16,
		}.bytes())

		_, err := audio.ReadWAV(path)
		assert.ErrorContains(t, err, "float sample width")
	})
}
