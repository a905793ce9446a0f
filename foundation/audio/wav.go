package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/cryptix/wav"
)

const pcmBits = 16

// WriteWAV writes samples to path as 16-bit mono PCM. Samples are clipped to
// [-1, 1] before quantization.
func WriteWAV(path string, samples []float64, sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", sampleRate)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}

	meta := wav.File{
		Channels:        1,
		SampleRate:      uint32(sampleRate),
		SignificantBits: pcmBits,
	}

	writer, err := meta.NewWriter(file)
	if err != nil {
		file.Close()
		return err
	}

	buf := make([]byte, 2)
	for _, s := range samples {
		binary.LittleEndian.PutUint16(buf, uint16(quantize(s)))
		if err := writer.WriteSample(buf); err != nil {
			writer.Close()
			return err
		}
	}

	return writer.Close()
}

// WritePCM16 wraps raw little-endian 16-bit mono PCM bytes in a WAV file.
func WritePCM16(path string, pcm []byte, sampleRate int) error {
	if len(pcm)%2 != 0 {
		return errors.New("pcm16 payload has an odd number of bytes")
	}

	samples := make([]float64, len(pcm)/2)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(pcm[2*i:]))
		samples[i] = float64(v) / math.MaxInt16
	}

	return WriteWAV(path, samples, sampleRate)
}

// WriteTempWAV writes the chunk to a new file in dir (os.TempDir when empty)
// and returns its path. The caller removes the file.
func WriteTempWAV(dir string, c Chunk) (string, error) {
	file, err := os.CreateTemp(dir, fmt.Sprintf("chunk-%03d-*.wav", c.Index))
	if err != nil {
		return "", err
	}
	path := file.Name()
	file.Close()

	if err := WriteWAV(path, c.Samples, c.SampleRate); err != nil {
		os.Remove(path)
		return "", err
	}

	return path, nil
}

// ReadWAV loads a PCM or IEEE float WAV file as a mono recording in [-1, 1].
// Multi-channel audio is averaged down to one channel.
func ReadWAV(path string) (Recording, error) {
	file, err := os.Open(path)
	if err != nil {
		return Recording{}, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return Recording{}, err
	}

	reader, err := wav.NewReader(file, info.Size())
	if errors.Is(err, wav.ErrFormatNotSupported) {
		rec, ok, ferr := readFloatWAV(file)
		switch {
		case ferr != nil:
			return Recording{}, fmt.Errorf("wav header: %w", ferr)
		case ok:
			return rec, nil
		}
	}
	if err != nil {
		return Recording{}, fmt.Errorf("wav header: %w", err)
	}

	meta := reader.GetFile()
	channels := int(meta.Channels)
	if channels < 1 {
		channels = 1
	}

	var samples []float64
	var frame float64
	var n int

	for {
		raw, err := reader.ReadRawSample()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Recording{}, fmt.Errorf("wav sample: %w", err)
		}

		v, err := decodeSample(raw)
		if err != nil {
			return Recording{}, err
		}

		frame += v
		n++
		if n == channels {
			samples = append(samples, frame/float64(channels))
			frame, n = 0, 0
		}
	}

	return Recording{
		Samples:    samples,
		SampleRate: int(meta.SampleRate),
	}, nil
}

// =====================================================================================================================

func quantize(s float64) int16 {
	switch {
	case math.IsNaN(s):
		return 0
	case s > 1:
		s = 1
	case s < -1:
		s = -1
	}
	return int16(math.Round(s * math.MaxInt16))
}

func decodeSample(raw []byte) (float64, error) {
	switch len(raw) {
	case 1:
		return (float64(raw[0]) - 128) / 128, nil
	case 2:
		return float64(int16(binary.LittleEndian.Uint16(raw))) / 32768, nil
	case 3:
		v := int32(raw[0]) | int32(raw[1])<<8 | int32(int8(raw[2]))<<16
		return float64(v) / 8388608, nil
	case 4:
		return float64(int32(binary.LittleEndian.Uint32(raw))) / 2147483648, nil
	}
	return 0, fmt.Errorf("unsupported sample width %d bytes", len(raw))
}
