package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

const (
	formatIEEEFloat  = 3
	formatExtensible = 0xFFFE
)

type fmtChunk struct {
	format     uint16
	channels   int
	sampleRate int
	bits       int
}

// readFloatWAV decodes an IEEE float WAV. It reports false when the file is
// a WAV of another format, so the caller can surface its own error.
func readFloatWAV(r io.ReadSeeker) (Recording, bool, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return Recording{}, false, err
	}

	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return Recording{}, false, nil
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return Recording{}, false, nil
	}

	var fc *fmtChunk
	for {
		var hdr [8]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return Recording{}, false, nil
		}
		id := string(hdr[0:4])
		size := int64(binary.LittleEndian.Uint32(hdr[4:8]))

		switch id {
		case "fmt ":
			body := make([]byte, size)
			if _, err := io.ReadFull(r, body); err != nil {
				return Recording{}, false, err
			}
			f, err := parseFmt(body)
			if err != nil {
				return Recording{}, false, err
			}
			if f.format != formatIEEEFloat {
				return Recording{}, false, nil
			}
			fc = &f

		case "data":
			if fc == nil {
				return Recording{}, false, errors.New("data chunk before fmt chunk")
			}
			body := make([]byte, size)
			n, err := io.ReadFull(r, body)
			if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
				return Recording{}, false, err
			}
			samples, err := decodeFloat(body[:n], *fc)
			if err != nil {
				return Recording{}, false, err
			}
			return Recording{Samples: samples, SampleRate: fc.sampleRate}, true, nil

		default:
			if _, err := r.Seek(size, io.SeekCurrent); err != nil {
				return Recording{}, false, err
			}
		}

		if size%2 == 1 {
			if _, err := r.Seek(1, io.SeekCurrent); err != nil {
				return Recording{}, false, err
			}
		}
	}
}

func parseFmt(b []byte) (fmtChunk, error) {
	if len(b) < 16 {
		return fmtChunk{}, fmt.Errorf("fmt chunk too short: %d bytes", len(b))
	}

	f := fmtChunk{
		format:     binary.LittleEndian.Uint16(b[0:2]),
		channels:   int(binary.LittleEndian.Uint16(b[2:4])),
		sampleRate: int(binary.LittleEndian.Uint32(b[4:8])),
		bits:       int(binary.LittleEndian.Uint16(b[14:16])),
	}

	// WAVE_FORMAT_EXTENSIBLE carries the real format in its sub-format GUID.
	if f.format == formatExtensible && len(b) >= 26 {
		f.format = binary.LittleEndian.Uint16(b[24:26])
	}

	if f.channels < 1 {
		f.channels = 1
	}

	return f, nil
}

func decodeFloat(b []byte, f fmtChunk) ([]float64, error) {
	width := f.bits / 8
	if width != 4 && width != 8 {
		return nil, fmt.Errorf("unsupported float sample width %d bits", f.bits)
	}

	frame := width * f.channels
	samples := make([]float64, 0, len(b)/frame)

	for off := 0; off+frame <= len(b); off += frame {
		var sum float64
		for c := 0; c < f.channels; c++ {
			p := b[off+c*width:]
			if width == 4 {
				sum += float64(math.Float32frombits(binary.LittleEndian.Uint32(p)))
			} else {
				sum += math.Float64frombits(binary.LittleEndian.Uint64(p))
			}
		}
		samples = append(samples, sum/float64(f.channels))
	}

	return samples, nil
}
