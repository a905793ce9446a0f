package emotion_test

import "github.com/superfeelapi/goEmotionAdvisor/foundation/audio"

func audioFixture() audio.Recording {
	return audio.Recording{Samples: make([]float64, 160), SampleRate: 16000}
}
