package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/superfeelapi/goEmotionAdvisor/business/advisor"
	"github.com/superfeelapi/goEmotionAdvisor/foundation/audio"
	"github.com/superfeelapi/goEmotionAdvisor/foundation/state"
)

func (w *Worker) speechOperation(o Outcome) {
	if !o.Detected {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()

	pcm, err := w.speaker.Speak(ctx, o.Spoken())
	if err != nil {
		w.sinkFailed(state.Speech, err)
		return
	}

	dir := w.config.SpeechDirectory
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		w.sinkFailed(state.Speech, err)
		return
	}

	path := filepath.Join(dir, o.SessionID+".wav")
	if err := audio.WritePCM16(path, pcm, w.speaker.SampleRate()); err != nil {
		w.sinkFailed(state.Speech, err)
		return
	}

	w.logger.Infow("worker: speechOperation", "sessionID", o.SessionID, "path", path)
}

func (w *Worker) emotionLogOperation(o Outcome) {
	if !o.Detected || o.UserID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()

	var response string
	if len(o.Advice.SpecificAdvice) > 0 {
		response = o.Advice.SpecificAdvice[0]
	}

	if _, err := w.emotionLog.Record(ctx, o.UserID, o.Advice.PrimaryEmotion, response, o.Transcript); err != nil {
		w.sinkFailed(state.EmotionLog, err)
	}
}

func (w *Worker) publishOperation(o Outcome) {
	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()

	if err := w.publisher.Produce(ctx, o); err != nil {
		w.state.Set(state.Publisher, false)
		w.sinkFailed(state.Publisher, fmt.Errorf("publisher disabled: %w", err))
	}
}

// translate returns the advice in the target language, or nil when the
// translation failed.
func (w *Worker) translate(ctx context.Context, a advisor.Advice) *advisor.Advice {
	texts := append(append([]string{}, a.SpecificAdvice...), a.GeneralTip)

	out, err := w.translator.Translate(ctx, texts)
	if err != nil || len(out) != len(texts) {
		if err == nil {
			err = fmt.Errorf("translated %d of %d texts", len(out), len(texts))
		}
		w.sinkFailed(state.Translation, err)
		return nil
	}

	t := a
	t.SpecificAdvice = out[:len(out)-1]
	t.GeneralTip = out[len(out)-1]

	return &t
}
