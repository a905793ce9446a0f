// Package worker runs recording sessions end to end: segmenting, classifying
// chunks, aggregating, advising and delivering the outcome to optional sinks.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/superfeelapi/goEmotionAdvisor/business/advisor"
	"github.com/superfeelapi/goEmotionAdvisor/business/emotion"
	"github.com/superfeelapi/goEmotionAdvisor/foundation/audio"
	"github.com/superfeelapi/goEmotionAdvisor/foundation/metrics"
	"github.com/superfeelapi/goEmotionAdvisor/foundation/pubsub"
	"github.com/superfeelapi/goEmotionAdvisor/foundation/state"
)

const (
	outcomeTopic = "outcome"

	defaultChunkTimeout = 20 * time.Second
	defaultConcurrency  = 1
	sinkTimeout         = 30 * time.Second
	publishTimeout      = 5 * time.Second
	sinkCapacity        = 16
)

type Worker struct {
	config Config
	state  *state.State
	logger *zap.SugaredLogger
	broker *pubsub.Broker

	classifier Classifier
	advisor    *advisor.Advisor
	speaker    Speaker
	translator Translator
	publisher  Publisher
	emotionLog EmotionLog
	limiter    *rate.Limiter

	wg       sync.WaitGroup
	subs     []*pubsub.Subscriber
	shutOnce sync.Once
}

// Run starts the sink operations and returns a worker ready to process
// sessions.
func Run(s Settings) *Worker {
	if s.MaxChunkDuration <= 0 {
		s.MaxChunkDuration = audio.DefaultMaxDuration
	}
	if s.ChunkTimeout <= 0 {
		s.ChunkTimeout = defaultChunkTimeout
	}
	if s.Concurrency <= 0 {
		s.Concurrency = defaultConcurrency
	}
	if s.Logger == nil {
		s.Logger = zap.NewNop().Sugar()
	}

	var enabled []state.Service
	if s.Speaker != nil {
		enabled = append(enabled, state.Speech)
	}
	if s.EmotionLog != nil {
		enabled = append(enabled, state.EmotionLog)
	}
	if s.Publisher != nil {
		enabled = append(enabled, state.Publisher)
	}
	if s.Translator != nil {
		enabled = append(enabled, state.Translation)
	}

	w := &Worker{
		config:     s.Config,
		state:      state.NewState(enabled...),
		logger:     s.Logger,
		broker:     pubsub.NewBroker(),
		classifier: s.Classifier,
		advisor:    s.Advisor,
		speaker:    s.Speaker,
		translator: s.Translator,
		publisher:  s.Publisher,
		emotionLog: s.EmotionLog,
	}

	if s.RatePerSecond > 0 {
		w.limiter = rate.NewLimiter(rate.Limit(s.RatePerSecond), 1)
	}

	operations := map[state.Service]func(Outcome){
		state.Speech:     w.speechOperation,
		state.EmotionLog: w.emotionLogOperation,
		state.Publisher:  w.publishOperation,
	}

	for svc, op := range operations {
		if !w.state.Get(svc) {
			continue
		}

		sub := pubsub.NewSubscriber(sinkCapacity)
		w.broker.Subscribe(outcomeTopic, sub)
		w.subs = append(w.subs, sub)

		w.wg.Add(1)
		go func(svc state.Service, op func(Outcome)) {
			defer w.wg.Done()
			w.consume(svc, sub, op)
		}(svc, op)
	}

	return w
}

// Shutdown stops accepting outcomes, lets every sink drain what it already
// received and waits for them to finish.
func (w *Worker) Shutdown() {
	w.shutOnce.Do(func() {
		w.logger.Infow("worker: shutdown: started")
		defer w.logger.Infow("worker: shutdown: completed")

		for _, sub := range w.subs {
			if err := w.broker.UnSubscribe(outcomeTopic, sub); err != nil {
				w.logger.Errorw("worker: shutdown", "ERROR", err)
			}
		}

		w.wg.Wait()
	})
}

// Process runs one session. Per-chunk failures never fail the session; the
// only error is ctx ending before the analysis finished.
func (w *Worker) Process(ctx context.Context, s *emotion.Session) (Outcome, error) {
	start := time.Now()

	o := Outcome{
		SessionID:  s.ID,
		UserID:     s.UserID,
		Transcript: s.Transcript,
		CreatedAt:  start.UTC(),
	}

	w.logger.Infow("worker: Process: started", "sessionID", s.ID, "duration", s.Recording.Duration().String(),
		"chunks", s.Recording.ChunkCount(w.config.MaxChunkDuration))

	if len(s.Recording.Samples) == 0 {
		w.logger.Infow("worker: Process", "sessionID", s.ID, "status", audio.ErrNoAudio)
	}

	rec := s.Recording
	if w.config.Enhance && len(rec.Samples) > 0 {
		rec = audio.Enhance(rec)
	}

	result, err := w.analyze(ctx, s.ID, rec)

	switch {
	case errors.Is(err, emotion.ErrUndetected):
		o.Advice = w.advisor.GetAdvice(nil)
		o.Skipped = result.Skipped
		metrics.Sessions.WithLabelValues("undetected").Inc()

	case err != nil:
		metrics.Sessions.WithLabelValues("cancelled").Inc()
		return Outcome{}, err

	default:
		o.Detected = true
		o.Result = &result
		o.Top = result.Top(3)
		o.Chunks = result.Chunks
		o.Skipped = result.Skipped
		o.Advice = w.advisor.GetAdvice(&result)
		metrics.Sessions.WithLabelValues("detected").Inc()
		metrics.PrimaryEmotion.WithLabelValues(o.Advice.PrimaryEmotion).Inc()
	}

	if w.state.Get(state.Translation) {
		o.Translated = w.translate(ctx, o.Advice)
	}

	o.Duration = time.Since(start)

	w.logger.Infow("worker: Process: completed", "sessionID", s.ID, "detected", o.Detected,
		"emotion", o.Advice.PrimaryEmotion, "chunks", o.Chunks, "skipped", o.Skipped)

	// Every sink gets the outcome even when the caller has gone away.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := w.broker.Publish(pubCtx, outcomeTopic, o); err != nil && !errors.Is(err, pubsub.ErrNoSubscribers) {
		w.logger.Errorw("worker: Process: publish outcome", "ERROR", err)
	}

	return o, nil
}

// =====================================================================================================================

func (w *Worker) consume(svc state.Service, sub *pubsub.Subscriber, op func(Outcome)) {
	w.logger.Infow("worker: consume: G started", "sink", svc.String())
	defer w.logger.Infow("worker: consume: G completed", "sink", svc.String())

	for data := range sub.GetChannel() {
		o, ok := data.(Outcome)
		if !ok {
			continue
		}
		if !w.state.Get(svc) {
			continue
		}
		op(o)
	}
}

func (w *Worker) sinkFailed(svc state.Service, err error) {
	metrics.SinkErrors.WithLabelValues(svc.String()).Inc()
	w.logger.Errorw("worker: sink", "sink", svc.String(), "ERROR", err)
}
