package worker

import (
	"context"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/superfeelapi/goEmotionAdvisor/business/emotion"
	"github.com/superfeelapi/goEmotionAdvisor/foundation/audio"
	"github.com/superfeelapi/goEmotionAdvisor/foundation/metrics"
)

// analyze classifies every chunk of rec with at most Concurrency calls in
// flight and folds the results into one accumulator.
func (w *Worker) analyze(ctx context.Context, sessionID string, rec audio.Recording) (emotion.Result, error) {
	agg := emotion.NewAggregator(w.config.EmotionOrder)

	var g errgroup.Group
	g.SetLimit(w.config.Concurrency)

	for _, chunk := range rec.Chunks(w.config.MaxChunkDuration) {
		if ctx.Err() != nil {
			break
		}

		g.Go(func() error {
			r := w.classifyChunk(ctx, sessionID, chunk)
			if err := agg.Add(r); err != nil {
				w.logger.Errorw("worker: analyze", "sessionID", sessionID, "chunk", chunk.Index, "ERROR", err)
			}
			return nil
		})
	}

	g.Wait()

	if err := ctx.Err(); err != nil {
		return emotion.Result{}, err
	}

	return agg.Finalize()
}

// classifyChunk never fails the session: any error becomes a skipped result.
func (w *Worker) classifyChunk(ctx context.Context, sessionID string, c audio.Chunk) emotion.ChunkResult {
	if w.limiter != nil {
		if err := w.limiter.Wait(ctx); err != nil {
			return w.skip(sessionID, c.Index, err)
		}
	}

	path, err := audio.WriteTempWAV(w.config.TempDirectory, c)
	if err != nil {
		return w.skip(sessionID, c.Index, err)
	}
	defer os.Remove(path)

	ctx, cancel := context.WithTimeout(ctx, w.config.ChunkTimeout)
	defer cancel()

	start := time.Now()
	scores, err := w.classifier.Classify(ctx, path)
	metrics.ClassifyLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		return w.skip(sessionID, c.Index, err)
	}
	if len(scores) == 0 {
		return w.skip(sessionID, c.Index, nil)
	}

	metrics.Chunks.WithLabelValues("scored").Inc()

	return emotion.Scored(c.Index, scores)
}

func (w *Worker) skip(sessionID string, index int, reason error) emotion.ChunkResult {
	r := emotion.Skipped(index, reason)

	metrics.Chunks.WithLabelValues("skipped").Inc()
	w.logger.Warnw("worker: classifyChunk: skipped", "sessionID", sessionID, "chunk", index, "ERROR", r.Err)

	return r
}
