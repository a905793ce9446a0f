package emotion

import (
	"math"
	"slices"
	"sort"
	"strings"
	"sync"
)

// Result is the accumulated score of every emotion across the scored chunks
// of one session.
type Result struct {
	// Scores lists the seed emotions in table order followed by any other
	// labels the classifier reported, sorted by name.
	Scores []EmotionScore `json:"scores"`

	// Chunks is the number of chunks that returned usable scores.
	Chunks int `json:"chunks"`

	// Skipped is the number of chunks that were dropped.
	Skipped int `json:"skipped"`
}

// Score returns the accumulated score of name, zero when absent.
func (r Result) Score(name string) float64 {
	name = normalizeName(name)
	for _, s := range r.Scores {
		if s.Name == name {
			return s.Score
		}
	}
	return 0
}

// Normalize divides an accumulated score by the number of scored chunks.
func (r Result) Normalize(score float64) float64 {
	if r.Chunks == 0 {
		return 0
	}
	return score / float64(r.Chunks)
}

// Top returns the n highest scores, ties kept in table order, with each score
// normalized per scored chunk.
func (r Result) Top(n int) []EmotionScore {
	top := slices.Clone(r.Scores)
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Score > top[j].Score
	})

	if n >= 0 && n < len(top) {
		top = top[:n]
	}
	for i := range top {
		top[i].Score = r.Normalize(top[i].Score)
	}

	return top
}

// =====================================================================================================================

// Aggregator folds chunk results into per-emotion totals for one session.
// It is safe for concurrent use. After Finalize it rejects further input.
type Aggregator struct {
	mu sync.Mutex

	order  []string
	totals map[string]float64

	scored    int
	skipped   []error
	finalized bool
}

// NewAggregator returns an accumulator seeded with every emotion in order at
// zero. An empty order uses DefaultOrder.
func NewAggregator(order []string) *Aggregator {
	if len(order) == 0 {
		order = DefaultOrder
	}

	a := Aggregator{
		order:  make([]string, 0, len(order)),
		totals: make(map[string]float64, len(order)),
	}

	for _, name := range order {
		name = normalizeName(name)
		if _, exists := a.totals[name]; exists || name == "" {
			continue
		}
		a.order = append(a.order, name)
		a.totals[name] = 0
	}

	return &a
}

// Add folds one chunk result into the totals. Skipped results and results
// without scores are counted but contribute nothing.
func (a *Aggregator) Add(r ChunkResult) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.finalized {
		return ErrFinalized
	}

	if !r.OK() {
		err := r.Err
		if err == nil {
			err = Skipped(r.Index, nil).Err
		}
		a.skipped = append(a.skipped, err)
		return nil
	}

	for name, score := range r.Scores {
		name = normalizeName(name)
		if name == "" {
			continue
		}
		if math.IsNaN(score) || score < 0 {
			score = 0
		}
		a.totals[name] += score
	}
	a.scored++

	return nil
}

// Scored returns the number of chunks that contributed scores so far.
func (a *Aggregator) Scored() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.scored
}

// SkipReasons returns the errors of the skipped chunks so far.
func (a *Aggregator) SkipReasons() []error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.skipped)
}

// Snapshot returns the totals accumulated so far without finalizing.
func (a *Aggregator) Snapshot() Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.result()
}

// Finalize closes the accumulator and returns the session result. When no
// chunk produced usable scores it returns ErrUndetected with a result that
// carries no scores, only the skip count.
func (a *Aggregator) Finalize() (Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.finalized = true

	if a.scored == 0 {
		return Result{Skipped: len(a.skipped)}, ErrUndetected
	}
	return a.result(), nil
}

func (a *Aggregator) result() Result {
	seeded := make(map[string]struct{}, len(a.order))
	scores := make([]EmotionScore, 0, len(a.totals))

	for _, name := range a.order {
		seeded[name] = struct{}{}
		scores = append(scores, EmotionScore{Name: name, Score: a.totals[name]})
	}

	var extra []string
	for name := range a.totals {
		if _, ok := seeded[name]; !ok {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)

	for _, name := range extra {
		scores = append(scores, EmotionScore{Name: name, Score: a.totals[name]})
	}

	return Result{
		Scores:  scores,
		Chunks:  a.scored,
		Skipped: len(a.skipped),
	}
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
