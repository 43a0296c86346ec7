// Package decoder produces decode decisions and feeds them into sessions.
package decoder

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/emiliopalmerini/bcilab/internal/domain"
)

// DefaultMinConfidence is the lower bound of simulated confidence scores.
const DefaultMinConfidence = 60.0

// Simulated stands in for a real decoder: it picks a uniformly random
// vocabulary word with a confidence uniform in [MinConfidence, 100).
type Simulated struct {
	minConfidence float64

	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewSimulated returns a simulated source. A nil rng seeds one from the
// runtime's random source.
func NewSimulated(minConfidence float64, rng *rand.Rand) *Simulated {
	if minConfidence < domain.MinConfidence || minConfidence >= domain.MaxConfidence {
		minConfidence = DefaultMinConfidence
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Simulated{minConfidence: minConfidence, rng: rng, now: time.Now}
}

// Next returns a random decision. With an empty vocabulary it returns a
// decision with no word.
func (s *Simulated) Next(ctx context.Context, vocabulary []string) (domain.Decision, error) {
	if err := ctx.Err(); err != nil {
		return domain.Decision{}, err
	}

	d := domain.Decision{Timestamp: s.now()}
	if len(vocabulary) == 0 {
		return d, nil
	}

	s.mu.Lock()
	d.Word = vocabulary[s.rng.IntN(len(vocabulary))]
	d.Confidence = s.minConfidence + s.rng.Float64()*(domain.MaxConfidence-s.minConfidence)
	s.mu.Unlock()
	return d, nil
}
