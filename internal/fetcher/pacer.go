package fetcher

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/IshaanNene/partscout/internal/config"
)

// Pacer sleeps for a random duration inside a configured range between
// navigations, giving client-side rendering time to finish.
type Pacer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewPacer creates a Pacer. seed 0 seeds from the clock.
func NewPacer(seed int64) *Pacer {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Pacer{rng: rand.New(rand.NewSource(seed))}
}

// Delay draws a duration uniformly from [r.Min, r.Max].
func (p *Pacer) Delay(r config.DelayRange) time.Duration {
	if r.Max <= r.Min {
		return r.Min
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return r.Min + time.Duration(p.rng.Int63n(int64(r.Max-r.Min)+1))
}

// Wait sleeps for Delay(r) or until ctx is done.
func (p *Pacer) Wait(ctx context.Context, r config.DelayRange) (time.Duration, error) {
	d := p.Delay(r)
	if d <= 0 {
		return 0, ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return d, ctx.Err()
	case <-timer.C:
		return d, nil
	}
}
