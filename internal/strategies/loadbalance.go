package strategies

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/verso-labs/quote-gateway/providers"
)

// LoadBalance distributes requests across targets using weighted random selection.
type LoadBalance struct {
	targets []Target
	lookup  ProviderLookup

	mu  sync.Mutex
	rng *rand.Rand
}

// NewLoadBalance creates a new load-balancing strategy.
func NewLoadBalance(targets []Target, lookup ProviderLookup, seed int64) *LoadBalance {
	return &LoadBalance{
		targets: targets,
		lookup:  lookup,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// Execute picks a target by weight and sends the request to it. Targets whose
// provider cannot serve the request's tag are excluded from the draw.
func (l *LoadBalance) Execute(ctx context.Context, req providers.FetchRequest) ([]providers.Quote, error) {
	if len(l.targets) == 0 {
		return nil, fmt.Errorf("no targets configured for load balancing")
	}

	eligible := make([]Target, 0, len(l.targets))
	for _, target := range l.targets {
		p, ok := l.lookup(target.Provider)
		if !ok {
			continue
		}
		if supports(p, req) {
			eligible = append(eligible, target)
		}
	}
	if len(eligible) == 0 {
		return nil, fmt.Errorf("no eligible targets for tag %q", req.Tag)
	}

	target := l.pick(eligible)
	p, ok := l.lookup(target.Provider)
	if !ok {
		return nil, fmt.Errorf("provider not found: %s", target.Provider)
	}
	return fetchFrom(ctx, p, req)
}

// pick selects a target using weighted random selection.
// Targets with zero or negative weight count as weight 1.
func (l *LoadBalance) pick(targets []Target) Target {
	var total float64
	for _, t := range targets {
		total += effectiveWeight(t)
	}

	l.mu.Lock()
	r := l.rng.Float64() * total
	l.mu.Unlock()

	for _, t := range targets {
		r -= effectiveWeight(t)
		if r < 0 {
			return t
		}
	}
	return targets[len(targets)-1]
}

func effectiveWeight(t Target) float64 {
	if t.Weight <= 0 {
		return 1
	}
	return t.Weight
}
