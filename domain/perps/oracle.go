package perps

import (
	"fmt"
	"math/rand"
)

// Sample is one oracle observation of the external index price.
type Sample struct {
	Index      float64
	Confidence float64
	At         uint64
}

// Validate rejects samples that arrived out of order or below the
// confidence threshold. A rejected sample skips the tick; it never
// fails the core.
func (s Sample) Validate(prevAt uint64, minConfidence float64) error {
	if s.Index <= 0 {
		return fmt.Errorf("%w: index %f", ErrOracleStale, s.Index)
	}
	if s.At <= prevAt && prevAt != 0 {
		return fmt.Errorf("%w: timestamp %d not after %d", ErrOracleStale, s.At, prevAt)
	}
	if s.Confidence < minConfidence {
		return fmt.Errorf("%w: confidence %f below %f", ErrOracleStale, s.Confidence, minConfidence)
	}
	return nil
}

// RandomWalkFeed is a simulated oracle for demos and tests. Each call
// perturbs the price by a small uniform noise term.
type RandomWalkFeed struct {
	price float64
	at    uint64
	rng   *rand.Rand
}

func NewRandomWalkFeed(start float64, seed int64) *RandomWalkFeed {
	return &RandomWalkFeed{price: start, rng: rand.New(rand.NewSource(seed))}
}

func (f *RandomWalkFeed) Next() Sample {
	noise := (f.rng.Float64() - 0.5) * 0.001
	f.price = f.price * (1 + noise)
	f.at++
	return Sample{Index: f.price, Confidence: 0.99, At: f.at}
}
