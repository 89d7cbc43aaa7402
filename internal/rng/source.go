// Package rng provides the explicit, seeded random source used by noise
// synthesis.
//
// A [Source] is safe for concurrent use: draws are serialised so only one
// batch is in flight at a time. For reproducible parallel work derive one
// sub-generator per task with [Source.Derive] instead of sharing the root;
// the derived streams depend only on the root seed and the stream id, never on
// scheduling order.
package rng

import (
	"math/rand/v2"
	"sync"
)

type Source struct {
	mu     sync.Mutex
	seed   int64
	stream uint64
	rnd    *rand.Rand
}

// New returns the root source for seed. Two sources built from the same seed
// produce bit-identical sequences.
func New(seed int64) *Source {
	return newStream(seed, 0)
}

func newStream(seed int64, stream uint64) *Source {
	return &Source{
		seed:   seed,
		stream: stream,
		rnd:    rand.New(rand.NewPCG(uint64(seed), splitmix(stream))),
	}
}

func (s *Source) Seed() int64    { return s.seed }
func (s *Source) Stream() uint64 { return s.stream }

// Derive returns an independent sub-generator for task id. Stream ids are
// offset by one so that Derive(0) never aliases the root stream.
func (s *Source) Derive(id uint64) *Source {
	return newStream(s.seed, s.stream*0x9e3779b97f4a7c15+id+1)
}

func (s *Source) NormFloat64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.NormFloat64()
}

func (s *Source) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Float64()
}

// Normals fills dst with standard normal draws under a single lock, so the
// batch is contiguous in the stream even when the source is shared.
func (s *Source) Normals(dst []float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range dst {
		dst[i] = s.rnd.NormFloat64()
	}
}

// splitmix scrambles stream ids so neighbouring ids select unrelated PCG
// increments.
func splitmix(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
