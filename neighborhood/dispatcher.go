package neighborhood

import (
	"math/rand"
	"sync"

	"github.com/solverkit/tabumip/model"
)

// Dispatcher owns the enabled Generators and produces the single candidate
// buffer the tabu-search inner loop iterates each outer pass (spec section
// 4.4): every generator's UpdateMoves output is concatenated, deduplicated
// by Move.Hash, and shuffled with a deterministic per-call stream derived
// from the Dispatcher's seed so repeated solves with the same seed revisit
// candidates in the same order.
type Dispatcher struct {
	Generators []Generator
	Parallel   bool

	base    *rand.Rand
	calls   uint64
	chainer *ChainGenerator
}

// NewDispatcher builds a Dispatcher over gens seeded from seed (0 selects
// the package default). If one of gens is a *ChainGenerator, Record calls
// forward to it automatically.
func NewDispatcher(seed int64, parallel bool, gens ...Generator) *Dispatcher {
	d := &Dispatcher{Generators: gens, Parallel: parallel, base: rngFromSeed(seed)}
	for _, g := range gens {
		if c, ok := g.(*ChainGenerator); ok {
			d.chainer = c
		}
	}
	return d
}

// Record forwards a just-applied move to the embedded ChainGenerator's
// buffer, if one is present, so future UpdateMoves calls can chain from it.
func (d *Dispatcher) Record(mv *model.Move) {
	if d.chainer != nil {
		d.chainer.Record(mv)
	}
}

// UpdateMoves runs every generator (concurrently if d.Parallel, per spec
// section 5's second fan-out point), concatenates their buffers, drops
// duplicate alterations by hash, and returns the result shuffled with this
// call's derived RNG stream.
func (d *Dispatcher) UpdateMoves(s *model.Store, f Filter) []*model.Move {
	var all [][]*model.Move
	if d.Parallel && len(d.Generators) > 1 {
		all = make([][]*model.Move, len(d.Generators))
		var wg sync.WaitGroup
		wg.Add(len(d.Generators))
		for i, g := range d.Generators {
			i, g := i, g
			go func() {
				defer wg.Done()
				all[i] = g.UpdateMoves(s, f)
			}()
		}
		wg.Wait()
	} else {
		for _, g := range d.Generators {
			all = append(all, g.UpdateMoves(s, f))
		}
	}

	seen := make(map[uint64]struct{})
	var merged []*model.Move
	for _, batch := range all {
		for _, mv := range batch {
			if mv == nil {
				continue
			}
			if _, ok := seen[mv.Hash()]; ok {
				continue
			}
			seen[mv.Hash()] = struct{}{}
			merged = append(merged, mv)
		}
	}

	d.calls++
	stream := deriveRNG(d.base, d.calls)
	shuffleMovesInPlace(merged, stream)
	return merged
}
