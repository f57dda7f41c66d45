package memory

import "container/heap"

// scoredMove pairs a candidate move buffer index with its augmented score,
// lower is better (the engine always minimizes the augmented objective).
type scoredMove struct {
	index int
	score float64
}

// moveHeap is a container/heap max-heap over scoredMove.score, the same
// heap.Interface idiom the teacher's dijkstra package uses for its
// priority queue of (vertex, distance) pairs: Less is inverted here
// because we want to evict the *worst* score first when trimming to k,
// while TopK.Best still wants the single smallest score.
type moveHeap []scoredMove

func (h moveHeap) Len() int            { return len(h) }
func (h moveHeap) Less(i, j int) bool  { return h[i].score > h[j].score } // max-heap on score
func (h moveHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *moveHeap) Push(x interface{}) { *h = append(*h, x.(scoredMove)) }
func (h *moveHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// TopK maintains the k best-scoring (lowest augmented score) candidates
// seen so far, using a bounded max-heap so admitting a new candidate and
// evicting the current worst is O(log k) instead of the O(n) linear scan
// tabusearch would otherwise need once a generator's combined buffer grows
// past a few hundred moves.
type TopK struct {
	k int
	h moveHeap
}

// NewTopK creates a TopK tracker that retains at most k candidates.
func NewTopK(k int) *TopK {
	if k < 1 {
		k = 1
	}
	t := &TopK{k: k}
	heap.Init(&t.h)
	return t
}

// Offer considers (index, score) for admission into the top-k set.
func (t *TopK) Offer(index int, score float64) {
	if t.h.Len() < t.k {
		heap.Push(&t.h, scoredMove{index: index, score: score})
		return
	}
	if t.h.Len() > 0 && score < t.h[0].score {
		heap.Pop(&t.h)
		heap.Push(&t.h, scoredMove{index: index, score: score})
	}
}

// Best returns the index with the lowest score among everything offered,
// and false if nothing was ever offered.
func (t *TopK) Best() (int, bool) {
	if t.h.Len() == 0 {
		return 0, false
	}
	best := t.h[0]
	for _, c := range t.h {
		if c.score < best.score {
			best = c
		}
	}
	return best.index, true
}
