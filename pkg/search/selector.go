package search

import (
	"container/heap"
	"math"
	"sort"
)

// Candidate is a scored payload held by a Selector.
type Candidate[T any] struct {
	Score float64
	Value T
	seq   int
}

// Selector keeps the k highest-scoring proposals seen so far.
// Equal scores keep proposal order.
type Selector[T any] struct {
	k    int
	seq  int
	heap candidateHeap[T]
}

// NewSelector returns an empty selector of capacity k (at least 1).
func NewSelector[T any](k int) *Selector[T] {
	k = max(k, 1)
	return &Selector[T]{k: k, heap: make(candidateHeap[T], 0, min(k, 1024))}
}

// Propose offers a scored value. At capacity it replaces the current minimum
// only when score is strictly greater. It reports whether the value was kept.
func (s *Selector[T]) Propose(score float64, v T) bool {
	c := Candidate[T]{Score: score, Value: v, seq: s.seq}
	s.seq++
	if len(s.heap) < s.k {
		heap.Push(&s.heap, c)
		return true
	}
	if score <= s.heap[0].Score {
		return false
	}
	s.heap[0] = c
	heap.Fix(&s.heap, 0)
	return true
}

// LeastScore is the k-th best score, or -Inf while under capacity.
func (s *Selector[T]) LeastScore() float64 {
	if len(s.heap) < s.k {
		return math.Inf(-1)
	}
	return s.heap[0].Score
}

func (s *Selector[T]) Len() int { return len(s.heap) }
func (s *Selector[T]) Cap() int { return s.k }

// Get returns the contents best first.
func (s *Selector[T]) Get() []Candidate[T] {
	out := make([]Candidate[T], len(s.heap))
	copy(out, s.heap)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].seq < out[j].seq
	})
	return out
}

// candidateHeap is a min-heap; among equal scores the latest proposal is on top
// so it is the first to be evicted.
type candidateHeap[T any] []Candidate[T]

func (h candidateHeap[T]) Len() int { return len(h) }
func (h candidateHeap[T]) Less(i, j int) bool {
	if h[i].Score != h[j].Score {
		return h[i].Score < h[j].Score
	}
	return h[i].seq > h[j].seq
}
func (h candidateHeap[T]) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *candidateHeap[T]) Push(x any)   { *h = append(*h, x.(Candidate[T])) }
func (h *candidateHeap[T]) Pop() any {
	old := *h
	c := old[len(old)-1]
	*h = old[:len(old)-1]
	return c
}
