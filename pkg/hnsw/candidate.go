package hnsw

import "math"

// orderedDistance is a total order over float32 distances, with NaN sorted
// as the maximum possible value. search.go never compares raw float32s with
// < directly for exactly this reason: a NaN distance (a misbehaving Point
// implementation, or an accumulated floating point artifact) must degrade
// search quality, not corrupt the heap or the sorted nearest slice.
type orderedDistance float32

func orderDistance(d float32) orderedDistance {
	if math.IsNaN(float64(d)) {
		return orderedDistance(math.Inf(1))
	}
	return orderedDistance(d)
}

func (a orderedDistance) less(b orderedDistance) bool {
	return a < b
}

// candidate is a (distance, PointID) pair, the unit of work throughout
// search and neighbor selection. Candidates compare by distance first,
// breaking ties toward the smaller PointID so that search order (and hence
// the resulting graph, for a fixed seed) is deterministic.
type candidate struct {
	distance orderedDistance
	pid      PointID
}

func (c candidate) less(o candidate) bool {
	if c.distance != o.distance {
		return c.distance.less(o.distance)
	}
	return c.pid < o.pid
}

// candidateHeap is a min-heap of candidates ordered nearest-first, used as
// the "C" candidate set from the HNSW paper's algorithm 2.
type candidateHeap []candidate

func (h candidateHeap) Len() int            { return len(h) }
func (h candidateHeap) Less(i, j int) bool  { return h[i].less(h[j]) }
func (h candidateHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *candidateHeap) Push(x interface{}) { *h = append(*h, x.(candidate)) }
func (h *candidateHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
