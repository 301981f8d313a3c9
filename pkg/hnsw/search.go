package hnsw

import (
	"container/heap"
	"sync"
)

// Heuristic selects the diversity-aware neighbor-selection strategy from
// spec.md §4.5 (the HNSW paper's algorithm 4) instead of simple truncation.
// ExtendCandidates additionally considers neighbors-of-neighbors before
// pruning; KeepPruned backfills the result with pruned candidates if the
// diversity rule leaves room to spare.
type Heuristic struct {
	ExtendCandidates bool
	KeepPruned       bool
}

// DefaultHeuristic matches the Builder default: no candidate extension, but
// pruned candidates are kept to fill out the neighbor set.
func DefaultHeuristic() Heuristic {
	return Heuristic{ExtendCandidates: false, KeepPruned: true}
}

// Search holds reusable per-query scratch state: the visited set, the
// candidate min-heap, and the sorted-nearest result buffer, plus the
// working/discarded buffers used only during heuristic neighbor selection.
// A zero-value Search is ready to use; Hnsw.Search resets it before use, so
// the same Search may be reused across many queries to avoid reallocating
// the visited set.
type Search struct {
	visited    visited
	candidates candidateHeap
	nearest    []candidate
	working    []candidate
	discarded  []candidate
	ef         int
}

// reset clears all scratch state, readying the Search for a new query.
func (s *Search) reset() {
	s.visited.clear()
	s.candidates = s.candidates[:0]
	s.nearest = s.nearest[:0]
	s.working = s.working[:0]
	s.discarded = s.discarded[:0]
}

// reserve grows the visited set's backing storage to at least n entries, so
// that a full-index query never needs to grow it mid-search.
func (s *Search) reserve(n int) {
	s.visited.reserve(n)
}

// Len reports how many results the last search produced.
func (s *Search) Len() int { return len(s.nearest) }

// distanceFunc computes the distance from a query point to the point stored
// at pid. Builder and Hnsw both close over their points slice to produce
// one of these, keeping Search itself free of a type parameter.
type distanceFunc func(pid PointID) float32

// push is algorithm 2's inner loop: track pid as a candidate for point,
// skipping it if already visited, and admitting it into both the candidate
// heap and the sorted nearest list if it is close enough to survive
// truncation to ef.
func (s *Search) push(pid PointID, dist distanceFunc) {
	if !s.visited.insert(pid) {
		return
	}
	c := candidate{distance: orderDistance(dist(pid)), pid: pid}
	idx := s.nearestInsertionIndex(c)
	if idx < 0 {
		return
	}
	s.nearest = append(s.nearest, candidate{})
	copy(s.nearest[idx+1:], s.nearest[idx:])
	s.nearest[idx] = c
	heap.Push(&s.candidates, c)
}

// nearestInsertionIndex returns the sorted position at which c should be
// inserted into s.nearest, or -1 if c cannot improve the frontier (nearest
// is already full at ef and c is no closer than its current last element).
func (s *Search) nearestInsertionIndex(c candidate) int {
	lo, hi := 0, len(s.nearest)
	for lo < hi {
		mid := (lo + hi) / 2
		if s.nearest[mid].less(c) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	ef := s.ef
	if ef < 1 {
		// A zero-value Search still admits the enter point.
		ef = 1
	}
	if lo >= ef {
		return -1
	}
	return lo
}

// searchLayer runs the bounded best-first search of spec.md §4.3 (the HNSW
// paper's algorithm 2) against l, seeded from whatever enter points have
// already been pushed onto s. links caps how many neighbor entries of each
// popped candidate are considered, letting the same zero-layer storage
// double as a stand-in for a higher layer restricted to M links.
func (s *Search) searchLayer(l layer, links int, dist distanceFunc) {
	for len(s.candidates) > 0 {
		c := heap.Pop(&s.candidates).(candidate)
		if n := len(s.nearest); n > 0 && s.nearest[n-1].distance.less(c.distance) {
			break
		}
		for _, pid := range l.row(c.pid, links) {
			s.push(pid, dist)
		}
		if len(s.nearest) > s.ef {
			s.nearest = s.nearest[:s.ef]
		}
	}
}

// cull lowers the search to the next layer down: the current nearest list
// (W from the paper) becomes the new enter-point set, seeding both the
// candidate heap and the visited set from scratch.
func (s *Search) cull() {
	s.candidates = s.candidates[:0]
	for _, c := range s.nearest {
		heap.Push(&s.candidates, c)
	}
	s.visited.clear()
	for _, c := range s.nearest {
		s.visited.insert(c.pid)
	}
}

// selectSimple implements spec.md §4.5's simple strategy: the first 2*M
// entries of nearest, unchanged.
func (s *Search) selectSimple() []candidate {
	if len(s.nearest) > 2*M {
		return s.nearest[:2*M]
	}
	return s.nearest
}

// selectHeuristic implements spec.md §4.5's diversity-aware strategy (the
// HNSW paper's algorithm 4): candidates are admitted into the result only if
// no already-admitted result point is closer to them than the query is,
// which biases links toward bridges between clusters rather than redundant
// within-cluster edges.
func (s *Search) selectHeuristic(params Heuristic, l layer, dist distanceFunc, pairDist func(a, b PointID) float32) []candidate {
	s.working = s.working[:0]
	for _, c := range s.nearest {
		s.working = append(s.working, c)
		if params.ExtendCandidates {
			for _, hop := range l.row(c.pid, 2*M) {
				if !s.visited.insert(hop) {
					continue
				}
				s.working = append(s.working, candidate{distance: orderDistance(dist(hop)), pid: hop})
			}
		}
	}
	if params.ExtendCandidates {
		sortCandidates(s.working)
	}

	s.nearest = s.nearest[:0]
	s.discarded = s.discarded[:0]
	for _, c := range s.working {
		if len(s.nearest) >= 2*M {
			break
		}
		closerToResult := false
		for _, r := range s.nearest {
			if orderDistance(pairDist(c.pid, r.pid)).less(c.distance) {
				closerToResult = true
				break
			}
		}
		if closerToResult {
			s.discarded = append(s.discarded, c)
		} else {
			s.nearest = append(s.nearest, c)
		}
	}

	if params.KeepPruned {
		for _, c := range s.discarded {
			if len(s.nearest) >= 2*M {
				break
			}
			s.nearest = append(s.nearest, c)
		}
	}

	return s.nearest
}

// addNeighborHeuristic reruns heuristic selection with new pinned as a seed
// alongside current's existing neighbors, used to recompute a neighbor's
// pruned neighbor set after the new node has been linked to it.
func (s *Search) addNeighborHeuristic(new PointID, current []PointID, params Heuristic, l layer, dist distanceFunc, pairDist func(a, b PointID) float32) []candidate {
	s.reset()
	s.push(new, dist)
	for _, pid := range current {
		s.push(pid, dist)
	}
	return s.selectHeuristic(params, l, dist, pairDist)
}

// results returns the final (distance, PointID) pairs nearest-first.
func (s *Search) results() []candidate {
	return s.nearest
}

func sortCandidates(c []candidate) {
	// insertion sort: working sets here are bounded by ef + a handful of
	// neighbor-of-neighbor hops, never large enough to need anything
	// fancier, and insertion sort keeps the nearest-first tie-breaking
	// identical to candidate.less used everywhere else.
	for i := 1; i < len(c); i++ {
		v := c[i]
		j := i - 1
		for j >= 0 && v.less(c[j]) {
			c[j+1] = c[j]
			j--
		}
		c[j+1] = v
	}
}

// searchPool is a mutex-guarded free list of (search, insertion) scratch
// pairs, created lazily and returned after use by construction workers
// (spec.md §4.4's "Borrow a (search, insertion) scratch pair from the
// pool"). Contention is low: pops/pushes only happen once per inserted
// point, never inside the hot inner loop.
type searchPool struct {
	mu   sync.Mutex
	free [][2]*Search
	n    int
}

func newSearchPool(n int) *searchPool {
	return &searchPool{n: n}
}

func (p *searchPool) get() (search, insertion *Search) {
	p.mu.Lock()
	if len(p.free) > 0 {
		pair := p.free[len(p.free)-1]
		p.free = p.free[:len(p.free)-1]
		p.mu.Unlock()
		return pair[0], pair[1]
	}
	p.mu.Unlock()
	search = &Search{}
	insertion = &Search{}
	search.reserve(p.n)
	insertion.reserve(p.n)
	return search, insertion
}

func (p *searchPool) put(search, insertion *Search) {
	p.mu.Lock()
	p.free = append(p.free, [2]*Search{search, insertion})
	p.mu.Unlock()
}
