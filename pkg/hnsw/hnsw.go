package hnsw

// Hnsw is an immutable, in-memory approximate nearest-neighbor index over a
// set of points of type P. Construct one with BuildIndex; there is
// no way to add or remove points afterward (spec.md §1's Non-goals).
type Hnsw[P Point[P]] struct {
	efSearch int
	points   []P
	meta     meta
	arena    neighbors
}

// Len reports how many points the index holds.
func (h *Hnsw[P]) Len() int {
	return len(h.points)
}

// Item is one search result: the distance from the query point, the
// matching point's dense PointID, and the point itself.
type Item[P Point[P]] struct {
	Distance float32
	PointID  PointID
	Point    P
}

// Search finds the points nearest to point, using search as scratch state.
// Results are returned nearest-first. A Search value may be reused across
// many calls -- doing so is the expected usage pattern, since it avoids
// reallocating the visited set on every query (spec.md §4.6).
func (h *Hnsw[P]) Search(point *P, search *Search) []Item[P] {
	search.reset()
	if len(h.points) == 0 {
		return nil
	}

	search.reserve(len(h.points))
	dist := func(pid PointID) float32 { return (*point).Distance(h.points[pid]) }
	search.push(0, dist)

	for _, cur := range h.meta.descending() {
		ef, links := h.efSearch, 2*M
		if !cur.IsZero() {
			ef, links = 1, M
		}
		search.ef = ef
		layer := h.meta.layer(cur, h.arena)
		search.searchLayer(layer, links, dist)
		if !cur.IsZero() {
			search.cull()
		}
	}

	results := search.results()
	items := make([]Item[P], len(results))
	for i, c := range results {
		items[i] = Item[P]{
			Distance: float32(c.distance),
			PointID:  c.pid,
			Point:    h.points[c.pid],
		}
	}
	return items
}

// Iter yields every point in the index paired with its PointID, in PointID
// order (construction order, not caller-supplied order).
func (h *Hnsw[P]) Iter() func(yield func(PointID, P) bool) {
	return func(yield func(PointID, P) bool) {
		for i, p := range h.points {
			if !yield(PointID(i), p) {
				return
			}
		}
	}
}

// At returns the point stored at pid.
func (h *Hnsw[P]) At(pid PointID) P {
	return h.points[pid]
}
