package hnsw

// HnswMap pairs an Hnsw index with a value of type V per point, so that
// callers can look up application data instead of a bare PointID
// (spec.md §4.7). Values are remapped into PointID order at construction
// time by Build.
type HnswMap[P Point[P], V any] struct {
	hnsw   *Hnsw[P]
	values []V
}

// Len reports how many points the index holds.
func (m *HnswMap[P, V]) Len() int {
	return m.hnsw.Len()
}

// MapItem is one search result, extending Item with the value associated
// with the matching point.
type MapItem[P Point[P], V any] struct {
	Distance float32
	PointID  PointID
	Point    P
	Value    V
}

// Search finds the points nearest to point, using search as scratch state.
func (m *HnswMap[P, V]) Search(point *P, search *Search) []MapItem[P, V] {
	items := m.hnsw.Search(point, search)
	out := make([]MapItem[P, V], len(items))
	for i, it := range items {
		out[i] = MapItem[P, V]{
			Distance: it.Distance,
			PointID:  it.PointID,
			Point:    it.Point,
			Value:    m.values[it.PointID],
		}
	}
	return out
}

// Iter yields every point in the index paired with its value, in PointID
// order.
func (m *HnswMap[P, V]) Iter() func(yield func(PointID, P, V) bool) {
	return func(yield func(PointID, P, V) bool) {
		for i, p := range m.hnsw.points {
			if !yield(PointID(i), p, m.values[i]) {
				return
			}
		}
	}
}

// Value returns the value associated with pid.
func (m *HnswMap[P, V]) Value(pid PointID) V {
	return m.values[pid]
}
