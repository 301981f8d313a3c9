package hnsw

// M is the target number of bidirectional links per node on sparse
// (non-zero) layers. Layer 0 always uses 2*M slots per node, matching the
// denser base layer from the HNSW paper.
const M = 32

// LayerID identifies a layer in the graph. Layer 0 is the base layer and
// contains every point; higher LayerIDs are strictly sparser.
type LayerID int

// IsZero reports whether l is the base layer.
func (l LayerID) IsZero() bool { return l == 0 }

// layerMeta is the per-layer bookkeeping record described in spec.md §3:
// how many points are newly introduced at this layer (max), how many points
// exist at or below it (total), and where its row-major neighbor slice
// lives within the flat neighbor arena ([start, end)).
type layerMeta struct {
	max, total int
	start, end int
}

// meta is computed once from (ml, n) and never mutated afterward. meta[0]
// describes layer 0 (the base layer, stride 2*M); later entries describe
// increasingly sparse layers (stride M), ending at the top layer.
type meta []layerMeta

// newMeta builds the layer table for n points under decay constant ml,
// following spec.md §3 exactly: repeatedly thin the running point count by
// ml until the next layer would hold fewer than M points, at which point it
// collapses to zero and construction stops.
func newMeta(ml float64, n int) meta {
	var layers meta
	num := n
	neighbors := 0
	for {
		next := int(float64(num) * ml)
		if next < M {
			next = 0
		}

		start := neighbors
		stride := M
		if len(layers) == 0 {
			stride = 2 * M
		}
		neighbors += num * stride

		layers = append(layers, layerMeta{
			max:   num - next,
			total: num,
			start: start,
			end:   neighbors,
		})

		if next == 0 {
			break
		}
		num = next
	}
	return layers
}

// neighbors returns the total length the flat neighbor arena must have to
// hold every layer.
func (m meta) neighbors() int {
	return m[len(m)-1].end
}

// topLayer returns the LayerID of the sparsest (highest) layer.
func (m meta) topLayer() LayerID {
	return LayerID(len(m) - 1)
}

// stride returns the per-node neighbor slot count for layer.
func (m meta) stride(layer LayerID) int {
	if layer.IsZero() {
		return 2 * M
	}
	return M
}

// bounds returns the [start, end) slice of the flat neighbor arena backing
// layer.
func (m meta) bounds(layer LayerID) (start, end int) {
	lm := m[layer]
	return lm.start, lm.end
}

// points returns the half-open range of PointIDs whose *maximum* layer is
// exactly layer -- i.e. the points inserted at that layer during
// construction, not every point present at or below it.
func (m meta) points(layer LayerID) (start, end int) {
	lm := m[layer]
	start = lm.total - lm.max
	if start < 1 {
		start = 1
	}
	return start, lm.total
}

// descending yields every LayerID from the top layer down to 0, the order
// construction and search both walk in.
func (m meta) descending() []LayerID {
	layers := make([]LayerID, len(m))
	for i := range layers {
		layers[i] = LayerID(len(m) - 1 - i)
	}
	return layers
}
