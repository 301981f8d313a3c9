package hnsw

import (
	"math"
	"sync"
)

// neighbors is the single flat PointID arena backing every layer of the
// graph (spec.md §3/§9: "model as an arena ... never as owning pointer
// graphs"). Layer 0 is laid out first (stride 2*M), followed by each
// sparser layer in turn (stride M), each as a row-major nodes x stride
// block addressed directly by PointID.
type neighbors []PointID

func newNeighbors(m meta) neighbors {
	n := make(neighbors, m.neighbors())
	for i := range n {
		n[i] = invalidPoint
	}
	return n
}

// layer is anything that can report the neighbor row for a PointID, so that
// searchLayer can run identically over a read-only upper-layer slice or the
// live, lockable zero layer.
type layer interface {
	// row returns up to limit neighbor PointIDs for pid, nearest-first,
	// stopping at the first invalid sentinel.
	row(pid PointID, limit int) []PointID
}

// layerSlice is a read-only view over one layer's portion of the arena,
// used for every layer above 0 once it has been snapshotted from layer 0.
type layerSlice struct {
	data   []PointID
	stride int
}

func (m meta) layer(id LayerID, arena neighbors) layerSlice {
	start, end := m.bounds(id)
	return layerSlice{data: arena[start:end], stride: m.stride(id)}
}

func (l layerSlice) row(pid PointID, limit int) []PointID {
	start := int(pid) * l.stride
	end := start + l.stride
	row := l.data[start:end]
	return truncateAtSentinel(row, limit)
}

// layerSliceMut is the writable counterpart used only during construction,
// to initialize zero-layer locks and to snapshot layer 0 into the next
// layer up once a layer finishes building.
type layerSliceMut struct {
	data   []PointID
	stride int
}

func (m meta) layerMut(id LayerID, arena neighbors) layerSliceMut {
	start, end := m.bounds(id)
	return layerSliceMut{data: arena[start:end], stride: m.stride(id)}
}

// asReadOnly views this layer's current contents without further mutation,
// used once a higher layer has been snapshotted and construction moves on
// to the layer below it.
func (l layerSliceMut) asReadOnly() layerSlice {
	return layerSlice{data: l.data, stride: l.stride}
}

// zeroNodes splits the layer-0 slice into one lock-guarded row per node.
// Only layer 0 is ever mutated node-by-node during construction; every
// higher layer is written exactly once, in bulk, by copyFromZero.
func (l layerSliceMut) zeroNodes() []*zeroNode {
	count := len(l.data) / l.stride
	nodes := make([]*zeroNode, count)
	for i := range nodes {
		row := l.data[i*l.stride : (i+1)*l.stride]
		nodes[i] = &zeroNode{row: row}
	}
	return nodes
}

// copyFromZero snapshots the first len(zero) rows of the live zero layer
// into this (sparser) layer, truncating each row to this layer's stride.
// This is the barrier point in spec.md §5: it must complete before any
// insertion into the next lower layer begins, since that layer's search
// reads this slice lock-free.
func (l layerSliceMut) copyFromZero(zero []*zeroNode) {
	for i, src := range zero {
		dst := l.data[i*l.stride : (i+1)*l.stride]
		src.mu.RLock()
		copy(dst, src.row[:l.stride])
		src.mu.RUnlock()
	}
}

// zeroNode is one read/write-lockable row of the live layer-0 graph. A
// worker holds its new node's write lock for that node's whole insertion;
// besides it, the worker locks other rows one at a time: read locks while
// copying a row out, write locks across a single binary search plus
// shift-insert or a full rewrite.
type zeroNode struct {
	mu  sync.RWMutex
	row []PointID
}

// nearest returns up to limit neighbor PointIDs for this node, stopping at
// the first sentinel, under a read lock.
func (z *zeroNode) nearest(limit int) []PointID {
	z.mu.RLock()
	defer z.mu.RUnlock()
	// Copy out: the caller will push these into scratch state while other
	// workers may concurrently mutate this row.
	row := truncateAtSentinel(z.row, limit)
	out := make([]PointID, len(row))
	copy(out, row)
	return out
}

// set overwrites a single slot; used only while building the *new* node's
// own row, which no other worker can see yet.
func (z *zeroNode) set(idx int, pid PointID) {
	z.row[idx] = pid
}

// insertAtDistance finds the sorted position for newPid among this row's
// existing entries -- ordered by distToThird, the distance from *this*
// node's point to each candidate neighbor, with invalid slots sorting last
// -- and shift-inserts it there, dropping the final slot.
//
// The read (binary search) and write (shift-insert) are done under a single
// write-lock acquisition rather than a read lock followed by a separately
// acquired write lock: spec.md §5 calls this out explicitly as the one
// sequence that must be atomic with respect to other writers of the same
// row to avoid inserting at a now-stale index.
func (z *zeroNode) insertAtDistance(newPid PointID, newDistance orderedDistance, distToThird func(third PointID) float32) {
	z.mu.Lock()
	defer z.mu.Unlock()

	lo, hi := 0, len(z.row)
	for lo < hi {
		mid := (lo + hi) / 2
		third := z.row[mid]
		thirdDist := orderedDistance(math.Inf(1))
		if third.IsValid() {
			thirdDist = orderDistance(distToThird(third))
		}
		if thirdDist.less(newDistance) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}

	if lo >= len(z.row) {
		return
	}
	if z.row[lo].IsValid() {
		copy(z.row[lo+1:], z.row[lo:len(z.row)-1])
	}
	z.row[lo] = newPid
}

// rewrite replaces this row's contents with the given PointIDs in order,
// padding any remaining slots with the invalid sentinel. Used by heuristic
// neighbor selection, which recomputes a node's entire neighbor set rather
// than inserting one candidate.
func (z *zeroNode) rewrite(pids []PointID) {
	z.mu.Lock()
	defer z.mu.Unlock()
	i := 0
	for ; i < len(pids) && i < len(z.row); i++ {
		z.row[i] = pids[i]
	}
	for ; i < len(z.row); i++ {
		z.row[i] = invalidPoint
	}
}

// zeroLayer adapts the live, lockable zero layer to the layer interface so
// searchLayer can run over it exactly as it would over a read-only upper
// layer.
type zeroLayer []*zeroNode

func (z zeroLayer) row(pid PointID, limit int) []PointID {
	return z[pid].nearest(limit)
}

// truncateAtSentinel returns the prefix of row up to the first invalid
// PointID, further capped at limit entries.
func truncateAtSentinel(row []PointID, limit int) []PointID {
	if limit < len(row) {
		row = row[:limit]
	}
	for i, pid := range row {
		if !pid.IsValid() {
			return row[:i]
		}
	}
	return row
}
