package hnsw

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sort"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Builder collects the tunable parameters for constructing an index
// (spec.md §4.1) and is the entry point for both BuildIndex and Build. It
// follows the teacher's fluent-setter config style (see pkg/index.NewHNSW's
// sibling constructors) rather than a struct literal with exported fields,
// so that defaults stay centralized in NewBuilder.
type Builder struct {
	efConstruction int
	efSearch       int
	ml             float64
	heuristic      *Heuristic
	seed           uint64
	workers        int
	logger         Logger
}

// NewBuilder returns a Builder with spec.md §4.1's documented defaults:
// ef_construction=100, ef_search=100, ml=1/ln(M), heuristic selection with
// KeepPruned=true, and a seed drawn from the runtime's entropy source.
func NewBuilder() *Builder {
	return &Builder{
		efConstruction: 100,
		efSearch:       100,
		ml:             1.0 / math.Log(float64(M)),
		heuristic:      &Heuristic{ExtendCandidates: false, KeepPruned: true},
		seed:           rand.Uint64(),
		workers:        runtime.GOMAXPROCS(0),
		logger:         NopLogger(),
	}
}

// EfConstruction sets the candidate-set size used during insertion search.
func (b *Builder) EfConstruction(ef int) *Builder {
	b.efConstruction = ef
	return b
}

// EfSearch sets the candidate-set size used during query-time search.
func (b *Builder) EfSearch(ef int) *Builder {
	b.efSearch = ef
	return b
}

// Ml overrides the layer-decay constant. Defaults to 1/ln(M).
func (b *Builder) Ml(ml float64) *Builder {
	b.ml = ml
	return b
}

// SelectHeuristic chooses the neighbor-selection strategy: pass nil for
// simple truncation (spec.md §4.5), or a Heuristic for diversity-aware
// selection.
func (b *Builder) SelectHeuristic(h *Heuristic) *Builder {
	b.heuristic = h
	return b
}

// Seed fixes the RNG seed used for layer assignment, making construction
// deterministic for a given input and seed.
func (b *Builder) Seed(seed uint64) *Builder {
	b.seed = seed
	return b
}

// Workers caps how many insertions run concurrently within a layer. It
// defaults to runtime.GOMAXPROCS(0); pass 1 to force the fully sequential
// per-layer loop the original source falls back to (spec.md §5's carried
// race note).
func (b *Builder) Workers(n int) *Builder {
	if n < 1 {
		n = 1
	}
	b.workers = n
	return b
}

// Logger attaches a structured logger for build-phase progress; defaults to
// a no-op logger.
func (b *Builder) Logger(l Logger) *Builder {
	if l != nil {
		b.logger = l
	}
	return b
}

// BuildIndex constructs an Hnsw from points, returning it alongside the
// caller-index -> PointID remap described in spec.md §3 and §6.
func BuildIndex[P Point[P]](b *Builder, points []P) (*Hnsw[P], []PointID, error) {
	if len(points) == 0 {
		return &Hnsw[P]{efSearch: b.efSearch, meta: meta{{max: 0, total: 0, start: 0, end: 0}}}, nil, nil
	}
	if len(points) >= int(invalidPoint) {
		return nil, nil, fmt.Errorf("hnsw: %w: %d points", ErrTooManyPoints, len(points))
	}

	stride := len(points[0].AsSlice())
	for i, p := range points {
		if len(p.AsSlice()) != stride {
			return nil, nil, fmt.Errorf("hnsw: %w: point %d has %d dimensions, want %d", ErrDimensionMismatch, i, len(p.AsSlice()), stride)
		}
	}

	order, remap := layerAssignmentOrder(points, b.seed)
	ordered := make([]P, len(points))
	for pid, origIdx := range order {
		ordered[pid] = points[origIdx]
	}

	m := newMeta(b.ml, len(points))
	arena := newNeighbors(m)

	zeroSlice := m.layerMut(0, arena)
	zero := zeroSlice.zeroNodes()

	c := &construction[P]{
		meta:           m,
		zero:           zero,
		arena:          arena,
		points:         ordered,
		heuristic:      b.heuristic,
		efConstruction: b.efConstruction,
		pool:           newSearchPool(len(points)),
		workers:        b.workers,
		logger:         b.logger,
	}

	for _, l := range m.descending() {
		start, end := m.points(l)
		if err := c.insertLayer(start, end, l); err != nil {
			return nil, nil, err
		}
		if c.nan.Load() {
			return nil, nil, fmt.Errorf("hnsw: %w", ErrNaNDistance)
		}
		b.logger.Info("built layer", "layer", int(l), "nodes", end-start)
		if !l.IsZero() {
			m.layerMut(l, arena).copyFromZero(zero[:end])
		}
	}

	return &Hnsw[P]{
		efSearch: b.efSearch,
		points:   ordered,
		meta:     m,
		arena:    arena,
	}, remap, nil
}

// Build constructs an HnswMap, pairing the index with values remapped into
// PointID order (spec.md §4.7).
func Build[P Point[P], V any](b *Builder, points []P, values []V) (*HnswMap[P, V], error) {
	index, remap, err := BuildIndex(b, points)
	if err != nil {
		return nil, err
	}
	remapped := make([]V, len(values))
	for origIdx, pid := range remap {
		remapped[pid] = values[origIdx]
	}
	return &HnswMap[P, V]{hnsw: index, values: remapped}, nil
}

// layerAssignmentOrder derives construction order from a deterministic RNG
// seeded by seed (spec.md §4.2): each original index is paired with a
// uniform random key in [0, n), the pairs are stably sorted by that key, and
// the sorted position becomes the point's PointID. It returns order (PointID
// -> original index) and remap (original index -> PointID).
func layerAssignmentOrder[P any](points []P, seed uint64) (order []int, remap []PointID) {
	n := len(points)
	rng := rand.New(rand.NewSource(int64(seed)))

	type keyedIndex struct {
		key uint32
		idx int
	}
	shuffled := make([]keyedIndex, n)
	for i := range shuffled {
		shuffled[i] = keyedIndex{key: uint32(rng.Int63n(int64(n))), idx: i}
	}
	sort.SliceStable(shuffled, func(i, j int) bool {
		return shuffled[i].key < shuffled[j].key
	})

	order = make([]int, n)
	remap = make([]PointID, n)
	for pid, k := range shuffled {
		order[pid] = k.idx
		remap[k.idx] = PointID(pid)
	}
	return order, remap
}

// construction holds the state shared by every worker inserting points into
// a single layer (spec.md §4.4). zero is the live, lockable base layer;
// arena/meta let it snapshot into the next upper layer once a layer
// finishes.
type construction[P Point[P]] struct {
	meta           meta
	zero           []*zeroNode
	arena          neighbors
	points         []P
	heuristic      *Heuristic
	efConstruction int
	pool           *searchPool
	workers        int
	logger         Logger
	nan            atomic.Bool
}

// insertLayer inserts every point in [start, end) -- the PointIDs whose
// maximum layer is exactly layer -- using a bounded worker pool. Tasks
// within the layer have no ordering guarantee relative to each other
// (spec.md §5); the barrier between layers is enforced by the caller, which
// only snapshots to the next layer down after insertLayer returns.
//
// Workers(1) bypasses the pool entirely rather than running it with a
// limit of one: a semaphore-limited errgroup does not guarantee its
// goroutines acquire the semaphore in launch order, so it cannot provide
// the byte-for-byte determinism the fully sequential path (the source's
// documented fallback, spec.md §9) is for.
func (c *construction[P]) insertLayer(start, end int, layer LayerID) error {
	if start >= end {
		return nil
	}
	if c.workers <= 1 {
		for pid := start; pid < end; pid++ {
			c.insert(PointID(pid), layer)
		}
		return nil
	}

	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(c.workers)
	for pid := start; pid < end; pid++ {
		pid := PointID(pid)
		g.Go(func() error {
			c.insert(pid, layer)
			return nil
		})
	}
	return g.Wait()
}

// ownRowLayer reads the inserting worker's own row directly, since that
// worker already holds its write lock, and every other row through zero.
type ownRowLayer struct {
	zero zeroLayer
	own  PointID
}

func (l ownRowLayer) row(pid PointID, limit int) []PointID {
	if pid == l.own {
		return truncateAtSentinel(l.zero[pid].row, limit)
	}
	return l.zero.row(pid, limit)
}

// insert runs spec.md §4.4's per-point search-then-connect procedure for a
// single new node.
func (c *construction[P]) insert(new PointID, layer LayerID) {
	node := c.zero[new]
	node.mu.Lock()
	defer node.mu.Unlock()

	search, insertion := c.pool.get()
	defer c.pool.put(search, insertion)
	insertion.ef = c.efConstruction

	query := c.points[new]
	dist := func(pid PointID) float32 {
		d := query.Distance(c.points[pid])
		if math.IsNaN(float64(d)) {
			c.nan.Store(true)
		}
		return d
	}
	pairDist := func(a, b PointID) float32 {
		d := c.points[a].Distance(c.points[b])
		if math.IsNaN(float64(d)) {
			c.nan.Store(true)
		}
		return d
	}

	search.reset()
	search.push(0, dist)

	links := M
	if layer.IsZero() {
		links = 2 * M
	}

	for _, cur := range c.meta.descending() {
		if cur <= layer {
			search.ef = c.efConstruction
		} else {
			search.ef = 1
		}

		if cur > layer {
			upper := c.meta.layerMut(cur, c.arena).asReadOnly()
			search.searchLayer(upper, links, dist)
			search.cull()
			continue
		}

		search.searchLayer(zeroLayer(c.zero), links, dist)
		break
	}

	var found []candidate
	if c.heuristic == nil {
		found = search.selectSimple()
	} else {
		found = search.selectHeuristic(*c.heuristic, zeroLayer(c.zero), dist, pairDist)
	}

	for i, cand := range found {
		pid := cand.pid
		if c.heuristic != nil {
			current := c.zero[pid].nearest(2 * M)
			neighborDist := func(p PointID) float32 {
				d := c.points[pid].Distance(c.points[p])
				if math.IsNaN(float64(d)) {
					c.nan.Store(true)
				}
				return d
			}
			refined := insertion.addNeighborHeuristic(new, current, *c.heuristic, ownRowLayer{zero: zeroLayer(c.zero), own: new}, neighborDist, pairDist)
			pids := make([]PointID, len(refined))
			for j, rc := range refined {
				pids[j] = rc.pid
			}
			c.zero[pid].rewrite(pids)
		} else {
			distToThird := func(third PointID) float32 {
				d := c.points[pid].Distance(c.points[third])
				if math.IsNaN(float64(d)) {
					c.nan.Store(true)
				}
				return d
			}
			c.zero[pid].insertAtDistance(new, cand.distance, distToThird)
		}
		node.set(i, pid)
	}
}
