package hnsw

import (
	"math"
	"testing"
)

func TestNewMetaLayerZeroHoldsEveryPoint(t *testing.T) {
	m := newMeta(1.0/math.Log(M), 1000)
	if m[0].total != 1000 {
		t.Fatalf("layer 0 total = %d, want 1000", m[0].total)
	}
}

func TestNewMetaLayersShrink(t *testing.T) {
	m := newMeta(1.0/math.Log(M), 10000)
	for i := 1; i < len(m); i++ {
		if m[i].total >= m[i-1].total {
			t.Fatalf("layer %d total (%d) not smaller than layer %d total (%d)", i, m[i].total, i-1, m[i-1].total)
		}
	}
}

func TestMetaPointsCoverEveryPointExceptGenesisExactlyOnce(t *testing.T) {
	// PointID 0 is the implicit enter point: it is never itself processed
	// by the insert procedure (meta.points() excludes it from the top
	// layer's range), so it is the one PointID no layer's points() range
	// ever reports.
	m := newMeta(1.0/math.Log(M), 500)
	seen := make(map[int]bool)
	for _, l := range m.descending() {
		start, end := m.points(l)
		for pid := start; pid < end; pid++ {
			if seen[pid] {
				t.Fatalf("pid %d assigned to more than one layer", pid)
			}
			seen[pid] = true
		}
	}
	if len(seen) != 499 {
		t.Fatalf("covered %d points, want 499", len(seen))
	}
	if seen[0] {
		t.Fatalf("pid 0 is the genesis point and should not appear in any points() range")
	}
}

func TestMetaPointsCountMatchesLayerMax(t *testing.T) {
	m := newMeta(1.0/math.Log(M), 2000)
	for _, l := range m.descending() {
		start, end := m.points(l)
		want := m[l].max
		if l == m.topLayer() {
			// PointID 0 is the implicit genesis enter point, present at
			// every layer without going through the normal insert path, so
			// the top layer's range excludes it.
			want--
		}
		if got := end - start; got != want {
			t.Fatalf("layer %d: points range length %d, want %d", l, got, want)
		}
	}
}

func TestMetaBoundsCoverWholeArena(t *testing.T) {
	m := newMeta(1.0/math.Log(M), 300)
	total := m.neighbors()
	var covered int
	for _, l := range m.descending() {
		start, end := m.bounds(l)
		covered += end - start
	}
	if covered != total {
		t.Fatalf("layer bounds cover %d slots, arena has %d", covered, total)
	}
}

func TestMetaStride(t *testing.T) {
	m := newMeta(1.0/math.Log(M), 100)
	if m.stride(0) != 2*M {
		t.Errorf("layer 0 stride = %d, want %d", m.stride(0), 2*M)
	}
	if len(m) > 1 && m.stride(1) != M {
		t.Errorf("layer 1 stride = %d, want %d", m.stride(1), M)
	}
}

func TestMetaDescendingStartsAtTop(t *testing.T) {
	m := newMeta(1.0/math.Log(M), 100)
	layers := m.descending()
	if layers[0] != m.topLayer() {
		t.Fatalf("descending()[0] = %d, want top layer %d", layers[0], m.topLayer())
	}
	if layers[len(layers)-1] != 0 {
		t.Fatalf("descending() must end at layer 0")
	}
}
