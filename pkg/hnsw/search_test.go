package hnsw

import "testing"

func TestVisitedInsertOnlyOnce(t *testing.T) {
	var v visited
	v.reserve(8)
	if !v.insert(3) {
		t.Fatalf("first insert of 3 should report true")
	}
	if v.insert(3) {
		t.Fatalf("second insert of 3 should report false")
	}
	if !v.insert(4) {
		t.Fatalf("insert of a different pid should report true")
	}
}

func TestVisitedClearAllowsReinsertion(t *testing.T) {
	var v visited
	v.reserve(4)
	v.insert(1)
	v.clear()
	if !v.insert(1) {
		t.Fatalf("pid should be visitable again after clear")
	}
}

func TestVisitedInsertGrowsBeyondReserve(t *testing.T) {
	var v visited
	v.reserve(2)
	if !v.insert(10) {
		t.Fatalf("insert should grow backing storage rather than panic")
	}
}

func TestOrderDistanceNaNSortsLast(t *testing.T) {
	nan := orderDistance(float32(nanValue()))
	finite := orderDistance(1.0)
	if nan.less(finite) {
		t.Fatalf("NaN distance must not sort before a finite distance")
	}
	if !finite.less(nan) {
		t.Fatalf("a finite distance must sort before NaN")
	}
}

func nanValue() float64 {
	var zero float64
	return zero / zero
}

func TestSearchPushRespectsEf(t *testing.T) {
	s := &Search{ef: 2}
	s.reset()
	s.ef = 2
	dist := func(pid PointID) float32 { return float32(pid) }
	s.push(0, dist)
	s.push(1, dist)
	s.push(2, dist)
	if got := s.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2 (capped at ef)", got)
	}
	if s.nearest[0].pid != 0 || s.nearest[1].pid != 1 {
		t.Fatalf("expected the two nearest candidates to survive truncation, got %+v", s.nearest)
	}
}

func TestSearchPushSkipsAlreadyVisited(t *testing.T) {
	s := &Search{ef: 10}
	s.reset()
	dist := func(pid PointID) float32 { return 0 }
	s.push(5, dist)
	s.push(5, dist)
	if got := s.Len(); got != 1 {
		t.Fatalf("Len() = %d, want 1 (duplicate push must be ignored)", got)
	}
}

func TestSelectSimpleTruncatesToTwiceM(t *testing.T) {
	s := &Search{ef: 4 * M}
	s.reset()
	dist := func(pid PointID) float32 { return float32(pid) }
	for i := 0; i < 4*M; i++ {
		s.push(PointID(i), dist)
	}
	found := s.selectSimple()
	if len(found) != 2*M {
		t.Fatalf("selectSimple returned %d candidates, want %d", len(found), 2*M)
	}
}
