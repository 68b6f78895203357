package geoindex

import "testing"

// cornerMatrix builds the 5-wide, 10-tall matrix from spec scenario 1 with
// its four corners occupied.
func cornerMatrix(t *testing.T) *Matrix {
	t.Helper()
	m, err := NewMatrix(5, 10)
	if err != nil {
		t.Fatalf("NewMatrix: %v", err)
	}
	w := NewWriter(m)
	for _, k := range []Key{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 0, Y: 9}, {X: 4, Y: 9}} {
		w.SetOccupied(k)
	}
	return m
}

// mirrorMatrix builds the 10-wide, 5-tall transpose used by the original
// fixture set to exercise the non-square case.
func mirrorMatrix(t *testing.T) *Matrix {
	t.Helper()
	m, err := NewMatrix(10, 5)
	if err != nil {
		t.Fatalf("NewMatrix: %v", err)
	}
	w := NewWriter(m)
	for _, k := range []Key{{X: 0, Y: 0}, {X: 9, Y: 0}, {X: 0, Y: 4}, {X: 9, Y: 4}} {
		w.SetOccupied(k)
	}
	return m
}

func collectSequence(t *testing.T, it *Iterator, n int) []Key {
	t.Helper()
	var got []Key
	for i := 0; i < n; i++ {
		k, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, k)
	}
	return got
}

func assertSequence(t *testing.T, it *Iterator, want []Key) {
	t.Helper()
	got := collectSequence(t, it, len(want)+1)
	if len(got) != len(want) {
		t.Fatalf("sequence length = %d, want %d; got=%v want=%v", len(got), len(want), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sequence[%d] = %v, want %v; full got=%v want=%v", i, got[i], want[i], got, want)
		}
	}
	if k, ok := it.Next(); ok {
		t.Fatalf("expected exhaustion after %v, got extra key %v", want, k)
	}
}

func TestIteratorTopLeftOrigin(t *testing.T) {
	m := cornerMatrix(t)
	it := NewIterator(m, 0, 0)
	assertSequence(t, it, []Key{{0, 0}, {4, 0}, {4, 9}, {0, 9}})
}

func TestIteratorTopRightOrigin(t *testing.T) {
	m := cornerMatrix(t)
	it := NewIterator(m, 4, 0)
	assertSequence(t, it, []Key{{4, 0}, {0, 0}, {4, 9}, {0, 9}})
}

func TestIteratorBottomRightOrigin(t *testing.T) {
	m := cornerMatrix(t)
	it := NewIterator(m, 4, 9)
	assertSequence(t, it, []Key{{4, 9}, {0, 9}, {0, 0}, {4, 0}})
}

func TestIteratorBottomLeftOrigin(t *testing.T) {
	m := cornerMatrix(t)
	it := NewIterator(m, 0, 9)
	assertSequence(t, it, []Key{{0, 9}, {4, 9}, {0, 0}, {4, 0}})
}

func TestIteratorResetReseatesOrigin(t *testing.T) {
	m := cornerMatrix(t)
	it := NewIterator(m, 0, 0)
	// drain fully first
	collectSequence(t, it, 10)
	it.Reset(4, 0)
	assertSequence(t, it, []Key{{4, 0}, {0, 0}, {4, 9}, {0, 9}})
}

func TestMirrorIteratorTopLeftOrigin(t *testing.T) {
	m := mirrorMatrix(t)
	it := NewIterator(m, 0, 0)
	assertSequence(t, it, []Key{{0, 0}, {0, 4}, {9, 0}, {9, 4}})
}

func TestMirrorIteratorTopRightOrigin(t *testing.T) {
	m := mirrorMatrix(t)
	it := NewIterator(m, 9, 0)
	assertSequence(t, it, []Key{{9, 0}, {9, 4}, {0, 4}, {0, 0}})
}

func TestMirrorIteratorBottomRightOrigin(t *testing.T) {
	m := mirrorMatrix(t)
	it := NewIterator(m, 9, 4)
	assertSequence(t, it, []Key{{9, 4}, {9, 0}, {0, 4}, {0, 0}})
}

func TestMirrorIteratorBottomLeftOrigin(t *testing.T) {
	m := mirrorMatrix(t)
	it := NewIterator(m, 0, 4)
	assertSequence(t, it, []Key{{0, 4}, {0, 0}, {9, 0}, {9, 4}})
}

// TestIteratorAtMostOncePerScan is property P3.
func TestIteratorAtMostOncePerScan(t *testing.T) {
	m, err := NewMatrix(20, 20)
	if err != nil {
		t.Fatalf("NewMatrix: %v", err)
	}
	w := NewWriter(m)
	for x := uint16(0); x < 20; x += 3 {
		for y := uint16(0); y < 20; y += 3 {
			w.SetOccupied(Key{X: x, Y: y})
		}
	}
	it := NewIterator(m, 10, 10)
	seen := make(map[Key]bool)
	for {
		k, ok := it.Next()
		if !ok {
			break
		}
		if seen[k] {
			t.Fatalf("cell %v yielded twice in one scan", k)
		}
		seen[k] = true
	}
}

// TestIteratorMonotoneRingDistance is property P5.
func TestIteratorMonotoneRingDistance(t *testing.T) {
	m, err := NewMatrix(15, 15)
	if err != nil {
		t.Fatalf("NewMatrix: %v", err)
	}
	w := NewWriter(m)
	for x := uint16(1); x < 15; x += 2 {
		for y := uint16(1); y < 15; y += 2 {
			w.SetOccupied(Key{X: x, Y: y})
		}
	}
	originX, originY := 7, 7
	it := NewIterator(m, uint16(originX), uint16(originY))
	prevDist := -1
	for {
		k, ok := it.Next()
		if !ok {
			break
		}
		dist := chebyshev(int(k.X)-originX, int(k.Y)-originY)
		if dist < prevDist {
			t.Fatalf("ring distance decreased: prev=%d this=%d at %v", prevDist, dist, k)
		}
		prevDist = dist
	}
}

func chebyshev(dx, dy int) int {
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}

// TestIteratorCompletenessAtQuiescence is property P4.
func TestIteratorCompletenessAtQuiescence(t *testing.T) {
	m := cornerMatrix(t)
	it := NewIterator(m, 2, 5)
	want := map[Key]bool{
		{0, 0}: true, {4, 0}: true, {0, 9}: true, {4, 9}: true,
	}
	got := map[Key]bool{}
	for {
		k, ok := it.Next()
		if !ok {
			break
		}
		got[k] = true
	}
	if len(got) != len(want) {
		t.Fatalf("got %d keys, want %d: got=%v", len(got), len(want), got)
	}
	for k := range want {
		if !got[k] {
			t.Errorf("missing expected key %v", k)
		}
	}
}
