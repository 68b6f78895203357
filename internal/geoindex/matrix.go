package geoindex

import "fmt"

// Matrix is the fixed-size cell grid. It is created once at boot, cells
// are never relocated, and it outlives every reader and the writer.
//
// Matrix exposes only read-only access to individual cells. It holds no
// locks and has no mutating methods; mutation is the sole right of a
// Writer, enforced by construction rather than by a lock (see Writer).
type Matrix struct {
	cells  []cell
	width  uint16
	height uint16
}

// NewMatrix builds a width x height matrix. Every cell starts empty with
// hints pointing to the matrix edges: next_up=0, next_down=height-1,
// next_left=0, next_right=width-1. Width and height must both be at least
// one.
func NewMatrix(width, height uint16) (*Matrix, error) {
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("geoindex: matrix dimensions must be at least 1x1, got %dx%d", width, height)
	}

	size := int(width) * int(height)
	m := &Matrix{
		cells:  make([]cell, size),
		width:  width,
		height: height,
	}
	for i := range m.cells {
		c := &m.cells[i]
		c.setNextUp(0)
		c.setNextDown(height - 1)
		c.setNextLeft(0)
		c.setNextRight(width - 1)
	}
	return m, nil
}

// Width returns the matrix width, always >= 1.
func (m *Matrix) Width() uint16 { return m.width }

// Height returns the matrix height, always >= 1.
func (m *Matrix) Height() uint16 { return m.height }

// InBounds reports whether key addresses a real cell of the matrix.
func (m *Matrix) InBounds(key Key) bool {
	return key.X < m.width && key.Y < m.height
}

// index converts a Key into a slice offset. Callers must have already
// validated the key is in bounds; an out-of-bounds access here is a
// programming error, not a runtime failure (spec §4.1 Failure modes).
func (m *Matrix) index(key Key) int {
	if !m.InBounds(key) {
		panic(fmt.Sprintf("geoindex: key %v out of bounds for %dx%d matrix", key, m.width, m.height))
	}
	return int(key.Y)*int(m.width) + int(key.X)
}

func (m *Matrix) cellAt(key Key) *cell {
	return &m.cells[m.index(key)]
}

// HasProfiles reports whether key is currently flagged occupied.
func (m *Matrix) HasProfiles(key Key) bool {
	if !m.InBounds(key) {
		return false
	}
	return m.cellAt(key).hasProfiles()
}

// Get returns a point-in-time snapshot of the cell at key.
func (m *Matrix) Get(key Key) Snapshot {
	return m.cellAt(key).snapshot()
}

// Clamp pins an arbitrary (possibly out-of-rectangle) coordinate to the
// nearest valid cell, used by callers mapping raw locations to cell keys.
func (m *Matrix) Clamp(x, y int32) Key {
	cx, cy := x, y
	if cx < 0 {
		cx = 0
	}
	if cy < 0 {
		cy = 0
	}
	if cx > int32(m.width)-1 {
		cx = int32(m.width) - 1
	}
	if cy > int32(m.height)-1 {
		cy = int32(m.height) - 1
	}
	return Key{X: uint16(cx), Y: uint16(cy)}
}
