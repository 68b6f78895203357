package geoindex

// Writer is the sole mutator of a Matrix's cell state. Only one Writer may
// exist for a given Matrix; this is enforced by construction, not by a
// lock — whoever holds the Writer value holds the only write capability,
// and every other code path is handed just the Matrix itself (read-only).
//
// Writer operations never fail, never retry, and never block.
type Writer struct {
	matrix *Matrix
}

// NewWriter constructs the single writer for matrix. Callers must not
// construct more than one Writer per Matrix; nothing below this package
// enforces that beyond convention, matching the single-writer discipline
// described by spec §5.
func NewWriter(matrix *Matrix) *Writer {
	return &Writer{matrix: matrix}
}

// RepairCounts reports how many cells one SetOccupied/SetEmpty call
// visited while repairing each of the four directional rays. It exists
// so callers can feed ray-repair length into metrics without the Writer
// itself taking a dependency on any telemetry port.
type RepairCounts struct {
	Right, Left, Down, Up int
}

// SetOccupied flags key as occupied and repairs the four neighbor rays so
// readers continue to see consistent skips. If the cell was already
// occupied this is a no-op (zero RepairCounts).
func (w *Writer) SetOccupied(key Key) RepairCounts {
	c := w.matrix.cellAt(key)
	if c.hasProfiles() {
		return RepairCounts{}
	}
	c.setProfiles(true)

	return RepairCounts{
		Right: w.repairRowRight(key, key.X),
		Left:  w.repairRowLeft(key, key.X),
		Down:  w.repairColumnDown(key, key.Y),
		Up:    w.repairColumnUp(key, key.Y),
	}
}

// SetEmpty flags key as empty and propagates the cell's former hint values
// (which, since it was the nearest occupant in each direction, identify the
// next nearest occupant to hand off to) along each of the four rays. If the
// cell was already empty this is a no-op (zero RepairCounts).
func (w *Writer) SetEmpty(key Key) RepairCounts {
	c := w.matrix.cellAt(key)
	if !c.hasProfiles() {
		return RepairCounts{}
	}

	handoffUp := c.nextUpValue()
	handoffDown := c.nextDownValue()
	handoffLeft := c.nextLeftValue()
	handoffRight := c.nextRightValue()

	c.setProfiles(false)

	return RepairCounts{
		Right: w.repairRowRight(key, handoffLeft),
		Left:  w.repairRowLeft(key, handoffRight),
		Down:  w.repairColumnDown(key, handoffUp),
		Up:    w.repairColumnUp(key, handoffDown),
	}
}

// repairRowRight walks the row rightward from x+1 to width-1, setting
// next_left to value on every visited cell, stopping after the first
// already-occupied cell (inclusive). Returns the number of cells visited.
func (w *Writer) repairRowRight(key Key, value uint16) int {
	width := w.matrix.width
	n := 0
	for x := key.X + 1; x < width; x++ {
		c := w.matrix.cellAt(Key{X: x, Y: key.Y})
		c.setNextLeft(value)
		n++
		if c.hasProfiles() {
			return n
		}
	}
	return n
}

// repairRowLeft walks the row leftward from x-1 to 0, setting next_right to
// value on every visited cell, stopping after the first already-occupied
// cell (inclusive). Returns the number of cells visited.
func (w *Writer) repairRowLeft(key Key, value uint16) int {
	if key.X == 0 {
		return 0
	}
	n := 0
	for x := int32(key.X) - 1; x >= 0; x-- {
		c := w.matrix.cellAt(Key{X: uint16(x), Y: key.Y})
		c.setNextRight(value)
		n++
		if c.hasProfiles() {
			return n
		}
	}
	return n
}

// repairColumnDown walks the column downward from y+1 to height-1, setting
// next_up to value on every visited cell, stopping after the first
// already-occupied cell (inclusive). Returns the number of cells visited.
func (w *Writer) repairColumnDown(key Key, value uint16) int {
	height := w.matrix.height
	n := 0
	for y := key.Y + 1; y < height; y++ {
		c := w.matrix.cellAt(Key{X: key.X, Y: y})
		c.setNextUp(value)
		n++
		if c.hasProfiles() {
			return n
		}
	}
	return n
}

// repairColumnUp walks the column upward from y-1 to 0, setting next_down
// to value on every visited cell, stopping after the first already-occupied
// cell (inclusive). Returns the number of cells visited.
func (w *Writer) repairColumnUp(key Key, value uint16) int {
	if key.Y == 0 {
		return 0
	}
	n := 0
	for y := int32(key.Y) - 1; y >= 0; y-- {
		c := w.matrix.cellAt(Key{X: key.X, Y: uint16(y)})
		c.setNextDown(value)
		n++
		if c.hasProfiles() {
			return n
		}
	}
	return n
}
