package geoindex

import (
	"log/slog"
)

// direction is the cursor's current move direction while walking a ring.
type direction int

const (
	directionDown direction = iota
	directionLeft
	directionUp
	directionRight
)

// visitedCorners tracks which of the four matrix corners the cursor has
// stepped past during the current ring traversal.
type visitedCorners struct {
	TopLeft     bool
	TopRight    bool
	BottomLeft  bool
	BottomRight bool
}

func (v visitedCorners) allVisited() bool {
	return v.TopLeft && v.TopRight && v.BottomLeft && v.BottomRight
}

// IteratorState is the fully serializable state of an Outward-Spiral
// Iterator: an origin, a cursor (held as signed so it may step temporarily
// outside the matrix at ring corners), a ring number, the per-ring anchor,
// the current direction, the completed flag, and the four corner-visited
// flags. A caller may persist this value between HTTP requests and later
// reattach it to a live Matrix via Resume to continue exactly where it left
// off.
type IteratorState struct {
	OriginX int32
	OriginY int32
	X       int32
	Y       int32
	Ring    int32
	AnchorX int32
	AnchorY int32
	Dir     direction
	Completed bool
	Visited visitedCorners
}

// NewIteratorState returns the state for a fresh iterator seated at
// (x, y). x and y are clamped to the matrix bounds.
func NewIteratorState(m *Matrix, x, y uint16) IteratorState {
	var s IteratorState
	s.reset(m, int32(x), int32(y))
	return s
}

func (s *IteratorState) reset(m *Matrix, x, y int32) {
	if x > int32(m.width)-1 {
		x = int32(m.width) - 1
	}
	if y > int32(m.height)-1 {
		y = int32(m.height) - 1
	}
	s.X = x
	s.Y = y
	s.OriginX = x
	s.OriginY = y
	s.AnchorX = x
	s.AnchorY = y
	s.Ring = 0
	s.Dir = directionDown
	s.Completed = false
	s.Visited = visitedCorners{}
}

// Iterator is a transient, non-mutating walker over a Matrix, reconstructed
// from an IteratorState for the duration of one or more Next calls and then
// serialized back via State. It never mutates the matrix; it is a pure
// reader.
type Iterator struct {
	matrix *Matrix
	state  IteratorState

	// iterationGuardLimit bounds how many empty cells Next will cross
	// in a single Next call before tripping the pathological-growth guard.
	// Parametrized on matrix area per spec's open question, rather than a
	// fixed constant.
	iterationGuardLimit int64
	logger               *slog.Logger
}

// NewIterator attaches a fresh iterator to matrix, seated at (x, y).
func NewIterator(matrix *Matrix, x, y uint16) *Iterator {
	return Resume(matrix, NewIteratorState(matrix, x, y))
}

// Resume reconstructs a working Iterator from a previously serialized
// state and a live Matrix reference. The matrix must have the same
// dimensions the state was produced against.
func Resume(matrix *Matrix, state IteratorState) *Iterator {
	limit := int64(matrix.width) * int64(matrix.height) * 4
	if limit < 1024 {
		limit = 1024
	}
	return &Iterator{
		matrix:               matrix,
		state:                state,
		iterationGuardLimit:  limit,
		logger:               slog.Default(),
	}
}

// State returns the iterator's current serializable state, for persisting
// between requests.
func (it *Iterator) State() IteratorState {
	return it.state
}

// Reset re-seats the iterator at (x, y), clamped to matrix bounds, clearing
// ring, direction, corner-visited flags and the completed flag.
func (it *Iterator) Reset(x, y uint16) {
	it.state.reset(it.matrix, int32(x), int32(y))
}

// Next returns the key of the next occupied cell in outward-spiral order,
// or (Key{}, false) once the iterator is exhausted.
func (it *Iterator) Next() (Key, bool) {
	if it.state.Completed {
		return Key{}, false
	}

	var iterations int64
	for {
		var result Key
		var found bool
		if it.currentCellHasProfiles() {
			result = Key{X: uint16(it.state.X), Y: uint16(it.state.Y)}
			found = true
		}

		if ok := it.moveNextPosition(); !ok {
			it.state.Completed = true
			return result, found
		}

		if found {
			return result, true
		}

		if iterations >= it.iterationGuardLimit {
			it.logger.Warn("geoindex: outward-spiral iterator exceeded its guard limit, terminating scan",
				"origin_x", it.state.OriginX, "origin_y", it.state.OriginY,
				"ring", it.state.Ring, "x", it.state.X, "y", it.state.Y,
				"limit", it.iterationGuardLimit)
			it.state.Completed = true
			return Key{}, false
		}
		iterations++
	}
}

func (it *Iterator) currentCellHasProfiles() bool {
	c, ok := it.currentCell()
	if !ok {
		return false
	}
	return c.hasProfiles()
}

func (it *Iterator) currentCell() (*cell, bool) {
	if it.state.Y < 0 || it.state.Y >= int32(it.matrix.height) {
		return nil, false
	}
	if it.state.X < 0 || it.state.X >= int32(it.matrix.width) {
		return nil, false
	}
	return it.matrix.cellAt(Key{X: uint16(it.state.X), Y: uint16(it.state.Y)}), true
}

func (it *Iterator) leftMaxIndex() int32   { return it.state.OriginX - it.state.Ring }
func (it *Iterator) rightMaxIndex() int32  { return it.state.OriginX + it.state.Ring }
func (it *Iterator) topMaxIndex() int32    { return it.state.OriginY - it.state.Ring }
func (it *Iterator) bottomMaxIndex() int32 { return it.state.OriginY + it.state.Ring }

// moveNextPosition advances the cursor by exactly one logical step,
// returning false when the traversal has no further positions.
func (it *Iterator) moveNextPosition() bool {
	if it.state.Visited.allVisited() && it.currentRoundComplete() {
		return false
	}

	if it.currentRoundComplete() {
		it.moveToNextRoundInitPos()
		it.updateVisitedMaxCorners()
		return true
	}

	width := int32(it.matrix.width)
	height := int32(it.matrix.height)

	switch it.state.Dir {
	case directionUp:
		switch {
		case it.state.Y >= height:
			it.state.Y = height - 1
		case it.state.Y <= 0:
			it.state.Y = it.topMaxIndex()
		default:
			hint := int32(0)
			if c, ok := it.currentCell(); ok {
				hint = int32(c.nextUpValue())
			}
			it.state.Y = maxInt32(hint, it.topMaxIndex())
		}
	case directionDown:
		switch {
		case it.state.Y >= height-1:
			it.state.Y = it.bottomMaxIndex()
		case it.state.Y < 0:
			it.state.Y = 0
		default:
			hint := height - 1
			if c, ok := it.currentCell(); ok {
				hint = int32(c.nextDownValue())
			}
			it.state.Y = minInt32(hint, it.bottomMaxIndex())
		}
	case directionLeft:
		switch {
		case it.state.X > width-1:
			it.state.X = width - 1
		case it.state.X <= 0:
			it.state.X = it.leftMaxIndex()
		default:
			hint := int32(0)
			if c, ok := it.currentCell(); ok {
				hint = int32(c.nextLeftValue())
			}
			it.state.X = maxInt32(hint, it.leftMaxIndex())
		}
	case directionRight:
		switch {
		case it.state.X >= width-1:
			it.state.X = it.rightMaxIndex()
		case it.state.X < 0:
			it.state.X = 0
		default:
			hint := width - 1
			if c, ok := it.currentCell(); ok {
				hint = int32(c.nextRightValue())
			}
			it.state.X = minInt32(hint, it.rightMaxIndex())
		}
	}

	switch {
	case it.state.X == it.rightMaxIndex() && it.state.Y == it.topMaxIndex():
		it.state.Dir = directionDown
	case it.state.X == it.rightMaxIndex() && it.state.Y == it.bottomMaxIndex():
		it.state.Dir = directionLeft
	case it.state.X == it.leftMaxIndex() && it.state.Y == it.bottomMaxIndex():
		it.state.Dir = directionUp
	case it.state.X == it.leftMaxIndex() && it.state.Y == it.topMaxIndex():
		it.state.Dir = directionRight
	}

	it.updateVisitedMaxCorners()
	return true
}

func (it *Iterator) currentRoundComplete() bool {
	return it.state.AnchorX == it.state.X && it.state.AnchorY == it.state.Y && it.state.Dir == directionDown
}

// moveToNextRoundInitPos grows the ring by one and re-seats the cursor one
// cell below the new ring's top-right corner, per the ring-geometry rule in
// spec §4.3.
func (it *Iterator) moveToNextRoundInitPos() {
	it.state.Ring++
	it.state.Dir = directionDown
	it.state.Visited = visitedCorners{}
	it.state.X = it.rightMaxIndex()
	it.state.Y = it.topMaxIndex()
	it.state.AnchorX = it.state.X
	it.state.AnchorY = it.state.Y
	it.state.Y++
}

func (it *Iterator) updateVisitedMaxCorners() {
	width := int32(it.matrix.width)
	height := int32(it.matrix.height)
	if it.state.Y <= 0 && it.state.X <= 0 {
		it.state.Visited.TopLeft = true
	}
	if it.state.Y <= 0 && it.state.X >= width {
		it.state.Visited.TopRight = true
	}
	if it.state.Y >= height && it.state.X <= 0 {
		it.state.Visited.BottomLeft = true
	}
	if it.state.Y >= height && it.state.X >= width {
		it.state.Visited.BottomRight = true
	}
}

func maxInt32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

func minInt32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}
