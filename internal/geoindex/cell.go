// Package geoindex implements the lock-free two-dimensional spatial index:
// a fixed-size cell matrix with neighbor hints, its single-writer mutation
// protocol, and the outward-spiral reader iterator that rides on top of it.
package geoindex

import "sync/atomic"

// Key addresses one cell of a Matrix. X is the column in [0, Width), Y is
// the row in [0, Height). Origin (0, 0) is the top-left corner.
type Key struct {
	X uint16
	Y uint16
}

// cell holds the four neighbor hints and the occupancy flag for one matrix
// position. All five fields are independent atomics read with relaxed
// ordering; the writer never updates two cells as one atomic step.
//
// Hints are bounds, not truths: next_up/next_down/next_left/next_right may
// be conservative (point further away than the true nearest occupant) but
// must never be optimistic (point past an occupied cell). See Matrix
// invariant I2.
type cell struct {
	nextUp    atomic.Uint32
	nextDown  atomic.Uint32
	nextLeft  atomic.Uint32
	nextRight atomic.Uint32
	profiles  atomic.Bool
}

// Snapshot is a point-in-time, non-atomic read of all five fields of a
// cell, useful for tests and for callers that want a consistent-enough view
// without re-reading each field individually.
type Snapshot struct {
	NextUp    uint16
	NextDown  uint16
	NextLeft  uint16
	NextRight uint16
	Profiles  bool
}

func (c *cell) snapshot() Snapshot {
	return Snapshot{
		NextUp:    uint16(c.nextUp.Load()),
		NextDown:  uint16(c.nextDown.Load()),
		NextLeft:  uint16(c.nextLeft.Load()),
		NextRight: uint16(c.nextRight.Load()),
		Profiles:  c.profiles.Load(),
	}
}

func (c *cell) hasProfiles() bool {
	return c.profiles.Load()
}

func (c *cell) nextUpValue() uint16    { return uint16(c.nextUp.Load()) }
func (c *cell) nextDownValue() uint16  { return uint16(c.nextDown.Load()) }
func (c *cell) nextLeftValue() uint16  { return uint16(c.nextLeft.Load()) }
func (c *cell) nextRightValue() uint16 { return uint16(c.nextRight.Load()) }

func (c *cell) setNextUp(v uint16)    { c.nextUp.Store(uint32(v)) }
func (c *cell) setNextDown(v uint16)  { c.nextDown.Store(uint32(v)) }
func (c *cell) setNextLeft(v uint16)  { c.nextLeft.Store(uint32(v)) }
func (c *cell) setNextRight(v uint16) { c.nextRight.Store(uint32(v)) }
func (c *cell) setProfiles(v bool)    { c.profiles.Store(v) }
