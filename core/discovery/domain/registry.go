package domain

import (
	"context"
	"sync"

	"github.com/gofrs/uuid/v5"

	"app/internal/geoindex"
)

// Registry is the Profile Registry component (spec §4.5): it maps cell
// keys to the profile summaries currently present there, and tracks which
// cell each account currently occupies so it can be relocated or removed.
// It owns the summary data; the query evaluator and iterators only borrow
// it for the duration of a single call.
//
// Mutations on a given cell are serialized by that cell's own mutex, not by
// a single registry-wide lock, matching the "per-cell fine-grained mutual
// exclusion" requirement of spec §5.
type Registry struct {
	writer  *geoindex.Writer
	metrics MetricsRecorder

	mu       sync.RWMutex // guards cells map structure and accounts
	cells    map[geoindex.Key]*cellEntry
	accounts map[uuid.UUID]geoindex.Key
}

type cellEntry struct {
	mu       sync.Mutex
	summaries map[uuid.UUID]ProfileSummary
}

// NewRegistry builds an empty registry bound to writer, the matrix's sole
// Index Writer handle.
func NewRegistry(writer *geoindex.Writer) *Registry {
	return &Registry{
		writer:   writer,
		cells:    make(map[geoindex.Key]*cellEntry),
		accounts: make(map[uuid.UUID]geoindex.Key),
	}
}

// withMetrics attaches a MetricsRecorder, used by Application.WithMetrics
// to keep the Application's and Registry's recorders in sync.
func (r *Registry) withMetrics(m MetricsRecorder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metrics = m
}

func (r *Registry) recordRepair(counts geoindex.RepairCounts) {
	if r.metrics == nil {
		return
	}
	ctx := context.Background()
	r.metrics.RecordRayRepair(ctx, "right", int64(counts.Right))
	r.metrics.RecordRayRepair(ctx, "left", int64(counts.Left))
	r.metrics.RecordRayRepair(ctx, "down", int64(counts.Down))
	r.metrics.RecordRayRepair(ctx, "up", int64(counts.Up))
}

func (r *Registry) entryFor(key geoindex.Key) *cellEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.cells[key]
	if !ok {
		e = &cellEntry{summaries: make(map[uuid.UUID]ProfileSummary)}
		r.cells[key] = e
	}
	return e
}

// Insert places summary for accountID in cellKey. If the account already
// has a summary in a different cell, it is removed there first (possibly
// emptying that cell and triggering SetEmpty); if cellKey was previously
// empty, Insert triggers SetOccupied.
func (r *Registry) Insert(accountID uuid.UUID, summary ProfileSummary, cellKey geoindex.Key) {
	r.mu.Lock()
	oldKey, had := r.accounts[accountID]
	r.accounts[accountID] = cellKey
	r.mu.Unlock()

	if had && oldKey != cellKey {
		r.removeFromCell(accountID, oldKey)
	}

	entry := r.entryFor(cellKey)
	entry.mu.Lock()
	wasEmpty := len(entry.summaries) == 0
	entry.summaries[accountID] = summary
	entry.mu.Unlock()

	if wasEmpty {
		r.recordRepair(r.writer.SetOccupied(cellKey))
	}
}

// Remove deletes accountID's summary from whichever cell it currently
// occupies, triggering SetEmpty if that empties the cell. Removing an
// account with no current summary is a no-op.
func (r *Registry) Remove(accountID uuid.UUID) {
	r.mu.Lock()
	key, ok := r.accounts[accountID]
	if ok {
		delete(r.accounts, accountID)
	}
	r.mu.Unlock()
	if !ok {
		return
	}
	r.removeFromCell(accountID, key)
}

func (r *Registry) removeFromCell(accountID uuid.UUID, key geoindex.Key) {
	entry := r.entryFor(key)
	entry.mu.Lock()
	delete(entry.summaries, accountID)
	nowEmpty := len(entry.summaries) == 0
	entry.mu.Unlock()

	if nowEmpty {
		r.recordRepair(r.writer.SetEmpty(key))
	}
}

// CellSummaries returns the profile summaries currently present in
// cellKey, in an unspecified but stable-enough order for one call; the
// query evaluator consumes them during iteration and never retains the
// slice across calls.
func (r *Registry) CellSummaries(cellKey geoindex.Key) []ProfileSummary {
	entry := r.entryFor(cellKey)
	entry.mu.Lock()
	defer entry.mu.Unlock()
	out := make([]ProfileSummary, 0, len(entry.summaries))
	for _, s := range entry.summaries {
		out = append(out, s)
	}
	return out
}

// CurrentCell returns the cell accountID currently occupies, if any.
func (r *Registry) CurrentCell(accountID uuid.UUID) (geoindex.Key, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.accounts[accountID]
	return k, ok
}
