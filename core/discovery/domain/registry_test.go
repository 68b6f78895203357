package domain

import (
	"testing"

	"github.com/gofrs/uuid/v5"

	"app/internal/geoindex"
)

func TestRegistryInsertTriggersSetOccupied(t *testing.T) {
	m, err := geoindex.NewMatrix(5, 5)
	if err != nil {
		t.Fatalf("NewMatrix: %v", err)
	}
	w := geoindex.NewWriter(m)
	reg := NewRegistry(w)

	id := uuid.Must(uuid.NewV4())
	key := geoindex.Key{X: 2, Y: 2}
	reg.Insert(id, ProfileSummary{AccountID: id}, key)

	if !m.HasProfiles(key) {
		t.Fatalf("expected cell %v to be flagged occupied after Insert", key)
	}
	got := reg.CellSummaries(key)
	if len(got) != 1 || got[0].AccountID != id {
		t.Fatalf("CellSummaries = %v, want one summary for %v", got, id)
	}
}

func TestRegistryRemoveTriggersSetEmpty(t *testing.T) {
	m, err := geoindex.NewMatrix(5, 5)
	if err != nil {
		t.Fatalf("NewMatrix: %v", err)
	}
	w := geoindex.NewWriter(m)
	reg := NewRegistry(w)

	id := uuid.Must(uuid.NewV4())
	key := geoindex.Key{X: 2, Y: 2}
	reg.Insert(id, ProfileSummary{AccountID: id}, key)
	reg.Remove(id)

	if m.HasProfiles(key) {
		t.Fatalf("expected cell %v to be empty after Remove", key)
	}
	if len(reg.CellSummaries(key)) != 0 {
		t.Fatalf("expected no summaries after Remove")
	}
}

func TestRegistryMoveVacatesOldCell(t *testing.T) {
	m, err := geoindex.NewMatrix(5, 5)
	if err != nil {
		t.Fatalf("NewMatrix: %v", err)
	}
	w := geoindex.NewWriter(m)
	reg := NewRegistry(w)

	id := uuid.Must(uuid.NewV4())
	oldKey := geoindex.Key{X: 1, Y: 1}
	newKey := geoindex.Key{X: 3, Y: 3}
	reg.Insert(id, ProfileSummary{AccountID: id}, oldKey)
	reg.Insert(id, ProfileSummary{AccountID: id}, newKey)

	if m.HasProfiles(oldKey) {
		t.Fatalf("expected old cell %v to be vacated after move", oldKey)
	}
	if !m.HasProfiles(newKey) {
		t.Fatalf("expected new cell %v to be occupied after move", newKey)
	}
	got, ok := reg.CurrentCell(id)
	if !ok || got != newKey {
		t.Fatalf("CurrentCell = %v,%v; want %v,true", got, ok, newKey)
	}
}

func TestRegistryCellSharedByMultipleAccountsStaysOccupiedUntilEmpty(t *testing.T) {
	m, err := geoindex.NewMatrix(5, 5)
	if err != nil {
		t.Fatalf("NewMatrix: %v", err)
	}
	w := geoindex.NewWriter(m)
	reg := NewRegistry(w)

	a := uuid.Must(uuid.NewV4())
	b := uuid.Must(uuid.NewV4())
	key := geoindex.Key{X: 2, Y: 2}
	reg.Insert(a, ProfileSummary{AccountID: a}, key)
	reg.Insert(b, ProfileSummary{AccountID: b}, key)

	reg.Remove(a)
	if !m.HasProfiles(key) {
		t.Fatalf("expected cell to remain occupied while b is still present")
	}
	reg.Remove(b)
	if m.HasProfiles(key) {
		t.Fatalf("expected cell to become empty once both accounts are removed")
	}
}
