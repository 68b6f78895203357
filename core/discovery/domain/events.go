package domain

import (
	"context"
	"log/slog"

	"github.com/gofrs/uuid/v5"

	"app/internal/geoindex"
)

// ProfileBecameVisible is called by the profile service when a profile
// becomes publicly visible (spec §6, §3 Lifecycle). It inserts the
// summary into the registry at cell, triggering SetOccupied if the cell
// was previously empty.
func (app *Application) ProfileBecameVisible(ctx context.Context, accountID uuid.UUID, summary ProfileSummary, cell geoindex.Key) {
	if !app.matrix.InBounds(cell) {
		slog.ErrorContext(ctx, "geoindex: profile_became_visible with out-of-bounds cell",
			"account_id", accountID, "cell", cell)
		return
	}
	app.registry.Insert(accountID, summary, cell)
}

// ProfileMoved is called when a profile's location changes. It re-inserts
// the account's existing summary at the new cell, vacating the old one.
func (app *Application) ProfileMoved(ctx context.Context, accountID uuid.UUID, newCell geoindex.Key) {
	if !app.matrix.InBounds(newCell) {
		slog.ErrorContext(ctx, "geoindex: profile_moved with out-of-bounds cell",
			"account_id", accountID, "cell", newCell)
		return
	}
	key, ok := app.registry.CurrentCell(accountID)
	if !ok {
		slog.WarnContext(ctx, "geoindex: profile_moved for account with no prior cell",
			"account_id", accountID)
		return
	}
	summaries := app.registry.CellSummaries(key)
	var summary ProfileSummary
	found := false
	for _, s := range summaries {
		if s.AccountID == accountID {
			summary = s
			found = true
			break
		}
	}
	if !found {
		return
	}
	app.registry.Insert(accountID, summary, newCell)
}

// ProfileBecameInvisible is called when a profile becomes private, banned,
// or deleted. It removes the account from the registry, triggering
// SetEmpty if its cell becomes empty.
func (app *Application) ProfileBecameInvisible(ctx context.Context, accountID uuid.UUID) {
	app.registry.Remove(accountID)
}

// CurrentCell reports the cell an account is currently indexed under, if
// any (spec §3 supplemented "profile location" read endpoint).
func (app *Application) CurrentCell(accountID uuid.UUID) (geoindex.Key, bool) {
	return app.registry.CurrentCell(accountID)
}

// ProfileAttributesUpdated is called on attribute edits: it updates the
// cached summary in place without moving the account's cell.
func (app *Application) ProfileAttributesUpdated(ctx context.Context, accountID uuid.UUID, summary ProfileSummary) {
	key, ok := app.registry.CurrentCell(accountID)
	if !ok {
		slog.WarnContext(ctx, "geoindex: profile_attributes_updated for account with no current cell",
			"account_id", accountID)
		return
	}
	app.registry.Insert(accountID, summary, key)
}
