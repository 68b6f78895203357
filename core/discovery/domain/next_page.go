package domain

import (
	"context"
	"log/slog"

	"github.com/gofrs/uuid/v5"

	"app/internal/geoindex"
	"app/modules/etag"
)

// NextPage is the Query API's primary operation (spec §6): it loads the
// viewer's iterator state, advances the Outward-Spiral Iterator until
// pageSize matches have been collected or the iterator is exhausted,
// persists the advanced state, and returns the matches. A viewer with no
// saved state gets an empty page and no state is written; the origin is
// seeded only by ResetIterator.
//
// Because the iterator yields whole cells and a cell may hold more than
// one matching profile, a returned page may contain a few more than
// pageSize links when the cell that fills the quota holds several matches;
// it never returns fewer than pageSize unless the scan is exhausted.
func (app *Application) NextPage(ctx context.Context, accountID uuid.UUID, filter ViewerFilter, pageSize int) ([]ProfileLink, error) {
	if pageSize <= 0 {
		return nil, ErrInvalidData
	}

	state, ok, err := app.cache.Load(ctx, accountID)
	if err != nil {
		slog.ErrorContext(ctx, "discovery: failed to load iterator state", "account_id", accountID, "error", err)
		return nil, ErrUnhandled
	}
	if !ok {
		// Missing viewer state: the caller is expected to seed origin via
		// ResetIterator first. Core returns an empty page (spec §7).
		return []ProfileLink{}, nil
	}

	it := geoindex.Resume(app.matrix, state)
	evaluator := NewEvaluator(app.schema)

	var links []ProfileLink
	for len(links) < pageSize {
		cellKey, found := it.Next()
		if !found {
			break
		}
		for _, summary := range app.registry.CellSummaries(cellKey) {
			if summary.AccountID == accountID {
				continue
			}
			if !evaluator.Matches(filter, summary) {
				app.recordEvaluatorOutcome(ctx, "reject")
				continue
			}
			app.recordEvaluatorOutcome(ctx, "pass")
			links = append(links, ProfileLink{
				AccountID:      summary.AccountID,
				ProfileVersion: summary.ProfileVersion,
				ContentVersion: summary.ContentVersion,
				ETag:           etag.ETag(summary),
			})
		}
	}

	finalState := it.State()
	app.recordRingDepth(ctx, int64(finalState.Ring))

	if err := app.cache.Save(ctx, accountID, finalState); err != nil {
		slog.ErrorContext(ctx, "discovery: failed to persist iterator state", "account_id", accountID, "error", err)
		return nil, ErrUnhandled
	}

	if links == nil {
		links = []ProfileLink{}
	}
	return links, nil
}

// ResetIterator discards any prior iterator state for accountID and
// re-seats the origin at originCell, clamped to matrix bounds.
func (app *Application) ResetIterator(ctx context.Context, accountID uuid.UUID, originCell geoindex.Key) error {
	clamped := app.matrix.Clamp(int32(originCell.X), int32(originCell.Y))
	state := geoindex.NewIteratorState(app.matrix, clamped.X, clamped.Y)
	if err := app.cache.Save(ctx, accountID, state); err != nil {
		slog.ErrorContext(ctx, "discovery: failed to save reset iterator state", "account_id", accountID, "error", err)
		return ErrUnhandled
	}
	return nil
}

func (app *Application) recordRingDepth(ctx context.Context, ring int64) {
	if app.metrics != nil {
		app.metrics.RecordRingDepth(ctx, ring)
	}
}

func (app *Application) recordEvaluatorOutcome(ctx context.Context, stage string) {
	if app.metrics != nil {
		app.metrics.RecordEvaluatorOutcome(ctx, stage)
	}
}
