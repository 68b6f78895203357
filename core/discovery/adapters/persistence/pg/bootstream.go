// Copyright 2025 Nhat-Nguyen Nguyen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package pg adapts the discovery domain's outbound ports onto Postgres,
// building queries with bob and scanning rows with scan.
package pg

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"

	"app/core/discovery/domain"
	"app/internal/geoindex"
	"app/modules/db"
)

// bootStreamPageSize bounds how many rows are pulled per round-trip while
// replaying the boot stream; chosen to keep a single page comfortably
// under typical statement_timeout values without over-fragmenting the scan.
const bootStreamPageSize = 1000

// locationRow is the persistence entity behind the boot stream: one
// currently-visible profile's location and discovery summary.
type locationRow struct {
	AccountID      uuid.UUID       `db:"account_id"`
	CellX          int32           `db:"cell_x"`
	CellY          int32           `db:"cell_y"`
	ProfileVersion int64           `db:"profile_version"`
	ContentVersion int64           `db:"content_version"`
	Age            int32           `db:"age"`
	SearchGroups   int32           `db:"search_groups"`
	SearchAgeMin   int32           `db:"search_age_min"`
	SearchAgeMax   int32           `db:"search_age_max"`
	Attributes     json.RawMessage `db:"attributes"`
}

// attributeValueRow is the JSON shape stored in the attributes column; it
// mirrors domain.AttributeValue but carries its own json tags since the
// domain type intentionally has none.
type attributeValueRow struct {
	AttributeID int32  `json:"attribute_id"`
	Bitflags    uint16 `json:"bitflags,omitempty"`
	TopLevel    int32  `json:"top_level,omitempty"`
	SubLevel    *int32 `json:"sub_level,omitempty"`
	Numbers     []int32 `json:"numbers,omitempty"`
}

var _ domain.BootStreamReader = (*LocationStore)(nil)

// LocationStore is the Postgres-backed BootStreamReader. It calls
// Reader() at runtime so pages can be load-balanced across replicas.
type LocationStore struct {
	table string
	pool  db.ReaderConnectionManager
}

// NewLocationStore constructs a LocationStore against the given table.
func NewLocationStore(pool db.ReaderConnectionManager, table string) *LocationStore {
	return &LocationStore{table: table, pool: pool}
}

// StreamBootTuples implements domain.BootStreamReader using a keyset
// cursor over account_id: each page starts after the last account_id of
// the previous one.
func (s *LocationStore) StreamBootTuples(ctx context.Context, yield func(domain.BootStreamTuple) error) error {
	var pivot uuid.UUID // zero value sorts before every real uuid.NewV4/V7 value

	for {
		query := psql.Select(
			sm.Columns("account_id", "cell_x", "cell_y", "profile_version", "content_version",
				"age", "search_groups", "search_age_min", "search_age_max", "attributes"),
			sm.From(s.table),
			sm.Where(psql.Quote("account_id").GT(psql.Arg(pivot))),
			sm.OrderBy("account_id").Asc(),
			sm.Limit(bootStreamPageSize),
		)

		rows, err := bob.All(ctx, s.pool.Reader(), query, scan.StructMapper[locationRow]())
		if err != nil {
			slog.ErrorContext(ctx, "boot stream query error", slog.Any("error", err))
			return fmt.Errorf("pg: stream boot tuples: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}

		for _, row := range rows {
			tuple, err := toBootStreamTuple(row)
			if err != nil {
				slog.ErrorContext(ctx, "boot stream row decode error",
					slog.String("account_id", row.AccountID.String()), slog.Any("error", err))
				continue
			}
			if err := yield(tuple); err != nil {
				return err
			}
		}

		pivot = rows[len(rows)-1].AccountID
		if len(rows) < bootStreamPageSize {
			return nil
		}
	}
}

func toBootStreamTuple(row locationRow) (domain.BootStreamTuple, error) {
	var attrRows []attributeValueRow
	if len(row.Attributes) > 0 {
		if err := json.Unmarshal(row.Attributes, &attrRows); err != nil {
			return domain.BootStreamTuple{}, fmt.Errorf("decode attributes: %w", err)
		}
	}

	attrs := make([]domain.AttributeValue, len(attrRows))
	for i, a := range attrRows {
		attrs[i] = domain.AttributeValue{
			AttributeID: a.AttributeID,
			Bitflags:    a.Bitflags,
			TopLevel:    a.TopLevel,
			SubLevel:    a.SubLevel,
			Numbers:     a.Numbers,
		}
	}

	return domain.BootStreamTuple{
		AccountID: row.AccountID,
		CellKey:   geoindex.Key{X: uint16(row.CellX), Y: uint16(row.CellY)},
		Summary: domain.ProfileSummary{
			AccountID:      row.AccountID,
			ProfileVersion: row.ProfileVersion,
			ContentVersion: row.ContentVersion,
			Age:            domain.ProfileAge(row.Age),
			SearchGroups:   domain.SearchGroupFlags(row.SearchGroups),
			SearchAgeRange: domain.AgeRange{
				Min: domain.ProfileAge(row.SearchAgeMin),
				Max: domain.ProfileAge(row.SearchAgeMax),
			},
			Attributes: attrs,
		},
	}, nil
}
