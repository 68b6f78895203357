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

package domain

import (
	"context"
	"strconv"
	"time"

	"github.com/gofrs/uuid/v5"

	"app/internal/geoindex"
)

// Application is the discovery engine's use-case layer: it owns the one
// geoindex.Writer handle, the Profile Registry, the query evaluator
// dependencies, and the ports used to persist per-viewer iterator state.
type Application struct {
	matrix    *geoindex.Matrix
	writer    *geoindex.Writer
	registry  *Registry
	schema    *AttributeSchema
	cache     IteratorStateCache
	signer    CursorSigner
	cursorTTL time.Duration
	metrics   MetricsRecorder
}

// MetricsRecorder is the outbound port for the engine's operational
// metrics (spec §9 Design notes; shipped adapter is
// modules/telemetry.DiscoveryMetrics). Nil-safe: Application treats a nil
// MetricsRecorder as "metrics disabled".
type MetricsRecorder interface {
	RecordRingDepth(ctx context.Context, ring int64)
	RecordEvaluatorOutcome(ctx context.Context, stage string)
	RecordRayRepair(ctx context.Context, direction string, cellsWalked int64)
}

// NewApp wires an Application from its already-constructed collaborators.
func NewApp(matrix *geoindex.Matrix, writer *geoindex.Writer, registry *Registry, schema *AttributeSchema, cache IteratorStateCache, signer CursorSigner, cursorTTL time.Duration) *Application {
	return &Application{
		matrix:    matrix,
		writer:    writer,
		registry:  registry,
		schema:    schema,
		cache:     cache,
		signer:    signer,
		cursorTTL: cursorTTL,
	}
}

// WithMetrics attaches a MetricsRecorder to both the Application and its
// Registry, returning app for chaining.
func (app *Application) WithMetrics(m MetricsRecorder) *Application {
	app.metrics = m
	app.registry.withMetrics(m)
	return app
}

// ProfileAge is a validated age in [MinAge, MaxAge].
type ProfileAge int

const (
	MinAge ProfileAge = 18
	MaxAge ProfileAge = 99
)

// Valid reports whether the age falls within the allowed range.
func (a ProfileAge) Valid() bool {
	return a >= MinAge && a <= MaxAge
}

// AgeRange is an inclusive [Min, Max] age window, used both as a profile's
// own search preference and as the mutual-match check against a candidate.
type AgeRange struct {
	Min ProfileAge
	Max ProfileAge
}

// Valid reports whether both ends are in range and ordered.
func (r AgeRange) Valid() bool {
	return r.Min.Valid() && r.Max.Valid() && r.Min <= r.Max
}

// Contains reports whether age falls within the range, inclusive.
func (r AgeRange) Contains(age ProfileAge) bool {
	return age >= r.Min && age <= r.Max
}

// AttributeValue is one candidate-held value for a schema-declared
// attribute. Exactly one of the fields is meaningful, chosen by the
// attribute's configured mode (see AttributeMode).
type AttributeValue struct {
	AttributeID int32
	Bitflags    uint16
	TopLevel    int32
	SubLevel    *int32
	Numbers     []int32 // sorted ascending
}

// ProfileSummary is the value carried through the index and the query
// evaluator: everything needed to decide whether a candidate passes a
// viewer's filter, without touching the profile store again.
type ProfileSummary struct {
	AccountID      uuid.UUID
	ProfileVersion int64
	ContentVersion int64
	Age            ProfileAge
	SearchGroups   SearchGroupFlags
	SearchAgeRange AgeRange
	Attributes     []AttributeValue // sorted by AttributeID
}

// V implements etag.ETaggable, versioning a summary by its profile and
// content versions together.
func (p ProfileSummary) V() string {
	return strconv.FormatInt(p.ProfileVersion, 10) + "." + strconv.FormatInt(p.ContentVersion, 10)
}

// ProfileLink is the minimal reference to a matched candidate returned by
// next_page; the caller resolves it to a full profile via the profile
// store.
type ProfileLink struct {
	AccountID      uuid.UUID
	ProfileVersion int64
	ContentVersion int64
	ETag           string
}

// CursorDirection names which way a keyset cursor walks. Nothing in this
// package uses it; the engine issues no cursor or iterator token.
type CursorDirection string

const (
	ASC  CursorDirection = "asc"
	DESC CursorDirection = "desc"
)
