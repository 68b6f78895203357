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

	"github.com/gofrs/uuid/v5"

	"app/internal/geoindex"
)

// BootStreamTuple is one row of the boot stream the profile store hands the
// engine at startup: every currently visible profile, its cell, and its
// summary (spec §6).
type BootStreamTuple struct {
	AccountID uuid.UUID
	CellKey   geoindex.Key
	Summary   ProfileSummary
}

// BootStreamReader is the outbound port for rebuilding the index at
// process start by replaying the profile store's boot stream.
type BootStreamReader interface {
	// StreamBootTuples calls yield for every currently visible profile.
	// Implementations should page internally; yield returning an error
	// stops iteration and the error propagates to the caller.
	StreamBootTuples(ctx context.Context, yield func(BootStreamTuple) error) error
}

// IteratorStateCache is the outbound port for the per-viewer iterator
// state (spec §3 "viewer location state"). Implementations are expected to
// partition storage by account id (modules/db/redis/kv.go's RedisKV, in
// the shipped adapter).
type IteratorStateCache interface {
	Load(ctx context.Context, accountID uuid.UUID) (geoindex.IteratorState, bool, error)
	Save(ctx context.Context, accountID uuid.UUID, state geoindex.IteratorState) error
	Clear(ctx context.Context, accountID uuid.UUID) error
}

// CursorSigner is the outbound port for signing and verifying opaque
// tokens. Application holds one, but iterator state is kept in
// IteratorStateCache rather than handed to the caller, and no code path
// signs or verifies anything with it.
type CursorSigner interface {
	Sign(payload []byte) (string, error)
	Verify(token string) ([]byte, error)
}
