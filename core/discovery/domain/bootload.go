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
	"log/slog"

	"app/worker"
)

// bootLoadWorkers bounds how many goroutines concurrently call
// Registry.Insert while replaying the boot stream. Insert takes a
// per-cell mutex, so this is mostly about bounding reader fan-out rather
// than write contention.
const bootLoadWorkers = 8

// LoadBootStream rebuilds the index and registry from reader by replaying
// every currently-visible profile it streams (spec §6 "process start").
// It must run before the application serves next_page requests; the
// single-writer invariant (I1) holds because nothing else touches the
// Writer until this returns.
func (app *Application) LoadBootStream(ctx context.Context, reader BootStreamReader) error {
	jobs := make(chan BootStreamTuple, bootLoadWorkers*2)
	errCh := make(chan error, 1)

	go func() {
		defer close(jobs)
		err := reader.StreamBootTuples(ctx, func(tuple BootStreamTuple) error {
			select {
			case jobs <- tuple:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil {
			select {
			case errCh <- err:
			default:
			}
		}
	}()

	worker.BlockingPool(ctx, bootLoadWorkers, jobs, func(ctx context.Context, tuple BootStreamTuple) {
		app.registry.Insert(tuple.AccountID, tuple.Summary, tuple.CellKey)
	})

	select {
	case err := <-errCh:
		slog.ErrorContext(ctx, "boot stream replay failed", slog.Any("error", err))
		return err
	default:
		return nil
	}
}
