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

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/rueidislock"

	discoverycache "app/core/discovery/adapters/cache/redis"
	discoverypg "app/core/discovery/adapters/persistence/pg"
	"app/core/discovery/adapters/rest"
	discoveryconfig "app/core/discovery/config"
	"app/core/discovery/domain"
	"app/fs"
	"app/internal/geoindex"
	"app/modules/appconfig"
	"app/modules/clock"
	"app/modules/db/postgres"
	redisdb "app/modules/db/redis"
	"app/modules/db/redis/counter"
	"app/modules/db/redis/locking"
	"app/modules/hmac"
	mw "app/modules/middleware"
	ratelimitmw "app/modules/middleware/ratelimit"
	"app/modules/middleware/problem"
	"app/modules/ratelimit"
	"app/modules/server"
	"app/modules/telemetry"
)

// bootLockName is the distributed lock name guarding boot-stream ingestion
// and the single Index Writer handle across horizontally replicated
// instances (spec §5 I1, SPEC_FULL.md §2 "Leader election").
const bootLockName = "discovery.boot_writer"

// iteratorCacheKeyPrefix namespaces the per-viewer iterator-state cache
// apart from any other Redis-backed feature sharing the same instance.
const iteratorCacheKeyPrefix = "discovery:iterator_state:"

// rateLimitKeyPrefix namespaces next_page rate-limit counters in Redis.
const rateLimitKeyPrefix = "discovery:ratelimit:next_page"

// accountIDKeyStrategy names the extra rate-limit key strategy this
// service adds on top of modules/middleware/ratelimit's built-in
// RemoteIpKeyStrategy: authentication is an external collaborator
// (spec.md §1 Non-goals), so the engine trusts an upstream auth proxy to
// set X-Account-Id and limits per account instead of per IP.
const accountIDKeyStrategy ratelimitmw.KeyStrategyId = "account_id"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, os.Interrupt)
	defer cancel()

	slog.SetLogLoggerLevel(slog.LevelDebug)

	cfg, err := appconfig.Load()
	if err != nil {
		slog.ErrorContext(ctx, "config error", slog.Any("error", err))
		os.Exit(1)
	}

	shutdownTelemetry, err := telemetry.Init(ctx, cfg.Otel)
	if err != nil {
		slog.ErrorContext(ctx, "telemetry init error", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		sCtx, sCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer sCancel()
		if err := shutdownTelemetry(sCtx); err != nil {
			slog.ErrorContext(ctx, "telemetry shutdown error", slog.Any("error", err))
		}
	}()

	// --- infrastructure ---

	pgPool, err := postgres.New(ctx, &cfg.Postgres, postgres.PostgresOptions{})
	if err != nil {
		slog.ErrorContext(ctx, "database error", slog.Any("error", err))
		os.Exit(1)
	}
	if err := pgPool.HealthCheck(); err != nil {
		slog.ErrorContext(ctx, "database health check failed", slog.Any("error", err))
		os.Exit(1)
	}

	redisClient, err := redisdb.NewRueidisClient(ctx, cfg.Redis)
	if err != nil {
		slog.ErrorContext(ctx, "redis error", slog.Any("error", err))
		os.Exit(1)
	}
	defer redisClient.Close()

	signer, err := hmac.NewHMACSigner([]byte(cfg.HMAC.Secret))
	if err != nil {
		slog.ErrorContext(ctx, "hmac signer setup error", slog.Any("error", err))
		os.Exit(1)
	}

	// --- geoindex + discovery domain ---

	matrix, err := cfg.Matrix.NewMatrix()
	if err != nil {
		slog.ErrorContext(ctx, "matrix config error", slog.Any("error", err))
		os.Exit(1)
	}
	schema, err := discoveryconfig.LoadAttributeSchema(fs.LocalFS{}, cfg.Matrix.AttributeSchemaPath)
	if err != nil {
		slog.ErrorContext(ctx, "attribute schema error", slog.Any("error", err))
		os.Exit(1)
	}
	writer := geoindex.NewWriter(matrix)
	registry := domain.NewRegistry(writer)

	iteratorCache := discoverycache.NewIteratorStateCache(redisClient, iteratorCacheKeyPrefix, 24*time.Hour)

	app := domain.NewApp(matrix, writer, registry, schema, iteratorCache, signer, 24*time.Hour)

	discoveryMetrics, err := telemetry.NewDiscoveryMetrics(cfg.Otel.ServiceName)
	if err != nil {
		slog.ErrorContext(ctx, "discovery metrics init error", slog.Any("error", err))
		os.Exit(1)
	}
	app.WithMetrics(discoveryMetrics)

	// --- leader election + boot-stream replay ---
	//
	// Only the replica holding the lock replays the boot stream and owns
	// the Index Writer handle (spec §5 I1). Losing the lock is not fatal:
	// this replica still serves next_page against its own (initially
	// empty) matrix, populated as event hooks are forwarded to it — the
	// forwarding path itself is out of scope for this exercise.
	clientOpt, err := rueidis.ParseURL(cfg.Redis.URL)
	if err != nil {
		slog.ErrorContext(ctx, "redis lock client option error", slog.Any("error", err))
		os.Exit(1)
	}
	locker, err := rueidislock.NewLocker(rueidislock.LockerOption{
		ClientOption: clientOpt,
		KeyMajority:  1,
	})
	if err != nil {
		slog.ErrorContext(ctx, "redis locker error", slog.Any("error", err))
		os.Exit(1)
	}
	defer locker.Close()

	lockExec := locking.NewLockingTaskExecutor(
		locker,
		locking.WithNamePrefix("discovery:lock:"),
		locking.WithWaitForLock(false),
	)

	locationStore := discoverypg.NewLocationStore(pgPool, "profile_summaries")
	err = lockExec.Execute(ctx, locking.LockConfiguration{
		Name:           bootLockName,
		LockAtMostFor:  5 * time.Minute,
		LockAtLeastFor: 0,
	}, func(ctx context.Context) error {
		slog.InfoContext(ctx, "acquired boot-writer lock, replaying boot stream")
		return app.LoadBootStream(ctx, locationStore)
	})
	switch {
	case err == nil:
		slog.InfoContext(ctx, "boot stream replay complete")
	case errors.Is(err, locking.ErrLockNotAcquired):
		slog.InfoContext(ctx, "boot-writer lock held elsewhere, starting without local replay")
	default:
		slog.ErrorContext(ctx, "boot stream replay failed", slog.Any("error", err))
		os.Exit(1)
	}

	// --- HTTP server ---

	discoveryAPI := rest.NewAPI(app, cfg.Matrix)

	counterStore := counter.NewRedisCounterStore(redisClient, rateLimitKeyPrefix)
	limiterFactory := ratelimit.SlidingWindowFactory(clock.RealClockProvider(), counterStore, rateLimitKeyPrefix)

	keyStrategies := map[ratelimitmw.KeyStrategyId]ratelimitmw.KeyFunc{
		ratelimitmw.RemoteIpKeyStrategy: func(r *http.Request) ratelimit.Key {
			return ratelimit.Key(r.RemoteAddr)
		},
		accountIDKeyStrategy: func(r *http.Request) ratelimit.Key {
			return ratelimit.Key(r.Header.Get("X-Account-Id"))
		},
	}
	routeInfoFn := func(r *http.Request) ratelimitmw.RouteInfo {
		return ratelimitmw.RouteInfo{ID: ratelimitmw.Pattern(r.URL.Path), Method: r.Method, Path: r.URL.Path}
	}
	rateLimitPolicy, err := ratelimitmw.ParsePolicy(limiterFactory, &cfg.RateLimit, routeInfoFn, keyStrategies)
	if err != nil {
		slog.ErrorContext(ctx, "rate limit policy error", slog.Any("error", err))
		os.Exit(1)
	}

	httpMetrics, err := telemetry.NewHTTPMetrics(cfg.Otel.ServiceName)
	if err != nil {
		slog.ErrorContext(ctx, "http metrics init error", slog.Any("error", err))
		os.Exit(1)
	}

	panicHandler := func(w http.ResponseWriter, r *http.Request, recovered any) {
		problem.Write(w, problem.Internal("internal server error"))
	}

	srv, err := server.New(
		"0.0.0.0", 8080,
		server.WithWriteTimeout(10*time.Second),
		server.WithServices(discoveryAPI),
		server.WithGlobalMiddlewares(
			mw.Telemetry(httpMetrics),
			ratelimitmw.NewRateLimitMiddleware(rateLimitPolicy),
			mw.Recovery(panicHandler),
		),
	)
	if err != nil {
		slog.ErrorContext(ctx, "init server error", slog.Any("error", err))
		os.Exit(1)
	}

	if err := srv.Run(ctx); err != nil {
		slog.ErrorContext(ctx, "running server error", slog.Any("error", err))
		os.Exit(1)
	}
}
