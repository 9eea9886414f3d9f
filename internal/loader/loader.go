// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
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

// Package loader runs the periodic cache-refresh pass: eight sub-loads
// in a fixed order, each retried on a one-second ticker until it
// succeeds, against the two upstream MySQL handles.
package loader

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"pricefeed/internal/catalog"
	"pricefeed/internal/catalog/source"
	"pricefeed/internal/telemetry"
)

// DefaultInterval is the refresh cadence between passes.
const DefaultInterval = 5 * time.Minute

// retryDelay is how long a failed sub-load waits before trying again;
// the rest of the pass continues only once the failing sub-load
// succeeds.
const retryDelay = time.Second

// Loader owns the refresh-pass goroutine: a ticker-driven loop
// selecting over the ticker and a stop channel, with a guarded Stop
// that joins the goroutine.
type Loader struct {
	handles  *source.Handles
	cache    *catalog.Cache
	interval time.Duration
	log      *slog.Logger

	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  bool
	mu       sync.Mutex
}

// New constructs a Loader. interval <= 0 uses DefaultInterval.
func New(handles *source.Handles, cache *catalog.Cache, interval time.Duration, log *slog.Logger) *Loader {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = slog.Default()
	}
	return &Loader{
		handles:  handles,
		cache:    cache,
		interval: interval,
		log:      log,
		stopChan: make(chan struct{}),
	}
}

// Start launches the refresh loop in its own goroutine and returns at
// once. The first pass runs immediately in that goroutine; callers
// that need a loaded catalog block on Cache.Ready(), which MarkReady
// flips after that pass.
func (l *Loader) Start(ctx context.Context) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		l.run(ctx)
	}()
}

// Stop signals the refresh loop to exit and waits for it to finish its
// current sub-load boundary.
func (l *Loader) Stop() {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.stopped = true
	close(l.stopChan)
	l.mu.Unlock()
	l.wg.Wait()
}

func (l *Loader) run(ctx context.Context) {
	l.runPass(ctx)
	l.cache.MarkReady()

	lastRefresh := time.Now()

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	staleTicker := time.NewTicker(time.Second)
	defer staleTicker.Stop()

	for {
		select {
		case <-ticker.C:
			l.runPass(ctx)
			lastRefresh = time.Now()
		case <-staleTicker.C:
			telemetry.CacheStale.Set(time.Since(lastRefresh).Seconds())
		case <-l.stopChan:
			return
		}
	}
}

// runPass performs the eight sub-loads in fixed order: auth, currency,
// countries, targets, locks, products, stock, bonusGroups. Stock
// depends on products having already populated the code index.
func (l *Loader) runPass(ctx context.Context) {
	start := time.Now()
	defer func() { telemetry.RefreshDuration.Observe(time.Since(start).Seconds()) }()

	l.retryUntilOK(ctx, "auth", func(ctx context.Context) error {
		return source.LoadAuth(ctx, l.handles.Catalog, l.cache.Auth)
	})
	l.retryUntilOK(ctx, "currency", func(ctx context.Context) error {
		return source.LoadCurrency(ctx, l.handles.Catalog, l.cache.Currency)
	})
	l.retryUntilOK(ctx, "countries", func(ctx context.Context) error {
		return source.LoadCountries(ctx, l.handles.Logistics, l.cache.World)
	})
	l.retryUntilOK(ctx, "targets", func(ctx context.Context) error {
		return source.LoadTargets(ctx, l.handles.Logistics, l.cache.Targets)
	})
	l.retryUntilOK(ctx, "locks", func(ctx context.Context) error {
		return source.LoadLocks(ctx, l.handles.Catalog, l.cache.Locks)
	})
	l.retryUntilOK(ctx, "products", func(ctx context.Context) error {
		return source.LoadProducts(ctx, l.handles.Catalog, l.cache.Products)
	})
	l.retryUntilOK(ctx, "stock", func(ctx context.Context) error {
		return source.LoadStock(ctx, l.handles.Logistics, l.cache.Products, l.cache.Store)
	})
	l.retryUntilOK(ctx, "bonusGroups", func(ctx context.Context) error {
		return source.LoadBonusGroups(ctx, l.handles.Catalog, l.cache.Bg)
	})
}

// retryUntilOK is the recoverable-error handling for the 600-series:
// a driver error inside the loader is logged and retried after one
// second until it succeeds, without aborting the rest of the pass
// beyond the failing sub-load itself.
func (l *Loader) retryUntilOK(ctx context.Context, name string, fn func(context.Context) error) {
	for {
		if err := fn(ctx); err != nil {
			telemetry.RefreshSubloadErrors.WithLabelValues(name).Inc()
			l.log.Warn("sub-load failed, retrying", "subload", name, "error", err)
			select {
			case <-time.After(retryDelay):
				continue
			case <-l.stopChan:
				return
			}
		}
		return
	}
}
