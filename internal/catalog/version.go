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

// Package catalog holds the process-local, read-mostly in-memory model
// of the catalog: users/companies, products in three projections, stock
// per warehouse, per-company product locks, bonus groups, delivery
// targets, countries and the currency rate. The cache loader is the
// sole writer; request executors only ever clone or snapshot.
package catalog

import "sync/atomic"

// VersionCounter is a monotonically increasing, wrapping counter owned by
// a single container. At the start of a refresh pass the container bumps
// its counter; each row loaded during that pass stamps the touched entity
// with the new value. After loading, anything stamped with an older value
// did not survive the upstream round and is removed.
//
// It intentionally wraps on overflow rather than saturating: the counter
// is only ever compared for equality against the value it handed out a
// moment ago, never ordered, so wraparound is harmless.
type VersionCounter struct {
	v uint64
}

// Bump advances the counter and returns the new value. Only the loader
// goroutine calls this, once per sub-load per container, before it stamps
// any rows.
func (c *VersionCounter) Bump() uint64 {
	return atomic.AddUint64(&c.v, 1)
}

// Current returns the counter's present value without advancing it.
func (c *VersionCounter) Current() uint64 {
	return atomic.LoadUint64(&c.v)
}

// Stamped is embedded by every versioned entity. Surviving a sweep means
// Version() equals the owning container's VersionCounter.Current() at the
// moment the sweep runs.
type Stamped struct {
	version uint64
}

// Stamp records the version an entity was touched at during a load.
func (s *Stamped) Stamp(v uint64) { s.version = v }

// Version reports the version an entity was last touched at.
func (s *Stamped) Version() uint64 { return s.version }

// Fresh reports whether the entity's stamp matches the container's
// current version, i.e. it survived the most recent sweep.
func (s *Stamped) Fresh(containerVersion uint64) bool {
	return s.version == containerVersion
}
