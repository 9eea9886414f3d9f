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

package catalog

import "sync"

// Country is one localized country row.
type Country struct {
	Stamped
	CountryID uint32
	NameUA    string
	NameRU    string
}

// World holds every known Country, keyed by id.
type World struct {
	mu        sync.RWMutex
	version   VersionCounter
	countries map[uint32]*Country
}

// NewWorld returns an empty World container.
func NewWorld() *World {
	return &World{countries: make(map[uint32]*Country)}
}

// BeginLoad bumps the version for a fresh countries sub-load.
func (w *World) BeginLoad() uint64 { return w.version.Bump() }

// Upsert records one country row at the given version.
func (w *World) Upsert(countryID uint32, nameUA, nameRU string, version uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	c, ok := w.countries[countryID]
	if !ok {
		c = &Country{CountryID: countryID}
		w.countries[countryID] = c
	}
	c.NameUA = nameUA
	c.NameRU = nameRU
	c.Stamp(version)
}

// Sweep drops every country not touched during the load that just ended.
func (w *World) Sweep(version uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for id, c := range w.countries {
		if !c.Fresh(version) {
			delete(w.countries, id)
		}
	}
}

// Lookup returns a snapshot of the named country, if known.
func (w *World) Lookup(countryID uint32) (Country, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	c, ok := w.countries[countryID]
	if !ok {
		return Country{}, false
	}
	return *c, true
}
