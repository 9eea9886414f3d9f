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

// Stock is the availability of one product at one warehouse.
type Stock struct {
	Stamped
	Available int
	Day       int // delay in days before the item is back in stock
}

// empty reports whether the row carries no information at all.
func (s *Stock) empty() bool { return s.Available == 0 && s.Day == 0 }

// productStock is the nested container for one warehouse: productId -> Stock.
type productStock struct {
	Stamped
	StockID  uint32
	products map[uint32]*Stock
}

// Store is the top-level stock container, keyed by warehouse (stockId).
// Stock resolution depends on Products because rows arrive keyed by
// product code and must be translated via Products.LookupByCode before
// they can be stamped here.
type Store struct {
	mu      sync.RWMutex
	version VersionCounter
	byStock map[uint32]*productStock
}

// NewStore returns an empty Store container.
func NewStore() *Store {
	return &Store{byStock: make(map[uint32]*productStock)}
}

// BeginLoad bumps the version for a fresh stock sub-load.
func (s *Store) BeginLoad() uint64 { return s.version.Bump() }

// Upsert records one (stockId, productId) row at the given version.
func (s *Store) Upsert(stockID, productID uint32, available, day int, version uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ps, ok := s.byStock[stockID]
	if !ok {
		ps = &productStock{StockID: stockID, products: make(map[uint32]*Stock)}
		s.byStock[stockID] = ps
	}
	ps.Stamp(version)

	row := &Stock{Available: available, Day: day}
	row.Stamp(version)
	ps.products[productID] = row
}

// Sweep removes every warehouse (and, within it, every product stock
// row) not touched during the load that just ended, then prunes any
// row whose both fields are zero.
func (s *Store) Sweep(version uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for stockID, ps := range s.byStock {
		if !ps.Fresh(version) {
			delete(s.byStock, stockID)
			continue
		}
		for pid, row := range ps.products {
			if !row.Fresh(version) || row.empty() {
				delete(ps.products, pid)
			}
		}
	}
}

// Lookup returns the stock row for (stockID, productID), if present.
func (s *Store) Lookup(stockID, productID uint32) (Stock, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ps, ok := s.byStock[stockID]
	if !ok {
		return Stock{}, false
	}
	row, ok := ps.products[productID]
	if !ok {
		return Stock{}, false
	}
	return *row, true
}
