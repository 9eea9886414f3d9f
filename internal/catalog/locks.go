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

// LockKey is a four-tuple company-specific product exclusion key.
// Either ProductID alone is set, or one or more of VendorID/GroupID/
// ClassID are (see probeOrder); unused fields are zero. A plain
// comparable struct used directly as a map key.
type LockKey struct {
	VendorID  uint32
	GroupID   uint32
	ClassID   uint32
	ProductID uint32
}

// probeOrder is the canonical 8-key lock probe. IsLocked stops at the
// first stored key that matches; since it reports only whether any key
// matches, the order does not change its result.
func probeOrder(vendorID, groupID, classID, productID uint32) [8]LockKey {
	return [8]LockKey{
		{ProductID: productID},
		{VendorID: vendorID},
		{GroupID: groupID},
		{ClassID: classID},
		{VendorID: vendorID, GroupID: groupID},
		{VendorID: vendorID, ClassID: classID},
		{GroupID: groupID, ClassID: classID},
		{VendorID: vendorID, GroupID: groupID, ClassID: classID},
	}
}

// LockList is the set of lock keys held by one company, each stamped
// with the version of the load that last saw it. An empty list means
// "never locked".
type LockList struct {
	Stamped
	CompanyID uint32
	keys      map[LockKey]uint64
}

// IsLocked reports whether a product identified by (vendorID, groupID,
// classID, productID) is excluded for this company, probing the eight
// canonical keys in order.
func (l *LockList) IsLocked(vendorID, groupID, classID, productID uint32) bool {
	if l == nil || len(l.keys) == 0 {
		return false
	}
	for _, k := range probeOrder(vendorID, groupID, classID, productID) {
		if _, ok := l.keys[k]; ok {
			return true
		}
	}
	return false
}

// Locks is keyed by companyId -> LockList.
type Locks struct {
	mu      sync.RWMutex
	version VersionCounter
	byCo    map[uint32]*LockList
}

// NewLocks returns an empty Locks container.
func NewLocks() *Locks {
	return &Locks{byCo: make(map[uint32]*LockList)}
}

// BeginLoad bumps the version for a fresh locks sub-load.
func (l *Locks) BeginLoad() uint64 { return l.version.Bump() }

// Upsert records one (companyId, key) pair at the given version.
func (l *Locks) Upsert(companyID uint32, key LockKey, version uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	list, ok := l.byCo[companyID]
	if !ok {
		list = &LockList{CompanyID: companyID, keys: make(map[LockKey]uint64)}
		l.byCo[companyID] = list
	}
	list.Stamp(version)
	list.keys[key] = version
}

// Sweep drops every company's lock list not touched during the load
// that just ended, and within a surviving list drops every key the
// load didn't re-deliver. A company with no locks this pass simply
// vanishes from the map, which IsLocked's nil-receiver handling treats
// as "never locked".
func (l *Locks) Sweep(version uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, list := range l.byCo {
		if !list.Fresh(version) {
			delete(l.byCo, id)
			continue
		}
		for k, v := range list.keys {
			if v != version {
				delete(list.keys, k)
			}
		}
	}
}

// ListFor returns a snapshot clone of the lock list for a company.
// Executors call this once per request, before iterating products.
func (l *Locks) ListFor(companyID uint32) *LockList {
	l.mu.RLock()
	defer l.mu.RUnlock()

	src, ok := l.byCo[companyID]
	if !ok {
		return nil
	}
	clone := &LockList{CompanyID: companyID, keys: make(map[LockKey]uint64, len(src.keys))}
	for k, v := range src.keys {
		clone.keys[k] = v
	}
	return clone
}
