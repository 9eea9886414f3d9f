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

// User is one authenticated identity under a Company. ProfilesID is the
// upstream profile id; zero means the row is present but unauthorized.
// Corp/Rozn/R3 mirror the capability bits consumed by the localization
// and pricing rules; API forces Rozn and R3 true downstream.
type User struct {
	Stamped
	CompanyID  uint32
	UserID     uint32
	ProfilesID uint32
	Corp       bool
	Rozn       bool
	R3         bool
	API        bool
}

// Authorized reports whether this user may be served at all.
func (u *User) Authorized() bool { return u.ProfilesID != 0 }

// Company groups users under a companyId.
type Company struct {
	Stamped
	CompanyID uint32
	Users     map[uint32]*User
}

// Auth is the top-level container for companies/users. It is its own
// synchronization domain: the loader holds mu while mutating; readers
// take a brief read lock to clone just what they need.
type Auth struct {
	mu        sync.RWMutex
	version   VersionCounter
	companies map[uint32]*Company
}

// NewAuth returns an empty Auth container, ready for its first load.
func NewAuth() *Auth {
	return &Auth{companies: make(map[uint32]*Company)}
}

// BeginLoad bumps the container's version and must be called once at the
// start of every auth sub-load, before any row is stamped.
func (a *Auth) BeginLoad() uint64 {
	return a.version.Bump()
}

// UpsertUser records (or updates) one user row at the given version,
// creating the owning Company if this is its first row this pass.
func (a *Auth) UpsertUser(companyID, userID, profilesID uint32, corp, rozn, r3, api bool, version uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	c, ok := a.companies[companyID]
	if !ok {
		c = &Company{CompanyID: companyID, Users: make(map[uint32]*User)}
		a.companies[companyID] = c
	}
	c.Stamp(version)

	u, ok := c.Users[userID]
	if !ok {
		u = &User{CompanyID: companyID, UserID: userID}
		c.Users[userID] = u
	}
	u.ProfilesID = profilesID
	u.Corp = corp
	u.Rozn = rozn
	u.R3 = r3
	u.API = api
	u.Stamp(version)
}

// Sweep removes every company (and, within a surviving company, every
// user) whose stamp doesn't match the version the load just completed
// at. Called once, after all rows for this sub-load have been applied.
func (a *Auth) Sweep(version uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for cid, c := range a.companies {
		if !c.Fresh(version) {
			delete(a.companies, cid)
			continue
		}
		for uid, u := range c.Users {
			if !u.Fresh(version) {
				delete(c.Users, uid)
			}
		}
	}
}

// CompanyExists reports whether companyId has any surviving row,
// letting callers distinguish the unknown-company client error (code
// 17) from the unknown-user one (code 18) that Lookup's single bool
// otherwise collapses together.
func (a *Auth) CompanyExists(companyID uint32) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.companies[companyID]
	return ok
}

// Lookup returns a snapshot copy of the user for (companyId, userId),
// or ok=false if the company or user is absent.
func (a *Auth) Lookup(companyID, userID uint32) (User, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	c, ok := a.companies[companyID]
	if !ok {
		return User{}, false
	}
	u, ok := c.Users[userID]
	if !ok {
		return User{}, false
	}
	return *u, true
}
