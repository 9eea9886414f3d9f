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

import "sync/atomic"

// Cache is the single immutable handle holding a reference to every
// container. It is constructed once at boot and shared by pointer with
// every worker — the loader and every executor share the same handle,
// so no component ever holds a back-reference to another.
type Cache struct {
	Auth     *Auth
	World    *World
	Targets  *Targets
	Locks    *Locks
	Products *Products
	Store    *Store
	Bg       *Bg
	Currency *CurrencyRate

	ready atomic.Bool
}

// New constructs an empty Cache. Containers exist but are unpopulated
// until the loader's first refresh pass completes.
func New() *Cache {
	return &Cache{
		Auth:     NewAuth(),
		World:    NewWorld(),
		Targets:  NewTargets(),
		Locks:    NewLocks(),
		Products: NewProducts(),
		Store:    NewStore(),
		Bg:       NewBg(),
		Currency: NewCurrencyRate(),
	}
}

// MarkReady flips the first-ready latch. The loader calls this exactly
// once, after its first refresh pass finishes all eight sub-loads.
func (c *Cache) MarkReady() { c.ready.Store(true) }

// Ready reports whether the first refresh pass has completed. The
// supervisor blocks request acceptance until this is true.
func (c *Cache) Ready() bool { return c.ready.Load() }
