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

import (
	"math"
	"sync/atomic"
)

// CurrencyRate holds the single USD->UAH multiplier used by the price
// builder's UAH conversion step. It's stored as bits behind an atomic
// so readers never block on the loader.
type CurrencyRate struct {
	bits atomic.Uint32
}

// NewCurrencyRate returns a CurrencyRate initialized to zero; callers
// must not treat a zero rate as valid until the first load completes.
func NewCurrencyRate() *CurrencyRate { return &CurrencyRate{} }

// Set stores a freshly loaded rate.
func (c *CurrencyRate) Set(rate float32) {
	c.bits.Store(math.Float32bits(rate))
}

// Get returns the most recently loaded rate.
func (c *CurrencyRate) Get() float32 {
	return math.Float32frombits(c.bits.Load())
}
