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

// Package pricing implements the per-item derivation pipeline: lock
// resolution, availability, the volume filter, bonus and delivery-cost
// computation, localization, the special-case merchant-rule table, and
// applied-price rounding.
package pricing

import (
	"fmt"

	"pricefeed/internal/catalog"
	"pricefeed/internal/token"
)

// Params carries the request-scoped inputs that parameterize
// derivation for every product in one price-list build.
type Params struct {
	CompanyID uint32
	TargetID  uint32
	Volume    token.Volume
	Lang      token.Lang
	PCVinga   bool
	Corp      bool // user.Corp; selects the localization host
}

// Item is one row of the price list after per-item derivation. It
// carries both the product's identifying fields and the request-scoped
// derived fields, and is the shared model the format emitters read
// their columns from.
type Item struct {
	ProductID uint32

	Stock     int
	Available int
	Day       int
	Bonus     float32
	Overall   int
	Delivery  float32

	Name     string
	Group    string
	Desc     string
	Category string
	URL      string
	Class    string
	Country  string

	Code       string
	BG         string
	EAN        string
	SellerCode string
	Article    string
	VendorName string
	Model      string
	UKTVED     string
	Warranty   int
	DDP        bool
	Exclusive  bool
	FOP        bool

	// Filled in by ApplyPricing.
	PriceUSD         float32
	PriceInd         uint32
	RecommendedPrice float32
	RetailPrice      float32
	InternetPrice    float32
	PriceUAH         float32
}

// corpHost and oprHost are the two localization hosts selected by the
// requesting user's corp capability.
const (
	corpHost = "corp.brain.com.ua"
	oprHost  = "opt.brain.com.ua"
)

// BuildItems derives one Item per product in products that survives
// lock/filter/special-case processing. locks, target, store, bg, and
// world are request-scoped snapshots already cloned out of the cache
// containers by the caller.
func BuildItems(products []catalog.Product, locks *catalog.LockList, target catalog.Target, store *catalog.Store, bg *catalog.BonusGroup, world *catalog.World, params Params) []Item {
	items := make([]Item, 0, len(products))
	for _, p := range products {
		item, keep := derive(p, locks, target, store, bg, world, params)
		if keep {
			items = append(items, item)
		}
	}
	return items
}

func derive(p catalog.Product, locks *catalog.LockList, target catalog.Target, store *catalog.Store, bg *catalog.BonusGroup, world *catalog.World, params Params) (Item, bool) {
	locked := locks.IsLocked(p.VendorID, p.GroupID, p.ClassID, p.ProductID)

	item := Item{
		ProductID:  p.ProductID,
		Overall:    clampOverall(p.Overall),
		Code:       p.Code,
		BG:         p.BG,
		EAN:        p.EAN,
		SellerCode: p.SellerCode,
		Article:    p.Article,
		VendorName: p.VendorName,
		Model:      p.Model,
		UKTVED:     p.UKTVED,
		Warranty:   p.Warranty,
		DDP:        p.DDP,
		Exclusive:  p.Exclusive,
		FOP:        p.FOP(),
	}

	applyAvailability(&item, p, locked, target, store)

	// The merchant rules run before the volume filters: a rule that
	// forces an item in-stock rescues it from the stock==0 drops below.
	if dropped := applySpecialRules(&item, p, params); dropped {
		return Item{}, false
	}

	if !passesVolumeFilter(params.Volume, item, locked) {
		return Item{}, false
	}

	applyBonus(&item, p, locked, bg)
	applyDelivery(&item, p, target)
	applyLocalization(&item, p, world, params)

	return item, true
}

// applyAvailability reports a locked product as entirely absent;
// otherwise availability is looked up at the request's target
// warehouse.
func applyAvailability(item *Item, p catalog.Product, locked bool, target catalog.Target, store *catalog.Store) {
	if locked {
		item.Stock, item.Available, item.Day = 0, 0, 0
		return
	}
	stock, ok := store.Lookup(target.StockID, p.ProductID)
	if !ok || stock.Available <= 0 {
		item.Stock, item.Available, item.Day = 0, 0, stock.Day
		return
	}
	item.Stock, item.Available, item.Day = 1, stock.Available, 0
}

// passesVolumeFilter applies the strict volume inclusion rules: Local
// and FullUAH lists carry in-stock items only, and an out-of-stock
// item with no delay is dropped everywhere unless locked.
func passesVolumeFilter(volume token.Volume, item Item, locked bool) bool {
	if (volume == token.VolumeLocal || volume == token.VolumeFullUAH) && item.Stock == 0 {
		return false
	}
	if item.Stock == 0 && item.Day == 0 && !locked {
		return false
	}
	return true
}

// applyBonus sets the bonus: zero if locked, else the product's own
// bonus gated on bg-set membership.
func applyBonus(item *Item, p catalog.Product, locked bool, bg *catalog.BonusGroup) {
	if locked {
		item.Bonus = 0
		return
	}
	if bg.Contains(p.BG) {
		item.Bonus = p.Bonus
		return
	}
	item.Bonus = 0
}

// applyDelivery computes the delivery cost:
// max(weight, 250*volume) * postage[bucket].
func applyDelivery(item *Item, p catalog.Product, target catalog.Target) {
	basis := p.Weight
	if v := 250 * p.Volume; v > basis {
		basis = v
	}
	item.Delivery = basis * target.Postage(item.Overall)
}

// applyLocalization selects the UA/RU string branch and builds the
// product URL.
func applyLocalization(item *Item, p catalog.Product, world *catalog.World, params Params) {
	host := oprHost
	if params.Corp {
		host = corpHost
	}

	var slug string
	switch params.Lang {
	case token.LangRU:
		item.Name = p.NameRU
		item.Group = p.GroupRU
		item.Desc = p.DescRU
		item.Category = p.CategoryRU
		item.Class = p.ClassRU
		slug = p.URLSlugRU
	default: // token.LangUA
		item.Name = p.NameUA
		item.Group = p.GroupUA
		item.Desc = p.DescUA
		item.Category = p.CategoryUA
		item.Class = p.ClassUA
		slug = p.URLSlugUA
	}
	item.URL = fmt.Sprintf("https://%s/%s.html", host, slug)

	if country, ok := world.Lookup(p.CountryID); ok {
		if params.Lang == token.LangRU {
			item.Country = country.NameRU
		} else {
			item.Country = country.NameUA
		}
	}
}

func clampOverall(overall int) int {
	if overall < 0 {
		return 0
	}
	if overall > 3 {
		return 3
	}
	return overall
}
