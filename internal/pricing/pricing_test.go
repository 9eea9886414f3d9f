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

package pricing

import (
	"testing"

	"pricefeed/internal/catalog"
	"pricefeed/internal/pricing/source"
	"pricefeed/internal/token"
)

// TestPromoBackorderForcedInStock checks that a promo company's
// out-of-stock Vinga/BRAIN item in category 1053 is forced in-stock
// with available=3.
func TestPromoBackorderForcedInStock(t *testing.T) {
	store := catalog.NewStore()
	v := store.BeginLoad()
	store.Upsert(5, 7, 0, 7, v)
	store.Sweep(v)

	world := catalog.NewWorld()
	target := catalog.Target{TargetID: 10, StockID: 5, PostageCompact: 1, PostageMiddle: 2, PostageBig: 3, PostageLarge: 4}
	locks := (*catalog.LockList)(nil)
	bg := (*catalog.BonusGroup)(nil)

	product := catalog.Product{ProductID: 7, Code: "AB1", CategoryID: 1053, VendorName: "BRAIN", Overall: 0, Weight: 1}

	params := Params{CompanyID: 12377, TargetID: 10, Volume: token.VolumeFull, Lang: token.LangUA, Corp: true}

	items := BuildItems([]catalog.Product{product}, locks, target, store, bg, world, params)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	item := items[0]
	if item.Stock != 1 || item.Available != 3 || item.Day != 0 {
		t.Fatalf("expected forced in-stock (1,3,0), got (%d,%d,%d)", item.Stock, item.Available, item.Day)
	}
}

// TestPromoBackorderSurvivesLocalVolume checks rule ordering: the
// promo rescue fires before the Local-volume stock filter, so the
// forced-in-stock item stays on a Local list instead of being dropped
// for its original stock=0.
func TestPromoBackorderSurvivesLocalVolume(t *testing.T) {
	store := catalog.NewStore()
	v := store.BeginLoad()
	store.Upsert(5, 7, 0, 7, v)
	store.Sweep(v)

	world := catalog.NewWorld()
	target := catalog.Target{TargetID: 10, StockID: 5, PostageCompact: 1}
	product := catalog.Product{ProductID: 7, Code: "AB1", CategoryID: 1053, VendorName: "BRAIN", Weight: 1}
	params := Params{CompanyID: 12377, TargetID: 10, Volume: token.VolumeLocal, Lang: token.LangUA}

	items := BuildItems([]catalog.Product{product}, nil, target, store, nil, world, params)
	if len(items) != 1 {
		t.Fatalf("rescued item should survive the Local volume filter, got %d items", len(items))
	}
	if items[0].Stock != 1 || items[0].Available != 3 || items[0].Day != 0 {
		t.Fatalf("expected forced in-stock (1,3,0), got (%d,%d,%d)", items[0].Stock, items[0].Available, items[0].Day)
	}
}

// TestFullUAHFilterDropsOutOfStock checks that an out-of-stock item
// with a nonzero delay is excluded from a FullUAH list.
func TestFullUAHFilterDropsOutOfStock(t *testing.T) {
	store := catalog.NewStore()
	v := store.BeginLoad()
	store.Upsert(5, 9, 0, 5, v)
	store.Sweep(v)

	world := catalog.NewWorld()
	target := catalog.Target{TargetID: 10, StockID: 5}
	product := catalog.Product{ProductID: 9, VendorName: "Other", Weight: 1}
	params := Params{CompanyID: 1, TargetID: 10, Volume: token.VolumeFullUAH, Lang: token.LangUA}

	items := BuildItems([]catalog.Product{product}, nil, target, store, nil, world, params)
	if len(items) != 0 {
		t.Fatalf("expected item to be dropped under FullUAH filter, got %d items", len(items))
	}
}

// TestPricingRounding covers the two-stage half-up rounding to a
// multiple of 6 cents when nds and uah are set:
// 1.237 -> 124 cents -> 126 -> 1.26, and
// 1.237*40 = 49.48 -> 4948 cents -> 4950 -> 49.50.
func TestPricingRounding(t *testing.T) {
	items := []Item{{ProductID: 1}}
	rows := []source.PriceRow{{ProductID: 1, PriceUSD: 1.237}}

	ApplyPricing(items, rows, PriceParams{CurrencyRate: 40.0, NDS: true, UAH: true})

	if items[0].PriceUSD != 1.26 {
		t.Fatalf("priceUSD = %v, want 1.26", items[0].PriceUSD)
	}
	if items[0].PriceUAH != 49.50 {
		t.Fatalf("priceUAH = %v, want 49.50", items[0].PriceUAH)
	}
}

func TestDeliveryCostFormula(t *testing.T) {
	target := catalog.Target{PostageCompact: 2, PostageMiddle: 3, PostageBig: 4, PostageLarge: 5}
	p := catalog.Product{Weight: 100, Volume: 1, Overall: 2} // 250*1=250 > weight 100
	item := &Item{Overall: clampOverall(p.Overall)}
	applyDelivery(item, p, target)

	want := float32(250) * target.PostageBig
	if item.Delivery != want {
		t.Fatalf("delivery = %v, want %v", item.Delivery, want)
	}
}

func TestApplyPricingZeroesByCapability(t *testing.T) {
	items := []Item{{ProductID: 1}}
	rows := []source.PriceRow{{ProductID: 1, PriceUSD: 10, RetailPrice: 9, InternetPrice: 8}}

	ApplyPricing(items, rows, PriceParams{CurrencyRate: 1, Rozn: false, R3: false})
	if items[0].RetailPrice != 0 || items[0].InternetPrice != 0 {
		t.Fatalf("expected both zeroed without rozn/r3, got retail=%v internet=%v", items[0].RetailPrice, items[0].InternetPrice)
	}

	items = []Item{{ProductID: 1}}
	ApplyPricing(items, rows, PriceParams{CurrencyRate: 1, API: true})
	if items[0].RetailPrice != 9 || items[0].InternetPrice != 8 {
		t.Fatalf("API flag should force both prices on, got retail=%v internet=%v", items[0].RetailPrice, items[0].InternetPrice)
	}
}
