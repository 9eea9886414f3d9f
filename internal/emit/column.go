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

// Package emit implements the four format emitters (XLSX, XML, JSON,
// PHP-serialized). All four traverse the same ordered column set
// with per-volume visibility flags and per-capability overrides; this
// file defines that shared model so the format-specific files only
// have to deal with their own wire syntax.
package emit

import (
	"pricefeed/internal/pricing"
	"pricefeed/internal/token"
)

// Kind is the wire type a Column's value is rendered as.
type Kind int

const (
	KindString Kind = iota
	KindMoney
	KindIndex
)

// Cell is one resolved column value for one item.
type Cell struct {
	Kind Kind
	Str  string
	Num  float32
	Idx  uint32
}

// Capabilities are the three per-user visibility overrides:
// rozn/r3/ean. A column whose capability flag is set is
// included whenever the matching capability is true, regardless of
// the requested volume.
type Capabilities struct {
	Rozn bool
	R3   bool
	EAN  bool
}

// Column is one entry of the fixed ~34-column set every emitter walks
// in the same order.
type Column struct {
	Key string

	// Per-volume visibility.
	Local, Full, Short, FullUAH bool

	// Per-capability visibility; a column is included if ANY matching
	// capability bit is on, independent of volume.
	Rozn, R3, EAN bool

	Kind  Kind
	Value func(pricing.Item) Cell
}

func strCol(key string, local, full, short, fullUAH bool, f func(pricing.Item) string) Column {
	return Column{Key: key, Local: local, Full: full, Short: short, FullUAH: fullUAH, Kind: KindString,
		Value: func(it pricing.Item) Cell { return Cell{Kind: KindString, Str: f(it)} }}
}

func moneyCol(key string, local, full, short, fullUAH bool, f func(pricing.Item) float32) Column {
	return Column{Key: key, Local: local, Full: full, Short: short, FullUAH: fullUAH, Kind: KindMoney,
		Value: func(it pricing.Item) Cell { return Cell{Kind: KindMoney, Num: f(it)} }}
}

func indexCol(key string, local, full, short, fullUAH bool, f func(pricing.Item) uint32) Column {
	return Column{Key: key, Local: local, Full: full, Short: short, FullUAH: fullUAH, Kind: KindIndex,
		Value: func(it pricing.Item) Cell { return Cell{Kind: KindIndex, Idx: f(it)} }}
}

func boolIndex(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// Columns is the fixed, ordered column set every emitter walks.
// Only id, code, name, vendor, url and stock are visible in every
// volume; every other column is gated by its per-volume flags, and
// seller_code, ean, retail_price and internet_price only by the
// rozn/r3/ean capability overrides.
var Columns = []Column{
	indexCol("id", true, true, true, true, func(it pricing.Item) uint32 { return it.ProductID }),
	strCol("code", true, true, true, true, func(it pricing.Item) string { return it.Code }),
	strCol("article", true, true, false, true, func(it pricing.Item) string { return it.Article }),
	strCol("name", true, true, true, true, func(it pricing.Item) string { return it.Name }),
	strCol("model", true, true, false, true, func(it pricing.Item) string { return it.Model }),
	strCol("vendor", true, true, true, true, func(it pricing.Item) string { return it.VendorName }),
	strCol("group", true, true, false, true, func(it pricing.Item) string { return it.Group }),
	strCol("class", false, true, false, true, func(it pricing.Item) string { return it.Class }),
	strCol("category", false, true, false, true, func(it pricing.Item) string { return it.Category }),
	strCol("description", false, true, false, false, func(it pricing.Item) string { return it.Desc }),
	strCol("url", true, true, true, true, func(it pricing.Item) string { return it.URL }),
	strCol("country", false, true, false, true, func(it pricing.Item) string { return it.Country }),
	strCol("uktved", false, true, false, false, func(it pricing.Item) string { return it.UKTVED }),
	{Key: "bg", Local: false, Full: true, Short: false, FullUAH: false, Kind: KindString,
		Value: func(it pricing.Item) Cell { return Cell{Kind: KindString, Str: it.BG} }},
	{Key: "seller_code", Rozn: true, Kind: KindString,
		Value: func(it pricing.Item) Cell { return Cell{Kind: KindString, Str: it.SellerCode} }},
	{Key: "ean", EAN: true, Kind: KindString,
		Value: func(it pricing.Item) Cell { return Cell{Kind: KindString, Str: it.EAN} }},

	indexCol("stock", true, true, true, true, func(it pricing.Item) uint32 { return uint32(it.Stock) }),
	indexCol("available", true, true, false, true, func(it pricing.Item) uint32 { return uint32(it.Available) }),
	indexCol("day", true, true, false, true, func(it pricing.Item) uint32 { return uint32(it.Day) }),
	indexCol("overall", false, true, false, false, func(it pricing.Item) uint32 { return uint32(it.Overall) }),
	indexCol("warranty", false, true, false, false, func(it pricing.Item) uint32 { return uint32(it.Warranty) }),
	indexCol("ddp", false, true, false, false, func(it pricing.Item) uint32 { return boolIndex(it.DDP) }),
	indexCol("exclusive", false, true, false, false, func(it pricing.Item) uint32 { return boolIndex(it.Exclusive) }),

	moneyCol("bonus", false, true, false, false, func(it pricing.Item) float32 { return it.Bonus }),
	moneyCol("delivery", false, true, false, true, func(it pricing.Item) float32 { return it.Delivery }),

	moneyCol("price_usd", true, true, true, false, func(it pricing.Item) float32 { return it.PriceUSD }),
	moneyCol("price_uah", false, false, false, true, func(it pricing.Item) float32 { return it.PriceUAH }),
	indexCol("price_ind", false, true, false, false, func(it pricing.Item) uint32 { return it.PriceInd }),
	moneyCol("recommended_price", false, true, false, false, func(it pricing.Item) float32 { return it.RecommendedPrice }),
	{Key: "retail_price", Rozn: true, Kind: KindMoney,
		Value: func(it pricing.Item) Cell { return Cell{Kind: KindMoney, Num: it.RetailPrice} }},
	{Key: "internet_price", R3: true, Kind: KindMoney,
		Value: func(it pricing.Item) Cell { return Cell{Kind: KindMoney, Num: it.InternetPrice} }},
}

// Visible reports whether col should be emitted for the given volume
// and capability set: included iff its volume flag is on or its
// capability flag matches one of the user's capabilities.
func Visible(col Column, volume token.Volume, caps Capabilities) bool {
	var volumeOn bool
	switch volume {
	case token.VolumeLocal:
		volumeOn = col.Local
	case token.VolumeFull:
		volumeOn = col.Full
	case token.VolumeShort:
		volumeOn = col.Short
	case token.VolumeFullUAH:
		volumeOn = col.FullUAH
	}
	capOn := (col.Rozn && caps.Rozn) || (col.R3 && caps.R3) || (col.EAN && caps.EAN)
	return volumeOn || capOn
}

// VisibleColumns returns the subset (and order) of Columns visible for
// one request, precomputed once per price-list build rather than
// re-checked per item.
func VisibleColumns(volume token.Volume, caps Capabilities) []Column {
	out := make([]Column, 0, len(Columns))
	for _, c := range Columns {
		if Visible(c, volume, caps) {
			out = append(out, c)
		}
	}
	return out
}
