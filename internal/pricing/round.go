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
	"math"

	"pricefeed/internal/pricing/source"
)

// PriceParams carries the flags and rate that determine how a priced
// row is merged onto an Item.
type PriceParams struct {
	CurrencyRate float32
	NDS          bool
	UAH          bool
	Rozn         bool
	R3           bool
	API          bool
}

// ApplyPricing merges priced rows onto items by product id, zeroing
// retailPrice/internetPrice per the user's capability bits (or forcing
// both on for API users), computing the UAH price, and applying the
// multiple-of-6-cents rounding rule when both nds and uah are set.
// Items with no matching row are left with zeroed pricing fields.
func ApplyPricing(items []Item, rows []source.PriceRow, params PriceParams) {
	byID := make(map[uint32]source.PriceRow, len(rows))
	for _, row := range rows {
		byID[row.ProductID] = row
	}

	rozn := params.Rozn || params.API
	r3 := params.R3 || params.API

	for i := range items {
		row, ok := byID[items[i].ProductID]
		if !ok {
			continue
		}
		items[i].PriceUSD = row.PriceUSD
		items[i].PriceInd = row.PriceInd
		items[i].RecommendedPrice = row.RecommendedPrice
		if rozn {
			items[i].RetailPrice = row.RetailPrice
		}
		if r3 {
			items[i].InternetPrice = row.InternetPrice
		}

		priceUSD := items[i].PriceUSD
		priceUAH := priceUSD * params.CurrencyRate

		if params.NDS && params.UAH {
			priceUSD = roundToSixCents(priceUSD)
			priceUAH = roundToSixCents(priceUAH)
		}
		items[i].PriceUSD = priceUSD
		items[i].PriceUAH = priceUAH
	}
}

// roundToSixCents rounds half-up to the nearest cent, then half-up
// again to the nearest multiple of 6 cents: floor(price*100 + 0.5),
// floor(cents/6 + 0.5) * 6, divide by 100.
func roundToSixCents(price float32) float32 {
	cents := math.Floor(float64(price)*100 + 0.5)
	cents = math.Floor(cents/6+0.5) * 6
	return float32(cents / 100)
}
