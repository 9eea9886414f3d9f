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

import "pricefeed/internal/catalog"

// vendorVinga and vendorBrain are the two vendor names the irregular
// merchant rules below single out.
const (
	vendorVinga = "Vinga"
	vendorBrain = "BRAIN"
)

func isVingaOrBrain(vendorName string) bool {
	return vendorName == vendorVinga || vendorName == vendorBrain
}

// specialRule is one entry of the irregular merchant-rule table,
// kept data-driven so each rule can be reviewed and tested on its own.
// apply mutates item in place and reports whether the item must be
// dropped; rules run in the fixed order below, each seeing the
// mutations of the ones before it.
type specialRule struct {
	name  string
	apply func(item *Item, p catalog.Product, params Params) (drop bool)
}

var specialRules = []specialRule{
	{
		name: "companyId 13983 drops marketplace seller-of-record items",
		apply: func(item *Item, p catalog.Product, params Params) bool {
			return params.CompanyID == 13983 && item.FOP
		},
	},
	{
		name: "promo companies force Vinga/BRAIN category 1053 backorders in-stock",
		apply: func(item *Item, p catalog.Product, params Params) bool {
			eligible := params.CompanyID == 12377 || params.CompanyID == 16304 ||
				(params.CompanyID == 16813 && params.TargetID == 29)
			if eligible && p.CategoryID == 1053 && isVingaOrBrain(item.VendorName) &&
				item.Stock == 0 && item.Day != 0 {
				item.Stock, item.Available, item.Day = 1, 3, 0
			}
			return false
		},
	},
	{
		name: "pcVinga restricts the list to Vinga/BRAIN category 1053",
		apply: func(item *Item, p catalog.Product, params Params) bool {
			if !params.PCVinga {
				return false
			}
			if p.CategoryID != 1053 || !isVingaOrBrain(item.VendorName) {
				return true
			}
			item.Stock, item.Available, item.Day = 1, 3, 0
			return false
		},
	},
	{
		name: "companyId 16304 drops seller-of-record or out-of-stock items",
		apply: func(item *Item, p catalog.Product, params Params) bool {
			return params.CompanyID == 16304 && (item.FOP || item.Stock == 0)
		},
	},
}

// applySpecialRules runs every rule in specialRules in order,
// short-circuiting the remaining rules once one reports drop. The
// rules are sequential, interacting checks rather than independent
// predicates.
func applySpecialRules(item *Item, p catalog.Product, params Params) bool {
	for _, rule := range specialRules {
		if rule.apply(item, p, params) {
			return true
		}
	}
	return false
}
