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

// Package source issues the single applied-price query: one SQL
// statement, scoped to the kept product ids of one request, resolving
// each product's per-group profile price and per-group discount.
package source

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// PriceRow is one priced product as resolved by the applied-price
// query, before the request-scoped zeroing and rounding
// (internal/pricing.ApplyPricing) is applied.
type PriceRow struct {
	ProductID        uint32
	PriceUSD         float32
	PriceInd         uint32
	RecommendedPrice float32
	RetailPrice      float32
	InternetPrice    float32
}

// LoadPrices issues the applied-price query for companyID's active
// profile group against the given product ids, returning one PriceRow
// per product that resolved a price. Products with no matching price
// row are simply absent from the result; the caller's merge leaves
// their pricing fields zeroed.
//
// The profile-price subquery uses LIMIT 1 over a GROUP BY with no
// explicit ORDER BY, reproducing the upstream query verbatim — do not
// add a stabilizing ORDER BY without confirming which row the upstream
// intended to win.
func LoadPrices(ctx context.Context, db *sql.DB, companyID uint32, productIDs []uint32) ([]PriceRow, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(productIDs))
	for i := range productIDs {
		placeholders[i] = "?"
	}

	query := fmt.Sprintf(`
		SELECT
			p.product_id,
			p.price_usd,
			p.price_ind,
			p.recommended_price,
			COALESCE((
				SELECT pp.price
				FROM profiles_price pp
				WHERE pp.product_id = p.product_id AND pp.company_id = ?
				GROUP BY pp.product_id
				LIMIT 1
			), p.price_usd) AS retail_price,
			COALESCE((
				SELECT pp.price * (1 - dv.discount)
				FROM profiles_price pp
				JOIN discount_value dv ON dv.company_id = pp.company_id
				WHERE pp.product_id = p.product_id AND pp.company_id = ?
				GROUP BY pp.product_id
				LIMIT 1
			), p.price_usd) AS internet_price
		FROM products_price p
		WHERE p.product_id IN (%s)
	`, strings.Join(placeholders, ","))

	// The two profile/discount subqueries each filter on companyID, so
	// it's bound twice ahead of the IN-list parameters.
	args := make([]any, 0, 2+len(productIDs))
	args = append(args, companyID, companyID)
	for _, id := range productIDs {
		args = append(args, id)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query applied prices: %w", err)
	}
	defer rows.Close()

	var out []PriceRow
	for rows.Next() {
		var row PriceRow
		if err := rows.Scan(&row.ProductID, &row.PriceUSD, &row.PriceInd,
			&row.RecommendedPrice, &row.RetailPrice, &row.InternetPrice); err != nil {
			return nil, fmt.Errorf("scan applied price row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applied prices: %w", err)
	}
	return out, nil
}
