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

// Package source issues the eight fixed-order sub-load queries against
// the two upstream MySQL databases (catalog, logistics) and feeds the
// resulting rows into the in-memory catalog containers. It is the only
// package that imports the MySQL driver.
package source

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"pricefeed/internal/catalog"
)

// DSN bundles the connection parameters for one upstream database, as
// read from the config's db_log_*/db_b2b_*/db_local_* triplets.
type DSN struct {
	Host string
	Port int
	User string
	Pwd  string
	Name string
}

func (d DSN) dataSourceName() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		d.User, d.Pwd, d.Host, d.Port, d.Name)
}

// Handles bundles the two upstream connections one refresh pass opens:
// the catalog DB (products, users, locks, bonus groups, currency) and
// the logistics DB (targets, stock, countries). The source repo keeps
// these as two separate handles rather than one cross-database join.
type Handles struct {
	Catalog   *sql.DB
	Logistics *sql.DB
}

// Open opens both upstream handles. Callers retry Open itself under
// the loader's one-second retry policy if it fails.
func Open(catalogDSN, logisticsDSN DSN) (*Handles, error) {
	cat, err := sql.Open("mysql", catalogDSN.dataSourceName())
	if err != nil {
		return nil, fmt.Errorf("open catalog db: %w", err)
	}
	log, err := sql.Open("mysql", logisticsDSN.dataSourceName())
	if err != nil {
		cat.Close()
		return nil, fmt.Errorf("open logistics db: %w", err)
	}
	return &Handles{Catalog: cat, Logistics: log}, nil
}

// Close releases both handles.
func (h *Handles) Close() {
	if h.Catalog != nil {
		h.Catalog.Close()
	}
	if h.Logistics != nil {
		h.Logistics.Close()
	}
}

// LoadAuth performs the auth sub-load: companies, users, and their
// capability bits.
func LoadAuth(ctx context.Context, db *sql.DB, auth *catalog.Auth) error {
	version := auth.BeginLoad()

	rows, err := db.QueryContext(ctx, `
		SELECT u.company_id, u.user_id, u.profiles_id,
		       u.corp, u.rozn, u.r3, u.api
		FROM users u
	`)
	if err != nil {
		return fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var companyID, userID, profilesID uint32
		var corp, rozn, r3, api bool
		if err := rows.Scan(&companyID, &userID, &profilesID, &corp, &rozn, &r3, &api); err != nil {
			return fmt.Errorf("scan user row: %w", err)
		}
		auth.UpsertUser(companyID, userID, profilesID, corp, rozn, r3, api, version)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate users: %w", err)
	}

	auth.Sweep(version)
	return nil
}

// LoadCurrency performs the currency sub-load: the single USD->UAH rate.
func LoadCurrency(ctx context.Context, db *sql.DB, rate *catalog.CurrencyRate) error {
	var v float32
	row := db.QueryRowContext(ctx, `SELECT usd_uah_rate FROM currency_rate LIMIT 1`)
	if err := row.Scan(&v); err != nil {
		return fmt.Errorf("scan currency rate: %w", err)
	}
	rate.Set(v)
	return nil
}

// LoadCountries performs the countries sub-load against the logistics DB.
func LoadCountries(ctx context.Context, db *sql.DB, world *catalog.World) error {
	version := world.BeginLoad()

	rows, err := db.QueryContext(ctx, `SELECT country_id, name_ua, name_ru FROM countries`)
	if err != nil {
		return fmt.Errorf("query countries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uint32
		var nameUA, nameRU string
		if err := rows.Scan(&id, &nameUA, &nameRU); err != nil {
			return fmt.Errorf("scan country row: %w", err)
		}
		world.Upsert(id, nameUA, nameRU, version)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate countries: %w", err)
	}

	world.Sweep(version)
	return nil
}

// LoadTargets performs the targets sub-load against the logistics DB.
func LoadTargets(ctx context.Context, db *sql.DB, targets *catalog.Targets) error {
	version := targets.BeginLoad()

	rows, err := db.QueryContext(ctx, `
		SELECT target_id, region_stock, stock_id,
		       postage_compact, postage_middle, postage_big, postage_large
		FROM delivery_targets
	`)
	if err != nil {
		return fmt.Errorf("query targets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t catalog.Target
		if err := rows.Scan(&t.TargetID, &t.RegionStock, &t.StockID,
			&t.PostageCompact, &t.PostageMiddle, &t.PostageBig, &t.PostageLarge); err != nil {
			return fmt.Errorf("scan target row: %w", err)
		}
		targets.Upsert(t, version)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate targets: %w", err)
	}

	targets.Sweep(version)
	return nil
}

// LoadLocks performs the per-company product-lock sub-load.
func LoadLocks(ctx context.Context, db *sql.DB, locks *catalog.Locks) error {
	version := locks.BeginLoad()

	rows, err := db.QueryContext(ctx, `
		SELECT company_id, vendor_id, group_id, class_id, product_id
		FROM company_product_locks
	`)
	if err != nil {
		return fmt.Errorf("query locks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var companyID uint32
		var key catalog.LockKey
		if err := rows.Scan(&companyID, &key.VendorID, &key.GroupID, &key.ClassID, &key.ProductID); err != nil {
			return fmt.Errorf("scan lock row: %w", err)
		}
		locks.Upsert(companyID, key, version)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate locks: %w", err)
	}

	locks.Sweep(version)
	return nil
}

// LoadProducts performs all three product projections under one bumped
// version; a product survives the sweep only when every projection was
// re-delivered this pass.
func LoadProducts(ctx context.Context, db *sql.DB, products *catalog.Products) error {
	version := products.BeginLoad()

	if err := loadNumericProjection(ctx, db, products, version); err != nil {
		return err
	}
	if err := loadLocalizedProjection(ctx, db, products, version); err != nil {
		return err
	}
	if err := loadIdentityProjection(ctx, db, products, version); err != nil {
		return err
	}

	products.Sweep(version)
	return nil
}

func loadNumericProjection(ctx context.Context, db *sql.DB, products *catalog.Products, version uint64) error {
	rows, err := db.QueryContext(ctx, `
		SELECT product_id, bonus, vendor_id, group_id, class_id, weight, volume,
		       overall, category_id, warranty, ddp, country_id
		FROM products_numeric
	`)
	if err != nil {
		return fmt.Errorf("query products_numeric: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, vendorID, groupID, classID, categoryID, countryID uint32
		var bonus, weight, volume float32
		var overall, warranty int
		var ddp bool
		if err := rows.Scan(&id, &bonus, &vendorID, &groupID, &classID, &weight, &volume,
			&overall, &categoryID, &warranty, &ddp, &countryID); err != nil {
			return fmt.Errorf("scan products_numeric row: %w", err)
		}
		products.UpsertNumeric(id, bonus, weight, volume, vendorID, groupID, classID, categoryID, countryID, overall, warranty, ddp, version)
	}
	return rows.Err()
}

func loadLocalizedProjection(ctx context.Context, db *sql.DB, products *catalog.Products, version uint64) error {
	rows, err := db.QueryContext(ctx, `
		SELECT product_id, group_ua, group_ru, desc_ua, desc_ru,
		       category_ua, category_ru, url_ua, url_ru, class_ua, class_ru
		FROM products_localized
	`)
	if err != nil {
		return fmt.Errorf("query products_localized: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uint32
		var groupUA, groupRU, descUA, descRU, catUA, catRU, urlUA, urlRU, classUA, classRU string
		if err := rows.Scan(&id, &groupUA, &groupRU, &descUA, &descRU,
			&catUA, &catRU, &urlUA, &urlRU, &classUA, &classRU); err != nil {
			return fmt.Errorf("scan products_localized row: %w", err)
		}
		products.UpsertLocalized(id, groupUA, groupRU, descUA, descRU, catUA, catRU, urlUA, urlRU, classUA, classRU, version)
	}
	return rows.Err()
}

func loadIdentityProjection(ctx context.Context, db *sql.DB, products *catalog.Products, version uint64) error {
	rows, err := db.QueryContext(ctx, `
		SELECT product_id, code, bg, ean, seller_code, article,
		       vendor_name, model, name_ua, name_ru, uktved, exclusive
		FROM products_identity
	`)
	if err != nil {
		return fmt.Errorf("query products_identity: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uint32
		var code, bg, ean, sellerCode, article, vendorName, model, nameUA, nameRU, uktved string
		var exclusive bool
		if err := rows.Scan(&id, &code, &bg, &ean, &sellerCode, &article,
			&vendorName, &model, &nameUA, &nameRU, &uktved, &exclusive); err != nil {
			return fmt.Errorf("scan products_identity row: %w", err)
		}
		products.UpsertIdentity(id, code, bg, ean, sellerCode, article, vendorName, model, nameUA, nameRU, uktved, exclusive, version)
	}
	return rows.Err()
}

// LoadStock performs the stock sub-load against the logistics DB. Rows
// arrive keyed by product code and are translated to productId via the
// product index, which is why this sub-load must run after
// LoadProducts.
func LoadStock(ctx context.Context, db *sql.DB, products *catalog.Products, store *catalog.Store) error {
	version := store.BeginLoad()

	rows, err := db.QueryContext(ctx, `
		SELECT stock_id, product_code, available, day
		FROM stock
	`)
	if err != nil {
		return fmt.Errorf("query stock: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var stockID uint32
		var code string
		var available, day int
		if err := rows.Scan(&stockID, &code, &available, &day); err != nil {
			return fmt.Errorf("scan stock row: %w", err)
		}
		productID, ok := products.LookupByCode(code)
		if !ok {
			continue
		}
		store.Upsert(stockID, productID, available, day, version)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate stock: %w", err)
	}

	store.Sweep(version)
	return nil
}

// Category is one row of the shop's category tree, fetched at
// price-list generation time rather than cached: the XML emitter is
// the only consumer and it wants the tree ordered by sort_order.
type Category struct {
	ID       uint32
	Name     string
	ParentID uint32
}

// LoadCategories fetches the enabled category rows in sort order, with
// the name column picked by lang ("ru" selects the Russian names,
// anything else the Ukrainian ones).
func LoadCategories(ctx context.Context, db *sql.DB, lang string) ([]Category, error) {
	nameCol := "name_ua"
	if lang == "ru" {
		nameCol = "name_ru"
	}
	query := fmt.Sprintf(
		`SELECT categoryid, %s, parent FROM SC_categories WHERE disabled=0 ORDER BY sort_order`, nameCol)

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.ParentID); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return out, nil
}

// LoadBonusGroups performs the per-company bonus-group sub-load.
func LoadBonusGroups(ctx context.Context, db *sql.DB, bg *catalog.Bg) error {
	version := bg.BeginLoad()

	rows, err := db.QueryContext(ctx, `SELECT company_id, bg_code FROM company_bonus_groups`)
	if err != nil {
		return fmt.Errorf("query bonus groups: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var companyID uint32
		var code string
		if err := rows.Scan(&companyID, &code); err != nil {
			return fmt.Errorf("scan bonus group row: %w", err)
		}
		bg.Upsert(companyID, code, version)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate bonus groups: %w", err)
	}

	bg.Sweep(version)
	return nil
}
