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

// Product is the union of three logically-separate upstream projections,
// each loaded by its own query and carrying its own version stamp. A
// product survives a sweep only when all three projections were touched
// by the same pass (see fresh below).
type Product struct {
	ProductID uint32

	// numericVersion/localizedVersion/identityVersion are the three
	// independent stamps; Stamped.version is unused on Product itself.
	numericVersion   uint64
	localizedVersion uint64
	identityVersion  uint64

	// Numeric/geometric projection.
	Bonus      float32
	VendorID   uint32
	GroupID    uint32
	ClassID    uint32
	Weight     float32
	Volume     float32
	Overall    int // clamped to [0,3] on read via clampOverall
	CategoryID uint32
	Warranty   int
	DDP        bool
	CountryID  uint32

	// Localized strings, UA/RU.
	GroupUA, GroupRU       string
	DescUA, DescRU         string
	CategoryUA, CategoryRU string
	URLSlugUA, URLSlugRU   string
	ClassUA, ClassRU       string

	// Identifying strings.
	Code       string
	BG         string
	EAN        string
	SellerCode string
	Article    string
	VendorName string
	Model      string
	NameUA     string
	NameRU     string
	UKTVED     string
	Exclusive  bool
}

// FOP reports the marketplace seller-of-record indicator, derived from
// a non-empty seller code.
func (p *Product) FOP() bool { return p.SellerCode != "" }

// fresh reports whether all three projections were touched at the
// current container version.
func (p *Product) fresh(containerVersion uint64) bool {
	return p.numericVersion == containerVersion &&
		p.localizedVersion == containerVersion &&
		p.identityVersion == containerVersion
}

// Products is the top-level container: products by id, plus a
// code->productId index rebuilt incrementally alongside the identity
// projection load.
type Products struct {
	mu      sync.RWMutex
	version VersionCounter
	byID    map[uint32]*Product
	byCode  map[string]uint32
}

// NewProducts returns an empty Products container.
func NewProducts() *Products {
	return &Products{byID: make(map[uint32]*Product), byCode: make(map[string]uint32)}
}

// BeginLoad bumps the version once per products sub-load pass. All three
// projection queries run under the same bumped version.
func (p *Products) BeginLoad() uint64 { return p.version.Bump() }

func (p *Products) get(productID uint32) *Product {
	row, ok := p.byID[productID]
	if !ok {
		row = &Product{ProductID: productID}
		p.byID[productID] = row
	}
	return row
}

// UpsertNumeric applies the numeric/geometric projection row.
func (p *Products) UpsertNumeric(productID uint32, bonus, weight, volume float32, vendorID, groupID, classID, categoryID, countryID uint32, overall, warranty int, ddp bool, version uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	row := p.get(productID)
	row.Bonus, row.Weight, row.Volume = bonus, weight, volume
	row.VendorID, row.GroupID, row.ClassID = vendorID, groupID, classID
	row.CategoryID, row.CountryID = categoryID, countryID
	row.Overall, row.Warranty, row.DDP = overall, warranty, ddp
	row.numericVersion = version
}

// UpsertLocalized applies the UA/RU localized-strings projection row.
func (p *Products) UpsertLocalized(productID uint32, groupUA, groupRU, descUA, descRU, categoryUA, categoryRU, urlUA, urlRU, classUA, classRU string, version uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	row := p.get(productID)
	row.GroupUA, row.GroupRU = groupUA, groupRU
	row.DescUA, row.DescRU = descUA, descRU
	row.CategoryUA, row.CategoryRU = categoryUA, categoryRU
	row.URLSlugUA, row.URLSlugRU = urlUA, urlRU
	row.ClassUA, row.ClassRU = classUA, classRU
	row.localizedVersion = version
}

// UpsertIdentity applies the identifying-strings projection row and
// maintains the code->productId index.
func (p *Products) UpsertIdentity(productID uint32, code, bg, ean, sellerCode, article, vendorName, model, nameUA, nameRU, uktved string, exclusive bool, version uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	row := p.get(productID)
	row.Code, row.BG, row.EAN = code, bg, ean
	row.SellerCode, row.Article = sellerCode, article
	row.VendorName, row.Model = vendorName, model
	row.NameUA, row.NameRU = nameUA, nameRU
	row.UKTVED, row.Exclusive = uktved, exclusive
	row.identityVersion = version
	if code != "" {
		p.byCode[code] = productID
	}
}

// Sweep removes every product that didn't get all three projections
// touched during this pass, and prunes the code index accordingly.
func (p *Products) Sweep(version uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, row := range p.byID {
		if !row.fresh(version) {
			delete(p.byID, id)
			if row.Code != "" && p.byCode[row.Code] == id {
				delete(p.byCode, row.Code)
			}
		}
	}
}

// Lookup returns a snapshot of the product by id.
func (p *Products) Lookup(productID uint32) (Product, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	row, ok := p.byID[productID]
	if !ok {
		return Product{}, false
	}
	return *row, true
}

// LookupByCode resolves a product code. The stock sub-load maps its
// product_code column through this index, which is why stock loads
// after products.
func (p *Products) LookupByCode(code string) (uint32, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	id, ok := p.byCode[code]
	return id, ok
}

// Snapshot returns a copy of every surviving product, for callers (the
// price builder) that need to iterate the whole catalog once per
// request without holding the container lock for the duration.
func (p *Products) Snapshot() []Product {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Product, 0, len(p.byID))
	for _, row := range p.byID {
		out = append(out, *row)
	}
	return out
}
