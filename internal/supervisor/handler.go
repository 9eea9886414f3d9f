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

package supervisor

import (
	"bytes"
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"strconv"
	"time"

	"pricefeed/internal/artifact"
	"pricefeed/internal/catalog"
	"pricefeed/internal/catalog/source"
	"pricefeed/internal/clienterr"
	"pricefeed/internal/emit"
	"pricefeed/internal/fcgi"
	"pricefeed/internal/pricing"
	psource "pricefeed/internal/pricing/source"
	"pricefeed/internal/telemetry"
	"pricefeed/internal/token"
)

// contentType maps a requested format to the Content-Type header of
// the success response.
var contentType = map[token.Format]string{
	token.FormatJSON: "application/json",
	token.FormatXML:  "application/xml",
	token.FormatPHP:  "application/vnd.php.serialized",
	token.FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// handle is the dispatch.Handler bound to every executor: it reads one
// FastCGI request off conn, runs the full price-list pipeline, and
// writes either a 200 artifact response or a 401 clienterr page before
// closing the connection. AbortRequest and illegal-transition cases
// terminate the connection without a response body.
func (s *Supervisor) handle(conn net.Conn) {
	defer conn.Close()

	req, err := fcgi.ReadRequest(conn)
	if err != nil {
		if errors.Is(err, fcgi.ErrAborted) && req != nil {
			fcgi.WriteAbortResponse(conn, req.ID)
		}
		return
	}

	body, status, err := s.build(req.Params["QUERY_STRING"])
	if err != nil {
		var ce *clienterr.Error
		if !errors.As(err, &ce) {
			ce = clienterr.New(clienterr.NoItemsAfterFilter)
		}
		telemetry.ClientErrors.WithLabelValues(strconv.Itoa(int(ce.Code))).Inc()

		var buf bytes.Buffer
		clienterr.WriteHTTP(&buf, ce)
		fcgi.WriteResponse(conn, req.ID, buf.Bytes(), 0, fcgi.StatusRequestComplete)
		return
	}

	fcgi.WriteResponse(conn, req.ID, body, 0, status)
}

// build runs the price-list pipeline for one decoded query string and
// returns the full HTTP response bytes (status line, headers, body)
// ready to hand to fcgi.WriteResponse as the Stdout payload.
func (s *Supervisor) build(rawQuery string) ([]byte, uint8, error) {
	req, err := token.Parse(rawQuery)
	if err != nil {
		return nil, 0, err
	}
	if !token.Verify(req, s.cfg.Salt) {
		return nil, 0, clienterr.New(clienterr.TokenMismatch)
	}

	user, ok := s.cache.Auth.Lookup(req.CompanyID, req.UserID)
	if !ok {
		if !s.cache.Auth.CompanyExists(req.CompanyID) {
			return nil, 0, clienterr.New(clienterr.UnknownCompany)
		}
		return nil, 0, clienterr.New(clienterr.UnknownUser)
	}
	if !user.Authorized() {
		return nil, 0, clienterr.New(clienterr.UserUnauthorized)
	}

	target, ok := s.cache.Targets.Lookup(req.TargetID)
	if !ok {
		return nil, 0, clienterr.New(clienterr.UnknownTarget)
	}

	now := time.Now()
	key := artifact.Key{
		CompanyID: req.CompanyID,
		UserID:    req.UserID,
		TargetID:  req.TargetID,
		Lang:      string(req.Lang),
		Volume:    int(req.Volume),
		PCVinga:   req.PCVinga,
		Format:    string(req.Format),
	}
	path, hit, err := s.artifacts.Resolve(key, now)
	if err != nil {
		return nil, 0, clienterr.New(clienterr.ArtifactReadFailed)
	}

	var body []byte
	if hit {
		telemetry.ArtifactHits.Inc()
		body, err = s.artifacts.Read(path)
		if err != nil {
			return nil, 0, clienterr.New(clienterr.ArtifactReadFailed)
		}
	} else {
		telemetry.ArtifactMisses.Inc()
		body, err = s.generate(req, user, target)
		if err != nil {
			return nil, 0, err
		}
		if err := s.artifacts.Write(path, body); err != nil {
			return nil, 0, clienterr.New(clienterr.ArtifactWriteFailed)
		}
	}

	telemetry.EmitBytes.WithLabelValues(string(req.Format)).Add(float64(len(body)))

	header := fmt.Sprintf(
		"HTTP/1.1 200 OK\r\nContent-Type: %s\r\nContent-Disposition: attachment; filename=\"%s\"\r\nContent-Length: %d\r\n\r\n",
		contentType[req.Format], filepath.Base(path), len(body))
	return append([]byte(header), body...), fcgi.StatusRequestComplete, nil
}

// generate builds a price list for a cache miss: snapshot the
// containers this request touches, derive items, merge applied
// pricing, and emit the chosen format into an in-memory buffer (the
// artifact cache then owns writing it to disk atomically).
func (s *Supervisor) generate(req token.Request, user catalog.User, target catalog.Target) ([]byte, error) {
	locks := s.cache.Locks.ListFor(req.CompanyID)
	bg := s.cache.Bg.For(req.CompanyID)
	products := s.cache.Products.Snapshot()

	items := pricing.BuildItems(products, locks, target, s.cache.Store, bg, s.cache.World, pricing.Params{
		CompanyID: req.CompanyID,
		TargetID:  req.TargetID,
		Volume:    req.Volume,
		Lang:      req.Lang,
		PCVinga:   req.PCVinga,
		Corp:      user.Corp,
	})
	if len(items) == 0 {
		return nil, clienterr.New(clienterr.NoItemsAfterFilter)
	}

	ids := make([]uint32, len(items))
	for i, it := range items {
		ids[i] = it.ProductID
	}
	rows, err := psource.LoadPrices(s.ctx, s.handles.Catalog, req.CompanyID, ids)
	if err != nil {
		return nil, clienterr.New(clienterr.PricingQueryFailed)
	}
	pricing.ApplyPricing(items, rows, pricing.PriceParams{
		CurrencyRate: s.cache.Currency.Get(),
		NDS:          req.NDS,
		UAH:          req.UAH,
		Rozn:         user.Rozn,
		R3:           user.R3,
		API:          user.API || req.API,
	})

	caps := emit.CapabilitiesFor(req, user.Rozn || user.API, user.R3 || user.API)

	cats, err := s.loadCategories(req)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := emit.Emit(&buf, req.Format, items, cats, req.Volume, caps, time.Now()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// loadCategories fetches the category tree for an XML price list.
// Only the Local and Full volumes carry a <categories> section, so
// every other format/volume combination skips the query entirely.
func (s *Supervisor) loadCategories(req token.Request) ([]emit.Category, error) {
	if req.Format != token.FormatXML ||
		(req.Volume != token.VolumeLocal && req.Volume != token.VolumeFull) {
		return nil, nil
	}
	rows, err := source.LoadCategories(s.ctx, s.handles.Catalog, string(req.Lang))
	if err != nil {
		return nil, clienterr.New(clienterr.XMLEmitFailed)
	}
	cats := make([]emit.Category, len(rows))
	for i, r := range rows {
		cats[i] = emit.Category{ID: r.ID, Name: r.Name, ParentID: r.ParentID}
	}
	return cats, nil
}
