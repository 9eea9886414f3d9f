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

// Package token parses the FastCGI QUERY_STRING parameter into a
// Request and validates its SHA-512 token against the process salt.
package token

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"

	"pricefeed/internal/clienterr"
)

// Format is the requested output format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatXML  Format = "xml"
	FormatJSON Format = "json"
	FormatPHP  Format = "php"
)

// Volume is the price-list scope requested via the `full` parameter.
type Volume int

const (
	VolumeLocal Volume = iota
	VolumeFull
	VolumeShort
	VolumeFullUAH
)

// Lang is the localization branch requested via `lang`.
type Lang string

const (
	LangUA Lang = "ua"
	LangRU Lang = "ru"
)

// Request is the decoded, not-yet-authorized set of query parameters.
type Request struct {
	Format    Format
	Volume    Volume
	CompanyID uint32
	TargetID  uint32
	UserID    uint32
	Time      uint32
	Lang      Lang
	Token     string

	UAH     bool
	NDS     bool
	EAN     bool
	PCVinga bool
	API     bool
}

// Parse decodes a raw QUERY_STRING into a Request. Every failure maps
// to a code in the 1-16 catalog range so the caller can render the
// error page directly. It does not validate the token; call Verify
// separately once the salt is known.
func Parse(rawQuery string) (Request, error) {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return Request{}, clienterr.New(clienterr.InvalidFormat)
	}

	var req Request
	if !values.Has("format") {
		return Request{}, clienterr.New(clienterr.MissingFormat)
	}
	req.Format = Format(values.Get("format"))
	switch req.Format {
	case FormatXLSX, FormatXML, FormatJSON, FormatPHP:
	default:
		return Request{}, clienterr.New(clienterr.InvalidFormat)
	}

	if !values.Has("full") {
		return Request{}, clienterr.New(clienterr.MissingVolume)
	}
	full, err := strconv.Atoi(values.Get("full"))
	if err != nil || full < 0 || full > 3 {
		return Request{}, clienterr.New(clienterr.InvalidVolume)
	}
	req.Volume = Volume(full)

	if req.CompanyID, err = parseU32(values, "companyID", clienterr.MissingCompanyID, clienterr.InvalidCompanyID); err != nil {
		return Request{}, err
	}
	if req.TargetID, err = parseU32(values, "targetID", clienterr.MissingTargetID, clienterr.InvalidTargetID); err != nil {
		return Request{}, err
	}
	if req.UserID, err = parseU32(values, "userID", clienterr.MissingUserID, clienterr.InvalidUserID); err != nil {
		return Request{}, err
	}
	if req.Time, err = parseU32(values, "time", clienterr.MissingTime, clienterr.InvalidTime); err != nil {
		return Request{}, err
	}

	if !values.Has("lang") {
		return Request{}, clienterr.New(clienterr.MissingLang)
	}
	req.Lang = Lang(values.Get("lang"))
	if req.Lang != LangUA && req.Lang != LangRU {
		return Request{}, clienterr.New(clienterr.InvalidLang)
	}

	if !values.Has("token") {
		return Request{}, clienterr.New(clienterr.MissingToken)
	}
	req.Token = values.Get("token")

	req.UAH = values.Get("cur") == "uah"
	req.NDS = values.Get("nds") == "1"
	req.EAN = values.Get("ean") == "1"
	req.PCVinga = values.Get("pcvinga") == "1"
	req.API = values.Has("api")

	return req, nil
}

func parseU32(values url.Values, key string, missing, invalid clienterr.Code) (uint32, error) {
	if !values.Has(key) {
		return 0, clienterr.New(missing)
	}
	v, err := strconv.ParseUint(values.Get(key), 10, 32)
	if err != nil {
		return 0, clienterr.New(invalid)
	}
	return uint32(v), nil
}

// Expected computes sha512_hex over the concatenation of companyID,
// targetID, format, lang, time, and the process salt, in that order.
func Expected(req Request, salt string) string {
	payload := fmt.Sprintf("%d%d%s%s%d%s", req.CompanyID, req.TargetID, req.Format, req.Lang, req.Time, salt)
	sum := sha512.Sum512([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// Verify reports whether req.Token matches the salted SHA-512 digest.
// Comparison is constant-time since the token behaves as a shared-secret
// MAC over the request parameters.
func Verify(req Request, salt string) bool {
	want := Expected(req, salt)
	return subtle.ConstantTimeCompare([]byte(want), []byte(req.Token)) == 1
}
