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

package token

import (
	"errors"
	"testing"

	"pricefeed/internal/clienterr"
)

func TestParseValidQuery(t *testing.T) {
	req, err := Parse("format=json&full=0&companyID=1&targetID=1&userID=1&time=1&lang=ua&token=deadbeef")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if req.Format != FormatJSON || req.Volume != VolumeLocal || req.CompanyID != 1 ||
		req.TargetID != 1 || req.UserID != 1 || req.Time != 1 || req.Lang != LangUA {
		t.Fatalf("decoded request unexpected: %+v", req)
	}
}

func TestParseErrorCodes(t *testing.T) {
	base := "format=json&full=0&companyID=1&targetID=1&userID=1&time=1&lang=ua&token=x"
	cases := []struct {
		name  string
		query string
		want  clienterr.Code
	}{
		{"unrecognized format", "format=pdf&full=0&companyID=1&targetID=1&userID=1&time=1&lang=ua&token=x", clienterr.InvalidFormat},
		{"missing format", "full=0&companyID=1&targetID=1&userID=1&time=1&lang=ua&token=x", clienterr.MissingFormat},
		{"volume out of range", "format=json&full=7&companyID=1&targetID=1&userID=1&time=1&lang=ua&token=x", clienterr.InvalidVolume},
		{"missing companyID", "format=json&full=0&targetID=1&userID=1&time=1&lang=ua&token=x", clienterr.MissingCompanyID},
		{"non-numeric userID", "format=json&full=0&companyID=1&targetID=1&userID=abc&time=1&lang=ua&token=x", clienterr.InvalidUserID},
		{"unknown lang", "format=json&full=0&companyID=1&targetID=1&userID=1&time=1&lang=en&token=x", clienterr.InvalidLang},
		{"missing token", "format=json&full=0&companyID=1&targetID=1&userID=1&time=1&lang=ua", clienterr.MissingToken},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.query)
			var ce *clienterr.Error
			if !errors.As(err, &ce) {
				t.Fatalf("Parse(%q) err = %v, want clienterr", tc.query, err)
			}
			if ce.Code != tc.want {
				t.Fatalf("Parse(%q) code = %d, want %d", tc.query, ce.Code, tc.want)
			}
		})
	}
	if _, err := Parse(base); err != nil {
		t.Fatalf("base query should parse: %v", err)
	}
}

func TestVerifyRoundTrip(t *testing.T) {
	req := Request{
		Format:    FormatJSON,
		CompanyID: 42,
		TargetID:  7,
		Time:      1700000000,
		Lang:      LangUA,
	}
	salt := "process-secret"
	req.Token = Expected(req, salt)

	if !Verify(req, salt) {
		t.Fatalf("Verify should accept the expected token")
	}
	req.Token = "deadbeef"
	if Verify(req, salt) {
		t.Fatalf("Verify should reject a mismatched token")
	}
}

func TestExpectedIsLowercaseHex(t *testing.T) {
	got := Expected(Request{Format: FormatXML, CompanyID: 1, TargetID: 1, Time: 1, Lang: LangRU}, "s")
	if len(got) != 128 {
		t.Fatalf("sha512 hex digest should be 128 chars, got %d", len(got))
	}
	for _, r := range got {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			t.Fatalf("digest contains non-lowercase-hex rune %q", r)
		}
	}
}
