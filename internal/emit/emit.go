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

package emit

import (
	"fmt"
	"io"
	"time"

	"pricefeed/internal/clienterr"
	"pricefeed/internal/pricing"
	"pricefeed/internal/token"
)

// Emit dispatches to the format-specific writer named by format,
// streaming directly to w. cats is only consumed by the XML writer;
// every other format ignores it. Errors are wrapped into the matching
// emitter client-error code so the caller can surface a 401 page.
func Emit(w io.Writer, format token.Format, items []pricing.Item, cats []Category, volume token.Volume, caps Capabilities, generatedAt time.Time) error {
	var err error
	switch format {
	case token.FormatJSON:
		if err = JSON(w, items, volume, caps); err != nil {
			return clienterrWrap(clienterr.JSONEmitFailed, err)
		}
	case token.FormatXML:
		if err = XML(w, items, cats, volume, caps); err != nil {
			return clienterrWrap(clienterr.XMLEmitFailed, err)
		}
	case token.FormatPHP:
		if err = PHP(w, items, volume, caps); err != nil {
			return clienterrWrap(clienterr.PHPEmitFailed, err)
		}
	case token.FormatXLSX:
		if err = XLSX(w, items, volume, caps, generatedAt); err != nil {
			return clienterrWrap(clienterr.XLSXEmitFailed, err)
		}
	default:
		return fmt.Errorf("emit: unrecognized format %q", format)
	}
	return nil
}

func clienterrWrap(code clienterr.Code, cause error) error {
	return fmt.Errorf("%w: %v", clienterr.New(code), cause)
}

// CapabilitiesFor derives emit.Capabilities from the decoded query
// parameters and the authenticated user's role bits. req.EAN gates the
// ean column; the user's Rozn/R3 bits gate the pricing columns, with
// the api flag forcing both on.
func CapabilitiesFor(req token.Request, rozn, r3 bool) Capabilities {
	return Capabilities{
		Rozn: rozn || req.API,
		R3:   r3 || req.API,
		EAN:  req.EAN,
	}
}
