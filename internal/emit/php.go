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
	"bufio"
	"fmt"
	"io"

	"pricefeed/internal/pricing"
	"pricefeed/internal/token"
)

// PHP writes the price list to w in PHP's serialize() wire format:
// a:N:{i:<id>;a:M:{s:<k.len>:"<k>";<v-term>;...};...}. Money terms are
// `d:{:.2}`, Index terms are `i:{}`, and strings carry a byte-length
// prefix with no escaping — PHP's serialize format has none, unlike
// JSON.
func PHP(w io.Writer, items []pricing.Item, volume token.Volume, caps Capabilities) error {
	bw := bufio.NewWriter(w)
	cols := VisibleColumns(volume, caps)

	if _, err := fmt.Fprintf(bw, "a:%d:{", len(items)); err != nil {
		return err
	}
	for _, item := range items {
		if _, err := fmt.Fprintf(bw, "i:%d;a:%d:{", item.ProductID, len(cols)); err != nil {
			return err
		}
		for _, col := range cols {
			if err := writePHPString(bw, col.Key); err != nil {
				return err
			}
			if _, err := bw.WriteString(";"); err != nil {
				return err
			}
			if err := writePHPCell(bw, col.Value(item)); err != nil {
				return err
			}
			if _, err := bw.WriteString(";"); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString("}"); err != nil {
			return err
		}
	}
	if _, err := bw.WriteString("}"); err != nil {
		return err
	}
	return bw.Flush()
}

func writePHPString(w io.Writer, s string) error {
	_, err := fmt.Fprintf(w, "s:%d:\"%s\"", len(s), s)
	return err
}

func writePHPCell(w io.Writer, cell Cell) error {
	switch cell.Kind {
	case KindMoney:
		_, err := fmt.Fprintf(w, "d:%.2f", cell.Num)
		return err
	case KindIndex:
		_, err := fmt.Fprintf(w, "i:%d", cell.Idx)
		return err
	default:
		return writePHPString(w, cell.Str)
	}
}
