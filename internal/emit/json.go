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

// jsonFlushThreshold sizes the write buffer. bufio.Writer flushes
// whenever a write would overflow its buffer, so sizing the buffer to
// the threshold flushes roughly every 9.9MB without any hand-rolled
// bookkeeping.
const jsonFlushThreshold = 9_900_000

// JSON writes the price list to w as a single object keyed by product
// id: { "<productId>": { "<col>": <v>, ... }, ... }. Money columns
// print with two decimals, Index columns print as bare integers,
// String columns are JSON-escaped for \ " / \t \n \r only, not the
// full JSON escape grammar.
func JSON(w io.Writer, items []pricing.Item, volume token.Volume, caps Capabilities) error {
	bw := bufio.NewWriterSize(w, jsonFlushThreshold)
	cols := VisibleColumns(volume, caps)

	if _, err := bw.WriteString("{"); err != nil {
		return err
	}
	for i, item := range items {
		if i > 0 {
			if _, err := bw.WriteString(","); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(bw, "\"%d\":{", item.ProductID); err != nil {
			return err
		}
		for j, col := range cols {
			if j > 0 {
				if _, err := bw.WriteString(","); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintf(bw, "\"%s\":", col.Key); err != nil {
				return err
			}
			if err := writeJSONCell(bw, col.Value(item)); err != nil {
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

func writeJSONCell(w io.Writer, cell Cell) error {
	switch cell.Kind {
	case KindMoney:
		_, err := fmt.Fprintf(w, "%.2f", cell.Num)
		return err
	case KindIndex:
		_, err := fmt.Fprintf(w, "%d", cell.Idx)
		return err
	default:
		_, err := fmt.Fprintf(w, "\"%s\"", escapeJSONString(cell.Str))
		return err
	}
}

// escapeJSONString escapes exactly \ " / \t \n \r.
func escapeJSONString(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			out = append(out, '\\', '\\')
		case '"':
			out = append(out, '\\', '"')
		case '/':
			out = append(out, '\\', '/')
		case '\t':
			out = append(out, '\\', 't')
		case '\n':
			out = append(out, '\\', 'n')
		case '\r':
			out = append(out, '\\', 'r')
		default:
			out = append(out, c)
		}
	}
	return string(out)
}
