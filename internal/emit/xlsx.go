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

	"github.com/xuri/excelize/v2"

	"pricefeed/internal/pricing"
	"pricefeed/internal/token"
)

// maxColumns is the column-letter ceiling: two-letter A..ZZ encoding
// tops out at 702 columns.
const maxColumns = 702

const sheetName = "price"

// XLSX writes the price list as a valid OOXML workbook: one sheet, a
// header row of visible column keys, then one row per item. Money
// cells use a fixed two-decimal number format, Index cells a plain
// integer format; shared strings, [Content_Types].xml and the rest of
// the package plumbing are produced by excelize.
func XLSX(w io.Writer, items []pricing.Item, volume token.Volume, caps Capabilities, generatedAt time.Time) error {
	cols := VisibleColumns(volume, caps)
	if len(cols) > maxColumns {
		return fmt.Errorf("emit: xlsx: %d columns exceeds the %d-column limit", len(cols), maxColumns)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("emit: xlsx: naming sheet: %w", err)
	}

	if err := f.SetDocProps(&excelize.DocProperties{
		Created:  generatedAt.UTC().Format(time.RFC3339),
		Modified: generatedAt.UTC().Format(time.RFC3339),
	}); err != nil {
		return fmt.Errorf("emit: xlsx: setting doc props: %w", err)
	}

	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2}) // "0.00"
	if err != nil {
		return fmt.Errorf("emit: xlsx: creating money style: %w", err)
	}
	indexStyle, err := f.NewStyle(&excelize.Style{NumFmt: 1}) // "0"
	if err != nil {
		return fmt.Errorf("emit: xlsx: creating index style: %w", err)
	}

	for c, col := range cols {
		cellRef, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return fmt.Errorf("emit: xlsx: header cell ref: %w", err)
		}
		if err := f.SetCellValue(sheetName, cellRef, col.Key); err != nil {
			return fmt.Errorf("emit: xlsx: writing header: %w", err)
		}
	}

	for r, item := range items {
		row := r + 2 // header occupies row 1
		for c, col := range cols {
			cellRef, err := excelize.CoordinatesToCellName(c+1, row)
			if err != nil {
				return fmt.Errorf("emit: xlsx: cell ref: %w", err)
			}
			cell := col.Value(item)
			switch cell.Kind {
			case KindMoney:
				if err := f.SetCellValue(sheetName, cellRef, cell.Num); err != nil {
					return fmt.Errorf("emit: xlsx: writing money cell: %w", err)
				}
				if err := f.SetCellStyle(sheetName, cellRef, cellRef, moneyStyle); err != nil {
					return fmt.Errorf("emit: xlsx: styling money cell: %w", err)
				}
			case KindIndex:
				if err := f.SetCellValue(sheetName, cellRef, cell.Idx); err != nil {
					return fmt.Errorf("emit: xlsx: writing index cell: %w", err)
				}
				if err := f.SetCellStyle(sheetName, cellRef, cellRef, indexStyle); err != nil {
					return fmt.Errorf("emit: xlsx: styling index cell: %w", err)
				}
			default:
				if err := f.SetCellValue(sheetName, cellRef, cell.Str); err != nil {
					return fmt.Errorf("emit: xlsx: writing string cell: %w", err)
				}
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("emit: xlsx: writing workbook: %w", err)
	}
	return nil
}
