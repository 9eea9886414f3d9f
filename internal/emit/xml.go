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

// Category is one row of the shop's category tree: the tree roots are
// the rows whose ParentID is 1, and every other row hangs under the
// row its ParentID names. Slice order (the upstream sort order) is
// preserved in the output.
type Category struct {
	ID       uint32
	Name     string
	ParentID uint32
}

// XML writes the price list as a top-level <price> document containing
// an optional <categories> tree (omitted for Short/FullUAH, which also
// never load cats) followed by <products>, one self-closing <product>
// element per item with its visible columns as attributes. The
// categories tree is assembled recursively: roots become <category>
// elements, deeper levels <subcategory>.
func XML(w io.Writer, items []pricing.Item, cats []Category, volume token.Volume, caps Capabilities) error {
	bw := bufio.NewWriter(w)
	cols := VisibleColumns(volume, caps)

	if _, err := bw.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<price>"); err != nil {
		return err
	}

	if volume != token.VolumeShort && volume != token.VolumeFullUAH {
		if err := writeCategories(bw, cats); err != nil {
			return err
		}
	}

	if _, err := bw.WriteString("<products>"); err != nil {
		return err
	}
	for _, item := range items {
		if _, err := bw.WriteString("<product"); err != nil {
			return err
		}
		for _, col := range cols {
			if _, err := fmt.Fprintf(bw, " %s=\"%s\"", col.Key, escapeXMLAttr(cellToString(col.Value(item)))); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString("/>"); err != nil {
			return err
		}
	}
	if _, err := bw.WriteString("</products>"); err != nil {
		return err
	}

	if _, err := bw.WriteString("</price>"); err != nil {
		return err
	}
	return bw.Flush()
}

func cellToString(cell Cell) string {
	switch cell.Kind {
	case KindMoney:
		return fmt.Sprintf("%.2f", cell.Num)
	case KindIndex:
		return fmt.Sprintf("%d", cell.Idx)
	default:
		return cell.Str
	}
}

// writeCategories assembles the <categories> tree. Rows whose parent
// is 1 are the roots; each root's descendants are emitted recursively
// as nested <subcategory> elements.
func writeCategories(w io.Writer, cats []Category) error {
	if _, err := io.WriteString(w, "<categories>"); err != nil {
		return err
	}
	for _, c := range cats {
		if c.ParentID != 1 {
			continue
		}
		subtree := buildCategoryTree(cats, c.ID)
		var err error
		if subtree == "" {
			_, err = fmt.Fprintf(w, "<category id=\"%d\" name=\"%s\"/>", c.ID, escapeXMLAttr(c.Name))
		} else {
			_, err = fmt.Fprintf(w, "<category id=\"%d\" name=\"%s\">%s</category>", c.ID, escapeXMLAttr(c.Name), subtree)
		}
		if err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</categories>")
	return err
}

// buildCategoryTree renders the <subcategory> elements hanging under
// parent id, depth-first.
func buildCategoryTree(cats []Category, id uint32) string {
	var out string
	for _, c := range cats {
		if c.ParentID != id {
			continue
		}
		subtree := buildCategoryTree(cats, c.ID)
		if subtree == "" {
			out += fmt.Sprintf("<subcategory id=\"%d\" name=\"%s\"/>", c.ID, escapeXMLAttr(c.Name))
		} else {
			out += fmt.Sprintf("<subcategory id=\"%d\" name=\"%s\">%s</subcategory>", c.ID, escapeXMLAttr(c.Name), subtree)
		}
	}
	return out
}

// escapeXMLAttr escapes exactly & " ' < > in attribute values.
func escapeXMLAttr(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '&':
			out = append(out, []byte("&amp;")...)
		case '"':
			out = append(out, []byte("&quot;")...)
		case '\'':
			out = append(out, []byte("&apos;")...)
		case '<':
			out = append(out, []byte("&lt;")...)
		case '>':
			out = append(out, []byte("&gt;")...)
		default:
			out = append(out, c)
		}
	}
	return string(out)
}
