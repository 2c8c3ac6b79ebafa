// Copyright (c) 2024 The WACC Contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.
package codegen

import (
	"fmt"

	"github.com/lancelotblanchard/WACC/utils"
)

// -----------------------------------------------------------------------------
// Assembly Fragments
//
// A fragment is a data section plus a code section. Concatenation is
// associative with the empty fragment as unit. Data entries are keyed
// by label: concatenating two fragments that define the same label is
// only legal when the bodies are identical, anything else is a bug in
// the compiler and aborts.

// DataEntry is one labelled record in the .data section: for a string
// constant, a .word length line followed by an .ascii line.
type DataEntry struct {
	Label string
	Body  []string
}

func (d DataEntry) sameBody(other DataEntry) bool {
	if len(d.Body) != len(other.Body) {
		return false
	}
	for i := range d.Body {
		if d.Body[i] != other.Body[i] {
			return false
		}
	}
	return true
}

type Fragment struct {
	Data []DataEntry
	Code []Instr
}

func EmptyFragment() Fragment {
	return Fragment{}
}

// Concat merges two fragments: data entries are unioned by label in
// first-appearance order, code is appended sequentially.
func (f Fragment) Concat(g Fragment) Fragment {
	res := Fragment{
		Code: make([]Instr, 0, len(f.Code)+len(g.Code)),
	}
	seen := make(map[string]DataEntry, len(f.Data)+len(g.Data))
	for _, d := range append(append([]DataEntry{}, f.Data...), g.Data...) {
		utils.Assert(d.Label != "", "data entry without a label")
		if prev, dup := seen[d.Label]; dup {
			utils.Assert(prev.sameBody(d), "conflicting data under label %s", d.Label)
			continue
		}
		seen[d.Label] = d
		res.Data = append(res.Data, d)
	}
	res.Code = append(res.Code, f.Code...)
	res.Code = append(res.Code, g.Code...)
	return res
}

// StringEntry builds the data record for a string constant: its
// length in characters and its bytes.
func StringEntry(label, content string) DataEntry {
	return DataEntry{
		Label: label,
		Body: []string{
			fmt.Sprintf(".word %d", len(content)),
			fmt.Sprintf(".ascii\t\"%s\"", escapeAscii(content)),
		},
	}
}

func escapeAscii(s string) string {
	out := ""
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case 0:
			out += `\0`
		case '\n':
			out += `\n`
		case '\t':
			out += `\t`
		case '"':
			out += `\"`
		case '\\':
			out += `\\`
		default:
			out += string(c)
		}
	}
	return out
}
