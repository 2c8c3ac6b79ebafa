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
package ast

import (
	"github.com/lancelotblanchard/WACC/utils"
)

// -----------------------------------------------------------------------------
// Sethi-Ullman Weights
//
// The weight of an expression is the minimum number of registers that
// suffice to evaluate it without touching the stack. The ARM backend
// uses it to pick evaluation order: the heavier child goes first while
// all registers are still free.
//
// For a binary node there are two plans. Evaluating the left child
// first costs max(w(l)+1, w(r)) because the left result occupies a
// register while the right child runs; the symmetric plan costs
// max(w(l), w(r)+1). The weight is the cheaper of the two.

// Weight of a leaf: one register holds the value.
func (e *IntExpr) Weight() int  { return 1 }
func (e *BoolExpr) Weight() int { return 1 }
func (e *CharExpr) Weight() int { return 1 }
func (e *StrExpr) Weight() int  { return 1 }
func (e *NullExpr) Weight() int { return 1 }
func (e *VarExpr) Weight() int  { return 1 }

// A unary operator reuses its operand register.
func (e *UnaryExpr) Weight() int {
	if e.weight == 0 {
		e.weight = e.Left.Weight()
	}
	return e.weight
}

func (e *BinaryExpr) Weight() int {
	if e.weight == 0 {
		wl := e.Left.Weight()
		wr := e.Right.Weight()
		e.weight = utils.Min(utils.Max(wl+1, wr), utils.Max(wl, wr+1))
	}
	return e.weight
}

// An array access holds the element pointer while each index runs;
// base and index registers are reused across dimensions, so two
// registers bound the access itself.
func (e *IndexExpr) Weight() int {
	if e.weight == 0 {
		w := 2
		for _, idx := range e.Indices {
			w = utils.Max(w, idx.Weight()+1)
		}
		e.weight = w
	}
	return e.weight
}
