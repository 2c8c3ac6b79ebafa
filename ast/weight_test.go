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
	"testing"
)

func MustWeigh(t *testing.T, e AstExpr, want int) {
	t.Helper()
	if got := e.Weight(); got != want {
		t.Fatalf("weight of %v: expect %d, got %d", e, want, got)
	}
}

func TestLeafWeights(t *testing.T) {
	MustWeigh(t, NewIntLit(42), 1)
	MustWeigh(t, NewBoolLit(true), 1)
	MustWeigh(t, NewCharLit('a'), 1)
	MustWeigh(t, NewStrLit("hello"), 1)
	MustWeigh(t, NewNullLit(), 1)
	MustWeigh(t, NewVarExpr(NewVariable("x", TInt)), 1)
}

func TestUnaryReusesOperandRegister(t *testing.T) {
	MustWeigh(t, NewUnaryExpr(OpNeg, NewIntLit(1)), 1)
	MustWeigh(t, NewUnaryExpr(OpNot, NewBoolLit(false)), 1)

	sum := NewBinaryExpr(NewIntLit(1), OpAdd, NewIntLit(2))
	MustWeigh(t, NewUnaryExpr(OpNeg, sum), 2)
}

func TestBinaryWeights(t *testing.T) {
	// Two leaves tie, one of them must wait in a register.
	MustWeigh(t, NewBinaryExpr(NewIntLit(1), OpAdd, NewIntLit(2)), 2)

	// A chain leans on one side: the register count stays flat.
	chain := NewBinaryExpr(
		NewBinaryExpr(
			NewBinaryExpr(NewIntLit(1), OpAdd, NewIntLit(2)),
			OpAdd, NewIntLit(3)),
		OpAdd, NewIntLit(4))
	MustWeigh(t, chain, 2)

	// A balanced tree of ties grows by one per level.
	balanced := NewBinaryExpr(
		NewBinaryExpr(NewIntLit(1), OpAdd, NewIntLit(2)),
		OpMul,
		NewBinaryExpr(NewIntLit(3), OpAdd, NewIntLit(4)))
	MustWeigh(t, balanced, 3)

	// The cheaper evaluation order wins regardless of which side is
	// heavier.
	leftHeavy := NewBinaryExpr(balanced, OpAdd, NewIntLit(5))
	rightHeavy := NewBinaryExpr(NewIntLit(5), OpAdd, balanced)
	MustWeigh(t, leftHeavy, 3)
	MustWeigh(t, rightHeavy, 3)
}

func TestIndexWeights(t *testing.T) {
	arr := NewVariable("a", ArrayOf(TInt, 1))
	MustWeigh(t, NewIndexExpr(arr, NewIntLit(0)), 2)

	grid := NewVariable("g", ArrayOf(TInt, 2))
	MustWeigh(t, NewIndexExpr(grid, NewIntLit(0), NewIntLit(1)), 2)

	// An index holding its own subcomputation raises the bound: the
	// element pointer stays live while the index evaluates.
	balanced := NewBinaryExpr(
		NewBinaryExpr(NewIntLit(1), OpAdd, NewIntLit(2)),
		OpAdd,
		NewBinaryExpr(NewIntLit(3), OpAdd, NewIntLit(4)))
	MustWeigh(t, NewIndexExpr(arr, balanced), 4)
}

func TestEveryWeightIsPositive(t *testing.T) {
	exprs := []AstExpr{
		NewIntLit(0),
		NewUnaryExpr(OpChr, NewIntLit(65)),
		NewBinaryExpr(NewBoolLit(true), OpAnd, NewBoolLit(false)),
		NewIndexExpr(NewVariable("a", ArrayOf(TChar, 1)), NewIntLit(0)),
	}
	for _, e := range exprs {
		if e.Weight() < 1 {
			t.Fatalf("weight of %v is %d, expect >= 1", e, e.Weight())
		}
	}
}
