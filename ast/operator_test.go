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

func TestOperatorSymbols(t *testing.T) {
	symbols := map[string]string{
		OpMul.String(): "*",
		OpDiv.String(): "/",
		OpMod.String(): "%",
		OpAdd.String(): "+",
		OpSub.String(): "-",
		OpGt.String():  ">",
		OpGte.String(): ">=",
		OpLt.String():  "<",
		OpLte.String(): "<=",
		OpEq.String():  "==",
		OpNeq.String(): "!=",
		OpAnd.String(): "&&",
		OpOr.String():  "||",
	}
	for got, want := range symbols {
		if got != want {
			t.Fatalf("operator prints %q, expect %q", got, want)
		}
	}
}

// The logical operators take booleans and produce booleans.
func TestLogicalOperatorTyping(t *testing.T) {
	for _, op := range []BinaryOp{OpAnd, OpOr} {
		if op.ResultType() != TBool {
			t.Fatalf("%v result type is %v, expect bool", op, op.ResultType())
		}
		if op.OperandType() != TBool {
			t.Fatalf("%v operand type is %v, expect bool", op, op.OperandType())
		}
	}
}

func TestComparisonTyping(t *testing.T) {
	for _, op := range []BinaryOp{OpGt, OpGte, OpLt, OpLte, OpEq, OpNeq} {
		if !op.IsCmpOp() {
			t.Fatalf("%v is not classified as a comparison", op)
		}
		if op.ResultType() != TBool {
			t.Fatalf("%v result type is %v, expect bool", op, op.ResultType())
		}
	}
	for _, op := range []BinaryOp{OpAdd, OpSub, OpMul, OpDiv, OpMod} {
		if op.IsCmpOp() {
			t.Fatalf("%v misclassified as a comparison", op)
		}
		if op.ResultType() != TInt {
			t.Fatalf("%v result type is %v, expect int", op, op.ResultType())
		}
	}
}

func TestUnaryTyping(t *testing.T) {
	if OpNot.ResultType() != TBool {
		t.Fatalf("! must produce bool")
	}
	if OpOrd.ResultType() != TInt || OpLen.ResultType() != TInt {
		t.Fatalf("ord and len must produce int")
	}
	if OpChr.ResultType() != TChar {
		t.Fatalf("chr must produce char")
	}
}

func TestPairTypeErasure(t *testing.T) {
	inner := PairOf(TInt, TInt)
	outer := PairOf(inner, TChar)
	if outer.Fst != TAnyPair {
		t.Fatalf("nested pair component must erase to the any-pair type, got %v", outer.Fst)
	}
	if outer.Snd != TChar {
		t.Fatalf("non-pair component must stay concrete, got %v", outer.Snd)
	}
}

func TestGenericSupertypes(t *testing.T) {
	arr := ArrayOf(TInt, 2)
	if !SameType(arr, TAnyArray) || !SameType(TAnyArray, arr) {
		t.Fatalf("any-array must match every array")
	}
	if !SameType(PairOf(TInt, TBool), TAnyPair) {
		t.Fatalf("any-pair must match every pair")
	}
	if SameType(TAnyArray, TAnyPair) {
		t.Fatalf("any-array must not match any-pair")
	}
}
