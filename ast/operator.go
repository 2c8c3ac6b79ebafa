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
// Operators

type UnaryOp int

const (
	OpNot UnaryOp = iota // !
	OpNeg                // unary -
	OpLen                // len
	OpOrd                // ord
	OpChr                // chr
)

type BinaryOp int

const (
	OpMul BinaryOp = iota
	OpDiv
	OpMod
	OpAdd
	OpSub
	OpGt
	OpGte
	OpLt
	OpLte
	OpEq
	OpNeq
	OpAnd
	OpOr
)

func (op UnaryOp) String() string {
	switch op {
	case OpNot:
		return "!"
	case OpNeg:
		return "-"
	case OpLen:
		return "len"
	case OpOrd:
		return "ord"
	case OpChr:
		return "chr"
	default:
		utils.ShouldNotReachHere()
	}
	return ""
}

func (op BinaryOp) String() string {
	switch op {
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpGt:
		return ">"
	case OpGte:
		return ">="
	case OpLt:
		return "<"
	case OpLte:
		return "<="
	case OpEq:
		return "=="
	case OpNeq:
		return "!="
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	default:
		utils.ShouldNotReachHere()
	}
	return ""
}

// IsCmpOp reports whether op is an ordered or equality comparison.
func (op BinaryOp) IsCmpOp() bool {
	return op >= OpGt && op <= OpNeq
}

// IsShortCircuitOp reports whether op must not evaluate its right
// operand when the left one decides the result.
func (op BinaryOp) IsShortCircuitOp() bool {
	return op == OpAnd || op == OpOr
}

// ResultType returns the type a binary operator produces. Comparisons
// and the logical operators produce bool; the arithmetic family
// produces int.
func (op BinaryOp) ResultType() *Type {
	if op.IsCmpOp() || op.IsShortCircuitOp() {
		return TBool
	}
	return TInt
}

// OperandType returns the type the logical operators require of both
// sides; other operators are constrained by the semantic analyzer
// upstream.
func (op BinaryOp) OperandType() *Type {
	if op.IsShortCircuitOp() {
		return TBool
	}
	return TInt
}

// ResultType returns the type a unary operator produces.
func (op UnaryOp) ResultType() *Type {
	switch op {
	case OpNot:
		return TBool
	case OpNeg, OpLen, OpOrd:
		return TInt
	case OpChr:
		return TChar
	default:
		utils.ShouldNotReachHere()
	}
	return nil
}
