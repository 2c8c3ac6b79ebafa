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
	"fmt"
	"strings"

	"github.com/lancelotblanchard/WACC/utils"
)

// -----------------------------------------------------------------------------
// Type System
//
// WACC types form a closed variant. AnyArray and AnyPair are the erased
// supertypes used for generic comparisons (len of any array, == on any
// pair); they never describe a concrete storage layout on their own.

type TypeKind int

const (
	TypeInt TypeKind = iota
	TypeBool
	TypeChar
	TypeString
	TypeArray
	TypeAnyArray
	TypePair
	TypeAnyPair
)

type Type struct {
	Kind  TypeKind
	Elem  *Type // array element type
	Depth int   // array nesting depth, >= 1
	Fst   *Type // pair component, nil for the null literal
	Snd   *Type
}

// Pre-defined basic types
var (
	TInt      = &Type{Kind: TypeInt}
	TBool     = &Type{Kind: TypeBool}
	TChar     = &Type{Kind: TypeChar}
	TString   = &Type{Kind: TypeString}
	TAnyArray = &Type{Kind: TypeAnyArray}
	TAnyPair  = &Type{Kind: TypeAnyPair}
)

// ArrayOf builds the type of a depth-nested array of elem.
func ArrayOf(elem *Type, depth int) *Type {
	utils.Assert(depth >= 1, "array depth must be at least 1, got %d", depth)
	return &Type{Kind: TypeArray, Elem: elem, Depth: depth}
}

// PairOf builds a concrete pair type. Nested pair components are erased
// to AnyPair, matching WACC semantics.
func PairOf(fst, snd *Type) *Type {
	return &Type{Kind: TypePair, Fst: erasePair(fst), Snd: erasePair(snd)}
}

func erasePair(t *Type) *Type {
	if t != nil && t.Kind == TypePair {
		return TAnyPair
	}
	return t
}

func (t *Type) IsInt() bool    { return t.Kind == TypeInt }
func (t *Type) IsBool() bool   { return t.Kind == TypeBool }
func (t *Type) IsChar() bool   { return t.Kind == TypeChar }
func (t *Type) IsString() bool { return t.Kind == TypeString }

// IsArray reports whether t is an array, concrete or erased.
func (t *Type) IsArray() bool {
	return t.Kind == TypeArray || t.Kind == TypeAnyArray
}

// IsPair reports whether t is a pair, concrete or erased.
func (t *Type) IsPair() bool {
	return t.Kind == TypePair || t.Kind == TypeAnyPair
}

// IsReference reports whether values of t live on the heap and are
// held by pointer.
func (t *Type) IsReference() bool {
	return t.IsArray() || t.IsPair() || t.IsString()
}

// ElemAt peels one array dimension off t.
func (t *Type) ElemAt() *Type {
	utils.Assert(t.Kind == TypeArray, "not a concrete array: %v", t)
	if t.Depth > 1 {
		return &Type{Kind: TypeArray, Elem: t.Elem, Depth: t.Depth - 1}
	}
	return t.Elem
}

// Size returns the storage size of a value of t in bytes on the ARM
// target. All locals occupy word slots for uniform indexing.
func (t *Type) Size() int {
	return 4
}

func (t *Type) String() string {
	switch t.Kind {
	case TypeInt:
		return "int"
	case TypeBool:
		return "bool"
	case TypeChar:
		return "char"
	case TypeString:
		return "string"
	case TypeArray:
		return fmt.Sprintf("%v%s", t.Elem, strings.Repeat("[]", t.Depth))
	case TypeAnyArray:
		return "any[]"
	case TypePair:
		return fmt.Sprintf("pair(%v,%v)", pairComp(t.Fst), pairComp(t.Snd))
	case TypeAnyPair:
		return "pair"
	default:
		utils.ShouldNotReachHere()
	}
	return ""
}

func pairComp(t *Type) string {
	if t == nil {
		return "null"
	}
	return t.String()
}

// SameType reports structural equality, with the erased supertypes
// matching any member of their family.
func SameType(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind == TypeAnyArray && b.IsArray() {
		return true
	}
	if b.Kind == TypeAnyArray && a.IsArray() {
		return true
	}
	if a.Kind == TypeAnyPair && b.IsPair() {
		return true
	}
	if b.Kind == TypeAnyPair && a.IsPair() {
		return true
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case TypeArray:
		return a.Depth == b.Depth && SameType(a.Elem, b.Elem)
	case TypePair:
		return SameType(a.Fst, b.Fst) && SameType(a.Snd, b.Snd)
	}
	return true
}
