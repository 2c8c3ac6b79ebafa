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
package jvm

import (
	"strings"

	"github.com/lancelotblanchard/WACC/ast"
	"github.com/lancelotblanchard/WACC/utils"
)

// -----------------------------------------------------------------------------
// JVM Type Model
//
// WACC types map to JVM descriptors; pairs erase to a support class
// with two Object fields, so values crossing a pair boundary go
// through boxing coercions.

const PairClass = "wacc/lang/Pair"

// Descriptor returns the JVM type descriptor for a WACC type.
func Descriptor(t *ast.Type) string {
	switch t.Kind {
	case ast.TypeInt:
		return "I"
	case ast.TypeBool:
		return "Z"
	case ast.TypeChar:
		return "C"
	case ast.TypeString:
		return "Ljava/lang/String;"
	case ast.TypeArray:
		return strings.Repeat("[", t.Depth) + Descriptor(t.Elem)
	case ast.TypeAnyArray:
		return "[Ljava/lang/Object;"
	case ast.TypePair, ast.TypeAnyPair:
		return "L" + PairClass + ";"
	default:
		utils.ShouldNotReachHere()
	}
	return ""
}

// IsJvmPrimitive reports whether t lives on the operand stack as a
// bare int-family value.
func IsJvmPrimitive(t *ast.Type) bool {
	return t.IsInt() || t.IsBool() || t.IsChar()
}

// ToBoxed returns the instructions converting a primitive on the
// stack into its wrapper object; reference types pass through.
func ToBoxed(t *ast.Type) []string {
	switch {
	case t.IsInt():
		return []string{"invokestatic java/lang/Integer/valueOf(I)Ljava/lang/Integer;"}
	case t.IsBool():
		return []string{"invokestatic java/lang/Boolean/valueOf(Z)Ljava/lang/Boolean;"}
	case t.IsChar():
		return []string{"invokestatic java/lang/Character/valueOf(C)Ljava/lang/Character;"}
	default:
		return nil
	}
}

// ToPrimitive returns the instructions converting an Object on the
// stack into the given static type: a checkcast, plus the unboxing
// call for primitives.
func ToPrimitive(t *ast.Type) []string {
	switch {
	case t.IsInt():
		return []string{
			"checkcast java/lang/Integer",
			"invokevirtual java/lang/Integer/intValue()I",
		}
	case t.IsBool():
		return []string{
			"checkcast java/lang/Boolean",
			"invokevirtual java/lang/Boolean/booleanValue()Z",
		}
	case t.IsChar():
		return []string{
			"checkcast java/lang/Character",
			"invokevirtual java/lang/Character/charValue()C",
		}
	default:
		return []string{"checkcast " + refClass(t)}
	}
}

// refClass names a reference type the way checkcast wants it: a plain
// class name, or a full descriptor for array classes.
func refClass(t *ast.Type) string {
	switch t.Kind {
	case ast.TypeString:
		return "java/lang/String"
	case ast.TypePair, ast.TypeAnyPair:
		return PairClass
	case ast.TypeArray, ast.TypeAnyArray:
		return Descriptor(t)
	default:
		utils.ShouldNotReachHere()
	}
	return ""
}
