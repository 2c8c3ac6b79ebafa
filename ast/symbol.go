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
// Symbol Environment
//
// Each scope owns a stack-frame region sized on entry from the sum of
// its declared variables. Offsets are assigned in declaration order
// from the top of the region: the first declaration sits just below
// the previous frame contents. Parameters live above the saved link
// register of the enclosing function.

// Variable is a resolved identifier with storage. Offset is relative
// to the base of its scope's region; Depth is the cumulative byte
// count the stack pointer sits below the function frame base once the
// region is allocated. A use site at current depth d loads from
// sp + (d - Depth) + Offset, which threads the enclosing-scope shifts
// through code emission.
type Variable struct {
	Name  string
	Type  *Type
	Param bool

	Offset  int
	Depth   int
	resolve bool // storage assigned
}

func NewVariable(name string, t *Type) *Variable {
	return &Variable{Name: name, Type: t}
}

func NewParam(name string, t *Type) *Variable {
	return &Variable{Name: name, Type: t, Param: true}
}

// SetStorage records the variable's slot. Laying out the same
// variable twice is a front-end bug.
func (v *Variable) SetStorage(off, depth int) {
	utils.Assert(!v.resolve, "variable %s laid out twice", v.Name)
	v.Offset = off
	v.Depth = depth
	v.resolve = true
}

// Resolved reports whether storage has been assigned.
func (v *Variable) Resolved() bool {
	return v.resolve
}

// Scope is one frame region. Size is the total byte size of the
// declarations directly inside the scope (excluding nested blocks,
// which open their own region). Depth is the stack-pointer depth once
// the region is live.
type Scope struct {
	Parent *Scope
	Vars   []*Variable
	Size   int
	Depth  int
}

// ScopeSize sums the slot sizes of the declarations appearing directly
// in the given statement, without descending into nested blocks.
func ScopeSize(body AstStmt) int {
	size := 0
	for _, s := range DirectStmts(body) {
		if decl, ok := s.(*DeclStmt); ok {
			size += decl.Var.Type.Size()
		}
	}
	return size
}

// NewScope lays out the declarations of body at the given
// stack-pointer depth (measured after the region's allocation): the
// first declared variable takes the highest offset of the fresh
// region.
func NewScope(parent *Scope, body AstStmt, depth int) *Scope {
	scope := &Scope{Parent: parent, Size: ScopeSize(body), Depth: depth}
	next := scope.Size
	for _, s := range DirectStmts(body) {
		if decl, ok := s.(*DeclStmt); ok {
			next -= decl.Var.Type.Size()
			decl.Var.SetStorage(next, depth)
			scope.Vars = append(scope.Vars, decl.Var)
		}
	}
	return scope
}

// eachDirectStmt visits the statements of a body in source order,
// flattening Seq chains but stopping at nested block and branch
// boundaries. A block given as the body itself is visited as one
// statement; DirectStmts unwraps it first.
func eachDirectStmt(body AstStmt, f func(AstStmt)) {
	switch s := body.(type) {
	case *SeqStmt:
		eachDirectStmt(s.First, f)
		eachDirectStmt(s.Second, f)
	default:
		f(body)
	}
}

// DirectStmts unwraps the statement list a scope owns: the contents of
// a block, or the flattened Seq chain otherwise.
func DirectStmts(body AstStmt) []AstStmt {
	var stmts []AstStmt
	if block, ok := body.(*BlockStmt); ok {
		for _, s := range block.Stmts {
			eachDirectStmt(s, func(st AstStmt) { stmts = append(stmts, st) })
		}
		return stmts
	}
	eachDirectStmt(body, func(st AstStmt) { stmts = append(stmts, st) })
	return stmts
}
