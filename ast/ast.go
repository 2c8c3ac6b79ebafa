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

// The typed AST the code generators consume. The front-end delivers it
// fully resolved: every expression carries its type and every
// identifier refers to a Variable with defined storage. The
// constructors below are the input surface standing in for that
// front-end.

type AstNode interface {
	String() string
}

type AstExpr interface {
	AstNode
	GetType() *Type
	// Weight is the minimum number of registers needed to evaluate
	// the expression without spilling.
	Weight() int
}

type AstStmt interface {
	AstNode
	stmt()
}

// AstLValue is an assignable location: a stack slot, an array element
// or a pair field.
type AstLValue interface {
	AstNode
	GetType() *Type
}

// AstRValue is the right-hand side of a declaration or assignment.
type AstRValue interface {
	AstNode
	GetType() *Type
}

// -----------------------------------------------------------------------------
// Expressions

// Expr carries the attributes shared by all expression nodes.
type Expr struct {
	Type   *Type
	weight int // memoised, 0 means not yet computed
}

func (e *Expr) GetType() *Type {
	return e.Type
}

type IntExpr struct {
	Expr
	Value int32
}

type BoolExpr struct {
	Expr
	Value bool
}

type CharExpr struct {
	Expr
	Value uint8
}

type StrExpr struct {
	Expr
	Value string
}

type NullExpr struct {
	Expr
}

type VarExpr struct {
	Expr
	Var *Variable
}

type IndexExpr struct {
	Expr
	Var     *Variable
	Indices []AstExpr
}

type UnaryExpr struct {
	Expr
	Opt  UnaryOp
	Left AstExpr
}

type BinaryExpr struct {
	Expr
	Opt   BinaryOp
	Left  AstExpr
	Right AstExpr
}

func NewIntLit(v int32) *IntExpr {
	return &IntExpr{Expr: Expr{Type: TInt}, Value: v}
}

func NewBoolLit(v bool) *BoolExpr {
	return &BoolExpr{Expr: Expr{Type: TBool}, Value: v}
}

func NewCharLit(v uint8) *CharExpr {
	return &CharExpr{Expr: Expr{Type: TChar}, Value: v}
}

func NewStrLit(v string) *StrExpr {
	return &StrExpr{Expr: Expr{Type: TString}, Value: v}
}

func NewNullLit() *NullExpr {
	return &NullExpr{Expr: Expr{Type: TAnyPair}}
}

func NewVarExpr(v *Variable) *VarExpr {
	return &VarExpr{Expr: Expr{Type: v.Type}, Var: v}
}

// NewIndexExpr builds an array access v[i0][i1]... peeling one array
// dimension per index.
func NewIndexExpr(v *Variable, indices ...AstExpr) *IndexExpr {
	t := v.Type
	for range indices {
		t = t.ElemAt()
	}
	return &IndexExpr{Expr: Expr{Type: t}, Var: v, Indices: indices}
}

func NewUnaryExpr(opt UnaryOp, left AstExpr) *UnaryExpr {
	return &UnaryExpr{Expr: Expr{Type: opt.ResultType()}, Opt: opt, Left: left}
}

func NewBinaryExpr(left AstExpr, opt BinaryOp, right AstExpr) *BinaryExpr {
	return &BinaryExpr{Expr: Expr{Type: opt.ResultType()}, Opt: opt, Left: left, Right: right}
}

func (i *IntExpr) String() string {
	return fmt.Sprintf("%d", i.Value)
}

func (b *BoolExpr) String() string {
	return fmt.Sprintf("%v", b.Value)
}

func (c *CharExpr) String() string {
	return fmt.Sprintf("'%c'", c.Value)
}

func (s *StrExpr) String() string {
	return fmt.Sprintf("%q", s.Value)
}

func (n *NullExpr) String() string {
	return "null"
}

func (v *VarExpr) String() string {
	return v.Var.Name
}

func (i *IndexExpr) String() string {
	str := i.Var.Name
	for _, idx := range i.Indices {
		str += fmt.Sprintf("[%v]", idx)
	}
	return str
}

func (u *UnaryExpr) String() string {
	return fmt.Sprintf("%v%v", u.Opt, u.Left)
}

func (b *BinaryExpr) String() string {
	return fmt.Sprintf("(%v %v %v)", b.Left, b.Opt, b.Right)
}

// -----------------------------------------------------------------------------
// Assignment sides

// PairFst and PairSnd select a pair component.
type PairSide int

const (
	PairFst PairSide = iota
	PairSnd
)

func (s PairSide) String() string {
	if s == PairFst {
		return "fst"
	}
	return "snd"
}

// VarExpr and IndexExpr double as lvalues; a pair field needs its own
// node because the pair itself is an arbitrary expression.
type PairElemLValue struct {
	Side PairSide
	Pair AstExpr
	Type *Type
}

func (p *PairElemLValue) GetType() *Type {
	return p.Type
}

func (p *PairElemLValue) String() string {
	return fmt.Sprintf("%v %v", p.Side, p.Pair)
}

// ExprRValue wraps a plain expression on the right-hand side.
type ExprRValue struct {
	E AstExpr
}

type ArrayLitRValue struct {
	Type  *Type
	Elems []AstExpr
}

type NewPairRValue struct {
	Type *Type
	Fst  AstExpr
	Snd  AstExpr
}

type PairElemRValue struct {
	Side PairSide
	Pair AstExpr
	Type *Type
}

type CallRValue struct {
	Name string
	Args []AstExpr
	Type *Type
}

func (r *ExprRValue) GetType() *Type     { return r.E.GetType() }
func (r *ArrayLitRValue) GetType() *Type { return r.Type }
func (r *NewPairRValue) GetType() *Type  { return r.Type }
func (r *PairElemRValue) GetType() *Type { return r.Type }
func (r *CallRValue) GetType() *Type     { return r.Type }

func (r *ExprRValue) String() string {
	return r.E.String()
}

func (r *ArrayLitRValue) String() string {
	elems := make([]string, len(r.Elems))
	for i, e := range r.Elems {
		elems[i] = e.String()
	}
	return fmt.Sprintf("[%s]", strings.Join(elems, ", "))
}

func (r *NewPairRValue) String() string {
	return fmt.Sprintf("newpair(%v, %v)", r.Fst, r.Snd)
}

func (r *PairElemRValue) String() string {
	return fmt.Sprintf("%v %v", r.Side, r.Pair)
}

func (r *CallRValue) String() string {
	return fmt.Sprintf("call %s(%s)", r.Name, joinExprs(r.Args))
}

func joinExprs(exprs []AstExpr) string {
	strs := make([]string, len(exprs))
	for i, e := range exprs {
		strs[i] = e.String()
	}
	return strings.Join(strs, ", ")
}

// -----------------------------------------------------------------------------
// Statements

type SkipStmt struct{}

type DeclStmt struct {
	Var  *Variable
	Init AstRValue
}

type AssignStmt struct {
	Left  AstLValue
	Right AstRValue
}

type ReadStmt struct {
	Left AstLValue
}

type FreeStmt struct {
	E AstExpr
}

type ReturnStmt struct {
	E AstExpr
}

type ExitStmt struct {
	E AstExpr
}

type PrintStmt struct {
	E       AstExpr
	Newline bool
}

type IfStmt struct {
	Cond AstStmtCond
	Then AstStmt
	Else AstStmt
}

type WhileStmt struct {
	Cond AstStmtCond
	Body AstStmt
}

// AstStmtCond is the condition expression of a branch; an alias kept
// separate so the reader sees the bool requirement at the use site.
type AstStmtCond = AstExpr

// BlockStmt opens a fresh scope for its declarations.
type BlockStmt struct {
	Stmts []AstStmt
}

type SeqStmt struct {
	First  AstStmt
	Second AstStmt
}

type CallStmt struct {
	Name string
	Args []AstExpr
}

func (*SkipStmt) stmt()   {}
func (*DeclStmt) stmt()   {}
func (*AssignStmt) stmt() {}
func (*ReadStmt) stmt()   {}
func (*FreeStmt) stmt()   {}
func (*ReturnStmt) stmt() {}
func (*ExitStmt) stmt()   {}
func (*PrintStmt) stmt()  {}
func (*IfStmt) stmt()     {}
func (*WhileStmt) stmt()  {}
func (*BlockStmt) stmt()  {}
func (*SeqStmt) stmt()    {}
func (*CallStmt) stmt()   {}

func (s *SkipStmt) String() string {
	return "skip"
}

func (s *DeclStmt) String() string {
	return fmt.Sprintf("%v %s = %v", s.Var.Type, s.Var.Name, s.Init)
}

func (s *AssignStmt) String() string {
	return fmt.Sprintf("%v = %v", s.Left, s.Right)
}

func (s *ReadStmt) String() string {
	return fmt.Sprintf("read %v", s.Left)
}

func (s *FreeStmt) String() string {
	return fmt.Sprintf("free %v", s.E)
}

func (s *ReturnStmt) String() string {
	return fmt.Sprintf("return %v", s.E)
}

func (s *ExitStmt) String() string {
	return fmt.Sprintf("exit %v", s.E)
}

func (s *PrintStmt) String() string {
	if s.Newline {
		return fmt.Sprintf("println %v", s.E)
	}
	return fmt.Sprintf("print %v", s.E)
}

func (s *IfStmt) String() string {
	return fmt.Sprintf("if %v then %v else %v fi", s.Cond, s.Then, s.Else)
}

func (s *WhileStmt) String() string {
	return fmt.Sprintf("while %v do %v done", s.Cond, s.Body)
}

func (s *BlockStmt) String() string {
	strs := make([]string, len(s.Stmts))
	for i, st := range s.Stmts {
		strs[i] = st.String()
	}
	return fmt.Sprintf("begin %s end", strings.Join(strs, " ; "))
}

func (s *SeqStmt) String() string {
	return fmt.Sprintf("%v ; %v", s.First, s.Second)
}

func (s *CallStmt) String() string {
	return fmt.Sprintf("call %s(%s)", s.Name, joinExprs(s.Args))
}

// Seq folds a statement list into nested SeqStmt, empty lists to skip.
func Seq(stmts ...AstStmt) AstStmt {
	if len(stmts) == 0 {
		return &SkipStmt{}
	}
	res := stmts[len(stmts)-1]
	for i := len(stmts) - 2; i >= 0; i-- {
		res = &SeqStmt{First: stmts[i], Second: res}
	}
	return res
}

// -----------------------------------------------------------------------------
// Declarations

type FuncDecl struct {
	Name    string
	RetType *Type
	Params  []*Variable
	Body    AstStmt
}

type Program struct {
	Funcs []*FuncDecl
	Body  AstStmt
}

func (f *FuncDecl) String() string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = fmt.Sprintf("%v %s", p.Type, p.Name)
	}
	return fmt.Sprintf("%v %s(%s)", f.RetType, f.Name, strings.Join(params, ", "))
}

func (p *Program) String() string {
	return fmt.Sprintf("program with %d functions", len(p.Funcs))
}

// MangledName is the label a user function is emitted under. User
// functions are prefixed so they can never collide with runtime
// helpers or libc symbols.
func (f *FuncDecl) MangledName() string {
	return MangleFunc(f.Name)
}

func MangleFunc(name string) string {
	utils.Assert(name != "", "function name must not be empty")
	return "f_" + name
}
