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
	"fmt"
	"strings"

	"github.com/lancelotblanchard/WACC/ast"
	"github.com/lancelotblanchard/WACC/utils"
)

// -----------------------------------------------------------------------------
// JVM Code Generation
//
// Expression lowering is a post-order walk of the tree: each operator
// pops its arity off the operand stack and pushes its result. Control
// flow is label/ifeq/goto chains; labels are local to a method. Local
// slots come from a simple counter, one slot per WACC value since
// every WACC type is category 1.

const ClassName = "WaccProgram"

type Generator struct {
	funcs map[string]*ast.FuncDecl
}

func NewGenerator() *Generator {
	return &Generator{funcs: make(map[string]*ast.FuncDecl)}
}

// Result is the Jasmin output: the program class and, when the
// program uses pairs, the support class as a second file.
type Result struct {
	Class     string
	PairClass string
	UsesPair  bool
}

func (g *Generator) Program(p *ast.Program) Result {
	for _, f := range p.Funcs {
		g.funcs[f.Name] = f
	}
	var sb strings.Builder
	sb.WriteString(".class public " + ClassName + "\n")
	sb.WriteString(".super java/lang/Object\n\n")

	sb.WriteString(g.method("main", "([Ljava/lang/String;)V", nil, p.Body, true))
	for _, f := range p.Funcs {
		desc := "("
		for _, param := range f.Params {
			desc += Descriptor(param.Type)
		}
		desc += ")" + Descriptor(f.RetType)
		sb.WriteString("\n")
		sb.WriteString(g.method(f.MangledName(), desc, f.Params, f.Body, false))
	}

	class := sb.String()
	res := Result{Class: class}
	if strings.Contains(class, PairClass) {
		res.UsesPair = true
		res.PairClass = PairClassSource
	}
	return res
}

func (g *Generator) method(name, desc string, params []*ast.Variable, body ast.AstStmt, isMain bool) string {
	mg := &methodGen{
		g:     g,
		slots: make(map[*ast.Variable]int),
	}
	if isMain {
		// Slot 0 holds the argument array.
		mg.nextSlot = 1
	}
	for _, p := range params {
		mg.slots[p] = mg.nextSlot
		mg.nextSlot++
	}
	mg.stmt(body)
	if isMain {
		mg.emit("return")
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(".method public static %s%s\n", name, desc))
	sb.WriteString("\t.limit stack 32\n")
	sb.WriteString(fmt.Sprintf("\t.limit locals %d\n", utils.Max(mg.nextSlot, 1)))
	for _, line := range mg.lines {
		sb.WriteString(line + "\n")
	}
	sb.WriteString(".end method\n")
	return sb.String()
}

type methodGen struct {
	g        *Generator
	lines    []string
	slots    map[*ast.Variable]int
	nextSlot int
	labels   int
}

func (mg *methodGen) emit(instrs ...string) {
	for _, i := range instrs {
		mg.lines = append(mg.lines, "\t"+i)
	}
}

func (mg *methodGen) label(name string) {
	mg.lines = append(mg.lines, name+":")
}

func (mg *methodGen) newLabel() string {
	label := fmt.Sprintf("L%d", mg.labels)
	mg.labels++
	return label
}

func (mg *methodGen) slot(v *ast.Variable) int {
	s, ok := mg.slots[v]
	utils.Assert(ok, "variable %s has no local slot", v.Name)
	return s
}

func (mg *methodGen) declare(v *ast.Variable) int {
	_, dup := mg.slots[v]
	utils.Assert(!dup, "variable %s declared twice", v.Name)
	mg.slots[v] = mg.nextSlot
	mg.nextSlot++
	return mg.slots[v]
}

func loadOp(t *ast.Type) string {
	if IsJvmPrimitive(t) {
		return "iload"
	}
	return "aload"
}

func storeOp(t *ast.Type) string {
	if IsJvmPrimitive(t) {
		return "istore"
	}
	return "astore"
}

// arrayLoadOp picks the typed array read for an element type.
func arrayLoadOp(t *ast.Type) string {
	switch {
	case t.IsInt():
		return "iaload"
	case t.IsBool():
		return "baload"
	case t.IsChar():
		return "caload"
	default:
		return "aaload"
	}
}

func arrayStoreOp(t *ast.Type) string {
	switch {
	case t.IsInt():
		return "iastore"
	case t.IsBool():
		return "bastore"
	case t.IsChar():
		return "castore"
	default:
		return "aastore"
	}
}

// -----------------------------------------------------------------------------
// Expressions

func (mg *methodGen) expr(e ast.AstExpr) {
	switch e := e.(type) {
	case *ast.IntExpr:
		mg.emit(fmt.Sprintf("ldc %d", e.Value))
	case *ast.BoolExpr:
		if e.Value {
			mg.emit("iconst_1")
		} else {
			mg.emit("iconst_0")
		}
	case *ast.CharExpr:
		mg.emit(fmt.Sprintf("ldc %d", e.Value))
	case *ast.StrExpr:
		mg.emit(fmt.Sprintf("ldc %q", e.Value))
	case *ast.NullExpr:
		mg.emit("aconst_null")
	case *ast.VarExpr:
		mg.emit(fmt.Sprintf("%s %d", loadOp(e.Var.Type), mg.slot(e.Var)))
	case *ast.IndexExpr:
		mg.indexExpr(e)
	case *ast.UnaryExpr:
		mg.unary(e)
	case *ast.BinaryExpr:
		mg.binary(e)
	default:
		utils.Unimplement()
	}
}

func (mg *methodGen) indexExpr(e *ast.IndexExpr) {
	mg.emit(fmt.Sprintf("aload %d", mg.slot(e.Var)))
	for i, idx := range e.Indices {
		mg.expr(idx)
		if i < len(e.Indices)-1 {
			mg.emit("aaload")
		} else {
			mg.emit(arrayLoadOp(e.GetType()))
		}
	}
}

func (mg *methodGen) unary(e *ast.UnaryExpr) {
	mg.expr(e.Left)
	switch e.Opt {
	case ast.OpNot:
		mg.emit("iconst_1", "ixor")
	case ast.OpNeg:
		mg.emit("ineg")
	case ast.OpLen:
		mg.emit("arraylength")
	case ast.OpOrd, ast.OpChr:
		// chars already sit on the stack as ints
	default:
		utils.ShouldNotReachHere()
	}
}

func (mg *methodGen) binary(e *ast.BinaryExpr) {
	if e.Opt.IsShortCircuitOp() {
		// The left result doubles as the answer when it decides the
		// operator, so it is duplicated for the test and only dropped
		// when the right operand must run.
		end := mg.newLabel()
		mg.expr(e.Left)
		mg.emit("dup")
		if e.Opt == ast.OpAnd {
			mg.emit("ifeq " + end)
		} else {
			mg.emit("ifne " + end)
		}
		mg.emit("pop")
		mg.expr(e.Right)
		mg.label(end)
		return
	}
	mg.expr(e.Left)
	mg.expr(e.Right)
	switch e.Opt {
	case ast.OpAdd:
		mg.emit("iadd")
	case ast.OpSub:
		mg.emit("isub")
	case ast.OpMul:
		mg.emit("imul")
	case ast.OpDiv:
		mg.emit("idiv")
	case ast.OpMod:
		mg.emit("irem")
	case ast.OpGt, ast.OpGte, ast.OpLt, ast.OpLte, ast.OpEq, ast.OpNeq:
		mg.compare(e)
	default:
		utils.ShouldNotReachHere()
	}
}

func (mg *methodGen) compare(e *ast.BinaryExpr) {
	jump := ""
	if e.Left.GetType().IsReference() {
		utils.Assert(e.Opt == ast.OpEq || e.Opt == ast.OpNeq,
			"ordered comparison on reference type %v", e.Left.GetType())
		if e.Opt == ast.OpEq {
			jump = "if_acmpeq"
		} else {
			jump = "if_acmpne"
		}
	} else {
		switch e.Opt {
		case ast.OpGt:
			jump = "if_icmpgt"
		case ast.OpGte:
			jump = "if_icmpge"
		case ast.OpLt:
			jump = "if_icmplt"
		case ast.OpLte:
			jump = "if_icmple"
		case ast.OpEq:
			jump = "if_icmpeq"
		case ast.OpNeq:
			jump = "if_icmpne"
		default:
			utils.ShouldNotReachHere()
		}
	}
	yes := mg.newLabel()
	end := mg.newLabel()
	mg.emit(
		jump+" "+yes,
		"iconst_0",
		"goto "+end,
	)
	mg.label(yes)
	mg.emit("iconst_1")
	mg.label(end)
}

// -----------------------------------------------------------------------------
// Statements

func (mg *methodGen) stmt(s ast.AstStmt) {
	switch s := s.(type) {
	case *ast.SkipStmt:
		// nothing
	case *ast.DeclStmt:
		slot := mg.declare(s.Var)
		mg.rvalue(s.Init)
		mg.emit(fmt.Sprintf("%s %d", storeOp(s.Var.Type), slot))
	case *ast.AssignStmt:
		mg.storePrep(s.Left)
		mg.rvalue(s.Right)
		mg.storeFinish(s.Left)
	case *ast.ReadStmt:
		mg.storePrep(s.Left)
		mg.readValue(s.Left.GetType())
		mg.storeFinish(s.Left)
	case *ast.FreeStmt:
		// The collector owns the heap; evaluate for effect only.
		mg.expr(s.E)
		mg.emit("pop")
	case *ast.ReturnStmt:
		mg.expr(s.E)
		if IsJvmPrimitive(s.E.GetType()) {
			mg.emit("ireturn")
		} else {
			mg.emit("areturn")
		}
	case *ast.ExitStmt:
		mg.expr(s.E)
		mg.emit("invokestatic java/lang/System/exit(I)V", "return")
	case *ast.PrintStmt:
		mg.print(s)
	case *ast.IfStmt:
		elseL := mg.newLabel()
		endL := mg.newLabel()
		mg.expr(s.Cond)
		mg.emit("ifeq " + elseL)
		mg.stmt(s.Then)
		mg.emit("goto " + endL)
		mg.label(elseL)
		mg.stmt(s.Else)
		mg.label(endL)
	case *ast.WhileStmt:
		if lit, ok := s.Cond.(*ast.BoolExpr); ok && lit.Value {
			top := mg.newLabel()
			mg.label(top)
			mg.stmt(s.Body)
			mg.emit("goto " + top)
			return
		}
		top := mg.newLabel()
		end := mg.newLabel()
		mg.label(top)
		mg.expr(s.Cond)
		mg.emit("ifeq " + end)
		mg.stmt(s.Body)
		mg.emit("goto " + top)
		mg.label(end)
	case *ast.BlockStmt:
		for _, st := range s.Stmts {
			mg.stmt(st)
		}
	case *ast.SeqStmt:
		mg.stmt(s.First)
		mg.stmt(s.Second)
	case *ast.CallStmt:
		mg.call(s.Name, s.Args, true)
	default:
		utils.Unimplement()
	}
}

func (mg *methodGen) rvalue(r ast.AstRValue) {
	switch r := r.(type) {
	case *ast.ExprRValue:
		mg.expr(r.E)
	case *ast.ArrayLitRValue:
		elem := r.Type.ElemAt()
		mg.emit(fmt.Sprintf("ldc %d", len(r.Elems)))
		mg.emit(newArrayOp(elem))
		for i, e := range r.Elems {
			mg.emit("dup", fmt.Sprintf("ldc %d", i))
			mg.expr(e)
			mg.emit(arrayStoreOp(elem))
		}
	case *ast.NewPairRValue:
		mg.emit("new "+PairClass, "dup")
		mg.expr(r.Fst)
		mg.emit(ToBoxed(r.Fst.GetType())...)
		mg.expr(r.Snd)
		mg.emit(ToBoxed(r.Snd.GetType())...)
		mg.emit("invokespecial " + PairClass + "/<init>(Ljava/lang/Object;Ljava/lang/Object;)V")
	case *ast.PairElemRValue:
		mg.expr(r.Pair)
		mg.emit("checkcast " + PairClass)
		mg.emit(fmt.Sprintf("getfield %s/%v Ljava/lang/Object;", PairClass, r.Side))
		mg.emit(ToPrimitive(r.Type)...)
	case *ast.CallRValue:
		mg.call(r.Name, r.Args, false)
	default:
		utils.Unimplement()
	}
}

// newArrayOp allocates a one-dimensional array of the element type on
// top of a length already on the stack.
func newArrayOp(elem *ast.Type) string {
	switch {
	case elem.IsInt():
		return "newarray int"
	case elem.IsBool():
		return "newarray boolean"
	case elem.IsChar():
		return "newarray char"
	default:
		return "anewarray " + refClass(elem)
	}
}

// storePrep pushes whatever the final store needs below the value:
// array reference and index, or the pair object.
func (mg *methodGen) storePrep(l ast.AstLValue) {
	switch l := l.(type) {
	case *ast.VarExpr:
		// plain slot store, nothing to set up
	case *ast.IndexExpr:
		mg.emit(fmt.Sprintf("aload %d", mg.slot(l.Var)))
		for i, idx := range l.Indices {
			mg.expr(idx)
			if i < len(l.Indices)-1 {
				mg.emit("aaload")
			}
		}
	case *ast.PairElemLValue:
		mg.expr(l.Pair)
		mg.emit("checkcast " + PairClass)
	default:
		utils.Unimplement()
	}
}

func (mg *methodGen) storeFinish(l ast.AstLValue) {
	switch l := l.(type) {
	case *ast.VarExpr:
		mg.emit(fmt.Sprintf("%s %d", storeOp(l.Var.Type), mg.slot(l.Var)))
	case *ast.IndexExpr:
		mg.emit(arrayStoreOp(l.GetType()))
	case *ast.PairElemLValue:
		mg.emit(ToBoxed(l.Type)...)
		mg.emit(fmt.Sprintf("putfield %s/%v Ljava/lang/Object;", PairClass, l.Side))
	default:
		utils.Unimplement()
	}
}

// readValue leaves a value scanned from stdin on the stack.
func (mg *methodGen) readValue(t *ast.Type) {
	mg.emit(
		"new java/util/Scanner",
		"dup",
		"getstatic java/lang/System/in Ljava/io/InputStream;",
		"invokespecial java/util/Scanner/<init>(Ljava/io/InputStream;)V",
	)
	switch {
	case t.IsInt():
		mg.emit("invokevirtual java/util/Scanner/nextInt()I")
	case t.IsChar():
		mg.emit(
			"invokevirtual java/util/Scanner/next()Ljava/lang/String;",
			"iconst_0",
			"invokevirtual java/lang/String/charAt(I)C",
		)
	default:
		utils.Unimplement()
	}
}

func (mg *methodGen) print(s *ast.PrintStmt) {
	mg.emit("getstatic java/lang/System/out Ljava/io/PrintStream;")
	mg.expr(s.E)
	t := s.E.GetType()
	desc := ""
	switch {
	case t.IsInt():
		desc = "(I)V"
	case t.IsBool():
		desc = "(Z)V"
	case t.IsChar():
		desc = "(C)V"
	case t.IsString():
		desc = "(Ljava/lang/String;)V"
	default:
		desc = "(Ljava/lang/Object;)V"
	}
	verb := "print"
	if s.Newline {
		verb = "println"
	}
	mg.emit(fmt.Sprintf("invokevirtual java/io/PrintStream/%s%s", verb, desc))
}

// call invokes a user function, building its descriptor from the
// declaration; in statement position the result is discarded.
func (mg *methodGen) call(name string, args []ast.AstExpr, discard bool) {
	f, ok := mg.g.funcs[name]
	utils.Assert(ok, "call to unknown function %s", name)
	for _, a := range args {
		mg.expr(a)
	}
	desc := "("
	for _, p := range f.Params {
		desc += Descriptor(p.Type)
	}
	desc += ")" + Descriptor(f.RetType)
	mg.emit(fmt.Sprintf("invokestatic %s/%s%s", ClassName, f.MangledName(), desc))
	if discard {
		mg.emit("pop")
	}
}
