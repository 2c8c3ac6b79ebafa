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
package test

import (
	"strings"
	"testing"

	"github.com/lancelotblanchard/WACC/ast"
	"github.com/lancelotblanchard/WACC/compile"
)

func jvmOf(p *ast.Program) compile.Result {
	return compile.CompileProgram(p)
}

func TestJvmArithmetic(t *testing.T) {
	x := ast.NewVariable("x", ast.TInt)
	res := jvmOf(&ast.Program{Body: ast.Seq(
		declInt(x, ast.NewBinaryExpr(
			ast.NewIntLit(1),
			ast.OpAdd,
			ast.NewBinaryExpr(ast.NewIntLit(2), ast.OpMul, ast.NewIntLit(3)))),
		&ast.ExitStmt{E: ast.NewVarExpr(x)},
	)})
	MustContain(t, res.Jvm,
		".class public WaccProgram",
		".method public static main([Ljava/lang/String;)V",
		"imul",
		"iadd",
		"istore 1",
		"iload 1",
		"invokestatic java/lang/System/exit(I)V",
	)
	// Post-order: both multiplicands precede the multiply.
	if strings.Index(res.Jvm, "ldc 3") > strings.Index(res.Jvm, "imul") {
		t.Fatalf("operands must be pushed before the operator:\n%s", res.Jvm)
	}
	if res.UsesPair {
		t.Fatalf("integer program must not drag in the pair class")
	}
}

func TestJvmPairBoxing(t *testing.T) {
	p := ast.NewVariable("p", ast.PairOf(ast.TInt, ast.TInt))
	y := ast.NewVariable("y", ast.TInt)
	res := jvmOf(&ast.Program{Body: ast.Seq(
		&ast.DeclStmt{Var: p, Init: &ast.NewPairRValue{Type: p.Type, Fst: ast.NewIntLit(1), Snd: ast.NewIntLit(2)}},
		&ast.DeclStmt{Var: y, Init: &ast.PairElemRValue{Side: ast.PairFst, Pair: ast.NewVarExpr(p), Type: ast.TInt}},
		&ast.ExitStmt{E: ast.NewVarExpr(y)},
	)})
	MustContain(t, res.Jvm,
		"new wacc/lang/Pair",
		"invokestatic java/lang/Integer/valueOf(I)Ljava/lang/Integer;",
		"invokespecial wacc/lang/Pair/<init>(Ljava/lang/Object;Ljava/lang/Object;)V",
		"getfield wacc/lang/Pair/fst Ljava/lang/Object;",
		"checkcast java/lang/Integer",
		"invokevirtual java/lang/Integer/intValue()I",
	)
	if !res.UsesPair {
		t.Fatalf("pair program must emit the support class")
	}
	MustContain(t, res.JvmPair,
		".class public wacc/lang/Pair",
		".field public fst Ljava/lang/Object;",
		".field public snd Ljava/lang/Object;",
	)
}

func TestJvmTypedArrays(t *testing.T) {
	a := ast.NewVariable("a", ast.ArrayOf(ast.TInt, 1))
	y := ast.NewVariable("y", ast.TInt)
	res := jvmOf(&ast.Program{Body: ast.Seq(
		&ast.DeclStmt{Var: a, Init: &ast.ArrayLitRValue{
			Type:  a.Type,
			Elems: []ast.AstExpr{ast.NewIntLit(1), ast.NewIntLit(2), ast.NewIntLit(3)},
		}},
		&ast.DeclStmt{Var: y, Init: &ast.ExprRValue{E: ast.NewIndexExpr(a, ast.NewIntLit(0))}},
		&ast.AssignStmt{
			Left:  ast.NewIndexExpr(a, ast.NewIntLit(1)),
			Right: &ast.ExprRValue{E: ast.NewIntLit(9)},
		},
		&ast.PrintStmt{E: ast.NewUnaryExpr(ast.OpLen, ast.NewVarExpr(a))},
		&ast.ExitStmt{E: ast.NewVarExpr(y)},
	)})
	MustContain(t, res.Jvm, "newarray int", "iastore", "iaload", "arraylength")
	if res.UsesPair {
		t.Fatalf("array program must not emit the pair class")
	}
}

func TestJvmShortCircuit(t *testing.T) {
	b := ast.NewVariable("b", ast.TBool)
	res := jvmOf(&ast.Program{Body: ast.Seq(
		&ast.DeclStmt{Var: b, Init: &ast.ExprRValue{E: ast.NewBinaryExpr(
			ast.NewBoolLit(false), ast.OpAnd, ast.NewBoolLit(true))}},
		&ast.PrintStmt{E: ast.NewVarExpr(b), Newline: true},
		&ast.ExitStmt{E: ast.NewIntLit(0)},
	)})
	MustContain(t, res.Jvm, "dup", "ifeq", "pop")
	if strings.Contains(res.Jvm, "iand") {
		t.Fatalf("&& lowered as a bitwise and:\n%s", res.Jvm)
	}
}

func TestJvmPrintDispatch(t *testing.T) {
	res := jvmOf(&ast.Program{Body: ast.Seq(
		&ast.PrintStmt{E: ast.NewIntLit(1), Newline: true},
		&ast.PrintStmt{E: ast.NewBoolLit(true)},
		&ast.PrintStmt{E: ast.NewCharLit('c')},
		&ast.PrintStmt{E: ast.NewStrLit("hi"), Newline: true},
		&ast.ExitStmt{E: ast.NewIntLit(0)},
	)})
	MustContain(t, res.Jvm,
		"invokevirtual java/io/PrintStream/println(I)V",
		"invokevirtual java/io/PrintStream/print(Z)V",
		"invokevirtual java/io/PrintStream/print(C)V",
		"invokevirtual java/io/PrintStream/println(Ljava/lang/String;)V",
		"ldc \"hi\"",
	)
}

func TestJvmFunctionCall(t *testing.T) {
	n := ast.NewParam("n", ast.TInt)
	inc := &ast.FuncDecl{
		Name:    "inc",
		RetType: ast.TInt,
		Params:  []*ast.Variable{n},
		Body: &ast.ReturnStmt{E: ast.NewBinaryExpr(
			ast.NewVarExpr(n), ast.OpAdd, ast.NewIntLit(1))},
	}
	x := ast.NewVariable("x", ast.TInt)
	res := jvmOf(&ast.Program{
		Funcs: []*ast.FuncDecl{inc},
		Body: ast.Seq(
			&ast.DeclStmt{Var: x, Init: &ast.CallRValue{
				Name: "inc",
				Args: []ast.AstExpr{ast.NewIntLit(41)},
				Type: ast.TInt,
			}},
			&ast.ExitStmt{E: ast.NewVarExpr(x)},
		),
	})
	MustContain(t, res.Jvm,
		".method public static f_inc(I)I",
		"invokestatic WaccProgram/f_inc(I)I",
		"ireturn",
		"iload 0",
	)
}

func TestJvmControlFlow(t *testing.T) {
	x := ast.NewVariable("x", ast.TInt)
	res := jvmOf(&ast.Program{Body: ast.Seq(
		declInt(x, ast.NewIntLit(3)),
		&ast.WhileStmt{
			Cond: ast.NewBinaryExpr(ast.NewVarExpr(x), ast.OpGt, ast.NewIntLit(0)),
			Body: &ast.AssignStmt{
				Left:  ast.NewVarExpr(x),
				Right: &ast.ExprRValue{E: ast.NewBinaryExpr(ast.NewVarExpr(x), ast.OpSub, ast.NewIntLit(1))},
			},
		},
		&ast.ExitStmt{E: ast.NewVarExpr(x)},
	)})
	MustContain(t, res.Jvm, "if_icmpgt", "ifeq", "goto")
	// Jasmin labels are method scoped, defined on their own line.
	if !strings.Contains(res.Jvm, "L0:") {
		t.Fatalf("missing method-scoped labels:\n%s", res.Jvm)
	}
}

func TestJvmReadScansStdin(t *testing.T) {
	x := ast.NewVariable("x", ast.TInt)
	res := jvmOf(&ast.Program{Body: ast.Seq(
		declInt(x, ast.NewIntLit(0)),
		&ast.ReadStmt{Left: ast.NewVarExpr(x)},
		&ast.ExitStmt{E: ast.NewVarExpr(x)},
	)})
	MustContain(t, res.Jvm,
		"new java/util/Scanner",
		"getstatic java/lang/System/in Ljava/io/InputStream;",
		"invokevirtual java/util/Scanner/nextInt()I",
	)
}

func TestJvmFreeIsANoop(t *testing.T) {
	p := ast.NewVariable("p", ast.PairOf(ast.TInt, ast.TInt))
	res := jvmOf(&ast.Program{Body: ast.Seq(
		&ast.DeclStmt{Var: p, Init: &ast.NewPairRValue{Type: p.Type, Fst: ast.NewIntLit(1), Snd: ast.NewIntLit(2)}},
		&ast.FreeStmt{E: ast.NewVarExpr(p)},
		&ast.ExitStmt{E: ast.NewIntLit(0)},
	)})
	if !strings.Contains(res.Jvm, "pop") {
		t.Fatalf("free must discard its operand:\n%s", res.Jvm)
	}
}
