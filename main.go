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
package main

import (
	"fmt"
	"os"

	"github.com/lancelotblanchard/WACC/ast"
	"github.com/lancelotblanchard/WACC/compile"
)

// The code-generation core is driven by the front-end, which delivers
// a type-checked AST. Standalone, the binary compiles a small built-in
// program so the full pipeline can be exercised without the front-end
// attached.
func main() {
	if len(os.Args) != 2 {
		fmt.Println("Usage: WACC <output-prefix>")
		os.Exit(1)
	}
	if err := compile.Compile(sampleProgram(), os.Args[1]); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// sampleProgram is:
//
//	begin
//	  int x = 1 + 2 * 3 ;
//	  println x ;
//	  exit 0
//	end
func sampleProgram() *ast.Program {
	x := ast.NewVariable("x", ast.TInt)
	return &ast.Program{
		Body: ast.Seq(
			&ast.DeclStmt{
				Var: x,
				Init: &ast.ExprRValue{E: ast.NewBinaryExpr(
					ast.NewIntLit(1),
					ast.OpAdd,
					ast.NewBinaryExpr(ast.NewIntLit(2), ast.OpMul, ast.NewIntLit(3)),
				)},
			},
			&ast.PrintStmt{E: ast.NewVarExpr(x), Newline: true},
			&ast.ExitStmt{E: ast.NewIntLit(0)},
		),
	}
}
