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
package compile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lancelotblanchard/WACC/ast"
	"github.com/lancelotblanchard/WACC/compile/codegen"
	"github.com/lancelotblanchard/WACC/compile/jvm"
	"github.com/pkg/errors"
)

const DebugPrintArmAsm = false
const DebugPrintJvmAsm = false

// Result holds the rendered outputs of one compilation: ARM assembly
// and the Jasmin class, plus the pair support class when the program
// needs one.
type Result struct {
	Arm      string
	Jvm      string
	JvmPair  string
	UsesPair bool
}

// CompileProgram lowers a type-checked program on both backends. The
// backends share nothing but the immutable AST: each walks it with a
// fresh generator.
func CompileProgram(p *ast.Program) Result {
	armFrag := codegen.NewGenerator().Program(p)
	arm := codegen.Render(armFrag)
	if DebugPrintArmAsm {
		fmt.Printf("== ARM ==\n%s\n", arm)
	}

	jvmRes := jvm.NewGenerator().Program(p)
	if DebugPrintJvmAsm {
		fmt.Printf("== JVM ==\n%s\n", jvmRes.Class)
	}

	return Result{
		Arm:      arm,
		Jvm:      jvmRes.Class,
		JvmPair:  jvmRes.PairClass,
		UsesPair: jvmRes.UsesPair,
	}
}

// WriteFiles renders the compilation next to the given prefix:
// <prefix>.s for ARM, <classname>.j for the JVM, and the pair support
// class as a sibling when used. Nothing is written unless every
// render succeeded, so a failed compilation leaves no partial output;
// a failed write removes the files this call already wrote.
func WriteFiles(res Result, prefix string) (err error) {
	var written []string
	defer func() {
		if err != nil {
			for _, name := range written {
				os.Remove(name)
			}
		}
	}()
	armName := prefix + ".s"
	if err := os.WriteFile(armName, []byte(res.Arm), 0644); err != nil {
		return errors.Wrapf(err, "writing %s", armName)
	}
	written = append(written, armName)
	jvmName := filepath.Join(filepath.Dir(prefix), jvm.ClassName+".j")
	if err := os.WriteFile(jvmName, []byte(res.Jvm), 0644); err != nil {
		return errors.Wrapf(err, "writing %s", jvmName)
	}
	written = append(written, jvmName)
	if res.UsesPair {
		pairName := filepath.Join(filepath.Dir(prefix), "Pair.j")
		if err := os.WriteFile(pairName, []byte(res.JvmPair), 0644); err != nil {
			return errors.Wrapf(err, "writing %s", pairName)
		}
	}
	return nil
}

// Compile is the whole pipeline for a front-end-delivered program:
// lower on both backends and write the outputs.
func Compile(p *ast.Program, prefix string) error {
	res := CompileProgram(p)
	if err := WriteFiles(res, prefix); err != nil {
		return errors.Wrap(err, "emitting assembly")
	}
	fmt.Printf("Compiled %s.s and %s.j\n", prefix, jvm.ClassName)
	return nil
}
