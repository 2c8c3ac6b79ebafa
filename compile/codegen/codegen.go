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
package codegen

import (
	"fmt"
	"strings"

	"github.com/lancelotblanchard/WACC/ast"
	"github.com/lancelotblanchard/WACC/utils"
)

// -----------------------------------------------------------------------------
// Generator
//
// The only mutable state of a compilation: the monotonic label
// counter, the interned string pool and the registered helper set.
// Everything else flows through lowering as arguments and results.

type Generator struct {
	labelCount  int
	stringLabel map[string]string // content -> label
	stringOrder []string          // contents, first-appearance order
	helpers     *utils.Set[string]
	helperMsgs  map[string][]string // helper -> its message labels
}

func NewGenerator() *Generator {
	return &Generator{
		stringLabel: make(map[string]string),
		helpers:     utils.NewSet[string](),
		helperMsgs:  make(map[string][]string),
	}
}

// NewLabel mints the next branch target, L0, L1, ...
func (g *Generator) NewLabel() string {
	label := fmt.Sprintf("L%d", g.labelCount)
	g.labelCount++
	return label
}

// InternString returns the data label for the given contents,
// allocating one on first sight. The same contents always share one
// label.
func (g *Generator) InternString(content string) string {
	if label, ok := g.stringLabel[content]; ok {
		return label
	}
	label := fmt.Sprintf("msg_%d", len(g.stringOrder))
	g.stringLabel[content] = label
	g.stringOrder = append(g.stringOrder, content)
	return label
}

// UseHelper registers a runtime routine and, transitively, everything
// it calls. Message labels are interned at registration so label
// numbering follows first use.
func (g *Generator) UseHelper(name string) {
	def, ok := helperDefs[name]
	utils.Assert(ok, "unknown runtime helper %s", name)
	if !g.helpers.Add(name) {
		return
	}
	labels := make([]string, len(def.msgs))
	for i, m := range def.msgs {
		labels[i] = g.InternString(m)
	}
	g.helperMsgs[name] = labels
	for _, dep := range def.deps {
		g.UseHelper(dep)
	}
}

// Helpers returns the registered routine names in registration order.
func (g *Generator) Helpers() []string {
	return g.helpers.Elements()
}

// Program lowers a whole program: entry point first, then the user
// functions, then the runtime routines the lowering registered, with
// the string pool as the data section.
func (g *Generator) Program(p *ast.Program) Fragment {
	frag := g.mainFragment(p.Body)
	for _, f := range p.Funcs {
		frag = frag.Concat(g.function(f))
	}
	frag = frag.Concat(g.helperFragment())
	frag = frag.Concat(g.dataFragment())
	return frag
}

func (g *Generator) mainFragment(body ast.AstStmt) Fragment {
	fg := &funcGen{g: g}
	fg.emit(
		LabelInstr{Name: "main"},
		PushInstr{Regs: []Reg{RegLR}},
	)
	fg.block(body)
	fg.emit(
		MovInstr{Rd: R0, Op2: NewImm(0)},
		PopInstr{Regs: []Reg{RegPC}},
		DirectiveInstr{Text: ".ltorg"},
	)
	utils.Assert(fg.depth == 0, "unbalanced stack shift %d after main", fg.depth)
	return Fragment{Code: fg.code}
}

func (g *Generator) function(f *ast.FuncDecl) Fragment {
	fg := &funcGen{g: g}
	// Parameters sit above the saved link register, first parameter
	// closest to it.
	for i, p := range f.Params {
		p.SetStorage(4+4*i, 0)
	}
	fg.emit(
		LabelInstr{Name: f.MangledName()},
		PushInstr{Regs: []Reg{RegLR}},
	)
	fg.block(f.Body)
	fg.emit(
		PopInstr{Regs: []Reg{RegPC}},
		DirectiveInstr{Text: ".ltorg"},
	)
	utils.Assert(fg.depth == 0, "unbalanced stack shift %d after %s", fg.depth, f.Name)
	return Fragment{Code: fg.code}
}

func (g *Generator) helperFragment() Fragment {
	frag := EmptyFragment()
	g.helpers.ForEach(func(name string) {
		def := helperDefs[name]
		code := append([]Instr{LabelInstr{Name: name}}, def.build(g.helperMsgs[name])...)
		frag = frag.Concat(Fragment{Code: code})
	})
	return frag
}

func (g *Generator) dataFragment() Fragment {
	frag := EmptyFragment()
	for _, content := range g.stringOrder {
		frag.Data = append(frag.Data, StringEntry(g.stringLabel[content], content))
	}
	return frag
}

// -----------------------------------------------------------------------------
// Renderer

// Render prints a fragment as GAS-syntax assembly. Labels sit flush
// left, instructions and directives are tabbed.
func Render(frag Fragment) string {
	var sb strings.Builder
	if len(frag.Data) > 0 {
		sb.WriteString(".data\n\n")
		for _, d := range frag.Data {
			sb.WriteString(d.Label + ":\n")
			for _, line := range d.Body {
				sb.WriteString("\t" + line + "\n")
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString(".text\n\n")
	sb.WriteString(".global main\n")
	for _, instr := range frag.Code {
		if _, isLabel := instr.(LabelInstr); isLabel {
			sb.WriteString(instr.String() + "\n")
			continue
		}
		sb.WriteString("\t" + instr.String() + "\n")
	}
	return sb.String()
}
