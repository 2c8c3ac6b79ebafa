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
	"github.com/lancelotblanchard/WACC/ast"
	"github.com/lancelotblanchard/WACC/utils"
)

// -----------------------------------------------------------------------------
// Statement Lowering

// funcGen carries the per-function emission state: the instruction
// list and the running stack-pointer shift relative to the function
// frame base. Every transient push and every live scope region adds to
// depth; variable loads compensate with it.
type funcGen struct {
	g     *Generator
	code  []Instr
	depth int
}

func (fg *funcGen) emit(instrs ...Instr) {
	fg.code = append(fg.code, instrs...)
}

// push parks a register below the stack pointer.
func (fg *funcGen) push(r Reg) {
	fg.emit(PushInstr{Regs: []Reg{r}})
	fg.depth += 4
}

func (fg *funcGen) pop(r Reg) {
	fg.emit(PopInstr{Regs: []Reg{r}})
	fg.depth -= 4
}

// varOffset is the distance from the current stack pointer to the
// variable's slot, accounting for every scope and transient shift
// between its region and now.
func (fg *funcGen) varOffset(v *ast.Variable) int {
	utils.Assert(v.Resolved(), "variable %s has no storage", v.Name)
	off := fg.depth - v.Depth + v.Offset
	utils.Assert(off >= 0, "variable %s out of frame (offset %d)", v.Name, off)
	return off
}

func (fg *funcGen) varAddr(v *ast.Variable) AddrMode2 {
	return NewOffsetAddr(RegSP, fg.varOffset(v), ModeNormal)
}

// stackAdjust grows or shrinks the frame, chunked so every immediate
// stays encodable. It only emits; the caller owns the depth
// bookkeeping because unwinding on an exit edge must not disturb the
// depth seen by the statements that follow.
func (fg *funcGen) stackAdjust(op DataOp, n int) {
	utils.Assert(op == OpADD || op == OpSUB, "stack adjustment must be ADD or SUB")
	for n > 0 {
		c := utils.Min(n, 1024)
		fg.emit(DataInstr{Op: op, Rd: RegSP, Rn: RegSP, Op2: NewImm(c)})
		n -= c
	}
}

// block opens a scope for body: allocates its region, lays out its
// declarations, lowers its statements and releases the region.
func (fg *funcGen) block(body ast.AstStmt) {
	size := ast.ScopeSize(body)
	if size > 0 {
		fg.stackAdjust(OpSUB, size)
		fg.depth += size
	}
	ast.NewScope(nil, body, fg.depth)
	for _, s := range ast.DirectStmts(body) {
		fg.stmt(s)
	}
	if size > 0 {
		fg.stackAdjust(OpADD, size)
		fg.depth -= size
	}
}

func (fg *funcGen) stmt(s ast.AstStmt) {
	regs := GeneralRegs()
	switch s := s.(type) {
	case *ast.SkipStmt:
		// nothing
	case *ast.DeclStmt:
		fg.rvalue(s.Init, regs)
		fg.emit(MemInstr{Rd: regs[0], Addr: fg.varAddr(s.Var)})
	case *ast.AssignStmt:
		fg.rvalue(s.Right, regs)
		fg.store(s.Left, regs)
	case *ast.ReadStmt:
		fg.read(s)
	case *ast.FreeStmt:
		fg.free(s)
	case *ast.ReturnStmt:
		fg.expr(s.E, regs)
		fg.emit(MovInstr{Rd: R0, Op2: RegOp2{Rm: regs[0]}})
		fg.stackAdjust(OpADD, fg.depth)
		fg.emit(PopInstr{Regs: []Reg{RegPC}})
	case *ast.ExitStmt:
		fg.expr(s.E, regs)
		fg.emit(MovInstr{Rd: R0, Op2: RegOp2{Rm: regs[0]}})
		fg.stackAdjust(OpADD, fg.depth)
		fg.emit(BranchInstr{Link: true, Target: "exit"})
	case *ast.PrintStmt:
		fg.print(s)
	case *ast.IfStmt:
		fg.ifStmt(s)
	case *ast.WhileStmt:
		fg.whileStmt(s)
	case *ast.BlockStmt:
		fg.block(s)
	case *ast.SeqStmt:
		fg.stmt(s.First)
		fg.stmt(s.Second)
	case *ast.CallStmt:
		fg.call(s.Name, s.Args, regs)
	default:
		utils.Unimplement()
	}
}

// rvalue evaluates the right-hand side of a declaration or assignment
// into regs[0].
func (fg *funcGen) rvalue(r ast.AstRValue, regs []Reg) {
	dest := regs[0]
	switch r := r.(type) {
	case *ast.ExprRValue:
		fg.expr(r.E, regs)
	case *ast.ArrayLitRValue:
		utils.Assert(len(regs) >= 2, "array literal needs a scratch register")
		next := regs[1]
		// Length word plus one slot per element.
		fg.emit(
			MemInstr{Load: true, Rd: R0, Addr: ImmAddr{Value: int32(4 * (len(r.Elems) + 1))}},
			BranchInstr{Link: true, Target: "malloc"},
			MovInstr{Rd: dest, Op2: RegOp2{Rm: R0}},
		)
		for i, elem := range r.Elems {
			fg.expr(elem, regs[1:])
			fg.emit(MemInstr{Rd: next, Addr: NewOffsetAddr(dest, 4+4*i, ModeNormal)})
		}
		fg.emit(
			MemInstr{Load: true, Rd: next, Addr: ImmAddr{Value: int32(len(r.Elems))}},
			MemInstr{Rd: next, Addr: ZeroOffsetAddr{Base: dest}},
		)
	case *ast.NewPairRValue:
		utils.Assert(len(regs) >= 2, "newpair needs a scratch register")
		next := regs[1]
		fg.emit(
			MemInstr{Load: true, Rd: R0, Addr: ImmAddr{Value: 8}},
			BranchInstr{Link: true, Target: "malloc"},
			MovInstr{Rd: dest, Op2: RegOp2{Rm: R0}},
		)
		fg.expr(r.Fst, regs[1:])
		fg.emit(MemInstr{Rd: next, Addr: ZeroOffsetAddr{Base: dest}})
		fg.expr(r.Snd, regs[1:])
		fg.emit(MemInstr{Rd: next, Addr: NewOffsetAddr(dest, 4, ModeNormal)})
	case *ast.PairElemRValue:
		fg.expr(r.Pair, regs)
		fg.nullCheck(dest)
		fg.emit(MemInstr{Load: true, Rd: dest, Addr: NewOffsetAddr(dest, pairFieldOffset(r.Side), ModeNormal)})
	case *ast.CallRValue:
		fg.call(r.Name, r.Args, regs)
	default:
		utils.Unimplement()
	}
}

func pairFieldOffset(side ast.PairSide) int {
	if side == ast.PairSnd {
		return 4
	}
	return 0
}

// store writes regs[0] to an assignable location, resolving the
// address with the remaining registers.
func (fg *funcGen) store(l ast.AstLValue, regs []Reg) {
	val := regs[0]
	switch l := l.(type) {
	case *ast.VarExpr:
		fg.emit(MemInstr{Rd: val, Addr: fg.varAddr(l.Var)})
	case *ast.IndexExpr:
		utils.Assert(len(regs) >= 2, "array store needs a scratch register")
		fg.elemAddr(l, regs[1:])
		fg.emit(MemInstr{Rd: val, Addr: ZeroOffsetAddr{Base: regs[1]}})
	case *ast.PairElemLValue:
		utils.Assert(len(regs) >= 2, "pair store needs a scratch register")
		fg.expr(l.Pair, regs[1:])
		fg.nullCheck(regs[1])
		fg.emit(MemInstr{Rd: val, Addr: NewOffsetAddr(regs[1], pairFieldOffset(l.Side), ModeNormal)})
	default:
		utils.Unimplement()
	}
}

// lvalueAddr leaves the address of an assignable location in regs[0].
func (fg *funcGen) lvalueAddr(l ast.AstLValue, regs []Reg) {
	dest := regs[0]
	switch l := l.(type) {
	case *ast.VarExpr:
		fg.emit(DataInstr{Op: OpADD, Rd: dest, Rn: RegSP, Op2: NewImm(fg.varOffset(l.Var))})
	case *ast.IndexExpr:
		fg.elemAddr(l, regs)
	case *ast.PairElemLValue:
		fg.expr(l.Pair, regs)
		fg.nullCheck(dest)
		if l.Side == ast.PairSnd {
			fg.emit(DataInstr{Op: OpADD, Rd: dest, Rn: dest, Op2: NewImm(4)})
		}
	default:
		utils.Unimplement()
	}
}

func (fg *funcGen) read(s *ast.ReadStmt) {
	regs := GeneralRegs()
	fg.lvalueAddr(s.Left, regs)
	fg.emit(MovInstr{Rd: R0, Op2: RegOp2{Rm: regs[0]}})
	t := s.Left.GetType()
	switch {
	case t.IsInt():
		fg.g.UseHelper(HelperReadInt)
		fg.emit(BranchInstr{Link: true, Target: HelperReadInt})
	case t.IsChar():
		fg.g.UseHelper(HelperReadChar)
		fg.emit(BranchInstr{Link: true, Target: HelperReadChar})
	default:
		utils.Unimplement()
	}
}

func (fg *funcGen) free(s *ast.FreeStmt) {
	regs := GeneralRegs()
	fg.expr(s.E, regs)
	fg.emit(MovInstr{Rd: R0, Op2: RegOp2{Rm: regs[0]}})
	t := s.E.GetType()
	switch {
	case t.IsPair():
		fg.g.UseHelper(HelperFreePair)
		fg.emit(BranchInstr{Link: true, Target: HelperFreePair})
	case t.IsArray():
		fg.g.UseHelper(HelperCheckNullPtr)
		fg.emit(
			BranchInstr{Link: true, Target: HelperCheckNullPtr},
			BranchInstr{Link: true, Target: "free"},
		)
	default:
		utils.Unimplement()
	}
}

func (fg *funcGen) print(s *ast.PrintStmt) {
	regs := GeneralRegs()
	fg.expr(s.E, regs)
	fg.emit(MovInstr{Rd: R0, Op2: RegOp2{Rm: regs[0]}})
	t := s.E.GetType()
	switch {
	case t.IsInt():
		fg.g.UseHelper(HelperPrintInt)
		fg.emit(BranchInstr{Link: true, Target: HelperPrintInt})
	case t.IsBool():
		fg.g.UseHelper(HelperPrintBool)
		fg.emit(BranchInstr{Link: true, Target: HelperPrintBool})
	case t.IsChar():
		fg.emit(BranchInstr{Link: true, Target: "putchar"})
	case t.IsString():
		fg.g.UseHelper(HelperPrintString)
		fg.emit(BranchInstr{Link: true, Target: HelperPrintString})
	default:
		// Arrays and pairs print as references.
		fg.g.UseHelper(HelperPrintReference)
		fg.emit(BranchInstr{Link: true, Target: HelperPrintReference})
	}
	if s.Newline {
		fg.g.UseHelper(HelperPrintLn)
		fg.emit(BranchInstr{Link: true, Target: HelperPrintLn})
	}
}

func (fg *funcGen) condBranch(cond ast.AstExpr, falseLabel string) {
	regs := GeneralRegs()
	fg.expr(cond, regs)
	fg.emit(
		CmpInstr{Rn: regs[0], Op2: NewImm(0)},
		BranchInstr{Cond: CondEQ, Target: falseLabel},
	)
}

func (fg *funcGen) ifStmt(s *ast.IfStmt) {
	elseLabel := fg.g.NewLabel()
	endLabel := fg.g.NewLabel()
	fg.condBranch(s.Cond, elseLabel)
	fg.branchBody(s.Then)
	fg.emit(
		BranchInstr{Target: endLabel},
		LabelInstr{Name: elseLabel},
	)
	fg.branchBody(s.Else)
	fg.emit(LabelInstr{Name: endLabel})
}

func (fg *funcGen) whileStmt(s *ast.WhileStmt) {
	// A constant-true condition needs neither test nor exit label.
	if lit, ok := s.Cond.(*ast.BoolExpr); ok && lit.Value {
		top := fg.g.NewLabel()
		fg.emit(LabelInstr{Name: top})
		fg.branchBody(s.Body)
		fg.emit(BranchInstr{Target: top})
		return
	}
	top := fg.g.NewLabel()
	end := fg.g.NewLabel()
	fg.emit(LabelInstr{Name: top})
	fg.condBranch(s.Cond, end)
	fg.branchBody(s.Body)
	fg.emit(
		BranchInstr{Target: top},
		LabelInstr{Name: end},
	)
}

// branchBody lowers the body of a branch. Branch bodies are scopes of
// their own, so their declarations get a fresh region even when the
// body is not written as an explicit block.
func (fg *funcGen) branchBody(s ast.AstStmt) {
	fg.block(s)
}

// call pushes the arguments right to left, each with a pre-indexed
// store, jumps and reclaims the argument space; the result lands in
// regs[0].
func (fg *funcGen) call(name string, args []ast.AstExpr, regs []Reg) {
	for i := len(args) - 1; i >= 0; i-- {
		fg.expr(args[i], regs)
		fg.emit(MemInstr{Rd: regs[0], Addr: ImmOffsetAddr{Base: RegSP, Offset: -4, Mode: ModePreIndexed}})
		fg.depth += 4
	}
	fg.emit(BranchInstr{Link: true, Target: ast.MangleFunc(name)})
	if n := 4 * len(args); n > 0 {
		fg.stackAdjust(OpADD, n)
		fg.depth -= n
	}
	fg.emit(MovInstr{Rd: regs[0], Op2: RegOp2{Rm: R0}})
}

func (fg *funcGen) nullCheck(r Reg) {
	fg.g.UseHelper(HelperCheckNullPtr)
	fg.emit(
		MovInstr{Rd: R0, Op2: RegOp2{Rm: r}},
		BranchInstr{Link: true, Target: HelperCheckNullPtr},
	)
}
