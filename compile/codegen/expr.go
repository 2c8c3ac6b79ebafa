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
// Expression Lowering
//
// Expressions are evaluated into the head of an ordered list of free
// registers. The evaluation order of a binary node follows the
// Sethi-Ullman weights: the heavier child runs first while the full
// list is available, the lighter one with the head occupied. When the
// list is down to a single register the lowering degrades to a stack
// scheme: the right child is evaluated and pushed, the left child
// reuses the register, and the intermediate result is popped into the
// reserved spill register.

// expr evaluates e into regs[0]. regs is the ordered free-register
// list; it is never empty.
func (fg *funcGen) expr(e ast.AstExpr, regs []Reg) {
	utils.Assert(len(regs) >= 1, "no free register for %v", e)
	dest := regs[0]
	switch e := e.(type) {
	case *ast.IntExpr:
		fg.emit(MemInstr{Load: true, Rd: dest, Addr: ImmAddr{Value: e.Value}})
	case *ast.BoolExpr:
		v := 0
		if e.Value {
			v = 1
		}
		fg.emit(MovInstr{Rd: dest, Op2: NewImm(v)})
	case *ast.CharExpr:
		fg.emit(MovInstr{Rd: dest, Op2: CharOp2{Value: e.Value}})
	case *ast.StrExpr:
		label := fg.g.InternString(e.Value)
		fg.emit(MemInstr{Load: true, Rd: dest, Addr: LabelAddr{Label: label}})
	case *ast.NullExpr:
		fg.emit(MovInstr{Rd: dest, Op2: NewImm(0)})
	case *ast.VarExpr:
		fg.emit(MemInstr{Load: true, Rd: dest, Addr: fg.varAddr(e.Var)})
	case *ast.IndexExpr:
		fg.elemAddr(e, regs)
		fg.emit(MemInstr{Load: true, Rd: dest, Addr: ZeroOffsetAddr{Base: dest}})
	case *ast.UnaryExpr:
		fg.unary(e, regs)
	case *ast.BinaryExpr:
		fg.binary(e, regs)
	default:
		utils.Unimplement()
	}
}

func (fg *funcGen) unary(e *ast.UnaryExpr, regs []Reg) {
	fg.expr(e.Left, regs)
	dest := regs[0]
	switch e.Opt {
	case ast.OpNot:
		fg.emit(DataInstr{Op: OpEOR, Rd: dest, Rn: dest, Op2: NewImm(1)})
	case ast.OpNeg:
		fg.emit(DataInstr{Op: OpRSB, SetFlags: true, Rd: dest, Rn: dest, Op2: NewImm(0)})
		fg.overflowCheck(CondVS)
	case ast.OpLen:
		// The first word of an array is its length.
		fg.emit(MemInstr{Load: true, Rd: dest, Addr: ZeroOffsetAddr{Base: dest}})
	case ast.OpOrd, ast.OpChr:
		// Type-only conversions, the value is already the word we
		// want.
	default:
		utils.ShouldNotReachHere()
	}
}

func (fg *funcGen) binary(e *ast.BinaryExpr, regs []Reg) {
	if e.Opt.IsShortCircuitOp() {
		fg.shortCircuit(e, regs)
		return
	}
	dest := regs[0]
	switch {
	case len(regs) == 1:
		// Stack scheme: right child first, parked on the stack while
		// the left child reuses the register; the pop lands in the
		// reserved spill register.
		fg.expr(e.Right, regs)
		fg.push(dest)
		fg.expr(e.Left, regs)
		fg.pop(RegLast)
		fg.binop(e.Opt, dest, dest, RegLast)
	case e.Left.Weight() >= e.Right.Weight():
		fg.expr(e.Left, regs)
		fg.expr(e.Right, regs[1:])
		fg.binop(e.Opt, dest, dest, regs[1])
	default:
		fg.expr(e.Right, regs)
		fg.expr(e.Left, regs[1:])
		fg.binop(e.Opt, dest, regs[1], dest)
	}
}

// binop applies rd := rn op rm, where rn holds the left operand and rm
// the right one. rd always coincides with one of the sources.
func (fg *funcGen) binop(op ast.BinaryOp, rd, rn, rm Reg) {
	switch op {
	case ast.OpAdd:
		fg.emit(DataInstr{Op: OpADD, SetFlags: true, Rd: rd, Rn: rn, Op2: RegOp2{Rm: rm}})
		fg.overflowCheck(CondVS)
	case ast.OpSub:
		fg.emit(DataInstr{Op: OpSUB, SetFlags: true, Rd: rd, Rn: rn, Op2: RegOp2{Rm: rm}})
		fg.overflowCheck(CondVS)
	case ast.OpMul:
		// The high word doubles as the overflow probe: it must equal
		// the sign extension of the low word.
		hi := rn
		if hi == rd {
			hi = rm
		}
		fg.emit(
			SMullInstr{RdLo: rd, RdHi: hi, Rm: rn, Rs: rm},
			CmpInstr{Rn: hi, Op2: ShiftRegOp2{Rm: rd, Shift: ShiftASR, Amount: 31}},
		)
		fg.overflowCheck(CondNE)
	case ast.OpDiv, ast.OpMod:
		fg.emit(
			MovInstr{Rd: R0, Op2: RegOp2{Rm: rn}},
			MovInstr{Rd: R1, Op2: RegOp2{Rm: rm}},
		)
		fg.g.UseHelper(HelperCheckDivZero)
		fg.emit(BranchInstr{Link: true, Target: HelperCheckDivZero})
		if op == ast.OpDiv {
			fg.emit(
				BranchInstr{Link: true, Target: "__aeabi_idiv"},
				MovInstr{Rd: rd, Op2: RegOp2{Rm: R0}},
			)
		} else {
			fg.emit(
				BranchInstr{Link: true, Target: "__aeabi_idivmod"},
				MovInstr{Rd: rd, Op2: RegOp2{Rm: R1}},
			)
		}
	case ast.OpGt, ast.OpGte, ast.OpLt, ast.OpLte, ast.OpEq, ast.OpNeq:
		cond := cmpCond(op)
		fg.emit(
			CmpInstr{Rn: rn, Op2: RegOp2{Rm: rm}},
			MovInstr{Cond: cond, Rd: rd, Op2: NewImm(1)},
			MovInstr{Cond: cond.Negate(), Rd: rd, Op2: NewImm(0)},
		)
	default:
		utils.ShouldNotReachHere()
	}
}

func cmpCond(op ast.BinaryOp) Cond {
	switch op {
	case ast.OpGt:
		return CondGT
	case ast.OpGte:
		return CondGE
	case ast.OpLt:
		return CondLT
	case ast.OpLte:
		return CondLE
	case ast.OpEq:
		return CondEQ
	case ast.OpNeq:
		return CondNE
	default:
		utils.ShouldNotReachHere()
	}
	return CondAL
}

// shortCircuit lowers && and || with a conditional branch over the
// right operand instead of a bitwise operation.
func (fg *funcGen) shortCircuit(e *ast.BinaryExpr, regs []Reg) {
	dest := regs[0]
	fg.expr(e.Left, regs)
	skip := fg.g.NewLabel()
	deciding := 0 // && is decided by false
	if e.Opt == ast.OpOr {
		deciding = 1
	}
	fg.emit(
		CmpInstr{Rn: dest, Op2: NewImm(deciding)},
		BranchInstr{Cond: CondEQ, Target: skip},
	)
	fg.expr(e.Right, regs)
	fg.emit(LabelInstr{Name: skip})
}

// elemAddr leaves the address of an array element in regs[0],
// bounds-checking every dimension. The base pointer and the index
// register are reused across dimensions.
func (fg *funcGen) elemAddr(e *ast.IndexExpr, regs []Reg) {
	dest := regs[0]
	fg.emit(DataInstr{Op: OpADD, Rd: dest, Rn: RegSP, Op2: NewImm(fg.varOffset(e.Var))})
	for _, idx := range e.Indices {
		fg.emit(MemInstr{Load: true, Rd: dest, Addr: ZeroOffsetAddr{Base: dest}})
		if len(regs) >= 2 {
			next := regs[1]
			fg.expr(idx, regs[1:])
			fg.boundsCheck(next, dest)
			fg.emit(
				DataInstr{Op: OpADD, Rd: dest, Rn: dest, Op2: NewImm(4)},
				DataInstr{Op: OpADD, Rd: dest, Rn: dest, Op2: ShiftRegOp2{Rm: next, Shift: ShiftLSL, Amount: 2}},
			)
		} else {
			fg.push(dest)
			fg.expr(idx, regs)
			fg.pop(RegLast)
			fg.boundsCheck(dest, RegLast)
			fg.emit(
				DataInstr{Op: OpADD, Rd: RegLast, Rn: RegLast, Op2: NewImm(4)},
				DataInstr{Op: OpADD, Rd: dest, Rn: RegLast, Op2: ShiftRegOp2{Rm: dest, Shift: ShiftLSL, Amount: 2}},
			)
		}
	}
}

func (fg *funcGen) boundsCheck(idxReg, ptrReg Reg) {
	fg.g.UseHelper(HelperCheckBounds)
	fg.emit(
		MovInstr{Rd: R0, Op2: RegOp2{Rm: idxReg}},
		MovInstr{Rd: R1, Op2: RegOp2{Rm: ptrReg}},
		BranchInstr{Link: true, Target: HelperCheckBounds},
	)
}

func (fg *funcGen) overflowCheck(cond Cond) {
	fg.g.UseHelper(HelperThrowOverflow)
	fg.emit(BranchInstr{Link: true, Cond: cond, Target: HelperThrowOverflow})
}
