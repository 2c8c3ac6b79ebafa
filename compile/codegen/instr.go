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

	"github.com/lancelotblanchard/WACC/utils"
)

// -----------------------------------------------------------------------------
// ARM Instruction Model
//
// A closed variant of the instructions the backend emits. Every case
// renders itself; the renderer in codegen.go only decides indentation.

type Instr interface {
	String() string
	instr()
}

// DataOp is a three-operand data-processing opcode.
type DataOp int

const (
	OpADD DataOp = iota
	OpSUB
	OpRSB
	OpAND
	OpORR
	OpEOR
)

func (op DataOp) String() string {
	switch op {
	case OpADD:
		return "ADD"
	case OpSUB:
		return "SUB"
	case OpRSB:
		return "RSB"
	case OpAND:
		return "AND"
	case OpORR:
		return "ORR"
	case OpEOR:
		return "EOR"
	default:
		utils.ShouldNotReachHere()
	}
	return ""
}

// DataInstr is Rd := Rn op Operand2, optionally setting flags.
type DataInstr struct {
	Op       DataOp
	Cond     Cond
	SetFlags bool
	Rd       Reg
	Rn       Reg
	Op2      Operand2
}

// MovInstr is Rd := Operand2.
type MovInstr struct {
	Cond     Cond
	SetFlags bool
	Rd       Reg
	Op2      Operand2
}

// CmpInstr compares Rn against Operand2, setting flags.
type CmpInstr struct {
	Rn  Reg
	Op2 Operand2
}

// SMullInstr is the 64-bit signed multiply RdHi:RdLo := Rm * Rs.
type SMullInstr struct {
	RdLo Reg
	RdHi Reg
	Rm   Reg
	Rs   Reg
}

// MemInstr is a load or store through an Addr-Mode-2 operand.
type MemInstr struct {
	Load bool
	Cond Cond
	Rd   Reg
	Addr AddrMode2
}

// BranchInstr is a branch, optionally with link, to a label or symbol.
type BranchInstr struct {
	Link   bool
	Cond   Cond
	Target string
}

// PushInstr and PopInstr operate on a register list.
type PushInstr struct {
	Regs []Reg
}

type PopInstr struct {
	Regs []Reg
}

// LabelInstr defines a label at the current position.
type LabelInstr struct {
	Name string
}

// DirectiveInstr is a raw assembler directive such as .ltorg.
type DirectiveInstr struct {
	Text string
}

func (DataInstr) instr()      {}
func (MovInstr) instr()       {}
func (CmpInstr) instr()       {}
func (SMullInstr) instr()     {}
func (MemInstr) instr()       {}
func (BranchInstr) instr()    {}
func (PushInstr) instr()      {}
func (PopInstr) instr()       {}
func (LabelInstr) instr()     {}
func (DirectiveInstr) instr() {}

func (i DataInstr) String() string {
	mnemonic := i.Op.String()
	if i.SetFlags {
		mnemonic += "S"
	}
	mnemonic += i.Cond.String()
	return fmt.Sprintf("%s %v, %v, %v", mnemonic, i.Rd, i.Rn, i.Op2)
}

func (i MovInstr) String() string {
	mnemonic := "MOV"
	if i.SetFlags {
		mnemonic += "S"
	}
	mnemonic += i.Cond.String()
	return fmt.Sprintf("%s %v, %v", mnemonic, i.Rd, i.Op2)
}

func (i CmpInstr) String() string {
	return fmt.Sprintf("CMP %v, %v", i.Rn, i.Op2)
}

func (i SMullInstr) String() string {
	return fmt.Sprintf("SMULL %v, %v, %v, %v", i.RdLo, i.RdHi, i.Rm, i.Rs)
}

func (i MemInstr) String() string {
	mnemonic := "STR"
	if i.Load {
		mnemonic = "LDR"
	}
	if !i.Load {
		switch i.Addr.(type) {
		case ImmAddr, LabelAddr:
			utils.Assert(false, "literal-pool operand on a store")
		}
	}
	mnemonic += i.Cond.String()
	return fmt.Sprintf("%s %v, %v", mnemonic, i.Rd, i.Addr)
}

func (i BranchInstr) String() string {
	mnemonic := "B"
	if i.Link {
		mnemonic += "L"
	}
	mnemonic += i.Cond.String()
	return fmt.Sprintf("%s %s", mnemonic, i.Target)
}

func regList(regs []Reg) string {
	strs := make([]string, len(regs))
	for i, r := range regs {
		strs[i] = r.String()
	}
	return "{" + strings.Join(strs, ", ") + "}"
}

func (i PushInstr) String() string {
	return "PUSH " + regList(i.Regs)
}

func (i PopInstr) String() string {
	return "POP " + regList(i.Regs)
}

func (i LabelInstr) String() string {
	return i.Name + ":"
}

func (i DirectiveInstr) String() string {
	return i.Text
}
