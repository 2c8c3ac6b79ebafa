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
	"github.com/lancelotblanchard/WACC/utils"
)

// -----------------------------------------------------------------------------
// Runtime Support
//
// The generated programs lean on a small library of helper routines
// for I/O and runtime checks. Each helper names the other helpers it
// calls; a call site registers a helper once and the registry pulls in
// the transitive closure, so every routine is emitted exactly once no
// matter how many sites reference it.

const (
	HelperPrintInt       = "p_print_int"
	HelperPrintBool      = "p_print_bool"
	HelperPrintString    = "p_print_string"
	HelperPrintReference = "p_print_reference"
	HelperPrintLn        = "p_print_ln"
	HelperReadInt        = "p_read_int"
	HelperReadChar       = "p_read_char"
	HelperCheckDivZero   = "p_check_divide_by_zero"
	HelperCheckNullPtr   = "p_check_null_pointer"
	HelperCheckBounds    = "p_check_array_bounds"
	HelperThrowOverflow  = "p_throw_overflow_error"
	HelperThrowRuntime   = "p_throw_runtime_error"
	HelperFreePair       = "p_free_pair"
)

// Message constants. Format strings carry a terminating NUL because
// they are handed to the C library; error messages additionally end in
// a newline. The string pool collapses shared contents.
const (
	msgIntFmt   = "%d\x00"
	msgStrFmt   = "%.*s\x00"
	msgTrue     = "true\x00"
	msgFalse    = "false\x00"
	msgEmpty    = "\x00"
	msgPtrFmt   = "%p\x00"
	msgCharFmt  = " %c\x00"
	msgOverflow = "OverflowError: the result is too small/large to store in a 4-byte signed-integer.\n\x00"
	msgDivZero  = "DivideByZeroError: divide or modulo by zero\n\x00"
	msgNullRef  = "NullReferenceError: dereference a null reference\n\x00"
	msgIdxNeg   = "ArrayIndexOutOfBoundsError: negative index\n\x00"
	msgIdxBig   = "ArrayIndexOutOfBoundsError: index too large\n\x00"
)

type helperDef struct {
	deps  []string
	msgs  []string
	build func(labels []string) []Instr
}

// HelperDeps exposes the dependency edges of a helper, for closure
// checks.
func HelperDeps(name string) []string {
	def, ok := helperDefs[name]
	utils.Assert(ok, "unknown runtime helper %s", name)
	return def.deps
}

// KnownHelper reports whether name is a runtime routine.
func KnownHelper(name string) bool {
	_, ok := helperDefs[name]
	return ok
}

var helperDefs = map[string]helperDef{
	HelperPrintInt: {
		msgs: []string{msgIntFmt},
		build: func(labels []string) []Instr {
			return append(callPrintf(labels[0], MovInstr{Rd: R1, Op2: RegOp2{R0}}), flushAndReturn()...)
		},
	},
	HelperPrintReference: {
		msgs: []string{msgPtrFmt},
		build: func(labels []string) []Instr {
			return append(callPrintf(labels[0], MovInstr{Rd: R1, Op2: RegOp2{R0}}), flushAndReturn()...)
		},
	},
	HelperPrintString: {
		msgs: []string{msgStrFmt},
		build: func(labels []string) []Instr {
			// The first word of a string is its length, the bytes
			// follow it.
			return append(callPrintf(labels[0],
				MemInstr{Load: true, Rd: R1, Addr: ZeroOffsetAddr{Base: R0}},
				DataInstr{Op: OpADD, Rd: R2, Rn: R0, Op2: NewImm(4)},
			), flushAndReturn()...)
		},
	},
	HelperPrintBool: {
		msgs: []string{msgTrue, msgFalse},
		build: func(labels []string) []Instr {
			return append([]Instr{
				PushInstr{Regs: []Reg{RegLR}},
				CmpInstr{Rn: R0, Op2: NewImm(0)},
				MemInstr{Load: true, Cond: CondNE, Rd: R0, Addr: LabelAddr{Label: labels[0]}},
				MemInstr{Load: true, Cond: CondEQ, Rd: R0, Addr: LabelAddr{Label: labels[1]}},
				DataInstr{Op: OpADD, Rd: R0, Rn: R0, Op2: NewImm(4)},
				BranchInstr{Link: true, Target: "printf"},
			}, flushAndReturn()...)
		},
	},
	HelperPrintLn: {
		msgs: []string{msgEmpty},
		build: func(labels []string) []Instr {
			return append([]Instr{
				PushInstr{Regs: []Reg{RegLR}},
				MemInstr{Load: true, Rd: R0, Addr: LabelAddr{Label: labels[0]}},
				DataInstr{Op: OpADD, Rd: R0, Rn: R0, Op2: NewImm(4)},
				BranchInstr{Link: true, Target: "puts"},
			}, flushAndReturn()...)
		},
	},
	HelperReadInt: {
		msgs: []string{msgIntFmt},
		build: func(labels []string) []Instr {
			return readRoutine(labels[0])
		},
	},
	HelperReadChar: {
		msgs: []string{msgCharFmt},
		build: func(labels []string) []Instr {
			return readRoutine(labels[0])
		},
	},
	HelperCheckDivZero: {
		deps: []string{HelperThrowRuntime},
		msgs: []string{msgDivZero},
		build: func(labels []string) []Instr {
			return []Instr{
				PushInstr{Regs: []Reg{RegLR}},
				CmpInstr{Rn: R1, Op2: NewImm(0)},
				MemInstr{Load: true, Cond: CondEQ, Rd: R0, Addr: LabelAddr{Label: labels[0]}},
				BranchInstr{Link: true, Cond: CondEQ, Target: HelperThrowRuntime},
				PopInstr{Regs: []Reg{RegPC}},
			}
		},
	},
	HelperCheckNullPtr: {
		deps: []string{HelperThrowRuntime},
		msgs: []string{msgNullRef},
		build: func(labels []string) []Instr {
			return []Instr{
				PushInstr{Regs: []Reg{RegLR}},
				CmpInstr{Rn: R0, Op2: NewImm(0)},
				MemInstr{Load: true, Cond: CondEQ, Rd: R0, Addr: LabelAddr{Label: labels[0]}},
				BranchInstr{Link: true, Cond: CondEQ, Target: HelperThrowRuntime},
				PopInstr{Regs: []Reg{RegPC}},
			}
		},
	},
	HelperCheckBounds: {
		deps: []string{HelperThrowRuntime},
		msgs: []string{msgIdxNeg, msgIdxBig},
		build: func(labels []string) []Instr {
			// r0 holds the index, r1 the array pointer whose first
			// word is the length.
			return []Instr{
				PushInstr{Regs: []Reg{RegLR}},
				CmpInstr{Rn: R0, Op2: NewImm(0)},
				MemInstr{Load: true, Cond: CondLT, Rd: R0, Addr: LabelAddr{Label: labels[0]}},
				BranchInstr{Link: true, Cond: CondLT, Target: HelperThrowRuntime},
				MemInstr{Load: true, Rd: R1, Addr: ZeroOffsetAddr{Base: R1}},
				CmpInstr{Rn: R0, Op2: RegOp2{R1}},
				MemInstr{Load: true, Cond: CondCS, Rd: R0, Addr: LabelAddr{Label: labels[1]}},
				BranchInstr{Link: true, Cond: CondCS, Target: HelperThrowRuntime},
				PopInstr{Regs: []Reg{RegPC}},
			}
		},
	},
	HelperThrowOverflow: {
		deps: []string{HelperThrowRuntime},
		msgs: []string{msgOverflow},
		build: func(labels []string) []Instr {
			return []Instr{
				MemInstr{Load: true, Rd: R0, Addr: LabelAddr{Label: labels[0]}},
				BranchInstr{Link: true, Target: HelperThrowRuntime},
			}
		},
	},
	HelperThrowRuntime: {
		deps: []string{HelperPrintString},
		build: func(labels []string) []Instr {
			// Print the message in r0, then exit 255.
			return []Instr{
				BranchInstr{Link: true, Target: HelperPrintString},
				MemInstr{Load: true, Rd: R0, Addr: ImmAddr{Value: -1}},
				BranchInstr{Link: true, Target: "exit"},
			}
		},
	},
	HelperFreePair: {
		deps: []string{HelperThrowRuntime},
		msgs: []string{msgNullRef},
		build: func(labels []string) []Instr {
			return []Instr{
				PushInstr{Regs: []Reg{RegLR}},
				CmpInstr{Rn: R0, Op2: NewImm(0)},
				MemInstr{Load: true, Cond: CondEQ, Rd: R0, Addr: LabelAddr{Label: labels[0]}},
				BranchInstr{Cond: CondEQ, Target: HelperThrowRuntime},
				BranchInstr{Link: true, Target: "free"},
				PopInstr{Regs: []Reg{RegPC}},
			}
		},
	},
}

// callPrintf prepends the common printf preamble: save lr, marshal the
// given argument moves, load the format string and skip its length
// word.
func callPrintf(fmtLabel string, argSetup ...Instr) []Instr {
	code := []Instr{PushInstr{Regs: []Reg{RegLR}}}
	code = append(code, argSetup...)
	code = append(code,
		MemInstr{Load: true, Rd: R0, Addr: LabelAddr{Label: fmtLabel}},
		DataInstr{Op: OpADD, Rd: R0, Rn: R0, Op2: NewImm(4)},
		BranchInstr{Link: true, Target: "printf"},
	)
	return code
}

// flushAndReturn flushes stdout and pops the return address. Output
// would otherwise sit in the libc buffer when the program exits
// through a runtime error.
func flushAndReturn() []Instr {
	return []Instr{
		MovInstr{Rd: R0, Op2: NewImm(0)},
		BranchInstr{Link: true, Target: "fflush"},
		PopInstr{Regs: []Reg{RegPC}},
	}
}

// readRoutine scans into the address handed over in r0.
func readRoutine(fmtLabel string) []Instr {
	return []Instr{
		PushInstr{Regs: []Reg{RegLR}},
		MovInstr{Rd: R1, Op2: RegOp2{R0}},
		MemInstr{Load: true, Rd: R0, Addr: LabelAddr{Label: fmtLabel}},
		DataInstr{Op: OpADD, Rd: R0, Rn: R0, Op2: NewImm(4)},
		BranchInstr{Link: true, Target: "scanf"},
		PopInstr{Regs: []Reg{RegPC}},
	}
}
