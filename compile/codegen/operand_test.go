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
	"reflect"
	"testing"
)

func TestImmediateEncoding(t *testing.T) {
	cases := map[int]Immed8r{
		0:    {Value: 0, Rotate: 0},
		1:    {Value: 1, Rotate: 0},
		255:  {Value: 255, Rotate: 0},
		256:  {Value: 1, Rotate: 24},
		1024: {Value: 1, Rotate: 22},
	}
	for n, want := range cases {
		got := NewImm(n)
		if got != want {
			t.Fatalf("encode %d: expect %+v, got %+v", n, want, got)
		}
		if got.Const() != int32(n) {
			t.Fatalf("encode %d decodes to %d", n, got.Const())
		}
	}
	if EncodableImm(257) {
		t.Fatalf("257 must not encode as a rotated immediate")
	}
	if EncodableImm(-1) {
		t.Fatalf("-1 must not encode as a rotated immediate")
	}
}

// Every Addr-Mode-2 variant must survive print-then-parse unchanged.
func TestAddrMode2RoundTrip(t *testing.T) {
	modes := []AddrMode2{
		ZeroOffsetAddr{Base: RegSP, Mode: ModeNormal},
		ZeroOffsetAddr{Base: R4, Mode: ModePreIndexed},
		ZeroOffsetAddr{Base: R4, Mode: ModePostIndexed},
		ImmOffsetAddr{Base: RegSP, Offset: 4, Mode: ModeNormal},
		ImmOffsetAddr{Base: RegSP, Offset: -4, Mode: ModePreIndexed},
		ImmOffsetAddr{Base: R5, Offset: 8, Mode: ModePostIndexed},
		RegOffsetAddr{Base: R4, Index: R5, Mode: ModeNormal},
		RegOffsetAddr{Base: R4, Index: R5, Minus: true, Mode: ModePreIndexed},
		RegOffsetAddr{Base: R4, Index: R5, Mode: ModePostIndexed},
		ImmAddr{Value: 2147483647},
		ImmAddr{Value: -1},
		LabelAddr{Label: "msg_0"},
	}
	for _, m := range modes {
		text := m.String()
		back, err := ParseAddrMode2(text)
		if err != nil {
			t.Fatalf("parse %q: %v", text, err)
		}
		if !reflect.DeepEqual(m, back) {
			t.Fatalf("round trip of %q: expect %#v, got %#v", text, m, back)
		}
	}
}

// The constructor folds a zero displacement into the zero-offset
// case, keeping the printed grammar unambiguous.
func TestZeroOffsetNormalisation(t *testing.T) {
	a := NewOffsetAddr(RegSP, 0, ModeNormal)
	if _, ok := a.(ZeroOffsetAddr); !ok {
		t.Fatalf("offset 0 must normalise to the zero-offset form, got %#v", a)
	}
	if a.String() != "[sp]" {
		t.Fatalf("zero offset prints %q", a.String())
	}
	b := NewOffsetAddr(RegSP, 4, ModeNormal)
	if b.String() != "[sp, #4]" {
		t.Fatalf("immediate offset prints %q", b.String())
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, text := range []string{"", "r4", "[r4", "[r4], r5", "[r4, r5]", "[r4] x", "="} {
		if _, err := ParseAddrMode2(text); err == nil {
			t.Fatalf("expected parse error for %q", text)
		}
	}
}

func TestLiteralPoolOnlyLoads(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("store with a literal-pool operand must abort")
		}
	}()
	_ = MemInstr{Rd: R4, Addr: ImmAddr{Value: 1}}.String()
}
