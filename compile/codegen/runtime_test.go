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
	"testing"
)

// The registered helper set must be closed under the dependency
// relation, whichever routine seeds it.
func TestHelperClosure(t *testing.T) {
	for seed := range helperDefs {
		g := NewGenerator()
		g.UseHelper(seed)
		have := make(map[string]bool)
		for _, h := range g.Helpers() {
			have[h] = true
		}
		for _, h := range g.Helpers() {
			for _, dep := range HelperDeps(h) {
				if !have[dep] {
					t.Fatalf("seed %s: helper %s requires %s which is missing", seed, h, dep)
				}
			}
		}
	}
}

func TestOverflowPullsInRuntimeError(t *testing.T) {
	g := NewGenerator()
	g.UseHelper(HelperThrowOverflow)
	want := []string{HelperThrowOverflow, HelperThrowRuntime, HelperPrintString}
	have := g.Helpers()
	if len(have) != len(want) {
		t.Fatalf("expect %v, got %v", want, have)
	}
	for i := range want {
		if have[i] != want[i] {
			t.Fatalf("expect %v, got %v", want, have)
		}
	}
}

func TestHelperRegistersOnce(t *testing.T) {
	g := NewGenerator()
	g.UseHelper(HelperCheckBounds)
	g.UseHelper(HelperCheckBounds)
	g.UseHelper(HelperThrowRuntime)
	count := 0
	for _, h := range g.Helpers() {
		if h == HelperCheckBounds {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("helper registered %d times", count)
	}
}

// Registering the same routine from many call sites must not mint new
// message labels.
func TestHelperMessagesInternOnce(t *testing.T) {
	g := NewGenerator()
	g.UseHelper(HelperCheckNullPtr)
	g.UseHelper(HelperFreePair) // shares the null-reference message
	if g.InternString(msgNullRef) != g.helperMsgs[HelperCheckNullPtr][0] {
		t.Fatalf("null-reference message not shared")
	}
	if g.helperMsgs[HelperFreePair][0] != g.helperMsgs[HelperCheckNullPtr][0] {
		t.Fatalf("free-pair and null-check must share one message label")
	}
}

// Every helper body must be expressible: building it with its message
// labels must produce code ending in a return or a hand-off.
func TestHelperBodiesBuild(t *testing.T) {
	g := NewGenerator()
	for name := range helperDefs {
		g.UseHelper(name)
	}
	for _, name := range g.Helpers() {
		code := helperDefs[name].build(g.helperMsgs[name])
		if len(code) == 0 {
			t.Fatalf("helper %s has an empty body", name)
		}
		switch last := code[len(code)-1].(type) {
		case PopInstr, BranchInstr:
		default:
			t.Fatalf("helper %s ends with %v, expect a return or a hand-off", name, last)
		}
	}
}
