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
package jvm

// PairClassSource is the Jasmin source of the pair support class,
// emitted as a sibling file when a program uses pairs. Both fields are
// Object; the typed views live in the generated code as coercions.
const PairClassSource = `.class public wacc/lang/Pair
.super java/lang/Object

.field public fst Ljava/lang/Object;
.field public snd Ljava/lang/Object;

.method public <init>(Ljava/lang/Object;Ljava/lang/Object;)V
	.limit stack 2
	.limit locals 3
	aload_0
	invokespecial java/lang/Object/<init>()V
	aload_0
	aload_1
	putfield wacc/lang/Pair/fst Ljava/lang/Object;
	aload_0
	aload_2
	putfield wacc/lang/Pair/snd Ljava/lang/Object;
	return
.end method
`
