/*
 * Copyright 2022 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFunc() (*Function, *Builder) {
	fn := NewFunction("test", I32, Param{Name: "a", Type: I32}, Param{Name: "b", Type: I32})
	bb := NewBuilder(fn).At(fn.AddBlock("entry"))
	return fn, bb
}

func TestIR_BuilderAndUses(t *testing.T) {
	fn, b := newTestFunc()
	x := b.Add(Arg(0), Arg(1))
	y := b.Mul(x, x)
	r := b.Ret(y)
	require.Equal(t, 3, fn.Len())
	require.Equal(t, []Use{{User: y.Id, Slot: 0}, {User: y.Id, Slot: 1}}, fn.Uses(x.Id))
	require.Equal(t, []Use{{User: r, Slot: 0}}, fn.Uses(y.Id))
	require.Equal(t, Pos{B: 1, I: 1}, fn.Pos(y.Id))
	require.Equal(t, I32, fn.TypeOf(y))
	require.Equal(t, r, fn.Term(1).Id)
	assert.Panics(t, func() { b.Add(x, x) })
}

func TestIR_InsertBefore(t *testing.T) {
	fn, b := newTestFunc()
	x := b.Mul(Arg(0), Imm(I32, 8))
	b.Ret(x)
	y := NewBuilder(fn).Before(x.Id).Shl(Arg(0), Imm(I32, 3))
	require.Equal(t, Pos{B: 1, I: 0}, fn.Pos(y.Id))
	require.Equal(t, Pos{B: 1, I: 1}, fn.Pos(x.Id))
	require.True(t, fn.Pos(y.Id).IsPriorTo(fn.Pos(x.Id)))
}

func TestIR_ReplaceAllUsesWith(t *testing.T) {
	fn, b := newTestFunc()
	x := b.Add(Arg(0), Arg(1))
	y := b.Add(Arg(0), Arg(1))
	z := b.Sub(x, y)
	b.Ret(z)
	fn.ReplaceAllUsesWith(y.Id, x)
	require.Zero(t, fn.Instr(y.Id).NumUses())
	require.Equal(t, []Value{x, x}, fn.Instr(z.Id).Args)
	require.Len(t, fn.Uses(x.Id), 2)
	assert.Panics(t, func() { fn.ReplaceAllUsesWith(x.Id, x) })
}

func TestIR_Erase(t *testing.T) {
	fn, b := newTestFunc()
	x := b.Add(Arg(0), Arg(1))
	y := b.Mul(x, Imm(I32, 2))
	b.Ret(x)
	assert.Panics(t, func() { fn.Erase(x.Id) })
	fn.Erase(y.Id)
	require.Equal(t, 2, fn.Len())
	require.Len(t, fn.Uses(x.Id), 1)
	_, ok := fn.Lookup(y.Id)
	require.False(t, ok)
	assert.Panics(t, func() { fn.Instr(y.Id) })
	assert.Panics(t, func() { fn.Erase(y.Id) })
}

func TestIR_Phi(t *testing.T) {
	fn := NewFunction("phi", I32, Param{Name: "c", Type: I1})
	entry := fn.AddBlock("entry")
	then := fn.AddBlock("then")
	join := fn.AddBlock("join")
	b := NewBuilder(fn)
	b.At(entry).CondBr(Arg(0), then, join)
	v := b.At(then).Add(Imm(I32, 1), Imm(I32, 2))
	b.Br(join)
	p := b.At(join).Phi(I32)
	fn.AddIncoming(p.Id, entry.Id, Imm(I32, 0))
	fn.AddIncoming(p.Id, then.Id, v)
	b.Ret(p)
	require.Equal(t, []BlockID{entry.Id, then.Id}, fn.Instr(p.Id).From)
	require.Equal(t, []Use{{User: p.Id, Slot: 1}}, fn.Uses(v.Id))
	require.Equal(t, map[BlockID][]BlockID{then.Id: {entry.Id}, join.Id: {entry.Id, then.Id}}, fn.Predecessors())
	assert.Panics(t, func() { fn.AddIncoming(v.Id, entry.Id, Imm(I32, 0)) })
}

func TestIR_Clone(t *testing.T) {
	fn, b := newTestFunc()
	x := b.Add(Arg(0), Arg(1))
	b.Ret(x)
	cc := fn.Clone()
	cc.ReplaceAllUsesWith(x.Id, Arg(0))
	cc.Erase(x.Id)
	require.Equal(t, 2, fn.Len())
	require.Equal(t, 1, cc.Len())
	require.Len(t, fn.Uses(x.Id), 1)
}

func TestIR_Format(t *testing.T) {
	fn, b := newTestFunc()
	x := b.Named("t0").Mul(Arg(0), Imm(I32, 8))
	m := b.Alloca()
	b.Store(x, m)
	v := b.Load(I32, m, true)
	c := b.ICmp(CmpSlt, v, Imm(I32, -1))
	b.Call("sink", Void, false, c)
	b.Ret(v)
	require.Equal(t, "%t0 = mul i32 %a, 8", fn.Format(x.Id))
	require.Equal(t, "define i32 @test(i32 %a, i32 %b) {\n"+
		"entry:\n"+
		"    %t0 = mul i32 %a, 8\n"+
		"    %2 = alloca\n"+
		"    store i32 %t0, ptr %2\n"+
		"    %4 = load volatile i32, ptr %2\n"+
		"    %5 = icmp slt i32 %4, -1\n"+
		"    call void @sink(i1 %5)\n"+
		"    ret i32 %4\n"+
		"}", fn.String())
}
