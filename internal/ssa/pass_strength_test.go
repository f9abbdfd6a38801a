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

package ssa

import (
	"testing"

	"github.com/cloudwego/ssaopt/internal/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// reduceOne builds "ret op(x, y)" and runs SRCF over it, returning the
// value being returned afterwards.
func reduceOne(t *testing.T, op ir.OpCode, x ir.Value, y ir.Value) (*ir.Function, *Result, ir.Value) {
	fn, b := newFunc(ir.I32)
	v := b.Binary(op, x, y)
	r := b.Ret(v)
	res := applyPass(t, SRCF{}, fn, nil)
	return fn, res, fn.Instr(r).Args[0]
}

func TestSRCF_Fold(t *testing.T) {
	env, logs := newObservedEnv()
	fn, b := newFunc(ir.I32)
	r := b.Ret(b.Mul(ir.Imm(ir.I32, 7), ir.Imm(ir.I32, 6)))
	res := applyPass(t, SRCF{}, fn, env)
	require.Equal(t, ir.Imm(ir.I32, 42), fn.Instr(r).Args[0])
	require.Equal(t, 1, fn.Len())
	require.Equal(t, 1, res.Count(ActFold))
	require.Equal(t, "7*6", res.Actions[0].Before)
	require.Equal(t, "42", res.Actions[0].After)
	entries := logs.FilterMessage("Constant folding").All()
	require.Len(t, entries, 1)
	require.Equal(t, "7*6", entries[0].ContextMap()["before"])
	require.Equal(t, "42", entries[0].ContextMap()["after"])
}

func TestSRCF_FoldWraps(t *testing.T) {
	fn := ir.NewFunction("wrap", ir.I8)
	b := ir.NewBuilder(fn).At(fn.AddBlock("entry"))
	r := b.Ret(b.Add(ir.Imm(ir.I8, 127), ir.Imm(ir.I8, 1)))
	applyPass(t, SRCF{}, fn, nil)
	require.Equal(t, ir.Imm(ir.I8, -128), fn.Instr(r).Args[0])
}

func TestSRCF_FoldDivision(t *testing.T) {
	_, _, v := reduceOne(t, ir.OpSDiv, ir.Imm(ir.I32, -7), ir.Imm(ir.I32, 2))
	require.Equal(t, ir.Imm(ir.I32, -3), v)
	_, _, v = reduceOne(t, ir.OpUDiv, ir.Imm(ir.I32, -8), ir.Imm(ir.I32, 2))
	require.Equal(t, ir.Imm(ir.I32, 0x7ffffffc), v)
}

func TestSRCF_DivideByZero(t *testing.T) {
	env, logs := newObservedEnv()
	fn, b := newFunc(ir.I32)
	x := b.SDiv(ir.Imm(ir.I32, 10), ir.Imm(ir.I32, 0))
	y := b.Mul(ir.Imm(ir.I32, 2), ir.Imm(ir.I32, 3))
	b.Ret(b.Add(x, y))
	res := applyPass(t, SRCF{}, fn, env)
	require.True(t, res.Changed)
	require.Equal(t, 1, res.Count(ActHazard))
	require.Equal(t, 1, res.Count(ActFold))
	require.Equal(t, []ir.Value{ir.Imm(ir.I32, 10), ir.Imm(ir.I32, 0)}, fn.Instr(x.Id).Args)
	entries := logs.FilterMessage("Constant folding declined").All()
	require.Len(t, entries, 1)
	require.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

func TestSRCF_MulShift(t *testing.T) {
	for _, c := range []struct {
		x ir.Value
		y ir.Value
	}{
		{ir.Arg(0), ir.Imm(ir.I32, 8)},
		{ir.Imm(ir.I32, 8), ir.Arg(0)},
	} {
		fn, res, v := reduceOne(t, ir.OpMul, c.x, c.y)
		require.Equal(t, 1, res.Count(ActReduce))
		p := fn.Instr(v.Id)
		require.Equal(t, ir.OpShl, p.Op)
		require.Equal(t, []ir.Value{ir.Arg(0), ir.Imm(ir.I32, 3)}, p.Args)
		require.Equal(t, 0, countOps(fn, ir.OpMul))
	}
}

func TestSRCF_Identities(t *testing.T) {
	for _, c := range []struct {
		op ir.OpCode
		x  ir.Value
		y  ir.Value
	}{
		{ir.OpMul, ir.Arg(0), ir.Imm(ir.I32, 1)},
		{ir.OpMul, ir.Imm(ir.I32, 1), ir.Arg(0)},
		{ir.OpSDiv, ir.Arg(0), ir.Imm(ir.I32, 1)},
		{ir.OpUDiv, ir.Arg(0), ir.Imm(ir.I32, 1)},
		{ir.OpAdd, ir.Arg(0), ir.Imm(ir.I32, 0)},
		{ir.OpAdd, ir.Imm(ir.I32, 0), ir.Arg(0)},
		{ir.OpSub, ir.Arg(0), ir.Imm(ir.I32, 0)},
	} {
		fn, res, v := reduceOne(t, c.op, c.x, c.y)
		require.Equal(t, ir.Arg(0), v, "%s", c.op)
		require.Equal(t, 1, fn.Len())
		require.Equal(t, 1, res.Count(ActReduce))
		require.Equal(t, "x", res.Actions[0].After)
	}
}

func TestSRCF_DivShift(t *testing.T) {
	fn, _, v := reduceOne(t, ir.OpSDiv, ir.Arg(0), ir.Imm(ir.I32, 4))
	require.Equal(t, ir.OpAShr, fn.Instr(v.Id).Op)
	require.Equal(t, ir.Imm(ir.I32, 2), fn.Instr(v.Id).Args[1])
	fn, _, v = reduceOne(t, ir.OpUDiv, ir.Arg(0), ir.Imm(ir.I32, 16))
	require.Equal(t, ir.OpLShr, fn.Instr(v.Id).Op)
	require.Equal(t, ir.Imm(ir.I32, 4), fn.Instr(v.Id).Args[1])
}

func TestSRCF_NoRewrite(t *testing.T) {
	for _, c := range []struct {
		op ir.OpCode
		x  ir.Value
		y  ir.Value
	}{
		{ir.OpMul, ir.Arg(0), ir.Imm(ir.I32, 6)},
		{ir.OpMul, ir.Arg(0), ir.Imm(ir.I32, -8)},
		{ir.OpMul, ir.Arg(0), ir.Arg(0)},
		{ir.OpSDiv, ir.Imm(ir.I32, 8), ir.Arg(0)},
		{ir.OpSDiv, ir.Arg(0), ir.Imm(ir.I32, 6)},
		{ir.OpUDiv, ir.Arg(0), ir.Imm(ir.I32, 0)},
		{ir.OpSub, ir.Imm(ir.I32, 0), ir.Arg(0)},
		{ir.OpShl, ir.Arg(0), ir.Imm(ir.I32, 0)},
		{ir.OpAnd, ir.Imm(ir.I32, 3), ir.Imm(ir.I32, 5)},
	} {
		fn, res, v := reduceOne(t, c.op, c.x, c.y)
		assert.False(t, res.Changed, "%s", c.op)
		assert.Equal(t, c.op, fn.Instr(v.Id).Op)
		assert.Equal(t, 2, fn.Len())
	}
}

func TestSRCF_Idempotent(t *testing.T) {
	fn := buildCompute()
	res := applyPass(t, SRCF{}, fn, nil)
	require.Equal(t, 2, res.Count(ActReduce))
	s0 := fn.String()
	res = applyPass(t, SRCF{}, fn, nil)
	assert.False(t, res.Changed)
	assert.Equal(t, s0, fn.String())
}

func TestSRCF_UnreachableSelfReference(t *testing.T) {
	for _, c := range []struct {
		op ir.OpCode
		y  int64
	}{
		{ir.OpAdd, 0},
		{ir.OpSub, 0},
		{ir.OpMul, 1},
		{ir.OpMul, 4},
		{ir.OpSDiv, 1},
		{ir.OpUDiv, 8},
	} {
		fn, b := newFunc(ir.I32)
		b.Ret(ir.Arg(0))

		/* %x = op %x, c in a block that only branches to itself */
		dead := fn.AddBlock("dead")
		x := b.At(dead).Binary(c.op, ir.Arg(0), ir.Imm(ir.I32, c.y))
		b.Br(dead)
		fn.SetOperand(x.Id, 0, x)
		require.NoError(t, Verify(fn), "%s", fn)

		/* nothing to rewrite, and nothing breaks */
		var res *Result
		s0 := fn.String()
		require.NotPanics(t, func() { res = applyPass(t, SRCF{}, fn, nil) }, "%s", c.op)
		assert.False(t, res.Changed, "%s", c.op)
		assert.Empty(t, res.Actions)
		assert.Equal(t, s0, fn.String())
	}
}
