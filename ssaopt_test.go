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

package ssaopt

import (
	"errors"
	"testing"

	"github.com/cloudwego/ssaopt/internal/emu"
	"github.com/cloudwego/ssaopt/internal/ir"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func buildCompute(name string) *Function {
	a := ir.Arg(0)
	b := ir.Arg(1)
	fn := NewFunction(name, I32, Param{Name: "a", Type: I32}, Param{Name: "b", Type: I32})
	bb := NewBuilder(fn).At(fn.AddBlock("entry"))
	d := bb.Add(bb.Mul(a, ir.Imm(I32, 8)), b)
	e := bb.SDiv(d, ir.Imm(I32, 16))
	c := bb.Add(a, b)
	bb.Add(a, ir.Imm(I32, 1))
	e = bb.Mul(e, bb.Add(a, b))
	bb.Ret(bb.Add(c, e))
	return fn
}

func TestOptimize(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	fn := buildCompute("compute")
	rep, err := Optimize(fn, WithLogger(zap.New(core)), WithVerify(true))
	require.NoError(t, err)
	require.Equal(t, "compute", rep.Func)
	require.True(t, rep.Changed())
	require.NoError(t, Verify(fn))
	require.Equal(t, 7, fn.Len())
	for _, msg := range []string{
		"Starting Strength Reduction & Constant Folding pass",
		"Starting Common Subexpression Elimination pass",
		"Starting Dead Code Elimination pass",
	} {
		require.Equal(t, 1, logs.FilterMessage(msg).Len(), msg)
	}
	v, err := emu.Run(fn, 100, 2)
	require.NoError(t, err)
	require.Equal(t, uint64(5202), v)
}

func TestOptimize_Passes(t *testing.T) {
	fn := buildCompute("compute")
	rep, err := Optimize(fn, WithPasses("dce"))
	require.NoError(t, err)
	require.Len(t, rep.Results, 1)
	require.Equal(t, 8, fn.Len())
	require.Panics(t, func() { WithPasses("srcf", "licm") })
	require.Panics(t, func() { WithMaxRounds(0) })
}

func TestOptimize_Defaults(t *testing.T) {
	old := SetMaxRounds(5)
	defer SetMaxRounds(old)
	oldv := SetVerify(true)
	defer SetVerify(oldv)
	rep, err := Optimize(buildCompute("compute"))
	require.NoError(t, err)
	require.Equal(t, 2, rep.Rounds)
}

func TestOptimizeAll(t *testing.T) {
	fns := make([]*Function, 16)
	for i := range fns {
		fns[i] = buildCompute("compute")
	}
	reps, err := OptimizeAll(fns, WithMaxRounds(3))
	require.NoError(t, err)
	require.Len(t, reps, len(fns))
	for i, fn := range fns {
		require.Equal(t, 7, fn.Len())
		require.Equal(t, fn.Name, reps[i].Func)
	}
}

func TestOptimizeAll_Errors(t *testing.T) {
	var pe *PassError
	good := buildCompute("good")
	bad := NewFunction("bad", I32, Param{Name: "a", Type: I64})
	NewBuilder(bad).At(bad.AddBlock("entry")).Ret(ir.Arg(0))
	reps, err := OptimizeAll([]*Function{bad, good, bad.Clone()}, WithVerify(true))
	require.Len(t, multierr.Errors(err), 2)
	require.True(t, errors.As(err, &pe))
	require.Equal(t, "bad", pe.Func)
	require.NotNil(t, reps[1])
	require.True(t, reps[1].Changed())
}
