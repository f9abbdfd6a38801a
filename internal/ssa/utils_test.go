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
	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedEnv() (*Env, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return &Env{Log: zap.New(core)}, logs
}

func newFunc(params ...ir.Type) (*ir.Function, *ir.Builder) {
	args := make([]ir.Param, len(params))
	for i, t := range params {
		args[i] = ir.Param{Type: t}
	}
	fn := ir.NewFunction("test", ir.I32, args...)
	return fn, ir.NewBuilder(fn).At(fn.AddBlock("entry"))
}

// buildCompute builds the following function:
//
//	int compute(int a, int b) {
//	    int d = a * 8 + b;
//	    int e = d / 16;
//	    int c = a + b;
//	    int f = a + 1;
//	    e = e * (a + b);
//	    e = c + e;
//	    return e;
//	}
func buildCompute() *ir.Function {
	a := ir.Arg(0)
	b := ir.Arg(1)
	fn := ir.NewFunction("compute", ir.I32, ir.Param{Name: "a", Type: ir.I32}, ir.Param{Name: "b", Type: ir.I32})
	bb := ir.NewBuilder(fn).At(fn.AddBlock("entry"))
	mul := bb.Named("mul").Mul(a, ir.Imm(ir.I32, 8))
	d := bb.Named("d").Add(mul, b)
	e := bb.Named("e").SDiv(d, ir.Imm(ir.I32, 16))
	c := bb.Named("c").Add(a, b)
	bb.Named("f").Add(a, ir.Imm(ir.I32, 1))
	ab := bb.Named("ab").Add(a, b)
	e1 := bb.Named("e1").Mul(e, ab)
	e2 := bb.Named("e2").Add(c, e1)
	bb.Ret(e2)
	return fn
}

// applyPass runs a single pass the way the pipeline does.
func applyPass(t *testing.T, pass Pass, fn *ir.Function, env *Env) *Result {
	if env == nil {
		env = new(Env)
	}
	env.Dom = BuildDominatorTree(fn)
	ret, err := pass.Apply(fn, env)
	require.NoError(t, err)
	require.NoError(t, Verify(fn), "%s", fn)
	return ret
}

func countOps(fn *ir.Function, op ir.OpCode) int {
	n := 0
	for _, bb := range fn.Blocks() {
		for _, id := range bb.Ins {
			if fn.Instr(id).Op == op {
				n++
			}
		}
	}
	return n
}

func findOp(fn *ir.Function, op ir.OpCode) *ir.Instr {
	for _, bb := range fn.Blocks() {
		for _, id := range bb.Ins {
			if p := fn.Instr(id); p.Op == op {
				return p
			}
		}
	}
	return nil
}

func dumpResult(t *testing.T, res *Result) {
	t.Log(spew.Sdump(res.Actions))
}
