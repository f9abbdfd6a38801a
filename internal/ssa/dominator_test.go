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

	"github.com/brianvoe/gofakeit/v6"
	"github.com/cloudwego/ssaopt/internal/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/graph/flow"
	"gonum.org/v1/gonum/graph/simple"
)

// randomCFG builds a function with nb blocks and random control flow,
// every block contains one value computation and a terminator.
func randomCFG(fk *gofakeit.Faker, nb int) *ir.Function {
	fn := ir.NewFunction("cfg", ir.Void, ir.Param{Name: "c", Type: ir.I1})
	bs := make([]*ir.Block, nb)
	for i := range bs {
		bs[i] = fn.AddBlock("")
	}
	b := ir.NewBuilder(fn)
	for _, bb := range bs {
		b.At(bb).Xor(ir.Arg(0), ir.Imm(ir.I1, 1))
		switch fk.Number(0, 4) {
		case 0:
			b.RetVoid()
		case 1, 2:
			b.Br(bs[fk.Number(0, nb-1)])
		default:
			b.CondBr(ir.Arg(0), bs[fk.Number(0, nb-1)], bs[fk.Number(0, nb-1)])
		}
	}
	return fn
}

func toGonum(fn *ir.Function) *simple.DirectedGraph {
	g := simple.NewDirectedGraph()
	for _, bb := range fn.Blocks() {
		g.AddNode(simple.Node(bb.Id))
	}
	for _, bb := range fn.Blocks() {
		for _, s := range fn.Successors(bb.Id) {
			if s != bb.Id {
				g.SetEdge(g.NewEdge(simple.Node(bb.Id), simple.Node(s)))
			}
		}
	}
	return g
}

func TestDominator_AgainstGonum(t *testing.T) {
	fk := gofakeit.New(20221019)
	for n := 0; n < 200; n++ {
		fn := randomCFG(fk, fk.Number(1, 16))
		dt := BuildDominatorTree(fn)
		live, ord := Reachability(fn)
		ref := flow.Dominators(simple.Node(fn.Entry().Id), toGonum(fn))
		require.Len(t, ord, len(live))
		for _, bb := range fn.Blocks() {
			require.Equal(t, live[bb.Id], dt.Reachable(bb.Id), "bb_%d\n%s", bb.Id, fn)
			if !live[bb.Id] {
				continue
			}
			if idom := ref.DominatorOf(int64(bb.Id)); idom == nil {
				require.Equal(t, ir.NoBlock, dt.IDom(bb.Id), "bb_%d\n%s", bb.Id, fn)
			} else {
				require.Equal(t, ir.BlockID(idom.ID()), dt.IDom(bb.Id), "bb_%d\n%s", bb.Id, fn)
			}
		}
		for _, x := range fn.Blocks() {
			for _, y := range fn.Blocks() {
				if live[x.Id] && live[y.Id] {
					require.Equal(t, walkDominates(dt, x.Id, y.Id), dt.BlockDominates(x.Id, y.Id))
				}
			}
		}
	}
}

func walkDominates(dt *DominatorTree, a ir.BlockID, b ir.BlockID) bool {
	for b != ir.NoBlock {
		if a == b {
			return true
		}
		b = dt.IDom(b)
	}
	return false
}

// buildDiamond builds:
//
//	entry: x = a + b; condbr c, then, else
//	then:  y = a * b; br join
//	else:  z = a - b; br join
//	join:  p = phi [y, then], [z, else]; ret p
//	dead:  w = a + 1; ret w
//
// The children of entry in the dominator tree are then, join and else, in
// depth-first order.
func buildDiamond() (*ir.Function, map[string]ir.InstrID) {
	a := ir.Arg(0)
	b := ir.Arg(1)
	fn := ir.NewFunction("diamond", ir.I32, ir.Param{Name: "a", Type: ir.I32}, ir.Param{Name: "b", Type: ir.I32}, ir.Param{Name: "c", Type: ir.I1})
	entry := fn.AddBlock("entry")
	then := fn.AddBlock("then")
	other := fn.AddBlock("else")
	join := fn.AddBlock("join")
	dead := fn.AddBlock("dead")
	bb := ir.NewBuilder(fn)
	x := bb.At(entry).Add(a, b)
	bb.CondBr(ir.Arg(2), then, other)
	y := bb.At(then).Mul(a, b)
	bb.Br(join)
	z := bb.At(other).Sub(a, b)
	bb.Br(join)
	p := bb.At(join).Phi(ir.I32)
	fn.AddIncoming(p.Id, then.Id, y)
	fn.AddIncoming(p.Id, other.Id, z)
	r := bb.Ret(p)
	w := bb.At(dead).Add(a, ir.Imm(ir.I32, 1))
	bb.Ret(w)
	return fn, map[string]ir.InstrID{"x": x.Id, "y": y.Id, "z": z.Id, "p": p.Id, "r": r, "w": w.Id}
}

func TestDominator_Diamond(t *testing.T) {
	fn, ids := buildDiamond()
	dt := BuildDominatorTree(fn)
	require.Equal(t, ir.BlockID(1), dt.Root)
	require.Equal(t, ir.BlockID(1), dt.IDom(2))
	require.Equal(t, ir.BlockID(1), dt.IDom(3))
	require.Equal(t, ir.BlockID(1), dt.IDom(4))
	require.False(t, dt.Reachable(5))
	require.Equal(t, 1, dt.Depth[4])
	require.Equal(t, []ir.BlockID{1, 2, 4, 3}, dt.PreOrder())

	/* post-order visits children before the parent */
	var post []ir.BlockID
	dt.PostOrder().ForEach(func(bb ir.BlockID) { post = append(post, bb) })
	require.Equal(t, []ir.BlockID{2, 4, 3, 1}, post)

	/* the entry block dominates everything */
	assert.True(t, dt.Dominates(ids["x"], ir.Use{User: ids["r"]}))
	assert.True(t, dt.Dominates(ids["x"], ir.Use{User: ids["w"]}))
	assert.False(t, dt.Dominates(ids["y"], ir.Use{User: ids["r"]}))

	/* phi uses happen at the end of the incoming block */
	assert.True(t, dt.Dominates(ids["y"], ir.Use{User: ids["p"], Slot: 0}))
	assert.True(t, dt.Dominates(ids["z"], ir.Use{User: ids["p"], Slot: 1}))
	assert.False(t, dt.Dominates(ids["y"], ir.Use{User: ids["p"], Slot: 1}))

	/* definitions in unreachable blocks dominate nothing reachable */
	assert.False(t, dt.Dominates(ids["w"], ir.Use{User: ids["r"]}))
}

func TestDominator_SameBlock(t *testing.T) {
	fn, b := newFunc(ir.I32)
	x := b.Add(ir.Arg(0), ir.Imm(ir.I32, 1))
	y := b.Add(x, x)
	r := b.Ret(y)
	dt := BuildDominatorTree(fn)
	require.True(t, dt.Dominates(x.Id, ir.Use{User: y.Id}))
	require.True(t, dt.Dominates(y.Id, ir.Use{User: r}))
	require.False(t, dt.Dominates(y.Id, ir.Use{User: x.Id}))
	require.False(t, dt.Dominates(x.Id, ir.Use{User: x.Id}))
}

func TestDominator_Empty(t *testing.T) {
	dt := BuildDominatorTree(ir.NewFunction("empty", ir.Void))
	require.Equal(t, ir.NoBlock, dt.Root)
	require.Empty(t, dt.PreOrder())
	require.False(t, dt.PostOrder().Next())
}
