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

/** This is an implementation of the Lengauer-Tarjan algorithm described in
 *  https://doi.org/10.1145%2F357062.357071
 */

package ssa

import (
	"github.com/cloudwego/ssaopt/internal/ir"
)

type _LtNode struct {
	semi     int
	node     ir.BlockID
	dom      *_LtNode
	label    *_LtNode
	parent   *_LtNode
	ancestor *_LtNode
	pred     []*_LtNode
	bucket   map[*_LtNode]struct{}
}

type _LengauerTarjan struct {
	fn     *ir.Function
	nodes  []*_LtNode
	vertex map[ir.BlockID]int
}

func newLengauerTarjan(fn *ir.Function) *_LengauerTarjan {
	return &_LengauerTarjan{
		fn:     fn,
		vertex: make(map[ir.BlockID]int),
	}
}

func (self *_LengauerTarjan) dfs(bb ir.BlockID) {
	i := len(self.nodes)
	self.vertex[bb] = i

	/* create a new node */
	p := &_LtNode{
		semi:   i,
		node:   bb,
		bucket: make(map[*_LtNode]struct{}),
	}

	/* add to node list */
	p.label = p
	self.nodes = append(self.nodes, p)

	/* traverse the successors */
	for _, w := range self.fn.Successors(bb) {
		idx, ok := self.vertex[w]

		/* not visited yet */
		if !ok {
			self.dfs(w)
			idx = self.vertex[w]
			self.nodes[idx].parent = p
		}

		/* add predecessors */
		q := self.nodes[idx]
		q.pred = append(q.pred, p)
	}
}

func (self *_LengauerTarjan) eval(p *_LtNode) *_LtNode {
	if p.ancestor == nil {
		return p
	} else {
		self.compress(p)
		return p.label
	}
}

func (self *_LengauerTarjan) link(p *_LtNode, q *_LtNode) {
	q.ancestor = p
}

func (self *_LengauerTarjan) compress(p *_LtNode) {
	if p.ancestor.ancestor != nil {
		self.compress(p.ancestor)
		if p.label.semi > p.ancestor.label.semi {
			p.label = p.ancestor.label
		}
		p.ancestor = p.ancestor.ancestor
	}
}

// DominatorTree is the dominator tree of the blocks reachable from the entry
// block of a function. It answers dominance queries between instructions and
// uses, and is read-only once built.
type DominatorTree struct {
	Root        ir.BlockID
	Depth       map[ir.BlockID]int
	DominatedBy map[ir.BlockID]ir.BlockID
	DominatorOf map[ir.BlockID][]ir.BlockID
	fn          *ir.Function
	pre         map[ir.BlockID]int
	post        map[ir.BlockID]int
}

// BuildDominatorTree computes the dominator tree of fn.
func BuildDominatorTree(fn *ir.Function) *DominatorTree {
	entry := fn.Entry()
	domby := make(map[ir.BlockID]ir.BlockID)
	domof := make(map[ir.BlockID][]ir.BlockID)

	/* empty functions have an empty tree */
	if entry == nil {
		return &DominatorTree{
			fn:          fn,
			Depth:       map[ir.BlockID]int{},
			DominatedBy: domby,
			DominatorOf: domof,
			pre:         map[ir.BlockID]int{},
			post:        map[ir.BlockID]int{},
		}
	}

	/* Step 1: Carry out a depth-first search of the problem graph. Number the vertices
	 * from 1 to n as they are reached during the search. Initialize the variables used
	 * in succeeding steps. */
	lt := newLengauerTarjan(fn)
	lt.dfs(entry.Id)

	/* perform Step 2 and Step 3 simultaneously */
	for i := len(lt.nodes) - 1; i > 0; i-- {
		p := lt.nodes[i]
		q := (*_LtNode)(nil)

		/* Step 2: Compute the semidominators of all vertices by applying Theorem 4.
		 * Carry out the computation vertex by vertex in decreasing order by number. */
		for _, v := range p.pred {
			q = lt.eval(v)
			p.semi = minint(p.semi, q.semi)
		}

		/* link the ancestor */
		lt.link(p.parent, p)
		lt.nodes[p.semi].bucket[p] = struct{}{}

		/* Step 3: Implicitly define the immediate dominator of each vertex by applying Corollary 1 */
		for v := range p.parent.bucket {
			if q = lt.eval(v); q.semi < v.semi {
				v.dom = q
			} else {
				v.dom = p.parent
			}
		}

		/* clear the bucket */
		for v := range p.parent.bucket {
			delete(p.parent.bucket, v)
		}
	}

	/* Step 4: Explicitly define the immediate dominator of each vertex, carrying out the
	 * computation vertex by vertex in increasing order by number. */
	for _, p := range lt.nodes[1:] {
		if p.dom.node != lt.nodes[p.semi].node {
			p.dom = p.dom.dom
		}
	}

	/* map the dominator relations, children are in DFS order */
	for _, p := range lt.nodes[1:] {
		domby[p.node] = p.dom.node
		domof[p.dom.node] = append(domof[p.dom.node], p.node)
	}

	/* construct the dominator tree */
	dt := &DominatorTree{
		fn:          fn,
		Root:        entry.Id,
		DominatorOf: domof,
		DominatedBy: domby,
	}

	/* number the tree for constant time queries */
	dt.number()
	return dt
}

func (self *DominatorTree) number() {
	nb := len(self.DominatedBy) + 1
	self.pre = make(map[ir.BlockID]int, nb)
	self.post = make(map[ir.BlockID]int, nb)
	self.Depth = make(map[ir.BlockID]int, nb)

	/* the iterator assigns pre-order numbers while descending */
	it := newBlockIter(self)
	for i := 0; it.Next(); i++ {
		self.post[it.Block()] = i
	}

	/* pre-order numbers and depths */
	for bb, i := range it.pre {
		self.pre[bb] = i
	}
	for bb, d := range it.depth {
		self.Depth[bb] = d
	}
}

// Reachable reports whether bb is reachable from the entry block.
func (self *DominatorTree) Reachable(bb ir.BlockID) bool {
	_, ok := self.pre[bb]
	return ok
}

// IDom returns the immediate dominator of bb, or ir.NoBlock for the root
// and unreachable blocks.
func (self *DominatorTree) IDom(bb ir.BlockID) ir.BlockID {
	return self.DominatedBy[bb]
}

// BlockDominates reports whether block a dominates block b. Every block
// dominates itself.
func (self *DominatorTree) BlockDominates(a ir.BlockID, b ir.BlockID) bool {
	if !self.Reachable(b) {
		return true
	} else if !self.Reachable(a) {
		return false
	} else {
		return self.pre[a] <= self.pre[b] && self.post[b] <= self.post[a]
	}
}

// Dominates reports whether the result of def is available at use. A use in
// a phi node happens at the end of the corresponding incoming block.
func (self *DominatorTree) Dominates(def ir.InstrID, use ir.Use) bool {
	p := self.fn.Instr(def)
	u := self.fn.Instr(use.User)

	/* phi uses happen on the incoming edge */
	if u.Op == ir.OpPhi {
		return self.BlockDominates(p.Block(), u.From[use.Slot])
	}

	/* uses in unreachable blocks are dominated by anything */
	if !self.Reachable(u.Block()) {
		return true
	}

	/* different blocks, check with the tree */
	if p.Block() != u.Block() {
		return self.BlockDominates(p.Block(), u.Block())
	}

	/* same block, the definition must come first */
	return self.fn.Pos(def).IsPriorTo(self.fn.Pos(use.User))
}
