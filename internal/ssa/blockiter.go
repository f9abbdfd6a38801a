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
	"github.com/cloudwego/ssaopt/internal/ir"
	"github.com/oleiade/lane"
)

// BlockIter walks the dominator tree in post-order, every block is yielded
// after all the blocks it dominates.
type BlockIter struct {
	t     *DominatorTree
	b     ir.BlockID
	s     *lane.Stack
	v     map[ir.BlockID]struct{}
	pre   map[ir.BlockID]int
	depth map[ir.BlockID]int
}

func newBlockIter(dt *DominatorTree) *BlockIter {
	it := &BlockIter{
		t:     dt,
		s:     lane.NewStack(),
		v:     make(map[ir.BlockID]struct{}),
		pre:   make(map[ir.BlockID]int),
		depth: make(map[ir.BlockID]int),
	}

	/* empty tree */
	if dt.Root == ir.NoBlock {
		return it
	}

	/* push the root block */
	it.visit(dt.Root, 0)
	return it
}

func (self *BlockIter) visit(bb ir.BlockID, depth int) {
	self.v[bb] = struct{}{}
	self.pre[bb] = len(self.pre)
	self.depth[bb] = depth
	self.s.Push(bb)
}

func (self *BlockIter) Next() bool {
	var tail bool
	var this ir.BlockID

	/* scan until the stack is empty */
	for !self.s.Empty() {
		tail = true
		this = self.s.Head().(ir.BlockID)

		/* add all the dominated blocks */
		for _, p := range self.t.DominatorOf[this] {
			if _, ok := self.v[p]; !ok {
				tail = false
				self.visit(p, self.depth[this]+1)
				break
			}
		}

		/* all the children are visited, pop the current node */
		if tail {
			self.b = self.s.Pop().(ir.BlockID)
			return true
		}
	}

	/* clear the block to indicate no more blocks */
	self.b = ir.NoBlock
	return false
}

func (self *BlockIter) Block() ir.BlockID {
	return self.b
}

func (self *BlockIter) ForEach(action func(bb ir.BlockID)) {
	for self.Next() {
		action(self.b)
	}
}

// PostOrder iterates the dominator tree, children before parents.
func (self *DominatorTree) PostOrder() *BlockIter {
	return newBlockIter(self)
}

// PreOrder returns the blocks of the dominator tree, parents before
// children.
func (self *DominatorTree) PreOrder() []ir.BlockID {
	nb := len(self.pre)
	ret := make([]ir.BlockID, nb)

	/* invert the numbering */
	for bb, i := range self.pre {
		ret[i] = bb
	}
	return ret
}
