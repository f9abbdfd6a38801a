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
	"fmt"

	"github.com/cloudwego/ssaopt/internal/ir"
	"go.uber.org/multierr"
)

type _Verifier struct {
	fn   *ir.Function
	dt   *DominatorTree
	pred map[ir.BlockID][]ir.BlockID
	live map[ir.BlockID]bool
	err  error
}

func (self *_Verifier) fail(pos ir.Pos, format string, args ...interface{}) {
	self.err = multierr.Append(self.err, &VerifyError{
		Pos:    pos,
		Reason: fmt.Sprintf(format, args...),
	})
}

func (self *_Verifier) block(bb *ir.Block) {
	body := true
	term := len(bb.Ins) - 1

	/* every block must be terminated */
	if term < 0 {
		self.fail(ir.Pos{B: bb.Id}, "empty basic block")
		return
	}

	/* check every instruction */
	for i, id := range bb.Ins {
		pos := ir.Pos{B: bb.Id, I: i}
		p, ok := self.fn.Lookup(id)

		/* the instruction must be alive */
		if !ok {
			self.fail(pos, "stale instruction %%%d", id)
			continue
		}

		/* must be owned by this block */
		if p.Block() != bb.Id {
			self.fail(pos, "instruction %%%d is owned by bb_%d", id, p.Block())
		}

		/* terminators must be at the end, and only at the end */
		if p.IsTerminator() != (i == term) {
			if i == term {
				self.fail(pos, "block does not end with a terminator")
			} else {
				self.fail(pos, "terminator in the middle of a block: %s", self.show(p))
			}
		}

		/* Phi nodes must be grouped at the block head */
		if p.Op != ir.OpPhi {
			body = false
		} else if !body {
			self.fail(pos, "phi node after non-phi instructions: %s", self.show(p))
		}

		/* check the instruction itself */
		self.operands(pos, p)
		self.uses(pos, p)
		self.types(pos, p)
	}
}

func (self *_Verifier) operands(pos ir.Pos, p *ir.Instr) {
	for i, v := range p.Args {
		switch v.Kind {
		case ir.KindNone:
			self.fail(pos, "empty operand #%d", i)
		case ir.KindArg:
			if v.Arg < 0 || v.Arg >= len(self.fn.Params) {
				self.fail(pos, "invalid argument index %d", v.Arg)
			}
		case ir.KindInstr:
			if _, ok := self.fn.Lookup(v.Id); !ok {
				self.fail(pos, "operand #%d refers to a deleted instruction %%%d", i, v.Id)
			} else if p.Op == ir.OpPhi && len(p.From) != len(p.Args) {
				continue
			} else if !self.dt.Dominates(v.Id, ir.Use{User: p.Id, Slot: i}) {
				self.fail(pos, "operand #%d is not dominated by its definition: %s", i, self.fn.ValueString(v))
			}
		}
	}

	/* branch targets must exist */
	for _, bb := range p.Targets {
		if bb == ir.NoBlock || int(bb) > len(self.fn.Blocks()) {
			self.fail(pos, "invalid branch target %d", bb)
		}
	}
}

func (self *_Verifier) uses(pos ir.Pos, p *ir.Instr) {
	for _, u := range self.fn.Uses(p.Id) {
		if q, ok := self.fn.Lookup(u.User); !ok {
			self.fail(pos, "used by a deleted instruction %%%d", u.User)
		} else if u.Slot >= len(q.Args) || q.Args[u.Slot] != ir.Ref(p.Id) {
			self.fail(pos, "use list is out of sync with operand #%d of %%%d", u.Slot, u.User)
		}
	}
}

func (self *_Verifier) types(pos ir.Pos, p *ir.Instr) {
	switch {
	case p.Op.IsBinary():
		if len(p.Args) != 2 {
			self.fail(pos, "binary operator with %d operands", len(p.Args))
		} else if self.typeof(p.Args[0]) != p.Type || self.typeof(p.Args[1]) != p.Type {
			self.fail(pos, "mismatched operand types: %s", self.show(p))
		}
	case p.Op == ir.OpICmp:
		if len(p.Args) != 2 || self.typeof(p.Args[0]) != self.typeof(p.Args[1]) {
			self.fail(pos, "mismatched comparison: %s", self.show(p))
		}
	case p.Op == ir.OpCondBr:
		if len(p.Args) != 1 || self.typeof(p.Args[0]) != ir.I1 {
			self.fail(pos, "branch condition must be i1: %s", self.show(p))
		}
	case p.Op == ir.OpRet:
		if self.fn.Ret == ir.Void && len(p.Args) != 0 {
			self.fail(pos, "returning a value from a void function")
		} else if self.fn.Ret != ir.Void && (len(p.Args) != 1 || self.typeof(p.Args[0]) != self.fn.Ret) {
			self.fail(pos, "return type mismatch: %s", self.show(p))
		}
	case p.Op == ir.OpPhi:
		self.phi(pos, p)
	}
}

func (self *_Verifier) phi(pos ir.Pos, p *ir.Instr) {
	if len(p.From) != len(p.Args) {
		self.fail(pos, "phi node has %d values but %d incoming blocks", len(p.Args), len(p.From))
		return
	}

	/* all the values must have the same type */
	for i, v := range p.Args {
		if self.typeof(v) != p.Type {
			self.fail(pos, "mismatched phi operand #%d: %s", i, self.show(p))
		}
	}

	/* every incoming block must be a predecessor */
	for _, bb := range p.From {
		found := false
		for _, v := range self.pred[p.Block()] {
			found = found || v == bb
		}
		if !found {
			self.fail(pos, "phi node refers to bb_%d which is not a predecessor", bb)
		}
	}

	/* every reachable predecessor must have an incoming value */
	for _, bb := range self.pred[p.Block()] {
		found := false
		for _, v := range p.From {
			found = found || v == bb
		}
		if self.live[bb] && !found {
			self.fail(pos, "phi node has no incoming value from bb_%d", bb)
		}
	}
}

// show formats an instruction without touching its operands, which may
// be broken.
func (self *_Verifier) show(p *ir.Instr) string {
	return fmt.Sprintf("%s = %s %s", self.fn.ValueString(ir.Ref(p.Id)), p.Op, p.Type)
}

func (self *_Verifier) typeof(v ir.Value) ir.Type {
	if v.IsInstr() {
		if _, ok := self.fn.Lookup(v.Id); !ok {
			return ir.Void
		}
	}
	if v.Kind == ir.KindArg && (v.Arg < 0 || v.Arg >= len(self.fn.Params)) {
		return ir.Void
	}
	return self.fn.TypeOf(v)
}

// Verify checks the structural and SSA invariants of fn. All the violations
// found are combined into the returned error.
func Verify(fn *ir.Function) error {
	vf := &_Verifier{
		fn:   fn,
		dt:   BuildDominatorTree(fn),
		pred: fn.Predecessors(),
	}

	/* reachable blocks */
	vf.live, _ = Reachability(fn)

	/* functions must have a body */
	if fn.Entry() == nil {
		return &VerifyError{Reason: "function " + fn.Name + " has no blocks"}
	}

	/* check every block */
	for _, bb := range fn.Blocks() {
		vf.block(bb)
	}
	return vf.err
}
