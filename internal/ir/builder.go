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
	"fmt"
)

// Builder creates instructions at an insertion point: either at the end of
// a block, or right before an existing instruction.
type Builder struct {
	fn     *Function
	bb     BlockID
	before InstrID
	name   string
}

func NewBuilder(fn *Function) *Builder {
	return &Builder{fn: fn}
}

// At moves the insertion point to the end of bb.
func (self *Builder) At(bb *Block) *Builder {
	self.bb = bb.Id
	self.before = NoInstr
	return self
}

// Before moves the insertion point right before instruction id.
func (self *Builder) Before(id InstrID) *Builder {
	self.bb = self.fn.Instr(id).block
	self.before = id
	return self
}

// Named sets the name of the next instruction created by this builder.
func (self *Builder) Named(name string) *Builder {
	self.name = name
	return self
}

func (self *Builder) emit(p *Instr) InstrID {
	var at int
	var bb *Block

	/* must have an insertion point */
	if self.bb == NoBlock {
		panic("ir: builder has no insertion point")
	}

	/* find the insertion index */
	if bb = self.fn.Block(self.bb); self.before != NoInstr {
		at = self.fn.Pos(self.before).I
	} else if at = len(bb.Ins); at != 0 && self.fn.Instr(bb.Ins[at-1]).IsTerminator() {
		panic(fmt.Sprintf("ir: appending %s to terminated block bb_%d", p.Op, bb.Id))
	}

	/* consume the pending name */
	p.Name, self.name = self.name, ""
	return self.fn.insert(bb.Id, at, p)
}

// Binary creates a two-operand integer operation, the result has the type
// of the operands.
func (self *Builder) Binary(op OpCode, x Value, y Value) Value {
	if !op.IsBinary() {
		panic("ir: not a binary opcode: " + op.String())
	}
	return Ref(self.emit(&Instr{
		Op:   op,
		Type: self.fn.TypeOf(x),
		Args: []Value{x, y},
	}))
}

func (self *Builder) Add(x Value, y Value) Value  { return self.Binary(OpAdd, x, y) }
func (self *Builder) Sub(x Value, y Value) Value  { return self.Binary(OpSub, x, y) }
func (self *Builder) Mul(x Value, y Value) Value  { return self.Binary(OpMul, x, y) }
func (self *Builder) UDiv(x Value, y Value) Value { return self.Binary(OpUDiv, x, y) }
func (self *Builder) SDiv(x Value, y Value) Value { return self.Binary(OpSDiv, x, y) }
func (self *Builder) Shl(x Value, y Value) Value  { return self.Binary(OpShl, x, y) }
func (self *Builder) LShr(x Value, y Value) Value { return self.Binary(OpLShr, x, y) }
func (self *Builder) AShr(x Value, y Value) Value { return self.Binary(OpAShr, x, y) }
func (self *Builder) And(x Value, y Value) Value  { return self.Binary(OpAnd, x, y) }
func (self *Builder) Or(x Value, y Value) Value   { return self.Binary(OpOr, x, y) }
func (self *Builder) Xor(x Value, y Value) Value  { return self.Binary(OpXor, x, y) }

func (self *Builder) ICmp(pred Predicate, x Value, y Value) Value {
	return Ref(self.emit(&Instr{
		Op:   OpICmp,
		Type: I1,
		Args: []Value{x, y},
		Pred: pred,
	}))
}

func (self *Builder) Alloca() Value {
	return Ref(self.emit(&Instr{
		Op:   OpAlloca,
		Type: Ptr,
	}))
}

func (self *Builder) Load(t Type, mem Value, volatile bool) Value {
	return Ref(self.emit(&Instr{
		Op:       OpLoad,
		Type:     t,
		Args:     []Value{mem},
		Volatile: volatile,
	}))
}

func (self *Builder) Store(v Value, mem Value) InstrID {
	return self.emit(&Instr{
		Op:   OpStore,
		Type: Void,
		Args: []Value{v, mem},
	})
}

// Call creates a call to an external function. A pure call has no side
// effects and may be removed when its result is unused.
func (self *Builder) Call(fn string, ret Type, pure bool, args ...Value) Value {
	return Ref(self.emit(&Instr{
		Op:     OpCall,
		Type:   ret,
		Args:   args,
		Callee: fn,
		Pure:   pure,
	}))
}

// Phi creates an empty phi node, incoming values are added with
// Function.AddIncoming.
func (self *Builder) Phi(t Type) Value {
	return Ref(self.emit(&Instr{
		Op:   OpPhi,
		Type: t,
	}))
}

func (self *Builder) LandingPad(t Type) Value {
	return Ref(self.emit(&Instr{
		Op:   OpLandingPad,
		Type: t,
	}))
}

func (self *Builder) Br(to *Block) InstrID {
	return self.emit(&Instr{
		Op:      OpBr,
		Type:    Void,
		Targets: []BlockID{to.Id},
	})
}

func (self *Builder) CondBr(cond Value, t *Block, f *Block) InstrID {
	return self.emit(&Instr{
		Op:      OpCondBr,
		Type:    Void,
		Args:    []Value{cond},
		Targets: []BlockID{t.Id, f.Id},
	})
}

func (self *Builder) Ret(v Value) InstrID {
	return self.emit(&Instr{
		Op:   OpRet,
		Type: Void,
		Args: []Value{v},
	})
}

func (self *Builder) RetVoid() InstrID {
	return self.emit(&Instr{
		Op:   OpRet,
		Type: Void,
	})
}

func (self *Builder) Unreachable() InstrID {
	return self.emit(&Instr{
		Op:   OpUnreachable,
		Type: Void,
	})
}
