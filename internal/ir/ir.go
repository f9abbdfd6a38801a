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

type (
	InstrID uint32
	BlockID uint32
)

const (
	NoInstr InstrID = 0
	NoBlock BlockID = 0
)

// Use is a (consumer, operand slot) pair.
type Use struct {
	User InstrID
	Slot int
}

type Param struct {
	Name string
	Type Type
}

// Instr is a single SSA instruction. The fields are read-only outside of
// this package, operands must be changed with Function.SetOperand so that
// the use lists stay consistent.
type Instr struct {
	Id       InstrID
	Op       OpCode
	Type     Type
	Args     []Value
	Pred     Predicate
	From     []BlockID
	Targets  []BlockID
	Callee   string
	Volatile bool
	Pure     bool
	Name     string
	block    BlockID
	uses     []Use
	dead     bool
}

// Block returns the block that contains this instruction.
func (self *Instr) Block() BlockID {
	return self.block
}

func (self *Instr) IsTerminator() bool {
	return self.Op.IsTerminator()
}

func (self *Instr) IsLandingPad() bool {
	return self.Op == OpLandingPad
}

// HasSideEffects reports whether removing the instruction could change the
// observable behavior of the program, regardless of its result being used.
func (self *Instr) HasSideEffects() bool {
	switch self.Op {
	case OpStore:
		return true
	case OpCall:
		return !self.Pure
	case OpLoad:
		return self.Volatile
	default:
		return false
	}
}

// AccessesMemory reports whether the instruction reads, writes or allocates
// memory, or calls out of the function.
func (self *Instr) AccessesMemory() bool {
	switch self.Op {
	case OpAlloca, OpLoad, OpStore, OpCall:
		return true
	default:
		return false
	}
}

// NumUses returns the number of remaining uses of the instruction's result.
func (self *Instr) NumUses() int {
	return len(self.uses)
}

type Block struct {
	Id   BlockID
	Name string
	Ins  []InstrID
}

// Function owns its blocks and instructions. Instructions live in an
// append-only arena indexed by InstrID, erased slots are tombstoned and
// never reused, so a stale handle is always detected.
type Function struct {
	Name   string
	Params []Param
	Ret    Type
	blocks []*Block
	instrs []*Instr
}

// NewFunction creates an empty function.
func NewFunction(name string, ret Type, params ...Param) *Function {
	return &Function{
		Name:   name,
		Ret:    ret,
		Params: params,
		instrs: []*Instr{nil},
		blocks: []*Block{nil},
	}
}

// AddBlock appends a new empty block to the function. The first block is
// the entry block.
func (self *Function) AddBlock(name string) *Block {
	bb := &Block{
		Id:   BlockID(len(self.blocks)),
		Name: name,
	}
	self.blocks = append(self.blocks, bb)
	return bb
}

// Blocks returns all the blocks in layout order.
func (self *Function) Blocks() []*Block {
	return self.blocks[1:]
}

// Entry returns the entry block, or nil if the function has no body.
func (self *Function) Entry() *Block {
	if len(self.blocks) < 2 {
		return nil
	} else {
		return self.blocks[1]
	}
}

func (self *Function) Block(id BlockID) *Block {
	if id == NoBlock || int(id) >= len(self.blocks) {
		panic(fmt.Sprintf("ir: invalid block handle %d in function %s", id, self.Name))
	}
	return self.blocks[id]
}

// MaxInstr returns an upper bound of all instruction IDs ever allocated.
func (self *Function) MaxInstr() InstrID {
	return InstrID(len(self.instrs) - 1)
}

// Lookup returns the live instruction with the given handle.
func (self *Function) Lookup(id InstrID) (*Instr, bool) {
	if id == NoInstr || int(id) >= len(self.instrs) {
		return nil, false
	} else if p := self.instrs[id]; p.dead {
		return nil, false
	} else {
		return p, true
	}
}

// Instr returns the live instruction with the given handle, it panics on
// stale or invalid handles.
func (self *Function) Instr(id InstrID) *Instr {
	if p, ok := self.Lookup(id); ok {
		return p
	} else {
		panic(fmt.Sprintf("ir: stale instruction handle %%%d in function %s", id, self.Name))
	}
}

// Len returns the number of live instructions.
func (self *Function) Len() int {
	n := 0
	for _, bb := range self.Blocks() {
		n += len(bb.Ins)
	}
	return n
}

// TypeOf returns the type of a value.
func (self *Function) TypeOf(v Value) Type {
	switch v.Kind {
	case KindInstr:
		return self.Instr(v.Id).Type
	case KindConst:
		return v.C.T
	case KindArg:
		return self.Params[v.Arg].Type
	default:
		panic("ir: type of an empty value")
	}
}

// Term returns the terminator of a block, or nil if the block is not
// terminated yet.
func (self *Function) Term(id BlockID) *Instr {
	bb := self.Block(id)
	if n := len(bb.Ins); n == 0 {
		return nil
	} else if p := self.Instr(bb.Ins[n-1]); !p.IsTerminator() {
		return nil
	} else {
		return p
	}
}

// Successors returns the successors of a block in terminator order.
func (self *Function) Successors(id BlockID) []BlockID {
	if p := self.Term(id); p == nil {
		return nil
	} else {
		return p.Targets
	}
}

// Predecessors computes the predecessors of every block. A block that
// branches twice to the same successor is listed once.
func (self *Function) Predecessors() map[BlockID][]BlockID {
	ret := make(map[BlockID][]BlockID, len(self.blocks))
	for _, bb := range self.Blocks() {
		seen := make(map[BlockID]bool, 2)
		for _, s := range self.Successors(bb.Id) {
			if !seen[s] {
				seen[s] = true
				ret[s] = append(ret[s], bb.Id)
			}
		}
	}
	return ret
}

// Uses returns a snapshot of the uses of an instruction's result.
func (self *Function) Uses(id InstrID) []Use {
	p := self.Instr(id)
	ret := make([]Use, len(p.uses))
	copy(ret, p.uses)
	return ret
}

// Pos returns the current position of an instruction.
func (self *Function) Pos(id InstrID) Pos {
	p := self.Instr(id)
	for i, v := range self.Block(p.block).Ins {
		if v == id {
			return Pos{B: p.block, I: i}
		}
	}
	panic(fmt.Sprintf("ir: instruction %%%d is not in its block", id))
}

// SetOperand redirects one operand slot of user to v, keeping both use
// lists up to date.
func (self *Function) SetOperand(user InstrID, slot int, v Value) {
	p := self.Instr(user)
	if slot < 0 || slot >= len(p.Args) {
		panic(fmt.Sprintf("ir: invalid operand slot %d of %%%d", slot, user))
	}

	/* detach from the old producer */
	if old := p.Args[slot]; old.IsInstr() {
		self.removeUse(old.Id, Use{User: user, Slot: slot})
	}

	/* attach to the new producer */
	if p.Args[slot] = v; v.IsInstr() {
		q := self.Instr(v.Id)
		q.uses = append(q.uses, Use{User: user, Slot: slot})
	}
}

// ReplaceAllUsesWith redirects every use of id to v.
func (self *Function) ReplaceAllUsesWith(id InstrID, v Value) {
	if v.IsInstr() && v.Id == id {
		panic(fmt.Sprintf("ir: replacing %%%d with itself", id))
	}
	for _, u := range self.Uses(id) {
		self.SetOperand(u.User, u.Slot, v)
	}
}

// Erase removes an instruction from its block. Erasing an instruction that
// still has uses would break the use-def chains, so it panics.
func (self *Function) Erase(id InstrID) {
	p := self.Instr(id)
	if len(p.uses) != 0 {
		panic(fmt.Sprintf("ir: erasing %s which still has %d use(s)", self.Format(id), len(p.uses)))
	}

	/* detach all the operands */
	for i, v := range p.Args {
		if v.IsInstr() {
			self.removeUse(v.Id, Use{User: id, Slot: i})
		}
	}

	/* remove from the owning block */
	bb := self.Block(p.block)
	for i, v := range bb.Ins {
		if v == id {
			bb.Ins = append(bb.Ins[:i], bb.Ins[i+1:]...)
			break
		}
	}

	/* tombstone the arena slot */
	p.dead = true
	p.uses = nil
}

// AddIncoming adds an incoming edge to a phi node.
func (self *Function) AddIncoming(phi InstrID, from BlockID, v Value) {
	p := self.Instr(phi)
	if p.Op != OpPhi {
		panic(fmt.Sprintf("ir: %%%d is not a phi node", phi))
	}
	p.From = append(p.From, from)
	p.Args = append(p.Args, Value{})
	self.SetOperand(phi, len(p.Args)-1, v)
}

func (self *Function) removeUse(id InstrID, u Use) {
	p := self.Instr(id)
	for i, v := range p.uses {
		if v == u {
			p.uses = append(p.uses[:i], p.uses[i+1:]...)
			return
		}
	}
	panic(fmt.Sprintf("ir: use %%%d.%d is missing from the use list of %%%d", u.User, u.Slot, id))
}

func (self *Function) insert(bb BlockID, at int, p *Instr) InstrID {
	blk := self.Block(bb)
	p.Id = InstrID(len(self.instrs))
	p.block = bb
	self.instrs = append(self.instrs, p)

	/* insert into the block */
	blk.Ins = append(blk.Ins, NoInstr)
	copy(blk.Ins[at+1:], blk.Ins[at:])
	blk.Ins[at] = p.Id

	/* register all the usages */
	for i, v := range p.Args {
		if v.IsInstr() {
			q := self.Instr(v.Id)
			q.uses = append(q.uses, Use{User: p.Id, Slot: i})
		}
	}
	return p.Id
}

// Clone returns a deep copy of the function, instruction and block handles
// stay valid in the copy.
func (self *Function) Clone() *Function {
	ret := &Function{
		Name:   self.Name,
		Ret:    self.Ret,
		Params: append([]Param(nil), self.Params...),
		blocks: make([]*Block, len(self.blocks)),
		instrs: make([]*Instr, len(self.instrs)),
	}

	/* copy all the blocks */
	for i, bb := range self.blocks {
		if bb != nil {
			ret.blocks[i] = &Block{Id: bb.Id, Name: bb.Name, Ins: append([]InstrID(nil), bb.Ins...)}
		}
	}

	/* copy all the instructions, including the tombstones */
	for i, p := range self.instrs {
		if p != nil {
			q := *p
			q.Args = append([]Value(nil), p.Args...)
			q.From = append([]BlockID(nil), p.From...)
			q.Targets = append([]BlockID(nil), p.Targets...)
			q.uses = append([]Use(nil), p.uses...)
			ret.instrs[i] = &q
		}
	}
	return ret
}
