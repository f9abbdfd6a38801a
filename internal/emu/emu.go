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

package emu

import (
	"fmt"

	"github.com/cloudwego/ssaopt/internal/ir"
)

// DefaultStepLimit is the number of instructions an emulator executes before
// giving up.
const DefaultStepLimit = 1 << 20

// Emulator interprets one IR function with fixed-width integer semantics.
// Pointers are indices into a word-addressed memory, address 0 is null.
type Emulator struct {
	Fn    *ir.Function
	Limit int
	Steps int
	Calls map[string]CallProxy
	mem   []uint64
	args  []uint64
	vals  []uint64
	bb    ir.BlockID
	pc    int
	rv    uint64
	halt  bool
}

var dispatchTab = [...]func(e *Emulator, p *ir.Instr) error{
	ir.OpAdd:         (*Emulator).emu_binary,
	ir.OpSub:         (*Emulator).emu_binary,
	ir.OpMul:         (*Emulator).emu_binary,
	ir.OpUDiv:        (*Emulator).emu_binary,
	ir.OpSDiv:        (*Emulator).emu_binary,
	ir.OpShl:         (*Emulator).emu_binary,
	ir.OpLShr:        (*Emulator).emu_binary,
	ir.OpAShr:        (*Emulator).emu_binary,
	ir.OpAnd:         (*Emulator).emu_binary,
	ir.OpOr:          (*Emulator).emu_binary,
	ir.OpXor:         (*Emulator).emu_binary,
	ir.OpICmp:        (*Emulator).emu_icmp,
	ir.OpAlloca:      (*Emulator).emu_alloca,
	ir.OpLoad:        (*Emulator).emu_load,
	ir.OpStore:       (*Emulator).emu_store,
	ir.OpCall:        (*Emulator).emu_call,
	ir.OpPhi:         (*Emulator).emu_phi,
	ir.OpLandingPad:  (*Emulator).emu_landingpad,
	ir.OpBr:          (*Emulator).emu_br,
	ir.OpCondBr:      (*Emulator).emu_condbr,
	ir.OpRet:         (*Emulator).emu_ret,
	ir.OpUnreachable: (*Emulator).emu_unreachable,
}

func (self *Emulator) value(v ir.Value) uint64 {
	switch v.Kind {
	case ir.KindConst:
		return v.C.Uint()
	case ir.KindArg:
		return self.args[v.Arg]
	case ir.KindInstr:
		return self.vals[v.Id]
	default:
		panic("emu: empty operand")
	}
}

func (self *Emulator) set(p *ir.Instr, v uint64) {
	self.vals[p.Id] = v & p.Type.Mask()
}

func (self *Emulator) jump(to ir.BlockID) {
	self.bb = to
	self.pc = 0
}

func (self *Emulator) emu_binary(p *ir.Instr) error {
	if v, err := ir.EvalBinary(p.Op, p.Type, self.value(p.Args[0]), self.value(p.Args[1])); err != nil {
		return err
	} else {
		self.set(p, v)
		return nil
	}
}

func (self *Emulator) emu_icmp(p *ir.Instr) error {
	t := self.Fn.TypeOf(p.Args[0])
	x := self.value(p.Args[0])
	y := self.value(p.Args[1])

	/* the result is an i1 */
	if ir.EvalCompare(p.Pred, t, x, y) {
		self.set(p, 1)
	} else {
		self.set(p, 0)
	}
	return nil
}

func (self *Emulator) emu_alloca(p *ir.Instr) error {
	self.mem = append(self.mem, 0)
	self.set(p, uint64(len(self.mem)-1))
	return nil
}

func (self *Emulator) address(v ir.Value) (int, error) {
	if addr := self.value(v); addr == 0 || addr >= uint64(len(self.mem)) {
		return 0, AddressError(addr)
	} else {
		return int(addr), nil
	}
}

func (self *Emulator) emu_load(p *ir.Instr) error {
	if addr, err := self.address(p.Args[0]); err != nil {
		return err
	} else {
		self.set(p, self.mem[addr])
		return nil
	}
}

func (self *Emulator) emu_store(p *ir.Instr) error {
	if addr, err := self.address(p.Args[1]); err != nil {
		return err
	} else {
		self.mem[addr] = self.value(p.Args[0])
		return nil
	}
}

func (self *Emulator) emu_call(p *ir.Instr) error {
	proxy := self.Calls[p.Callee]
	args := make([]uint64, len(p.Args))

	/* check for the call target */
	if proxy == nil {
		return CallError{Callee: p.Callee}
	}

	/* evaluate all the arguments */
	for i, v := range p.Args {
		args[i] = self.value(v)
	}

	/* invoke the proxy */
	if rv, err := proxy(CallContext{Callee: p.Callee, Args: args}); err != nil {
		return CallError{Callee: p.Callee, Err: err}
	} else {
		self.set(p, rv)
		return nil
	}
}

// emu_phi is only reached when control falls into a block without going
// through a branch, which means the entry block.
func (self *Emulator) emu_phi(p *ir.Instr) error {
	return fmt.Errorf("emu: phi node %s in a block without predecessor", self.Fn.Format(p.Id))
}

func (self *Emulator) emu_landingpad(p *ir.Instr) error {
	self.set(p, 0)
	return nil
}

func (self *Emulator) emu_br(p *ir.Instr) error {
	return self.branch(p.Targets[0])
}

func (self *Emulator) emu_condbr(p *ir.Instr) error {
	if self.value(p.Args[0]) != 0 {
		return self.branch(p.Targets[0])
	} else {
		return self.branch(p.Targets[1])
	}
}

func (self *Emulator) emu_ret(p *ir.Instr) error {
	if self.halt = true; len(p.Args) != 0 {
		self.rv = self.value(p.Args[0])
	}
	return nil
}

func (self *Emulator) emu_unreachable(_ *ir.Instr) error {
	return ErrUnreachable
}

// branch transfers control to a block, resolving all of its leading phi
// nodes at once with the values flowing from the current block.
func (self *Emulator) branch(to ir.BlockID) error {
	var ids []ir.InstrID
	var vals []uint64

	/* evaluate every phi node before assigning any of them */
	for _, id := range self.Fn.Block(to).Ins {
		p := self.Fn.Instr(id)
		if p.Op != ir.OpPhi {
			break
		}

		/* find the incoming value */
		found := false
		for i, bb := range p.From {
			if bb == self.bb {
				found = true
				ids = append(ids, id)
				vals = append(vals, self.value(p.Args[i]))
				break
			}
		}

		/* every edge must be covered */
		if !found {
			return fmt.Errorf("emu: %s has no incoming value from %s", self.Fn.Format(id), self.Fn.Label(self.bb))
		}
	}

	/* assign the phi nodes and skip over them */
	for i, id := range ids {
		self.set(self.Fn.Instr(id), vals[i])
	}

	/* jump to the target block */
	self.jump(to)
	self.pc = len(ids)
	return nil
}

// Run executes the function with the given arguments and returns the
// returned value, or 0 for void functions.
func (self *Emulator) Run(args ...uint64) (uint64, error) {
	var ip *ir.Instr
	var fn func(e *Emulator, p *ir.Instr) error

	/* check the arguments */
	if len(args) != len(self.Fn.Params) {
		return 0, fmt.Errorf("emu: %s expects %d arguments, got %d", self.Fn.Name, len(self.Fn.Params), len(args))
	}

	/* functions without a body cannot run */
	if self.Fn.Entry() == nil {
		return 0, fmt.Errorf("emu: function %s has no body", self.Fn.Name)
	}

	/* reset the machine state */
	self.reset()
	self.jump(self.Fn.Entry().Id)

	/* truncate the arguments to their types */
	for i, v := range args {
		self.args[i] = v & self.Fn.Params[i].Type.Mask()
	}

	/* run until the function returns */
	for !self.halt {
		bb := self.Fn.Block(self.bb)

		/* falling off the end of a block */
		if self.pc >= len(bb.Ins) {
			return 0, fmt.Errorf("emu: control falls off the end of %s", self.Fn.Label(self.bb))
		}

		/* check for the step limit */
		if self.Steps++; self.Limit > 0 && self.Steps > self.Limit {
			return 0, ErrStepLimit
		}

		/* fetch and decode the instruction */
		ip = self.Fn.Instr(bb.Ins[self.pc])
		fn = dispatchTab[ip.Op]

		/* move cold path outside of the loop */
		if fn == nil {
			return 0, fmt.Errorf("emu: illegal OpCode: %#02x", uint8(ip.Op))
		}

		/* execute and advance the PC, branches will reset it */
		pos := ir.Pos{B: self.bb, I: self.pc}
		self.pc++

		/* check for execution errors */
		if err := fn(self, ip); err != nil {
			return 0, ExecError{Pos: pos, Instr: self.Fn.Format(ip.Id), Err: err}
		}
	}

	/* mask to the return type */
	return self.rv & self.Fn.Ret.Mask(), nil
}

func (self *Emulator) reset() {
	self.Steps = 0
	self.mem = append(self.mem[:0], 0)
	self.args = make([]uint64, len(self.Fn.Params))
	self.vals = make([]uint64, self.Fn.MaxInstr()+1)
	self.bb = ir.NoBlock
	self.rv = 0
	self.halt = false
}

// Run interprets fn once with the default step limit and no call proxies
// other than the registered global ones.
func Run(fn *ir.Function, args ...uint64) (uint64, error) {
	e := New(fn)
	defer e.Free()
	return e.Run(args...)
}
