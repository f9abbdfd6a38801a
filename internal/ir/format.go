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
	"strings"
)

// Label returns the printable name of a block.
func (self *Function) Label(id BlockID) string {
	if bb := self.Block(id); bb.Name != "" {
		return bb.Name
	} else {
		return fmt.Sprintf("bb_%d", id)
	}
}

// ValueString returns the printable name of a value, without its type.
func (self *Function) ValueString(v Value) string {
	switch v.Kind {
	case KindConst:
		return v.C.String()
	case KindArg:
		if p := self.Params[v.Arg]; p.Name != "" {
			return "%" + p.Name
		} else {
			return fmt.Sprintf("%%arg%d", v.Arg)
		}
	case KindInstr:
		if p, ok := self.Lookup(v.Id); ok && p.Name != "" {
			return "%" + p.Name
		} else {
			return fmt.Sprintf("%%%d", v.Id)
		}
	default:
		return "<nil>"
	}
}

func (self *Function) typed(v Value) string {
	return self.TypeOf(v).String() + " " + self.ValueString(v)
}

// Format returns the textual form of an instruction.
func (self *Function) Format(id InstrID) string {
	p := self.Instr(id)
	r := self.ValueString(Ref(id))

	/* binary operators share the same syntax */
	if p.Op.IsBinary() {
		return fmt.Sprintf("%s = %s %s %s, %s", r, p.Op, p.Type, self.ValueString(p.Args[0]), self.ValueString(p.Args[1]))
	}

	/* other instructions */
	switch p.Op {
	case OpICmp:
		return fmt.Sprintf("%s = icmp %s %s, %s", r, p.Pred, self.typed(p.Args[0]), self.ValueString(p.Args[1]))
	case OpAlloca:
		return fmt.Sprintf("%s = alloca", r)
	case OpLoad:
		if p.Volatile {
			return fmt.Sprintf("%s = load volatile %s, %s", r, p.Type, self.typed(p.Args[0]))
		} else {
			return fmt.Sprintf("%s = load %s, %s", r, p.Type, self.typed(p.Args[0]))
		}
	case OpStore:
		return fmt.Sprintf("store %s, %s", self.typed(p.Args[0]), self.typed(p.Args[1]))
	case OpCall:
		return self.formatCall(r, p)
	case OpPhi:
		return self.formatPhi(r, p)
	case OpLandingPad:
		return fmt.Sprintf("%s = landingpad %s", r, p.Type)
	case OpBr:
		return "br " + self.Label(p.Targets[0])
	case OpCondBr:
		return fmt.Sprintf("condbr %s, %s, %s", self.typed(p.Args[0]), self.Label(p.Targets[0]), self.Label(p.Targets[1]))
	case OpRet:
		if len(p.Args) == 0 {
			return "ret void"
		} else {
			return "ret " + self.typed(p.Args[0])
		}
	case OpUnreachable:
		return "unreachable"
	default:
		panic(fmt.Sprintf("ir: invalid instruction opcode: %d", p.Op))
	}
}

func (self *Function) formatCall(r string, p *Instr) string {
	args := make([]string, 0, len(p.Args))
	attr := ""

	/* dump the arguments */
	for _, v := range p.Args {
		args = append(args, self.typed(v))
	}

	/* pure calls */
	if p.Pure {
		attr = " pure"
	}

	/* void calls have no results */
	if p.Type == Void {
		return fmt.Sprintf("call%s void @%s(%s)", attr, p.Callee, strings.Join(args, ", "))
	} else {
		return fmt.Sprintf("%s = call%s %s @%s(%s)", r, attr, p.Type, p.Callee, strings.Join(args, ", "))
	}
}

func (self *Function) formatPhi(r string, p *Instr) string {
	ret := make([]string, 0, len(p.Args))
	for i, v := range p.Args {
		ret = append(ret, fmt.Sprintf("[ %s, %s ]", self.ValueString(v), self.Label(p.From[i])))
	}
	return fmt.Sprintf("%s = phi %s %s", r, p.Type, strings.Join(ret, ", "))
}

func (self *Function) String() string {
	args := make([]string, 0, len(self.Params))
	body := make([]string, 0, self.Len()+len(self.blocks))

	/* function signature */
	for i := range self.Params {
		args = append(args, self.typed(Arg(i)))
	}

	/* dump every block */
	for _, bb := range self.Blocks() {
		body = append(body, self.Label(bb.Id)+":")
		for _, id := range bb.Ins {
			body = append(body, "    "+self.Format(id))
		}
	}

	/* join them together */
	return fmt.Sprintf(
		"define %s @%s(%s) {\n%s\n}",
		self.Ret,
		self.Name,
		strings.Join(args, ", "),
		strings.Join(body, "\n"),
	)
}
