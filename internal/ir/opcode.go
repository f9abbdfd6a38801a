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

type OpCode uint8

const (
	OpInvalid OpCode = iota // invalid opcode
	OpAdd                   // x + y
	OpSub                   // x - y
	OpMul                   // x * y
	OpUDiv                  // u(x) / u(y)
	OpSDiv                  // s(x) / s(y)
	OpShl                   // x << y
	OpLShr                  // u(x) >> y
	OpAShr                  // s(x) >> y
	OpAnd                   // x & y
	OpOr                    // x | y
	OpXor                   // x ^ y
	OpICmp                  // x <pred> y -> i1
	OpAlloca                // new stack slot -> ptr
	OpLoad                  // *(ptr) -> x
	OpStore                 // x -> *(ptr)
	OpCall                  // call external functions
	OpPhi                   // φ(bb_i: x_i, ...)
	OpLandingPad            // exception handling target
	OpBr                    // goto bb
	OpCondBr                // if (x) goto bb_t else goto bb_f
	OpRet                   // return x
	OpUnreachable           // control never reaches here
)

var _OpNames = [...]string{
	OpInvalid:     "invalid",
	OpAdd:         "add",
	OpSub:         "sub",
	OpMul:         "mul",
	OpUDiv:        "udiv",
	OpSDiv:        "sdiv",
	OpShl:         "shl",
	OpLShr:        "lshr",
	OpAShr:        "ashr",
	OpAnd:         "and",
	OpOr:          "or",
	OpXor:         "xor",
	OpICmp:        "icmp",
	OpAlloca:      "alloca",
	OpLoad:        "load",
	OpStore:       "store",
	OpCall:        "call",
	OpPhi:         "phi",
	OpLandingPad:  "landingpad",
	OpBr:          "br",
	OpCondBr:      "condbr",
	OpRet:         "ret",
	OpUnreachable: "unreachable",
}

var _OpSymbols = [...]string{
	OpAdd:  "+",
	OpSub:  "-",
	OpMul:  "*",
	OpUDiv: "/",
	OpSDiv: "/",
	OpShl:  "<<",
	OpLShr: ">>",
	OpAShr: ">>",
	OpAnd:  "&",
	OpOr:   "|",
	OpXor:  "^",
}

func (self OpCode) String() string {
	if int(self) < len(_OpNames) {
		return _OpNames[self]
	} else {
		return "invalid"
	}
}

// Symbol returns the infix operator of a binary opcode.
func (self OpCode) Symbol() string {
	if self.IsBinary() {
		return _OpSymbols[self]
	} else {
		panic("ir: not a binary opcode: " + self.String())
	}
}

// IsBinary reports whether the opcode is a two-operand integer operation.
func (self OpCode) IsBinary() bool {
	return self >= OpAdd && self <= OpXor
}

func (self OpCode) IsTerminator() bool {
	return self >= OpBr && self <= OpUnreachable
}
