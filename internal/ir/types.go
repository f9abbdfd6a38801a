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
	"strconv"
)

// Type is the result type of a value. Integer types are identified by
// their bit width.
type Type uint8

const (
	Void Type = 0
	I1   Type = 1
	I8   Type = 8
	I16  Type = 16
	I32  Type = 32
	I64  Type = 64
	Ptr  Type = 0xff
)

func (self Type) IsInt() bool {
	switch self {
	case I1, I8, I16, I32, I64:
		return true
	default:
		return false
	}
}

// Bits returns the storage width of the type, pointers are 64-bit wide.
func (self Type) Bits() uint {
	switch self {
	case Void:
		return 0
	case Ptr:
		return 64
	default:
		return uint(self)
	}
}

// Mask returns the bit mask that truncates a 64-bit word to this type.
func (self Type) Mask() uint64 {
	if n := self.Bits(); n >= 64 {
		return ^uint64(0)
	} else {
		return (uint64(1) << n) - 1
	}
}

func (self Type) String() string {
	switch self {
	case Void:
		return "void"
	case Ptr:
		return "ptr"
	default:
		return "i" + strconv.Itoa(int(self))
	}
}

// Const is an immutable integer constant of a fixed width. Two constants
// with the same type and value are interchangeable.
type Const struct {
	T Type
	V uint64
}

// ConstInt creates a constant of type t, truncating v to the width of t.
func ConstInt(t Type, v int64) Const {
	if !t.IsInt() {
		panic("ir: constant of non-integer type " + t.String())
	}
	return Const{T: t, V: uint64(v) & t.Mask()}
}

// Uint returns the zero-extended value of the constant.
func (self Const) Uint() uint64 {
	return self.V
}

// Int returns the sign-extended value of the constant.
func (self Const) Int() int64 {
	return sext(self.V, self.T)
}

func (self Const) String() string {
	if self.T == I1 {
		if self.V != 0 {
			return "true"
		} else {
			return "false"
		}
	}
	return strconv.FormatInt(self.Int(), 10)
}

func sext(v uint64, t Type) int64 {
	n := 64 - t.Bits()
	return int64(v<<n) >> n
}

type ValueKind uint8

const (
	KindNone ValueKind = iota
	KindInstr
	KindConst
	KindArg
)

// Value is an operand: the result of an instruction, a constant or a
// function argument. Values are comparable, two values are identical iff
// they compare equal.
type Value struct {
	Kind ValueKind
	Id   InstrID
	Arg  int
	C    Const
}

// Ref returns a value referring to the result of instruction id.
func Ref(id InstrID) Value {
	return Value{Kind: KindInstr, Id: id}
}

// Imm returns a constant value.
func Imm(t Type, v int64) Value {
	return Value{Kind: KindConst, C: ConstInt(t, v)}
}

// Arg returns a value referring to the i-th function argument.
func Arg(i int) Value {
	return Value{Kind: KindArg, Arg: i}
}

func (self Value) IsInstr() bool {
	return self.Kind == KindInstr
}

// Const returns the constant held by the value, if any.
func (self Value) Const() (Const, bool) {
	return self.C, self.Kind == KindConst
}

// Key returns a string that uniquely identifies the value, suitable for
// use as part of a map key.
func (self Value) Key() string {
	switch self.Kind {
	case KindInstr:
		return fmt.Sprintf("%%%d", self.Id)
	case KindConst:
		return fmt.Sprintf("%s:%d", self.C.T, self.C.V)
	case KindArg:
		return fmt.Sprintf("#%d", self.Arg)
	default:
		return "?"
	}
}

type Predicate uint8

const (
	CmpEq Predicate = iota
	CmpNe
	CmpSlt
	CmpSle
	CmpSgt
	CmpSge
	CmpUlt
	CmpUle
	CmpUgt
	CmpUge
)

func (self Predicate) String() string {
	switch self {
	case CmpEq:
		return "eq"
	case CmpNe:
		return "ne"
	case CmpSlt:
		return "slt"
	case CmpSle:
		return "sle"
	case CmpSgt:
		return "sgt"
	case CmpSge:
		return "sge"
	case CmpUlt:
		return "ult"
	case CmpUle:
		return "ule"
	case CmpUgt:
		return "ugt"
	case CmpUge:
		return "uge"
	default:
		panic("unreachable")
	}
}
