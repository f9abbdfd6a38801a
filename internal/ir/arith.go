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
	"errors"
	"fmt"
)

var (
	ErrDivideByZero    = errors.New("integer divide by zero")
	ErrDivideOverflow  = errors.New("signed integer division overflow")
	ErrShiftOutOfRange = errors.New("shift amount out of range")
)

// EvalBinary evaluates a binary operation on two words of type t, with the
// wrap-around semantics of native fixed-width integers. The operands are
// truncated to the width of t before evaluation and so is the result.
func EvalBinary(op OpCode, t Type, x uint64, y uint64) (uint64, error) {
	m := t.Mask()
	x, y = x&m, y&m

	/* evaluate the operation */
	switch op {
	case OpAdd:
		return (x + y) & m, nil
	case OpSub:
		return (x - y) & m, nil
	case OpMul:
		return (x * y) & m, nil
	case OpAnd:
		return x & y, nil
	case OpOr:
		return x | y, nil
	case OpXor:
		return x ^ y, nil
	}

	/* division */
	switch op {
	case OpUDiv:
		if y == 0 {
			return 0, ErrDivideByZero
		} else {
			return x / y, nil
		}
	case OpSDiv:
		sx, sy := sext(x, t), sext(y, t)
		if sy == 0 {
			return 0, ErrDivideByZero
		} else if sy == -1 && x == (uint64(1)<<(t.Bits()-1)) {
			return 0, ErrDivideOverflow
		} else {
			return uint64(sx/sy) & m, nil
		}
	}

	/* shifts */
	if y >= uint64(t.Bits()) {
		switch op {
		case OpShl, OpLShr, OpAShr:
			return 0, ErrShiftOutOfRange
		}
	}

	/* shift the value */
	switch op {
	case OpShl:
		return (x << y) & m, nil
	case OpLShr:
		return x >> y, nil
	case OpAShr:
		return uint64(sext(x, t)>>y) & m, nil
	default:
		panic(fmt.Sprintf("ir: invalid binary operator: %s", op))
	}
}

// EvalCompare evaluates an integer comparison on two words of type t.
func EvalCompare(pred Predicate, t Type, x uint64, y uint64) bool {
	m := t.Mask()
	x, y = x&m, y&m
	sx, sy := sext(x, t), sext(y, t)

	/* compare the values */
	switch pred {
	case CmpEq:
		return x == y
	case CmpNe:
		return x != y
	case CmpSlt:
		return sx < sy
	case CmpSle:
		return sx <= sy
	case CmpSgt:
		return sx > sy
	case CmpSge:
		return sx >= sy
	case CmpUlt:
		return x < y
	case CmpUle:
		return x <= y
	case CmpUgt:
		return x > y
	case CmpUge:
		return x >= y
	default:
		panic(fmt.Sprintf("ir: invalid predicate: %d", pred))
	}
}

// FoldBinary evaluates op on two constants.
func FoldBinary(op OpCode, x Const, y Const) (Const, error) {
	if x.T != y.T {
		return Const{}, fmt.Errorf("ir: mismatched constant types: %s and %s", x.T, y.T)
	} else if v, err := EvalBinary(op, x.T, x.V, y.V); err != nil {
		return Const{}, err
	} else {
		return Const{T: x.T, V: v}, nil
	}
}
