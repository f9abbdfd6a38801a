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
	"math/bits"

	"github.com/cloudwego/ssaopt/internal/ir"
	"go.uber.org/zap"
)

type _Operands struct {
	x  ir.Value
	y  ir.Value
	cx ir.Const
	cy ir.Const
	kx bool
	ky bool
}

// _Rewrite describes how to replace one instruction: either with an
// existing value, or with a new shift of an existing value.
type _Rewrite struct {
	kind   ActionKind
	with   ir.Value
	shift  ir.OpCode
	amount int
	before string
	after  string
}

func identity(v ir.Value, before string) *_Rewrite {
	return &_Rewrite{
		kind:   ActReduce,
		with:   v,
		before: before,
		after:  "x",
	}
}

func shifted(op ir.OpCode, v ir.Value, n int, before string) *_Rewrite {
	return &_Rewrite{
		kind:   ActReduce,
		with:   v,
		shift:  op,
		amount: n,
		before: before,
		after:  fmt.Sprintf("x%s%d", op.Symbol(), n),
	}
}

// log2 returns k if c is 2^k for some k >= 0, the constant is taken as a
// signed value so only positive powers of two qualify.
func log2(c ir.Const) (int, bool) {
	if v := c.Int(); v <= 0 || v&(v-1) != 0 {
		return 0, false
	} else {
		return bits.TrailingZeros64(uint64(v)), true
	}
}

// Mul: 1*x, x*1 -> x; 2^k*x, x*2^k -> x<<k
func reduceMul(o _Operands, _ ir.OpCode) *_Rewrite {
	var c ir.Const
	var v ir.Value
	var f string

	/* multiplication commutes, either side may be the constant */
	if o.kx {
		c, v, f = o.cx, o.y, "%d*x"
	} else {
		c, v, f = o.cy, o.x, "x*%d"
	}

	/* the identity is cheaper than a shift by zero */
	if c.Int() == 1 {
		return identity(v, fmt.Sprintf(f, c.Int()))
	} else if n, ok := log2(c); ok {
		return shifted(ir.OpShl, v, n, fmt.Sprintf(f, c.Int()))
	} else {
		return nil
	}
}

// UDiv, SDiv: x/1 -> x; x/2^k -> x>>k
//
// Unsigned division lowers to lshr, an arithmetic shift would be wrong for
// dividends with the top bit set.
func reduceDiv(o _Operands, op ir.OpCode) *_Rewrite {
	sh := ir.OpAShr
	bv := fmt.Sprintf("x/%d", o.cy.Int())

	/* division does not commute, only constant divisors are reduced */
	if !o.ky {
		return nil
	}

	/* unsigned division shifts in zeros */
	if op == ir.OpUDiv {
		sh = ir.OpLShr
	}

	/* check for the divisor */
	if o.cy.Int() == 1 {
		return identity(o.x, bv)
	} else if n, ok := log2(o.cy); ok {
		return shifted(sh, o.x, n, bv)
	} else {
		return nil
	}
}

// Add: 0+x, x+0 -> x
func reduceAdd(o _Operands, _ ir.OpCode) *_Rewrite {
	if o.kx && o.cx.Uint() == 0 {
		return identity(o.y, "0+x")
	} else if o.ky && o.cy.Uint() == 0 {
		return identity(o.x, "x+0")
	} else {
		return nil
	}
}

// Sub: x-0 -> x
func reduceSub(o _Operands, _ ir.OpCode) *_Rewrite {
	if o.ky && o.cy.Uint() == 0 {
		return identity(o.x, "x-0")
	} else {
		return nil
	}
}

var _ReduceRules = map[ir.OpCode]func(_Operands, ir.OpCode) *_Rewrite{
	ir.OpAdd:  reduceAdd,
	ir.OpSub:  reduceSub,
	ir.OpMul:  reduceMul,
	ir.OpUDiv: reduceDiv,
	ir.OpSDiv: reduceDiv,
}

// SRCF performs Strength Reduction and Constant Folding on the integer
// arithmetic instructions (add, sub, mul, udiv, sdiv).
type SRCF struct{}

func (SRCF) operands(p *ir.Instr) (o _Operands, ok bool) {
	if len(p.Args) != 2 || !p.Type.IsInt() {
		return o, false
	}
	o.x, o.y = p.Args[0], p.Args[1]
	o.cx, o.kx = o.x.Const()
	o.cy, o.ky = o.y.Const()
	return o, true
}

// fold evaluates an instruction with two constant operands.
func (SRCF) fold(p *ir.Instr, o _Operands) (*_Rewrite, error) {
	v, err := ir.FoldBinary(p.Op, o.cx, o.cy)
	if err != nil {
		return nil, err
	}
	return &_Rewrite{
		kind:   ActFold,
		with:   ir.Value{Kind: ir.KindConst, C: v},
		before: fmt.Sprintf("%s%s%s", o.cx, p.Op.Symbol(), o.cy),
		after:  v.String(),
	}, nil
}

// rewrite picks the first applicable rule, in order: folding, then the
// opcode specific reductions. A nil rewrite means no rule applies.
func (self SRCF) rewrite(p *ir.Instr) (*_Rewrite, error) {
	o, ok := self.operands(p)
	rule := _ReduceRules[p.Op]

	/* not a supported binary operator */
	if !ok || rule == nil {
		return nil, nil
	}

	/* both operands are constant */
	if o.kx && o.ky {
		return self.fold(p, o)
	}

	/* exactly one operand is constant */
	if !o.kx && !o.ky {
		return nil, nil
	}

	/* unreachable code may refer to itself, such as "%x = add %x, 0" */
	if rw := rule(o, p.Op); rw == nil || rw.with == ir.Ref(p.Id) {
		return nil, nil
	} else {
		return rw, nil
	}
}

// apply performs the rewrite on instruction id, and returns the value that
// replaced it.
func (SRCF) apply(fn *ir.Function, id ir.InstrID, rw *_Rewrite) ir.Value {
	v := rw.with
	p := fn.Instr(id)

	/* synthesize a new shift right before the instruction */
	if rw.shift != ir.OpInvalid {
		v = ir.NewBuilder(fn).Before(id).Binary(rw.shift, rw.with, ir.Imm(p.Type, int64(rw.amount)))
	}

	/* redirect all the uses */
	fn.ReplaceAllUsesWith(id, v)
	return v
}

func (self SRCF) Apply(fn *ir.Function, env *Env) (*Result, error) {
	var del []ir.InstrID
	ret := new(Result)
	log := env.logger("srcf", fn)

	/* scan every block */
	log.Info("Starting Strength Reduction & Constant Folding pass")
	for _, bb := range fn.Blocks() {
		ins := make([]ir.InstrID, len(bb.Ins))
		copy(ins, bb.Ins)

		/* new instructions are inserted while scanning, iterate over a snapshot */
		for _, id := range ins {
			p := fn.Instr(id)
			s := fn.Format(id)
			rw, err := self.rewrite(p)

			/* the rule could not be applied safely, leave it as is */
			if err != nil {
				ret.add(Action{Kind: ActHazard, Pos: fn.Pos(id), Instr: s, Note: err.Error()})
				log.Warn("Constant folding declined", zap.String("instr", s), zap.Error(err))
				continue
			}

			/* no rules applicable */
			if rw == nil {
				continue
			}

			/* rewrite the instruction */
			pos := fn.Pos(id)
			val := self.apply(fn, id, rw)
			del = append(del, id)
			ret.add(Action{Kind: rw.kind, Pos: pos, Instr: s, Before: rw.before, After: rw.after, Note: fn.ValueString(val)})

			/* log the transformation */
			if rw.kind == ActFold {
				log.Info("Constant folding", zap.String("instr", s), zap.String("before", rw.before), zap.String("after", rw.after))
			} else {
				log.Info("Strength reduction", zap.String("instr", s), zap.String("before", rw.before), zap.String("after", rw.after))
			}
		}
	}

	/* delete all the replaced instructions */
	eraseAll(fn, del)
	log.Info("Strength Reduction & Constant Folding pass complete", zap.Int("deleted", len(del)))
	return ret, nil
}
