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
	"strconv"
	"strings"

	"github.com/cloudwego/ssaopt/internal/ir"
	"go.uber.org/zap"
)

// CSE performs the Common Sub-expression Elimintation optimization.
//
// Two instructions are the same expression iff they have the same opcode,
// the same result type and pairwise identical operands, operand order
// matters. The first occurance of an expression is the one that survives.
type CSE struct{}

// vid computes the value ID of an instruction. Instructions that transfer
// control or touch memory are never considered.
func (CSE) vid(p *ir.Instr) (string, bool) {
	if p.Type == ir.Void || p.IsTerminator() || p.IsLandingPad() || p.AccessesMemory() {
		return "", false
	}

	/* opcode and result type */
	var buf strings.Builder
	buf.WriteString("(")
	buf.WriteString(p.Op.String())
	buf.WriteString(" ")
	buf.WriteString(p.Type.String())

	/* comparison predicate */
	if p.Op == ir.OpICmp {
		buf.WriteString(" ")
		buf.WriteString(p.Pred.String())
	}

	/* operands, Phi nodes also need the incoming edges */
	for i, v := range p.Args {
		buf.WriteString(" ")
		buf.WriteString(v.Key())
		if p.Op == ir.OpPhi {
			buf.WriteString("@")
			buf.WriteString(strconv.Itoa(int(p.From[i])))
		}
	}

	/* build the value ID */
	buf.WriteString(")")
	return buf.String(), true
}

func (self CSE) Apply(fn *ir.Function, env *Env) (*Result, error) {
	var del []ir.InstrID
	var vid string
	var ok bool

	/* the dominance oracle is mandatory */
	if env == nil || env.Dom == nil {
		return nil, ErrNoDominance
	}

	/* first occurance of every expression in the whole function */
	ret := new(Result)
	log := env.logger("cse", fn)
	vals := make(map[string]ir.InstrID)

	/* scan every block in layout order */
	log.Info("Starting Common Subexpression Elimination pass")
	for _, bb := range fn.Blocks() {
		seen := make(map[string]ir.InstrID)

		/* scan every instruction in program order */
		for i, id := range bb.Ins {
			p := fn.Instr(id)
			pos := ir.Pos{B: bb.Id, I: i}

			/* check if the instruction have a VID */
			if vid, ok = self.vid(p); !ok {
				continue
			}

			/* the earlier instruction in the same block always dominates this one */
			if r, ok := seen[vid]; ok {
				s := fn.Format(id)
				fn.ReplaceAllUsesWith(id, ir.Ref(r))
				del = append(del, id)
				ret.add(Action{Kind: ActEliminate, Pos: pos, Instr: s, After: fn.ValueString(ir.Ref(r)), Note: "local"})
				log.Info("Found local common subexpression, deleting", zap.String("instr", s), zap.String("with", fn.ValueString(ir.Ref(r))))
				continue
			}

			/* not seen anywhere, this is the first occurance */
			r, ok := vals[vid]
			if !ok {
				vals[vid] = id
				seen[vid] = id
				continue
			}

			/* only the uses dominated by the earlier one can be replaced */
			s := fn.Format(id)
			n, keep := self.redirect(fn, env.Dom, id, r)

			/* every use was replaced, the instruction can be removed */
			if !keep {
				del = append(del, id)
				ret.add(Action{Kind: ActEliminate, Pos: pos, Instr: s, After: fn.ValueString(ir.Ref(r)), Note: "global"})
				log.Info("Found global common subexpression, deleting", zap.String("instr", s), zap.String("with", fn.ValueString(ir.Ref(r))))
				continue
			}

			/* keep the instruction, it is still the best candidate in this block */
			if seen[vid] = id; n != 0 {
				ret.add(Action{Kind: ActReplace, Pos: pos, Instr: s, After: fn.ValueString(ir.Ref(r)), Note: strconv.Itoa(n) + " use(s)"})
				log.Info("Found global common subexpression, replacing", zap.String("instr", s), zap.String("with", fn.ValueString(ir.Ref(r))), zap.Int("uses", n))
			}
		}
	}

	/* delete all the redundant instructions */
	eraseAll(fn, del)
	log.Info("Common Subexpression Elimination pass complete", zap.Int("deleted", len(del)))
	return ret, nil
}

// redirect replaces every use of id that is dominated by r. It returns the
// number of replaced uses, and whether any use could not be replaced.
func (CSE) redirect(fn *ir.Function, dom Dominance, id ir.InstrID, r ir.InstrID) (int, bool) {
	n := 0
	keep := false

	/* check every use individually */
	for _, u := range fn.Uses(id) {
		if dom.Dominates(r, u) {
			n++
			fn.SetOperand(u.User, u.Slot, ir.Ref(r))
		} else {
			keep = true
		}
	}
	return n, keep
}
