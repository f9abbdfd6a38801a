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
	"github.com/cloudwego/ssaopt/internal/ir"
	"go.uber.org/zap"
)

// DCE removes instructions whose results are never used and that have no
// side effects. One application does not remove the producers that become
// dead because of its own deletions, run it again for that.
type DCE struct{}

func (DCE) isDead(p *ir.Instr) bool {
	return p.NumUses() == 0 &&
		!p.HasSideEffects() &&
		!p.IsTerminator() &&
		!p.IsLandingPad()
}

func (self DCE) Apply(fn *ir.Function, env *Env) (*Result, error) {
	var del []ir.InstrID
	ret := new(Result)
	log := env.logger("dce", fn)

	/* Phase 1: Scan all the blocks for unused instructions */
	log.Info("Starting Dead Code Elimination pass")
	for _, bb := range fn.Blocks() {
		for i, id := range bb.Ins {
			if p := fn.Instr(id); self.isDead(p) {
				s := fn.Format(id)
				del = append(del, id)
				ret.add(Action{Kind: ActEliminate, Pos: ir.Pos{B: bb.Id, I: i}, Instr: s})
				log.Info("Deleting instruction", zap.String("instr", s))
			}
		}
	}

	/* Phase 2: Remove them all at once */
	eraseAll(fn, del)
	log.Info("Dead Code Elimination pass complete", zap.Int("deleted", len(del)))
	return ret, nil
}
