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

// Dominance answers whether the result of an instruction is available at a
// given use. It is supplied to the passes that need it, the passes never
// compute or cache dominance by themselves.
type Dominance interface {
	Dominates(def ir.InstrID, use ir.Use) bool
}

// Env carries the auxiliary inputs of a pass.
type Env struct {
	Log *zap.Logger
	Dom Dominance
}

func (self *Env) logger(pass string, fn *ir.Function) *zap.Logger {
	if self == nil || self.Log == nil {
		return zap.NewNop()
	} else {
		return self.Log.With(zap.String("pass", pass), zap.String("func", fn.Name))
	}
}

// Pass is a function-local transformation. It mutates fn in place, and
// reports every transformation it performed in the result.
type Pass interface {
	Apply(fn *ir.Function, env *Env) (*Result, error)
}

type ActionKind uint8

const (
	ActFold ActionKind = iota
	ActReduce
	ActEliminate
	ActReplace
	ActHazard
)

func (self ActionKind) String() string {
	switch self {
	case ActFold:
		return "fold"
	case ActReduce:
		return "reduce"
	case ActEliminate:
		return "eliminate"
	case ActReplace:
		return "replace"
	case ActHazard:
		return "hazard"
	default:
		panic("unreachable")
	}
}

// Action records one transformation, or one declined transformation in
// the case of ActHazard.
type Action struct {
	Kind   ActionKind
	Pos    ir.Pos
	Instr  string
	Before string
	After  string
	Note   string
}

// Result is the outcome of running a pass over one function.
type Result struct {
	Changed bool
	Actions []Action
}

func (self *Result) add(act Action) {
	self.Actions = append(self.Actions, act)
	self.Changed = self.Changed || act.Kind != ActHazard
}

// Count returns the number of actions of the given kind.
func (self *Result) Count(kind ActionKind) int {
	n := 0
	for _, v := range self.Actions {
		if v.Kind == kind {
			n++
		}
	}
	return n
}

// eraseAll removes a batch of instructions collected during a scan. Every
// one of them must already be unused.
func eraseAll(fn *ir.Function, ins []ir.InstrID) {
	for _, id := range ins {
		fn.Erase(id)
	}
}
