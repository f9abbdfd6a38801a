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

type PassDescriptor struct {
	Name string
	Desc string
	Pass Pass
	Dom  bool
}

var Passes = [...]PassDescriptor{
	{Name: "srcf", Desc: "Strength Reduction & Constant Folding", Pass: new(SRCF)},
	{Name: "cse", Desc: "Common Subexpression Elimination", Pass: new(CSE), Dom: true},
	{Name: "dce", Desc: "Dead Code Elimination", Pass: new(DCE)},
}

// DefaultPasses is the order passes run in when nothing else is requested.
var DefaultPasses = []string{"srcf", "cse", "dce"}

// LookupPass finds a pass by its short name.
func LookupPass(name string) (PassDescriptor, bool) {
	for _, p := range Passes {
		if p.Name == name {
			return p, true
		}
	}
	return PassDescriptor{}, false
}

// Pipeline runs a sequence of passes over a function.
type Pipeline struct {
	Passes    []PassDescriptor
	Log       *zap.Logger
	MaxRounds int
	Verify    bool
}

// NewPipeline creates a pipeline from pass names, an empty list selects
// DefaultPasses.
func NewPipeline(names ...string) (*Pipeline, error) {
	ret := new(Pipeline)
	ret.MaxRounds = 1

	/* use the default pipeline if not specified */
	if len(names) == 0 {
		names = DefaultPasses
	}

	/* resolve every pass */
	for _, name := range names {
		if p, ok := LookupPass(name); !ok {
			return nil, UnknownPassError{Name: name}
		} else {
			ret.Passes = append(ret.Passes, p)
		}
	}
	return ret, nil
}

// PassResult is the result of one pass application.
type PassResult struct {
	Name  string
	Round int
	*Result
}

// Report collects the results of every pass application on one function.
type Report struct {
	Func    string
	Rounds  int
	Results []PassResult
}

// Changed reports whether any pass changed the function.
func (self *Report) Changed() bool {
	for _, r := range self.Results {
		if r.Changed {
			return true
		}
	}
	return false
}

// Count returns the number of actions of the given kind across all passes.
func (self *Report) Count(kind ActionKind) int {
	n := 0
	for _, r := range self.Results {
		n += r.Count(kind)
	}
	return n
}

func (self *Pipeline) logger() *zap.Logger {
	if self.Log == nil {
		return zap.NewNop()
	} else {
		return self.Log
	}
}

// Run applies the passes in order. When MaxRounds is greater than one, the
// whole sequence is repeated until no pass changes the function, or until
// MaxRounds rounds have been executed.
func (self *Pipeline) Run(fn *ir.Function) (*Report, error) {
	log := self.logger().With(zap.String("func", fn.Name))
	ret := &Report{Func: fn.Name}
	FuncCount.Inc()

	/* run the rounds */
	for round := 0; round < maxint(self.MaxRounds, 1); round++ {
		changed := false
		ret.Rounds++
		RoundCount.Inc()

		/* run every pass */
		for _, p := range self.Passes {
			env := &Env{Log: self.Log}

			/* dominance is recomputed on demand, previous passes may have changed the function */
			if p.Dom {
				env.Dom = BuildDominatorTree(fn)
			}

			/* apply the pass */
			log.Debug("Running pass", zap.String("pass", p.Name), zap.String("desc", p.Desc), zap.Int("round", round))
			res, err := p.Pass.Apply(fn, env)

			/* check for errors */
			if err != nil {
				return ret, &PassError{Pass: p.Name, Func: fn.Name, Err: err}
			}

			/* record the result */
			recordResult(res)
			changed = changed || res.Changed
			ret.Results = append(ret.Results, PassResult{Name: p.Name, Round: round, Result: res})

			/* verify the function if needed */
			if self.Verify {
				if err = Verify(fn); err != nil {
					return ret, &PassError{Pass: p.Name, Func: fn.Name, Err: err}
				}
			}
		}

		/* reached the fixed point */
		if !changed {
			break
		}
	}

	/* all passes done */
	log.Debug("Pipeline complete", zap.Int("rounds", ret.Rounds), zap.Bool("changed", ret.Changed()))
	return ret, nil
}
