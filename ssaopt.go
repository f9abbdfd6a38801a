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

// Package ssaopt implements classic scalar optimizations over a small SSA
// intermediate representation: strength reduction and constant folding,
// common sub-expression elimination with dominance, and dead code elimination.
package ssaopt

import (
	"sync"

	"github.com/cloudwego/ssaopt/internal/ir"
	"github.com/cloudwego/ssaopt/internal/opts"
	"github.com/cloudwego/ssaopt/internal/ssa"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type (
	Type     = ir.Type
	Value    = ir.Value
	Param    = ir.Param
	Block    = ir.Block
	Builder  = ir.Builder
	Function = ir.Function
	Report   = ssa.Report
)

const (
	Void = ir.Void
	I1   = ir.I1
	I8   = ir.I8
	I16  = ir.I16
	I32  = ir.I32
	I64  = ir.I64
	Ptr  = ir.Ptr
)

// NewFunction creates an empty function, use NewBuilder to fill it.
func NewFunction(name string, ret Type, params ...Param) *Function {
	return ir.NewFunction(name, ret, params...)
}

// Imm returns a constant operand of type t.
func Imm(t Type, v int64) Value {
	return ir.Imm(t, v)
}

// Arg returns an operand referring to the i-th function argument.
func Arg(i int) Value {
	return ir.Arg(i)
}

// NewBuilder creates an instruction builder for fn.
func NewBuilder(fn *Function) *Builder {
	return ir.NewBuilder(fn)
}

// Verify checks the structural and SSA invariants of fn.
func Verify(fn *Function) error {
	return ssa.Verify(fn)
}

func pipeline(o *opts.Options) (*ssa.Pipeline, error) {
	pl, err := ssa.NewPipeline(o.Passes...)
	if err != nil {
		return nil, err
	}
	pl.Log = o.Logger
	pl.Verify = o.Verify
	pl.MaxRounds = o.MaxRounds
	return pl, nil
}

// Optimize runs the optimization pipeline over fn in place, and reports
// every transformation it made.
func Optimize(fn *Function, options ...Option) (*Report, error) {
	o := opts.GetDefaultOptions()
	for _, opt := range options {
		opt(&o)
	}

	/* build the pipeline */
	pl, err := pipeline(&o)
	if err != nil {
		return nil, err
	}

	/* run the passes */
	return pl.Run(fn)
}

// OptimizeAll optimizes every function concurrently. Functions are
// independent of each other, so every one of them gets its own goroutine.
// The errors of all failing functions are combined, the reports of the
// successful ones are still returned.
func OptimizeAll(fns []*Function, options ...Option) ([]*Report, error) {
	var err error
	var mu sync.Mutex
	var wg sync.WaitGroup
	ret := make([]*Report, len(fns))

	/* build the options once */
	o := opts.GetDefaultOptions()
	for _, opt := range options {
		opt(&o)
	}

	/* validate the pipeline before spawning anything */
	if _, err = pipeline(&o); err != nil {
		return nil, err
	}

	/* optimize every function */
	for i, fn := range fns {
		wg.Add(1)
		go func(i int, fn *Function) {
			defer wg.Done()
			pl, _ := pipeline(&o)
			rep, e := pl.Run(fn)

			/* record the result */
			mu.Lock()
			ret[i], err = rep, multierr.Append(err, e)
			mu.Unlock()
		}(i, fn)
	}

	/* wait for all of them */
	wg.Wait()
	if o.Logger != nil {
		o.Logger.Debug("Optimized functions", zap.Int("count", len(fns)), zap.Int("failed", len(multierr.Errors(err))))
	}
	return ret, err
}
