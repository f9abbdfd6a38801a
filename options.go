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

package ssaopt

import (
	"fmt"

	"github.com/cloudwego/ssaopt/internal/opts"
	"github.com/cloudwego/ssaopt/internal/ssa"
	"go.uber.org/zap"
)

// Option is the property setter function for opts.Options.
type Option func(*opts.Options)

// WithLogger sets the logger that receives the diagnostic messages of every
// pass. A nil logger discards them, which is the default.
func WithLogger(log *zap.Logger) Option {
	return func(o *opts.Options) { o.Logger = log }
}

// WithPasses selects the passes to run, in order. Valid names are "srcf",
// "cse" and "dce", and a pass may appear more than once.
//
// The default is "srcf", "cse", "dce".
func WithPasses(names ...string) Option {
	for _, v := range names {
		if _, ok := ssa.LookupPass(v); !ok {
			panic(fmt.Sprintf("ssaopt: invalid pass name: %q", v))
		}
	}
	return func(o *opts.Options) { o.Passes = append([]string(nil), names...) }
}

// WithMaxRounds sets the maximum number of times the whole pipeline runs.
//
// With a value larger than "1", the pipeline is repeated until no pass
// changes the function anymore, or the limit is reached.
//
// The default value of this option is "1".
func WithMaxRounds(n int) Option {
	if n < 1 {
		panic(fmt.Sprintf("ssaopt: invalid max rounds: %d", n))
	} else {
		return func(o *opts.Options) { o.MaxRounds = n }
	}
}

// WithVerify enables checking the function after every pass, the first
// pass that leaves the function malformed fails the optimization.
func WithVerify(v bool) Option {
	return func(o *opts.Options) { o.Verify = v }
}

// SetMaxRounds sets the default maximum number of rounds from now on.
//
// This value can also be configured with the `SSAOPT_MAX_ROUNDS`
// environment variable.
//
// Returns the old opts.MaxRounds value.
func SetMaxRounds(n int) int {
	n, opts.MaxRounds = opts.MaxRounds, n
	return n
}

// SetVerify enables or disables verification for all calls from now on.
//
// This value can also be configured with the `SSAOPT_VERIFY` environment
// variable.
//
// Returns the old opts.Verify value.
func SetVerify(v bool) bool {
	v, opts.Verify = opts.Verify, v
	return v
}
