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
	"go.uber.org/atomic"
)

var (
	FuncCount  = atomic.NewUint64(0)
	RoundCount = atomic.NewUint64(0)
	PassCount  = atomic.NewUint64(0)
)

var (
	ActionCount = [...]*atomic.Uint64{
		ActFold:      atomic.NewUint64(0),
		ActReduce:    atomic.NewUint64(0),
		ActEliminate: atomic.NewUint64(0),
		ActReplace:   atomic.NewUint64(0),
		ActHazard:    atomic.NewUint64(0),
	}
)

func recordResult(res *Result) {
	PassCount.Inc()
	for _, act := range res.Actions {
		ActionCount[act.Kind].Inc()
	}
}
