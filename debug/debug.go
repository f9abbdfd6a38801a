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

package debug

import (
	"github.com/cloudwego/ssaopt/internal/ssa"
)

// A Stats records statistics about the optimizer since the process started.
type Stats struct {
	Pipeline PipelineStats
	Actions  ActionStats
}

// A PipelineStats records how much work the pass pipeline has done.
type PipelineStats struct {
	Funcs  int
	Rounds int
	Passes int
}

// An ActionStats records the number of transformations of each kind.
type ActionStats struct {
	Fold      int
	Reduce    int
	Eliminate int
	Replace   int
	Hazard    int
}

// GetStats returns statistics of the optimizer.
func GetStats() Stats {
	return Stats{
		Pipeline: PipelineStats{
			Funcs:  int(ssa.FuncCount.Load()),
			Rounds: int(ssa.RoundCount.Load()),
			Passes: int(ssa.PassCount.Load()),
		},
		Actions: ActionStats{
			Fold:      int(ssa.ActionCount[ssa.ActFold].Load()),
			Reduce:    int(ssa.ActionCount[ssa.ActReduce].Load()),
			Eliminate: int(ssa.ActionCount[ssa.ActEliminate].Load()),
			Replace:   int(ssa.ActionCount[ssa.ActReplace].Load()),
			Hazard:    int(ssa.ActionCount[ssa.ActHazard].Load()),
		},
	}
}
