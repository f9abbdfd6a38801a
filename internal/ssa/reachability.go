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
	"github.com/oleiade/lane"
)

// Reachability returns the set of blocks that can be reached from the entry
// block of fn, in breadth-first order.
func Reachability(fn *ir.Function) (map[ir.BlockID]bool, []ir.BlockID) {
	var ord []ir.BlockID
	q := lane.NewQueue()
	ret := make(map[ir.BlockID]bool)

	/* functions without blocks reach nothing */
	if fn.Entry() == nil {
		return ret, nil
	}

	/* traverse the CFG */
	ret[fn.Entry().Id] = true
	for q.Enqueue(fn.Entry().Id); !q.Empty(); {
		p := q.Dequeue().(ir.BlockID)
		ord = append(ord, p)

		/* enqueue the successors that were never seen */
		for _, v := range fn.Successors(p) {
			if !ret[v] {
				ret[v] = true
				q.Enqueue(v)
			}
		}
	}
	return ret, ord
}
