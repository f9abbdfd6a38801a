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

package ir

import (
	"fmt"
)

// Pos is the position of an instruction: its block and its index in it.
type Pos struct {
	B BlockID
	I int
}

func (self Pos) String() string {
	return fmt.Sprintf("bb_%d.ins[%d]", self.B, self.I)
}

// IsPriorTo reports whether self comes strictly before other in the same
// block.
func (self Pos) IsPriorTo(other Pos) bool {
	return self.B == other.B && self.I < other.I
}
