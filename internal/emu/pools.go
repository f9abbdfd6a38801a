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

package emu

import (
	"sync"

	"github.com/cloudwego/ssaopt/internal/ir"
)

var (
	emulatorPool sync.Pool
)

// New creates an emulator for fn, with all the globally registered calls.
func New(fn *ir.Function) *Emulator {
	if v := emulatorPool.Get(); v == nil {
		return allocEmulator(fn)
	} else {
		return resetEmulator(fn, v.(*Emulator))
	}
}

// Free returns the emulator to the pool, it must not be used afterwards.
func (self *Emulator) Free() {
	self.Fn = nil
	self.Calls = nil
	emulatorPool.Put(self)
}

func allocEmulator(fn *ir.Function) (e *Emulator) {
	e = new(Emulator)
	e.Fn = fn
	e.Limit = DefaultStepLimit
	e.Calls = globalCalls()
	return
}

func resetEmulator(fn *ir.Function, e *Emulator) *Emulator {
	e.Fn = fn
	e.Steps = 0
	e.Limit = DefaultStepLimit
	e.Calls = globalCalls()
	return e
}
