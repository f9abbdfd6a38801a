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
)

// CallContext carries the evaluated arguments of a call instruction.
type CallContext struct {
	Callee string
	Args   []uint64
}

// Au returns the i-th argument as an unsigned integer.
func (self CallContext) Au(i int) uint64 {
	return self.Args[i]
}

// CallProxy implements an external function for the emulator.
type CallProxy = func(ctx CallContext) (uint64, error)

var (
	callLock sync.RWMutex
	callTab  = map[string]CallProxy{}
)

// RegisterCall makes an external function visible to every emulator created
// afterwards. It returns the name for use in variable declarations.
func RegisterCall(name string, proxy CallProxy) string {
	callLock.Lock()
	callTab[name] = proxy
	callLock.Unlock()
	return name
}

func globalCalls() map[string]CallProxy {
	callLock.RLock()
	defer callLock.RUnlock()

	/* copy the table, so the emulator never races with registrations */
	ret := make(map[string]CallProxy, len(callTab))
	for k, v := range callTab {
		ret[k] = v
	}
	return ret
}

// Register adds an external function to this emulator only.
func (self *Emulator) Register(name string, proxy CallProxy) *Emulator {
	self.Calls[name] = proxy
	return self
}
