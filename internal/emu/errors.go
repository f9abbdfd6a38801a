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
	"errors"
	"fmt"

	"github.com/cloudwego/ssaopt/internal/ir"
)

var (
	ErrStepLimit   = errors.New("emu: step limit exceeded")
	ErrUnreachable = errors.New("emu: unreachable executed")
)

// AddressError occures when a load or store accesses memory that was never
// allocated.
type AddressError uint64

func (self AddressError) Error() string {
	return fmt.Sprintf("emu: invalid address %#x", uint64(self))
}

// CallError occures when a call cannot be carried out.
type CallError struct {
	Callee string
	Err    error
}

func (self CallError) Error() string {
	if self.Err == nil {
		return fmt.Sprintf("emu: function not registered: @%s", self.Callee)
	} else {
		return fmt.Sprintf("emu: call to @%s failed: %v", self.Callee, self.Err)
	}
}

func (self CallError) Unwrap() error {
	return self.Err
}

// ExecError wraps the error raised by one instruction.
type ExecError struct {
	Pos   ir.Pos
	Instr string
	Err   error
}

func (self ExecError) Error() string {
	return fmt.Sprintf("%s: %s: %v", self.Pos, self.Instr, self.Err)
}

func (self ExecError) Unwrap() error {
	return self.Err
}
