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
	"github.com/cloudwego/ssaopt/internal/emu"
	"github.com/cloudwego/ssaopt/internal/ir"
	"github.com/cloudwego/ssaopt/internal/ssa"
)

type (
	// PassError occures when a pass fails, or when the function does not
	// verify after a pass ran with verification enabled.
	PassError = ssa.PassError

	// VerifyError describes one violated IR invariant.
	VerifyError = ssa.VerifyError

	// UnknownPassError occures when a pass name cannot be resolved.
	UnknownPassError = ssa.UnknownPassError

	// ExecError occures when the interpreter fails to execute an instruction.
	ExecError = emu.ExecError
)

var (
	// ErrNoDominance is returned when CSE runs without dominance information.
	ErrNoDominance = ssa.ErrNoDominance

	// ErrDivideByZero is raised by folding or interpreting a division by zero.
	ErrDivideByZero = ir.ErrDivideByZero

	// ErrStepLimit is raised when the interpreter exceeds its step limit.
	ErrStepLimit = emu.ErrStepLimit
)
