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
	"errors"
	"fmt"

	"github.com/cloudwego/ssaopt/internal/ir"
)

// ErrNoDominance is returned by passes that require a dominance oracle
// when none was supplied.
var ErrNoDominance = errors.New("ssa: dominance information is required")

// PassError occures when a pass cannot run, or when the function fails to
// verify after it ran.
type PassError struct {
	Pass string
	Func string
	Err  error
}

func (self *PassError) Error() string {
	return fmt.Sprintf("pass %s on function %s: %v", self.Pass, self.Func, self.Err)
}

func (self *PassError) Unwrap() error {
	return self.Err
}

// VerifyError describes one malformed instruction.
type VerifyError struct {
	Pos    ir.Pos
	Reason string
}

func (self *VerifyError) Error() string {
	return fmt.Sprintf("%s: %s", self.Pos, self.Reason)
}

// UnknownPassError occures when a pipeline names a pass that does not exist.
type UnknownPassError struct {
	Name string
}

func (self UnknownPassError) Error() string {
	return fmt.Sprintf("unknown pass %q", self.Name)
}
