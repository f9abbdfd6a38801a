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

package opts

import (
	"os"
	"strconv"
	"strings"
)

const (
	_DefaultMaxRounds = 1     // run the pipeline once
	_DefaultVerify    = false // verification is for debugging only
)

var (
	MaxRounds = parseOrDefault("SSAOPT_MAX_ROUNDS", _DefaultMaxRounds, 1)
	Verify    = parseBoolOrDefault("SSAOPT_VERIFY", _DefaultVerify)
	Passes    = parseListOrDefault("SSAOPT_PASSES", nil)
)

func parseOrDefault(key string, def int, min int) int {
	if env := os.Getenv(key); env == "" {
		return def
	} else if val, err := strconv.ParseUint(env, 0, 64); err != nil {
		panic("ssaopt: invalid value for " + key)
	} else if ret := int(val); ret < min {
		panic("ssaopt: value too small for " + key)
	} else {
		return ret
	}
}

func parseBoolOrDefault(key string, def bool) bool {
	if env := os.Getenv(key); env == "" {
		return def
	} else if val, err := strconv.ParseBool(env); err != nil {
		panic("ssaopt: invalid value for " + key)
	} else {
		return val
	}
}

// parseListOrDefault parses a comma separated list, empty items are
// ignored.
func parseListOrDefault(key string, def []string) []string {
	var ret []string
	env := os.Getenv(key)

	/* not set */
	if env == "" {
		return def
	}

	/* split by commas */
	for _, v := range strings.Split(env, ",") {
		if v = strings.TrimSpace(v); v != "" {
			ret = append(ret, v)
		}
	}

	/* must have at least one item */
	if len(ret) == 0 {
		panic("ssaopt: empty list for " + key)
	} else {
		return ret
	}
}
