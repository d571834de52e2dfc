// Licensed to the lpel project under one or more contributor
// license agreements. See the NOTICE file distributed with
// this work for additional information regarding copyright
// ownership. The lpel project licenses this file to you under
// the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

// Package platform adapts the host OS's CPU topology and scheduling
// classes for the worker pool: counting online cores, probing real-time
// capability, pinning a thread to a CPU set, and raising a thread's
// scheduling class. Everything here is best-effort outside Linux.
package platform

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"go.uber.org/automaxprocs/maxprocs"
)

var log = func(format string, args ...interface{}) {}

// SetLogf installs a logging callback used for the best-effort diagnostics
// this package emits (e.g. automaxprocs adjustments). It is nil-safe.
func SetLogf(f func(format string, args ...interface{})) {
	if f != nil {
		log = f
	}
}

// CPUSet is a set of physical CPU indices.
type CPUSet map[int]struct{}

// NewCPUSet builds a CPUSet from a contiguous range [from, from+n).
func NewCPUSet(from, n int) CPUSet {
	s := make(CPUSet, n)
	for i := from; i < from+n; i++ {
		s[i] = struct{}{}
	}
	return s
}

// AdjustGOMAXPROCS right-sizes GOMAXPROCS to the container's CPU quota, if
// any, before workers are pinned to physical CPUs. It is best-effort: a
// failure (e.g. not running under cgroups) is logged, never returned.
func AdjustGOMAXPROCS() {
	undo, err := maxprocs.Set(maxprocs.Logger(log))
	if err != nil {
		log("lpel: automaxprocs adjustment skipped: %v", err)
		return
	}
	_ = undo // intentionally never reverted: the process keeps the adjusted value for its lifetime
}

// NumCores returns the number of online logical CPUs as gopsutil counts
// them, falling back to runtime.NumCPU() when gopsutil cannot answer. The
// two counts are not compared with each other. It returns an error if
// neither source can answer (mirrors LpelGetNumCores' LPEL_ERR_FAIL).
func NumCores() (int, error) {
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		return n, nil
	}
	if n := runtime.NumCPU(); n > 0 {
		return n, nil
	}
	return 0, errFail("unable to determine online CPU count")
}

type platformError string

func (e platformError) Error() string { return string(e) }

func errFail(msg string) error { return platformError(msg) }
