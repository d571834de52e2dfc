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

//go:build linux

package platform

import (
	"golang.org/x/sys/unix"
)

// CanSetExclusive reports whether the calling process can raise a thread's
// scheduling priority to a real-time class. A thread already running under
// SCHED_FIFO or SCHED_RR answers true at once; otherwise the current thread
// is switched to SCHED_FIFO priority 1 and, if that succeeds, immediately
// switched back to SCHED_OTHER.
func CanSetExclusive() (bool, error) {
	var param unix.SchedParam
	param.Priority = 0
	// Reading the current policy is always safe. The probe itself is a real
	// switch to SCHED_FIFO, which the kernel rejects for callers without
	// the privilege to use real-time policies.
	policy, err := unix.SchedGetscheduler(0)
	if err != nil {
		return false, errFail("sched_getscheduler: " + err.Error())
	}
	if policy == unix.SCHED_FIFO || policy == unix.SCHED_RR {
		return true, nil
	}
	err = unix.SchedSetscheduler(0, unix.SCHED_FIFO, &unix.SchedParam{Priority: 1})
	if err != nil {
		return false, nil
	}
	// revert to the normal policy immediately; we were only probing
	_ = unix.SchedSetscheduler(0, unix.SCHED_OTHER, &param)
	return true, nil
}

// PinTo binds the calling thread's CPU affinity mask to the given set.
// The caller must have already called runtime.LockOSThread().
func PinTo(set CPUSet) error {
	var mask unix.CPUSet
	mask.Zero()
	for cpuID := range set {
		mask.Set(cpuID)
	}
	if err := unix.SchedSetaffinity(0, &mask); err != nil {
		return errAssign("sched_setaffinity: " + err.Error())
	}
	return nil
}

// RequestExclusive switches the calling thread into the lowest-priority
// SCHED_FIFO real-time class. Best-effort: failures are returned but the
// caller is expected to continue under ordinary scheduling.
func RequestExclusive() error {
	param := unix.SchedParam{Priority: 1}
	if err := unix.SchedSetscheduler(0, unix.SCHED_FIFO, &param); err != nil {
		return errAssign("sched_setscheduler(SCHED_FIFO): " + err.Error())
	}
	return nil
}

type assignError string

func (e assignError) Error() string { return string(e) }

func errAssign(msg string) error { return assignError(msg) }
