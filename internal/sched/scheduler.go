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

// Package sched implements the per-worker ready-queue policy: strict FIFO,
// with no priority boost for a task woken by something running on the same
// worker. Priority classes are reserved on the task control block for
// future use but are not consulted by this policy.
package sched

import "github.com/lpel-project/lpel/task"

// Scheduler owns one worker's ready queue.
type Scheduler struct {
	ready task.Queue
}

// New returns an empty scheduler.
func New() *Scheduler {
	return &Scheduler{}
}

// PutReady appends t to the tail of the ready queue.
func (s *Scheduler) PutReady(t *task.Task) {
	s.ready.Append(t)
}

// FetchReady pops the head of the ready queue, or returns nil if empty.
func (s *Scheduler) FetchReady() *task.Task {
	return s.ready.Remove()
}

// Len reports how many tasks are currently ready on this worker.
func (s *Scheduler) Len() int {
	return s.ready.Len()
}
