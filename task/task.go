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

// Package task implements the task control block and its state machine,
// plus the intrusive FIFO queue the scheduler and stream layers thread
// tasks through. One package holds both because the queue operates
// directly on a Task's own prev/next links — there is no separate node
// allocation on the scheduling hot path.
package task

import (
	"sync/atomic"

	uatomic "go.uber.org/atomic"
)

// DefaultStackSize is used when a task is created with stacksize <= 0.
const DefaultStackSize = 8192

// State is one state in the task lifecycle.
type State byte

const (
	Created State = 'C'
	Ready   State = 'R'
	Running State = 'U'
	Blocked State = 'B'
	Zombie  State = 'Z'
)

func (s State) String() string { return string(s) }

// BlockReason records why a task is BLOCKED.
type BlockReason byte

const (
	// BlockNone is the zero value: the task is not blocked.
	BlockNone BlockReason = 0
	BlockOnInput BlockReason = 'i'
	BlockOnOutput BlockReason = 'o'
	BlockOnAny BlockReason = 'a'
)

// Func is the entry point of a task. self lets the function yield, block,
// and exit itself; inArg is the opaque argument passed at creation.
type Func func(self *Task, inArg any)

// Rescheduler re-enqueues a READY task onto its owning worker. Implemented
// by worker.Worker; declared here so the task and stream packages never
// need to import worker, avoiding an import cycle.
type Rescheduler interface {
	EnqueueReady(t *Task)
}

// Monitor is the subset of monitoring.TaskMonitor the task/stream layers
// call into. Declared here (rather than depending on package monitoring)
// to keep the scheduling core decoupled from the monitoring format.
type Monitor interface {
	Start()
	Stop(state State, blockedOn BlockReason)
}

// WakeupToken is the payload carried by Task.WakeupSD. V is nil (the
// "no wakeup pending" state) or a *stream.Descriptor. Wrapping it in a
// struct keeps the value passed to Value.Store/CompareAndSwap always of
// the same concrete type and never a literal nil interface.
type WakeupToken struct{ V any }

var uidSeq uint64

// nextUID returns a monotonically increasing task identifier, matching
// the "unsigned int uid" of the original LPEL task control block sized up
// to 64 bits since Go has no natural wraparound-safe 32-bit counter.
func nextUID() uint64 {
	return atomic.AddUint64(&uidSeq, 1)
}

// Task is the control block of one schedulable unit of computation.
type Task struct {
	// prev/next are owned exclusively by whichever Queue currently holds
	// this task; see queue.go. A task is never in more than one queue.
	prev, next *Task

	uid       uint64
	StackSize int

	state     State
	blockedOn BlockReason

	worker Rescheduler

	// WakeupSD is the stream descriptor that caused the last wakeup, set
	// by the CAS race in stream polling (§4.5). Read by the task itself
	// once re-scheduled; written by whichever writer wins the race. Holds
	// a WakeupToken wrapping a *stream.Descriptor, typed as `any` here
	// since the stream package depends on task, not the other way around.
	// Always holds a WakeupToken (never a literal nil): sync/atomic.Value,
	// which this wraps, forbids storing or CAS-comparing against nil once
	// a concrete type has been registered, and panics on CompareAndSwap
	// against a never-stored (empty) Value unless old is exactly that nil
	// interface — a struct-typed "none" sentinel sidesteps both rules.
	WakeupSD uatomic.Value
	// PollToken arbitrates concurrent stream polling: it holds the number
	// of streams the task is still installed on while polling, or 0.
	PollToken uatomic.Int64

	Mon Monitor

	// suspend performs the coroutine switch from this task's execution
	// context back to its owning worker's scheduling context. Set once by
	// the worker when it creates the task's coroutine; nil until then.
	// Task and stream never import the coroutine package directly, so this
	// is threaded through as a closure rather than a concrete type.
	suspend func()

	Func  Func
	InArg any
}

// BindSuspend installs the coroutine switch-back callback. Called exactly
// once by the worker that owns this task, right after it creates the
// task's coroutine context.
func (t *Task) BindSuspend(fn func()) {
	t.suspend = fn
}

// New creates a task owned by the given worker. stackSize <= 0 uses
// DefaultStackSize. The task starts in state CREATED.
func New(worker Rescheduler, fn Func, inArg any, stackSize int) *Task {
	if stackSize <= 0 {
		stackSize = DefaultStackSize
	}
	t := &Task{
		uid:       nextUID(),
		StackSize: stackSize,
		state:     Created,
		worker:    worker,
		Func:      fn,
		InArg:     inArg,
	}
	t.WakeupSD.Store(WakeupToken{})
	return t
}

// UID returns the task's unique, monotonically assigned identifier.
func (t *Task) UID() uint64 { return t.uid }

// State returns the task's current lifecycle state.
func (t *Task) State() State { return t.state }

// BlockedOn returns the reason the task is blocked, or BlockNone.
func (t *Task) BlockedOn() BlockReason { return t.blockedOn }

// Worker returns the Rescheduler (worker) this task is permanently bound to.
func (t *Task) Worker() Rescheduler { return t.worker }

// markReady transitions CREATED|BLOCKED -> READY. Called by Run (initial
// dispatch) and by Unblock.
func (t *Task) markReady() {
	t.state = Ready
	t.blockedOn = BlockNone
}

// MarkRunning transitions READY -> RUNNING. Called by the worker loop
// immediately before switching into the task's coroutine.
func (t *Task) MarkRunning() {
	t.state = Running
	if t.Mon != nil {
		t.Mon.Start()
	}
}

// Yield transitions RUNNING -> READY and switches back to the worker's
// scheduling context. The worker re-enqueues t once the switch returns
// control there, having observed the new state.
func (t *Task) Yield() {
	t.state = Ready
	if t.Mon != nil {
		t.Mon.Stop(Ready, BlockNone)
	}
	t.suspend()
}

// Block transitions RUNNING -> BLOCKED{reason} and switches back to the
// worker's scheduling context. The stream layer has already installed t
// into the appropriate waiter slot before calling this.
func (t *Task) Block(reason BlockReason) {
	t.state = Blocked
	t.blockedOn = reason
	if t.Mon != nil {
		t.Mon.Stop(Blocked, reason)
	}
	t.suspend()
}

// Unblock transitions t from BLOCKED to READY and re-enqueues it on its
// owning worker. Called by the peer task that freed the resource t was
// waiting on; safe to call across worker boundaries.
func (t *Task) Unblock() {
	t.markReady()
	t.worker.EnqueueReady(t)
}

// Exit transitions RUNNING -> ZOMBIE (terminal). Called when the task
// function returns.
func (t *Task) Exit() {
	t.state = Zombie
	if t.Mon != nil {
		t.Mon.Stop(Zombie, BlockNone)
	}
}

// MarkReadyForRun transitions CREATED -> READY, the initial enqueue that
// happens when the host application calls Run on a freshly created task.
func (t *Task) MarkReadyForRun() {
	t.markReady()
}
