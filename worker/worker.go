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

// Package worker runs the per-CPU dispatch loop: drain the remote-wakeup
// inbox, fetch a ready task, switch a coroutine into it, and react to
// whatever state the task left itself in.
package worker

import (
	"runtime"
	"strconv"
	"sync"

	"github.com/lindb/common/pkg/logger"

	"github.com/lpel-project/lpel/internal/coroutine"
	"github.com/lpel-project/lpel/internal/sched"
	"github.com/lpel-project/lpel/metrics"
	"github.com/lpel-project/lpel/platform"
	"github.com/lpel-project/lpel/task"
)

// Monitor is the subset of monitoring.Context a worker drives directly.
// Declared here, implemented by package monitoring, to keep this package
// free of the monitoring log format.
type Monitor interface {
	WaitStart()
	WaitStop()
	Dispatched()
	Close()
}

type noopMonitor struct{}

func (noopMonitor) WaitStart()  {}
func (noopMonitor) WaitStop()   {}
func (noopMonitor) Dispatched() {}
func (noopMonitor) Close()      {}

// Worker is one kernel-thread-backed scheduling domain: strictly one task
// RUNNING at a time, dispatched in FIFO order off its own ready queue.
type Worker struct {
	id    int
	idStr string
	log   logger.Logger
	mon   Monitor

	sched    *sched.Scheduler
	schedCtx *coroutine.Context

	taskCtxMu sync.Mutex
	taskCtx   map[uint64]*coroutine.Context

	inboxMu       sync.Mutex
	inboxItems    []*task.Task
	inboxSentinel bool
	doorbell      chan struct{}

	onZombie func(uid uint64)

	done chan struct{}
}

// SetOnZombie installs a callback invoked once a task dispatched by this
// worker reaches ZOMBIE, after its coroutine context has been released.
// Used by the runtime facade to retire a task's UID from the live-task
// set without this package needing to know about it.
func (w *Worker) SetOnZombie(fn func(uid uint64)) { w.onZombie = fn }

// New creates worker id. mon may be nil, in which case worker-level
// monitoring events are dropped.
func New(id int, mon Monitor) *Worker {
	if mon == nil {
		mon = noopMonitor{}
	}
	return &Worker{
		id:       id,
		idStr:    strconv.Itoa(id),
		log:      logger.GetLogger("Worker", "Dispatch"),
		mon:      mon,
		sched:    sched.New(),
		schedCtx: coroutine.NewContext(),
		taskCtx:  make(map[uint64]*coroutine.Context),
		doorbell: make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// ID returns the worker's index, 0 <= id < num_workers.
func (w *Worker) ID() int { return w.id }

// CreateTask builds a task bound to this worker and its coroutine, in
// state CREATED. The task is not scheduled until Run(t) is called on it.
func (w *Worker) CreateTask(fn task.Func, inArg any, stackSize int) *task.Task {
	t := task.New(w, fn, inArg, stackSize)

	var taskCtx *coroutine.Context
	taskCtx = coroutine.Create(func(self *coroutine.Context) {
		t.Func(t, t.InArg)
		t.Exit()
		coroutine.Destroy(taskCtx)
		coroutine.SwitchFinal(w.schedCtx)
	})
	t.BindSuspend(func() { coroutine.Switch(taskCtx, w.schedCtx) })

	w.taskCtxMu.Lock()
	w.taskCtx[t.UID()] = taskCtx
	w.taskCtxMu.Unlock()
	return t
}

// Run enqueues a freshly created task as READY.
func (w *Worker) Run(t *task.Task) {
	t.MarkReadyForRun()
	w.EnqueueReady(t)
}

// EnqueueReady implements task.Rescheduler. Safe to call from any worker:
// it always goes through the MPSC inbox, which only this worker drains,
// matching the "unblocks become visible after the owner drains its inbox"
// ordering guarantee (§5).
func (w *Worker) EnqueueReady(t *task.Task) {
	w.inboxMu.Lock()
	w.inboxItems = append(w.inboxItems, t)
	w.inboxMu.Unlock()
	w.ring()
}

// ring wakes a parked worker loop without blocking the caller.
func (w *Worker) ring() {
	select {
	case w.doorbell <- struct{}{}:
	default:
	}
}

func (w *Worker) drainInbox() {
	w.inboxMu.Lock()
	items := w.inboxItems
	w.inboxItems = nil
	w.inboxMu.Unlock()
	for _, t := range items {
		w.sched.PutReady(t)
	}
}

func (w *Worker) sentinelAndDrained() bool {
	w.inboxMu.Lock()
	defer w.inboxMu.Unlock()
	return w.inboxSentinel && len(w.inboxItems) == 0 && w.sched.Len() == 0
}

// Stop posts the termination sentinel to this worker's inbox. The worker
// runs any remaining READY tasks to completion or their next block point,
// then exits once its ready queue and inbox are both empty.
func (w *Worker) Stop() {
	w.inboxMu.Lock()
	w.inboxSentinel = true
	w.inboxMu.Unlock()
	w.ring()
}

// Join blocks until the worker loop has returned.
func (w *Worker) Join() { <-w.done }

// RunLoop runs the dispatch loop until Stop is observed with both the
// inbox and ready queue drained; call it from a freshly spawned goroutine,
// one per worker. procWorkers is the number of worker CPUs this process
// was configured with (used to derive the affinity target); pinned and
// exclusive mirror the PINNED/EXCLUSIVE config flags.
func (w *Worker) RunLoop(procWorkers int, pinned, exclusive bool) {
	defer close(w.done)

	runtime.LockOSThread()
	if pinned {
		set := platform.NewCPUSet(w.id%procWorkers, 1)
		if err := platform.PinTo(set); err != nil {
			w.log.Warn("pin worker to cpu set failed", logger.Int("worker", w.id), logger.Error(err))
		}
		if exclusive {
			if err := platform.RequestExclusive(); err != nil {
				w.log.Warn("request exclusive scheduling failed", logger.Int("worker", w.id), logger.Error(err))
			}
		}
	}

	for {
		w.drainInbox()
		metrics.ReadyQueueDepth.WithLabelValues(w.idStr).Set(float64(w.sched.Len()))

		if t := w.sched.FetchReady(); t != nil {
			w.dispatch(t)
			continue
		}

		if w.sentinelAndDrained() {
			return
		}

		w.mon.WaitStart()
		<-w.doorbell
		w.mon.WaitStop()
	}
}

func (w *Worker) dispatch(t *task.Task) {
	w.taskCtxMu.Lock()
	ctx := w.taskCtx[t.UID()]
	w.taskCtxMu.Unlock()
	if ctx == nil {
		// can only happen for a task created on a different worker than
		// the one dispatching it, which would be a programmer error: a
		// task never migrates between workers after creation.
		w.log.Error("dispatch: no coroutine context for task", logger.Int64("uid", int64(t.UID())))
		return
	}

	t.MarkRunning()
	w.mon.Dispatched()
	metrics.TasksDispatched.WithLabelValues(w.idStr).Inc()

	coroutine.Switch(w.schedCtx, ctx)

	switch t.State() {
	case task.Ready:
		w.sched.PutReady(t)
	case task.Blocked:
		// the stream layer already installed t in a waiter slot.
		metrics.TasksBlocked.WithLabelValues(string(t.BlockedOn())).Inc()
	case task.Zombie:
		// monitoring finalisation already ran inside task.Exit; the
		// task's own goroutine destroys its coroutine context and
		// switches out on its way to returning.
		w.taskCtxMu.Lock()
		delete(w.taskCtx, t.UID())
		w.taskCtxMu.Unlock()
		metrics.LiveTasks.Dec()
		if w.onZombie != nil {
			w.onZombie(t.UID())
		}
	}
}
