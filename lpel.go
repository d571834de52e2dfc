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

// Package lpel is the runtime facade: Init/Stop/Cleanup, thread affinity,
// and the task and stream operations a host application drives a pool of
// cooperatively scheduled workers with.
package lpel

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/lindb/common/pkg/logger"

	"github.com/lpel-project/lpel/admin"
	"github.com/lpel-project/lpel/config"
	"github.com/lpel-project/lpel/coordinator"
	"github.com/lpel-project/lpel/hashing"
	"github.com/lpel-project/lpel/liveset"
	"github.com/lpel-project/lpel/metrics"
	"github.com/lpel-project/lpel/monitoring"
	"github.com/lpel-project/lpel/platform"
	"github.com/lpel-project/lpel/stream"
	"github.com/lpel-project/lpel/task"
	"github.com/lpel-project/lpel/worker"
)

var log = logger.GetLogger("LPEL", "Facade")

// Config is the runtime's configuration envelope.
type Config = config.Config

// NewDefaultConfig returns a single-worker configuration.
func NewDefaultConfig() *Config { return config.NewDefault() }

// runtimeState holds the process-wide state frozen at Init and torn down at
// Cleanup (§9 "Global configuration"): a value set exactly once before
// worker spawn and thereafter read-only until Cleanup.
type runtimeState struct {
	cfg     *Config
	workers []*worker.Worker
	monCtx  []*monitoring.Context
	live    *liveset.Set
	streams *liveset.Set
	wg      sync.WaitGroup
	reg     *coordinator.Registration
	admin   *admin.Server

	tasksMu    sync.Mutex
	tasksByUID map[uint64]*task.Task
}

func (r *runtimeState) addTask(t *task.Task) {
	r.tasksMu.Lock()
	r.tasksByUID[t.UID()] = t
	r.tasksMu.Unlock()
}

func (r *runtimeState) removeTask(uid uint64) {
	r.tasksMu.Lock()
	delete(r.tasksByUID, uid)
	r.tasksMu.Unlock()
}

func (r *runtimeState) getTask(uid uint64) (*task.Task, bool) {
	r.tasksMu.Lock()
	defer r.tasksMu.Unlock()
	t, ok := r.tasksByUID[uid]
	return t, ok
}

// facadeInfo adapts the package-level accessors to admin.RuntimeInfo,
// without admin needing to import this package (which would cycle, since
// this package is the one that constructs admin.Server).
type facadeInfo struct{}

func (facadeInfo) WorkerDispatchCounts() ([]uint64, error) { return WorkerDispatchCounts() }
func (facadeInfo) LiveTaskUIDs() ([]uint64, error)         { return LiveTaskUIDs() }
func (facadeInfo) Workers() (int, error)                   { return Workers() }
func (facadeInfo) StreamUIDs() ([]uint64, error)            { return StreamUIDs() }

func (facadeInfo) TaskDetail(uid uint64) (admin.TaskDetail, error) { return TaskDetail(uid) }

func (facadeInfo) WorkerLogTail(workerID, lines int) ([]string, error) {
	return WorkerLogTail(workerID, lines)
}
func (facadeInfo) CreateTaskByName(name string, workerID int) (uint64, error) {
	return CreateTaskByName(name, workerID)
}

var (
	mu sync.Mutex
	rt *runtimeState

	entryMu     sync.Mutex
	entryPoints = map[string]task.Func{}
)

// RegisterEntryPoint makes fn creatable by name through the admin plane's
// task-creation route (or CreateTaskByName directly). Entry points are a
// process-wide registry, independent of Init/Cleanup, the same way
// database/sql drivers register themselves once regardless of how many
// *DB handles are later opened.
func RegisterEntryPoint(name string, fn task.Func) {
	entryMu.Lock()
	defer entryMu.Unlock()
	entryPoints[name] = fn
}

// Init validates cfg, builds the worker and "others" CPU sets, and spawns
// one goroutine per worker pinned to its CPU. Returns ErrInval or ErrExcl
// on failure; the runtime is left uninitialized in that case.
func Init(cfg *Config) error {
	mu.Lock()
	defer mu.Unlock()
	if rt != nil {
		return fmt.Errorf("lpel: already initialized")
	}

	platform.AdjustGOMAXPROCS()
	numCores, coreErr := platform.NumCores()
	if coreErr != nil {
		numCores = -1
	}
	rtCapable, _ := platform.CanSetExclusive()

	if err := cfg.Validate(numCores, rtCapable); err != nil {
		if cfg.Exclusive() && cfg.Pinned() && !rtCapable {
			return fmt.Errorf("%w: %v", ErrExcl, err)
		}
		return fmt.Errorf("%w: %v", ErrInval, err)
	}

	monitoring.Init()

	workers := make([]*worker.Worker, cfg.NumWorkers)
	monCtxs := make([]*monitoring.Context, cfg.NumWorkers)
	live := liveset.New()
	for i := 0; i < cfg.NumWorkers; i++ {
		mc := monitoring.NewContext(i, fmt.Sprintf("worker%d", i), cfg.Monitoring)
		monCtxs[i] = mc
		workers[i] = worker.New(i, mc)
	}

	r := &runtimeState{
		cfg:        cfg,
		workers:    workers,
		monCtx:     monCtxs,
		live:       live,
		streams:    liveset.New(),
		tasksByUID: make(map[uint64]*task.Task),
	}

	for _, w := range workers {
		w.SetOnZombie(func(uid uint64) {
			r.live.Remove(uid)
			r.removeTask(uid)
		})
	}

	for _, w := range workers {
		w := w
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			w.RunLoop(cfg.ProcWorkers, cfg.Pinned(), cfg.Exclusive())
		}()
	}

	if cfg.Coordinator.Enabled {
		reg, err := coordinator.Register(cfg.Coordinator, cfg.Node)
		if err != nil {
			log.Warn("coordinator self-registration failed", logger.Error(err))
		} else {
			r.reg = reg
		}
	}

	rt = r

	if cfg.Admin.Enabled {
		r.admin = admin.New(cfg.Admin, facadeInfo{})
		r.admin.Serve()
	}

	return nil
}

// Stop requests termination: every worker drains its remaining READY
// tasks to completion or next block point, then exits once idle.
func Stop() {
	mu.Lock()
	r := rt
	mu.Unlock()
	if r == nil {
		return
	}
	for _, w := range r.workers {
		w.Stop()
	}
}

// Cleanup joins all worker goroutines and tears down runtime state. Any
// task still BLOCKED at this point is abandoned (best-effort teardown,
// §5 "Cancellation").
func Cleanup() {
	mu.Lock()
	r := rt
	rt = nil
	mu.Unlock()
	if r == nil {
		return
	}
	r.wg.Wait()
	if r.admin != nil {
		if err := r.admin.Shutdown(context.Background()); err != nil {
			log.Warn("admin server shutdown failed", logger.Error(err))
		}
	}
	for _, mc := range r.monCtx {
		mc.Close()
	}
	if r.reg != nil {
		if err := r.reg.Close(); err != nil {
			log.Warn("coordinator deregistration failed", logger.Error(err))
		}
	}
}

func current() (*runtimeState, error) {
	mu.Lock()
	defer mu.Unlock()
	if rt == nil {
		return nil, fmt.Errorf("lpel: not initialized")
	}
	return rt, nil
}

// NumCores reports the number of online logical CPUs.
func NumCores() (int, error) {
	n, err := platform.NumCores()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrFail, err)
	}
	return n, nil
}

// CanSetExclusive reports whether the process can request real-time
// scheduling for a worker thread.
func CanSetExclusive() (bool, error) {
	ok, err := platform.CanSetExclusive()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrFail, err)
	}
	return ok, nil
}

// ThreadAssign pins the calling non-worker goroutine's OS thread.
// core == -1 means the "others" CPU set; core in [0, num_workers) pins to
// the same CPU the worker with that id uses, optionally requesting RT if
// EXCLUSIVE is configured.
func ThreadAssign(core int) error {
	r, err := current()
	if err != nil {
		return err
	}
	runtime.LockOSThread()
	if core == -1 {
		if perr := platform.PinTo(othersCPUSet(r.cfg)); perr != nil {
			return fmt.Errorf("%w: %v", ErrAssign, perr)
		}
		return nil
	}
	if core < 0 || core >= r.cfg.NumWorkers {
		return fmt.Errorf("%w: core %d out of range [0,%d)", ErrAssign, core, r.cfg.NumWorkers)
	}
	set := platform.NewCPUSet(core%r.cfg.ProcWorkers, 1)
	if err := platform.PinTo(set); err != nil {
		return fmt.Errorf("%w: %v", ErrAssign, err)
	}
	if r.cfg.Exclusive() {
		if err := platform.RequestExclusive(); err != nil {
			return fmt.Errorf("%w: %v", ErrAssign, err)
		}
	}
	return nil
}

// othersCPUSet places the "others" set over the worker CPU set when
// proc_others is 0 (§8 boundary behaviour).
func othersCPUSet(cfg *Config) platform.CPUSet {
	if cfg.ProcOthers > 0 {
		return platform.NewCPUSet(cfg.ProcWorkers, cfg.ProcOthers)
	}
	return platform.NewCPUSet(0, cfg.ProcWorkers)
}

// CreateTask creates a task bound to the given worker id, in state
// CREATED.
func CreateTask(workerID int, fn task.Func, inArg any, stackSize int) (*task.Task, error) {
	r, err := current()
	if err != nil {
		return nil, err
	}
	if workerID < 0 || workerID >= len(r.workers) {
		return nil, fmt.Errorf("lpel: worker %d out of range", workerID)
	}
	t := r.workers[workerID].CreateTask(fn, inArg, stackSize)
	r.live.Add(t.UID())
	r.addTask(t)
	metrics.TasksCreated.Inc()
	metrics.LiveTasks.Inc()
	return t, nil
}

// CreateTaskFor creates a task on the worker hashing.AssignWorker picks
// for key, so repeated calls with the same key always land on the same
// worker.
func CreateTaskFor(key string, fn task.Func, inArg any, stackSize int) (*task.Task, error) {
	r, err := current()
	if err != nil {
		return nil, err
	}
	return CreateTask(hashing.AssignWorker(key, len(r.workers)), fn, inArg, stackSize)
}

// TaskMonitor attaches (or replaces) t's monitor. name is truncated the
// same way a monitoring log file name is; flags selects MON_TIMES and/or
// MON_STREAMS.
func TaskMonitor(t *task.Task, name string, flags monitoring.Flags) {
	r, err := current()
	if err != nil {
		return
	}
	w, ok := t.Worker().(*worker.Worker)
	if !ok || w.ID() < 0 || w.ID() >= len(r.monCtx) {
		return
	}
	if len(name) > 31 {
		name = name[:31]
	}
	t.Mon = monitoring.NewTaskMonitor(r.monCtx[w.ID()], t.UID(), name, flags)
}

// TaskRun enqueues a freshly created task as READY.
func TaskRun(t *task.Task) {
	w := t.Worker().(*worker.Worker)
	w.Run(t)
}

// TaskYield yields self back to its worker, to be re-dispatched later
// behind whatever else is already READY on that worker.
func TaskYield(self *task.Task) { self.Yield() }

// TaskExit transitions self to ZOMBIE. Called by self's own function
// right before returning.
func TaskExit(self *task.Task) { self.Exit() }

// TaskBlock transitions self to BLOCKED{reason}. Callers outside package
// stream should rarely need this directly; stream.Read/Write/PollRead
// already call it at the right point with the waiter slot installed.
func TaskBlock(self *task.Task, reason task.BlockReason) { self.Block(reason) }

// TaskUnblock marks other READY and enqueues it on its owning worker.
// Safe to call across worker boundaries.
func TaskUnblock(self, other *task.Task) { other.Unblock() }

// TaskGetUID returns t's unique identifier.
func TaskGetUID(t *task.Task) uint64 { return t.UID() }

// LiveTaskUIDs returns the UIDs of every task not yet ZOMBIE, for the
// admin plane's task listing.
func LiveTaskUIDs() ([]uint64, error) {
	r, err := current()
	if err != nil {
		return nil, err
	}
	return r.live.UIDs(), nil
}

// Workers returns the number of workers the runtime was initialized with.
func Workers() (int, error) {
	r, err := current()
	if err != nil {
		return 0, err
	}
	return len(r.workers), nil
}

// WorkerDispatchCounts returns the cumulative dispatch count for each
// worker, indexed by worker id.
func WorkerDispatchCounts() ([]uint64, error) {
	r, err := current()
	if err != nil {
		return nil, err
	}
	out := make([]uint64, len(r.monCtx))
	for i, mc := range r.monCtx {
		out[i] = mc.DispatchCount()
	}
	return out, nil
}

// TaskDetail returns uid's current state, for the admin plane's per-task
// detail route. Returns admin.ErrTaskNotFound if uid is not a task this
// runtime created, or has already reached ZOMBIE.
func TaskDetail(uid uint64) (admin.TaskDetail, error) {
	r, err := current()
	if err != nil {
		return admin.TaskDetail{}, err
	}
	t, ok := r.getTask(uid)
	if !ok {
		return admin.TaskDetail{}, admin.ErrTaskNotFound
	}
	d := admin.TaskDetail{UID: uid, State: t.State().String()}
	if t.State() == task.Blocked {
		d.Blocked = string(t.BlockedOn())
	}
	return d, nil
}

// StreamUIDs returns the UIDs of every stream created through StreamNew
// and not yet retired by StreamClose, for the admin plane's stream
// listing.
func StreamUIDs() ([]uint64, error) {
	r, err := current()
	if err != nil {
		return nil, err
	}
	return r.streams.UIDs(), nil
}

// WorkerLogTail returns up to the last n lines of workerID's monitoring
// log, oldest first.
func WorkerLogTail(workerID, n int) ([]string, error) {
	r, err := current()
	if err != nil {
		return nil, err
	}
	if workerID < 0 || workerID >= len(r.monCtx) {
		return nil, fmt.Errorf("lpel: worker %d out of range", workerID)
	}
	path := r.monCtx[workerID].LogPath()
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read monitoring log: %w", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return nil, nil
	}
	if n > 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}

// CreateTaskByName creates a task at the entry point registered under
// name, on the given worker.
func CreateTaskByName(name string, workerID int) (uint64, error) {
	entryMu.Lock()
	fn, ok := entryPoints[name]
	entryMu.Unlock()
	if !ok {
		return 0, fmt.Errorf("lpel: no entry point registered as %q", name)
	}
	t, err := CreateTask(workerID, fn, nil, 0)
	if err != nil {
		return 0, err
	}
	TaskRun(t)
	return t.UID(), nil
}

// StreamNew allocates a bounded stream of the given item capacity.
func StreamNew(capacity int) *stream.Stream {
	s := stream.New(capacity)
	if r, err := current(); err == nil {
		r.streams.Add(s.UID())
	}
	return s
}

// StreamOpen binds a descriptor for owner onto s, attaching a stream
// monitor when owner's task monitor has MON_STREAMS enabled.
func StreamOpen(s *stream.Stream, owner *task.Task, mode stream.Mode) (*stream.Descriptor, error) {
	sd, err := stream.Open(s, owner, mode)
	if err != nil {
		return nil, err
	}
	if tm, ok := owner.Mon.(*monitoring.TaskMonitor); ok {
		if sm := monitoring.NewStreamMonitor(tm, s.UID(), byte(mode)); sm != nil {
			sd.SetMonitor(sm)
		}
	}
	return sd, nil
}

// StreamClose releases sd's binding to its stream, retiring the stream's
// UID from the admin-visible registry. Since a stream has independent
// reader and writer descriptors, whichever side closes first retires it;
// the registry tracks "has been torn down from at least one end", not
// "both ends closed" (the admin plane is observability-only, per the
// domain stack's Non-goals, so this approximation is acceptable).
func StreamClose(sd *stream.Descriptor) {
	uid := sd.StreamUID()
	stream.Close(sd)
	if r, err := current(); err == nil {
		r.streams.Remove(uid)
	}
}

// StreamReplace atomically swaps sd's underlying stream.
func StreamReplace(sd *stream.Descriptor, newStream *stream.Stream) error {
	return stream.Replace(sd, newStream)
}

// StreamWrite deposits item via sd, blocking the calling task if full.
func StreamWrite(sd *stream.Descriptor, item any) {
	stream.Write(sd, item)
	metrics.StreamItemsMoved.WithLabelValues(fmt.Sprint(sd.StreamUID())).Inc()
}

// StreamRead withdraws the head item via sd, blocking the calling task if
// empty.
func StreamRead(sd *stream.Descriptor) any { return stream.Read(sd) }

// StreamPollRead waits until any of sds has data, returning the
// descriptor that fired without consuming its item.
func StreamPollRead(self *task.Task, sds []*stream.Descriptor) *stream.Descriptor {
	return stream.PollRead(self, sds)
}
