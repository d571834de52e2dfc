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

package monitoring

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/lpel-project/lpel/task"
)

// Flags selects which of a task's two independent monitoring features are
// active: TIMES (dispatch timestamps) and STREAMS (the dirty-list of
// stream-descriptor events).
type Flags uint8

const (
	MonTimes Flags = 1 << iota
	MonStreams
)

// TaskMonitor implements task.Monitor: it stamps dispatch timing and,
// once a worker's coroutine switch returns the task to a stop point,
// formats and flushes one log line (§6) including that task's dirty
// stream-descriptor records (§4.8).
type TaskMonitor struct {
	ctx            *Context
	tid            uint64
	name           string
	timesEnabled   bool
	streamsEnabled bool

	mu        sync.Mutex
	disp      uint64
	creat     time.Duration
	start     time.Time
	stop      time.Time
	total     time.Duration
	dirtyHead *streamRecord
}

// NewTaskMonitor builds the monitor for one task. ctx may be nil, in
// which case formatted lines are computed but never written (matching
// monitoring's "writes are silently dropped" contract when no output
// sink exists).
func NewTaskMonitor(ctx *Context, tid uint64, name string, flags Flags) *TaskMonitor {
	tm := &TaskMonitor{
		ctx:            ctx,
		tid:            tid,
		name:           name,
		timesEnabled:   flags&MonTimes != 0,
		streamsEnabled: flags&MonStreams != 0,
	}
	if tm.timesEnabled {
		Init()
		tm.creat = time.Since(begin)
	}
	return tm
}

// Start implements task.Monitor: stamps the dispatch and bumps the
// task-level dispatch counter. The worker-level counter is bumped by the
// worker loop itself on every dispatch, monitored task or not.
func (tm *TaskMonitor) Start() {
	tm.mu.Lock()
	if tm.timesEnabled {
		tm.start = time.Now()
	}
	tm.disp++
	tm.mu.Unlock()
}

// Stop implements task.Monitor: formats and flushes one log line.
func (tm *TaskMonitor) Stop(state task.State, blockedOn task.BlockReason) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	var b strings.Builder
	if tm.timesEnabled {
		tm.stop = time.Now()
		b.WriteString(normalizedTimestamp(tm.stop))
		b.WriteByte(' ')
	}

	fmt.Fprintf(&b, "%d ", tm.tid)
	if tm.name != "" {
		fmt.Fprintf(&b, "%s ", tm.name)
	}
	fmt.Fprintf(&b, "disp %d ", tm.disp)

	if state == task.Blocked {
		fmt.Fprintf(&b, "st B%c ", byte(blockedOn))
	} else {
		fmt.Fprintf(&b, "st %c ", byte(state))
	}

	if tm.timesEnabled {
		et := tm.stop.Sub(tm.start)
		tm.total += et
		fmt.Fprintf(&b, "et %s ", formatDuration(et))
		if state == task.Zombie {
			fmt.Fprintf(&b, "creat %s ", formatDuration(tm.creat))
		}
	}

	if tm.streamsEnabled {
		b.WriteByte('[')
		tm.flushDirtyLocked(&b)
		b.WriteString("] ")
	}

	if tm.ctx != nil {
		tm.ctx.writeLine(strings.TrimRight(b.String(), " "))
	}
}

// markDirty prepends ms to the dirty chain if it is not already on it.
// Chain membership is tracked by ms.onChain, a separate boolean field,
// rather than by overloading the next pointer itself: "not on chain",
// "last on chain" (next == nil while onChain), and "linked to a
// successor" are three states that a bare pointer alone cannot carry
// without a reserved non-nil sentinel address; splitting the tag out
// avoids needing one.
func (tm *TaskMonitor) markDirty(ms *streamRecord) {
	tm.mu.Lock()
	if !ms.onChain {
		ms.next = tm.dirtyHead
		tm.dirtyHead = ms
		ms.onChain = true
	}
	tm.mu.Unlock()
}

// flushDirtyLocked prints and resets every record on the dirty chain.
// Caller must hold tm.mu.
func (tm *TaskMonitor) flushDirtyLocked(b *strings.Builder) {
	ms := tm.dirtyHead
	for ms != nil {
		next := ms.next
		fmt.Fprintf(b, "%d,%c,%c,%d,%c%c%c;",
			ms.sid, ms.mode, ms.state, ms.counter,
			flagChar(ms.blockon, '?'), flagChar(ms.wakeup, '!'), flagChar(ms.moved, '*'))

		switch ms.state {
		case stateOpened, stateReplaced:
			ms.state = stateInuse
			fallthrough
		case stateInuse:
			ms.onChain = false
			ms.next = nil
			ms.blockon, ms.wakeup, ms.moved = false, false, false
		case stateClosed:
			ms.onChain = false
			ms.next = nil
			// the record is otherwise unreferenced once its owning
			// Descriptor is gone; nothing further to free explicitly.
		}
		ms = next
	}
	tm.dirtyHead = nil
}

func flagChar(set bool, ch byte) byte {
	if set {
		return ch
	}
	return '-'
}
