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

// Package monitoring implements the deferred, per-task event log: one log
// file per worker, flushed one line per task stop, plus the dirty-list
// bookkeeping that batches stream-descriptor events onto that line.
package monitoring

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lpel-project/lpel/config"
)

// begin is the reference timestamp every emitted time is normalized
// against (mirrors the source's monitoring_begin). Set once by Init,
// before any worker's Context is created.
var (
	beginOnce sync.Once
	begin     time.Time
)

// Init records the process-wide monitoring reference time. Safe to call
// more than once; only the first call takes effect.
func Init() {
	beginOnce.Do(func() { begin = time.Now() })
}

// diagLogger reports monitoring-internal failures (e.g. a log file that
// could not be opened) without ever propagating them to the scheduler,
// per §7: "The monitoring subsystem never raises errors back to the
// scheduler: a failed write is silently dropped." zap is used here,
// distinct from the structured application logger, since this is a very
// narrow, very hot diagnostic path where allocation-free logging matters.
var diagLogger = zap.NewNop()

// SetDiagLogger installs the zap logger monitoring uses for its own
// silent-failure diagnostics.
func SetDiagLogger(l *zap.Logger) {
	if l != nil {
		diagLogger = l
	}
}

// Context is a worker's monitoring context: one per worker, owning its
// log file. A worker's log is never touched by another worker, so no
// locking guards writes to out.
type Context struct {
	workerID int
	out      *rotatingFile

	mu       sync.Mutex
	disp     uint64
	waitCnt  uint64
	waitTotal time.Duration

	waitStart time.Time
}

// NewContext opens the monitoring log file for workerID under cfg's
// directory and naming convention. If the file cannot be opened, a
// Context is still returned (with out == nil); every subsequent write is
// then silently dropped, consistent with monitoring's "never error back
// to the scheduler" contract.
func NewContext(workerID int, name string, cfg config.Monitoring) *Context {
	Init()
	ctx := &Context{workerID: workerID}
	path := filepath.Join(cfg.Dir, cfg.LogFileName(name))
	f, err := openRotatingFile(path, int64(cfg.RotateSize))
	if err != nil {
		diagLogger.Warn("monitoring: could not open log file",
			zap.Int("worker", workerID), zap.String("path", path), zap.Error(err))
		return ctx
	}
	ctx.out = f
	return ctx
}

// WaitStart records that this worker's loop has parked waiting for work.
func (c *Context) WaitStart() {
	c.mu.Lock()
	c.waitCnt++
	c.waitStart = time.Now()
	c.mu.Unlock()
}

// WaitStop records that this worker's loop resumed after parking.
func (c *Context) WaitStop() {
	c.mu.Lock()
	if !c.waitStart.IsZero() {
		c.waitTotal += time.Since(c.waitStart)
		c.waitStart = time.Time{}
	}
	c.mu.Unlock()
}

// Dispatched increments the worker-level dispatch counter. The source
// keeps this counter but never reads it back into the log output; this
// implementation retains it for the same reason (§9 Open Question). The
// worker loop calls it once per dispatch, next to its increment of the
// lpel_worker_dispatch_total metric.
func (c *Context) Dispatched() {
	c.mu.Lock()
	c.disp++
	c.mu.Unlock()
}

// DispatchCount returns the worker-level dispatch counter.
func (c *Context) DispatchCount() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disp
}

// LogPath returns the path of this worker's monitoring log file, or "" if
// none was successfully opened.
func (c *Context) LogPath() string {
	if c.out == nil {
		return ""
	}
	return c.out.path
}

// Close closes the underlying log file, if one was opened.
func (c *Context) Close() {
	if c.out != nil {
		if err := c.out.Close(); err != nil {
			diagLogger.Warn("monitoring: error closing log file",
				zap.Int("worker", c.workerID), zap.Error(err))
		}
	}
}

// writeLine writes one already-formatted monitoring line, silently
// dropping it if no log file is open.
func (c *Context) writeLine(line string) {
	if c.out == nil {
		return
	}
	if _, err := fmt.Fprintln(c.out, line); err != nil {
		diagLogger.Warn("monitoring: write failed", zap.Int("worker", c.workerID), zap.Error(err))
	}
}

// normalizedTimestamp formats t relative to begin, following the source's
// convention: sub-second as raw microseconds, otherwise "<sec><06-digit-usec>".
func normalizedTimestamp(t time.Time) string {
	d := t.Sub(begin)
	if d < time.Second {
		return fmt.Sprintf("%d", d.Microseconds())
	}
	sec := d / time.Second
	usec := (d % time.Second) / time.Microsecond
	return fmt.Sprintf("%d%06d", sec, usec)
}

// formatDuration renders an elapsed duration the same way: microseconds
// under a second, "<sec><06-digit-usec>" otherwise.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%d", d.Microseconds())
	}
	sec := d / time.Second
	usec := (d % time.Second) / time.Microsecond
	return fmt.Sprintf("%d%06d", sec, usec)
}
