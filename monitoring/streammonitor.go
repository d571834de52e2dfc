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

// Stream-descriptor states, printed verbatim in the dirty-list record.
const (
	stateOpened   = 'O'
	stateInuse    = 'I'
	stateClosed   = 'C'
	stateReplaced = 'R'
)

// streamRecord mirrors one stream descriptor's monitoring state. It lives
// only while MON_STREAMS is enabled for the owning task.
type streamRecord struct {
	sid     uint64
	mode    byte // 'r' or 'w'
	state   byte
	counter uint64

	blockon, wakeup, moved bool

	onChain bool
	next    *streamRecord

	owner *TaskMonitor
}

// StreamMonitor implements stream.EventMonitor for one descriptor, given
// MON_STREAMS is enabled on its owning task.
type StreamMonitor struct {
	rec *streamRecord
}

// NewStreamMonitor builds the monitor for a descriptor of the given
// stream UID and mode ('r'/'w'), owned by tm. Returns nil if tm is nil or
// has MON_STREAMS disabled, matching the source's LpelMonStreamOpen,
// which returns NULL (no monitoring object at all) in that case.
func NewStreamMonitor(tm *TaskMonitor, streamUID uint64, mode byte) *StreamMonitor {
	if tm == nil || !tm.streamsEnabled {
		return nil
	}
	return &StreamMonitor{rec: &streamRecord{
		sid:   streamUID,
		mode:  mode,
		state: stateOpened,
		owner: tm,
	}}
}

func (m *StreamMonitor) Opened() {
	if m == nil {
		return
	}
	m.rec.owner.markDirty(m.rec)
}

func (m *StreamMonitor) Closed() {
	if m == nil {
		return
	}
	m.rec.state = stateClosed
	m.rec.owner.markDirty(m.rec)
}

func (m *StreamMonitor) Replaced() {
	if m == nil {
		return
	}
	m.rec.state = stateReplaced
	m.rec.owner.markDirty(m.rec)
}

func (m *StreamMonitor) BlockOn() {
	if m == nil {
		return
	}
	m.rec.blockon = true
	m.rec.owner.markDirty(m.rec)
}

// WakeUp is intentionally a near no-op: the source suppresses marking
// dirty here because the MOVED event on the same descriptor follows
// immediately and would otherwise double the same line into the dirty
// list (§4.8 "Wakeup event logging is suppressed..."). The flag is still
// recorded so a reader can tell a wakeup happened, in case Moved somehow
// does not immediately follow.
func (m *StreamMonitor) WakeUp() {
	if m == nil {
		return
	}
	m.rec.wakeup = true
}

func (m *StreamMonitor) Moved() {
	if m == nil {
		return
	}
	m.rec.counter++
	m.rec.moved = true
	m.rec.owner.markDirty(m.rec)
}
