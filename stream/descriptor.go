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

package stream

import (
	"fmt"

	"github.com/lpel-project/lpel/task"
)

// Mode is the direction a descriptor binds a task to a stream in.
type Mode byte

const (
	ModeRead  Mode = 'r'
	ModeWrite Mode = 'w'
)

// EventMonitor mirrors stream-descriptor state for monitoring purposes.
// Declared here rather than in package monitoring so the scheduling core
// never imports the monitoring format. A descriptor's Mon is nil unless
// MON_STREAMS was requested for the owning task.
type EventMonitor interface {
	Opened()
	Closed()
	Replaced()
	BlockOn()
	WakeUp()
	Moved()
}

// Descriptor is one task's handle to one end of a stream: the unit a task
// manipulates. A stream has at most one reader descriptor and one writer
// descriptor live at any moment.
type Descriptor struct {
	stream *Stream
	owner  *task.Task
	mode   Mode
	mon    EventMonitor

	// peer is the descriptor bound to the opposite end of the same
	// stream, once both ends are open. Producers stash the consumer's own
	// peer descriptor into the consumer's WakeupSD (and vice versa) so a
	// polling task recognises which of its own descriptors fired.
	peer *Descriptor
}

// Owner returns the task this descriptor belongs to.
func (sd *Descriptor) Owner() *task.Task { return sd.owner }

// Mode returns the direction this descriptor binds its owner in.
func (sd *Descriptor) Mode() Mode { return sd.mode }

// StreamUID returns the UID of the stream currently bound to sd.
func (sd *Descriptor) StreamUID() uint64 { return sd.stream.UID() }

// Open binds a new descriptor for owner onto s in the given mode. Opening
// a second descriptor in the same mode on the same stream is a contract
// violation (the source treats this as a debug assertion); this
// implementation reports it rather than leaving undefined behaviour,
// since a cheap check here costs nothing on the open path.
func Open(s *Stream, owner *task.Task, mode Mode) (*Descriptor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sd := &Descriptor{stream: s, owner: owner, mode: mode}
	switch mode {
	case ModeRead:
		if s.reader != nil {
			return nil, fmt.Errorf("stream %d already has a reader descriptor", s.uid)
		}
		s.reader = sd
		if s.writer != nil {
			sd.peer, s.writer.peer = s.writer, sd
		}
	case ModeWrite:
		if s.writer != nil {
			return nil, fmt.Errorf("stream %d already has a writer descriptor", s.uid)
		}
		s.writer = sd
		if s.reader != nil {
			sd.peer, s.reader.peer = s.reader, sd
		}
	default:
		return nil, fmt.Errorf("stream: invalid mode %q", mode)
	}
	return sd, nil
}

// SetMonitor attaches (or clears, with nil) the event monitor for sd.
func (sd *Descriptor) SetMonitor(mon EventMonitor) {
	sd.mon = mon
	if mon != nil {
		mon.Opened()
	}
}

// Close releases sd's binding to its stream.
func Close(sd *Descriptor) {
	s := sd.stream
	s.mu.Lock()
	switch sd.mode {
	case ModeRead:
		if s.reader == sd {
			s.reader = nil
		}
	case ModeWrite:
		if s.writer == sd {
			s.writer = nil
		}
	}
	if sd.peer != nil {
		sd.peer.peer = nil
		sd.peer = nil
	}
	s.mu.Unlock()

	if sd.mon != nil {
		sd.mon.Closed()
	}
}

// Replace atomically swaps the stream underlying sd for newStream,
// preserving sd's identity (its owning task keeps the same descriptor
// value) — used to rewire a pipeline without re-announcing the
// descriptor. sd is unbound from its old stream and rebound to the new
// one in the same mode.
func Replace(sd *Descriptor, newStream *Stream) error {
	old := sd.stream
	old.mu.Lock()
	switch sd.mode {
	case ModeRead:
		if old.reader == sd {
			old.reader = nil
		}
	case ModeWrite:
		if old.writer == sd {
			old.writer = nil
		}
	}
	if sd.peer != nil {
		sd.peer.peer = nil
	}
	old.mu.Unlock()

	newStream.mu.Lock()
	sd.stream = newStream
	sd.peer = nil
	switch sd.mode {
	case ModeRead:
		if newStream.reader != nil {
			newStream.mu.Unlock()
			return fmt.Errorf("stream %d already has a reader descriptor", newStream.uid)
		}
		newStream.reader = sd
		if newStream.writer != nil {
			sd.peer, newStream.writer.peer = newStream.writer, sd
		}
	case ModeWrite:
		if newStream.writer != nil {
			newStream.mu.Unlock()
			return fmt.Errorf("stream %d already has a writer descriptor", newStream.uid)
		}
		newStream.writer = sd
		if newStream.reader != nil {
			sd.peer, newStream.reader.peer = newStream.reader, sd
		}
	}
	newStream.mu.Unlock()

	if sd.mon != nil {
		sd.mon.Replaced()
	}
	return nil
}
