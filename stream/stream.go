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

// Package stream implements the bounded single-producer/single-consumer
// FIFO tasks communicate through, its descriptors, and the at-most-one-wake
// multi-stream polling protocol.
package stream

import (
	"sync"
	"sync/atomic"

	"github.com/lpel-project/lpel/task"
)

var uidSeq uint64

func nextUID() uint64 { return atomic.AddUint64(&uidSeq, 1) }

// Stream is a bounded FIFO of opaque items between exactly one producer
// task and exactly one consumer task.
type Stream struct {
	uid uint64

	mu   sync.Mutex
	buf  []any
	head int
	n    int

	reader *Descriptor
	writer *Descriptor

	producerWaiter *task.Task
	consumerWaiter *task.Task
}

// New allocates a stream of the given item capacity. capacity <= 0 is
// treated as 1: a stream of capacity zero has no useful semantics here.
func New(capacity int) *Stream {
	if capacity <= 0 {
		capacity = 1
	}
	return &Stream{
		uid: nextUID(),
		buf: make([]any, capacity),
	}
}

// UID returns the stream's monotonically assigned identifier.
func (s *Stream) UID() uint64 { return s.uid }

func (s *Stream) cap() int { return len(s.buf) }

func (s *Stream) full() bool { return s.n == s.cap() }

func (s *Stream) empty() bool { return s.n == 0 }

// push requires the caller to hold s.mu and that the stream is not full.
func (s *Stream) push(item any) {
	tail := (s.head + s.n) % s.cap()
	s.buf[tail] = item
	s.n++
}

// pop requires the caller to hold s.mu and that the stream is not empty.
func (s *Stream) pop() any {
	item := s.buf[s.head]
	s.buf[s.head] = nil
	s.head = (s.head + 1) % s.cap()
	s.n--
	return item
}

// Write deposits item, blocking the calling task (sd's owner) if the
// stream is full until the consumer makes room. Must be called by the
// task that owns sd, from its own coroutine.
func Write(sd *Descriptor, item any) {
	s := sd.stream
	t := sd.owner

	s.mu.Lock()
	for s.full() {
		s.producerWaiter = t
		if sd.mon != nil {
			sd.mon.BlockOn()
		}
		s.mu.Unlock()

		t.Block(task.BlockOnOutput)
		t.WakeupSD.Store(task.WakeupToken{})

		s.mu.Lock()
	}

	s.push(item)
	waiter := s.consumerWaiter
	s.consumerWaiter = nil
	s.mu.Unlock()

	if sd.mon != nil {
		sd.mon.Moved()
	}
	if waiter != nil {
		wake(waiter, sd.peer)
	}
}

// Read withdraws the head item, blocking the calling task (sd's owner) if
// the stream is empty until the producer deposits one. Must be called by
// the task that owns sd, from its own coroutine.
func Read(sd *Descriptor) any {
	s := sd.stream
	t := sd.owner

	s.mu.Lock()
	for s.empty() {
		s.consumerWaiter = t
		if sd.mon != nil {
			sd.mon.BlockOn()
		}
		s.mu.Unlock()

		t.Block(task.BlockOnInput)
		t.WakeupSD.Store(task.WakeupToken{})

		s.mu.Lock()
	}

	item := s.pop()
	waiter := s.producerWaiter
	s.producerWaiter = nil
	s.mu.Unlock()

	if sd.mon != nil {
		sd.mon.Moved()
	}
	if waiter != nil {
		wake(waiter, sd.peer)
	}
	return item
}

// wake delivers a wake-up to waiter on behalf of viaSD, the waiter's own
// descriptor for the stream that just became ready. CASing WakeupSD away
// from its zero token arbitrates the race when waiter is a poller
// installed on several streams at once: only the winner unblocks the
// task, so at most one wake is ever delivered per poll (§4.5). A
// non-polling waiter's WakeupSD is always reset to the zero token before
// it blocks, so the CAS here never has a loser in that case.
func wake(waiter *task.Task, viaSD *Descriptor) {
	if waiter.WakeupSD.CompareAndSwap(task.WakeupToken{}, task.WakeupToken{V: viaSD}) {
		if viaSD != nil && viaSD.mon != nil {
			viaSD.mon.WakeUp()
		}
		waiter.Unblock()
	}
}
