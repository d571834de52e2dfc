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
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lpel-project/lpel/task"
)

// chanRescheduler is a minimal Rescheduler: EnqueueReady signals a single
// task's own resume channel, which its suspend closure parks on. This lets
// Write/Read's real Block/Unblock/suspend path run across two goroutines
// without a full worker or coroutine underneath it.
type chanRescheduler struct {
	resume chan struct{}
}

func newRunningTask() (*task.Task, *chanRescheduler) {
	r := &chanRescheduler{resume: make(chan struct{}, 1)}
	t := task.New(r, nil, nil, 0)
	t.BindSuspend(func() { <-r.resume })
	t.MarkReadyForRun()
	t.MarkRunning()
	return t, r
}

func (r *chanRescheduler) EnqueueReady(*task.Task) { r.resume <- struct{}{} }

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before timeout")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestNew_CapacityFloor(t *testing.T) {
	assert.Equal(t, 1, New(0).cap())
	assert.Equal(t, 1, New(-5).cap())
	assert.Equal(t, 4, New(4).cap())
}

func TestUID_Sequential(t *testing.T) {
	a, b := New(1), New(1)
	assert.Less(t, a.UID(), b.UID())
}

func TestOpen_RejectsSecondDescriptorInSameMode(t *testing.T) {
	s := New(1)
	wTask, _ := newRunningTask()
	other, _ := newRunningTask()

	_, err := Open(s, wTask, ModeWrite)
	require.NoError(t, err)
	_, err = Open(s, other, ModeWrite)
	assert.Error(t, err)
}

func TestOpen_WiresPeerDescriptorsBothWays(t *testing.T) {
	s := New(1)
	wTask, _ := newRunningTask()
	rTask, _ := newRunningTask()

	wsd, err := Open(s, wTask, ModeWrite)
	require.NoError(t, err)
	assert.Nil(t, wsd.peer)

	rsd, err := Open(s, rTask, ModeRead)
	require.NoError(t, err)
	assert.Same(t, rsd, wsd.peer)
	assert.Same(t, wsd, rsd.peer)
}

func TestClose_ClearsPeerOnBothEnds(t *testing.T) {
	s := New(1)
	wTask, _ := newRunningTask()
	rTask, _ := newRunningTask()
	wsd, _ := Open(s, wTask, ModeWrite)
	rsd, _ := Open(s, rTask, ModeRead)

	Close(wsd)
	assert.Nil(t, rsd.peer)
	assert.Nil(t, s.writer)
}

func TestWriteRead_NonBlockingRoundTrip(t *testing.T) {
	s := New(2)
	wTask, _ := newRunningTask()
	rTask, _ := newRunningTask()
	wsd, _ := Open(s, wTask, ModeWrite)
	rsd, _ := Open(s, rTask, ModeRead)

	Write(wsd, "a")
	Write(wsd, "b")
	assert.Equal(t, "a", Read(rsd))
	assert.Equal(t, "b", Read(rsd))
}

func TestWrite_BlocksWhenFullAndWakesOnRead(t *testing.T) {
	s := New(1)
	wTask, _ := newRunningTask()
	rTask, _ := newRunningTask()
	wsd, _ := Open(s, wTask, ModeWrite)
	rsd, _ := Open(s, rTask, ModeRead)

	Write(wsd, "a")

	writeDone := make(chan struct{})
	go func() {
		Write(wsd, "b")
		close(writeDone)
	}()

	waitUntil(t, time.Second, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.producerWaiter == wTask
	})

	select {
	case <-writeDone:
		t.Fatal("second write completed before the stream had room")
	default:
	}

	assert.Equal(t, "a", Read(rsd))

	select {
	case <-writeDone:
	case <-time.After(time.Second):
		t.Fatal("blocked writer was not woken after Read freed a slot")
	}
	assert.Equal(t, "b", Read(rsd))
}

func TestRead_BlocksWhenEmptyAndWakesOnWrite(t *testing.T) {
	s := New(1)
	wTask, _ := newRunningTask()
	rTask, _ := newRunningTask()
	wsd, _ := Open(s, wTask, ModeWrite)
	rsd, _ := Open(s, rTask, ModeRead)

	readDone := make(chan any, 1)
	go func() {
		readDone <- Read(rsd)
	}()

	waitUntil(t, time.Second, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.consumerWaiter == rTask
	})

	Write(wsd, "x")

	select {
	case v := <-readDone:
		assert.Equal(t, "x", v)
	case <-time.After(time.Second):
		t.Fatal("blocked reader was not woken after Write deposited an item")
	}
}

func TestWake_CASDeliversAtMostOnce(t *testing.T) {
	waiter, r := newRunningTask()
	s1 := New(1)
	s2 := New(1)
	sd1, _ := Open(s1, waiter, ModeRead)
	sd2, _ := Open(s2, waiter, ModeRead)

	waiter.PollToken.Store(2)

	first := waiter.WakeupSD.CompareAndSwap(task.WakeupToken{}, task.WakeupToken{V: sd1})
	require.True(t, first)

	// A second wake for the same poll must not win the CAS and must not
	// re-enqueue the task.
	wake(waiter, sd2)

	assert.Len(t, r.resume, 0)
	tok := waiter.WakeupSD.Load().(task.WakeupToken)
	assert.Same(t, sd1, tok.V)
}

// fakeEventMonitor counts calls per method so tests can assert which
// events actually fired without depending on package monitoring.
type fakeEventMonitor struct {
	mu      sync.Mutex
	wakeups int
}

func (f *fakeEventMonitor) Opened()   {}
func (f *fakeEventMonitor) Closed()   {}
func (f *fakeEventMonitor) Replaced() {}
func (f *fakeEventMonitor) BlockOn()  {}
func (f *fakeEventMonitor) Moved()    {}
func (f *fakeEventMonitor) WakeUp() {
	f.mu.Lock()
	f.wakeups++
	f.mu.Unlock()
}

func (f *fakeEventMonitor) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.wakeups
}

// TestWake_NotifiesWokenSideMonitor covers the at-most-one-wake protocol's
// monitoring side effect: the winner of the WakeupSD CAS must have its own
// descriptor's monitor told WakeUp, not just have Unblock called on it.
func TestWake_NotifiesWokenSideMonitor(t *testing.T) {
	s := New(1)
	wTask, _ := newRunningTask()
	rTask, _ := newRunningTask()
	wsd, _ := Open(s, wTask, ModeWrite)
	rsd, _ := Open(s, rTask, ModeRead)

	mon := &fakeEventMonitor{}
	rsd.SetMonitor(mon)
	assert.Equal(t, 0, mon.count())

	readDone := make(chan any, 1)
	go func() { readDone <- Read(rsd) }()

	waitUntil(t, time.Second, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.consumerWaiter == rTask
	})

	Write(wsd, "x")

	select {
	case v := <-readDone:
		assert.Equal(t, "x", v)
	case <-time.After(time.Second):
		t.Fatal("blocked reader was not woken after Write deposited an item")
	}
	assert.Equal(t, 1, mon.count())
}

func TestPollRead_ReturnsImmediatelyWhenDataAlreadyPresent(t *testing.T) {
	s1 := New(1)
	s2 := New(1)
	poller, _ := newRunningTask()
	wTask, _ := newRunningTask()

	rsd1, _ := Open(s1, poller, ModeRead)
	rsd2, _ := Open(s2, poller, ModeRead)
	wsd2, _ := Open(s2, wTask, ModeWrite)

	Write(wsd2, "ready")

	fired := PollRead(poller, []*Descriptor{rsd1, rsd2})
	assert.Same(t, rsd2, fired)
	assert.Equal(t, "ready", Read(fired))
}

func TestPollRead_BlocksThenWakesOnWhicheverStreamFires(t *testing.T) {
	s1 := New(1)
	s2 := New(1)
	poller, _ := newRunningTask()
	wTask, _ := newRunningTask()

	rsd1, _ := Open(s1, poller, ModeRead)
	rsd2, _ := Open(s2, poller, ModeRead)
	wsd2, _ := Open(s2, wTask, ModeWrite)

	var fired *Descriptor
	done := make(chan struct{})
	go func() {
		fired = PollRead(poller, []*Descriptor{rsd1, rsd2})
		close(done)
	}()

	waitUntil(t, time.Second, func() bool {
		s2.mu.Lock()
		defer s2.mu.Unlock()
		return s2.consumerWaiter == poller
	})

	Write(wsd2, "on-s2")

	select {
	case <-done:
		assert.Same(t, rsd2, fired)
		assert.Equal(t, "on-s2", Read(fired))
	case <-time.After(time.Second):
		t.Fatal("poller was not woken when s2 received data")
	}
}
