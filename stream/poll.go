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

import "github.com/lpel-project/lpel/task"

// PollRead waits until at least one of sds (all read descriptors owned by
// self) has data, and returns the descriptor that fired. It does not
// consume the item; the caller follows up with Read(winner). At most one
// wake is ever delivered for a given call, even if several of sds become
// ready concurrently (§4.5).
func PollRead(self *task.Task, sds []*Descriptor) *Descriptor {
	self.WakeupSD.Store(task.WakeupToken{})
	self.PollToken.Store(int64(len(sds)))

	installed := make([]*Descriptor, 0, len(sds))
	for _, sd := range sds {
		s := sd.stream
		s.mu.Lock()
		if !s.empty() {
			s.mu.Unlock()
			uninstall(self, installed)
			self.PollToken.Store(0)
			return sd
		}
		s.consumerWaiter = self
		s.mu.Unlock()
		installed = append(installed, sd)
		if sd.mon != nil {
			sd.mon.BlockOn()
		}
	}

	self.Block(task.BlockOnAny)

	tok, _ := self.WakeupSD.Load().(task.WakeupToken)
	winner, _ := tok.V.(*Descriptor)
	self.WakeupSD.Store(task.WakeupToken{})

	uninstall(self, installed)
	self.PollToken.Store(0)
	return winner
}

// uninstall withdraws self from every descriptor's stream consumer-waiter
// slot it still occupies. Safe to call on a descriptor whose waiter slot
// was already cleared by the writer that woke self.
func uninstall(self *task.Task, installed []*Descriptor) {
	for _, sd := range installed {
		s := sd.stream
		s.mu.Lock()
		if s.consumerWaiter == self {
			s.consumerWaiter = nil
		}
		s.mu.Unlock()
	}
}
