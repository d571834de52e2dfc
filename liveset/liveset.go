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

// Package liveset tracks the set of task UIDs that are not yet ZOMBIE, for
// the admin plane's task listing. Cleanup does not consult it.
package liveset

import (
	"sync"

	"github.com/lindb/roaring"
)

// Set is a concurrency-safe set of live task UIDs.
type Set struct {
	mu sync.RWMutex
	bm *roaring.Bitmap
}

// New returns an empty live set.
func New() *Set {
	return &Set{bm: roaring.New()}
}

// Add marks uid live. Task UIDs are truncated to 32 bits: a single process
// is never expected to create more than 2^32 tasks over its lifetime.
func (s *Set) Add(uid uint64) {
	s.mu.Lock()
	s.bm.Add(uint32(uid))
	s.mu.Unlock()
}

// Remove marks uid no longer live (the task reached ZOMBIE and was
// destroyed).
func (s *Set) Remove(uid uint64) {
	s.mu.Lock()
	s.bm.Remove(uint32(uid))
	s.mu.Unlock()
}

// Contains reports whether uid is currently live.
func (s *Set) Contains(uid uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bm.Contains(uint32(uid))
}

// Len reports the number of live tasks.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int(s.bm.GetCardinality())
}

// UIDs returns a snapshot of every live task UID, in ascending order.
func (s *Set) UIDs() []uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]uint64, 0, s.bm.GetCardinality())
	it := s.bm.Iterator()
	for it.HasNext() {
		out = append(out, uint64(it.Next()))
	}
	return out
}
