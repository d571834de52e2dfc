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

package liveset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddContainsRemove(t *testing.T) {
	s := New()
	assert.False(t, s.Contains(7))

	s.Add(7)
	assert.True(t, s.Contains(7))
	assert.Equal(t, 1, s.Len())

	s.Remove(7)
	assert.False(t, s.Contains(7))
	assert.Equal(t, 0, s.Len())
}

func TestRemove_MissingUIDIsNoop(t *testing.T) {
	s := New()
	s.Remove(99)
	assert.Equal(t, 0, s.Len())
}

func TestUIDs_AscendingSnapshot(t *testing.T) {
	s := New()
	s.Add(30)
	s.Add(10)
	s.Add(20)
	assert.Equal(t, []uint64{10, 20, 30}, s.UIDs())
}

func TestAdd_TruncatesTo32Bits(t *testing.T) {
	s := New()
	var big uint64 = (1 << 32) | 5
	s.Add(big)
	assert.True(t, s.Contains(5))
}
