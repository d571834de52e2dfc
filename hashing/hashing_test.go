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

package hashing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssignWorker_SingleOrZeroWorkersAlwaysZero(t *testing.T) {
	assert.Equal(t, 0, AssignWorker("anything", 1))
	assert.Equal(t, 0, AssignWorker("anything", 0))
	assert.Equal(t, 0, AssignWorker("anything", -3))
}

func TestAssignWorker_Deterministic(t *testing.T) {
	a := AssignWorker("stream-42", 8)
	b := AssignWorker("stream-42", 8)
	assert.Equal(t, a, b)
	assert.GreaterOrEqual(t, a, 0)
	assert.Less(t, a, 8)
}

func TestAssignWorker_DifferentKeysCanLandDifferently(t *testing.T) {
	seen := map[int]bool{}
	for i := 0; i < 64; i++ {
		seen[AssignWorker(string(rune('a'+i%26))+string(rune('0'+i%10)), 8)] = true
	}
	assert.Greater(t, len(seen), 1)
}
