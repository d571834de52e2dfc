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

// Package hashing assigns a named task to a worker deterministically, so
// a host application that creates a task under a stable key (e.g. "shard-3")
// always lands it on the same worker across restarts, without needing to
// remember worker_id itself.
package hashing

import (
	"github.com/cespare/xxhash/v2"
	jump "github.com/lithammer/go-jump-consistent-hash"
)

// AssignWorker maps key deterministically onto [0, numWorkers). Uses the
// jump consistent hash algorithm over an xxhash digest of key, so growing
// numWorkers only reshuffles a small fraction of keys rather than all of
// them.
func AssignWorker(key string, numWorkers int) int {
	if numWorkers <= 1 {
		return 0
	}
	digest := xxhash.Sum64String(key)
	return int(jump.Hash(digest, int32(numWorkers)))
}
