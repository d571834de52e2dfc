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

package admin

import (
	"github.com/gin-gonic/gin"

	httppkg "github.com/lindb/common/pkg/http"
)

// WorkersPath is the worker-state listing endpoint.
var WorkersPath = "/workers"

// WorkerState is one worker's point-in-time counters.
type WorkerState struct {
	ID       int    `json:"id"`
	Dispatch uint64 `json:"dispatch"`
}

// WorkersAPI exposes per-worker dispatch counters.
type WorkersAPI struct {
	info RuntimeInfo
}

// Register adds the workers-state route.
func (a *WorkersAPI) Register(route gin.IRoutes) {
	route.GET(WorkersPath, a.List)
}

// List returns every worker's cumulative dispatch count.
func (a *WorkersAPI) List(c *gin.Context) {
	counts, err := a.info.WorkerDispatchCounts()
	if err != nil {
		httppkg.Error(c, err)
		return
	}
	states := make([]WorkerState, len(counts))
	for i, n := range counts {
		states[i] = WorkerState{ID: i, Dispatch: n}
	}
	httppkg.OK(c, states)
}
