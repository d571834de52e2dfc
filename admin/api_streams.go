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

// StreamsPath is the stream listing endpoint.
var StreamsPath = "/streams"

// StreamsAPI exposes the set of streams currently registered with the
// runtime.
type StreamsAPI struct {
	info RuntimeInfo
}

// Register adds the streams-listing route.
func (a *StreamsAPI) Register(route gin.IRoutes) {
	route.GET(StreamsPath, a.List)
}

// List returns the UIDs of every stream the runtime knows about.
func (a *StreamsAPI) List(c *gin.Context) {
	uids, err := a.info.StreamUIDs()
	if err != nil {
		httppkg.Error(c, err)
		return
	}
	httppkg.OK(c, uids)
}
