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
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-http-utils/headers"
	"github.com/munnerz/goautoneg"

	httppkg "github.com/lindb/common/pkg/http"
)

// MonitorTailPath tails a worker's monitoring log.
var MonitorTailPath = "/monitor/:worker/tail"

const defaultTailLines = 100

// MonitorAPI exposes per-worker monitoring log access.
type MonitorAPI struct {
	info RuntimeInfo
}

// Register adds the monitoring-tail route.
func (a *MonitorAPI) Register(route gin.IRoutes) {
	route.GET(MonitorTailPath, a.Tail)
}

// Tail returns a worker's most recent monitoring log lines, as raw
// text/plain or as a JSON array of lines depending on what the caller's
// Accept header negotiates (goautoneg, the same content-negotiation
// algorithm net/http's own handlers use internally).
func (a *MonitorAPI) Tail(c *gin.Context) {
	workerID, err := strconv.Atoi(c.Param("worker"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid worker id"})
		return
	}
	lines := defaultTailLines
	if raw := c.Query("lines"); raw != "" {
		if n, perr := strconv.Atoi(raw); perr == nil && n > 0 {
			lines = n
		}
	}

	tail, err := a.info.WorkerLogTail(workerID, lines)
	if err != nil {
		httppkg.Error(c, err)
		return
	}

	accept := c.GetHeader(headers.Accept)
	alternatives := []string{"text/plain", "application/json"}
	negotiated := goautoneg.Negotiate(accept, alternatives)

	if negotiated == "application/json" {
		httppkg.OK(c, tail)
		return
	}

	c.Header(headers.ContentType, "text/plain; charset=utf-8")
	c.Status(http.StatusOK)
	for _, line := range tail {
		c.Writer.WriteString(line)
		c.Writer.WriteString("\n")
	}
}
