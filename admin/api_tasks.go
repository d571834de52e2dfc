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
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	httppkg "github.com/lindb/common/pkg/http"

	"github.com/lpel-project/lpel/monitoring"
)

// TasksPath lists live task UIDs and accepts the one POST route that
// creates a task from a pre-registered named entry point.
// TasksDetailPath serves one task's current state.
// TasksSnapshotPath exports a FlatBuffers snapshot of every live task for
// the operator CLI; unlike TasksPath it is always FlatBuffers, so no
// content negotiation happens on it.
var (
	TasksPath         = "/tasks"
	TasksDetailPath   = "/tasks/:uid"
	TasksSnapshotPath = "/tasks.fb"
)

const fbMediaType = "application/x-flatbuffers"

var createTaskValidator = validator.New()

// CreateTaskRequest is the body of POST /tasks: create a task at a
// pre-registered named entry point, on a given worker.
type CreateTaskRequest struct {
	Name     string `json:"name" validate:"required"`
	WorkerID int    `json:"workerId" validate:"gte=0"`
}

// TasksAPI exposes the live task set and task creation.
type TasksAPI struct {
	info RuntimeInfo
}

// Register adds the task routes.
func (a *TasksAPI) Register(route gin.IRoutes) {
	route.GET(TasksPath, a.List)
	route.POST(TasksPath, a.Create)
	route.GET(TasksDetailPath, a.Detail)
	route.GET(TasksSnapshotPath, a.Snapshot)
}

// List returns the UIDs of every live (non-ZOMBIE) task.
func (a *TasksAPI) List(c *gin.Context) {
	uids, err := a.info.LiveTaskUIDs()
	if err != nil {
		httppkg.Error(c, err)
		return
	}
	httppkg.OK(c, uids)
}

// Create binds a CreateTaskRequest and starts a task at the named,
// pre-registered entry point it identifies.
func (a *TasksAPI) Create(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := createTaskValidator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	uid, err := a.info.CreateTaskByName(req.Name, req.WorkerID)
	if err != nil {
		httppkg.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"uid": uid})
}

// Detail returns one task's current state, or 404 if it is not live.
func (a *TasksAPI) Detail(c *gin.Context) {
	uid, err := strconv.ParseUint(c.Param("uid"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uid"})
		return
	}
	detail, err := a.info.TaskDetail(uid)
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		httppkg.Error(c, err)
		return
	}
	httppkg.OK(c, detail)
}

// Snapshot serves a FlatBuffers-encoded snapshot of every live task. This
// route's format is fixed by its path, not negotiated: a caller that wants
// JSON uses TasksPath instead.
func (a *TasksAPI) Snapshot(c *gin.Context) {
	uids, err := a.info.LiveTaskUIDs()
	if err != nil {
		httppkg.Error(c, err)
		return
	}

	records := make([]monitoring.TaskRecord, len(uids))
	for i, uid := range uids {
		records[i] = monitoring.TaskRecord{UID: uid}
	}

	buf := monitoring.BuildSnapshot(0, 0, records)
	c.Data(http.StatusOK, fbMediaType, buf)
}
