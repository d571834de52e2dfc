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
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func newTestEngine(register func(route gin.IRoutes)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	register(engine)
	return engine
}

func TestWorkersAPI_List_ReturnsPerWorkerCounts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	info := NewMockRuntimeInfo(ctrl)
	info.EXPECT().WorkerDispatchCounts().Return([]uint64{3, 7}, nil)

	engine := newTestEngine((&WorkersAPI{info: info}).Register)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, WorkersPath, nil)
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"dispatch":3`)
	assert.Contains(t, rec.Body.String(), `"dispatch":7`)
}

func TestWorkersAPI_List_PropagatesError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	info := NewMockRuntimeInfo(ctrl)
	info.EXPECT().WorkerDispatchCounts().Return(nil, assertErr)

	engine := newTestEngine((&WorkersAPI{info: info}).Register)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, WorkersPath, nil)
	engine.ServeHTTP(rec, req)

	assert.NotEqual(t, http.StatusOK, rec.Code)
}

var assertErr = assertError("boom")

type assertError string

func (e assertError) Error() string { return string(e) }
