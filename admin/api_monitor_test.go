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

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestMonitorAPI_Tail_DefaultsToPlainText(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	info := NewMockRuntimeInfo(ctrl)
	info.EXPECT().WorkerLogTail(3, defaultTailLines).Return([]string{"line one", "line two"}, nil)

	engine := newTestEngine((&MonitorAPI{info: info}).Register)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/monitor/3/tail", nil)
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Equal(t, "line one\nline two\n", rec.Body.String())
}

func TestMonitorAPI_Tail_NegotiatesJSON(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	info := NewMockRuntimeInfo(ctrl)
	info.EXPECT().WorkerLogTail(3, defaultTailLines).Return([]string{"line one"}, nil)

	engine := newTestEngine((&MonitorAPI{info: info}).Register)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/monitor/3/tail", nil)
	req.Header.Set("Accept", "application/json")
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "line one")
}

func TestMonitorAPI_Tail_HonorsLinesQueryParam(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	info := NewMockRuntimeInfo(ctrl)
	info.EXPECT().WorkerLogTail(3, 25).Return([]string{"only"}, nil)

	engine := newTestEngine((&MonitorAPI{info: info}).Register)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/monitor/3/tail?lines=25", nil)
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMonitorAPI_Tail_RejectsNonNumericWorker(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	info := NewMockRuntimeInfo(ctrl)
	engine := newTestEngine((&MonitorAPI{info: info}).Register)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/monitor/not-a-number/tail", nil)
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMonitorAPI_Tail_PropagatesError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	info := NewMockRuntimeInfo(ctrl)
	info.EXPECT().WorkerLogTail(3, defaultTailLines).Return(nil, assertErr)

	engine := newTestEngine((&MonitorAPI{info: info}).Register)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/monitor/3/tail", nil)
	engine.ServeHTTP(rec, req)

	assert.NotEqual(t, http.StatusOK, rec.Code)
}
