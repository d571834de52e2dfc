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

// Code generated by MockGen would normally produce this file from
// RuntimeInfo; hand-written here since the package carries no go:generate
// directive of its own yet, in the same gomock.Controller/Call idiom
// mockgen output uses elsewhere in the ecosystem.

package admin

import (
	"reflect"

	"go.uber.org/mock/gomock"
)

// MockRuntimeInfo is a gomock-compatible mock of RuntimeInfo.
type MockRuntimeInfo struct {
	ctrl     *gomock.Controller
	recorder *MockRuntimeInfoMockRecorder
}

// MockRuntimeInfoMockRecorder records expected calls on a MockRuntimeInfo.
type MockRuntimeInfoMockRecorder struct {
	mock *MockRuntimeInfo
}

// NewMockRuntimeInfo returns a new mock bound to ctrl.
func NewMockRuntimeInfo(ctrl *gomock.Controller) *MockRuntimeInfo {
	m := &MockRuntimeInfo{ctrl: ctrl}
	m.recorder = &MockRuntimeInfoMockRecorder{mock: m}
	return m
}

// EXPECT returns this mock's recorder, for setting up call expectations.
func (m *MockRuntimeInfo) EXPECT() *MockRuntimeInfoMockRecorder {
	return m.recorder
}

func (m *MockRuntimeInfo) WorkerDispatchCounts() ([]uint64, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "WorkerDispatchCounts")
	ret0, _ := ret[0].([]uint64)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockRuntimeInfoMockRecorder) WorkerDispatchCounts() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "WorkerDispatchCounts",
		reflect.TypeOf((*MockRuntimeInfo)(nil).WorkerDispatchCounts))
}

func (m *MockRuntimeInfo) LiveTaskUIDs() ([]uint64, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "LiveTaskUIDs")
	ret0, _ := ret[0].([]uint64)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockRuntimeInfoMockRecorder) LiveTaskUIDs() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "LiveTaskUIDs",
		reflect.TypeOf((*MockRuntimeInfo)(nil).LiveTaskUIDs))
}

func (m *MockRuntimeInfo) Workers() (int, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Workers")
	ret0, _ := ret[0].(int)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockRuntimeInfoMockRecorder) Workers() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Workers",
		reflect.TypeOf((*MockRuntimeInfo)(nil).Workers))
}

func (m *MockRuntimeInfo) TaskDetail(uid uint64) (TaskDetail, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "TaskDetail", uid)
	ret0, _ := ret[0].(TaskDetail)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockRuntimeInfoMockRecorder) TaskDetail(uid any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "TaskDetail",
		reflect.TypeOf((*MockRuntimeInfo)(nil).TaskDetail), uid)
}

func (m *MockRuntimeInfo) StreamUIDs() ([]uint64, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "StreamUIDs")
	ret0, _ := ret[0].([]uint64)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockRuntimeInfoMockRecorder) StreamUIDs() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "StreamUIDs",
		reflect.TypeOf((*MockRuntimeInfo)(nil).StreamUIDs))
}

func (m *MockRuntimeInfo) WorkerLogTail(workerID, lines int) ([]string, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "WorkerLogTail", workerID, lines)
	ret0, _ := ret[0].([]string)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockRuntimeInfoMockRecorder) WorkerLogTail(workerID, lines any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "WorkerLogTail",
		reflect.TypeOf((*MockRuntimeInfo)(nil).WorkerLogTail), workerID, lines)
}

func (m *MockRuntimeInfo) CreateTaskByName(name string, workerID int) (uint64, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "CreateTaskByName", name, workerID)
	ret0, _ := ret[0].(uint64)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockRuntimeInfoMockRecorder) CreateTaskByName(name, workerID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "CreateTaskByName",
		reflect.TypeOf((*MockRuntimeInfo)(nil).CreateTaskByName), name, workerID)
}
