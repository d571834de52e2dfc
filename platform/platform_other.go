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

//go:build !linux

package platform

// CanSetExclusive always reports false outside Linux: this adapter only
// knows how to probe the real-time scheduling classes Linux exposes.
func CanSetExclusive() (bool, error) {
	return false, errFail("real-time scheduling probe only supported on linux")
}

// PinTo is a no-op outside Linux; affinity pinning is not attempted.
func PinTo(set CPUSet) error {
	return nil
}

// RequestExclusive is a no-op outside Linux.
func RequestExclusive() error {
	return nil
}
