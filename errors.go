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

package lpel

import "errors"

// Sentinel errors returned by the runtime facade. Callers should compare
// with errors.Is, since Init wraps them with context.
var (
	// ErrInval is returned when the supplied Config fails validation.
	ErrInval = errors.New("lpel: invalid configuration")
	// ErrFail is returned when a platform capability probe failed.
	ErrFail = errors.New("lpel: platform probe failed")
	// ErrAssign is returned when pinning a thread's affinity failed.
	ErrAssign = errors.New("lpel: thread affinity assignment failed")
	// ErrExcl is returned when EXCLUSIVE was requested but is not permitted.
	ErrExcl = errors.New("lpel: exclusive scheduling not permitted")
)
