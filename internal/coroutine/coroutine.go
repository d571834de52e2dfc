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

// Package coroutine stands in for the source-language's user-space stack
// switcher, which spec.md treats as an external, black-box primitive
// offering create/switch/destroy of an execution context. Go cannot switch
// stacks under a caller's feet without cgo or assembly, so this realizes
// the same observable contract — exactly one of a pair of contexts is
// ever runnable at a time, and control transfers deterministically between
// them — with a pair of unbuffered channels instead of a raw stack swap.
//
// Each Context is driven by exactly one goroutine. Switch(from, to) is only
// valid when called from the goroutine owning from; it wakes to and parks
// the caller until someone switches back to from.
package coroutine

// Context is one execution context: either a worker's own scheduling
// context, or a task's body.
type Context struct {
	resume chan struct{}
}

// NewContext allocates a context not yet bound to any goroutine. Used for
// a worker's scheduling context, which is driven by the worker loop's own
// goroutine rather than one spawned by this package.
func NewContext() *Context {
	return &Context{resume: make(chan struct{})}
}

// Create allocates a context and spawns the goroutine that will run body
// once first switched to. body is handed its own context so it can switch
// back out via Switch or SwitchFinal.
func Create(body func(self *Context)) *Context {
	self := NewContext()
	go func() {
		self.await()
		body(self)
	}()
	return self
}

// await blocks the calling goroutine until someone switches into c.
func (c *Context) await() { <-c.resume }

// wake resumes the goroutine parked in c's await, if any.
func (c *Context) wake() { c.resume <- struct{}{} }

// Switch hands control to to and parks the calling goroutine (which must
// own from) until to (or whoever runs next) switches back to from.
func Switch(from, to *Context) {
	to.wake()
	from.await()
}

// SwitchFinal hands control to to without parking afterward. Used by a
// task body that is about to return for good (the task has reached
// ZOMBIE): the calling goroutine exits naturally once body returns,
// instead of leaking a goroutine parked on a context nobody will resume.
func SwitchFinal(to *Context) {
	to.wake()
}

// Destroy releases ctx. Contexts here are plain channels with a goroutine
// that has already returned by the time Destroy is reachable in the
// worker's finalisation path, so this is a no-op kept for symmetry with
// the create/switch/destroy triple this package stands in for.
func Destroy(ctx *Context) {
	_ = ctx
}
