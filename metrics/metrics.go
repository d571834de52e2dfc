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

// Package metrics exposes runtime counters on a private prometheus
// registry, scraped by the admin plane's /metrics endpoint. These sit
// alongside, and are independent of, the per-task monitoring log: metrics
// answer "how is the runtime doing", monitoring answers "what did this
// task do".
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry is the private collector registry the admin plane's promhttp
// handler serves. Kept private (not prometheus.DefaultRegisterer) so an
// embedding application's own metrics are never clobbered by ours.
var Registry = prometheus.NewRegistry()

var (
	// TasksCreated counts LpelTaskCreate calls.
	TasksCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lpel_tasks_created_total",
		Help: "Total tasks created.",
	})
	// TasksDispatched counts coroutine dispatches, labelled by worker.
	TasksDispatched = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lpel_worker_dispatch_total",
		Help: "Total task dispatches per worker.",
	}, []string{"worker"})
	// TasksBlocked counts block transitions, labelled by reason.
	TasksBlocked = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lpel_tasks_blocked_total",
		Help: "Total RUNNING->BLOCKED transitions, by block reason.",
	}, []string{"reason"})
	// ReadyQueueDepth reports the current ready-queue length per worker.
	ReadyQueueDepth = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "lpel_worker_ready_queue_depth",
		Help: "Current ready-queue depth per worker.",
	}, []string{"worker"})
	// StreamItemsMoved counts successful stream deposits, labelled by
	// stream UID.
	StreamItemsMoved = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lpel_stream_items_moved_total",
		Help: "Total items successfully moved through a stream.",
	}, []string{"stream"})
	// LiveTasks reports the current count of non-ZOMBIE tasks.
	LiveTasks = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "lpel_live_tasks",
		Help: "Current number of tasks not yet ZOMBIE.",
	})
)

func init() {
	Registry.MustRegister(
		TasksCreated,
		TasksDispatched,
		TasksBlocked,
		ReadyQueueDepth,
		StreamItemsMoved,
		LiveTasks,
	)
}
