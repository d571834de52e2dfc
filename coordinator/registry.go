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

// Package coordinator self-registers this process's presence under an
// etcd key, refreshed by a lease, so other processes (or the operator CLI
// querying etcd directly) can discover live lpel nodes. Purely an
// introspection aid: the scheduler itself never reads back from it.
package coordinator

import (
	"context"
	"fmt"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/lindb/common/pkg/logger"

	"github.com/lpel-project/lpel/config"
)

var log = logger.GetLogger("Coordinator", "Registry")

const livePrefix = "/lpel/live/"

// Registration is a live self-registration; Close deregisters and stops
// the lease keepalive.
type Registration struct {
	client *clientv3.Client
	leaseID clientv3.LeaseID
	key     string
	cancel  context.CancelFunc
	done    chan struct{}
}

// Register dials cfg's etcd endpoints, grants a lease with cfg's TTL, puts
// node under that lease, and starts a background keepalive. The key is
// removed automatically by etcd if the process dies without calling
// Close.
func Register(cfg config.Coordinator, node string) (*Registration, error) {
	if node == "" {
		node = "unnamed"
	}
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("coordinator: dial etcd: %w", err)
	}

	ttl := cfg.LeaseTTLSeconds
	if ttl <= 0 {
		ttl = 10
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	lease, err := cli.Grant(ctx, ttl)
	cancel()
	if err != nil {
		_ = cli.Close()
		return nil, fmt.Errorf("coordinator: grant lease: %w", err)
	}

	key := livePrefix + node
	putCtx, putCancel := context.WithTimeout(context.Background(), 5*time.Second)
	_, err = cli.Put(putCtx, key, fmt.Sprintf("pid=%d", pid()), clientv3.WithLease(lease.ID))
	putCancel()
	if err != nil {
		_ = cli.Close()
		return nil, fmt.Errorf("coordinator: put registration: %w", err)
	}

	keepCtx, keepCancel := context.WithCancel(context.Background())
	keepAlive, err := cli.KeepAlive(keepCtx, lease.ID)
	if err != nil {
		keepCancel()
		_ = cli.Close()
		return nil, fmt.Errorf("coordinator: start keepalive: %w", err)
	}

	r := &Registration{client: cli, leaseID: lease.ID, key: key, cancel: keepCancel, done: make(chan struct{})}
	go r.drainKeepAlive(keepAlive)
	return r, nil
}

// drainKeepAlive must keep reading the keepalive channel: etcd's client
// stops sending heartbeats once it is no longer drained.
func (r *Registration) drainKeepAlive(ch <-chan *clientv3.LeaseKeepAliveResponse) {
	defer close(r.done)
	for range ch {
	}
	log.Warn("coordinator: lease keepalive channel closed", logger.String("key", r.key))
}

// Close deregisters the key and releases the etcd client.
func (r *Registration) Close() error {
	r.cancel()
	<-r.done
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	_, err := r.client.Delete(ctx, r.key)
	cancel()
	if cerr := r.client.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
