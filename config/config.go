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

// Package config holds the lpel runtime configuration: worker/CPU layout,
// scheduling flags, and the monitoring and admin-plane settings layered on
// top of the core spec.
package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/lindb/common/pkg/ltoml"
)

var structValidator = validator.New()

// Flag is a bitmask of optional worker behaviours.
type Flag uint8

const (
	// FlagPinned pins each worker thread to a fixed physical CPU.
	FlagPinned Flag = 1 << iota
	// FlagExclusive additionally requests a real-time scheduling class for
	// worker threads. Requires FlagPinned.
	FlagExclusive
)

func (f Flag) has(o Flag) bool { return f&o == o }

// Monitoring configures the per-task event log.
type Monitoring struct {
	// Prefix is prepended to every monitoring log file name. Max 16 bytes.
	Prefix string `env:"PREFIX" toml:"prefix" validate:"max=16"`
	// Postfix is appended to every monitoring log file name. Max 16 bytes.
	Postfix string `env:"POSTFIX" toml:"postfix" validate:"max=16"`
	// Dir is the directory monitoring log files are written under.
	Dir string `env:"DIR" toml:"dir"`
	// RotateSize rotates (and gzip-compresses) a worker's log file once it
	// crosses this size.
	RotateSize ltoml.Size `env:"ROTATE_SIZE" toml:"rotate-size"`
}

// Admin configures the optional HTTP introspection/control plane.
type Admin struct {
	// Enabled turns on the admin HTTP server.
	Enabled bool `env:"ENABLED" toml:"enabled"`
	// Addr is the listen address, e.g. ":9100".
	Addr string `env:"ADDR" toml:"addr"`
	// AuthSecret signs/verifies the bearer tokens accepted by the admin API.
	// Empty disables auth (local/dev use only).
	AuthSecret string `env:"AUTH_SECRET" toml:"auth-secret"`
}

// Coordinator configures optional etcd self-registration.
type Coordinator struct {
	// Enabled turns on self-registration.
	Enabled bool `env:"ENABLED" toml:"enabled"`
	// Endpoints are the etcd cluster endpoints.
	Endpoints []string `env:"ENDPOINTS" toml:"endpoints"`
	// LeaseTTLSeconds is the registration lease's time-to-live.
	LeaseTTLSeconds int64 `env:"LEASE_TTL_SECONDS" toml:"lease-ttl-seconds"`
}

// Config is captured once at Init and is read-only thereafter.
type Config struct {
	// NumWorkers is the number of task-serving worker threads. Must be >= 1.
	NumWorkers int `env:"NUM_WORKERS" toml:"num-workers" validate:"gte=1"`
	// ProcWorkers is the number of physical CPUs reserved for workers. Must be >= 1.
	ProcWorkers int `env:"PROC_WORKERS" toml:"proc-workers" validate:"gte=1"`
	// ProcOthers is the number of CPUs reserved for non-worker threads.
	// 0 means "share the worker CPUs".
	ProcOthers int `env:"PROC_OTHERS" toml:"proc-others" validate:"gte=0"`
	// Flags is the set of optional worker behaviours.
	Flags Flag `env:"FLAGS" toml:"flags"`
	// Node is an opaque identifier passed through to workers and, if set,
	// used as the coordinator's registration key prefix.
	Node string `env:"NODE" toml:"node"`

	Monitoring  Monitoring  `toml:"monitoring"`
	Admin       Admin       `toml:"admin"`
	Coordinator Coordinator `toml:"coordinator"`
}

// NewDefault returns a single-worker configuration suitable for embedding
// in a test or a small host application.
func NewDefault() *Config {
	return &Config{
		NumWorkers:  1,
		ProcWorkers: 1,
		ProcOthers:  0,
		Flags:       0,
		Monitoring: Monitoring{
			Dir:        ".",
			RotateSize: ltoml.Size(64 << 20),
		},
		Admin: Admin{
			Addr: ":9100",
		},
		Coordinator: Coordinator{
			LeaseTTLSeconds: 10,
		},
	}
}

// Validate checks the config validation rules of the runtime facade.
// numCores is the number of online CPUs, or < 0 if unknown.
// rtCapable reports whether the process can request real-time scheduling;
// it is only consulted when FlagExclusive is set.
func (c *Config) Validate(numCores int, rtCapable bool) error {
	if err := structValidator.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if numCores >= 0 && c.ProcWorkers+c.ProcOthers > numCores {
		return fmt.Errorf("proc-workers(%d) + proc-others(%d) exceeds online cores(%d)",
			c.ProcWorkers, c.ProcOthers, numCores)
	}
	if c.Flags.has(FlagExclusive) {
		if !c.Flags.has(FlagPinned) {
			return fmt.Errorf("FlagExclusive requires FlagPinned")
		}
		if !rtCapable {
			return fmt.Errorf("FlagExclusive requested but process cannot set real-time scheduling")
		}
	}
	return nil
}

// Pinned reports whether worker threads should be pinned to a fixed CPU.
func (c *Config) Pinned() bool { return c.Flags.has(FlagPinned) }

// Exclusive reports whether worker threads should request real-time scheduling.
func (c *Config) Exclusive() bool { return c.Flags.has(FlagExclusive) }

// Load reads and parses a TOML configuration file over the defaults.
// Only the file is read; environment variables are not consulted.
func Load(path string) (*Config, error) {
	cfg := NewDefault()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// TOML renders the config as a documented TOML fragment, in the same style
// the rest of the ecosystem uses for its own config sections.
func (c *Config) TOML() string {
	return fmt.Sprintf(`
## Number of task-serving worker threads.
## Default: %d
num-workers = %d

## Number of physical CPUs reserved for workers.
## Default: %d
proc-workers = %d

## Number of CPUs reserved for non-worker threads. 0 shares the worker CPUs.
## Default: %d
proc-others = %d

## Opaque node identifier, passed through to workers and the coordinator.
## Default: %q
node = %q

[monitoring]
## Directory monitoring log files are written under.
## Default: %q
dir = %q
## Prefix/postfix applied to each worker's monitoring log file name.
prefix = %q
postfix = %q
## Rotate (and gzip) a worker's log once it exceeds this size.
## Default: %s
rotate-size = %q
`,
		c.NumWorkers, c.NumWorkers,
		c.ProcWorkers, c.ProcWorkers,
		c.ProcOthers, c.ProcOthers,
		c.Node, c.Node,
		c.Monitoring.Dir, c.Monitoring.Dir,
		c.Monitoring.Prefix, c.Monitoring.Postfix,
		c.Monitoring.RotateSize.String(), c.Monitoring.RotateSize.String(),
	)
}

// LogFileName builds the monitoring log file name for a given context name,
// following the <prefix><name><postfix> convention.
func (m *Monitoring) LogFileName(name string) string {
	if len(name) > 31 {
		name = name[:31]
	}
	var b strings.Builder
	b.WriteString(m.Prefix)
	b.WriteString(name)
	b.WriteString(m.Postfix)
	return b.String()
}
