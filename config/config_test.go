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

package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefault_PassesValidate(t *testing.T) {
	cfg := NewDefault()
	assert.NoError(t, cfg.Validate(-1, false))
}

func TestValidate_RejectsNonPositiveWorkerCounts(t *testing.T) {
	cfg := NewDefault()
	cfg.NumWorkers = 0
	assert.Error(t, cfg.Validate(-1, false))

	cfg = NewDefault()
	cfg.ProcWorkers = 0
	assert.Error(t, cfg.Validate(-1, false))

	cfg = NewDefault()
	cfg.ProcOthers = -1
	assert.Error(t, cfg.Validate(-1, false))
}

func TestValidate_RejectsOversizedMonitoringAffixes(t *testing.T) {
	cfg := NewDefault()
	cfg.Monitoring.Prefix = "this-prefix-is-far-too-long"
	assert.Error(t, cfg.Validate(-1, false))
}

func TestValidate_RejectsCoreOversubscription(t *testing.T) {
	cfg := NewDefault()
	cfg.ProcWorkers = 4
	cfg.ProcOthers = 4
	assert.Error(t, cfg.Validate(4, false))
	assert.NoError(t, cfg.Validate(-1, false))
}

func TestValidate_ExclusiveRequiresPinnedAndRTCapability(t *testing.T) {
	cfg := NewDefault()
	cfg.Flags = FlagExclusive
	assert.Error(t, cfg.Validate(-1, true))

	cfg.Flags = FlagPinned | FlagExclusive
	assert.Error(t, cfg.Validate(-1, false))
	assert.NoError(t, cfg.Validate(-1, true))
}

func TestPinnedExclusive_ReflectFlags(t *testing.T) {
	cfg := NewDefault()
	assert.False(t, cfg.Pinned())
	assert.False(t, cfg.Exclusive())

	cfg.Flags = FlagPinned
	assert.True(t, cfg.Pinned())
	assert.False(t, cfg.Exclusive())

	cfg.Flags = FlagPinned | FlagExclusive
	assert.True(t, cfg.Exclusive())
}

func TestLogFileName_AppliesAffixesAndTruncatesName(t *testing.T) {
	m := &Monitoring{Prefix: "pre-", Postfix: ".log"}
	assert.Equal(t, "pre-worker0.log", m.LogFileName("worker0"))

	long := "this-name-is-much-longer-than-the-thirty-one-byte-limit"
	got := m.LogFileName(long)
	assert.Equal(t, "pre-"+long[:31]+".log", got)
}

func TestLoad_ParsesTOMLFile(t *testing.T) {
	cfg := NewDefault()
	cfg.Node = "node-a"
	cfg.Monitoring.Prefix = "m-"

	dir := t.TempDir()
	path := dir + "/lpel.toml"
	content := "num-workers = 1\nproc-workers = 1\n" +
		"node = \"node-a\"\n[monitoring]\nprefix = \"m-\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "node-a", loaded.Node)
	assert.Equal(t, "m-", loaded.Monitoring.Prefix)
}
