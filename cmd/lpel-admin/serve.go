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

package main

import (
	"fmt"

	"github.com/lindb/common/pkg/ltoml"
	"github.com/spf13/cobra"

	lpel "github.com/lpel-project/lpel"
	"github.com/lpel-project/lpel/config"
)

var (
	cfgPath string
)

const defaultCfgPath = "./lpel.toml"

func newServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a worker pool with its admin plane enabled",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&cfgPath, "config", "", fmt.Sprintf(
		"config file path, default %s", defaultCfgPath))
	serveCmd.AddCommand(&cobra.Command{
		Use:   "init-config",
		Short: "write a default config file",
		RunE: func(*cobra.Command, []string) error {
			path := cfgPath
			if path == "" {
				path = defaultCfgPath
			}
			return ltoml.WriteConfig(path, config.NewDefault().TOML())
		},
	})
	return serveCmd
}

func runServe(*cobra.Command, []string) error {
	path := cfgPath
	if path == "" {
		path = defaultCfgPath
	}
	cfg, err := config.Load(path)
	if err != nil {
		cfg = config.NewDefault()
	}
	cfg.Admin.Enabled = true

	if err := lpel.Init(cfg); err != nil {
		return fmt.Errorf("init runtime: %w", err)
	}

	<-newCtxWithSignals().Done()

	lpel.Stop()
	lpel.Cleanup()
	return nil
}
