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
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"

	"github.com/lpel-project/lpel/admin"
	"github.com/lpel-project/lpel/monitoring"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func restyClient() *resty.Client {
	return resty.New().SetBaseURL(serverAddr).SetTimeout(5 * time.Second)
}

func newClientCmd() *cobra.Command {
	clientCmd := &cobra.Command{
		Use:   "client",
		Short: "Query a running lpel-admin server",
	}
	clientCmd.AddCommand(newWorkersCmd(), newTasksCmd(), newTailCmd())
	return clientCmd
}

func newTailCmd() *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Poll the live task set and print UIDs as they appear or vanish",
		RunE: func(*cobra.Command, []string) error {
			return tailLiveTasks(newCtxWithSignals(), interval)
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "poll interval")
	return cmd
}

func newWorkersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "workers",
		Short: "List worker dispatch counters",
		RunE: func(*cobra.Command, []string) error {
			resp, err := restyClient().R().Get(admin.WorkersPath)
			if err != nil {
				return err
			}
			var states []admin.WorkerState
			if err := json.Unmarshal(resp.Body(), &states); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}

			t := table.NewWriter()
			t.AppendHeader(table.Row{"worker", "dispatch"})
			for _, s := range states {
				t.AppendRow(table.Row{s.ID, s.Dispatch})
			}
			fmt.Println(t.Render())
			return nil
		},
	}
}

func newTasksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "List live task UIDs via the FlatBuffers snapshot endpoint",
		RunE: func(*cobra.Command, []string) error {
			resp, err := restyClient().R().
				SetHeader("Accept", "application/x-flatbuffers").
				Get(admin.TasksSnapshotPath)
			if err != nil {
				return err
			}
			workerID, takenUsec, tasks := monitoring.ReadSnapshot(resp.Body())

			t := table.NewWriter()
			t.AppendHeader(table.Row{"uid", "name", "state", "blockon", "disp"})
			for _, rec := range tasks {
				t.AppendRow(table.Row{rec.UID, rec.Name, string(rec.State), string(rec.BlockOn), rec.Disp})
			}
			fmt.Printf("worker %d, taken at %dus\n", workerID, takenUsec)
			fmt.Println(t.Render())
			return nil
		},
	}
}
