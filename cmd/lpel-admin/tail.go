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
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"

	"github.com/lpel-project/lpel/admin"
)

// tailLiveTasks polls /tasks at interval, printing UIDs that appeared
// (green) or vanished (red) since the previous poll.
func tailLiveTasks(ctx context.Context, interval time.Duration) error {
	seen := map[uint64]bool{}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		var uids []uint64
		resp, err := restyClient().R().Get(admin.TasksPath)
		if err == nil {
			_ = json.Unmarshal(resp.Body(), &uids)
		}

		current := make(map[uint64]bool, len(uids))
		for _, uid := range uids {
			current[uid] = true
			if !seen[uid] {
				fmt.Println(color.GreenString("+ task %d", uid))
			}
		}
		for uid := range seen {
			if !current[uid] {
				fmt.Println(color.RedString("- task %d", uid))
			}
		}
		seen = current

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
