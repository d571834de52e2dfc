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
	"os"
	"strings"

	prompt "github.com/c-bata/go-prompt"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lpel-project/lpel/admin"
)

var shellCommands = []prompt.Suggest{
	{Text: "workers", Description: "list worker dispatch counters"},
	{Text: "tasks", Description: "list live task UIDs"},
	{Text: "exit", Description: "leave the shell"},
}

func newShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive prompt for a running admin server",
		RunE: func(*cobra.Command, []string) error {
			runShell()
			return nil
		},
	}
}

func runShell() {
	sessionID := uuid.New().String()[:8]
	fmt.Printf("lpel-admin shell (session %s), connected to %s\n", sessionID, serverAddr)

	p := prompt.New(
		executeShellLine,
		completeShellLine,
		prompt.OptionPrefix("lpel> "),
	)
	p.Run()
}

func completeShellLine(d prompt.Document) []prompt.Suggest {
	return prompt.FilterHasPrefix(shellCommands, d.GetWordBeforeCursor(), true)
}

func executeShellLine(line string) {
	switch strings.TrimSpace(line) {
	case "workers":
		runAndPrint(admin.WorkersPath)
	case "tasks":
		runAndPrint(admin.TasksPath)
	case "exit", "quit":
		fmt.Println("bye")
		os.Exit(0)
	case "":
	default:
		fmt.Printf("unknown command %q\n", line)
	}
}

func runAndPrint(path string) {
	resp, err := restyClient().R().Get(path)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(string(resp.Body()))
}
