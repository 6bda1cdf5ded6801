// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/cpsatlab/expand/pkg/modelio"
)

var statsCmd = &cobra.Command{
	Use:   "stats model.json",
	Short: "Print a histogram of a model's constraint kinds without expanding it.",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}

		f, err := os.Open(args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		defer f.Close()

		m, err := modelio.Read(f)
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}

		counts := map[string]int{}
		for i := range m.Constraints {
			if !m.Constraints[i].IsCleared() {
				counts[m.Constraints[i].Kind.String()]++
			}
		}
		printHistogram(counts)
	},
}

func printHistogram(counts map[string]int) {
	if len(counts) == 0 {
		fmt.Println("no constraints")
		return
	}
	names := make([]string, 0, len(counts))
	maxCount, maxName := 0, 0
	for name, count := range counts {
		names = append(names, name)
		if count > maxCount {
			maxCount = count
		}
		if len(name) > maxName {
			maxName = len(name)
		}
	}
	sort.Strings(names)

	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}
	barWidth := width - maxName - 10
	if barWidth < 10 {
		barWidth = 10
	}

	for _, name := range names {
		count := counts[name]
		barLen := barWidth
		if maxCount > 0 {
			barLen = count * barWidth / maxCount
		}
		fmt.Printf("%-*s %6d %s\n", maxName, name, count, strings.Repeat("#", barLen))
	}
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
