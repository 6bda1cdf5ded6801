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

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cpsatlab/expand/pkg/modelio"
	"github.com/cpsatlab/expand/pkg/presolve"
)

var runCmd = &cobra.Command{
	Use:   "run model.json",
	Short: "Expand a model's high-level constraints and print the result.",
	Long:  "Reads a JSON model, runs the constraint-expansion presolve stage, and writes the expanded model back out as JSON.",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		logger := configureLogging(cmd)

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

		params := presolve.DefaultParameters()
		params.DisableConstraintExpansion = getFlag(cmd, "disable-expansion")
		params.TableCompressionLevel = presolve.TableCompressionLevel(getInt(cmd, "table-compression"))
		params.DetectTableWithCost = !getFlag(cmd, "no-wcsp")
		params.EncodeComplexLinearWithInt = getFlag(cmd, "complex-linear-slack")
		params.ExpandAllDiffConstraints = getFlag(cmd, "expand-alldiff")
		params.ExpandReservoirConstraints = !getFlag(cmd, "no-reservoir")
		params.EnumerateAllSolutions = getFlag(cmd, "enumerate-all-solutions")

		ctx := presolve.NewContext(m, params, logger)
		ctx.Expand()
		ctx.FinalExpand()

		if m.ModelIsUnsat() {
			fmt.Fprintf(os.Stderr, "infeasible: %s\n", m.UnsatReason())
			os.Exit(1)
		}

		var rulesFired int
		for _, count := range ctx.RuleStats() {
			rulesFired += count
		}
		logger.WithFields(log.Fields{
			"variables":   m.Vars.Len(),
			"constraints": len(m.Constraints),
			"rules_fired": rulesFired,
		}).Info("expansion complete")

		out := os.Stdout
		if path := getStringFlag(cmd, "output"); path != "" {
			of, err := os.Create(path)
			if err != nil {
				fmt.Println(err)
				os.Exit(2)
			}
			defer of.Close()
			out = of
		}
		if err := modelio.Write(out, m); err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
	},
}

func getStringFlag(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	return r
}

func init() {
	runCmd.Flags().String("output", "", "write the expanded model here instead of stdout")
	runCmd.Flags().Bool("disable-expansion", false, "mark the model expanded without rewriting anything")
	runCmd.Flags().Int("table-compression", int(presolve.TableCompressionFull), "table wildcard compression level (0-3)")
	runCmd.Flags().Bool("no-wcsp", false, "disable table cost transfer onto tuple literals")
	runCmd.Flags().Bool("complex-linear-slack", false, "encode complex-rhs linears with an integer slack instead of sub-case literals")
	runCmd.Flags().Bool("expand-alldiff", false, "expand every all-different constraint regardless of usage")
	runCmd.Flags().Bool("no-reservoir", false, "do not expand reservoir constraints")
	runCmd.Flags().Bool("enumerate-all-solutions", false, "keep sub-case literals fixed when their constraint is disabled")
	rootCmd.AddCommand(runCmd)
}
