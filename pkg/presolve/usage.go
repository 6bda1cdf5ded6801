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
package presolve

import (
	"sort"

	"github.com/cpsatlab/expand/pkg/model"
)

// UpdateNewConstraintsVariableUsage folds every constraint added since the
// last call into the variable-constraint usage graph.
func (c *Context) UpdateNewConstraintsVariableUsage() {
	for _, idx := range c.newSinceUsageUpdate {
		c.UpdateConstraintVariableUsage(idx)
	}
	c.newSinceUsageUpdate = nil
}

// UpdateConstraintVariableUsage registers constraint idx against every
// variable it reads.
func (c *Context) UpdateConstraintVariableUsage(idx int) {
	ct := &c.M.Constraints[idx]
	for _, v := range ct.UsedVars() {
		c.usage[v] = appendUnique(c.usage[v], idx)
	}
}

func appendUnique(s []int, v int) []int {
	for _, x := range s {
		if x == v {
			return s
		}
	}
	return append(s, v)
}

// VarToConstraints returns the sorted indices of constraints touching v.
// Sorting keeps every scan over the usage graph deterministic in the input
// model.
func (c *Context) VarToConstraints(v model.VarID) []int {
	out := append([]int(nil), c.usage[v]...)
	sort.Ints(out)
	return out
}
