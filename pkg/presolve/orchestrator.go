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

import "github.com/cpsatlab/expand/pkg/model"

// Expand walks the constraint list twice, dispatching per constraint kind,
// maintaining the variable-constraint usage graph, and aborting as soon as
// the model is proven infeasible. A second call is a no-op.
func (c *Context) Expand() {
	if c.ModelIsExpanded() {
		return
	}
	if c.Params.DisableConstraintExpansion {
		c.NotifyThatModelIsExpanded()
		return
	}

	for idx := range c.M.Constraints {
		if !c.M.Constraints[idx].IsCleared() {
			c.UpdateConstraintVariableUsage(idx)
		}
	}

	c.pass1()
	if c.ModelIsUnsat() {
		c.NotifyThatModelIsExpanded()
		return
	}
	c.pass2()
	c.NotifyThatModelIsExpanded()
}

// pass1 dispatches every family except all-different and the size-two
// not-equal linear specialization, which both depend on the state other
// constraints are left in after their own rewrite.
func (c *Context) pass1() {
	for idx := 0; idx < len(c.M.Constraints); idx++ {
		if c.ModelIsUnsat() {
			return
		}
		if c.M.Constraints[idx].IsCleared() {
			continue
		}
		switch c.M.Constraints[idx].Kind {
		case model.KindLinear:
			// Without a presolve loop after us there is no later chance to
			// lower complex right-hand sides, so do it in the main pass.
			if !c.Params.CpModelPresolve && len(c.M.Constraints[idx].Domain.Intervals()) > 1 {
				c.expandComplexLinear(idx)
			}
		case model.KindReservoir:
			if c.Params.ExpandReservoirConstraints {
				c.expandReservoir(idx)
			}
		case model.KindIntMod:
			c.expandIntMod(idx)
		case model.KindIntProd:
			c.expandIntProd(idx)
		case model.KindInverse:
			c.expandInverse(idx)
		case model.KindElement:
			c.expandElement(idx)
		case model.KindAutomaton:
			c.expandAutomaton(idx)
		case model.KindTable:
			c.expandTable(idx)
		}
		c.UpdateNewConstraintsVariableUsage()
	}
}

// pass2 handles all-different (whose usage scanner reads the rewritten
// model) and the size-two not-equal linear specialization (which requires
// the encoding literals created by pass 1 to already exist).
func (c *Context) pass2() {
	for idx := 0; idx < len(c.M.Constraints); idx++ {
		if c.ModelIsUnsat() {
			return
		}
		if c.M.Constraints[idx].IsCleared() {
			continue
		}
		switch c.M.Constraints[idx].Kind {
		case model.KindAllDifferent:
			c.expandAllDifferent(idx)
		case model.KindLinear:
			c.expandLinearSizeTwoNotEqual(idx)
		}
		c.UpdateNewConstraintsVariableUsage()
	}
}

// FinalExpand rewrites linear constraints whose right-hand side is a union
// of more than one interval. It runs after all other presolve so the
// sub-case literals it introduces are not themselves subject to further
// rewriting.
func (c *Context) FinalExpand() {
	if c.Params.DisableConstraintExpansion {
		return
	}
	for idx := 0; idx < len(c.M.Constraints); idx++ {
		if c.ModelIsUnsat() {
			return
		}
		if c.M.Constraints[idx].IsCleared() || c.M.Constraints[idx].Kind != model.KindLinear {
			continue
		}
		if len(c.M.Constraints[idx].Domain.Intervals()) > 1 {
			c.expandComplexLinear(idx)
		}
		c.UpdateNewConstraintsVariableUsage()
	}
}
