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

// expandReservoir rewrites a reservoir constraint. It is applicable only
// when every level change is a fixed integer; otherwise the constraint is
// left for a later presolve stage. The precedence cache is scoped to this
// single rewrite and cleared on entry and exit.
func (c *Context) expandReservoir(idx int) {
	ct := c.M.Constraints[idx]
	if ct.MinLevel > ct.MaxLevel {
		c.NotifyThatModelIsUnsat("reservoir min_level > max_level")
		return
	}
	for _, lc := range ct.LevelChanges {
		if !c.IsFixed(lc) {
			c.UpdateRuleStats("reservoir_with_variable_level_changes_kept")
			return
		}
	}
	c.UpdateRuleStats("reservoir_expansion")
	// An absent activity list means every event is unconditionally active.
	if len(ct.ActiveLiterals) == 0 {
		ct.ActiveLiterals = make([]model.Literal, len(ct.TimeExprs))
		for i := range ct.ActiveLiterals {
			ct.ActiveLiterals[i] = c.GetTrueLiteral()
		}
	}
	demands := make([]int64, len(ct.LevelChanges))
	hasPos, hasNeg := false, false
	for i, lc := range ct.LevelChanges {
		demands[i] = c.FixedValue(lc)
		switch {
		case demands[i] > 0:
			hasPos = true
		case demands[i] < 0:
			hasNeg = true
		}
	}

	c.clearPrecedenceCache()
	defer c.clearPrecedenceCache()

	if hasPos && hasNeg {
		c.expandReservoirMixed(&ct, demands)
	} else {
		c.expandReservoirHomogeneous(&ct, demands)
	}
	c.M.Constraints[idx].Clear()
}

// expandReservoirHomogeneous handles the case where all nonzero demands
// share a sign: order is irrelevant since the worst cumulative level equals
// the final sum, so a single linear constraint over the activity literals
// suffices.
func (c *Context) expandReservoirHomogeneous(ct *model.Constraint, demands []int64) {
	var terms []model.LinearTerm
	var offset int64
	for i, a := range ct.ActiveLiterals {
		coeff, add := literalCoefficient(a, demands[i])
		terms = append(terms, model.LinearTerm{Var: a.Var(), Coeff: coeff})
		offset += add
	}
	c.AddConstraint(model.Constraint{
		Kind:   model.KindLinear,
		Linear: model.LinearExpr{Terms: terms, Offset: offset},
		Domain: model.FromInterval(ct.MinLevel, ct.MaxLevel),
	})
}

// expandReservoirMixed handles mixed-sign demands: for every ordered pair
// (j, i) of active-possible events a reified precedence literal is
// obtained, and for each event i a constraint (enforced by its activity
// literal) bounds the running level just after i, i.e. the contributions of
// every event at or before i's time plus i's own demand.
func (c *Context) expandReservoirMixed(ct *model.Constraint, demands []int64) {
	n := len(ct.TimeExprs)
	for i := 0; i < n; i++ {
		if c.LiteralIsFalse(ct.ActiveLiterals[i]) {
			continue
		}
		var terms []model.LinearTerm
		offset := demands[i]
		for j := 0; j < n; j++ {
			if j == i || c.LiteralIsFalse(ct.ActiveLiterals[j]) {
				continue
			}
			p := c.GetOrCreateReifiedPrecedenceLiteral(j, i, ct.TimeExprs[j], ct.TimeExprs[i], ct.ActiveLiterals[j], ct.ActiveLiterals[i])
			coeff, add := literalCoefficient(p, demands[j])
			terms = append(terms, model.LinearTerm{Var: p.Var(), Coeff: coeff})
			offset += add
		}
		c.AddConstraint(model.Constraint{
			Kind:                model.KindLinear,
			Linear:              model.LinearExpr{Terms: terms, Offset: offset},
			Domain:              model.FromInterval(ct.MinLevel, ct.MaxLevel),
			EnforcementLiterals: []model.Literal{ct.ActiveLiterals[i]},
		})
	}
}

// literalCoefficient returns the (coeff, constantOffset) pair such that
// coeff*var + constantOffset == demand*lit, handling both literal
// polarities: for a negated literal ¬v, demand*¬v == -demand*v + demand.
func literalCoefficient(lit model.Literal, demand int64) (coeff, offset int64) {
	if lit.IsPositive() {
		return demand, 0
	}
	return -demand, demand
}
