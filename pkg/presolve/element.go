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

// expandElement rewrites vars[index] == target via one of three sub-cases
// after a shared domain-tightening pass.
func (c *Context) expandElement(idx int) {
	ct := c.M.Constraints[idx]
	size := int64(len(ct.Vars))
	c.IntersectDomainWith(ct.Index, model.FromInterval(0, size-1))
	if c.M.ModelIsUnsat() {
		return
	}
	c.UpdateRuleStats("element_expansion")

	// Shared tightening: target shrinks to the union of reachable vars[v]
	// domains; index keeps only values whose vars[v] still intersects
	// target.
	reachable := model.Empty()
	for _, v := range c.DomainOf(ct.Index).Values() {
		reachable = reachable.Union(c.DomainOf(ct.Vars[v]))
	}
	c.IntersectDomainWith(ct.Target, reachable)
	if c.M.ModelIsUnsat() {
		return
	}
	targetDom := c.DomainOf(ct.Target)
	for _, v := range c.DomainOf(ct.Index).Values() {
		if c.DomainOf(ct.Vars[v]).Intersect(targetDom).IsEmpty() {
			c.IntersectDomainWith(ct.Index, c.DomainOf(ct.Index).RemoveValue(v))
		}
	}
	if c.M.ModelIsUnsat() {
		return
	}

	switch {
	case ct.Target == ct.Index:
		c.expandElementIndexEqualsTarget(&ct)
	case c.allSurvivorsFixed(&ct):
		c.expandElementConstantArray(&ct)
	default:
		c.expandElementGeneral(&ct)
	}
	c.M.Constraints[idx].Clear()
}

func (c *Context) allSurvivorsFixed(ct *model.Constraint) bool {
	for _, v := range c.DomainOf(ct.Index).Values() {
		if !c.DomainOf(ct.Vars[v]).IsFixed() {
			return false
		}
	}
	return true
}

// expandElementIndexEqualsTarget handles the degenerate case where the
// element's target is literally the index variable, i.e. vars[index] ==
// index. Only positions where the fixed point v == vars[v] is reachable
// survive.
func (c *Context) expandElementIndexEqualsTarget(ct *model.Constraint) {
	for _, v := range c.DomainOf(ct.Index).Values() {
		if !c.DomainOf(ct.Vars[v]).Contains(v) {
			c.IntersectDomainWith(ct.Index, c.DomainOf(ct.Index).RemoveValue(v))
		}
	}
	if c.M.ModelIsUnsat() {
		return
	}
	for _, v := range c.DomainOf(ct.Index).Values() {
		idxLit := c.GetOrCreateVarValueEncoding(ct.Index, v)
		c.AddImplyInDomain(idxLit, ct.Vars[v], model.Single(v))
	}
}

// expandElementConstantArray handles the case where every surviving
// vars[v] is fixed. Values appearing under exactly one index reuse that
// index's literal as the target's own value encoding; values appearing
// under several indices get a clause tying the target literal to the
// disjunction of its supporting index literals.
func (c *Context) expandElementConstantArray(ct *model.Constraint) {
	values := c.DomainOf(ct.Index).Values()
	indexLits := make([]model.Literal, len(values))
	fixedValues := make([]int64, len(values))
	multiplicity := map[int64]int{}
	for i, v := range values {
		indexLits[i] = c.GetOrCreateVarValueEncoding(ct.Index, v)
		fixedValues[i] = c.DomainOf(ct.Vars[v]).FixedValue()
		multiplicity[fixedValues[i]]++
	}
	c.addExactlyOne(indexLits)
	for i, val := range fixedValues {
		if multiplicity[val] == 1 && !c.HasVarValueEncoding(ct.Target, val) {
			c.InsertVarValueEncoding(indexLits[i], ct.Target, val)
		}
	}
	c.LinkLiteralsAndValues(indexLits, fixedValues, func(value int64) model.Literal {
		return c.GetOrCreateVarValueEncoding(ct.Target, value)
	})
}

// expandElementGeneral handles the fully general case: an exactly-one over
// index literals, plus per-value implications relating vars[v] to target.
func (c *Context) expandElementGeneral(ct *model.Constraint) {
	values := c.DomainOf(ct.Index).Values()
	indexLits := make([]model.Literal, len(values))
	for i, v := range values {
		indexLits[i] = c.GetOrCreateVarValueEncoding(ct.Index, v)
	}
	c.addExactlyOne(indexLits)
	for i, v := range values {
		idxLit := indexLits[i]
		vd := c.DomainOf(ct.Vars[v])
		if vd.IsFixed() {
			c.AddImplyInDomain(idxLit, ct.Target, model.Single(vd.FixedValue()))
			continue
		}
		c.AddConstraint(model.Constraint{
			Kind: model.KindLinear,
			Linear: model.NewLinearExpr(
				[]model.VarID{ct.Vars[v], ct.Target},
				[]int64{1, -1},
				0,
			),
			Domain:              model.Single(0),
			EnforcementLiterals: []model.Literal{idxLit},
		})
	}
}

func (c *Context) addExactlyOne(lits []model.Literal) {
	c.AddConstraint(model.Constraint{Kind: model.KindExactlyOne, Literals: lits})
}
