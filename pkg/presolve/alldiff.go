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

// expandAllDifferent decides, per constraint, whether to rewrite it into
// per-value at-most-one/exactly-one constraints, keep it for bounds-based
// propagation, or both. It runs in the orchestrator's second pass since
// the usage scanner inspects every other constraint's rewritten form.
func (c *Context) expandAllDifferent(idx int) {
	ct := c.M.Constraints[idx]
	n := len(ct.AllDiffExprs)

	domainUsed, boundsUsed := false, false
	for _, e := range ct.AllDiffExprs {
		u := c.classifyVarUsage(e.Var, idx)
		if u&usageDomain != 0 {
			domainUsed = true
		}
		if u&usageBounds != 0 {
			boundsUsed = true
		}
	}

	union := model.Empty()
	for _, e := range ct.AllDiffExprs {
		union = union.Union(c.DomainSuperSetOf(e))
	}
	unionSize := union.Size()

	threshold := int64(32)
	if 2*int64(n) > threshold {
		threshold = 2 * int64(n)
	}
	sizeOK := unionSize <= threshold
	if !sizeOK && unionSize < 256 {
		sizeOK = true
		for _, e := range ct.AllDiffExprs {
			if !c.IsFullyEncoded(e.Var) {
				sizeOK = false
				break
			}
		}
	}
	keep := boundsUsed
	// The parameter forces expansion; otherwise expand when the size is
	// manageable and either a full encoding helps some other constraint or
	// the constraint would not be kept for bounds propagation anyway.
	expand := c.Params.ExpandAllDiffConstraints || (sizeOK && (domainUsed || !keep))

	if expand {
		c.UpdateRuleStats("alldiff_expansion")
		c.expandAllDifferentBody(&ct, union)
		if c.M.ModelIsUnsat() {
			return
		}
	}
	if expand && !keep {
		c.M.Constraints[idx].Clear()
	}
}

// classifyVarUsage scans every other (non-cleared) constraint referencing
// v and classifies the use: full value encodings help ("domain-used") for
// tables, automata, inverses, element indices and short fixed linear
// equalities; bounds propagation helps ("bounds-used") for longer linear
// constraints with a fixed right-hand side. Results are cached per
// variable.
func (c *Context) classifyVarUsage(v model.VarID, skipIdx int) varUsage {
	if c.allDiffUsage == nil {
		c.allDiffUsage = map[model.VarID]varUsage{}
	}
	if u, ok := c.allDiffUsage[v]; ok {
		return u
	}
	var u varUsage
	for _, i := range c.VarToConstraints(v) {
		if i == skipIdx {
			continue
		}
		ct := &c.M.Constraints[i]
		if ct.IsCleared() {
			continue
		}
		switch ct.Kind {
		case model.KindInverse, model.KindTable, model.KindAutomaton:
			u |= usageDomain
		case model.KindElement:
			if ct.Index == v {
				u |= usageDomain
			}
		case model.KindLinear:
			nTerms := len(ct.Linear.Terms)
			switch {
			case nTerms <= 2 && ct.Domain.IsFixed():
				u |= usageDomain
			case nTerms >= 3 && ct.Domain.IsFixed():
				u |= usageBounds
			}
		}
	}
	c.allDiffUsage[v] = u
	return u
}

// expandAllDifferentBody emits the per-value constraints: fixed
// expressions prune the value from every other expression, then each value
// in the union gets an at-most-one (or exactly-one, when the union is
// exactly as large as the expression list and the constraint is a
// permutation) over its encoding literals.
func (c *Context) expandAllDifferentBody(ct *model.Constraint, union model.Domain) {
	n := len(ct.AllDiffExprs)
	unionSize := int(union.Size())

	for _, v := range union.Values() {
		fixedTo := -1
		for i, e := range ct.AllDiffExprs {
			d := c.DomainSuperSetOf(e)
			if d.IsFixed() && d.FixedValue() == v {
				if fixedTo >= 0 {
					c.NotifyThatModelIsUnsat("all-different: two expressions fixed to the same value")
					return
				}
				fixedTo = i
			}
		}
		if fixedTo >= 0 {
			for i, e := range ct.AllDiffExprs {
				if i == fixedTo {
					continue
				}
				removeAffineValue(c, e, v)
				if c.M.ModelIsUnsat() {
					return
				}
			}
		}
	}

	for _, v := range union.Values() {
		var lits []model.Literal
		for _, e := range ct.AllDiffExprs {
			if c.DomainSuperSetOf(e).Contains(v) {
				lits = append(lits, c.GetOrCreateAffineValueEncoding(e, v))
			}
		}
		if len(lits) < 2 {
			continue
		}
		kind := model.KindAtMostOne
		if unionSize == n {
			kind = model.KindExactlyOne
		}
		c.AddConstraint(model.Constraint{Kind: kind, Literals: lits})
	}
}

// removeAffineValue removes the value v from e's image by pruning the
// preimage from e's underlying variable's domain.
func removeAffineValue(c *Context, e model.AffineExpr, v int64) {
	if e.Coeff == 0 {
		return
	}
	rem := v - e.Offset
	if rem%e.Coeff != 0 {
		return
	}
	c.IntersectDomainWith(e.Var, c.DomainOf(e.Var).RemoveValue(rem/e.Coeff))
}
