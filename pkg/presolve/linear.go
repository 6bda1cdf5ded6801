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

// expandComplexLinear rewrites a linear constraint whose right-hand side is
// a union of more than one interval. It is the body of the FinalExpand
// entry point.
func (c *Context) expandComplexLinear(idx int) {
	ct := c.M.Constraints[idx]
	ivs := ct.Domain.Intervals()
	if len(ivs) <= 1 {
		return
	}
	c.UpdateRuleStats("complex_linear_expansion")

	if c.Params.EncodeComplexLinearWithInt {
		c.expandComplexLinearWithSlack(&ct)
	} else {
		c.expandComplexLinearWithSubCases(&ct, ivs)
	}
	c.M.Constraints[idx].Clear()
}

// expandComplexLinearWithSlack introduces a slack variable s whose domain
// is the constraint's right-hand side, appends -s to the expression, and
// replaces the right-hand side with {0}.
func (c *Context) expandComplexLinearWithSlack(ct *model.Constraint) {
	slack := c.NewIntVar(ct.Domain, "complex_linear_slack")
	terms := append(append([]model.LinearTerm(nil), ct.Linear.Terms...), model.LinearTerm{Var: slack, Coeff: -1})
	c.AddConstraint(model.Constraint{
		Kind:                model.KindLinear,
		Linear:              model.LinearExpr{Terms: terms, Offset: ct.Linear.Offset},
		Domain:              model.Single(0),
		EnforcementLiterals: ct.EnforcementLiterals,
	})
}

// expandComplexLinearWithSubCases creates one selection literal per
// right-hand-side interval and one enforced copy of the constraint per
// sub-case. Two sub-intervals with no enforcement collapse to a single
// Boolean and its negation.
func (c *Context) expandComplexLinearWithSubCases(ct *model.Constraint, ivs []model.Interval) {
	if len(ivs) == 2 && len(ct.EnforcementLiterals) == 0 {
		b := model.NewLiteral(c.NewBoolVar("complex_linear_subcase"))
		c.emitLinearSubCase(ct, ivs[0], []model.Literal{b})
		c.emitLinearSubCase(ct, ivs[1], []model.Literal{b.Not()})
		return
	}

	subLits := make([]model.Literal, len(ivs))
	for k := range ivs {
		subLits[k] = model.NewLiteral(c.NewBoolVar("complex_linear_subcase"))
	}

	// At least one sub-case holds unless the constraint is disabled.
	var atLeastOne []model.Literal
	for _, e := range ct.EnforcementLiterals {
		atLeastOne = append(atLeastOne, e.Not())
	}
	atLeastOne = append(atLeastOne, subLits...)
	c.AddConstraint(model.Constraint{Kind: model.KindBoolOr, Literals: atLeastOne})

	for k, iv := range ivs {
		enforcement := append(append([]model.Literal(nil), ct.EnforcementLiterals...), subLits[k])
		c.emitLinearSubCase(ct, iv, enforcement)
	}

	// When enumerating all solutions the sub-case literals must not float
	// freely while the constraint is disabled, or the same solution would
	// be visited once per sub-case assignment.
	if c.Params.EnumerateAllSolutions {
		for _, e := range ct.EnforcementLiterals {
			for _, lk := range subLits {
				c.AddImplication(lk, e)
			}
		}
	}
}

func (c *Context) emitLinearSubCase(ct *model.Constraint, iv model.Interval, enforcement []model.Literal) {
	c.AddConstraint(model.Constraint{
		Kind:                model.KindLinear,
		Linear:              ct.Linear,
		Domain:              model.FromInterval(iv.Lo, iv.Hi),
		EnforcementLiterals: enforcement,
	})
}

// expandLinearSizeTwoNotEqual rewrites a*x + b*y != c into clauses over
// existing value-encoding literals. It only fires when the constraint is
// exactly two terms whose domain is the full range minus a single
// forbidden value, the line of forbidden solutions crosses the variable
// domains in at most 16 points, and every encoding literal it would need
// already exists; otherwise the constraint is left for a later presolve
// stage.
func (c *Context) expandLinearSizeTwoNotEqual(idx int) {
	ct := c.M.Constraints[idx]
	if len(ct.Linear.Terms) != 2 {
		return
	}
	ivs := ct.Domain.Intervals()
	if len(ivs) != 2 || ivs[1].Lo != ivs[0].Hi+2 ||
		ivs[0].Lo != model.MinInt64 || ivs[1].Hi != model.MaxInt64 {
		return
	}
	forbidden := ivs[0].Hi + 1

	x, y := ct.Linear.Terms[0], ct.Linear.Terms[1]
	target := forbidden - ct.Linear.Offset

	g, x0, y0 := extendedEuclid(x.Coeff, y.Coeff)
	if g == 0 || target%g != 0 {
		// No integer solution: the forbidden value is unreachable and the
		// constraint is vacuous.
		if g != 0 {
			c.M.Constraints[idx].Clear()
		}
		return
	}
	scale := target / g
	x0 *= scale
	y0 *= scale
	// The solutions of x.Coeff*vx + y.Coeff*vy == target form the line
	// (vx, vy) = (x0 + (y.Coeff/g)*t, y0 - (x.Coeff/g)*t).
	xStep, yStep := y.Coeff/g, x.Coeff/g

	tLo, tHi, ok := intersectParameterRange(c.DomainOf(x.Var), c.DomainOf(y.Var), x0, y0, xStep, yStep)
	if !ok || tHi-tLo+1 > 16 {
		return
	}

	type pair struct{ vx, vy int64 }
	var pairs []pair
	for t := tLo; t <= tHi; t++ {
		vx := x0 + xStep*t
		vy := y0 - yStep*t
		if !c.DomainContains(x.Var, vx) || !c.DomainContains(y.Var, vy) {
			continue
		}
		if !c.HasVarValueEncoding(x.Var, vx) || !c.HasVarValueEncoding(y.Var, vy) {
			return
		}
		pairs = append(pairs, pair{vx, vy})
	}

	c.UpdateRuleStats("linear_size_two_not_equal_expansion")
	for _, p := range pairs {
		lits := []model.Literal{
			c.GetOrCreateVarValueEncoding(x.Var, p.vx).Not(),
			c.GetOrCreateVarValueEncoding(y.Var, p.vy).Not(),
		}
		for _, e := range ct.EnforcementLiterals {
			lits = append(lits, e.Not())
		}
		c.AddConstraint(model.Constraint{Kind: model.KindBoolOr, Literals: lits})
	}
	c.M.Constraints[idx].Clear()
}

// extendedEuclid returns (g, x, y) with g = gcd(a, b) >= 0 and a*x + b*y == g.
func extendedEuclid(a, b int64) (g, x, y int64) {
	if b == 0 {
		if a < 0 {
			return -a, -1, 0
		}
		return a, 1, 0
	}
	g1, x1, y1 := extendedEuclid(b, a%b)
	return g1, y1, x1 - (a/b)*y1
}

// intersectParameterRange bounds t such that x0+xStep*t lies in dx and
// y0-yStep*t lies in dy.
func intersectParameterRange(dx, dy model.Domain, x0, y0, xStep, yStep int64) (lo, hi int64, ok bool) {
	lo, hi = model.MinInt64, model.MaxInt64
	if xStep != 0 {
		l, h := boundParameter(x0, xStep, dx.Min(), dx.Max())
		lo, hi = max64(lo, l), min64(hi, h)
	}
	if yStep != 0 {
		l, h := boundParameter(y0, -yStep, dy.Min(), dy.Max())
		lo, hi = max64(lo, l), min64(hi, h)
	}
	if lo > hi {
		return 0, 0, false
	}
	return lo, hi, true
}

// boundParameter returns the t range for which base + coeff*t lies in
// [lo, hi].
func boundParameter(base, coeff, lo, hi int64) (int64, int64) {
	a := divCeil(lo-base, coeff)
	b := divFloor(hi-base, coeff)
	if coeff < 0 {
		a = divCeil(hi-base, coeff)
		b = divFloor(lo-base, coeff)
	}
	return a, b
}

func divFloor(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func divCeil(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) == (b < 0) {
		q++
	}
	return q
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
