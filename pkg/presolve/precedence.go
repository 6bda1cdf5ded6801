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

// precKey identifies one ordered event pair in the reified-precedence
// cache. The cache is scoped to a single reservoir rewrite and cleared at
// its entry and exit.
type precKey struct {
	I, J int
}

// GetOrCreateReifiedPrecedenceLiteral returns (creating if absent) a
// literal p with p ⇔ (ti ≤ tj ∧ ai ∧ aj). On creation the reification is
// made real in the model: p implies each conjunct, and the conjunction of
// all three implies p. Both p(i,j) and p(j,i) may be true when ti == tj.
func (c *Context) GetOrCreateReifiedPrecedenceLiteral(i, j int, ti, tj model.AffineExpr, ai, aj model.Literal) model.Literal {
	if c.precCache == nil {
		c.precCache = map[precKey]model.Literal{}
	}
	key := precKey{i, j}
	if lit, ok := c.precCache[key]; ok {
		return lit
	}
	le := c.newComparisonLiteral(ti, tj)
	p := model.NewLiteral(c.NewBoolVar("prec"))
	trueLit := c.GetTrueLiteral()
	if le != trueLit {
		c.AddImplication(p, le)
	}
	if ai != trueLit {
		c.AddImplication(p, ai)
	}
	if aj != trueLit {
		c.AddImplication(p, aj)
	}
	c.AddConstraint(model.Constraint{
		Kind:     model.KindBoolOr,
		Literals: []model.Literal{le.Not(), ai.Not(), aj.Not(), p},
	})
	c.precCache[key] = p
	return p
}

// clearPrecedenceCache resets the reified-precedence cache; called at entry
// and exit of each reservoir rewrite.
func (c *Context) clearPrecedenceCache() { c.precCache = map[precKey]model.Literal{} }

// newComparisonLiteral returns a literal equivalent to ti ≤ tj, resolving
// statically when the current domains already decide the comparison.
func (c *Context) newComparisonLiteral(ti, tj model.AffineExpr) model.Literal {
	diff := affineDifference(ti, tj)
	lo, hi := diff.Offset, diff.Offset
	for _, t := range diff.Terms {
		d := c.DomainOf(t.Var).MulConstant(t.Coeff)
		lo += d.Min()
		hi += d.Max()
	}
	if hi <= 0 {
		return c.GetTrueLiteral()
	}
	if lo > 0 {
		return c.GetTrueLiteral().Not()
	}
	le := model.NewLiteral(c.NewBoolVar("le"))
	c.AddConstraint(model.Constraint{
		Kind:                model.KindLinear,
		Linear:              diff,
		Domain:              model.FromInterval(model.MinInt64, 0),
		EnforcementLiterals: []model.Literal{le},
	})
	c.AddConstraint(model.Constraint{
		Kind:                model.KindLinear,
		Linear:              diff,
		Domain:              model.FromInterval(1, model.MaxInt64),
		EnforcementLiterals: []model.Literal{le.Not()},
	})
	return le
}

// affineDifference returns a - b as a linear expression, merging the terms
// when both sides share the underlying variable and dropping constant
// (zero-coefficient) sides.
func affineDifference(a, b model.AffineExpr) model.LinearExpr {
	offset := a.Offset - b.Offset
	var terms []model.LinearTerm
	if a.Coeff != 0 && b.Coeff != 0 && a.Var == b.Var {
		if coeff := a.Coeff - b.Coeff; coeff != 0 {
			terms = append(terms, model.LinearTerm{Var: a.Var, Coeff: coeff})
		}
		return model.LinearExpr{Terms: terms, Offset: offset}
	}
	if a.Coeff != 0 {
		terms = append(terms, model.LinearTerm{Var: a.Var, Coeff: a.Coeff})
	}
	if b.Coeff != 0 {
		terms = append(terms, model.LinearTerm{Var: b.Var, Coeff: -b.Coeff})
	}
	return model.LinearExpr{Terms: terms, Offset: offset}
}
