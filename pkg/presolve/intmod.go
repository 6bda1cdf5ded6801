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

// expandIntMod rewrites target == a mod b for a non-fixed modulus b. A
// fixed modulus is already simple enough for the downstream solver and is
// left untouched. Otherwise target's domain is tightened to the
// positive-modulo image of a's domain under b's, a fresh quotient variable
// q is introduced over the positive-division image, and the constraint is
// replaced by three constraints all inheriting the original enforcement
// literals: q == a div b, p == q*b, a - p - target == 0.
func (c *Context) expandIntMod(idx int) {
	ct := c.M.Constraints[idx]
	if c.IsFixed(ct.Den) {
		return
	}

	aDom := c.DomainSuperSetOf(ct.Num)
	bDom := c.DomainSuperSetOf(ct.Den)
	if bDom.Min() <= 0 {
		// Non-positive moduli are not handled here; leave the constraint
		// for a later presolve stage.
		return
	}
	c.UpdateRuleStats("int_mod_expansion")

	c.IntersectDomainWith(ct.Target, modImage(aDom, bDom))
	if c.M.ModelIsUnsat() {
		return
	}

	// The quotient image's hull: floor division is monotone in the
	// numerator and, for a fixed numerator sign, in the denominator, so
	// evaluating at both denominator bounds covers the extremes.
	qDom := aDom.DivFloor(bDom.Min()).Union(aDom.DivFloor(bDom.Max()))
	q := c.NewIntVar(model.FromInterval(qDom.Min(), qDom.Max()), "mod_quotient")
	p := c.NewIntVar(model.FromInterval(aDom.Min()-(bDom.Max()-1), aDom.Max()), "mod_product")

	enf := ct.EnforcementLiterals
	// (1) q == a div b
	c.AddConstraint(model.Constraint{
		Kind:                model.KindIntDiv,
		Target:              q,
		Num:                 ct.Num,
		Den:                 ct.Den,
		EnforcementLiterals: enf,
	})
	// (2) p == q * b
	c.AddConstraint(model.Constraint{
		Kind:                model.KindIntProd,
		Target:              p,
		Exprs:               []model.AffineExpr{model.AsVar(q), ct.Den},
		EnforcementLiterals: enf,
	})
	// (3) a - p - target == 0
	c.AddConstraint(model.Constraint{
		Kind: model.KindLinear,
		Linear: model.NewLinearExpr(
			[]model.VarID{ct.Num.Var, p, ct.Target},
			[]int64{ct.Num.Coeff, -1, -1},
			ct.Num.Offset,
		),
		Domain:              model.Single(0),
		EnforcementLiterals: enf,
	})
	c.M.Constraints[idx].Clear()
}

// modImage returns a superset of the image of (a mod b) for a in aDom and b
// in bDom, all b positive. Small modulus domains get the exact per-value
// union; anything else falls back to [0, bMax-1].
func modImage(aDom, bDom model.Domain) model.Domain {
	if bDom.Size() <= 16 {
		image := model.Empty()
		for _, b := range bDom.Values() {
			image = image.Union(aDom.ModImage(b))
		}
		return image
	}
	return model.FromInterval(0, bDom.Max()-1)
}
