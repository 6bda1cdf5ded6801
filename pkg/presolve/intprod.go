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

// expandIntProd rewrites a two-factor product when exactly one factor is a
// literal ℓ and the other an expression x: under ℓ, x - target == 0; under
// ¬ℓ, target == 0. If both factors are literals (or neither is), the
// constraint is left for a later presolve stage.
func (c *Context) expandIntProd(idx int) {
	ct := c.M.Constraints[idx]
	if len(ct.Exprs) != 2 {
		return
	}
	litA, isLitA := c.ExpressionIsALiteral(ct.Exprs[0])
	litB, isLitB := c.ExpressionIsALiteral(ct.Exprs[1])
	if isLitA == isLitB {
		return
	}
	var lit model.Literal
	var expr model.AffineExpr
	if isLitA {
		lit, expr = litA, ct.Exprs[1]
	} else {
		lit, expr = litB, ct.Exprs[0]
	}
	c.UpdateRuleStats("int_prod_expansion")
	enf := ct.EnforcementLiterals

	// Under lit: expr - target == 0.
	c.AddConstraint(model.Constraint{
		Kind: model.KindLinear,
		Linear: model.NewLinearExpr(
			[]model.VarID{expr.Var, ct.Target},
			[]int64{expr.Coeff, -1},
			expr.Offset,
		),
		Domain:              model.Single(0),
		EnforcementLiterals: append(append([]model.Literal(nil), enf...), lit),
	})
	// Under ¬lit: target == 0.
	c.AddConstraint(model.Constraint{
		Kind:                model.KindLinear,
		Linear:              model.NewLinearExpr([]model.VarID{ct.Target}, []int64{1}, 0),
		Domain:              model.Single(0),
		EnforcementLiterals: append(append([]model.Literal(nil), enf...), lit.Not()),
	})
	c.M.Constraints[idx].Clear()
}
