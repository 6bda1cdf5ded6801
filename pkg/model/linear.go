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
package model

// AffineExpr is a single-variable affine expression Coeff*Var + Offset. Many
// constraint families (element indices, reservoir times, all-different
// members) operate on affine expressions rather than bare variables so a
// caller need not introduce a fresh variable for `x+1` or `2*x`.
type AffineExpr struct {
	Var    VarID
	Coeff  int64
	Offset int64
}

// AsVar returns an AffineExpr that is exactly the given variable.
func AsVar(v VarID) AffineExpr { return AffineExpr{Var: v, Coeff: 1, Offset: 0} }

// Domain returns the domain of the affine expression given the domain of
// its underlying variable.
func (e AffineExpr) Domain(vd Domain) Domain {
	return vd.MulConstant(e.Coeff).AddConstant(e.Offset)
}

// LinearTerm is one Coeff*Var summand of a LinearExpr.
type LinearTerm struct {
	Var   VarID
	Coeff int64
}

// LinearExpr is a sum of coefficient*variable terms plus a constant offset:
// Σ Coeff_i * Var_i + Offset.
type LinearExpr struct {
	Terms  []LinearTerm
	Offset int64
}

// NewLinearExpr builds a linear expression from parallel vars/coeffs slices.
func NewLinearExpr(vars []VarID, coeffs []int64, offset int64) LinearExpr {
	terms := make([]LinearTerm, len(vars))
	for i := range vars {
		terms[i] = LinearTerm{Var: vars[i], Coeff: coeffs[i]}
	}
	return LinearExpr{Terms: terms, Offset: offset}
}

// Vars returns the underlying variable ids in term order.
func (e LinearExpr) Vars() []VarID {
	out := make([]VarID, len(e.Terms))
	for i, t := range e.Terms {
		out[i] = t.Var
	}
	return out
}
