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

// expandInverse rewrites f_inverse[f_direct[i]] == i. Both arrays are
// tightened to [0, n-1]; aliased positions (the same variable used in both
// f_direct and f_inverse) have the corresponding cross value forbidden;
// bipartite support between the two arrays is propagated to a fixed point;
// and finally every surviving (i, j) pair has its two encoding literals
// unified, which together with the literal linking constraints encodes the
// full bijection.
func (c *Context) expandInverse(idx int) {
	ct := c.M.Constraints[idx]
	n := len(ct.FDirect)
	if len(ct.FInverse) != n {
		panic("presolve: inverse constraint requires equal-length arrays")
	}
	c.UpdateRuleStats("inverse_expansion")
	full := model.FromInterval(0, int64(n-1))

	for _, v := range ct.FDirect {
		c.IntersectDomainWith(v, full)
	}
	for _, v := range ct.FInverse {
		c.IntersectDomainWith(v, full)
	}
	if c.M.ModelIsUnsat() {
		return
	}

	// Aliasing: forbid value j at position i != j whenever FDirect[i] and
	// FInverse[j] are literally the same variable, since f[i] == j would
	// then force f_inverse[j] == j != i.
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			if ct.FDirect[i] == ct.FInverse[j] {
				c.IntersectDomainWith(ct.FDirect[i], c.DomainOf(ct.FDirect[i]).RemoveValue(int64(j)))
			}
		}
	}
	if c.M.ModelIsUnsat() {
		return
	}

	// Propagate bipartite support to a fixed point: j in dom(FDirect[i])
	// iff i in dom(FInverse[j]).
	for changed := true; changed; {
		changed = false
		for i := 0; i < n; i++ {
			for _, j := range c.DomainOf(ct.FDirect[i]).Values() {
				if !c.DomainOf(ct.FInverse[j]).Contains(int64(i)) {
					c.IntersectDomainWith(ct.FDirect[i], c.DomainOf(ct.FDirect[i]).RemoveValue(j))
					changed = true
				}
			}
		}
		for j := 0; j < n; j++ {
			for _, i := range c.DomainOf(ct.FInverse[j]).Values() {
				if !c.DomainOf(ct.FDirect[i]).Contains(int64(j)) {
					c.IntersectDomainWith(ct.FInverse[j], c.DomainOf(ct.FInverse[j]).RemoveValue(i))
					changed = true
				}
			}
		}
		if c.M.ModelIsUnsat() {
			return
		}
	}

	// Bind the two encoding literals for every surviving pair to a single
	// literal, reusing whichever already exists. With both sides linked to
	// the same Boolean, (f_direct[i] == j) ⇔ (f_inverse[j] == i) holds in
	// the lowered model without any further constraint.
	for i := 0; i < n; i++ {
		for _, j := range c.DomainOf(ct.FDirect[i]).Values() {
			hasDirect := c.HasVarValueEncoding(ct.FDirect[i], j)
			hasInverse := c.HasVarValueEncoding(ct.FInverse[j], int64(i))
			switch {
			case hasDirect && hasInverse:
				directLit := c.GetOrCreateVarValueEncoding(ct.FDirect[i], j)
				inverseLit := c.GetOrCreateVarValueEncoding(ct.FInverse[j], int64(i))
				c.StoreBooleanEqualityRelation(directLit, inverseLit)
			case hasInverse:
				c.InsertVarValueEncoding(c.GetOrCreateVarValueEncoding(ct.FInverse[j], int64(i)), ct.FDirect[i], j)
			default:
				lit := c.GetOrCreateVarValueEncoding(ct.FDirect[i], j)
				c.InsertVarValueEncoding(lit, ct.FInverse[j], int64(i))
			}
		}
	}
	c.M.Constraints[idx].Clear()
}
