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

import (
	"sort"

	"github.com/cpsatlab/expand/pkg/model"
)

// LinkLiteralsAndValues ties a set of tuple literals to the value-encoding
// literals of the column they project to: tupleLits[i] projects to
// values[i]. For each distinct value v, let S_v be the tuple literals
// projecting to it. If S_v has exactly one member, the encoding literal and
// that tuple literal are declared equal; otherwise the bidirectional
// relation "tuple => encoding[v]" (one implication per tuple) and
// "encoding[v] => bool_or(S_v)" is emitted.
//
// Iteration is over the sorted distinct values, keeping emitted-literal
// order a function of the input rather than of map iteration.
func (c *Context) LinkLiteralsAndValues(tupleLits []model.Literal, values []int64, encodingOf func(v int64) model.Literal) {
	if len(tupleLits) != len(values) {
		panic("presolve: LinkLiteralsAndValues requires tupleLits and values of equal length")
	}
	byValue := map[int64][]model.Literal{}
	for i, v := range values {
		byValue[v] = append(byValue[v], tupleLits[i])
	}
	distinct := make([]int64, 0, len(byValue))
	for v := range byValue {
		distinct = append(distinct, v)
	}
	sort.Slice(distinct, func(i, j int) bool { return distinct[i] < distinct[j] })

	for _, v := range distinct {
		support := byValue[v]
		enc := encodingOf(v)
		if len(support) == 1 {
			c.StoreBooleanEqualityRelation(enc, support[0])
			continue
		}
		for _, tupleLit := range support {
			c.AddImplication(tupleLit, enc)
		}
		lits := append([]model.Literal{enc.Not()}, support...)
		c.AddConstraint(model.Constraint{Kind: model.KindBoolOr, Literals: lits})
	}
}

// AddImplyInReachableValues constrains lit to the reachable subset of an
// encoding. allValues is the full set of keys encodingOf may be called
// with; reachable must be a subset of it. When reachable covers everything
// the implication is vacuous and nothing is emitted. Otherwise the cheaper
// of the positive clause / negative implications formulation is chosen by
// comparing |reachable| to |allValues|/2.
func (c *Context) AddImplyInReachableValues(lit model.Literal, reachable, allValues []int64, encodingOf func(v int64) model.Literal) {
	if len(reachable) == len(allValues) {
		return
	}
	reachSet := make(map[int64]bool, len(reachable))
	for _, v := range reachable {
		reachSet[v] = true
	}
	sortedReachable := append([]int64(nil), reachable...)
	sort.Slice(sortedReachable, func(i, j int) bool { return sortedReachable[i] < sortedReachable[j] })

	if len(reachable)*2 <= len(allValues) {
		lits := make([]model.Literal, 0, len(sortedReachable)+1)
		lits = append(lits, lit.Not())
		for _, v := range sortedReachable {
			lits = append(lits, encodingOf(v))
		}
		c.AddConstraint(model.Constraint{Kind: model.KindBoolOr, Literals: lits})
		return
	}
	sortedAll := append([]int64(nil), allValues...)
	sort.Slice(sortedAll, func(i, j int) bool { return sortedAll[i] < sortedAll[j] })
	for _, v := range sortedAll {
		if reachSet[v] {
			continue
		}
		c.AddImplication(lit, encodingOf(v).Not())
	}
}
