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
	"fmt"
	"sort"

	"github.com/cpsatlab/expand/pkg/model"
	"github.com/cpsatlab/expand/pkg/presolve/tuple"
)

// expandTable rewrites a table constraint, dispatching on its Negated flag.
func (c *Context) expandTable(idx int) {
	ct := c.M.Constraints[idx]
	nCols := len(ct.TableVars)
	rows := chunkRows(ct.Values, nCols)
	if ct.Negated {
		c.expandNegativeTable(&ct, rows)
	} else {
		c.expandPositiveTable(&ct, rows)
	}
	c.M.Constraints[idx].Clear()
}

func chunkRows(values []int64, nCols int) []tuple.Row {
	if nCols == 0 {
		return nil
	}
	rows := make([]tuple.Row, 0, len(values)/nCols)
	for i := 0; i+nCols <= len(values); i += nCols {
		rows = append(rows, append(tuple.Row(nil), values[i:i+nCols]...))
	}
	return rows
}

// expandNegativeTable compresses the forbidden tuples with the wildcard
// encoding, then emits one clause per remaining tuple: the disjunction of
// ¬(vars[i] == value_i) over its concrete columns.
func (c *Context) expandNegativeTable(ct *model.Constraint, rows []tuple.Row) {
	c.UpdateRuleStats("negative_table_expansion")
	compressed := tuple.Compress(rows, len(ct.TableVars), c.tableColumnDomain(ct), c.compressionLevel())
	for _, row := range compressed {
		var lits []model.Literal
		allWildcard := true
		for col, v := range row {
			if v == tuple.Wildcard {
				continue
			}
			allWildcard = false
			lits = append(lits, c.GetOrCreateVarValueEncoding(ct.TableVars[col], v).Not())
		}
		if allWildcard {
			// A fully wildcarded forbidden row rules out every assignment,
			// so the constraint can never be active.
			if len(ct.EnforcementLiterals) == 0 {
				c.NotifyThatModelIsUnsat("negative table forbids every assignment")
				return
			}
			negated := make([]model.Literal, len(ct.EnforcementLiterals))
			for i, e := range ct.EnforcementLiterals {
				negated[i] = e.Not()
			}
			c.AddConstraint(model.Constraint{Kind: model.KindBoolOr, Literals: negated})
			continue
		}
		c.AddConstraint(model.Constraint{Kind: model.KindBoolOr, Literals: lits, EnforcementLiterals: ct.EnforcementLiterals})
	}
}

func (c *Context) tableColumnDomain(ct *model.Constraint) func(int) []int64 {
	return func(col int) []int64 { return c.DomainOf(ct.TableVars[col]).Values() }
}

func (c *Context) compressionLevel() tuple.Level {
	switch c.Params.TableCompressionLevel {
	case TableCompressionLight:
		return tuple.LevelLight
	case TableCompressionFull:
		return tuple.LevelFull
	case TableCompressionFullFixedPoint:
		return tuple.LevelFullFixedPoint
	default:
		return tuple.LevelNone
	}
}

// expandPositiveTable rewrites an allowed-tuples table: column reduction,
// the size-two specialization, cost transfer for removable cost columns,
// wildcard compression, and finally the tuple-literal encoding.
func (c *Context) expandPositiveTable(ct *model.Constraint, rows []tuple.Row) {
	c.UpdateRuleStats("positive_table_expansion")

	rows = c.reduceTableColumns(ct, rows)
	if c.M.ModelIsUnsat() {
		return
	}
	if len(rows) == 0 {
		if len(ct.EnforcementLiterals) == 0 {
			c.NotifyThatModelIsUnsat("positive table has no feasible tuple")
			return
		}
		negated := make([]model.Literal, len(ct.EnforcementLiterals))
		for i, e := range ct.EnforcementLiterals {
			negated[i] = e.Not()
		}
		c.AddConstraint(model.Constraint{Kind: model.KindBoolOr, Literals: negated})
		return
	}

	// Size-two specialization: avoids tuple literals altogether. Only
	// sound when the table is unconditionally enforced, and only taken
	// when cost detection is off so a two-column cost table still reaches
	// the transfer below.
	if len(ct.TableVars) == 2 && !c.Params.DetectTableWithCost && len(ct.EnforcementLiterals) == 0 {
		c.expandTableSizeTwo(ct, rows)
		return
	}

	if c.Params.DetectTableWithCost && len(ct.EnforcementLiterals) == 0 {
		if eligible := c.findWCSPColumns(ct); len(eligible) > 0 {
			c.expandTableWCSP(ct, rows, eligible)
			return
		}
	}

	compressed := tuple.Compress(rows, len(ct.TableVars), c.tableColumnDomain(ct), c.compressionLevel())
	c.expandCompressedTable(ct.TableVars, compressed, nil, ct.EnforcementLiterals)
}

// reduceTableColumns shrinks each column's variable domain to the values
// the table actually uses (only when the table is unconditionally
// enforced) and drops rows referencing an out-of-domain value.
func (c *Context) reduceTableColumns(ct *model.Constraint, rows []tuple.Row) []tuple.Row {
	nCols := len(ct.TableVars)
	if len(ct.EnforcementLiterals) == 0 {
		usedValues := make([]map[int64]bool, nCols)
		for i := range usedValues {
			usedValues[i] = map[int64]bool{}
		}
		for _, row := range rows {
			for i, v := range row {
				usedValues[i][v] = true
			}
		}
		for i, v := range ct.TableVars {
			vals := make([]int64, 0, len(usedValues[i]))
			for val := range usedValues[i] {
				vals = append(vals, val)
			}
			c.IntersectDomainWith(v, model.FromValues(vals))
			if c.M.ModelIsUnsat() {
				return nil
			}
		}
	}
	out := rows[:0:0]
	for _, row := range rows {
		ok := true
		for i, v := range row {
			if !c.DomainOf(ct.TableVars[i]).Contains(v) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, row)
		}
	}
	return out
}

// expandTableSizeTwo records, for each side of a two-column table, the
// values the other side supports, then emits an implication (unique
// support) or a clause (multiple support) in each direction.
func (c *Context) expandTableSizeTwo(ct *model.Constraint, rows []tuple.Row) {
	c.UpdateRuleStats("table_size_two_expansion")
	left, right := ct.TableVars[0], ct.TableVars[1]
	c.emitSizeTwoDirection(left, right, rows, 0, 1)
	c.emitSizeTwoDirection(right, left, rows, 1, 0)
}

func (c *Context) emitSizeTwoDirection(from, to model.VarID, rows []tuple.Row, fromCol, toCol int) {
	support := map[int64][]int64{}
	var order []int64
	for _, row := range rows {
		f, t := row[fromCol], row[toCol]
		if support[f] == nil {
			order = append(order, f)
		}
		support[f] = append(support[f], t)
	}
	for _, f := range order {
		fromLit := c.GetOrCreateVarValueEncoding(from, f)
		toVals := dedupeSorted(support[f])
		if len(toVals) == 1 {
			c.AddImplication(fromLit, c.GetOrCreateVarValueEncoding(to, toVals[0]))
			continue
		}
		lits := []model.Literal{fromLit.Not()}
		for _, t := range toVals {
			lits = append(lits, c.GetOrCreateVarValueEncoding(to, t))
		}
		c.AddConstraint(model.Constraint{Kind: model.KindBoolOr, Literals: lits})
	}
}

func dedupeSorted(vals []int64) []int64 {
	sorted := append([]int64(nil), vals...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	out := sorted[:0]
	for i, v := range sorted {
		if i == 0 || v != sorted[i-1] {
			out = append(out, v)
		}
	}
	return out
}

// findWCSPColumns returns the columns whose variable occurs only in this
// table and linearly in the objective; their contribution can be moved
// onto per-tuple costs and the variable dropped from the model.
func (c *Context) findWCSPColumns(ct *model.Constraint) []int {
	var eligible []int
	for i, v := range ct.TableVars {
		if _, inObjective := c.ObjectiveMap()[v]; !inObjective {
			continue
		}
		uses := c.VarToConstraints(v)
		if len(uses) <= 1 {
			eligible = append(eligible, i)
		}
	}
	return eligible
}

// expandTableWCSP transfers each eligible column's objective contribution
// to a per-tuple cost: normalize by the minimum cost (moved to the
// objective offset), attach the residual cost to the tuple literal, and
// record the removed variable's value per tuple in the mapping model so
// the original solution can be reconstructed after search. Cost tables are
// expanded without wildcard compression so the per-row mapping to the
// removed variables stays exact.
func (c *Context) expandTableWCSP(ct *model.Constraint, rows []tuple.Row, eligible []int) {
	c.UpdateRuleStats("table_wcsp_cost_transfer")
	eligibleSet := map[int]bool{}
	for _, i := range eligible {
		eligibleSet[i] = true
	}
	var keptCols []model.VarID
	var keptIdx []int
	for i, v := range ct.TableVars {
		if !eligibleSet[i] {
			keptCols = append(keptCols, v)
			keptIdx = append(keptIdx, i)
		}
	}

	type wcspRow struct {
		kept        tuple.Row
		cost        int64
		removedVals map[int]int64
	}
	obj := c.ObjectiveMap()
	wrows := make([]wcspRow, len(rows))
	minCost := int64(0)
	for i, row := range rows {
		var cost int64
		removed := map[int]int64{}
		for _, col := range eligible {
			v := ct.TableVars[col]
			cost += obj[v] * row[col]
			removed[col] = row[col]
		}
		kept := make(tuple.Row, len(keptIdx))
		for k, col := range keptIdx {
			kept[k] = row[col]
		}
		wrows[i] = wcspRow{kept: kept, cost: cost, removedVals: removed}
		if i == 0 || cost < minCost {
			minCost = cost
		}
	}
	c.AddToObjectiveOffset(minCost)
	for _, col := range eligible {
		c.RemoveVariableFromObjective(ct.TableVars[col])
	}

	// Deduplicate rows sharing the same kept tuple, keeping the minimum
	// residual-cost representative.
	type group struct {
		row  wcspRow
		cost int64
	}
	best := map[string]*group{}
	var order []string
	keyOf := func(r tuple.Row) string {
		s := ""
		for _, v := range r {
			s += fmt.Sprintf("%d,", v)
		}
		return s
	}
	for _, wr := range wrows {
		residual := wr.cost - minCost
		k := keyOf(wr.kept)
		if g, ok := best[k]; ok {
			if residual < g.cost {
				g.row, g.cost = wr, residual
			}
			continue
		}
		best[k] = &group{row: wr, cost: residual}
		order = append(order, k)
	}

	tupleLits := make([]model.Literal, len(order))
	keptRows := make([]tuple.Row, len(order))
	for i, k := range order {
		g := best[k]
		lit := model.NewLiteral(c.NewBoolVar("wcsp_tuple"))
		tupleLits[i] = lit
		keptRows[i] = g.row.kept
		if g.cost != 0 {
			c.AddLiteralToObjective(lit, g.cost)
		}
		removedCols := make([]int, 0, len(g.row.removedVals))
		for col := range g.row.removedVals {
			removedCols = append(removedCols, col)
		}
		sort.Ints(removedCols)
		for _, col := range removedCols {
			c.M.MappingModel = append(c.M.MappingModel, model.Constraint{
				Kind: model.KindLinear,
				Linear: model.NewLinearExpr(
					[]model.VarID{ct.TableVars[col]}, []int64{1}, -g.row.removedVals[col],
				),
				Domain:              model.Single(0),
				EnforcementLiterals: []model.Literal{lit},
			})
		}
	}
	c.expandCompressedTable(keptCols, keptRows, tupleLits, ct.EnforcementLiterals)
}

// expandCompressedTable emits one tuple literal per (possibly wildcarded)
// row, an exactly-one across them, and per column both the forward
// enforcement and the no-support clause. If tupleLits is non-nil it is
// reused verbatim (the cost-transfer path already allocated one literal
// per surviving row); otherwise fresh Booleans are created, reusing an
// encoding literal when a column value is unique to its row.
func (c *Context) expandCompressedTable(cols []model.VarID, rows []tuple.Row, tupleLits []model.Literal, enforcement []model.Literal) {
	if len(rows) == 0 {
		return
	}
	if tupleLits == nil {
		tupleLits = make([]model.Literal, len(rows))
		uniqueCol := uniqueColumnPerRow(cols, rows)
		for i, row := range rows {
			if col, val, ok := uniqueCol(i); ok {
				tupleLits[i] = c.GetOrCreateVarValueEncoding(cols[col], val)
			} else {
				tupleLits[i] = model.NewLiteral(c.NewBoolVar(fmt.Sprintf("table_tuple_%d", rowHash(row))))
			}
		}
	}
	c.AddConstraint(model.Constraint{Kind: model.KindExactlyOne, Literals: tupleLits, EnforcementLiterals: enforcement})

	var negatedEnforcement []model.Literal
	for _, e := range enforcement {
		negatedEnforcement = append(negatedEnforcement, e.Not())
	}
	for colIdx, v := range cols {
		support := map[int64][]model.Literal{}
		var wildcardLits []model.Literal
		for i, row := range rows {
			val := row[colIdx]
			if val == tuple.Wildcard {
				wildcardLits = append(wildcardLits, tupleLits[i])
				continue
			}
			support[val] = append(support[val], tupleLits[i])
			c.AddImplication(tupleLits[i], c.GetOrCreateVarValueEncoding(v, val))
		}
		for _, val := range c.DomainOf(v).Values() {
			lits := append([]model.Literal{c.GetOrCreateVarValueEncoding(v, val).Not()}, support[val]...)
			lits = append(lits, wildcardLits...)
			lits = append(lits, negatedEnforcement...)
			c.AddConstraint(model.Constraint{Kind: model.KindBoolOr, Literals: lits})
		}
	}
}

// uniqueColumnPerRow returns, for row i, a column whose value is unique to
// that row across the whole table, so its value-encoding literal can serve
// as the tuple literal instead of allocating a fresh Boolean.
func uniqueColumnPerRow(cols []model.VarID, rows []tuple.Row) func(i int) (col int, val int64, ok bool) {
	counts := make([]map[int64]int, len(cols))
	for c := range cols {
		counts[c] = map[int64]int{}
	}
	for _, row := range rows {
		for c, v := range row {
			if v != tuple.Wildcard {
				counts[c][v]++
			}
		}
	}
	return func(i int) (int, int64, bool) {
		row := rows[i]
		for c, v := range row {
			if v != tuple.Wildcard && counts[c][v] == 1 {
				return c, v, true
			}
		}
		return 0, 0, false
	}
}

func rowHash(row tuple.Row) uint64 {
	var h uint64 = 1469598103934665603
	for _, v := range row {
		h ^= uint64(v)
		h *= 1099511628211
	}
	return h
}
