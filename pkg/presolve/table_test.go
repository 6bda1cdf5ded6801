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
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpsatlab/expand/pkg/model"
)

func TestNegativeTableEmitsOneClausePerRow(t *testing.T) {
	m := model.NewModel()
	x := m.Vars.NewIntVar(model.FromInterval(0, 1), "x")
	y := m.Vars.NewIntVar(model.FromInterval(0, 1), "y")
	idx := m.AddConstraint(model.Constraint{
		Kind:      model.KindTable,
		TableVars: []model.VarID{x, y},
		Values:    []int64{0, 0},
		Negated:   true,
	})

	ctx := newTestContext(m)
	before := len(m.Constraints)
	ctx.expandTable(idx)

	require.False(t, m.ModelIsUnsat())
	require.True(t, m.Constraints[idx].IsCleared())
	require.Equal(t, before+1, len(m.Constraints))
	clause := m.Constraints[before]
	assert.Equal(t, model.KindBoolOr, clause.Kind)
	// Forbidding (0, 0) over two Booleans is the clause (x ∨ y).
	assert.ElementsMatch(t, []model.Literal{model.NewLiteral(x), model.NewLiteral(y)}, clause.Literals)
}

func TestNegativeTableFullWildcardIsInfeasible(t *testing.T) {
	m := model.NewModel()
	x := m.Vars.NewIntVar(model.FromInterval(0, 1), "x")
	idx := m.AddConstraint(model.Constraint{
		Kind:      model.KindTable,
		TableVars: []model.VarID{x},
		Values:    []int64{0, 1},
		Negated:   true,
	})

	ctx := newTestContext(m)
	ctx.expandTable(idx)
	// Forbidding both values of x forbids every assignment.
	assert.True(t, m.ModelIsUnsat())
}

func TestPositiveTableSizeTwo(t *testing.T) {
	m := model.NewModel()
	x := m.Vars.NewIntVar(model.FromInterval(0, 1), "x")
	y := m.Vars.NewIntVar(model.FromInterval(0, 1), "y")
	idx := m.AddConstraint(model.Constraint{
		Kind:      model.KindTable,
		TableVars: []model.VarID{x, y},
		Values:    []int64{0, 0, 1, 1},
	})

	// The specialization only fires when cost detection is off.
	params := DefaultParameters()
	params.DetectTableWithCost = false
	ctx := NewContext(m, params, logrus.NewEntry(logrus.New()))
	before := len(m.Constraints)
	ctx.expandTable(idx)

	require.False(t, m.ModelIsUnsat())
	require.True(t, m.Constraints[idx].IsCleared())
	// Each side's values have unique support: four implications, no tuple
	// literals.
	var clauses int
	for _, ct := range m.Constraints[before:] {
		require.Equal(t, model.KindBoolOr, ct.Kind)
		assert.Len(t, ct.Literals, 2)
		clauses++
	}
	assert.Equal(t, 4, clauses)
}

func TestPositiveTableColumnReduction(t *testing.T) {
	m := model.NewModel()
	x := m.Vars.NewIntVar(model.FromInterval(0, 9), "x")
	y := m.Vars.NewIntVar(model.FromInterval(0, 9), "y")
	z := m.Vars.NewIntVar(model.FromInterval(0, 9), "z")
	idx := m.AddConstraint(model.Constraint{
		Kind:      model.KindTable,
		TableVars: []model.VarID{x, y, z},
		Values: []int64{
			1, 2, 3,
			4, 5, 6,
		},
	})

	ctx := newTestContext(m)
	ctx.expandTable(idx)

	require.False(t, m.ModelIsUnsat())
	assert.Equal(t, []int64{1, 4}, ctx.DomainOf(x).Values())
	assert.Equal(t, []int64{2, 5}, ctx.DomainOf(y).Values())
	assert.Equal(t, []int64{3, 6}, ctx.DomainOf(z).Values())
	var exactlyOnes int
	for _, ct := range m.Constraints {
		if ct.Kind == model.KindExactlyOne {
			exactlyOnes++
			assert.Len(t, ct.Literals, 2)
		}
	}
	assert.Equal(t, 1, exactlyOnes, "one exactly-one over the tuple literals")
}

func TestPositiveTableEmptyAfterReductionIsInfeasible(t *testing.T) {
	m := model.NewModel()
	x := m.Vars.NewIntVar(model.FromInterval(0, 1), "x")
	y := m.Vars.NewIntVar(model.FromInterval(0, 1), "y")
	z := m.Vars.NewIntVar(model.FromInterval(0, 1), "z")
	idx := m.AddConstraint(model.Constraint{
		Kind:      model.KindTable,
		TableVars: []model.VarID{x, y, z},
		Values:    []int64{0, 0, 7},
	})

	ctx := newTestContext(m)
	ctx.expandTable(idx)
	// The only tuple references 7, outside z's domain.
	assert.True(t, m.ModelIsUnsat())
}

func TestTableWCSPCostTransfer(t *testing.T) {
	m := model.NewModel()
	x := m.Vars.NewIntVar(model.FromInterval(0, 1), "x")
	y := m.Vars.NewIntVar(model.FromInterval(0, 1), "y")
	cost := m.Vars.NewIntVar(model.FromValues([]int64{5, 7}), "cost")
	m.Objective.Coeffs[cost] = 1
	idx := m.AddConstraint(model.Constraint{
		Kind:      model.KindTable,
		TableVars: []model.VarID{x, y, cost},
		Values: []int64{
			0, 0, 5,
			1, 1, 7,
		},
	})

	ctx := newTestContext(m)
	ctx.UpdateConstraintVariableUsage(idx)
	ctx.expandTable(idx)

	require.False(t, m.ModelIsUnsat())
	// The minimum tuple cost moves to the objective offset and the cost
	// variable leaves the objective entirely.
	assert.Equal(t, int64(5), m.Objective.Offset)
	_, stillThere := m.Objective.Coeffs[cost]
	assert.False(t, stillThere)
	// One residual-cost literal: the (1, 1, 7) tuple costs 2 more.
	var residuals int
	for _, coeff := range m.Objective.Coeffs {
		if coeff == 2 {
			residuals++
		}
	}
	assert.Equal(t, 1, residuals)
	// The mapping model reconstructs the removed cost column per tuple.
	require.Len(t, m.MappingModel, 2)
	for _, ct := range m.MappingModel {
		assert.Equal(t, model.KindLinear, ct.Kind)
		assert.Len(t, ct.EnforcementLiterals, 1)
		assert.Equal(t, cost, ct.Linear.Terms[0].Var)
	}
}

func TestTableWCSPCostTransferTwoColumns(t *testing.T) {
	m := model.NewModel()
	x := m.Vars.NewIntVar(model.FromInterval(0, 1), "x")
	cost := m.Vars.NewIntVar(model.FromValues([]int64{5, 7}), "cost")
	m.Objective.Coeffs[cost] = 1
	idx := m.AddConstraint(model.Constraint{
		Kind:      model.KindTable,
		TableVars: []model.VarID{x, cost},
		Values: []int64{
			0, 5,
			1, 7,
		},
	})

	ctx := newTestContext(m)
	ctx.UpdateConstraintVariableUsage(idx)
	ctx.expandTable(idx)

	require.False(t, m.ModelIsUnsat())
	// Cost detection takes precedence over the size-two specialization: a
	// two-column cost table still gets its cost column transferred.
	assert.Equal(t, int64(5), m.Objective.Offset)
	_, stillThere := m.Objective.Coeffs[cost]
	assert.False(t, stillThere)
	require.Len(t, m.MappingModel, 2)
	for _, ct := range m.MappingModel {
		assert.Equal(t, model.KindLinear, ct.Kind)
		assert.Equal(t, cost, ct.Linear.Terms[0].Var)
	}
}

func TestEnforcedTableKeepsDomains(t *testing.T) {
	m := model.NewModel()
	x := m.Vars.NewIntVar(model.FromInterval(0, 9), "x")
	y := m.Vars.NewIntVar(model.FromInterval(0, 9), "y")
	z := m.Vars.NewIntVar(model.FromInterval(0, 9), "z")
	e := model.NewLiteral(m.Vars.NewBoolVar("e"))
	idx := m.AddConstraint(model.Constraint{
		Kind:                model.KindTable,
		TableVars:           []model.VarID{x, y, z},
		Values:              []int64{1, 2, 3},
		EnforcementLiterals: []model.Literal{e},
	})

	ctx := newTestContext(m)
	ctx.expandTable(idx)

	require.False(t, m.ModelIsUnsat())
	// An optional table must not shrink its columns' domains: when e is
	// false any assignment remains allowed.
	assert.Equal(t, int64(10), ctx.DomainOf(x).Size())
	assert.Equal(t, int64(10), ctx.DomainOf(y).Size())
	assert.Equal(t, int64(10), ctx.DomainOf(z).Size())
}
