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
package modelio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpsatlab/expand/pkg/model"
)

func sampleModel() *model.Model {
	m := model.NewModel()
	x := m.Vars.NewIntVar(model.FromInterval(0, 5), "x")
	y := m.Vars.NewIntVar(model.FromInterval(0, 4), "y")
	b := m.Vars.NewBoolVar("b")
	m.Objective.Coeffs[x] = 3
	m.Objective.Offset = -2

	m.AddConstraint(model.Constraint{
		Kind:   model.KindLinear,
		Linear: model.NewLinearExpr([]model.VarID{x, y}, []int64{2, 3}, 1),
		Domain: model.FromIntervals([]model.Interval{{Lo: 0, Hi: 2}, {Lo: 7, Hi: 9}}),
	})
	m.AddConstraint(model.Constraint{
		Kind:     model.KindBoolOr,
		Literals: []model.Literal{model.NewLiteral(b), model.Negated(b)},
	})
	m.AddConstraint(model.Constraint{
		Kind:          model.KindAutomaton,
		AutomatonVars: []model.VarID{x, y},
		StartingState: 0,
		FinalStates:   []int64{1},
		Transitions:   []model.Transition{{Tail: 0, Label: 0, Head: 1}},
	})
	m.AddConstraint(model.Constraint{
		Kind:      model.KindTable,
		TableVars: []model.VarID{x, y},
		Values:    []int64{0, 0, 1, 1},
		Negated:   true,
	})
	m.AddConstraint(model.Constraint{
		Kind:           model.KindReservoir,
		TimeExprs:      []model.AffineExpr{model.AsVar(x), model.AsVar(y)},
		LevelChanges:   []model.AffineExpr{{Coeff: 0, Offset: 1}, {Coeff: 0, Offset: -1}},
		ActiveLiterals: []model.Literal{model.NewLiteral(b), model.Negated(b)},
		MinLevel:       0,
		MaxLevel:       1,
	})
	return m
}

func TestRoundTripIsStable(t *testing.T) {
	m := sampleModel()
	var first bytes.Buffer
	require.NoError(t, Write(&first, m))

	decoded, err := Read(bytes.NewReader(first.Bytes()))
	require.NoError(t, err)

	var second bytes.Buffer
	require.NoError(t, Write(&second, decoded))
	assert.Equal(t, first.String(), second.String())
}

func TestReadPreservesStructure(t *testing.T) {
	m := sampleModel()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, m))

	decoded, err := Read(&buf)
	require.NoError(t, err)

	require.Equal(t, m.Vars.Len(), decoded.Vars.Len())
	require.Len(t, decoded.Constraints, len(m.Constraints))
	for i := range m.Constraints {
		assert.Equal(t, m.Constraints[i].Kind, decoded.Constraints[i].Kind)
	}
	assert.Equal(t, m.Objective.Offset, decoded.Objective.Offset)
	assert.Equal(t, m.Objective.Coeffs, decoded.Objective.Coeffs)
	reservoir := decoded.Constraints[4]
	assert.Equal(t, int64(1), reservoir.MaxLevel)
	assert.Len(t, reservoir.TimeExprs, 2)
}

func TestReadRejectsUnknownKind(t *testing.T) {
	_, err := Read(strings.NewReader(`{"vars":[],"constraints":[{"kind":"flux_capacitor"}]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "flux_capacitor")
}
