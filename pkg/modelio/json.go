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

// Package modelio implements the JSON encoding of a model used by the
// expand CLI. The presolve package never imports this package: the
// expansion stage itself is a pure in-memory transformation over
// *model.Model.
package modelio

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/cpsatlab/expand/pkg/model"
)

// intervalJSON mirrors model.Interval.
type intervalJSON struct {
	Lo int64 `json:"lo"`
	Hi int64 `json:"hi"`
}

type variableJSON struct {
	Name   string         `json:"name"`
	Domain []intervalJSON `json:"domain"`
}

type transitionJSON struct {
	Tail  int64 `json:"tail"`
	Label int64 `json:"label"`
	Head  int64 `json:"head"`
}

type affineJSON struct {
	Var    int32 `json:"var"`
	Coeff  int64 `json:"coeff"`
	Offset int64 `json:"offset"`
}

type linearJSON struct {
	Vars   []int32 `json:"vars"`
	Coeffs []int64 `json:"coeffs"`
	Offset int64   `json:"offset"`
}

// constraintJSON is a loosely-typed tagged union: only the fields
// meaningful for Kind are populated on encode, and only those are read on
// decode, mirroring model.Constraint's own tagged-variant design.
type constraintJSON struct {
	Kind                string           `json:"kind"`
	EnforcementLiterals []int32          `json:"enforcement_literals,omitempty"`
	Linear              *linearJSON      `json:"linear,omitempty"`
	Domain              []intervalJSON   `json:"domain,omitempty"`
	Literals            []int32          `json:"literals,omitempty"`
	Target              int32            `json:"target,omitempty"`
	Exprs               []affineJSON     `json:"exprs,omitempty"`
	Num                 *affineJSON      `json:"num,omitempty"`
	Den                 *affineJSON      `json:"den,omitempty"`
	Index               int32            `json:"index,omitempty"`
	Vars                []int32          `json:"vars,omitempty"`
	FDirect             []int32          `json:"f_direct,omitempty"`
	FInverse            []int32          `json:"f_inverse,omitempty"`
	AutomatonVars       []int32          `json:"automaton_vars,omitempty"`
	StartingState       int64            `json:"starting_state,omitempty"`
	FinalStates         []int64          `json:"final_states,omitempty"`
	Transitions         []transitionJSON `json:"transitions,omitempty"`
	TableVars           []int32          `json:"table_vars,omitempty"`
	Values              []int64          `json:"values,omitempty"`
	Negated             bool             `json:"negated,omitempty"`
	TimeExprs           []affineJSON     `json:"time_exprs,omitempty"`
	LevelChanges        []affineJSON     `json:"level_changes,omitempty"`
	ActiveLiterals      []int32          `json:"active_literals,omitempty"`
	MinLevel            int64            `json:"min_level,omitempty"`
	MaxLevel            int64            `json:"max_level,omitempty"`
	AllDiffExprs        []affineJSON     `json:"all_diff_exprs,omitempty"`
}

type modelJSON struct {
	Vars            []variableJSON   `json:"vars"`
	Constraints     []constraintJSON `json:"constraints"`
	ObjectiveCoeffs map[string]int64 `json:"objective_coeffs,omitempty"`
	ObjectiveOffset int64            `json:"objective_offset"`
	MappingModel    []constraintJSON `json:"mapping_model,omitempty"`
}

// Write serialises m as JSON to w.
func Write(w io.Writer, m *model.Model) error {
	doc := modelToJSON(m)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// Read deserialises a model from r.
func Read(r io.Reader) (*model.Model, error) {
	var doc modelJSON
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("modelio: decode: %w", err)
	}
	return modelFromJSON(&doc)
}

func modelToJSON(m *model.Model) *modelJSON {
	doc := &modelJSON{
		ObjectiveOffset: m.Objective.Offset,
	}
	if len(m.Objective.Coeffs) > 0 {
		doc.ObjectiveCoeffs = map[string]int64{}
		for v, c := range m.Objective.Coeffs {
			doc.ObjectiveCoeffs[fmt.Sprintf("%d", v)] = c
		}
	}
	for i := 1; i <= m.Vars.Len(); i++ {
		v := m.Vars.Get(model.VarID(i))
		doc.Vars = append(doc.Vars, variableJSON{Name: v.Name, Domain: intervalsToJSON(v.Domain)})
	}
	for _, ct := range m.Constraints {
		doc.Constraints = append(doc.Constraints, constraintToJSON(&ct))
	}
	for _, ct := range m.MappingModel {
		doc.MappingModel = append(doc.MappingModel, constraintToJSON(&ct))
	}
	return doc
}

func modelFromJSON(doc *modelJSON) (*model.Model, error) {
	m := model.NewModel()
	for _, v := range doc.Vars {
		m.Vars.NewIntVar(intervalsFromJSON(v.Domain), v.Name)
	}
	m.Objective.Offset = doc.ObjectiveOffset
	for k, c := range doc.ObjectiveCoeffs {
		var id int32
		if _, err := fmt.Sscanf(k, "%d", &id); err != nil {
			return nil, fmt.Errorf("modelio: bad objective variable id %q: %w", k, err)
		}
		m.Objective.Coeffs[model.VarID(id)] = c
	}
	for _, cj := range doc.Constraints {
		ct, err := constraintFromJSON(&cj)
		if err != nil {
			return nil, err
		}
		m.AddConstraint(ct)
	}
	for _, cj := range doc.MappingModel {
		ct, err := constraintFromJSON(&cj)
		if err != nil {
			return nil, err
		}
		m.MappingModel = append(m.MappingModel, ct)
	}
	return m, nil
}

func intervalsToJSON(d model.Domain) []intervalJSON {
	ivs := d.Intervals()
	out := make([]intervalJSON, len(ivs))
	for i, iv := range ivs {
		out[i] = intervalJSON{Lo: iv.Lo, Hi: iv.Hi}
	}
	return out
}

func intervalsFromJSON(ivs []intervalJSON) model.Domain {
	out := make([]model.Interval, len(ivs))
	for i, iv := range ivs {
		out[i] = model.Interval{Lo: iv.Lo, Hi: iv.Hi}
	}
	return model.FromIntervals(out)
}

func litsToJSON(lits []model.Literal) []int32 {
	if len(lits) == 0 {
		return nil
	}
	out := make([]int32, len(lits))
	for i, l := range lits {
		out[i] = int32(l)
	}
	return out
}

func litsFromJSON(ids []int32) []model.Literal {
	if len(ids) == 0 {
		return nil
	}
	out := make([]model.Literal, len(ids))
	for i, id := range ids {
		out[i] = model.Literal(id)
	}
	return out
}

func varsToJSON(vars []model.VarID) []int32 {
	if len(vars) == 0 {
		return nil
	}
	out := make([]int32, len(vars))
	for i, v := range vars {
		out[i] = int32(v)
	}
	return out
}

func varsFromJSON(ids []int32) []model.VarID {
	if len(ids) == 0 {
		return nil
	}
	out := make([]model.VarID, len(ids))
	for i, id := range ids {
		out[i] = model.VarID(id)
	}
	return out
}

func affineToJSON(e model.AffineExpr) affineJSON {
	return affineJSON{Var: int32(e.Var), Coeff: e.Coeff, Offset: e.Offset}
}

func affineFromJSON(a affineJSON) model.AffineExpr {
	return model.AffineExpr{Var: model.VarID(a.Var), Coeff: a.Coeff, Offset: a.Offset}
}

func affinesToJSON(es []model.AffineExpr) []affineJSON {
	if len(es) == 0 {
		return nil
	}
	out := make([]affineJSON, len(es))
	for i, e := range es {
		out[i] = affineToJSON(e)
	}
	return out
}

func affinesFromJSON(as []affineJSON) []model.AffineExpr {
	if len(as) == 0 {
		return nil
	}
	out := make([]model.AffineExpr, len(as))
	for i, a := range as {
		out[i] = affineFromJSON(a)
	}
	return out
}

func constraintToJSON(ct *model.Constraint) constraintJSON {
	cj := constraintJSON{
		Kind:                ct.Kind.String(),
		EnforcementLiterals: litsToJSON(ct.EnforcementLiterals),
	}
	switch ct.Kind {
	case model.KindLinear:
		cj.Linear = &linearJSON{Vars: varsToJSON(ct.Linear.Vars()), Offset: ct.Linear.Offset}
		for _, t := range ct.Linear.Terms {
			cj.Linear.Coeffs = append(cj.Linear.Coeffs, t.Coeff)
		}
		cj.Domain = intervalsToJSON(ct.Domain)
	case model.KindBoolOr, model.KindBoolAnd, model.KindAtMostOne, model.KindExactlyOne:
		cj.Literals = litsToJSON(ct.Literals)
	case model.KindIntProd:
		cj.Target = int32(ct.Target)
		cj.Exprs = affinesToJSON(ct.Exprs)
	case model.KindIntDiv, model.KindIntMod:
		cj.Target = int32(ct.Target)
		n, d := affineToJSON(ct.Num), affineToJSON(ct.Den)
		cj.Num, cj.Den = &n, &d
	case model.KindElement:
		cj.Index = int32(ct.Index)
		cj.Vars = varsToJSON(ct.Vars)
		cj.Target = int32(ct.Target)
	case model.KindInverse:
		cj.FDirect = varsToJSON(ct.FDirect)
		cj.FInverse = varsToJSON(ct.FInverse)
	case model.KindAutomaton:
		cj.AutomatonVars = varsToJSON(ct.AutomatonVars)
		cj.StartingState = ct.StartingState
		cj.FinalStates = ct.FinalStates
		for _, t := range ct.Transitions {
			cj.Transitions = append(cj.Transitions, transitionJSON{Tail: t.Tail, Label: t.Label, Head: t.Head})
		}
	case model.KindTable:
		cj.TableVars = varsToJSON(ct.TableVars)
		cj.Values = ct.Values
		cj.Negated = ct.Negated
	case model.KindReservoir:
		cj.TimeExprs = affinesToJSON(ct.TimeExprs)
		cj.LevelChanges = affinesToJSON(ct.LevelChanges)
		cj.ActiveLiterals = litsToJSON(ct.ActiveLiterals)
		cj.MinLevel, cj.MaxLevel = ct.MinLevel, ct.MaxLevel
	case model.KindAllDifferent:
		cj.AllDiffExprs = affinesToJSON(ct.AllDiffExprs)
	}
	return cj
}

func constraintFromJSON(cj *constraintJSON) (model.Constraint, error) {
	kind, ok := model.KindFromString(cj.Kind)
	if !ok {
		return model.Constraint{}, fmt.Errorf("modelio: unknown constraint kind %q", cj.Kind)
	}
	ct := model.Constraint{Kind: kind, EnforcementLiterals: litsFromJSON(cj.EnforcementLiterals)}
	switch kind {
	case model.KindLinear:
		if cj.Linear == nil {
			return model.Constraint{}, fmt.Errorf("modelio: linear constraint without a linear payload")
		}
		if len(cj.Linear.Vars) != len(cj.Linear.Coeffs) {
			return model.Constraint{}, fmt.Errorf("modelio: linear constraint with %d vars but %d coeffs", len(cj.Linear.Vars), len(cj.Linear.Coeffs))
		}
		ct.Linear = model.NewLinearExpr(varsFromJSON(cj.Linear.Vars), cj.Linear.Coeffs, cj.Linear.Offset)
		ct.Domain = intervalsFromJSON(cj.Domain)
	case model.KindBoolOr, model.KindBoolAnd, model.KindAtMostOne, model.KindExactlyOne:
		ct.Literals = litsFromJSON(cj.Literals)
	case model.KindIntProd:
		ct.Target = model.VarID(cj.Target)
		ct.Exprs = affinesFromJSON(cj.Exprs)
	case model.KindIntDiv, model.KindIntMod:
		ct.Target = model.VarID(cj.Target)
		if cj.Num != nil {
			ct.Num = affineFromJSON(*cj.Num)
		}
		if cj.Den != nil {
			ct.Den = affineFromJSON(*cj.Den)
		}
	case model.KindElement:
		ct.Index = model.VarID(cj.Index)
		ct.Vars = varsFromJSON(cj.Vars)
		ct.Target = model.VarID(cj.Target)
	case model.KindInverse:
		ct.FDirect = varsFromJSON(cj.FDirect)
		ct.FInverse = varsFromJSON(cj.FInverse)
	case model.KindAutomaton:
		ct.AutomatonVars = varsFromJSON(cj.AutomatonVars)
		ct.StartingState = cj.StartingState
		ct.FinalStates = cj.FinalStates
		for _, t := range cj.Transitions {
			ct.Transitions = append(ct.Transitions, model.Transition{Tail: t.Tail, Label: t.Label, Head: t.Head})
		}
	case model.KindTable:
		ct.TableVars = varsFromJSON(cj.TableVars)
		ct.Values = cj.Values
		ct.Negated = cj.Negated
	case model.KindReservoir:
		ct.TimeExprs = affinesFromJSON(cj.TimeExprs)
		ct.LevelChanges = affinesFromJSON(cj.LevelChanges)
		ct.ActiveLiterals = litsFromJSON(cj.ActiveLiterals)
		ct.MinLevel, ct.MaxLevel = cj.MinLevel, cj.MaxLevel
	case model.KindAllDifferent:
		ct.AllDiffExprs = affinesFromJSON(cj.AllDiffExprs)
	}
	return ct, nil
}
