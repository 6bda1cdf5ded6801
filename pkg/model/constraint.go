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

// Kind discriminates the tagged constraint variant carried by a Constraint.
type Kind int

const (
	KindLinear Kind = iota
	KindBoolOr
	KindBoolAnd
	KindAtMostOne
	KindExactlyOne
	KindIntProd
	KindIntDiv
	KindIntMod
	KindElement
	KindInverse
	KindAutomaton
	KindTable
	KindReservoir
	KindAllDifferent
)

var kindNames = [...]string{
	KindLinear:       "linear",
	KindBoolOr:       "bool_or",
	KindBoolAnd:      "bool_and",
	KindAtMostOne:    "at_most_one",
	KindExactlyOne:   "exactly_one",
	KindIntProd:      "int_prod",
	KindIntDiv:       "int_div",
	KindIntMod:       "int_mod",
	KindElement:      "element",
	KindInverse:      "inverse",
	KindAutomaton:    "automaton",
	KindTable:        "table",
	KindReservoir:    "reservoir",
	KindAllDifferent: "all_different",
}

func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// KindFromString parses the snake_case name produced by Kind.String.
func KindFromString(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), true
		}
	}
	return 0, false
}

// Transition is one (tail, label, head) row of an automaton's transition
// table.
type Transition struct {
	Tail  int64
	Label int64
	Head  int64
}

// Constraint is a tagged-variant representation of every constraint kind the
// expander understands. Exactly one group of payload fields matching Kind is
// meaningful; the others are zero. Constraints are stored by value in a
// Model's append-only slice and referenced by index, so rewrites never have
// to track a graph of references.
type Constraint struct {
	Kind Kind

	// Enforcement literals: the constraint is active iff all are true.
	EnforcementLiterals []Literal

	// KindLinear: Σ Coeffs[i]*Vars[i] + Offset ∈ Domain.
	Linear LinearExpr
	Domain Domain

	// KindBoolOr / KindBoolAnd / KindAtMostOne / KindExactlyOne.
	Literals []Literal

	// KindIntProd: Target == product(Exprs).
	Target VarID
	Exprs  []AffineExpr

	// KindIntDiv / KindIntMod: Target == Num div/mod Den.
	Num AffineExpr
	Den AffineExpr

	// KindElement: Vars[Index] == Target.
	Index VarID
	Vars  []VarID

	// KindInverse: FInverse[FDirect[i]] == i for all i.
	FDirect  []VarID
	FInverse []VarID

	// KindAutomaton.
	AutomatonVars []VarID
	StartingState int64
	FinalStates   []int64
	Transitions   []Transition

	// KindTable: (Vars...) must (or must not, if Negated) equal some row of
	// Values, flattened row-major with len(TableVars) columns.
	TableVars []VarID
	Values    []int64
	Negated   bool

	// KindReservoir.
	TimeExprs      []AffineExpr
	LevelChanges   []AffineExpr
	ActiveLiterals []Literal
	MinLevel       int64
	MaxLevel       int64

	// KindAllDifferent.
	AllDiffExprs []AffineExpr

	// cleared marks a constraint that has been rewritten and emptied in
	// place; the slot remains so constraint indices stay stable.
	cleared bool
}

// Clear empties a constraint in place after it has been rewritten, leaving
// its slot (and index) intact.
func (c *Constraint) Clear() {
	*c = Constraint{cleared: true}
}

// IsCleared reports whether this constraint slot has already been rewritten.
func (c *Constraint) IsCleared() bool { return c.cleared }

// UsedVars returns every variable this constraint reads, for usage-graph
// bookkeeping. Enforcement literals count as uses; constant affine
// expressions (zero coefficient) reference no variable.
func (c *Constraint) UsedVars() []VarID {
	var out []VarID
	add := func(v VarID) { out = append(out, v) }
	addExpr := func(e AffineExpr) {
		if e.Coeff != 0 {
			out = append(out, e.Var)
		}
	}
	switch c.Kind {
	case KindLinear:
		out = append(out, c.Linear.Vars()...)
	case KindBoolOr, KindBoolAnd, KindAtMostOne, KindExactlyOne:
		for _, l := range c.Literals {
			add(l.Var())
		}
	case KindIntProd:
		add(c.Target)
		for _, e := range c.Exprs {
			addExpr(e)
		}
	case KindIntDiv, KindIntMod:
		add(c.Target)
		addExpr(c.Num)
		addExpr(c.Den)
	case KindElement:
		add(c.Index)
		out = append(out, c.Vars...)
		add(c.Target)
	case KindInverse:
		out = append(out, c.FDirect...)
		out = append(out, c.FInverse...)
	case KindAutomaton:
		out = append(out, c.AutomatonVars...)
	case KindTable:
		out = append(out, c.TableVars...)
	case KindReservoir:
		for _, e := range c.TimeExprs {
			addExpr(e)
		}
		for _, l := range c.ActiveLiterals {
			add(l.Var())
		}
	case KindAllDifferent:
		for _, e := range c.AllDiffExprs {
			addExpr(e)
		}
	}
	for _, l := range c.EnforcementLiterals {
		add(l.Var())
	}
	return out
}
