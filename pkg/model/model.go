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

// Objective is a linear objective Σ Coeffs[v]*v + Offset, kept as a map so
// the table cost transfer can add/remove terms
// without touching a dense representation.
type Objective struct {
	Coeffs map[VarID]int64
	Offset int64
}

// NewObjective returns an empty objective (offset 0).
func NewObjective() Objective {
	return Objective{Coeffs: map[VarID]int64{}}
}

// Model is the mutable in-memory model the expansion stage operates on: a
// variable store, an append-only list of constraints, and a linear
// objective. New variables and constraints created during expansion are
// appended here and persist into later presolve stages.
type Model struct {
	Vars        Store
	Constraints []Constraint
	Objective   Objective

	// MappingModel is an append-only list of constraints capturing how to
	// reconstruct variables removed by the expander. Only
	// the WCSP table reduction writes to it in this stage.
	MappingModel []Constraint

	unsat       bool
	unsatReason string
	expanded    bool
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{Objective: NewObjective()}
}

// AddConstraint appends a constraint and returns its index.
func (m *Model) AddConstraint(c Constraint) int {
	m.Constraints = append(m.Constraints, c)
	return len(m.Constraints) - 1
}

// NotifyThatModelIsUnsat marks the model infeasible; every subsequent
// expander call must check ModelIsUnsat and return immediately.
func (m *Model) NotifyThatModelIsUnsat(reason string) {
	m.unsat = true
	m.unsatReason = reason
}

// ModelIsUnsat reports whether the model has been marked infeasible.
func (m *Model) ModelIsUnsat() bool { return m.unsat }

// UnsatReason returns the reason string passed to the call that marked the
// model infeasible, or "" if the model is still satisfiable-looking.
func (m *Model) UnsatReason() string { return m.unsatReason }

// NotifyThatModelIsExpanded marks the expansion stage as having completed;
// a second Expand call then returns without doing anything.
func (m *Model) NotifyThatModelIsExpanded() { m.expanded = true }

// ModelIsExpanded reports whether the expansion stage has already run.
func (m *Model) ModelIsExpanded() bool { return m.expanded }
