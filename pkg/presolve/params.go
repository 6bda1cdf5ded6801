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

// Package presolve implements the constraint-expansion stage: it rewrites
// automaton, table, element, inverse, reservoir, integer-modulo,
// integer-product, all-different, and complex-rhs linear constraints into
// clauses, at-most-one/exactly-one, small linear (in)equalities, integer
// product, and integer division constraints.
package presolve

// TableCompressionLevel selects how aggressively the table expander
// compresses its tuple list before emitting encoding literals:
//
//	0 - no compression: emit one tuple literal per input row.
//	1 - light compression: a single trailing wildcard column only.
//	2 - full compression: wildcards permitted in any column, one pass.
//	3 - full compression run to a fixed point (repeated passes).
type TableCompressionLevel int

const (
	TableCompressionNone TableCompressionLevel = iota
	TableCompressionLight
	TableCompressionFull
	TableCompressionFullFixedPoint
)

// Parameters collects every tunable this stage reads. It is passed by
// value into the orchestrator; the CLI binds cobra flags onto one, library
// callers construct one directly. ExpandAllDiffConstraints forces the
// expansion of every all-different; when it is off the usage scanner still
// expands the ones other constraints can profit from.
type Parameters struct {
	DisableConstraintExpansion bool
	ExpandReservoirConstraints bool
	ExpandAllDiffConstraints   bool
	DetectTableWithCost        bool
	TableCompressionLevel      TableCompressionLevel
	EncodeComplexLinearWithInt bool
	CpModelPresolve            bool
	EnumerateAllSolutions      bool
}

// DefaultParameters returns the parameter set used when a caller does not
// override anything: expansion enabled, reservoir expansion enabled,
// usage-driven all-diff expansion, table cost detection enabled, full
// compression, sub-case literals for complex-rhs linears, and
// enumerate-all-solutions off.
func DefaultParameters() Parameters {
	return Parameters{
		ExpandReservoirConstraints: true,
		DetectTableWithCost:        true,
		TableCompressionLevel:      TableCompressionFull,
		CpModelPresolve:            true,
	}
}
