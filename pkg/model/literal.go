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

// VarID identifies a variable within a Model. Boolean variables are integer
// variables whose domain is {0,1}; a Literal is a signed reference to one.
type VarID int32

// Literal is a signed reference to a Boolean variable: positive values mean
// the variable itself, negative values mean its negation. Zero is never a
// valid literal (variable ids start at 1), which lets the zero value of a
// Literal act as a recognizable "unset" sentinel.
type Literal int32

// NewLiteral returns the positive literal for v.
func NewLiteral(v VarID) Literal { return Literal(v) }

// Negated returns the literal for v's negation.
func Negated(v VarID) Literal { return Literal(-v) }

// Not returns the negation of l. Negation is an involution: l.Not().Not() == l.
func (l Literal) Not() Literal { return -l }

// IsPositive reports whether l refers to the variable itself (not negated).
func (l Literal) IsPositive() bool { return l > 0 }

// Var returns the underlying variable id, regardless of polarity.
func (l Literal) Var() VarID {
	if l < 0 {
		return VarID(-l)
	}
	return VarID(l)
}
