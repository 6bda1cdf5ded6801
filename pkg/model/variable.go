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

// Variable is an integer variable with a domain. A Boolean variable is a
// Variable whose domain is exactly {0,1}.
type Variable struct {
	Name   string
	Domain Domain
}

// IsBoolean reports whether the variable's domain is exactly {0,1} (or a
// sub-domain of it, i.e. it has already been fixed to 0 or 1).
func (v *Variable) IsBoolean() bool {
	return v.Domain.Min() >= 0 && v.Domain.Max() <= 1
}

// Store owns the set of variables in a model and hands out fresh ids.
type Store struct {
	vars []Variable
}

// NewIntVar creates a fresh integer variable with the given domain and
// returns its id.
func (s *Store) NewIntVar(d Domain, name string) VarID {
	s.vars = append(s.vars, Variable{Name: name, Domain: d})
	return VarID(len(s.vars))
}

// NewBoolVar creates a fresh Boolean variable and returns its id.
func (s *Store) NewBoolVar(name string) VarID {
	return s.NewIntVar(FromInterval(0, 1), name)
}

// Get returns the variable for id.
func (s *Store) Get(id VarID) *Variable {
	return &s.vars[id-1]
}

// Len returns the number of variables allocated so far.
func (s *Store) Len() int { return len(s.vars) }

// DomainOf returns the domain of the variable id.
func (s *Store) DomainOf(id VarID) Domain { return s.Get(id).Domain }

// IntersectDomain intersects the variable's domain with d, returning
// whether the domain actually changed and whether the result is
// non-empty (false => infeasible).
func (s *Store) IntersectDomain(id VarID, d Domain) (changed, ok bool) {
	v := s.Get(id)
	nd := v.Domain.Intersect(d)
	changed = nd.Size() != v.Domain.Size()
	v.Domain = nd
	return changed, !nd.IsEmpty()
}
