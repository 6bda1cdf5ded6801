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

import "github.com/cpsatlab/expand/pkg/model"

// encodingKey identifies one (variable, value) pair in the value-encoding
// literal cache. The cache guarantees at most one literal per pair.
type encodingKey struct {
	Var   model.VarID
	Value int64
}

// HasVarValueEncoding reports whether (v == value) already has a cached
// literal.
func (c *Context) HasVarValueEncoding(v model.VarID, value int64) bool {
	_, ok := c.encoding[encodingKey{v, value}]
	return ok
}

// GetOrCreateVarValueEncoding returns the literal ℓ with ℓ ⇔ (v == value),
// creating a fresh Boolean on miss. Calling this twice for the same pair
// always returns the same literal. On creation the two half-reified linear
// constraints tying ℓ to v's domain are emitted, so the equivalence holds in
// the model and not just in the cache.
func (c *Context) GetOrCreateVarValueEncoding(v model.VarID, value int64) model.Literal {
	key := encodingKey{v, value}
	if lit, ok := c.encoding[key]; ok {
		return lit
	}
	if !c.DomainContains(v, value) {
		lit := c.GetTrueLiteral().Not()
		c.encoding[key] = lit
		return lit
	}
	d := c.DomainOf(v)
	if d.IsFixed() {
		lit := c.GetTrueLiteral()
		c.encoding[key] = lit
		return lit
	}
	// A Boolean variable is its own encoding: v itself for value 1, its
	// negation for value 0.
	if c.M.Vars.Get(v).IsBoolean() {
		lit := model.NewLiteral(v)
		if value == 0 {
			lit = lit.Not()
		}
		c.encoding[key] = lit
		return lit
	}
	name := c.M.Vars.Get(v).Name
	lit := model.NewLiteral(c.NewBoolVar(name + "=enc"))
	c.encoding[key] = lit
	c.linkEncoding(lit, v, value)
	return lit
}

// InsertVarValueEncoding records lit as the encoding literal for
// (v == value) and emits the linking constraints making the equivalence
// hold. If the pair already has a different literal the two are declared
// equal instead.
func (c *Context) InsertVarValueEncoding(lit model.Literal, v model.VarID, value int64) {
	key := encodingKey{v, value}
	if existing, ok := c.encoding[key]; ok {
		c.StoreBooleanEqualityRelation(existing, lit)
		return
	}
	c.encoding[key] = lit
	c.linkEncoding(lit, v, value)
}

// linkEncoding emits lit => (v == value) and ¬lit => (v != value).
func (c *Context) linkEncoding(lit model.Literal, v model.VarID, value int64) {
	c.AddImplyInDomain(lit, v, model.Single(value))
	c.AddImplyInDomain(lit.Not(), v, c.DomainOf(v).RemoveValue(value))
}

// IsFullyEncoded reports whether every value in v's domain has a cached
// encoding literal.
func (c *Context) IsFullyEncoded(v model.VarID) bool {
	for _, val := range c.DomainOf(v).Values() {
		if !c.HasVarValueEncoding(v, val) {
			return false
		}
	}
	return true
}

// GetOrCreateAffineValueEncoding returns the literal equivalent to
// (Coeff*v + Offset == value), reducing to the underlying variable's own
// value encoding.
func (c *Context) GetOrCreateAffineValueEncoding(e model.AffineExpr, value int64) model.Literal {
	rem := value - e.Offset
	if e.Coeff == 0 {
		if rem == 0 {
			return c.GetTrueLiteral()
		}
		return c.GetTrueLiteral().Not()
	}
	if rem%e.Coeff != 0 {
		return c.GetTrueLiteral().Not()
	}
	return c.GetOrCreateVarValueEncoding(e.Var, rem/e.Coeff)
}
