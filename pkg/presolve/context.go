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
	"github.com/sirupsen/logrus"

	"github.com/cpsatlab/expand/pkg/model"
)

// Context is the expansion stage's view of the model: the domain store, the
// value-encoding literal cache, the rule-statistics sink, the new-variable
// factory and the variable-constraint usage graph, all backed directly by a
// *model.Model. It is the sole mutator of the model while Expand runs.
type Context struct {
	M      *model.Model
	Params Parameters
	Log    *logrus.Entry

	encoding  map[encodingKey]model.Literal
	trueVar   model.VarID
	ruleStats map[string]int
	usage     map[model.VarID][]int
	precCache map[precKey]model.Literal

	newSinceUsageUpdate []int

	// allDiffUsage caches the all-different scanner's per-variable
	// classification, keyed by variable id.
	allDiffUsage map[model.VarID]varUsage
}

// varUsage is a bitmask recording how other constraints use a variable that
// appears in an all-different.
type varUsage uint8

const (
	usageDomain varUsage = 1 << iota
	usageBounds
)

// NewContext wraps m in a fresh expansion context.
func NewContext(m *model.Model, params Parameters, log *logrus.Entry) *Context {
	if log == nil {
		log = logrus.NewEntry(logrus.New())
	}
	ctx := &Context{
		M:         m,
		Params:    params,
		Log:       log,
		encoding:  map[encodingKey]model.Literal{},
		ruleStats: map[string]int{},
		usage:     map[model.VarID][]int{},
	}
	ctx.trueVar = m.Vars.NewBoolVar("__true")
	m.Vars.Get(ctx.trueVar).Domain = model.Single(1)
	return ctx
}

// --- Domain queries ---

// DomainOf returns the current domain of v.
func (c *Context) DomainOf(v model.VarID) model.Domain { return c.M.Vars.DomainOf(v) }

// DomainSuperSetOf returns a domain guaranteed to contain every value the
// affine expression can take. A zero coefficient denotes a constant
// expression with no underlying variable.
func (c *Context) DomainSuperSetOf(e model.AffineExpr) model.Domain {
	if e.Coeff == 0 {
		return model.Single(e.Offset)
	}
	return e.Domain(c.DomainOf(e.Var))
}

// IsFixed reports whether e's domain is a singleton.
func (c *Context) IsFixed(e model.AffineExpr) bool { return c.DomainSuperSetOf(e).IsFixed() }

// FixedValue returns e's sole value; panics if e is not fixed.
func (c *Context) FixedValue(e model.AffineExpr) int64 { return c.DomainSuperSetOf(e).FixedValue() }

// MinOf returns the minimum of v's domain.
func (c *Context) MinOf(v model.VarID) int64 { return c.DomainOf(v).Min() }

// MaxOf returns the maximum of v's domain.
func (c *Context) MaxOf(v model.VarID) int64 { return c.DomainOf(v).Max() }

// DomainContains reports whether v's domain contains value.
func (c *Context) DomainContains(v model.VarID, value int64) bool {
	return c.DomainOf(v).Contains(value)
}

// ExpressionIsALiteral reports whether e is exactly a 0/1-valued Boolean
// expression (the variable itself, or its negation written as 1-v),
// returning the equivalent literal.
func (c *Context) ExpressionIsALiteral(e model.AffineExpr) (model.Literal, bool) {
	if !c.M.Vars.Get(e.Var).IsBoolean() {
		return 0, false
	}
	switch {
	case e.Coeff == 1 && e.Offset == 0:
		return model.NewLiteral(e.Var), true
	case e.Coeff == -1 && e.Offset == 1:
		return model.Negated(e.Var), true
	default:
		return 0, false
	}
}

// --- Domain mutation ---

// IntersectDomainWith intersects v's domain with d, returning whether it
// changed; if the result is empty the model is marked infeasible and false
// is returned.
func (c *Context) IntersectDomainWith(v model.VarID, d model.Domain) (changed bool) {
	changed, ok := c.M.Vars.IntersectDomain(v, d)
	if !ok {
		c.NotifyThatModelIsUnsat("domain intersection emptied " + c.M.Vars.Get(v).Name)
		return false
	}
	return changed
}

// --- Literal/variable factory ---

// NewBoolVar allocates a fresh Boolean variable.
func (c *Context) NewBoolVar(name string) model.VarID { return c.M.Vars.NewBoolVar(name) }

// NewIntVar allocates a fresh integer variable with domain d.
func (c *Context) NewIntVar(d model.Domain, name string) model.VarID {
	return c.M.Vars.NewIntVar(d, name)
}

// GetTrueLiteral returns a literal permanently fixed to true.
func (c *Context) GetTrueLiteral() model.Literal { return model.NewLiteral(c.trueVar) }

// LiteralIsFalse reports whether l's domain has already collapsed to false.
func (c *Context) LiteralIsFalse(l model.Literal) bool {
	d := c.DomainOf(l.Var())
	if l.IsPositive() {
		return d.IsFixed() && d.FixedValue() == 0
	}
	return d.IsFixed() && d.FixedValue() == 1
}

// SetLiteralToFalse fixes l to false.
func (c *Context) SetLiteralToFalse(l model.Literal) {
	v := int64(0)
	if !l.IsPositive() {
		v = 1
	}
	c.IntersectDomainWith(l.Var(), model.Single(v))
}

// --- Boolean algebra ---

// AddImplication emits the clause (¬a ∨ b).
func (c *Context) AddImplication(a, b model.Literal) {
	c.addConstraint(model.Constraint{Kind: model.KindBoolOr, Literals: []model.Literal{a.Not(), b}})
}

// AddImplyInDomain emits lit => (v ∈ d) as a linear constraint enforced by
// lit.
func (c *Context) AddImplyInDomain(lit model.Literal, v model.VarID, d model.Domain) {
	c.addConstraint(model.Constraint{
		Kind:                model.KindLinear,
		Linear:              model.NewLinearExpr([]model.VarID{v}, []int64{1}, 0),
		Domain:              d,
		EnforcementLiterals: []model.Literal{lit},
	})
}

// StoreBooleanEqualityRelation declares a and b logically equal by emitting
// the two implications.
func (c *Context) StoreBooleanEqualityRelation(a, b model.Literal) {
	if a == b {
		return
	}
	c.AddImplication(a, b)
	c.AddImplication(b, a)
}

// --- Objective ---

// AddToObjectiveOffset adds k to the objective's constant offset.
func (c *Context) AddToObjectiveOffset(k int64) { c.M.Objective.Offset += k }

// AddLiteralToObjective adds coeff*lit to the objective, folding a negated
// literal into coeff*(1-var) = -coeff*var + coeff.
func (c *Context) AddLiteralToObjective(lit model.Literal, coeff int64) {
	if lit.IsPositive() {
		c.M.Objective.Coeffs[lit.Var()] += coeff
	} else {
		c.M.Objective.Coeffs[lit.Var()] -= coeff
		c.M.Objective.Offset += coeff
	}
}

// RemoveVariableFromObjective deletes v's term from the objective, used by
// the table cost transfer once a cost variable is fully absorbed into tuple
// costs.
func (c *Context) RemoveVariableFromObjective(v model.VarID) {
	delete(c.M.Objective.Coeffs, v)
}

// ObjectiveMap returns the objective's variable coefficients.
func (c *Context) ObjectiveMap() map[model.VarID]int64 { return c.M.Objective.Coeffs }

// --- Model bookkeeping ---

// UpdateRuleStats increments the named rule's fired-count.
func (c *Context) UpdateRuleStats(name string) {
	c.ruleStats[name]++
	c.Log.WithField("rule", name).Debug("expansion rule fired")
}

// RuleStats returns a snapshot of the rule-firing counters, used by the
// `expand run` summary.
func (c *Context) RuleStats() map[string]int {
	out := make(map[string]int, len(c.ruleStats))
	for k, v := range c.ruleStats {
		out[k] = v
	}
	return out
}

// NotifyThatModelIsUnsat marks the model infeasible.
func (c *Context) NotifyThatModelIsUnsat(reason string) {
	c.Log.WithField("reason", reason).Warn("model proven infeasible")
	c.M.NotifyThatModelIsUnsat(reason)
}

// ModelIsUnsat reports whether the model has been marked infeasible.
func (c *Context) ModelIsUnsat() bool { return c.M.ModelIsUnsat() }

// NotifyThatModelIsExpanded marks expansion as complete.
func (c *Context) NotifyThatModelIsExpanded() { c.M.NotifyThatModelIsExpanded() }

// ModelIsExpanded reports whether expansion has already run.
func (c *Context) ModelIsExpanded() bool { return c.M.ModelIsExpanded() }

// addConstraint appends a new constraint to the model and records it as
// "new" so UpdateNewConstraintsVariableUsage picks it up.
func (c *Context) addConstraint(ct model.Constraint) int {
	idx := c.M.AddConstraint(ct)
	c.newSinceUsageUpdate = append(c.newSinceUsageUpdate, idx)
	return idx
}

// AddConstraint is the entry point rewrites use to emit a new lowered
// constraint.
func (c *Context) AddConstraint(ct model.Constraint) int { return c.addConstraint(ct) }

// InitializeNewDomains is a no-op in this implementation; domains are
// created already-initialized by NewIntVar/NewBoolVar.
func (c *Context) InitializeNewDomains() {}
