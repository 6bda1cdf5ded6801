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
	"fmt"
	"sort"

	"github.com/cpsatlab/expand/pkg/model"
	"github.com/cpsatlab/expand/pkg/presolve/automaton"
)

// expandAutomaton rewrites an automaton constraint. It first runs the
// forward/backward reachability fixed point for the whole constraint, then
// walks the steps left to right maintaining three per-step encodings (in,
// transition, out), choosing between the light (three-clause-per-row) and
// heavy (one-tuple-literal-per-row) formulations by comparing the row count
// to the sum of the three encodings' sizes.
func (c *Context) expandAutomaton(idx int) {
	ct := c.M.Constraints[idx]
	n := len(ct.AutomatonVars)
	transitions := make([]automaton.Transition, len(ct.Transitions))
	for i, t := range ct.Transitions {
		transitions[i] = automaton.Transition{Tail: t.Tail, Label: t.Label, Head: t.Head}
	}
	domainAt := func(t int) map[int64]bool {
		vals := c.DomainOf(ct.AutomatonVars[t]).Values()
		set := make(map[int64]bool, len(vals))
		for _, v := range vals {
			set[v] = true
		}
		return set
	}
	steps, feasible := automaton.Analyze(n, ct.StartingState, ct.FinalStates, transitions, domainAt)
	if !feasible {
		c.NotifyThatModelIsUnsat("automaton: no sequence can reach an accepting state")
		return
	}
	c.UpdateRuleStats("automaton_expansion")

	inEncoding := map[int64]model.Literal{ct.StartingState: c.GetTrueLiteral()}
	for t := 0; t < n; t++ {
		step := steps[t]
		v := ct.AutomatonVars[t]
		c.IntersectDomainWith(v, model.FromValues(step.Labels))
		if c.M.ModelIsUnsat() {
			return
		}

		if len(step.Usable) == 1 {
			// Single-row shortcut: the label is forced, and any inherited
			// in-encoding for a different state is falsified. This also
			// covers the aliased-variable case where a later step's domain
			// restriction invalidates an earlier in-encoding.
			row := step.Usable[0]
			c.IntersectDomainWith(v, model.Single(row.Label))
			for _, state := range sortedStates(inEncoding) {
				if state != row.Tail {
					c.SetLiteralToFalse(inEncoding[state])
				}
			}
			inEncoding = map[int64]model.Literal{row.Head: c.GetTrueLiteral()}
			continue
		}

		transitionEncoding := map[int64]model.Literal{}
		for _, label := range step.Labels {
			transitionEncoding[label] = c.GetOrCreateVarValueEncoding(v, label)
		}
		outEncoding := c.buildAutomatonOutEncoding(step, inEncoding, transitionEncoding)

		rows := len(step.Usable)
		threshold := len(step.InStates) + len(step.Labels) + len(step.OutStates)
		if rows > threshold {
			c.expandAutomatonStepLight(step, inEncoding, transitionEncoding, outEncoding)
		} else {
			c.expandAutomatonStepHeavy(step, inEncoding, transitionEncoding, outEncoding)
		}
		inEncoding = outEncoding
	}
	c.M.Constraints[idx].Clear()
}

// expandAutomatonStepLight emits the clause ¬in ∨ ¬label ∨ out per usable
// row, plus, for every in-state, its reachable label and out-state sets.
func (c *Context) expandAutomatonStepLight(step automaton.Step, inEncoding, transitionEncoding, outEncoding map[int64]model.Literal) {
	for _, row := range step.Usable {
		c.AddConstraint(model.Constraint{
			Kind: model.KindBoolOr,
			Literals: []model.Literal{
				inEncoding[row.Tail].Not(),
				transitionEncoding[row.Label].Not(),
				outEncoding[row.Head],
			},
		})
	}
	for _, in := range step.InStates {
		reachLabels, reachOut := map[int64]bool{}, map[int64]bool{}
		for _, row := range step.Usable {
			if row.Tail != in {
				continue
			}
			reachLabels[row.Label] = true
			reachOut[row.Head] = true
		}
		c.AddImplyInReachableValues(inEncoding[in], setValues(reachLabels), step.Labels, func(v int64) model.Literal { return transitionEncoding[v] })
		c.AddImplyInReachableValues(inEncoding[in], setValues(reachOut), step.OutStates, func(v int64) model.Literal { return outEncoding[v] })
	}
}

// expandAutomatonStepHeavy creates one tuple literal per usable row (or
// reuses an encoding literal when one of the row's columns is unique to
// it), adds an exactly-one across them, and links each column's tuple
// literals to its value-encoding literals.
func (c *Context) expandAutomatonStepHeavy(step automaton.Step, inEncoding, transitionEncoding, outEncoding map[int64]model.Literal) {
	tupleLits := make([]model.Literal, len(step.Usable))
	tails := make([]int64, len(step.Usable))
	labels := make([]int64, len(step.Usable))
	heads := make([]int64, len(step.Usable))

	tailCount, labelCount, headCount := map[int64]int{}, map[int64]int{}, map[int64]int{}
	for _, row := range step.Usable {
		tailCount[row.Tail]++
		labelCount[row.Label]++
		headCount[row.Head]++
	}
	for i, row := range step.Usable {
		tails[i], labels[i], heads[i] = row.Tail, row.Label, row.Head
		switch {
		case tailCount[row.Tail] == 1:
			tupleLits[i] = inEncoding[row.Tail]
		case labelCount[row.Label] == 1:
			tupleLits[i] = transitionEncoding[row.Label]
		case headCount[row.Head] == 1:
			tupleLits[i] = outEncoding[row.Head]
		default:
			tupleLits[i] = model.NewLiteral(c.NewBoolVar(fmt.Sprintf("automaton_tuple_%d_%d_%d", row.Tail, row.Label, row.Head)))
		}
	}
	c.addExactlyOne(tupleLits)
	c.LinkLiteralsAndValues(tupleLits, tails, func(v int64) model.Literal { return inEncoding[v] })
	c.LinkLiteralsAndValues(tupleLits, labels, func(v int64) model.Literal { return transitionEncoding[v] })
	c.LinkLiteralsAndValues(tupleLits, heads, func(v int64) model.Literal { return outEncoding[v] })
}

// buildAutomatonOutEncoding builds the literal map for the state reached
// after this step. Out-state literals are reused from the in-state or
// transition-label literal that uniquely determines them when possible, a
// literal/negation pair when there are exactly two possible out-states, and
// a fresh Boolean otherwise.
func (c *Context) buildAutomatonOutEncoding(step automaton.Step, inEncoding, transitionEncoding map[int64]model.Literal) map[int64]model.Literal {
	out := map[int64]model.Literal{}
	if len(step.OutStates) == 1 {
		out[step.OutStates[0]] = c.GetTrueLiteral()
		return out
	}
	if len(step.OutStates) == 2 {
		b := model.NewLiteral(c.NewBoolVar("automaton_out"))
		out[step.OutStates[0]] = b
		out[step.OutStates[1]] = b.Not()
		return out
	}
	for _, state := range step.OutStates {
		var rowsForState []automaton.Transition
		for _, row := range step.Usable {
			if row.Head == state {
				rowsForState = append(rowsForState, row)
			}
		}
		if len(rowsForState) == 1 {
			row := rowsForState[0]
			if uniqueTail(step, row.Tail) {
				out[state] = inEncoding[row.Tail]
				continue
			}
			if uniqueLabel(step, row.Label) {
				out[state] = transitionEncoding[row.Label]
				continue
			}
		}
		out[state] = model.NewLiteral(c.NewBoolVar(fmt.Sprintf("automaton_out_%d", state)))
	}
	return out
}

func uniqueTail(step automaton.Step, tail int64) bool {
	count := 0
	for _, row := range step.Usable {
		if row.Tail == tail {
			count++
		}
	}
	return count == 1
}

func uniqueLabel(step automaton.Step, label int64) bool {
	count := 0
	for _, row := range step.Usable {
		if row.Label == label {
			count++
		}
	}
	return count == 1
}

func setValues(m map[int64]bool) []int64 {
	out := make([]int64, 0, len(m))
	for v := range m {
		out = append(out, v)
	}
	return out
}

func sortedStates(m map[int64]model.Literal) []int64 {
	out := make([]int64, 0, len(m))
	for v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
