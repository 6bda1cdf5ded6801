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

// Package automaton implements the reachability analysis that underlies
// the automaton constraint rewrite: a forward pass computing which states
// and labels are reachable at each step given the per-step variable
// domains, followed by a backward pass trimming states that cannot
// eventually reach an accepting state.
package automaton

import (
	"sort"

	"github.com/cpsatlab/expand/pkg/util/collection/bit"
)

// Transition is one (tail, label, head) row of an automaton's transition
// table.
type Transition struct {
	Tail, Label, Head int64
}

// Step holds the per-step result of the two-pass reachability analysis:
// the usable transitions (both forward- and backward-reachable), and the
// distinct in-states, labels and out-states they touch, all sorted.
type Step struct {
	Usable    []Transition
	InStates  []int64
	Labels    []int64
	OutStates []int64
}

// stateIndex maps arbitrary int64 state names onto dense indices so
// reachable-state sets can live in bitsets.
type stateIndex struct {
	ids map[int64]uint
}

func newStateIndex(start int64, finals []int64, transitions []Transition) stateIndex {
	idx := stateIndex{ids: map[int64]uint{}}
	idx.add(start)
	for _, s := range finals {
		idx.add(s)
	}
	for _, tr := range transitions {
		idx.add(tr.Tail)
		idx.add(tr.Head)
	}
	return idx
}

func (s *stateIndex) add(state int64) {
	if _, ok := s.ids[state]; !ok {
		s.ids[state] = uint(len(s.ids))
	}
}

func (s *stateIndex) of(state int64) uint { return s.ids[state] }

// Analyze runs the forward/backward reachability fixed point. domainAt(t)
// must return the set of labels currently allowed at step t (the domain of
// vars[t]); n is the number of steps. It returns one Step per index in
// [0, n) and reports false if no sequence can reach an accepting state.
func Analyze(n int, start int64, finals []int64, transitions []Transition, domainAt func(t int) map[int64]bool) ([]Step, bool) {
	idx := newStateIndex(start, finals, transitions)

	// Forward pass: rf[t] is the set of states reachable just before step
	// t; usableForward[t] are the transitions whose tail is reachable and
	// whose label lies in vars[t]'s domain.
	rf := make([]bit.Set, n+1)
	rf[0].Insert(idx.of(start))
	usableForward := make([][]Transition, n)
	for t := 0; t < n; t++ {
		dom := domainAt(t)
		for _, tr := range transitions {
			if !rf[t].Contains(idx.of(tr.Tail)) || !dom[tr.Label] {
				continue
			}
			usableForward[t] = append(usableForward[t], tr)
			rf[t+1].Insert(idx.of(tr.Head))
		}
	}

	// Backward pass: rb[n] is the accepting states actually reached
	// forward; rb[t] trims usableForward[t] to those transitions whose
	// head survives into rb[t+1].
	rb := make([]bit.Set, n+1)
	for _, f := range finals {
		if rf[n].Contains(idx.of(f)) {
			rb[n].Insert(idx.of(f))
		}
	}
	steps := make([]Step, n)
	for t := n - 1; t >= 0; t-- {
		var usable []Transition
		for _, tr := range usableForward[t] {
			if !rb[t+1].Contains(idx.of(tr.Head)) {
				continue
			}
			usable = append(usable, tr)
			rb[t].Insert(idx.of(tr.Tail))
		}
		steps[t] = buildStep(usable)
	}

	if !rb[0].Contains(idx.of(start)) || rb[0].Count() == 0 {
		return steps, false
	}
	for t := 0; t < n; t++ {
		if len(steps[t].Usable) == 0 {
			return steps, false
		}
	}
	return steps, true
}

func buildStep(usable []Transition) Step {
	inSet, labelSet, outSet := map[int64]bool{}, map[int64]bool{}, map[int64]bool{}
	for _, tr := range usable {
		inSet[tr.Tail] = true
		labelSet[tr.Label] = true
		outSet[tr.Head] = true
	}
	sort.Slice(usable, func(i, j int) bool {
		if usable[i].Tail != usable[j].Tail {
			return usable[i].Tail < usable[j].Tail
		}
		if usable[i].Label != usable[j].Label {
			return usable[i].Label < usable[j].Label
		}
		return usable[i].Head < usable[j].Head
	})
	return Step{
		Usable:    usable,
		InStates:  sortedKeys(inSet),
		Labels:    sortedKeys(labelSet),
		OutStates: sortedKeys(outSet),
	}
}

func sortedKeys(m map[int64]bool) []int64 {
	out := make([]int64, 0, len(m))
	for v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
