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
package automaton

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullDomain(labels ...int64) func(int) map[int64]bool {
	set := map[int64]bool{}
	for _, l := range labels {
		set[l] = true
	}
	return func(int) map[int64]bool { return set }
}

func TestAnalyzeBackwardTrimsDeadEnds(t *testing.T) {
	// State 3 is forward-reachable from 0 but never reaches the accepting
	// state 2, so its transition must not survive the backward pass.
	transitions := []Transition{
		{Tail: 0, Label: 0, Head: 1},
		{Tail: 0, Label: 1, Head: 3},
		{Tail: 1, Label: 2, Head: 2},
		{Tail: 3, Label: 0, Head: 3},
	}
	steps, feasible := Analyze(2, 0, []int64{2}, transitions, fullDomain(0, 1, 2))
	require.True(t, feasible)
	require.Len(t, steps, 2)
	assert.Equal(t, []Transition{{Tail: 0, Label: 0, Head: 1}}, steps[0].Usable)
	assert.Equal(t, []Transition{{Tail: 1, Label: 2, Head: 2}}, steps[1].Usable)
	assert.Equal(t, []int64{0}, steps[0].Labels)
	assert.Equal(t, []int64{2}, steps[1].Labels)
}

func TestAnalyzeRespectsDomains(t *testing.T) {
	transitions := []Transition{
		{Tail: 0, Label: 0, Head: 1},
		{Tail: 0, Label: 1, Head: 1},
		{Tail: 1, Label: 0, Head: 1},
		{Tail: 1, Label: 1, Head: 1},
	}
	domainAt := func(t int) map[int64]bool {
		if t == 0 {
			return map[int64]bool{1: true}
		}
		return map[int64]bool{0: true, 1: true}
	}
	steps, feasible := Analyze(2, 0, []int64{1}, transitions, domainAt)
	require.True(t, feasible)
	assert.Equal(t, []int64{1}, steps[0].Labels, "step 0 only admits label 1")
	assert.Equal(t, []int64{0, 1}, steps[1].Labels)
}

func TestAnalyzeInfeasibleWhenNoFinalReached(t *testing.T) {
	transitions := []Transition{
		{Tail: 0, Label: 0, Head: 1},
	}
	_, feasible := Analyze(1, 0, []int64{5}, transitions, fullDomain(0))
	assert.False(t, feasible)
}

func TestAnalyzeStepSetsAreSorted(t *testing.T) {
	transitions := []Transition{
		{Tail: 0, Label: 2, Head: 9},
		{Tail: 0, Label: 0, Head: 4},
		{Tail: 0, Label: 1, Head: 7},
	}
	steps, feasible := Analyze(1, 0, []int64{4, 7, 9}, transitions, fullDomain(0, 1, 2))
	require.True(t, feasible)
	assert.Equal(t, []int64{0, 1, 2}, steps[0].Labels)
	assert.Equal(t, []int64{4, 7, 9}, steps[0].OutStates)
}
