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
package tuple

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func binaryDomain(c int) []int64 { return []int64{0, 1} }

func TestCompressNone(t *testing.T) {
	rows := []Row{{0, 0}, {0, 1}}
	got := Compress(rows, 2, binaryDomain, LevelNone)
	assert.Equal(t, rows, got)
}

func TestCompressMergesCoveringColumn(t *testing.T) {
	rows := []Row{{0, 0}, {0, 1}}
	got := Compress(rows, 2, binaryDomain, LevelFull)
	assert.Equal(t, []Row{{0, Wildcard}}, got)
}

func TestCompressLightOnlyTouchesLastColumn(t *testing.T) {
	// These rows merge on the first column, which light compression must
	// not touch.
	rows := []Row{{0, 0}, {1, 0}}
	got := Compress(rows, 2, binaryDomain, LevelLight)
	assert.Equal(t, rows, got)

	got = Compress([]Row{{0, 0}, {0, 1}}, 2, binaryDomain, LevelLight)
	assert.Equal(t, []Row{{0, Wildcard}}, got)
}

func TestCompressFullCrossProduct(t *testing.T) {
	rows := []Row{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	got := Compress(rows, 2, binaryDomain, LevelFull)
	assert.Equal(t, []Row{{Wildcard, Wildcard}}, got)
}

func TestCompressPartialCoverageKept(t *testing.T) {
	domain := func(c int) []int64 { return []int64{0, 1, 2} }
	rows := []Row{{0, 0}, {0, 1}}
	got := Compress(rows, 2, domain, LevelFull)
	assert.Equal(t, rows, got, "two of three values do not cover the column domain")
}

func TestCompressDeduplicates(t *testing.T) {
	rows := []Row{{0, 1}, {0, 1}, {1, 1}}
	got := Compress(rows, 2, binaryDomain, LevelFull)
	assert.Equal(t, []Row{{Wildcard, 1}}, got)
}

func TestCompressFixedPointMatchesFullWhenStable(t *testing.T) {
	rows := []Row{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	full := Compress(rows, 2, binaryDomain, LevelFull)
	fixed := Compress(rows, 2, binaryDomain, LevelFullFixedPoint)
	assert.Equal(t, full, fixed)
}
