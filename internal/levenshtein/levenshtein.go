// Copyright 2025 The Parsec Authors
// SPDX-License-Identifier: Apache-2.0

// Package levenshtein ranks candidate strings by edit distance. It backs
// the "did you mean" suggestions in grammar compile errors.
package levenshtein

import (
	"iter"
	"slices"

	"github.com/agnivade/levenshtein"
)

// ClosestStrings returns the candidates closest to a, in sorted order.
// Candidates further than minDistance edits away are not considered.
func ClosestStrings(minDistance int, a string, candidates iter.Seq[string]) []string {
	closest := []string{}
	for c := range candidates {
		switch d := levenshtein.ComputeDistance(a, c); {
		case d < minDistance:
			closest = []string{c}
			minDistance = d
		case d == minDistance:
			closest = append(closest, c)
		}
	}
	slices.Sort(closest)
	return closest
}
