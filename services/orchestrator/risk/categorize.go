// Copyright (C) 2026 Oselund Data (privmon@oselund.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package risk

import "strings"

// Category is the coarse risk label derived from validator flags.
type Category string

const (
	Low    Category = "Low"
	Medium Category = "Medium"
	High   Category = "High"
)

// criticalMarkers are the flag substrings that indicate a metric missed its
// threshold. Matching is case-insensitive so a vocabulary change in the
// validation engine's casing does not silently downgrade a dataset.
var criticalMarkers = []string{"below threshold", "above threshold"}

// Categorise maps a set of validator risk flags to a category. This is a
// heuristic over the flag text, not a recomputation of the metrics: it must
// stay consistent with the vocabulary the validation engine emits.
func Categorise(flags []string) Category {
	if len(flags) == 0 {
		return Low
	}
	for _, flag := range flags {
		lower := strings.ToLower(flag)
		for _, marker := range criticalMarkers {
			if strings.Contains(lower, marker) {
				return High
			}
		}
	}
	return Medium
}

// RecommendedAction returns the category-conditioned action line used in
// narrative prompts.
func RecommendedAction(c Category) string {
	switch c {
	case High:
		return "Alert the security/privacy team before this data is shared further."
	case Medium:
		return "Review the flagged issues at the next privacy review."
	default:
		return "Log for audit purposes; no action required."
	}
}
