// Copyright (C) 2026 Oselund Data (privmon@oselund.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package risk derives validation thresholds from dataset characteristics
// and maps validator risk flags to a coarse category. Both operations are
// pure functions; this package is the only source of threshold values.
package risk

import (
	"fmt"

	"github.com/oselund/privmon/services/orchestrator/datatypes"
)

// AdaptiveThresholds derives the k/l/t thresholds and acceptable
// re-identification probability for a dataset. Auxiliary (linkable) data
// makes re-identification attacks more feasible, so its presence tightens
// k and t and lowers the accepted probability.
func AdaptiveThresholds(rowCount int, auxPresent bool) datatypes.ThresholdSet {
	if auxPresent {
		k := rowCount / 100
		if k < 10 {
			k = 10
		}
		return datatypes.ThresholdSet{
			K:               k,
			L:               2,
			T:               0.1,
			ReidProbability: 0.01,
			Reason: fmt.Sprintf(
				"auxiliary data detected for %d rows: stricter thresholds to resist linkage attacks",
				rowCount),
		}
	}
	k := rowCount / 200
	if k < 5 {
		k = 5
	}
	return datatypes.ThresholdSet{
		K:               k,
		L:               2,
		T:               0.2,
		ReidProbability: 0.05,
		Reason: fmt.Sprintf(
			"no auxiliary data detected for %d rows: baseline thresholds", rowCount),
	}
}
