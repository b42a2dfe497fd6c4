// Copyright (C) 2026 Oselund Data (privmon@oselund.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdaptiveThresholds(t *testing.T) {
	t.Run("no auxiliary data", func(t *testing.T) {
		ts := AdaptiveThresholds(1000, false)
		assert.Equal(t, 5, ts.K)
		assert.Equal(t, 2, ts.L)
		assert.Equal(t, 0.2, ts.T)
		assert.Equal(t, 0.05, ts.ReidProbability)
		assert.NotEmpty(t, ts.Reason)
	})

	t.Run("auxiliary data present", func(t *testing.T) {
		ts := AdaptiveThresholds(1000, true)
		assert.Equal(t, 10, ts.K)
		assert.Equal(t, 2, ts.L)
		assert.Equal(t, 0.1, ts.T)
		assert.Equal(t, 0.01, ts.ReidProbability)
	})

	t.Run("small dataset clamps k to the floor", func(t *testing.T) {
		assert.Equal(t, 5, AdaptiveThresholds(50, false).K)
		assert.Equal(t, 10, AdaptiveThresholds(50, true).K)
	})

	t.Run("large dataset scales k", func(t *testing.T) {
		assert.Equal(t, 50, AdaptiveThresholds(10000, false).K)
		assert.Equal(t, 100, AdaptiveThresholds(10000, true).K)
	})

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, AdaptiveThresholds(123, true), AdaptiveThresholds(123, true))
	})
}

func TestCategorise(t *testing.T) {
	t.Run("no flags is low", func(t *testing.T) {
		assert.Equal(t, Low, Categorise(nil))
		assert.Equal(t, Low, Categorise([]string{}))
	})

	t.Run("non-critical flags are medium", func(t *testing.T) {
		assert.Equal(t, Medium, Categorise([]string{"Missing values"}))
		assert.Equal(t, Medium, Categorise([]string{"rare sensitive values present"}))
	})

	t.Run("threshold misses are high", func(t *testing.T) {
		assert.Equal(t, High, Categorise([]string{"k-anonymity below threshold"}))
		assert.Equal(t, High, Categorise([]string{"t-closeness above threshold"}))
		assert.Equal(t, High, Categorise([]string{"Missing values", "l-diversity below threshold"}))
	})

	t.Run("matching is case-insensitive", func(t *testing.T) {
		assert.Equal(t, High, Categorise([]string{"K-Anonymity BELOW THRESHOLD"}))
		assert.Equal(t, High, Categorise([]string{"T-CLOSENESS Above Threshold"}))
	})
}

func TestRecommendedAction(t *testing.T) {
	assert.Contains(t, RecommendedAction(High), "security/privacy team")
	assert.Contains(t, RecommendedAction(Medium), "Review")
	assert.Contains(t, RecommendedAction(Low), "no action")
}
