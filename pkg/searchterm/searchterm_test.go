// Copyright (c) 2026 Voltora Energy. All rights reserved.
// Author: platform@voltora.energy

package searchterm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voltora-energy/storefront/pkg/searchterm"
)

/*
TestNormalize verifies accent folding, case folding, punctuation stripping,
and whitespace collapsing all land on one canonical form.
*/
func TestNormalize(t *testing.T) {
	testCases := []struct {
		input string
		want  string
	}{
		{"Solar Panel", "solar panel"},
		{"  solar   PANÉL  ", "solar panel"},
		{"400W mono-crystalline!", "400w monocrystalline"},
		{"Crème Brûlée", "creme brulee"},
		{"???", ""},
		{"", ""},
	}

	for _, testCase := range testCases {
		assert.Equal(t, testCase.want, searchterm.Normalize(testCase.input), "input: %q", testCase.input)
	}
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, searchterm.IsEmpty("  !! "))
	assert.False(t, searchterm.IsEmpty("inverter"))
}
