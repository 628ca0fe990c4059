// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseChoiceID(t *testing.T) {
	tests := []struct {
		choice string
		id     int64
		ok     bool
	}{
		{"5 - Foo", 5, true},
		{"12 - Title - with dashes", 12, true},
		{"7", 7, true},
		{" 8 - padded", 8, true},
		{"Foo - 5", 0, false},
		{"", 0, false},
		{"5-Foo", 0, false},
		{"x12 - Bar", 0, false},
	}

	for _, tt := range tests {
		id, ok := ParseChoiceID(tt.choice)
		assert.Equal(t, tt.ok, ok, tt.choice)
		assert.Equal(t, tt.id, id, tt.choice)
	}
}

func TestFormatChoice_RoundTrips(t *testing.T) {
	c := FormatChoice(42, "Solar - phase 2")
	assert.Equal(t, "42 - Solar - phase 2", c)

	id, ok := ParseChoiceID(c)
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)
}

func TestTallyUsable(t *testing.T) {
	var missing *Tally
	assert.False(t, missing.Usable())
	assert.True(t, (&Tally{}).Usable())
	assert.True(t, (&Tally{Choices: []string{"1 - A"}, Scores: []float64{3}}).Usable())
	assert.False(t, (&Tally{Choices: []string{"1 - A", "2 - B"}, Scores: []float64{3}}).Usable())
}

func TestBallotPicked(t *testing.T) {
	b := Ballot{
		Choices: []string{"1 - A", "2 - B", "3 - C"},
		Choice:  []int{3, 1, 0, 9},
	}
	assert.Equal(t, []string{"3 - C", "1 - A"}, b.Picked())
	assert.Empty(t, Ballot{}.Picked())
}

func TestSnapshotChoices(t *testing.T) {
	assert.Equal(t, []int{1, 3}, SnapshotChoices([]int{0, 2}))
	assert.Equal(t, []int{}, SnapshotChoices([]int{-1}))
}
