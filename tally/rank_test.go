// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/danielhkuo/small-grants/models"
	"github.com/danielhkuo/small-grants/round"
)

func scored(id int64, choice int, score float64) Reconciled {
	return Reconciled{
		Grant:     models.Grant{ID: id},
		Placement: &Placement{ChoiceIndex: choice, Score: score},
	}
}

func unplaced(id int64) Reconciled {
	return Reconciled{Grant: models.Grant{ID: id}}
}

func ids(grants []Reconciled) []int64 {
	out := make([]int64, len(grants))
	for i, g := range grants {
		out[i] = g.ID
	}
	return out
}

func TestParseOrder(t *testing.T) {
	assert.Equal(t, OrderVotes, ParseOrder("votes"))
	assert.Equal(t, OrderSubmission, ParseOrder("time"))
	assert.Equal(t, OrderSubmission, ParseOrder(""))
	assert.Equal(t, OrderSubmission, ParseOrder("VOTES"))
}

func TestRank_Submission(t *testing.T) {
	in := []Reconciled{scored(3, 0, 1), unplaced(1), scored(2, 1, 9)}

	got := Rank(in, OrderSubmission)
	assert.Equal(t, []int64{1, 2, 3}, ids(got))
	// Input untouched
	assert.Equal(t, []int64{3, 1, 2}, ids(in))
}

func TestRank_VotesIsStable(t *testing.T) {
	in := []Reconciled{
		scored(4, 0, 5),
		scored(2, 1, 10),
		scored(9, 2, 5),
		unplaced(1),
		scored(3, 3, 5),
	}

	got := Rank(in, OrderVotes)
	assert.Equal(t, []int64{2, 4, 9, 3, 1}, ids(got))
	assert.Equal(t, ids(got), ids(Rank(in, OrderVotes)))
}

func TestSelectHighlighted_Voting(t *testing.T) {
	grants := []Reconciled{scored(10, 0, 0), scored(11, 1, 0), scored(12, 2, 0), unplaced(13)}
	r := models.Round{MaxWinnerCount: 1}

	got := SelectHighlighted(grants, r, round.StatusVoting, []int{0, 2, 7})
	assert.Equal(t, []int64{10, 12}, got.Sorted())
	assert.True(t, got.Has(12))
	assert.False(t, got.Has(11))

	assert.Empty(t, SelectHighlighted(grants, r, round.StatusVoting, nil))
}

func TestSelectHighlighted_ClosedPicksWinners(t *testing.T) {
	grants := []Reconciled{scored(1, 0, 10), scored(2, 1, 30), scored(3, 2, 20)}
	r := models.Round{MaxWinnerCount: 2}

	got := SelectHighlighted(grants, r, round.StatusClosed, []int{0})
	assert.Equal(t, []int64{2, 3}, got.Sorted())
}

func TestSelectHighlighted_ClosedEdgeCases(t *testing.T) {
	grants := []Reconciled{scored(1, 0, 10), unplaced(2)}

	all := SelectHighlighted(grants, models.Round{MaxWinnerCount: 5}, round.StatusClosed, nil)
	assert.Equal(t, []int64{1, 2}, all.Sorted())

	assert.Empty(t, SelectHighlighted(grants, models.Round{MaxWinnerCount: 0}, round.StatusClosed, nil))
	assert.Empty(t, SelectHighlighted(grants, models.Round{MaxWinnerCount: -1}, round.StatusClosed, nil))
}

func TestSelectHighlighted_OtherPhases(t *testing.T) {
	grants := []Reconciled{scored(1, 0, 10)}
	r := models.Round{MaxWinnerCount: 1}

	for _, s := range []round.Status{round.StatusQueued, round.StatusProposals, round.StatusPendingVoting} {
		assert.Empty(t, SelectHighlighted(grants, r, s, []int{0}), string(s))
	}
}
