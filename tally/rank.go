// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"sort"

	"github.com/danielhkuo/small-grants/models"
	"github.com/danielhkuo/small-grants/round"
)

// Order selects how Rank sorts grants.
type Order string

const (
	// OrderSubmission sorts by ascending grant id, which is submission order.
	OrderSubmission Order = models.SortTime
	// OrderVotes sorts by descending tally score.
	OrderVotes Order = models.SortVotes
)

// ParseOrder maps a query value to an Order, defaulting to submission
// order for anything unrecognized.
func ParseOrder(s string) Order {
	if Order(s) == OrderVotes {
		return OrderVotes
	}
	return OrderSubmission
}

// Rank returns a sorted copy of grants. Both orders are stable: grants
// that compare equal keep their input order.
func Rank(grants []Reconciled, order Order) []Reconciled {
	out := make([]Reconciled, len(grants))
	copy(out, grants)

	switch order {
	case OrderVotes:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Score() > out[j].Score()
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].ID < out[j].ID
		})
	}
	return out
}

// IDSet is a set of grant ids.
type IDSet map[int64]struct{}

func (s IDSet) Has(id int64) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the ids in ascending order.
func (s IDSet) Sorted() []int64 {
	ids := make([]int64, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// SelectHighlighted picks the grants to highlight for a round in the
// given status.
//
// While voting, these are the grants whose choice index the voter has
// selected. Once closed, they are the winners: the first MaxWinnerCount
// grants by score. In every other phase nothing is highlighted.
func SelectHighlighted(grants []Reconciled, r models.Round, status round.Status, selection []int) IDSet {
	set := IDSet{}

	switch status {
	case round.StatusVoting:
		picked := make(map[int]bool, len(selection))
		for _, i := range selection {
			picked[i] = true
		}
		for _, g := range grants {
			if i, ok := g.ChoiceIndex(); ok && picked[i] {
				set[g.ID] = struct{}{}
			}
		}

	case round.StatusClosed:
		if r.MaxWinnerCount <= 0 {
			return set
		}
		ranked := Rank(grants, OrderVotes)
		n := min(r.MaxWinnerCount, len(ranked))
		for _, g := range ranked[:n] {
			set[g.ID] = struct{}{}
		}
	}

	return set
}
