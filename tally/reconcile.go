// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import "github.com/danielhkuo/small-grants/models"

// Placement is where a grant sits on a tally.
type Placement struct {
	ChoiceIndex int
	Score       float64
}

// Reconciled is a grant with its placement on the round's tally. Placement
// is nil when the grant does not appear on the tally, including when no
// tally exists yet.
type Reconciled struct {
	models.Grant
	Placement *Placement
}

// Score returns the grant's tally score, zero when unplaced.
func (r Reconciled) Score() float64 {
	if r.Placement == nil {
		return 0
	}
	return r.Placement.Score
}

// ChoiceIndex returns the grant's position in the tally choices.
func (r Reconciled) ChoiceIndex() (int, bool) {
	if r.Placement == nil {
		return 0, false
	}
	return r.Placement.ChoiceIndex, true
}

// Reconcile matches each grant with the first tally choice that embeds its
// id. The result has one entry per grant, in input order. An unusable
// tally leaves every grant unplaced.
func Reconcile(grants []models.Grant, t *Tally) []Reconciled {
	out := make([]Reconciled, len(grants))
	if !t.Usable() {
		for i, g := range grants {
			out[i] = Reconciled{Grant: g}
		}
		return out
	}

	idx := t.index()
	for i, g := range grants {
		out[i] = Reconciled{Grant: g}
		if pos, ok := idx[g.ID]; ok {
			out[i].Placement = &Placement{ChoiceIndex: pos, Score: t.Scores[pos]}
		}
	}
	return out
}
