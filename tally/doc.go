// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package tally joins a round's grants with the vote tally reported by the
voting hub, and ranks and highlights the result.

# Choice Strings

The hub knows nothing about grant ids. Each grant is published as a choice
string with its id up front:

	"12 - Solar panels for the community hall"

FormatChoice and ParseChoiceID are the only code that builds or reads this
format.

# Reconciliation

	reconciled := tally.Reconcile(grants, t)

Every grant gets a Placement (choice index + score) when its id appears in
the tally, or nil otherwise. A nil tally, or one with mismatched choices
and scores, places nothing. Matching goes through an id index, so cost is
linear in grants plus choices.

# Ranking

	ranked := tally.Rank(reconciled, tally.OrderVotes)

OrderSubmission sorts by grant id; OrderVotes by descending score. Both are
stable.

# Highlights

	set := tally.SelectHighlighted(reconciled, r, status, selection)

During voting, the grants at the voter's selected choice indices. After
closing, the top MaxWinnerCount grants by score. Otherwise empty.

All functions are pure and safe for concurrent use on shared inputs.
*/
package tally
