// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"strconv"
	"strings"
)

// choiceSeparator joins a grant id and its title in a tally choice.
const choiceSeparator = " - "

// Tally is the voting hub's snapshot of a round's approval vote.
// Choices[i] is scored by Scores[i].
type Tally struct {
	ProposalID  string    `json:"id"`
	Choices     []string  `json:"choices"`
	Scores      []float64 `json:"scores"`
	ScoresState string    `json:"scores_state"`
	ScoresTotal float64   `json:"scores_total"`
}

// Usable reports whether t can be matched against grants. A nil tally or
// one whose choices and scores disagree in length is treated as absent.
func (t *Tally) Usable() bool {
	return t != nil && len(t.Choices) == len(t.Scores)
}

// FormatChoice builds the choice string published to the hub for a grant.
func FormatChoice(grantID int64, title string) string {
	return strconv.FormatInt(grantID, 10) + choiceSeparator + title
}

// ParseChoiceID extracts the grant id embedded at the front of a choice
// string ("12 - Title"). ok is false when the leading token is not an
// integer.
func ParseChoiceID(choice string) (id int64, ok bool) {
	head, _, _ := strings.Cut(choice, choiceSeparator)
	id, err := strconv.ParseInt(strings.TrimSpace(head), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// index maps each grant id found in the choices to the position of its
// first occurrence.
func (t *Tally) index() map[int64]int {
	idx := make(map[int64]int, len(t.Choices))
	for i, c := range t.Choices {
		id, ok := ParseChoiceID(c)
		if !ok {
			continue
		}
		if _, seen := idx[id]; !seen {
			idx[id] = i
		}
	}
	return idx
}

// Ballot is one voter's approval vote on a hub proposal. Choice holds
// 1-based positions into Choices, as the hub reports them.
type Ballot struct {
	ProposalID    string   `json:"proposal_id"`
	ProposalTitle string   `json:"proposal_title"`
	Choices       []string `json:"choices"`
	Choice        []int    `json:"choice"`
}

// Picked returns the choice strings the voter approved, skipping
// positions outside the proposal's choice list.
func (b Ballot) Picked() []string {
	picked := make([]string, 0, len(b.Choice))
	for _, c := range b.Choice {
		if c < 1 || c > len(b.Choices) {
			continue
		}
		picked = append(picked, b.Choices[c-1])
	}
	return picked
}

// SnapshotChoices converts 0-based choice indices into the 1-based
// positions the hub expects on a ballot.
func SnapshotChoices(selection []int) []int {
	out := make([]int, 0, len(selection))
	for _, i := range selection {
		if i < 0 {
			continue
		}
		out = append(out, i+1)
	}
	return out
}
