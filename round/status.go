// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package round

import (
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/small-grants/models"
)

// Status is the lifecycle phase of a round at a given instant.
type Status string

const (
	StatusQueued        Status = "queued"
	StatusProposals     Status = "proposals"
	StatusPendingVoting Status = "pending-voting"
	StatusVoting        Status = "voting"
	StatusClosed        Status = "closed"
)

// ResolveStatus maps the round's four instants and now to a phase.
// The first boundary that now has not reached decides the phase. Any
// ordering of the instants is accepted; use CheckTimeline to detect
// rounds whose windows are out of order.
func ResolveStatus(r models.Round, now time.Time) Status {
	switch {
	case now.Before(r.ProposalStart):
		return StatusQueued
	case now.Before(r.ProposalEnd):
		return StatusProposals
	case now.Before(r.VotingStart):
		return StatusPendingVoting
	case now.Before(r.VotingEnd):
		return StatusVoting
	default:
		return StatusClosed
	}
}

// Started reports whether the proposal window has opened.
func (s Status) Started() bool {
	return s != StatusQueued
}

// AcceptsProposals reports whether new grants may be submitted.
func (s Status) AcceptsProposals() bool {
	return s == StatusProposals
}

// AcceptsVotes reports whether the voting window is open.
func (s Status) AcceptsVotes() bool {
	return s == StatusVoting
}

var ErrTimelineOrder = errors.New("round timeline out of order")

// CheckTimeline returns ErrTimelineOrder (wrapped with the offending pair)
// unless proposalStart <= proposalEnd <= votingStart <= votingEnd.
func CheckTimeline(r models.Round) error {
	steps := []struct {
		name string
		at   time.Time
	}{
		{"proposal_start", r.ProposalStart},
		{"proposal_end", r.ProposalEnd},
		{"voting_start", r.VotingStart},
		{"voting_end", r.VotingEnd},
	}
	for i := 1; i < len(steps); i++ {
		prev, cur := steps[i-1], steps[i]
		if cur.at.Before(prev.at) {
			return fmt.Errorf("%w: %s is before %s", ErrTimelineOrder, cur.name, prev.name)
		}
	}
	return nil
}
