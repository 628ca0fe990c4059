// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sort orders accepted by GET /rounds/{id}
const (
	SortTime  = "time"
	SortVotes = "votes"
)

// Domain types

type House struct {
	ID          int64     `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Hidden      bool      `json:"hidden"`
	CreatedAt   time.Time `json:"created_at"`
}

type Round struct {
	ID                     int64           `json:"id"`
	HouseID                int64           `json:"house_id"`
	Creator                string          `json:"creator"`
	Title                  string          `json:"title"`
	Round                  int             `json:"round"`
	Description            string          `json:"description"`
	SnapshotSpaceID        string          `json:"snapshot_space_id"`
	SnapshotProposalID     *string         `json:"snapshot_proposal_id,omitempty"`
	ProposalStart          time.Time       `json:"proposal_start"`
	ProposalEnd            time.Time       `json:"proposal_end"`
	VotingStart            time.Time       `json:"voting_start"`
	VotingEnd              time.Time       `json:"voting_end"`
	AllocationTokenAmount  decimal.Decimal `json:"allocation_token_amount"`
	AllocationTokenAddress string          `json:"allocation_token_address"`
	MaxWinnerCount         int             `json:"max_winner_count"`
	Scholarship            bool            `json:"scholarship"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
}

// Grant is a proposal submitted to a round. PayoutAddress and Deleted
// never leave the server.
type Grant struct {
	ID            int64     `json:"id"`
	RoundID       int64     `json:"round_id"`
	Proposer      string    `json:"proposer"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	FullText      string    `json:"full_text"`
	Twitter       *string   `json:"twitter,omitempty"`
	PayoutAddress *string   `json:"-"`
	Deleted       bool      `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Request types

type CreateHouseRequest struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Hidden      bool   `json:"hidden"`
}

type CreateRoundRequest struct {
	Creator                string    `json:"creator"`
	Title                  string    `json:"title"`
	Round                  int       `json:"round"`
	Description            string    `json:"description"`
	SnapshotProposalID     *string   `json:"snapshot_proposal_id"`
	ProposalStart          time.Time `json:"proposal_start"`
	ProposalEnd            time.Time `json:"proposal_end"`
	VotingStart            time.Time `json:"voting_start"`
	VotingEnd              time.Time `json:"voting_end"`
	AllocationTokenAmount  string    `json:"allocation_token_amount"`
	AllocationTokenAddress string    `json:"allocation_token_address"`
	MaxWinnerCount         int       `json:"max_winner_count"`
	Scholarship            bool      `json:"scholarship"`
}

type CreateGrantRequest struct {
	RoundID       int64   `json:"round_id"`
	Address       string  `json:"address"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	FullText      string  `json:"full_text"`
	Twitter       *string `json:"twitter"`
	PayoutAddress *string `json:"payout_address"`
}

// Response types

// RoundSummary is a round as shown in listings, with the values derived
// from its timeline and allocation at request time.
type RoundSummary struct {
	Round
	Status           string `json:"status"`
	Countdown        string `json:"countdown"`
	FundingPerWinner string `json:"funding_per_winner"`
	Winners          string `json:"winners"`
	GrantsCount      int    `json:"grants_count"`
}

// GrantStanding is a grant decorated with its place on the round's tally.
// ChoiceIndex is absent when the grant is not on the tally.
type GrantStanding struct {
	Grant
	ChoiceIndex *int    `json:"choice_index,omitempty"`
	Score       float64 `json:"score"`
	VoteCount   string  `json:"vote_count"`
	Highlighted bool    `json:"highlighted"`
}

type TallySummary struct {
	ScoresState string  `json:"scores_state"`
	ScoresTotal float64 `json:"scores_total"`
}

type RoundDetail struct {
	RoundSummary
	Sort        string          `json:"sort"`
	Grants      []GrantStanding `json:"grants"`
	Highlighted []int64         `json:"highlighted"`
	Tally       *TallySummary   `json:"tally,omitempty"`

	// BallotChoices is the selection as 1-based hub positions, set while voting
	BallotChoices []int `json:"ballot_choices,omitempty"`
}

type GrantDetail struct {
	GrantStanding
	Round RoundSummary `json:"round"`
}

type HouseDetail struct {
	House  House          `json:"house"`
	Rounds []RoundSummary `json:"rounds"`
}

type CreateHouseResponse struct {
	HouseID int64  `json:"house_id"`
	Slug    string `json:"slug"`
}

type CreateRoundResponse struct {
	RoundID int64 `json:"round_id"`
}

type CreateGrantResponse struct {
	GrantID int64 `json:"grant_id"`
}

// ProposalDraft is the approval proposal to publish on the hub for a
// round. Start and End are unix seconds.
type ProposalDraft struct {
	Space   string   `json:"space"`
	Type    string   `json:"type"`
	Title   string   `json:"title"`
	Choices []string `json:"choices"`
	Start   int64    `json:"start"`
	End     int64    `json:"end"`
}

type VoterBallot struct {
	ProposalID    string   `json:"proposal_id"`
	ProposalTitle string   `json:"proposal_title"`
	Picked        []string `json:"picked"`
}

type VoterBallotsResponse struct {
	Voter   string        `json:"voter"`
	Ballots []VoterBallot `json:"ballots"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
