// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Domain Types

Records read from the database:

  - House: a category that owns rounds (slug, hidden flag)
  - Round: a funding cycle with proposal and voting windows
  - Grant: a proposal submitted to a round

Round.AllocationTokenAmount is a decimal.Decimal holding the raw integer
amount in the token's smallest unit. It is stored as TEXT and serialized
as a JSON string, so 18-decimal amounts never lose precision.

# Request Types

Types for parsing incoming JSON:

  - CreateRoundRequest: admin round creation
  - CreateGrantRequest: proposal submission

# Response Types

Types for JSON responses:

  - RoundSummary: round + status, countdown, funding string, grant count
  - RoundDetail: summary + ranked grants, highlighted ids, tally summary
  - GrantStanding: grant + choice index, score, highlight flag
  - GrantDetail: standing + owning round
  - HouseDetail: house + its started rounds
  - VoterBallotsResponse: a voter's ballots on the voting hub
  - ErrorResponse: error, message

# Constants

Sort orders:

	SortTime  = "time"
	SortVotes = "votes"
*/
package models
