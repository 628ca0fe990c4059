// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package round derives display and gating values from a round record.

Every function here is a pure computation over its arguments. Nothing reads
the wall clock: callers pass "now" explicitly, so results are repeatable
and the package is safe for concurrent use.

# Lifecycle

A round moves through five phases, decided by its four instants:

	queued → proposals → pending-voting → voting → closed

	status := round.ResolveStatus(r, time.Now())
	if !status.AcceptsProposals() { ... }

ResolveStatus trusts the ordering of the instants. CheckTimeline reports
rounds whose windows are out of order and is used when rounds are created.

# Durations

	round.DescribeElapsed(now, r.VotingEnd)      // "3 days"
	round.DescribeElapsedShort(now, r.VotingEnd) // "3d"
	round.Countdown(r, now)                      // "Voting closes in 3 days"

# Funding

Allocation amounts are raw token integers. USDC (6 decimals) is selected by
its exact lowercase address; anything else is shown as ETH (18 decimals).

	round.FormatFundingPerWinner(r) // "100 USDC", "1.5K ETH", "2K USDC/mo"

Compact notation follows en-US short form (K, M, B, T) with half away from
zero rounding.
*/
package round
