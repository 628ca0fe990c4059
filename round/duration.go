// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package round

import (
	"strconv"
	"time"

	"github.com/danielhkuo/small-grants/models"
	"github.com/dustin/go-humanize/english"
)

const (
	day  = 24 * time.Hour
	week = 7 * day
)

const lessThanAMinute = "less than a minute"

var spanUnits = []struct {
	size  time.Duration
	name  string
	short string
}{
	{week, "week", "w"},
	{day, "day", "d"},
	{time.Hour, "hour", "h"},
	{time.Minute, "minute", "m"},
}

// largestUnit returns the count and index into spanUnits of the largest
// unit that fits at least once into b - a, or ok=false when none does.
func largestUnit(a, b time.Time) (count int, unit int, ok bool) {
	diff := b.Sub(a)
	for i, u := range spanUnits {
		if n := diff / u.size; n > 0 {
			return int(n), i, true
		}
	}
	return 0, 0, false
}

// DescribeElapsed renders the span from a to b in its largest whole unit,
// e.g. "2 weeks" or "1 hour". Callers pass b >= a; spans under a minute,
// negative ones included, render as "less than a minute".
func DescribeElapsed(a, b time.Time) string {
	n, i, ok := largestUnit(a, b)
	if !ok {
		return lessThanAMinute
	}
	return english.Plural(n, spanUnits[i].name, "")
}

// DescribeElapsedShort is DescribeElapsed with one-letter units ("3d").
func DescribeElapsedShort(a, b time.Time) string {
	n, i, ok := largestUnit(a, b)
	if !ok {
		return lessThanAMinute
	}
	return strconv.Itoa(n) + spanUnits[i].short
}

// Countdown returns the deadline label shown next to a round for its
// current phase.
func Countdown(r models.Round, now time.Time) string {
	switch ResolveStatus(r, now) {
	case StatusQueued:
		return "Submissions open in " + DescribeElapsed(now, r.ProposalStart)
	case StatusProposals:
		return "Submissions close in " + DescribeElapsed(now, r.ProposalEnd)
	case StatusPendingVoting:
		return "Voting starts in " + DescribeElapsed(now, r.VotingStart)
	case StatusVoting:
		return "Voting closes in " + DescribeElapsed(now, r.VotingEnd)
	default:
		return "Voting closed " + DescribeElapsed(r.VotingEnd, now) + " ago"
	}
}
