// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package round

import (
	"strconv"
	"strings"

	"github.com/danielhkuo/small-grants/models"
)

const roundMarker = " Round "

// SplitTitle separates a stored title like "Public Goods Round 7" into its
// display name and sequence number. The split is at the last " Round "
// and the sequence is the run of digits right after it. Titles without
// one come back unchanged with sequence 0.
func SplitTitle(title string) (string, int) {
	i := strings.LastIndex(title, roundMarker)
	if i < 0 {
		return title, 0
	}
	tail := title[i+len(roundMarker):]
	n := 0
	for n < len(tail) && tail[n] >= '0' && tail[n] <= '9' {
		n++
	}
	seq, err := strconv.Atoi(tail[:n])
	if err != nil {
		return title, 0
	}
	return title[:i], seq
}

// FullTitle is the inverse of SplitTitle: the display name with its
// " Round <n>" suffix when the round has a sequence number.
func FullTitle(r models.Round) string {
	if r.Round == 0 {
		return r.Title
	}
	return r.Title + roundMarker + strconv.Itoa(r.Round)
}

// Normalize fills in Round from the title when the record has no
// sequence number of its own.
func Normalize(r models.Round) models.Round {
	if r.Round != 0 {
		return r
	}
	if name, seq := SplitTitle(r.Title); seq != 0 {
		r.Title = name
		r.Round = seq
	}
	return r
}
