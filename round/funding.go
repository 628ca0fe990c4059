// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package round

import (
	"strings"

	"github.com/danielhkuo/small-grants/models"
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/shopspring/decimal"
)

// Token describes how an allocation amount is displayed.
type Token struct {
	Symbol   string
	Decimals int32
}

// USDCAddress is the mainnet USDC contract, lowercase.
const USDCAddress = "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"

var (
	USDC = Token{Symbol: "USDC", Decimals: 6}
	ETH  = Token{Symbol: "ETH", Decimals: 18}
)

// TokenFor resolves a token address. Only the exact lowercase USDC address
// selects USDC; every other address is treated as ETH.
func TokenFor(address string) Token {
	if address == USDCAddress {
		return USDC
	}
	return ETH
}

// FormatFundingPerWinner renders the round's allocation, e.g. "100 USDC",
// "1.5K ETH" or "2K USDC/mo" for scholarship rounds. Rounds without a
// positive allocation render "n/a".
func FormatFundingPerWinner(r models.Round) string {
	if !r.AllocationTokenAmount.IsPositive() {
		return "n/a"
	}

	token := TokenFor(r.AllocationTokenAddress)
	amount := r.AllocationTokenAmount.Shift(-token.Decimals)

	out := FormatCompact(amount, 2) + " " + token.Symbol
	if r.Scholarship {
		out += "/mo"
	}
	return out
}

// FormatVoteCount renders a tally score with one fractional digit of
// compact precision ("1.2K").
func FormatVoteCount(score float64) string {
	return FormatCompact(decimal.NewFromFloat(score), 1)
}

// WinnerLabel renders the winner count, e.g. "3 projects" or "1 person".
func WinnerLabel(r models.Round) string {
	if r.Scholarship {
		return english.Plural(r.MaxWinnerCount, "person", "people")
	}
	return english.Plural(r.MaxWinnerCount, "project", "")
}

var compactSuffixes = []string{"", "K", "M", "B", "T"}

var thousand = decimal.NewFromInt(1000)

// FormatCompact renders d in en-US short compact notation with at most
// maxFrac fractional digits. Rounding is half away from zero, and a value
// that rounds up to 1000 of one unit is shown as 1 of the next. Values
// beyond the largest unit keep the "T" suffix; their integer part is
// grouped only from five digits up ("1000T", "12,345T").
func FormatCompact(d decimal.Decimal, maxFrac int32) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	unit := 0
	for unit < len(compactSuffixes)-1 && d.GreaterThanOrEqual(thousand) {
		d = d.Shift(-3)
		unit++
	}

	rounded := d.Round(maxFrac)
	if unit < len(compactSuffixes)-1 && rounded.GreaterThanOrEqual(thousand) {
		unit++
		rounded = d.Shift(-3).Round(maxFrac)
	}
	if rounded.IsZero() {
		sign = ""
	}

	whole := rounded.BigInt()
	out := whole.String()
	if len(out) >= 5 {
		out = humanize.BigComma(whole)
	}
	if _, frac, ok := strings.Cut(rounded.String(), "."); ok {
		out += "." + frac
	}
	return sign + out + compactSuffixes[unit]
}
