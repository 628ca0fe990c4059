// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/small-grants/middleware"
	"github.com/danielhkuo/small-grants/models"
	"github.com/danielhkuo/small-grants/round"
	"github.com/danielhkuo/small-grants/tally"
)

// errNotStarted marks a round whose proposal window has not opened. Such
// rounds are served as not found.
var errNotStarted = errors.New("round not started")

// TallySource supplies vote data from the voting hub.
type TallySource interface {
	Tally(ctx context.Context, proposalID string) (*tally.Tally, error)
	Ballots(ctx context.Context, voter string) ([]tally.Ballot, error)
}

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

const houseColumns = `id, slug, title, description, hidden, created_at`

const roundColumns = `id, house_id, creator, title, round_number, description,
	snapshot_space_id, snapshot_proposal_id,
	proposal_start, proposal_end, voting_start, voting_end,
	allocation_token_amount, allocation_token_address, max_winner_count,
	scholarship, created_at, updated_at`

const grantColumns = `id, round_id, proposer, title, description, full_text,
	twitter, payout_address, deleted, created_at, updated_at`

func scanHouse(s scanner) (models.House, error) {
	var h models.House
	err := s.Scan(&h.ID, &h.Slug, &h.Title, &h.Description, &h.Hidden, &h.CreatedAt)
	return h, err
}

// scanRound reads a row selected with roundColumns, plus any extra
// trailing destinations.
func scanRound(s scanner, extra ...any) (models.Round, error) {
	var r models.Round
	dest := []any{
		&r.ID, &r.HouseID, &r.Creator, &r.Title, &r.Round, &r.Description,
		&r.SnapshotSpaceID, &r.SnapshotProposalID,
		&r.ProposalStart, &r.ProposalEnd, &r.VotingStart, &r.VotingEnd,
		&r.AllocationTokenAmount, &r.AllocationTokenAddress, &r.MaxWinnerCount,
		&r.Scholarship, &r.CreatedAt, &r.UpdatedAt,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return models.Round{}, err
	}
	return round.Normalize(r), nil
}

func scanGrant(s scanner) (models.Grant, error) {
	var g models.Grant
	err := s.Scan(
		&g.ID, &g.RoundID, &g.Proposer, &g.Title, &g.Description, &g.FullText,
		&g.Twitter, &g.PayoutAddress, &g.Deleted, &g.CreatedAt, &g.UpdatedAt,
	)
	return g, err
}

// roundWithCount is a round and its number of visible grants
type roundWithCount struct {
	round  models.Round
	grants int
}

// loadRounds returns rounds matching where (may be empty), newest first,
// each with its visible grant count.
func loadRounds(ctx context.Context, q querier, where string, args ...any) ([]roundWithCount, error) {
	query := `
		SELECT ` + roundColumns + `,
		       (SELECT COUNT(*) FROM grants g WHERE g.round_id = rounds.id AND g.deleted = FALSE)
		FROM rounds ` + where + `
		ORDER BY id DESC`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query rounds: %w", err)
	}
	defer rows.Close()

	var out []roundWithCount
	for rows.Next() {
		var n int
		r, err := scanRound(rows, &n)
		if err != nil {
			return nil, fmt.Errorf("scan round: %w", err)
		}
		out = append(out, roundWithCount{round: r, grants: n})
	}
	return out, rows.Err()
}

func loadRound(ctx context.Context, q querier, id int64) (models.Round, error) {
	row := q.QueryRowContext(ctx, `SELECT `+roundColumns+` FROM rounds WHERE id = $1`, id)
	return scanRound(row)
}

// loadGrants returns the round's visible grants in submission order.
func loadGrants(ctx context.Context, q querier, roundID int64) ([]models.Grant, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+grantColumns+`
		FROM grants
		WHERE round_id = $1 AND deleted = FALSE
		ORDER BY id
	`, roundID)
	if err != nil {
		return nil, fmt.Errorf("query grants: %w", err)
	}
	defer rows.Close()

	grants := []models.Grant{}
	for rows.Next() {
		g, err := scanGrant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan grant: %w", err)
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

// nextID returns MAX(id)+1 for table. Call it inside the transaction that
// inserts the row.
func nextID(ctx context.Context, tx *sql.Tx, table string) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) + 1 FROM `+table).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", table, err)
	}
	return id, nil
}

// fetchTally asks the hub for the round's tally. A round without a
// proposal, or a hub failure, yields nil so callers render "no tally yet".
func fetchTally(ctx context.Context, hub TallySource, r models.Round) *tally.Tally {
	if r.SnapshotProposalID == nil || *r.SnapshotProposalID == "" {
		return nil
	}
	t, err := hub.Tally(ctx, *r.SnapshotProposalID)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			middleware.Logger(ctx).Warn("tally unavailable",
				"round_id", r.ID,
				"proposal_id", *r.SnapshotProposalID,
				"error", err,
			)
		}
		return nil
	}
	return t
}

// summarize derives the request-time view of a round.
func summarize(r models.Round, grantsCount int, now time.Time) models.RoundSummary {
	return models.RoundSummary{
		Round:            r,
		Status:           string(round.ResolveStatus(r, now)),
		Countdown:        round.Countdown(r, now),
		FundingPerWinner: round.FormatFundingPerWinner(r),
		Winners:          round.WinnerLabel(r),
		GrantsCount:      grantsCount,
	}
}

// standing decorates a reconciled grant for the API.
func standing(g tally.Reconciled, highlighted tally.IDSet) models.GrantStanding {
	s := models.GrantStanding{
		Grant:       g.Grant,
		Score:       g.Score(),
		VoteCount:   round.FormatVoteCount(g.Score()),
		Highlighted: highlighted.Has(g.ID),
	}
	if i, ok := g.ChoiceIndex(); ok {
		s.ChoiceIndex = &i
	}
	return s
}
