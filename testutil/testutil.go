// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/small-grants/auth"
	"github.com/danielhkuo/small-grants/cliparse"
	"github.com/danielhkuo/small-grants/db"
	"github.com/danielhkuo/small-grants/round"
	"github.com/danielhkuo/small-grants/snapshot"
	"github.com/danielhkuo/small-grants/tally"
)

// USDC is the lowercase USDC token address used by round fixtures.
const USDC = round.USDCAddress

// Wallet addresses used across tests
const (
	Proposer = "0x1111111111111111111111111111111111111111"
	Voter    = "0x2222222222222222222222222222222222222222"
	Creator  = "0x3333333333333333333333333333333333333333"
	ETHToken = "0x0000000000000000000000000000000000000000"
)

// SetupTestDB opens a fresh in-memory sqlite database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.CreateSchema(conn); err != nil {
		conn.Close()
		t.Fatalf("Failed to create schema: %v", err)
	}
	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:           cliparse.DefaultPort,
		DatabaseURL:    ":memory:",
		DatabaseType:   "sqlite",
		AdminKeySalt:   "test-admin-salt",
		SnapshotHubURL: "http://hub.invalid/graphql",
		SnapshotSpace:  "small-grants.eth",
		HubTimeout:     time.Second,
		TallyCacheTTL:  time.Second,
	}
}

// CreateTestHouse inserts a house and returns its id and admin key
func CreateTestHouse(t *testing.T, conn *sql.DB, cfg cliparse.Config, slug string, hidden bool) (houseID int64, adminKey string) {
	t.Helper()

	err := conn.QueryRow(`SELECT COALESCE(MAX(id), 0) + 1 FROM houses`).Scan(&houseID)
	if err != nil {
		t.Fatalf("Failed to allocate house id: %v", err)
	}

	_, err = conn.Exec(`
		INSERT INTO houses (id, slug, title, description, hidden, created_at)
		VALUES ($1, $2, $3, 'A test house', $4, $5)
	`, houseID, slug, strings.ToUpper(slug[:1])+slug[1:], hidden, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test house: %v", err)
	}

	return houseID, auth.GenerateAdminKey(slug, cfg.AdminKeySalt)
}

// RoundFixture describes a round to insert. Zero values get defaults: the
// proposals phase, "Test Round 1", 100 USDC and two winners.
type RoundFixture struct {
	Title        string
	ProposalID   string
	Phase        round.Status
	Amount       string
	TokenAddress string
	MaxWinners   int
	Scholarship  bool
}

// Timeline returns the four instants that put a round in phase at now.
// Each window is one day long.
func Timeline(phase round.Status, now time.Time) (ps, pe, vs, ve time.Time) {
	day := 24 * time.Hour
	var offset time.Duration
	switch phase {
	case round.StatusQueued:
		offset = day
	case round.StatusPendingVoting:
		offset = -day - day/2
	case round.StatusVoting:
		offset = -2*day - day/2
	case round.StatusClosed:
		offset = -5 * day
	default:
		offset = -day / 2
	}
	ps = now.Add(offset)
	return ps, ps.Add(day), ps.Add(2 * day), ps.Add(3 * day)
}

// CreateTestRound inserts a round for the house and returns its id
func CreateTestRound(t *testing.T, conn *sql.DB, houseID int64, f RoundFixture) int64 {
	t.Helper()

	if f.Title == "" {
		f.Title = "Test Round 1"
	}
	if f.Phase == "" {
		f.Phase = round.StatusProposals
	}
	if f.Amount == "" {
		f.Amount = "100000000"
	}
	if f.TokenAddress == "" {
		f.TokenAddress = USDC
	}
	if f.MaxWinners == 0 {
		f.MaxWinners = 2
	}
	var proposalID *string
	if f.ProposalID != "" {
		proposalID = &f.ProposalID
	}

	var roundID int64
	if err := conn.QueryRow(`SELECT COALESCE(MAX(id), 0) + 1 FROM rounds`).Scan(&roundID); err != nil {
		t.Fatalf("Failed to allocate round id: %v", err)
	}

	now := time.Now().UTC()
	ps, pe, vs, ve := Timeline(f.Phase, now)

	_, err := conn.Exec(`
		INSERT INTO rounds (id, house_id, creator, title, round_number, description,
			snapshot_space_id, snapshot_proposal_id,
			proposal_start, proposal_end, voting_start, voting_end,
			allocation_token_amount, allocation_token_address, max_winner_count,
			scholarship, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 0, 'A test round', 'small-grants.eth', $5,
			$6, $7, $8, $9, $10, $11, $12, $13, $14, $14)
	`, roundID, houseID, Creator, f.Title, proposalID,
		ps, pe, vs, ve, f.Amount, f.TokenAddress, f.MaxWinners, f.Scholarship, now)
	if err != nil {
		t.Fatalf("Failed to create test round: %v", err)
	}

	return roundID
}

// CreateTestGrant inserts a grant and returns its id
func CreateTestGrant(t *testing.T, conn *sql.DB, roundID int64, proposer, title string) int64 {
	t.Helper()

	var grantID int64
	if err := conn.QueryRow(`SELECT COALESCE(MAX(id), 0) + 1 FROM grants`).Scan(&grantID); err != nil {
		t.Fatalf("Failed to allocate grant id: %v", err)
	}

	now := time.Now().UTC()
	_, err := conn.Exec(`
		INSERT INTO grants (id, round_id, proposer, title, description, full_text,
			payout_address, deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 'Short description', 'Full text', $5, FALSE, $6, $6)
	`, grantID, roundID, proposer, title, proposer, now)
	if err != nil {
		t.Fatalf("Failed to create test grant: %v", err)
	}

	return grantID
}

// FakeHub is an in-memory voting hub. Tallies are keyed by proposal id and
// ballots by lowercase voter address.
type FakeHub struct {
	mu      sync.Mutex
	Tallies map[string]*tally.Tally
	Votes   map[string][]tally.Ballot
	Err     error
	Calls   int
}

func NewFakeHub() *FakeHub {
	return &FakeHub{
		Tallies: map[string]*tally.Tally{},
		Votes:   map[string][]tally.Ballot{},
	}
}

func (f *FakeHub) Tally(_ context.Context, proposalID string) (*tally.Tally, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++
	if f.Err != nil {
		return nil, f.Err
	}
	t, ok := f.Tallies[proposalID]
	if !ok {
		return nil, snapshot.ErrProposalNotFound
	}
	return t, nil
}

func (f *FakeHub) Ballots(_ context.Context, voter string) ([]tally.Ballot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Votes[strings.ToLower(voter)], nil
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
