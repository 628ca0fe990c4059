// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/danielhkuo/small-grants/auth"
	"github.com/danielhkuo/small-grants/models"
	"github.com/danielhkuo/small-grants/tally"
	"github.com/danielhkuo/small-grants/testutil"
)

// TestFullRoundWorkflow tests the complete end-to-end workflow:
// 1. Create house
// 2. Create round
// 3. Proposers submit grants
// 4. Voting opens; voter highlights their picks
// 5. Voting closes; winners are highlighted
func TestFullRoundWorkflow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	hub := testutil.NewFakeHub()
	houseHandler := NewHouseHandler(db, cfg)
	roundHandler := NewRoundHandler(db, hub)
	grantHandler := NewGrantHandler(db, hub)

	// Step 1: Create a house
	adminKey := auth.GenerateAdminKey("public-goods", cfg.AdminKeySalt)
	req := testutil.MakeRequest("POST", "/houses",
		models.CreateHouseRequest{Slug: "public-goods", Title: "Public Goods"},
		map[string]string{"X-Admin-Key": adminKey})
	w := httptest.NewRecorder()
	houseHandler.CreateHouse(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Step 1 - Create house failed: %d - %s", w.Code, w.Body.String())
	}

	// Step 2: Create a round whose proposal window is open
	start := time.Now().Add(-time.Hour).UTC()
	proposalID := "0xround1"
	roundReq := models.CreateRoundRequest{
		Creator:                testutil.Creator,
		Title:                  "Public Goods Round 1",
		SnapshotProposalID:     &proposalID,
		ProposalStart:          start,
		ProposalEnd:            start.Add(48 * time.Hour),
		VotingStart:            start.Add(72 * time.Hour),
		VotingEnd:              start.Add(96 * time.Hour),
		AllocationTokenAmount:  "500000000",
		AllocationTokenAddress: testutil.USDC,
		MaxWinnerCount:         2,
	}
	req = testutil.MakeRequest("POST", "/houses/public-goods/rounds", roundReq, map[string]string{"X-Admin-Key": adminKey})
	req.SetPathValue("slug", "public-goods")
	w = httptest.NewRecorder()
	houseHandler.CreateRound(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Step 2 - Create round failed: %d - %s", w.Code, w.Body.String())
	}
	var roundResp models.CreateRoundResponse
	json.NewDecoder(w.Body).Decode(&roundResp)
	roundID := roundResp.RoundID
	t.Logf("Step 2 - Created round: %d", roundID)

	// Step 3: Proposers submit grants
	titles := []string{"Indexer", "Docs", "Explorer"}
	grantIDs := make([]int64, len(titles))
	for i, title := range titles {
		body := validGrantRequest(roundID)
		body.Title = title
		w = httptest.NewRecorder()
		grantHandler.CreateGrant(w, testutil.MakeRequest("POST", "/grants", body, nil))
		if w.Code != http.StatusCreated {
			t.Fatalf("Step 3 - Submit grant %q failed: %d - %s", title, w.Code, w.Body.String())
		}
		var resp models.CreateGrantResponse
		json.NewDecoder(w.Body).Decode(&resp)
		grantIDs[i] = resp.GrantID
	}

	// The hub publishes one choice per grant
	choices := make([]string, len(titles))
	for i, title := range titles {
		choices[i] = tally.FormatChoice(grantIDs[i], title)
	}
	hub.Tallies[proposalID] = &tally.Tally{
		ProposalID:  proposalID,
		Choices:     choices,
		Scores:      []float64{3, 10, 7},
		ScoresState: "pending",
		ScoresTotal: 20,
	}

	// Step 4: Move the round into its voting window
	shiftRound(t, roundHandler, roundID, -73*time.Hour)

	detail := fetchRound(t, roundHandler, roundID, "?sort=votes&selected=0")
	if detail.Status != "voting" {
		t.Fatalf("Step 4 - Expected voting, got %s", detail.Status)
	}
	if detail.FundingPerWinner != "500 USDC" {
		t.Errorf("Step 4 - Expected '500 USDC', got %q", detail.FundingPerWinner)
	}
	if len(detail.Highlighted) != 1 || detail.Highlighted[0] != grantIDs[0] {
		t.Errorf("Step 4 - Expected selection to highlight grant %d, got %v", grantIDs[0], detail.Highlighted)
	}
	if detail.Grants[0].ID != grantIDs[1] {
		t.Errorf("Step 4 - Expected grant %d to lead, got %d", grantIDs[1], detail.Grants[0].ID)
	}

	// Step 5: Close voting
	shiftRound(t, roundHandler, roundID, -24*time.Hour)

	detail = fetchRound(t, roundHandler, roundID, "")
	if detail.Status != "closed" {
		t.Fatalf("Step 5 - Expected closed, got %s", detail.Status)
	}
	want := []int64{grantIDs[1], grantIDs[2]}
	if len(detail.Highlighted) != 2 || detail.Highlighted[0] != want[0] || detail.Highlighted[1] != want[1] {
		t.Errorf("Step 5 - Expected winners %v, got %v", want, detail.Highlighted)
	}

	// No more submissions once the proposal window has passed
	w = httptest.NewRecorder()
	grantHandler.CreateGrant(w, testutil.MakeRequest("POST", "/grants", validGrantRequest(roundID), nil))
	if w.Code != http.StatusConflict {
		t.Errorf("Expected 409 for late submission, got %d", w.Code)
	}
}

// shiftRound moves every instant of the round by d
func shiftRound(t *testing.T, h *RoundHandler, roundID int64, d time.Duration) {
	t.Helper()
	rd, err := loadRound(t.Context(), h.db, roundID)
	if err != nil {
		t.Fatalf("Failed to load round: %v", err)
	}
	_, err = h.db.Exec(`
		UPDATE rounds SET proposal_start = $1, proposal_end = $2, voting_start = $3, voting_end = $4
		WHERE id = $5
	`, rd.ProposalStart.Add(d).UTC(), rd.ProposalEnd.Add(d).UTC(), rd.VotingStart.Add(d).UTC(), rd.VotingEnd.Add(d).UTC(), roundID)
	if err != nil {
		t.Fatalf("Failed to shift round: %v", err)
	}
}

func fetchRound(t *testing.T, h *RoundHandler, roundID int64, query string) models.RoundDetail {
	t.Helper()
	w := getRound(t, h, roundID, query)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /rounds/%s failed: %d - %s", strconv.FormatInt(roundID, 10), w.Code, w.Body.String())
	}
	var detail models.RoundDetail
	testutil.AssertJSON(t, w, &detail)
	return detail
}
