// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/small-grants/auth"
	"github.com/danielhkuo/small-grants/models"
	"github.com/danielhkuo/small-grants/round"
	"github.com/danielhkuo/small-grants/testutil"
)

func TestListHouses_HidesHidden(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	testutil.CreateTestHouse(t, db, cfg, "public-goods", false)
	testutil.CreateTestHouse(t, db, cfg, "secret", true)
	testutil.CreateTestHouse(t, db, cfg, "meta-gov", false)

	handler := NewHouseHandler(db, cfg)
	w := httptest.NewRecorder()
	handler.ListHouses(w, testutil.MakeRequest("GET", "/houses", nil, nil))

	testutil.AssertStatus(t, w, http.StatusOK)
	var houses []models.House
	testutil.AssertJSON(t, w, &houses)

	require.Len(t, houses, 2)
	assert.Equal(t, "public-goods", houses[0].Slug)
	assert.Equal(t, "meta-gov", houses[1].Slug)
}

func TestGetHouse(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	houseID, _ := testutil.CreateTestHouse(t, db, cfg, "public-goods", false)
	otherID, _ := testutil.CreateTestHouse(t, db, cfg, "meta-gov", false)

	closedID := testutil.CreateTestRound(t, db, houseID, testutil.RoundFixture{Title: "Public Goods Round 1", Phase: round.StatusClosed})
	testutil.CreateTestRound(t, db, houseID, testutil.RoundFixture{Title: "Public Goods Round 3", Phase: round.StatusQueued})
	openID := testutil.CreateTestRound(t, db, houseID, testutil.RoundFixture{
		Title:        "Public Goods Round 2",
		Amount:       "1500000000000000000000",
		TokenAddress: testutil.ETHToken,
		MaxWinners:   3,
	})
	testutil.CreateTestRound(t, db, otherID, testutil.RoundFixture{})
	testutil.CreateTestGrant(t, db, openID, testutil.Proposer, "Grant A")
	testutil.CreateTestGrant(t, db, openID, testutil.Proposer, "Grant B")

	handler := NewHouseHandler(db, cfg)
	req := testutil.MakeRequest("GET", "/houses/public-goods", nil, nil)
	req.SetPathValue("slug", "public-goods")
	w := httptest.NewRecorder()
	handler.GetHouse(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	var detail models.HouseDetail
	testutil.AssertJSON(t, w, &detail)

	assert.Equal(t, "public-goods", detail.House.Slug)
	// Queued round is not listed; newest first
	require.Len(t, detail.Rounds, 2)
	assert.Equal(t, openID, detail.Rounds[0].ID)
	assert.Equal(t, closedID, detail.Rounds[1].ID)

	open := detail.Rounds[0]
	assert.Equal(t, "Public Goods", open.Title)
	assert.Equal(t, 2, open.Round.Round)
	assert.Equal(t, "proposals", open.Status)
	assert.Equal(t, "1.5K ETH", open.FundingPerWinner)
	assert.Equal(t, "3 projects", open.Winners)
	assert.Equal(t, 2, open.GrantsCount)
	assert.Contains(t, open.Countdown, "Submissions close in")

	assert.Equal(t, "closed", detail.Rounds[1].Status)
	assert.Equal(t, "100 USDC", detail.Rounds[1].FundingPerWinner)
}

func TestGetHouse_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewHouseHandler(db, testutil.GetTestConfig())
	req := testutil.MakeRequest("GET", "/houses/nope", nil, nil)
	req.SetPathValue("slug", "nope")
	w := httptest.NewRecorder()
	handler.GetHouse(w, req)

	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestCreateHouse(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewHouseHandler(db, cfg)
	key := auth.GenerateAdminKey("public-goods", cfg.AdminKeySalt)

	testCases := []struct {
		name       string
		body       models.CreateHouseRequest
		adminKey   string
		wantStatus int
	}{
		{"created", models.CreateHouseRequest{Slug: "public-goods", Title: "Public Goods"}, key, http.StatusCreated},
		{"duplicate", models.CreateHouseRequest{Slug: "public-goods", Title: "Again"}, key, http.StatusConflict},
		{"wrong key", models.CreateHouseRequest{Slug: "meta-gov", Title: "Meta"}, key, http.StatusUnauthorized},
		{"bad slug", models.CreateHouseRequest{Slug: "Public Goods", Title: "x"}, key, http.StatusBadRequest},
		{"missing title", models.CreateHouseRequest{Slug: "public-goods"}, key, http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/houses", tc.body, map[string]string{"X-Admin-Key": tc.adminKey})
			w := httptest.NewRecorder()
			handler.CreateHouse(w, req)
			testutil.AssertStatus(t, w, tc.wantStatus)
		})
	}

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM houses`).Scan(&count))
	assert.Equal(t, 1, count)
}

func validRoundRequest() models.CreateRoundRequest {
	start := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	return models.CreateRoundRequest{
		Creator:                testutil.Creator,
		Title:                  "Public Goods Round 4",
		Description:            "Fourth round",
		ProposalStart:          start,
		ProposalEnd:            start.Add(7 * 24 * time.Hour),
		VotingStart:            start.Add(8 * 24 * time.Hour),
		VotingEnd:              start.Add(10 * 24 * time.Hour),
		AllocationTokenAmount:  "250000000",
		AllocationTokenAddress: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
		MaxWinnerCount:         5,
	}
}

func TestCreateRound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	_, adminKey := testutil.CreateTestHouse(t, db, cfg, "public-goods", false)
	handler := NewHouseHandler(db, cfg)

	req := testutil.MakeRequest("POST", "/houses/public-goods/rounds", validRoundRequest(), map[string]string{"X-Admin-Key": adminKey})
	req.SetPathValue("slug", "public-goods")
	w := httptest.NewRecorder()
	handler.CreateRound(w, req)

	testutil.AssertStatus(t, w, http.StatusCreated)
	var resp models.CreateRoundResponse
	testutil.AssertJSON(t, w, &resp)
	assert.Equal(t, int64(1), resp.RoundID)

	var (
		amount, token, space string
		maxWinners           int
	)
	err := db.QueryRow(`
		SELECT allocation_token_amount, allocation_token_address, snapshot_space_id, max_winner_count
		FROM rounds WHERE id = $1
	`, resp.RoundID).Scan(&amount, &token, &space, &maxWinners)
	require.NoError(t, err)
	assert.Equal(t, "250000000", amount)
	assert.Equal(t, round.USDCAddress, token, "token address is stored lowercase")
	assert.Equal(t, cfg.SnapshotSpace, space)
	assert.Equal(t, 5, maxWinners)
}

func TestCreateRound_Rejects(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	_, adminKey := testutil.CreateTestHouse(t, db, cfg, "public-goods", false)
	handler := NewHouseHandler(db, cfg)

	testCases := []struct {
		name       string
		slug       string
		adminKey   string
		mutate     func(*models.CreateRoundRequest)
		wantStatus int
	}{
		{"wrong key", "public-goods", "nope", func(*models.CreateRoundRequest) {}, http.StatusUnauthorized},
		{"unknown house", "ghost", auth.GenerateAdminKey("ghost", cfg.AdminKeySalt), func(*models.CreateRoundRequest) {}, http.StatusNotFound},
		{"voting before proposals end", "public-goods", adminKey, func(r *models.CreateRoundRequest) {
			r.VotingStart = r.ProposalEnd.Add(-time.Hour)
		}, http.StatusBadRequest},
		{"missing instant", "public-goods", adminKey, func(r *models.CreateRoundRequest) {
			r.VotingEnd = time.Time{}
		}, http.StatusBadRequest},
		{"fractional amount", "public-goods", adminKey, func(r *models.CreateRoundRequest) {
			r.AllocationTokenAmount = "1.5"
		}, http.StatusBadRequest},
		{"negative amount", "public-goods", adminKey, func(r *models.CreateRoundRequest) {
			r.AllocationTokenAmount = "-100"
		}, http.StatusBadRequest},
		{"bad creator", "public-goods", adminKey, func(r *models.CreateRoundRequest) {
			r.Creator = "alice"
		}, http.StatusBadRequest},
		{"negative winners", "public-goods", adminKey, func(r *models.CreateRoundRequest) {
			r.MaxWinnerCount = -1
		}, http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			body := validRoundRequest()
			tc.mutate(&body)

			req := testutil.MakeRequest("POST", "/houses/"+tc.slug+"/rounds", body, map[string]string{"X-Admin-Key": tc.adminKey})
			req.SetPathValue("slug", tc.slug)
			w := httptest.NewRecorder()
			handler.CreateRound(w, req)

			testutil.AssertStatus(t, w, tc.wantStatus)
		})
	}

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM rounds`).Scan(&count))
	assert.Equal(t, 0, count)
}
