// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/small-grants/models"
	"github.com/danielhkuo/small-grants/tally"
	"github.com/danielhkuo/small-grants/testutil"
)

func getVotes(h *VoterHandler, address string) *httptest.ResponseRecorder {
	req := testutil.MakeRequest("GET", "/voters/"+address+"/votes", nil, nil)
	req.SetPathValue("address", address)
	w := httptest.NewRecorder()
	h.GetVotes(w, req)
	return w
}

func TestGetVotes(t *testing.T) {
	hub := testutil.NewFakeHub()
	hub.Votes[testutil.Voter] = []tally.Ballot{
		{ProposalID: "0x2", ProposalTitle: "Round 2", Choices: []string{"4 - D", "5 - E", "6 - F"}, Choice: []int{1, 3}},
		{ProposalID: "0x1", ProposalTitle: "Round 1", Choices: []string{"1 - A"}, Choice: []int{1, 9}},
	}
	handler := NewVoterHandler(hub)

	w := getVotes(handler, testutil.Voter)

	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.VoterBallotsResponse
	testutil.AssertJSON(t, w, &resp)

	assert.Equal(t, testutil.Voter, resp.Voter)
	require.Len(t, resp.Ballots, 2)
	assert.Equal(t, "0x2", resp.Ballots[0].ProposalID)
	assert.Equal(t, []string{"4 - D", "6 - F"}, resp.Ballots[0].Picked)
	// Out-of-range choices are dropped
	assert.Equal(t, []string{"1 - A"}, resp.Ballots[1].Picked)
}

func TestGetVotes_NoBallots(t *testing.T) {
	handler := NewVoterHandler(testutil.NewFakeHub())

	w := getVotes(handler, testutil.Voter)

	testutil.AssertStatus(t, w, http.StatusOK)
	assert.Contains(t, w.Body.String(), `"ballots":[]`)
}

func TestGetVotes_Errors(t *testing.T) {
	t.Run("invalid address", func(t *testing.T) {
		w := getVotes(NewVoterHandler(testutil.NewFakeHub()), "vitalik")
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("hub failure", func(t *testing.T) {
		hub := testutil.NewFakeHub()
		hub.Err = errors.New("hub down")
		w := getVotes(NewVoterHandler(hub), testutil.Voter)
		testutil.AssertStatus(t, w, http.StatusBadGateway)
	})
}
