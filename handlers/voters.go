// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/small-grants/auth"
	"github.com/danielhkuo/small-grants/middleware"
	"github.com/danielhkuo/small-grants/models"
)

type VoterHandler struct {
	hub TallySource
}

func NewVoterHandler(hub TallySource) *VoterHandler {
	return &VoterHandler{hub: hub}
}

// GetVotes handles GET /voters/{address}/votes
// Returns the voter's ballots in the configured space with the choice
// strings they approved.
func (h *VoterHandler) GetVotes(w http.ResponseWriter, r *http.Request) {
	voter, err := auth.NormalizeAddress(r.PathValue("address"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "address must be a wallet address")
		return
	}

	ballots, err := h.hub.Ballots(r.Context(), voter)
	if err != nil {
		middleware.Logger(r.Context()).Error("failed to fetch ballots", "error", err, "voter", voter)
		middleware.ErrorResponse(w, http.StatusBadGateway, "Voting hub unavailable")
		return
	}

	resp := models.VoterBallotsResponse{
		Voter:   voter,
		Ballots: make([]models.VoterBallot, 0, len(ballots)),
	}
	for _, b := range ballots {
		resp.Ballots = append(resp.Ballots, models.VoterBallot{
			ProposalID:    b.ProposalID,
			ProposalTitle: b.ProposalTitle,
			Picked:        b.Picked(),
		})
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}
