// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/small-grants/middleware"
	"github.com/danielhkuo/small-grants/models"
	"github.com/danielhkuo/small-grants/round"
	"github.com/danielhkuo/small-grants/tally"
)

type RoundHandler struct {
	db  *sql.DB
	hub TallySource
	now func() time.Time
}

func NewRoundHandler(db *sql.DB, hub TallySource) *RoundHandler {
	return &RoundHandler{db: db, hub: hub, now: time.Now}
}

// ListRounds handles GET /rounds
// Returns every round whose proposal window has opened, newest first.
func (h *RoundHandler) ListRounds(w http.ResponseWriter, r *http.Request) {
	loaded, err := loadRounds(r.Context(), h.db, "")
	if err != nil {
		middleware.Logger(r.Context()).Error("failed to load rounds", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	now := h.now()
	rounds := []models.RoundSummary{}
	for _, lr := range loaded {
		if !round.ResolveStatus(lr.round, now).Started() {
			continue
		}
		rounds = append(rounds, summarize(lr.round, lr.grants, now))
	}

	middleware.JSONResponse(w, http.StatusOK, rounds)
}

// GetRound handles GET /rounds/{id}?sort=time|votes&selected=0,2
//
// The round (then its tally) and its grants load concurrently. Grants are
// reconciled against the tally, ranked by sort, and flagged when they are
// highlighted: the voter's selection while voting, the winners once closed.
func (h *RoundHandler) GetRound(w http.ResponseWriter, r *http.Request) {
	log := middleware.Logger(r.Context())

	roundID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "round id must be an integer")
		return
	}

	selection, err := parseSelection(r.URL.Query().Get("selected"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "selected must be a comma-separated list of choice indices")
		return
	}
	order := tally.ParseOrder(r.URL.Query().Get("sort"))

	var (
		rd     models.Round
		t      *tally.Tally
		grants []models.Grant
	)

	now := h.now()

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		if rd, err = loadRound(ctx, h.db, roundID); err != nil {
			return err
		}
		if !round.ResolveStatus(rd, now).Started() {
			return errNotStarted
		}
		t = fetchTally(ctx, h.hub, rd)
		return nil
	})
	g.Go(func() error {
		var err error
		grants, err = loadGrants(ctx, h.db, roundID)
		return err
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, errNotStarted) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Round not found")
			return
		}
		log.Error("failed to load round", "error", err, "round_id", roundID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	status := round.ResolveStatus(rd, now)

	reconciled := tally.Reconcile(grants, t)
	highlighted := tally.SelectHighlighted(reconciled, rd, status, selection)

	standings := make([]models.GrantStanding, 0, len(reconciled))
	for _, rg := range tally.Rank(reconciled, order) {
		standings = append(standings, standing(rg, highlighted))
	}

	detail := models.RoundDetail{
		RoundSummary: summarize(rd, len(grants), now),
		Sort:         string(order),
		Grants:       standings,
		Highlighted:  highlighted.Sorted(),
	}
	if t.Usable() {
		detail.Tally = &models.TallySummary{
			ScoresState: t.ScoresState,
			ScoresTotal: t.ScoresTotal,
		}
	}
	if status.AcceptsVotes() && len(selection) > 0 {
		detail.BallotChoices = tally.SnapshotChoices(selection)
	}

	middleware.JSONResponse(w, http.StatusOK, detail)
}

// GetProposalDraft handles GET /rounds/{id}/snapshot
// Returns the approval proposal to publish on the hub: one choice per
// visible grant in id order, open for the round's voting window. Drafts
// exist only while the round waits for voting to open.
func (h *RoundHandler) GetProposalDraft(w http.ResponseWriter, r *http.Request) {
	log := middleware.Logger(r.Context())

	roundID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "round id must be an integer")
		return
	}

	rd, err := loadRound(r.Context(), h.db, roundID)
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Round not found")
		return
	}
	if err != nil {
		log.Error("failed to load round", "error", err, "round_id", roundID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	status := round.ResolveStatus(rd, h.now())
	if !status.Started() {
		middleware.ErrorResponse(w, http.StatusNotFound, "Round not found")
		return
	}
	if status != round.StatusPendingVoting {
		middleware.ErrorResponse(w, http.StatusConflict, "Round is not waiting for voting to open")
		return
	}

	grants, err := loadGrants(r.Context(), h.db, roundID)
	if err != nil {
		log.Error("failed to load grants", "error", err, "round_id", roundID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	choices := make([]string, 0, len(grants))
	for _, g := range grants {
		choices = append(choices, tally.FormatChoice(g.ID, g.Title))
	}

	middleware.JSONResponse(w, http.StatusOK, models.ProposalDraft{
		Space:   rd.SnapshotSpaceID,
		Type:    "approval",
		Title:   round.FullTitle(rd),
		Choices: choices,
		Start:   rd.VotingStart.Unix(),
		End:     rd.VotingEnd.Unix(),
	})
}

// parseSelection reads a comma-separated list of 0-based choice indices.
func parseSelection(raw string) ([]int, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		i, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || i < 0 {
			return nil, errors.New("invalid choice index")
		}
		out = append(out, i)
	}
	return out, nil
}
