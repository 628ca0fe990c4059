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
	"unicode/utf8"

	"github.com/danielhkuo/small-grants/auth"
	"github.com/danielhkuo/small-grants/middleware"
	"github.com/danielhkuo/small-grants/models"
	"github.com/danielhkuo/small-grants/round"
	"github.com/danielhkuo/small-grants/tally"
)

const (
	maxTitleLen       = 80
	maxDescriptionLen = 280
)

type GrantHandler struct {
	db  *sql.DB
	hub TallySource
	now func() time.Time
}

func NewGrantHandler(db *sql.DB, hub TallySource) *GrantHandler {
	return &GrantHandler{db: db, hub: hub, now: time.Now}
}

// GetGrant handles GET /grants/{id}
// Returns the grant with its round and its standing on the round's tally.
func (h *GrantHandler) GetGrant(w http.ResponseWriter, r *http.Request) {
	log := middleware.Logger(r.Context())

	grantID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "grant id must be an integer")
		return
	}

	var roundID int64
	err = h.db.QueryRowContext(r.Context(),
		`SELECT round_id FROM grants WHERE id = $1 AND deleted = FALSE`, grantID).Scan(&roundID)
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Grant not found")
		return
	}
	if err != nil {
		log.Error("failed to query grant", "error", err, "grant_id", grantID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	rd, err := loadRound(r.Context(), h.db, roundID)
	if err != nil {
		log.Error("failed to load round", "error", err, "round_id", roundID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// Grants of a round that has not opened stay hidden
	now := h.now()
	if !round.ResolveStatus(rd, now).Started() {
		middleware.ErrorResponse(w, http.StatusNotFound, "Grant not found")
		return
	}

	// Winner status depends on the whole round, so reconcile all of it
	grants, err := loadGrants(r.Context(), h.db, roundID)
	if err != nil {
		log.Error("failed to load grants", "error", err, "round_id", roundID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	reconciled := tally.Reconcile(grants, fetchTally(r.Context(), h.hub, rd))
	highlighted := tally.SelectHighlighted(reconciled, rd, round.ResolveStatus(rd, now), nil)

	for _, rg := range reconciled {
		if rg.ID != grantID {
			continue
		}
		middleware.JSONResponse(w, http.StatusOK, models.GrantDetail{
			GrantStanding: standing(rg, highlighted),
			Round:         summarize(rd, len(grants), now),
		})
		return
	}

	// Deleted between the two queries
	middleware.ErrorResponse(w, http.StatusNotFound, "Grant not found")
}

// ListGrants handles GET /grants?proposer=0x...
// Returns the proposer's grants, newest first.
func (h *GrantHandler) ListGrants(w http.ResponseWriter, r *http.Request) {
	log := middleware.Logger(r.Context())

	proposer, err := auth.NormalizeAddress(r.URL.Query().Get("proposer"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "proposer must be a wallet address")
		return
	}

	rows, err := h.db.QueryContext(r.Context(), `
		SELECT `+grantColumns+`
		FROM grants
		WHERE proposer = $1 AND deleted = FALSE
		ORDER BY id DESC
	`, proposer)
	if err != nil {
		log.Error("failed to query grants", "error", err, "proposer", proposer)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	grants := []models.Grant{}
	for rows.Next() {
		g, err := scanGrant(rows)
		if err != nil {
			log.Error("failed to scan grant", "error", err)
			continue
		}
		grants = append(grants, g)
	}
	if err := rows.Err(); err != nil {
		log.Error("failed to read grants", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, grants)
}

// CreateGrant handles POST /grants
// The round must be in its proposal window. Requests reaching this handler
// have already had their signature checked.
func (h *GrantHandler) CreateGrant(w http.ResponseWriter, r *http.Request) {
	log := middleware.Logger(r.Context())

	var req models.CreateGrantRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	proposer, payout, msg := validateGrant(req)
	if msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	tx, err := h.db.BeginTx(r.Context(), nil)
	if err != nil {
		log.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	rd, err := loadRound(r.Context(), tx, req.RoundID)
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Round not found")
		return
	}
	if err != nil {
		log.Error("failed to load round", "error", err, "round_id", req.RoundID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	now := h.now()
	if status := round.ResolveStatus(rd, now); !status.AcceptsProposals() {
		middleware.ErrorResponse(w, http.StatusConflict, "Round is not accepting proposals ("+string(status)+")")
		return
	}

	grantID, err := nextID(r.Context(), tx, "grants")
	if err != nil {
		log.Error("failed to allocate grant id", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	_, err = tx.ExecContext(r.Context(), `
		INSERT INTO grants (id, round_id, proposer, title, description, full_text,
			twitter, payout_address, deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE, $9, $9)
	`, grantID, rd.ID, proposer, req.Title, req.Description, req.FullText,
		req.Twitter, payout, now.UTC())
	if err != nil {
		log.Error("failed to insert grant", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create grant")
		return
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit grant", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create grant")
		return
	}

	log.Info("grant created", "grant_id", grantID, "round_id", rd.ID, "proposer", proposer)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateGrantResponse{GrantID: grantID})
}

// validateGrant checks a submission and returns the normalized proposer
// and payout addresses, or a message describing the first problem.
func validateGrant(req models.CreateGrantRequest) (proposer string, payout *string, msg string) {
	if req.RoundID <= 0 {
		return "", nil, "round_id is required"
	}
	proposer, err := auth.NormalizeAddress(req.Address)
	if err != nil {
		return "", nil, "address must be a wallet address"
	}
	if n := utf8.RuneCountInString(strings.TrimSpace(req.Title)); n < 1 || n > maxTitleLen {
		return "", nil, "title must be 1-80 characters"
	}
	if utf8.RuneCountInString(req.Description) > maxDescriptionLen {
		return "", nil, "description must be at most 280 characters"
	}
	if strings.TrimSpace(req.FullText) == "" {
		return "", nil, "full_text is required"
	}
	if req.PayoutAddress != nil && *req.PayoutAddress != "" {
		addr, err := auth.NormalizeAddress(*req.PayoutAddress)
		if err != nil {
			return "", nil, "payout_address must be a wallet address"
		}
		payout = &addr
	}
	return proposer, payout, ""
}
