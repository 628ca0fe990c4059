// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/danielhkuo/small-grants/auth"
	"github.com/danielhkuo/small-grants/cliparse"
	"github.com/danielhkuo/small-grants/middleware"
	"github.com/danielhkuo/small-grants/models"
	"github.com/danielhkuo/small-grants/round"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

type HouseHandler struct {
	db  *sql.DB
	cfg cliparse.Config
	now func() time.Time
}

func NewHouseHandler(db *sql.DB, cfg cliparse.Config) *HouseHandler {
	return &HouseHandler{db: db, cfg: cfg, now: time.Now}
}

// ListHouses handles GET /houses
func (h *HouseHandler) ListHouses(w http.ResponseWriter, r *http.Request) {
	log := middleware.Logger(r.Context())

	rows, err := h.db.QueryContext(r.Context(), `
		SELECT `+houseColumns+`
		FROM houses
		WHERE hidden = FALSE
		ORDER BY id
	`)
	if err != nil {
		log.Error("failed to query houses", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	houses := []models.House{}
	for rows.Next() {
		house, err := scanHouse(rows)
		if err != nil {
			log.Error("failed to scan house", "error", err)
			continue
		}
		houses = append(houses, house)
	}
	if err := rows.Err(); err != nil {
		log.Error("failed to read houses", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, houses)
}

// GetHouse handles GET /houses/{slug}
// Returns the house with its started rounds, newest first.
func (h *HouseHandler) GetHouse(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	log := middleware.Logger(r.Context())

	house, err := scanHouse(h.db.QueryRowContext(r.Context(),
		`SELECT `+houseColumns+` FROM houses WHERE slug = $1`, slug))
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "House not found")
		return
	}
	if err != nil {
		log.Error("failed to query house", "error", err, "slug", slug)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	loaded, err := loadRounds(r.Context(), h.db, "WHERE house_id = $1", house.ID)
	if err != nil {
		log.Error("failed to load rounds", "error", err, "house_id", house.ID)
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

	middleware.JSONResponse(w, http.StatusOK, models.HouseDetail{
		House:  house,
		Rounds: rounds,
	})
}

// CreateHouse handles POST /houses
// The admin key is the one derived from the new house's slug.
func (h *HouseHandler) CreateHouse(w http.ResponseWriter, r *http.Request) {
	log := middleware.Logger(r.Context())

	var req models.CreateHouseRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if !slugPattern.MatchString(req.Slug) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "slug must be lowercase letters, digits and dashes")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}

	if err := auth.ValidateAdminKey(req.Slug, r.Header.Get("X-Admin-Key"), h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	tx, err := h.db.BeginTx(r.Context(), nil)
	if err != nil {
		log.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(r.Context(),
		`SELECT EXISTS(SELECT 1 FROM houses WHERE slug = $1)`, req.Slug).Scan(&exists)
	if err != nil {
		log.Error("failed to check slug", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if exists {
		middleware.ErrorResponse(w, http.StatusConflict, "House already exists")
		return
	}

	houseID, err := nextID(r.Context(), tx, "houses")
	if err != nil {
		log.Error("failed to allocate house id", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	_, err = tx.ExecContext(r.Context(), `
		INSERT INTO houses (id, slug, title, description, hidden, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, houseID, req.Slug, req.Title, req.Description, req.Hidden, h.now().UTC())
	if err != nil {
		log.Error("failed to insert house", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create house")
		return
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit house", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create house")
		return
	}

	log.Info("house created", "house_id", houseID, "slug", req.Slug)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateHouseResponse{
		HouseID: houseID,
		Slug:    req.Slug,
	})
}

// CreateRound handles POST /houses/{slug}/rounds
// Requires the house admin key. Rounds whose windows are out of order are
// rejected here rather than at read time.
func (h *HouseHandler) CreateRound(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	log := middleware.Logger(r.Context())

	if err := auth.ValidateAdminKey(slug, r.Header.Get("X-Admin-Key"), h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	var req models.CreateRoundRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	rd, msg := h.roundFromRequest(req)
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

	err = tx.QueryRowContext(r.Context(), `SELECT id FROM houses WHERE slug = $1`, slug).Scan(&rd.HouseID)
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "House not found")
		return
	}
	if err != nil {
		log.Error("failed to query house", "error", err, "slug", slug)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	rd.ID, err = nextID(r.Context(), tx, "rounds")
	if err != nil {
		log.Error("failed to allocate round id", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	now := h.now().UTC()
	_, err = tx.ExecContext(r.Context(), `
		INSERT INTO rounds (id, house_id, creator, title, round_number, description,
			snapshot_space_id, snapshot_proposal_id,
			proposal_start, proposal_end, voting_start, voting_end,
			allocation_token_amount, allocation_token_address, max_winner_count,
			scholarship, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`, rd.ID, rd.HouseID, rd.Creator, rd.Title, rd.Round, rd.Description,
		rd.SnapshotSpaceID, rd.SnapshotProposalID,
		rd.ProposalStart.UTC(), rd.ProposalEnd.UTC(), rd.VotingStart.UTC(), rd.VotingEnd.UTC(),
		rd.AllocationTokenAmount.String(), rd.AllocationTokenAddress, rd.MaxWinnerCount,
		rd.Scholarship, now, now)
	if err != nil {
		log.Error("failed to insert round", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create round")
		return
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit round", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create round")
		return
	}

	log.Info("round created", "round_id", rd.ID, "house", slug, "title", rd.Title)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateRoundResponse{RoundID: rd.ID})
}

// roundFromRequest validates req and builds the round to insert. A
// non-empty message describes the first problem found.
func (h *HouseHandler) roundFromRequest(req models.CreateRoundRequest) (models.Round, string) {
	creator, err := auth.NormalizeAddress(req.Creator)
	if err != nil {
		return models.Round{}, "creator must be a wallet address"
	}
	if strings.TrimSpace(req.Title) == "" {
		return models.Round{}, "title is required"
	}
	if req.Round < 0 {
		return models.Round{}, "round must not be negative"
	}
	if req.MaxWinnerCount < 0 {
		return models.Round{}, "max_winner_count must not be negative"
	}

	amount := decimal.Zero
	if req.AllocationTokenAmount != "" {
		amount, err = decimal.NewFromString(req.AllocationTokenAmount)
		if err != nil || amount.IsNegative() || !amount.Equal(amount.Truncate(0)) {
			return models.Round{}, "allocation_token_amount must be a non-negative integer"
		}
	}

	tokenAddress, err := auth.NormalizeAddress(req.AllocationTokenAddress)
	if err != nil {
		return models.Round{}, "allocation_token_address must be a token address"
	}

	var proposalID *string
	if req.SnapshotProposalID != nil && *req.SnapshotProposalID != "" {
		proposalID = req.SnapshotProposalID
	}

	rd := models.Round{
		Creator:                creator,
		Title:                  req.Title,
		Round:                  req.Round,
		Description:            req.Description,
		SnapshotSpaceID:        h.cfg.SnapshotSpace,
		SnapshotProposalID:     proposalID,
		ProposalStart:          req.ProposalStart,
		ProposalEnd:            req.ProposalEnd,
		VotingStart:            req.VotingStart,
		VotingEnd:              req.VotingEnd,
		AllocationTokenAmount:  amount,
		AllocationTokenAddress: tokenAddress,
		MaxWinnerCount:         req.MaxWinnerCount,
		Scholarship:            req.Scholarship,
	}

	if rd.ProposalStart.IsZero() || rd.ProposalEnd.IsZero() || rd.VotingStart.IsZero() || rd.VotingEnd.IsZero() {
		return models.Round{}, "all four timeline instants are required"
	}
	if err := round.CheckTimeline(rd); err != nil {
		return models.Round{}, err.Error()
	}

	return rd, ""
}
