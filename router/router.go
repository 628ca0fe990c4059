// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/small-grants/cliparse"
	"github.com/danielhkuo/small-grants/handlers"
	"github.com/danielhkuo/small-grants/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config, hub handlers.TallySource) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	houseHandler := handlers.NewHouseHandler(db, cfg)
	roundHandler := handlers.NewRoundHandler(db, hub)
	grantHandler := handlers.NewGrantHandler(db, hub)
	voterHandler := handlers.NewVoterHandler(hub)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Houses (creation and round creation require X-Admin-Key)
	mux.HandleFunc("GET /houses", middleware.WithLogging(houseHandler.ListHouses))
	mux.HandleFunc("POST /houses", middleware.WithLogging(houseHandler.CreateHouse))
	mux.HandleFunc("GET /houses/{slug}", middleware.WithLogging(houseHandler.GetHouse))
	mux.HandleFunc("POST /houses/{slug}/rounds", middleware.WithLogging(houseHandler.CreateRound))

	// Rounds
	mux.HandleFunc("GET /rounds", middleware.WithLogging(roundHandler.ListRounds))
	mux.HandleFunc("GET /rounds/{id}", middleware.WithLogging(roundHandler.GetRound))
	mux.HandleFunc("GET /rounds/{id}/snapshot", middleware.WithLogging(roundHandler.GetProposalDraft))

	// Grants
	mux.HandleFunc("GET /grants", middleware.WithLogging(grantHandler.ListGrants))
	mux.HandleFunc("POST /grants", middleware.WithLogging(grantHandler.CreateGrant))
	mux.HandleFunc("GET /grants/{id}", middleware.WithLogging(grantHandler.GetGrant))

	// Voters
	mux.HandleFunc("GET /voters/{address}/votes", middleware.WithLogging(voterHandler.GetVotes))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("small-grants API v1"))
	})

	return mux
}
