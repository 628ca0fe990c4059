// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Small Grants API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	hub := snapshot.NewClient(cfg.SnapshotHubURL, cfg.SnapshotSpace, cfg.HubTimeout)
	mux := router.NewRouter(db, cfg, hub)

# Endpoints

Health:

	GET /health

Houses:

	GET  /houses               - Visible houses
	POST /houses               - Create house (X-Admin-Key for the new slug)
	GET  /houses/{slug}        - House and its started rounds
	POST /houses/{slug}/rounds - Create round (X-Admin-Key for the house)

Rounds:

	GET /rounds      - Started rounds, newest first
	GET /rounds/{id} - Round with ranked grants (?sort=time|votes&selected=0,2)
	GET /rounds/{id}/snapshot - Hub proposal draft (pending-voting only)

Grants:

	GET  /grants?proposer=0x... - A proposer's grants
	POST /grants                - Submit grant (proposal window only)
	GET  /grants/{id}           - Grant with its round and standing

Voters:

	GET /voters/{address}/votes - Ballots cast on the voting hub

# Handler Initialization

The router creates handler instances with dependency injection:

	houseHandler := handlers.NewHouseHandler(db, cfg)
	roundHandler := handlers.NewRoundHandler(db, hub)
	grantHandler := handlers.NewGrantHandler(db, hub)
	voterHandler := handlers.NewVoterHandler(hub)

Every route except /health and / is wrapped with middleware.WithLogging.
*/
package router
