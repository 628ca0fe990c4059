// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Small Grants API.

# Handler Types

Each handler is a struct with its dependencies:

  - HouseHandler: Houses and admin round creation
  - RoundHandler: Round listings and round detail with ranked grants
  - GrantHandler: Grant submission and lookup
  - VoterHandler: A voter's ballots from the voting hub

Handlers are created via constructor functions:

	roundHandler := handlers.NewRoundHandler(db, hub)

hub is any TallySource; snapshot.Client is the production one.

# Round Lifecycle

A round's status is derived on every request from its four instants:

	queued → proposals → pending-voting → voting → closed

Only started rounds (not queued) are listed. Grants may be submitted only
while the round is in proposals.

# Round Detail

GET /rounds/{id} loads the round (then its tally) and its grants
concurrently. Grants are reconciled against the tally by the id embedded in
each choice string, ranked by ?sort=time|votes, and highlighted:

  - voting: grants whose choice index is in ?selected=0,2
  - closed: the first max_winner_count grants by votes

A missing or failed tally is logged and treated as "no votes yet". Rounds
that have not started are served as not found, here and in GET /grants/{id}.

GET /rounds/{id}/snapshot returns the approval proposal to publish on the
hub while the round waits for voting to open.

# Admin Operations

POST /houses and POST /houses/{slug}/rounds require the X-Admin-Key header,
derived from the house slug. Round timelines must be in order.

# Ids

Houses, rounds and grants get MAX(id)+1 inside the inserting transaction.
*/
package handlers
