// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package snapshot reads vote data from a Snapshot GraphQL hub.

	hub := snapshot.NewClient(cfg.SnapshotHubURL, cfg.SnapshotSpace, cfg.HubTimeout)
	t, err := hub.Tally(ctx, *round.SnapshotProposalID)
	ballots, err := hub.Ballots(ctx, voterAddress)

Requests are not retried. Callers decide how to degrade when the hub is
unavailable; the API treats a failed tally fetch as "no tally yet".

# Caching

An optional Cache sits in front of the hub. RedisCache is the production
implementation:

	cache, err := snapshot.NewRedisCache(ctx, cfg.RedisURL)
	hub.WithCache(cache, cfg.TallyCacheTTL)

Cache errors are logged and the hub is queried directly. Concurrent misses
for the same key collapse into one hub request.
*/
package snapshot
