// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides admin key and wallet address utilities.

# Admin Keys

Each house has an admin key derived with HMAC-SHA256 from its slug:

	adminKey := auth.GenerateAdminKey(houseSlug, salt)
	err := auth.ValidateAdminKey(houseSlug, adminKey, salt)

The key is URL-safe base64 encoded without padding. Since it's deterministic,
the same slug and salt always produce the same key, so nothing is stored in
the database. Admin keys gate round creation (X-Admin-Key header).

# Wallet Addresses

Proposers and voters are identified by their wallet address:

	addr, err := auth.NormalizeAddress(input)

The address must be 0x followed by 40 hex characters. It is returned
lowercased so lookups are case-insensitive. Signature checks happen before
requests reach this service.
*/
package auth
