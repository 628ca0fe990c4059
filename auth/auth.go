// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
)

var (
	ErrInvalidAdminKey = errors.New("invalid admin key")
	ErrInvalidAddress  = errors.New("invalid wallet address")
)

// GenerateAdminKey creates the HMAC-based admin key for a house.
// This is deterministic and verifiable
func GenerateAdminKey(houseSlug, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte("house:" + houseSlug))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner keys
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// ValidateAdminKey checks if the provided admin key is valid for the house
func ValidateAdminKey(houseSlug, adminKey, salt string) error {
	expected := GenerateAdminKey(houseSlug, salt)
	if !hmac.Equal([]byte(adminKey), []byte(expected)) {
		return ErrInvalidAdminKey
	}
	return nil
}

// NormalizeAddress checks that addr is a 0x-prefixed, 20-byte hex wallet
// address and returns it lowercased.
func NormalizeAddress(addr string) (string, error) {
	if len(addr) != 42 || !strings.HasPrefix(addr, "0x") {
		return "", ErrInvalidAddress
	}
	for _, c := range addr[2:] {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return "", ErrInvalidAddress
		}
	}
	return strings.ToLower(addr), nil
}
