// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/danielhkuo/small-grants/tally"
)

var (
	ErrProposalNotFound = errors.New("proposal not found on hub")
	ErrHub              = errors.New("hub request failed")
)

const tallyQuery = `
	query GetSnapshotProposal($proposalId: String!) {
		proposals(where: { id: $proposalId }) {
			id
			choices
			scores_total
			scores_state
			scores
		}
	}
`

const ballotsQuery = `
	query Votes($voter: String!, $space: String!) {
		votes(
			first: 100,
			skip: 0,
			where: { voter: $voter, space_in: [$space] },
			orderBy: "created",
			orderDirection: desc
		) {
			proposal {
				id
				title
				choices
			}
			choice
		}
	}
`

// Client reads tallies and ballots from a Snapshot GraphQL hub. Concurrent
// requests for the same key share one round trip. It is safe for
// concurrent use.
type Client struct {
	endpoint   string
	space      string
	httpClient *http.Client

	cache Cache
	ttl   time.Duration

	group singleflight.Group
}

// NewClient creates a client for the hub at endpoint. Ballot lookups are
// restricted to space.
func NewClient(endpoint, space string, timeout time.Duration) *Client {
	return &Client{
		endpoint:   endpoint,
		space:      space,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// WithCache makes the client read through cache, storing responses for ttl.
func (c *Client) WithCache(cache Cache, ttl time.Duration) *Client {
	c.cache = cache
	c.ttl = ttl
	return c
}

// Tally fetches the current scores of a hub proposal.
func (c *Client) Tally(ctx context.Context, proposalID string) (*tally.Tally, error) {
	var t tally.Tally
	err := c.cached(ctx, "tally:"+proposalID, &t, func(ctx context.Context) (any, error) {
		var resp struct {
			Proposals []tally.Tally `json:"proposals"`
		}
		if err := c.query(ctx, tallyQuery, map[string]any{"proposalId": proposalID}, &resp); err != nil {
			return nil, err
		}
		if len(resp.Proposals) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrProposalNotFound, proposalID)
		}
		return resp.Proposals[0], nil
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Ballots fetches the latest votes cast by voter in the client's space,
// newest first.
func (c *Client) Ballots(ctx context.Context, voter string) ([]tally.Ballot, error) {
	voter = strings.ToLower(voter)

	var ballots []tally.Ballot
	err := c.cached(ctx, "ballots:"+c.space+":"+voter, &ballots, func(ctx context.Context) (any, error) {
		var resp struct {
			Votes []struct {
				Proposal struct {
					ID      string   `json:"id"`
					Title   string   `json:"title"`
					Choices []string `json:"choices"`
				} `json:"proposal"`
				Choice json.RawMessage `json:"choice"`
			} `json:"votes"`
		}
		vars := map[string]any{"voter": voter, "space": c.space}
		if err := c.query(ctx, ballotsQuery, vars, &resp); err != nil {
			return nil, err
		}

		out := make([]tally.Ballot, 0, len(resp.Votes))
		for _, v := range resp.Votes {
			out = append(out, tally.Ballot{
				ProposalID:    v.Proposal.ID,
				ProposalTitle: v.Proposal.Title,
				Choices:       v.Proposal.Choices,
				Choice:        decodeChoice(v.Choice),
			})
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return ballots, nil
}

// cached resolves key from the cache, or runs fetch once across concurrent
// callers and stores the result. dst receives the value either way.
//
// The shared fetch runs detached from any single caller's cancellation and
// is bounded by the client timeout. A caller whose ctx ends stops waiting
// and gets ctx.Err(); the others still receive the result.
func (c *Client) cached(ctx context.Context, key string, dst any, fetch func(context.Context) (any, error)) error {
	if c.cache != nil {
		raw, ok, err := c.cache.Get(ctx, key)
		if err != nil {
			slog.Warn("hub cache read failed", "key", key, "error", err)
		} else if ok {
			if err := json.Unmarshal(raw, dst); err == nil {
				return nil
			}
		}
	}

	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		fctx, cancel := shared, context.CancelFunc(func() {})
		if c.httpClient.Timeout > 0 {
			fctx, cancel = context.WithTimeout(shared, c.httpClient.Timeout)
		}
		defer cancel()

		v, err := fetch(fctx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode hub response: %w", err)
		}
		if c.cache != nil {
			if err := c.cache.Set(fctx, key, raw, c.ttl); err != nil {
				slog.Warn("hub cache write failed", "key", key, "error", err)
			}
		}
		return raw, nil
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return res.Err
		}
		return json.Unmarshal(res.Val.([]byte), dst)
	}
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (c *Client) query(ctx context.Context, query string, vars map[string]any, dst any) error {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("failed to encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build hub request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrHub, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrHub, res.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var gql graphQLResponse
	if err := json.NewDecoder(res.Body).Decode(&gql); err != nil {
		return fmt.Errorf("%w: invalid response: %v", ErrHub, err)
	}
	if len(gql.Errors) > 0 {
		return fmt.Errorf("%w: %s", ErrHub, gql.Errors[0].Message)
	}
	if len(gql.Data) == 0 {
		return fmt.Errorf("%w: empty response", ErrHub)
	}
	if err := json.Unmarshal(gql.Data, dst); err != nil {
		return fmt.Errorf("%w: unexpected data: %v", ErrHub, err)
	}
	return nil
}

// decodeChoice accepts the hub's approval form ([1,3]) as well as the
// single-choice form (2).
func decodeChoice(raw json.RawMessage) []int {
	var many []int
	if err := json.Unmarshal(raw, &many); err == nil {
		return many
	}
	var one int
	if err := json.Unmarshal(raw, &one); err == nil {
		return []int{one}
	}
	return nil
}
