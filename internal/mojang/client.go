// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LimboGate Contributors

// Package mojang looks up centrally issued (premium) identities via the
// public profile endpoint.
package mojang

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// DefaultProfileURL is the lookup endpoint; %s receives the
// URL-encoded lowercase nickname.
const DefaultProfileURL = "https://api.mojang.com/users/profiles/minecraft/%s"

// Lookup outcome for one nickname.
type Status int

const (
	// StatusPremium means the endpoint returned a profile for the name.
	StatusPremium Status = iota

	// StatusNotFound means the endpoint definitively knows no such
	// premium identity.
	StatusNotFound

	// StatusRateLimited means the endpoint refused to answer. Callers
	// must fall back to policy and must not cache this outcome.
	StatusRateLimited
)

// Default transport tuning.
const (
	defaultTimeout       = 5 * time.Second
	defaultRetryAttempts = 3
	defaultRetryBase     = 200 * time.Millisecond
)

// Client queries the premium profile endpoint.
type Client struct {
	http    *http.Client
	url     string
	retries uint64
	logger  *slog.Logger
}

// NewClient creates a Client. An empty profileURL falls back to
// DefaultProfileURL; a nil logger discards.
func NewClient(profileURL string, logger *slog.Logger) *Client {
	if profileURL == "" {
		profileURL = DefaultProfileURL
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		http:    &http.Client{Timeout: defaultTimeout},
		url:     profileURL,
		retries: defaultRetryAttempts,
		logger:  logger,
	}
}

// HasPaidAccount resolves whether the nickname belongs to a premium
// identity. Transient transport failures are retried with exponential
// backoff; a rate-limited answer is surfaced immediately without
// retrying, since hammering a throttled endpoint only extends the
// throttle window.
func (c *Client) HasPaidAccount(ctx context.Context, lowercaseNickname string) (Status, error) {
	target := fmt.Sprintf(c.url, url.QueryEscape(lowercaseNickname))

	var status Status
	backoff := retry.WithMaxRetries(c.retries, retry.NewExponential(defaultRetryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return oops.Code("PREMIUM_LOOKUP_FAILED").With("nickname", lowercaseNickname).Wrap(err)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			// Connection errors and timeouts are worth one more try.
			return retry.RetryableError(
				oops.Code("PREMIUM_LOOKUP_FAILED").With("nickname", lowercaseNickname).Wrap(err))
		}
		defer resp.Body.Close() //nolint:errcheck // response body is unused

		switch resp.StatusCode {
		case http.StatusOK:
			status = StatusPremium
			return nil
		case http.StatusNoContent, http.StatusNotFound:
			status = StatusNotFound
			return nil
		case http.StatusTooManyRequests:
			status = StatusRateLimited
			return nil
		default:
			return retry.RetryableError(oops.Code("PREMIUM_LOOKUP_FAILED").
				With("nickname", lowercaseNickname).
				With("status_code", resp.StatusCode).
				Errorf("unexpected response status %d", resp.StatusCode))
		}
	})
	if err != nil {
		return StatusRateLimited, err
	}
	return status, nil
}
